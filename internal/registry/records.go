package registry

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"splice/internal/cut"
	"splice/internal/cutset"
)

// Put inserts or replaces one cut record, keyed by segment ID.
func (s *Store) Put(ctx context.Context, seg cut.Segment) error {
	if seg == nil {
		return errors.New("segment is nil")
	}
	record := cut.Serialize(seg)
	kind, _ := record["type"].(string)
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record %q: %w", seg.ID(), err)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = s.execWithRetry(
		ctx,
		`INSERT INTO cuts (id, kind, duration, record_json, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET
             kind = excluded.kind,
             duration = excluded.duration,
             record_json = excluded.record_json,
             updated_at = excluded.updated_at`,
		seg.ID(),
		kind,
		seg.Duration(),
		string(raw),
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("insert record %q: %w", seg.ID(), err)
	}
	return nil
}

// Get fetches a cut by identifier. Missing IDs return nil, nil.
func (s *Store) Get(ctx context.Context, id string) (cut.Segment, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT record_json FROM cuts WHERE id = ?`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get record %q: %w", id, err)
	}
	return decodeRecord(id, raw)
}

// List returns segments in ID order, optionally filtered to the given
// record kinds (cut, padding, mixed).
func (s *Store) List(ctx context.Context, kinds ...string) ([]cut.Segment, error) {
	query := `SELECT id, record_json FROM cuts`
	args := make([]any, 0, len(kinds))
	if len(kinds) > 0 {
		placeholders := make([]string, len(kinds))
		for i, kind := range kinds {
			placeholders[i] = "?"
			args = append(args, kind)
		}
		query += ` WHERE kind IN (` + strings.Join(placeholders, ", ") + `)`
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var segments []cut.Segment
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}
		seg, err := decodeRecord(id, raw)
		if err != nil {
			return nil, err
		}
		segments = append(segments, seg)
	}
	return segments, rows.Err()
}

// Remove deletes a record, reporting whether it existed.
func (s *Store) Remove(ctx context.Context, id string) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM cuts WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("remove record %q: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// Clear removes every record, returning the number deleted.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM cuts`)
	if err != nil {
		return 0, fmt.Errorf("clear registry: %w", err)
	}
	return res.RowsAffected()
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM cuts`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return count, nil
}

// Stats returns a count of records grouped by kind.
func (s *Store) Stats(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT kind, COUNT(1) FROM cuts GROUP BY kind`)
	if err != nil {
		return nil, fmt.Errorf("registry stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]int)
	for rows.Next() {
		var kind string
		var count int
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, err
		}
		stats[kind] = count
	}
	return stats, rows.Err()
}

// ImportSet stores every member of a set, replacing records that share
// an ID. Returns the number of records written.
func (s *Store) ImportSet(ctx context.Context, set cutset.Set) (int, error) {
	imported := 0
	err := set.EachSegment(func(seg cut.Segment) error {
		if err := s.Put(ctx, seg); err != nil {
			return err
		}
		imported++
		return nil
	})
	return imported, err
}

// ExportSet assembles every stored record into a set, in ID order.
func (s *Store) ExportSet(ctx context.Context) (cutset.Set, error) {
	segments, err := s.List(ctx)
	if err != nil {
		return cutset.Set{}, err
	}
	return cutset.FromSegments(segments...)
}

func decodeRecord(id, raw string) (cut.Segment, error) {
	var record map[string]any
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, fmt.Errorf("decode record %q: %w", id, err)
	}
	seg, err := cut.Deserialize(record)
	if err != nil {
		return nil, fmt.Errorf("decode record %q: %w", id, err)
	}
	return seg, nil
}
