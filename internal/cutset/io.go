package cutset

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"gopkg.in/yaml.v3"

	"splice/internal/cut"
)

// ErrUnknownFormat marks set paths whose extension picks no codec.
var ErrUnknownFormat = errors.New("unknown set file format")

// WriteJSONL writes one serialized record per line.
func WriteJSONL(w io.Writer, s Set) error {
	enc := json.NewEncoder(w)
	for _, seg := range s.segments {
		if err := enc.Encode(cut.Serialize(seg)); err != nil {
			return fmt.Errorf("encode %q: %w", seg.ID(), err)
		}
	}
	return nil
}

// ReadJSONL decodes a stream of per-line records into a set.
func ReadJSONL(r io.Reader) (Set, error) {
	dec := json.NewDecoder(r)
	var segments []cut.Segment
	for line := 1; ; line++ {
		var record map[string]any
		if err := dec.Decode(&record); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return Set{}, fmt.Errorf("record %d: %w", line, err)
		}
		seg, err := cut.Deserialize(record)
		if err != nil {
			return Set{}, fmt.Errorf("record %d: %w", line, err)
		}
		segments = append(segments, seg)
	}
	return FromSegments(segments...)
}

// WriteYAML writes the set as one document holding the record list.
func WriteYAML(w io.Writer, s Set) error {
	records := make([]map[string]any, len(s.segments))
	for i, seg := range s.segments {
		records[i] = cut.Serialize(seg)
	}
	enc := yaml.NewEncoder(w)
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encode records: %w", err)
	}
	return enc.Close()
}

// ReadYAML decodes a record-list document into a set.
func ReadYAML(r io.Reader) (Set, error) {
	var records []map[string]any
	if err := yaml.NewDecoder(r).Decode(&records); err != nil {
		return Set{}, fmt.Errorf("decode records: %w", err)
	}
	segments := make([]cut.Segment, len(records))
	for i, record := range records {
		seg, err := cut.Deserialize(record)
		if err != nil {
			return Set{}, fmt.Errorf("record %d: %w", i+1, err)
		}
		segments[i] = seg
	}
	return FromSegments(segments...)
}

// WriteFile writes a set file, picking the codec from the extension:
// .jsonl, .jsonl.gz, .yaml, or .yml. The write lands atomically.
func WriteFile(path string, s Set) error {
	write, err := writerFor(path)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create set directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".set-*")
	if err != nil {
		return fmt.Errorf("create temp set file: %w", err)
	}
	success := false
	defer func() {
		if !success {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err := write(tmp, s); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync set file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close set file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("finalize set file: %w", err)
	}
	success = true
	return nil
}

// ReadFile reads a set file, picking the codec from the extension.
func ReadFile(path string) (Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return Set{}, fmt.Errorf("open set file: %w", err)
	}
	defer f.Close()

	switch {
	case strings.HasSuffix(path, ".jsonl.gz"):
		gz, err := gzip.NewReader(f)
		if err != nil {
			return Set{}, fmt.Errorf("open gzip stream: %w", err)
		}
		defer gz.Close()
		return ReadJSONL(gz)
	case strings.HasSuffix(path, ".jsonl"):
		return ReadJSONL(f)
	case strings.HasSuffix(path, ".yaml"), strings.HasSuffix(path, ".yml"):
		return ReadYAML(f)
	default:
		return Set{}, fmt.Errorf("%w: %s", ErrUnknownFormat, filepath.Base(path))
	}
}

func writerFor(path string) (func(io.Writer, Set) error, error) {
	switch {
	case strings.HasSuffix(path, ".jsonl.gz"):
		return func(w io.Writer, s Set) error {
			gz := gzip.NewWriter(w)
			if err := WriteJSONL(gz, s); err != nil {
				return err
			}
			return gz.Close()
		}, nil
	case strings.HasSuffix(path, ".jsonl"):
		return WriteJSONL, nil
	case strings.HasSuffix(path, ".yaml"), strings.HasSuffix(path, ".yml"):
		return WriteYAML, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, filepath.Base(path))
	}
}
