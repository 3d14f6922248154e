package storage_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"splice/internal/storage"
	"splice/internal/tensor"
)

func testArray(t *testing.T) tensor.Array {
	t.Helper()
	arr, err := tensor.FromFloat32([]int{4, 3}, []float32{
		0, 1, 2,
		3, 4, 5,
		6, 7, 8,
		9, 10, 11,
	})
	if err != nil {
		t.Fatalf("build test array: %v", err)
	}
	return arr
}

// backendLocation returns a fresh location string for each kind and
// registers cleanup where the backend needs it.
func backendLocation(t *testing.T, kind storage.Kind) string {
	t.Helper()
	switch kind {
	case storage.KindMemory:
		name := "test-" + t.Name()
		t.Cleanup(func() { storage.ResetMemory(name) })
		return name
	case storage.KindFiles, storage.KindFilesZstd:
		return t.TempDir()
	case storage.KindSQLite:
		return filepath.Join(t.TempDir(), "arrays.db")
	default:
		t.Fatalf("unknown kind %q", kind)
		return ""
	}
}

func TestBackendsRoundTrip(t *testing.T) {
	kinds := []storage.Kind{
		storage.KindMemory,
		storage.KindFiles,
		storage.KindFilesZstd,
		storage.KindSQLite,
	}
	for _, kind := range kinds {
		t.Run(string(kind), func(t *testing.T) {
			ctx := context.Background()
			location := backendLocation(t, kind)
			original := testArray(t)

			writer, err := storage.NewWriter(kind, location)
			if err != nil {
				t.Fatalf("NewWriter failed: %v", err)
			}
			if writer.Kind() != kind {
				t.Fatalf("writer kind = %q, want %q", writer.Kind(), kind)
			}
			if err := writer.Put(ctx, "alpha", original); err != nil {
				t.Fatalf("Put failed: %v", err)
			}
			recorded := writer.Location()
			if err := writer.Close(); err != nil {
				t.Fatalf("writer Close failed: %v", err)
			}

			reader, err := storage.OpenReader(kind, recorded)
			if err != nil {
				t.Fatalf("OpenReader failed: %v", err)
			}
			defer reader.Close()

			loaded, err := reader.Get(ctx, "alpha")
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if !loaded.Equal(original) {
				t.Fatal("round trip changed the array")
			}

			window, err := reader.GetRange(ctx, "alpha", 1, 3)
			if err != nil {
				t.Fatalf("GetRange failed: %v", err)
			}
			want, err := original.Slice(0, 1, 3)
			if err != nil {
				t.Fatalf("reference slice failed: %v", err)
			}
			if !window.Equal(want) {
				t.Fatal("range read differs from in-memory slice")
			}

			if _, err := reader.Get(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
				t.Fatalf("Get(missing) = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestBackendsOverwriteKey(t *testing.T) {
	ctx := context.Background()
	location := backendLocation(t, storage.KindSQLite)

	writer, err := storage.NewWriter(storage.KindSQLite, location)
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}
	defer writer.Close()

	first := testArray(t)
	if err := writer.Put(ctx, "k", first); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	second, _ := tensor.FromInt64([]int{2}, []int64{7, 8})
	if err := writer.Put(ctx, "k", second); err != nil {
		t.Fatalf("overwrite Put failed: %v", err)
	}

	reader, err := storage.OpenReader(storage.KindSQLite, location)
	if err != nil {
		t.Fatalf("OpenReader failed: %v", err)
	}
	defer reader.Close()
	loaded, err := reader.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !loaded.Equal(second) {
		t.Fatal("overwrite did not replace the stored array")
	}
}

func TestOpenReaderUnknownKind(t *testing.T) {
	if _, err := storage.OpenReader(storage.Kind("tape"), "loc"); !errors.Is(err, storage.ErrUnavailable) {
		t.Fatalf("unknown kind error = %v, want ErrUnavailable", err)
	}
}

func TestOpenReaderMissingLocation(t *testing.T) {
	cases := []struct {
		name     string
		kind     storage.Kind
		location string
	}{
		{"memory store never created", storage.KindMemory, "never-created-store"},
		{"files dir missing", storage.KindFiles, filepath.Join(t.TempDir(), "absent")},
		{"sqlite file missing", storage.KindSQLite, filepath.Join(t.TempDir(), "absent.db")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := storage.OpenReader(tc.kind, tc.location); !errors.Is(err, storage.ErrUnavailable) {
				t.Fatalf("OpenReader = %v, want ErrUnavailable", err)
			}
		})
	}
}

func TestParseKind(t *testing.T) {
	kind, err := storage.ParseKind(" Files ")
	if err != nil || kind != storage.KindFiles {
		t.Fatalf("ParseKind(\" Files \") = %q, %v", kind, err)
	}
	if _, err := storage.ParseKind("tape"); !errors.Is(err, storage.ErrUnavailable) {
		t.Fatalf("ParseKind(tape) = %v, want ErrUnavailable", err)
	}
}

func TestFilesWriterLockExcludesSecondWriter(t *testing.T) {
	dir := t.TempDir()
	first, err := storage.NewWriter(storage.KindFiles, dir)
	if err != nil {
		t.Fatalf("first writer failed: %v", err)
	}
	defer first.Close()

	if _, err := storage.NewWriter(storage.KindFiles, dir); !errors.Is(err, storage.ErrUnavailable) {
		t.Fatalf("second writer error = %v, want ErrUnavailable", err)
	}

	if err := first.Close(); err != nil {
		t.Fatalf("release lock: %v", err)
	}
	third, err := storage.NewWriter(storage.KindFiles, dir)
	if err != nil {
		t.Fatalf("writer after release failed: %v", err)
	}
	_ = third.Close()
}

func TestFilesRejectsEscapingKeys(t *testing.T) {
	ctx := context.Background()
	writer, err := storage.NewWriter(storage.KindFiles, t.TempDir())
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}
	defer writer.Close()

	arr := testArray(t)
	for _, key := range []string{"", "  ", "../outside", "/etc/passwd"} {
		if err := writer.Put(ctx, key, arr); err == nil {
			t.Errorf("Put(%q) succeeded, want error", key)
		}
	}
	if err := writer.Put(ctx, "nested/shard/key", arr); err != nil {
		t.Fatalf("nested key rejected: %v", err)
	}
}

func TestMemoryStoreSharedAcrossHandles(t *testing.T) {
	ctx := context.Background()
	name := "shared-" + t.Name()
	t.Cleanup(func() { storage.ResetMemory(name) })

	writer, err := storage.NewWriter(storage.KindMemory, name)
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}
	arr := testArray(t)
	if err := writer.Put(ctx, "k", arr); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	// A second reader handle opened later sees the same data.
	reader, err := storage.OpenReader(storage.KindMemory, name)
	if err != nil {
		t.Fatalf("OpenReader failed: %v", err)
	}
	loaded, err := reader.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !loaded.Equal(arr) {
		t.Fatal("reader does not observe writer data")
	}
}
