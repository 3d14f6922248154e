package cutset_test

import (
	"context"
	"errors"
	"testing"

	"splice/internal/cut"
	"splice/internal/cutset"
)

func TestLoadAttrAllKeepsSetOrder(t *testing.T) {
	ctx := context.Background()
	w := memWriter(t)
	segments := make([]cut.Segment, 8)
	for i := range segments {
		// Each member stores a distinct frame count so position i is
		// recognizable in the result.
		segments[i] = temporalCut(t, w, "utt-"+string(rune('a'+i)), float64(i+1)*0.4, i+1)
	}
	s, err := cutset.FromSegments(segments...)
	if err != nil {
		t.Fatalf("FromSegments failed: %v", err)
	}

	for _, parallelism := range []int{0, 1, 3} {
		arrays, err := s.LoadAttrAll(ctx, "codes", parallelism)
		if err != nil {
			t.Fatalf("parallelism %d: LoadAttrAll failed: %v", parallelism, err)
		}
		if len(arrays) != s.Len() {
			t.Fatalf("parallelism %d: results = %d, want %d", parallelism, len(arrays), s.Len())
		}
		for i, arr := range arrays {
			if arr.Dim(0) != i+1 {
				t.Fatalf("parallelism %d: member %d has %d frames, want %d", parallelism, i, arr.Dim(0), i+1)
			}
		}
	}
}

func TestLoadAttrAllPropagatesFailure(t *testing.T) {
	ctx := context.Background()
	w := memWriter(t)
	with := temporalCut(t, w, "utt-full", 2.0, 5)
	without := plainCut(t, "utt-bare", 2.0)
	s, err := cutset.FromSegments(with, without)
	if err != nil {
		t.Fatalf("FromSegments failed: %v", err)
	}

	_, err = s.LoadAttrAll(ctx, "codes", 2)
	if !errors.Is(err, cut.ErrAttributeNotFound) {
		t.Fatalf("LoadAttrAll = %v, want ErrAttributeNotFound", err)
	}
}
