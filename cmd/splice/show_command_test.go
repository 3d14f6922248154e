package main

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"splice/internal/cut"
	"splice/internal/cutset"
	"splice/internal/storage"
	"splice/internal/testsupport"
)

func sampleSetFile(t *testing.T) string {
	t.Helper()

	w, err := storage.NewWriter(storage.KindMemory, memoryLocation(t))
	if err != nil {
		t.Fatalf("open memory writer: %v", err)
	}

	plain, err := testsupport.NewCut(t, "cut-alpha", 4.5).
		WithChannel(1).
		WithRecording(cut.Recording{ID: "rec-1", SamplingRate: 16000}).
		WithAttr("speaker", "spk-1")
	if err != nil {
		t.Fatalf("WithAttr: %v", err)
	}

	mixed, err := cut.NewMixed("mix-gamma", []cut.Track{
		{Cut: testsupport.NewTemporalCut(t, w, "cut-base", 5.0, 50, "codes"), Offset: 0},
		{Cut: testsupport.NewPadding(t, "pad-tail", 1.0), Offset: 5.0},
	})
	if err != nil {
		t.Fatalf("NewMixed: %v", err)
	}

	set, err := cutset.FromSegments(plain, testsupport.NewPadding(t, "pad-beta", 2.0), mixed)
	if err != nil {
		t.Fatalf("FromSegments: %v", err)
	}

	path := filepath.Join(t.TempDir(), "sample.jsonl")
	if err := cutset.WriteFile(path, set); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestShowRendersTable(t *testing.T) {
	configPath := writeTestConfig(t)
	setPath := sampleSetFile(t)

	out, _, err := runCLI(t, configPath, "show", setPath)
	if err != nil {
		t.Fatalf("show: %v", err)
	}

	requireContains(t, out, "cut-alpha")
	requireContains(t, out, "rec-1")
	requireContains(t, out, "speaker")
	requireContains(t, out, "pad-beta")
	requireContains(t, out, "mixed(2)")
	requireContains(t, out, "3 segments")
}

func TestShowEmitsJSON(t *testing.T) {
	configPath := writeTestConfig(t)
	setPath := sampleSetFile(t)

	out, _, err := runCLI(t, configPath, "show", setPath, "--json")
	if err != nil {
		t.Fatalf("show --json: %v", err)
	}

	var records []map[string]any
	if err := json.Unmarshal([]byte(out), &records); err != nil {
		t.Fatalf("parse JSON output: %v\n%s", err, out)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[0]["id"] != "cut-alpha" {
		t.Fatalf("expected set order preserved, got first id %v", records[0]["id"])
	}
	if records[2]["type"] != "mixed" {
		t.Fatalf("expected mixed record last, got %v", records[2]["type"])
	}
}

func TestStatsSummarizesSet(t *testing.T) {
	configPath := writeTestConfig(t)
	setPath := sampleSetFile(t)

	out, _, err := runCLI(t, configPath, "stats", setPath)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}

	requireContains(t, out, "Segments: 3")
	requireContains(t, out, "cut:")
	requireContains(t, out, "padding:")
	requireContains(t, out, "mixed:")
	requireContains(t, out, "min 2.000s")
	requireContains(t, out, "max 6.000s")
	requireContains(t, out, "speaker")
	requireContains(t, out, "codes")
}

func TestStatsEmitsJSON(t *testing.T) {
	configPath := writeTestConfig(t)
	setPath := sampleSetFile(t)

	out, _, err := runCLI(t, configPath, "stats", setPath, "--json")
	if err != nil {
		t.Fatalf("stats --json: %v", err)
	}

	var stats setStats
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatalf("parse JSON output: %v\n%s", err, out)
	}
	if stats.Segments != 3 {
		t.Fatalf("expected 3 segments, got %d", stats.Segments)
	}
	if stats.Counts["cut"] != 1 || stats.Counts["padding"] != 1 || stats.Counts["mixed"] != 1 {
		t.Fatalf("unexpected counts: %#v", stats.Counts)
	}
	if stats.Attributes["speaker"] != 1 || stats.Attributes["codes"] != 1 {
		t.Fatalf("unexpected attribute histogram: %#v", stats.Attributes)
	}
}
