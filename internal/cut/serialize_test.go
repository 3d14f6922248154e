package cut_test

import (
	"context"
	"encoding/json"
	"testing"

	"splice/internal/cut"
)

// jsonCycle pushes a record through real JSON so the decoder's generic
// types (float64 numbers, []any shapes) reach Deserialize.
func jsonCycle(t *testing.T, record map[string]any) map[string]any {
	t.Helper()
	raw, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("marshal record: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal record: %v", err)
	}
	return out
}

func TestSerializeRoundTripCut(t *testing.T) {
	w := memWriter(t)
	c := withTemporal(t, mustCut(t, "utt1", 52.4), w, "alignment", arangeInt64(t, 131), 0.4)
	c = c.WithChannel(1).WithRecording(cut.Recording{ID: "rec1", SamplingRate: 16000})
	c, err := c.WithAttr("speaker", "A")
	if err != nil {
		t.Fatalf("WithAttr failed: %v", err)
	}
	c, err = c.WithAttr("snr", 17.5)
	if err != nil {
		t.Fatalf("WithAttr failed: %v", err)
	}

	restored, err := cut.Deserialize(jsonCycle(t, cut.Serialize(c)))
	if err != nil {
		t.Fatalf("Deserialize failed: %v", err)
	}
	if !cut.Equal(c, restored) {
		t.Fatalf("round trip changed the cut:\n  in:  %#v\n  out: %#v", c, restored)
	}

	// The restored cut must load the same frames as the original.
	ctx := context.Background()
	want, err := c.LoadAttr(ctx, "alignment")
	if err != nil {
		t.Fatalf("LoadAttr failed: %v", err)
	}
	got, err := restored.LoadAttr(ctx, "alignment")
	if err != nil {
		t.Fatalf("LoadAttr after round trip failed: %v", err)
	}
	if !got.Equal(want) {
		t.Fatal("round trip changed loaded frames")
	}
}

func TestSerializeRoundTripPadding(t *testing.T) {
	p, err := cut.NewPadding("pad1", 0.005)
	if err != nil {
		t.Fatalf("NewPadding failed: %v", err)
	}
	restored, err := cut.Deserialize(jsonCycle(t, cut.Serialize(p)))
	if err != nil {
		t.Fatalf("Deserialize failed: %v", err)
	}
	if !cut.Equal(p, restored) {
		t.Fatal("round trip changed the padding cut")
	}
	if restored.Duration() != 0.005 {
		t.Fatalf("duration = %v, want 0.005", restored.Duration())
	}
}

func TestSerializeRoundTripMixed(t *testing.T) {
	ctx := context.Background()
	w := memWriter(t)
	c := withTemporal(t, mustCut(t, "utt1", 52.4), w, "alignment", arangeInt64(t, 131), 0.4)
	padded, err := c.Pad(60.0, cut.WithPadValue("alignment", -1))
	if err != nil {
		t.Fatalf("Pad failed: %v", err)
	}

	restored, err := cut.Deserialize(jsonCycle(t, cut.Serialize(padded)))
	if err != nil {
		t.Fatalf("Deserialize failed: %v", err)
	}
	if !cut.Equal(padded, restored) {
		t.Fatal("round trip changed the mixed cut")
	}

	want, err := padded.LoadAttr(ctx, "alignment")
	if err != nil {
		t.Fatalf("LoadAttr failed: %v", err)
	}
	got, err := restored.LoadAttr(ctx, "alignment")
	if err != nil {
		t.Fatalf("LoadAttr after round trip failed: %v", err)
	}
	if !got.Equal(want) {
		t.Fatal("round trip changed loaded frames")
	}
	if got.Dim(0) != 150 {
		t.Fatalf("frames = %d, want 150", got.Dim(0))
	}
}

func TestDeserializeRejectsBadRecords(t *testing.T) {
	w := memWriter(t)
	c := withTemporal(t, mustCut(t, "utt1", 4), w, "labels", arangeInt64(t, 10), 0.4)
	good := cut.Serialize(c)

	cases := []struct {
		name   string
		mutate func(map[string]any)
	}{
		{"missing type", func(m map[string]any) { delete(m, "type") }},
		{"unknown type", func(m map[string]any) { m["type"] = "waveform" }},
		{"missing id", func(m map[string]any) { delete(m, "id") }},
		{"negative start", func(m map[string]any) { m["start"] = -1.0 }},
		{"zero duration", func(m map[string]any) { m["duration"] = 0.0 }},
		{"fractional channel", func(m map[string]any) { m["channel"] = 1.5 }},
		{"custom not a map", func(m map[string]any) { m["custom"] = "nope" }},
		{"unexpected key", func(m map[string]any) { m["loudness"] = 3.2 }},
	}
	for _, tc := range cases {
		record := jsonCycle(t, good)
		tc.mutate(record)
		if _, err := cut.Deserialize(record); err == nil {
			t.Errorf("%s: Deserialize accepted a bad record", tc.name)
		}
	}
}

func TestDeserializeRejectsBadMixedRecords(t *testing.T) {
	c := mustCut(t, "utt1", 4)
	padded, err := c.Pad(6.0)
	if err != nil {
		t.Fatalf("Pad failed: %v", err)
	}
	good := cut.Serialize(padded)

	cases := []struct {
		name   string
		mutate func(map[string]any)
	}{
		{"tracks not a list", func(m map[string]any) { m["tracks"] = "nope" }},
		{"single track", func(m map[string]any) { m["tracks"] = m["tracks"].([]any)[:1] }},
		{"negative offset", func(m map[string]any) {
			track := m["tracks"].([]any)[1].(map[string]any)
			track["offset"] = -0.5
		}},
		{"nested mixed", func(m map[string]any) {
			inner := jsonCycle(t, good)
			track := m["tracks"].([]any)[1].(map[string]any)
			track["cut"] = inner
		}},
	}
	for _, tc := range cases {
		record := jsonCycle(t, good)
		tc.mutate(record)
		if _, err := cut.Deserialize(record); err == nil {
			t.Errorf("%s: Deserialize accepted a bad record", tc.name)
		}
	}
}
