package manifest_test

import (
	"testing"

	"splice/internal/manifest"
)

func TestFrameCountRoundsHalfUpAfterNormalizing(t *testing.T) {
	cases := []struct {
		name       string
		seconds    float64
		frameShift float64
		want       int
	}{
		// 5.0 / 0.4 evaluates below 12.5 in binary; normalizing must
		// recover the tie and round it up.
		{"binary noise at a tie", 5.0, 0.4, 13},
		{"exact multiple", 4.8, 0.4, 12},
		{"just below half", 4.95, 0.4, 12},
		{"just above half", 5.05, 0.4, 13},
		{"zero span", 0, 0.4, 0},
		// Sub-frame residual from multi-cut padding: 0.005 s at the
		// per-cut shift 4.895/121 is an eighth of a frame, so no fill.
		{"sub frame residual", 0.005, 4.895 / 121, 0},
		{"one frame residual", 0.0405, 4.895 / 121, 1},
	}
	for _, tc := range cases {
		if got := manifest.FrameCount(tc.seconds, tc.frameShift); got != tc.want {
			t.Errorf("%s: FrameCount(%v, %v) = %d, want %d",
				tc.name, tc.seconds, tc.frameShift, got, tc.want)
		}
	}
}

func TestFrameCountIsExactOnFrameMultiples(t *testing.T) {
	// k steps of the frame shift must always count as exactly k frames,
	// even when k*shift accumulates binary error.
	for _, shift := range []float64{0.3, 0.4, 4.9 / 121, 4.895 / 121} {
		for k := 0; k <= 121; k++ {
			if got := manifest.FrameCount(float64(k)*shift, shift); got != k {
				t.Fatalf("FrameCount(%d*%v, %v) = %d, want %d", k, shift, shift, got, k)
			}
		}
	}
}

func TestRoundSecondsRecoversResiduals(t *testing.T) {
	if got := manifest.RoundSeconds(4.9 - 4.895); got != 0.005 {
		t.Fatalf("RoundSeconds(4.9-4.895) = %v, want 0.005", got)
	}
	if got := manifest.RoundSeconds(1.0 / 3.0); got != 0.33333333 {
		t.Fatalf("RoundSeconds(1/3) = %v, want 0.33333333", got)
	}
	if got := manifest.RoundSeconds(-0.0050000000000000044); got != -0.005 {
		t.Fatalf("RoundSeconds(negative residual) = %v, want -0.005", got)
	}
}
