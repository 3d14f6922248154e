package manifest

import "math"

// secondsPrecision is the decimal precision used for all duration
// arithmetic. Durations and frame shifts come out of float division
// (duration / num_frames), so residuals like 4.9 - 4.895 carry binary
// noise well below this precision; rounding to it first makes frame
// counts stable across equivalent inputs.
const secondsPrecision = 1e8

// RoundSeconds normalizes a duration or offset to 8 decimal places,
// ties away from zero.
func RoundSeconds(seconds float64) float64 {
	return math.Round(seconds*secondsPrecision) / secondsPrecision
}

// FrameCount converts a time span to a frame count as round(seconds /
// frameShift), half up. The ratio is normalized with RoundSeconds first:
// 5.0 / 0.4 evaluates to 12.499999999999998 in binary, which must count
// as 12.5 and round to 13, not truncate to 12. Every index computation
// in this package uses this function so windows derived in different
// code paths always agree.
func FrameCount(seconds, frameShift float64) int {
	return int(math.Round(RoundSeconds(seconds / frameShift)))
}

func clampFrame(index, frames int) int {
	if index < 0 {
		return 0
	}
	if index > frames {
		return frames
	}
	return index
}
