package spreadsheet

import "math"

// Fixed progress checkpoints. Data-phase progress never exceeds
// ProgressDataCap so the last points stay reserved for finalization.
const (
	ProgressStart   = 0
	ProgressHeader  = 2
	ProgressDataCap = 97
	ProgressBuilt   = 98
	ProgressSaving  = 99
	ProgressDone    = 100
)

// markStep is the fraction of the total row count between data-phase events.
const markStep = 0.1

// ProgressEvent carries the completion percentage of a generation run.
// One instance is created per Generate call and re-emitted with updated values.
type ProgressEvent struct {
	Progress float64
}

// ProgressFunc observes progress. Returning an error aborts generation.
type ProgressFunc func(e *ProgressEvent) error

// dataProgress converts a decile mark into a percentage rounded to two
// decimals and capped at ProgressDataCap.
func dataProgress(mark float64) float64 {
	p := math.Round(mark*100*100) / 100
	if p >= ProgressDataCap {
		return ProgressDataCap
	}
	return p
}
