package service

import (
	"context"
	"strconv"
	"time"

	"github.com/samber/lo"

	"thermolog/internal/models"
	"thermolog/internal/repository"
)

// SampleWindow accumulates readings until the matching average is flushed.
type SampleWindow struct {
	values []float64
}

func (w *SampleWindow) Add(v float64) { w.values = append(w.values, v) }

func (w *SampleWindow) Len() int { return len(w.values) }

// Values returns a copy of the samples in arrival order.
func (w *SampleWindow) Values() []float64 {
	out := make([]float64, len(w.values))
	copy(out, w.values)
	return out
}

func (w *SampleWindow) Reset() { w.values = w.values[:0] }

// Mean returns the arithmetic mean, false when the window is empty.
func (w *SampleWindow) Mean() (float64, bool) {
	return Mean(w.values)
}

// Mean is sum/count; false for an empty slice.
func Mean(samples []float64) (float64, bool) {
	if len(samples) == 0 {
		return 0, false
	}
	return lo.Sum(samples) / float64(len(samples)), true
}

// FormatAverage renders a mean with six significant digits and a '.'
// decimal point: 22 -> "22", 21.666666 -> "21.6667".
func FormatAverage(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

// LogAverage appends "[now] - <mean>" to store. It writes nothing and
// returns false for an empty sample slice.
func LogAverage(ctx context.Context, store repository.LogStore, samples []float64, now time.Time) (bool, error) {
	mean, ok := Mean(samples)
	if !ok {
		return false, nil
	}
	if err := store.Append(ctx, models.LogEntry{Timestamp: now, Text: FormatAverage(mean)}); err != nil {
		return false, err
	}
	return true, nil
}
