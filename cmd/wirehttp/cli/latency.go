package cli

import (
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

const (
	minLatencyUs = 1
	maxLatencyUs = 60_000_000
)

// latencies records durations in microseconds, 1us to 60s.
type latencies struct {
	h *hdrhistogram.Histogram
}

type latencySummary struct {
	Count int64
	P50   time.Duration
	P90   time.Duration
	P99   time.Duration
	Max   time.Duration
}

func newLatencies() *latencies {
	return &latencies{h: hdrhistogram.New(minLatencyUs, maxLatencyUs, 3)}
}

func (l *latencies) record(d time.Duration) {
	us := min(max(d.Microseconds(), minLatencyUs), maxLatencyUs)
	_ = l.h.RecordValue(us)
}

func (l *latencies) summary() latencySummary {
	at := func(q float64) time.Duration {
		return time.Duration(l.h.ValueAtQuantile(q)) * time.Microsecond
	}
	return latencySummary{
		Count: l.h.TotalCount(),
		P50:   at(50),
		P90:   at(90),
		P99:   at(99),
		Max:   time.Duration(l.h.Max()) * time.Microsecond,
	}
}
