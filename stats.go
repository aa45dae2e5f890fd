package jsonleaf

import (
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"github.com/reoring/jsonleaf/internal/clock"
)

// Stats observes a stream of emitted objects: how many, how fast, and a
// digest of the bytes written for them. It is not safe for concurrent use.
type Stats struct {
	RunID       string
	Count       int
	First       time.Time
	Last        time.Time
	MaxInterval time.Duration
	Bytes       int64

	onDone func(StatsReport)
	h      *xxhash.Digest
}

// NewStats starts the clock. onDone, when not nil, receives the report from
// Done.
func NewStats(onDone func(StatsReport)) *Stats {
	now := clock.Now()
	return &Stats{
		RunID:  uuid.NewString(),
		First:  now,
		Last:   now,
		onDone: onDone,
		h:      xxhash.New(),
	}
}

// Observe records one emitted object.
func (s *Stats) Observe(any) {
	now := clock.Now()
	if d := now.Sub(s.Last); d > s.MaxInterval {
		s.MaxInterval = d
	}
	s.Last = now
	s.Count++
}

// Write feeds output bytes into the digest, so Stats can sit in an
// io.MultiWriter next to the real output.
func (s *Stats) Write(p []byte) (int, error) {
	s.Bytes += int64(len(p))
	return s.h.Write(p)
}

// TotalTime is the time between the start and the last observed object.
func (s *Stats) TotalTime() time.Duration { return s.Last.Sub(s.First) }

// AverageInterval is TotalTime divided by Count, zero when nothing was seen.
func (s *Stats) AverageInterval() time.Duration {
	if s.Count == 0 {
		return 0
	}
	return s.TotalTime() / time.Duration(s.Count)
}

// StatsReport is a snapshot of Stats.
type StatsReport struct {
	RunID           string        `json:"run_id"`
	Count           int           `json:"count"`
	MaxInterval     time.Duration `json:"max_interval"`
	TotalTime       time.Duration `json:"total_time"`
	AverageInterval time.Duration `json:"average_interval"`
	Bytes           int64         `json:"bytes"`
	Digest          string        `json:"digest,omitempty"`
}

// Report returns a snapshot.
func (s *Stats) Report() StatsReport {
	r := StatsReport{
		RunID:           s.RunID,
		Count:           s.Count,
		MaxInterval:     s.MaxInterval,
		TotalTime:       s.TotalTime(),
		AverageInterval: s.AverageInterval(),
		Bytes:           s.Bytes,
	}
	if s.Bytes > 0 {
		r.Digest = fmt.Sprintf("%016x", s.h.Sum64())
	}
	return r
}

// Done hands the final report to the observer and returns it.
func (s *Stats) Done() StatsReport {
	r := s.Report()
	if s.onDone != nil {
		s.onDone(r)
	}
	return r
}

// Fields renders the report with millisecond strings.
func (r StatsReport) Fields() map[string]any {
	ms := func(d time.Duration) string {
		return fmt.Sprintf("%.3f ms", float64(d)/float64(time.Millisecond))
	}
	f := map[string]any{
		"run_id":           r.RunID,
		"count":            r.Count,
		"max_interval":     ms(r.MaxInterval),
		"total_time":       ms(r.TotalTime),
		"average_interval": ms(r.AverageInterval),
		"bytes":            r.Bytes,
	}
	if r.Digest != "" {
		f["digest"] = r.Digest
	}
	return f
}
