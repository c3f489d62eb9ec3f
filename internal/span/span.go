// Package span implements a closed interval [start, end] on an integer
// (Unix seconds) timeline and the algebra built on top of it: overlap and
// gap detection, splitting, merging and offsetting, plus aggregate helpers
// over slices of spans.
//
// Span is an immutable value; every operation that changes the bounds
// returns a new Span. Mutable offers the same algebra with in-place
// Merge/Offset for callers that want it.
package span

import (
	"fmt"
	"iter"
	"time"
)

// Reader is the read-only view of an interval. Span, *Mutable and the
// schedule types all satisfy it, so any of them can be passed where the
// algebra expects "another interval".
type Reader interface {
	Start() int64
	End() int64
}

// Span is an immutable closed interval [start, end] with start <= end.
// The zero value is the valid span [0, 0].
type Span struct {
	start int64
	end   int64
}

// New returns the span [start, end]. It fails with ErrInvalidRange when
// start > end, or when end-start does not fit in an int64.
func New(start, end int64) (Span, error) {
	if start > end {
		return Span{}, fmt.Errorf("%w: start=%d end=%d", ErrInvalidRange, start, end)
	}
	if end-start < 0 {
		return Span{}, fmt.Errorf("%w: duration of [%d, %d] overflows int64", ErrInvalidRange, start, end)
	}
	return Span{start: start, end: end}, nil
}

// FromTime builds a span from two wall-clock values using their Unix
// seconds. Sub-second precision is dropped.
func FromTime(start, end time.Time) (Span, error) {
	return New(start.Unix(), end.Unix())
}

// Of copies the bounds of any Reader into a Span.
func Of(r Reader) Span {
	return Span{start: r.Start(), end: r.End()}
}

func (s Span) Start() int64 { return s.start }
func (s Span) End() int64   { return s.end }

// Duration returns end - start. It is never negative.
func (s Span) Duration() int64 {
	return s.end - s.start
}

// Middle returns (start+end)/2 using Go integer division, which truncates
// toward zero: [1,4] has middle 2 and [-5,0] has middle -2.
func (s Span) Middle() int64 {
	sum := s.start + s.end
	if (s.start >= 0) != (sum >= 0) && (s.start >= 0) == (s.end >= 0) {
		// start+end overflowed; both bounds share a sign here.
		return s.start/2 + s.end/2 + (s.start%2+s.end%2)/2
	}
	return sum / 2
}

// FractionDuration returns Duration()/n as a float. Negative n is rejected.
// n == 0 is accepted and yields the IEEE result of the division (+Inf, or
// NaN for an empty span).
func (s Span) FractionDuration(n int) (float64, error) {
	if n < 0 {
		return 0, fmt.Errorf("%w: fraction count %d is negative", ErrInvalidArgument, n)
	}
	return float64(s.Duration()) / float64(n), nil
}

// Equal reports whether both spans have the same bounds.
func (s Span) Equal(other Span) bool {
	return s == other
}

// Primitives returns the bounds as a (start, end) pair.
func (s Span) Primitives() (int64, int64) {
	return s.start, s.end
}

// Overlaps reports whether s and other share at least one point. Touching
// endpoints count as overlapping.
func (s Span) Overlaps(other Reader) bool {
	return overlaps(s, other)
}

func overlaps(a, b Reader) bool {
	if a.Start() < b.Start() {
		return b.Start() <= a.End()
	}
	return a.Start() <= b.End()
}

// Gap returns the distance between the closer edges of s and other, or 0
// when they are identical or overlap.
func (s Span) Gap(other Reader) int64 {
	if s.start == other.Start() && s.end == other.End() {
		return 0
	}
	if overlaps(s, other) {
		return 0
	}
	if s.start > other.Start() {
		return s.start - other.End()
	}
	return other.Start() - s.end
}

// HasGap reports whether Gap(other) is positive.
func (s Span) HasGap(other Reader) bool {
	return s.Gap(other) > 0
}

// Gaps yields Gap to each of others in order.
func (s Span) Gaps(others ...Reader) iter.Seq[int64] {
	return func(yield func(int64) bool) {
		for _, o := range others {
			if !yield(s.Gap(o)) {
				return
			}
		}
	}
}

// Contains reports whether start <= ts <= end.
func (s Span) Contains(ts int64) bool {
	return s.start <= ts && ts <= s.end
}

func (s Span) StartsAfter(ts int64) bool  { return s.start > ts }
func (s Span) StartsBefore(ts int64) bool { return s.start < ts }
func (s Span) EndsAfter(ts int64) bool    { return s.end > ts }
func (s Span) EndsBefore(ts int64) bool   { return s.end < ts }

// SplitAt cuts s into [start, ts] and [ts, end].
func (s Span) SplitAt(ts int64) (Span, Span, error) {
	if !s.Contains(ts) {
		return Span{}, Span{}, fmt.Errorf("%w: %d not in [%d, %d]", ErrOutOfRange, ts, s.start, s.end)
	}
	return Span{start: s.start, end: ts}, Span{start: ts, end: s.end}, nil
}

// SplitInto cuts s into n consecutive parts of FractionDuration(n) each.
// Bounds are accumulated as floats and truncated to int64, so when the
// duration is not divisible by n the last part may end short of End().
func (s Span) SplitInto(n int) ([]Span, error) {
	if n < 2 {
		return nil, fmt.Errorf("%w: split count %d is below 2", ErrInvalidArgument, n)
	}
	step, err := s.FractionDuration(n)
	if err != nil {
		return nil, err
	}

	parts := make([]Span, 0, n)
	cur := float64(s.start)
	for i := 0; i < n; i++ {
		next := cur + step
		parts = append(parts, Span{start: int64(cur), end: int64(next)})
		cur = next
	}
	return parts, nil
}

// Merge returns the smallest span covering s and every one of others.
// At least one other span is required.
func (s Span) Merge(others ...Reader) (Span, error) {
	if len(others) == 0 {
		return Span{}, fmt.Errorf("%w: merge needs at least one span", ErrInvalidArgument)
	}
	out := s
	for _, o := range others {
		out = out.Extend(o)
	}
	return out, nil
}

// Extend returns the smallest span covering both s and other.
func (s Span) Extend(other Reader) Span {
	return Span{
		start: min(s.start, other.Start()),
		end:   max(s.end, other.End()),
	}
}

// Offset shifts both bounds by delta. The caller keeps the result within
// int64.
func (s Span) Offset(delta int64) Span {
	return Span{start: s.start + delta, end: s.end + delta}
}

// Every returns the timestamps start, start+step, ... strictly before end.
func (s Span) Every(step int64) ([]int64, error) {
	if step <= 0 {
		return nil, fmt.Errorf("%w: step %d must be positive", ErrInvalidArgument, step)
	}
	out := make([]int64, 0, s.Duration()/step+1)
	for ts := s.start; ts < s.end; ts += step {
		out = append(out, ts)
	}
	return out, nil
}
