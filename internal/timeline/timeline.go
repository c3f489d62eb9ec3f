// Package timeline keeps an ordered collection of spans together with the
// window that bounds all of them.
package timeline

import (
	"fmt"

	"timespan/internal/span"
)

// Timeline owns its spans by value, sorted by start. The bounds are the
// minimum start and maximum end over all spans; an empty timeline has none.
type Timeline struct {
	spans   []span.Span
	bounds  span.Span
	hasSpan bool
}

// New returns an empty timeline.
func New() *Timeline {
	return &Timeline{}
}

// Add copies r into the timeline, widens the bounds and re-sorts.
func (t *Timeline) Add(r span.Reader) {
	s := span.Of(r)
	t.spans = append(t.spans, s)
	t.widen(s)
	span.SortInPlace(t.spans)
}

func (t *Timeline) widen(s span.Span) {
	if !t.hasSpan {
		t.bounds, t.hasSpan = s, true
		return
	}
	t.bounds = t.bounds.Extend(s)
}

// Spans returns a copy of the spans in start order.
func (t *Timeline) Spans() []span.Span {
	out := make([]span.Span, len(t.spans))
	copy(out, t.spans)
	return out
}

// Len returns the number of spans.
func (t *Timeline) Len() int {
	return len(t.spans)
}

// Bounds returns the window covering every span. ok is false when the
// timeline is empty.
func (t *Timeline) Bounds() (bounds span.Span, ok bool) {
	return t.bounds, t.hasSpan
}

// Duration returns the length of the bounding window, or 0 when empty.
func (t *Timeline) Duration() int64 {
	if !t.hasSpan {
		return 0
	}
	return t.bounds.Duration()
}

// Merge returns a new timeline holding t's spans followed by every span of
// others. Spans are concatenated, not de-duplicated; the result is sorted
// and its bounds recomputed.
func (t *Timeline) Merge(others ...*Timeline) *Timeline {
	n := len(t.spans)
	for _, o := range others {
		n += len(o.spans)
	}

	out := &Timeline{spans: make([]span.Span, 0, n)}
	out.spans = append(out.spans, t.spans...)
	for _, o := range others {
		out.spans = append(out.spans, o.spans...)
	}
	span.SortInPlace(out.spans)
	for _, s := range out.spans {
		out.widen(s)
	}
	return out
}

// GenerateFrom builds count spans of the given duration separated by gap,
// walking forward from start.
func GenerateFrom(start, duration int64, count int, gap int64) (*Timeline, error) {
	if err := checkGenerate(duration, count); err != nil {
		return nil, err
	}
	t := New()
	for i := 0; i < count; i++ {
		s, err := span.New(start, start+duration)
		if err != nil {
			return nil, err
		}
		t.Add(s)
		start += duration + gap
	}
	return t, nil
}

// GenerateTo builds count spans of the given duration separated by gap,
// walking backward so that the latest span ends at end.
func GenerateTo(end, duration int64, count int, gap int64) (*Timeline, error) {
	if err := checkGenerate(duration, count); err != nil {
		return nil, err
	}
	t := New()
	for i := 0; i < count; i++ {
		s, err := span.New(end-duration, end)
		if err != nil {
			return nil, err
		}
		t.Add(s)
		end -= duration + gap
	}
	return t, nil
}

func checkGenerate(duration int64, count int) error {
	if duration < 0 {
		return fmt.Errorf("%w: duration %d is negative", span.ErrInvalidArgument, duration)
	}
	if count < 0 {
		return fmt.Errorf("%w: count %d is negative", span.ErrInvalidArgument, count)
	}
	return nil
}
