package timeline

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"timespan/internal/span"
)

var day = time.Date(2021, time.October, 28, 0, 0, 0, 0, time.UTC)

func at(hh, mm int) int64 {
	return day.Add(time.Duration(hh)*time.Hour + time.Duration(mm)*time.Minute).Unix()
}

func sp(t *testing.T, from, to int64) span.Span {
	t.Helper()
	s, err := span.New(from, to)
	if err != nil {
		t.Fatalf("span.New: %v", err)
	}
	return s
}

func TestEmptyTimeline(t *testing.T) {
	tl := New()
	if tl.Len() != 0 || tl.Duration() != 0 {
		t.Fatalf("empty timeline: len=%d duration=%d", tl.Len(), tl.Duration())
	}
	if _, ok := tl.Bounds(); ok {
		t.Fatal("empty timeline reported bounds")
	}
}

func TestAddTracksBounds(t *testing.T) {
	tl := New()
	tl.Add(sp(t, 100, 200))
	if got := tl.Duration(); got != 100 {
		t.Fatalf("Duration = %d, want 100", got)
	}

	tl.Add(sp(t, 50, 80))
	tl.Add(sp(t, 150, 300))

	bounds, ok := tl.Bounds()
	if !ok || !bounds.Equal(sp(t, 50, 300)) {
		t.Fatalf("Bounds = %+v, %v", bounds, ok)
	}
	want := []span.Span{sp(t, 50, 80), sp(t, 100, 200), sp(t, 150, 300)}
	if diff := cmp.Diff(want, tl.Spans()); diff != "" {
		t.Fatalf("Spans -want/+got:\n%s", diff)
	}
}

func TestBoundsAtTimestampZero(t *testing.T) {
	tl := New()
	tl.Add(sp(t, 0, 10))
	tl.Add(sp(t, 5, 20))

	bounds, ok := tl.Bounds()
	if !ok || bounds.Start() != 0 || bounds.End() != 20 {
		t.Fatalf("Bounds = %+v, %v; want [0, 20]", bounds, ok)
	}

	neg := New()
	neg.Add(sp(t, -30, -10))
	if bounds, _ := neg.Bounds(); bounds.Start() != -30 || bounds.End() != -10 {
		t.Fatalf("negative Bounds = %+v", bounds)
	}
}

func TestAddAcceptsAnyReader(t *testing.T) {
	m, _ := span.NewMutable(10, 20)
	tl := New()
	tl.Add(m)
	m.Offset(100)

	if got := tl.Spans()[0]; got.Start() != 10 {
		t.Fatalf("timeline aliased the mutable span: %+v", got)
	}
}

func TestMerge(t *testing.T) {
	first := sp(t, at(6, 0), at(7, 0))
	last := sp(t, at(11, 0), at(12, 0))

	a := New()
	a.Add(first)
	a.Add(sp(t, at(9, 0), at(10, 0)))

	b := New()
	b.Add(sp(t, at(7, 0), at(8, 0)))
	b.Add(last)

	merged := New().Merge(a, b)
	spans := merged.Spans()
	if len(spans) != 4 {
		t.Fatalf("merged len = %d, want 4", len(spans))
	}
	if !spans[0].Equal(first) || !spans[3].Equal(last) {
		t.Fatalf("merged order = %+v", spans)
	}
	bounds, ok := merged.Bounds()
	if !ok || bounds.Start() != first.Start() || bounds.End() != last.End() {
		t.Fatalf("merged Bounds = %+v", bounds)
	}
	if a.Len() != 2 || b.Len() != 2 {
		t.Fatal("Merge modified its inputs")
	}
}

func TestMergeKeepsDuplicates(t *testing.T) {
	s := sp(t, 10, 20)
	a := New()
	a.Add(s)
	b := New()
	b.Add(s)

	if got := a.Merge(b).Len(); got != 2 {
		t.Fatalf("merged len = %d, want 2", got)
	}
	if got := a.Merge().Len(); got != 1 {
		t.Fatalf("Merge() len = %d, want 1", got)
	}
}

func TestGenerateFrom(t *testing.T) {
	start := at(9, 0)
	tl, err := GenerateFrom(start, 3600, 5, 1800)
	if err != nil {
		t.Fatalf("GenerateFrom: %v", err)
	}
	spans := tl.Spans()
	if len(spans) != 5 {
		t.Fatalf("len = %d, want 5", len(spans))
	}
	if spans[0].Start() != start {
		t.Fatalf("first start = %d, want %d", spans[0].Start(), start)
	}
	if got := span.SumGaps(spans...); got != 4*1800 {
		t.Fatalf("SumGaps = %d", got)
	}
	if got := spans[4].End(); got != start+5*3600+4*1800 {
		t.Fatalf("last end = %d", got)
	}
}

func TestGenerateTo(t *testing.T) {
	end := at(9, 0)
	tl, err := GenerateTo(end, 3600, 5, 1800)
	if err != nil {
		t.Fatalf("GenerateTo: %v", err)
	}
	spans := tl.Spans()
	if len(spans) != 5 {
		t.Fatalf("len = %d, want 5", len(spans))
	}
	if spans[4].End() != end {
		t.Fatalf("last end = %d, want %d", spans[4].End(), end)
	}
	for i := 1; i < len(spans); i++ {
		if spans[i-1].Start() >= spans[i].Start() {
			t.Fatalf("spans not ascending at %d", i)
		}
	}
	if got := spans[0].Start(); got != end-5*3600-4*1800 {
		t.Fatalf("first start = %d", got)
	}
}

func TestGenerateRejectsNegativeInput(t *testing.T) {
	if _, err := GenerateFrom(0, -1, 3, 0); !errors.Is(err, span.ErrInvalidArgument) {
		t.Fatalf("negative duration error = %v", err)
	}
	if _, err := GenerateTo(0, 10, -1, 0); !errors.Is(err, span.ErrInvalidArgument) {
		t.Fatalf("negative count error = %v", err)
	}
	tl, err := GenerateFrom(0, 10, 0, 0)
	if err != nil || tl.Len() != 0 {
		t.Fatalf("zero count = %v, %v", tl, err)
	}
}
