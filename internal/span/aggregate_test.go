package span

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSortIsStableAndPure(t *testing.T) {
	a := mustSpan(t, 30, 40)
	b := mustSpan(t, 10, 20)
	c := mustSpan(t, 10, 15) // same start as b; must stay after it
	d := mustSpan(t, 0, 5)
	in := []Span{a, b, c, d}

	got := Sort(in)
	want := []Span{d, b, c, a}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Sort -want/+got:\n%s", diff)
	}
	if diff := cmp.Diff([]Span{a, b, c, d}, in); diff != "" {
		t.Fatalf("Sort modified its input:\n%s", diff)
	}
	if diff := cmp.Diff(got, Sort(got)); diff != "" {
		t.Fatalf("Sort is not idempotent:\n%s", diff)
	}
}

func TestSortHandlesEmpty(t *testing.T) {
	if got := Sort[Span](nil); len(got) != 0 {
		t.Fatalf("Sort(nil) = %v", got)
	}
}

func TestSumDurations(t *testing.T) {
	spans := []Span{
		mustSpan(t, at(8, 0), at(12, 0)),
		mustSpan(t, at(13, 0), at(17, 0)),
	}
	if got := SumDurations(spans...); got != 28800 {
		t.Fatalf("SumDurations = %d, want 28800", got)
	}
	if got := SumDurations[Span](); got != 0 {
		t.Fatalf("SumDurations() = %d, want 0", got)
	}
}

func TestSumGaps(t *testing.T) {
	spans := []Span{
		mustSpan(t, at(9, 0), at(10, 0)),
		mustSpan(t, at(11, 0), at(12, 0)),
		mustSpan(t, at(14, 0), at(15, 0)),
	}
	if got := SumGaps(spans...); got != 10800 {
		t.Fatalf("SumGaps = %d, want 10800", got)
	}
	if got := SumGaps(spans[0]); got != 0 {
		t.Fatalf("SumGaps(single) = %d, want 0", got)
	}

	// Input order is used as-is: [14-15] then [9-10] then [11-12].
	unsorted := []Span{spans[2], spans[0], spans[1]}
	if got := SumGaps(unsorted...); got != 4*3600+3600 {
		t.Fatalf("SumGaps(unsorted) = %d", got)
	}
}

func TestFindBetween(t *testing.T) {
	a := mustSpan(t, at(9, 0), at(10, 0))
	b := mustSpan(t, at(16, 0), at(17, 0))
	candidates := []Span{
		mustSpan(t, at(11, 0), at(12, 0)),
		mustSpan(t, at(12, 0), at(13, 0)),
		mustSpan(t, at(18, 0), at(19, 0)),
		mustSpan(t, at(13, 0), at(14, 0)),
	}

	found, err := FindBetween(a, b, candidates)
	if err != nil {
		t.Fatalf("FindBetween: %v", err)
	}
	want := []Found[Span]{
		{Index: 0, Span: candidates[0]},
		{Index: 1, Span: candidates[1]},
		{Index: 3, Span: candidates[3]},
	}
	if diff := cmp.Diff(want, found); diff != "" {
		t.Fatalf("FindBetween -want/+got:\n%s", diff)
	}

	if _, err := FindBetween(b, a, candidates); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("reversed FindBetween error = %v, want ErrInvalidRange", err)
	}
}

func TestFindMostDurable(t *testing.T) {
	spans := []Span{
		mustSpan(t, at(11, 0), at(12, 0)),
		mustSpan(t, at(12, 0), at(14, 0)),
		mustSpan(t, at(14, 0), at(17, 0)),
	}
	got, err := FindMostDurable(spans...)
	if err != nil {
		t.Fatalf("FindMostDurable: %v", err)
	}
	if !got.Equal(spans[2]) {
		t.Fatalf("FindMostDurable = %v, want the 3h span", got)
	}

	tied := []Span{
		mustSpan(t, at(8, 0), at(9, 0)),
		mustSpan(t, at(9, 0), at(12, 0)),
		mustSpan(t, at(13, 0), at(16, 0)),
	}
	got, err = FindMostDurable(tied...)
	if err != nil {
		t.Fatalf("FindMostDurable: %v", err)
	}
	if !got.Equal(tied[1]) {
		t.Fatalf("tie resolved to %v, want the leftmost 3h span", got)
	}

	if _, err := FindMostDurable[Span](); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("empty FindMostDurable error = %v", err)
	}
}

func TestIsBetween(t *testing.T) {
	a := mustSpan(t, at(11, 0), at(12, 0))
	b := mustSpan(t, at(14, 0), at(17, 0))

	if !IsBetween(a, b, mustSpan(t, at(12, 0), at(14, 0))) {
		t.Fatal("expected 12:00-14:00 to lie between")
	}
	if IsBetween(a, b, mustSpan(t, at(11, 30), at(13, 0))) {
		t.Fatal("span overlapping a should not lie between")
	}
}

func TestAggregatesAcceptMutable(t *testing.T) {
	m1, _ := NewMutable(0, 10)
	m2, _ := NewMutable(20, 50)
	if got := SumDurations(m1, m2); got != 40 {
		t.Fatalf("SumDurations(mutable) = %d", got)
	}
	best, err := FindMostDurable(m1, m2)
	if err != nil || best != m2 {
		t.Fatalf("FindMostDurable(mutable) = %v, %v", best, err)
	}
}
