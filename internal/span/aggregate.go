package span

import (
	"cmp"
	"fmt"
	"slices"
)

// Found is a FindBetween match together with its index in the candidate slice.
type Found[S Reader] struct {
	Index int
	Span  S
}

// Sort returns a copy of spans stably ordered by start. The input slice is
// left untouched.
func Sort[S Reader](spans []S) []S {
	out := slices.Clone(spans)
	SortInPlace(out)
	return out
}

// SortInPlace stably orders spans by start.
func SortInPlace[S Reader](spans []S) {
	slices.SortStableFunc(spans, func(a, b S) int {
		return cmp.Compare(a.Start(), b.Start())
	})
}

// SumDurations adds up the duration of every span.
func SumDurations[S Reader](spans ...S) int64 {
	var sum int64
	for _, s := range spans {
		sum += s.End() - s.Start()
	}
	return sum
}

// SumGaps adds up the gap between each adjacent pair in input order. The
// input is not sorted first.
func SumGaps[S Reader](spans ...S) int64 {
	var sum int64
	for i := 0; i+1 < len(spans); i++ {
		sum += Of(spans[i]).Gap(spans[i+1])
	}
	return sum
}

// FindBetween returns every candidate overlapping [a.start, b.start], in
// input order and tagged with its original index.
func FindBetween[S Reader](a, b Reader, candidates []S) ([]Found[S], error) {
	window, err := New(a.Start(), b.Start())
	if err != nil {
		return nil, err
	}

	var out []Found[S]
	for i, c := range candidates {
		if window.Overlaps(c) {
			out = append(out, Found[S]{Index: i, Span: c})
		}
	}
	return out, nil
}

// FindMostDurable returns the span with the greatest duration. On ties the
// leftmost one wins.
func FindMostDurable[S Reader](spans ...S) (S, error) {
	var best S
	if len(spans) == 0 {
		return best, fmt.Errorf("%w: no spans given", ErrInvalidArgument)
	}

	best = spans[0]
	bestDur := best.End() - best.Start()
	for _, s := range spans[1:] {
		if d := s.End() - s.Start(); d > bestDur {
			best, bestDur = s, d
		}
	}
	return best, nil
}

// IsBetween reports whether target lies in the stretch after a ends and
// before b starts.
func IsBetween(a, b, target Reader) bool {
	return target.Start() >= a.End() && target.End() <= b.Start()
}
