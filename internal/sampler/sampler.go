// Package sampler implements weighted random selection.
package sampler

// Source is the randomness a sampler draws from. *rand.Rand from math/rand/v2
// satisfies it.
type Source interface {
	Float64() float64
}

// Weight is any numeric weight type.
type Weight interface {
	~int | ~int32 | ~int64 | ~uint | ~uint32 | ~uint64 | ~float32 | ~float64
}

// Pick returns an entry with probability proportional to its weight.
//
// Entries must be non-empty with positive weights. If every weight is zero or
// negative the first entry is returned; an empty slice yields the zero value.
func Pick[T any, W Weight](src Source, entries []T, weight func(T) W) T {
	var zero T
	if len(entries) == 0 {
		return zero
	}

	var total float64
	for _, e := range entries {
		if w := float64(weight(e)); w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return entries[0]
	}

	r := src.Float64() * total
	last := entries[0]
	for _, e := range entries {
		w := float64(weight(e))
		if w <= 0 {
			continue
		}
		last = e
		r -= w
		if r < 0 {
			return e
		}
	}

	// rounding left r at or above zero
	return last
}

// Index is Pick over a plain weight slice, returning the chosen position.
func Index[W Weight](src Source, weights []W) int {
	idx := make([]int, len(weights))
	for i := range idx {
		idx[i] = i
	}
	if len(idx) == 0 {
		return -1
	}
	return Pick(src, idx, func(i int) W { return weights[i] })
}
