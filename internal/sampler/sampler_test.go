package sampler

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

type fixed float64

func (f fixed) Float64() float64 { return float64(f) }

type entry struct {
	name   string
	weight int
}

func byWeight(e entry) int { return e.weight }

func TestPickDistribution(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	entries := []entry{{"a", 1}, {"b", 3}}

	const draws = 10000
	second := 0
	for i := 0; i < draws; i++ {
		if Pick(rng, entries, byWeight).name == "b" {
			second++
		}
	}

	ratio := float64(second) / draws
	assert.InDelta(t, 0.75, ratio, 0.05)
}

func TestPickBoundaries(t *testing.T) {
	entries := []entry{{"a", 1}, {"b", 3}}

	assert.Equal(t, "a", Pick(fixed(0), entries, byWeight).name)
	assert.Equal(t, "a", Pick(fixed(0.249), entries, byWeight).name)
	assert.Equal(t, "b", Pick(fixed(0.25), entries, byWeight).name)
	assert.Equal(t, "b", Pick(fixed(0.999), entries, byWeight).name)
}

func TestPickZeroWeightsFallsBackToFirst(t *testing.T) {
	entries := []entry{{"a", 0}, {"b", 0}}
	assert.Equal(t, "a", Pick(fixed(0.7), entries, byWeight).name)

	negative := []entry{{"x", -2}, {"y", -1}}
	assert.Equal(t, "x", Pick(fixed(0.1), negative, byWeight).name)
}

func TestPickSkipsNonPositiveEntries(t *testing.T) {
	entries := []entry{{"dead", 0}, {"live", 5}}
	assert.Equal(t, "live", Pick(fixed(0), entries, byWeight).name)
}

func TestPickEmpty(t *testing.T) {
	assert.Equal(t, entry{}, Pick(fixed(0.5), nil, byWeight))
	assert.Equal(t, -1, Index[float64](fixed(0.5), nil))
}

func TestIndexFloatWeights(t *testing.T) {
	weights := []float64{0.5, 0.25, 0.25}
	assert.Equal(t, 0, Index(fixed(0.49), weights))
	assert.Equal(t, 1, Index(fixed(0.5), weights))
	assert.Equal(t, 2, Index(fixed(0.8), weights))
}

func TestPickAlwaysReturnsMember(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		weights := rapid.SliceOfN(rapid.IntRange(0, 50), 1, 20).Draw(t, "weights")
		u := rapid.Float64Range(0, 0.999999).Draw(t, "u")

		i := Index(fixed(u), weights)
		if i < 0 || i >= len(weights) {
			t.Fatalf("index %d out of range", i)
		}
		positive := false
		for _, w := range weights {
			positive = positive || w > 0
		}
		if positive && weights[i] == 0 {
			t.Fatalf("picked zero-weight entry %d from %v", i, weights)
		}
	})
}
