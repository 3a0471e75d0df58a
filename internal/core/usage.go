package core

import "math/rand/v2"

// The daily usage series is a display placeholder. It is not derived from the
// appliance list and no consumption or cost figure reads it.
const (
	SampleSeed = 42
	SampleDays = 30

	initialSampleMin  = 5.0
	initialSampleMax  = 15.0
	followupSampleMin = 1.0
	followupSampleMax = 5.0
)

// DailySample is one point of the synthetic daily usage series.
type DailySample struct {
	Day int
	KWh float64
}

type sampler struct {
	rng *rand.Rand
}

func newSampler() *sampler {
	return &sampler{rng: rand.New(rand.NewPCG(SampleSeed, SampleSeed))}
}

// fill reseeds the generator and produces the initial series for days 1..n.
func (s *sampler) fill(n int) []DailySample {
	s.rng = rand.New(rand.NewPCG(SampleSeed, SampleSeed))
	out := make([]DailySample, 0, n)
	for day := 1; day <= n; day++ {
		out = append(out, DailySample{Day: day, KWh: s.uniform(initialSampleMin, initialSampleMax)})
	}
	return out
}

// next extends a non-empty series by one point.
func (s *sampler) next(series []DailySample) DailySample {
	return DailySample{Day: len(series) + 1, KWh: s.uniform(followupSampleMin, followupSampleMax)}
}

func (s *sampler) uniform(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}
