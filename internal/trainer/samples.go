package trainer

import (
	"math/rand"
	"time"

	"github.com/traceai/engine/internal/event"
	"github.com/traceai/engine/internal/feature"
)

// #region sample-building

// BuildSamples expands labeled students into per-domain training samples.
// Every student contributes one sample per domain; a domain with no events
// carries the extractor's no-signal sentinel and the student's label, so
// quiet domains learn what uneventful histories look like.
func BuildSamples(students []LabeledStudent, x *feature.Extractor, now time.Time) []Sample {
	samples := make([]Sample, 0, len(students)*len(event.Domains))
	for _, s := range students {
		for _, d := range event.Domains {
			samples = append(samples, Sample{
				Features: x.Extract(s.Events, d, now),
				Domain:   d,
				Label:    s.Label,
			})
		}
	}
	return samples
}

// Split shuffles samples with the given seed and cuts off holdoutFrac of
// them for evaluation. The same seed always produces the same split.
func Split(samples []Sample, holdoutFrac float64, seed int64) (train, holdout []Sample) {
	shuffled := make([]Sample, len(samples))
	copy(shuffled, samples)
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	cut := int(float64(len(shuffled)) * holdoutFrac)
	if cut < 1 && len(shuffled) > 1 {
		cut = 1
	}
	return shuffled[cut:], shuffled[:cut]
}

// #endregion sample-building
