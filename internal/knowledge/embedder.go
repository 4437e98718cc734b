package knowledge

import (
	"context"
	"hash/fnv"
	"math"
	"strings"

	"github.com/viterin/vek/vek32"
)

// #region local-embedder

// EmbeddingDimension is the fixed width of locally produced embeddings.
const EmbeddingDimension = 256

// LocalEmbedder is a deterministic feature-hashing encoder: lowercase token
// features plus character trigram features, signed-hashed into a fixed-width
// vector and L2-normalized. It needs no external service, which keeps the
// serving path self-contained; any Embedder may replace it.
type LocalEmbedder struct {
	dimension int
}

// NewLocalEmbedder creates an embedder with the default dimension.
func NewLocalEmbedder() *LocalEmbedder {
	return &LocalEmbedder{dimension: EmbeddingDimension}
}

// Dimension returns the embedding width.
func (l *LocalEmbedder) Dimension() int {
	return l.dimension
}

// Embed encodes text. Never fails; empty text yields the zero vector.
func (l *LocalEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, l.dimension)

	tokens := strings.Fields(strings.ToLower(text))
	trigrams := charNgrams(strings.ToLower(text), 3)

	addHashedFeatures(vec, tokens, 0.6)
	addHashedFeatures(vec, trigrams, 0.4)

	normSq := vek32.Dot(vec, vec)
	if normSq > 0 {
		vek32.MulNumber_Inplace(vec, float32(1/math.Sqrt(float64(normSq))))
	}
	return vec, nil
}

// #endregion local-embedder

// #region features

// addHashedFeatures folds each feature into the vector at a hashed index with
// a hash-derived sign, scaled so feature count does not dominate magnitude.
func addHashedFeatures(vec []float32, features []string, weight float64) {
	if len(features) == 0 {
		return
	}
	w := float32(weight / math.Sqrt(float64(len(features))))
	for _, f := range features {
		h := fnv.New64a()
		h.Write([]byte(f))
		sum := h.Sum64()
		idx := int(sum % uint64(len(vec)))
		sign := float32(1)
		if sum&(1<<63) != 0 {
			sign = -1
		}
		vec[idx] += w * sign
	}
}

func charNgrams(text string, n int) []string {
	runes := []rune(text)
	if len(runes) < n {
		return nil
	}
	out := make([]string, 0, len(runes)-n+1)
	for i := 0; i+n <= len(runes); i++ {
		out = append(out, string(runes[i:i+n]))
	}
	return out
}

// #endregion features
