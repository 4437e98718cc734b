package knowledge

import (
	"context"

	"github.com/traceai/engine/internal/event"
)

// #region embedder-interface

// Embedder abstracts the embedding capability so the retriever can be tested
// without the real encoder. Implementations must be deterministic (same text
// → same vector) with a fixed dimension across calls.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// #endregion embedder-interface

// #region document

// Document is one passage of domain guidance with its precomputed embedding.
// The corpus is static: loaded once at process start, read-only during serving.
type Document struct {
	Domain    event.Domain
	Text      string
	Embedding []float32
}

// #endregion document

// #region config

// RetrieverConfig holds retrieval limits.
type RetrieverConfig struct {
	TopK int `koanf:"top_k"` // default result count when the caller passes k <= 0
}

// DefaultRetrieverConfig returns sensible defaults.
func DefaultRetrieverConfig() RetrieverConfig {
	return RetrieverConfig{
		TopK: 3,
	}
}

// #endregion config
