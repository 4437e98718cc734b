package knowledge

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/viterin/vek/vek32"

	"github.com/traceai/engine/internal/event"
)

// #region retriever

// Retriever answers top-k similarity queries over the static per-domain
// corpus. The corpus is embedded once at construction; no mutation path is
// exposed at serving time.
type Retriever struct {
	embedder Embedder
	config   RetrieverConfig
	docs     map[event.Domain][]Document
}

// NewRetriever embeds the built-in corpus with the given embedder.
func NewRetriever(ctx context.Context, embedder Embedder, config RetrieverConfig) (*Retriever, error) {
	docs := make(map[event.Domain][]Document, len(event.Domains))
	for _, d := range event.Domains {
		texts := CorpusTexts(d)
		domainDocs := make([]Document, 0, len(texts))
		for _, text := range texts {
			emb, err := embedder.Embed(ctx, text)
			if err != nil {
				return nil, fmt.Errorf("embed corpus for %s: %w", d, err)
			}
			domainDocs = append(domainDocs, Document{Domain: d, Text: text, Embedding: emb})
		}
		docs[d] = domainDocs
	}
	return &Retriever{embedder: embedder, config: config, docs: docs}, nil
}

// #endregion retriever

// #region retrieve

// Retrieve returns the k corpus documents of the domain most similar to the
// query, ties broken by corpus insertion order. An empty corpus yields an
// empty result, never an error.
func (r *Retriever) Retrieve(ctx context.Context, d event.Domain, queryText string, k int) ([]Document, error) {
	if k <= 0 {
		k = r.config.TopK
	}
	corpus := r.docs[d]
	if len(corpus) == 0 {
		return nil, nil
	}

	queryEmb, err := r.embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	type scored struct {
		doc   Document
		score float32
		order int
	}
	candidates := make([]scored, len(corpus))
	for i, doc := range corpus {
		candidates[i] = scored{doc: doc, score: cosineSimilarity(queryEmb, doc.Embedding), order: i}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].order < candidates[j].order
	})

	if k > len(candidates) {
		k = len(candidates)
	}
	out := make([]Document, k)
	for i := 0; i < k; i++ {
		out[i] = candidates[i].doc
	}
	return out, nil
}

// #endregion retrieve

// #region similarity

// cosineSimilarity returns 0 for mismatched or zero vectors.
func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	dot := vek32.Dot(a, b)
	normA := math.Sqrt(float64(vek32.Dot(a, a)))
	normB := math.Sqrt(float64(vek32.Dot(b, b)))
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(float64(dot) / (normA * normB))
}

// #endregion similarity
