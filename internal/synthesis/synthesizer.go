package synthesis

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/traceai/engine/internal/event"
)

// #region synthesizer

// Synthesizer produces natural-language explanations with a deterministic
// fallback. The live generator may be nil, in which case every call takes
// the fallback path.
type Synthesizer struct {
	generator Generator
	config    Config
}

// NewSynthesizer creates a synthesizer. generator may be nil.
func NewSynthesizer(generator Generator, config Config) *Synthesizer {
	return &Synthesizer{generator: generator, config: config}
}

// #endregion synthesizer

// #region explain

// Explain produces a per-domain explanation for a risk value. The live call
// runs under the configured timeout; unreachability, timeout, or empty output
// all fall back to the template. The fallback is a recovery, never an error.
func (s *Synthesizer) Explain(ctx context.Context, d event.Domain, risk float64, events []event.FrictionEvent, docs []string) string {
	prompt := s.explainPrompt(d, risk, events, docs)
	if text, ok := s.generate(ctx, prompt); ok {
		return truncate(text, s.config.MaxChars)
	}
	return truncate(s.config.fallbackExplain(d, risk, events, docs), s.config.MaxChars)
}

// Summarize produces the overall justification from the per-domain reasoning.
func (s *Synthesizer) Summarize(ctx context.Context, finalRisk float64, decision string, reasonings map[event.Domain]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Synthesize the following agent assessments into a 2-3 sentence justification.\n")
	fmt.Fprintf(&b, "Overall risk: %.2f\nDecision: %s\n", finalRisk, decision)
	for _, d := range event.Domains {
		if r := reasonings[d]; r != "" {
			fmt.Fprintf(&b, "%s: %s\n", d, r)
		}
	}

	if text, ok := s.generate(ctx, b.String()); ok {
		return truncate(text, s.config.MaxChars)
	}
	return truncate(fallbackSummary(finalRisk, decision, reasonings), s.config.MaxChars)
}

// #endregion explain

// #region generate

func (s *Synthesizer) generate(ctx context.Context, prompt string) (string, bool) {
	if s.generator == nil {
		return "", false
	}
	callCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	text, err := s.generator.Generate(callCtx, prompt)
	if err != nil {
		log.Printf("[SYNTH] live generation unavailable, using fallback: %v", err)
		return "", false
	}
	text = strings.TrimSpace(text)
	if text == "" {
		log.Printf("[SYNTH] live generation returned empty output, using fallback")
		return "", false
	}
	return text, true
}

// #endregion generate

// #region prompt

// explainPrompt names the domain, the risk, the most severe and most recent
// events, and the retrieved context.
func (s *Synthesizer) explainPrompt(d event.Domain, risk float64, events []event.FrictionEvent, docs []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Domain: %s\nRisk score: %.2f\nEvents (%d):\n", d, risk, len(events))

	for _, e := range topEvents(events, 5) {
		fmt.Fprintf(&b, "- %s severity=%.2f at %s", humanType(e.EventType), e.Severity, e.Timestamp.Format("2006-01-02"))
		if e.Description != "" {
			fmt.Fprintf(&b, " (%s)", e.Description)
		}
		b.WriteString("\n")
	}
	if len(docs) > 0 {
		b.WriteString("Context:\n")
		for _, doc := range docs {
			fmt.Fprintf(&b, "- %s\n", doc)
		}
	}
	b.WriteString("Explain in 2-3 sentences why this risk score was assigned and what it means for student support.")
	return b.String()
}

// topEvents returns up to n events ordered by severity then recency.
func topEvents(events []event.FrictionEvent, n int) []event.FrictionEvent {
	sorted := make([]event.FrictionEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Severity != sorted[j].Severity {
			return sorted[i].Severity > sorted[j].Severity
		}
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

// truncate trims to at most maxChars bytes without splitting a UTF-8 rune.
func truncate(text string, maxChars int) string {
	if maxChars <= 0 || len(text) <= maxChars {
		return text
	}
	cut := maxChars
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

// #endregion prompt
