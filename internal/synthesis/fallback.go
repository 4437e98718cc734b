package synthesis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/traceai/engine/internal/event"
)

// #region severity-bands

// SeverityBand names the band a severity value falls in.
func (c Config) SeverityBand(severity float64) string {
	switch {
	case severity >= c.HighBandMin:
		return "high"
	case severity >= c.LowBandMax:
		return "moderate"
	default:
		return "low"
	}
}

// #endregion severity-bands

// #region fallback-explain

// fallbackExplain builds the deterministic templated explanation used when
// the live generator is unreachable. Same shape and rough length as the live
// output so downstream consumers never special-case it.
func (c Config) fallbackExplain(d event.Domain, risk float64, events []event.FrictionEvent, docs []string) string {
	if len(events) == 0 {
		return fmt.Sprintf("No %s friction events recorded; %s risk is at its baseline of %.2f. No action is indicated for this domain.",
			d, d, risk)
	}

	dominant, maxSeverity := dominantType(events)
	band := c.SeverityBand(maxSeverity)

	var b strings.Builder
	fmt.Fprintf(&b, "%d %s friction event(s) observed, dominated by %s at %s severity (%.2f), yielding a risk of %.2f.",
		len(events), d, humanType(dominant), band, maxSeverity, risk)
	if len(docs) > 0 {
		fmt.Fprintf(&b, " Relevant guidance: %s", docs[0])
	}
	switch band {
	case "high":
		b.WriteString(" The pattern warrants prompt review of the underlying administrative process.")
	case "moderate":
		b.WriteString(" The pattern merits monitoring before it compounds.")
	default:
		b.WriteString(" The pattern appears contained at present.")
	}
	return b.String()
}

// fallbackSummary concatenates per-domain reasoning into a deterministic
// overall justification.
func fallbackSummary(finalRisk float64, decision string, reasonings map[event.Domain]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Aggregate risk %.2f leads to %s.", finalRisk, decision)
	for _, d := range event.Domains {
		r, ok := reasonings[d]
		if !ok || r == "" {
			continue
		}
		fmt.Fprintf(&b, " [%s] %s", d, r)
	}
	return b.String()
}

// #endregion fallback-explain

// #region helpers

// dominantType returns the event type with the highest severity sum and the
// maximum severity seen across all events.
func dominantType(events []event.FrictionEvent) (event.Type, float64) {
	sums := make(map[event.Type]float64)
	maxSeverity := 0.0
	for _, e := range events {
		sums[e.EventType] += e.Severity
		if e.Severity > maxSeverity {
			maxSeverity = e.Severity
		}
	}

	types := make([]event.Type, 0, len(sums))
	for t := range sums {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool {
		if sums[types[i]] != sums[types[j]] {
			return sums[types[i]] > sums[types[j]]
		}
		return types[i] < types[j]
	})
	return types[0], maxSeverity
}

func humanType(t event.Type) string {
	return strings.ReplaceAll(string(t), "_", " ")
}

// #endregion helpers
