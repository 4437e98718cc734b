package gate

import (
	"fmt"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/traceai/engine/internal/event"
)

// #region protected-terms

// protectedTerms flag descriptions that reference protected categories. An
// automated escalation keyed even partially off such language risks encoding
// demographic bias, so it is always routed to a human instead.
var protectedTerms = []string{
	"race", "ethnic", "religion", "religious", "caste",
	"disability", "disabled", "gender", "pregnant", "pregnancy",
	"nationality", "immigrant", "refugee", "asylum",
	"sexual orientation", "first-generation", "low-income",
}

// #endregion protected-terms

// #region gate

// EthicsGate decides whether an automated escalation must be suppressed
// pending human review.
type EthicsGate struct {
	config Config
}

// NewEthicsGate creates a gate with the given configuration.
func NewEthicsGate(config Config) *EthicsGate {
	return &EthicsGate{config: config}
}

// Evaluate runs every veto rule. escalating reports whether the threshold
// decision before the gate is above WATCH; volume/staleness/disagreement
// rules only bind then, while protected-category language always vetoes.
func (g *EthicsGate) Evaluate(
	events []event.FrictionEvent,
	domainRisks map[event.Domain]float64,
	escalating bool,
	now time.Time,
) Decision {
	var signals []VetoSignal

	if sig := g.checkProtectedCategory(events); sig != nil {
		signals = append(signals, *sig)
	}
	if escalating {
		if sig := g.checkVolume(events); sig != nil {
			signals = append(signals, *sig)
		}
		if sig := g.checkStaleness(events, now); sig != nil {
			signals = append(signals, *sig)
		}
		if sig := g.checkDisagreement(domainRisks); sig != nil {
			signals = append(signals, *sig)
		}
	}

	if len(signals) == 0 {
		return Decision{Reason: "no veto conditions"}
	}
	return Decision{
		Vetoed:  true,
		Signals: signals,
		Reason:  fmt.Sprintf("ethics veto: %s", signals[0].Reason),
	}
}

// #endregion gate

// #region rules

func (g *EthicsGate) checkProtectedCategory(events []event.FrictionEvent) *VetoSignal {
	for _, e := range events {
		lower := strings.ToLower(e.Description)
		if lower == "" {
			continue
		}
		for _, term := range protectedTerms {
			if strings.Contains(lower, term) {
				return &VetoSignal{
					Type:   VetoProtectedCategory,
					Reason: fmt.Sprintf("event description references protected category %q", term),
				}
			}
		}
	}
	return nil
}

func (g *EthicsGate) checkVolume(events []event.FrictionEvent) *VetoSignal {
	if len(events) < g.config.MinEvents {
		return &VetoSignal{
			Type:   VetoSparseData,
			Reason: fmt.Sprintf("%d events is below the %d needed for automated escalation", len(events), g.config.MinEvents),
		}
	}
	return nil
}

func (g *EthicsGate) checkStaleness(events []event.FrictionEvent, now time.Time) *VetoSignal {
	if len(events) == 0 {
		return nil // volume rule already covers the empty case
	}
	newest := events[0].Timestamp
	for _, e := range events[1:] {
		if e.Timestamp.After(newest) {
			newest = e.Timestamp
		}
	}
	ageDays := now.Sub(newest).Hours() / 24
	if ageDays > g.config.MaxEvidenceAgeDays {
		return &VetoSignal{
			Type:   VetoStaleEvidence,
			Reason: fmt.Sprintf("newest evidence is %.0f days old, beyond the %.0f day window", ageDays, g.config.MaxEvidenceAgeDays),
		}
	}
	return nil
}

func (g *EthicsGate) checkDisagreement(domainRisks map[event.Domain]float64) *VetoSignal {
	if len(domainRisks) < 2 {
		return nil
	}
	risks := make([]float64, 0, len(domainRisks))
	for _, r := range domainRisks {
		risks = append(risks, r)
	}
	variance := stat.PopVariance(risks, nil)
	if variance > g.config.MaxRiskVariance {
		return &VetoSignal{
			Type:   VetoAgentDisagreement,
			Reason: fmt.Sprintf("domain risks disagree (variance %.3f > %.3f), situation too ambiguous for automation", variance, g.config.MaxRiskVariance),
		}
	}
	return nil
}

// #endregion rules
