package coordinator

import (
	"errors"
	"time"

	"github.com/traceai/engine/internal/event"
)

// #region errors

// ErrAllDomainsFailed indicates no domain model could contribute a risk.
// Surfaced to the caller instead of returning a garbage aggregate.
var ErrAllDomainsFailed = errors.New("all domain models failed")

// #endregion errors

// #region decision-kind

// Kind is the action the engine recommends, ordered by severity.
type Kind string

const (
	NoAction        Kind = "NO_ACTION"
	Watch           Kind = "WATCH"
	SoftOutreach    Kind = "SOFT_OUTREACH"
	EscalateToHuman Kind = "ESCALATE_TO_HUMAN"
)

// severityRank orders decision kinds for monotonicity checks and the veto cap.
func severityRank(k Kind) int {
	switch k {
	case Watch:
		return 1
	case SoftOutreach:
		return 2
	case EscalateToHuman:
		return 3
	default:
		return 0
	}
}

// #endregion decision-kind

// #region agent-output

// AgentOutput is one domain's contribution to an evaluation.
type AgentOutput struct {
	Agent      event.Domain `json:"agent"`
	Risk       float64      `json:"risk"`
	Confidence float64      `json:"confidence"`
	Reasoning  string       `json:"reasoning"`
}

// #endregion agent-output

// #region decision

// Decision is the final packaged result of one evaluation. Produced fresh on
// every invocation; the engine does not own its storage.
type Decision struct {
	FinalRisk                 float64       `json:"final_risk"`
	Decision                  Kind          `json:"decision"`
	DistanceToIrreversibility float64       `json:"distance_to_irreversibility"`
	Headline                  string        `json:"headline"`
	Justification             string        `json:"justification"`
	EthicsVeto                bool          `json:"ethics_veto"`
	VetoReasons               []string      `json:"veto_reasons,omitempty"`
	AgentOutputs              []AgentOutput `json:"agent_outputs"`
	EvaluatedAt               time.Time     `json:"evaluated_at"`
}

// #endregion decision

// #region config

// Weights are the fixed per-domain aggregation weights. Reserved covers the
// ethics/uncertainty share; the five values must sum to 1.
type Weights struct {
	Financial   float64 `koanf:"financial"`
	Academic    float64 `koanf:"academic"`
	Residential float64 `koanf:"residential"`
	Language    float64 `koanf:"language"`
	Reserved    float64 `koanf:"reserved"`
}

// Of returns the weight for a domain.
func (w Weights) Of(d event.Domain) float64 {
	switch d {
	case event.DomainFinancial:
		return w.Financial
	case event.DomainAcademic:
		return w.Academic
	case event.DomainResidential:
		return w.Residential
	case event.DomainLanguage:
		return w.Language
	default:
		return 0
	}
}

// Sum returns the total including the reserved share.
func (w Weights) Sum() float64 {
	return w.Financial + w.Academic + w.Residential + w.Language + w.Reserved
}

// Thresholds map final risk to a decision, evaluated highest to lowest.
// Policy constants subject to calibration, so configuration rather than code.
type Thresholds struct {
	Escalate     float64 `koanf:"escalate"`
	SoftOutreach float64 `koanf:"soft_outreach"`
	Watch        float64 `koanf:"watch"`
}

// Config holds the coordinator's aggregation policy.
type Config struct {
	Weights    Weights    `koanf:"weights"`
	Thresholds Thresholds `koanf:"thresholds"`
	// ImminentDistance is the distance-to-irreversibility below which the
	// decision headline switches to the imminent banner.
	ImminentDistance float64 `koanf:"imminent_distance"`
	// RetrieveK is the number of context passages fetched per domain.
	RetrieveK int `koanf:"retrieve_k"`
}

// DefaultConfig returns the production policy constants.
func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			Financial:   0.25,
			Academic:    0.20,
			Residential: 0.25,
			Language:    0.15,
			Reserved:    0.15,
		},
		Thresholds: Thresholds{
			Escalate:     0.70,
			SoftOutreach: 0.50,
			Watch:        0.30,
		},
		ImminentDistance: 0.2,
		RetrieveK:        2,
	}
}

// SaveHook is invoked exactly once per evaluation when configured. Persistence
// failures are logged, never surfaced: storage is the caller's concern.
type SaveHook func(Decision) error

// #endregion config
