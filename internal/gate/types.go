package gate

// #region veto-type

// VetoType enumerates the ethics veto categories.
type VetoType string

const (
	VetoProtectedCategory VetoType = "protected_category"
	VetoSparseData        VetoType = "sparse_data"
	VetoStaleEvidence     VetoType = "stale_evidence"
	VetoAgentDisagreement VetoType = "agent_disagreement"
)

// #endregion veto-type

// #region veto-signal

// VetoSignal is one detected veto condition.
type VetoSignal struct {
	Type   VetoType
	Reason string
}

// #endregion veto-signal

// #region config

// Config holds the ethics gate thresholds. The gate only constrains
// escalation; it never raises a decision.
type Config struct {
	// MinEvents is the event volume below which an escalation lacks
	// statistical footing.
	MinEvents int `koanf:"min_events"`
	// MaxEvidenceAgeDays vetoes escalation when the newest event is older.
	MaxEvidenceAgeDays float64 `koanf:"max_evidence_age_days"`
	// MaxRiskVariance vetoes escalation when surviving domain risks disagree
	// beyond this population variance.
	MaxRiskVariance float64 `koanf:"max_risk_variance"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MinEvents:          3,
		MaxEvidenceAgeDays: 60,
		MaxRiskVariance:    0.09,
	}
}

// #endregion config

// #region decision

// Decision is the output of the ethics gate.
type Decision struct {
	Vetoed  bool
	Signals []VetoSignal // non-empty when vetoed
	Reason  string
}

// #endregion decision
