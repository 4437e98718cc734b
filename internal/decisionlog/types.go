package decisionlog

import (
	"time"

	"github.com/traceai/engine/internal/coordinator"
)

// #region entry

// Entry is one persisted decision together with the policy snapshot that
// produced it. The snapshot makes an old decision auditable after the
// weights or thresholds have been recalibrated.
type Entry struct {
	ID         string                 `json:"id"`
	Decision   coordinator.Decision   `json:"decision"`
	Weights    coordinator.Weights    `json:"weights"`
	Thresholds coordinator.Thresholds `json:"thresholds"`
	CreatedAt  time.Time              `json:"created_at"`
}

// #endregion entry
