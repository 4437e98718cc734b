package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/traceai/engine/internal/event"
	"github.com/traceai/engine/internal/feature"
	"github.com/traceai/engine/internal/gate"
	"github.com/traceai/engine/internal/knowledge"
	"github.com/traceai/engine/internal/model"
	"github.com/traceai/engine/internal/synthesis"
)

// #region coordinator

// Coordinator fans friction events out to the per-domain specialist agents,
// joins their outputs and aggregates them into a single Decision.
type Coordinator struct {
	config      Config
	extractor   *feature.Extractor
	models      map[event.Domain]*model.RiskModel
	retriever   *knowledge.Retriever
	synthesizer *synthesis.Synthesizer
	gate        *gate.EthicsGate
	saveHook    SaveHook
}

// New assembles a coordinator. models must contain an entry per domain; an
// unloaded model is still a valid entry, its domain is simply excluded at
// aggregation time. retriever may be nil when no corpus is available.
func New(config Config, extractor *feature.Extractor, models map[event.Domain]*model.RiskModel,
	retriever *knowledge.Retriever, synthesizer *synthesis.Synthesizer, eg *gate.EthicsGate) (*Coordinator, error) {
	if sum := config.Weights.Sum(); math.Abs(sum-1.0) > 1e-9 {
		return nil, fmt.Errorf("aggregation weights sum to %.4f, want 1", sum)
	}
	if config.Thresholds.Escalate < config.Thresholds.SoftOutreach ||
		config.Thresholds.SoftOutreach < config.Thresholds.Watch {
		return nil, fmt.Errorf("thresholds out of order: escalate=%.2f soft=%.2f watch=%.2f",
			config.Thresholds.Escalate, config.Thresholds.SoftOutreach, config.Thresholds.Watch)
	}
	if config.ImminentDistance < 0 || config.ImminentDistance > 1 {
		return nil, fmt.Errorf("imminent distance %.2f outside [0,1]", config.ImminentDistance)
	}
	if extractor == nil || synthesizer == nil || eg == nil {
		return nil, errors.New("extractor, synthesizer and gate are required")
	}
	for _, d := range event.Domains {
		if models[d] == nil {
			return nil, fmt.Errorf("missing model entry for domain %s", d)
		}
	}
	return &Coordinator{
		config:      config,
		extractor:   extractor,
		models:      models,
		retriever:   retriever,
		synthesizer: synthesizer,
		gate:        eg,
	}, nil
}

// SetSaveHook installs a persistence hook invoked once per evaluation.
func (c *Coordinator) SetSaveHook(hook SaveHook) {
	c.saveHook = hook
}

// #endregion coordinator

// #region evaluate

// agentResult carries one domain's outcome across the join barrier.
type agentResult struct {
	output AgentOutput
	err    error
}

// Evaluate runs the full pipeline for one student's friction events and
// returns the aggregated decision. now anchors all recency computations so a
// replayed evaluation is byte-identical to the recorded one.
func (c *Coordinator) Evaluate(ctx context.Context, events []event.FrictionEvent, now time.Time) (Decision, error) {
	normalized, err := event.Normalize(events)
	if err != nil {
		return Decision{}, fmt.Errorf("normalize events: %w", err)
	}

	// Fan out one agent per domain. Results land in a fixed slot per domain
	// so aggregation order never depends on goroutine scheduling.
	results := make([]agentResult, len(event.Domains))
	var wg sync.WaitGroup
	for i, d := range event.Domains {
		wg.Add(1)
		go func(slot int, domain event.Domain) {
			defer wg.Done()
			results[slot] = c.runAgent(ctx, domain, normalized, now)
		}(i, d)
	}
	wg.Wait()

	// Aggregate over the domains whose model contributed, renormalizing the
	// weights so a partial outage does not deflate the final risk.
	var outputs []AgentOutput
	domainRisks := make(map[event.Domain]float64, len(event.Domains))
	var weightedSum, weightTotal float64
	for i, d := range event.Domains {
		r := results[i]
		if r.err != nil {
			log.Printf("[COORD] domain %s excluded: %v", d, r.err)
			continue
		}
		outputs = append(outputs, r.output)
		domainRisks[d] = r.output.Risk
		w := c.config.Weights.Of(d)
		weightedSum += w * r.output.Risk
		weightTotal += w
	}
	if len(outputs) == 0 {
		return Decision{}, ErrAllDomainsFailed
	}
	finalRisk := weightedSum / weightTotal

	kind := c.decide(finalRisk)
	escalating := severityRank(kind) > severityRank(Watch)

	gateDecision := c.gate.Evaluate(normalized, domainRisks, escalating, now)
	var vetoReasons []string
	if gateDecision.Vetoed {
		for _, s := range gateDecision.Signals {
			vetoReasons = append(vetoReasons, s.Reason)
		}
		if severityRank(kind) > severityRank(Watch) {
			kind = Watch
		}
	}

	distance := 1.0 - finalRisk
	decision := Decision{
		FinalRisk:                 finalRisk,
		Decision:                  kind,
		DistanceToIrreversibility: distance,
		Headline:                  c.headline(kind, distance, gateDecision.Vetoed),
		EthicsVeto:                gateDecision.Vetoed,
		VetoReasons:               vetoReasons,
		AgentOutputs:              outputs,
		EvaluatedAt:               now,
	}

	perDomain := make(map[event.Domain]string, len(outputs))
	for _, out := range outputs {
		perDomain[out.Agent] = out.Reasoning
	}
	justification := c.synthesizer.Summarize(ctx, finalRisk, string(kind), perDomain)
	if gateDecision.Vetoed {
		justification = fmt.Sprintf("%s; automated escalation suppressed pending human review. %s",
			gateDecision.Reason, justification)
	}
	decision.Justification = justification

	if c.saveHook != nil {
		if err := c.saveHook(decision); err != nil {
			log.Printf("[COORD] save hook failed: %v", err)
		}
	}
	return decision, nil
}

// runAgent is the per-domain pipeline: extract, score, retrieve, explain.
func (c *Coordinator) runAgent(ctx context.Context, d event.Domain, events []event.FrictionEvent, now time.Time) agentResult {
	vec := c.extractor.Extract(events, d, now)
	pred, err := c.models[d].Predict(vec)
	if err != nil {
		return agentResult{err: fmt.Errorf("predict: %w", err)}
	}

	domainEvents := event.ForDomain(events, d)
	var docs []string
	if c.retriever != nil && len(domainEvents) > 0 {
		retrieved, rerr := c.retriever.Retrieve(ctx, d, retrievalQuery(d, domainEvents), c.config.RetrieveK)
		if rerr != nil {
			// Retrieval is advisory; the agent still scores without context.
			log.Printf("[COORD] retrieval failed for %s: %v", d, rerr)
		}
		for _, doc := range retrieved {
			docs = append(docs, doc.Text)
		}
	}

	reasoning := c.synthesizer.Explain(ctx, d, pred.Risk, domainEvents, docs)
	return agentResult{output: AgentOutput{
		Agent:      d,
		Risk:       pred.Risk,
		Confidence: pred.Confidence,
		Reasoning:  reasoning,
	}}
}

// retrievalQuery summarizes the domain's events into a retrieval probe.
func retrievalQuery(d event.Domain, events []event.FrictionEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s friction:", d)
	for _, e := range events {
		b.WriteByte(' ')
		b.WriteString(strings.ReplaceAll(string(e.EventType), "_", " "))
		if e.Description != "" {
			b.WriteByte(' ')
			b.WriteString(e.Description)
		}
	}
	return b.String()
}

// #endregion evaluate

// #region decision-shaping

// decide maps final risk to an action, highest threshold first.
func (c *Coordinator) decide(risk float64) Kind {
	switch {
	case risk >= c.config.Thresholds.Escalate:
		return EscalateToHuman
	case risk >= c.config.Thresholds.SoftOutreach:
		return SoftOutreach
	case risk >= c.config.Thresholds.Watch:
		return Watch
	default:
		return NoAction
	}
}

// headline picks the banner shown at the top of a decision report. It keys
// off the decided action rather than raw risk, so a threshold recalibration
// can never leave the banner contradicting the decision.
func (c *Coordinator) headline(kind Kind, distance float64, vetoed bool) string {
	if vetoed {
		return "Blocked by Ethics Guardian"
	}
	if distance < c.config.ImminentDistance {
		return "Irreversibility Imminent"
	}
	switch kind {
	case EscalateToHuman:
		return "Critical Intervention Needed"
	case SoftOutreach:
		return "Significant Friction Detected"
	case Watch:
		return "Moderate Concerns Present"
	default:
		return "Status Nominal"
	}
}

// #endregion decision-shaping
