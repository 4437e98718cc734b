package event

import (
	"errors"
	"fmt"
)

// #region errors

// ErrMalformedEvent indicates an event that violates the input schema.
// Malformed input is the caller's problem and aborts the evaluation.
var ErrMalformedEvent = errors.New("malformed friction event")

// #endregion errors

// #region domain-of

// DomainOf resolves the domain of an event. An explicit domain wins; otherwise
// the event type must be a known type.
func DomainOf(e FrictionEvent) (Domain, error) {
	if e.Domain != "" {
		if !validDomain(e.Domain) {
			return "", fmt.Errorf("%w: unknown domain %q", ErrMalformedEvent, e.Domain)
		}
		return e.Domain, nil
	}
	d, ok := typeDomains[e.EventType]
	if !ok {
		return "", fmt.Errorf("%w: event type %q has no domain", ErrMalformedEvent, e.EventType)
	}
	return d, nil
}

// #endregion domain-of

// #region normalize

// Normalize validates a batch of events and fills in missing domains.
// Returns a new slice; the input is never mutated.
func Normalize(events []FrictionEvent) ([]FrictionEvent, error) {
	out := make([]FrictionEvent, len(events))
	for i, e := range events {
		if e.Severity < 0 || e.Severity > 1 {
			return nil, fmt.Errorf("%w: severity %.3f outside [0,1]", ErrMalformedEvent, e.Severity)
		}
		if e.Timestamp.IsZero() {
			return nil, fmt.Errorf("%w: zero timestamp", ErrMalformedEvent)
		}
		d, err := DomainOf(e)
		if err != nil {
			return nil, err
		}
		e.Domain = d
		out[i] = e
	}
	return out, nil
}

// ForDomain filters events to a single domain. Events must already be
// normalized (domain field populated).
func ForDomain(events []FrictionEvent, d Domain) []FrictionEvent {
	var out []FrictionEvent
	for _, e := range events {
		if e.Domain == d {
			out = append(out, e)
		}
	}
	return out
}

// #endregion normalize

// #region helpers

func validDomain(d Domain) bool {
	for _, known := range Domains {
		if d == known {
			return true
		}
	}
	return false
}

// #endregion helpers
