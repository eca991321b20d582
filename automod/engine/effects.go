package engine

import (
	"slices"
)

type Verdict struct {
	Reason ReasonCode
	Label  string
}

// Mutable container for the outcome of rule execution.
//
// The first deny wins and stops further rules; holds accumulate. An exemption also stops further rules, and overrides everything else.
type Effects struct {
	// Set by the first rule which denies the comment. Later denies are ignored.
	Denied *Verdict
	// Hold flags, in the order rules raised them.
	Holds []Verdict
	// If "true", the caller is exempt from moderation; the outcome is allow.
	Exempt bool
}

// Marks the comment to be rejected. Only the first call has any effect.
func (e *Effects) Deny(reason ReasonCode, label string) {
	if e.Denied != nil {
		return
	}
	e.Denied = &Verdict{Reason: reason, Label: label}
}

// Marks the comment to be held for manual review. A hold doesn't stop evaluation.
func (e *Effects) Hold(reason ReasonCode, label string) {
	e.Holds = append(e.Holds, Verdict{Reason: reason, Label: label})
}

func (e *Effects) Exempted() {
	e.Exempt = true
}

// Whether remaining rules should be skipped.
func (e *Effects) Terminal() bool {
	return e.Exempt || e.Denied != nil
}

func (e *Effects) Decision() Decision {
	if e.Exempt {
		return allowDecision()
	}
	if e.Denied != nil {
		return Decision{
			Outcome: OutcomeDeny,
			Reasons: []ReasonCode{e.Denied.Reason},
			Label:   e.Denied.Label,
		}
	}
	if len(e.Holds) > 0 {
		reasons := []ReasonCode{}
		for _, h := range e.Holds {
			if !slices.Contains(reasons, h.Reason) {
				reasons = append(reasons, h.Reason)
			}
		}
		return Decision{
			Outcome: OutcomeHold,
			Reasons: reasons,
			Label:   e.Holds[0].Label,
		}
	}
	return allowDecision()
}
