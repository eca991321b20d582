package engine

import (
	"errors"
	"slices"
	"strings"
)

type Outcome string

const (
	OutcomeAllow Outcome = "allow"
	OutcomeHold  Outcome = "hold"
	OutcomeDeny  Outcome = "deny"
)

type ReasonCode string

const (
	ReasonIPBlacklist     ReasonCode = "ip_blacklist"
	ReasonEmailBlacklist  ReasonCode = "email_blacklist"
	ReasonSensitive       ReasonCode = "sensitive"
	ReasonSpam            ReasonCode = "spam"
	ReasonAuthorTooLong   ReasonCode = "author_too_long"
	ReasonGarbledContent  ReasonCode = "garbled_content"
	ReasonInvalidEmail    ReasonCode = "invalid_email"
	ReasonContentNoCN     ReasonCode = "content_no_cn"
	ReasonAuthorNoCN      ReasonCode = "author_no_cn"
	ReasonForeignLanguage ReasonCode = "foreign_language"
	ReasonBaiduBlock      ReasonCode = "baidu_block"
	ReasonBaiduReviewDeny ReasonCode = "baidu_review_deny"
	ReasonBaiduReview     ReasonCode = "baidu_review"
	ReasonBaiduError      ReasonCode = "baidu_error"
	// rule execution failed; the comment is held rather than allowed
	ReasonCheckFailed ReasonCode = "check_failed"
)

// Returned (wrapped) by PreSave when a comment must not be persisted.
var ErrCommentDenied = errors.New("comment denied")

// Immutable outcome of a single evaluation.
type Decision struct {
	Outcome Outcome      `json:"decision"`
	Reasons []ReasonCode `json:"reasons"`
	// human-meaningful label for the deciding reason, used in audit records
	Label string `json:"-"`
	// set when the post-save re-check didn't evaluate at all
	Skipped bool `json:"-"`
}

func (d Decision) Allowed() bool {
	return d.Outcome == OutcomeAllow
}

func (d Decision) HasReason(r ReasonCode) bool {
	return slices.Contains(d.Reasons, r)
}

func (d Decision) ReasonString() string {
	parts := make([]string, len(d.Reasons))
	for i, r := range d.Reasons {
		parts[i] = string(r)
	}
	return strings.Join(parts, ",")
}

func allowDecision() Decision {
	return Decision{Outcome: OutcomeAllow, Reasons: []ReasonCode{}}
}
