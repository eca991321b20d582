package automod

import (
	"github.com/commentguard/commentguard/automod/engine"
)

type Engine = engine.Engine
type RuleSet = engine.RuleSet
type RuleFunc = engine.RuleFunc
type CommentContext = engine.CommentContext
type Comment = engine.Comment
type Caller = engine.Caller
type Decision = engine.Decision
type Outcome = engine.Outcome
type ReasonCode = engine.ReasonCode

var (
	ErrCommentDenied = engine.ErrCommentDenied
)

const (
	OutcomeAllow = engine.OutcomeAllow
	OutcomeHold  = engine.OutcomeHold
	OutcomeDeny  = engine.OutcomeDeny

	ReasonIPBlacklist     = engine.ReasonIPBlacklist
	ReasonEmailBlacklist  = engine.ReasonEmailBlacklist
	ReasonSensitive       = engine.ReasonSensitive
	ReasonSpam            = engine.ReasonSpam
	ReasonAuthorTooLong   = engine.ReasonAuthorTooLong
	ReasonGarbledContent  = engine.ReasonGarbledContent
	ReasonInvalidEmail    = engine.ReasonInvalidEmail
	ReasonContentNoCN     = engine.ReasonContentNoCN
	ReasonAuthorNoCN      = engine.ReasonAuthorNoCN
	ReasonForeignLanguage = engine.ReasonForeignLanguage
	ReasonBaiduBlock      = engine.ReasonBaiduBlock
	ReasonBaiduReviewDeny = engine.ReasonBaiduReviewDeny
	ReasonBaiduReview     = engine.ReasonBaiduReview
	ReasonBaiduError      = engine.ReasonBaiduError
	ReasonCheckFailed     = engine.ReasonCheckFailed

	SetIPBlacklist    = engine.SetIPBlacklist
	SetEmailBlacklist = engine.SetEmailBlacklist

	GroupAdministrator = engine.GroupAdministrator

	TypeComment    = engine.TypeComment
	StatusApproved = engine.StatusApproved
	StatusWaiting  = engine.StatusWaiting
	StatusHidden   = engine.StatusHidden
)
