package engine

import (
	"context"
	"log/slog"

	"github.com/commentguard/commentguard/automod/classifier"
	"github.com/commentguard/commentguard/automod/config"
	"github.com/commentguard/commentguard/automod/setstore"
)

const (
	GroupAdministrator = "administrator"

	TypeComment = "comment"

	StatusApproved = "approved"
	StatusWaiting  = "waiting"
	StatusHidden   = "hidden"
)

// Names of the sets rules can query with InSet.
const (
	SetIPBlacklist    = "ip-blacklist"
	SetEmailBlacklist = "email-blacklist"
)

// Immutable during evaluation. Type and Status are only consulted by the post-save re-check.
type Comment struct {
	ID     uint   `json:"id,omitempty"`
	Text   string `json:"text"`
	Author string `json:"author"`
	Mail   string `json:"mail"`
	IP     string `json:"ip"`
	Type   string `json:"type,omitempty"`
	Status string `json:"status,omitempty"`
}

// Identity of whoever submitted the comment. The zero value is an anonymous visitor.
type Caller struct {
	UserID string
	Group  string
}

func (c Caller) IsAdmin() bool {
	return c.Group == GroupAdministrator
}

// The interface exposed to rules.
type CommentContext struct {
	// Actual golang "context.Context", if needed for timeouts etc
	Ctx context.Context
	// Any errors encountered while processing methods on this struct get rolled up in this nullable field
	Err error
	// slog logger handle, with comment-specific structured fields pre-populated. Pointer, but expected to never be nil.
	Logger *slog.Logger

	Comment Comment
	Caller  Caller
	// Snapshot for this evaluation only. Read-only.
	Config *config.Config

	engine    *Engine // NOTE: pointer, but expected never to be nil
	effects   Effects
	sets      setstore.MemSetStore
	sensitive []string
}

func NewCommentContext(ctx context.Context, eng *Engine, cfg *config.Config, comment Comment, caller Caller) CommentContext {
	sets := setstore.NewMemSetStore()
	sets.LoadRaw(SetIPBlacklist, cfg.IPBlacklist)
	sets.LoadRaw(SetEmailBlacklist, cfg.EmailBlacklist)
	return CommentContext{
		Ctx:       ctx,
		Logger:    eng.Logger.With("ip", comment.IP, "author", comment.Author),
		Comment:   comment,
		Caller:    caller,
		Config:    cfg,
		engine:    eng,
		sets:      sets,
		sensitive: cfg.SensitiveWordList(),
	}
}

// Exact, case-sensitive membership in one of the configured lists.
func (c *CommentContext) InSet(name, val string) bool {
	out, err := c.sets.InSet(c.Ctx, name, val)
	if err != nil {
		if nil == c.Err {
			c.Err = err
		}
		return false
	}
	return out
}

func (c *CommentContext) SensitiveWords() []string {
	return c.sensitive
}

// Calls the external classifier with the configured credentials. Without a classifier client, this reports an error verdict.
func (c *CommentContext) Classify(text string) classifier.Verdict {
	if c.engine.Classifier == nil {
		c.Logger.Warn("external classifier enabled but no client configured")
		return classifier.VerdictError
	}
	return c.engine.Classifier.Classify(c.Ctx, text, c.Config.Credentials())
}

func (c *CommentContext) Deny(reason ReasonCode, label string) {
	c.Trace("deny", "reason", reason, "label", label)
	c.effects.Deny(reason, label)
}

func (c *CommentContext) Hold(reason ReasonCode, label string) {
	c.Trace("hold", "reason", reason, "label", label)
	c.effects.Hold(reason, label)
}

func (c *CommentContext) Exempt() {
	c.Trace("exempt", "user", c.Caller.UserID)
	c.effects.Exempted()
}

// Per-evaluation trace logging. Emitted at info level when the debugLog option is on, otherwise at debug level.
func (c *CommentContext) Trace(msg string, args ...any) {
	level := slog.LevelDebug
	if c.Config != nil && c.Config.DebugLog {
		level = slog.LevelInfo
	}
	c.Logger.Log(c.Ctx, level, msg, args...)
}
