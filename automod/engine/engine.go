package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/commentguard/commentguard/automod/auditlog"
	"github.com/commentguard/commentguard/automod/classifier"
	"github.com/commentguard/commentguard/automod/config"
)

type Classifier interface {
	Classify(ctx context.Context, text string, creds classifier.Credentials) classifier.Verdict
}

type AuditSink interface {
	Append(ctx context.Context, rec auditlog.Record) error
}

// Persistence operations the post-save re-check applies.
type CommentStore interface {
	SetStatus(ctx context.Context, id uint, status string) error
	Delete(ctx context.Context, id uint) (bool, error)
}

// runtime for executing rules against comments, and applying the resulting side effects.
//
// Logger and Config should always be set; the other collaborators are optional.
type Engine struct {
	Logger *slog.Logger
	Rules  RuleSet
	// moderation configuration, re-loaded for every PreSave and PostSaveRecheck
	Config     config.Source
	Classifier Classifier
	Audit      AuditSink
	Comments   CommentStore
}

var timeNow = time.Now

// Returns a fresh configuration snapshot. Load failures are logged and fall back to defaults.
func (eng *Engine) loadConfig(ctx context.Context) *config.Config {
	if eng.Config == nil {
		cfg := config.Default()
		return &cfg
	}
	cfg, err := eng.Config.Load(ctx)
	if err != nil || cfg == nil {
		eng.Logger.Error("failed to load moderation config, using defaults", "err", err)
		def := config.Default()
		return &def
	}
	return cfg
}

// Runs all rules over the comment with the supplied configuration, and appends an audit record for deny and hold outcomes. Has no other side effects.
func (eng *Engine) Evaluate(ctx context.Context, cfg *config.Config, comment Comment, caller Caller) Decision {
	return eng.evaluate(ctx, "evaluate", cfg, comment, caller)
}

func (eng *Engine) evaluate(ctx context.Context, entry string, cfg *config.Config, comment Comment, caller Caller) (d Decision) {
	start := timeNow()
	defer func() {
		evaluationDuration.WithLabelValues(entry).Observe(time.Since(start).Seconds())
	}()

	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	c := NewCommentContext(ctx, eng, cfg, comment, caller)

	func() {
		// similar to an HTTP server, we want to recover any panics from rule execution
		defer func() {
			if r := recover(); r != nil {
				eng.Logger.Error("comment rule execution exception", "err", r, "entry", entry, "ip", comment.IP)
				c.Err = fmt.Errorf("rule panic: %v", r)
			}
		}()
		if err := eng.Rules.CallRules(&c); err != nil && c.Err == nil {
			c.Err = err
		}
	}()

	d = c.effects.Decision()
	if c.Err != nil && d.Outcome != OutcomeDeny && !c.effects.Exempt {
		// never allow a comment whose checks didn't complete
		evaluationErrorCount.WithLabelValues(entry).Inc()
		c.Logger.Error("comment rule execution failed, holding", "err", c.Err)
		d.Outcome = OutcomeHold
		d.Reasons = append(d.Reasons, ReasonCheckFailed)
		if d.Label == "" {
			d.Label = "check failed"
		}
	}

	eng.canonicalLogLine(&c, entry, d)
	reason := ""
	if len(d.Reasons) > 0 {
		reason = string(d.Reasons[0])
	}
	decisionCount.WithLabelValues(entry, string(d.Outcome), reason).Inc()

	if d.Outcome != OutcomeAllow && cfg.AuditLog {
		eng.appendAudit(ctx, comment, d)
	}
	return d
}

func (eng *Engine) canonicalLogLine(c *CommentContext, entry string, d Decision) {
	c.Logger.Info("canonical-comment-line",
		"entry", entry,
		"decision", d.Outcome,
		"reasons", d.ReasonString(),
		"label", d.Label,
		"textLength", len([]rune(c.Comment.Text)),
	)
}

// Audit failures are logged and swallowed.
func (eng *Engine) appendAudit(ctx context.Context, comment Comment, d Decision) {
	if eng.Audit == nil {
		return
	}
	label := d.Label
	if label == "" {
		label = string(d.Reasons[0])
	}
	rec := auditlog.NewRecord(timeNow(), comment.Author, comment.Mail, comment.IP, comment.Text, label)
	if err := eng.Audit.Append(ctx, rec); err != nil {
		sideEffectErrorCount.WithLabelValues("audit").Inc()
		eng.Logger.Warn("failed to append audit record", "err", err)
	}
}

// Pre-persistence gate. On deny, returns an error wrapping ErrCommentDenied and the comment must not be stored. On hold the returned comment has status "waiting"; on allow, "approved".
func (eng *Engine) PreSave(ctx context.Context, comment Comment, caller Caller) (Comment, Decision, error) {
	cfg := eng.loadConfig(ctx)
	d := eng.evaluate(ctx, "presave", cfg, comment, caller)
	switch d.Outcome {
	case OutcomeDeny:
		return comment, d, fmt.Errorf("%w: %s", ErrCommentDenied, d.ReasonString())
	case OutcomeHold:
		comment.Status = StatusWaiting
	default:
		comment.Status = StatusApproved
	}
	return comment, d, nil
}

// Whether the post-save re-check applies to this stored comment. Non-comment types (trackbacks, pingbacks) and comments already in moderation are skipped.
func RecheckApplies(comment Comment) (bool, string) {
	if comment.Type != "" && comment.Type != TypeComment {
		return false, "type"
	}
	if comment.Status == StatusWaiting || comment.Status == StatusHidden {
		return false, "status"
	}
	return true, ""
}

// Safety-net re-check of an already persisted comment. A deny deletes the comment, and a hold moves it to "waiting". Store failures are logged and swallowed: the returned decision stands regardless.
//
// Returns false (with an allow decision marked Skipped) if the comment wasn't evaluated.
func (eng *Engine) PostSaveRecheck(ctx context.Context, comment Comment, caller Caller) (Decision, bool) {
	if ok, cause := RecheckApplies(comment); !ok {
		recheckSkipCount.WithLabelValues(cause).Inc()
		eng.Logger.Debug("skipping post-save re-check", "comment", comment.ID, "cause", cause, "type", comment.Type, "status", comment.Status)
		d := allowDecision()
		d.Skipped = true
		return d, false
	}

	cfg := eng.loadConfig(ctx)
	d := eng.evaluate(ctx, "recheck", cfg, comment, caller)
	if eng.Comments == nil || comment.ID == 0 {
		return d, true
	}

	switch d.Outcome {
	case OutcomeDeny:
		deleted, err := eng.Comments.Delete(ctx, comment.ID)
		if err != nil {
			sideEffectErrorCount.WithLabelValues("delete").Inc()
			eng.Logger.Error("failed to delete denied comment", "comment", comment.ID, "err", err)
		} else if !deleted {
			eng.Logger.Warn("denied comment already gone", "comment", comment.ID)
		}
	case OutcomeHold:
		if err := eng.Comments.SetStatus(ctx, comment.ID, StatusWaiting); err != nil {
			sideEffectErrorCount.WithLabelValues("status").Inc()
			eng.Logger.Error("failed to hold comment", "comment", comment.ID, "err", err)
		}
	}
	return d, true
}
