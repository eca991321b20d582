package blocklist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/commentguard/commentguard/automod/config"
	"github.com/commentguard/commentguard/automod/setstore"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var blacklistAddCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "commentguard_blacklist_add_count",
	Help: "Number of blacklist additions, by list and result",
}, []string{"list", "result"})

var ErrNoTarget = errors.New("nothing to blacklist")

type CommentDeleter interface {
	Delete(ctx context.Context, id uint) (bool, error)
}

// Operator actions on the IP and email blacklists.
type Manager struct {
	Options  config.Source
	Comments CommentDeleter
	Logger   *slog.Logger
}

func NewManager(opts config.Source, comments CommentDeleter, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		Options:  opts,
		Comments: comments,
		Logger:   logger.With("component", "blocklist"),
	}
}

type Result struct {
	Added   bool   `json:"added"`
	Message string `json:"message"`
}

func fieldLabel(field string) (string, bool) {
	switch field {
	case config.OptIPBlacklist:
		return "IP address", true
	case config.OptEmailBlacklist:
		return "email address", true
	}
	return "", false
}

func currentList(cfg *config.Config, field string) string {
	if field == config.OptIPBlacklist {
		return cfg.IPBlacklist
	}
	return cfg.EmailBlacklist
}

// Appends value to the named blacklist unless already present (exact, case-sensitive). Persistence failures are reported in the result, not returned.
//
// Read-modify-write without locking: concurrent additions may lose an update.
func (m *Manager) AddToBlacklist(ctx context.Context, field, value string) Result {
	label, ok := fieldLabel(field)
	if !ok {
		return Result{Message: fmt.Sprintf("unknown blacklist: %s", field)}
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return Result{Message: "empty " + label}
	}

	cfg, err := m.Options.Load(ctx)
	if err != nil {
		m.Logger.Error("failed to load options for blacklist update", "field", field, "err", err)
		blacklistAddCount.WithLabelValues(field, "error").Inc()
		return Result{Message: "failed to add: could not load configuration"}
	}

	list := setstore.NewList(currentList(cfg, field))
	if !list.Add(value) {
		blacklistAddCount.WithLabelValues(field, "exists").Inc()
		return Result{Message: label + " is already blacklisted"}
	}
	if err := m.Options.SetOption(ctx, field, list.String()); err != nil {
		m.Logger.Error("failed to persist blacklist", "field", field, "err", err)
		blacklistAddCount.WithLabelValues(field, "error").Inc()
		return Result{Message: "failed to add: " + err.Error()}
	}
	m.Logger.Info("added to blacklist", "field", field, "value", value)
	blacklistAddCount.WithLabelValues(field, "added").Inc()
	return Result{Added: true, Message: label + " added to blacklist"}
}

// Deletes a comment (decrementing its content's counter). Returns false if it doesn't exist or deletion failed.
func (m *Manager) DeleteComment(ctx context.Context, id uint) bool {
	if m.Comments == nil {
		return false
	}
	ok, err := m.Comments.Delete(ctx, id)
	if err != nil {
		m.Logger.Error("failed to delete comment", "comment", id, "err", err)
		return false
	}
	if ok {
		m.Logger.Info("deleted comment", "comment", id)
	}
	return ok
}

type BlockRequest struct {
	IP        string `json:"ip" form:"ip"`
	Email     string `json:"email" form:"email"`
	CommentID uint   `json:"coid" form:"coid"`
}

type BlockResult struct {
	Added          int      `json:"added"`
	CommentDeleted bool     `json:"commentDeleted"`
	Messages       []string `json:"messages"`
}

func (r BlockResult) Summary() string {
	return strings.Join(r.Messages, "; ")
}

// Blacklists the IP and/or email of a comment. If anything new was added, the comment id is set, and the blacklistDeleteComment option is on, the comment is deleted too.
func (m *Manager) Block(ctx context.Context, req BlockRequest) (*BlockResult, error) {
	req.IP = strings.TrimSpace(req.IP)
	req.Email = strings.TrimSpace(req.Email)
	if req.IP == "" && req.Email == "" {
		return nil, ErrNoTarget
	}

	out := &BlockResult{Messages: []string{}}
	if req.IP != "" {
		res := m.AddToBlacklist(ctx, config.OptIPBlacklist, req.IP)
		if res.Added {
			out.Added++
		}
		out.Messages = append(out.Messages, res.Message)
	}
	if req.Email != "" {
		res := m.AddToBlacklist(ctx, config.OptEmailBlacklist, req.Email)
		if res.Added {
			out.Added++
		}
		out.Messages = append(out.Messages, res.Message)
	}

	if out.Added > 0 && req.CommentID > 0 {
		cfg, err := m.Options.Load(ctx)
		if err != nil {
			m.Logger.Error("failed to load options", "err", err)
			return out, nil
		}
		if cfg.BlacklistDeleteComment {
			out.CommentDeleted = m.DeleteComment(ctx, req.CommentID)
			if out.CommentDeleted {
				out.Messages = append(out.Messages, "comment deleted")
			} else {
				out.Messages = append(out.Messages, "comment deletion failed")
			}
		}
	}
	return out, nil
}
