package config

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/commentguard/commentguard/automod/classifier"
	"github.com/commentguard/commentguard/automod/setstore"
)

// Action applied when a configurable check fires.
type Action string

const (
	ActionAllow Action = "A"
	ActionHold  Action = "B"
	ActionDeny  Action = "C"
)

func ParseAction(s string, fallback Action) Action {
	switch Action(strings.ToUpper(strings.TrimSpace(s))) {
	case ActionAllow:
		return ActionAllow
	case ActionHold:
		return ActionHold
	case ActionDeny:
		return ActionDeny
	}
	return fallback
}

const (
	FailPolicyAllow  = "allow"
	FailPolicyReview = "review"
)

// Option names, as persisted in the options table.
const (
	OptSensitiveWords         = "sensitiveWords"
	OptIPBlacklist            = "ipBlacklist"
	OptEmailBlacklist         = "emailBlacklist"
	OptBlockSpam              = "blockSpam"
	OptBlockGarbled           = "blockGarbled"
	OptStrictEmail            = "strictEmail"
	OptBlockForeignLanguage   = "blockForeignLanguage"
	OptContentChineseAction   = "contentChineseAction"
	OptAuthorChineseAction    = "authorChineseAction"
	OptBaiduEnable            = "baiduEnable"
	OptBaiduAPIKey            = "baiduApiKey"
	OptBaiduSecretKey         = "baiduSecretKey"
	OptBaiduFailPolicy        = "baiduFailPolicy"
	OptBaiduReviewAction      = "baiduReviewAction"
	OptSkipAdminReview        = "skipAdminReview"
	OptAuthorMaxLength        = "authorMaxLength"
	OptDebugLog               = "debugLog"
	OptBlockLog               = "blockLog"
	OptBlacklistDeleteComment = "blacklistDeleteComment"
	OptFrontPrecheck          = "frontPrecheck"
)

// All recognized option names, in display order.
var OptionNames = []string{
	OptSensitiveWords,
	OptIPBlacklist,
	OptEmailBlacklist,
	OptBlockSpam,
	OptBlockGarbled,
	OptStrictEmail,
	OptBlockForeignLanguage,
	OptContentChineseAction,
	OptAuthorChineseAction,
	OptBaiduEnable,
	OptBaiduAPIKey,
	OptBaiduSecretKey,
	OptBaiduFailPolicy,
	OptBaiduReviewAction,
	OptSkipAdminReview,
	OptAuthorMaxLength,
	OptDebugLog,
	OptBlockLog,
	OptBlacklistDeleteComment,
	OptFrontPrecheck,
}

func IsOptionName(name string) bool {
	return slices.Contains(OptionNames, name)
}

// Flat moderation configuration snapshot. Loaded fresh for every evaluation and treated as read-only.
type Config struct {
	SensitiveWords string
	IPBlacklist    string
	EmailBlacklist string

	BlockSpam            bool
	BlockGarbled         bool
	StrictEmail          bool
	BlockForeignLanguage bool

	ContentChineseAction Action
	AuthorChineseAction  Action

	BaiduEnable       bool
	BaiduAPIKey       string
	BaiduSecretKey    string
	BaiduFailPolicy   string
	BaiduReviewAction Action

	SkipAdminReview bool
	AuthorMaxLength int

	DebugLog               bool
	AuditLog               bool
	BlacklistDeleteComment bool
	FrontPrecheck          bool
}

func Default() Config {
	return Config{
		ContentChineseAction: ActionAllow,
		AuthorChineseAction:  ActionAllow,
		BaiduFailPolicy:      FailPolicyReview,
		BaiduReviewAction:    ActionHold,
		SkipAdminReview:      true,
		AuditLog:             true,
		FrontPrecheck:        true,
	}
}

func ParseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "enable", "enabled", "on", "yes":
		return true
	}
	return false
}

func formatBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// Decodes a snapshot from option name/value pairs. Missing options take their defaults; unknown names are ignored.
func FromOptions(opts map[string]string) Config {
	cfg := Default()
	str := func(name string, dst *string) {
		if v, ok := opts[name]; ok {
			*dst = v
		}
	}
	flag := func(name string, dst *bool) {
		if v, ok := opts[name]; ok {
			*dst = ParseBool(v)
		}
	}

	str(OptSensitiveWords, &cfg.SensitiveWords)
	str(OptIPBlacklist, &cfg.IPBlacklist)
	str(OptEmailBlacklist, &cfg.EmailBlacklist)
	flag(OptBlockSpam, &cfg.BlockSpam)
	flag(OptBlockGarbled, &cfg.BlockGarbled)
	flag(OptStrictEmail, &cfg.StrictEmail)
	flag(OptBlockForeignLanguage, &cfg.BlockForeignLanguage)
	cfg.ContentChineseAction = ParseAction(opts[OptContentChineseAction], ActionAllow)
	cfg.AuthorChineseAction = ParseAction(opts[OptAuthorChineseAction], ActionAllow)
	flag(OptBaiduEnable, &cfg.BaiduEnable)
	cfg.BaiduAPIKey = strings.TrimSpace(opts[OptBaiduAPIKey])
	cfg.BaiduSecretKey = strings.TrimSpace(opts[OptBaiduSecretKey])
	if strings.TrimSpace(opts[OptBaiduFailPolicy]) == FailPolicyAllow {
		cfg.BaiduFailPolicy = FailPolicyAllow
	}
	// only "C" is meaningful here; anything else holds
	if ParseAction(opts[OptBaiduReviewAction], ActionHold) == ActionDeny {
		cfg.BaiduReviewAction = ActionDeny
	}
	flag(OptSkipAdminReview, &cfg.SkipAdminReview)
	if v, err := strconv.Atoi(strings.TrimSpace(opts[OptAuthorMaxLength])); err == nil && v > 0 {
		cfg.AuthorMaxLength = v
	}
	flag(OptDebugLog, &cfg.DebugLog)
	flag(OptBlockLog, &cfg.AuditLog)
	flag(OptBlacklistDeleteComment, &cfg.BlacklistDeleteComment)
	flag(OptFrontPrecheck, &cfg.FrontPrecheck)
	return cfg
}

// Encodes the snapshot back to option name/value pairs.
func (c Config) Options() map[string]string {
	return map[string]string{
		OptSensitiveWords:         c.SensitiveWords,
		OptIPBlacklist:            c.IPBlacklist,
		OptEmailBlacklist:         c.EmailBlacklist,
		OptBlockSpam:              formatBool(c.BlockSpam),
		OptBlockGarbled:           formatBool(c.BlockGarbled),
		OptStrictEmail:            formatBool(c.StrictEmail),
		OptBlockForeignLanguage:   formatBool(c.BlockForeignLanguage),
		OptContentChineseAction:   string(c.ContentChineseAction),
		OptAuthorChineseAction:    string(c.AuthorChineseAction),
		OptBaiduEnable:            formatBool(c.BaiduEnable),
		OptBaiduAPIKey:            c.BaiduAPIKey,
		OptBaiduSecretKey:         c.BaiduSecretKey,
		OptBaiduFailPolicy:        c.BaiduFailPolicy,
		OptBaiduReviewAction:      string(c.BaiduReviewAction),
		OptSkipAdminReview:        formatBool(c.SkipAdminReview),
		OptAuthorMaxLength:        strconv.Itoa(c.AuthorMaxLength),
		OptDebugLog:               formatBool(c.DebugLog),
		OptBlockLog:               formatBool(c.AuditLog),
		OptBlacklistDeleteComment: formatBool(c.BlacklistDeleteComment),
		OptFrontPrecheck:          formatBool(c.FrontPrecheck),
	}
}

func (c Config) Credentials() classifier.Credentials {
	return classifier.Credentials{
		APIKey:    c.BaiduAPIKey,
		SecretKey: c.BaiduSecretKey,
	}
}

// The external classifier only runs when enabled and both credentials are present.
func (c Config) BaiduConfigured() bool {
	return c.BaiduEnable && c.Credentials().Configured()
}

func (c Config) SensitiveWordList() []string {
	return setstore.ParseLines(c.SensitiveWords)
}

// Config values with secrets masked, for display.
func (c Config) Redacted() map[string]string {
	opts := c.Options()
	for _, name := range []string{OptBaiduAPIKey, OptBaiduSecretKey} {
		if opts[name] != "" {
			opts[name] = "********"
		}
	}
	return opts
}

// Where configuration snapshots come from. Implementations must return a fresh snapshot on each Load.
type Source interface {
	Load(ctx context.Context) (*Config, error)
	SetOption(ctx context.Context, name, value string) error
}

// In-memory Source, for tests and one-off CLI evaluation.
type StaticSource struct {
	Opts map[string]string
}

var _ Source = (*StaticSource)(nil)

func NewStaticSource(cfg Config) *StaticSource {
	return &StaticSource{Opts: cfg.Options()}
}

func (s *StaticSource) Load(ctx context.Context) (*Config, error) {
	cfg := FromOptions(s.Opts)
	return &cfg, nil
}

func (s *StaticSource) SetOption(ctx context.Context, name, value string) error {
	if !IsOptionName(name) {
		return fmt.Errorf("unknown option: %s", name)
	}
	if s.Opts == nil {
		s.Opts = make(map[string]string)
	}
	s.Opts[name] = value
	return nil
}

func (s *StaticSource) All() map[string]string {
	return maps.Clone(s.Opts)
}
