package rules

import (
	"context"
	"strings"
	"testing"

	"github.com/commentguard/commentguard/automod"
	"github.com/commentguard/commentguard/automod/classifier"
	"github.com/commentguard/commentguard/automod/config"
	"github.com/commentguard/commentguard/automod/engine"

	"github.com/stretchr/testify/assert"
)

var admin = automod.Caller{UserID: "1", Group: automod.GroupAdministrator}

// evaluates with the default rules and the given config snapshot
func evaluate(t *testing.T, cfg config.Config, comment automod.Comment, caller automod.Caller) automod.Decision {
	eng := engine.EngineTestFixture(DefaultRules(), cfg)
	return eng.Evaluate(context.Background(), &cfg, comment, caller)
}

func withClassifier(cfg config.Config, verdict classifier.Verdict) (engine.Engine, *engine.MockClassifier) {
	cfg.BaiduEnable = true
	cfg.BaiduAPIKey = "key"
	cfg.BaiduSecretKey = "secret"
	eng := engine.EngineTestFixture(DefaultRules(), cfg)
	mock := &engine.MockClassifier{Verdict: verdict}
	eng.Classifier = mock
	return eng, mock
}

func TestAdminExemptionDominates(t *testing.T) {
	assert := assert.New(t)

	cfg := config.Default()
	cfg.SensitiveWords = "casino"
	cfg.IPBlacklist = "1.2.3.4"
	cfg.BlockSpam = true
	cfg.ContentChineseAction = config.ActionDeny
	cfg.AuthorChineseAction = config.ActionDeny
	cfg.BlockForeignLanguage = true
	comment := automod.Comment{Text: "casino 13812345678 Привет, как дела?", Author: "admin", IP: "1.2.3.4"}

	d := evaluate(t, cfg, comment, admin)
	assert.Equal(automod.OutcomeAllow, d.Outcome)
	assert.Empty(d.Reasons)

	// admin classification isn't consulted when exempt
	eng, mock := withClassifier(cfg, classifier.VerdictBlock)
	cfgc := cfg
	cfgc.BaiduEnable, cfgc.BaiduAPIKey, cfgc.BaiduSecretKey = true, "key", "secret"
	d = eng.Evaluate(context.Background(), &cfgc, comment, admin)
	assert.Equal(automod.OutcomeAllow, d.Outcome)
	assert.Empty(mock.Calls)

	// exemption disabled: normal rules apply
	cfg.SkipAdminReview = false
	d = evaluate(t, cfg, comment, admin)
	assert.Equal(automod.OutcomeDeny, d.Outcome)
	assert.Equal([]automod.ReasonCode{automod.ReasonIPBlacklist}, d.Reasons)

	// non-admin identities aren't exempt
	cfg.SkipAdminReview = true
	d = evaluate(t, cfg, comment, automod.Caller{UserID: "2", Group: "editor"})
	assert.Equal(automod.OutcomeDeny, d.Outcome)
}

func TestRulePrecedence(t *testing.T) {
	assert := assert.New(t)

	cfg := config.Default()
	cfg.IPBlacklist = "1.2.3.4"
	cfg.EmailBlacklist = "bad@example.com"
	cfg.SensitiveWords = "casino"

	d := evaluate(t, cfg, automod.Comment{Text: "casino", Mail: "bad@example.com", IP: "1.2.3.4"}, automod.Caller{})
	assert.Equal([]automod.ReasonCode{automod.ReasonIPBlacklist}, d.Reasons)

	d = evaluate(t, cfg, automod.Comment{Text: "casino", Mail: "bad@example.com", IP: "9.9.9.9"}, automod.Caller{})
	assert.Equal([]automod.ReasonCode{automod.ReasonEmailBlacklist}, d.Reasons)

	d = evaluate(t, cfg, automod.Comment{Text: "casino", Mail: "Bad@example.com", IP: "9.9.9.9"}, automod.Caller{})
	assert.Equal([]automod.ReasonCode{automod.ReasonSensitive}, d.Reasons)
}

func TestSensitiveWordDeny(t *testing.T) {
	assert := assert.New(t)

	cfg := config.Default()
	cfg.SensitiveWords = "Casino\n赌博"

	fixtures := []automod.Comment{
		{Text: "best CASINO in town", Author: "张三", Mail: "zhangsan@qq.com"},
		{Text: "正常内容", Author: "casino king", Mail: "zhangsan@qq.com"},
		{Text: "正常内容", Author: "张三", Mail: "casino@example.com"},
		{Text: "网上赌博", Author: "", Mail: ""},
	}
	for _, c := range fixtures {
		d := evaluate(t, cfg, c, automod.Caller{})
		assert.Equal(automod.OutcomeDeny, d.Outcome, c.Text)
		assert.Equal([]automod.ReasonCode{automod.ReasonSensitive}, d.Reasons, c.Text)
	}

	d := evaluate(t, cfg, automod.Comment{Text: "正常内容", Author: "张三"}, automod.Caller{})
	assert.Equal(automod.OutcomeAllow, d.Outcome)
}

func TestSpamRule(t *testing.T) {
	assert := assert.New(t)

	cfg := config.Default()
	cfg.BlockSpam = true

	d := evaluate(t, cfg, automod.Comment{Text: "加我微信wx_abcd1234有优惠", Author: "abc"}, automod.Caller{})
	assert.Equal(automod.OutcomeDeny, d.Outcome)
	assert.Equal([]automod.ReasonCode{automod.ReasonSpam}, d.Reasons)
	assert.Equal("spam (wechat)", d.Label)

	d = evaluate(t, cfg, automod.Comment{Text: "call me", Author: "13812345678"}, automod.Caller{})
	assert.Equal("spam (phone)", d.Label)

	// URLs in the author name don't count
	d = evaluate(t, cfg, automod.Comment{Text: "nice post", Author: "example.com"}, automod.Caller{})
	assert.Equal(automod.OutcomeAllow, d.Outcome)

	cfg.BlockSpam = false
	d = evaluate(t, cfg, automod.Comment{Text: "加我微信wx_abcd1234有优惠", Author: "abc"}, automod.Caller{})
	assert.Equal(automod.OutcomeAllow, d.Outcome)
}

func TestAuthorLengthRule(t *testing.T) {
	assert := assert.New(t)

	cfg := config.Default()
	cfg.AuthorMaxLength = 4

	d := evaluate(t, cfg, automod.Comment{Text: "好", Author: "张三李四"}, automod.Caller{})
	assert.Equal(automod.OutcomeAllow, d.Outcome)

	d = evaluate(t, cfg, automod.Comment{Text: "好", Author: "张三李四王"}, automod.Caller{})
	assert.Equal([]automod.ReasonCode{automod.ReasonAuthorTooLong}, d.Reasons)

	cfg.AuthorMaxLength = 0
	d = evaluate(t, cfg, automod.Comment{Text: "好", Author: strings.Repeat("x", 500)}, automod.Caller{})
	assert.Equal(automod.OutcomeAllow, d.Outcome)
}

func TestGarbledAndEmailRules(t *testing.T) {
	assert := assert.New(t)

	cfg := config.Default()
	d := evaluate(t, cfg, automod.Comment{Text: "hi", Author: "★☆★☆", Mail: "123@unknowndomain.com"}, automod.Caller{})
	assert.Equal(automod.OutcomeAllow, d.Outcome)

	cfg.BlockGarbled = true
	cfg.StrictEmail = true
	d = evaluate(t, cfg, automod.Comment{Text: "hi", Author: "★☆★☆", Mail: "123@unknowndomain.com"}, automod.Caller{})
	assert.Equal([]automod.ReasonCode{automod.ReasonGarbledContent}, d.Reasons)

	d = evaluate(t, cfg, automod.Comment{Text: "hi", Author: "bob", Mail: "123@unknowndomain.com"}, automod.Caller{})
	assert.Equal([]automod.ReasonCode{automod.ReasonInvalidEmail}, d.Reasons)

	d = evaluate(t, cfg, automod.Comment{Text: "hi", Author: "bob", Mail: "123@qq.com"}, automod.Caller{})
	assert.Equal(automod.OutcomeAllow, d.Outcome)
}

func TestChineseDetection(t *testing.T) {
	assert := assert.New(t)

	cfg := config.Default()
	cfg.ContentChineseAction = config.ActionHold
	cfg.AuthorChineseAction = config.ActionHold

	d := evaluate(t, cfg, automod.Comment{Text: "hello", Author: "bob"}, automod.Caller{})
	assert.Equal(automod.OutcomeHold, d.Outcome)
	assert.Equal([]automod.ReasonCode{automod.ReasonContentNoCN, automod.ReasonAuthorNoCN}, d.Reasons)

	// a later deny overrides earlier holds
	cfg.AuthorChineseAction = config.ActionDeny
	d = evaluate(t, cfg, automod.Comment{Text: "hello", Author: "bob"}, automod.Caller{})
	assert.Equal(automod.OutcomeDeny, d.Outcome)
	assert.Equal([]automod.ReasonCode{automod.ReasonAuthorNoCN}, d.Reasons)

	cfg.ContentChineseAction = config.ActionDeny
	d = evaluate(t, cfg, automod.Comment{Text: "hello", Author: "张三"}, automod.Caller{})
	assert.Equal([]automod.ReasonCode{automod.ReasonContentNoCN}, d.Reasons)

	d = evaluate(t, cfg, automod.Comment{Text: "你好", Author: "张三"}, automod.Caller{})
	assert.Equal(automod.OutcomeAllow, d.Outcome)
}

func TestEndToEndAllow(t *testing.T) {
	assert := assert.New(t)

	d := evaluate(t, config.Default(), automod.Comment{Text: "正常内容很好", Author: "张三", Mail: "zhangsan@qq.com"}, automod.Caller{})
	assert.Equal(automod.OutcomeAllow, d.Outcome)
	assert.Empty(d.Reasons)
}

func TestForeignLanguage(t *testing.T) {
	assert := assert.New(t)

	comment := automod.Comment{Text: "Привет, как дела? Это отличный пост", Author: "ivan"}

	cfg := config.Default()
	cfg.BlockForeignLanguage = true
	d := evaluate(t, cfg, comment, automod.Caller{})
	assert.Equal(automod.OutcomeDeny, d.Outcome)
	assert.Equal([]automod.ReasonCode{automod.ReasonForeignLanguage}, d.Reasons)

	cfg.BlockForeignLanguage = false
	cfg.ContentChineseAction = config.ActionAllow
	d = evaluate(t, cfg, comment, automod.Caller{})
	assert.Equal(automod.OutcomeAllow, d.Outcome)
}

func TestExternalClassifierRule(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	fixtures := []struct {
		verdict      classifier.Verdict
		reviewAction config.Action
		failPolicy   string
		outcome      automod.Outcome
		reasons      []automod.ReasonCode
	}{
		{verdict: classifier.VerdictPass, reviewAction: config.ActionHold, outcome: automod.OutcomeAllow, reasons: []automod.ReasonCode{}},
		{verdict: classifier.VerdictBlock, reviewAction: config.ActionHold, outcome: automod.OutcomeDeny, reasons: []automod.ReasonCode{automod.ReasonBaiduBlock}},
		{verdict: classifier.VerdictReview, reviewAction: config.ActionHold, outcome: automod.OutcomeHold, reasons: []automod.ReasonCode{automod.ReasonBaiduReview}},
		{verdict: classifier.VerdictReview, reviewAction: config.ActionDeny, outcome: automod.OutcomeDeny, reasons: []automod.ReasonCode{automod.ReasonBaiduReviewDeny}},
		{verdict: classifier.VerdictError, reviewAction: config.ActionHold, failPolicy: config.FailPolicyReview, outcome: automod.OutcomeHold, reasons: []automod.ReasonCode{automod.ReasonBaiduError}},
		{verdict: classifier.VerdictError, reviewAction: config.ActionDeny, failPolicy: config.FailPolicyAllow, outcome: automod.OutcomeHold, reasons: []automod.ReasonCode{automod.ReasonBaiduError}},
	}

	for _, fix := range fixtures {
		cfg := config.Default()
		cfg.BaiduReviewAction = fix.reviewAction
		if fix.failPolicy != "" {
			cfg.BaiduFailPolicy = fix.failPolicy
		}
		eng, mock := withClassifier(cfg, fix.verdict)
		cfg.BaiduEnable, cfg.BaiduAPIKey, cfg.BaiduSecretKey = true, "key", "secret"

		d := eng.Evaluate(ctx, &cfg, automod.Comment{Text: "正常内容", Author: "张三"}, automod.Caller{})
		assert.Equal(fix.outcome, d.Outcome, fix.verdict)
		assert.Equal(fix.reasons, d.Reasons, fix.verdict)
		assert.Equal([]string{"正常内容"}, mock.Calls)
	}
}

func TestExternalClassifierSkipped(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	// enabled but missing a credential: feature disabled, not an error
	cfg := config.Default()
	eng, mock := withClassifier(cfg, classifier.VerdictError)
	cfg.BaiduEnable, cfg.BaiduAPIKey = true, "key"
	d := eng.Evaluate(ctx, &cfg, automod.Comment{Text: "正常内容", Author: "张三"}, automod.Caller{})
	assert.Equal(automod.OutcomeAllow, d.Outcome)
	assert.Empty(mock.Calls)

	// earlier deny means the classifier is never called
	cfg.BaiduSecretKey = "secret"
	cfg.SensitiveWords = "正常"
	d = eng.Evaluate(ctx, &cfg, automod.Comment{Text: "正常内容", Author: "张三"}, automod.Caller{})
	assert.Equal(automod.OutcomeDeny, d.Outcome)
	assert.Empty(mock.Calls)
}

func TestClassifierErrorHoldsAfterOtherHolds(t *testing.T) {
	assert := assert.New(t)

	cfg := config.Default()
	cfg.AuthorChineseAction = config.ActionHold
	eng, _ := withClassifier(cfg, classifier.VerdictError)
	cfg.BaiduEnable, cfg.BaiduAPIKey, cfg.BaiduSecretKey = true, "key", "secret"

	d := eng.Evaluate(context.Background(), &cfg, automod.Comment{Text: "正常内容", Author: "bob"}, automod.Caller{})
	assert.Equal(automod.OutcomeHold, d.Outcome)
	assert.Equal([]automod.ReasonCode{automod.ReasonAuthorNoCN, automod.ReasonBaiduError}, d.Reasons)
}

func TestRuleEffectsDirect(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	cfg := config.Default()
	cfg.IPBlacklist = "1.2.3.4"
	eng := engine.EngineTestFixture(DefaultRules(), cfg)

	c1 := engine.NewCommentContext(ctx, &eng, &cfg, automod.Comment{IP: "1.2.3.4"}, automod.Caller{})
	assert.NoError(IPBlacklistRule(&c1))
	eff1 := engine.ExtractEffects(&c1)
	assert.NotNil(eff1.Denied)
	assert.Equal(automod.ReasonIPBlacklist, eff1.Denied.Reason)

	c2 := engine.NewCommentContext(ctx, &eng, &cfg, automod.Comment{IP: "1.2.3.40"}, automod.Caller{})
	assert.NoError(IPBlacklistRule(&c2))
	eff2 := engine.ExtractEffects(&c2)
	assert.Nil(eff2.Denied)
}

func TestDefaultRulesOrder(t *testing.T) {
	assert.Len(t, DefaultRules().Rules, 12)
}
