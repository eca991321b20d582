package config

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBool(t *testing.T) {
	assert := assert.New(t)

	for _, v := range []string{"1", "true", "TRUE", "enable", " on ", "yes"} {
		assert.True(ParseBool(v), v)
	}
	for _, v := range []string{"", "0", "false", "off", "no", "disable", "maybe"} {
		assert.False(ParseBool(v), v)
	}
}

func TestParseAction(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(ActionDeny, ParseAction("C", ActionAllow))
	assert.Equal(ActionHold, ParseAction(" b ", ActionAllow))
	assert.Equal(ActionAllow, ParseAction("A", ActionHold))
	assert.Equal(ActionHold, ParseAction("Z", ActionHold))
	assert.Equal(ActionAllow, ParseAction("", ActionAllow))
}

func TestFromOptionsDefaults(t *testing.T) {
	assert := assert.New(t)

	cfg := FromOptions(map[string]string{})
	assert.Equal(Default(), cfg)
	assert.Equal(ActionAllow, cfg.ContentChineseAction)
	assert.Equal(ActionAllow, cfg.AuthorChineseAction)
	assert.Equal(FailPolicyReview, cfg.BaiduFailPolicy)
	assert.Equal(ActionHold, cfg.BaiduReviewAction)
	assert.True(cfg.SkipAdminReview)
	assert.False(cfg.BlockSpam)
	assert.Equal(0, cfg.AuthorMaxLength)
	assert.False(cfg.BaiduConfigured())
}

func TestFromOptions(t *testing.T) {
	assert := assert.New(t)

	cfg := FromOptions(map[string]string{
		OptSensitiveWords:       "casino\n赌博",
		OptBlockSpam:            "enable",
		OptContentChineseAction: "C",
		OptAuthorChineseAction:  "B",
		OptBaiduEnable:          "1",
		OptBaiduAPIKey:          " key ",
		OptBaiduSecretKey:       "secret",
		OptBaiduFailPolicy:      "allow",
		OptBaiduReviewAction:    "A",
		OptSkipAdminReview:      "0",
		OptAuthorMaxLength:      "20",
		"unknownOption":         "whatever",
	})
	assert.True(cfg.BlockSpam)
	assert.Equal(ActionDeny, cfg.ContentChineseAction)
	assert.Equal(ActionHold, cfg.AuthorChineseAction)
	assert.Equal("key", cfg.BaiduAPIKey)
	assert.True(cfg.BaiduConfigured())
	assert.Equal(FailPolicyAllow, cfg.BaiduFailPolicy)
	assert.Equal(ActionHold, cfg.BaiduReviewAction)
	assert.False(cfg.SkipAdminReview)
	assert.Equal(20, cfg.AuthorMaxLength)
	assert.Equal([]string{"casino", "赌博"}, cfg.SensitiveWordList())

	// enabled without both credentials is treated as disabled
	cfg.BaiduSecretKey = ""
	assert.False(cfg.BaiduConfigured())

	// negative lengths mean unlimited
	assert.Equal(0, FromOptions(map[string]string{OptAuthorMaxLength: "-3"}).AuthorMaxLength)
}

func TestOptionsRoundTrip(t *testing.T) {
	assert := assert.New(t)

	cfg := Default()
	cfg.IPBlacklist = "1.2.3.4\n5.6.7.8"
	cfg.StrictEmail = true
	cfg.BaiduReviewAction = ActionDeny
	cfg.AuthorMaxLength = 12
	assert.Equal(cfg, FromOptions(cfg.Options()))
	assert.Len(cfg.Options(), len(OptionNames))

	cfg.BaiduSecretKey = "secret"
	assert.Equal("********", cfg.Redacted()[OptBaiduSecretKey])
	assert.Equal("", cfg.Redacted()[OptBaiduAPIKey])
}

func TestStaticSource(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	src := NewStaticSource(Default())
	require.NoError(src.SetOption(ctx, OptIPBlacklist, "9.9.9.9"))
	assert.Error(src.SetOption(ctx, "bogus", "1"))

	cfg, err := src.Load(ctx)
	require.NoError(err)
	assert.Equal("9.9.9.9", cfg.IPBlacklist)

	// each load is a fresh snapshot
	cfg.IPBlacklist = "mutated"
	again, err := src.Load(ctx)
	require.NoError(err)
	assert.Equal("9.9.9.9", again.IPBlacklist)
}
