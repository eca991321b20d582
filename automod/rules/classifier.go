package rules

import (
	"github.com/commentguard/commentguard/automod"
	"github.com/commentguard/commentguard/automod/classifier"
	"github.com/commentguard/commentguard/automod/config"
)

var _ automod.RuleFunc = ExternalClassifierRule

// Consults the external classifier, when enabled and both credentials are set.
//
// A classifier error always holds the comment, whatever the configured fail policy.
func ExternalClassifierRule(c *automod.CommentContext) error {
	if !c.Config.BaiduConfigured() {
		if c.Config.BaiduEnable {
			c.Trace("external classifier enabled without credentials, skipping")
		}
		return nil
	}
	verdict := c.Classify(c.Comment.Text)
	c.Trace("external classifier verdict", "verdict", verdict)
	switch verdict {
	case classifier.VerdictBlock:
		c.Deny(automod.ReasonBaiduBlock, "classifier: block")
	case classifier.VerdictReview:
		if c.Config.BaiduReviewAction == config.ActionDeny {
			c.Deny(automod.ReasonBaiduReviewDeny, "classifier: review (denied by config)")
		} else {
			c.Hold(automod.ReasonBaiduReview, "classifier: review")
		}
	case classifier.VerdictError:
		if c.Config.BaiduFailPolicy == config.FailPolicyAllow {
			c.Logger.Warn("classifier failed; fail policy 'allow' is not honored, holding comment")
		}
		c.Hold(automod.ReasonBaiduError, "classifier: error")
	}
	return nil
}
