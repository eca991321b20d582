package rules

import (
	"github.com/commentguard/commentguard/automod"
	"github.com/commentguard/commentguard/automod/textclass"
)

var _ automod.RuleFunc = SpamRule

// Phone numbers and wechat IDs are checked in text and author; URLs and repetition only in text.
func SpamRule(c *automod.CommentContext) error {
	if !c.Config.BlockSpam {
		return nil
	}
	if kind := textclass.SpamKind(c.Comment.Text, c.Comment.Author); kind != "" {
		c.Deny(automod.ReasonSpam, "spam ("+kind+")")
	}
	return nil
}
