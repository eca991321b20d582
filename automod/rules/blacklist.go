package rules

import (
	"github.com/commentguard/commentguard/automod"
)

var _ automod.RuleFunc = IPBlacklistRule

func IPBlacklistRule(c *automod.CommentContext) error {
	if c.Comment.IP != "" && c.InSet(automod.SetIPBlacklist, c.Comment.IP) {
		c.Deny(automod.ReasonIPBlacklist, "blacklisted IP")
	}
	return nil
}

var _ automod.RuleFunc = EmailBlacklistRule

func EmailBlacklistRule(c *automod.CommentContext) error {
	if c.Comment.Mail != "" && c.InSet(automod.SetEmailBlacklist, c.Comment.Mail) {
		c.Deny(automod.ReasonEmailBlacklist, "blacklisted email")
	}
	return nil
}
