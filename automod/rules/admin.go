package rules

import (
	"github.com/commentguard/commentguard/automod"
)

var _ automod.RuleFunc = AdminExemptRule

// Privileged callers skip every other check, when the skipAdminReview option is on.
func AdminExemptRule(c *automod.CommentContext) error {
	if c.Config.SkipAdminReview && c.Caller.IsAdmin() {
		c.Exempt()
	}
	return nil
}
