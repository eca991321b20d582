package rules

import (
	"fmt"

	"github.com/commentguard/commentguard/automod"
	"github.com/commentguard/commentguard/automod/textclass"
)

var _ automod.RuleFunc = AuthorLengthRule

func AuthorLengthRule(c *automod.CommentContext) error {
	limit := c.Config.AuthorMaxLength
	if limit <= 0 {
		return nil
	}
	if n := textclass.Length(c.Comment.Author); n > limit {
		c.Deny(automod.ReasonAuthorTooLong, fmt.Sprintf("author too long (%d > %d)", n, limit))
	}
	return nil
}
