package rules

import (
	"github.com/commentguard/commentguard/automod"
	"github.com/commentguard/commentguard/automod/textclass"
)

var _ automod.RuleFunc = SensitiveWordRule

// Matches configured words against text, author and mail.
func SensitiveWordRule(c *automod.CommentContext) error {
	words := c.SensitiveWords()
	if len(words) == 0 {
		return nil
	}
	fields := []string{c.Comment.Text, c.Comment.Author, c.Comment.Mail}
	if w := textclass.MatchSensitiveWord(fields, words); w != "" {
		c.Trace("sensitive word hit", "word", w)
		c.Deny(automod.ReasonSensitive, "sensitive word")
	}
	return nil
}
