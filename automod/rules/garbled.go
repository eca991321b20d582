package rules

import (
	"github.com/commentguard/commentguard/automod"
	"github.com/commentguard/commentguard/automod/textclass"
)

var _ automod.RuleFunc = GarbledContentRule

func GarbledContentRule(c *automod.CommentContext) error {
	if !c.Config.BlockGarbled {
		return nil
	}
	if textclass.HasGarbledContent(c.Comment.Author, c.Comment.Mail, c.Comment.Text) {
		c.Deny(automod.ReasonGarbledContent, "garbled content")
	}
	return nil
}

var _ automod.RuleFunc = StrictEmailRule

func StrictEmailRule(c *automod.CommentContext) error {
	if !c.Config.StrictEmail {
		return nil
	}
	if textclass.IsInvalidEmail(c.Comment.Mail) {
		c.Deny(automod.ReasonInvalidEmail, "invalid email")
	}
	return nil
}
