package rules

import (
	"github.com/commentguard/commentguard/automod"
	"github.com/commentguard/commentguard/automod/config"
	"github.com/commentguard/commentguard/automod/textclass"
)

func applyAction(c *automod.CommentContext, action config.Action, reason automod.ReasonCode, label string) {
	switch action {
	case config.ActionDeny:
		c.Deny(reason, label)
	case config.ActionHold:
		c.Hold(reason, label)
	}
}

var _ automod.RuleFunc = ContentChineseRule

func ContentChineseRule(c *automod.CommentContext) error {
	if !textclass.HasChineseScript(c.Comment.Text) {
		applyAction(c, c.Config.ContentChineseAction, automod.ReasonContentNoCN, "no chinese in content")
	}
	return nil
}

var _ automod.RuleFunc = AuthorChineseRule

func AuthorChineseRule(c *automod.CommentContext) error {
	if !textclass.HasChineseScript(c.Comment.Author) {
		applyAction(c, c.Config.AuthorChineseAction, automod.ReasonAuthorNoCN, "no chinese in author")
	}
	return nil
}

var _ automod.RuleFunc = ForeignLanguageRule

func ForeignLanguageRule(c *automod.CommentContext) error {
	if !c.Config.BlockForeignLanguage {
		return nil
	}
	if textclass.IsForeignDominant(c.Comment.Text) {
		c.Deny(automod.ReasonForeignLanguage, "foreign language")
	}
	return nil
}
