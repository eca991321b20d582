package rules

import (
	"github.com/commentguard/commentguard/automod"
)

// The moderation checks, in precedence order. The first deny (or an admin exemption) ends evaluation.
func DefaultRules() automod.RuleSet {
	rules := automod.RuleSet{
		Rules: []automod.RuleFunc{
			AdminExemptRule,
			IPBlacklistRule,
			EmailBlacklistRule,
			SensitiveWordRule,
			SpamRule,
			AuthorLengthRule,
			GarbledContentRule,
			StrictEmailRule,
			ContentChineseRule,
			AuthorChineseRule,
			ForeignLanguageRule,
			ExternalClassifierRule,
		},
	}
	return rules
}
