package textclass

import (
	"regexp"
	"slices"
	"strings"
)

// Large mail providers whose addresses are never flagged by the strict email check, even with all-digit local parts (eg, QQ numbers).
var TrustedMailDomains = []string{
	"qq.com",
	"163.com",
	"126.com",
	"sina.com",
	"sohu.com",
	"foxmail.com",
	"aliyun.com",
	"gmail.com",
	"outlook.com",
	"hotmail.com",
	"yahoo.com",
	"icloud.com",
}

// Substrings which mark throwaway or placeholder addresses.
var SuspiciousMailKeywords = []string{
	"test",
	"temp",
	"fake",
	"spam",
	"123",
	"aaa",
	"example",
	"sample",
	"demo",
	"xxx",
}

var (
	mailShapePattern = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)+$`)
	allDigitsPattern = regexp.MustCompile(`^[0-9]+$`)
)

// Strict email check. An empty address is not invalid (mail may be optional). Addresses at trusted providers are always accepted once they are well-formed.
func IsInvalidEmail(mail string) bool {
	if mail == "" {
		return false
	}
	if !mailShapePattern.MatchString(mail) {
		return true
	}
	at := strings.LastIndex(mail, "@")
	local := mail[:at]
	domain := strings.ToLower(mail[at+1:])
	if slices.Contains(TrustedMailDomains, domain) {
		return false
	}
	lower := strings.ToLower(mail)
	for _, kw := range SuspiciousMailKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return allDigitsPattern.MatchString(local)
}
