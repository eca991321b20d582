package textclass

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Generic and country-code TLDs recognized for bare domains like "example.com". The set is fixed; bare domains with other TLDs are not treated as URLs.
var KnownTLDs = []string{
	"com", "net", "org", "edu", "gov", "info", "biz", "name", "pro", "mobi",
	"xyz", "top", "site", "online", "club", "shop", "store", "vip", "app", "dev",
	"tech", "link", "live", "fun", "icu", "work", "ltd", "wang", "cloud",
	"io", "co", "me", "tv", "cc", "ws", "la", "in", "cn", "hk",
	"tw", "jp", "kr", "uk", "us", "ru", "de", "fr", "eu", "au",
	"ca",
}

var (
	mobilePattern   = regexp.MustCompile(`1[3-9]\d{9}`)
	landlinePattern = regexp.MustCompile(`0\d{2,3}[-\s]?\d{7,8}`)
	tollFreePattern = regexp.MustCompile(`[48]00[-\s]?\d{3}[-\s]?\d{4}`)

	wechatMarkerPattern = regexp.MustCompile(`(?i)(?:微信号|微信|weixin|wx|vx)\s*[:：]?\s*[a-zA-Z0-9_\-]{5,}`)
	wechatTokenPattern  = regexp.MustCompile(`(?i)(?:^|[^a-zA-Z0-9])(?:weixin|wx)_[a-zA-Z0-9_\-]{4,}`)

	schemePattern     = regexp.MustCompile(`(?i)(?:https?|ftp)://`)
	wwwPattern        = regexp.MustCompile(`(?i)www\.[a-z0-9\-]+`)
	bareDomainPattern = regexp.MustCompile(`(?i)\b[a-z0-9](?:[a-z0-9\-]*[a-z0-9])?\.(?:` + strings.Join(KnownTLDs, "|") + `)\b`)
)

// Detects mainland mobile numbers (11 digits starting 13-19), landline numbers with an area code, and 400/800 service numbers.
func HasPhoneNumber(s string) bool {
	return mobilePattern.MatchString(s) || landlinePattern.MatchString(s) || tollFreePattern.MatchString(s)
}

// Detects WeChat IDs advertised in text: a marker ("wx", "vx", "weixin", "微信", "微信号") followed by an ID, or a bare "wx_" / "weixin_" style account token.
func HasWechatID(s string) bool {
	return wechatMarkerPattern.MatchString(s) || wechatTokenPattern.MatchString(s)
}

func HasURL(s string) bool {
	return schemePattern.MatchString(s) || wwwPattern.MatchString(s) || bareDomainPattern.MatchString(s)
}

// Long-chunk repetition is only searched for within this many leading runes. Each chunk size costs a full pass, so the search is quadratic in the scanned length.
const MaxChunkScanRunes = 8192

// Detects flooding: any character repeated six or more times in a row, regardless of text length. For texts of at least 15 characters, also detects a 3-8 character chunk repeated back-to-back at least four times, or a chunk of 10 or more characters repeated back-to-back at least three times within the first MaxChunkScanRunes runes.
//
// RE2 has no back-references, so this is a linear scan per chunk size: for chunk size L, position i "matches" if rune i equals rune i+L, and a run of (k-1)*L matches means a chunk repeated k times.
func HasRepetitiveContent(s string) bool {
	runes := []rune(s)
	if longestRepeatRun(runes, 1) >= 5 {
		return true
	}
	if len(runes) < 15 {
		return false
	}
	for l := 3; l <= 8; l++ {
		if longestRepeatRun(runes, l) >= 3*l {
			return true
		}
	}
	head := runes[:min(len(runes), MaxChunkScanRunes)]
	for l := 10; l*3 <= len(head); l++ {
		if longestRepeatRun(head, l) >= 2*l {
			return true
		}
	}
	return false
}

// longest run of consecutive positions i where runes[i] == runes[i+l]
func longestRepeatRun(runes []rune, l int) int {
	best := 0
	run := 0
	for i := 0; i+l < len(runes); i++ {
		if runes[i] == runes[i+l] {
			run++
			if run > best {
				best = run
			}
		} else {
			run = 0
		}
	}
	return best
}

const (
	SpamPhone      = "phone"
	SpamWechat     = "wechat"
	SpamURL        = "url"
	SpamRepetitive = "repetitive"
)

// Runs the spam heuristics in order and returns the name of the first one which fires, or an empty string.
//
// Phone numbers and WeChat IDs are searched for in both text and author; URLs and flooding only in the text.
func SpamKind(text, author string) string {
	combined := text + " " + author
	if HasPhoneNumber(combined) {
		return SpamPhone
	}
	if HasWechatID(combined) {
		return SpamWechat
	}
	if HasURL(text) {
		return SpamURL
	}
	if HasRepetitiveContent(text) {
		return SpamRepetitive
	}
	return ""
}

// Number of characters (code points) in a string.
func Length(s string) int {
	return utf8.RuneCountInString(s)
}
