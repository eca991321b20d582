package textclass

import (
	"unicode/utf8"
)

// Returns true if the string contains at least one CJK Unified Ideograph (U+4E00 to U+9FA5).
func HasChineseScript(s string) bool {
	for _, r := range s {
		if isCJK(r) {
			return true
		}
	}
	return false
}

func isCJK(r rune) bool {
	return r >= 0x4E00 && r <= 0x9FA5
}

func isForeignScript(r rune) bool {
	switch {
	case r >= 0x0400 && r <= 0x04FF: // cyrillic
		return true
	case r >= 0xAC00 && r <= 0xD7AF, r >= 0x1100 && r <= 0x11FF: // hangul
		return true
	case r >= 0x3040 && r <= 0x30FF: // hiragana, katakana
		return true
	case r >= 0x0600 && r <= 0x06FF: // arabic
		return true
	case r >= 0x0E00 && r <= 0x0E7F: // thai
		return true
	}
	return false
}

// Returns true if more than 60% of the characters in the string belong to Cyrillic, Hangul, Japanese kana, Arabic or Thai scripts, and the string contains no Chinese at all.
//
// Strings shorter than three characters are never considered foreign-dominant.
func IsForeignDominant(s string) bool {
	total := utf8.RuneCountInString(s)
	if total < 3 {
		return false
	}
	if HasChineseScript(s) {
		return false
	}
	foreign := 0
	for _, r := range s {
		if isForeignScript(r) {
			foreign++
		}
	}
	return float64(foreign) > float64(total)*0.6
}
