package textclass

import (
	"strings"
)

func isASCIIAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

func isWhitespace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

// raw control characters, excluding tab, line feed and carriage return
func isControl(r rune) bool {
	return (r >= 0x00 && r <= 0x08) || r == 0x0B || r == 0x0C || (r >= 0x0E && r <= 0x1F)
}

func hasControl(s string) bool {
	return strings.IndexFunc(s, isControl) >= 0
}

func isMailLocalChar(r rune) bool {
	return isASCIIAlnum(r) || r == '.' || r == '-' || r == '_' || r == '+'
}

// Returns true if any of the author, mail or text fields looks like garbage: mostly symbols, raw control characters, or long runs of symbol noise.
func HasGarbledContent(author, mail, text string) bool {
	return garbledAuthor(author) || garbledMail(mail) || garbledText(text)
}

func garbledAuthor(author string) bool {
	total := 0
	odd := 0
	plain := 0
	for _, r := range author {
		total++
		if isControl(r) {
			return true
		}
		if isCJK(r) || isASCIIAlnum(r) {
			plain++
			continue
		}
		if !isWhitespace(r) && r != '-' && r != '_' {
			odd++
		}
	}
	if total == 0 {
		return false
	}
	if float64(odd) > float64(total)*0.5 {
		return true
	}
	return total >= 4 && plain == 0
}

func garbledMail(mail string) bool {
	local := mail
	if idx := strings.Index(mail, "@"); idx >= 0 {
		local = mail[:idx]
	}
	if local == "" {
		return false
	}
	if hasControl(local) {
		return true
	}
	total := 0
	odd := 0
	for _, r := range local {
		total++
		if !isMailLocalChar(r) {
			odd++
		}
	}
	return float64(odd) > float64(total)*0.6
}

func garbledText(text string) bool {
	total := 0
	controls := 0
	run := 0
	for _, r := range text {
		total++
		if isControl(r) {
			controls++
		}
		if isCJK(r) || isASCIIAlnum(r) || isWhitespace(r) {
			run = 0
			continue
		}
		run++
		if run >= 15 {
			return true
		}
	}
	if total == 0 {
		return false
	}
	return float64(controls) > float64(total)*0.5
}
