package auditlog

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

const (
	MaxTextLength = 200
	// author, mail and ip are cut to this many code points
	MaxFieldLength = 200
)

// One audit line. Time is a human-readable local timestamp.
type Record struct {
	Time   string `json:"time"`
	Author string `json:"author"`
	Mail   string `json:"mail"`
	IP     string `json:"ip"`
	Text   string `json:"text"`
	Reason string `json:"reason"`
}

var newlineRun = regexp.MustCompile(`[\r\n]+`)

// Collapses newline runs to a single space, and truncates to at most MaxTextLength code points without splitting a grapheme cluster.
func TruncateText(s string) string {
	return truncate(s, MaxTextLength)
}

func truncate(s string, max int) string {
	s = newlineRun.ReplaceAllString(s, " ")
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	var b strings.Builder
	count := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		runes := g.Runes()
		if count+len(runes) > max {
			break
		}
		count += len(runes)
		b.WriteString(g.Str())
	}
	return b.String()
}

func NewRecord(now time.Time, author, mail, ip, text, reason string) Record {
	return Record{
		Time:   now.Local().Format("2006-01-02 15:04:05"),
		Author: author,
		Mail:   mail,
		IP:     ip,
		Text:   text,
		Reason: reason,
	}.bounded()
}

// Every field cut to its maximum length, so a single line stays small.
func (r Record) bounded() Record {
	return Record{
		Time:   truncate(r.Time, MaxFieldLength),
		Author: truncate(r.Author, MaxFieldLength),
		Mail:   truncate(r.Mail, MaxFieldLength),
		IP:     truncate(r.IP, MaxFieldLength),
		Text:   TruncateText(r.Text),
		Reason: truncate(r.Reason, MaxFieldLength),
	}
}
