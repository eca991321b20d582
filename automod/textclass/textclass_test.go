package textclass

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHasChineseScript(t *testing.T) {
	assert := assert.New(t)

	fixtures := []struct {
		text string
		out  bool
	}{
		{out: false, text: ""},
		{out: false, text: "hello"},
		{out: true, text: "正常内容"},
		{out: true, text: "mixed 中 text"},
		{out: false, text: "こんにちは"},
		{out: false, text: "Привет"},
	}

	for _, fix := range fixtures {
		assert.Equal(fix.out, HasChineseScript(fix.text), fix.text)
	}
}

func TestIsForeignDominant(t *testing.T) {
	assert := assert.New(t)

	fixtures := []struct {
		text string
		out  bool
	}{
		{out: false, text: ""},
		{out: false, text: "Пр"},
		{out: true, text: "Привет"},
		{out: true, text: "Привет, как дела?"},
		{out: false, text: "Привет 你好"},
		{out: true, text: "안녕하세요"},
		{out: true, text: "ありがとう"},
		{out: true, text: "สวัสดีครับ"},
		{out: false, text: "hello world"},
		{out: false, text: "hi Привет there everyone"},
	}

	for _, fix := range fixtures {
		assert.Equal(fix.out, IsForeignDominant(fix.text), fix.text)
	}
}

func TestHasPhoneNumber(t *testing.T) {
	assert := assert.New(t)

	fixtures := []struct {
		text string
		out  bool
	}{
		{out: false, text: "no numbers here"},
		{out: true, text: "call 13812345678 now"},
		{out: false, text: "12812345678"},
		{out: true, text: "office 010-12345678"},
		{out: true, text: "0755 1234567"},
		{out: true, text: "hotline 400-123-4567"},
		{out: true, text: "8001234567"},
		{out: false, text: "version 3.14 released"},
	}

	for _, fix := range fixtures {
		assert.Equal(fix.out, HasPhoneNumber(fix.text), fix.text)
	}
}

func TestHasWechatID(t *testing.T) {
	assert := assert.New(t)

	fixtures := []struct {
		text string
		out  bool
	}{
		{out: false, text: "nice post"},
		{out: true, text: "加我微信wx_abcd1234有优惠"},
		{out: true, text: "微信号: hello_world"},
		{out: true, text: "VX abc123456"},
		{out: true, text: "contact weixin_abcd"},
		{out: false, text: "wx ab"},
		{out: false, text: "微信很好用"},
	}

	for _, fix := range fixtures {
		assert.Equal(fix.out, HasWechatID(fix.text), fix.text)
	}
}

func TestHasURL(t *testing.T) {
	assert := assert.New(t)

	fixtures := []struct {
		text string
		out  bool
	}{
		{out: false, text: "just words"},
		{out: true, text: "see https://example.org/page"},
		{out: true, text: "ftp://files"},
		{out: true, text: "visit www.somewhere"},
		{out: true, text: "go to example.com today"},
		{out: true, text: "mirror at foo.cn"},
		{out: false, text: "pi is 3.14"},
		{out: false, text: "readme.txt attached"},
		{out: false, text: "the example.company"},
	}

	for _, fix := range fixtures {
		assert.Equal(fix.out, HasURL(fix.text), fix.text)
	}
}

func TestHasRepetitiveContent(t *testing.T) {
	assert := assert.New(t)

	fixtures := []struct {
		text string
		out  bool
	}{
		{out: true, text: "aaaaaaaa bbb"},
		{out: false, text: "hello world this is fine"},
		{out: false, text: "aaaaa"},
		{out: true, text: "好好好好好好"},
		{out: true, text: "abcabcabcabc and more text"},
		{out: false, text: "abcabcabc and more text"},
		{out: true, text: "spam text, spam text, spam text, "},
		{out: false, text: "spam text, spam text, fine"},
		{out: false, text: "ababab"},
	}

	for _, fix := range fixtures {
		assert.Equal(fix.out, HasRepetitiveContent(fix.text), fix.text)
	}
}

// n runes of CJK text where no two runes less than 20000 positions apart are equal
func nonRepeatingText(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteRune(rune(0x4E00 + (i*7919)%20000))
	}
	return b.String()
}

func TestHasRepetitiveContentLongText(t *testing.T) {
	assert := assert.New(t)

	chunk := "abcdefghijklmn"
	assert.True(HasRepetitiveContent(nonRepeatingText(100) + strings.Repeat(chunk, 3)))
	// long chunks past the scanned prefix are not searched for
	assert.False(HasRepetitiveContent(nonRepeatingText(MaxChunkScanRunes) + strings.Repeat(chunk, 3)))
	// single-rune and short-chunk floods are found anywhere
	assert.True(HasRepetitiveContent(nonRepeatingText(MaxChunkScanRunes*4) + "!!!!!!"))
	assert.True(HasRepetitiveContent(nonRepeatingText(MaxChunkScanRunes*4) + strings.Repeat("xyz", 4)))

	// a body-limit sized comment stays well inside the classifier timeout
	text := nonRepeatingText(1 << 20)
	start := time.Now()
	assert.False(HasRepetitiveContent(text))
	assert.Less(time.Since(start), 2*time.Second)
}

func TestSpamKind(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("", SpamKind("a normal comment", "alice"))
	assert.Equal(SpamPhone, SpamKind("hi", "13812345678"))
	assert.Equal(SpamWechat, SpamKind("加我微信wx_abcd1234有优惠", "abc"))
	assert.Equal(SpamURL, SpamKind("check example.com", "bob"))
	assert.Equal("", SpamKind("nothing", "example.com"))
	assert.Equal(SpamRepetitive, SpamKind("!!!!!!!!", "bob"))
}

func TestHasGarbledContent(t *testing.T) {
	assert := assert.New(t)

	fixtures := []struct {
		author string
		mail   string
		text   string
		out    bool
	}{
		{out: false, author: "张三", mail: "zhangsan@qq.com", text: "正常内容很好"},
		{out: false, author: "john_doe-2", mail: "john.doe+blog@example.com", text: "hello there"},
		{out: false, author: "", mail: "", text: ""},
		{out: true, author: "★☆★☆", mail: "", text: ""},
		{out: true, author: "ab\x01", mail: "", text: ""},
		{out: true, author: "....", mail: "", text: ""},
		{out: false, author: "a b", mail: "", text: ""},
		{out: true, author: "bob", mail: "¤¤¤¤a@example.com", text: ""},
		{out: true, author: "bob", mail: "a\x02b@example.com", text: ""},
		{out: true, author: "bob", mail: "", text: "\x01\x02\x03a"},
		{out: true, author: "bob", mail: "", text: "look " + strings.Repeat("▓", 15)},
		{out: false, author: "bob", mail: "", text: "look " + strings.Repeat("▓", 14)},
	}

	for _, fix := range fixtures {
		assert.Equal(fix.out, HasGarbledContent(fix.author, fix.mail, fix.text), "%q %q %q", fix.author, fix.mail, fix.text)
	}
}

func TestIsInvalidEmail(t *testing.T) {
	assert := assert.New(t)

	fixtures := []struct {
		mail string
		out  bool
	}{
		{out: false, mail: ""},
		{out: true, mail: "not-an-address"},
		{out: true, mail: "a@b"},
		{out: false, mail: "123@qq.com"},
		{out: false, mail: "123@QQ.COM"},
		{out: true, mail: "123@unknowndomain.com"},
		{out: true, mail: "4567@unknowndomain.com"},
		{out: true, mail: "fake.user@somewhere.net"},
		{out: false, mail: "zhangsan@somewhere.net"},
	}

	for _, fix := range fixtures {
		assert.Equal(fix.out, IsInvalidEmail(fix.mail), fix.mail)
	}
}

func TestHasSensitiveWord(t *testing.T) {
	assert := assert.New(t)

	words := []string{"Casino", "赌博"}
	assert.False(HasSensitiveWord([]string{"", "", ""}, words))
	assert.False(HasSensitiveWord([]string{"casino"}, nil))
	assert.True(HasSensitiveWord([]string{"best CASINO online", "", ""}, words))
	assert.True(HasSensitiveWord([]string{"hello", "网上赌博", ""}, words))
	assert.True(HasSensitiveWord([]string{"hello", "bob", "casino@example.com"}, words))
	assert.False(HasSensitiveWord([]string{"hello", "bob", "bob@example.com"}, words))
	assert.True(HasSensitiveWord([]string{"STRASSE"}, []string{"straße"}))
	assert.Equal("Casino", MatchSensitiveWord([]string{"赌博 casino"}, words))
	assert.Equal("赌博", MatchSensitiveWord([]string{"bob", "赌博"}, words))
}
