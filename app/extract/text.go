package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Named entities seen in practice in newsletter markup, plus their numeric
// equivalents. Unknown entities pass through unchanged.
var entityReplacer = strings.NewReplacer(
	"&rsquo;", "’",
	"&lsquo;", "‘",
	"&rdquo;", "”",
	"&ldquo;", "“",
	"&#8217;", "’",
	"&#8216;", "‘",
	"&#8221;", "”",
	"&#8220;", "“",
	"&mdash;", "—",
	"&ndash;", "–",
	"&#8212;", "—",
	"&#8211;", "–",
	"&hellip;", "…",
	"&#8230;", "…",
	"&nbsp;", " ",
	"&#160;", " ",
	"&amp;", "&",
	"&#38;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", "\"",
	"&#39;", "'",
	"&apos;", "'",
	"&eacute;", "é",
	"&egrave;", "è",
	"&agrave;", "à",
	"&ccedil;", "ç",
	"&uuml;", "ü",
	"&ouml;", "ö",
	"&auml;", "ä",
	"&ntilde;", "ñ",
)

var (
	tagPattern        = regexp.MustCompile(`<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// DecodeAndStrip turns a fragment of markup into clean text: entities
// decoded, tags removed, whitespace collapsed. Every string pulled from
// markup goes through here before it is compared, stored or pattern-matched.
func DecodeAndStrip(raw string) string {
	s := entityReplacer.Replace(raw)
	s = tagPattern.ReplaceAllString(s, " ")
	s = whitespacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// truncate caps s at max bytes, stepping back so a multibyte rune is never
// split. Decoded text routinely carries em-dashes and curly quotes, so the
// cap must not land inside a UTF-8 sequence.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return strings.TrimSpace(s[:cut])
}
