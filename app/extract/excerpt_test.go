package extract

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestExtractExcerpt_CapsAndStaysValidUTF8(t *testing.T) {
	long := strings.Repeat("a long stretch of prose — with dashes — repeated over and over. ", 40)
	html := `<html><head><title>Some Page</title></head><body><article><p>` + long + `</p></article></body></html>`

	excerpt := ExtractExcerpt(html)

	if len(excerpt) > 500 {
		t.Errorf("Expected excerpt capped at 500 bytes, got %d", len(excerpt))
	}
	if !utf8.ValidString(excerpt) {
		t.Errorf("Expected valid UTF-8 excerpt, got trailing bytes %q", excerpt[len(excerpt)-4:])
	}
}

func TestExtractExcerpt_EmptyPage(t *testing.T) {
	excerpt := ExtractExcerpt("<html><body></body></html>")

	if excerpt != "" {
		t.Errorf("Expected empty excerpt, got %q", excerpt)
	}
}
