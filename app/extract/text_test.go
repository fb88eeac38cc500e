package extract

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestDecodeAndStrip_Entities(t *testing.T) {
	result := DecodeAndStrip("Tom&rsquo;s Hardware &amp; Friends")
	expected := "Tom’s Hardware & Friends"

	if result != expected {
		t.Errorf("Expected %q, got %q", expected, result)
	}
}

func TestDecodeAndStrip_NumericEntities(t *testing.T) {
	result := DecodeAndStrip("Before&#8212;after and some&#160;space")
	expected := "Before—after and some space"

	if result != expected {
		t.Errorf("Expected %q, got %q", expected, result)
	}
}

func TestDecodeAndStrip_RemovesTags(t *testing.T) {
	result := DecodeAndStrip(`<p>A <strong>great</strong> find: <a href="https://example.com">Widget</a></p>`)
	expected := "A great find: Widget"

	if result != expected {
		t.Errorf("Expected %q, got %q", expected, result)
	}
}

func TestDecodeAndStrip_CollapsesWhitespace(t *testing.T) {
	result := DecodeAndStrip("  too\n\tmuch   space  ")
	expected := "too much space"

	if result != expected {
		t.Errorf("Expected %q, got %q", expected, result)
	}
}

func TestDecodeAndStrip_UnknownEntityPassesThrough(t *testing.T) {
	result := DecodeAndStrip("a &bogus; entity")
	expected := "a &bogus; entity"

	if result != expected {
		t.Errorf("Expected %q, got %q", expected, result)
	}
}

func TestTruncate_ShortStringUnchanged(t *testing.T) {
	result := truncate("short enough", 500)

	if result != "short enough" {
		t.Errorf("Expected input unchanged, got %q", result)
	}
}

func TestTruncate_NeverSplitsRune(t *testing.T) {
	// 200 em-dashes are 600 bytes; byte 500 lands inside a dash.
	input := strings.Repeat("—", 200)

	result := truncate(input, 500)

	if len(result) > 500 {
		t.Errorf("Expected at most 500 bytes, got %d", len(result))
	}
	if !utf8.ValidString(result) {
		t.Errorf("Expected valid UTF-8, got trailing bytes %q", result[len(result)-4:])
	}
	if result != strings.Repeat("—", 166) {
		t.Errorf("Expected cut at the last whole dash, got %d bytes", len(result))
	}
}
