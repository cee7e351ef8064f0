// Package textwidth measures and truncates strings by terminal display
// columns. It builds on go-runewidth for East Asian and emoji width
// classification and additionally tolerates ill-formed input: session logs
// occasionally carry lone UTF-16 surrogates that survived a lossy transcode,
// encoded as three-byte sequences the utf8 package rejects.
package textwidth

import (
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// Ellipsis is appended to truncated strings. Three ASCII dots, width 3.
const Ellipsis = "..."

const ellipsisWidth = 3

const (
	surrogateMin     = 0xD800
	highSurrogateMax = 0xDBFF
	lowSurrogateMin  = 0xDC00
	surrogateMax     = 0xDFFF
)

// emojiRanges covers symbol blocks rendered double-width by terminal emoji
// fonts that go-runewidth classifies as narrow outside East Asian locales.
var emojiRanges = [...][2]rune{
	{0x2600, 0x27BF},   // misc symbols, dingbats
	{0x2B00, 0x2BFF},   // misc symbols and arrows
	{0x1F000, 0x1FAFF}, // supplementary-plane emoji
}

// RuneWidth returns the number of terminal columns r occupies: 2 for CJK
// ideographs, Hangul, fullwidth forms, CJK punctuation and emoji, 0 for
// combining marks and a lone low surrogate, 1 otherwise. A lone high
// surrogate counts as 2, matching the width its completed pair would have.
func RuneWidth(r rune) int {
	switch {
	case r >= lowSurrogateMin && r <= surrogateMax:
		return 0
	case r >= surrogateMin && r <= highSurrogateMax:
		return 2
	}
	for _, rng := range emojiRanges {
		if r >= rng[0] && r <= rng[1] {
			return 2
		}
	}
	return runewidth.RuneWidth(r)
}

// DecodeUnit decodes one display unit from the front of s and returns its
// column width and the number of bytes consumed. A surrogate pair is
// consumed atomically as a single unit of width 2, never split. Returns
// (0, 0) for an empty string.
func DecodeUnit(s string) (width, size int) {
	if s == "" {
		return 0, 0
	}
	r, n := utf8.DecodeRuneInString(s)
	if r != utf8.RuneError || n > 1 {
		return RuneWidth(r), n
	}

	// Ill-formed bytes. Surrogates arrive WTF-8 encoded as ED A0..BF 80..BF.
	if h, ok := decodeSurrogate(s); ok {
		if h <= highSurrogateMax {
			if l, ok := decodeSurrogate(s[3:]); ok && l >= lowSurrogateMin {
				return 2, 6
			}
			return 2, 3 // orphan high surrogate
		}
		return 0, 3 // orphan low surrogate
	}
	return 1, 1
}

func decodeSurrogate(s string) (rune, bool) {
	if len(s) < 3 {
		return 0, false
	}
	if s[0] != 0xED || s[1] < 0xA0 || s[1] > 0xBF || s[2] < 0x80 || s[2] > 0xBF {
		return 0, false
	}
	r := rune(s[0]&0x0F)<<12 | rune(s[1]&0x3F)<<6 | rune(s[2]&0x3F)
	return r, true
}

// StringWidth returns the total column width of s.
func StringWidth(s string) int {
	total := 0
	for s != "" {
		w, n := DecodeUnit(s)
		if n == 0 {
			break
		}
		total += w
		s = s[n:]
	}
	return total
}

// Truncate shortens s so that it fits in maxWidth columns, appending an
// ellipsis when anything was cut. The prefix is chosen so that prefix width
// plus ellipsis width does not exceed maxWidth; if not even the first unit
// fits, the ellipsis alone is returned. Strings that already fit come back
// unchanged.
func Truncate(s string, maxWidth int) string {
	if StringWidth(s) <= maxWidth {
		return s
	}
	prefix, _ := widthPrefix(s, maxWidth-ellipsisWidth)
	return prefix + Ellipsis
}

// TruncateStrict behaves like Truncate but guarantees the returned string,
// ellipsis included, never exceeds maxWidth columns for any input. When
// maxWidth is 3 or less only dots are returned, fewer than three if they do
// not fit.
func TruncateStrict(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= ellipsisWidth {
		return strings.Repeat(".", maxWidth)
	}
	prefix, _ := widthPrefix(s, maxWidth-ellipsisWidth)
	return prefix + Ellipsis
}

// Pad right-pads s with spaces to the given column width. Strings already
// at or past the width come back unchanged.
func Pad(s string, width int) string {
	w := StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// widthPrefix returns the longest prefix of s whose width does not exceed
// budget, along with its width, consuming surrogate pairs atomically.
func widthPrefix(s string, budget int) (string, int) {
	used := 0
	end := 0
	rest := s
	for rest != "" {
		w, n := DecodeUnit(rest)
		if n == 0 {
			break
		}
		if used+w > budget {
			break
		}
		used += w
		end += n
		rest = rest[n:]
	}
	return s[:end], used
}
