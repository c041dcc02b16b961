// Package slug derives URL-safe identifiers from free text and resolves
// collisions against the values already stored in a column.
package slug

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/gosimple/unidecode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fallback is used when the source text has no letters or digits.
const Fallback = "untitled"

// MaxLength bounds a candidate so that candidate plus a "-N" suffix fits the
// 255 byte slug column.
const MaxLength = 240

var ErrNotNumeric = errors.New("slug suffix is not numeric")

var symbols = strings.NewReplacer(
	"&", " and ",
	"%", " percent ",
	"$", " dollar ",
	"|", " or ",
	"<", " less ",
	">", " greater ",
	"ß", "ss",
	"æ", "ae",
	"œ", "oe",
	"ø", "o",
	"đ", "d",
	"ł", "l",
	"þ", "th",
	"ð", "d",
)

// Make lowercases source, strips diacritics, transliterates other scripts to
// ASCII and collapses everything that is not a letter or digit into single
// hyphens. The result is at most MaxLength bytes and never ends in a hyphen.
func Make(source string) string {
	s := symbols.Replace(strings.ToLower(source))

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if stripped, _, err := transform.String(t, s); err == nil {
		s = stripped
	}
	s = strings.ToLower(unidecode.Unidecode(s))

	var b strings.Builder
	b.Grow(len(s))
	pendingDash := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			pendingDash = false
			continue
		}
		pendingDash = true
	}
	return truncate(b.String(), MaxLength)
}

// truncate cuts s to at most n bytes, at the last hyphen when one falls inside
// the kept part. s is ASCII.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if s[n] == '-' {
		return s[:n]
	}
	cut := s[:n]
	if i := strings.LastIndexByte(cut, '-'); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, "-")
}

// MaxNumber returns the suffix that follows matched. An exact match yields 1,
// otherwise the trailing hyphen segment of matched plus one.
func MaxNumber(matched, candidate string) (int, error) {
	if matched == candidate {
		return 1, nil
	}
	tail := matched[strings.LastIndex(matched, "-")+1:]
	n, err := strconv.Atoi(tail)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrNotNumeric, matched)
	}
	return n + 1, nil
}

// Lookup finds the most recently inserted value that equals candidate or is
// candidate followed by "-<digits>". It returns "" when nothing matches.
type Lookup interface {
	Latest(ctx context.Context, candidate string) (string, error)
}

type Generator struct {
	lookup Lookup
}

func NewGenerator(lookup Lookup) *Generator {
	return &Generator{lookup: lookup}
}

// CreateUnique returns a slug for source that does not collide with the
// latest stored match. The latest match is chosen by primary key, not by
// suffix, so out-of-order suffixes can produce a lower counter than the
// highest one stored. The unique index on the column is the final authority.
func (g *Generator) CreateUnique(ctx context.Context, source string) (string, error) {
	candidate := Make(source)
	if candidate == "" {
		candidate = Fallback
	}

	matched, err := g.lookup.Latest(ctx, candidate)
	if err != nil {
		return "", fmt.Errorf("looking up existing slugs: %w", err)
	}
	if matched == "" {
		return candidate, nil
	}

	n, err := MaxNumber(matched, candidate)
	if err != nil {
		return "", err
	}
	return candidate + "-" + strconv.Itoa(n), nil
}

// hasNumericSuffix reports whether value is candidate or candidate-<digits>.
func hasNumericSuffix(value, candidate string) bool {
	if value == candidate {
		return true
	}
	rest, ok := strings.CutPrefix(value, candidate+"-")
	if !ok || rest == "" {
		return false
	}
	for _, r := range rest {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
