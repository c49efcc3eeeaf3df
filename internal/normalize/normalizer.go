// Package normalize maps raw categorical labels to canonical grouping keys.
//
// Labels arrive from the production database with inconsistent accents,
// casing, surrounding whitespace and a few historically miskeyed spellings.
// Two labels with the same key are the same real-world category. Keys are
// used only for grouping and are never shown to users.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// CanonicalKey is the grouping key derived from a raw label.
type CanonicalKey string

// combiningMarks is the Combining Diacritical Marks block (U+0300..U+036F).
var combiningMarks = &unicode.RangeTable{
	R16: []unicode.Range16{{Lo: 0x0300, Hi: 0x036f, Stride: 1}},
}

// Normalizer is immutable after construction and safe for concurrent use.
type Normalizer struct {
	corrections []compiledCorrection
}

type compiledCorrection struct {
	re          *regexp.Regexp
	replacement string
}

// New builds a Normalizer applying corrections in the given order.
func New(corrections []Correction) *Normalizer {
	n := &Normalizer{corrections: make([]compiledCorrection, 0, len(corrections))}
	for _, c := range corrections {
		if c.Pattern == "" {
			continue
		}
		n.corrections = append(n.corrections, compiledCorrection{
			re:          regexp.MustCompile("(?i)" + regexp.QuoteMeta(c.Pattern)),
			replacement: c.Replacement,
		})
	}
	return n
}

// NewDefault builds a Normalizer with DefaultCorrections.
func NewDefault() *Normalizer {
	return New(DefaultCorrections())
}

// Key derives the canonical key of raw: legacy corrections, canonical
// decomposition with combining marks removed, lowercase, trimmed.
func (n *Normalizer) Key(raw string) CanonicalKey {
	s := raw
	if n != nil {
		for _, c := range n.corrections {
			s = c.re.ReplaceAllLiteralString(s, c.replacement)
		}
	}
	return CanonicalKey(strings.TrimSpace(strings.ToLower(stripMarks(s))))
}

// KeyOf is Key for nullable labels. A missing label maps to the empty key,
// which is a valid group of its own.
func (n *Normalizer) KeyOf(raw *string) CanonicalKey {
	if raw == nil {
		return ""
	}
	return n.Key(*raw)
}

// Len reports how many corrections are active.
func (n *Normalizer) Len() int {
	if n == nil {
		return 0
	}
	return len(n.corrections)
}

func stripMarks(s string) string {
	// transform chains carry state, so one is built per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(combiningMarks)))
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
