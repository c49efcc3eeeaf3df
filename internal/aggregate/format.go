package aggregate

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"prodboard/internal/core"
)

// DisplayPolicy selects which categories get their display labels capitalized.
type DisplayPolicy string

const (
	DisplayAll      DisplayPolicy = "all"
	DisplayMaterial DisplayPolicy = "material"
	DisplayNone     DisplayPolicy = "none"
)

// ParseDisplayPolicy accepts the configuration spelling of a policy.
func ParseDisplayPolicy(s string) (DisplayPolicy, error) {
	switch p := DisplayPolicy(s); p {
	case DisplayAll, DisplayMaterial, DisplayNone:
		return p, nil
	case "":
		return DisplayAll, nil
	default:
		return "", fmt.Errorf("unknown display policy %q", s)
	}
}

// Formatter applies presentation to aggregated labels. It never touches keys
// and must run after aggregation.
type Formatter struct {
	policy DisplayPolicy
}

func NewFormatter(policy DisplayPolicy) Formatter {
	return Formatter{policy: policy}
}

// Applies reports whether labels of kind are formatted under the policy.
func (f Formatter) Applies(kind core.CategoryKind) bool {
	switch f.policy {
	case DisplayNone:
		return false
	case DisplayMaterial:
		return kind == core.CategoryMaterial
	default:
		return true
	}
}

// Label formats a single display label of the given kind.
func (f Formatter) Label(kind core.CategoryKind, label string) string {
	if !f.Applies(kind) {
		return label
	}
	return CapitalizeFirst(label)
}

// Format returns a formatted copy of rows.
func (f Formatter) Format(kind core.CategoryKind, rows []core.AggregatedCategory) []core.AggregatedCategory {
	out := make([]core.AggregatedCategory, len(rows))
	for i, r := range rows {
		out[i] = core.AggregatedCategory{Label: f.Label(kind, r.Label), Quantity: r.Quantity}
	}
	return out
}

// FormatDaily is Format for per-day rows.
func (f Formatter) FormatDaily(kind core.CategoryKind, rows []core.DailyAggregatedCategory) []core.DailyAggregatedCategory {
	out := make([]core.DailyAggregatedCategory, len(rows))
	for i, r := range rows {
		r.Label = f.Label(kind, r.Label)
		out[i] = r
	}
	return out
}

// CapitalizeFirst upper-cases only the first character.
func CapitalizeFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
