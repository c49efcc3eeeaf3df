// Package aggregate collapses raw per-label partial sums into canonical groups.
package aggregate

import (
	"prodboard/internal/core"
	"prodboard/internal/normalize"
)

// Aggregate regroups rows by canonical key. The first raw label seen for a key
// becomes its display label and output preserves first-seen order. Quantities
// below zero are counted as zero.
func Aggregate(rows []core.CategoryCount, n *normalize.Normalizer) []core.AggregatedCategory {
	out := make([]core.AggregatedCategory, 0, len(rows))
	index := make(map[normalize.CanonicalKey]int, len(rows))

	for _, row := range rows {
		key := n.KeyOf(row.Label)
		i, seen := index[key]
		if !seen {
			i = len(out)
			index[key] = i
			out = append(out, core.AggregatedCategory{Label: core.LabelOrEmpty(row.Label)})
		}
		out[i].Quantity += quantity(row.Quantity)
	}
	return out
}

// AggregateDaily applies the Aggregate rule independently inside each day.
// Days keep their input order, and so do groups within a day.
func AggregateDaily(rows []core.DailyCategoryCount, n *normalize.Normalizer) []core.DailyAggregatedCategory {
	type dayKey struct {
		day string
		key normalize.CanonicalKey
	}

	out := make([]core.DailyAggregatedCategory, 0, len(rows))
	index := make(map[dayKey]int, len(rows))

	for _, row := range rows {
		k := dayKey{day: row.Day, key: n.KeyOf(row.Label)}
		i, seen := index[k]
		if !seen {
			i = len(out)
			index[k] = i
			out = append(out, core.DailyAggregatedCategory{Day: row.Day, Label: core.LabelOrEmpty(row.Label)})
		}
		out[i].Quantity += quantity(row.Quantity)
	}
	return out
}

func quantity(q int64) int64 {
	if q < 0 {
		return 0
	}
	return q
}
