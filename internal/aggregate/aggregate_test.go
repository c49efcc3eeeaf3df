package aggregate

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prodboard/internal/core"
	"prodboard/internal/normalize"
)

func rows(pairs ...any) []core.CategoryCount {
	out := make([]core.CategoryCount, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		var label *string
		if s, ok := pairs[i].(string); ok {
			label = core.NewLabel(s)
		}
		out = append(out, core.CategoryCount{Label: label, Quantity: int64(pairs[i+1].(int))})
	}
	return out
}

func TestAggregate(t *testing.T) {
	n := normalize.NewDefault()

	tests := []struct {
		name string
		in   []core.CategoryCount
		want []core.AggregatedCategory
	}{
		{
			name: "accent case and whitespace collapse, first label wins",
			in:   rows("Plástico", 3, "plastico", 2, "PLASTICO ", 5),
			want: []core.AggregatedCategory{{Label: "Plástico", Quantity: 10}},
		},
		{
			name: "legacy corrupted spelling",
			in:   rows("Médio", 4, "M?dio", 1),
			want: []core.AggregatedCategory{{Label: "Médio", Quantity: 5}},
		},
		{
			name: "insertion order preserved",
			in:   rows("Azul", 2, "azul", 3, "Vermelho", 1),
			want: []core.AggregatedCategory{{Label: "Azul", Quantity: 5}, {Label: "Vermelho", Quantity: 1}},
		},
		{
			name: "order is discovery not magnitude",
			in:   rows("Verde", 1, "Azul", 100, "verde", 1),
			want: []core.AggregatedCategory{{Label: "Verde", Quantity: 2}, {Label: "Azul", Quantity: 100}},
		},
		{
			name: "first seen is not re-selected by frequency",
			in:   rows("PLASTICO", 1, "Plástico", 50, "Plástico", 50),
			want: []core.AggregatedCategory{{Label: "PLASTICO", Quantity: 101}},
		},
		{
			name: "missing label groups with empty label",
			in:   rows(nil, 2, "Azul", 1, "", 3, nil, 1),
			want: []core.AggregatedCategory{{Label: "", Quantity: 6}, {Label: "Azul", Quantity: 1}},
		},
		{
			name: "zero quantities keep their group",
			in:   rows("Grande", 0, "Pequeno", 0),
			want: []core.AggregatedCategory{{Label: "Grande", Quantity: 0}, {Label: "Pequeno", Quantity: 0}},
		},
		{
			name: "negative quantity counts as zero",
			in:   rows("Grande", -4, "grande", 2),
			want: []core.AggregatedCategory{{Label: "Grande", Quantity: 2}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Aggregate(tt.in, n))
		})
	}
}

func TestAggregate_Empty(t *testing.T) {
	n := normalize.NewDefault()

	got := Aggregate(nil, n)
	require.NotNil(t, got)
	assert.Empty(t, got)

	got = Aggregate([]core.CategoryCount{}, n)
	assert.Empty(t, got)
}

func TestAggregate_Properties(t *testing.T) {
	n := normalize.NewDefault()
	vocabulary := []string{
		"Plástico", "plastico", "PLASTICO ", "Pl?stico",
		"Médio", "M?dio", "medio",
		"Azul", "azul", "Azul Claro", "Azul  Claro",
		"Vermelho", " vermelho", "", "   ",
	}
	rng := rand.New(rand.NewSource(42))

	for iter := 0; iter < 200; iter++ {
		size := rng.Intn(20)
		in := make([]core.CategoryCount, size)
		var inputTotal int64
		for i := range in {
			q := int64(rng.Intn(50))
			inputTotal += q
			if rng.Intn(10) == 0 {
				in[i] = core.CategoryCount{Label: nil, Quantity: q}
				continue
			}
			in[i] = core.CategoryCount{Label: core.NewLabel(vocabulary[rng.Intn(len(vocabulary))]), Quantity: q}
		}

		out := Aggregate(in, n)

		// count conservation
		require.Equal(t, inputTotal, core.TotalQuantity(out))
		require.LessOrEqual(t, len(out), len(in))

		// uniqueness of canonical keys among outputs
		seen := make(map[normalize.CanonicalKey]bool)
		for _, g := range out {
			k := n.Key(g.Label)
			require.False(t, seen[k], "duplicate canonical key %q", k)
			seen[k] = true
		}

		// equality iff all input keys are distinct
		inputKeys := make(map[normalize.CanonicalKey]bool)
		for _, r := range in {
			inputKeys[n.KeyOf(r.Label)] = true
		}
		require.Equal(t, len(inputKeys), len(out))

		// display label is the first raw label of its group
		for _, g := range out {
			for _, r := range in {
				if n.KeyOf(r.Label) == n.Key(g.Label) {
					require.Equal(t, core.LabelOrEmpty(r.Label), g.Label)
					break
				}
			}
		}
	}
}

func TestAggregateDaily(t *testing.T) {
	n := normalize.NewDefault()
	in := []core.DailyCategoryCount{
		{Day: "01/03", Label: core.NewLabel("Plástico"), Quantity: 2},
		{Day: "01/03", Label: core.NewLabel("Pl?stico"), Quantity: 1},
		{Day: "01/03", Label: core.NewLabel("Metal"), Quantity: 4},
		{Day: "02/03", Label: core.NewLabel("plastico"), Quantity: 7},
		{Day: "02/03", Label: nil, Quantity: 1},
	}

	got := AggregateDaily(in, n)

	assert.Equal(t, []core.DailyAggregatedCategory{
		{Day: "01/03", Label: "Plástico", Quantity: 3},
		{Day: "01/03", Label: "Metal", Quantity: 4},
		{Day: "02/03", Label: "plastico", Quantity: 7},
		{Day: "02/03", Label: "", Quantity: 1},
	}, got)
}
