package normalize

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey_EquivalentLabels(t *testing.T) {
	n := NewDefault()

	groups := [][]string{
		{"Plástico", "plastico", "PLASTICO ", "  Plástico", "PLÁSTICO", "Pl?stico", "pl?STICO"},
		{"Médio", "medio", "M?dio", "MEDIO\t"},
		{"Azul", "azul", " AZUL "},
		{"Pequeno", "pequeno"},
		{"Açaí", "acai", "ACAÍ"},
	}

	for _, group := range groups {
		want := n.Key(group[0])
		for _, label := range group[1:] {
			assert.Equal(t, want, n.Key(label), "label %q should share key with %q", label, group[0])
		}
	}
}

func TestKey_ExactOutput(t *testing.T) {
	n := NewDefault()

	tests := []struct {
		in   string
		want CanonicalKey
	}{
		{"Plástico", "plastico"},
		{"Pl?stico", "plastico"},
		{"M?dio", "medio"},
		{"  Vermelho  ", "vermelho"},
		{"", ""},
		{"   ", ""},
		{"Azul Claro", "azul claro"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, n.Key(tt.in), "Key(%q)", tt.in)
	}
}

func TestKey_DoesNotOverCollapse(t *testing.T) {
	n := NewDefault()

	distinct := [][2]string{
		{"Azul Claro", "Azul  Claro"},
		{"Azul Claro", "AzulClaro"},
		{"Azul-Claro", "Azul Claro"},
		{"Azul.", "Azul"},
		{"Azul", "Verde"},
		{"Pl?stico", "Pl!stico"},
	}
	for _, pair := range distinct {
		assert.NotEqual(t, n.Key(pair[0]), n.Key(pair[1]), "%q and %q must stay distinct", pair[0], pair[1])
	}
}

func TestKeyOf_MissingLabel(t *testing.T) {
	n := NewDefault()

	assert.Equal(t, CanonicalKey(""), n.KeyOf(nil))

	s := "Plástico"
	assert.Equal(t, n.Key(s), n.KeyOf(&s))
}

func TestKey_NilNormalizerSkipsCorrections(t *testing.T) {
	var n *Normalizer
	assert.Equal(t, CanonicalKey("medio"), n.Key("Médio"))
	assert.Equal(t, CanonicalKey("m?dio"), n.Key("M?dio"))
	assert.Equal(t, 0, n.Len())
}

func TestKey_CustomCorrections(t *testing.T) {
	n := New([]Correction{
		{Pattern: "Vermlho", Replacement: "Vermelho"},
		{Pattern: "", Replacement: "ignored"},
	})
	require.Equal(t, 1, n.Len())

	assert.Equal(t, n.Key("Vermelho"), n.Key("VERMLHO"))
	// Defaults are not implied by a custom table.
	assert.NotEqual(t, n.Key("Plastico"), n.Key("Pl?stico"))
}

func TestKey_IsPureAndConcurrent(t *testing.T) {
	n := NewDefault()
	labels := []string{"Plástico", "M?dio", "Azul", "  Grande "}

	want := make([]CanonicalKey, len(labels))
	for i, l := range labels {
		want[i] = n.Key(l)
	}

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				for j, l := range labels {
					if got := n.Key(l); got != want[j] {
						t.Errorf("Key(%q) = %q, want %q", l, got, want[j])
						return
					}
				}
			}
		}()
	}
	wg.Wait()
}

func TestCorrectionsFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corrections.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"pattern":"Amarlo","replacement":"Amarelo"}]`), 0o644))

	corrections, err := CorrectionsFromFile(path)
	require.NoError(t, err)
	require.Len(t, corrections, len(DefaultCorrections())+1)

	n := New(corrections)
	assert.Equal(t, n.Key("Amarelo"), n.Key("amarlo"))
	assert.Equal(t, n.Key("Plastico"), n.Key("Pl?stico"))

	defaults, err := CorrectionsFromFile("")
	require.NoError(t, err)
	assert.Equal(t, DefaultCorrections(), defaults)
}

func TestLoadCorrections_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadCorrections(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{not json`), 0o644))
	_, err = LoadCorrections(bad)
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`[{"pattern":"","replacement":"x"}]`), 0o644))
	_, err = LoadCorrections(empty)
	assert.ErrorContains(t, err, "empty pattern")
}
