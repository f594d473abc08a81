package namegen

import (
	"reflect"
	"testing"
	"unicode"
)

func TestSplitPhonemes(t *testing.T) {
	testCases := []struct {
		frag    string
		onset   string
		nucleus string
		coda    string
	}{
		{"bran", "br", "a", "n"},
		{"thorn", "th", "o", "rn"},
		{"grik", "gr", "i", "k"},
		{"ia", "", "ia", ""},
		{"it", "", "i", "t"},
		{"ga", "g", "a", ""},
		{"str", "str", "", ""}, // consumed entirely as onset
		{"", "", "", ""},
	}
	for _, tc := range testCases {
		onset, nucleus, coda := splitPhonemes(tc.frag)
		if onset != tc.onset || nucleus != tc.nucleus || coda != tc.coda {
			t.Errorf("splitPhonemes(%q) = (%q, %q, %q), want (%q, %q, %q)",
				tc.frag, onset, nucleus, coda, tc.onset, tc.nucleus, tc.coda)
		}
	}
}

func TestNewPhonemeInventory(t *testing.T) {
	inv := newPhonemeInventory(goblinTestPatterns(), GenderNonbinary)

	// grik, naz, snag, zik, ga, it, uz decompose into five onsets, seven
	// nuclei and six codas; duplicates stay so sampling keeps corpus
	// frequencies.
	wantOnsets := []string{"gr", "n", "sn", "z", "g"}
	wantNuclei := []string{"i", "a", "a", "i", "a", "i", "u"}
	wantCodas := []string{"k", "z", "g", "k", "t", "z"}

	if !reflect.DeepEqual(inv.onsets, wantOnsets) {
		t.Errorf("onsets = %v, want %v", inv.onsets, wantOnsets)
	}
	if !reflect.DeepEqual(inv.nuclei, wantNuclei) {
		t.Errorf("nuclei = %v, want %v", inv.nuclei, wantNuclei)
	}
	if !reflect.DeepEqual(inv.codas, wantCodas) {
		t.Errorf("codas = %v, want %v", inv.codas, wantCodas)
	}
}

func TestPhonemeAssemble(t *testing.T) {
	inv := newPhonemeInventory(goblinTestPatterns(), GenderNonbinary)
	rng := testRand()

	for i := 0; i < 30; i++ {
		name := inv.assemble(rng, map[int]float64{1: 0.5, 2: 0.5})
		if name == "" {
			t.Fatal("assemble returned an empty name from a populated inventory")
		}
		if !unicode.IsUpper([]rune(name)[0]) {
			t.Errorf("assembled name %q is not capitalized", name)
		}
		var hasVowel bool
		for _, r := range name {
			if isVowel(r) {
				hasVowel = true
				break
			}
		}
		if !hasVowel {
			t.Errorf("assembled name %q carries no nucleus", name)
		}
	}
}

func TestPhonemeAssembleDeterministic(t *testing.T) {
	// A single-fragment inventory leaves sampling no freedom.
	pats := &PatternSet{
		AncestryID: "mono",
		ByGender: map[Gender]FragmentPools{
			GenderNonbinary: {Prefixes: []string{"kar"}, Suffixes: []string{"kar"}},
		},
	}
	inv := newPhonemeInventory(pats, GenderNonbinary)
	if got := inv.assemble(testRand(), map[int]float64{1: 1}); got != "Kar" {
		t.Errorf("assemble = %q, want \"Kar\"", got)
	}
	if got := inv.assemble(testRand(), map[int]float64{2: 1}); got != "Kakar" {
		t.Errorf("two-syllable assemble = %q, want \"Kakar\"", got)
	}
}

func TestPhonemeAssembleEmptyInventory(t *testing.T) {
	// Vowelless fragments produce no nuclei, and without nuclei the phase
	// reports itself unusable by returning "".
	pats := &PatternSet{
		AncestryID: "clatter",
		ByGender: map[Gender]FragmentPools{
			GenderNonbinary: {Prefixes: []string{"brz"}, Suffixes: []string{"kst"}},
		},
	}
	inv := newPhonemeInventory(pats, GenderNonbinary)
	if got := inv.assemble(testRand(), nil); got != "" {
		t.Errorf("assemble from a vowelless inventory = %q, want \"\"", got)
	}
}
