package namegen

import (
	"context"
	"fmt"
	"math/rand/v2"
	"testing"
)

// mapSource is an in-memory PatternSource for tests.
type mapSource map[string]*PatternSet

func (m mapSource) Patterns(_ context.Context, ancestry string) (*PatternSet, error) {
	ps, ok := m[ancestry]
	if !ok {
		return nil, fmt.Errorf("no patterns for %q", ancestry)
	}
	return ps, nil
}

// failingSource always errors, standing in for a broken pattern store.
type failingSource struct{}

func (failingSource) Patterns(context.Context, string) (*PatternSet, error) {
	return nil, fmt.Errorf("pattern store unavailable")
}

// testRand returns a fixed-seed source so failing runs replay exactly.
func testRand() *rand.Rand {
	return rand.New(rand.NewPCG(7, 11))
}

// newTestGenerator builds a Generator over the shared test source with a
// seeded rng. Extra options append after the seed so tests can override it.
func newTestGenerator(t *testing.T, opts ...Option) *Generator {
	t.Helper()
	base := []Option{WithRand(testRand())}
	return New(testSource(), append(base, opts...)...)
}

// testSource covers the ancestries the tests rely on: a broad human set for
// volume tests, a flowing elf set, and a deliberately tiny goblin set for
// exhaustion paths.
func testSource() mapSource {
	return mapSource{
		"human":  humanTestPatterns(),
		"elf":    elfTestPatterns(),
		"goblin": goblinTestPatterns(),
	}
}

func humanTestPatterns() *PatternSet {
	return &PatternSet{
		AncestryID: "human",
		ByGender: map[Gender]FragmentPools{
			GenderMale: {
				Prefixes: []string{"al", "bran", "cor", "dav", "ed", "gar", "hen", "jor", "mar", "os", "rod", "wil"},
				Middles:  []string{"de", "do", "ri", "than", "ton", "wen", "al", "is"},
				Suffixes: []string{"ard", "den", "ric", "ian", "in", "mund", "on", "ren", "ter", "us", "win", "ley"},
			},
			GenderFemale: {
				Prefixes: []string{"ann", "bel", "cat", "el", "is", "jul", "mar", "ros", "sar", "vi", "wen", "ly"},
				Middles:  []string{"a", "el", "ind", "iss", "or", "et", "an", "il"},
				Suffixes: []string{"a", "beth", "elle", "ia", "ina", "lyn", "ra", "wyn", "ette", "ine", "is", "dra"},
			},
			GenderNonbinary: {
				Prefixes: []string{"ash", "bren", "cas", "dev", "em", "hol", "quin", "rem", "sage", "tam", "lor", "win"},
				Middles:  []string{"al", "ar", "en", "is", "or", "ell", "in", "au"},
				Suffixes: []string{"an", "ary", "el", "en", "ery", "is", "lin", "ley", "row", "den", "ton", "ver"},
			},
		},
		LastNames: []string{
			"Ashford", "Blackwood", "Carter", "Fletcher", "Harrow", "Mercer",
			"Thorne", "Underhill", "Ward", "Wheeler", "Crowley", "Marsh",
		},
		Structures: []StructureWeight{
			{Type: StructureSyllabic, Weight: 0.4},
			{Type: StructureFirstLast, Weight: 0.4},
			{Type: StructureSingle, Weight: 0.1},
			{Type: StructureCompound, Weight: 0.1},
		},
		LengthWeights: map[int]float64{2: 0.7, 3: 0.3},
		HasLastNames:  true,
	}
}

func elfTestPatterns() *PatternSet {
	return &PatternSet{
		AncestryID: "elf",
		ByGender: map[Gender]FragmentPools{
			GenderMale: {
				Prefixes: []string{"ael", "cael", "eld", "fael", "gal", "leg", "rhov", "syl", "thal", "var"},
				Middles:  []string{"an", "ar", "en", "ion", "il", "or"},
				Suffixes: []string{"ion", "las", "dir", "orn", "ril", "wyn", "dil", "mir", "thir", "nor"},
			},
			GenderFemale: {
				Prefixes: []string{"ael", "ar", "cel", "el", "gal", "ill", "lu", "nim", "syl", "tin"},
				Middles:  []string{"a", "ae", "ia", "il", "or", "ith"},
				Suffixes: []string{"iel", "wen", "wyn", "ara", "ina", "loth", "riel", "thien", "anna", "ien"},
			},
			GenderNonbinary: {
				Prefixes: []string{"ae", "cal", "eil", "fin", "ily", "lor", "mel", "quel", "sha", "tha"},
				Middles:  []string{"a", "e", "i", "la", "re", "an"},
				Suffixes: []string{"en", "il", "ion", "ith", "or", "ys", "ael", "ean", "ian", "iel"},
			},
		},
		LastNames: []string{
			"Silverbough", "Dawnwhisper", "Moonshadow", "Starbreeze", "Nightpetal",
			"Gladewalker", "Everbright", "Willowsong", "Duskmere", "Hallowlight",
		},
		Structures: []StructureWeight{
			{Type: StructureSyllabic, Weight: 0.5},
			{Type: StructureFirstLast, Weight: 0.35},
			{Type: StructureCompound, Weight: 0.15},
		},
		LengthWeights: map[int]float64{2: 0.5, 3: 0.5},
		HasLastNames:  true,
	}
}

func goblinTestPatterns() *PatternSet {
	return &PatternSet{
		AncestryID: "goblin",
		ByGender: map[Gender]FragmentPools{
			GenderNonbinary: {
				Prefixes: []string{"grik", "naz", "snag", "zik"},
				Suffixes: []string{"ga", "it", "uz"},
			},
		},
		Structures:    []StructureWeight{{Type: StructureSyllabic, Weight: 1}},
		LengthWeights: map[int]float64{1: 0.3, 2: 0.7},
	}
}

// singlePatterns admits exactly one output ("Thorin"), which drives the
// guard straight to its terminal phase when variations are disabled.
func singlePatterns() *PatternSet {
	return &PatternSet{
		AncestryID: "dwarf",
		ByGender: map[Gender]FragmentPools{
			GenderNonbinary: {Prefixes: []string{"thorin"}, Suffixes: []string{"thorin"}},
		},
		Structures: []StructureWeight{{Type: StructureSingle, Weight: 1}},
	}
}

// benchCorpus builds a fragment corpus large enough to exercise training.
func benchCorpus() []string {
	base := []string{
		"mira", "mara", "lira", "belan", "coren", "davin", "elwyn", "frey",
		"galad", "haren", "ilsa", "joren", "kalia", "loran", "medra", "nessa",
	}
	corpus := make([]string, 0, len(base)*8)
	for i := 0; i < 8; i++ {
		for _, entry := range base {
			corpus = append(corpus, fmt.Sprintf("%s%d", entry, i))
		}
	}
	return corpus
}
