package namegen

import (
	"math/rand/v2"
	"strings"
	"unicode"
)

// syllabic assembles one name from the pattern's weighted structures and
// fragment pools. It never fails: every pool resolution bottoms out in the
// generic pool, and structures that need missing data degrade to simpler
// shapes.
func (g *Generator) syllabic(pats *PatternSet, options *generateOptions) string {
	structure := options.structure
	if structure == "" {
		structure = pickStructure(g.rng, pats.structureWeights())
	}

	switch structure {
	case StructureSingle:
		return capitalize(pick(g.rng, pats.prefixes(options.gender)))
	case StructureFirstLast:
		first := capitalize(g.syllableCore(pats, options.gender, options.syllables))
		last := pick(g.rng, pats.LastNames)
		if last == "" {
			return first
		}
		return first + " " + capitalize(last)
	case StructureClanName:
		first := capitalize(g.syllableCore(pats, options.gender, options.syllables))
		clan := pick(g.rng, pats.ClanNames)
		if clan == "" {
			clan = pick(g.rng, pats.LastNames)
		}
		if clan == "" {
			return first
		}
		clan = capitalize(clan)
		if pats.ClanFirst {
			return clan + " " + first
		}
		return first + " " + clan
	case StructureCompound:
		return capitalize(g.syllableCore(pats, options.gender, options.syllables)) +
			"-" + capitalize(g.syllableCore(pats, options.gender, options.syllables))
	default:
		return capitalize(g.syllableCore(pats, options.gender, options.syllables))
	}
}

// syllableCore builds the bare syllabic token: a prefix, a middle on
// three-syllable builds, and a suffix past one syllable. syllables outside
// 1-3 defers to the pattern's length weights.
func (g *Generator) syllableCore(pats *PatternSet, gender Gender, syllables int) string {
	count := syllables
	if count < 1 || count > 3 {
		count = pickSyllableCount(g.rng, pats.lengthWeights())
	}
	var b strings.Builder
	b.WriteString(pick(g.rng, pats.prefixes(gender)))
	if count == 3 {
		if middles := pats.middles(gender); len(middles) > 0 {
			b.WriteString(pick(g.rng, middles))
		}
	}
	if count >= 2 {
		b.WriteString(pick(g.rng, pats.suffixes(gender)))
	}
	return b.String()
}

// pickSyllableCount draws 1-3 from the length weights. Weights that sum to
// nothing fall back to two syllables.
func pickSyllableCount(rng *rand.Rand, weights map[int]float64) int {
	var total float64
	for n := 1; n <= 3; n++ {
		if w := weights[n]; w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return 2
	}
	target := rng.Float64() * total
	for n := 1; n <= 3; n++ {
		w := weights[n]
		if w <= 0 {
			continue
		}
		target -= w
		if target < 0 {
			return n
		}
	}
	return 3
}

// pickStructure walks the cumulative structure weights.
func pickStructure(rng *rand.Rand, weights []StructureWeight) StructureType {
	var total float64
	for _, sw := range weights {
		if sw.Weight > 0 {
			total += sw.Weight
		}
	}
	if total <= 0 {
		return StructureSyllabic
	}
	target := rng.Float64() * total
	for _, sw := range weights {
		if sw.Weight <= 0 {
			continue
		}
		target -= sw.Weight
		if target < 0 {
			return sw.Type
		}
	}
	return weights[len(weights)-1].Type
}

// pick draws one entry uniformly; an empty list yields "".
func pick(rng *rand.Rand, items []string) string {
	if len(items) == 0 {
		return ""
	}
	return items[rng.IntN(len(items))]
}

// capitalize upper-cases the first rune and leaves the rest untouched.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
