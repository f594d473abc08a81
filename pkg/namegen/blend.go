package namegen

import (
	"log/slog"
	"strings"
)

// BlendStrategy names one of the heritage blending approaches.
type BlendStrategy string

const (
	// StrategyBlendSyllables trains one chain over corpora sampled from
	// both ancestries and generates from it.
	StrategyBlendSyllables BlendStrategy = "blend_syllables"
	// StrategyCombineParts takes a given name from one ancestry and a
	// family name from the other.
	StrategyCombineParts BlendStrategy = "combine_parts"
	// StrategyHybrid builds each syllable from a ratio-weighted coin flip
	// between the two ancestries' pools.
	StrategyHybrid BlendStrategy = "hybrid_construction"
	// StrategyPhoneticShift generates from the dominant ancestry and
	// shifts its consonants toward the other tradition.
	StrategyPhoneticShift BlendStrategy = "phonetic_shift"
)

// AllStrategies returns the supported blend strategies.
func AllStrategies() []BlendStrategy {
	return []BlendStrategy{
		StrategyBlendSyllables,
		StrategyCombineParts,
		StrategyHybrid,
		StrategyPhoneticShift,
	}
}

// ValidStrategy reports whether s names a supported blend strategy.
func ValidStrategy(s BlendStrategy) bool {
	switch s {
	case StrategyBlendSyllables, StrategyCombineParts, StrategyHybrid, StrategyPhoneticShift:
		return true
	}
	return false
}

// blendSource pairs an ancestry name with its resolved patterns.
type blendSource struct {
	ancestry string
	pats     *PatternSet
}

// blendSpec is the per-call description of one blended generation.
type blendSpec struct {
	strategy BlendStrategy
	ratio    float64
	gender   Gender
	a        blendSource
	b        blendSource
}

// blendOnce runs a single ungated blended generation. Callers must hold
// g.mu. Every strategy terminates with a non-empty name.
func (g *Generator) blendOnce(spec blendSpec) nameCandidate {
	switch spec.strategy {
	case StrategyCombineParts:
		return nameCandidate{text: g.combineParts(spec), source: string(spec.strategy)}
	case StrategyHybrid:
		return nameCandidate{text: g.hybridConstruction(spec), source: string(spec.strategy)}
	case StrategyPhoneticShift:
		return nameCandidate{text: g.phoneticShift(spec), source: string(spec.strategy)}
	default:
		return nameCandidate{text: g.blendSyllables(spec), source: string(StrategyBlendSyllables)}
	}
}

// blendSyllables blends at the corpus level, not by splicing generated
// strings, so the model learns cross-tradition letter transitions. At the
// ratio extremes the memoized single-ancestry chain is reused; anywhere
// between, each call samples fresh corpora and trains a throwaway chain.
func (g *Generator) blendSyllables(spec blendSpec) string {
	var chain *Chain
	switch {
	case spec.ratio >= 1:
		chain = g.chainFor(spec.a.ancestry, spec.a.pats, spec.gender)
	case spec.ratio <= 0:
		chain = g.chainFor(spec.b.ancestry, spec.b.pats, spec.gender)
	default:
		corpus := blendCorpora(g.rng, spec.a.pats.corpus(spec.gender), spec.b.pats.corpus(spec.gender), spec.ratio)
		chain = TrainChain(corpus, g.cfg.MarkovOrder, g.cfg.MarkovSmoothing)
	}

	name, err := chain.Generate(g.rng, g.cfg.MarkovMinLength, g.cfg.MarkovMaxLength, g.cfg.MarkovMaxAttempts)
	if err != nil {
		// The chain produced nothing usable; hybrid assembly cannot fail,
		// so the blend still returns a name.
		g.logger.Debug("markov blend exhausted, falling back to hybrid",
			slog.String("ancestry_a", spec.a.ancestry),
			slog.String("ancestry_b", spec.b.ancestry),
		)
		return g.hybridConstruction(spec)
	}
	return capitalize(name)
}

// combineParts takes a first-name fragment from ancestry A and a last-name
// fragment from ancestry B, joined by a space. Ancestries without family
// names contribute a syllabic core instead.
func (g *Generator) combineParts(spec blendSpec) string {
	first := capitalize(g.syllableCore(spec.a.pats, spec.gender, 0))
	last := pick(g.rng, spec.b.pats.LastNames)
	if last == "" {
		last = g.syllableCore(spec.b.pats, spec.gender, 0)
	}
	return first + " " + capitalize(last)
}

// hybridConstruction builds 2-3 syllables, flipping a ratio-weighted coin
// per syllable to decide which ancestry's pools contribute: the first
// syllable from prefixes, middles in between, the last from suffixes.
func (g *Generator) hybridConstruction(spec blendSpec) string {
	count := pickSyllableCount(g.rng, spec.a.pats.lengthWeights())
	if count < 2 {
		count = 2
	}
	var b strings.Builder
	for s := 0; s < count; s++ {
		pats := spec.b.pats
		if g.rng.Float64() < spec.ratio {
			pats = spec.a.pats
		}
		switch {
		case s == 0:
			b.WriteString(pick(g.rng, pats.prefixes(spec.gender)))
		case s == count-1:
			b.WriteString(pick(g.rng, pats.suffixes(spec.gender)))
		default:
			if middles := pats.middles(spec.gender); len(middles) > 0 {
				b.WriteString(pick(g.rng, middles))
			}
		}
	}
	return capitalize(b.String())
}

// phoneticShift generates a syllabic base from the dominant ancestry and
// rewrites it through the ordered rule table: harshened when ancestry A
// dominates, softened otherwise.
func (g *Generator) phoneticShift(spec blendSpec) string {
	pats, rules := spec.b.pats, softenRules
	if spec.ratio >= 0.5 {
		pats, rules = spec.a.pats, harshenRules
	}
	base := g.syllableCore(pats, spec.gender, 0)
	return capitalize(applyPhoneticRules(strings.ToLower(base), rules))
}
