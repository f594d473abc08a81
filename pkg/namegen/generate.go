package namegen

import (
	"context"
	"log/slog"
)

// Mode selects the single-ancestry generation backend.
type Mode string

const (
	// ModeSyllabic assembles names from an ancestry's fragment pools
	// according to its structure weights. The default.
	ModeSyllabic Mode = "syllabic"

	// ModeMarkov samples names from a chain trained on the ancestry's
	// full fragment corpus, falling back to syllabic assembly when the
	// chain cannot produce a name within its attempt budget.
	ModeMarkov Mode = "markov"
)

// nameCandidate is the ephemeral product of one generation attempt: the
// text plus the strategy that produced it. Candidates live only within a
// single guarded call; the source feeds the guard's acceptance logging.
type nameCandidate struct {
	text   string
	source string
}

// generateOptions collects the per-call knobs for Generate and
// GenerateBlended.
type generateOptions struct {
	gender    Gender
	scope     string
	structure StructureType
	mode      Mode
	syllables int
	ratio     float64
	ratioSet  bool
	strategy  BlendStrategy
}

func newGenerateOptions(opts []GenerateOption) *generateOptions {
	options := &generateOptions{
		gender: GenderNonbinary,
		mode:   ModeSyllabic,
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// GenerateOption adjusts a single Generate or GenerateBlended call.
type GenerateOption func(*generateOptions)

// WithGender selects the fragment pools used for the call. Unknown or
// missing genders fall back to nonbinary pools, then to a generic set.
func WithGender(gender Gender) GenerateOption {
	return func(o *generateOptions) { o.gender = gender }
}

// WithScope names the uniqueness registry the call checks against and
// registers into. Defaults to the ancestry name (or "a+b" for blends).
func WithScope(scope string) GenerateOption {
	return func(o *generateOptions) { o.scope = scope }
}

// WithStructure overrides the weighted structure selection for one call.
func WithStructure(structure StructureType) GenerateOption {
	return func(o *generateOptions) { o.structure = structure }
}

// WithMode selects the single-ancestry backend. Ignored by
// GenerateBlended.
func WithMode(mode Mode) GenerateOption {
	return func(o *generateOptions) { o.mode = mode }
}

// WithSyllables fixes the core syllable count (1 to 3). Out-of-range
// values defer to the ancestry's length weights.
func WithSyllables(n int) GenerateOption {
	return func(o *generateOptions) { o.syllables = n }
}

// WithRatio sets the blend weight toward the first ancestry, clamped to
// [0, 1]. Ignored by Generate.
func WithRatio(ratio float64) GenerateOption {
	return func(o *generateOptions) {
		o.ratio = ratio
		o.ratioSet = true
	}
}

// WithStrategy fixes the blending strategy. Without it, GenerateBlended
// picks one of the four strategies uniformly per call.
func WithStrategy(strategy BlendStrategy) GenerateOption {
	return func(o *generateOptions) { o.strategy = strategy }
}

// Generate produces one name for an ancestry. It always returns a
// non-empty name: pattern lookup failures degrade to built-in patterns,
// Markov exhaustion degrades to syllabic assembly, and the uniqueness
// cascade ends in a guaranteed suffix phase.
func (g *Generator) Generate(ctx context.Context, ancestry string, opts ...GenerateOption) string {
	options := newGenerateOptions(opts)
	pats := g.resolvePatterns(ctx, ancestry)

	scope := options.scope
	if scope == "" {
		scope = ancestry
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	gen := func() nameCandidate {
		return g.generateOnce(ancestry, pats, options)
	}
	name := g.ensureUnique(scope, pats, options.gender, gen)
	g.logger.DebugContext(ctx, "name generated",
		slog.String("ancestry", ancestry),
		slog.String("scope", scope),
		slog.String("name", name),
	)
	return name
}

// GenerateBlended produces one name drawing on two ancestries. The ratio
// weighs toward ancestryA; 0.5 when unset. Like Generate it always returns
// a non-empty name.
func (g *Generator) GenerateBlended(ctx context.Context, ancestryA, ancestryB string, opts ...GenerateOption) string {
	options := newGenerateOptions(opts)
	patsA := g.resolvePatterns(ctx, ancestryA)
	patsB := g.resolvePatterns(ctx, ancestryB)

	scope := options.scope
	if scope == "" {
		scope = ancestryA + "+" + ancestryB
	}

	ratio := 0.5
	if options.ratioSet {
		ratio = options.ratio
		if ratio < 0 {
			ratio = 0
		}
		if ratio > 1 {
			ratio = 1
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	spec := blendSpec{
		strategy: options.strategy,
		ratio:    ratio,
		gender:   options.gender,
		a:        blendSource{ancestry: ancestryA, pats: patsA},
		b:        blendSource{ancestry: ancestryB, pats: patsB},
	}
	gen := func() nameCandidate {
		s := spec
		if s.strategy == "" {
			all := AllStrategies()
			s.strategy = all[g.rng.IntN(len(all))]
		}
		return g.blendOnce(s)
	}
	name := g.ensureUnique(scope, patsA, options.gender, gen)
	g.logger.DebugContext(ctx, "blended name generated",
		slog.String("ancestry_a", ancestryA),
		slog.String("ancestry_b", ancestryB),
		slog.String("scope", scope),
		slog.String("name", name),
	)
	return name
}

// generateOnce runs one un-guarded generation attempt. Callers must hold
// g.mu.
func (g *Generator) generateOnce(ancestry string, pats *PatternSet, options *generateOptions) nameCandidate {
	if options.mode == ModeMarkov {
		chain := g.chainFor(ancestry, pats, options.gender)
		name, err := chain.Generate(g.rng, g.cfg.MarkovMinLength, g.cfg.MarkovMaxLength, g.cfg.MarkovMaxAttempts)
		if err == nil {
			return nameCandidate{text: capitalize(name), source: string(ModeMarkov)}
		}
		g.logger.Debug("markov generation exhausted, falling back to syllabic",
			slog.String("ancestry", ancestry),
			slog.String("gender", string(options.gender)),
		)
	}
	return nameCandidate{text: g.syllabic(pats, options), source: string(ModeSyllabic)}
}
