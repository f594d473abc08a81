package namegen

import (
	"context"
	"io"
	"log/slog"
	"math/rand/v2"
	"sync"
)

// Generator is the main entry point for the name generation library. It
// owns the uniqueness registry, the memoized chain cache, the random source
// and the active configuration; a single mutex serializes them so two
// concurrent callers can never accept the same name in one scope.
type Generator struct {
	mu       sync.Mutex
	source   PatternSource
	cfg      Config
	rng      *rand.Rand
	chains   map[chainKey]*Chain
	registry map[string]*scopeState
	reserved func(name string) bool
	logger   *slog.Logger
}

// chainKey memoizes trained chains per ancestry and gender.
type chainKey struct {
	ancestry string
	gender   Gender
}

// Option configures a Generator at construction time.
type Option func(*Generator)

// WithLogger sets the generator's logger. By default all logs are
// discarded.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithRand sets the random source, letting tests replay generation from a
// fixed seed.
func WithRand(rng *rand.Rand) Option {
	return func(g *Generator) {
		if rng != nil {
			g.rng = rng
		}
	}
}

// WithConfig sets the initial configuration; equivalent to calling
// Configure right after New.
func WithConfig(cfg Config) Option {
	return func(g *Generator) { g.cfg = cfg }
}

// WithReservedChecker wires in a blocklist predicate. It receives
// case-folded candidates; returning true rejects the candidate in every
// cascade phase.
func WithReservedChecker(check func(name string) bool) Option {
	return func(g *Generator) { g.reserved = check }
}

// New creates a Generator reading patterns from source. A nil source is
// allowed: every ancestry then resolves to the built-in human patterns.
func New(source PatternSource, opts ...Option) *Generator {
	g := &Generator{
		source:   source,
		cfg:      DefaultConfig(),
		chains:   make(map[chainKey]*Chain),
		registry: make(map[string]*scopeState),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		g.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	g.cfg = g.cfg.normalized()
	return g
}

// SetLogger sets the logger for the Generator. By default, all logs are
// discarded. Call it before generation starts; it is not synchronized with
// in-flight calls.
func (g *Generator) SetLogger(logger *slog.Logger) {
	if logger != nil {
		g.logger = logger
	}
}

// Configure replaces the active configuration. Unusable zero or negative
// fields are filled with defaults; see Config.
func (g *Generator) Configure(cfg Config) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cfg = cfg.normalized()
}

// Config returns a copy of the active configuration.
func (g *Generator) Config() Config {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cfg
}

// ClearRegistry drops one registry scope, or every scope when scope is
// empty. Cleared names may be generated again.
func (g *Generator) ClearRegistry(scope string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if scope == "" {
		g.registry = make(map[string]*scopeState)
		return
	}
	delete(g.registry, scope)
}

// ClearChains empties the memoized chain cache. Mainly for test isolation
// and for picking up edited pattern data.
func (g *Generator) ClearChains() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.chains = make(map[chainKey]*Chain)
}

// resolvePatterns loads an ancestry's patterns, degrading to the built-in
// human set when the source is absent or fails. Load errors never reach
// generation callers.
func (g *Generator) resolvePatterns(ctx context.Context, ancestry string) *PatternSet {
	if g.source == nil {
		return builtinHumanPatterns()
	}
	pats, err := g.source.Patterns(ctx, ancestry)
	if err != nil || pats == nil {
		g.logger.DebugContext(ctx, "pattern lookup failed, using fallback",
			slog.String("ancestry", ancestry),
			slog.Any("error", err),
		)
		return builtinHumanPatterns()
	}
	return pats
}

// chainFor returns the memoized full-corpus chain for an ancestry+gender,
// training it on first use. Callers must hold g.mu.
func (g *Generator) chainFor(ancestry string, pats *PatternSet, gender Gender) *Chain {
	key := chainKey{ancestry: ancestry, gender: gender}
	if chain, ok := g.chains[key]; ok {
		return chain
	}
	chain := TrainChain(pats.corpus(gender), g.cfg.MarkovOrder, g.cfg.MarkovSmoothing)
	g.chains[key] = chain
	g.logger.Info("chain trained",
		slog.String("ancestry", ancestry),
		slog.String("gender", string(gender)),
		slog.Int("contexts", len(chain.Transitions)),
		slog.Int("alphabet", len(chain.Alphabet)),
	)
	return chain
}
