package namegen

import (
	"log/slog"
	"strings"
)

// scopeState tracks the names accepted within one registry scope: a
// case-folded membership set plus the original-case names in insertion
// order, which feed the similarity window, stats samples and eviction.
type scopeState struct {
	seen  map[string]struct{}
	order []string
}

// scope returns the state for a registry scope, creating it lazily.
// Callers must hold g.mu.
func (g *Generator) scope(key string) *scopeState {
	st, ok := g.registry[key]
	if !ok {
		st = &scopeState{seen: make(map[string]struct{})}
		g.registry[key] = st
	}
	return st
}

// acceptable applies the registry, reserved-name and similarity gates to a
// case-folded candidate. Callers must hold g.mu.
func (g *Generator) acceptable(st *scopeState, folded string) bool {
	if folded == "" {
		return false
	}
	if _, dup := st.seen[folded]; dup {
		return false
	}
	if g.reserved != nil && g.reserved(folded) {
		return false
	}
	if g.cfg.MinSimilarityDistance > 0 {
		recent := st.order
		if len(recent) > g.cfg.ComparisonWindow {
			recent = recent[len(recent)-g.cfg.ComparisonWindow:]
		}
		for _, prev := range recent {
			if editDistance(folded, strings.ToLower(prev)) < g.cfg.MinSimilarityDistance {
				return false
			}
		}
	}
	return true
}

// register records an accepted name in its scope, evicting oldest-first
// when a registry cap is configured. Callers must hold g.mu.
func (g *Generator) register(st *scopeState, name string) {
	folded := strings.ToLower(name)
	if _, dup := st.seen[folded]; dup {
		return
	}
	st.seen[folded] = struct{}{}
	st.order = append(st.order, name)
	if g.cfg.RegistryCap > 0 && len(st.order) > g.cfg.RegistryCap {
		evicted := st.order[0]
		st.order = st.order[1:]
		delete(st.seen, strings.ToLower(evicted))
	}
}

// ensureUnique runs the four-phase acceptance cascade and always returns a
// usable name: the guarantee phase cannot fail. Callers must hold g.mu.
//
// With uniqueness disabled it performs a single ungated generation, still
// registering the result so scope statistics stay meaningful.
func (g *Generator) ensureUnique(scope string, pats *PatternSet, gender Gender, gen func() nameCandidate) string {
	st := g.scope(scope)

	if !g.cfg.EnsureUnique {
		cand := gen()
		g.register(st, cand.text)
		return cand.text
	}

	// Phase 1: straight generation gated on the registry and the
	// similarity window.
	for attempt := 0; attempt < g.cfg.MaxRetries; attempt++ {
		cand := gen()
		if g.accept(st, scope, cand) {
			return cand.text
		}
	}

	// Phase 2: deterministic variations of fresh candidates.
	if g.cfg.EnableVariations {
		g.logger.Debug("escalating to variation phase", slog.String("scope", scope))
		for attempt := 0; attempt < g.cfg.MaxRetries; attempt++ {
			cand := gen()
			cand.text = applyVariation(cand.text, attempt)
			cand.source += "+variation"
			if g.accept(st, scope, cand) {
				return cand.text
			}
		}
	}

	// Phase 3: names reassembled from the ancestry's phoneme inventory.
	if g.cfg.EnablePhonemeGeneration {
		g.logger.Debug("escalating to phoneme phase", slog.String("scope", scope))
		inv := newPhonemeInventory(pats, gender)
		for attempt := 0; attempt < g.cfg.MaxRetries; attempt++ {
			cand := nameCandidate{text: inv.assemble(g.rng, pats.lengthWeights()), source: "phoneme"}
			if cand.text == "" {
				break
			}
			if g.accept(st, scope, cand) {
				return cand.text
			}
		}
	}

	// Phase 4: dynastic numeral suffixes. Termination is guaranteed; the
	// registry is finite and the numeral sequence is not.
	g.logger.Debug("escalating to guarantee phase", slog.String("scope", scope))
	base := gen().text
	for n := 2; ; n++ {
		name := base + " " + roman(n)
		folded := strings.ToLower(name)
		if _, dup := st.seen[folded]; dup {
			continue
		}
		if g.reserved != nil && g.reserved(folded) {
			continue
		}
		g.register(st, name)
		return name
	}
}

// accept registers a candidate that passes the gates and reports whether it
// did. Callers must hold g.mu.
func (g *Generator) accept(st *scopeState, scope string, cand nameCandidate) bool {
	if !g.acceptable(st, strings.ToLower(cand.text)) {
		return false
	}
	g.register(st, cand.text)
	g.logger.Debug("candidate accepted",
		slog.String("scope", scope),
		slog.String("source", cand.source),
	)
	return true
}
