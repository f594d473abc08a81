package namegen

import "sort"

// statsSampleSize caps how many recent names a Stats snapshot carries.
const statsSampleSize = 5

// Stats is a point-in-time snapshot of one registry scope.
type Stats struct {
	Scope       string   `json:"scope"`
	UniqueCount int      `json:"unique_count"`
	SampleNames []string `json:"sample_names,omitempty"`
}

// Stats reports the registered-name count and the most recently accepted
// names for a scope. An unknown scope yields a zero count.
func (g *Generator) Stats(scope string) Stats {
	g.mu.Lock()
	defer g.mu.Unlock()

	stats := Stats{Scope: scope}
	st, ok := g.registry[scope]
	if !ok {
		return stats
	}
	stats.UniqueCount = len(st.order)
	n := len(st.order)
	if n > statsSampleSize {
		n = statsSampleSize
	}
	stats.SampleNames = make([]string, n)
	copy(stats.SampleNames, st.order[len(st.order)-n:])
	return stats
}

// CacheStats summarizes the memoized chain cache.
type CacheStats struct {
	Chains   int `json:"chains"`
	Contexts int `json:"contexts"`
}

// CacheStats reports how many chains are cached and how many transition
// contexts they hold in total.
func (g *Generator) CacheStats() CacheStats {
	g.mu.Lock()
	defer g.mu.Unlock()

	stats := CacheStats{Chains: len(g.chains)}
	for _, chain := range g.chains {
		stats.Contexts += len(chain.Transitions)
	}
	return stats
}

// Scopes lists every registry scope that holds at least one name, sorted.
func (g *Generator) Scopes() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	scopes := make([]string, 0, len(g.registry))
	for scope, st := range g.registry {
		if len(st.order) == 0 {
			continue
		}
		scopes = append(scopes, scope)
	}
	sort.Strings(scopes)
	return scopes
}
