package namegen

import (
	"context"
	"strings"
	"testing"
	"unicode"
)

// riverPatterns and emberPatterns use disjoint alphabets ({m,i,r,a,l} and
// {z,u,k,o}), so a generated letter betrays which ancestry produced it.
func riverPatterns() *PatternSet {
	return &PatternSet{
		AncestryID: "river",
		ByGender: map[Gender]FragmentPools{
			GenderNonbinary: {
				Prefixes: []string{"mi", "ra", "li", "mar"},
				Middles:  []string{"ri", "la"},
				Suffixes: []string{"ram", "lim", "mir", "ral"},
			},
		},
		LengthWeights: map[int]float64{2: 1},
	}
}

func emberPatterns() *PatternSet {
	return &PatternSet{
		AncestryID: "ember",
		ByGender: map[Gender]FragmentPools{
			GenderNonbinary: {
				Prefixes: []string{"zu", "ko", "ku", "zok"},
				Middles:  []string{"uz", "ok"},
				Suffixes: []string{"kuz", "zuk", "koz", "ouk"},
			},
		},
		LengthWeights: map[int]float64{2: 1},
	}
}

func blendTestSource() mapSource {
	return mapSource{"river": riverPatterns(), "ember": emberPatterns()}
}

// lettersWithin reports whether every rune of the case-folded name falls in
// the allowed set (separators aside).
func lettersWithin(name, allowed string) bool {
	for _, r := range strings.ToLower(name) {
		if r == ' ' || r == '-' {
			continue
		}
		if !strings.ContainsRune(allowed, r) {
			return false
		}
	}
	return true
}

func newBlendGenerator() *Generator {
	cfg := DefaultConfig()
	cfg.EnsureUnique = false
	return New(blendTestSource(), WithRand(testRand()), WithConfig(cfg))
}

func TestGenerateBlendedStrategies(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EnsureUnique = false
	g := New(testSource(), WithRand(testRand()), WithConfig(cfg))
	ctx := context.Background()

	t.Run("combine parts", func(t *testing.T) {
		elfLasts := make(map[string]struct{})
		for _, last := range elfTestPatterns().LastNames {
			elfLasts[last] = struct{}{}
		}
		for i := 0; i < 15; i++ {
			name := g.GenerateBlended(ctx, "human", "elf", WithStrategy(StrategyCombineParts))
			first, last, ok := strings.Cut(name, " ")
			if !ok || first == "" || last == "" {
				t.Fatalf("combine_parts produced %q, want \"First Last\"", name)
			}
			if _, known := elfLasts[last]; !known {
				t.Errorf("last name %q does not come from the second ancestry", last)
			}
		}
	})

	t.Run("hybrid construction", func(t *testing.T) {
		for i := 0; i < 15; i++ {
			name := g.GenerateBlended(ctx, "human", "elf", WithStrategy(StrategyHybrid))
			if name == "" || strings.ContainsAny(name, " -") {
				t.Fatalf("hybrid_construction produced %q, want a single word", name)
			}
			if !unicode.IsUpper([]rune(name)[0]) {
				t.Errorf("name %q is not capitalized", name)
			}
		}
	})

	t.Run("blend syllables", func(t *testing.T) {
		for i := 0; i < 15; i++ {
			name := g.GenerateBlended(ctx, "human", "elf", WithStrategy(StrategyBlendSyllables))
			if name == "" || strings.ContainsAny(name, " -") {
				t.Fatalf("blend_syllables produced %q, want a single word", name)
			}
		}
	})

	t.Run("default strategy rotates", func(t *testing.T) {
		for i := 0; i < 20; i++ {
			if name := g.GenerateBlended(ctx, "human", "elf"); name == "" {
				t.Fatal("unset strategy produced an empty name")
			}
		}
	})
}

func TestPhoneticShiftDirection(t *testing.T) {
	g := newBlendGenerator()
	ctx := context.Background()

	// Dominant first ancestry: river fragments harshened, so every l
	// becomes r and the output stays in river letters.
	for i := 0; i < 15; i++ {
		name := g.GenerateBlended(ctx, "river", "ember",
			WithStrategy(StrategyPhoneticShift), WithRatio(0.9))
		if !lettersWithin(name, "mira") {
			t.Errorf("harshened name %q strays outside the dominant alphabet", name)
		}
	}

	// Dominant second ancestry: ember fragments softened, k becomes t.
	for i := 0; i < 15; i++ {
		name := g.GenerateBlended(ctx, "river", "ember",
			WithStrategy(StrategyPhoneticShift), WithRatio(0.1))
		if !lettersWithin(name, "zuto") {
			t.Errorf("softened name %q strays outside the dominant alphabet", name)
		}
	}
}

func TestHybridRatioExtremes(t *testing.T) {
	g := newBlendGenerator()
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		name := g.GenerateBlended(ctx, "river", "ember",
			WithStrategy(StrategyHybrid), WithRatio(1))
		if !lettersWithin(name, "miral") {
			t.Errorf("ratio 1 produced %q with letters outside the first ancestry", name)
		}
	}
	for i := 0; i < 15; i++ {
		name := g.GenerateBlended(ctx, "river", "ember",
			WithStrategy(StrategyHybrid), WithRatio(0))
		if !lettersWithin(name, "zuko") {
			t.Errorf("ratio 0 produced %q with letters outside the second ancestry", name)
		}
	}
}

func TestRatioClamping(t *testing.T) {
	g := newBlendGenerator()
	ctx := context.Background()

	if name := g.GenerateBlended(ctx, "river", "ember",
		WithStrategy(StrategyHybrid), WithRatio(7)); !lettersWithin(name, "miral") {
		t.Errorf("ratio above 1 should clamp to 1, got %q", name)
	}
	if name := g.GenerateBlended(ctx, "river", "ember",
		WithStrategy(StrategyHybrid), WithRatio(-3)); !lettersWithin(name, "zuko") {
		t.Errorf("ratio below 0 should clamp to 0, got %q", name)
	}
}

func TestBlendRatioExtremesUseCachedChains(t *testing.T) {
	g := newBlendGenerator()
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		name := g.GenerateBlended(ctx, "river", "ember",
			WithStrategy(StrategyBlendSyllables), WithRatio(1))
		if !lettersWithin(name, "miral") {
			t.Errorf("ratio 1 produced %q with letters outside the first corpus", name)
		}
	}
	if stats := g.CacheStats(); stats.Chains != 1 {
		t.Errorf("ratio-1 blending cached %d chains, want 1", stats.Chains)
	}

	for i := 0; i < 10; i++ {
		name := g.GenerateBlended(ctx, "river", "ember",
			WithStrategy(StrategyBlendSyllables), WithRatio(0))
		if !lettersWithin(name, "zuko") {
			t.Errorf("ratio 0 produced %q with letters outside the second corpus", name)
		}
	}
	if stats := g.CacheStats(); stats.Chains != 2 {
		t.Errorf("both extremes cached %d chains, want 2", stats.Chains)
	}

	// Mid-ratio blends train throwaway chains and must leave the cache
	// untouched.
	for i := 0; i < 10; i++ {
		g.GenerateBlended(ctx, "river", "ember",
			WithStrategy(StrategyBlendSyllables), WithRatio(0.5))
	}
	if stats := g.CacheStats(); stats.Chains != 2 {
		t.Errorf("mid-ratio blending grew the cache to %d chains, want 2", stats.Chains)
	}
}

func TestCombinePartsWithoutLastNames(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EnsureUnique = false
	g := New(testSource(), WithRand(testRand()), WithConfig(cfg))
	ctx := context.Background()

	// Goblins carry no family names; the second part falls back to a
	// syllabic core from their pools.
	for i := 0; i < 10; i++ {
		name := g.GenerateBlended(ctx, "human", "goblin", WithStrategy(StrategyCombineParts))
		parts := strings.Fields(name)
		if len(parts) != 2 {
			t.Fatalf("combine_parts produced %q, want two parts", name)
		}
		if !unicode.IsUpper([]rune(parts[1])[0]) {
			t.Errorf("fallback last name in %q is not capitalized", name)
		}
	}
}

func TestDefaultBlendScope(t *testing.T) {
	g := newTestGenerator(t)
	g.GenerateBlended(context.Background(), "human", "elf")

	scopes := g.Scopes()
	if len(scopes) != 1 || scopes[0] != "human+elf" {
		t.Errorf("Scopes() = %v, want [human+elf]", scopes)
	}
}

func TestValidStrategy(t *testing.T) {
	all := AllStrategies()
	if len(all) != 4 {
		t.Fatalf("AllStrategies() returned %d entries, want 4", len(all))
	}
	seen := make(map[BlendStrategy]struct{})
	for _, s := range all {
		if !ValidStrategy(s) {
			t.Errorf("ValidStrategy(%q) = false for a listed strategy", s)
		}
		if _, dup := seen[s]; dup {
			t.Errorf("strategy %q listed twice", s)
		}
		seen[s] = struct{}{}
	}
	if ValidStrategy("osmosis") {
		t.Error("ValidStrategy accepted an unknown strategy")
	}
	if ValidStrategy("") {
		t.Error("ValidStrategy accepted an empty strategy")
	}
}

func BenchmarkGenerateBlended(b *testing.B) {
	cfg := DefaultConfig()
	cfg.EnsureUnique = false
	g := New(testSource(), WithRand(testRand()), WithConfig(cfg))
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if name := g.GenerateBlended(ctx, "human", "elf", WithRatio(0.5)); name == "" {
			b.Fatal("empty name")
		}
	}
}
