package namegen

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"testing"
)

func TestTrainChain(t *testing.T) {
	chain := TrainChain([]string{"mira", "mara", "lira"}, 2, 0.01)

	if chain.Order != 2 {
		t.Errorf("expected order 2, got %d", chain.Order)
	}

	// All three entries share the same initial context, so exactly one
	// start state is recorded.
	wantStart := string([]rune{socRune, socRune})
	if len(chain.Starts) != 1 || chain.Starts[0] != wantStart {
		t.Errorf("expected single start context %q, got %v", wantStart, chain.Starts)
	}

	// Alphabet: the five corpus letters plus the end sentinel, never the
	// start sentinel.
	wantAlphabet := map[string]struct{}{
		"a": {}, "i": {}, "l": {}, "m": {}, "r": {}, string(eocRune): {},
	}
	if len(chain.Alphabet) != len(wantAlphabet) {
		t.Fatalf("expected %d alphabet symbols, got %d (%v)", len(wantAlphabet), len(chain.Alphabet), chain.Alphabet)
	}
	for _, sym := range chain.Alphabet {
		if _, ok := wantAlphabet[sym]; !ok {
			t.Errorf("unexpected alphabet symbol %q", sym)
		}
	}

	// Every context's outgoing probabilities sum to 1 within tolerance.
	for window, row := range chain.Transitions {
		var sum float64
		for _, p := range row {
			sum += p
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("context %q probabilities sum to %f, want 1", window, sum)
		}
	}

	// "mira" and "mara" both open with m, "lira" with l, so the start
	// context must weight m above l.
	startRow := chain.Transitions[wantStart]
	if startRow["m"] <= startRow["l"] {
		t.Errorf("expected P(m)=%f > P(l)=%f from the start context", startRow["m"], startRow["l"])
	}
}

func TestTrainChainFoldsAndSkips(t *testing.T) {
	upper := TrainChain([]string{"MIRA", " Mara "}, 2, 0.01)
	lower := TrainChain([]string{"mira", "mara"}, 2, 0.01)
	if !reflect.DeepEqual(upper, lower) {
		t.Error("training is not case- and whitespace-insensitive")
	}

	empty := TrainChain([]string{"", "   "}, 2, 0.01)
	if len(empty.Starts) != 0 {
		t.Errorf("blank entries produced %d start states", len(empty.Starts))
	}
	if _, err := empty.Generate(testRand(), 1, 10, 5); !errors.Is(err, ErrExhausted) {
		t.Errorf("expected ErrExhausted from an empty chain, got %v", err)
	}
}

func TestTrainChainDeterministic(t *testing.T) {
	corpus := []string{"belan", "coren", "davin", "elwyn", "frey", "galad"}
	first := TrainChain(corpus, 2, 0.01)
	second := TrainChain(corpus, 2, 0.01)
	if !reflect.DeepEqual(first, second) {
		t.Error("identical corpus, order and smoothing produced different chains")
	}
}

func TestChainGenerate(t *testing.T) {
	chain := TrainChain([]string{"mira", "mara", "lira"}, 2, 0.01)
	rng := testRand()
	letters := map[rune]struct{}{'m': {}, 'i': {}, 'r': {}, 'a': {}, 'l': {}}

	for i := 0; i < 50; i++ {
		name, err := chain.Generate(rng, 3, 6, 100)
		if err != nil {
			t.Fatalf("Generate failed on iteration %d: %v", i, err)
		}
		runes := []rune(name)
		if len(runes) < 3 || len(runes) > 6 {
			t.Errorf("name %q has %d runes, want 3-6", name, len(runes))
		}
		if name != strings.ToLower(name) {
			t.Errorf("chain output %q is not lowercase", name)
		}
		for _, r := range runes {
			if _, ok := letters[r]; !ok {
				t.Errorf("name %q contains %q, which is outside the trained transitions", name, r)
			}
		}
	}
}

func TestChainGenerateExhausted(t *testing.T) {
	testCases := []struct {
		name      string
		corpus    []string
		smoothing float64
		minLen    int
		maxLen    int
	}{
		{name: "empty corpus", corpus: nil, smoothing: 0.01, minLen: 1, maxLen: 10},
		{name: "inverted bounds", corpus: []string{"mira"}, smoothing: 0.01, minLen: 6, maxLen: 3},
		{name: "unreachable length without smoothing", corpus: []string{"ab"}, smoothing: 0, minLen: 1, maxLen: 1},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			chain := TrainChain(tc.corpus, 2, tc.smoothing)
			_, err := chain.Generate(testRand(), tc.minLen, tc.maxLen, 50)
			if !errors.Is(err, ErrExhausted) {
				t.Errorf("expected ErrExhausted, got %v", err)
			}
		})
	}
}

func TestBlendCorpora(t *testing.T) {
	a := []string{"mira", "mara", "lira"}
	b := []string{"zuko", "kuzo"}
	inA := map[string]struct{}{"mira": {}, "mara": {}, "lira": {}}
	inB := map[string]struct{}{"zuko": {}, "kuzo": {}}

	testCases := []struct {
		name  string
		ratio float64
		wantA int
		wantB int
	}{
		{name: "all from a", ratio: 1, wantA: 3, wantB: 0},
		{name: "all from b", ratio: 0, wantA: 0, wantB: 2},
		{name: "even split", ratio: 0.5, wantA: 1, wantB: 1},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			blended := blendCorpora(testRand(), a, b, tc.ratio)
			var gotA, gotB int
			for _, entry := range blended {
				if _, ok := inA[entry]; ok {
					gotA++
				}
				if _, ok := inB[entry]; ok {
					gotB++
				}
			}
			if gotA != tc.wantA || gotB != tc.wantB {
				t.Errorf("ratio %.1f drew %d from a and %d from b, want %d and %d",
					tc.ratio, gotA, gotB, tc.wantA, tc.wantB)
			}
		})
	}
}

func TestSampleN(t *testing.T) {
	items := []string{"a", "b", "c", "d"}
	rng := testRand()

	if got := sampleN(rng, items, 0); got != nil {
		t.Errorf("sampleN with n=0 returned %v, want nil", got)
	}
	if got := sampleN(rng, items, 10); len(got) != len(items) {
		t.Errorf("oversized n returned %d items, want %d", len(got), len(items))
	}

	got := sampleN(rng, items, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(got))
	}
	if got[0] == got[1] {
		t.Errorf("sampleN drew %q twice; sampling is without replacement", got[0])
	}
}

func BenchmarkTrainChain(b *testing.B) {
	corpus := benchCorpus()
	for _, order := range []int{1, 2, 3} {
		b.Run(fmt.Sprintf("Order%d", order), func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				TrainChain(corpus, order, 0.01)
			}
		})
	}
}

func BenchmarkChainGenerate(b *testing.B) {
	chain := TrainChain(benchCorpus(), 2, 0.01)
	rng := testRand()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := chain.Generate(rng, 3, 12, 100); err != nil {
			b.Fatalf("Generate failed: %v", err)
		}
	}
}
