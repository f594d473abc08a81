package namegen

import (
	"errors"
	"math"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestEditDistanceProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("zero distance only between equal strings", prop.ForAll(
		func(a, b string) bool {
			return (editDistance(a, b) == 0) == (a == b)
		},
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.Property("distance is symmetric", prop.ForAll(
		func(a, b string) bool {
			return editDistance(a, b) == editDistance(b, a)
		},
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.Property("distance satisfies the triangle inequality", prop.ForAll(
		func(a, b, c string) bool {
			return editDistance(a, c) <= editDistance(a, b)+editDistance(b, c)
		},
		gen.AlphaString(),
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.Property("distance never exceeds the longer string", prop.ForAll(
		func(a, b string) bool {
			longer := len([]rune(a))
			if n := len([]rune(b)); n > longer {
				longer = n
			}
			return editDistance(a, b) <= longer
		},
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

// parseRoman inverts roman for the round-trip property: right-to-left scan,
// subtracting values that precede a larger one.
func parseRoman(s string) int {
	values := map[byte]int{'I': 1, 'V': 5, 'X': 10, 'L': 50, 'C': 100, 'D': 500, 'M': 1000}
	total, prev := 0, 0
	for i := len(s) - 1; i >= 0; i-- {
		v := values[s[i]]
		if v < prev {
			total -= v
		} else {
			total += v
			prev = v
		}
	}
	return total
}

func TestRomanProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("numerals round-trip to their value", prop.ForAll(
		func(n int) bool {
			return parseRoman(roman(n)) == n
		},
		gen.IntRange(1, 3999),
	))

	properties.Property("numerals use only the seven symbols", prop.ForAll(
		func(n int) bool {
			for _, r := range roman(n) {
				if !strings.ContainsRune("MDCLXVI", r) {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 3999),
	))

	properties.Property("distinct values yield distinct numerals", prop.ForAll(
		func(n, m int) bool {
			return (n == m) == (roman(n) == roman(m))
		},
		gen.IntRange(1, 3999),
		gen.IntRange(1, 3999),
	))

	properties.TestingRun(t)
}

func TestVariationProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("variations preserve non-emptiness", prop.ForAll(
		func(name string, attempt int) bool {
			out := applyVariation(name, attempt)
			if name == "" {
				return out == ""
			}
			return out != ""
		},
		gen.AlphaString(),
		gen.IntRange(0, 99),
	))

	properties.Property("variations never shorten a name", prop.ForAll(
		func(name string, attempt int) bool {
			return len([]rune(applyVariation(name, attempt))) >= len([]rune(name))
		},
		gen.AlphaString(),
		gen.IntRange(0, 99),
	))

	properties.TestingRun(t)
}

func TestPhoneticProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("harshening eliminates its source letters", prop.ForAll(
		func(s string) bool {
			out := applyPhoneticRules(strings.ToLower(s), harshenRules)
			return !strings.ContainsAny(out, "tlv")
		},
		gen.AlphaString(),
	))

	properties.Property("softening eliminates its source letters", prop.ForAll(
		func(s string) bool {
			out := applyPhoneticRules(strings.ToLower(s), softenRules)
			return !strings.ContainsAny(out, "krg")
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

func TestPhonemeSplitProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("onset and nucleus prefix the fragment, coda suffixes it", prop.ForAll(
		func(s string) bool {
			frag := strings.ToLower(s)
			onset, nucleus, coda := splitPhonemes(frag)
			return strings.HasPrefix(frag, onset+nucleus) &&
				strings.HasSuffix(frag, coda) &&
				len(onset)+len(nucleus)+len(coda) <= len(frag)
		},
		gen.AlphaString(),
	))

	properties.Property("a nucleus exists exactly when the fragment has a vowel", prop.ForAll(
		func(s string) bool {
			frag := strings.ToLower(s)
			_, nucleus, _ := splitPhonemes(frag)
			return strings.ContainsAny(frag, "aeiou") == (nucleus != "")
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

func TestCapitalizeProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("capitalize is idempotent", prop.ForAll(
		func(s string) bool {
			once := capitalize(s)
			return capitalize(once) == once
		},
		gen.AlphaString(),
	))

	properties.Property("capitalize preserves rune count and folded identity", prop.ForAll(
		func(s string) bool {
			out := capitalize(s)
			return len([]rune(out)) == len([]rune(s)) && strings.EqualFold(out, s)
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

func TestChainProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("transition rows are probability distributions", prop.ForAll(
		func(corpus []string) bool {
			chain := TrainChain(corpus, 2, 0.01)
			for _, sym := range chain.Alphabet {
				if sym == string(socRune) {
					return false
				}
			}
			for _, row := range chain.Transitions {
				var sum float64
				for _, p := range row {
					if p < 0 {
						return false
					}
					sum += p
				}
				if math.Abs(sum-1) > 1e-9 {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(6, gen.AlphaString()),
	))

	properties.Property("samples respect length bounds or report exhaustion", prop.ForAll(
		func(corpus []string, seed int64, minLen, maxLen int) bool {
			chain := TrainChain(corpus, 2, 0.01)
			rng := rand.New(rand.NewPCG(uint64(seed), 99))
			name, err := chain.Generate(rng, minLen, maxLen, 20)
			if err != nil {
				return errors.Is(err, ErrExhausted)
			}
			n := len([]rune(name))
			return n >= minLen && n <= maxLen && name == strings.ToLower(name)
		},
		gen.SliceOfN(6, gen.AlphaString()),
		gen.Int64(),
		gen.IntRange(1, 4),
		gen.IntRange(4, 10),
	))

	properties.TestingRun(t)
}
