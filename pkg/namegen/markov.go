package namegen

import (
	"errors"
	"math/rand/v2"
	"sort"
	"strings"
)

const (
	// socRune pads the start of every training entry so chains learn which
	// letters begin names. It is a control rune and can never collide with
	// corpus text.
	socRune = '\x02'
	// eocRune terminates every training entry; sampling stops on drawing it.
	eocRune = '\x03'
)

// ErrExhausted is returned by Chain.Generate when no sample within the
// requested length bounds was produced in the allotted attempts. The chain
// never substitutes a fallback itself; that decision belongs to the caller.
var ErrExhausted = errors.New("namegen: generation attempts exhausted")

// Chain is a character-level n-gram model. Transitions map an order-length
// context to a probability distribution over the next symbol; for every
// context the probabilities sum to 1 by construction. Order is fixed at
// training time and never mutated.
type Chain struct {
	Order       int                           `json:"order"`
	Smoothing   float64                       `json:"smoothing"`
	Transitions map[string]map[string]float64 `json:"transitions"`
	Starts      []string                      `json:"starts"`
	Alphabet    []string                      `json:"alphabet"`
}

// TrainChain builds a character-level Markov chain from a corpus of name
// fragments. Every entry is case-folded, padded with order leading start
// sentinels and one trailing end sentinel, and contributes one observation
// per order-length window. Counts become probabilities under additive
// (Laplace) smoothing over the chain's alphabet: every symbol seen in the
// corpus plus the end sentinel.
//
// Training is deterministic: the same corpus, order and smoothing always
// produce the same transition table.
func TrainChain(corpus []string, order int, smoothing float64) *Chain {
	if order < 1 {
		order = DefaultConfig().MarkovOrder
	}
	if smoothing < 0 {
		smoothing = DefaultConfig().MarkovSmoothing
	}

	counts := make(map[string]map[string]int)
	letters := make(map[string]struct{})
	startSet := make(map[string]struct{})
	var starts []string

	for _, entry := range corpus {
		entry = strings.ToLower(strings.TrimSpace(entry))
		if entry == "" {
			continue
		}

		runes := []rune(entry)
		padded := make([]rune, 0, len(runes)+order+1)
		for i := 0; i < order; i++ {
			padded = append(padded, socRune)
		}
		padded = append(padded, runes...)
		padded = append(padded, eocRune)

		for _, r := range runes {
			letters[string(r)] = struct{}{}
		}

		start := string(padded[:order])
		if _, seen := startSet[start]; !seen {
			startSet[start] = struct{}{}
			starts = append(starts, start)
		}

		for i := 0; i+order < len(padded); i++ {
			window := string(padded[i : i+order])
			next := string(padded[i+order])
			row, ok := counts[window]
			if !ok {
				row = make(map[string]int)
				counts[window] = row
			}
			row[next]++
		}
	}

	letters[string(eocRune)] = struct{}{}
	alphabet := make([]string, 0, len(letters))
	for s := range letters {
		alphabet = append(alphabet, s)
	}
	sort.Strings(alphabet)

	transitions := make(map[string]map[string]float64, len(counts))
	for window, row := range counts {
		total := 0
		for _, n := range row {
			total += n
		}
		denom := float64(total) + smoothing*float64(len(alphabet))
		probs := make(map[string]float64, len(alphabet))
		for _, sym := range alphabet {
			probs[sym] = (float64(row[sym]) + smoothing) / denom
		}
		transitions[window] = probs
	}

	return &Chain{
		Order:       order,
		Smoothing:   smoothing,
		Transitions: transitions,
		Starts:      starts,
		Alphabet:    alphabet,
	}
}

// Generate samples one name from the chain: a uniform-random start context,
// then a cumulative-probability walk until the end sentinel is drawn. Only
// samples whose rune count lands in [minLen, maxLen] are accepted; after
// maxAttempts rejections it returns ErrExhausted. The result is lowercase;
// callers own capitalization. rng must not be nil.
func (c *Chain) Generate(rng *rand.Rand, minLen, maxLen, maxAttempts int) (string, error) {
	if len(c.Starts) == 0 || len(c.Alphabet) == 0 {
		return "", ErrExhausted
	}
	if maxLen < minLen {
		return "", ErrExhausted
	}
	for attempt := 0; attempt < maxAttempts; attempt++ {
		name, ok := c.sample(rng, maxLen)
		if ok && len([]rune(name)) >= minLen {
			return name, nil
		}
	}
	return "", ErrExhausted
}

// sample performs one chain walk, abandoning it past maxLen runes or on a
// dead-end context.
func (c *Chain) sample(rng *rand.Rand, maxLen int) (string, bool) {
	window := []rune(c.Starts[rng.IntN(len(c.Starts))])
	out := make([]rune, 0, maxLen)

	for {
		row, ok := c.Transitions[string(window)]
		if !ok {
			// Dead end in chain
			return "", false
		}
		next := c.sampleSymbol(rng, row)
		if next == eocRune {
			return string(out), true
		}
		out = append(out, next)
		if len(out) > maxLen {
			return "", false
		}
		window = append(window[1:], next)
	}
}

// sampleSymbol draws the next symbol by a cumulative-probability walk over
// the alphabet. The alphabet is sorted, so a seeded rng replays the same
// walk every run.
func (c *Chain) sampleSymbol(rng *rand.Rand, row map[string]float64) rune {
	target := rng.Float64()
	for _, sym := range c.Alphabet {
		target -= row[sym]
		if target < 0 {
			return []rune(sym)[0]
		}
	}
	// Floating-point residue lands on the final symbol.
	return []rune(c.Alphabet[len(c.Alphabet)-1])[0]
}

// blendCorpora draws floor(len(a)*ratio) entries from a and
// floor(len(b)*(1-ratio)) from b, both without replacement. At the ratio
// extremes one corpus contributes everything and the other nothing, which
// is what makes single-ancestry chains cacheable.
func blendCorpora(rng *rand.Rand, a, b []string, ratio float64) []string {
	takeA := int(float64(len(a)) * ratio)
	takeB := int(float64(len(b)) * (1 - ratio))
	out := make([]string, 0, takeA+takeB)
	out = append(out, sampleN(rng, a, takeA)...)
	out = append(out, sampleN(rng, b, takeB)...)
	return out
}

// sampleN picks n distinct entries. n at or above len(items) returns the
// whole slice.
func sampleN(rng *rand.Rand, items []string, n int) []string {
	if n <= 0 {
		return nil
	}
	if n >= len(items) {
		return items
	}
	idx := rng.Perm(len(items))
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = items[idx[i]]
	}
	return out
}
