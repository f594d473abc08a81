package namegen

import (
	"math/rand/v2"
	"strings"
)

// phonemeInventory holds the onset, nucleus and coda runs decomposed from
// an ancestry's fragment pools. It backs the third cascade phase, which
// assembles names the pools themselves can no longer provide.
type phonemeInventory struct {
	onsets []string
	nuclei []string
	codas  []string
}

// newPhonemeInventory splits every resolved fragment into a leading
// consonant run, its first vowel run and a trailing consonant run.
// Duplicates are kept so frequent runs stay frequent under sampling.
func newPhonemeInventory(pats *PatternSet, gender Gender) *phonemeInventory {
	inv := &phonemeInventory{}
	for _, frag := range pats.corpus(gender) {
		onset, nucleus, coda := splitPhonemes(strings.ToLower(frag))
		if onset != "" {
			inv.onsets = append(inv.onsets, onset)
		}
		if nucleus != "" {
			inv.nuclei = append(inv.nuclei, nucleus)
		}
		if coda != "" {
			inv.codas = append(inv.codas, coda)
		}
	}
	return inv
}

func splitPhonemes(frag string) (onset, nucleus, coda string) {
	runes := []rune(frag)
	i := 0
	for i < len(runes) && isConsonant(runes[i]) {
		i++
	}
	onset = string(runes[:i])
	j := i
	for j < len(runes) && isVowel(runes[j]) {
		j++
	}
	nucleus = string(runes[i:j])
	k := len(runes)
	for k > j && isConsonant(runes[k-1]) {
		k--
	}
	coda = string(runes[k:])
	return onset, nucleus, coda
}

// assemble builds one candidate: onset+nucleus per syllable, a coda only on
// the final syllable. Returns "" when the fragments yielded no vowel runs,
// which tells the guard to skip this phase.
func (inv *phonemeInventory) assemble(rng *rand.Rand, weights map[int]float64) string {
	if len(inv.nuclei) == 0 {
		return ""
	}
	count := pickSyllableCount(rng, weights)
	var b strings.Builder
	for s := 0; s < count; s++ {
		if len(inv.onsets) > 0 {
			b.WriteString(inv.onsets[rng.IntN(len(inv.onsets))])
		}
		b.WriteString(inv.nuclei[rng.IntN(len(inv.nuclei))])
	}
	if len(inv.codas) > 0 {
		b.WriteString(inv.codas[rng.IntN(len(inv.codas))])
	}
	return capitalize(b.String())
}
