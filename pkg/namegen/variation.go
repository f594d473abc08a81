package namegen

import "strings"

// variations are the deterministic transforms of the second cascade phase.
// The guard cycles through them round-robin by attempt index, so repeated
// failures explore different mutations rather than retrying one.
var variations = []func(name string, attempt int) string{
	doubleConsonant,
	insertAspirate,
	replaceEnding,
	appendSuffix,
	shiftVowel,
}

// applyVariation transforms name with the attempt-selected variation.
func applyVariation(name string, attempt int) string {
	if name == "" {
		return name
	}
	if attempt < 0 {
		attempt = 0
	}
	return variations[attempt%len(variations)](name, attempt)
}

// doubleConsonant doubles the first internal consonant: Mira -> Mirra.
func doubleConsonant(name string, _ int) string {
	runes := []rune(name)
	for i := 1; i < len(runes)-1; i++ {
		if isConsonant(runes[i]) {
			out := make([]rune, 0, len(runes)+1)
			out = append(out, runes[:i+1]...)
			out = append(out, runes[i])
			out = append(out, runes[i+1:]...)
			return string(out)
		}
	}
	return name
}

// insertAspirate inserts "h" after a leading consonant: Tor -> Thor. Names
// already aspirated or starting with a vowel pass through unchanged.
func insertAspirate(name string, _ int) string {
	runes := []rune(name)
	if len(runes) == 0 || !isConsonant(runes[0]) {
		return name
	}
	if len(runes) > 1 && runes[1] == 'h' {
		return name
	}
	return string(runes[:1]) + "h" + string(runes[1:])
}

// endingTable feeds replaceEnding; the attempt index walks it so successive
// attempts produce different endings.
var endingTable = []string{"a", "e", "i", "o", "u", "ai", "ei", "ia", "io", "ua"}

// replaceEnding swaps a trailing vowel for a table entry: Mira -> Mire.
func replaceEnding(name string, attempt int) string {
	runes := []rune(name)
	last := len(runes) - 1
	if last < 1 || !isVowel(runes[last]) {
		return name
	}
	return string(runes[:last]) + endingTable[attempt%len(endingTable)]
}

// suffixTable feeds appendSuffix.
var suffixTable = []string{"n", "r", "s", "th", "el"}

// appendSuffix appends a fixed table entry: Mira -> Miran.
func appendSuffix(name string, attempt int) string {
	return name + suffixTable[attempt%len(suffixTable)]
}

// vowelSuccessor drives shiftVowel's rotation.
var vowelSuccessor = map[rune]rune{'a': 'e', 'e': 'i', 'i': 'o', 'o': 'u', 'u': 'a'}

// shiftVowel rotates the first internal vowel: Mira -> Mora.
func shiftVowel(name string, _ int) string {
	runes := []rune(name)
	for i := 1; i < len(runes)-1; i++ {
		if next, ok := vowelSuccessor[runes[i]]; ok {
			runes[i] = next
			return string(runes)
		}
	}
	return name
}

// romanSteps is the descending value table behind roman.
var romanSteps = []struct {
	value  int
	symbol string
}{
	{1000, "M"}, {900, "CM"}, {500, "D"}, {400, "CD"},
	{100, "C"}, {90, "XC"}, {50, "L"}, {40, "XL"},
	{10, "X"}, {9, "IX"}, {5, "V"}, {4, "IV"},
	{1, "I"},
}

// roman renders n as an uppercase Roman numeral. The guarantee phase starts
// at 2 ("II"), but any positive n renders correctly.
func roman(n int) string {
	if n <= 0 {
		return ""
	}
	var b strings.Builder
	for _, step := range romanSteps {
		for n >= step.value {
			b.WriteString(step.symbol)
			n -= step.value
		}
	}
	return b.String()
}
