package namegen

// Config controls uniqueness enforcement and the statistical engine. The
// zero value is not meaningful; start from DefaultConfig and adjust.
//
// Configure replaces the whole configuration, so callers changing one knob
// should fetch the current config, modify it, and pass it back.
type Config struct {
	// EnsureUnique gates the whole acceptance cascade. When false every
	// call performs a single ungated generation, though results are still
	// registered so scope statistics stay meaningful.
	EnsureUnique bool `json:"ensure_unique"`

	// MaxRetries bounds each of the first three cascade phases.
	MaxRetries int `json:"max_retries"`

	// MinSimilarityDistance is the minimum edit distance a candidate must
	// keep from recent names in its scope. Zero admits everything not an
	// outright duplicate; a negative value disables the similarity check.
	MinSimilarityDistance int `json:"min_similarity_distance"`

	// ComparisonWindow is how many of the scope's most recent names the
	// similarity check compares against.
	ComparisonWindow int `json:"comparison_window"`

	// EnableVariations enables the second cascade phase (deterministic
	// transforms of fresh candidates).
	EnableVariations bool `json:"enable_variations"`

	// EnablePhonemeGeneration enables the third cascade phase (names
	// reassembled from the ancestry's phoneme inventory).
	EnablePhonemeGeneration bool `json:"enable_phoneme_generation"`

	// RegistryCap bounds each registry scope; the oldest entries are
	// evicted first. Zero keeps scopes unbounded.
	RegistryCap int `json:"registry_cap"`

	// MarkovOrder is the context length of trained chains.
	MarkovOrder int `json:"markov_order"`

	// MarkovSmoothing is the additive (Laplace) smoothing constant applied
	// over the chain alphabet when counts become probabilities.
	MarkovSmoothing float64 `json:"markov_smoothing"`

	// MarkovMaxAttempts bounds chain sampling before it reports exhaustion.
	MarkovMaxAttempts int `json:"markov_max_attempts"`

	// MarkovMinLength and MarkovMaxLength bound accepted sample lengths,
	// in runes.
	MarkovMinLength int `json:"markov_min_length"`
	MarkovMaxLength int `json:"markov_max_length"`
}

// DefaultConfig returns the stock engine configuration.
func DefaultConfig() Config {
	return Config{
		EnsureUnique:            true,
		MaxRetries:              50,
		MinSimilarityDistance:   2,
		ComparisonWindow:        100,
		EnableVariations:        true,
		EnablePhonemeGeneration: true,
		RegistryCap:             0,
		MarkovOrder:             2,
		MarkovSmoothing:         0.01,
		MarkovMaxAttempts:       100,
		MarkovMinLength:         3,
		MarkovMaxLength:         10,
	}
}

// normalized fills unusable zero or negative fields with defaults. A
// negative MinSimilarityDistance is kept as-is: it turns the similarity
// check off entirely.
func (c Config) normalized() Config {
	def := DefaultConfig()
	if c.MaxRetries <= 0 {
		c.MaxRetries = def.MaxRetries
	}
	if c.ComparisonWindow <= 0 {
		c.ComparisonWindow = def.ComparisonWindow
	}
	if c.RegistryCap < 0 {
		c.RegistryCap = 0
	}
	if c.MarkovOrder < 1 {
		c.MarkovOrder = def.MarkovOrder
	}
	if c.MarkovSmoothing < 0 {
		c.MarkovSmoothing = def.MarkovSmoothing
	}
	if c.MarkovMaxAttempts <= 0 {
		c.MarkovMaxAttempts = def.MarkovMaxAttempts
	}
	if c.MarkovMinLength <= 0 {
		c.MarkovMinLength = def.MarkovMinLength
	}
	if c.MarkovMaxLength <= 0 {
		c.MarkovMaxLength = def.MarkovMaxLength
	}
	if c.MarkovMaxLength < c.MarkovMinLength {
		c.MarkovMaxLength = c.MarkovMinLength
	}
	return c
}
