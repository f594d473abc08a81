package namegen

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Gender selects which fragment pools of a PatternSet are used. Unknown
// values resolve through the same fallback chain as a missing key.
type Gender string

const (
	GenderMale      Gender = "male"
	GenderFemale    Gender = "female"
	GenderNonbinary Gender = "nonbinary"
)

// StructureType identifies one of the name shapes a PatternSet can produce.
type StructureType string

const (
	// StructureSingle is a bare mononym: one capitalized prefix fragment.
	StructureSingle StructureType = "single"
	// StructureFirstLast is a syllabic given name followed by a last name.
	StructureFirstLast StructureType = "first-last"
	// StructureClanName pairs a given name with a clan name; ClanFirst
	// controls the order.
	StructureClanName StructureType = "clan-name"
	// StructureCompound joins two syllabic cores with a hyphen.
	StructureCompound StructureType = "compound"
	// StructureSyllabic is the default: 1-3 fragments fused into one word.
	StructureSyllabic StructureType = "syllabic"
)

// FragmentPools holds the syllable fragments for one gender.
type FragmentPools struct {
	Prefixes []string `json:"prefixes"`
	Middles  []string `json:"middles,omitempty"`
	Suffixes []string `json:"suffixes"`
}

// StructureWeight pairs a name structure with its selection weight.
type StructureWeight struct {
	Type   StructureType `json:"type"`
	Weight float64       `json:"weight"`
}

// PatternSet describes the naming conventions of a single ancestry: its
// gendered fragment pools, optional family and clan names, the weighted
// name structures it produces, and how many syllables its names carry.
//
// A PatternSet never has to be complete. Any gender lookup miss falls back
// to the nonbinary pools and finally to a hardcoded generic pool, so
// generation cannot fail on sparse data.
type PatternSet struct {
	AncestryID    string                   `json:"ancestry_id"`
	ByGender      map[Gender]FragmentPools `json:"by_gender"`
	LastNames     []string                 `json:"last_names,omitempty"`
	ClanNames     []string                 `json:"clan_names,omitempty"`
	Structures    []StructureWeight        `json:"structures,omitempty"`
	LengthWeights map[int]float64          `json:"length_weights,omitempty"`
	HasLastNames  bool                     `json:"has_last_names,omitempty"`
	ClanFirst     bool                     `json:"clan_first,omitempty"`
}

// PatternSource supplies PatternSets by ancestry. Implementations own
// caching and loading; the engine treats every lookup failure as "use the
// fallback patterns" and never propagates source errors to callers.
type PatternSource interface {
	Patterns(ctx context.Context, ancestry string) (*PatternSet, error)
}

// Validate reports whether the pattern set is usable as authored data. It
// is meant for stores and APIs that accept user-written pattern files; the
// engine itself never requires a valid set and degrades instead.
func (p *PatternSet) Validate() error {
	if p == nil {
		return errors.New("pattern set is nil")
	}
	if strings.TrimSpace(p.AncestryID) == "" {
		return errors.New("ancestry_id is required")
	}
	for gender := range p.ByGender {
		switch gender {
		case GenderMale, GenderFemale, GenderNonbinary:
		default:
			return fmt.Errorf("unknown gender key %q", gender)
		}
	}
	for _, sw := range p.Structures {
		switch sw.Type {
		case StructureSingle, StructureFirstLast, StructureClanName, StructureCompound, StructureSyllabic:
		default:
			return fmt.Errorf("unknown structure type %q", sw.Type)
		}
		if sw.Weight < 0 {
			return fmt.Errorf("structure %q has a negative weight", sw.Type)
		}
	}
	for count, weight := range p.LengthWeights {
		if count < 1 || count > 3 {
			return fmt.Errorf("length weight for %d syllables is out of range", count)
		}
		if weight < 0 {
			return fmt.Errorf("length weight for %d syllables is negative", count)
		}
	}
	return nil
}

// genericPools is the last-resort fragment pool. Any lookup that misses
// every gender of every pattern falls through to these.
var genericPools = FragmentPools{
	Prefixes: []string{"bel", "cal", "dor", "fen", "kar", "lor", "mir", "tan"},
	Suffixes: []string{"a", "an", "el", "en", "ia", "in", "or", "us"},
}

// prefixes resolves the prefix pool for a gender: the gender's own list,
// then nonbinary, then the generic pool. Never empty.
func (p *PatternSet) prefixes(gender Gender) []string {
	if p != nil {
		if pool, ok := p.ByGender[gender]; ok && len(pool.Prefixes) > 0 {
			return pool.Prefixes
		}
		if pool, ok := p.ByGender[GenderNonbinary]; ok && len(pool.Prefixes) > 0 {
			return pool.Prefixes
		}
	}
	return genericPools.Prefixes
}

// suffixes resolves the suffix pool like prefixes. Never empty.
func (p *PatternSet) suffixes(gender Gender) []string {
	if p != nil {
		if pool, ok := p.ByGender[gender]; ok && len(pool.Suffixes) > 0 {
			return pool.Suffixes
		}
		if pool, ok := p.ByGender[GenderNonbinary]; ok && len(pool.Suffixes) > 0 {
			return pool.Suffixes
		}
	}
	return genericPools.Suffixes
}

// middles resolves the middle pool. The generic pool carries no middles,
// so this may return nil; a three-syllable build then drops its middle.
func (p *PatternSet) middles(gender Gender) []string {
	if p != nil {
		if pool, ok := p.ByGender[gender]; ok && len(pool.Middles) > 0 {
			return pool.Middles
		}
		if pool, ok := p.ByGender[GenderNonbinary]; ok && len(pool.Middles) > 0 {
			return pool.Middles
		}
	}
	return nil
}

// corpus is the training material for an ancestry+gender: every resolved
// fragment pool concatenated.
func (p *PatternSet) corpus(gender Gender) []string {
	prefixes := p.prefixes(gender)
	middles := p.middles(gender)
	suffixes := p.suffixes(gender)
	out := make([]string, 0, len(prefixes)+len(middles)+len(suffixes))
	out = append(out, prefixes...)
	out = append(out, middles...)
	out = append(out, suffixes...)
	return out
}

// structureWeights returns the declared structures, or the syllabic
// default when none are declared.
func (p *PatternSet) structureWeights() []StructureWeight {
	if p != nil && len(p.Structures) > 0 {
		return p.Structures
	}
	return []StructureWeight{{Type: StructureSyllabic, Weight: 1}}
}

// lengthWeights returns the declared syllable-count weights, or the
// default 70% two / 30% three distribution.
func (p *PatternSet) lengthWeights() map[int]float64 {
	if p != nil && len(p.LengthWeights) > 0 {
		return p.LengthWeights
	}
	return map[int]float64{2: 0.7, 3: 0.3}
}

// builtinHumanPatterns is the engine-level fallback used when a pattern
// source fails or is absent. It returns a fresh set on every call so
// callers can never corrupt shared state.
func builtinHumanPatterns() *PatternSet {
	return &PatternSet{
		AncestryID: "human",
		ByGender: map[Gender]FragmentPools{
			GenderMale: {
				Prefixes: []string{"al", "bran", "cor", "dav", "ed", "gar", "jor", "mar", "rod", "wil"},
				Middles:  []string{"de", "do", "ri", "than", "ton"},
				Suffixes: []string{"ard", "den", "ric", "ian", "in", "on", "ren", "us"},
			},
			GenderFemale: {
				Prefixes: []string{"ann", "bel", "cat", "el", "is", "mar", "ros", "sar", "vi", "wen"},
				Middles:  []string{"a", "el", "ind", "iss", "or"},
				Suffixes: []string{"a", "beth", "elle", "ia", "ina", "lyn", "ra", "wyn"},
			},
			GenderNonbinary: {
				Prefixes: []string{"ash", "bren", "cas", "dev", "em", "hol", "quin", "rem", "sage", "tam"},
				Middles:  []string{"al", "ar", "en", "is", "or"},
				Suffixes: []string{"an", "ary", "el", "en", "ery", "is", "lin", "ley"},
			},
		},
		LastNames: []string{
			"Ashford", "Blackwood", "Carter", "Fletcher", "Harrow",
			"Mercer", "Thorne", "Underhill", "Ward", "Wheeler",
		},
		Structures: []StructureWeight{
			{Type: StructureSyllabic, Weight: 0.45},
			{Type: StructureFirstLast, Weight: 0.4},
			{Type: StructureSingle, Weight: 0.1},
			{Type: StructureCompound, Weight: 0.05},
		},
		LengthWeights: map[int]float64{2: 0.7, 3: 0.3},
		HasLastNames:  true,
	}
}
