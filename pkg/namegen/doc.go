/*
Package namegen procedurally generates character names for cultural and
ancestral categories, including blended heritage categories that combine
two ancestries' naming conventions.

Names come from weighted syllable assembly, from character-level Markov
chains trained on an ancestry's fragment pools, or from four blending
strategies that mix two ancestries. A four-phase uniqueness guard wraps
every call and guarantees that repeated calls in the same registry scope
never produce duplicate or near-duplicate names, escalating from plain
retries through deterministic variations and phoneme reassembly to
dynastic numeral suffixes, which cannot fail.

The package performs no I/O: pattern data arrives through the
PatternSource interface, and a missing or failing source degrades to a
built-in human pattern set and finally to a generic fragment pool, so
generation callers never see an error.
*/
package namegen
