package patternstore

import "embed"

// defaultsFS carries the shipped ancestry pattern files and heritage
// presets. Override directories replace individual entries by ancestry id
// at load time.
//
//go:embed data/*.json
var defaultsFS embed.FS
