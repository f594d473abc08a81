// Package patternstore loads, caches and persists ancestry pattern files.
// It ships embedded defaults for the stock ancestries and heritage presets,
// overlays them with JSON files from an optional override directory, and
// implements namegen.PatternSource for the engine.
package patternstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/natefinch/atomic"

	"github.com/halvdan/onomast/pkg/namegen"
)

var (
	// ErrNotFound is returned for lookups and deletes of unknown ancestries.
	ErrNotFound = errors.New("patternstore: ancestry not found")
	// ErrBuiltin is returned when deleting an embedded default that has no
	// override file to remove.
	ErrBuiltin = errors.New("patternstore: built-in ancestry cannot be deleted")
	// ErrInvalid is returned when a pattern set fails validation or its
	// ancestry id cannot name a file.
	ErrInvalid = errors.New("patternstore: invalid pattern set")
)

// ancestryIDPattern constrains ids to safe file stems.
var ancestryIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// Heritage is a preset pairing of two ancestries for blended generation.
type Heritage struct {
	Name       string                  `json:"name"`
	AncestryA  string                  `json:"ancestry_a"`
	AncestryB  string                  `json:"ancestry_b"`
	Ratio      float64                 `json:"ratio"`
	Strategies []namegen.BlendStrategy `json:"strategies,omitempty"`
}

// heritageDocument is the wire shape of heritages.json.
type heritageDocument struct {
	Heritages []Heritage `json:"heritages"`
}

// Store is a concurrent-safe pattern catalog: embedded defaults overlaid by
// an optional directory of override files. Lookups are served from memory;
// Save and Delete keep the directory and the cache in step. All methods are
// concurrent-safe.
//
// Returned PatternSets are shared and must be treated as read-only; Save and
// Refresh replace cache entries wholesale rather than mutating them.
type Store struct {
	mu        sync.RWMutex
	dir       string
	logger    *slog.Logger
	builtin   map[string]*namegen.PatternSet
	patterns  map[string]*namegen.PatternSet
	overrides map[string]string // ancestry id -> override file path
	heritages map[string]Heritage
}

// New builds a Store from the embedded defaults, overlaid with <dir>/*.json
// when dir is non-empty. Malformed override files are logged and skipped;
// only an unreadable embedded bundle or directory fails construction. A nil
// logger discards all logs.
func New(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Store{
		dir:    dir,
		logger: logger,
	}
	if err := s.loadEmbedded(); err != nil {
		return nil, err
	}
	if err := s.Refresh(); err != nil {
		return nil, err
	}
	logger.Info("pattern store initialized",
		slog.Int("ancestries", len(s.patterns)),
		slog.Int("heritages", len(s.heritages)),
		slog.String("override_dir", dir),
	)
	return s, nil
}

// loadEmbedded parses the shipped pattern files once. Failures here mean the
// bundle itself is broken and are always fatal.
func (s *Store) loadEmbedded() error {
	entries, err := defaultsFS.ReadDir("data")
	if err != nil {
		return fmt.Errorf("reading embedded pattern data: %w", err)
	}

	s.builtin = make(map[string]*namegen.PatternSet, len(entries))
	s.heritages = make(map[string]Heritage)

	for _, entry := range entries {
		data, err := defaultsFS.ReadFile("data/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading embedded %s: %w", entry.Name(), err)
		}
		if entry.Name() == "heritages.json" {
			var doc heritageDocument
			if err := json.Unmarshal(data, &doc); err != nil {
				return fmt.Errorf("parsing embedded heritages: %w", err)
			}
			for _, h := range doc.Heritages {
				s.heritages[strings.ToLower(h.Name)] = h
			}
			continue
		}

		var ps namegen.PatternSet
		if err := json.Unmarshal(data, &ps); err != nil {
			return fmt.Errorf("parsing embedded %s: %w", entry.Name(), err)
		}
		if err := ps.Validate(); err != nil {
			return fmt.Errorf("embedded %s: %w", entry.Name(), err)
		}
		s.builtin[strings.ToLower(ps.AncestryID)] = &ps
	}
	return nil
}

// Refresh rebuilds the cache: embedded defaults first, then the override
// directory. Broken override files are logged and skipped so one bad edit
// cannot take the catalog down.
func (s *Store) Refresh() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	patterns := make(map[string]*namegen.PatternSet, len(s.builtin))
	for id, ps := range s.builtin {
		patterns[id] = ps
	}
	overrides := make(map[string]string)

	if s.dir != "" {
		paths, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
		if err != nil {
			return fmt.Errorf("scanning override directory: %w", err)
		}
		for _, path := range paths {
			if filepath.Base(path) == "heritages.json" {
				// Heritage presets stay embedded; an override directory
				// only carries pattern files.
				continue
			}
			ps, err := readPatternFile(path)
			if err != nil {
				s.logger.Warn("skipping unusable pattern file",
					slog.String("path", path),
					slog.Any("error", err),
				)
				continue
			}
			id := strings.ToLower(ps.AncestryID)
			patterns[id] = ps
			overrides[id] = path
		}
	}

	s.patterns = patterns
	s.overrides = overrides
	s.logger.Debug("pattern catalog refreshed",
		slog.Int("ancestries", len(patterns)),
		slog.Int("overrides", len(overrides)),
	)
	return nil
}

func readPatternFile(path string) (*namegen.PatternSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var ps namegen.PatternSet
	if err := json.Unmarshal(data, &ps); err != nil {
		return nil, err
	}
	if err := ps.Validate(); err != nil {
		return nil, err
	}
	return &ps, nil
}

// Patterns returns the cached set for an ancestry, or ErrNotFound. It
// satisfies namegen.PatternSource; the engine turns lookup failures into its
// built-in fallback, so this error never reaches generation callers.
func (s *Store) Patterns(_ context.Context, ancestry string) (*namegen.PatternSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ps, ok := s.patterns[strings.ToLower(strings.TrimSpace(ancestry))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, ancestry)
	}
	return ps, nil
}

// Save validates ps, writes it to <dir>/<ancestry_id>.json via atomic
// rename, and swaps it into the cache. The store must have an override
// directory.
func (s *Store) Save(ps *namegen.PatternSet) error {
	if err := ps.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	id := strings.ToLower(strings.TrimSpace(ps.AncestryID))
	if !ancestryIDPattern.MatchString(id) {
		return fmt.Errorf("%w: ancestry id %q cannot name a pattern file", ErrInvalid, ps.AncestryID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dir == "" {
		return errors.New("patternstore: store has no override directory and is read-only")
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating override directory: %w", err)
	}

	data, err := json.MarshalIndent(ps, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding pattern set: %w", err)
	}
	path := filepath.Join(s.dir, id+".json")
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("writing pattern file: %w", err)
	}

	s.patterns[id] = ps
	s.overrides[id] = path
	s.logger.Info("pattern set saved",
		slog.String("ancestry", id),
		slog.String("path", path),
	)
	return nil
}

// Delete removes an ancestry's override file. Embedded ancestries revert to
// their shipped defaults; custom ancestries disappear. Deleting an embedded
// ancestry that has no override returns ErrBuiltin; deleting an unknown
// ancestry returns ErrNotFound.
func (s *Store) Delete(ancestry string) error {
	id := strings.ToLower(strings.TrimSpace(ancestry))

	s.mu.Lock()
	defer s.mu.Unlock()

	path, overridden := s.overrides[id]
	if !overridden {
		if _, builtin := s.builtin[id]; builtin {
			return fmt.Errorf("%w: %q", ErrBuiltin, id)
		}
		return fmt.Errorf("%w: %q", ErrNotFound, ancestry)
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing pattern file: %w", err)
	}
	delete(s.overrides, id)
	if builtin, ok := s.builtin[id]; ok {
		s.patterns[id] = builtin
		s.logger.Info("pattern override removed, embedded default restored", slog.String("ancestry", id))
	} else {
		delete(s.patterns, id)
		s.logger.Info("pattern set deleted", slog.String("ancestry", id))
	}
	return nil
}

// Ancestries lists every known ancestry id, sorted.
func (s *Store) Ancestries() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.patterns))
	for id := range s.patterns {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Heritage looks up a preset blend by name.
func (s *Store) Heritage(name string) (Heritage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.heritages[strings.ToLower(strings.TrimSpace(name))]
	return h, ok
}

// Heritages lists every preset blend name, sorted.
func (s *Store) Heritages() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.heritages))
	for name := range s.heritages {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
