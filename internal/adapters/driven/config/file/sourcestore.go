package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/recordhub/recordhub-cli/internal/core/domain"
	"github.com/recordhub/recordhub-cli/internal/core/ports/driven"
)

// Ensure SourceStore implements the interface.
var _ driven.SourceStore = (*SourceStore)(nil)

// sourcesFileName is the per-source settings file next to config.toml.
const sourcesFileName = "sources.toml"

// SourceStore keeps source configurations as [sources.<id>] tables in a
// TOML file. The file is re-read on every operation, so edits made while
// the daemon is running are picked up by the next List or Get without a
// restart.
type SourceStore struct {
	mu       sync.Mutex
	filePath string
}

// NewSourceStore creates a TOML-based source store.
// If configDir is empty, defaults to ~/.recordhub/sources.toml.
func NewSourceStore(configDir string) (*SourceStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".recordhub")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	return &SourceStore{
		filePath: filepath.Join(configDir, sourcesFileName),
	}, nil
}

// sourceEntry is the TOML shape of one [sources.<id>] table. Times are
// RFC3339 strings and the interval uses the compact form ("30m", "2h")
// to keep the file hand-editable.
type sourceEntry struct {
	Type       string            `toml:"type"`
	Name       string            `toml:"name"`
	Collection string            `toml:"collection,omitempty"`
	Token      string            `toml:"token,omitempty"`
	Interval   string            `toml:"interval,omitempty"`
	Since      string            `toml:"since,omitempty"`
	Exclude    []string          `toml:"exclude,omitempty"`
	Config     map[string]string `toml:"config,omitempty"`
	CreatedAt  string            `toml:"created_at,omitempty"`
	UpdatedAt  string            `toml:"updated_at,omitempty"`
}

type sourcesFile struct {
	Sources map[string]sourceEntry `toml:"sources,omitempty"`
}

// Save stores or updates a source.
func (s *SourceStore) Save(_ context.Context, source domain.Source) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.load()
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if source.CreatedAt.IsZero() {
		source.CreatedAt = now
	}
	source.UpdatedAt = now

	f.Sources[source.ID] = fromSource(source)
	return s.save(f)
}

// Get retrieves a source by ID.
func (s *SourceStore) Get(_ context.Context, id string) (*domain.Source, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.load()
	if err != nil {
		return nil, err
	}

	entry, ok := f.Sources[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	source, err := toSource(id, entry)
	if err != nil {
		return nil, err
	}
	return &source, nil
}

// Delete removes a source.
func (s *SourceStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.load()
	if err != nil {
		return err
	}

	delete(f.Sources, id)
	return s.save(f)
}

// List returns all configured sources ordered by name.
func (s *SourceStore) List(_ context.Context) ([]domain.Source, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.load()
	if err != nil {
		return nil, err
	}

	sources := make([]domain.Source, 0, len(f.Sources))
	for id, entry := range f.Sources {
		source, err := toSource(id, entry)
		if err != nil {
			return nil, err
		}
		sources = append(sources, source)
	}

	sort.Slice(sources, func(i, j int) bool {
		return sources[i].Name < sources[j].Name
	})
	return sources, nil
}

// Path returns the sources file path.
func (s *SourceStore) Path() string {
	return s.filePath
}

// load reads the sources file (caller must hold lock). A missing file
// yields an empty set.
func (s *SourceStore) load() (sourcesFile, error) {
	var f sourcesFile

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			f.Sources = make(map[string]sourceEntry)
			return f, nil
		}
		return f, fmt.Errorf("reading %s: %w", s.filePath, err)
	}

	if err := toml.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("parsing %s: %w", s.filePath, err)
	}
	if f.Sources == nil {
		f.Sources = make(map[string]sourceEntry)
	}
	return f, nil
}

// save writes the sources file (caller must hold lock). Tokens live in
// this file, so permissions are restricted.
func (s *SourceStore) save(f sourcesFile) error {
	data, err := toml.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshalling sources: %w", err)
	}
	return os.WriteFile(s.filePath, data, 0600)
}

func fromSource(source domain.Source) sourceEntry {
	entry := sourceEntry{
		Type:       source.Type,
		Name:       source.Name,
		Collection: source.Collection,
		Token:      source.Token,
		Interval:   domain.FormatInterval(source.Interval),
		Exclude:    source.ExcludeCategories,
		Config:     source.Config,
		CreatedAt:  source.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  source.UpdatedAt.Format(time.RFC3339),
	}
	if source.SinceOverride != nil {
		entry.Since = source.SinceOverride.UTC().Format(time.RFC3339)
	}
	return entry
}

func toSource(id string, entry sourceEntry) (domain.Source, error) {
	source := domain.Source{
		ID:                id,
		Type:              entry.Type,
		Name:              entry.Name,
		Collection:        entry.Collection,
		Token:             entry.Token,
		ExcludeCategories: entry.Exclude,
		Config:            entry.Config,
	}

	interval, err := domain.ParseInterval(entry.Interval)
	if err != nil {
		return source, fmt.Errorf("source %s: %w", id, err)
	}
	source.Interval = interval

	if entry.Since != "" {
		since, err := time.Parse(time.RFC3339, entry.Since)
		if err != nil {
			return source, fmt.Errorf("source %s: since: %w", id, err)
		}
		source.SinceOverride = &since
	}
	if entry.CreatedAt != "" {
		if t, err := time.Parse(time.RFC3339, entry.CreatedAt); err == nil {
			source.CreatedAt = t
		}
	}
	if entry.UpdatedAt != "" {
		if t, err := time.Parse(time.RFC3339, entry.UpdatedAt); err == nil {
			source.UpdatedAt = t
		}
	}
	return source, nil
}
