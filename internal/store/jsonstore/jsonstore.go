package jsonstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/idilsaglam/issuetracker/internal/model"
)

// JSON-backed storage. Single file, human-readable, portable.
// The file maps product ids to their issue list.
// Writes to different products never clobber each other: the file is
// rewritten under a mutex and swapped in with a rename. Two writes to the
// same product are still last writer wins, as with the metafield backend.

const DefaultFileName = "issues.json"

// Store keeps every product's issues in one JSON file.
type Store struct {
	mu   sync.Mutex
	path string
}

// New returns a Store writing to path. An empty path means
// DefaultFileName in the working directory.
func New(path string) (*Store, error) {
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getwd: %w", err)
		}
		path = filepath.Join(wd, DefaultFileName)
	}
	return &Store{path: path}, nil
}

// Path is the backing file.
func (s *Store) Path() string { return s.path }

func (s *Store) Issues(_ context.Context, productID string) ([]model.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.load()
	if err != nil {
		return nil, err
	}
	issues, ok := all[productID]
	if !ok || issues == nil {
		return []model.Issue{}, nil
	}
	return issues, nil
}

func (s *Store) UpdateIssues(_ context.Context, productID string, issues []model.Issue) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.load()
	if err != nil {
		return err
	}
	if issues == nil {
		issues = []model.Issue{}
	}
	all[productID] = issues
	return s.save(all)
}

func (s *Store) load() (map[string][]model.Issue, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string][]model.Issue{}, nil
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	all := map[string][]model.Issue{}
	if err := json.Unmarshal(b, &all); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	return all, nil
}

func (s *Store) save(all map[string][]model.Issue) error {
	b, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	// readers see either the old file or the new one, never a partial write
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write file: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
