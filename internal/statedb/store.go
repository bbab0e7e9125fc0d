// Package statedb persists small per-app day markers across restarts.
//
// Apps use it to make daily actions idempotent: a marker records the last
// day an action ran, and the action is skipped until the date rolls over.
package statedb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	SchemaVersion = 1
	dateLayout    = "2006-01-02"
)

// Store is the persisted marker set for one app.
type Store struct {
	path string
	blob BlobStore // optional mirror
	name string    // blob object name
	log  zerolog.Logger

	mu      sync.Mutex
	markers map[string]string
}

type fileFormat struct {
	SchemaVersion int               `json:"schema_version"`
	Markers       map[string]string `json:"markers"`
}

// Open loads (or creates) the store for the named app under dir. When a
// blob mirror is configured and no local file exists, state is pulled from
// the mirror so markers survive host rebuilds.
func Open(ctx context.Context, dir, app string, blob BlobStore, log zerolog.Logger) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("state dir is required")
	}
	if app == "" {
		return nil, fmt.Errorf("app name is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir state dir: %w", err)
	}

	store := &Store{
		path:    filepath.Join(dir, app+".json"),
		blob:    blob,
		name:    app,
		log:     log,
		markers: make(map[string]string),
	}

	data, err := os.ReadFile(store.path)
	switch {
	case err == nil:
		if err := store.decode(data); err != nil {
			return nil, err
		}
	case os.IsNotExist(err):
		if blob != nil {
			if err := store.pull(ctx); err != nil && !errors.Is(err, ErrBlobNotFound) {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("read state: %w", err)
	}

	return store, nil
}

func (s *Store) decode(data []byte) error {
	var file fileFormat
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("decode state: %w", err)
	}
	if file.SchemaVersion != SchemaVersion {
		return fmt.Errorf("unsupported state schema_version: %d", file.SchemaVersion)
	}
	if file.Markers != nil {
		s.markers = file.Markers
	}
	return nil
}

func (s *Store) pull(ctx context.Context) error {
	data, err := s.blob.Load(ctx, s.name)
	if err != nil {
		return err
	}
	if err := s.decode(data); err != nil {
		return err
	}
	s.log.Info().Str("app", s.name).Msg("state restored from blob mirror")
	return nil
}

// IsToday reports whether the marker was last set on today's date.
func (s *Store) IsToday(key string, today time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.markers[key] == today.Format(dateLayout)
}

// SetToday records the marker for today's date and persists the store.
func (s *Store) SetToday(ctx context.Context, key string, today time.Time) error {
	s.mu.Lock()
	s.markers[key] = today.Format(dateLayout)
	data, err := s.encodeLocked()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.persist(ctx, data)
}

// Snapshot returns a copy of the current markers.
func (s *Store) Snapshot() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.markers))
	for key, value := range s.markers {
		out[key] = value
	}
	return out
}

func (s *Store) encodeLocked() ([]byte, error) {
	data, err := json.MarshalIndent(fileFormat{SchemaVersion: SchemaVersion, Markers: s.markers}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return data, nil
}

func (s *Store) persist(ctx context.Context, data []byte) error {
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace state: %w", err)
	}

	if s.blob != nil {
		if err := s.blob.Save(ctx, s.name, data); err != nil {
			// The local file is authoritative; mirror failures are not fatal.
			s.log.Warn().Err(err).Str("app", s.name).Msg("state mirror save failed")
		}
	}
	return nil
}
