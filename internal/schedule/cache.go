package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Provenance tags recorded alongside a cached payload.
const (
	ProvenanceRemote  = "remote"
	ProvenanceBundled = "bundled"
)

// CacheMeta describes when and from where a cached payload was obtained.
type CacheMeta struct {
	FetchedAt  time.Time `json:"fetched_at"`
	Provenance string    `json:"provenance"`
}

// CacheStore persists the last known-good payload. Read returns the bytes
// as-is; validation is the codec's job, not the store's. Write must be atomic
// with respect to concurrent readers, and Clear must be idempotent.
type CacheStore interface {
	Read(ctx context.Context) ([]byte, CacheMeta, error)
	Write(ctx context.Context, payload []byte, provenance string) error
	Clear(ctx context.Context) error
}

// FileCacheStore keeps the payload verbatim at a single well-known path, with
// a small sidecar file for metadata. Writes go to a temp file in the same
// directory followed by a rename, so a reader never observes a half-written
// payload. Writers serialize on a mutex instead of racing the rename.
type FileCacheStore struct {
	path string
	mu   sync.Mutex
}

func NewFileCacheStore(path string) *FileCacheStore {
	return &FileCacheStore{path: path}
}

var _ CacheStore = (*FileCacheStore)(nil)

func (s *FileCacheStore) metaPath() string {
	return s.path + ".meta"
}

// Read is deliberately lock-free: the rename in Write guarantees readers see
// either the old payload or the new one, never a partial file.
func (s *FileCacheStore) Read(ctx context.Context) ([]byte, CacheMeta, error) {
	payload, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, CacheMeta{}, ErrCacheAbsent
	}
	if err != nil {
		return nil, CacheMeta{}, fmt.Errorf("%w: %v", ErrCacheCorrupt, err)
	}

	// Metadata is best effort; a missing sidecar does not invalidate the payload.
	var meta CacheMeta
	if raw, err := os.ReadFile(s.metaPath()); err == nil {
		_ = json.Unmarshal(raw, &meta)
	}
	return payload, meta, nil
}

func (s *FileCacheStore) Write(ctx context.Context, payload []byte, provenance string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	meta, err := json.Marshal(CacheMeta{FetchedAt: time.Now().UTC(), Provenance: provenance})
	if err != nil {
		return fmt.Errorf("encode cache meta: %w", err)
	}
	if err := writeAtomic(s.metaPath(), meta); err != nil {
		return fmt.Errorf("write cache meta: %w", err)
	}
	if err := writeAtomic(s.path, payload); err != nil {
		return fmt.Errorf("write cache: %w", err)
	}
	return nil
}

func (s *FileCacheStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range []string{s.path, s.metaPath()} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("clear cache: %w", err)
		}
	}
	return nil
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}
