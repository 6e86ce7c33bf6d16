package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Bump when the payload format changes; stale entries are ignored.
const diskCacheSchemaVersion uint16 = 1

// Digest keys cache entries by world-file content.
type Digest = [sha256.Size]byte

// DiskCache remembers clean check outcomes on disk, keyed by the world
// file's content hash. Only error-free results are stored: a hit means
// the world can be reported clean without re-parsing its directives.
// Directive trees themselves are never persisted.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

type checkPayload struct {
	Schema uint16
	Path   string
	Traits []outcomePayload
}

type outcomePayload struct {
	Trait  string
	Status uint8
	Rules  int
}

// OpenDiskCache initializes the cache at the standard location.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key Digest) string {
	// A subdirectory keeps the cache root listable and easy to clear.
	return filepath.Join(c.dir, "worlds", hex.EncodeToString(key[:])+".mp")
}

func digestFile(path string) (Digest, bool) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Digest{}, false
	}
	return sha256.Sum256(content), true
}

// lookup returns the cached clean outcomes for path, if its current
// content has an entry.
func (c *DiskCache) lookup(path string) ([]TraitOutcome, bool) {
	if c == nil {
		return nil, false
	}
	key, ok := digestFile(path)
	if !ok {
		return nil, false
	}
	var payload checkPayload
	found, err := c.get(key, &payload)
	if err != nil || !found || payload.Schema != diskCacheSchemaVersion {
		return nil, false
	}
	outcomes := make([]TraitOutcome, len(payload.Traits))
	for i, t := range payload.Traits {
		outcomes[i] = TraitOutcome{Trait: t.Trait, Status: TraitStatus(t.Status), Rules: t.Rules}
	}
	return outcomes, true
}

// store records a clean check outcome. Failures are silent; the cache
// is an optimization, never a correctness dependency.
func (c *DiskCache) store(path string, outcomes []TraitOutcome) {
	if c == nil {
		return
	}
	key, ok := digestFile(path)
	if !ok {
		return
	}
	payload := checkPayload{Schema: diskCacheSchemaVersion, Path: path}
	for _, o := range outcomes {
		payload.Traits = append(payload.Traits, outcomePayload{
			Trait: o.Trait, Status: uint8(o.Status), Rules: o.Rules,
		})
	}
	_ = c.put(key, &payload)
}

func (c *DiskCache) put(key Digest, payload *checkPayload) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Atomic replace.
	return os.Rename(f.Name(), p)
}

func (c *DiskCache) get(key Digest, out *checkPayload) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()
	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, err
	}
	return true, nil
}

// DropAll invalidates the whole cache, useful after format changes.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		return err
	}
	return os.RemoveAll(old)
}
