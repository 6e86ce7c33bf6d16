package driver

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// EventKind tags progress events emitted by CheckDir.
type EventKind uint8

const (
	// EventStart fires once, before any world is checked.
	EventStart EventKind = iota
	// EventWorldDone fires after each world finishes.
	EventWorldDone
	// EventDone fires once after the last world.
	EventDone
)

// Event is one progress update from a directory check.
type Event struct {
	Kind      EventKind
	Path      string
	Index     int // 1-based for EventWorldDone
	Total     int
	HasErrors bool
	CacheHit  bool
}

// ListWorldFiles returns every *.toml file under dir, sorted for
// deterministic order.
func ListWorldFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".toml") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// CheckDir checks every world file under dir in parallel, capped at
// jobs workers (GOMAXPROCS when jobs <= 0). Results come back in file
// order regardless of completion order. events may be nil; when set
// the caller must drain it while CheckDir runs. It is closed before
// CheckDir returns.
func CheckDir(ctx context.Context, dir string, opts Options, jobs int, events chan<- Event) ([]*Result, error) {
	if events != nil {
		defer close(events)
	}

	files, err := ListWorldFiles(dir)
	if err != nil {
		return nil, err
	}
	if events != nil {
		events <- Event{Kind: EventStart, Path: dir, Total: len(files)}
	}
	if len(files) == 0 {
		if events != nil {
			events <- Event{Kind: EventDone, Path: dir}
		}
		return nil, nil
	}

	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Index i is unique per goroutine, no mutex needed for results.
	results := make([]*Result, len(files))
	var completed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			res, err := Check(gctx, path, opts)
			if err != nil {
				return err
			}
			results[i] = res
			if events != nil {
				events <- Event{
					Kind:      EventWorldDone,
					Path:      path,
					Index:     int(completed.Add(1)),
					Total:     len(files),
					HasErrors: res.HasErrors(),
					CacheHit:  res.CacheHit,
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	if events != nil {
		events <- Event{Kind: EventDone, Path: dir, Total: len(files)}
	}
	return results, nil
}
