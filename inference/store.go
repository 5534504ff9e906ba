package inference

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/jinjaspan/jinjaspan"
)

// entry is one document store slot: the Index built for a URI, plus the
// version (LSP buffer version, or a loader-supplied mtime token
// for on-disk templates not open as buffers) it was built at.
type entry struct {
	version int
	index   *Index
}

// Store is the single-owner, per-URI document store from design note
// "document store lifetimes": documents are mutable and versioned, shared
// across providers; callers get the cached Index or trigger a rebuild, never
// a mutable handle into another caller's in-flight build. Bounded by an LRU
// (grounded on playbymail-ottomap's cache usage) so a long LSP session
// doesn't grow memory unboundedly (spec §5 resource policy).
type Store struct {
	mu    sync.RWMutex
	cache *lru.Cache[string, *entry]
	graph *Graph
}

// NewStore creates a document store bounded to capacity URIs.
func NewStore(capacity int) *Store {
	c, _ := lru.New[string, *entry](capacity)
	return &Store{cache: c, graph: NewGraph()}
}

// Get returns the cached Index for uri if its version matches, or rebuilds
// it from tpl otherwise, atomically updating the cache and the dependency
// graph (design note "cross-template resolution").
func (s *Store) Get(uri string, version int, tpl *jinjaspan.Template, cancel jinjaspan.CancelFunc) *Index {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.cache.Get(uri); ok && e.version == version {
		return e.index
	}
	idx := Build(uri, version, tpl, cancel)
	s.cache.Add(uri, &entry{version: version, index: idx})
	s.graph.SetDeps(uri, dependencyURIs(idx))
	return idx
}

// Peek returns the cached Index for uri without rebuilding, if present.
func (s *Store) Peek(uri string) (*Index, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.cache.Get(uri)
	if !ok {
		return nil, false
	}
	return e.index, true
}

// Invalidate drops uri (and, per the dependency graph, anything that
// depends on it — e.g. a macro-library change invalidates every importer)
// from the cache, forcing the next Get to rebuild.
func (s *Store) Invalidate(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidateLocked(uri, map[string]bool{})
}

func (s *Store) invalidateLocked(uri string, seen map[string]bool) {
	if seen[uri] {
		return
	}
	seen[uri] = true
	s.cache.Remove(uri)
	for _, dependent := range s.graph.Dependents(uri) {
		s.invalidateLocked(dependent, seen)
	}
}

// dependencyURIs extracts the other template names an Index's Extends/
// Include/Import/FromImport statements reference, for the dependency graph.
func dependencyURIs(idx *Index) []string {
	var deps []string
	if idx.Extends != "" {
		deps = append(deps, idx.Extends)
	}
	for _, imp := range idx.Imports {
		if imp.Source != "" {
			deps = append(deps, imp.Source)
		}
	}
	return deps
}

// RebuildSource supplies a URI's current text and version, for concurrent
// workspace-wide rebuilds.
type RebuildSource struct {
	URI     string
	Version int
	Source  string
}

// RebuildAll parses and indexes every source concurrently, bounded by
// maxConcurrency (grounded on bufbuild-protocompile's errgroup+semaphore
// worker-pool idiom), stopping early if ctx is canceled. The lsp package
// does not call it; its Server indexes one document at a time as it is
// opened or changed.
func (s *Store) RebuildAll(ctx context.Context, env *jinjaspan.Environment, sources []RebuildSource, maxConcurrency int64) error {
	sem := semaphore.NewWeighted(maxConcurrency)
	g, ctx := errgroup.WithContext(ctx)
	for _, src := range sources {
		src := src
		if err := sem.Acquire(ctx, 1); err != nil {
			return err
		}
		g.Go(func() error {
			defer sem.Release(1)
			tpl, _ := jinjaspan.Parse(src.URI, src.Source, env)
			s.Get(src.URI, src.Version, tpl, nil)
			return nil
		})
	}
	return g.Wait()
}
