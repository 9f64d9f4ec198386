// Package resolver implements the fixed-point configuration resolver (spec
// §4.9): given one package's element graph, it computes every element's
// Configuration by repeated chaotic iteration, memoizing results across
// rounds and returning a safe provisional value for any element still
// mid-computation when a cyclic reference reaches back into it.
package resolver

import (
	"context"
	"fmt"
	"go/types"
	"log"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/go-checked/checkedexceptions/internal/annotation"
	"github.com/go-checked/checkedexceptions/internal/goast"
	"github.com/go-checked/checkedexceptions/internal/overrides"
	"github.com/go-checked/checkedexceptions/pkg/configuration"
)

// maxSettleRounds bounds the chaotic-iteration loop: the configuration
// lattice has finite height for any one package (bounded by the number of
// distinct thrown types it can name), so a real program settles in a handful
// of rounds. This is a backstop against a modeling bug turning into a hang,
// not a tuning knob.
const maxSettleRounds = 64

// Session holds one resolver run over one package's element graph: the
// settle loop's memo table plus the hooks (type resolver, override table)
// spec §4.2/§4.6 need to turn directives and override records into
// Configurations. Every Session is tagged with its own id, which its log
// lines carry, so independent runs can be told apart in a log stream.
type Session struct {
	id        string
	graph     *goast.Graph
	pkg       *types.Package
	resolve   annotation.TypeResolver
	overrides *overrides.Table
	fallback  goast.Deps

	mu      sync.RWMutex
	configs map[types.Object]configuration.Configuration
}

// New builds a Session for one package's already-built element graph.
// pkg supplies the import scope BuildTypeResolver resolves directive type
// names against; ov may be nil if no override table was loaded. fallback is
// consulted for objects outside this package's own graph — e.g. a call into
// another package, whose Configuration the caller resolves from that
// package's exported facts — and may be nil, in which case such objects
// default to Configuration::empty.
func New(graph *goast.Graph, pkg *types.Package, ov *overrides.Table, fallback goast.Deps) *Session {
	return &Session{
		id:        uuid.New().String(),
		graph:     graph,
		pkg:       pkg,
		resolve:   BuildTypeResolver(pkg),
		overrides: ov,
		fallback:  fallback,
		configs:   make(map[types.Object]configuration.Configuration),
	}
}

// ID returns this session's run identifier, for log correlation.
func (s *Session) ID() string { return s.id }

// ConfigurationForObject returns the settled Configuration for obj. For an
// obj that isn't part of this session's graph it returns what the fallback
// reports, or Configuration::empty when there is no fallback (e.g. a
// standard-library object with no override entry either). Settle must have
// returned before this reflects a true
// fixed point; calling it mid-settle is how the settle loop itself reads the
// previous round's snapshot, via snapshotDeps below.
func (s *Session) ConfigurationForObject(obj types.Object) configuration.Configuration {
	s.mu.RLock()
	c, ok := s.configs[obj]
	s.mu.RUnlock()
	if ok {
		return c
	}
	if s.fallback != nil {
		return s.fallback.ConfigurationForObject(obj)
	}
	return configuration.ConfEmpty
}

// Settle runs the chaotic-iteration fixed-point computation (spec §4.9):
// every element in the graph is recomputed each round from the previous
// round's snapshot, concurrently within a round via errgroup, until a full
// round produces no change. A cyclic reference encountered mid-round reads
// whatever the previous round settled for that element — Configuration::empty
// on round one — which is exactly the provisional value spec §4.9 calls for.
func (s *Session) Settle(ctx context.Context) error {
	objects := s.graph.Objects()
	for round := 0; round < maxSettleRounds; round++ {
		changed, err := s.settleRound(ctx, objects)
		if err != nil {
			return fmt.Errorf("resolver[%s]: settle round %d: %w", s.id, round, err)
		}
		if !changed {
			return nil
		}
	}
	log.Printf("resolver[%s]: did not reach a fixed point after %d rounds for package %s", s.id, maxSettleRounds, s.pkg.Path())
	return nil
}

func (s *Session) settleRound(ctx context.Context, objects []types.Object) (bool, error) {
	results := make([]configuration.Configuration, len(objects))

	g, gctx := errgroup.WithContext(ctx)
	for i, obj := range objects {
		i, obj := i, obj
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = s.computeOnce(obj)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	changed := false
	for i, obj := range objects {
		prev, had := s.configs[obj]
		if !had || !prev.Equal(results[i]) {
			changed = true
		}
		s.configs[obj] = results[i]
	}
	return changed, nil
}

// computeOnce derives one element's Configuration from the session's current
// (previous-round) snapshot, without mutating it — all writes happen after
// the whole round's goroutines have finished, in settleRound.
func (s *Session) computeOnce(obj types.Object) configuration.Configuration {
	e, ok := s.graph.ElementFor(obj)
	if !ok {
		return configuration.ConfEmpty
	}
	ctx := &goast.VisitContext{Info: s.graph.Info, Deps: snapshotDeps{s}}
	return goast.ComputeConfiguration(ctx, e, s.graph.Directives, s.resolve, s.overrideLookup)
}

func (s *Session) overrideLookup(loc configuration.ElementLocation) (configuration.Configuration, bool) {
	if s.overrides == nil {
		return configuration.Configuration{}, false
	}
	record, ok := s.overrides.Lookup(loc)
	if !ok {
		return configuration.Configuration{}, false
	}
	return record.Resolve(s.resolve), true
}

// snapshotDeps adapts Session to goast.Deps, reading the previous round's
// memoized results — a direct call to Session.ConfigurationForObject would
// do the same thing, but the named type documents that this is specifically
// the settle loop's intra-round read path, not a post-settle query.
type snapshotDeps struct{ s *Session }

func (d snapshotDeps) ConfigurationForObject(obj types.Object) configuration.Configuration {
	return d.s.ConfigurationForObject(obj)
}
