package cache

import (
	"context"
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/qcache/internal/core/domain"
	"go.trai.ch/zerr"
)

const flightShards = 32

// call is the in-flight marker of one key.
type call[V any] struct {
	done    chan struct{}
	val     V
	err     error
	waiters int
	cancel  context.CancelFunc
}

type flightShard[V any] struct {
	mu    sync.Mutex
	calls map[domain.CacheKey]*call[V]
}

// Group runs at most one computation per key at a time.
//
// The computation runs detached from the caller that started it. A caller whose
// context ends stops waiting without affecting the others; the computation is
// cancelled only once every waiter has gone, so whoever is still waiting owns the result.
type Group[V any] struct {
	shards [flightShards]flightShard[V]
}

// NewGroup creates an empty Group.
func NewGroup[V any]() *Group[V] {
	g := &Group[V]{}
	for i := range g.shards {
		g.shards[i].calls = make(map[domain.CacheKey]*call[V])
	}
	return g
}

// Do returns the result of fn for key, running fn only if no computation for key is in flight.
// shared reports whether the result came from a computation started by another caller.
func (g *Group[V]) Do(
	ctx context.Context,
	key domain.CacheKey,
	fn func(ctx context.Context) (V, error),
) (v V, shared bool, err error) {
	s := g.shard(key)

	s.mu.Lock()
	if c, ok := s.calls[key]; ok {
		c.waiters++
		s.mu.Unlock()
		v, err = g.wait(ctx, s, key, c)
		return v, true, err
	}

	workCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c := &call[V]{
		done:    make(chan struct{}),
		waiters: 1,
		cancel:  cancel,
	}
	s.calls[key] = c
	s.mu.Unlock()

	go g.run(workCtx, s, key, c, fn)

	v, err = g.wait(ctx, s, key, c)
	return v, false, err
}

// InFlight reports whether a computation for key is running.
func (g *Group[V]) InFlight(key domain.CacheKey) bool {
	s := g.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.calls[key]
	return ok
}

func (g *Group[V]) run(
	ctx context.Context,
	s *flightShard[V],
	key domain.CacheKey,
	c *call[V],
	fn func(ctx context.Context) (V, error),
) {
	defer func() {
		if r := recover(); r != nil {
			c.err = zerr.With(zerr.Wrap(domain.ErrComputationPanicked, fmt.Sprint(r)), "key", key.String())
		}
		c.cancel()

		s.mu.Lock()
		if s.calls[key] == c {
			delete(s.calls, key)
		}
		s.mu.Unlock()

		close(c.done)
	}()

	c.val, c.err = fn(ctx)
}

func (g *Group[V]) wait(ctx context.Context, s *flightShard[V], key domain.CacheKey, c *call[V]) (V, error) {
	select {
	case <-c.done:
		return c.val, c.err
	case <-ctx.Done():
	}

	s.mu.Lock()
	c.waiters--
	abandoned := c.waiters == 0
	if abandoned && s.calls[key] == c {
		// Later callers start a fresh computation instead of joining a cancelled one.
		delete(s.calls, key)
	}
	s.mu.Unlock()

	if abandoned {
		c.cancel()
	}

	var zero V
	return zero, ctx.Err()
}

func (g *Group[V]) shard(key domain.CacheKey) *flightShard[V] {
	return &g.shards[xxhash.Sum64String(key.String())%flightShards]
}
