// FILE: internal/pool/pool.go
package pool

import (
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"arena/internal/core"
	"arena/internal/engine"
)

// DefaultMaxPerBucket caps agents per (difficulty, personality) key
const DefaultMaxPerBucket = 64

// Factory builds a new agent for a configuration
type Factory func(cfg core.AgentConfig) (*engine.Agent, error)

// Options configures a Pool; zero values fall back to defaults
type Options struct {
	MaxPerBucket int
	Template     func(d core.Difficulty, p core.Personality) core.AgentConfig
	Factory      Factory
	Logger       zerolog.Logger
}

type entry struct {
	agent    *engine.Agent
	busy     bool
	lastUsed time.Time
}

// bucket holds the agents of one key. Its mutex guards only bookkeeping,
// never a search.
type bucket struct {
	mu      sync.Mutex
	entries []*entry
	next    int // rotation cursor
}

// Pool owns every agent and lends each to at most one caller at a time
type Pool struct {
	buckets      map[core.AgentKey]*bucket // fixed at construction, read without locking
	maxPerBucket int
	template     func(d core.Difficulty, p core.Personality) core.AgentConfig
	factory      Factory
	log          zerolog.Logger

	created atomic.Int64
	evicted atomic.Int64
}

// BucketStats describes one key's agents
type BucketStats struct {
	Key         string  `json:"key"`
	Total       int     `json:"total"`
	Busy        int     `json:"busy"`
	Utilization float64 `json:"utilization"`
}

func New(opts Options) *Pool {
	if opts.MaxPerBucket <= 0 {
		opts.MaxPerBucket = DefaultMaxPerBucket
	}
	if opts.Template == nil {
		opts.Template = core.DefaultAgentConfig
	}
	if opts.Factory == nil {
		opts.Factory = func(cfg core.AgentConfig) (*engine.Agent, error) {
			return engine.New(cfg)
		}
	}
	p := &Pool{
		buckets:      make(map[core.AgentKey]*bucket),
		maxPerBucket: opts.MaxPerBucket,
		template:     opts.Template,
		factory:      opts.Factory,
		log:          opts.Logger,
	}
	for _, key := range core.AllKeys() {
		p.buckets[key] = &bucket{}
	}
	return p
}

// GetAgent lends an agent built from the key's template configuration.
// Unknown keys and a full bucket both report false.
func (p *Pool) GetAgent(d core.Difficulty, personality core.Personality) (*engine.Agent, bool) {
	key := core.AgentKey{Difficulty: d, Personality: personality}
	if !key.Valid() {
		return nil, false
	}
	return p.Acquire(p.template(d, personality))
}

// GetRandomAgent lends an agent from a randomly chosen key, trying the other
// keys when the first is exhausted.
func (p *Pool) GetRandomAgent() (*engine.Agent, bool) {
	keys := core.AllKeys()
	rand.Shuffle(len(keys), func(i, j int) { keys[i], keys[j] = keys[j], keys[i] })
	for _, k := range keys {
		if a, ok := p.GetAgent(k.Difficulty, k.Personality); ok {
			return a, true
		}
	}
	return nil, false
}

// Acquire lends a free agent whose configuration equals cfg, creating one
// when none is free and the bucket is under its cap.
func (p *Pool) Acquire(cfg core.AgentConfig) (*engine.Agent, bool) {
	if !cfg.Valid() {
		return nil, false
	}
	b, ok := p.buckets[cfg.Key()]
	if !ok {
		return nil, false
	}

	b.mu.Lock()
	if a := b.takeFree(cfg); a != nil {
		b.mu.Unlock()
		return a, true
	}
	full := len(b.entries) >= p.maxPerBucket
	b.mu.Unlock()
	if full {
		return nil, false
	}

	a, err := p.factory(cfg)
	if err != nil {
		p.log.Error().Err(err).Str("key", cfg.Key().String()).Msg("failed to create agent")
		return nil, false
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	// another caller may have filled the bucket while the agent was built
	if len(b.entries) >= p.maxPerBucket {
		return nil, false
	}
	b.entries = append(b.entries, &entry{agent: a, busy: true, lastUsed: time.Now()})
	p.created.Add(1)
	p.log.Debug().Str("agent", a.ID()).Str("key", cfg.Key().String()).Msg("agent created")
	return a, true
}

// takeFree marks the next free matching entry busy, scanning from the cursor
func (b *bucket) takeFree(cfg core.AgentConfig) *engine.Agent {
	n := len(b.entries)
	for i := 0; i < n; i++ {
		idx := (b.next + i) % n
		e := b.entries[idx]
		if e.busy || e.agent.Config() != cfg {
			continue
		}
		e.busy = true
		e.lastUsed = time.Now()
		b.next = (idx + 1) % n
		return e.agent
	}
	return nil
}

// Release returns a lent agent. Releasing an unknown or already free agent
// reports false.
func (p *Pool) Release(a *engine.Agent) bool {
	if a == nil {
		return false
	}
	b, ok := p.buckets[a.Config().Key()]
	if !ok {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, e := range b.entries {
		if e.agent == a {
			if !e.busy {
				return false
			}
			e.busy = false
			e.lastUsed = time.Now()
			return true
		}
	}
	return false
}

// PurgeIdle destroys free agents unused for longer than ttl and returns how
// many were removed. Lent agents are never touched.
func (p *Pool) PurgeIdle(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)
	removed := 0
	for _, b := range p.buckets {
		b.mu.Lock()
		kept := b.entries[:0]
		for _, e := range b.entries {
			if !e.busy && e.lastUsed.Before(cutoff) {
				removed++
				continue
			}
			kept = append(kept, e)
		}
		for i := len(kept); i < len(b.entries); i++ {
			b.entries[i] = nil
		}
		b.entries = kept
		if b.next >= len(kept) {
			b.next = 0
		}
		b.mu.Unlock()
	}
	if removed > 0 {
		p.evicted.Add(int64(removed))
		p.log.Debug().Int("removed", removed).Dur("ttl", ttl).Msg("purged idle agents")
	}
	return removed
}

// Stats returns per-key utilisation in core.AllKeys order
func (p *Pool) Stats() []BucketStats {
	out := make([]BucketStats, 0, len(p.buckets))
	for _, key := range core.AllKeys() {
		b := p.buckets[key]
		b.mu.Lock()
		s := BucketStats{Key: key.String(), Total: len(b.entries)}
		for _, e := range b.entries {
			if e.busy {
				s.Busy++
			}
		}
		b.mu.Unlock()
		if s.Total > 0 {
			s.Utilization = float64(s.Busy) / float64(s.Total)
		}
		out = append(out, s)
	}
	return out
}

// Counts returns the total and lent agent counts across all keys
func (p *Pool) Counts() (total, busy int) {
	for _, s := range p.Stats() {
		total += s.Total
		busy += s.Busy
	}
	return total, busy
}

// Agents returns every pooled agent, lent or free
func (p *Pool) Agents() []*engine.Agent {
	var out []*engine.Agent
	for _, key := range core.AllKeys() {
		b := p.buckets[key]
		b.mu.Lock()
		for _, e := range b.entries {
			out = append(out, e.agent)
		}
		b.mu.Unlock()
	}
	return out
}

// Created counts agents built since construction
func (p *Pool) Created() int64 {
	return p.created.Load()
}

// Evicted counts agents removed by PurgeIdle
func (p *Pool) Evicted() int64 {
	return p.evicted.Load()
}
