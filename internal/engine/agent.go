// Package engine implements the move-selection agents: biased random,
// alpha-beta minimax, Monte-Carlo tree search and a network-guided hybrid.
// Every search is bounded by a deadline it checks while expanding nodes.
package engine

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"arena/internal/board"
	"arena/internal/core"
	"arena/internal/fraud"
	"arena/internal/personality"
)

// ErrInvalidConfig is returned by New for configurations that fail validation
var ErrInvalidConfig = errors.New("invalid agent configuration")

// Stats is a snapshot of an agent's rolling performance record
type Stats struct {
	Moves          int64     `json:"moves"`
	TotalLatencyMs float64   `json:"totalLatencyMs"`
	MinLatencyMs   float64   `json:"minLatencyMs"`
	MaxLatencyMs   float64   `json:"maxLatencyMs"`
	AvgLatencyMs   float64   `json:"avgLatencyMs"`
	OverCeiling    int64     `json:"overCeiling"`
	FraudScore     float64   `json:"fraudScore"`
	FraudAlerts    int       `json:"fraudAlerts"`
	Nodes          int64     `json:"nodes"`
	Fallbacks      int64     `json:"fallbacks"`
	LastMoveAt     time.Time `json:"lastMoveAt"`
}

// Decision is the full outcome of one SelectMove call
type Decision struct {
	Move       core.Move
	LatencyMs  float64
	FraudScore float64
	FraudAlert bool // score crossed the alert threshold on this decision
	Result     SearchResult
}

// searchInput carries everything a searcher may read for one decision
type searchInput struct {
	state    *core.BoardState
	pos      *board.Position // nil when the board is malformed
	legal    []core.Move
	deadline time.Time
}

type searcher interface {
	search(in searchInput) (SearchResult, error)
}

// Agent selects moves for one configuration. An agent is used by one caller
// at a time; the pool enforces that. Stats may be read concurrently.
type Agent struct {
	id       string
	kind     core.Algorithm
	cfg      core.AgentConfig
	profile  personality.Profile
	settings Settings
	net      Network
	log      zerolog.Logger
	seed     uint64
	seeded   bool

	rng      *rand.Rand
	monitor  *fraud.Monitor
	searcher searcher

	mu    sync.Mutex
	stats Stats
}

// New builds an agent for cfg. Invalid configurations are rejected.
func New(cfg core.AgentConfig, opts ...Option) (*Agent, error) {
	if !cfg.Valid() {
		return nil, fmt.Errorf("%w: %s algorithm=%q target=%.1fms max=%.1fms",
			ErrInvalidConfig, cfg.Key(), cfg.Algorithm, cfg.TargetTimeMs, cfg.MaxTimeMs)
	}
	profile, _ := personality.From(cfg.Personality)

	a := &Agent{
		id:       uuid.New().String(),
		kind:     cfg.ResolvedAlgorithm(),
		cfg:      cfg,
		profile:  profile,
		settings: DefaultSettings(),
		net:      LinearNetwork{},
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.settings = a.settings.normalized()
	if !a.seeded {
		a.seed = rand.Uint64()
	}
	a.rng = rand.New(rand.NewPCG(a.seed, a.seed^0x9e3779b97f4a7c15))
	a.monitor = fraud.NewMonitor(a.settings.Fraud)
	a.log = a.log.With().Str("agent", a.id).Str("kind", string(a.kind)).Logger()

	switch a.kind {
	case core.AlgorithmRandom:
		a.searcher = &randomSearcher{rng: a.rng, profile: a.profile}
	case core.AlgorithmMinimax:
		a.searcher = &minimaxSearcher{depth: depthOr(cfg.SearchDepth, 3), profile: a.profile}
	case core.AlgorithmMCTS:
		a.searcher = &mctsSearcher{rng: a.rng, profile: a.profile, settings: a.settings.MCTS}
	case core.AlgorithmHybrid:
		a.searcher = &hybridSearcher{
			net:      a.net,
			settings: a.settings.Hybrid,
			minimax:  minimaxSearcher{depth: depthOr(cfg.SearchDepth, 4), profile: a.profile},
		}
	default:
		return nil, fmt.Errorf("%w: unknown algorithm %q", ErrInvalidConfig, a.kind)
	}
	return a, nil
}

func depthOr(depth, def int) int {
	if depth > 0 {
		return depth
	}
	return def
}

func (a *Agent) ID() string {
	return a.id
}

func (a *Agent) Kind() core.Algorithm {
	return a.kind
}

func (a *Agent) Config() core.AgentConfig {
	return a.cfg
}

func (a *Agent) Info() core.AgentInfo {
	return core.AgentInfo{ID: a.id, Kind: a.kind, Config: a.cfg}
}

// Stats returns a copy of the performance record
func (a *Agent) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}

// SelectMove returns one move from legal, or false when legal is empty.
// The zero deadline means the agent's own target time applies.
func (a *Agent) SelectMove(b *core.BoardState, legal []core.Move, deadline time.Time) (core.Move, bool) {
	d, ok := a.Decide(b, legal, deadline)
	return d.Move, ok
}

// Decide is SelectMove with the search details and recorded latency
func (a *Agent) Decide(b *core.BoardState, legal []core.Move, deadline time.Time) (Decision, bool) {
	if len(legal) == 0 {
		return Decision{}, false
	}
	start := time.Now()
	budget := start.Add(time.Duration(a.cfg.TargetTimeMs * float64(time.Millisecond)))
	if !deadline.IsZero() && deadline.Before(budget) {
		budget = deadline
	}

	in := searchInput{state: b, legal: legal, deadline: budget}
	if pos, ok := board.NewPosition(b); ok {
		in.pos = pos
	}

	res, reason := a.run(in)
	if res.Index < 0 || res.Index >= len(legal) {
		if reason == "" {
			reason = fmt.Sprintf("search returned index %d of %d", res.Index, len(legal))
		}
		res = SearchResult{Index: a.rng.IntN(len(legal)), Fallback: true, Nodes: res.Nodes}
	}
	if reason != "" {
		a.log.Warn().Str("reason", reason).Int("legal", len(legal)).Msg("move selection fell back to uniform pick")
	}

	latency := float64(time.Since(start)) / float64(time.Millisecond)
	score, crossed := a.monitor.RecordDecision(latency)
	crossed = crossed && a.cfg.FraudDetectionEnabled
	a.record(latency, res)

	return Decision{
		Move:       legal[res.Index],
		LatencyMs:  latency,
		FraudScore: score,
		FraudAlert: crossed,
		Result:     res,
	}, true
}

// run invokes the searcher and converts errors and panics into a fallback reason
func (a *Agent) run(in searchInput) (res SearchResult, reason string) {
	defer func() {
		if r := recover(); r != nil {
			res = SearchResult{Index: -1}
			reason = fmt.Sprintf("panic: %v", r)
		}
	}()
	res, err := a.searcher.search(in)
	if err != nil {
		return SearchResult{Index: -1, Nodes: res.Nodes}, err.Error()
	}
	return res, ""
}

func (a *Agent) record(latency float64, res SearchResult) {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := &a.stats
	s.Moves++
	s.TotalLatencyMs += latency
	if s.Moves == 1 || latency < s.MinLatencyMs {
		s.MinLatencyMs = latency
	}
	s.MaxLatencyMs = math.Max(s.MaxLatencyMs, latency)
	s.AvgLatencyMs = s.TotalLatencyMs / float64(s.Moves)
	if latency >= core.PlatformCeilingMs {
		s.OverCeiling++
	}
	s.FraudScore = a.monitor.Score()
	if a.cfg.FraudDetectionEnabled {
		s.FraudAlerts = a.monitor.Alerts()
	}
	s.Nodes += res.Nodes
	if res.Fallback {
		s.Fallbacks++
	}
	s.LastMoveAt = time.Now()
}
