// FILE: internal/processor/processor.go
package processor

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"arena/internal/config"
	"arena/internal/core"
	"arena/internal/engine"
	"arena/internal/game"
	"arena/internal/metrics"
	"arena/internal/personality"
	"arena/internal/pool"
	"arena/internal/service"
	"arena/internal/storage"
)

// Processor is the orchestrator: it lends agents to matches, routes move
// requests to the side to move and keeps the performance record. No lock is
// held across a search; each match serialises its own requests.
type Processor struct {
	cfg     config.Config
	pool    *pool.Pool
	svc     *service.Service
	metrics *metrics.Metrics
	log     zerolog.Logger
	net     engine.Network
	store   *storage.Store

	stats   *statsBook
	seeds   atomic.Uint64
	started time.Time
}

// Option configures a Processor
type Option func(*Processor)

func WithLogger(log zerolog.Logger) Option {
	return func(p *Processor) {
		p.log = log
	}
}

// WithMetrics replaces the processor's own metrics instance
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Processor) {
		if m != nil {
			p.metrics = m
		}
	}
}

// WithStore enables match archiving to SQLite
func WithStore(store *storage.Store) Option {
	return func(p *Processor) {
		p.store = store
	}
}

// WithNetwork sets the policy/value network used by hybrid agents
func WithNetwork(net engine.Network) Option {
	return func(p *Processor) {
		p.net = net
	}
}

// New builds an orchestrator from a validated configuration
func New(cfg config.Config, opts ...Option) (*Processor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	p := &Processor{
		cfg:     cfg,
		log:     zerolog.Nop(),
		stats:   newStatsBook(),
		started: time.Now(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.metrics == nil {
		p.metrics = metrics.New()
	}
	p.log = p.log.With().Str("component", "processor").Logger()

	settings := cfg.EngineSettings()
	p.pool = pool.New(pool.Options{
		MaxPerBucket: cfg.Pool.MaxAgentsPerBucket,
		Template:     cfg.AgentTemplate,
		Logger:       p.log,
		Factory: func(ac core.AgentConfig) (*engine.Agent, error) {
			opts := []engine.Option{
				engine.WithLogger(p.log),
				engine.WithSettings(settings),
			}
			if p.net != nil {
				opts = append(opts, engine.WithNetwork(p.net))
			}
			return engine.New(ac, opts...)
		},
	})
	p.svc = service.New(p.store)
	return p, nil
}

// Metrics exposes the processor's collectors
func (p *Processor) Metrics() *metrics.Metrics {
	return p.metrics
}

// Service exposes the match registry
func (p *Processor) Service() *service.Service {
	return p.svc
}

// Pool exposes the agent pool
func (p *Processor) Pool() *pool.Pool {
	return p.pool
}

// Config returns the active configuration
func (p *Processor) Config() config.Config {
	return p.cfg
}

// ConfigFor turns an API agent description into a full configuration built
// on the tier template.
func (p *Processor) ConfigFor(spec core.AgentSpec) (core.AgentConfig, bool) {
	d, ok := core.ParseDifficulty(spec.Difficulty)
	if !ok {
		return core.AgentConfig{}, false
	}
	pers, ok := core.ParsePersonality(spec.Personality)
	if !ok {
		return core.AgentConfig{}, false
	}
	cfg := p.cfg.AgentTemplate(d, pers)
	if spec.Algorithm != "" {
		cfg.Algorithm = core.Algorithm(spec.Algorithm)
	}
	if spec.SearchDepth > 0 {
		cfg.SearchDepth = spec.SearchDepth
	}
	return cfg, cfg.Valid()
}

// CreateMatch borrows two agents and registers a pending session. Invalid
// configurations or an exhausted pool report false and create nothing.
func (p *Processor) CreateMatch(a, b core.AgentConfig) (string, bool) {
	if !a.Valid() || !b.Valid() {
		return "", false
	}
	agentA, ok := p.pool.Acquire(a)
	if !ok {
		p.log.Warn().Str("key", a.Key().String()).Msg("no agent available for match")
		return "", false
	}
	agentB, ok := p.pool.Acquire(b)
	if !ok {
		p.pool.Release(agentA)
		p.log.Warn().Str("key", b.Key().String()).Msg("no agent available for match")
		return "", false
	}

	id := p.svc.GenerateMatchID()
	m := game.New(id, agentA, agentB, p.cfg.Fraud)
	if err := p.svc.AddMatch(m); err != nil {
		p.pool.Release(agentA)
		p.pool.Release(agentB)
		p.log.Error().Err(err).Msg("failed to register match")
		return "", false
	}

	p.metrics.MatchesActive.Inc()
	p.publishPool()
	p.log.Debug().Str("match", id).Str("agent_a", agentA.ID()).Str("agent_b", agentB.ID()).Msg("match created")
	return id, true
}

// GetMove asks the agent of the side to move for a decision and logs it.
// Unknown or ended matches and empty legal sets report false.
func (p *Processor) GetMove(matchID string, b *core.BoardState, legal []core.Move) (core.Move, bool) {
	entry, ok := p.getMove(matchID, b, legal)
	return entry.Move, ok
}

func (p *Processor) getMove(matchID string, b *core.BoardState, legal []core.Move) (core.MoveLogEntry, bool) {
	m, ok := p.svc.ActiveMatch(matchID)
	if !ok {
		return core.MoveLogEntry{}, false
	}

	m.Lock()
	if m.Status().IsTerminal() {
		m.Unlock()
		return core.MoveLogEntry{}, false
	}
	player := m.CurrentPlayer()
	if b != nil && b.CurrentPlayer.Valid() {
		player = b.CurrentPlayer
	}
	agent := m.Agent(player)

	d, ok := agent.Decide(b, legal, p.deadline(agent))
	p.observe(agent, d, ok)
	if !ok {
		m.Unlock()
		return core.MoveLogEntry{}, false
	}
	m.Activate()
	m.AppendMove(d.Move, player, d.LatencyMs)
	n := m.MoveCount()
	m.Unlock()

	entry := core.MoveLogEntry{Move: d.Move, LatencyMs: d.LatencyMs, Player: player, At: time.Now()}
	p.svc.RecordMove(matchID, n, entry)
	return entry, true
}

// QuickMove answers a single stateless move request with a pooled agent
func (p *Processor) QuickMove(d core.Difficulty, pers core.Personality, b *core.BoardState, legal []core.Move) (core.Move, float64, bool) {
	if len(legal) == 0 {
		return core.Move{}, 0, false
	}
	agent, ok := p.pool.GetAgent(d, pers)
	if !ok {
		return core.Move{}, 0, false
	}
	defer p.pool.Release(agent)

	dec, ok := agent.Decide(b, legal, p.deadline(agent))
	p.observe(agent, dec, ok)
	return dec.Move, dec.LatencyMs, ok
}

// deadline is the hard per-decision limit of an agent
func (p *Processor) deadline(a *engine.Agent) time.Time {
	return time.Now().Add(time.Duration(a.Config().MaxTimeMs * float64(time.Millisecond)))
}

// EndMatch moves a session to a terminal status, releases its agents and
// archives it. Unknown or already ended matches are a no-op.
func (p *Processor) EndMatch(matchID string, res core.Result) bool {
	if !res.Status.IsTerminal() {
		return false
	}
	m, ok := p.svc.ActiveMatch(matchID)
	if !ok {
		return false
	}

	m.Lock()
	ended := m.End(res)
	agentA, agentB := m.Agents()
	m.Unlock()
	if !ended {
		return false
	}

	p.svc.ArchiveMatch(matchID)
	p.pool.Release(agentA)
	p.pool.Release(agentB)
	p.stats.matchEnded(res.Status)
	p.metrics.MatchEnded(res.Status.String())
	p.publishPool()
	p.log.Debug().Str("match", matchID).Str("status", res.Status.String()).Msg("match ended")
	return true
}

// RecordHumanDecision scores a human-submitted decision latency against the
// per-player fraud monitor of a running match.
func (p *Processor) RecordHumanDecision(matchID string, player core.Player, latencyMs float64) (core.FraudResponse, bool) {
	if !player.Valid() {
		return core.FraudResponse{}, false
	}
	m, ok := p.svc.ActiveMatch(matchID)
	if !ok {
		return core.FraudResponse{}, false
	}

	m.Lock()
	score, crossed := m.RecordHumanDecision(player, latencyMs)
	m.Unlock()

	if crossed {
		p.stats.fraudAlert()
		p.metrics.FraudAlert("human")
		p.log.Warn().Str("match", matchID).Int("player", int(player)).Float64("score", score).Msg("fraud alert")
	}
	return core.FraudResponse{
		MatchID:    matchID,
		Player:     player,
		FraudScore: score,
		Alert:      score >= p.cfg.Fraud.AlertThreshold,
	}, true
}

// Match returns a read-only view of a running or archived session
func (p *Processor) Match(matchID string) (game.Snapshot, bool) {
	m, ok := p.svc.GetMatch(matchID)
	if !ok {
		return game.Snapshot{}, false
	}
	return m.Snapshot(), true
}

// AgentList describes the agent tiers
func (p *Processor) AgentList() []core.AgentTypeInfo {
	out := make([]core.AgentTypeInfo, 0, len(core.Difficulties))
	for _, d := range core.Difficulties {
		cfg := p.cfg.AgentTemplate(d, core.PersonalityBalanced)
		out = append(out, core.AgentTypeInfo{
			Difficulty:   d,
			Algorithm:    cfg.ResolvedAlgorithm(),
			SearchDepth:  cfg.SearchDepth,
			TargetTimeMs: cfg.TargetTimeMs,
			MaxTimeMs:    cfg.MaxTimeMs,
		})
	}
	return out
}

// Personalities describes every personality profile
func (p *Processor) Personalities() []core.PersonalityInfo {
	profiles := personality.All()
	out := make([]core.PersonalityInfo, 0, len(profiles))
	for _, prof := range profiles {
		out = append(out, prof.Info())
	}
	return out
}

// Close fails every running match and closes the registry
func (p *Processor) Close() error {
	for _, m := range p.svc.ActiveMatches() {
		p.EndMatch(m.ID(), core.Result{Status: core.StatusFailed, Reason: "shutdown"})
	}
	return p.svc.Close()
}

func (p *Processor) publishPool() {
	total, busy := p.pool.Counts()
	p.metrics.SetPool(total, busy)
}
