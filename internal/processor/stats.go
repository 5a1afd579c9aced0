package processor

import (
	"context"
	"sync"
	"time"

	"arena/internal/core"
	"arena/internal/engine"
	"arena/internal/metrics"
	"arena/internal/pool"
)

// TierStats aggregates decisions of one (difficulty, personality) key
type TierStats struct {
	Decisions    int64   `json:"decisions"`
	AvgLatencyMs float64 `json:"avgLatencyMs"`
	MaxLatencyMs float64 `json:"maxLatencyMs"`
	OverCeiling  int64   `json:"overCeiling"`
	Fallbacks    int64   `json:"fallbacks"`
	NoMove       int64   `json:"noMove"`

	totalLatencyMs float64
}

// Health summarises service-level rates
type Health struct {
	TimeoutRate    float64 `json:"timeoutRate"`
	FraudAlertRate float64 `json:"fraudAlertRate"`
	AvgResponseMs  float64 `json:"avgResponseMs"`
	ComplianceRate float64 `json:"magicBlockComplianceRate"`
	Storage        string  `json:"storage"`
	DroppedWrites  int64   `json:"droppedWrites"`
	Uptime         string  `json:"uptime"`
}

// Report is the orchestrator's performance report
type Report struct {
	Timestamp        time.Time            `json:"timestamp"`
	TotalAgents      int                  `json:"totalAgents"`
	BusyAgents       int                  `json:"busyAgents"`
	ActiveMatches    int                  `json:"activeMatches"`
	CompletedMatches int                  `json:"completedMatches"`
	AgentsCreated    int64                `json:"agentsCreated"`
	AgentsEvicted    int64                `json:"agentsEvicted"`
	Pools            []pool.BucketStats   `json:"pools"`
	Tiers            map[string]TierStats `json:"tiers"`
	Health           Health               `json:"health"`
}

// statsBook holds the orchestrator's aggregate counters
type statsBook struct {
	mu            sync.Mutex
	tiers         map[core.AgentKey]*TierStats
	decisions     int64
	underCeiling  int64
	totalLatency  float64
	fraudAlerts   int64
	endedByStatus map[core.MatchStatus]int64
}

func newStatsBook() *statsBook {
	return &statsBook{
		tiers:         make(map[core.AgentKey]*TierStats),
		endedByStatus: make(map[core.MatchStatus]int64),
	}
}

func (s *statsBook) decision(key core.AgentKey, latencyMs float64, outcome string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tiers[key]
	if !ok {
		t = &TierStats{}
		s.tiers[key] = t
	}
	if outcome == metrics.OutcomeNoMove {
		t.NoMove++
		return
	}

	t.Decisions++
	t.totalLatencyMs += latencyMs
	t.AvgLatencyMs = t.totalLatencyMs / float64(t.Decisions)
	t.MaxLatencyMs = max(t.MaxLatencyMs, latencyMs)
	switch outcome {
	case metrics.OutcomeOverrun:
		t.OverCeiling++
	case metrics.OutcomeFallback:
		t.Fallbacks++
	}

	s.decisions++
	s.totalLatency += latencyMs
	if latencyMs < core.PlatformCeilingMs {
		s.underCeiling++
	}
}

func (s *statsBook) fraudAlert() {
	s.mu.Lock()
	s.fraudAlerts++
	s.mu.Unlock()
}

func (s *statsBook) matchEnded(status core.MatchStatus) {
	s.mu.Lock()
	s.endedByStatus[status]++
	s.mu.Unlock()
}

// health computes the rates; empty denominators report a perfect record
func (s *statsBook) health() Health {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := Health{ComplianceRate: 1}
	var ended int64
	for _, n := range s.endedByStatus {
		ended += n
	}
	if ended > 0 {
		h.TimeoutRate = float64(s.endedByStatus[core.StatusTimedOut]) / float64(ended)
	}
	if s.decisions > 0 {
		h.FraudAlertRate = float64(s.fraudAlerts) / float64(s.decisions)
		h.AvgResponseMs = s.totalLatency / float64(s.decisions)
		h.ComplianceRate = float64(s.underCeiling) / float64(s.decisions)
	}
	return h
}

func (s *statsBook) tierSnapshot() map[string]TierStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]TierStats, len(s.tiers))
	for k, t := range s.tiers {
		out[k.String()] = *t
	}
	return out
}

// observe folds one agent decision into stats and metrics
func (p *Processor) observe(a *engine.Agent, d engine.Decision, ok bool) {
	cfg := a.Config()
	outcome := metrics.OutcomeOK
	switch {
	case !ok:
		outcome = metrics.OutcomeNoMove
	case d.LatencyMs >= core.PlatformCeilingMs:
		outcome = metrics.OutcomeOverrun
	case d.Result.Fallback:
		outcome = metrics.OutcomeFallback
	}

	p.stats.decision(cfg.Key(), d.LatencyMs, outcome)
	if ok {
		p.metrics.ObserveDecision(string(cfg.Difficulty), string(cfg.Personality), outcome, d.LatencyMs)
	} else {
		p.metrics.DecisionsTotal.WithLabelValues(string(cfg.Difficulty), string(cfg.Personality), outcome).Inc()
	}
	if d.FraudAlert {
		p.stats.fraudAlert()
		p.metrics.FraudAlert("agent")
		p.log.Warn().Str("agent", a.ID()).Float64("score", d.FraudScore).Msg("fraud alert")
	}
	if outcome == metrics.OutcomeOverrun {
		p.log.Warn().Str("agent", a.ID()).Float64("latency_ms", d.LatencyMs).Msg("decision over platform ceiling")
	}
}

// Report builds the performance report
func (p *Processor) Report() Report {
	total, busy := p.pool.Counts()
	running, archived := p.svc.Counts()

	h := p.stats.health()
	h.Storage = p.svc.StorageHealth()
	h.DroppedWrites = p.svc.DroppedWrites()
	h.Uptime = time.Since(p.started).Round(time.Second).String()

	return Report{
		Timestamp:        time.Now().UTC(),
		TotalAgents:      total,
		BusyAgents:       busy,
		ActiveMatches:    running,
		CompletedMatches: archived,
		AgentsCreated:    p.pool.Created(),
		AgentsEvicted:    p.pool.Evicted(),
		Pools:            p.pool.Stats(),
		Tiers:            p.stats.tierSnapshot(),
		Health:           h,
	}
}

// CleanupOldMatches purges archived matches older than maxAge and idle
// agents past the pool TTL. It returns how many of each were removed.
func (p *Processor) CleanupOldMatches(maxAge time.Duration) (matches, agents int) {
	matches = p.svc.PurgeArchive(maxAge)
	agents = p.pool.PurgeIdle(p.cfg.Pool.IdleTTL)
	if matches > 0 || agents > 0 {
		p.publishPool()
		p.log.Info().Int("matches", matches).Int("agents", agents).Msg("cleanup")
	}
	return matches, agents
}

// RunCleanupJob runs CleanupOldMatches every interval until ctx is done
func (p *Processor) RunCleanupJob(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = p.cfg.Orchestrator.CleanupInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.CleanupOldMatches(p.cfg.Orchestrator.ArchiveMaxAge)
		}
	}
}
