// FILE: internal/processor/runner.go
package processor

import (
	"context"
	"math/rand/v2"
	"time"

	"golang.org/x/sync/errgroup"

	"arena/internal/board"
	"arena/internal/core"
)

// DefaultMaxMoves bounds self-play matches without an explicit move limit
const DefaultMaxMoves = 40

// MatchConfig describes one self-play match for RunConcurrent
type MatchConfig struct {
	AgentA   core.AgentConfig
	AgentB   core.AgentConfig
	MaxMoves int
	Seed     uint64 // 0 draws a fresh seed
}

// MatchResult is the outcome of one driven match. StartedAt and EndedAt lie
// inside the window during which both agents were lent to the match.
type MatchResult struct {
	MatchID      string           `json:"matchId"`
	AgentA       string           `json:"agentA"`
	AgentB       string           `json:"agentB"`
	Status       core.MatchStatus `json:"status"`
	Winner       core.Player      `json:"winner"`
	Moves        int              `json:"moves"`
	StartedAt    time.Time        `json:"startedAt"`
	EndedAt      time.Time        `json:"endedAt"`
	Duration     time.Duration    `json:"duration"`
	AvgLatencyMs float64          `json:"avgLatencyMs"`
	MaxLatencyMs float64          `json:"maxLatencyMs"`
	UnderCeiling int              `json:"underCeiling"`
	Error        string           `json:"error,omitempty"`
}

// Succeeded reports whether the match ran to completion
func (r MatchResult) Succeeded() bool {
	return r.Status == core.StatusCompleted
}

// RunConcurrent drives every config as a self-play match with at most
// Orchestrator.Workers matches in flight. Matches still running when timeout
// elapses end as TimedOut. Results keep the order of configs.
func (p *Processor) RunConcurrent(ctx context.Context, configs []MatchConfig, timeout time.Duration) []MatchResult {
	if timeout <= 0 {
		timeout = p.cfg.Orchestrator.MatchTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	results := make([]MatchResult, len(configs))
	g := new(errgroup.Group)
	g.SetLimit(max(1, p.cfg.Orchestrator.Workers))
	for i, mc := range configs {
		g.Go(func() error {
			results[i] = p.playMatch(runCtx, mc)
			return nil
		})
	}
	_ = g.Wait()

	completed := 0
	for _, r := range results {
		if r.Succeeded() {
			completed++
		}
	}
	p.log.Info().Int("matches", len(configs)).Int("completed", completed).Msg("concurrent run finished")
	return results
}

func (p *Processor) playMatch(ctx context.Context, mc MatchConfig) MatchResult {
	var res MatchResult
	id, ok := p.CreateMatch(mc.AgentA, mc.AgentB)
	if !ok {
		res.Status = core.StatusFailed
		res.Error = "match could not be created"
		return res
	}
	res.MatchID = id
	res.StartedAt = time.Now()
	if m, ok := p.svc.ActiveMatch(id); ok {
		m.Lock()
		a, b := m.Agents()
		m.Unlock()
		res.AgentA, res.AgentB = a.ID(), b.ID()
	}

	seed := mc.Seed
	if seed == 0 {
		seed = p.seeds.Add(1) ^ uint64(time.Now().UnixNano())
	}
	state := board.NewStandard(rand.New(rand.NewPCG(seed, seed>>1|1)))
	maxMoves := mc.MaxMoves
	if maxMoves <= 0 {
		maxMoves = DefaultMaxMoves
	}

	var total float64
	result := core.Result{Status: core.StatusCompleted}
	for res.Moves < maxMoves {
		if ctx.Err() != nil {
			result = core.Result{Status: core.StatusTimedOut, Reason: "run timeout"}
			break
		}
		legal := board.LegalMoves(state)
		if len(legal) == 0 {
			result.Winner = state.CurrentPlayer.Opponent()
			result.Reason = "no moves"
			break
		}
		entry, ok := p.getMove(id, state, legal)
		if !ok {
			result = core.Result{Status: core.StatusFailed, Reason: "no move returned"}
			break
		}
		res.Moves++
		total += entry.LatencyMs
		res.MaxLatencyMs = max(res.MaxLatencyMs, entry.LatencyMs)
		if entry.LatencyMs < core.PlatformCeilingMs {
			res.UnderCeiling++
		}
		state = board.Apply(state, entry.Move)
	}
	if result.Status == core.StatusCompleted && result.Reason == "" {
		result.Reason = "move limit"
		switch score := board.EvaluateFor(state, core.PlayerOne); {
		case score > 0:
			result.Winner = core.PlayerOne
		case score < 0:
			result.Winner = core.PlayerTwo
		}
	}

	res.EndedAt = time.Now()
	res.Duration = res.EndedAt.Sub(res.StartedAt)
	if res.Moves > 0 {
		res.AvgLatencyMs = total / float64(res.Moves)
	}
	res.Status = result.Status
	res.Winner = result.Winner
	if result.Status != core.StatusCompleted {
		res.Error = result.Reason
	}
	p.EndMatch(id, result)
	return res
}

// StressReport summarises a RunStressTest invocation
type StressReport struct {
	Games          int           `json:"games"`
	Completed      int           `json:"completed"`
	Failed         int           `json:"failed"`
	TimedOut       int           `json:"timedOut"`
	SuccessRate    float64       `json:"successRate"`
	TotalMoves     int           `json:"totalMoves"`
	AvgLatencyMs   float64       `json:"avgLatencyMs"`
	MaxLatencyMs   float64       `json:"maxLatencyMs"`
	ComplianceRate float64       `json:"magicBlockComplianceRate"`
	Duration       time.Duration `json:"duration"`
}

// StressConfigs builds games match configs cycling through every tier and
// personality.
func (p *Processor) StressConfigs(games, movesPerGame int) []MatchConfig {
	keys := core.AllKeys()
	configs := make([]MatchConfig, games)
	for i := range configs {
		ka := keys[i%len(keys)]
		kb := keys[(i+1)%len(keys)]
		configs[i] = MatchConfig{
			AgentA:   p.cfg.AgentTemplate(ka.Difficulty, ka.Personality),
			AgentB:   p.cfg.AgentTemplate(kb.Difficulty, kb.Personality),
			MaxMoves: movesPerGame,
		}
	}
	return configs
}

// RunStressTest plays games concurrent self-play matches and aggregates them
func (p *Processor) RunStressTest(ctx context.Context, games, movesPerGame int) StressReport {
	start := time.Now()
	results := p.RunConcurrent(ctx, p.StressConfigs(games, movesPerGame), 0)

	rep := StressReport{Games: games, ComplianceRate: 1}
	var latency float64
	var under int
	for _, r := range results {
		switch r.Status {
		case core.StatusCompleted:
			rep.Completed++
		case core.StatusTimedOut:
			rep.TimedOut++
		default:
			rep.Failed++
		}
		rep.TotalMoves += r.Moves
		latency += r.AvgLatencyMs * float64(r.Moves)
		under += r.UnderCeiling
		rep.MaxLatencyMs = max(rep.MaxLatencyMs, r.MaxLatencyMs)
	}
	if games > 0 {
		rep.SuccessRate = float64(rep.Completed) / float64(games)
	}
	if rep.TotalMoves > 0 {
		rep.AvgLatencyMs = latency / float64(rep.TotalMoves)
		rep.ComplianceRate = float64(under) / float64(rep.TotalMoves)
	}
	rep.Duration = time.Since(start)

	p.log.Info().
		Int("games", games).
		Int("completed", rep.Completed).
		Float64("success_rate", rep.SuccessRate).
		Float64("max_latency_ms", rep.MaxLatencyMs).
		Msg("stress test finished")
	return rep
}
