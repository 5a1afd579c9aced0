// FILE: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"arena/internal/core"
	"arena/internal/engine"
	"arena/internal/fraud"
)

// TierConfig is the template for agents of one difficulty
type TierConfig struct {
	Algorithm    core.Algorithm `yaml:"algorithm"`
	SkillLevel   int            `yaml:"skill_level"`
	SearchDepth  int            `yaml:"search_depth"`
	TargetTimeMs float64        `yaml:"target_time_ms"`
	MaxTimeMs    float64        `yaml:"max_time_ms"`
}

type TiersConfig struct {
	Easy   TierConfig `yaml:"easy"`
	Medium TierConfig `yaml:"medium"`
	Hard   TierConfig `yaml:"hard"`
}

type PoolConfig struct {
	MaxAgentsPerBucket int           `yaml:"max_agents_per_bucket"`
	IdleTTL            time.Duration `yaml:"idle_ttl"`
}

type OrchestratorConfig struct {
	// Workers bounds concurrently driven matches in RunConcurrent
	Workers         int           `yaml:"workers"`
	MatchTimeout    time.Duration `yaml:"match_timeout"`
	ArchiveMaxAge   time.Duration `yaml:"archive_max_age"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
	// AgentFraudDetection enables alert counting on pooled agents
	AgentFraudDetection bool `yaml:"agent_fraud_detection"`
}

// Config is the full server configuration
type Config struct {
	Tiers        TiersConfig           `yaml:"tiers"`
	Fraud        fraud.Params          `yaml:"fraud"`
	MCTS         engine.MCTSSettings   `yaml:"mcts"`
	Hybrid       engine.HybridSettings `yaml:"hybrid"`
	Pool         PoolConfig            `yaml:"pool"`
	Orchestrator OrchestratorConfig    `yaml:"orchestrator"`
}

// Default returns the built-in configuration
func Default() Config {
	tier := func(d core.Difficulty) TierConfig {
		c := core.DefaultAgentConfig(d, core.PersonalityBalanced)
		return TierConfig{
			SkillLevel:   c.SkillLevel,
			SearchDepth:  c.SearchDepth,
			TargetTimeMs: c.TargetTimeMs,
			MaxTimeMs:    c.MaxTimeMs,
		}
	}
	settings := engine.DefaultSettings()
	return Config{
		Tiers: TiersConfig{
			Easy:   tier(core.DifficultyEasy),
			Medium: tier(core.DifficultyMedium),
			Hard:   tier(core.DifficultyHard),
		},
		Fraud:  settings.Fraud,
		MCTS:   settings.MCTS,
		Hybrid: settings.Hybrid,
		Pool: PoolConfig{
			MaxAgentsPerBucket: 64,
			IdleTTL:            10 * time.Minute,
		},
		Orchestrator: OrchestratorConfig{
			Workers:         32,
			MatchTimeout:    30 * time.Second,
			ArchiveMaxAge:   time.Hour,
			CleanupInterval: 5 * time.Minute,
		},
	}
}

// Load reads a YAML file over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects budgets outside the platform ceiling and non-positive limits
func (c Config) Validate() error {
	var errs []error
	for _, d := range core.Difficulties {
		t := c.Tier(d)
		tc := t.agentConfig(d, core.PersonalityBalanced)
		if !tc.Valid() {
			errs = append(errs, fmt.Errorf("tier %s: need 0 < target_time_ms <= max_time_ms <= %.0f and a known algorithm (got target=%.1f max=%.1f algorithm=%q)",
				d, core.PlatformCeilingMs, t.TargetTimeMs, t.MaxTimeMs, t.Algorithm))
		}
	}
	if c.Fraud.MinThinkingTimeMs < 0 || c.Fraud.Penalty < 0 || c.Fraud.Decay < 0 || c.Fraud.Decay >= 1 {
		errs = append(errs, errors.New("fraud: min_thinking_time_ms and penalty must be non-negative and decay in [0,1)"))
	}
	if c.Fraud.AlertThreshold < 0 || c.Fraud.AlertThreshold > 1 {
		errs = append(errs, errors.New("fraud: alert_threshold must be in [0,1]"))
	}
	if c.Hybrid.NeuralWeight < 0 || c.Hybrid.NeuralWeight > 1 {
		errs = append(errs, errors.New("hybrid: neural_weight must be in [0,1]"))
	}
	if c.Pool.MaxAgentsPerBucket <= 0 {
		errs = append(errs, errors.New("pool: max_agents_per_bucket must be positive"))
	}
	if c.Orchestrator.Workers <= 0 {
		errs = append(errs, errors.New("orchestrator: workers must be positive"))
	}
	if c.Orchestrator.MatchTimeout <= 0 || c.Orchestrator.CleanupInterval <= 0 {
		errs = append(errs, errors.New("orchestrator: match_timeout and cleanup_interval must be positive"))
	}
	return errors.Join(errs...)
}

// Tier returns the template for a difficulty
func (c Config) Tier(d core.Difficulty) TierConfig {
	switch d {
	case core.DifficultyEasy:
		return c.Tiers.Easy
	case core.DifficultyMedium:
		return c.Tiers.Medium
	case core.DifficultyHard:
		return c.Tiers.Hard
	}
	return TierConfig{}
}

// AgentTemplate builds the pooled agent configuration for a key
func (c Config) AgentTemplate(d core.Difficulty, p core.Personality) core.AgentConfig {
	cfg := c.Tier(d).agentConfig(d, p)
	cfg.FraudDetectionEnabled = c.Orchestrator.AgentFraudDetection
	return cfg
}

// EngineSettings collects the tunables shared by every agent
func (c Config) EngineSettings() engine.Settings {
	return engine.Settings{Fraud: c.Fraud, MCTS: c.MCTS, Hybrid: c.Hybrid}
}

func (t TierConfig) agentConfig(d core.Difficulty, p core.Personality) core.AgentConfig {
	return core.AgentConfig{
		Difficulty:   d,
		Personality:  p,
		Algorithm:    t.Algorithm,
		SkillLevel:   t.SkillLevel,
		SearchDepth:  t.SearchDepth,
		TargetTimeMs: t.TargetTimeMs,
		MaxTimeMs:    t.MaxTimeMs,
	}
}
