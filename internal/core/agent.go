package core

// PlatformCeilingMs is the hard per-decision limit for every tier
const PlatformCeilingMs = 100.0

// AgentConfig is fixed at agent construction
type AgentConfig struct {
	Difficulty            Difficulty  `json:"difficulty" yaml:"difficulty"`
	Personality           Personality `json:"personality" yaml:"personality"`
	Algorithm             Algorithm   `json:"algorithm,omitempty" yaml:"algorithm,omitempty"`
	SkillLevel            int         `json:"skillLevel" yaml:"skill_level"`
	SearchDepth           int         `json:"searchDepth" yaml:"search_depth"`
	TargetTimeMs          float64     `json:"targetTimeMs" yaml:"target_time_ms"`
	MaxTimeMs             float64     `json:"maxTimeMs" yaml:"max_time_ms"`
	FraudDetectionEnabled bool        `json:"fraudDetectionEnabled" yaml:"fraud_detection_enabled"`
}

// Key returns the pool bucket for this configuration
func (c AgentConfig) Key() AgentKey {
	return AgentKey{Difficulty: c.Difficulty, Personality: c.Personality}
}

// Valid checks enum membership and time budget sanity
func (c AgentConfig) Valid() bool {
	if !c.Key().Valid() || !c.Algorithm.Valid() {
		return false
	}
	if c.TargetTimeMs <= 0 || c.MaxTimeMs <= 0 || c.TargetTimeMs > c.MaxTimeMs {
		return false
	}
	return c.MaxTimeMs <= PlatformCeilingMs && c.SearchDepth >= 0
}

// ResolvedAlgorithm returns the engine to run, applying the tier default
func (c AgentConfig) ResolvedAlgorithm() Algorithm {
	if c.Algorithm != AlgorithmDefault {
		return c.Algorithm
	}
	switch c.Difficulty {
	case DifficultyMedium:
		return AlgorithmMinimax
	case DifficultyHard:
		return AlgorithmHybrid
	default:
		return AlgorithmRandom
	}
}

// DefaultAgentConfig returns built-in tier defaults. Unknown tiers produce an
// invalid config so callers can reject them.
func DefaultAgentConfig(d Difficulty, p Personality) AgentConfig {
	cfg := AgentConfig{Difficulty: d, Personality: p}
	switch d {
	case DifficultyEasy:
		cfg.SkillLevel = 1
		cfg.SearchDepth = 1
		cfg.TargetTimeMs = 5
		cfg.MaxTimeMs = 10
	case DifficultyMedium:
		cfg.SkillLevel = 5
		cfg.SearchDepth = 3
		cfg.TargetTimeMs = 40
		cfg.MaxTimeMs = 50
	case DifficultyHard:
		cfg.SkillLevel = 9
		cfg.SearchDepth = 4
		cfg.TargetTimeMs = 80
		cfg.MaxTimeMs = 90
	}
	return cfg
}
