package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arena/internal/core"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "arena.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 10.0, cfg.Tiers.Easy.MaxTimeMs)
	assert.Equal(t, 50.0, cfg.Tiers.Medium.MaxTimeMs)
	assert.Equal(t, 90.0, cfg.Tiers.Hard.MaxTimeMs)
	assert.Equal(t, 8, cfg.Hybrid.TopK)
	assert.Equal(t, 10.0, cfg.Fraud.MinThinkingTimeMs)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
tiers:
  hard:
    target_time_ms: 60
    search_depth: 5
fraud:
  penalty: 0.3
pool:
  idle_ttl: 90s
orchestrator:
  workers: 8
  agent_fraud_detection: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 60.0, cfg.Tiers.Hard.TargetTimeMs)
	assert.Equal(t, 90.0, cfg.Tiers.Hard.MaxTimeMs, "unset fields keep their defaults")
	assert.Equal(t, 5, cfg.Tiers.Hard.SearchDepth)
	assert.Equal(t, 0.3, cfg.Fraud.Penalty)
	assert.Equal(t, 0.9, cfg.Fraud.Decay)
	assert.Equal(t, 90*time.Second, cfg.Pool.IdleTTL)
	assert.Equal(t, 8, cfg.Orchestrator.Workers)

	tmpl := cfg.AgentTemplate(core.DifficultyHard, core.PersonalityAggressive)
	assert.True(t, tmpl.Valid())
	assert.True(t, tmpl.FraudDetectionEnabled)
	assert.Equal(t, core.PersonalityAggressive, tmpl.Personality)
}

func TestLoadRejectsCeilingViolation(t *testing.T) {
	path := writeConfig(t, `
tiers:
  medium:
    max_time_ms: 150
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tier medium")
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "tiers: [1, 2"))
	assert.Error(t, err)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := Default()
	cfg.Pool.MaxAgentsPerBucket = 0
	cfg.Hybrid.NeuralWeight = 2
	cfg.Tiers.Easy.TargetTimeMs = 20

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_agents_per_bucket")
	assert.Contains(t, err.Error(), "neural_weight")
	assert.Contains(t, err.Error(), "tier easy")
}
