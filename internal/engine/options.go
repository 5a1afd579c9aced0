package engine

import (
	"github.com/rs/zerolog"

	"arena/internal/fraud"
)

// MCTSSettings tunes the Monte-Carlo searcher
type MCTSSettings struct {
	Simulations  int     `yaml:"simulations_per_move" json:"simulationsPerMove"`
	RolloutDepth int     `yaml:"rollout_depth" json:"rolloutDepth"`
	Exploration  float64 `yaml:"exploration" json:"exploration"`
}

// HybridSettings tunes the network-guided searcher
type HybridSettings struct {
	TopK         int     `yaml:"top_k" json:"topK"`
	NeuralWeight float64 `yaml:"neural_weight" json:"neuralWeight"`
	ValueScale   float64 `yaml:"value_scale" json:"valueScale"`
}

// Settings are the engine-wide tunables shared by every agent
type Settings struct {
	Fraud  fraud.Params   `yaml:"fraud" json:"fraud"`
	MCTS   MCTSSettings   `yaml:"mcts" json:"mcts"`
	Hybrid HybridSettings `yaml:"hybrid" json:"hybrid"`
}

func DefaultSettings() Settings {
	return Settings{
		Fraud: fraud.DefaultParams(),
		MCTS: MCTSSettings{
			Simulations:  200,
			RolloutDepth: 6,
			Exploration:  1.414,
		},
		Hybrid: HybridSettings{
			TopK:         8,
			NeuralWeight: 0.35,
			ValueScale:   1000,
		},
	}
}

// normalized replaces out-of-range values with defaults
func (s Settings) normalized() Settings {
	d := DefaultSettings()
	if s.MCTS.Simulations <= 0 {
		s.MCTS.Simulations = d.MCTS.Simulations
	}
	if s.MCTS.RolloutDepth < 0 {
		s.MCTS.RolloutDepth = d.MCTS.RolloutDepth
	}
	if s.MCTS.Exploration <= 0 {
		s.MCTS.Exploration = d.MCTS.Exploration
	}
	if s.Hybrid.TopK <= 0 {
		s.Hybrid.TopK = d.Hybrid.TopK
	}
	if s.Hybrid.NeuralWeight < 0 || s.Hybrid.NeuralWeight > 1 {
		s.Hybrid.NeuralWeight = d.Hybrid.NeuralWeight
	}
	if s.Hybrid.ValueScale <= 0 {
		s.Hybrid.ValueScale = d.Hybrid.ValueScale
	}
	return s
}

// Option configures an Agent at construction
type Option func(*Agent)

func WithLogger(log zerolog.Logger) Option {
	return func(a *Agent) {
		a.log = log
	}
}

// WithNetwork replaces the built-in LinearNetwork used by hybrid agents
func WithNetwork(net Network) Option {
	return func(a *Agent) {
		if net != nil {
			a.net = net
		}
	}
}

// WithSeed makes move selection reproducible
func WithSeed(seed uint64) Option {
	return func(a *Agent) {
		a.seed = seed
		a.seeded = true
	}
}

func WithSettings(s Settings) Option {
	return func(a *Agent) {
		a.settings = s
	}
}

// WithID overrides the generated agent ID
func WithID(id string) Option {
	return func(a *Agent) {
		if id != "" {
			a.id = id
		}
	}
}
