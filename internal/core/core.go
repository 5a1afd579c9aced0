package core

import "strings"

// Difficulty is the tier that fixes time budget and search sophistication
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Difficulties lists every recognised tier in ascending cost
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// ParseDifficulty accepts case-insensitive tier names
func ParseDifficulty(s string) (Difficulty, bool) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	return d, d.Valid()
}

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	default:
		return false
	}
}

// Personality selects the behavioural bias of an agent
type Personality string

const (
	PersonalityAggressive Personality = "aggressive"
	PersonalityDefensive  Personality = "defensive"
	PersonalityBalanced   Personality = "balanced"
	PersonalityTactical   Personality = "tactical"
)

// Personalities lists every recognised personality
var Personalities = []Personality{
	PersonalityAggressive,
	PersonalityDefensive,
	PersonalityBalanced,
	PersonalityTactical,
}

func ParsePersonality(s string) (Personality, bool) {
	p := Personality(strings.ToLower(strings.TrimSpace(s)))
	return p, p.Valid()
}

func (p Personality) Valid() bool {
	switch p {
	case PersonalityAggressive, PersonalityDefensive, PersonalityBalanced, PersonalityTactical:
		return true
	default:
		return false
	}
}

// Algorithm names a move-selection engine
type Algorithm string

const (
	AlgorithmDefault Algorithm = ""
	AlgorithmRandom  Algorithm = "random"
	AlgorithmMinimax Algorithm = "minimax"
	AlgorithmMCTS    Algorithm = "mcts"
	AlgorithmHybrid  Algorithm = "hybrid"
)

func (a Algorithm) Valid() bool {
	switch a {
	case AlgorithmDefault, AlgorithmRandom, AlgorithmMinimax, AlgorithmMCTS, AlgorithmHybrid:
		return true
	default:
		return false
	}
}

// AgentKey identifies an agent pool bucket
type AgentKey struct {
	Difficulty  Difficulty  `json:"difficulty"`
	Personality Personality `json:"personality"`
}

func (k AgentKey) Valid() bool {
	return k.Difficulty.Valid() && k.Personality.Valid()
}

func (k AgentKey) String() string {
	return string(k.Difficulty) + "/" + string(k.Personality)
}

// AllKeys enumerates every valid (difficulty, personality) combination
func AllKeys() []AgentKey {
	keys := make([]AgentKey, 0, len(Difficulties)*len(Personalities))
	for _, d := range Difficulties {
		for _, p := range Personalities {
			keys = append(keys, AgentKey{Difficulty: d, Personality: p})
		}
	}
	return keys
}
