// Package personality maps a named personality to the scalar biases used by
// move selection and search.
package personality

import "arena/internal/core"

// Profile holds the behavioural weights of one personality. All weights are
// in [0,1] except CaptureMultiplier, which scales captured material relative
// to a balanced player.
type Profile struct {
	Name              core.Personality `json:"name"`
	Aggression        float64          `json:"aggression"`
	RiskTolerance     float64          `json:"riskTolerance"`
	Patience          float64          `json:"patience"`
	CaptureBias       float64          `json:"captureBias"`
	CapturePreference float64          `json:"capturePreference"`
	CaptureMultiplier float64          `json:"captureMultiplier"`
}

var profiles = map[core.Personality]Profile{
	core.PersonalityAggressive: {
		Name:              core.PersonalityAggressive,
		Aggression:        0.9,
		RiskTolerance:     0.8,
		Patience:          0.2,
		CaptureBias:       0.9,
		CapturePreference: 0.85,
		CaptureMultiplier: 1.8,
	},
	core.PersonalityBalanced: {
		Name:              core.PersonalityBalanced,
		Aggression:        0.5,
		RiskTolerance:     0.5,
		Patience:          0.5,
		CaptureBias:       0.5,
		CapturePreference: 0.70,
		CaptureMultiplier: 1.0,
	},
	core.PersonalityDefensive: {
		Name:              core.PersonalityDefensive,
		Aggression:        0.2,
		RiskTolerance:     0.2,
		Patience:          0.8,
		CaptureBias:       0.3,
		CapturePreference: 0.60,
		CaptureMultiplier: 0.3,
	},
	core.PersonalityTactical: {
		Name:              core.PersonalityTactical,
		Aggression:        0.6,
		RiskTolerance:     0.5,
		Patience:          0.7,
		CaptureBias:       0.7,
		CapturePreference: 0.75,
		CaptureMultiplier: 1.3,
	},
}

// From returns the profile for p. Unknown personalities get the balanced
// profile and false.
func From(p core.Personality) (Profile, bool) {
	prof, ok := profiles[p]
	if !ok {
		return profiles[core.PersonalityBalanced], false
	}
	return prof, true
}

// All returns every profile in core.Personalities order
func All() []Profile {
	out := make([]Profile, 0, len(core.Personalities))
	for _, p := range core.Personalities {
		out = append(out, profiles[p])
	}
	return out
}

// CaptureBonus is the extra score a capture of the given material value earns
// over a balanced player's valuation.
func (p Profile) CaptureBonus(capturedValue float64) float64 {
	return capturedValue * (p.CaptureMultiplier - 1)
}

// AdjustScore adds the capture bonus of m to an evaluator score
func (p Profile) AdjustScore(base float64, m core.Move, capturedValue float64) float64 {
	if !m.IsCapture {
		return base
	}
	return base + p.CaptureBonus(capturedValue)
}

// Info converts the profile to its API form
func (p Profile) Info() core.PersonalityInfo {
	return core.PersonalityInfo{
		Name:              p.Name,
		Aggression:        p.Aggression,
		RiskTolerance:     p.RiskTolerance,
		Patience:          p.Patience,
		CaptureBias:       p.CaptureBias,
		CapturePreference: p.CapturePreference,
	}
}
