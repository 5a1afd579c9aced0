// FILE: internal/fraud/fraud.go
// Package fraud scores how often decision latencies fall below a plausible
// minimum thinking time.
package fraud

import "math"

// Params tunes the detector
type Params struct {
	MinThinkingTimeMs float64 `yaml:"min_thinking_time_ms" json:"minThinkingTimeMs"`
	Penalty           float64 `yaml:"penalty" json:"penalty"`
	Decay             float64 `yaml:"decay" json:"decay"`
	AlertThreshold    float64 `yaml:"alert_threshold" json:"alertThreshold"`
	WindowSize        int     `yaml:"window_size" json:"windowSize"`
}

// DefaultParams returns the detector defaults
func DefaultParams() Params {
	return Params{
		MinThinkingTimeMs: 10,
		Penalty:           0.2,
		Decay:             0.9,
		AlertThreshold:    0.5,
		WindowSize:        50,
	}
}

func (p Params) normalized() Params {
	d := DefaultParams()
	if p.MinThinkingTimeMs <= 0 {
		p.MinThinkingTimeMs = d.MinThinkingTimeMs
	}
	if p.Penalty <= 0 {
		p.Penalty = d.Penalty
	}
	if p.Decay <= 0 || p.Decay >= 1 {
		p.Decay = d.Decay
	}
	if p.AlertThreshold <= 0 {
		p.AlertThreshold = d.AlertThreshold
	}
	if p.WindowSize <= 0 {
		p.WindowSize = d.WindowSize
	}
	return p
}

// Step is the pure accumulator transition for one observed latency. A
// sub-threshold latency adds the penalty, a compliant one decays the
// accumulator multiplicatively. The result stays in [0,1].
func Step(acc, latencyMs float64, p Params) float64 {
	if math.IsNaN(latencyMs) || latencyMs < p.MinThinkingTimeMs {
		acc += p.Penalty
	} else {
		acc *= p.Decay
	}
	return clamp01(acc)
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// WindowStats summarises the latencies currently in the window
type WindowStats struct {
	Count      int     `json:"count"`
	MeanMs     float64 `json:"meanMs"`
	MinMs      float64 `json:"minMs"`
	MaxMs      float64 `json:"maxMs"`
	Suspicious int     `json:"suspicious"`
}

// Monitor keeps a bounded ring of recent latencies plus the accumulator.
// It is not synchronised: the owner of the monitor serialises access.
type Monitor struct {
	params   Params
	window   []float64
	next     int
	count    int
	acc      float64
	total    int
	alerts   int
	alerting bool
}

// NewMonitor creates a monitor; zero-valued params fall back to defaults
func NewMonitor(params Params) *Monitor {
	params = params.normalized()
	return &Monitor{
		params: params,
		window: make([]float64, params.WindowSize),
	}
}

func (m *Monitor) Params() Params {
	return m.params
}

// RecordDecision folds one latency into the score. crossed is true when this
// decision moved the score from below the alert threshold to at or above it.
func (m *Monitor) RecordDecision(latencyMs float64) (score float64, crossed bool) {
	m.window[m.next] = latencyMs
	m.next = (m.next + 1) % len(m.window)
	if m.count < len(m.window) {
		m.count++
	}
	m.total++

	m.acc = Step(m.acc, latencyMs, m.params)

	alerting := m.acc >= m.params.AlertThreshold
	crossed = alerting && !m.alerting
	if crossed {
		m.alerts++
	}
	m.alerting = alerting
	return m.acc, crossed
}

// Score returns the current fraud score in [0,1]
func (m *Monitor) Score() float64 {
	return m.acc
}

// Alerting reports whether the score is at or above the alert threshold
func (m *Monitor) Alerting() bool {
	return m.alerting
}

// Alerts counts threshold crossings since creation
func (m *Monitor) Alerts() int {
	return m.alerts
}

// Total counts every recorded decision, including those evicted from the window
func (m *Monitor) Total() int {
	return m.total
}

func (m *Monitor) Window() WindowStats {
	s := WindowStats{Count: m.count}
	if m.count == 0 {
		return s
	}
	s.MinMs = math.Inf(1)
	sum := 0.0
	for i := 0; i < m.count; i++ {
		v := m.window[i]
		sum += v
		s.MinMs = math.Min(s.MinMs, v)
		s.MaxMs = math.Max(s.MaxMs, v)
		if v < m.params.MinThinkingTimeMs {
			s.Suspicious++
		}
	}
	s.MeanMs = sum / float64(m.count)
	return s
}

// Reset clears all history
func (m *Monitor) Reset() {
	for i := range m.window {
		m.window[i] = 0
	}
	m.next, m.count, m.total, m.alerts = 0, 0, 0, 0
	m.acc = 0
	m.alerting = false
}
