package fraud

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStep(t *testing.T) {
	p := DefaultParams()

	tests := []struct {
		name    string
		acc     float64
		latency float64
		want    float64
	}{
		{"fast adds penalty", 0, 2, 0.2},
		{"compliant decays", 0.5, 40, 0.45},
		{"threshold is compliant", 0.5, 10, 0.45},
		{"clamped high", 0.95, 1, 1},
		{"zero stays zero", 0, 50, 0},
		{"nan is suspicious", 0, math.NaN(), 0.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Step(tt.acc, tt.latency, p), 1e-9)
		})
	}
}

func TestMonitor_BurstRaisesThenRecovers(t *testing.T) {
	m := NewMonitor(DefaultParams())

	for i := 0; i < 20; i++ {
		m.RecordDecision(35)
	}
	baseline := m.Score()

	for i := 0; i < 3; i++ {
		m.RecordDecision(1.5)
	}
	afterBurst := m.Score()
	assert.Greater(t, afterBurst, baseline)

	for i := 0; i < 10; i++ {
		m.RecordDecision(40)
	}
	assert.Less(t, m.Score(), afterBurst)
}

func TestMonitor_ScoreBounded(t *testing.T) {
	m := NewMonitor(Params{})
	for i := 0; i < 500; i++ {
		score, _ := m.RecordDecision(0)
		require.LessOrEqual(t, score, 1.0)
		require.GreaterOrEqual(t, score, 0.0)
	}
	assert.Equal(t, 1.0, m.Score())
}

func TestMonitor_AlertCrossing(t *testing.T) {
	m := NewMonitor(DefaultParams())

	crossings := 0
	for i := 0; i < 5; i++ {
		if _, crossed := m.RecordDecision(1); crossed {
			crossings++
		}
	}
	assert.Equal(t, 1, crossings)
	assert.True(t, m.Alerting())

	for i := 0; i < 30; i++ {
		m.RecordDecision(100)
	}
	assert.False(t, m.Alerting())

	_, crossed := m.RecordDecision(1)
	assert.False(t, crossed, "single fast decision after recovery stays below threshold")
	assert.Equal(t, 1, m.Alerts())
}

func TestMonitor_WindowBounded(t *testing.T) {
	m := NewMonitor(Params{WindowSize: 4})
	for _, v := range []float64{1, 2, 30, 40, 50, 60} {
		m.RecordDecision(v)
	}

	w := m.Window()
	assert.Equal(t, 4, w.Count)
	assert.Equal(t, 6, m.Total())
	assert.InDelta(t, 30.0, w.MinMs, 1e-9)
	assert.InDelta(t, 60.0, w.MaxMs, 1e-9)
	assert.InDelta(t, 45.0, w.MeanMs, 1e-9)
	assert.Equal(t, 0, w.Suspicious)

	m.Reset()
	assert.Equal(t, 0, m.Window().Count)
	assert.Equal(t, 0.0, m.Score())
}
