package pool

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arena/internal/core"
	"arena/internal/engine"
)

func TestGetAgentUnknownKey(t *testing.T) {
	p := New(Options{})
	a, ok := p.GetAgent("expert", core.PersonalityBalanced)
	assert.False(t, ok)
	assert.Nil(t, a)

	a, ok = p.GetAgent(core.DifficultyEasy, "reckless")
	assert.False(t, ok)
	assert.Nil(t, a)

	total, _ := p.Counts()
	assert.Zero(t, total)
}

func TestReuseAfterRelease(t *testing.T) {
	p := New(Options{})
	a, ok := p.GetAgent(core.DifficultyMedium, core.PersonalityTactical)
	require.True(t, ok)
	assert.Equal(t, core.DifficultyMedium, a.Config().Difficulty)
	require.True(t, p.Release(a))

	b, ok := p.GetAgent(core.DifficultyMedium, core.PersonalityTactical)
	require.True(t, ok)
	assert.Same(t, a, b)
	assert.EqualValues(t, 1, p.Created())
}

func TestReleaseTwice(t *testing.T) {
	p := New(Options{})
	a, ok := p.GetAgent(core.DifficultyEasy, core.PersonalityBalanced)
	require.True(t, ok)
	assert.True(t, p.Release(a))
	assert.False(t, p.Release(a))
	assert.False(t, p.Release(nil))
}

func TestRotationAcrossFreeAgents(t *testing.T) {
	p := New(Options{MaxPerBucket: 2})
	first, _ := p.GetAgent(core.DifficultyEasy, core.PersonalityAggressive)
	second, _ := p.GetAgent(core.DifficultyEasy, core.PersonalityAggressive)
	require.NotSame(t, first, second)
	p.Release(first)
	p.Release(second)

	var got []*engine.Agent
	for i := 0; i < 4; i++ {
		a, ok := p.GetAgent(core.DifficultyEasy, core.PersonalityAggressive)
		require.True(t, ok)
		got = append(got, a)
		p.Release(a)
	}
	assert.Same(t, got[0], got[2])
	assert.Same(t, got[1], got[3])
	assert.NotSame(t, got[0], got[1])
}

func TestBucketCap(t *testing.T) {
	p := New(Options{MaxPerBucket: 3})
	for i := 0; i < 3; i++ {
		_, ok := p.GetAgent(core.DifficultyHard, core.PersonalityDefensive)
		require.True(t, ok)
	}
	a, ok := p.GetAgent(core.DifficultyHard, core.PersonalityDefensive)
	assert.False(t, ok)
	assert.Nil(t, a)

	// other keys are unaffected
	_, ok = p.GetAgent(core.DifficultyHard, core.PersonalityBalanced)
	assert.True(t, ok)
}

func TestAcquireMatchesConfig(t *testing.T) {
	p := New(Options{})
	cfg := core.DefaultAgentConfig(core.DifficultyMedium, core.PersonalityBalanced)
	a, ok := p.Acquire(cfg)
	require.True(t, ok)
	p.Release(a)

	deeper := cfg
	deeper.SearchDepth = 5
	b, ok := p.Acquire(deeper)
	require.True(t, ok)
	assert.NotSame(t, a, b)
	assert.Equal(t, 5, b.Config().SearchDepth)

	invalid := cfg
	invalid.MaxTimeMs = 500
	_, ok = p.Acquire(invalid)
	assert.False(t, ok)
}

func TestFactoryError(t *testing.T) {
	p := New(Options{Factory: func(core.AgentConfig) (*engine.Agent, error) {
		return nil, errors.New("boom")
	}})
	_, ok := p.GetAgent(core.DifficultyEasy, core.PersonalityBalanced)
	assert.False(t, ok)
}

func TestGetRandomAgent(t *testing.T) {
	p := New(Options{MaxPerBucket: 1})
	seen := make(map[string]bool)
	for i := 0; i < len(core.AllKeys()); i++ {
		a, ok := p.GetRandomAgent()
		require.True(t, ok)
		seen[a.Config().Key().String()] = true
	}
	assert.Len(t, seen, len(core.AllKeys()))

	_, ok := p.GetRandomAgent()
	assert.False(t, ok, "every bucket is exhausted")
}

func TestConcurrentAcquireNeverSharesAgent(t *testing.T) {
	p := New(Options{MaxPerBucket: 4})
	var holders sync.Map
	var doubled, misses atomic.Int64

	var wg sync.WaitGroup
	for g := 0; g < 32; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			key := core.AllKeys()[g%3]
			for i := 0; i < 200; i++ {
				a, ok := p.GetAgent(key.Difficulty, key.Personality)
				if !ok {
					misses.Add(1)
					continue
				}
				if _, loaded := holders.LoadOrStore(a, g); loaded {
					doubled.Add(1)
				}
				holders.Delete(a)
				p.Release(a)
			}
		}(g)
	}
	wg.Wait()

	assert.Zero(t, doubled.Load())
	total, busy := p.Counts()
	assert.LessOrEqual(t, total, 3*4)
	assert.Zero(t, busy)
}

func TestPurgeIdleSkipsLentAgents(t *testing.T) {
	p := New(Options{})
	lent, _ := p.GetAgent(core.DifficultyEasy, core.PersonalityBalanced)
	free, _ := p.GetAgent(core.DifficultyEasy, core.PersonalityBalanced)
	p.Release(free)

	assert.Zero(t, p.PurgeIdle(time.Hour))
	assert.Equal(t, 1, p.PurgeIdle(0))
	assert.EqualValues(t, 1, p.Evicted())

	total, busy := p.Counts()
	assert.Equal(t, 1, total)
	assert.Equal(t, 1, busy)
	assert.True(t, p.Release(lent))
}

func TestStatsUtilization(t *testing.T) {
	p := New(Options{})
	a, _ := p.GetAgent(core.DifficultyHard, core.PersonalityTactical)
	b, _ := p.GetAgent(core.DifficultyHard, core.PersonalityTactical)
	p.Release(b)

	stats := p.Stats()
	require.Len(t, stats, len(core.AllKeys()))
	for _, s := range stats {
		if s.Key == "hard/tactical" {
			assert.Equal(t, 2, s.Total)
			assert.Equal(t, 1, s.Busy)
			assert.InDelta(t, 0.5, s.Utilization, 1e-9)
		} else {
			assert.Zero(t, s.Total)
		}
	}
	assert.Len(t, p.Agents(), 2)
	p.Release(a)
}
