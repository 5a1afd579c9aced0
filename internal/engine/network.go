package engine

import (
	"errors"
	"fmt"
	"math"

	"arena/internal/board"
	"arena/internal/core"
)

// policyTolerance bounds how far a policy may sum away from 1
const policyTolerance = 0.01

// Network is an inference-only policy and value function. Policy returns one
// probability per move; Value returns a position estimate in [-1,1] for the
// side the features were computed for. Implementations must be safe for
// concurrent use.
type Network interface {
	Policy(b *core.BoardState, moves []core.Move) ([]float64, error)
	Value(f board.Features) (float64, error)
}

// LinearNetwork is a fixed-weight linear model over hand-picked move features
// with a softmax policy head and a tanh value head.
type LinearNetwork struct{}

const (
	weightCapture      = 1.2
	weightCaptureValue = 2.0
	weightAdvance      = 0.4
	weightCentrality   = 0.6
	weightMarshalMove  = 0.8
	valueScale         = 800.0
)

var _ Network = LinearNetwork{}

func (LinearNetwork) Policy(b *core.BoardState, moves []core.Move) ([]float64, error) {
	pos, ok := board.NewPosition(b)
	if !ok {
		return nil, errMalformedBoard
	}
	if len(moves) == 0 {
		return nil, nil
	}
	forward := 1.0
	if pos.ToMove() == core.PlayerTwo {
		forward = -1
	}
	logits := make([]float64, len(moves))
	for i, m := range moves {
		x := 0.0
		if m.IsCapture {
			x += weightCapture + weightCaptureValue*board.Value(m.CapturedPiece)/1000
		}
		x += weightAdvance * forward * float64(m.To.Row-m.From.Row) / float64(pos.Height())
		x += weightCentrality * (pos.Centrality(m.To) - pos.Centrality(m.From))
		if m.Piece == core.PieceMarshal {
			x -= weightMarshalMove
		}
		logits[i] = x
	}
	return softmax(logits), nil
}

func (LinearNetwork) Value(f board.Features) (float64, error) {
	return math.Tanh(f.Total() / valueScale), nil
}

func softmax(logits []float64) []float64 {
	maxLogit := math.Inf(-1)
	for _, x := range logits {
		maxLogit = math.Max(maxLogit, x)
	}
	out := make([]float64, len(logits))
	sum := 0.0
	for i, x := range logits {
		out[i] = math.Exp(x - maxLogit)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// validatePolicy checks a policy for n moves: one finite non-negative
// probability per move summing to 1 within policyTolerance.
func validatePolicy(policy []float64, n int) error {
	if len(policy) != n {
		return fmt.Errorf("policy has %d entries for %d moves", len(policy), n)
	}
	sum := 0.0
	for i, p := range policy {
		if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
			return fmt.Errorf("policy entry %d is %v", i, p)
		}
		sum += p
	}
	if math.Abs(sum-1) > policyTolerance {
		return fmt.Errorf("policy sums to %.4f", sum)
	}
	return nil
}

var errBadValue = errors.New("network value out of range")

// checkValue rejects value estimates that are not finite or outside [-1,1]
func checkValue(v float64) error {
	if math.IsNaN(v) || v < -1 || v > 1 {
		return fmt.Errorf("%w: %v", errBadValue, v)
	}
	return nil
}
