// FILE: internal/client/commands/match.go
package commands

import (
	"fmt"
	"math/rand/v2"
	"strconv"

	"arena/internal/board"
	"arena/internal/client/display"
	"arena/internal/core"
)

func (r *Registry) registerMatchCommands() {
	r.Register(&Command{
		Name:        "new",
		Group:       groupMatch,
		ShortName:   "n",
		Description: "Create a match on a fresh board",
		Usage:       "new [difficultyA personalityA difficultyB personalityB]",
		Handler:     newMatchHandler,
	})

	r.Register(&Command{
		Name:        "join",
		Group:       groupMatch,
		ShortName:   "j",
		Description: "Set current match ID",
		Usage:       "join <matchId>",
		Handler:     joinMatchHandler,
	})

	r.Register(&Command{
		Name:        "step",
		Group:       groupMatch,
		ShortName:   "m",
		Description: "Ask the side to move for a decision and apply it",
		Usage:       "step",
		Handler:     stepHandler,
	})

	r.Register(&Command{
		Name:        "auto",
		Group:       groupMatch,
		ShortName:   "a",
		Description: "Play several decisions in a row",
		Usage:       "auto [count]",
		Handler:     autoHandler,
	})

	r.Register(&Command{
		Name:        "show",
		Group:       groupMatch,
		ShortName:   "h",
		Description: "Show board and match state",
		Usage:       "show",
		Handler:     showBoardHandler,
	})

	r.Register(&Command{
		Name:        "state",
		Group:       groupMatch,
		ShortName:   "s",
		Description: "Show raw match JSON",
		Usage:       "state",
		Handler:     matchStateHandler,
	})

	r.Register(&Command{
		Name:        "end",
		Group:       groupMatch,
		ShortName:   "e",
		Description: "End the current match",
		Usage:       "end [completed|failed|timed_out] [winner]",
		Handler:     endMatchHandler,
	})

	r.Register(&Command{
		Name:        "human",
		Group:       groupMatch,
		ShortName:   "u",
		Description: "Submit a human decision latency for fraud scoring",
		Usage:       "human <player 1|2> <latencyMs>",
		Handler:     humanDecisionHandler,
	})

	r.Register(&Command{
		Name:        "poll",
		Group:       groupMatch,
		ShortName:   "p",
		Description: "Long-poll for match updates",
		Usage:       "poll",
		Handler:     pollHandler,
	})

	r.Register(&Command{
		Name:        "quick",
		Group:       groupService,
		ShortName:   "q",
		Description: "Stateless move for the current board",
		Usage:       "quick [difficulty] [personality]",
		Handler:     quickMoveHandler,
	})
}

func newMatchHandler(s Session, args []string) error {
	req := core.CreateMatchRequest{
		AgentA: core.AgentSpec{Difficulty: "medium", Personality: "balanced"},
		AgentB: core.AgentSpec{Difficulty: "medium", Personality: "aggressive"},
	}
	switch len(args) {
	case 0:
	case 4:
		req.AgentA = core.AgentSpec{Difficulty: args[0], Personality: args[1]}
		req.AgentB = core.AgentSpec{Difficulty: args[2], Personality: args[3]}
	default:
		return fmt.Errorf("usage: new [difficultyA personalityA difficultyB personalityB]")
	}

	resp, err := s.GetClient().CreateMatch(req)
	if err != nil {
		return err
	}
	seed := s.NextSeed()
	s.SetCurrentMatch(resp.MatchID)
	s.SetMatchState(resp)
	s.SetBoard(board.NewStandard(rand.New(rand.NewPCG(seed, seed^0x5bd1e995))))

	fmt.Printf("%sMatch created: %s%s\n", display.Green, resp.MatchID, display.Reset)
	fmt.Printf("  A: %s (%s)\n", resp.AgentA.ID, resp.AgentA.Kind)
	fmt.Printf("  B: %s (%s)\n", resp.AgentB.ID, resp.AgentB.Kind)
	return nil
}

func joinMatchHandler(s Session, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: join <matchId>")
	}
	resp, err := s.GetClient().GetMatch(args[0])
	if err != nil {
		return err
	}
	s.SetCurrentMatch(resp.MatchID)
	s.SetMatchState(resp)
	if s.GetBoard() == nil {
		seed := s.NextSeed()
		s.SetBoard(board.NewStandard(rand.New(rand.NewPCG(seed, seed^0x5bd1e995))))
	}
	fmt.Printf("%sJoined match: %s (%s, %d moves)%s\n", display.Green, resp.MatchID, resp.Status, len(resp.Moves), display.Reset)
	return nil
}

func requireMatch(s Session) (string, error) {
	id := s.GetCurrentMatch()
	if id == "" {
		return "", fmt.Errorf("no current match; use 'new' or 'join'")
	}
	return id, nil
}

// step requests one decision and applies it to the local board. It returns
// false when the side to move has no legal moves.
func step(s Session) (bool, error) {
	id, err := requireMatch(s)
	if err != nil {
		return false, err
	}
	b := s.GetBoard()
	legal := board.LegalMoves(b)
	if len(legal) == 0 {
		fmt.Printf("%sSide %s has no legal moves%s\n", display.Yellow, display.ColorForPlayer(b.CurrentPlayer), display.Reset)
		return false, nil
	}

	resp, err := s.GetClient().RequestMove(id, b, legal)
	if err != nil {
		return false, err
	}
	mover := b.CurrentPlayer
	s.SetBoard(board.Apply(b, *resp.Move))
	fmt.Printf("%s %s %s(%.2fms)%s\n", display.ColorForPlayer(mover), resp.Move.String(), display.Cyan, resp.LatencyMs, display.Reset)
	return true, nil
}

func stepHandler(s Session, args []string) error {
	_, err := step(s)
	return err
}

func autoHandler(s Session, args []string) error {
	count := 10
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return fmt.Errorf("invalid count: %s", args[0])
		}
		count = n
	}
	for i := 0; i < count; i++ {
		more, err := step(s)
		if err != nil {
			return err
		}
		if !more {
			break
		}
	}
	return nil
}

func showBoardHandler(s Session, args []string) error {
	b := s.GetBoard()
	if b == nil {
		return fmt.Errorf("no board; use 'new'")
	}
	resp, err := s.GetClient().RenderBoard(b)
	if err != nil {
		return err
	}
	fmt.Println()
	display.RenderBoard(resp.Board)

	eval := board.EvaluateFor(b, core.PlayerOne)
	fmt.Printf("\nTo move: %s  Move: %d  Phase: %s  Eval(One): %+.0f\n",
		display.ColorForPlayer(b.CurrentPlayer), b.MoveNumber, b.Phase, eval)

	if id := s.GetCurrentMatch(); id != "" {
		m, err := s.GetClient().GetMatch(id)
		if err != nil {
			return err
		}
		s.SetMatchState(m)
		fmt.Printf("Match: %s  Status: %s  Logged moves: %d\n", m.MatchID, m.Status, len(m.Moves))
	}
	return nil
}

func matchStateHandler(s Session, args []string) error {
	id, err := requireMatch(s)
	if err != nil {
		return err
	}
	resp, err := s.GetClient().GetMatch(id)
	if err != nil {
		return err
	}
	s.SetMatchState(resp)
	fmt.Printf("%sMatch State:%s\n", display.Cyan, display.Reset)
	display.PrettyPrintJSON(resp)
	return nil
}

func endMatchHandler(s Session, args []string) error {
	id, err := requireMatch(s)
	if err != nil {
		return err
	}
	req := core.EndMatchRequest{Result: "completed", Reason: "ended from client"}
	if len(args) > 0 {
		req.Result = args[0]
	}
	if len(args) > 1 {
		w, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid winner: %s", args[1])
		}
		req.Winner = w
	}

	resp, err := s.GetClient().EndMatch(id, req)
	if err != nil {
		return err
	}
	s.SetMatchState(resp)
	fmt.Printf("%sMatch %s: %s%s\n", display.Green, resp.MatchID, resp.Status, display.Reset)
	return nil
}

func humanDecisionHandler(s Session, args []string) error {
	id, err := requireMatch(s)
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return fmt.Errorf("usage: human <player 1|2> <latencyMs>")
	}
	player, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid player: %s", args[0])
	}
	latency, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid latency: %s", args[1])
	}

	resp, err := s.GetClient().HumanDecision(id, core.HumanDecisionRequest{Player: player, LatencyMs: latency})
	if err != nil {
		return err
	}
	color := display.Green
	if resp.Alert {
		color = display.Red
	}
	fmt.Printf("%sFraud score for %d: %.3f (alert: %t)%s\n", color, resp.Player, resp.FraudScore, resp.Alert, display.Reset)
	return nil
}

func pollHandler(s Session, args []string) error {
	id, err := requireMatch(s)
	if err != nil {
		return err
	}
	moveCount := 0
	if m := s.GetMatchState(); m != nil {
		moveCount = len(m.Moves)
	}

	fmt.Printf("%sWaiting for a move count other than %d%s\n", display.Cyan, moveCount, display.Reset)
	fmt.Printf("%sThis may take up to 25 seconds%s\n", display.Cyan, display.Reset)

	resp, err := s.GetClient().GetMatchWithPoll(id, moveCount)
	if err != nil {
		return err
	}
	s.SetMatchState(resp)
	if len(resp.Moves) != moveCount {
		fmt.Printf("%sMatch updated: %d moves%s\n", display.Green, len(resp.Moves), display.Reset)
	} else {
		fmt.Printf("%sNo updates (timeout)%s\n", display.Yellow, display.Reset)
	}
	return nil
}

func quickMoveHandler(s Session, args []string) error {
	b := s.GetBoard()
	if b == nil {
		seed := s.NextSeed()
		b = board.NewStandard(rand.New(rand.NewPCG(seed, seed^0x5bd1e995)))
		s.SetBoard(b)
	}
	req := core.MoveRequest{
		BoardState:  *b,
		ValidMoves:  board.LegalMoves(b),
		Difficulty:  "easy",
		Personality: "balanced",
	}
	if len(args) > 0 {
		req.Difficulty = args[0]
	}
	if len(args) > 1 {
		req.Personality = args[1]
	}

	resp, err := s.GetClient().QuickMove(req)
	if err != nil {
		return err
	}
	fmt.Printf("%s%s suggests %s (%.2fms)%s\n", display.Magenta, req.Difficulty, resp.Move.String(), resp.LatencyMs, display.Reset)
	return nil
}
