// FILE: internal/processor/command.go
package processor

import (
	"context"

	"arena/internal/board"
	"arena/internal/core"
)

// CommandType defines the type of command being executed
type CommandType int

const (
	CmdCreateMatch CommandType = iota
	CmdGetMatch
	CmdMatchMove
	CmdEndMatch
	CmdHumanDecision
	CmdQuickMove
	CmdRenderBoard
	CmdStressTest
)

// Command is a unified structure for all API-facing operations
type Command struct {
	Type    CommandType
	MatchID string
	Args    any
	Ctx     context.Context // only read by long-running commands
}

// ProcessorResponse wraps the response with metadata
type ProcessorResponse struct {
	Success bool                `json:"success"`
	Data    any                 `json:"data,omitempty"`
	Error   *core.ErrorResponse `json:"error,omitempty"`
}

func NewCreateMatchCommand(req core.CreateMatchRequest) Command {
	return Command{Type: CmdCreateMatch, Args: req}
}

func NewGetMatchCommand(matchID string) Command {
	return Command{Type: CmdGetMatch, MatchID: matchID}
}

func NewMatchMoveCommand(matchID string, req core.MatchMoveRequest) Command {
	return Command{Type: CmdMatchMove, MatchID: matchID, Args: req}
}

func NewEndMatchCommand(matchID string, req core.EndMatchRequest) Command {
	return Command{Type: CmdEndMatch, MatchID: matchID, Args: req}
}

func NewHumanDecisionCommand(matchID string, req core.HumanDecisionRequest) Command {
	return Command{Type: CmdHumanDecision, MatchID: matchID, Args: req}
}

func NewQuickMoveCommand(req core.MoveRequest) Command {
	return Command{Type: CmdQuickMove, Args: req}
}

func NewRenderBoardCommand(req core.RenderBoardRequest) Command {
	return Command{Type: CmdRenderBoard, Args: req}
}

func NewStressTestCommand(ctx context.Context, req core.StressTestRequest) Command {
	return Command{Type: CmdStressTest, Args: req, Ctx: ctx}
}

// Execute runs one command and never panics on bad arguments
func (p *Processor) Execute(cmd Command) ProcessorResponse {
	switch cmd.Type {
	case CmdCreateMatch:
		return p.handleCreateMatch(cmd)
	case CmdGetMatch:
		return p.handleGetMatch(cmd)
	case CmdMatchMove:
		return p.handleMatchMove(cmd)
	case CmdEndMatch:
		return p.handleEndMatch(cmd)
	case CmdHumanDecision:
		return p.handleHumanDecision(cmd)
	case CmdQuickMove:
		return p.handleQuickMove(cmd)
	case CmdRenderBoard:
		return p.handleRenderBoard(cmd)
	case CmdStressTest:
		return p.handleStressTest(cmd)
	default:
		return p.errorResponse("unknown command", core.ErrInvalidRequest)
	}
}

func (p *Processor) handleCreateMatch(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.CreateMatchRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}
	cfgA, okA := p.ConfigFor(args.AgentA)
	cfgB, okB := p.ConfigFor(args.AgentB)
	if !okA || !okB {
		return p.errorResponse("invalid agent configuration", core.ErrInvalidConfig)
	}

	id, ok := p.CreateMatch(cfgA, cfgB)
	if !ok {
		return p.errorResponse("no agent available", core.ErrResourceLimit)
	}
	return p.handleGetMatch(Command{Type: CmdGetMatch, MatchID: id})
}

func (p *Processor) handleGetMatch(cmd Command) ProcessorResponse {
	snap, ok := p.Match(cmd.MatchID)
	if !ok {
		return p.errorResponse("match not found", core.ErrMatchNotFound)
	}
	return ProcessorResponse{Success: true, Data: snap.Response()}
}

func (p *Processor) handleMatchMove(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.MatchMoveRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}
	if _, ok := p.svc.ActiveMatch(cmd.MatchID); !ok {
		return p.errorResponse("match not found", core.ErrMatchNotFound)
	}

	entry, ok := p.getMove(cmd.MatchID, &args.BoardState, args.ValidMoves)
	if !ok {
		return p.errorResponse("no move available", core.ErrNoMove)
	}
	return ProcessorResponse{
		Success: true,
		Data: core.MoveResponse{
			MatchID:   cmd.MatchID,
			Move:      &entry.Move,
			LatencyMs: entry.LatencyMs,
		},
	}
}

func (p *Processor) handleEndMatch(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.EndMatchRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}
	status, ok := core.ParseStatus(args.Result)
	if !ok {
		return p.errorResponse("invalid result", core.ErrInvalidRequest)
	}
	if _, ok := p.svc.GetMatch(cmd.MatchID); !ok {
		return p.errorResponse("match not found", core.ErrMatchNotFound)
	}

	// ending an ended match is a no-op and still reports the archived view
	p.EndMatch(cmd.MatchID, core.Result{
		Status: status,
		Winner: core.Player(args.Winner),
		Reason: args.Reason,
	})
	return p.handleGetMatch(cmd)
}

func (p *Processor) handleHumanDecision(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.HumanDecisionRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}
	resp, ok := p.RecordHumanDecision(cmd.MatchID, core.Player(args.Player), args.LatencyMs)
	if !ok {
		return p.errorResponse("match not found", core.ErrMatchNotFound)
	}
	return ProcessorResponse{Success: true, Data: resp}
}

func (p *Processor) handleQuickMove(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.MoveRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}
	d, okD := core.ParseDifficulty(args.Difficulty)
	pers, okP := core.ParsePersonality(args.Personality)
	if !okD || !okP {
		return p.errorResponse("unknown difficulty or personality", core.ErrInvalidRequest)
	}

	mv, latency, ok := p.QuickMove(d, pers, &args.BoardState, args.ValidMoves)
	if !ok {
		return p.errorResponse("no move available", core.ErrNoMove)
	}
	return ProcessorResponse{
		Success: true,
		Data:    core.MoveResponse{Move: &mv, LatencyMs: latency},
	}
}

func (p *Processor) handleRenderBoard(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.RenderBoardRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}
	return ProcessorResponse{
		Success: true,
		Data:    core.BoardResponse{Board: board.ToASCII(&args.BoardState)},
	}
}

func (p *Processor) handleStressTest(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.StressTestRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}
	ctx := cmd.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	return ProcessorResponse{
		Success: true,
		Data:    p.RunStressTest(ctx, args.ConcurrentGames, args.MovesPerGame),
	}
}

func (p *Processor) errorResponse(message, code string) ProcessorResponse {
	return ProcessorResponse{
		Success: false,
		Error: &core.ErrorResponse{
			Error: message,
			Code:  code,
		},
	}
}
