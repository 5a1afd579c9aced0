// FILE: internal/http/handler.go
package http

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"arena/internal/core"
	"arena/internal/processor"
)

const rateLimitRate = 50 // req/sec

// HTTPHandler handles HTTP requests and routes them to the processor
type HTTPHandler struct {
	proc *processor.Processor
	log  zerolog.Logger
}

func NewHTTPHandler(proc *processor.Processor, log zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{proc: proc, log: log}
}

func NewFiberApp(proc *processor.Processor, devMode bool, log zerolog.Logger) *fiber.App {
	h := NewHTTPHandler(proc, log.With().Str("component", "http").Logger())

	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second, // above the long-poll window
		IdleTimeout:  60 * time.Second,
	})

	// Global middleware (order matters)
	app.Use(recover.New())
	app.Use(requestLogger(h.log))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Health and metrics (no rate limit)
	app.Get("/health", h.Health)
	app.Get("/metrics", adaptor.HTTPHandler(proc.Metrics().Handler()))

	api := app.Group("/api/v1")

	maxReq := rateLimitRate
	if devMode {
		maxReq = rateLimitRate * 20
	}
	api.Use(limiter.New(limiter.Config{
		Max:        maxReq,
		Expiration: 1 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			if xff := c.Get("X-Forwarded-For"); xff != "" {
				if idx := strings.Index(xff, ","); idx != -1 {
					return strings.TrimSpace(xff[:idx])
				}
				return xff
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(core.ErrorResponse{
				Error:   "rate limit exceeded",
				Code:    core.ErrRateLimitExceeded,
				Details: fmt.Sprintf("%d requests per second allowed", maxReq),
			})
		},
	}))
	api.Use(contentTypeValidator)
	api.Use(validationMiddleware)

	api.Get("/agents", h.GetAgents)
	api.Get("/personalities", h.GetPersonalities)
	api.Get("/report", h.GetReport)
	api.Post("/move", h.QuickMove)
	api.Post("/board", h.RenderBoard)
	api.Post("/stress", h.StressTest)

	api.Post("/matches", h.CreateMatch)
	api.Get("/matches/:matchId", h.GetMatch)
	api.Post("/matches/:matchId/moves", h.MatchMove)
	api.Post("/matches/:matchId/end", h.EndMatch)
	api.Post("/matches/:matchId/decisions", h.HumanDecision)

	return app
}

// Health check endpoint with storage status
func (h *HTTPHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"time":    time.Now().Unix(),
		"storage": h.proc.Service().StorageHealth(),
	})
}

func (h *HTTPHandler) GetAgents(c *fiber.Ctx) error {
	return c.JSON(h.proc.AgentList())
}

func (h *HTTPHandler) GetPersonalities(c *fiber.Ctx) error {
	return c.JSON(h.proc.Personalities())
}

// GetReport returns the orchestrator performance report
func (h *HTTPHandler) GetReport(c *fiber.Ctx) error {
	return c.JSON(h.proc.Report())
}

// CreateMatch borrows two agents and opens a session
func (h *HTTPHandler) CreateMatch(c *fiber.Ctx) error {
	req, err := validated[core.CreateMatchRequest](c)
	if err != nil {
		return err
	}
	resp := h.proc.Execute(processor.NewCreateMatchCommand(req))
	if !resp.Success {
		return c.Status(statusFor(resp.Error.Code)).JSON(resp.Error)
	}
	return c.Status(fiber.StatusCreated).JSON(resp.Data)
}

// GetMatch returns a match, optionally long-polling until its move count
// differs from the moveCount query parameter.
func (h *HTTPHandler) GetMatch(c *fiber.Ctx) error {
	matchID := c.Params("matchId")
	if !isValidUUID(matchID) {
		return invalidMatchID(c)
	}

	if c.Query("wait", "false") != "true" {
		return h.sendMatch(c, matchID)
	}

	moveCount, err := strconv.Atoi(c.Query("moveCount", "-1"))
	if err != nil {
		moveCount = -1
	}

	snap, ok := h.proc.Match(matchID)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(core.ErrorResponse{
			Error: "match not found",
			Code:  core.ErrMatchNotFound,
		})
	}
	if moveCount != len(snap.Moves) || snap.Status.IsTerminal() {
		return c.JSON(snap.Response())
	}

	notify, cancel := h.proc.Service().RegisterWait(matchID, moveCount)
	defer cancel()

	// a move may have landed between the snapshot and the registration
	if snap, ok = h.proc.Match(matchID); ok && (moveCount != len(snap.Moves) || snap.Status.IsTerminal()) {
		return c.JSON(snap.Response())
	}

	ctx := c.Context()
	select {
	case <-notify:
		return h.sendMatch(c, matchID)
	case <-ctx.Done():
		return nil
	}
}

func (h *HTTPHandler) sendMatch(c *fiber.Ctx, matchID string) error {
	resp := h.proc.Execute(processor.NewGetMatchCommand(matchID))
	if !resp.Success {
		return c.Status(fiber.StatusNotFound).JSON(resp.Error)
	}
	return c.JSON(resp.Data)
}

// MatchMove asks the side to move for a decision
func (h *HTTPHandler) MatchMove(c *fiber.Ctx) error {
	matchID := c.Params("matchId")
	if !isValidUUID(matchID) {
		return invalidMatchID(c)
	}
	req, err := validated[core.MatchMoveRequest](c)
	if err != nil {
		return err
	}
	resp := h.proc.Execute(processor.NewMatchMoveCommand(matchID, req))
	if !resp.Success {
		return c.Status(statusFor(resp.Error.Code)).JSON(resp.Error)
	}
	return c.JSON(resp.Data)
}

// EndMatch ends a session; ending an ended match returns it unchanged
func (h *HTTPHandler) EndMatch(c *fiber.Ctx) error {
	matchID := c.Params("matchId")
	if !isValidUUID(matchID) {
		return invalidMatchID(c)
	}
	req, err := validated[core.EndMatchRequest](c)
	if err != nil {
		return err
	}
	resp := h.proc.Execute(processor.NewEndMatchCommand(matchID, req))
	if !resp.Success {
		return c.Status(statusFor(resp.Error.Code)).JSON(resp.Error)
	}
	return c.JSON(resp.Data)
}

// HumanDecision records a human decision latency for fraud scoring
func (h *HTTPHandler) HumanDecision(c *fiber.Ctx) error {
	matchID := c.Params("matchId")
	if !isValidUUID(matchID) {
		return invalidMatchID(c)
	}
	req, err := validated[core.HumanDecisionRequest](c)
	if err != nil {
		return err
	}
	resp := h.proc.Execute(processor.NewHumanDecisionCommand(matchID, req))
	if !resp.Success {
		return c.Status(statusFor(resp.Error.Code)).JSON(resp.Error)
	}
	return c.JSON(resp.Data)
}

// QuickMove answers a stateless move request
func (h *HTTPHandler) QuickMove(c *fiber.Ctx) error {
	req, err := validated[core.MoveRequest](c)
	if err != nil {
		return err
	}
	resp := h.proc.Execute(processor.NewQuickMoveCommand(req))
	if !resp.Success {
		return c.Status(statusFor(resp.Error.Code)).JSON(resp.Error)
	}
	return c.JSON(resp.Data)
}

// RenderBoard returns the ASCII representation of a board
func (h *HTTPHandler) RenderBoard(c *fiber.Ctx) error {
	req, err := validated[core.RenderBoardRequest](c)
	if err != nil {
		return err
	}
	resp := h.proc.Execute(processor.NewRenderBoardCommand(req))
	if !resp.Success {
		return c.Status(statusFor(resp.Error.Code)).JSON(resp.Error)
	}
	return c.JSON(resp.Data)
}

// StressTest runs concurrent self-play matches and reports on them
func (h *HTTPHandler) StressTest(c *fiber.Ctx) error {
	req, err := validated[core.StressTestRequest](c)
	if err != nil {
		return err
	}
	h.log.Info().Int("games", req.ConcurrentGames).Int("moves", req.MovesPerGame).Msg("stress test requested")
	resp := h.proc.Execute(processor.NewStressTestCommand(c.UserContext(), req))
	if !resp.Success {
		return c.Status(statusFor(resp.Error.Code)).JSON(resp.Error)
	}
	return c.JSON(resp.Data)
}

// statusFor maps processor error codes to HTTP statuses
func statusFor(code string) int {
	switch code {
	case core.ErrMatchNotFound:
		return fiber.StatusNotFound
	case core.ErrNoMove:
		return fiber.StatusUnprocessableEntity
	case core.ErrResourceLimit:
		return fiber.StatusServiceUnavailable
	case core.ErrInternalError:
		return fiber.StatusInternalServerError
	default:
		return fiber.StatusBadRequest
	}
}

func invalidMatchID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
		Error:   "invalid match ID format",
		Code:    core.ErrInvalidRequest,
		Details: "match ID must be a valid UUID",
	})
}
