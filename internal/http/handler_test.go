package http

import (
	"bytes"
	"encoding/json"
	"io"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arena/internal/board"
	"arena/internal/config"
	"arena/internal/core"
	"arena/internal/processor"
)

func newTestApp(t *testing.T) (*fiber.App, *processor.Processor) {
	t.Helper()
	proc, err := processor.New(config.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = proc.Close() })
	return NewFiberApp(proc, true, zerolog.Nop()), proc
}

func do(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func createMatch(t *testing.T, app *fiber.App) core.MatchResponse {
	t.Helper()
	resp, data := do(t, app, fiber.MethodPost, "/api/v1/matches", core.CreateMatchRequest{
		AgentA: core.AgentSpec{Difficulty: "easy", Personality: "aggressive"},
		AgentB: core.AgentSpec{Difficulty: "easy", Personality: "defensive"},
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(data))
	var m core.MatchResponse
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

func opening() (*core.BoardState, []core.Move) {
	b := board.NewStandard(rand.New(rand.NewPCG(1, 2)))
	return b, board.LegalMoves(b)
}

func TestHealthAndMetrics(t *testing.T) {
	app, _ := newTestApp(t)

	resp, data := do(t, app, fiber.MethodGet, "/health", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), `"storage":"disabled"`)

	createMatch(t, app)
	resp, data = do(t, app, fiber.MethodGet, "/metrics", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), "arena_matches_active 1")
}

func TestMatchFlow(t *testing.T) {
	app, _ := newTestApp(t)
	m := createMatch(t, app)
	assert.Equal(t, "pending", m.Status)
	assert.NotNil(t, m.Moves)

	b, legal := opening()
	resp, data := do(t, app, fiber.MethodPost, "/api/v1/matches/"+m.MatchID+"/moves",
		core.MatchMoveRequest{BoardState: *b, ValidMoves: legal})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(data))
	var mv core.MoveResponse
	require.NoError(t, json.Unmarshal(data, &mv))
	require.NotNil(t, mv.Move)
	assert.True(t, core.ContainsMove(legal, *mv.Move))
	assert.Equal(t, m.MatchID, mv.MatchID)

	resp, data = do(t, app, fiber.MethodGet, "/api/v1/matches/"+m.MatchID, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var got core.MatchResponse
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "active", got.Status)
	assert.Len(t, got.Moves, 1)

	resp, data = do(t, app, fiber.MethodPost, "/api/v1/matches/"+m.MatchID+"/end",
		core.EndMatchRequest{Result: "completed", Winner: 1, Reason: "resign"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(data))
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "completed", got.Status)
	require.NotNil(t, got.Result)
	assert.Equal(t, core.PlayerOne, got.Result.Winner)

	resp, _ = do(t, app, fiber.MethodPost, "/api/v1/matches/"+m.MatchID+"/end",
		core.EndMatchRequest{Result: "failed"})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestMatchMoveNoMove(t *testing.T) {
	app, _ := newTestApp(t)
	m := createMatch(t, app)
	b, _ := opening()

	resp, data := do(t, app, fiber.MethodPost, "/api/v1/matches/"+m.MatchID+"/moves",
		core.MatchMoveRequest{BoardState: *b, ValidMoves: []core.Move{}})
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, string(data), core.ErrNoMove)
}

func TestLongPollReturnsAfterMove(t *testing.T) {
	app, proc := newTestApp(t)
	m := createMatch(t, app)
	b, legal := opening()

	go func() {
		time.Sleep(50 * time.Millisecond)
		_, _ = proc.GetMove(m.MatchID, b, legal)
	}()

	resp, data := do(t, app, fiber.MethodGet, "/api/v1/matches/"+m.MatchID+"?wait=true&moveCount=0", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var got core.MatchResponse
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Len(t, got.Moves, 1)

	// stale move count answers at once
	resp, data = do(t, app, fiber.MethodGet, "/api/v1/matches/"+m.MatchID+"?wait=true&moveCount=0", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Len(t, got.Moves, 1)
}

func TestHumanDecision(t *testing.T) {
	app, _ := newTestApp(t)
	m := createMatch(t, app)

	var fr core.FraudResponse
	for range 3 {
		resp, data := do(t, app, fiber.MethodPost, "/api/v1/matches/"+m.MatchID+"/decisions",
			core.HumanDecisionRequest{Player: 2, LatencyMs: 1})
		require.Equal(t, fiber.StatusOK, resp.StatusCode, string(data))
		require.NoError(t, json.Unmarshal(data, &fr))
	}
	assert.Equal(t, core.PlayerTwo, fr.Player)
	assert.True(t, fr.Alert)
}

func TestQuickMoveAndBoard(t *testing.T) {
	app, _ := newTestApp(t)
	b, legal := opening()

	resp, data := do(t, app, fiber.MethodPost, "/api/v1/move", core.MoveRequest{
		BoardState:  *b,
		ValidMoves:  legal,
		Difficulty:  "medium",
		Personality: "balanced",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(data))
	var mv core.MoveResponse
	require.NoError(t, json.Unmarshal(data, &mv))
	require.NotNil(t, mv.Move)
	assert.True(t, core.ContainsMove(legal, *mv.Move))
	assert.Less(t, mv.LatencyMs, core.PlatformCeilingMs)

	resp, data = do(t, app, fiber.MethodPost, "/api/v1/board", core.RenderBoardRequest{BoardState: *b})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var br core.BoardResponse
	require.NoError(t, json.Unmarshal(data, &br))
	assert.Equal(t, board.ToASCII(b), br.Board)
}

func TestMetadataRoutes(t *testing.T) {
	app, _ := newTestApp(t)

	resp, data := do(t, app, fiber.MethodGet, "/api/v1/agents", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var agents []core.AgentTypeInfo
	require.NoError(t, json.Unmarshal(data, &agents))
	assert.Len(t, agents, 3)

	resp, data = do(t, app, fiber.MethodGet, "/api/v1/personalities", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var pers []core.PersonalityInfo
	require.NoError(t, json.Unmarshal(data, &pers))
	assert.Len(t, pers, 4)

	resp, data = do(t, app, fiber.MethodGet, "/api/v1/report", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var rep processor.Report
	require.NoError(t, json.Unmarshal(data, &rep))
	assert.Len(t, rep.Pools, len(core.AllKeys()))
}

func TestStressRoute(t *testing.T) {
	app, _ := newTestApp(t)
	resp, data := do(t, app, fiber.MethodPost, "/api/v1/stress",
		core.StressTestRequest{ConcurrentGames: 4, MovesPerGame: 1})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(data))
	var rep processor.StressReport
	require.NoError(t, json.Unmarshal(data, &rep))
	assert.Equal(t, 4, rep.Games)
	assert.Equal(t, 4, rep.Completed+rep.Failed+rep.TimedOut)
}

func TestRequestErrors(t *testing.T) {
	app, _ := newTestApp(t)
	missing := "/api/v1/matches/00000000-0000-0000-0000-000000000000"

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"bad match id", fiber.MethodGet, "/api/v1/matches/not-a-uuid", nil, fiber.StatusBadRequest, core.ErrInvalidRequest},
		{"unknown match", fiber.MethodGet, missing, nil, fiber.StatusNotFound, core.ErrMatchNotFound},
		{"end unknown match", fiber.MethodPost, missing + "/end", core.EndMatchRequest{Result: "completed"}, fiber.StatusNotFound, core.ErrMatchNotFound},
		{"bad difficulty", fiber.MethodPost, "/api/v1/matches", core.CreateMatchRequest{
			AgentA: core.AgentSpec{Difficulty: "expert", Personality: "balanced"},
			AgentB: core.AgentSpec{Difficulty: "easy", Personality: "balanced"},
		}, fiber.StatusBadRequest, core.ErrInvalidRequest},
		{"bad end result", fiber.MethodPost, missing + "/end", core.EndMatchRequest{Result: "won"}, fiber.StatusBadRequest, core.ErrInvalidRequest},
		{"bad player", fiber.MethodPost, missing + "/decisions", core.HumanDecisionRequest{Player: 3}, fiber.StatusBadRequest, core.ErrInvalidRequest},
		{"stress too large", fiber.MethodPost, "/api/v1/stress", core.StressTestRequest{ConcurrentGames: 5000, MovesPerGame: 1}, fiber.StatusBadRequest, core.ErrInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, data := do(t, app, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			var er core.ErrorResponse
			require.NoError(t, json.Unmarshal(data, &er))
			assert.Equal(t, tt.code, er.Code)
		})
	}
}

func TestContentType(t *testing.T) {
	app, _ := newTestApp(t)
	req := httptest.NewRequest(fiber.MethodPost, "/api/v1/matches", strings.NewReader("difficulty=easy"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnsupportedMediaType, resp.StatusCode)

	req = httptest.NewRequest(fiber.MethodPost, "/api/v1/matches", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
