package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arena/internal/core"
)

func TestCreateMatchRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/matches", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req core.CreateMatchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "hard", req.AgentA.Difficulty)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(core.MatchResponse{MatchID: "m1", Status: "pending"})
	}))
	defer srv.Close()

	c := New(srv.URL + "/")
	resp, err := c.CreateMatch(core.CreateMatchRequest{
		AgentA: core.AgentSpec{Difficulty: "hard", Personality: "tactical"},
		AgentB: core.AgentSpec{Difficulty: "easy", Personality: "balanced"},
	})
	require.NoError(t, err)
	assert.Equal(t, "m1", resp.MatchID)
}

func TestErrorResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(core.ErrorResponse{Error: "match not found", Code: core.ErrMatchNotFound})
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.GetMatch("missing")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, core.ErrMatchNotFound, apiErr.Code)
}

func TestPollQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("wait"))
		assert.Equal(t, "3", r.URL.Query().Get("moveCount"))
		_, _ = io.WriteString(w, `{"matchId":"m2","status":"active","moves":[]}`)
	}))
	defer srv.Close()

	resp, err := New(srv.URL).GetMatchWithPoll("m2", 3)
	require.NoError(t, err)
	assert.Equal(t, "active", resp.Status)
}
