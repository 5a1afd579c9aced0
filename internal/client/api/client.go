// FILE: internal/client/api/client.go
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"arena/internal/client/display"
	"arena/internal/core"
)

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Verbose    bool
	Out        io.Writer
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status  string `json:"status"`
	Time    int64  `json:"time"`
	Storage string `json:"storage,omitempty"`
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		Out: io.Discard,
	}
}

func (c *Client) SetVerbose(v bool) {
	c.Verbose = v
}

// SetBaseURL updates the API base URL for the client
func (c *Client) SetBaseURL(url string) {
	c.BaseURL = strings.TrimRight(url, "/")
}

// APIError is a non-2xx response
type APIError struct {
	Status int
	core.ErrorResponse
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("request failed with status %d: %s (%s)", e.Status, e.ErrorResponse.Error, e.Code)
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

func (c *Client) doRequest(method, path string, body any, result any) error {
	url := c.BaseURL + path

	var bodyReader io.Reader
	var bodyData []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		bodyData = data
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	fmt.Fprintf(c.Out, "\n%s[API] %s %s%s\n", display.Blue, method, path, display.Reset)
	if c.Verbose && len(bodyData) > 0 {
		var pretty bytes.Buffer
		if json.Indent(&pretty, bodyData, "", "  ") == nil {
			fmt.Fprintf(c.Out, "%sRequest Body:%s\n%s\n", display.Cyan, display.Reset, pretty.String())
		}
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		fmt.Fprintf(c.Out, "%s[ERROR] %s%s\n", display.Red, err.Error(), display.Reset)
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	statusColor := display.Green
	if resp.StatusCode >= 400 {
		statusColor = display.Red
	}
	fmt.Fprintf(c.Out, "%s[%d %s]%s\n", statusColor, resp.StatusCode, http.StatusText(resp.StatusCode), display.Reset)

	if c.Verbose && len(respBody) > 0 {
		var pretty bytes.Buffer
		if json.Indent(&pretty, respBody, "", "  ") == nil {
			fmt.Fprintf(c.Out, "%sResponse Body:%s\n%s\n", display.Cyan, display.Reset, pretty.String())
		} else {
			fmt.Fprintf(c.Out, "%sResponse:%s\n%s\n", display.Cyan, display.Reset, string(respBody))
		}
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		_ = json.Unmarshal(respBody, &apiErr.ErrorResponse)
		return apiErr
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

// API Methods

func (c *Client) Health() (*HealthResponse, error) {
	var resp HealthResponse
	err := c.doRequest(http.MethodGet, "/health", nil, &resp)
	return &resp, err
}

func (c *Client) CreateMatch(req core.CreateMatchRequest) (*core.MatchResponse, error) {
	var resp core.MatchResponse
	err := c.doRequest(http.MethodPost, "/api/v1/matches", req, &resp)
	return &resp, err
}

func (c *Client) GetMatch(matchID string) (*core.MatchResponse, error) {
	var resp core.MatchResponse
	err := c.doRequest(http.MethodGet, "/api/v1/matches/"+matchID, nil, &resp)
	return &resp, err
}

// GetMatchWithPoll waits server-side until the match has a move count other
// than moveCount.
func (c *Client) GetMatchWithPoll(matchID string, moveCount int) (*core.MatchResponse, error) {
	var resp core.MatchResponse
	path := fmt.Sprintf("/api/v1/matches/%s?wait=true&moveCount=%d", matchID, moveCount)
	err := c.doRequest(http.MethodGet, path, nil, &resp)
	return &resp, err
}

func (c *Client) RequestMove(matchID string, b *core.BoardState, legal []core.Move) (*core.MoveResponse, error) {
	var resp core.MoveResponse
	req := core.MatchMoveRequest{BoardState: *b, ValidMoves: legal}
	err := c.doRequest(http.MethodPost, "/api/v1/matches/"+matchID+"/moves", req, &resp)
	return &resp, err
}

func (c *Client) EndMatch(matchID string, req core.EndMatchRequest) (*core.MatchResponse, error) {
	var resp core.MatchResponse
	err := c.doRequest(http.MethodPost, "/api/v1/matches/"+matchID+"/end", req, &resp)
	return &resp, err
}

func (c *Client) HumanDecision(matchID string, req core.HumanDecisionRequest) (*core.FraudResponse, error) {
	var resp core.FraudResponse
	err := c.doRequest(http.MethodPost, "/api/v1/matches/"+matchID+"/decisions", req, &resp)
	return &resp, err
}

func (c *Client) QuickMove(req core.MoveRequest) (*core.MoveResponse, error) {
	var resp core.MoveResponse
	err := c.doRequest(http.MethodPost, "/api/v1/move", req, &resp)
	return &resp, err
}

func (c *Client) RenderBoard(b *core.BoardState) (*core.BoardResponse, error) {
	var resp core.BoardResponse
	err := c.doRequest(http.MethodPost, "/api/v1/board", core.RenderBoardRequest{BoardState: *b}, &resp)
	return &resp, err
}

func (c *Client) Agents() ([]core.AgentTypeInfo, error) {
	var resp []core.AgentTypeInfo
	err := c.doRequest(http.MethodGet, "/api/v1/agents", nil, &resp)
	return resp, err
}

func (c *Client) Personalities() ([]core.PersonalityInfo, error) {
	var resp []core.PersonalityInfo
	err := c.doRequest(http.MethodGet, "/api/v1/personalities", nil, &resp)
	return resp, err
}

// Report returns the performance report as generic JSON
func (c *Client) Report() (map[string]any, error) {
	var resp map[string]any
	err := c.doRequest(http.MethodGet, "/api/v1/report", nil, &resp)
	return resp, err
}

// StressTest runs a server-side stress test and returns its report
func (c *Client) StressTest(req core.StressTestRequest) (map[string]any, error) {
	var resp map[string]any
	err := c.doRequest(http.MethodPost, "/api/v1/stress", req, &resp)
	return resp, err
}

// RawRequest performs a raw HTTP request for debugging purposes
func (c *Client) RawRequest(method, path string, body string) error {
	var bodyData any
	if body != "" {
		if err := json.Unmarshal([]byte(body), &bodyData); err != nil {
			bodyData = body
		}
	}
	return c.doRequest(method, path, bodyData, nil)
}
