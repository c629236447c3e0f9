// Package client talks to the leaderboard HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	apperrors "github.com/daemonn69/somnia-jump/internal/platform/errors"
	"github.com/daemonn69/somnia-jump/internal/platform/timeouts"
	"github.com/daemonn69/somnia-jump/internal/services/leaderboard/api/rest"
)

// Client calls GET and POST on the leaderboard endpoint.
type Client struct {
	endpoint string
	http     *http.Client
}

// New builds a client for the server at baseURL. A nil httpClient uses a
// client bounded by the backend request timeout.
func New(baseURL string, httpClient *http.Client) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("leaderboard url is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parse leaderboard url: %w", err)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeouts.BackendRequest}
	}
	return &Client{endpoint: baseURL + rest.Path, http: httpClient}, nil
}

// Top fetches up to limit entries. A non-positive limit uses the server
// default.
func (c *Client) Top(ctx context.Context, limit int) (rest.TopResponse, error) {
	target := c.endpoint
	if limit > 0 {
		target += "?limit=" + strconv.Itoa(limit)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return rest.TopResponse{}, fmt.Errorf("build leaderboard request: %w", err)
	}
	var resp rest.TopResponse
	if err := c.do(req, &resp); err != nil {
		return rest.TopResponse{}, err
	}
	return resp, nil
}

// Submit posts a score for address.
func (c *Client) Submit(ctx context.Context, address string, score int) (rest.SubmitResponse, error) {
	body, err := json.Marshal(map[string]any{"address": address, "score": score})
	if err != nil {
		return rest.SubmitResponse{}, fmt.Errorf("encode submission: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return rest.SubmitResponse{}, fmt.Errorf("build leaderboard request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	var resp rest.SubmitResponse
	if err := c.do(req, &resp); err != nil {
		return rest.SubmitResponse{}, err
	}
	return resp, nil
}

// SubmitScore implements Sink.
func (c *Client) SubmitScore(ctx context.Context, identity string, score int) error {
	_, err := c.Submit(ctx, identity, score)
	return err
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("leaderboard request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read leaderboard response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var failure struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(data, &failure)
		message := fmt.Sprintf("leaderboard status %d: %s", resp.StatusCode, failure.Error)
		if resp.StatusCode == http.StatusBadRequest {
			return apperrors.New(apperrors.CodeInvalidInput, message)
		}
		return apperrors.New(apperrors.CodeBackendUnavailable, message)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode leaderboard response: %w", err)
	}
	return nil
}
