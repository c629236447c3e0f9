// Package kv stores the leaderboard in a sorted set behind a Redis-compatible
// REST API (the Upstash / Vercel KV protocol).
//
// Single commands are POSTed to the base URL as a JSON array of strings and
// answered with {"result": ...} or {"error": "..."}. Transactions are POSTed
// to /multi-exec as an array of commands and answered with one reply per
// command.
package kv

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/daemonn69/somnia-jump/internal/platform/timeouts"
	"github.com/daemonn69/somnia-jump/internal/services/leaderboard/storage"
)

// Store is a storage.RankedStore over one sorted-set key.
type Store struct {
	baseURL string
	token   string
	key     string
	client  *http.Client
}

// Option customizes a Store.
type Option func(*Store)

// WithHTTPClient replaces the default client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Store) {
		if client != nil {
			s.client = client
		}
	}
}

// Open validates the endpoint and credentials. No request is made.
func Open(baseURL, token, key string, opts ...Option) (*Store, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("kv rest url is required")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("kv rest token is required")
	}
	if strings.TrimSpace(key) == "" {
		key = "leaderboard"
	}
	s := &Store{
		baseURL: baseURL,
		token:   token,
		key:     key,
		client:  &http.Client{Timeout: timeouts.BackendRequest},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

type reply struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

func (s *Store) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode kv request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build kv request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("kv request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read kv response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var failure reply
		if json.Unmarshal(data, &failure) == nil && failure.Error != "" {
			return fmt.Errorf("kv status %d: %s", resp.StatusCode, failure.Error)
		}
		return fmt.Errorf("kv status %d", resp.StatusCode)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode kv response: %w", err)
	}
	return nil
}

func (s *Store) command(ctx context.Context, args ...string) (json.RawMessage, error) {
	var r reply
	if err := s.post(ctx, "", args, &r); err != nil {
		return nil, fmt.Errorf("%s: %w", args[0], err)
	}
	if r.Error != "" {
		return nil, fmt.Errorf("%s: %s", args[0], r.Error)
	}
	return r.Result, nil
}

func (s *Store) transaction(ctx context.Context, commands ...[]string) error {
	var replies []reply
	if err := s.post(ctx, "/multi-exec", commands, &replies); err != nil {
		return fmt.Errorf("multi-exec: %w", err)
	}
	for i, r := range replies {
		if r.Error != "" {
			return fmt.Errorf("multi-exec %s: %s", commands[i][0], r.Error)
		}
	}
	return nil
}

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// parseScore accepts scores encoded as JSON strings or numbers.
func parseScore(raw json.RawMessage) (float64, error) {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return strconv.ParseFloat(text, 64)
	}
	var number float64
	if err := json.Unmarshal(raw, &number); err != nil {
		return 0, fmt.Errorf("score %s is not numeric", raw)
	}
	return number, nil
}

func parseMembers(result json.RawMessage) ([]storage.Member, error) {
	var flat []json.RawMessage
	if err := json.Unmarshal(result, &flat); err != nil {
		return nil, fmt.Errorf("decode range result: %w", err)
	}
	if len(flat)%2 != 0 {
		return nil, fmt.Errorf("range result has odd length %d", len(flat))
	}
	members := make([]storage.Member, 0, len(flat)/2)
	for i := 0; i < len(flat); i += 2 {
		var payload string
		if err := json.Unmarshal(flat[i], &payload); err != nil {
			return nil, fmt.Errorf("decode range member: %w", err)
		}
		score, err := parseScore(flat[i+1])
		if err != nil {
			return nil, fmt.Errorf("decode range score: %w", err)
		}
		members = append(members, storage.Member{Payload: payload, Score: score})
	}
	return members, nil
}

func (s *Store) rangeWithScores(ctx context.Context, cmd string, start, stop int64) ([]storage.Member, error) {
	result, err := s.command(ctx, cmd, s.key, formatInt(start), formatInt(stop), "WITHSCORES")
	if err != nil {
		return nil, err
	}
	return parseMembers(result)
}

func (s *Store) RangeWithScores(ctx context.Context, start, stop int64) ([]storage.Member, error) {
	return s.rangeWithScores(ctx, "ZRANGE", start, stop)
}

func (s *Store) RevRangeWithScores(ctx context.Context, start, stop int64) ([]storage.Member, error) {
	return s.rangeWithScores(ctx, "ZREVRANGE", start, stop)
}

// Replace sends ZREM and ZADD as one transaction.
func (s *Store) Replace(ctx context.Context, remove []string, member storage.Member) error {
	var commands [][]string
	if len(remove) > 0 {
		commands = append(commands, append([]string{"ZREM", s.key}, remove...))
	}
	commands = append(commands, []string{"ZADD", s.key, formatScore(member.Score), member.Payload})
	return s.transaction(ctx, commands...)
}

func (s *Store) Card(ctx context.Context) (int64, error) {
	result, err := s.command(ctx, "ZCARD", s.key)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := json.Unmarshal(result, &n); err != nil {
		return 0, fmt.Errorf("decode zcard result: %w", err)
	}
	return n, nil
}

func (s *Store) RemoveRangeByRank(ctx context.Context, start, stop int64) error {
	_, err := s.command(ctx, "ZREMRANGEBYRANK", s.key, formatInt(start), formatInt(stop))
	return err
}

func (s *Store) Ping(ctx context.Context) error {
	_, err := s.command(ctx, "PING")
	return err
}

// Close releases idle connections.
func (s *Store) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
