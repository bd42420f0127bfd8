// Package remote is the client for the upstream exam API: exam/question
// fetch, result submission, and stored-result retrieval. All calls carry the
// student's bearer credential; the engine never talks to the store without an
// identity.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/eduprep/exam-engine/internal/model"
)

// Errors surfaced to callers so the session pipeline can distinguish auth
// failures (halt early) from transient store failures (retryable).
var (
	ErrUnauthorized = errors.New("remote exam api rejected the credential")
	ErrNotFound     = errors.New("remote exam api has no such resource")
)

// Client talks to the upstream exam API.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// NewClient creates a Client for the given base URL.
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		log:     log.With().Str("component", "remote_client").Logger(),
	}
}

// FetchExamPaper retrieves exam metadata and the ordered question list. The
// payload includes the correct options; the upstream contract deliberately
// ships the key to the session engine.
func (c *Client) FetchExamPaper(ctx context.Context, examID uuid.UUID, bearer string) (*model.ExamPaper, error) {
	var paper model.ExamPaper
	url := fmt.Sprintf("%s/api/v1/exams/%s/paper", c.baseURL, examID)
	if err := c.do(ctx, http.MethodGet, url, bearer, nil, &paper); err != nil {
		return nil, fmt.Errorf("fetch exam paper: %w", err)
	}
	if len(paper.Questions) == 0 {
		return nil, errors.New("fetch exam paper: empty question list")
	}
	return &paper, nil
}

// SubmitResult stores a computed exam result.
func (c *Client) SubmitResult(ctx context.Context, examID uuid.UUID, bearer string, result model.ExamResult) error {
	url := fmt.Sprintf("%s/api/v1/exams/%s/results", c.baseURL, examID)
	if err := c.do(ctx, http.MethodPost, url, bearer, result, nil); err != nil {
		return fmt.Errorf("submit result: %w", err)
	}
	return nil
}

// FetchResult retrieves a previously stored result for review.
func (c *Client) FetchResult(ctx context.Context, examID uuid.UUID, userID string, bearer string) (*model.ExamResult, error) {
	var result model.ExamResult
	url := fmt.Sprintf("%s/api/v1/exams/%s/results/%s", c.baseURL, examID, userID)
	if err := c.do(ctx, http.MethodGet, url, bearer, nil, &result); err != nil {
		return nil, fmt.Errorf("fetch result: %w", err)
	}
	return &result, nil
}

func (c *Client) do(ctx context.Context, method, url, bearer string, body, out interface{}) error {
	if bearer == "" {
		return ErrUnauthorized
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call exam api: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode >= 400:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.log.Warn().Int("status", resp.StatusCode).Str("url", url).Msg("exam api error response")
		return fmt.Errorf("exam api status %d: %s", resp.StatusCode, string(snippet))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
