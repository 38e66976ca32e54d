// file: services/judge_service.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"codeclash/logger"
)

// execution collaborator failure modes; both are isolated to a single test
// case by the pipeline
var (
	ErrExecutionTimeout = errors.New("timed out waiting for execution result")
	ErrJudgeUnavailable = errors.New("execution service error")
)

// statuses below are the collaborator's wire values: id 1 = in queue,
// 2 = processing, 3 = accepted, anything above 3 is a failure of some kind
const judgeStatusAccepted = 3

// JudgeStatus is the collaborator's verdict for one run.
type JudgeStatus struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

// JudgeResult is one completed execution: raw output plus timing and memory.
// Time arrives as a decimal string on the wire; Seconds() parses it.
type JudgeResult struct {
	Token  string      `json:"token"`
	Status JudgeStatus `json:"status"`
	Stdout string      `json:"stdout"`
	Stderr string      `json:"stderr"`
	Time   string      `json:"time"`
	Memory float64     `json:"memory"`
}

// Seconds returns the execution time, zero when the field is absent.
func (r *JudgeResult) Seconds() float64 {
	v, err := strconv.ParseFloat(r.Time, 64)
	if err != nil {
		return 0
	}
	return v
}

// Accepted reports whether the run finished with the success status.
func (r *JudgeResult) Accepted() bool {
	return r.Status.ID == judgeStatusAccepted
}

// JudgeClient is the execution collaborator boundary: run source against one
// stdin/expected-output pair and report the outcome.
type JudgeClient interface {
	Execute(ctx context.Context, sourceCode string, languageID int, stdin, expectedOutput string) (*JudgeResult, error)
}

// Judge0Client talks to a Judge0-compatible HTTP API: submit for a token,
// then poll the token until the run leaves the queue.
type Judge0Client struct {
	baseURL      string
	apiKey       string
	apiHost      string
	httpClient   *http.Client
	pollInterval time.Duration
	maxWait      time.Duration
}

// NewJudge0Client builds the production client. maxWait bounds the poll per
// test case; a case that never completes inside the window fails on its own
// without aborting the remaining cases.
func NewJudge0Client(baseURL, apiKey, apiHost string) *Judge0Client {
	return &Judge0Client{
		baseURL:      baseURL,
		apiKey:       apiKey,
		apiHost:      apiHost,
		httpClient:   &http.Client{Timeout: 15 * time.Second},
		pollInterval: time.Second,
		maxWait:      30 * time.Second,
	}
}

type judgeSubmission struct {
	SourceCode     string `json:"source_code"`
	LanguageID     int    `json:"language_id"`
	Stdin          string `json:"stdin"`
	ExpectedOutput string `json:"expected_output"`
}

// Execute submits one run and waits for its result within the poll window.
func (c *Judge0Client) Execute(ctx context.Context, sourceCode string, languageID int, stdin, expectedOutput string) (*JudgeResult, error) {
	token, err := c.submit(ctx, judgeSubmission{
		SourceCode:     sourceCode,
		LanguageID:     languageID,
		Stdin:          stdin,
		ExpectedOutput: expectedOutput,
	})
	if err != nil {
		return nil, err
	}
	return c.waitForResult(ctx, token)
}

func (c *Judge0Client) submit(ctx context.Context, sub judgeSubmission) (string, error) {
	body, err := json.Marshal(sub)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrJudgeUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/submissions?base64_encoded=false", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrJudgeUnavailable, err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrJudgeUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: submit returned status %d", ErrJudgeUnavailable, resp.StatusCode)
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || out.Token == "" {
		return "", fmt.Errorf("%w: missing token in submit response", ErrJudgeUnavailable)
	}
	return out.Token, nil
}

// waitForResult polls the token on a fixed interval until the run completes,
// the window expires, or the caller's context ends. Transient poll errors are
// logged and retried inside the window.
func (c *Judge0Client) waitForResult(ctx context.Context, token string) (*JudgeResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.maxWait)
	defer cancel()

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		result, err := c.fetchResult(ctx, token)
		if err != nil {
			logger.Warn.Printf("[judge] poll error for token %s: %v", token, err)
		} else if result.Status.ID > 2 {
			return result, nil
		}

		select {
		case <-ctx.Done():
			return nil, ErrExecutionTimeout
		case <-ticker.C:
		}
	}
}

func (c *Judge0Client) fetchResult(ctx context.Context, token string) (*JudgeResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/submissions/"+token+"?base64_encoded=false", nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("poll returned status %d: %s", resp.StatusCode, body)
	}

	var result JudgeResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	result.Token = token
	return &result, nil
}

func (c *Judge0Client) setHeaders(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("X-RapidAPI-Key", c.apiKey)
		req.Header.Set("X-RapidAPI-Host", c.apiHost)
	}
}
