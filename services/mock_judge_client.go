// services/mock_judge_client.go
package services

import (
	"context"
	"sync"
)

// MockJudgeClient is a scripted JudgeClient for tests: each Execute call pops
// the next queued result or error.
type MockJudgeClient struct {
	mu       sync.Mutex
	queue    []mockRun
	Calls    int
	LastData struct {
		Code       string
		LanguageID int
		Stdin      string
		Expected   string
	}
}

type mockRun struct {
	result *JudgeResult
	err    error
}

// QueueResult scripts a successful run.
func (m *MockJudgeClient) QueueResult(r *JudgeResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, mockRun{result: r})
}

// QueueError scripts a failed run.
func (m *MockJudgeClient) QueueError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, mockRun{err: err})
}

// Execute pops the next scripted outcome. An exhausted script returns an
// accepted run echoing the expected output.
func (m *MockJudgeClient) Execute(_ context.Context, code string, languageID int, stdin, expected string) (*JudgeResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls++
	m.LastData.Code = code
	m.LastData.LanguageID = languageID
	m.LastData.Stdin = stdin
	m.LastData.Expected = expected

	if len(m.queue) == 0 {
		return &JudgeResult{
			Token:  "mock-token",
			Status: JudgeStatus{ID: judgeStatusAccepted, Description: "Accepted"},
			Stdout: expected,
		}, nil
	}
	next := m.queue[0]
	m.queue = m.queue[1:]
	return next.result, next.err
}
