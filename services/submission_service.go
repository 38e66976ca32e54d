// file: services/submission_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"codeclash/logger"
	"codeclash/models"
)

// pipeline failure modes surfaced to the HTTP boundary
var (
	ErrMatchNotFound       = errors.New("match or question not found")
	ErrUnsupportedLanguage = errors.New("unsupported language")
)

// languageIDs maps the declared language to the execution collaborator's id.
var languageIDs = map[string]int{
	"PYTHON":     71,
	"CPP":        54,
	"JAVASCRIPT": 63,
	"JAVA":       62,
	"C":          50,
}

// LanguageID resolves a declared language, case-insensitively.
func LanguageID(language string) (int, bool) {
	id, ok := languageIDs[strings.ToUpper(language)]
	return id, ok
}

// SubmissionStore is the slice of the persistence collaborator the pipeline
// needs.
type SubmissionStore interface {
	MatchWithQuestion(matchID string) (*models.Match, error)
	CreateSolution(sol *models.Solution) error
	UpdateSolutionMetrics(solutionID string, passed, total int, execTime, memory float64) error
	CountDistinctSubmitters(matchID string) (int, error)
}

// CompletionNotifier pushes the final outcome to connected participants.
// Implemented by the websocket coordinator via an adapter in main.
type CompletionNotifier interface {
	MatchCompleted(matchID string, outcome *MatchOutcome)
}

// TestCaseResult is the per-case detail returned to the submitter.
type TestCaseResult struct {
	TestCase       int     `json:"testCase"`
	Token          string  `json:"token,omitempty"`
	Passed         bool    `json:"passed"`
	Status         string  `json:"status"`
	Input          string  `json:"input"`
	ExpectedOutput string  `json:"expectedOutput"`
	ActualOutput   string  `json:"actualOutput"`
	Time           float64 `json:"time"`
	Memory         float64 `json:"memory"`
	Error          string  `json:"error,omitempty"`
}

// ExecutionSummary aggregates the whole run.
type ExecutionSummary struct {
	AllPassed     bool    `json:"allPassed"`
	PassedTests   int     `json:"passedTests"`
	TotalTests    int     `json:"totalTests"`
	PassRate      string  `json:"passRate"`
	TotalTime     float64 `json:"totalTime"`
	AvgTime       float64 `json:"avgTime"`
	TotalMemory   float64 `json:"totalMemory"`
	AvgMemory     float64 `json:"avgMemory"`
	ExpectedTime  string  `json:"expectedTime,omitempty"`
	ExpectedSpace string  `json:"expectedSpace,omitempty"`
}

// SubmissionResult is the pipeline's full answer for one submit action.
// MatchResult stays nil until every participant has submitted.
type SubmissionResult struct {
	SolutionID  string           `json:"solutionId"`
	Language    string           `json:"language"`
	SubmittedAt time.Time        `json:"submittedAt"`
	Execution   ExecutionSummary `json:"execution"`
	TestResults []TestCaseResult `json:"testResults"`
	MatchResult *MatchOutcome    `json:"matchResult,omitempty"`
}

// SubmissionService runs a participant's code against the match's test cases
// through the execution collaborator and triggers outcome evaluation once the
// match is fully submitted.
type SubmissionService struct {
	store    SubmissionStore
	judge    JudgeClient
	outcomes *OutcomeService
	notifier CompletionNotifier
}

// NewSubmissionService wires the pipeline. notifier may be nil in tests.
func NewSubmissionService(store SubmissionStore, judge JudgeClient, outcomes *OutcomeService, notifier CompletionNotifier) *SubmissionService {
	return &SubmissionService{store: store, judge: judge, outcomes: outcomes, notifier: notifier}
}

// Submit executes one submission end to end. Test cases run strictly
// sequentially; a case that times out or errors fails on its own and the run
// proceeds. Aggregates are written back in a single update after the last
// case. The solution record is created before any execution so a crashed run
// is still attributable.
func (s *SubmissionService) Submit(ctx context.Context, matchID, userID, code, language string) (*SubmissionResult, error) {
	match, err := s.store.MatchWithQuestion(matchID)
	if err != nil {
		return nil, err
	}
	if match == nil || match.Question == nil {
		return nil, ErrMatchNotFound
	}

	testCases, err := NormalizeTestCases(match.Question.TestCases)
	if err != nil {
		return nil, err
	}

	languageID, ok := LanguageID(language)
	if !ok {
		return nil, ErrUnsupportedLanguage
	}

	sol := &models.Solution{
		MatchID:  matchID,
		UserID:   userID,
		Code:     code,
		Language: language,
	}
	if err := s.store.CreateSolution(sol); err != nil {
		return nil, fmt.Errorf("create solution: %w", err)
	}

	sanitized := SanitizeCode(code)

	// once the record exists the run is committed: a participant dropping
	// their connection must not abort the remaining judge round trips, so
	// execution proceeds detached from the request lifetime
	runCtx := context.WithoutCancel(ctx)

	var (
		passed      int
		totalTime   float64
		totalMemory float64
		testResults = make([]TestCaseResult, 0, len(testCases))
	)
	for i, tc := range testCases {
		result := s.runTestCase(runCtx, i+1, sanitized, languageID, tc)
		if result.Passed {
			passed++
		}
		totalTime += result.Time
		totalMemory += result.Memory
		testResults = append(testResults, result)
	}

	total := len(testCases)
	if err := s.store.UpdateSolutionMetrics(sol.ID, passed, total, totalTime, totalMemory); err != nil {
		return nil, fmt.Errorf("update solution metrics: %w", err)
	}

	res := &SubmissionResult{
		SolutionID:  sol.ID,
		Language:    language,
		SubmittedAt: sol.SubmittedAt,
		Execution: ExecutionSummary{
			AllPassed:     passed == total,
			PassedTests:   passed,
			TotalTests:    total,
			PassRate:      fmt.Sprintf("%d/%d", passed, total),
			TotalTime:     totalTime,
			AvgTime:       totalTime / float64(total),
			TotalMemory:   totalMemory,
			AvgMemory:     totalMemory / float64(total),
			ExpectedTime:  match.Question.ExpectedTimeComplexity,
			ExpectedSpace: match.Question.ExpectedSpaceComplexity,
		},
		TestResults: testResults,
	}

	// completion check: a failure here never fails the submission itself
	if outcome := s.checkCompletion(match); outcome != nil {
		res.MatchResult = outcome
	}
	return res, nil
}

// runTestCase dispatches one case and folds any collaborator failure into a
// failed result rather than an error.
func (s *SubmissionService) runTestCase(ctx context.Context, index int, code string, languageID int, tc TestCase) TestCaseResult {
	result := TestCaseResult{
		TestCase:       index,
		Input:          tc.Input,
		ExpectedOutput: tc.Output,
	}

	run, err := s.judge.Execute(ctx, code, languageID, tc.Input, tc.Output)
	if err != nil {
		logger.Error.Printf("[submission] test case %d failed to execute: %v", index, err)
		result.Status = "Error"
		result.Error = err.Error()
		return result
	}

	result.Token = run.Token
	result.Status = run.Status.Description
	result.ActualOutput = strings.TrimSpace(run.Stdout)
	result.Time = run.Seconds()
	result.Memory = run.Memory
	result.Error = run.Stderr
	result.Passed = run.Accepted() &&
		strings.TrimSpace(run.Stdout) == strings.TrimSpace(tc.Output)
	return result
}

// checkCompletion evaluates the match once every expected participant has at
// least one submission. Outcome failures are isolated: logged, never
// propagated to the submitter.
func (s *SubmissionService) checkCompletion(match *models.Match) *MatchOutcome {
	expected := expectedParticipants(match)
	submitted, err := s.store.CountDistinctSubmitters(match.ID)
	if err != nil {
		logger.Error.Printf("[submission] completion check failed for match %s: %v", match.ID, err)
		return nil
	}
	logger.Info.Printf("[submission] match %s completion check: %d/%d participants submitted", match.ID, submitted, expected)
	if submitted < expected {
		return nil
	}

	outcome, err := s.outcomes.Evaluate(match.ID)
	if err != nil {
		if errors.Is(err, ErrMatchAlreadyCompleted) {
			logger.Warn.Printf("[submission] match %s was already evaluated", match.ID)
		} else {
			logger.Error.Printf("[submission] outcome determination failed for match %s: %v", match.ID, err)
		}
		return nil
	}

	s.outcomes.ApplyRatings(outcome)
	if s.notifier != nil {
		s.notifier.MatchCompleted(match.ID, outcome)
	}
	return outcome
}

// expectedParticipants derives the submitter quorum from the paired team; a
// duel expects two.
func expectedParticipants(match *models.Match) int {
	if match.Team == nil {
		return 1
	}
	count := 0
	if match.Team.PlayerOneID != "" {
		count++
	}
	if match.Team.PlayerTwoID != "" {
		count++
	}
	if count == 0 {
		return 1
	}
	return count
}
