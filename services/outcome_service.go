// file: services/outcome_service.go
package services

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"codeclash/logger"
	"codeclash/models"
)

// ErrMatchAlreadyCompleted guards the evaluator against a second invocation:
// evaluating a COMPLETED match is a no-op.
var ErrMatchAlreadyCompleted = errors.New("match already completed")

// ErrNoSolutions is returned when a match has nothing to evaluate.
var ErrNoSolutions = errors.New("no solutions found for this match")

// scoring weights: correctness dominates, then efficiency, then completion
const (
	correctnessWeight = 0.5
	efficiencyWeight  = 0.3
	completionWeight  = 0.2
)

// defaultCompletionScore stands in for a completion-speed term. Submission
// timing is not modeled yet, so every participant gets the same constant.
const defaultCompletionScore = 75.0

// rating-point deltas applied to the users table after an outcome
const (
	winnerPoints = 10
	loserPoints  = -2
	tiePoints    = 5
)

// ParticipantMetrics is the per-participant view of their best submission.
type ParticipantMetrics struct {
	PassedTests   int     `json:"passedTests"`
	TotalTests    int     `json:"totalTests"`
	ExecutionTime float64 `json:"executionTime"`
	MemoryUsed    float64 `json:"memoryUsed"`
	PassRate      float64 `json:"passRate"`
}

// ParticipantResult is one ranked entry in a match outcome.
type ParticipantResult struct {
	UserID   string             `json:"userId"`
	Username string             `json:"username"`
	Score    float64            `json:"score"`
	Rank     int                `json:"rank"`
	Metrics  ParticipantMetrics `json:"metrics"`
}

// MatchOutcome is the evaluator's verdict for a completed match.
type MatchOutcome struct {
	MatchID         string              `json:"matchId"`
	IsTie           bool                `json:"isTie"`
	Winner          *ParticipantResult  `json:"winner"`
	Loser           *ParticipantResult  `json:"loser"`
	AllParticipants []ParticipantResult `json:"allParticipants"`
}

// OutcomeStore is the slice of the persistence collaborator the evaluator
// needs.
type OutcomeStore interface {
	MatchWithSolutions(matchID string) (*models.Match, error)
	CompleteMatch(matchID string, winnerID *string, endTime time.Time) error
	AdjustUserRating(userID string, points int, won bool) error
}

// OutcomeService selects each participant's best submission, scores it, ranks
// the participants and completes the match record.
type OutcomeService struct {
	store OutcomeStore
	now   func() time.Time
}

// NewOutcomeService wires the evaluator to its store.
func NewOutcomeService(store OutcomeStore) *OutcomeService {
	return &OutcomeService{store: store, now: time.Now}
}

// Evaluate computes the outcome for a match and records it. The top score
// wins; exactly equal top scores are a tie with no winner. Calling it on an
// already-completed match returns ErrMatchAlreadyCompleted without touching
// anything.
func (s *OutcomeService) Evaluate(matchID string) (*MatchOutcome, error) {
	match, err := s.store.MatchWithSolutions(matchID)
	if err != nil {
		return nil, fmt.Errorf("load match %s: %w", matchID, err)
	}
	if match.Status == models.MatchStatusCompleted {
		return nil, ErrMatchAlreadyCompleted
	}
	if len(match.Solutions) == 0 {
		return nil, ErrNoSolutions
	}

	// group submissions by participant, then score each one's best
	byUser := make(map[string][]models.Solution)
	for _, sol := range match.Solutions {
		byUser[sol.UserID] = append(byUser[sol.UserID], sol)
	}

	results := make([]ParticipantResult, 0, len(byUser))
	for userID, subs := range byUser {
		best := BestSubmission(subs)
		passRate := 0.0
		if best.TotalTests > 0 {
			passRate = float64(best.PassedTests) / float64(best.TotalTests) * 100
		}
		username := ""
		if best.User != nil {
			username = best.User.Name
		}
		results = append(results, ParticipantResult{
			UserID:   userID,
			Username: username,
			Score:    ScoreSubmission(best),
			Metrics: ParticipantMetrics{
				PassedTests:   best.PassedTests,
				TotalTests:    best.TotalTests,
				ExecutionTime: best.ExecutionTime,
				MemoryUsed:    best.MemoryUsed,
				PassRate:      passRate,
			},
		})
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	for i := range results {
		results[i].Rank = i + 1
	}

	outcome := &MatchOutcome{
		MatchID:         matchID,
		AllParticipants: results,
		Winner:          &results[0],
	}
	if len(results) > 1 {
		outcome.Loser = &results[len(results)-1]
		outcome.IsTie = results[0].Score == results[1].Score
	}

	var winnerID *string
	if !outcome.IsTie {
		winnerID = &outcome.Winner.UserID
	}
	if err := s.store.CompleteMatch(matchID, winnerID, s.now()); err != nil {
		return nil, fmt.Errorf("complete match %s: %w", matchID, err)
	}
	logger.Info.Printf("[outcome] match %s completed: tie=%v winner=%v", matchID, outcome.IsTie, winnerID)
	return outcome, nil
}

// ApplyRatings adjusts each participant's rating points after an outcome.
// Per-user failures are logged and skipped so one bad row never blocks the
// rest.
func (s *OutcomeService) ApplyRatings(outcome *MatchOutcome) {
	for _, p := range outcome.AllParticipants {
		points := 0
		won := false
		switch {
		case outcome.IsTie:
			points = tiePoints
		case outcome.Winner != nil && p.UserID == outcome.Winner.UserID:
			points = winnerPoints
			won = true
		case outcome.Loser != nil && p.UserID == outcome.Loser.UserID:
			points = loserPoints
		}
		if err := s.store.AdjustUserRating(p.UserID, points, won); err != nil {
			logger.Error.Printf("[outcome] rating update failed for user %s: %v", p.UserID, err)
		}
	}
}

// BestSubmission picks a participant's best entry by the ordered tie-break:
// most tests passed, then least execution time, then least memory.
func BestSubmission(subs []models.Solution) models.Solution {
	best := subs[0]
	for _, cur := range subs[1:] {
		switch {
		case cur.PassedTests != best.PassedTests:
			if cur.PassedTests > best.PassedTests {
				best = cur
			}
		case cur.ExecutionTime != best.ExecutionTime:
			if cur.ExecutionTime < best.ExecutionTime {
				best = cur
			}
		case cur.MemoryUsed < best.MemoryUsed:
			best = cur
		}
	}
	return best
}

// ScoreSubmission applies the weighted formula:
// 0.5*correctness + 0.3*efficiency + 0.2*completion. Efficiency starts at a
// baseline of 50 and is nudged by time and memory terms, clamped so the
// combined value never exceeds 100. Rounded to two decimal places.
func ScoreSubmission(sub models.Solution) float64 {
	correctness := 0.0
	if sub.TotalTests > 0 {
		correctness = float64(sub.PassedTests) / float64(sub.TotalTests) * 100
	}

	efficiency := 50.0
	if sub.ExecutionTime > 0 {
		timeScore := math.Max(0, 50-sub.ExecutionTime*10)
		efficiency += timeScore * 0.6
	}
	if sub.MemoryUsed > 0 {
		memoryScore := math.Max(0, 50-sub.MemoryUsed/1000)
		efficiency += memoryScore * 0.4
	}
	efficiency = math.Min(100, efficiency)

	score := correctness*correctnessWeight +
		efficiency*efficiencyWeight +
		defaultCompletionScore*completionWeight
	return math.Round(score*100) / 100
}
