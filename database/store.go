// file: database/store.go
package database

import (
	"errors"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"codeclash/models"
)

// Store is the persistence facade. It backs the submission pipeline, the
// outcome evaluator and the pairing flow; each consumer sees only the
// interface slice it declares.
type Store struct {
	db *gorm.DB
}

// NewStore wraps an open connection.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// UpsertUser creates the user row or refreshes its name and email. Identity
// is minted elsewhere; this service only mirrors what the token asserts.
func (s *Store) UpsertUser(user *models.User) error {
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "email", "updated_at"}),
	}).Create(user).Error
}

// FindQuestion returns the first question matching the topic tag and exact
// difficulty. A nil question with nil error means nothing matched.
func (s *Store) FindQuestion(topic, difficulty string) (*models.Question, error) {
	var q models.Question
	err := s.db.
		Where("difficulty = ?", difficulty).
		Where("tags && ?", pq.StringArray{topic}).
		First(&q).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// CreatePairing persists the team and its match in one transaction so a
// half-created pairing never survives.
func (s *Store) CreatePairing(team *models.Team, match *models.Match) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(team).Error; err != nil {
			return err
		}
		match.TeamID = team.ID
		return tx.Create(match).Error
	})
}

// MatchWithQuestion loads a match and its question. A nil match with nil
// error means the id is unknown.
func (s *Store) MatchWithQuestion(matchID string) (*models.Match, error) {
	var match models.Match
	err := s.db.
		Preload("Question").
		Preload("Team").
		First(&match, "id = ?", matchID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &match, nil
}

// MatchWithSolutions loads a match with every submission and submitter for
// outcome evaluation.
func (s *Store) MatchWithSolutions(matchID string) (*models.Match, error) {
	var match models.Match
	err := s.db.
		Preload("Solutions").
		Preload("Solutions.User").
		First(&match, "id = ?", matchID).Error
	if err != nil {
		return nil, err
	}
	return &match, nil
}

// CreateSolution inserts the submission record before any test case runs.
func (s *Store) CreateSolution(sol *models.Solution) error {
	return s.db.Create(sol).Error
}

// UpdateSolutionMetrics writes the run aggregates in a single update.
func (s *Store) UpdateSolutionMetrics(solutionID string, passed, total int, execTime, memory float64) error {
	return s.db.Model(&models.Solution{}).
		Where("id = ?", solutionID).
		Updates(map[string]interface{}{
			"passed_tests":   passed,
			"total_tests":    total,
			"execution_time": execTime,
			"memory_used":    memory,
		}).Error
}

// CountDistinctSubmitters reports how many participants have at least one
// submission for the match.
func (s *Store) CountDistinctSubmitters(matchID string) (int, error) {
	var count int64
	err := s.db.Model(&models.Solution{}).
		Where("match_id = ?", matchID).
		Distinct("user_id").
		Count(&count).Error
	return int(count), err
}

// CompleteMatch flips the match to COMPLETED and records the winner and end
// time. winnerID stays nil for a tie.
func (s *Store) CompleteMatch(matchID string, winnerID *string, endTime time.Time) error {
	return s.db.Model(&models.Match{}).
		Where("id = ?", matchID).
		Updates(map[string]interface{}{
			"status":    models.MatchStatusCompleted,
			"winner_id": winnerID,
			"end_time":  endTime,
		}).Error
}

// AdjustUserRating applies a rating delta and bumps the match counters.
func (s *Store) AdjustUserRating(userID string, points int, won bool) error {
	updates := map[string]interface{}{
		"rating_points": gorm.Expr("rating_points + ?", points),
		"total_matches": gorm.Expr("total_matches + 1"),
	}
	if won {
		updates["wins"] = gorm.Expr("wins + 1")
	}
	res := s.db.Model(&models.User{}).Where("id = ?", userID).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
