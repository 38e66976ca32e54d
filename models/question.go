// file: models/question.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Question difficulties, matching the values the pairing filters carry.
const (
	DifficultyEasy   = "EASY"
	DifficultyMedium = "MEDIUM"
	DifficultyHard   = "HARD"
)

// Question is one problem from the question bank. TestCases is stored as raw
// JSON because the bank accumulated three historical shapes over time: a flat
// array, {testCases:[...]}, and {public:[...], hidden:[...]}. The submission
// pipeline normalizes whatever it finds.
type Question struct {
	ID                      string         `gorm:"primaryKey"`
	Title                   string         `gorm:"not null"`
	Description             string         `gorm:"type:text"`
	Difficulty              string         `gorm:"not null;index"`
	Tags                    pq.StringArray `gorm:"type:text[]"`
	TestCases               datatypes.JSON `gorm:"column:test_cases"`
	ExpectedTimeComplexity  string
	ExpectedSpaceComplexity string
	CreatedAt               time.Time
}

func (q *Question) BeforeCreate(_ *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.New().String()
	}
	return nil
}
