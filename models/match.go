// file: models/match.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Match statuses. A match is ACTIVE from pairing until the outcome evaluator
// completes it.
const (
	MatchStatusActive    = "ACTIVE"
	MatchStatusCompleted = "COMPLETED"
)

// Team pairs the two participants created by a successful join-code pairing.
type Team struct {
	ID          string `gorm:"primaryKey"`
	PlayerOneID string `gorm:"not null"`
	PlayerTwoID string `gorm:"not null"`
	JoinCode    string
	IsPrivate   bool `gorm:"default:true"`
	CreatedAt   time.Time
}

func (t *Team) BeforeCreate(_ *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}

// Match is one competitive session between the members of a team around a
// single question.
type Match struct {
	ID         string `gorm:"primaryKey"`
	TeamID     string `gorm:"not null"`
	Team       *Team  `gorm:"foreignKey:TeamID"`
	QuestionID string `gorm:"not null"`
	Question   *Question
	Status     string `gorm:"not null;default:ACTIVE"`
	WinnerID   *string
	StartTime  time.Time `gorm:"autoCreateTime"`
	EndTime    *time.Time
	Solutions  []Solution `gorm:"foreignKey:MatchID"`
}

func (m *Match) BeforeCreate(_ *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}
