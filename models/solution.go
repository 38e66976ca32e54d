// file: models/solution.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Solution is one participant's submission for a match. The record is created
// before any test case runs so a crashed run is still attributable; the
// aggregate metrics are filled in by a single update once every case resolved.
type Solution struct {
	ID            string `gorm:"primaryKey"`
	MatchID       string `gorm:"not null;index"`
	UserID        string `gorm:"not null;index"`
	User          *User  `gorm:"foreignKey:UserID"`
	Code          string `gorm:"type:text;not null"`
	Language      string `gorm:"not null"`
	PassedTests   int    `gorm:"default:0"`
	TotalTests    int    `gorm:"default:0"`
	ExecutionTime float64
	MemoryUsed    float64
	SubmittedAt   time.Time `gorm:"autoCreateTime"`
}

func (s *Solution) BeforeCreate(_ *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}
