// Package models defines the persisted entities shared with the platform database.
// file: models/user.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User mirrors the identity record owned by the external identity provider.
// Only the fields the match core reads and the ranking update writes are mapped.
type User struct {
	ID           string `gorm:"primaryKey"`
	Name         string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex"`
	ExternalUID  string `gorm:"column:external_uid"`
	RatingPoints int    `gorm:"default:0"`
	TotalMatches int    `gorm:"default:0"`
	Wins         int    `gorm:"default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// BeforeCreate assigns a UUID when the caller did not supply an id
// (pairing creates users on the fly from identity claims).
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}
