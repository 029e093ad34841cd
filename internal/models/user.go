package models

import "time"

// User is the account record owned by the identity service. This module only
// reads it to snapshot the author's name and avatar onto posts and comments.
type User struct {
	ID     string    `gorm:"primaryKey;size:24" json:"_id" yaml:"id"`
	Name   string    `gorm:"not null" json:"name" yaml:"name"`
	Email  string    `gorm:"uniqueIndex;not null" json:"email" yaml:"email"`
	Avatar string    `json:"avatar" yaml:"avatar"`
	Date   time.Time `json:"date" yaml:"-"`
}
