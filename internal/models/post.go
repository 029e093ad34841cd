// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// NewID returns a fresh 24-character hex identifier. Every storage backend uses
// the same format so route id checks are backend independent.
func NewID() string {
	return bson.NewObjectID().Hex()
}

// IsValidID reports whether id is a well-formed identifier.
func IsValidID(id string) bool {
	_, err := bson.ObjectIDFromHex(id)
	return err == nil
}

// Post represents a user-authored post with its likes and comments embedded.
// UserID is set at creation and never reassigned.
type Post struct {
	ID       string    `gorm:"primaryKey;size:24" json:"_id"`
	UserID   string    `gorm:"column:user_id;size:24;not null;index" json:"user"`
	Text     string    `gorm:"type:text;not null" json:"text"`
	Name     string    `json:"name"`
	Avatar   string    `json:"avatar"`
	Likes    []Like    `gorm:"serializer:json;type:text" json:"likes"`
	Comments []Comment `gorm:"serializer:json;type:text" json:"comments"`
	Date     time.Time `gorm:"not null;index" json:"date"`
}

// Like marks a user's endorsement of a post. A user appears at most once per post.
type Like struct {
	ID     string `json:"_id"`
	UserID string `json:"user"`
}

// Comment is a reply embedded in its parent post.
type Comment struct {
	ID     string    `json:"_id"`
	UserID string    `json:"user"`
	Text   string    `json:"text"`
	Name   string    `json:"name"`
	Avatar string    `json:"avatar"`
	Date   time.Time `json:"date"`
}

// IsLikedBy reports whether userID already liked the post.
func (p *Post) IsLikedBy(userID string) bool {
	for _, l := range p.Likes {
		if l.UserID == userID {
			return true
		}
	}
	return false
}

// AddLike prepends a like by userID. It returns false if userID already liked the post.
func (p *Post) AddLike(userID string) bool {
	if p.IsLikedBy(userID) {
		return false
	}
	p.Likes = append([]Like{{ID: NewID(), UserID: userID}}, p.Likes...)
	return true
}

// RemoveLike removes userID's like. It returns false if there was none.
func (p *Post) RemoveLike(userID string) bool {
	kept := make([]Like, 0, len(p.Likes))
	for _, l := range p.Likes {
		if l.UserID != userID {
			kept = append(kept, l)
		}
	}
	if len(kept) == len(p.Likes) {
		return false
	}
	p.Likes = kept
	return true
}

// AddComment prepends c to the post's comments.
func (p *Post) AddComment(c Comment) {
	p.Comments = append([]Comment{c}, p.Comments...)
}

// FindComment returns the comment with the given id, or nil.
func (p *Post) FindComment(commentID string) *Comment {
	for i := range p.Comments {
		if p.Comments[i].ID == commentID {
			return &p.Comments[i]
		}
	}
	return nil
}

// RemoveComment filters the comment with the given id out of the post.
func (p *Post) RemoveComment(commentID string) {
	kept := make([]Comment, 0, len(p.Comments))
	for _, c := range p.Comments {
		if c.ID != commentID {
			kept = append(kept, c)
		}
	}
	p.Comments = kept
}

// Normalize replaces nil slices with empty ones so they encode as [] instead of null.
func (p *Post) Normalize() {
	if p.Likes == nil {
		p.Likes = []Like{}
	}
	if p.Comments == nil {
		p.Comments = []Comment{}
	}
}
