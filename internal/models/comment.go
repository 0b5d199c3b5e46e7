package models

import (
	"slices"
	"time"

	"github.com/lib/pq"
)

// Comment is a reader's reply on a post. Likes holds the ids of users who
// liked it; NumberOfLikes always equals len(Likes). Version is bumped on every
// like toggle.
type Comment struct {
	ID            string         `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Content       string         `json:"content" gorm:"type:text;not null"`
	PostID        string         `json:"post_id" gorm:"type:varchar(36);not null;index"`
	UserID        string         `json:"user_id" gorm:"type:varchar(36);not null;index"`
	Likes         pq.StringArray `json:"likes" gorm:"type:text"`
	NumberOfLikes int            `json:"number_of_likes" gorm:"not null;default:0"`
	Version       int64          `json:"-" gorm:"not null;default:0"`
	CreatedAt     time.Time      `json:"created_at" gorm:"index"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// LikedBy reports whether userID is in the comment's likes.
func (c *Comment) LikedBy(userID string) bool {
	return slices.Contains(c.Likes, userID)
}

// ToggleLike adds userID to the likes, or removes it if already present, and
// keeps NumberOfLikes in step. It returns true when the user now likes the
// comment.
func (c *Comment) ToggleLike(userID string) bool {
	if i := slices.Index(c.Likes, userID); i >= 0 {
		c.Likes = slices.Delete(c.Likes, i, i+1)
		c.NumberOfLikes = len(c.Likes)
		return false
	}
	c.Likes = append(c.Likes, userID)
	c.NumberOfLikes = len(c.Likes)
	return true
}
