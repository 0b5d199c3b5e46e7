package models

import "time"

const (
	DefaultPostImage = "https://www.hostinger.com/tutorials/wp-content/uploads/sites/2/2021/09/how-to-write-a-blog-post.png"
	DefaultCategory  = "uncategorized"
)

// Post is an article written by an admin.
type Post struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"user_id" gorm:"type:varchar(36);not null;index"`
	Title     string    `json:"title" gorm:"uniqueIndex;not null"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	Image     string    `json:"image"`
	Category  string    `json:"category" gorm:"index"`
	Slug      string    `json:"slug" gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at" gorm:"index"`
}
