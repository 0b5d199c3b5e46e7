package models

import "time"

// DefaultProfilePicture is assigned to users that do not supply one.
const DefaultProfilePicture = "https://cdn.pixabay.com/photo/2015/10/05/22/37/blank-profile-picture-973460_960_720.png"

// User represents an account on the blog.
type User struct {
	ID             string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Username       string    `json:"username" gorm:"uniqueIndex;type:varchar(100);not null"`
	Email          string    `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	Password       string    `json:"-" gorm:"type:varchar(255);not null"` // bcrypt hash, never serialized
	ProfilePicture string    `json:"profile_picture"`
	IsAdmin        bool      `json:"is_admin" gorm:"not null;default:false"`
	CreatedAt      time.Time `json:"created_at" gorm:"index"`
	UpdatedAt      time.Time `json:"updated_at"`
}
