// Package seed fills an empty database with demo users, posts and comments.
package seed

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"inkwell/internal/models"
	"inkwell/internal/repositories"
	"inkwell/internal/services"
)

// DefaultPassword is the password of every seeded account.
const DefaultPassword = "randompassword123"

var usernames = []string{
	"inkwelladmin", "alicewrites", "bobreads42", "carolcodes", "davebloggs",
}

var posts = []struct {
	title, category, content string
}{
	{"Getting Started With Go", "go", "Install the toolchain, write main.go and run it."},
	{"Understanding Goroutines", "go", "Goroutines are cheap threads managed by the Go runtime."},
	{"Designing REST APIs", "web", "Resources, verbs and status codes all carry meaning."},
	{"Writing Useful Tests", "testing", "Table driven tests keep cases close to each other."},
	{"A Tour Of SQL Indexes", "databases", "An index trades write speed for faster reads."},
	{"Notes On Code Review", "uncategorized", "Review the change, not the person who wrote it."},
}

var comments = []string{
	"Great write-up, thanks!",
	"This cleared things up for me.",
	"Could you expand on the last section?",
	"Bookmarked for later.",
}

// Seeder writes demo content through the repositories.
type Seeder struct {
	users     repositories.UserRepository
	posts     repositories.PostRepository
	comments  repositories.CommentRepository
	passwords services.Passwords
	log       logrus.FieldLogger
}

// NewSeeder creates a new Seeder.
func NewSeeder(users repositories.UserRepository, posts repositories.PostRepository, comments repositories.CommentRepository, passwords services.Passwords, log logrus.FieldLogger) *Seeder {
	return &Seeder{
		users:     users,
		posts:     posts,
		comments:  comments,
		passwords: passwords,
		log:       log.WithField("component", "seed"),
	}
}

// Run seeds the database unless it already has users. The first seeded user
// is an admin and authors every post.
func (s *Seeder) Run(ctx context.Context) error {
	n, err := s.users.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		s.log.WithField("users", n).Info("database not empty, skipping seed")
		return nil
	}

	hashed, err := s.passwords.Hash(DefaultPassword)
	if err != nil {
		return err
	}

	seededUsers := make([]*models.User, 0, len(usernames))
	for i, name := range usernames {
		u := &models.User{
			Username:       name,
			Email:          name + "@example.com",
			Password:       hashed,
			ProfilePicture: models.DefaultProfilePicture,
			IsAdmin:        i == 0,
		}
		if err := s.users.Create(ctx, u); err != nil {
			return fmt.Errorf("failed to seed user %s: %w", name, err)
		}
		seededUsers = append(seededUsers, u)
	}
	author := seededUsers[0]

	seededPosts := make([]*models.Post, 0, len(posts))
	for _, p := range posts {
		post := &models.Post{
			UserID:   author.ID,
			Title:    p.title,
			Content:  p.content,
			Image:    models.DefaultPostImage,
			Category: p.category,
			Slug:     services.Slugify(p.title),
		}
		if err := s.posts.Create(ctx, post); err != nil {
			return fmt.Errorf("failed to seed post %q: %w", p.title, err)
		}
		seededPosts = append(seededPosts, post)
	}

	count := 0
	for i, post := range seededPosts {
		for j, text := range comments {
			commenter := seededUsers[1+(i+j)%(len(seededUsers)-1)]
			c := &models.Comment{PostID: post.ID, UserID: commenter.ID, Content: text}
			if err := s.comments.Create(ctx, c); err != nil {
				return fmt.Errorf("failed to seed comment: %w", err)
			}
			count++
		}
	}

	s.log.WithFields(logrus.Fields{
		"users":    len(seededUsers),
		"posts":    len(seededPosts),
		"comments": count,
	}).Info("seeding complete")
	return nil
}
