// Package seed provides helpers to create demo data through the repositories.
// These helpers are intended for development and testing only.
package seed

import (
	"context"
	"fmt"
	"time"

	"agora/internal/models"
	"agora/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
)

// Options controls how much data Run creates.
type Options struct {
	Users       int
	Posts       int
	MaxLikes    int
	MaxComments int
	// MaxDays spreads post dates over the last MaxDays days.
	MaxDays int
	// RandSeed makes the generated content reproducible when non-zero.
	RandSeed int64
}

// DefaultOptions returns a small but lively data set.
func DefaultOptions() Options {
	return Options{
		Users:       20,
		Posts:       60,
		MaxLikes:    8,
		MaxComments: 5,
		MaxDays:     30,
	}
}

// Summary reports what a run created.
type Summary struct {
	Users    int
	Posts    int
	Likes    int
	Comments int
}

// Seeder builds users and posts and persists them through the repositories.
type Seeder struct {
	users repository.UserRepository
	posts repository.PostRepository
	opts  Options
	faker *gofakeit.Faker
	now   func() time.Time
}

// NewSeeder creates a Seeder.
func NewSeeder(users repository.UserRepository, posts repository.PostRepository, opts Options) *Seeder {
	seed := opts.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if opts.MaxDays <= 0 {
		opts.MaxDays = 30
	}
	return &Seeder{
		users: users,
		posts: posts,
		opts:  opts,
		faker: gofakeit.New(seed),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// BuildUser returns an unsaved user with fake profile data.
func (s *Seeder) BuildUser() *models.User {
	name := s.faker.Name()
	return &models.User{
		ID:     models.NewID(),
		Name:   name,
		Email:  fmt.Sprintf("%s.%s@example.com", s.faker.Username(), s.faker.LetterN(6)),
		Avatar: fmt.Sprintf("https://i.pravatar.cc/200?u=%s", s.faker.UUID()),
		Date:   s.now(),
	}
}

// BuildPost returns an unsaved post by author dated somewhere in the last
// MaxDays days.
func (s *Seeder) BuildPost(author *models.User) *models.Post {
	end := s.now()
	start := end.Add(-time.Duration(s.opts.MaxDays) * 24 * time.Hour)
	return &models.Post{
		ID:       models.NewID(),
		UserID:   author.ID,
		Text:     s.faker.Paragraph(1, 3, 12, " "),
		Name:     author.Name,
		Avatar:   author.Avatar,
		Likes:    []models.Like{},
		Comments: []models.Comment{},
		Date:     s.faker.DateRange(start, end).UTC(),
	}
}

// buildComment returns a comment by author dated after the post.
func (s *Seeder) buildComment(post *models.Post, author *models.User) models.Comment {
	return models.Comment{
		ID:     models.NewID(),
		UserID: author.ID,
		Text:   s.faker.Sentence(s.faker.Number(3, 14)),
		Name:   author.Name,
		Avatar: author.Avatar,
		Date:   s.faker.DateRange(post.Date, s.now()).UTC(),
	}
}

// Run creates Options.Users users and Options.Posts posts with random likes and
// comments from the seeded users.
func (s *Seeder) Run(ctx context.Context) (Summary, error) {
	var sum Summary
	if s.opts.Users <= 0 {
		return sum, nil
	}

	users := make([]*models.User, 0, s.opts.Users)
	for i := 0; i < s.opts.Users; i++ {
		u := s.BuildUser()
		if err := s.users.Create(ctx, u); err != nil {
			return sum, fmt.Errorf("create user %d: %w", i, err)
		}
		users = append(users, u)
		sum.Users++
	}

	for i := 0; i < s.opts.Posts; i++ {
		author := users[s.faker.Number(0, len(users)-1)]
		post := s.BuildPost(author)

		for _, u := range s.pick(users, s.opts.MaxLikes) {
			if post.AddLike(u.ID) {
				sum.Likes++
			}
		}
		for _, u := range s.pick(users, s.opts.MaxComments) {
			post.AddComment(s.buildComment(post, u))
			sum.Comments++
		}

		if err := s.posts.Create(ctx, post); err != nil {
			return sum, fmt.Errorf("create post %d: %w", i, err)
		}
		sum.Posts++
	}
	return sum, nil
}

// pick returns up to limit distinct users.
func (s *Seeder) pick(users []*models.User, limit int) []*models.User {
	if limit <= 0 || len(users) == 0 {
		return nil
	}
	if limit > len(users) {
		limit = len(users)
	}
	n := s.faker.Number(0, limit)
	shuffled := make([]*models.User, len(users))
	copy(shuffled, users)
	s.faker.ShuffleAnySlice(shuffled)
	return shuffled[:n]
}
