package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"agora/internal/models"

	"gopkg.in/yaml.v3"
)

// Fixtures is a hand-written data set, usually loaded from YAML:
//
//	users:
//	  - name: Ada
//	    email: ada@example.com
//	posts:
//	  - author: ada@example.com
//	    text: Hello
//	    likes: [grace@example.com]
//	    comments:
//	      - author: grace@example.com
//	        text: Welcome!
type Fixtures struct {
	Users []models.User `yaml:"users"`
	Posts []FixturePost `yaml:"posts"`
}

// FixturePost refers to users by email.
type FixturePost struct {
	Author   string           `yaml:"author"`
	Text     string           `yaml:"text"`
	Likes    []string         `yaml:"likes"`
	Comments []FixtureComment `yaml:"comments"`
}

// FixtureComment is a comment inside a FixturePost.
type FixtureComment struct {
	Author string `yaml:"author"`
	Text   string `yaml:"text"`
}

// LoadFixtures decodes fixtures from r.
func LoadFixtures(r io.Reader) (*Fixtures, error) {
	var fx Fixtures
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fx); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	return &fx, nil
}

// LoadFixturesFile decodes fixtures from the YAML file at path.
func LoadFixturesFile(path string) (*Fixtures, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return LoadFixtures(f)
}

// ApplyFixtures stores the fixture users, then their posts. Posts are dated
// one minute apart in file order so the first post listed ends up oldest.
func (s *Seeder) ApplyFixtures(ctx context.Context, fx *Fixtures) (Summary, error) {
	var sum Summary
	byEmail := make(map[string]*models.User, len(fx.Users))

	for i := range fx.Users {
		u := fx.Users[i]
		if u.Email == "" {
			return sum, fmt.Errorf("fixture user %d has no email", i)
		}
		if u.ID == "" {
			u.ID = models.NewID()
		}
		if u.Date.IsZero() {
			u.Date = s.now()
		}
		if err := s.users.Create(ctx, &u); err != nil {
			return sum, fmt.Errorf("create user %s: %w", u.Email, err)
		}
		byEmail[strings.ToLower(u.Email)] = &u
		sum.Users++
	}

	lookup := func(email string) (*models.User, error) {
		u, ok := byEmail[strings.ToLower(email)]
		if !ok {
			return nil, fmt.Errorf("unknown fixture user %q", email)
		}
		return u, nil
	}

	base := s.now().Add(-time.Duration(len(fx.Posts)) * time.Minute)
	for i, fp := range fx.Posts {
		author, err := lookup(fp.Author)
		if err != nil {
			return sum, err
		}
		post := &models.Post{
			ID:       models.NewID(),
			UserID:   author.ID,
			Text:     fp.Text,
			Name:     author.Name,
			Avatar:   author.Avatar,
			Likes:    []models.Like{},
			Comments: []models.Comment{},
			Date:     base.Add(time.Duration(i) * time.Minute),
		}

		for _, email := range fp.Likes {
			u, err := lookup(email)
			if err != nil {
				return sum, err
			}
			if post.AddLike(u.ID) {
				sum.Likes++
			}
		}
		for j, fc := range fp.Comments {
			u, err := lookup(fc.Author)
			if err != nil {
				return sum, err
			}
			post.AddComment(models.Comment{
				ID:     models.NewID(),
				UserID: u.ID,
				Text:   fc.Text,
				Name:   u.Name,
				Avatar: u.Avatar,
				Date:   post.Date.Add(time.Duration(j+1) * time.Second),
			})
			sum.Comments++
		}

		if err := s.posts.Create(ctx, post); err != nil {
			return sum, fmt.Errorf("create post %d: %w", i, err)
		}
		sum.Posts++
	}
	return sum, nil
}
