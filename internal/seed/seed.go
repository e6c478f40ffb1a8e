// Package seed creates demo data for the application database. It is meant
// for development and testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"inkwell/internal/models"
)

// Options controls how much demo data gets generated.
type Options struct {
	Users           int
	Groups          int
	PostsPerUser    int
	CommentsPerPost int
	FollowsPerUser  int
	// MaxDays spreads post timestamps over this many days back.
	MaxDays int
	// Password is assigned to every seeded user so they can log in.
	Password string
}

// DefaultOptions is a small but lively demo data set.
func DefaultOptions() Options {
	return Options{
		Users:           8,
		Groups:          4,
		PostsPerUser:    6,
		CommentsPerPost: 2,
		FollowsPerUser:  3,
		MaxDays:         90,
		Password:        "inkwell-demo1",
	}
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:   db,
		opts: opts,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CreateUser persists a user with a believable profile.
func (f *Factory) CreateUser() (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(f.opts.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: fmt.Sprintf("%s%d", gofakeit.Username(), f.rng.Intn(10000)),
		Email:    gofakeit.Email(),
		Password: string(hashed),
		Bio:      gofakeit.Sentence(8),
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateGroup persists a group with a unique slug.
func (f *Factory) CreateGroup() (*models.Group, error) {
	noun := gofakeit.NounConcrete()
	group := &models.Group{
		Title:       fmt.Sprintf("%s %s", gofakeit.AdjectiveDescriptive(), noun),
		Slug:        fmt.Sprintf("%s-%d", gofakeit.Adverb(), f.rng.Intn(100000)),
		Description: gofakeit.Paragraph(1, 2, 8, " "),
	}
	if err := f.db.Create(group).Error; err != nil {
		return nil, err
	}
	return group, nil
}

// CreatePost persists a post by the user, optionally into a group, with a
// created_at spread over the recent past.
func (f *Factory) CreatePost(user *models.User, group *models.Group) (*models.Post, error) {
	post := &models.Post{
		Text:   gofakeit.Paragraph(1, 3, 6, "\n"),
		UserID: user.ID,
	}
	if group != nil {
		post.GroupID = &group.ID
	}
	if f.rng.Intn(4) == 0 {
		post.ImageURL = fmt.Sprintf("https://picsum.photos/seed/%s/800/600", gofakeit.UUID())
	}

	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	back := time.Duration(f.rng.Intn(maxDays))*24*time.Hour +
		time.Duration(f.rng.Intn(24))*time.Hour +
		time.Duration(f.rng.Intn(60))*time.Minute
	post.CreatedAt = time.Now().Add(-back)

	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment persists a comment on the post.
func (f *Factory) CreateComment(user *models.User, post *models.Post) (*models.Comment, error) {
	comment := &models.Comment{
		Text:   gofakeit.Sentence(12),
		UserID: user.ID,
		PostID: post.ID,
	}
	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// Run populates the database with a connected set of users, groups, posts,
// comments and follows.
func Run(db *gorm.DB, opts Options) error {
	f := NewFactory(db, opts)

	users := make([]*models.User, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		u, err := f.CreateUser()
		if err != nil {
			return fmt.Errorf("seeding user: %w", err)
		}
		users = append(users, u)
	}

	groups := make([]*models.Group, 0, opts.Groups)
	for i := 0; i < opts.Groups; i++ {
		g, err := f.CreateGroup()
		if err != nil {
			return fmt.Errorf("seeding group: %w", err)
		}
		groups = append(groups, g)
	}

	var posts []*models.Post
	for _, u := range users {
		for i := 0; i < opts.PostsPerUser; i++ {
			var g *models.Group
			if len(groups) > 0 && f.rng.Intn(2) == 0 {
				g = groups[f.rng.Intn(len(groups))]
			}
			p, err := f.CreatePost(u, g)
			if err != nil {
				return fmt.Errorf("seeding post: %w", err)
			}
			posts = append(posts, p)
		}
	}

	for _, p := range posts {
		for i := 0; i < opts.CommentsPerPost; i++ {
			commenter := users[f.rng.Intn(len(users))]
			if _, err := f.CreateComment(commenter, p); err != nil {
				return fmt.Errorf("seeding comment: %w", err)
			}
		}
	}

	// Follow edges; the unique pair index makes repeats harmless.
	for _, u := range users {
		for i := 0; i < opts.FollowsPerUser; i++ {
			author := users[f.rng.Intn(len(users))]
			if author.ID == u.ID {
				continue
			}
			edge := &models.Follow{UserID: u.ID, AuthorID: author.ID}
			if err := db.Where("user_id = ? AND author_id = ?", u.ID, author.ID).
				FirstOrCreate(edge).Error; err != nil {
				return fmt.Errorf("seeding follow: %w", err)
			}
		}
	}

	log.Printf("seeded %d users, %d groups, %d posts", len(users), len(groups), len(posts))
	return nil
}
