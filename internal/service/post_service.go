package service

import (
	"context"

	"inkwell/internal/models"
	"inkwell/internal/pagination"
	"inkwell/internal/repository"
)

// Page sizes per listing. The author profile deliberately shows a short
// page so the follow card stays above the fold.
const (
	IndexPageSize   = 10
	GroupPageSize   = 10
	ProfilePageSize = 2
	FeedPageSize    = 10
)

type PostService struct {
	postRepo  repository.PostRepository
	groupRepo repository.GroupRepository
	userRepo  repository.UserRepository
}

type CreatePostInput struct {
	UserID   uint
	Text     string
	GroupID  *uint
	ImageURL string
}

type UpdatePostInput struct {
	UserID   uint
	PostID   uint
	Text     string
	GroupID  *uint
	ImageURL string
}

func NewPostService(
	postRepo repository.PostRepository,
	groupRepo repository.GroupRepository,
	userRepo repository.UserRepository,
) *PostService {
	return &PostService{
		postRepo:  postRepo,
		groupRepo: groupRepo,
		userRepo:  userRepo,
	}
}

// CreatePost stores a new post for the author. The group is optional; when
// given it must exist.
func (s *PostService) CreatePost(ctx context.Context, input CreatePostInput) (*models.Post, error) {
	if input.GroupID != nil {
		if _, err := s.groupRepo.GetByID(ctx, *input.GroupID); err != nil {
			return nil, err
		}
	}

	post := &models.Post{
		Text:     input.Text,
		UserID:   input.UserID,
		GroupID:  input.GroupID,
		ImageURL: input.ImageURL,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	return s.postRepo.GetByID(ctx, post.ID)
}

// UpdatePost rewrites an existing post. Only the author may edit; anyone
// else gets ErrNotAuthor and the post stays untouched.
func (s *PostService) UpdatePost(ctx context.Context, input UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, input.PostID)
	if err != nil {
		return nil, err
	}
	if post.UserID != input.UserID {
		return nil, models.ErrNotAuthor
	}

	if input.GroupID != nil {
		if _, err := s.groupRepo.GetByID(ctx, *input.GroupID); err != nil {
			return nil, err
		}
	}

	post.Text = input.Text
	post.GroupID = input.GroupID
	post.ImageURL = input.ImageURL
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}

	return s.postRepo.GetByID(ctx, post.ID)
}

func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id)
}

// Index returns the requested page of the global feed, newest first. An
// out-of-range page number is clamped to the nearest valid page.
func (s *PostService) Index(ctx context.Context, page int) (*pagination.Page[models.Post], error) {
	total, err := s.postRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	offset, limit, clamped, _ := pagination.Window(total, IndexPageSize, page)
	posts, err := s.postRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	p := pagination.Build(posts, total, IndexPageSize, clamped)
	return &p, nil
}

// GroupPosts returns the group plus the requested page of its posts.
func (s *PostService) GroupPosts(ctx context.Context, slug string, page int) (*models.Group, *pagination.Page[models.Post], error) {
	group, err := s.groupRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	total, err := s.postRepo.CountByGroup(ctx, group.ID)
	if err != nil {
		return nil, nil, err
	}
	offset, limit, clamped, _ := pagination.Window(total, GroupPageSize, page)
	posts, err := s.postRepo.ListByGroup(ctx, group.ID, limit, offset)
	if err != nil {
		return nil, nil, err
	}
	p := pagination.Build(posts, total, GroupPageSize, clamped)
	return group, &p, nil
}

// ProfilePosts returns the author plus the requested page of their posts.
func (s *PostService) ProfilePosts(ctx context.Context, username string, page int) (*models.User, *pagination.Page[models.Post], error) {
	author, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, nil, err
	}
	total, err := s.postRepo.CountByAuthor(ctx, author.ID)
	if err != nil {
		return nil, nil, err
	}
	offset, limit, clamped, _ := pagination.Window(total, ProfilePageSize, page)
	posts, err := s.postRepo.ListByAuthor(ctx, author.ID, limit, offset)
	if err != nil {
		return nil, nil, err
	}
	p := pagination.Build(posts, total, ProfilePageSize, clamped)
	return author, &p, nil
}
