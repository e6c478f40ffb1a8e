package service

import (
	"context"

	"inkwell/internal/models"
	"inkwell/internal/pagination"
	"inkwell/internal/repository"
)

// FollowService manages the reader-to-author follow graph and the
// personalized feed built from it.
type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
	postRepo   repository.PostRepository
}

func NewFollowService(
	followRepo repository.FollowRepository,
	userRepo repository.UserRepository,
	postRepo repository.PostRepository,
) *FollowService {
	return &FollowService{
		followRepo: followRepo,
		userRepo:   userRepo,
		postRepo:   postRepo,
	}
}

// Follow subscribes the user to the author's posts. Following yourself and
// following someone you already follow are both silent no-ops.
func (s *FollowService) Follow(ctx context.Context, userID uint, username string) error {
	author, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if author.ID == userID {
		return nil
	}
	return s.followRepo.Create(ctx, &models.Follow{UserID: userID, AuthorID: author.ID})
}

// Unfollow removes the subscription. Unfollowing an author you never
// followed succeeds with nothing to do; the end state is what matters.
func (s *FollowService) Unfollow(ctx context.Context, userID uint, username string) error {
	author, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	return s.followRepo.Delete(ctx, userID, author.ID)
}

func (s *FollowService) IsFollowing(ctx context.Context, userID, authorID uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	return s.followRepo.Exists(ctx, userID, authorID)
}

// Feed returns the requested page of posts by every author the user
// follows, newest first. A user following nobody gets an empty page.
func (s *FollowService) Feed(ctx context.Context, userID uint, page int) (*pagination.Page[models.Post], error) {
	authorIDs, err := s.followRepo.ListAuthorIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	total, err := s.postRepo.CountByAuthors(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	offset, limit, clamped, _ := pagination.Window(total, FeedPageSize, page)
	posts, err := s.postRepo.ListByAuthors(ctx, authorIDs, limit, offset)
	if err != nil {
		return nil, err
	}
	p := pagination.Build(posts, total, FeedPageSize, clamped)
	return &p, nil
}
