package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"inkwell/internal/models"
	"inkwell/internal/observability"
)

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error

	List(ctx context.Context, limit, offset int) ([]models.Post, error)
	Count(ctx context.Context) (int64, error)
	ListByGroup(ctx context.Context, groupID uint, limit, offset int) ([]models.Post, error)
	CountByGroup(ctx context.Context, groupID uint) (int64, error)
	ListByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]models.Post, error)
	CountByAuthor(ctx context.Context, authorID uint) (int64, error)
	ListByAuthors(ctx context.Context, authorIDs []uint, limit, offset int) ([]models.Post, error)
	CountByAuthors(ctx context.Context, authorIDs []uint) (int64, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// withDetails attaches the author, the optional group, and a live comment
// count to every selected post. Orders newest-first; the id tiebreak keeps
// the order stable when timestamps collide.
func (r *postRepository) withDetails(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Post{}).
		Select("posts.*, (SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.deleted_at IS NULL) AS comments_count").
		Preload("User").
		Preload("Group").
		Order("posts.created_at DESC, posts.id DESC")
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	start := time.Now()
	var post models.Post
	err := r.withDetails(ctx).Where("posts.id = ?", id).First(&post).Error
	observability.ObserveQuery("select", "posts", start)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Save(post).Error
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Post{}, id).Error
}

func (r *postRepository) List(ctx context.Context, limit, offset int) ([]models.Post, error) {
	start := time.Now()
	var posts []models.Post
	err := r.withDetails(ctx).Limit(limit).Offset(offset).Find(&posts).Error
	observability.ObserveQuery("select", "posts", start)
	return posts, err
}

func (r *postRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Count(&total).Error
	return total, err
}

func (r *postRepository) ListByGroup(ctx context.Context, groupID uint, limit, offset int) ([]models.Post, error) {
	var posts []models.Post
	err := r.withDetails(ctx).
		Where("posts.group_id = ?", groupID).
		Limit(limit).Offset(offset).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) CountByGroup(ctx context.Context, groupID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Where("group_id = ?", groupID).Count(&total).Error
	return total, err
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]models.Post, error) {
	var posts []models.Post
	err := r.withDetails(ctx).
		Where("posts.user_id = ?", authorID).
		Limit(limit).Offset(offset).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Where("user_id = ?", authorID).Count(&total).Error
	return total, err
}

func (r *postRepository) ListByAuthors(ctx context.Context, authorIDs []uint, limit, offset int) ([]models.Post, error) {
	if len(authorIDs) == 0 {
		return []models.Post{}, nil
	}
	var posts []models.Post
	err := r.withDetails(ctx).
		Where("posts.user_id IN ?", authorIDs).
		Limit(limit).Offset(offset).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) CountByAuthors(ctx context.Context, authorIDs []uint) (int64, error) {
	if len(authorIDs) == 0 {
		return 0, nil
	}
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Where("user_id IN ?", authorIDs).Count(&total).Error
	return total, err
}
