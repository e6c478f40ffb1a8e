package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"inkwell/internal/cache"
	"inkwell/internal/models"
)

type GroupRepository interface {
	Create(ctx context.Context, group *models.Group) error
	List(ctx context.Context) ([]models.Group, error)
	GetByID(ctx context.Context, id uint) (*models.Group, error)
	GetBySlug(ctx context.Context, slug string) (*models.Group, error)
}

type groupRepository struct {
	db    *gorm.DB
	cache *cache.Cache
}

func NewGroupRepository(db *gorm.DB, c *cache.Cache) GroupRepository {
	return &groupRepository{db: db, cache: c}
}

func (r *groupRepository) Create(ctx context.Context, group *models.Group) error {
	return r.db.WithContext(ctx).Create(group).Error
}

func (r *groupRepository) List(ctx context.Context) ([]models.Group, error) {
	var groups []models.Group
	err := r.db.WithContext(ctx).Order("title asc").Find(&groups).Error
	return groups, err
}

func (r *groupRepository) GetByID(ctx context.Context, id uint) (*models.Group, error) {
	var group models.Group
	err := r.db.WithContext(ctx).First(&group, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Group", id)
		}
		return nil, err
	}
	return &group, nil
}

// GetBySlug serves group metadata cache-aside. Groups never change through
// the API, so the cached copy cannot go stale in any way a reader can see.
func (r *groupRepository) GetBySlug(ctx context.Context, slug string) (*models.Group, error) {
	var group models.Group
	err := r.cache.Aside(ctx, cache.GroupKey(slug), &group, cache.GroupTTL, func() error {
		return r.db.WithContext(ctx).Where("slug = ?", slug).First(&group).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Group", slug)
		}
		return nil, err
	}
	return &group, nil
}
