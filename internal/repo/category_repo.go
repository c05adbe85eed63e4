// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Category
// model.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/careboard/go-board-backend/internal/domain"
)

// ListActiveCategories returns the active categories for one board type,
// ordered by name. Used as the cache compute function for
// "categories:{type}" keys.
func ListActiveCategories(ctx context.Context, db *gorm.DB, t domain.BoardType) ([]domain.Category, error) {
	var out []domain.Category
	err := db.WithContext(ctx).
		Where("type = ? AND active = ?", t, true).
		Order("name ASC").
		Find(&out).Error
	return out, err
}

// CreateCategory inserts a new category for a board type.
func CreateCategory(ctx context.Context, db *gorm.DB, t domain.BoardType, name string) (*domain.Category, error) {
	c := &domain.Category{
		ID:        uuid.NewString(),
		Name:      name,
		Type:      t,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// GetCategory fetches a category by id, or ErrNotFound.
func GetCategory(ctx context.Context, db *gorm.DB, id string) (*domain.Category, error) {
	var c domain.Category
	if err := db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// SetCategoryActive toggles a category's visibility in filter lists.
// Identity is immutable; only the Active flag changes. Returns ErrNotFound
// when no row matches.
func SetCategoryActive(ctx context.Context, db *gorm.DB, id string, active bool) error {
	res := db.WithContext(ctx).
		Model(&domain.Category{}).
		Where("id = ?", id).
		Update("active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountCategories returns the number of categories across both boards.
// Used by the seeding path in cmd/server.
func CountCategories(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.Category{}).Count(&n).Error
	return n, err
}
