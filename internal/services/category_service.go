// Package services – CategoryService
//
// Admin-side category management: creating categories and toggling their
// visibility in filter lists. Category identity is immutable; only the
// Active flag changes. Both operations invalidate the cached category list
// of the affected board so filters refresh immediately instead of waiting
// out the 20-minute TTL.
package services

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/careboard/go-board-backend/internal/cache"
	"github.com/careboard/go-board-backend/internal/domain"
	"github.com/careboard/go-board-backend/internal/repo"
)

// CategoryService manages the filterable category lists.
type CategoryService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Cache holds the per-board category lists to invalidate on writes.
	Cache cache.Store

	caser cases.Caser
}

// NewCategoryService constructs a CategoryService with English title casing
// for stored names.
func NewCategoryService(db *gorm.DB, store cache.Store) *CategoryService {
	return &CategoryService{
		DB:    db,
		Cache: store,
		caser: cases.Title(language.English),
	}
}

// Create inserts a category under a normalized display name (trimmed,
// whitespace collapsed, title-cased) so filter lists stay tidy regardless of
// input casing.
func (s *CategoryService) Create(ctx context.Context, t domain.BoardType, name string) (*domain.Category, error) {
	if !t.Valid() {
		return nil, ErrInvalidBoardType
	}
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return nil, ErrEmptyCategoryName
	}
	name = s.caser.String(name)

	c, err := repo.CreateCategory(ctx, s.DB, t, name)
	if err != nil {
		return nil, err
	}
	s.Cache.Invalidate(CategoriesCacheKey(t))
	return c, nil
}

// SetActive toggles a category's visibility and refreshes the cached list.
func (s *CategoryService) SetActive(ctx context.Context, id string, active bool) error {
	c, err := repo.GetCategory(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}
	if err := repo.SetCategoryActive(ctx, s.DB, id, active); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}
	s.Cache.Invalidate(CategoriesCacheKey(c.Type))
	return nil
}
