// Package services – BoardService
//
// This file implements the BoardService, the read side of the request
// boards. It resolves the acting user once per call, executes the filtered
// and paginated item query, and serves the two expensive aggregates (page
// total, active category list) through the injected cache with independent
// TTLs. Items, total, and categories are read inside one transaction so a
// concurrent delete cannot produce an inconsistent total vs items view
// within a single response.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/careboard/go-board-backend/internal/cache"
	"github.com/careboard/go-board-backend/internal/domain"
	"github.com/careboard/go-board-backend/internal/identity"
	"github.com/careboard/go-board-backend/internal/query"
)

// BoardRepo defines the repository contract required by BoardService.
type BoardRepo interface {
	// FindPage returns one window of requests for the spec.
	FindPage(ctx context.Context, db *gorm.DB, spec query.Spec, categoryID *string) ([]domain.Request, error)

	// Count returns the total matching rows; used as the cache compute
	// function for total keys.
	Count(ctx context.Context, db *gorm.DB, spec query.Spec, categoryID *string) (int64, error)

	// ActiveCategories returns the filterable categories of one board; used
	// as the cache compute function for category keys.
	ActiveCategories(ctx context.Context, db *gorm.DB, t domain.BoardType) ([]domain.Category, error)
}

// BoardItem is one request annotated with the acting user's moderation
// capability, resolved once per page so the presentation layer never needs a
// second permission lookup.
type BoardItem struct {
	domain.Request
	CanModerate bool `json:"can_moderate"`
}

// BoardPage is the full render model for one board view.
type BoardPage struct {
	Items        []BoardItem       `json:"items"`
	Total        int64             `json:"total"`
	HasNextPage  bool              `json:"has_next_page"`
	Categories   []domain.Category `json:"categories"`
	ActiveFilter string            `json:"active_filter"`
	Page         int               `json:"page"`
	PageSize     int               `json:"page_size"`
}

// BoardService executes paginated, filtered board reads.
type BoardService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the request repository used by this service.
	Repo BoardRepo
	// Directory resolves the acting user (external identity collaborator).
	Directory identity.Directory
	// Cache serves the total and category aggregates.
	Cache cache.Store

	// TotalTTL bounds the staleness of cached page totals.
	TotalTTL time.Duration
	// CategoriesTTL bounds the staleness of cached category lists.
	CategoriesTTL time.Duration
}

// NewBoardService constructs a BoardService with the default TTLs
// (5 minutes for totals, 20 minutes for category lists).
func NewBoardService(db *gorm.DB, r BoardRepo, dir identity.Directory, store cache.Store) *BoardService {
	return &BoardService{
		DB:            db,
		Repo:          r,
		Directory:     dir,
		Cache:         store,
		TotalTTL:      5 * time.Minute,
		CategoriesTTL: 20 * time.Minute,
	}
}

// ListPage returns one board page for the acting user.
//
// The user is resolved first; an unknown id fails with ErrUserNotFound.
// The category filter in the spec is a name and is resolved to an id through
// the cached category list; an unknown name yields an empty, well-formed
// page rather than an error. Totals cached for other type+filter
// combinations may be stale for up to TotalTTL; item existence and content
// are always read live.
func (s *BoardService) ListPage(ctx context.Context, userID string, spec query.Spec) (*BoardPage, error) {
	tr := otel.Tracer("services/BoardService")
	ctx, span := tr.Start(ctx, "ListPage",
		trace.WithAttributes(
			attribute.String("board.type", string(spec.Type)),
			attribute.String("board.filter", spec.Filter()),
			attribute.Int("page", spec.Page),
		),
	)
	defer span.End()

	user, err := s.Directory.ResolveUser(ctx, userID)
	if err != nil {
		if errors.Is(err, identity.ErrUnknownUser) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	page := &BoardPage{
		Items:        []BoardItem{},
		ActiveFilter: spec.Filter(),
		Page:         spec.Page,
		PageSize:     spec.Limit,
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cats, err := s.cachedCategories(ctx, tx, spec.Type)
		if err != nil {
			return err
		}
		page.Categories = cats

		categoryID, found := resolveCategoryID(cats, spec.CategoryName)
		if !found {
			// Filter names a category that is unknown or inactive: an empty
			// page, not an error.
			return nil
		}

		total, err := s.cachedTotal(ctx, tx, spec, categoryID)
		if err != nil {
			return err
		}
		page.Total = total
		if total == 0 {
			return nil
		}

		items, err := s.Repo.FindPage(ctx, tx, spec, categoryID)
		if err != nil {
			return err
		}
		canModerate := user.CanModerate()
		page.Items = make([]BoardItem, 0, len(items))
		for _, it := range items {
			page.Items = append(page.Items, BoardItem{Request: it, CanModerate: canModerate})
		}
		page.HasNextPage = int64(spec.Offset+len(items)) < total
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// cachedCategories serves the active category list of one board through the
// cache (20 min TTL by default).
func (s *BoardService) cachedCategories(ctx context.Context, tx *gorm.DB, t domain.BoardType) ([]domain.Category, error) {
	v, err := s.Cache.GetOrCompute(CategoriesCacheKey(t), s.CategoriesTTL, func() (any, error) {
		return s.Repo.ActiveCategories(ctx, tx, t)
	})
	if err != nil {
		return nil, err
	}
	cats, ok := v.([]domain.Category)
	if !ok {
		// Foreign value under our key; recompute live.
		return s.Repo.ActiveCategories(ctx, tx, t)
	}
	return cats, nil
}

// cachedTotal serves the row count of one type+filter combination through
// the cache (5 min TTL by default).
func (s *BoardService) cachedTotal(ctx context.Context, tx *gorm.DB, spec query.Spec, categoryID *string) (int64, error) {
	v, err := s.Cache.GetOrCompute(TotalCacheKey(spec.Type, spec.Filter()), s.TotalTTL, func() (any, error) {
		return s.Repo.Count(ctx, tx, spec, categoryID)
	})
	if err != nil {
		return 0, err
	}
	total, ok := v.(int64)
	if !ok {
		return s.Repo.Count(ctx, tx, spec, categoryID)
	}
	return total, nil
}

// resolveCategoryID maps the spec's optional category name onto the cached
// category list. found is false only when a name was given and no active
// category carries it.
func resolveCategoryID(cats []domain.Category, name *string) (id *string, found bool) {
	if name == nil {
		return nil, true
	}
	for i := range cats {
		if strings.EqualFold(cats[i].Name, *name) {
			return &cats[i].ID, true
		}
	}
	return nil, false
}
