// Package services – ResponseService
//
// This file implements the ResponseService, which owns every mutation of a
// request's denormalized response aggregate: participation toggles,
// fulfillment transitions, and the request create/delete lifecycle around
// them.
//
// The toggle is a read-modify-write over the whole aggregate document. It is
// made safe without row locks by the optimistic version token on the request
// row: a writer that lost the race gets zero affected rows, re-reads fresh
// state, and retries (bounded). Two concurrent toggles therefore both land;
// neither participant is silently dropped.
package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/careboard/go-board-backend/internal/cache"
	"github.com/careboard/go-board-backend/internal/domain"
	"github.com/careboard/go-board-backend/internal/repo"
)

// toggleRetries bounds the optimistic retry loop. Each attempt re-reads
// fresh state, so retries are safe; exhausting them surfaces ErrConflict.
const toggleRetries = 3

// RequestRepo defines the repository contract required by ResponseService.
type RequestRepo interface {
	// Get fetches a request by id.
	Get(ctx context.Context, db *gorm.DB, id string) (*domain.Request, error)

	// Create inserts a request with an empty aggregate for its board type.
	Create(ctx context.Context, db *gorm.DB, ownerID string, t domain.BoardType, categoryID *string, description string) (*domain.Request, error)

	// UpdateResponseState writes the aggregate back under the version guard.
	UpdateResponseState(ctx context.Context, db *gorm.DB, id string, expectedVersion int64, state domain.ResponseState, fulfilled bool) error

	// Delete soft-deletes an owner's request.
	Delete(ctx context.Context, db *gorm.DB, id, ownerID string) error

	// Category fetches a category by id (for validation and cache keys).
	Category(ctx context.Context, db *gorm.DB, id string) (*domain.Category, error)
}

// ResponseService applies atomic-semantics updates to request aggregates.
type ResponseService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the request repository used by this service.
	Repo RequestRepo
	// Cache receives total invalidations for writes that change row counts.
	Cache cache.Store

	// MaxDescriptionRunes caps new request descriptions; 0 disables the cap.
	MaxDescriptionRunes int

	// now is an injection point for tests; defaults to time.Now.
	now func() time.Time
}

// NewResponseService constructs a ResponseService with a 4000-rune
// description cap.
func NewResponseService(db *gorm.DB, r RequestRepo, store cache.Store) *ResponseService {
	return &ResponseService{
		DB:                  db,
		Repo:                r,
		Cache:               store,
		MaxDescriptionRunes: 4000,
		now:                 time.Now,
	}
}

func (s *ResponseService) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

// ToggleParticipation flips userID's membership in the request's participant
// set and returns the request with the updated aggregate. Calling it twice
// in sequence restores the original aggregate.
//
// Lost updates are impossible: the write is guarded by the request version
// and retried against fresh state when a concurrent writer got there first.
// After the bounded retries are exhausted the call fails with ErrConflict
// and no state change.
func (s *ResponseService) ToggleParticipation(ctx context.Context, requestID, userID string) (*domain.Request, error) {
	tr := otel.Tracer("services/ResponseService")
	ctx, span := tr.Start(ctx, "ToggleParticipation",
		trace.WithAttributes(
			attribute.String("request.id", requestID),
			attribute.String("user.id", userID),
		),
	)
	defer span.End()

	for attempt := 0; attempt < toggleRetries; attempt++ {
		r, err := s.Repo.Get(ctx, s.DB, requestID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil, ErrRequestNotFound
			}
			return nil, err
		}

		state := r.Response
		state.Active().Toggle(userID, s.clock())

		err = s.Repo.UpdateResponseState(ctx, s.DB, requestID, r.Version, state, r.Fulfilled)
		if err == nil {
			r.Response = state
			r.Version++
			return r, nil
		}
		if errors.Is(err, repo.ErrVersionConflict) {
			span.AddEvent("version conflict, retrying")
			continue
		}
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return nil, ErrConflict
}

// MarkFulfilled transitions the request's fulfillment state. Only the owner
// may call it.
//
// Transitioning to fulfilled may attach a testimony (optional, empty
// allowed). Transitioning back to unfulfilled clears any testimony so the
// aggregate never shows a message on an open request.
func (s *ResponseService) MarkFulfilled(ctx context.Context, requestID, actorID string, fulfilled bool, testimony *string) (*domain.Request, error) {
	for attempt := 0; attempt < toggleRetries; attempt++ {
		r, err := s.Repo.Get(ctx, s.DB, requestID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil, ErrRequestNotFound
			}
			return nil, err
		}
		if r.OwnerID != actorID {
			return nil, ErrForbidden
		}

		state := r.Response
		if fulfilled {
			if testimony != nil {
				state.SetMessage(strings.TrimSpace(*testimony), s.clock())
			}
		} else {
			state.ClearMessage(s.clock())
		}

		err = s.Repo.UpdateResponseState(ctx, s.DB, requestID, r.Version, state, fulfilled)
		if err == nil {
			r.Response = state
			r.Fulfilled = fulfilled
			r.Version++
			return r, nil
		}
		if errors.Is(err, repo.ErrVersionConflict) {
			continue
		}
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return nil, ErrConflict
}

// CreateRequest validates and inserts a new board item, then invalidates the
// totals its appearance changes.
func (s *ResponseService) CreateRequest(ctx context.Context, ownerID string, t domain.BoardType, categoryID *string, description string) (*domain.Request, error) {
	if !t.Valid() {
		return nil, ErrInvalidBoardType
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, ErrEmptyDescription
	}
	if s.MaxDescriptionRunes > 0 && utf8.RuneCountInString(description) > s.MaxDescriptionRunes {
		return nil, ErrDescriptionTooLong
	}

	var categoryName *string
	if categoryID != nil {
		cat, err := s.Repo.Category(ctx, s.DB, *categoryID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, err
		}
		categoryName = &cat.Name
	}

	r, err := s.Repo.Create(ctx, s.DB, ownerID, t, categoryID, description)
	if err != nil {
		return nil, err
	}
	invalidateTotals(s.Cache, t, categoryName)
	return r, nil
}

// DeleteRequest soft-deletes a request on behalf of its owner and
// invalidates the affected totals. Moderation deletes go through
// ModerationService instead.
func (s *ResponseService) DeleteRequest(ctx context.Context, requestID, actorID string) error {
	r, err := s.Repo.Get(ctx, s.DB, requestID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrRequestNotFound
		}
		return err
	}
	if r.OwnerID != actorID {
		return ErrForbidden
	}

	if err := s.Repo.Delete(ctx, s.DB, requestID, actorID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrRequestNotFound
		}
		return err
	}
	s.invalidateFor(ctx, r)
	return nil
}

// invalidateFor drops the totals covering r's type and category.
func (s *ResponseService) invalidateFor(ctx context.Context, r *domain.Request) {
	var categoryName *string
	if r.CategoryID != nil {
		if cat, err := s.Repo.Category(ctx, s.DB, *r.CategoryID); err == nil {
			categoryName = &cat.Name
		}
	}
	invalidateTotals(s.Cache, r.Type, categoryName)
}
