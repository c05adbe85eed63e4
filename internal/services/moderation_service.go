// Package services – ModerationService
//
// This file implements the ModerationService, which applies privileged state
// transitions to board items and records the audit trail.
//
// Ordering contract: the audit entry is written before the side effect, in a
// separate persistence call, so a trail exists even when the side effect
// later fails. If the log write fails the side effect must not proceed.
// There is deliberately no shared transaction between the two: the log has
// its own durability boundary.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/careboard/go-board-backend/internal/cache"
	"github.com/careboard/go-board-backend/internal/domain"
	"github.com/careboard/go-board-backend/internal/repo"
	"github.com/rs/zerolog/log"
)

// Moderation action names accepted on the wire.
const (
	ModerateDelete  = "delete"
	ModeratePending = "pending"
	ModerateRemoved = "removed"
)

// ModerationRepo defines the repository contract required by
// ModerationService.
type ModerationRepo interface {
	// Get fetches the targeted request.
	Get(ctx context.Context, db *gorm.DB, id string) (*domain.Request, error)

	// AppendLog writes one immutable audit entry.
	AppendLog(ctx context.Context, db *gorm.DB, moderatorID, itemID string, itemType domain.BoardType, action domain.ModerationAction, reason string) (*domain.ModerationLog, error)

	// SetStatus applies a status/flag transition.
	SetStatus(ctx context.Context, db *gorm.DB, id string, status domain.RequestStatus, flagged bool) error

	// HardDelete permanently removes the row.
	HardDelete(ctx context.Context, db *gorm.DB, id string) error

	// Category fetches a category by id (for cache invalidation keys).
	Category(ctx context.Context, db *gorm.DB, id string) (*domain.Category, error)
}

// ModerationService applies moderation actions with a durable audit trail.
type ModerationService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the moderation repository used by this service.
	Repo ModerationRepo
	// Cache receives total invalidations for actions that change board
	// visibility.
	Cache cache.Store
}

// NewModerationService constructs a ModerationService.
func NewModerationService(db *gorm.DB, r ModerationRepo, store cache.Store) *ModerationService {
	return &ModerationService{DB: db, Repo: r, Cache: store}
}

// logAction maps a wire action name onto its audit-log action.
func logAction(action string) (domain.ModerationAction, error) {
	switch action {
	case ModerateDelete:
		return domain.ActionDelete, nil
	case ModeratePending:
		return domain.ActionFlag, nil
	case ModerateRemoved:
		return domain.ActionHide, nil
	default:
		return "", ErrInvalidAction
	}
}

// Apply performs one moderation action on itemID.
//
// Semantics:
//   - isModerator == false fails with ErrUnauthorized before anything is
//     written.
//   - "delete" permanently removes the item; "pending" sets status=pending
//     with flagged=true; "removed" sets status=removed with flagged=false.
//   - The audit entry is written first; a log failure aborts the action.
//   - Success is all-or-nothing from the caller's view: any error means the
//     side effect did not complete. The audit entry may still exist in that
//     case; the trail records attempts, not just outcomes.
func (s *ModerationService) Apply(ctx context.Context, actorID, itemID string, itemType domain.BoardType, action, reason string, isModerator bool) error {
	if !isModerator {
		return ErrUnauthorized
	}
	logged, err := logAction(action)
	if err != nil {
		return err
	}

	r, err := s.Repo.Get(ctx, s.DB, itemID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrRequestNotFound
		}
		return err
	}

	// Audit first. No trail, no action.
	if _, err := s.Repo.AppendLog(ctx, s.DB, actorID, itemID, itemType, logged, reason); err != nil {
		return err
	}

	switch action {
	case ModerateDelete:
		err = s.Repo.HardDelete(ctx, s.DB, itemID)
	case ModeratePending:
		err = s.Repo.SetStatus(ctx, s.DB, itemID, domain.StatusPending, true)
	case ModerateRemoved:
		err = s.Repo.SetStatus(ctx, s.DB, itemID, domain.StatusRemoved, false)
	}
	if err != nil {
		// The audit entry stands; the caller sees the failure and no state
		// change was applied.
		log.Error().Err(err).
			Str("item_id", itemID).
			Str("action", action).
			Msg("moderation side effect failed after audit write")
		if errors.Is(err, repo.ErrNotFound) {
			return ErrRequestNotFound
		}
		return err
	}

	var categoryName *string
	if r.CategoryID != nil {
		if cat, cerr := s.Repo.Category(ctx, s.DB, *r.CategoryID); cerr == nil {
			categoryName = &cat.Name
		}
	}
	invalidateTotals(s.Cache, r.Type, categoryName)
	return nil
}
