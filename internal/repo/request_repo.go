// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Request
// model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a request is not found, functions return ErrNotFound (an alias of
//     gorm.ErrRecordNotFound).
//   - UpdateResponseState returns ErrVersionConflict when the optimistic
//     token no longer matches; the caller re-reads and retries.
//   - On other DB errors the raw gorm error is propagated.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/careboard/go-board-backend/internal/domain"
	"github.com/careboard/go-board-backend/internal/query"
)

// ErrNotFound is returned when a requested record does not exist. It aliases
// gorm.ErrRecordNotFound for convenience and consistency across the service
// layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrVersionConflict is returned when an optimistic-concurrency write loses
// to a concurrent writer (the stored version no longer matches).
var ErrVersionConflict = errors.New("request version conflict")

// specQuery composes the WHERE clause for a board spec: board type, status,
// and the optional category constraint.
func specQuery(db *gorm.DB, spec query.Spec, categoryID *string) *gorm.DB {
	q := db.Model(&domain.Request{}).
		Where("type = ? AND status = ?", spec.Type, spec.Status)
	if categoryID != nil {
		q = q.Where("category_id = ?", *categoryID)
	}
	return q
}

// FindRequestsPage returns one board page for the given spec. The category
// constraint is passed as a resolved id (the service resolves the spec's
// category name through the cached category list).
func FindRequestsPage(ctx context.Context, db *gorm.DB, spec query.Spec, categoryID *string) ([]domain.Request, error) {
	var out []domain.Request
	err := specQuery(db.WithContext(ctx), spec, categoryID).
		Order(spec.OrderBy()).
		Offset(spec.Offset).
		Limit(spec.Limit).
		Find(&out).Error
	return out, err
}

// CountRequests returns the total number of requests matching the spec's
// base constraints and category. Used as the cache compute function for
// "total:{type}:{filter}" keys.
func CountRequests(ctx context.Context, db *gorm.DB, spec query.Spec, categoryID *string) (int64, error) {
	var total int64
	err := specQuery(db.WithContext(ctx), spec, categoryID).Count(&total).Error
	return total, err
}

// CreateRequest inserts a new request with a fresh empty response aggregate
// for its board type. The id is a generated UUID and CreatedAt is UTC.
func CreateRequest(ctx context.Context, db *gorm.DB, ownerID string, t domain.BoardType, categoryID *string, description string) (*domain.Request, error) {
	r := &domain.Request{
		ID:          uuid.NewString(),
		Type:        t,
		Status:      domain.StatusActive,
		CategoryID:  categoryID,
		Description: description,
		Response:    domain.NewResponseState(t),
		OwnerID:     ownerID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(r).Error; err != nil {
		return nil, err
	}
	return r, nil
}

// GetRequest fetches a request by id, or ErrNotFound.
func GetRequest(ctx context.Context, db *gorm.DB, id string) (*domain.Request, error) {
	var r domain.Request
	if err := db.WithContext(ctx).Where("id = ?", id).First(&r).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

// UpdateResponseState writes the full response aggregate (and the fulfilled
// flag) back to the row, guarded by the optimistic version token. The write
// succeeds only when the stored version still equals expectedVersion; the
// version is bumped in the same statement, so a concurrent writer's update
// matches zero rows and surfaces as ErrVersionConflict instead of a silent
// lost update.
func UpdateResponseState(ctx context.Context, db *gorm.DB, id string, expectedVersion int64, state domain.ResponseState, fulfilled bool) error {
	res := db.WithContext(ctx).
		Model(&domain.Request{}).
		Where("id = ? AND version = ?", id, expectedVersion).
		Updates(map[string]any{
			"response":   state,
			"fulfilled":  fulfilled,
			"version":    expectedVersion + 1,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// Distinguish "row gone" from "version moved".
		var n int64
		if err := db.WithContext(ctx).Model(&domain.Request{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		return ErrVersionConflict
	}
	return nil
}

// SetRequestStatus applies a moderation status transition together with the
// flagged marker. Returns ErrNotFound when no row matches.
func SetRequestStatus(ctx context.Context, db *gorm.DB, id string, status domain.RequestStatus, flagged bool) error {
	res := db.WithContext(ctx).
		Model(&domain.Request{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "flagged": flagged})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteRequest soft-deletes a request owned by ownerID. Returns ErrNotFound
// when the row is missing or owned by someone else.
func DeleteRequest(ctx context.Context, db *gorm.DB, id, ownerID string) error {
	res := db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&domain.Request{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// HardDeleteRequest permanently removes a request row. Used only by the
// moderation "delete" action; owner deletes stay soft.
func HardDeleteRequest(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Unscoped().Where("id = ?", id).Delete(&domain.Request{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
