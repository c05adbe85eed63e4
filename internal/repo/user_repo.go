// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the user lookup backing the identity
// collaborator and aggregate statistics used for conditional responses
// (ETag generation) in the HTTP layer.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/careboard/go-board-backend/internal/domain"
	"github.com/careboard/go-board-backend/internal/query"
)

// GetUser fetches a user row by id, or ErrNotFound. A missing row means a
// broken session upstream; callers surface it, never substitute a default.
func GetUser(ctx context.Context, db *gorm.DB, id string) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// BoardStats returns aggregate metadata for a board page scope: the number
// of matching rows and the greatest UpdatedAt among them. The HTTP layer
// derives a weak ETag from the pair; any insert, delete, toggle, or
// moderation edit moves one of the two values.
func BoardStats(ctx context.Context, db *gorm.DB, spec query.Spec, categoryID *string) (count int64, maxUpdatedAt *time.Time, err error) {
	if err = specQuery(db.WithContext(ctx), spec, categoryID).Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Scan a single ordered row instead of MAX(), which SQLite types as TEXT.
	var row struct {
		UpdatedAt time.Time
	}
	err = specQuery(db.WithContext(ctx), spec, categoryID).
		Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error
	if err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}
