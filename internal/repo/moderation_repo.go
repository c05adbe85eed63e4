// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// append-only moderation audit log.
//
// The log is insert-only by contract: there is deliberately no update or
// delete function here, and the service layer writes an entry before it
// applies the matching side effect.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/careboard/go-board-backend/internal/domain"
)

// AppendModerationLog inserts one audit entry. CreatedAt is set to UTC.
func AppendModerationLog(ctx context.Context, db *gorm.DB, moderatorID, itemID string, itemType domain.BoardType, action domain.ModerationAction, reason string) (*domain.ModerationLog, error) {
	e := &domain.ModerationLog{
		ID:          uuid.NewString(),
		ModeratorID: moderatorID,
		ItemID:      itemID,
		ItemType:    itemType,
		Action:      action,
		Reason:      reason,
		CreatedAt:   time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(e).Error; err != nil {
		return nil, err
	}
	return e, nil
}

// ListModerationLog returns the audit entries for one item, newest first.
func ListModerationLog(ctx context.Context, db *gorm.DB, itemID string) ([]domain.ModerationLog, error) {
	var out []domain.ModerationLog
	err := db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}
