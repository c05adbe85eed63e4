// Package domain defines the persistence models for community request
// boards: prayer requests and material needs, their categories, and the
// moderation audit trail. These types are mapped with GORM and form the
// core data layer of the board application.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// BoardType discriminates the two request boards.
type BoardType string

const (
	BoardPrayer BoardType = "prayer"
	BoardNeed   BoardType = "need"
)

// Valid reports whether t is a known board type.
func (t BoardType) Valid() bool { return t == BoardPrayer || t == BoardNeed }

// RequestStatus is the moderation-visible lifecycle state of a request.
type RequestStatus string

const (
	StatusActive  RequestStatus = "active"
	StatusPending RequestStatus = "pending"
	StatusRemoved RequestStatus = "removed"
)

// ModerationAction names the audit-log action recorded for a moderation
// side effect.
type ModerationAction string

const (
	ActionDelete ModerationAction = "DELETE"
	ActionFlag   ModerationAction = "FLAG"
	ActionHide   ModerationAction = "HIDE"
)

// Request represents one board item: a prayer request or a material need.
// It is owned by its creator; the owner toggles participation and
// fulfillment, moderators drive status transitions.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Type: board discriminator ("prayer" or "need"), enforced by DB check.
//   - Status: active/pending/removed; boards list only active items.
//   - CategoryID: weak reference to a Category (nullable, never owning).
//   - Fulfilled: terminal aggregate state; a testimony may accompany it.
//   - Flagged: set by the "pending" moderation action.
//   - Response: the denormalized per-item aggregate (counts, participant
//     set, testimony), stored as a JSON column.
//   - Version: optimistic-concurrency token guarding Response writes.
//   - DeletedAt: soft deletion marker for owner deletes; moderation
//     "delete" removes the row permanently.
type Request struct {
	ID          string         `json:"id"          gorm:"type:char(36);primaryKey"`
	Type        BoardType      `json:"type"        gorm:"type:varchar(8);not null;index:idx_board,priority:1;check:type IN ('prayer','need')"`
	Status      RequestStatus  `json:"status"      gorm:"type:varchar(8);not null;default:'active';index:idx_board,priority:2;check:status IN ('active','pending','removed')"`
	CategoryID  *string        `json:"category_id" gorm:"type:char(36);index"`
	Description string         `json:"description" gorm:"type:text;not null"`
	Fulfilled   bool           `json:"fulfilled"   gorm:"not null;default:false"`
	Flagged     bool           `json:"flagged"     gorm:"not null;default:false"`
	Response    ResponseState  `json:"response"    gorm:"type:text"`
	Version     int64          `json:"-"           gorm:"not null;default:0"`
	OwnerID     string         `json:"owner_id"    gorm:"type:varchar(64);not null;index"`
	CreatedAt   time.Time      `json:"created_at"  gorm:"index:idx_board,priority:3"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-"           gorm:"index"`
}

// TableName returns the database table name for Request.
func (Request) TableName() string { return "requests" }

// Category is a board-scoped label referenced by many requests. Identity is
// immutable; only the Active flag is toggled (by admins). Inactive
// categories disappear from filter lists but existing requests keep their
// reference.
type Category struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	Name      string    `json:"name"       gorm:"type:varchar(64);not null;uniqueIndex:ux_category_type_name,priority:2"`
	Type      BoardType `json:"type"       gorm:"type:varchar(8);not null;uniqueIndex:ux_category_type_name,priority:1;check:type IN ('prayer','need')"`
	Active    bool      `json:"active"     gorm:"not null;default:true"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for Category.
func (Category) TableName() string { return "categories" }

// ModerationLog is an append-only audit entry created alongside every
// moderation side effect. Rows are never updated or deleted; there is no
// soft-delete marker on purpose.
type ModerationLog struct {
	ID          string           `json:"id"           gorm:"type:char(36);primaryKey"`
	ModeratorID string           `json:"moderator_id" gorm:"type:varchar(64);not null;index"`
	ItemID      string           `json:"item_id"      gorm:"type:char(36);not null;index"`
	ItemType    BoardType        `json:"item_type"    gorm:"type:varchar(8);not null"`
	Action      ModerationAction `json:"action"       gorm:"type:varchar(8);not null;check:action IN ('DELETE','FLAG','HIDE')"`
	Reason      string           `json:"reason"       gorm:"type:text;not null"`
	CreatedAt   time.Time        `json:"created_at"`
}

// TableName returns the database table name for ModerationLog.
func (ModerationLog) TableName() string { return "moderation_log" }

// User is the minimal identity row backing the directory collaborator.
// Session resolution happens upstream; this table only answers
// "does the user exist and which roles do they hold".
type User struct {
	ID          string     `json:"id"           gorm:"type:varchar(64);primaryKey"`
	DisplayName string     `json:"display_name" gorm:"type:varchar(128);not null;default:''"`
	Roles       StringList `json:"roles"        gorm:"type:text"`
	CreatedAt   time.Time  `json:"created_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// HasRole reports whether the user holds the named role.
func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r == name {
			return true
		}
	}
	return false
}
