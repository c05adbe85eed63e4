// Package services defines the business logic for boards, response
// aggregates, moderation, and categories. This file centralizes common
// service-level error values so that they can be consistently returned by
// service methods and checked by callers.
//
// These errors are intended for internal use by the service layer;
// translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import "errors"

var (
	// ErrUserNotFound indicates the acting user id resolved to nothing
	// (broken session). It is surfaced, never silently substituted.
	ErrUserNotFound = errors.New("user not found")

	// ErrRequestNotFound indicates the requested board item does not exist.
	ErrRequestNotFound = errors.New("request not found")

	// ErrCategoryNotFound indicates a referenced category does not exist.
	ErrCategoryNotFound = errors.New("category not found")

	// ErrUnauthorized is returned when a moderation action is attempted by a
	// non-moderator, or an admin action by a non-admin.
	ErrUnauthorized = errors.New("not permitted")

	// ErrForbidden is returned when a user mutates a request they do not own.
	ErrForbidden = errors.New("not the owner of this request")

	// ErrConflict is returned when an optimistic aggregate write keeps losing
	// to concurrent writers after the bounded retries are exhausted.
	ErrConflict = errors.New("concurrent update conflict")

	// ErrInvalidAction is returned for an unknown moderation action name.
	ErrInvalidAction = errors.New("unknown moderation action")

	// ErrInvalidBoardType is returned for a board type outside prayer/need.
	ErrInvalidBoardType = errors.New("unknown board type")

	// ErrEmptyDescription is returned when a request is created with a blank
	// description.
	ErrEmptyDescription = errors.New("description is empty")

	// ErrDescriptionTooLong is returned when a description exceeds the
	// configured rune limit.
	ErrDescriptionTooLong = errors.New("description too long")

	// ErrEmptyCategoryName is returned when a category is created without a
	// usable name.
	ErrEmptyCategoryName = errors.New("category name is empty")
)
