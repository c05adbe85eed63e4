package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/careboard/go-board-backend/internal/domain"
)

func TestGetUser_RoundTripAndNotFound(t *testing.T) {
	db := newBoardRepoDB(t, &domain.User{})
	ctx := context.Background()

	u := domain.User{ID: "u1", DisplayName: "Pat", Roles: domain.StringList{"moderator"}}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	got, err := GetUser(ctx, db, "u1")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.DisplayName != "Pat" || !got.HasRole("moderator") {
		t.Fatalf("round-trip mismatch: %+v", got)
	}

	if _, err := GetUser(ctx, db, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBoardStats_CountAndMaxUpdatedAt(t *testing.T) {
	db := newBoardRepoDB(t, &domain.Request{})
	ctx := context.Background()

	spec := activeSpec(domain.BoardPrayer)

	// Empty scope: zero count, nil timestamp.
	n, ts, err := BoardStats(ctx, db, spec, nil)
	if err != nil || n != 0 || ts != nil {
		t.Fatalf("empty stats: n=%d ts=%v err=%v", n, ts, err)
	}

	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		r := domain.Request{
			ID: id, Type: domain.BoardPrayer, Status: domain.StatusActive,
			Description: "x", Response: domain.NewResponseState(domain.BoardPrayer),
			OwnerID: "u1", CreatedAt: base, UpdatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		if err := db.Create(&r).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	n, ts, err = BoardStats(ctx, db, spec, nil)
	if err != nil {
		t.Fatalf("BoardStats: %v", err)
	}
	if n != 3 {
		t.Fatalf("count: %d", n)
	}
	if ts == nil || !ts.Equal(base.Add(2*time.Hour)) {
		t.Fatalf("max UpdatedAt wrong: %v", ts)
	}
}
