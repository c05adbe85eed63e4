package repo

import (
	"context"
	"testing"
	"time"

	"github.com/careboard/go-board-backend/internal/domain"
)

func TestAppendModerationLog_PersistsEntry(t *testing.T) {
	db := newBoardRepoDB(t, &domain.ModerationLog{})
	ctx := context.Background()

	start := time.Now().UTC().Add(-time.Minute)
	e, err := AppendModerationLog(ctx, db, "mod1", "item1", domain.BoardPrayer, domain.ActionFlag, "possible personal data")
	if err != nil {
		t.Fatalf("AppendModerationLog: %v", err)
	}
	if e.ID == "" || e.ModeratorID != "mod1" || e.Action != domain.ActionFlag {
		t.Fatalf("unexpected entry: %+v", e)
	}
	if e.CreatedAt.Before(start) {
		t.Fatalf("CreatedAt seems unset: %v", e.CreatedAt)
	}
}

func TestListModerationLog_NewestFirstAndScoped(t *testing.T) {
	db := newBoardRepoDB(t, &domain.ModerationLog{})
	ctx := context.Background()

	// Insert with explicit timestamps to make the ordering deterministic.
	base := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	entries := []domain.ModerationLog{
		{ID: "e1", ModeratorID: "m", ItemID: "item1", ItemType: domain.BoardNeed, Action: domain.ActionFlag, Reason: "r1", CreatedAt: base},
		{ID: "e2", ModeratorID: "m", ItemID: "item1", ItemType: domain.BoardNeed, Action: domain.ActionHide, Reason: "r2", CreatedAt: base.Add(time.Hour)},
		{ID: "e3", ModeratorID: "m", ItemID: "other", ItemType: domain.BoardNeed, Action: domain.ActionDelete, Reason: "r3", CreatedAt: base},
	}
	for i := range entries {
		if err := db.Create(&entries[i]).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	got, err := ListModerationLog(ctx, db, "item1")
	if err != nil {
		t.Fatalf("ListModerationLog: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("item scoping broken: %d entries", len(got))
	}
	if got[0].ID != "e2" || got[1].ID != "e1" {
		t.Fatalf("ordering broken: %s, %s", got[0].ID, got[1].ID)
	}
}
