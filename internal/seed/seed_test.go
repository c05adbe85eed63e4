package seed

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/careboard/go-board-backend/internal/domain"
	"github.com/careboard/go-board-backend/internal/repo"
)

func newSeedDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("seed_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := db.AutoMigrate(&domain.Category{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func TestCategories_SeedsBothBoards(t *testing.T) {
	db := newSeedDB(t)
	ctx := context.Background()

	if err := Categories(ctx, db); err != nil {
		t.Fatalf("Categories: %v", err)
	}

	prayer, err := repo.ListActiveCategories(ctx, db, domain.BoardPrayer)
	if err != nil || len(prayer) == 0 {
		t.Fatalf("prayer categories: n=%d err=%v", len(prayer), err)
	}
	need, err := repo.ListActiveCategories(ctx, db, domain.BoardNeed)
	if err != nil || len(need) == 0 {
		t.Fatalf("need categories: n=%d err=%v", len(need), err)
	}
}

func TestCategories_Idempotent(t *testing.T) {
	db := newSeedDB(t)
	ctx := context.Background()

	if err := Categories(ctx, db); err != nil {
		t.Fatalf("first run: %v", err)
	}
	before, _ := repo.CountCategories(ctx, db)

	// An operator edit must survive the next boot.
	cats, _ := repo.ListActiveCategories(ctx, db, domain.BoardPrayer)
	if err := repo.SetCategoryActive(ctx, db, cats[0].ID, false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	if err := Categories(ctx, db); err != nil {
		t.Fatalf("second run: %v", err)
	}
	after, _ := repo.CountCategories(ctx, db)
	if before != after {
		t.Fatalf("reseeded a non-empty table: %d -> %d", before, after)
	}

	got, _ := repo.GetCategory(ctx, db, cats[0].ID)
	if got.Active {
		t.Fatalf("operator edit overwritten by seeding")
	}
}
