// Package seed creates the default category sets on first boot. Seeding is
// idempotent: it runs only when the categories table is empty, so operator
// edits (renames, deactivations) survive restarts.
package seed

import (
	"context"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/careboard/go-board-backend/internal/domain"
	"github.com/careboard/go-board-backend/internal/repo"
)

// defaults lists the out-of-the-box categories per board.
var defaults = map[domain.BoardType][]string{
	domain.BoardPrayer: {"Health", "Family", "Work", "Grief", "Guidance"},
	domain.BoardNeed:   {"Food", "Housing", "Transportation", "Childcare", "Financial"},
}

// Categories inserts the default category sets when the table is empty.
func Categories(ctx context.Context, db *gorm.DB) error {
	n, err := repo.CountCategories(ctx, db)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		created := 0
		for t, names := range defaults {
			for _, name := range names {
				if _, err := repo.CreateCategory(ctx, tx, t, name); err != nil {
					return err
				}
				created++
			}
		}
		log.Info().Int("count", created).Msg("seeded default categories")
		return nil
	})
}
