// Cache key composition and invalidation shared by the board services.
//
// Key format: "{kind}:{type}:filter:{discriminator}" for totals and
// "categories:{type}" for category lists. A write invalidates only the keys
// matching its own type and category; totals cached under other filter
// combinations age out through their TTL, a tolerated staleness window for
// pagination boundaries only; item existence and content are always read
// live.
package services

import (
	"fmt"

	"github.com/careboard/go-board-backend/internal/cache"
	"github.com/careboard/go-board-backend/internal/domain"
	"github.com/careboard/go-board-backend/internal/query"
)

// TotalCacheKey returns the key caching the row count of one type+filter
// combination, e.g. "total:prayer:filter:Health".
func TotalCacheKey(t domain.BoardType, filter string) string {
	return fmt.Sprintf("total:%s:filter:%s", t, filter)
}

// CategoriesCacheKey returns the key caching the active category list for a
// board, e.g. "categories:need".
func CategoriesCacheKey(t domain.BoardType) string {
	return "categories:" + string(t)
}

// invalidateTotals drops the cached totals affected by a write to a request
// of the given type and category: the unfiltered key always, plus the
// category-scoped key when the item is categorized.
func invalidateTotals(store cache.Store, t domain.BoardType, categoryName *string) {
	keys := []string{TotalCacheKey(t, query.AllFilter)}
	if categoryName != nil {
		keys = append(keys, TotalCacheKey(t, *categoryName))
	}
	store.Invalidate(keys...)
}
