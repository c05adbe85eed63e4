// Package query translates raw board query parameters (sort, page, category
// filter) into a normalized specification the repository layer can execute.
// Build is a pure function: no I/O, no clock, fully deterministic, so the
// clamping and sentinel rules are unit-testable without a database.
package query

import (
	"strings"

	"github.com/careboard/go-board-backend/internal/domain"
	"github.com/careboard/go-board-backend/internal/utils"
)

// DefaultPageSize is the board page size used when the caller passes a
// non-positive size.
const DefaultPageSize = 30

// AllFilter is the query-string alias meaning "no category constraint".
// It exists only at the transport edge; below Build the absence of a filter
// is an explicit nil, so a real category named "All" is never confused with
// the sentinel outside the query string.
const AllFilter = "All"

// SortOrder is the normalized createdAt ordering of a board page.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Spec is a normalized board query: the base constraints (board type, status)
// plus the optional category filter, ordering, and window.
type Spec struct {
	Type         domain.BoardType
	Status       domain.RequestStatus
	CategoryName *string // nil = no category constraint
	Sort         SortOrder
	Page         int
	Offset       int
	Limit        int
}

// Filter returns the cache-key discriminator for the category constraint:
// the category name, or "All" when unconstrained.
func (s Spec) Filter() string {
	if s.CategoryName == nil {
		return AllFilter
	}
	return *s.CategoryName
}

// OrderBy returns the SQL order clause for the spec.
func (s Spec) OrderBy() string {
	if s.Sort == SortAsc {
		return "created_at ASC, id ASC"
	}
	return "created_at DESC, id DESC"
}

// Base carries the fixed constraints a board always applies before user
// parameters are considered.
type Base struct {
	Type     domain.BoardType
	Status   domain.RequestStatus
	PageSize int
}

// Build normalizes raw query parameters into a Spec.
//
// Rules:
//   - sortParam: "asc" or "desc" (case-insensitive); anything else falls
//     back to "desc".
//   - pageParam: positive integer; empty, unparsable, zero, or negative
//     values clamp to page 1.
//   - filterParam: a category name; "" and the "All" sentinel mean no
//     category constraint.
//
// Malformed input is clamped rather than rejected.
func Build(sortParam, pageParam, filterParam string, base Base) Spec {
	size := base.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}

	sort := SortDesc
	if strings.EqualFold(strings.TrimSpace(sortParam), string(SortAsc)) {
		sort = SortAsc
	}

	page := utils.AtoiDefault(strings.TrimSpace(pageParam), 1)
	if page < 1 {
		page = 1
	}

	var category *string
	if f := strings.TrimSpace(filterParam); f != "" && f != AllFilter {
		category = &f
	}

	return Spec{
		Type:         base.Type,
		Status:       base.Status,
		CategoryName: category,
		Sort:         sort,
		Page:         page,
		Offset:       (page - 1) * size,
		Limit:        size,
	}
}
