// Board HTTP handlers.
//
// This file exposes the read side of the API:
//   - GET /boards/{type}    (filtered, sorted, paginated board page)
//
// Handlers are transport-thin: they normalize query parameters through the
// filter builder, call the board service, and translate results into HTTP
// responses (including conditional 304s via a weak ETag).
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/careboard/go-board-backend/internal/domain"
	"github.com/careboard/go-board-backend/internal/query"
	"github.com/careboard/go-board-backend/internal/repo"
	"github.com/careboard/go-board-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// BoardService defines the board read operations consumed by HTTP handlers.
// Implementations must be safe for concurrent use and honor the provided
// context for cancellation.
type BoardService interface {
	// ListPage returns one board page for the acting user.
	ListPage(ctx context.Context, userID string, spec query.Spec) (*services.BoardPage, error)
}

// ResponseService defines the aggregate mutations and request lifecycle.
type ResponseService interface {
	// ToggleParticipation flips the user's membership in the participant set.
	ToggleParticipation(ctx context.Context, requestID, userID string) (*domain.Request, error)
	// MarkFulfilled transitions the fulfillment state (owner only).
	MarkFulfilled(ctx context.Context, requestID, actorID string, fulfilled bool, testimony *string) (*domain.Request, error)
	// CreateRequest inserts a new board item.
	CreateRequest(ctx context.Context, ownerID string, t domain.BoardType, categoryID *string, description string) (*domain.Request, error)
	// DeleteRequest soft-deletes an owner's request.
	DeleteRequest(ctx context.Context, requestID, actorID string) error
}

// ModerationService defines privileged moderation actions.
type ModerationService interface {
	// Apply performs one moderation action with its audit entry.
	Apply(ctx context.Context, actorID, itemID string, itemType domain.BoardType, action, reason string, isModerator bool) error
}

// CategoryService defines admin-side category management.
type CategoryService interface {
	// Create inserts a category for a board.
	Create(ctx context.Context, t domain.BoardType, name string) (*domain.Category, error)
	// SetActive toggles a category's filter-list visibility.
	SetActive(ctx context.Context, id string, active bool) error
}

// Moderator is implemented by services that can answer role questions for
// the acting user (used to gate moderation and admin endpoints).
type Moderator interface {
	// Resolve returns (canModerate, isAdmin) for userID.
	Resolve(ctx context.Context, userID string) (bool, bool, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for boards, requests, moderation, and
// categories. It depends on abstract service interfaces to keep transport
// concerns separate from business logic.
type Handlers struct {
	boardSvc    BoardService
	responseSvc ResponseService
	modSvc      ModerationService
	catSvc      CategoryService
	roles       Moderator

	// PageSize is the configured board page size fed into the filter builder.
	PageSize int
}

// New constructs a Handlers instance bound to the given services.
func New(board BoardService, response ResponseService, mod ModerationService, cat CategoryService, roles Moderator, pageSize int) *Handlers {
	return &Handlers{
		boardSvc:    board,
		responseSvc: response,
		modSvc:      mod,
		catSvc:      cat,
		roles:       roles,
		PageSize:    pageSize,
	}
}

// userID extracts the acting user id from the Gin context (set by upstream
// session middleware), falling back to the X-User-ID header. Session
// resolution itself is an external collaborator; an empty id is passed
// through and fails in the service as an unknown user.
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
			return h
		}
	}
	return ""
}

// boardType parses the :type path parameter.
func boardType(c *gin.Context) (domain.BoardType, bool) {
	t := domain.BoardType(strings.ToLower(c.Param("type")))
	return t, t.Valid()
}

// GetBoard godoc
// @ID          getBoard
// @Summary     Read one board page
// @Description Returns a filtered, sorted, paginated page of board items with the active category list. Supports weak ETag via If-None-Match.
// @Tags        Boards
// @Produce     json
//
// @Param       X-User-ID  header  string  true   "Acting user ID"            example(user123)
// @Param       type       path    string  true   "Board type"                Enums(prayer, need)
// @Param       sort       query   string  false  "createdAt order"           Enums(asc, desc) default(desc)
// @Param       page       query   int     false  "Page number"               minimum(1) default(1)
// @Param       filter     query   string  false  "Category name, or All"     default(All)
//
// @Success     200  {object} services.BoardPage
// @Success     304  {string} string "Not Modified"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Unknown user"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /boards/{type} [get]
func (h *Handlers) GetBoard(c *gin.Context) {
	ctx := c.Request.Context()

	t, okType := boardType(c)
	if !okType {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unknown board type")
		return
	}

	spec := query.Build(
		c.Query("sort"),
		c.Query("page"),
		c.Query("filter"),
		query.Base{Type: t, Status: domain.StatusActive, PageSize: h.PageSize},
	)

	// ETag pre-check (best effort, unfiltered boards only: the stats query
	// needs no category resolution there).
	if svc, okSvc := h.boardSvc.(*services.BoardService); okSvc && spec.CategoryName == nil {
		h.boardETag(c, svc.DB, spec)
		if c.Writer.Written() || c.IsAborted() {
			return
		}
	}

	page, err := h.boardSvc.ListPage(ctx, userID(c), spec)
	if err != nil {
		switch err {
		case services.ErrUserNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, page)
}

// boardETag writes a weak ETag for the unfiltered board scope and answers
// 304 when If-None-Match matches. Any insert, delete, toggle, or moderation
// edit moves the underlying (count, max updated_at) pair.
func (h *Handlers) boardETag(c *gin.Context, db *gorm.DB, spec query.Spec) {
	if db == nil {
		return
	}
	count, maxTS, err := repo.BoardStats(c.Request.Context(), db, spec, nil)
	if err != nil {
		return
	}
	var ts int64
	if maxTS != nil {
		ts = maxTS.UnixNano()
	}
	etag := fmt.Sprintf(`W/"board:%s:%s:%d:%d:%d"`, spec.Type, spec.Sort, spec.Page, count, ts)
	c.Header("ETag", etag)
	if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
		c.Status(http.StatusNotModified)
		c.Abort()
	}
}
