package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/careboard/go-board-backend/internal/domain"
	"github.com/careboard/go-board-backend/internal/query"
	"github.com/careboard/go-board-backend/internal/services"
)

// ---------- flexible stubs ----------

type stubBoardSvc struct {
	list func(ctx context.Context, userID string, spec query.Spec) (*services.BoardPage, error)
}

func (s stubBoardSvc) ListPage(ctx context.Context, userID string, spec query.Spec) (*services.BoardPage, error) {
	return s.list(ctx, userID, spec)
}

type stubResponseSvc struct {
	toggle func(ctx context.Context, requestID, userID string) (*domain.Request, error)
	mark   func(ctx context.Context, requestID, actorID string, fulfilled bool, testimony *string) (*domain.Request, error)
	create func(ctx context.Context, ownerID string, t domain.BoardType, categoryID *string, description string) (*domain.Request, error)
	del    func(ctx context.Context, requestID, actorID string) error
}

func (s stubResponseSvc) ToggleParticipation(ctx context.Context, requestID, userID string) (*domain.Request, error) {
	return s.toggle(ctx, requestID, userID)
}

func (s stubResponseSvc) MarkFulfilled(ctx context.Context, requestID, actorID string, fulfilled bool, testimony *string) (*domain.Request, error) {
	return s.mark(ctx, requestID, actorID, fulfilled, testimony)
}

func (s stubResponseSvc) CreateRequest(ctx context.Context, ownerID string, t domain.BoardType, categoryID *string, description string) (*domain.Request, error) {
	return s.create(ctx, ownerID, t, categoryID, description)
}

func (s stubResponseSvc) DeleteRequest(ctx context.Context, requestID, actorID string) error {
	return s.del(ctx, requestID, actorID)
}

type stubModSvc struct {
	apply func(ctx context.Context, actorID, itemID string, itemType domain.BoardType, action, reason string, isModerator bool) error
}

func (s stubModSvc) Apply(ctx context.Context, actorID, itemID string, itemType domain.BoardType, action, reason string, isModerator bool) error {
	return s.apply(ctx, actorID, itemID, itemType, action, reason, isModerator)
}

type stubCatSvc struct {
	create    func(ctx context.Context, t domain.BoardType, name string) (*domain.Category, error)
	setActive func(ctx context.Context, id string, active bool) error
}

func (s stubCatSvc) Create(ctx context.Context, t domain.BoardType, name string) (*domain.Category, error) {
	return s.create(ctx, t, name)
}

func (s stubCatSvc) SetActive(ctx context.Context, id string, active bool) error {
	return s.setActive(ctx, id, active)
}

type stubRoles struct {
	canModerate bool
	isAdmin     bool
	err         error
}

func (s stubRoles) Resolve(ctx context.Context, userID string) (bool, bool, error) {
	return s.canModerate, s.isAdmin, s.err
}

// newTestRouter mounts the handler routes the way router.go does.
func newTestRouter(h *Handlers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/boards/:type", h.GetBoard)
	r.POST("/requests", h.CreateRequest)
	r.DELETE("/requests/:id", h.DeleteRequest)
	r.POST("/requests/:id/participation", h.ToggleParticipation)
	r.PUT("/requests/:id/fulfillment", h.MarkFulfilled)
	r.POST("/requests/:id/moderation", h.Moderate)
	r.POST("/categories", h.CreateCategory)
	r.PUT("/categories/:id/active", h.SetCategoryActive)
	return r
}

func emptyHandlers() *Handlers {
	return New(
		stubBoardSvc{list: func(context.Context, string, query.Spec) (*services.BoardPage, error) {
			return &services.BoardPage{Items: []services.BoardItem{}}, nil
		}},
		stubResponseSvc{},
		stubModSvc{},
		stubCatSvc{},
		stubRoles{},
		30,
	)
}

// ---------- GetBoard ----------

func TestGetBoard_Success(t *testing.T) {
	var gotUser string
	var gotSpec query.Spec

	h := emptyHandlers()
	h.boardSvc = stubBoardSvc{list: func(ctx context.Context, userID string, spec query.Spec) (*services.BoardPage, error) {
		gotUser, gotSpec = userID, spec
		return &services.BoardPage{
			Items: []services.BoardItem{}, Total: 42, HasNextPage: true,
			ActiveFilter: spec.Filter(), Page: spec.Page, PageSize: spec.Limit,
		}, nil
	}}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/boards/prayer?page=2&sort=asc&filter=Health", nil)
	req.Header.Set("X-User-ID", "u1")
	newTestRouter(h).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	if gotUser != "u1" {
		t.Fatalf("user: %q", gotUser)
	}
	if gotSpec.Type != domain.BoardPrayer || gotSpec.Page != 2 || gotSpec.Sort != query.SortAsc {
		t.Fatalf("spec: %+v", gotSpec)
	}
	if gotSpec.CategoryName == nil || *gotSpec.CategoryName != "Health" {
		t.Fatalf("filter: %v", gotSpec.CategoryName)
	}

	var page services.BoardPage
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.Total != 42 || !page.HasNextPage {
		t.Fatalf("body: %+v", page)
	}
}

func TestGetBoard_MalformedParamsClamped(t *testing.T) {
	var gotSpec query.Spec
	h := emptyHandlers()
	h.boardSvc = stubBoardSvc{list: func(ctx context.Context, userID string, spec query.Spec) (*services.BoardPage, error) {
		gotSpec = spec
		return &services.BoardPage{Items: []services.BoardItem{}}, nil
	}}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/boards/need?page=banana&sort=sideways&filter=All", nil)
	req.Header.Set("X-User-ID", "u1")
	newTestRouter(h).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	if gotSpec.Page != 1 || gotSpec.Sort != query.SortDesc || gotSpec.CategoryName != nil {
		t.Fatalf("clamping broken: %+v", gotSpec)
	}
}

func TestGetBoard_UnknownType(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/boards/diary", nil)
	newTestRouter(emptyHandlers()).ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d", w.Code)
	}
}

func TestGetBoard_UnknownUser(t *testing.T) {
	h := emptyHandlers()
	h.boardSvc = stubBoardSvc{list: func(context.Context, string, query.Spec) (*services.BoardPage, error) {
		return nil, services.ErrUserNotFound
	}}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/boards/prayer", nil)
	req.Header.Set("X-User-ID", "ghost")
	newTestRouter(h).ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status %d", w.Code)
	}
	var body ErrorResponse
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body.Code != ErrCodeNotFound {
		t.Fatalf("error code: %q", body.Code)
	}
}

func TestGetBoard_ServiceError(t *testing.T) {
	h := emptyHandlers()
	h.boardSvc = stubBoardSvc{list: func(context.Context, string, query.Spec) (*services.BoardPage, error) {
		return nil, errors.New("boom")
	}}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/boards/prayer", nil)
	newTestRouter(h).ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status %d", w.Code)
	}
}

// ---------- userID extraction ----------

func TestUserID_PrefersContextOverHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set("X-User-ID", "header-user")

	if got := userID(c); got != "header-user" {
		t.Fatalf("header fallback: %q", got)
	}

	c.Set("userID", "ctx-user")
	if got := userID(c); got != "ctx-user" {
		t.Fatalf("context priority: %q", got)
	}
}
