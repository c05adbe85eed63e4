// Category admin HTTP handlers.
//
//   - POST /categories              (create, admin only)
//   - PUT  /categories/{id}/active  (enable/disable in filter lists, admin only)
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/careboard/go-board-backend/internal/domain"
	"github.com/careboard/go-board-backend/internal/services"
)

// CreateCategoryBody is the JSON payload for POST /categories.
type CreateCategoryBody struct {
	Type string `json:"type" binding:"required" example:"need"`
	Name string `json:"name" binding:"required" example:"Housing"`
}

// CategoryActiveBody is the JSON payload for PUT /categories/{id}/active.
type CategoryActiveBody struct {
	Active bool `json:"active"`
}

// requireAdmin resolves the acting user and aborts with 403 unless they hold
// the admin role. Returns false when the request has been answered.
func (h *Handlers) requireAdmin(c *gin.Context) bool {
	_, isAdmin, err := h.roles.Resolve(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "unknown user")
		return false
	}
	if !isAdmin {
		fail(c, http.StatusForbidden, ErrCodeForbidden, "admin role required")
		return false
	}
	return true
}

// CreateCategory godoc
// @ID          createCategory
// @Summary     Create a category
// @Tags        Categories
// @Accept      json
// @Produce     json
// @Param       X-User-ID  header  string              true  "Acting user ID"
// @Param       payload    body    CreateCategoryBody  true  "Category payload"
// @Success     201  {object} domain.Category
// @Failure     400  {object} handlers.ErrorResponse "Bad payload"
// @Failure     403  {object} handlers.ErrorResponse "Admin role required"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /categories [post]
func (h *Handlers) CreateCategory(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}

	var body CreateCategoryBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid payload: "+err.Error())
		return
	}

	t := domain.BoardType(strings.ToLower(strings.TrimSpace(body.Type)))
	cat, err := h.catSvc.Create(c.Request.Context(), t, body.Name)
	if err != nil {
		switch err {
		case services.ErrInvalidBoardType, services.ErrEmptyCategoryName:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		}
		return
	}
	ok(c, http.StatusCreated, cat)
}

// SetCategoryActive godoc
// @ID          setCategoryActive
// @Summary     Enable or disable a category
// @Description Toggles whether the category appears in board filter lists. Existing requests keep their category either way.
// @Tags        Categories
// @Accept      json
// @Produce     json
// @Param       X-User-ID  header  string              true  "Acting user ID"
// @Param       id         path    string              true  "Category ID"
// @Param       payload    body    CategoryActiveBody  true  "Active flag"
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad payload"
// @Failure     403  {object} handlers.ErrorResponse "Admin role required"
// @Failure     404  {object} handlers.ErrorResponse "Unknown category"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /categories/{id}/active [put]
func (h *Handlers) SetCategoryActive(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}

	var body CategoryActiveBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid payload: "+err.Error())
		return
	}

	if err := h.catSvc.SetActive(c.Request.Context(), c.Param("id"), body.Active); err != nil {
		switch err {
		case services.ErrCategoryNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	noContent(c)
}
