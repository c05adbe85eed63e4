// Request HTTP handlers.
//
// Covers the request lifecycle and aggregate mutations:
//   - POST   /requests                      (create)
//   - DELETE /requests/{id}                 (owner soft delete)
//   - POST   /requests/{id}/participation   (toggle prayed / offered help)
//   - PUT    /requests/{id}/fulfillment     (mark answered / fulfilled)
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/careboard/go-board-backend/internal/domain"
	"github.com/careboard/go-board-backend/internal/services"
)

// CreateRequestBody is the JSON payload for POST /requests.
type CreateRequestBody struct {
	Type        string  `json:"type" binding:"required" example:"prayer"`
	Description string  `json:"description" binding:"required" example:"Please pray for my upcoming surgery"`
	CategoryID  *string `json:"category_id,omitempty" example:"c1f0b9a2-..."`
}

// FulfillmentBody is the JSON payload for PUT /requests/{id}/fulfillment.
type FulfillmentBody struct {
	Fulfilled bool    `json:"fulfilled"`
	Testimony *string `json:"testimony,omitempty" example:"Surgery went well, thank you all"`
}

// CreateRequest godoc
// @ID          createRequest
// @Summary     Create a board request
// @Tags        Requests
// @Accept      json
// @Produce     json
// @Param       X-User-ID  header  string             true  "Acting user ID"
// @Param       payload    body    CreateRequestBody  true  "Request payload"
// @Success     201  {object} domain.Request
// @Failure     400  {object} handlers.ErrorResponse "Validation error"
// @Failure     404  {object} handlers.ErrorResponse "Unknown category"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /requests [post]
func (h *Handlers) CreateRequest(c *gin.Context) {
	var body CreateRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid payload: "+err.Error())
		return
	}

	t := domain.BoardType(strings.ToLower(strings.TrimSpace(body.Type)))
	req, err := h.responseSvc.CreateRequest(c.Request.Context(), userID(c), t, body.CategoryID, body.Description)
	if err != nil {
		switch err {
		case services.ErrInvalidBoardType, services.ErrEmptyDescription, services.ErrDescriptionTooLong:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		case services.ErrCategoryNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		}
		return
	}
	ok(c, http.StatusCreated, req)
}

// DeleteRequest godoc
// @ID          deleteRequest
// @Summary     Delete own request
// @Tags        Requests
// @Produce     json
// @Param       X-User-ID  header  string  true  "Acting user ID"
// @Param       id         path    string  true  "Request ID"
// @Success     204  {string} string "No Content"
// @Failure     403  {object} handlers.ErrorResponse "Not the owner"
// @Failure     404  {object} handlers.ErrorResponse "Unknown request"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /requests/{id} [delete]
func (h *Handlers) DeleteRequest(c *gin.Context) {
	err := h.responseSvc.DeleteRequest(c.Request.Context(), c.Param("id"), userID(c))
	if err != nil {
		switch err {
		case services.ErrRequestNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
		case services.ErrForbidden:
			fail(c, http.StatusForbidden, ErrCodeForbidden, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	noContent(c)
}

// ToggleParticipation godoc
// @ID          toggleParticipation
// @Summary     Toggle participation on a request
// @Description Adds the acting user to the participant set if absent, removes them if present. Safe to retry; concurrent toggles never lose updates.
// @Tags        Requests
// @Produce     json
// @Param       X-User-ID  header  string  true  "Acting user ID"
// @Param       id         path    string  true  "Request ID"
// @Success     200  {object} domain.Request
// @Failure     404  {object} handlers.ErrorResponse "Unknown request"
// @Failure     409  {object} handlers.ErrorResponse "Contention, retry"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /requests/{id}/participation [post]
func (h *Handlers) ToggleParticipation(c *gin.Context) {
	req, err := h.responseSvc.ToggleParticipation(c.Request.Context(), c.Param("id"), userID(c))
	if err != nil {
		switch err {
		case services.ErrRequestNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
		case services.ErrConflict:
			fail(c, http.StatusConflict, ErrCodeConflict, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeToggleFailed, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, req)
}

// MarkFulfilled godoc
// @ID          markFulfilled
// @Summary     Set a request's fulfillment state
// @Description Marks the request answered/fulfilled with an optional testimony, or reopens it (clearing any testimony). Owner only.
// @Tags        Requests
// @Accept      json
// @Produce     json
// @Param       X-User-ID  header  string           true  "Acting user ID"
// @Param       id         path    string           true  "Request ID"
// @Param       payload    body    FulfillmentBody  true  "Fulfillment payload"
// @Success     200  {object} domain.Request
// @Failure     400  {object} handlers.ErrorResponse "Bad payload"
// @Failure     403  {object} handlers.ErrorResponse "Not the owner"
// @Failure     404  {object} handlers.ErrorResponse "Unknown request"
// @Failure     409  {object} handlers.ErrorResponse "Contention, retry"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /requests/{id}/fulfillment [put]
func (h *Handlers) MarkFulfilled(c *gin.Context) {
	var body FulfillmentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid payload: "+err.Error())
		return
	}

	req, err := h.responseSvc.MarkFulfilled(c.Request.Context(), c.Param("id"), userID(c), body.Fulfilled, body.Testimony)
	if err != nil {
		switch err {
		case services.ErrRequestNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
		case services.ErrForbidden:
			fail(c, http.StatusForbidden, ErrCodeForbidden, err.Error())
		case services.ErrConflict:
			fail(c, http.StatusConflict, ErrCodeConflict, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, req)
}
