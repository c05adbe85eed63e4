// Moderation HTTP handlers.
//
// POST /requests/{id}/moderation applies one privileged action (delete,
// pending, removed) against a board item. The acting user's moderator role
// is resolved here and passed to the service, which owns the audit trail.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/careboard/go-board-backend/internal/domain"
	"github.com/careboard/go-board-backend/internal/services"
)

// ModerationBody is the JSON payload for POST /requests/{id}/moderation.
type ModerationBody struct {
	Type   string `json:"type" binding:"required" example:"prayer"`
	Action string `json:"action" binding:"required" example:"pending"`
	Reason string `json:"reason" binding:"required" example:"needs review: possible personal data"`
}

// Moderate godoc
// @ID          moderateRequest
// @Summary     Apply a moderation action
// @Description Applies delete, pending, or removed to a board item. An audit entry is written before the item is touched. Moderator role required.
// @Tags        Moderation
// @Accept      json
// @Produce     json
// @Param       X-User-ID  header  string          true  "Acting user ID"
// @Param       id         path    string          true  "Request ID"
// @Param       payload    body    ModerationBody  true  "Moderation payload"
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad payload or action"
// @Failure     401  {object} handlers.ErrorResponse "Not a moderator"
// @Failure     404  {object} handlers.ErrorResponse "Unknown request"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /requests/{id}/moderation [post]
func (h *Handlers) Moderate(c *gin.Context) {
	var body ModerationBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid payload: "+err.Error())
		return
	}

	t := domain.BoardType(strings.ToLower(strings.TrimSpace(body.Type)))
	if !t.Valid() {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unknown board type")
		return
	}

	actor := userID(c)
	canModerate, _, err := h.roles.Resolve(c.Request.Context(), actor)
	if err != nil {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "unknown user")
		return
	}

	err = h.modSvc.Apply(c.Request.Context(), actor, c.Param("id"), t, body.Action, body.Reason, canModerate)
	if err != nil {
		switch err {
		case services.ErrUnauthorized:
			fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, err.Error())
		case services.ErrInvalidAction:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		case services.ErrRequestNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeModerationFailed, err.Error())
		}
		return
	}
	noContent(c)
}
