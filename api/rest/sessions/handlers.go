package sessions

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"codeberg.org/miriamlab/server/internal/auth"
	"codeberg.org/miriamlab/server/internal/credits"
	"codeberg.org/miriamlab/server/internal/errors"
	"codeberg.org/miriamlab/server/miriamlab/history"
)

// ListSessionsHandler godoc
// @Summary List saved playground sessions
// @Description Newest first, limited to the plan's history size
// @Tags sessions
// @Produce json
// @Success 200 {object} ListSessionsResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/sessions [get]
// @Security BearerAuth
func ListSessionsHandler(store history.Store, plans PlanReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		limit, ok := historyLimit(c, plans, userID)
		if !ok {
			return
		}

		sessions, err := store.List(c.Request.Context(), userID, limit)
		if err != nil {
			errors.InternalError(c, "failed to list sessions", err)
			return
		}

		c.JSON(http.StatusOK, ListSessionsResponse{Sessions: sessions, Limit: limit})
	}
}

// CreateSessionHandler godoc
// @Summary Save a playground session
// @Description Deletes the oldest session first when the plan's history is full
// @Tags sessions
// @Accept json
// @Produce json
// @Param request body CreateSessionRequest true "Session"
// @Success 201 {object} history.Session
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/sessions [post]
// @Security BearerAuth
func CreateSessionHandler(store history.Store, plans PlanReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		var req CreateSessionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		limit, ok := historyLimit(c, plans, userID)
		if !ok {
			return
		}

		session := &history.Session{
			UserID:   userID,
			Mode:     req.Mode,
			Title:    req.Title,
			Metadata: req.Metadata,
		}

		if err := store.Create(c.Request.Context(), session, limit); err != nil {
			errors.InternalError(c, "failed to save session", err)
			return
		}

		c.JSON(http.StatusCreated, session)
	}
}

func historyLimit(c *gin.Context, plans PlanReader, userID string) (int, bool) {
	w, err := plans.GetBalance(c.Request.Context(), userID)
	if err != nil {
		errors.InternalError(c, "failed to load wallet", err)
		return 0, false
	}

	return credits.LimitsFor(w.Plan).MaxHistorySessions, true
}
