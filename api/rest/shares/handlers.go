package shares

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"codeberg.org/miriamlab/server/internal/auth"
	"codeberg.org/miriamlab/server/internal/errors"
	"codeberg.org/miriamlab/server/miriamlab/shares"
)

// ShareHandler godoc
// @Summary Publish a result under a public link
// @Tags shares
// @Accept json
// @Produce json
// @Param request body ShareRequest true "Result to share"
// @Success 201 {object} ShareResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/share [post]
// @Security BearerAuth
func ShareHandler(store shares.Store, baseURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		var req ShareRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		result := &shares.Result{
			UserID:     userID,
			Mode:       req.Mode,
			Title:      req.Title,
			ResultData: req.ResultData,
		}

		if err := store.Create(c.Request.Context(), result); err != nil {
			if stderrors.Is(err, shares.ErrEmptyResult) || stderrors.Is(err, shares.ErrInvalidMode) {
				errors.ValidationError(c, err)
				return
			}
			errors.InternalError(c, "failed to share result", err)
			return
		}

		c.JSON(http.StatusCreated, ShareResponse{
			ID:  result.ID,
			URL: baseURL + "/results/" + result.ID,
		})
	}
}

// GetResultHandler godoc
// @Summary Get a shared result
// @Tags shares
// @Produce json
// @Param id path string true "Result ID"
// @Success 200 {object} shares.Result
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/v1/results/{id} [get]
func GetResultHandler(store shares.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := store.GetPublic(c.Request.Context(), c.Param("id"))
		if stderrors.Is(err, shares.ErrNotFound) {
			errors.NotFound(c, "result")
			return
		}
		if err != nil {
			errors.InternalError(c, "failed to load result", err)
			return
		}

		// owner stays private on the public page
		result.UserID = ""
		c.JSON(http.StatusOK, result)
	}
}
