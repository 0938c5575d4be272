package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gold-lifestyle-backend/internal/apperr"
	"gold-lifestyle-backend/internal/logger"
	"gold-lifestyle-backend/internal/models"
)

// respondError writes err as an ErrorResponse with the status of its kind.
// Internal errors are logged and their detail withheld.
func respondError(c *gin.Context, log *logger.Logger, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Error("%s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(status, models.ErrorResponse{Error: "internal server error"})
		return
	}

	resp := models.ErrorResponse{Error: apperr.Message(err)}
	if apperr.KindOf(err) == apperr.KindUpstream {
		log.Warn("%s %s: %v", c.Request.Method, c.FullPath(), err)
		resp.Message = err.Error()
	}
	c.JSON(status, resp)
}
