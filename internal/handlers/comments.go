package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gold-lifestyle-backend/internal/logger"
	"gold-lifestyle-backend/internal/models"
)

type CommentService interface {
	ListComments(ctx context.Context, productID uuid.UUID) ([]models.Comment, error)
	AddComment(ctx context.Context, productID uuid.UUID, author, body string) error
}

type CommentsHandler struct {
	comments CommentService
	logger   *logger.Logger
}

func NewCommentsHandler(comments CommentService, log *logger.Logger) *CommentsHandler {
	return &CommentsHandler{comments: comments, logger: log}
}

// ListComments godoc
// @Summary     List comments on a product, newest first
// @Tags        comments
// @Produce     json
// @Param       id path string true "Product ID (UUID)"
// @Success     200 {object} models.CommentListResponse
// @Router      /api/products/{id}/comments [get]
func (h *CommentsHandler) ListComments(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	comments, err := h.comments.ListComments(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	c.JSON(http.StatusOK, models.CommentListResponse{Comments: comments})
}

// CreateComment godoc
// @Summary     Comment on a product
// @Tags        comments
// @Accept      json
// @Produce     json
// @Param       id      path string                      true "Product ID (UUID)"
// @Param       request body models.CreateCommentRequest true "Author (optional) and body"
// @Success     201 {object} map[string]bool
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /api/products/{id}/comments [post]
func (h *CommentsHandler) CreateComment(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	var req models.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
		})
		return
	}

	if err := h.comments.AddComment(c.Request.Context(), id, req.Author, req.Body); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true})
}
