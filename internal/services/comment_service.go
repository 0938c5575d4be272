package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"gold-lifestyle-backend/internal/apperr"
	"gold-lifestyle-backend/internal/models"
)

const (
	defaultCommentAuthor = "Anonymous"
	maxAuthorLength      = 80
)

type CommentService struct {
	comments CommentStore
	catalog  CatalogStore
}

func NewCommentService(comments CommentStore, catalog CatalogStore) *CommentService {
	return &CommentService{comments: comments, catalog: catalog}
}

func (s *CommentService) ListComments(ctx context.Context, productID uuid.UUID) ([]models.Comment, error) {
	comments, err := s.comments.ListComments(ctx, productID.String())
	if err != nil {
		return nil, apperr.Upstream("failed to load comments", err)
	}
	return comments, nil
}

// AddComment stores a comment on an existing product. A blank author
// becomes "Anonymous"; long authors are cut to 80 characters.
func (s *CommentService) AddComment(ctx context.Context, productID uuid.UUID, author, body string) error {
	body = strings.TrimSpace(body)
	if body == "" {
		return apperr.Validation("comment body is required")
	}
	if _, err := s.catalog.GetProduct(ctx, productID); err != nil {
		return err
	}
	if err := s.comments.CreateComment(ctx, productID.String(), CommentAuthor(author), body); err != nil {
		return apperr.Upstream("failed to save comment", fmt.Errorf("product %s: %w", productID, err))
	}
	return nil
}

func CommentAuthor(author string) string {
	author = strings.TrimSpace(author)
	if author == "" {
		return defaultCommentAuthor
	}
	if utf8.RuneCountInString(author) > maxAuthorLength {
		author = string([]rune(author)[:maxAuthorLength])
	}
	return author
}
