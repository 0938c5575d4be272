package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"gold-lifestyle-backend/internal/apperr"
	"gold-lifestyle-backend/internal/events"
	"gold-lifestyle-backend/internal/logger"
	"gold-lifestyle-backend/internal/models"
)

// ProductInput is a decoded admin product form.
type ProductInput struct {
	Fields     models.ProductFields
	Submission VariantSubmission
}

type ProductService struct {
	catalog  CatalogStore
	blobs    BlobStore
	variants *VariantService
	events   EventPublisher
	logger   *logger.Logger
	policy   *bluemonday.Policy

	publishTimeout time.Duration
}

func NewProductService(catalog CatalogStore, blobs BlobStore, variants *VariantService, publisher EventPublisher, log *logger.Logger) *ProductService {
	return &ProductService{
		catalog:  catalog,
		blobs:    blobs,
		variants: variants,
		events:   publisher,
		logger:   log,
		policy:   bluemonday.UGCPolicy(),

		publishTimeout: publishTimeout,
	}
}

// SanitizeDescription strips scripts, event handlers and javascript: URLs
// from admin-authored rich text.
func (s *ProductService) SanitizeDescription(html string) string {
	return s.policy.Sanitize(html)
}

// CreateProduct inserts the product and then reconciles its variants against
// an empty current set. On an upload failure the product id is still
// returned.
func (s *ProductService) CreateProduct(ctx context.Context, in ProductInput) (uuid.UUID, *models.AppliedChanges, error) {
	fields := in.Fields
	if fields.Name == nil || strings.TrimSpace(*fields.Name) == "" {
		return uuid.Nil, nil, apperr.Validation("name is required")
	}
	if fields.Description == nil || strings.TrimSpace(*fields.Description) == "" {
		return uuid.Nil, nil, apperr.Validation("description is required")
	}
	if fields.PriceCents == nil {
		return uuid.Nil, nil, apperr.Validation("price is required")
	}
	fields = s.sanitizeFields(fields)

	product, err := s.catalog.CreateProduct(ctx, fields)
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("failed to create product: %w", err)
	}

	changes, err := s.variants.Reconcile(ctx, product.ID, nil, in.Submission)
	if err != nil {
		return product.ID, changes, err
	}

	s.publish(ctx, events.ProductSaved, product.ID, events.ProductSavedPayload(product.ID, changes))
	return product.ID, changes, nil
}

// UpdateProduct applies the non-empty scalar fields, then reconciles the
// submitted variants against the stored ones.
func (s *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, in ProductInput) (*models.AppliedChanges, error) {
	product, err := s.catalog.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := s.sanitizeFields(in.Fields)
	if !fields.IsEmpty() {
		if err := s.catalog.UpdateProduct(ctx, id, fields); err != nil {
			return nil, fmt.Errorf("failed to update product: %w", err)
		}
	}

	current, err := s.catalog.ListColors(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list colors: %w", err)
	}

	changes, err := s.variants.Reconcile(ctx, id, current, in.Submission)
	if changes != nil && changes.PrimaryImageURL != "" && product.PrimaryImageURL.Valid &&
		product.PrimaryImageURL.String != changes.PrimaryImageURL {
		s.removeReplacedPrimary(ctx, product.PrimaryImageURL.String)
	}
	if err != nil {
		return changes, err
	}

	s.publish(ctx, events.ProductSaved, id, events.ProductSavedPayload(id, changes))
	return changes, nil
}

// DeleteProduct removes every blob the product references, then the product
// row. Colors and images go with it through the foreign-key cascade.
func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	product, err := s.catalog.GetProduct(ctx, id)
	if err != nil {
		return err
	}
	images, err := s.catalog.ListImages(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to list images: %w", err)
	}

	var paths []string
	for _, img := range images {
		if p, ok := s.blobs.PathFromURL(img.URL); ok {
			paths = append(paths, p)
		}
	}
	if product.PrimaryImageURL.Valid {
		if p, ok := s.blobs.PathFromURL(product.PrimaryImageURL.String); ok {
			paths = append(paths, p)
		}
	}
	if len(paths) > 0 {
		if err := s.blobs.Remove(ctx, paths); err != nil {
			return apperr.Upstream("failed to delete product images from storage", err)
		}
	}

	if err := s.catalog.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.logger.Info("deleted product %s and %d stored files", id, len(paths))
	s.publish(ctx, events.ProductDeleted, id, events.ProductDeletedPayload(id, len(paths)))
	return nil
}

func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*models.ProductDetail, error) {
	product, err := s.catalog.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	colors, err := s.catalog.ListColors(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list colors: %w", err)
	}
	images, err := s.catalog.ListImages(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	return &models.ProductDetail{Product: *product, Colors: colors, Images: images}, nil
}

func (s *ProductService) ListProducts(ctx context.Context) ([]models.ProductListing, error) {
	return s.catalog.ListProducts(ctx)
}

func (s *ProductService) sanitizeFields(fields models.ProductFields) models.ProductFields {
	if fields.Name != nil {
		name := strings.TrimSpace(*fields.Name)
		fields.Name = &name
		if name == "" {
			fields.Name = nil
		}
	}
	if fields.Description != nil {
		desc := s.SanitizeDescription(*fields.Description)
		fields.Description = &desc
		if strings.TrimSpace(desc) == "" {
			fields.Description = nil
		}
	}
	return fields
}

func (s *ProductService) removeReplacedPrimary(ctx context.Context, url string) {
	p, ok := s.blobs.PathFromURL(url)
	if !ok {
		return
	}
	if err := s.blobs.Remove(ctx, []string{p}); err != nil {
		s.logger.Warn("failed to remove replaced primary image %s: %v", p, err)
	}
}

func (s *ProductService) publish(ctx context.Context, event string, id uuid.UUID, payload map[string]interface{}) {
	publishEvent(ctx, s.events, s.publishTimeout, s.logger, event, id.String(), payload)
}
