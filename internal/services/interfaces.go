package services

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"gold-lifestyle-backend/internal/models"
)

// CatalogStore is the row-level store for products, their color variants and
// variant images. Deleting a product cascades to its colors and images.
type CatalogStore interface {
	CreateProduct(ctx context.Context, fields models.ProductFields) (*models.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListProducts(ctx context.Context) ([]models.ProductListing, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, fields models.ProductFields) error
	SetPrimaryImage(ctx context.Context, id uuid.UUID, url string) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error

	ListColors(ctx context.Context, productID uuid.UUID) ([]models.ProductColor, error)
	InsertColor(ctx context.Context, productID uuid.UUID, name string, hex sql.NullString) (*models.ProductColor, error)
	UpdateColor(ctx context.Context, id uuid.UUID, name string, hex sql.NullString) error
	DeleteColors(ctx context.Context, ids []uuid.UUID) error

	ListImages(ctx context.Context, productID uuid.UUID) ([]models.ProductImage, error)
	InsertImage(ctx context.Context, productID, colorID uuid.UUID, url, colorName string) (*models.ProductImage, error)
	// RenameImages relabels a variant's images. Legacy rows without a color id
	// are included only when includeLegacy is set.
	RenameImages(ctx context.Context, productID, colorID uuid.UUID, from, to string, includeLegacy bool) (int64, error)
	DeleteImages(ctx context.Context, ids []uuid.UUID) error
}

// OrderStore persists orders. TransitionStatus must be an atomic conditional
// update: it changes the status only when the stored status equals from, and
// reports whether it did.
type OrderStore interface {
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
	RecordPaymentResult(ctx context.Context, id uuid.UUID, reference string, externalStatus, externalTransactionID sql.NullString) error
	TransitionStatus(ctx context.Context, id uuid.UUID, reference, from, to string) (bool, error)
}

// BlobStore stores uploaded files and serves them over public URLs.
type BlobStore interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) (string, error)
	Remove(ctx context.Context, paths []string) error
	PathFromURL(publicURL string) (string, bool)
}

type PaymentGateway interface {
	InitiatePayment(ctx context.Context, req models.PaymentRequest) (string, error)
}

type Notifier interface {
	NotifyOrderCompleted(ctx context.Context, n models.OrderNotification) error
}

// EventPublisher receives lifecycle events. Publishing is best-effort.
type EventPublisher interface {
	Publish(ctx context.Context, event, key string, payload map[string]interface{}) error
}

type CommentStore interface {
	ListComments(ctx context.Context, productID string) ([]models.Comment, error)
	CreateComment(ctx context.Context, productID, author, body string) error
}
