package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type Product struct {
	ID              uuid.UUID
	Name            string
	Description     string
	PriceCents      int64
	Sizes           []string
	PrimaryImageURL sql.NullString
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ProductColor is a color variant of a product. It owns its ProductImage rows.
type ProductColor struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	ColorName string
	ColorHex  sql.NullString
	CreatedAt time.Time
}

// ProductImage belongs to a variant through ColorID. Rows written before
// variants carried ids have a NULL ColorID and are matched by ColorName.
type ProductImage struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	ColorID   uuid.NullUUID
	URL       string
	ColorName string
	CreatedAt time.Time
}

// ProductListing is the row shape of the public catalog listing.
type ProductListing struct {
	ID              uuid.UUID
	Name            string
	PriceCents      int64
	SizesCount      int
	ColorsCount     int
	PreviewImageURL sql.NullString
}

type ProductDetail struct {
	Product Product
	Colors  []ProductColor
	Images  []ProductImage
}

// ProductFields holds the scalar columns of a product write. Nil fields are
// left untouched on update.
type ProductFields struct {
	Name        *string
	Description *string
	PriceCents  *int64
	Sizes       []string
}

func (f ProductFields) IsEmpty() bool {
	return f.Name == nil && f.Description == nil && f.PriceCents == nil && len(f.Sizes) == 0
}

// Upload is a file received from a multipart form, held in memory.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// VariantEdit is one color entry of a submitted product form, in form order.
type VariantEdit struct {
	ID                *uuid.UUID
	ColorName         string
	OriginalColorName string
	ColorHex          string
	Image             *Upload
}

type RenamePair struct {
	ColorID uuid.UUID `json:"color_id"`
	From    string    `json:"from"`
	To      string    `json:"to"`
}

// AppliedChanges records what a reconciliation actually did to the stores.
type AppliedChanges struct {
	Updated         []uuid.UUID  `json:"updated,omitempty"`
	Inserted        []uuid.UUID  `json:"inserted,omitempty"`
	Renamed         []RenamePair `json:"renamed,omitempty"`
	UploadedImages  []string     `json:"uploaded_images,omitempty"`
	Deleted         []uuid.UUID  `json:"deleted,omitempty"`
	DeletedBlobs    []string     `json:"deleted_blobs,omitempty"`
	PrimaryImageURL string       `json:"primary_image_url,omitempty"`
}

func (a *AppliedChanges) IsEmpty() bool {
	return len(a.Updated) == 0 && len(a.Inserted) == 0 && len(a.Renamed) == 0 &&
		len(a.UploadedImages) == 0 && len(a.Deleted) == 0 && len(a.DeletedBlobs) == 0 &&
		a.PrimaryImageURL == ""
}

type Comment struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id,omitempty"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}
