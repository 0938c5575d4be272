package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gold-lifestyle-backend/internal/apperr"
	"gold-lifestyle-backend/internal/events"
	"gold-lifestyle-backend/internal/logger"
	"gold-lifestyle-backend/internal/models"
)

func newTestProductService(catalog *memCatalog, blobs *memBlobs, publisher EventPublisher) *ProductService {
	return NewProductService(catalog, blobs, newTestVariantService(catalog, blobs), publisher, logger.New("error"))
}

func strPtr(s string) *string { return &s }

func centsPtr(c int64) *int64 { return &c }

func TestCreateProduct_RequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		fields models.ProductFields
		want   string
	}{
		{"missing name", models.ProductFields{Description: strPtr("d"), PriceCents: centsPtr(100)}, "name is required"},
		{"blank name", models.ProductFields{Name: strPtr("  "), Description: strPtr("d"), PriceCents: centsPtr(100)}, "name is required"},
		{"missing description", models.ProductFields{Name: strPtr("Tee"), PriceCents: centsPtr(100)}, "description is required"},
		{"missing price", models.ProductFields{Name: strPtr("Tee"), Description: strPtr("d")}, "price is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := newMemCatalog()
			svc := newTestProductService(catalog, newMemBlobs(), nil)

			_, _, err := svc.CreateProduct(context.Background(), ProductInput{Fields: tt.fields})
			require.Error(t, err)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
			assert.Contains(t, err.Error(), tt.want)
			assert.Zero(t, catalog.writes)
		})
	}
}

func TestCreateProduct_WithVariants(t *testing.T) {
	catalog := newMemCatalog()
	blobs := newMemBlobs()
	publisher := &fakePublisher{}
	svc := newTestProductService(catalog, blobs, publisher)

	id, changes, err := svc.CreateProduct(context.Background(), ProductInput{
		Fields: models.ProductFields{
			Name:        strPtr(" Tee "),
			Description: strPtr(`<p>Soft cotton</p><script>alert(1)</script>`),
			PriceCents:  centsPtr(4999),
			Sizes:       []string{"S", "M"},
		},
		Submission: VariantSubmission{
			Variants: []models.VariantEdit{
				{ColorName: "Black", ColorHex: "#000", Image: png("black.png")},
				{ColorName: "White", ColorHex: "fff"},
			},
		},
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, id)
	require.NotNil(t, changes)
	assert.Len(t, changes.Inserted, 2)
	assert.Len(t, changes.UploadedImages, 1)

	product, err := catalog.GetProduct(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Tee", product.Name)
	assert.Equal(t, int64(4999), product.PriceCents)
	assert.Equal(t, "<p>Soft cotton</p>", product.Description)
	assert.Equal(t, []string{"Black", "White"}, catalog.colorNames(id))
	assert.Len(t, catalog.imagesByName(id)["Black"], 1)
	assert.Equal(t, []string{events.ProductSaved}, publisher.names())
}

func TestCreateProduct_UploadFailureStillReturnsID(t *testing.T) {
	catalog := newMemCatalog()
	blobs := newMemBlobs()
	blobs.failUpload = "corrupt"
	svc := newTestProductService(catalog, blobs, nil)

	id, changes, err := svc.CreateProduct(context.Background(), ProductInput{
		Fields: models.ProductFields{Name: strPtr("Tee"), Description: strPtr("d"), PriceCents: centsPtr(100)},
		Submission: VariantSubmission{Variants: []models.VariantEdit{
			{ColorName: "Black", Image: &models.Upload{Filename: "bad.png", Data: []byte("corrupt")}},
		}},
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))
	assert.NotEqual(t, uuid.Nil, id)
	require.NotNil(t, changes)
	assert.Equal(t, []string{"Black"}, catalog.colorNames(id))
}

func TestSanitizeDescription(t *testing.T) {
	svc := newTestProductService(newMemCatalog(), newMemBlobs(), nil)

	out := svc.SanitizeDescription(`<a href="javascript:alert(1)" onclick="x()">link</a><b>bold</b>`)

	assert.NotContains(t, out, "javascript:")
	assert.NotContains(t, out, "onclick")
	assert.Contains(t, out, "<b>bold</b>")
}

func TestUpdateProduct_PartialFields(t *testing.T) {
	catalog := newMemCatalog()
	svc := newTestProductService(catalog, newMemBlobs(), nil)
	id, _, err := svc.CreateProduct(context.Background(), ProductInput{
		Fields: models.ProductFields{Name: strPtr("Tee"), Description: strPtr("Cotton"), PriceCents: centsPtr(1000)},
	})
	require.NoError(t, err)

	_, err = svc.UpdateProduct(context.Background(), id, ProductInput{
		Fields: models.ProductFields{PriceCents: centsPtr(1500), Description: strPtr("   ")},
	})
	require.NoError(t, err)

	product, _ := catalog.GetProduct(context.Background(), id)
	assert.Equal(t, "Tee", product.Name)
	assert.Equal(t, "Cotton", product.Description)
	assert.Equal(t, int64(1500), product.PriceCents)
}

func TestUpdateProduct_ReplacesPrimaryImage(t *testing.T) {
	catalog := newMemCatalog()
	blobs := newMemBlobs()
	svc := newTestProductService(catalog, blobs, nil)
	id := catalog.addProduct("Tee")
	require.NoError(t, catalog.SetPrimaryImage(context.Background(), id, testBlobBase+"products/old-main.png"))

	changes, err := svc.UpdateProduct(context.Background(), id, ProductInput{
		Submission: VariantSubmission{PrimaryImage: png("main.png")},
	})
	require.NoError(t, err)
	require.NotEmpty(t, changes.PrimaryImageURL)

	product, _ := catalog.GetProduct(context.Background(), id)
	assert.Equal(t, changes.PrimaryImageURL, product.PrimaryImageURL.String)
	assert.Contains(t, blobs.removeCalls, []string{"products/old-main.png"})
}

func TestUpdateProduct_NotFound(t *testing.T) {
	svc := newTestProductService(newMemCatalog(), newMemBlobs(), nil)

	_, err := svc.UpdateProduct(context.Background(), uuid.New(), ProductInput{
		Fields: models.ProductFields{Name: strPtr("Tee")},
	})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestDeleteProduct_RemovesBlobsThenRows(t *testing.T) {
	catalog := newMemCatalog()
	blobs := newMemBlobs()
	publisher := &fakePublisher{}
	svc := newTestProductService(catalog, blobs, publisher)

	id := catalog.addProduct("Tee")
	black := catalog.addColor(id, "Black")
	catalog.addImage(id, idPtr(black.ID), "Black", "p/black-1.png")
	catalog.addImage(id, idPtr(black.ID), "Black", "p/black-2.png")
	catalog.addImage(id, nil, "Black", "p/legacy.png")
	require.NoError(t, catalog.SetPrimaryImage(context.Background(), id, testBlobBase+"p/main.png"))

	require.NoError(t, svc.DeleteProduct(context.Background(), id))

	require.Len(t, blobs.removeCalls, 1)
	assert.ElementsMatch(t, []string{"p/black-1.png", "p/black-2.png", "p/legacy.png", "p/main.png"}, blobs.removeCalls[0])
	_, err := catalog.GetProduct(context.Background(), id)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Empty(t, catalog.imagesByName(id))
	assert.Empty(t, catalog.colorNames(id))
	assert.Equal(t, []string{events.ProductDeleted}, publisher.names())
}

func TestDeleteProduct_StorageFailureKeepsProduct(t *testing.T) {
	catalog := newMemCatalog()
	blobs := newMemBlobs()
	blobs.failRemove = errors.New("storage down")
	svc := newTestProductService(catalog, blobs, nil)

	id := catalog.addProduct("Tee")
	black := catalog.addColor(id, "Black")
	catalog.addImage(id, idPtr(black.ID), "Black", "p/black-1.png")

	err := svc.DeleteProduct(context.Background(), id)
	require.Error(t, err)
	assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))

	_, err = catalog.GetProduct(context.Background(), id)
	assert.NoError(t, err)
	assert.Len(t, catalog.imagesByName(id)["Black"], 1)
}

func TestDeleteProduct_NotFound(t *testing.T) {
	blobs := newMemBlobs()
	svc := newTestProductService(newMemCatalog(), blobs, nil)

	err := svc.DeleteProduct(context.Background(), uuid.New())
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Empty(t, blobs.removeCalls)
}

func TestGetProduct_Detail(t *testing.T) {
	catalog := newMemCatalog()
	svc := newTestProductService(catalog, newMemBlobs(), nil)
	id := catalog.addProduct("Tee")
	black := catalog.addColor(id, "Black")
	catalog.addImage(id, idPtr(black.ID), "Black", "p/black.png")

	detail, err := svc.GetProduct(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Tee", detail.Product.Name)
	assert.Len(t, detail.Colors, 1)
	assert.Len(t, detail.Images, 1)
}
