package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gold-lifestyle-backend/internal/apperr"
	"gold-lifestyle-backend/internal/logger"
	"gold-lifestyle-backend/internal/models"
	"gold-lifestyle-backend/internal/services"
)

type ProductService interface {
	CreateProduct(ctx context.Context, in services.ProductInput) (uuid.UUID, *models.AppliedChanges, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, in services.ProductInput) (*models.AppliedChanges, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	GetProduct(ctx context.Context, id uuid.UUID) (*models.ProductDetail, error)
	ListProducts(ctx context.Context) ([]models.ProductListing, error)
}

type ProductsHandler struct {
	products ProductService
	logger   *logger.Logger
}

func NewProductsHandler(products ProductService, log *logger.Logger) *ProductsHandler {
	return &ProductsHandler{products: products, logger: log}
}

// ListProducts godoc
// @Summary     List products
// @Tags        products
// @Produce     json
// @Success     200 {object} models.ProductListResponse
// @Router      /api/products [get]
func (h *ProductsHandler) ListProducts(c *gin.Context) {
	listings, err := h.products.ListProducts(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	resp := models.ProductListResponse{Products: make([]models.ProductSummaryResponse, 0, len(listings))}
	for _, p := range listings {
		resp.Products = append(resp.Products, models.ProductSummaryResponse{
			ID:              p.ID.String(),
			Name:            p.Name,
			PriceCents:      p.PriceCents,
			PreviewImageURL: p.PreviewImageURL.String,
			ColorsCount:     p.ColorsCount,
			SizesCount:      p.SizesCount,
		})
	}
	c.JSON(http.StatusOK, resp)
}

// GetProduct godoc
// @Summary     Get a product with its colors and images
// @Tags        products
// @Produce     json
// @Param       id path string true "Product ID (UUID)"
// @Success     200 {object} models.ProductResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /api/products/{id} [get]
func (h *ProductsHandler) GetProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	detail, err := h.products.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, productResponse(detail))
}

// CreateProduct godoc
// @Summary     Create a product
// @Description Multipart form: name, description, priceMajorUnits, sizes[],
// @Description colors[i][colorName|colorHex|file], mainImage.
// @Tags        products
// @Accept      multipart/form-data
// @Produce     json
// @Security    Bearer
// @Success     201 {object} models.ProductSaveResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /api/products [post]
func (h *ProductsHandler) CreateProduct(c *gin.Context) {
	in, err := decodeProductForm(c.Request)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	id, changes, err := h.products.CreateProduct(c.Request.Context(), in)
	if err != nil {
		if id != uuid.Nil {
			h.saveFailed(c, id, changes, err)
			return
		}
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, models.ProductSaveResponse{OK: true, ID: id.String(), Changes: changes})
}

// UpdateProduct godoc
// @Summary     Update a product and reconcile its color variants
// @Description Multipart form as for create, plus colors[i][id] and
// @Description colors[i][originalColorName]. Colors left out of the form are deleted.
// @Tags        products
// @Accept      multipart/form-data
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Product ID (UUID)"
// @Success     200 {object} models.ProductSaveResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /api/products/{id} [put]
func (h *ProductsHandler) UpdateProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	in, err := decodeProductForm(c.Request)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	changes, err := h.products.UpdateProduct(c.Request.Context(), id, in)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			respondError(c, h.logger, err)
			return
		}
		h.saveFailed(c, id, changes, err)
		return
	}

	c.JSON(http.StatusOK, models.ProductSaveResponse{OK: true, ID: id.String(), Changes: changes})
}

// DeleteProduct godoc
// @Summary     Delete a product, its variants and its stored images
// @Tags        products
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Product ID (UUID)"
// @Success     200 {object} models.ProductSaveResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /api/products/{id} [delete]
func (h *ProductsHandler) DeleteProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	if err := h.products.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, models.ProductSaveResponse{OK: true, ID: id.String()})
}

// saveFailed reports a save that stopped part way. The changes that were
// applied are returned so the admin can see what landed.
func (h *ProductsHandler) saveFailed(c *gin.Context, id uuid.UUID, changes *models.AppliedChanges, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("product %s save failed: %v", id, err)
	}
	c.JSON(status, gin.H{
		"ok":      false,
		"id":      id.String(),
		"error":   apperr.Message(err),
		"changes": changes,
	})
}

func productID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid product id"})
		return uuid.Nil, false
	}
	return id, true
}

func productResponse(d *models.ProductDetail) models.ProductResponse {
	sizes := d.Product.Sizes
	if sizes == nil {
		sizes = []string{}
	}
	resp := models.ProductResponse{
		ID:              d.Product.ID.String(),
		Name:            d.Product.Name,
		Description:     d.Product.Description,
		PriceCents:      d.Product.PriceCents,
		Sizes:           sizes,
		PrimaryImageURL: d.Product.PrimaryImageURL.String,
		Colors:          make([]models.ProductColorResponse, 0, len(d.Colors)),
		Images:          make([]models.ProductImageResponse, 0, len(d.Images)),
	}
	for _, color := range d.Colors {
		resp.Colors = append(resp.Colors, models.ProductColorResponse{
			ID:        color.ID.String(),
			ColorName: color.ColorName,
			ColorHex:  color.ColorHex.String,
		})
	}
	for _, img := range d.Images {
		ir := models.ProductImageResponse{URL: img.URL, ColorName: img.ColorName}
		if img.ColorID.Valid {
			ir.ColorID = img.ColorID.UUID.String()
		}
		resp.Images = append(resp.Images, ir)
	}
	return resp
}
