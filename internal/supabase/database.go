package supabase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gold-lifestyle-backend/internal/apperr"
	"gold-lifestyle-backend/internal/models"
)

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(connectionString string) (*DatabaseClient, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

func (d *DatabaseClient) Close() error {
	return d.db.Close()
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

// Products

const productColumns = `id, name, description, price_cents, sizes, primary_image_url, created_at, updated_at`

func scanProduct(row interface{ Scan(...interface{}) error }) (*models.Product, error) {
	var p models.Product
	var sizes pq.StringArray
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.PriceCents, &sizes,
		&p.PrimaryImageURL, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Sizes = []string(sizes)
	return &p, nil
}

func (d *DatabaseClient) CreateProduct(ctx context.Context, fields models.ProductFields) (*models.Product, error) {
	var name, description string
	var price int64
	if fields.Name != nil {
		name = *fields.Name
	}
	if fields.Description != nil {
		description = *fields.Description
	}
	if fields.PriceCents != nil {
		price = *fields.PriceCents
	}
	sizes := fields.Sizes
	if sizes == nil {
		sizes = []string{}
	}

	product, err := scanProduct(d.db.QueryRowContext(ctx, `
		INSERT INTO products (name, description, price_cents, sizes)
		VALUES ($1, $2, $3, $4)
		RETURNING `+productColumns,
		name, description, price, pq.Array(sizes)))
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return product, nil
}

func (d *DatabaseClient) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := scanProduct(d.db.QueryRowContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = $1
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("product not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

func (d *DatabaseClient) ListProducts(ctx context.Context) ([]models.ProductListing, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT p.id, p.name, p.price_cents, COALESCE(array_length(p.sizes, 1), 0),
			(SELECT COUNT(*) FROM product_colors c WHERE c.product_id = p.id),
			COALESCE(p.primary_image_url,
				(SELECT i.url FROM product_images i WHERE i.product_id = p.id ORDER BY i.created_at ASC LIMIT 1))
		FROM products p
		ORDER BY p.created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []models.ProductListing
	for rows.Next() {
		var p models.ProductListing
		if err := rows.Scan(&p.ID, &p.Name, &p.PriceCents, &p.SizesCount, &p.ColorsCount, &p.PreviewImageURL); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// UpdateProduct sets only the fields that are present.
func (d *DatabaseClient) UpdateProduct(ctx context.Context, id uuid.UUID, fields models.ProductFields) error {
	var sizes interface{}
	if len(fields.Sizes) > 0 {
		sizes = pq.Array(fields.Sizes)
	}
	res, err := d.db.ExecContext(ctx, `
		UPDATE products
		SET name = COALESCE($2, name),
			description = COALESCE($3, description),
			price_cents = COALESCE($4, price_cents),
			sizes = COALESCE($5, sizes),
			updated_at = NOW()
		WHERE id = $1
	`, id, fields.Name, fields.Description, fields.PriceCents, sizes)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	return expectRow(res, "product not found")
}

func (d *DatabaseClient) SetPrimaryImage(ctx context.Context, id uuid.UUID, url string) error {
	res, err := d.db.ExecContext(ctx, `
		UPDATE products
		SET primary_image_url = $2, updated_at = NOW()
		WHERE id = $1
	`, id, url)
	if err != nil {
		return fmt.Errorf("failed to set primary image: %w", err)
	}
	return expectRow(res, "product not found")
}

func (d *DatabaseClient) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	res, err := d.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return expectRow(res, "product not found")
}

// Colors

func (d *DatabaseClient) ListColors(ctx context.Context, productID uuid.UUID) ([]models.ProductColor, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, product_id, color_name, color_hex, created_at
		FROM product_colors
		WHERE product_id = $1
		ORDER BY created_at ASC
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list colors: %w", err)
	}
	defer rows.Close()

	var colors []models.ProductColor
	for rows.Next() {
		var c models.ProductColor
		if err := rows.Scan(&c.ID, &c.ProductID, &c.ColorName, &c.ColorHex, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan color: %w", err)
		}
		colors = append(colors, c)
	}
	return colors, rows.Err()
}

func (d *DatabaseClient) InsertColor(ctx context.Context, productID uuid.UUID, name string, hex sql.NullString) (*models.ProductColor, error) {
	var c models.ProductColor
	err := d.db.QueryRowContext(ctx, `
		INSERT INTO product_colors (product_id, color_name, color_hex)
		VALUES ($1, $2, $3)
		RETURNING id, product_id, color_name, color_hex, created_at
	`, productID, name, hex).Scan(&c.ID, &c.ProductID, &c.ColorName, &c.ColorHex, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert color: %w", err)
	}
	return &c, nil
}

func (d *DatabaseClient) UpdateColor(ctx context.Context, id uuid.UUID, name string, hex sql.NullString) error {
	res, err := d.db.ExecContext(ctx, `
		UPDATE product_colors
		SET color_name = $2, color_hex = $3
		WHERE id = $1
	`, id, name, hex)
	if err != nil {
		return fmt.Errorf("failed to update color: %w", err)
	}
	return expectRow(res, "color not found")
}

func (d *DatabaseClient) DeleteColors(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := d.db.ExecContext(ctx, `
		DELETE FROM product_colors
		WHERE id = ANY($1::uuid[])
	`, pq.Array(uuidStrings(ids)))
	if err != nil {
		return fmt.Errorf("failed to delete colors: %w", err)
	}
	return nil
}

// Images

func (d *DatabaseClient) ListImages(ctx context.Context, productID uuid.UUID) ([]models.ProductImage, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, product_id, color_id, url, color_name, created_at
		FROM product_images
		WHERE product_id = $1
		ORDER BY created_at ASC
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	defer rows.Close()

	var images []models.ProductImage
	for rows.Next() {
		var img models.ProductImage
		if err := rows.Scan(&img.ID, &img.ProductID, &img.ColorID, &img.URL, &img.ColorName, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan image: %w", err)
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

func (d *DatabaseClient) InsertImage(ctx context.Context, productID, colorID uuid.UUID, url, colorName string) (*models.ProductImage, error) {
	var img models.ProductImage
	err := d.db.QueryRowContext(ctx, `
		INSERT INTO product_images (product_id, color_id, url, color_name)
		VALUES ($1, $2, $3, $4)
		RETURNING id, product_id, color_id, url, color_name, created_at
	`, productID, colorID, url, colorName).Scan(
		&img.ID, &img.ProductID, &img.ColorID, &img.URL, &img.ColorName, &img.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert image: %w", err)
	}
	return &img, nil
}

func (d *DatabaseClient) RenameImages(ctx context.Context, productID, colorID uuid.UUID, from, to string, includeLegacy bool) (int64, error) {
	res, err := d.db.ExecContext(ctx, `
		UPDATE product_images
		SET color_name = $4
		WHERE product_id = $1
		  AND color_name = $3
		  AND (color_id = $2 OR ($5 AND color_id IS NULL))
	`, productID, colorID, from, to, includeLegacy)
	if err != nil {
		return 0, fmt.Errorf("failed to rename images: %w", err)
	}
	return res.RowsAffected()
}

func (d *DatabaseClient) DeleteImages(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := d.db.ExecContext(ctx, `
		DELETE FROM product_images
		WHERE id = ANY($1::uuid[])
	`, pq.Array(uuidStrings(ids)))
	if err != nil {
		return fmt.Errorf("failed to delete images: %w", err)
	}
	return nil
}

// Orders

const orderColumns = `id, total_cents, status, shipping, items, payment_reference,
	external_transaction_id, external_status, created_at, updated_at`

func scanOrder(row interface{ Scan(...interface{}) error }) (*models.Order, error) {
	var o models.Order
	if err := row.Scan(&o.ID, &o.TotalCents, &o.Status, &o.Shipping, &o.Items, &o.PaymentReference,
		&o.ExternalTransactionID, &o.ExternalStatus, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	return &o, nil
}

func (d *DatabaseClient) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	created, err := scanOrder(d.db.QueryRowContext(ctx, `
		INSERT INTO orders (total_cents, status, shipping, items, payment_reference)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+orderColumns,
		order.TotalCents, order.Status, order.Shipping, order.Items, order.PaymentReference))
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	return created, nil
}

func (d *DatabaseClient) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := scanOrder(d.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE id = $1
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("order not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}

func (d *DatabaseClient) ListOrders(ctx context.Context) ([]models.Order, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *order)
	}
	return orders, rows.Err()
}

func (d *DatabaseClient) RecordPaymentResult(ctx context.Context, id uuid.UUID, reference string, externalStatus, externalTransactionID sql.NullString) error {
	res, err := d.db.ExecContext(ctx, `
		UPDATE orders
		SET external_status = $3,
			external_transaction_id = COALESCE($4, external_transaction_id),
			updated_at = NOW()
		WHERE id = $1 AND payment_reference = $2
	`, id, reference, externalStatus, externalTransactionID)
	if err != nil {
		return fmt.Errorf("failed to record payment result: %w", err)
	}
	return expectRow(res, "order not found")
}

// TransitionStatus moves the order from one status to another only if it is
// still in from. Concurrent callers race on the row; exactly one wins.
func (d *DatabaseClient) TransitionStatus(ctx context.Context, id uuid.UUID, reference, from, to string) (bool, error) {
	res, err := d.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $4, updated_at = NOW()
		WHERE id = $1 AND payment_reference = $2 AND status = $3
	`, id, reference, from, to)
	if err != nil {
		return false, fmt.Errorf("failed to transition order: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func expectRow(res sql.Result, notFound string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound(notFound)
	}
	return nil
}
