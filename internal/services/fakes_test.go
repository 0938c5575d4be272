package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gold-lifestyle-backend/internal/apperr"
	"gold-lifestyle-backend/internal/models"
)

const testBlobBase = "https://store.test/storage/v1/object/public/product-images/"

// memCatalog is an in-memory CatalogStore. Deleting a product cascades like
// the foreign keys do.
type memCatalog struct {
	mu       sync.Mutex
	products map[uuid.UUID]*models.Product
	colors   map[uuid.UUID]*models.ProductColor
	images   map[uuid.UUID]*models.ProductImage
	seq      int

	writes         int
	failInsertImg  error
	failDeleteRows error
}

func newMemCatalog() *memCatalog {
	return &memCatalog{
		products: make(map[uuid.UUID]*models.Product),
		colors:   make(map[uuid.UUID]*models.ProductColor),
		images:   make(map[uuid.UUID]*models.ProductImage),
	}
}

func (m *memCatalog) tick() time.Time {
	m.seq++
	return time.Unix(1700000000, 0).Add(time.Duration(m.seq) * time.Millisecond)
}

func (m *memCatalog) CreateProduct(ctx context.Context, fields models.ProductFields) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	p := &models.Product{ID: uuid.New(), Sizes: fields.Sizes, CreatedAt: m.tick()}
	if fields.Name != nil {
		p.Name = *fields.Name
	}
	if fields.Description != nil {
		p.Description = *fields.Description
	}
	if fields.PriceCents != nil {
		p.PriceCents = *fields.PriceCents
	}
	m.products[p.ID] = p
	cp := *p
	return &cp, nil
}

func (m *memCatalog) addProduct(name string) uuid.UUID {
	p, _ := m.CreateProduct(context.Background(), models.ProductFields{Name: &name})
	m.writes = 0
	return p.ID
}

func (m *memCatalog) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, apperr.NotFound("product not found")
	}
	cp := *p
	return &cp, nil
}

func (m *memCatalog) ListProducts(ctx context.Context) ([]models.ProductListing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ProductListing
	for _, p := range m.products {
		out = append(out, models.ProductListing{ID: p.ID, Name: p.Name, PriceCents: p.PriceCents, PreviewImageURL: p.PrimaryImageURL})
	}
	return out, nil
}

func (m *memCatalog) UpdateProduct(ctx context.Context, id uuid.UUID, fields models.ProductFields) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return apperr.NotFound("product not found")
	}
	m.writes++
	if fields.Name != nil {
		p.Name = *fields.Name
	}
	if fields.Description != nil {
		p.Description = *fields.Description
	}
	if fields.PriceCents != nil {
		p.PriceCents = *fields.PriceCents
	}
	if len(fields.Sizes) > 0 {
		p.Sizes = fields.Sizes
	}
	return nil
}

func (m *memCatalog) SetPrimaryImage(ctx context.Context, id uuid.UUID, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return apperr.NotFound("product not found")
	}
	m.writes++
	p.PrimaryImageURL = sql.NullString{String: url, Valid: true}
	return nil
}

func (m *memCatalog) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return apperr.NotFound("product not found")
	}
	m.writes++
	delete(m.products, id)
	for cid, c := range m.colors {
		if c.ProductID == id {
			delete(m.colors, cid)
		}
	}
	for iid, img := range m.images {
		if img.ProductID == id {
			delete(m.images, iid)
		}
	}
	return nil
}

func (m *memCatalog) ListColors(ctx context.Context, productID uuid.UUID) ([]models.ProductColor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ProductColor
	for _, c := range m.colors {
		if c.ProductID == productID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memCatalog) InsertColor(ctx context.Context, productID uuid.UUID, name string, hex sql.NullString) (*models.ProductColor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	c := &models.ProductColor{ID: uuid.New(), ProductID: productID, ColorName: name, ColorHex: hex, CreatedAt: m.tick()}
	m.colors[c.ID] = c
	cp := *c
	return &cp, nil
}

func (m *memCatalog) addColor(productID uuid.UUID, name string) models.ProductColor {
	c, _ := m.InsertColor(context.Background(), productID, name, sql.NullString{})
	m.writes = 0
	return *c
}

func (m *memCatalog) UpdateColor(ctx context.Context, id uuid.UUID, name string, hex sql.NullString) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.colors[id]
	if !ok {
		return apperr.NotFound("color not found")
	}
	m.writes++
	c.ColorName = name
	c.ColorHex = hex
	return nil
}

func (m *memCatalog) DeleteColors(ctx context.Context, ids []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDeleteRows != nil {
		return m.failDeleteRows
	}
	m.writes++
	for _, id := range ids {
		delete(m.colors, id)
		for iid, img := range m.images {
			if img.ColorID.Valid && img.ColorID.UUID == id {
				delete(m.images, iid)
			}
		}
	}
	return nil
}

func (m *memCatalog) ListImages(ctx context.Context, productID uuid.UUID) ([]models.ProductImage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ProductImage
	for _, img := range m.images {
		if img.ProductID == productID {
			out = append(out, *img)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memCatalog) InsertImage(ctx context.Context, productID, colorID uuid.UUID, url, colorName string) (*models.ProductImage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failInsertImg != nil {
		return nil, m.failInsertImg
	}
	m.writes++
	img := &models.ProductImage{
		ID:        uuid.New(),
		ProductID: productID,
		ColorID:   uuid.NullUUID{UUID: colorID, Valid: true},
		URL:       url,
		ColorName: colorName,
		CreatedAt: m.tick(),
	}
	m.images[img.ID] = img
	cp := *img
	return &cp, nil
}

// addImage seeds an image row; a nil colorID makes a legacy row.
func (m *memCatalog) addImage(productID uuid.UUID, colorID *uuid.UUID, colorName, path string) models.ProductImage {
	m.mu.Lock()
	defer m.mu.Unlock()
	img := &models.ProductImage{ID: uuid.New(), ProductID: productID, URL: testBlobBase + path, ColorName: colorName, CreatedAt: m.tick()}
	if colorID != nil {
		img.ColorID = uuid.NullUUID{UUID: *colorID, Valid: true}
	}
	m.images[img.ID] = img
	return *img
}

func (m *memCatalog) RenameImages(ctx context.Context, productID, colorID uuid.UUID, from, to string, includeLegacy bool) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, img := range m.images {
		if img.ProductID != productID || img.ColorName != from {
			continue
		}
		owned := img.ColorID.Valid && img.ColorID.UUID == colorID
		legacy := includeLegacy && !img.ColorID.Valid
		if owned || legacy {
			img.ColorName = to
			n++
		}
	}
	if n > 0 {
		m.writes++
	}
	return n, nil
}

func (m *memCatalog) DeleteImages(ctx context.Context, ids []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDeleteRows != nil {
		return m.failDeleteRows
	}
	m.writes++
	for _, id := range ids {
		delete(m.images, id)
	}
	return nil
}

func (m *memCatalog) imagesByName(productID uuid.UUID) map[string][]models.ProductImage {
	images, _ := m.ListImages(context.Background(), productID)
	out := make(map[string][]models.ProductImage)
	for _, img := range images {
		out[img.ColorName] = append(out[img.ColorName], img)
	}
	return out
}

func (m *memCatalog) colorNames(productID uuid.UUID) []string {
	colors, _ := m.ListColors(context.Background(), productID)
	var names []string
	for _, c := range colors {
		names = append(names, c.ColorName)
	}
	sort.Strings(names)
	return names
}

// memBlobs records every call. failUpload fails uploads whose data contains
// the given substring.
type memBlobs struct {
	mu          sync.Mutex
	objects     map[string][]byte
	uploads     []string
	removeCalls [][]string
	failUpload  string
	failRemove  error
}

func newMemBlobs() *memBlobs {
	return &memBlobs{objects: make(map[string][]byte)}
}

func (b *memBlobs) Upload(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failUpload != "" && strings.Contains(string(data), b.failUpload) {
		return "", errors.New("storage unavailable")
	}
	b.uploads = append(b.uploads, path)
	b.objects[path] = data
	return testBlobBase + path, nil
}

func (b *memBlobs) Remove(ctx context.Context, paths []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.removeCalls = append(b.removeCalls, append([]string(nil), paths...))
	if b.failRemove != nil {
		return b.failRemove
	}
	for _, p := range paths {
		delete(b.objects, p)
	}
	return nil
}

func (b *memBlobs) PathFromURL(publicURL string) (string, bool) {
	if !strings.HasPrefix(publicURL, testBlobBase) {
		return "", false
	}
	return strings.TrimPrefix(publicURL, testBlobBase), true
}

// memOrders is an in-memory OrderStore whose TransitionStatus is atomic
// under its mutex, like the conditional UPDATE it stands in for.
type memOrders struct {
	mu          sync.Mutex
	orders      map[uuid.UUID]*models.Order
	mutations   int
	failCreate  error
	transitions int
}

func newMemOrders() *memOrders {
	return &memOrders{orders: make(map[uuid.UUID]*models.Order)}
}

func (m *memOrders) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreate != nil {
		return nil, m.failCreate
	}
	for _, o := range m.orders {
		if o.PaymentReference == order.PaymentReference {
			return nil, fmt.Errorf("duplicate payment reference")
		}
	}
	cp := *order
	cp.ID = uuid.New()
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	m.orders[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *memOrders) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, apperr.NotFound("order not found")
	}
	cp := *o
	return &cp, nil
}

func (m *memOrders) ListOrders(ctx context.Context) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Order
	for _, o := range m.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (m *memOrders) RecordPaymentResult(ctx context.Context, id uuid.UUID, reference string, externalStatus, externalTransactionID sql.NullString) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok || o.PaymentReference != reference {
		return apperr.NotFound("order not found")
	}
	m.mutations++
	o.ExternalStatus = externalStatus
	if externalTransactionID.Valid {
		o.ExternalTransactionID = externalTransactionID
	}
	return nil
}

func (m *memOrders) TransitionStatus(ctx context.Context, id uuid.UUID, reference, from, to string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok || o.PaymentReference != reference || o.Status != from {
		return false, nil
	}
	m.mutations++
	m.transitions++
	o.Status = to
	return true, nil
}

func (m *memOrders) only() *models.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		cp := *o
		return &cp
	}
	return nil
}

type fakeGateway struct {
	mu       sync.Mutex
	requests []models.PaymentRequest
	link     string
	err      error
}

func (g *fakeGateway) InitiatePayment(ctx context.Context, req models.PaymentRequest) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	return g.link, g.err
}

type fakeNotifier struct {
	mu    sync.Mutex
	sent  []models.OrderNotification
	err   error
	delay time.Duration
}

func (n *fakeNotifier) NotifyOrderCompleted(ctx context.Context, note models.OrderNotification) error {
	if n.delay > 0 {
		time.Sleep(n.delay)
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, note)
	return n.err
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

type recordedEvent struct {
	event   string
	key     string
	payload map[string]interface{}
}

type fakePublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *fakePublisher) Publish(ctx context.Context, event, key string, payload map[string]interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{event: event, key: key, payload: payload})
	return nil
}

func (p *fakePublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		out = append(out, e.event)
	}
	return out
}

// blockingPublisher waits for the caller's deadline, like a broker that
// never acknowledges.
type blockingPublisher struct {
	mu       sync.Mutex
	observed []error
}

func (p *blockingPublisher) Publish(ctx context.Context, event, key string, payload map[string]interface{}) error {
	<-ctx.Done()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observed = append(p.observed, ctx.Err())
	return ctx.Err()
}

func (p *blockingPublisher) errs() []error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]error(nil), p.observed...)
}

type fakeComments struct {
	rows []models.Comment
	err  error
}

func (f *fakeComments) ListComments(ctx context.Context, productID string) ([]models.Comment, error) {
	return f.rows, f.err
}

func (f *fakeComments) CreateComment(ctx context.Context, productID, author, body string) error {
	if f.err != nil {
		return f.err
	}
	f.rows = append(f.rows, models.Comment{ProductID: productID, Author: author, Body: body})
	return nil
}
