package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mytheresa/catalog-service/models"
	"github.com/mytheresa/catalog-service/storage"
)

// memStore keeps both tables in memory and deletes child products with
// their collection, the way the foreign key does in PostgreSQL.
type memStore struct {
	mu          sync.Mutex
	collections map[uint]models.Collection
	products    map[uint]models.Product
	nextColl    uint
	nextProd    uint
}

func newMemStore() *memStore {
	return &memStore{
		collections: map[uint]models.Collection{},
		products:    map[uint]models.Product{},
	}
}

type memCollections struct{ s *memStore }

func (m memCollections) GetByID(_ context.Context, id uint) (*models.Collection, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	c, ok := m.s.collections[id]
	if !ok {
		return nil, models.ErrCollectionNotFound
	}
	for _, p := range m.s.sortedProducts() {
		if p.CollectionID == id {
			c.Products = append(c.Products, p)
		}
	}
	return &c, nil
}

func (m memCollections) GetPage(_ context.Context, offset, limit int) ([]models.Collection, int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	all := make([]models.Collection, 0, len(m.s.collections))
	for _, c := range m.s.collections {
		all = append(all, c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return window(all, offset, limit), int64(len(all)), nil
}

func (m memCollections) Create(_ context.Context, c *models.Collection) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.nextColl++
	c.ID = m.s.nextColl
	m.s.collections[c.ID] = *c
	return nil
}

func (m memCollections) Update(_ context.Context, id uint, changes models.CollectionChanges) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	c, ok := m.s.collections[id]
	if !ok {
		return models.ErrCollectionNotFound
	}
	if changes.Title != "" {
		c.Title = changes.Title
	}
	m.s.collections[id] = c
	return nil
}

func (m memCollections) Delete(_ context.Context, id uint) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.collections[id]; !ok {
		return models.ErrCollectionNotFound
	}
	delete(m.s.collections, id)
	for pid, p := range m.s.products {
		if p.CollectionID == id {
			delete(m.s.products, pid)
		}
	}
	return nil
}

func (m memCollections) CollectionTitleTaken(_ context.Context, title string, excludeID uint) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, c := range m.s.collections {
		if c.Title == title && c.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m memCollections) CollectionExists(_ context.Context, id uint) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	_, ok := m.s.collections[id]
	return ok, nil
}

type memProducts struct{ s *memStore }

func (m memProducts) GetByID(_ context.Context, id uint) (*models.Product, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	p, ok := m.s.products[id]
	if !ok {
		return nil, models.ErrProductNotFound
	}
	p.Collection = m.s.collections[p.CollectionID]
	return &p, nil
}

func (m memProducts) GetPage(_ context.Context, offset, limit int, filters models.ProductFilters) ([]models.Product, int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var matched []models.Product
	for _, p := range m.s.sortedProducts() {
		if filters.CollectionID != 0 && p.CollectionID != filters.CollectionID {
			continue
		}
		if filters.Menu != "" && p.Menu != filters.Menu {
			continue
		}
		p.Collection = m.s.collections[p.CollectionID]
		matched = append(matched, p)
	}
	return window(matched, offset, limit), int64(len(matched)), nil
}

func (m memProducts) Create(_ context.Context, p *models.Product) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.collections[p.CollectionID]; !ok {
		return models.ErrCollectionMissing
	}
	m.s.nextProd++
	p.ID = m.s.nextProd
	m.s.products[p.ID] = *p
	return nil
}

func (m memProducts) Update(_ context.Context, id uint, changes models.ProductChanges) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	p, ok := m.s.products[id]
	if !ok {
		return models.ErrProductNotFound
	}
	if changes.Title != "" {
		p.Title = changes.Title
	}
	if changes.Price != 0 {
		p.Price = changes.Price
	}
	if changes.Description != "" {
		p.Description = changes.Description
	}
	if changes.ImagePath != "" {
		p.ImagePath = changes.ImagePath
	}
	if changes.Menu != "" {
		p.Menu = changes.Menu
	}
	if changes.CollectionID != 0 {
		p.CollectionID = changes.CollectionID
	}
	m.s.products[id] = p
	return nil
}

func (m memProducts) ProductTitleTaken(_ context.Context, title string, excludeID uint) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, p := range m.s.products {
		if p.Title == title && p.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

// sortedProducts must be called with mu held.
func (s *memStore) sortedProducts() []models.Product {
	all := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all
}

func window[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func newTestServer(t *testing.T, pinger fakePinger) (http.Handler, string) {
	t.Helper()
	dir := t.TempDir()
	images, err := storage.NewImageStore(dir)
	require.NoError(t, err)

	store := newMemStore()
	return NewRouter(Deps{
		Collections:    memCollections{store},
		Products:       memProducts{store},
		Images:         images,
		ImageDir:       dir,
		DB:             pinger,
		Logger:         zerolog.Nop(),
		AllowedOrigins: []string{"*"},
		MaxUploadBytes: 1 << 20,
	}), dir
}

func do(t *testing.T, h http.Handler, req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var body map[string]any
	if strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	}
	return rr, body
}

func formRequest(method, target string, values url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func productRequest(t *testing.T, method, target string, fields map[string]string, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("product_image", filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestCatalogLifecycle(t *testing.T) {
	h, _ := newTestServer(t, fakePinger{})

	rr, body := do(t, h, formRequest(http.MethodPost, "/create-collection", url.Values{"title": {"Shoes"}}))
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, body["message"], "Shoes")

	rr, body = do(t, h, httptest.NewRequest(http.MethodGet, "/get-all-collections?page=1&per_page=20", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, float64(1), body["total_items"])
	assert.Equal(t, false, body["has_next"])
	assert.Equal(t, false, body["has_previous"])
	assert.Equal(t, []any{map[string]any{"id": float64(1), "title": "Shoes"}}, body["items"])

	rr, body = do(t, h, productRequest(t, http.MethodPost, "/create-product", map[string]string{
		"title":         "RedShoe",
		"price":         "10",
		"description":   "red",
		"menu":          "casual",
		"collection_id": "1",
	}, "a.png", []byte("png-bytes")))
	require.Equal(t, http.StatusCreated, rr.Code, body)

	rr, body = do(t, h, httptest.NewRequest(http.MethodGet, "/get-product/1", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "RedShoe", body["title"])
	assert.Equal(t, "Shoes", body["collection_title"])
	assert.Equal(t, "static/images/a.png", body["image_path"])

	rr, body = do(t, h, httptest.NewRequest(http.MethodGet, "/get-collection/1", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, body["products"], 1)

	rr, _ = do(t, h, httptest.NewRequest(http.MethodGet, "/static/images/a.png", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "png-bytes", rr.Body.String())

	rr, body = do(t, h, httptest.NewRequest(http.MethodDelete, "/delete-collection/1", nil))
	require.Equal(t, http.StatusAccepted, rr.Code)
	assert.Contains(t, body["message"], "Shoes")

	rr, body = do(t, h, httptest.NewRequest(http.MethodGet, "/get-product/1", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "product not found", body["error"])
}

func TestUpdateMissingCollection(t *testing.T) {
	h, _ := newTestServer(t, fakePinger{})

	rr, body := do(t, h, formRequest(http.MethodPatch, "/update-collection/99", url.Values{"title": {"Boots"}}))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "collection not found", body["error"])
}

func TestDuplicateCollectionTitle(t *testing.T) {
	h, _ := newTestServer(t, fakePinger{})

	rr, _ := do(t, h, formRequest(http.MethodPost, "/create-collection", url.Values{"title": {"Shoes"}}))
	require.Equal(t, http.StatusCreated, rr.Code)

	rr, body := do(t, h, formRequest(http.MethodPost, "/create-collection", url.Values{"title": {"Shoes"}}))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "validation failed", body["error"])
	assert.Equal(t, "title", body["field"])
	assert.Equal(t, "Shoes", body["input"])
}

func TestProductForMissingCollectionLeavesNoFile(t *testing.T) {
	h, dir := newTestServer(t, fakePinger{})

	rr, body := do(t, h, productRequest(t, http.MethodPost, "/create-product", map[string]string{
		"title":         "RedShoe",
		"price":         "10",
		"description":   "red",
		"collection_id": "7",
	}, "a.png", []byte("png")))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "collection_id", body["field"])

	assert.NoFileExists(t, dir+"/a.png")
}

func TestUnknownRoute(t *testing.T) {
	h, _ := newTestServer(t, fakePinger{})

	rr, _ := do(t, h, httptest.NewRequest(http.MethodGet, "/get-everything", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHealth(t *testing.T) {
	h, _ := newTestServer(t, fakePinger{})
	rr, body := do(t, h, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "up", body["database"])

	h, _ = newTestServer(t, fakePinger{err: errors.New("connection refused")})
	rr, body = do(t, h, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, "down", body["database"])
}
