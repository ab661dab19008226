package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"testing"

	"product-catalog/internal/domain"
	"product-catalog/internal/render"
	"product-catalog/internal/service"
	"product-catalog/internal/store"
	"product-catalog/internal/stream"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockStore is a map-backed Store keeping insertion order.
type mockStore struct {
	products   map[string]domain.Product
	order      []string
	categories map[string]domain.Category
	saveCalls  int
}

func newMockStore() *mockStore {
	return &mockStore{
		products:   make(map[string]domain.Product),
		categories: make(map[string]domain.Category),
	}
}

func (m *mockStore) FindAll(ctx context.Context) stream.Seq[domain.Product] {
	ids := append([]string(nil), m.order...)
	return func(yield func(domain.Product, error) bool) {
		for _, id := range ids {
			if !yield(m.products[id], nil) {
				return
			}
		}
	}
}

func (m *mockStore) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	product, ok := m.products[id]
	if !ok {
		return nil, store.ErrProductNotFound
	}
	return &product, nil
}

func (m *mockStore) Save(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	m.saveCalls++
	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	if _, exists := m.products[product.ID]; !exists {
		m.order = append(m.order, product.ID)
	}
	m.products[product.ID] = *product
	return product, nil
}

func (m *mockStore) Delete(ctx context.Context, product *domain.Product) error {
	if _, ok := m.products[product.ID]; !ok {
		return store.ErrProductNotFound
	}
	delete(m.products, product.ID)
	for i, id := range m.order {
		if id == product.ID {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *mockStore) FindCategoryByID(ctx context.Context, id string) (*domain.Category, error) {
	category, ok := m.categories[id]
	if !ok {
		return nil, store.ErrCategoryNotFound
	}
	return &category, nil
}

func (m *mockStore) FindAllCategories(ctx context.Context) ([]*domain.Category, error) {
	categories := []*domain.Category{}
	for _, category := range m.categories {
		c := category
		categories = append(categories, &c)
	}
	return categories, nil
}

func (m *mockStore) SaveCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	m.categories[category.ID] = *category
	return category, nil
}

func (m *mockStore) DropCollection(ctx context.Context, name string) error {
	switch name {
	case store.CollectionProducts:
		m.products = make(map[string]domain.Product)
		m.order = nil
	case store.CollectionCategories:
		m.categories = make(map[string]domain.Category)
	default:
		return fmt.Errorf("unknown collection %q", name)
	}
	return nil
}

type testApp struct {
	router  chi.Router
	mock    *mockStore
	catalog service.CatalogService
	dir     string
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	mock := newMockStore()
	catalog := service.NewCatalogService(mock)
	dir := t.TempDir()
	pipeline := service.NewSavePipeline(catalog, dir)

	gateway, err := render.NewGateway()
	require.NoError(t, err)

	logger := zap.NewNop()
	router := chi.NewRouter()

	noLimit := func(next http.Handler) http.Handler { return next }
	NewProductHandler(catalog, pipeline, gateway, dir, logger).RegisterRoutes(router, noLimit)
	router.Route("/api", func(r chi.Router) {
		NewProductRestHandler(catalog, logger).RegisterRoutes(r)
	})

	return &testApp{router: router, mock: mock, catalog: catalog, dir: dir}
}

func (a *testApp) seedCategory(t *testing.T, name string) domain.Category {
	t.Helper()
	category, err := a.mock.SaveCategory(context.Background(), &domain.Category{Name: name})
	require.NoError(t, err)
	return *category
}

func (a *testApp) seedProduct(t *testing.T, name string, price float64, category domain.Category) domain.Product {
	t.Helper()
	product, err := a.mock.Save(context.Background(), &domain.Product{
		Name:     name,
		Price:    price,
		Category: category,
	})
	require.NoError(t, err)
	return *product
}

// multipartBody builds a multipart form submission. fileName == "" omits the
// file part entirely.
func multipartBody(t *testing.T, fields map[string]string, fileName string, fileContent []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	if fileName != "" {
		part, err := writer.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = io.Copy(part, bytes.NewReader(fileContent))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}
