package service

import (
	"context"
	"fmt"

	"product-catalog/internal/domain"
	"product-catalog/internal/store"
	"product-catalog/internal/stream"

	"github.com/google/uuid"
)

// mockStore is a map-backed Store keeping insertion order, so listing tests
// can assert ordering without a database.
type mockStore struct {
	products   map[string]domain.Product
	order      []string
	categories map[string]domain.Category
	saveCalls  int
	failAll    error
}

func newMockStore() *mockStore {
	return &mockStore{
		products:   make(map[string]domain.Product),
		categories: make(map[string]domain.Category),
	}
}

func (m *mockStore) FindAll(ctx context.Context) stream.Seq[domain.Product] {
	if m.failAll != nil {
		return stream.Fail[domain.Product](m.failAll)
	}
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
