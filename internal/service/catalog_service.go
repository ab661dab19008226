package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"product-catalog/internal/domain"
	"product-catalog/internal/store"
	"product-catalog/internal/stream"
)

// ErrNotFound signals that a referenced product or category does not exist.
// The HTTP layer maps it to a redirect with an error indicator rather than a
// raw failure response.
var ErrNotFound = errors.New("not found")

// CatalogService owns the business-level catalog operations. Listing variants
// return lazy sequences: the name transformations are applied per element as
// the consumer pulls, never over a materialized list.
type CatalogService interface {
	FindAll(ctx context.Context) stream.Seq[domain.Product]
	FindAllUpperCased(ctx context.Context) stream.Seq[domain.Product]
	FindAllUpperCasedRepeated(ctx context.Context) stream.Seq[domain.Product]
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	Save(ctx context.Context, product *domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, product *domain.Product) error
	FindCategoryByID(ctx context.Context, id string) (*domain.Category, error)
	FindAllCategories(ctx context.Context) ([]*domain.Category, error)
	SaveCategory(ctx context.Context, category *domain.Category) (*domain.Category, error)
}

type catalogService struct {
	store store.Store
}

// NewCatalogService creates a CatalogService over the given store.
func NewCatalogService(s store.Store) CatalogService {
	return &catalogService{store: s}
}

func (s *catalogService) FindAll(ctx context.Context) stream.Seq[domain.Product] {
	return s.store.FindAll(ctx)
}

// FindAllUpperCased maps each product's name to its uppercase form. Pure and
// order-preserving; applying it twice changes nothing.
func (s *catalogService) FindAllUpperCased(ctx context.Context) stream.Seq[domain.Product] {
	return stream.Map(s.store.FindAll(ctx), upperCaseName)
}

// FindAllUpperCasedRepeated uppercases and doubles each product's name. Two
// lazy transformations composed over the same single pass, no buffering in
// between.
func (s *catalogService) FindAllUpperCasedRepeated(ctx context.Context) stream.Seq[domain.Product] {
	return stream.Map(stream.Map(s.store.FindAll(ctx), upperCaseName), repeatName)
}

func (s *catalogService) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.store.FindByID(ctx, id)
	if errors.Is(err, store.ErrProductNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return product, nil
}

func (s *catalogService) Save(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	saved, err := s.store.Save(ctx, product)
	if err != nil {
		return nil, fmt.Errorf("failed to save product: %w", err)
	}
	return saved, nil
}

func (s *catalogService) Delete(ctx context.Context, product *domain.Product) error {
	if err := s.store.Delete(ctx, product); err != nil {
		if errors.Is(err, store.ErrProductNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

func (s *catalogService) FindCategoryByID(ctx context.Context, id string) (*domain.Category, error) {
	category, err := s.store.FindCategoryByID(ctx, id)
	if errors.Is(err, store.ErrCategoryNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find category: %w", err)
	}
	return category, nil
}

func (s *catalogService) FindAllCategories(ctx context.Context) ([]*domain.Category, error) {
	categories, err := s.store.FindAllCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (s *catalogService) SaveCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	saved, err := s.store.SaveCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("failed to save category: %w", err)
	}
	return saved, nil
}

func upperCaseName(p domain.Product) domain.Product {
	p.Name = strings.ToUpper(p.Name)
	return p
}

func repeatName(p domain.Product) domain.Product {
	p.Name = p.Name + p.Name
	return p
}
