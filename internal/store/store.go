package store

import (
	"context"
	"errors"
	"fmt"

	"product-catalog/internal/domain"
	"product-catalog/internal/stream"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
)

// ErrorKind classifies store failures so callers can tell an unreachable
// database from a document that would not round-trip.
type ErrorKind string

const (
	KindConnection    ErrorKind = "connection"
	KindSerialization ErrorKind = "serialization"
	KindWrite         ErrorKind = "write"
)

// StoreError is an adapter-level failure. Not-found conditions are sentinel
// errors, not StoreErrors; anything wrapped in a StoreError is fatal for the
// request that triggered it.
type StoreError struct {
	Op   string
	Kind ErrorKind
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s (%s): %v", e.Op, e.Kind, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Store is the boundary to the document database. All reads and writes take a
// context and never block beyond it; FindAll yields products lazily off the
// underlying cursor, so the consumer controls how much is fetched.
type Store interface {
	FindAll(ctx context.Context) stream.Seq[domain.Product]
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	Save(ctx context.Context, product *domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, product *domain.Product) error
	FindCategoryByID(ctx context.Context, id string) (*domain.Category, error)
	FindAllCategories(ctx context.Context) ([]*domain.Category, error)
	SaveCategory(ctx context.Context, category *domain.Category) (*domain.Category, error)
	DropCollection(ctx context.Context, name string) error
}
