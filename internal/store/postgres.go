package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"product-catalog/internal/domain"
	"product-catalog/internal/stream"

	"github.com/google/uuid"
)

// Collection names. Each is a table with an id primary key and a jsonb doc
// column holding the full document, including the embedded category snapshot
// on products.
const (
	CollectionProducts   = "products"
	CollectionCategories = "categories"
)

type postgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a Store backed by the two postgres document
// tables created by the migrations.
func NewPostgresStore(db *sql.DB) Store {
	return &postgresStore{db: db}
}

// FindAll streams products straight off the database cursor. Rows are decoded
// one at a time as the consumer pulls them; stopping early closes the cursor
// without fetching the remainder.
func (s *postgresStore) FindAll(ctx context.Context) stream.Seq[domain.Product] {
	return func(yield func(domain.Product, error) bool) {
		var zero domain.Product

		rows, err := s.db.QueryContext(ctx, `SELECT doc FROM products ORDER BY created_at, id`)
		if err != nil {
			yield(zero, &StoreError{Op: "find all products", Kind: KindConnection, Err: err})
			return
		}
		defer rows.Close()

		for rows.Next() {
			var raw []byte
			if err := rows.Scan(&raw); err != nil {
				yield(zero, &StoreError{Op: "find all products", Kind: KindConnection, Err: err})
				return
			}
			var product domain.Product
			if err := json.Unmarshal(raw, &product); err != nil {
				yield(zero, &StoreError{Op: "find all products", Kind: KindSerialization, Err: err})
				return
			}
			if !yield(product, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(zero, &StoreError{Op: "find all products", Kind: KindConnection, Err: err})
		}
	}
}

func (s *postgresStore) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM products WHERE id = $1`, id).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, &StoreError{Op: "find product by id", Kind: KindConnection, Err: err}
	}

	product := &domain.Product{}
	if err := json.Unmarshal(raw, product); err != nil {
		return nil, &StoreError{Op: "find product by id", Kind: KindSerialization, Err: err}
	}
	return product, nil
}

// Save upserts the product document. A product without an id gets one
// assigned here, which is the moment it acquires identity.
func (s *postgresStore) Save(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if product.ID == "" {
		product.ID = uuid.NewString()
	}

	doc, err := json.Marshal(product)
	if err != nil {
		return nil, &StoreError{Op: "save product", Kind: KindSerialization, Err: err}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO products (id, doc, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc
	`, product.ID, doc, product.CreatedAt)
	if err != nil {
		return nil, &StoreError{Op: "save product", Kind: KindWrite, Err: err}
	}

	return product, nil
}

func (s *postgresStore) Delete(ctx context.Context, product *domain.Product) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, product.ID)
	if err != nil {
		return &StoreError{Op: "delete product", Kind: KindWrite, Err: err}
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return &StoreError{Op: "delete product", Kind: KindWrite, Err: err}
	}
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (s *postgresStore) FindCategoryByID(ctx context.Context, id string) (*domain.Category, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM categories WHERE id = $1`, id).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, &StoreError{Op: "find category by id", Kind: KindConnection, Err: err}
	}

	category := &domain.Category{}
	if err := json.Unmarshal(raw, category); err != nil {
		return nil, &StoreError{Op: "find category by id", Kind: KindSerialization, Err: err}
	}
	return category, nil
}

func (s *postgresStore) FindAllCategories(ctx context.Context) ([]*domain.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT doc FROM categories ORDER BY id`)
	if err != nil {
		return nil, &StoreError{Op: "find all categories", Kind: KindConnection, Err: err}
	}
	defer rows.Close()

	categories := []*domain.Category{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, &StoreError{Op: "find all categories", Kind: KindConnection, Err: err}
		}
		category := &domain.Category{}
		if err := json.Unmarshal(raw, category); err != nil {
			return nil, &StoreError{Op: "find all categories", Kind: KindSerialization, Err: err}
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Op: "find all categories", Kind: KindConnection, Err: err}
	}

	return categories, nil
}

func (s *postgresStore) SaveCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	if category.ID == "" {
		category.ID = uuid.NewString()
	}

	doc, err := json.Marshal(category)
	if err != nil {
		return nil, &StoreError{Op: "save category", Kind: KindSerialization, Err: err}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO categories (id, doc)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc
	`, category.ID, doc)
	if err != nil {
		return nil, &StoreError{Op: "save category", Kind: KindWrite, Err: err}
	}

	return category, nil
}

// DropCollection empties one of the two document tables. The name is checked
// against the known collections rather than interpolated into SQL.
func (s *postgresStore) DropCollection(ctx context.Context, name string) error {
	var query string
	switch name {
	case CollectionProducts:
		query = `DELETE FROM products`
	case CollectionCategories:
		query = `DELETE FROM categories`
	default:
		return &StoreError{Op: "drop collection", Kind: KindWrite, Err: fmt.Errorf("unknown collection %q", name)}
	}

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return &StoreError{Op: "drop collection", Kind: KindWrite, Err: err}
	}
	return nil
}
