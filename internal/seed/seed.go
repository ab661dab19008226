// Package seed repopulates the store at startup with a known catalog, the
// one-shot demo equivalent of fixture data.
package seed

import (
	"context"
	"fmt"
	"time"

	"product-catalog/internal/domain"
	"product-catalog/internal/service"
	"product-catalog/internal/store"

	"go.uber.org/zap"
)

// Run drops both collections and repopulates them through the catalog
// service: four categories, then seven products with their creation time
// stamped. Not part of any request pipeline; failures abort startup.
func Run(ctx context.Context, catalog service.CatalogService, s store.Store, logger *zap.Logger) error {
	for _, name := range []string{store.CollectionProducts, store.CollectionCategories} {
		if err := s.DropCollection(ctx, name); err != nil {
			return fmt.Errorf("failed to drop %s: %w", name, err)
		}
	}

	electronics := &domain.Category{Name: "Electronics"}
	computing := &domain.Category{Name: "Computing"}
	furniture := &domain.Category{Name: "Furniture"}
	sport := &domain.Category{Name: "Sport"}

	for _, category := range []*domain.Category{electronics, computing, furniture, sport} {
		if _, err := catalog.SaveCategory(ctx, category); err != nil {
			return fmt.Errorf("failed to seed category %s: %w", category.Name, err)
		}
		logger.Info("Seeded category", zap.String("id", category.ID), zap.String("name", category.Name))
	}

	products := []*domain.Product{
		{Name: "TV Sony LCD 43", Price: 500.0, Category: *electronics},
		{Name: "TV LG LCD 43", Price: 482.0, Category: *electronics},
		{Name: "TV Kalley LCD 43", Price: 398.0, Category: *electronics},
		{Name: "Monitor Gamer LG 24", Price: 425.0, Category: *computing},
		{Name: "Silla Gamer Kangu", Price: 212.0, Category: *furniture},
		{Name: "Teclado Gamer K", Price: 120.0, Category: *computing},
		{Name: "Mouse Gamer G", Price: 113.0, Category: *computing},
	}

	for _, product := range products {
		product.CreatedAt = time.Now()
		if _, err := catalog.Save(ctx, product); err != nil {
			return fmt.Errorf("failed to seed product %s: %w", product.Name, err)
		}
		logger.Info("Seeded product", zap.String("id", product.ID), zap.String("name", product.Name))
	}

	return nil
}
