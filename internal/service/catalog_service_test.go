package service

import (
	"context"
	"strings"
	"testing"

	"product-catalog/internal/domain"
	"product-catalog/internal/stream"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

func seedProducts(t *testing.T, m *mockStore, names []string) {
	t.Helper()
	for _, name := range names {
		_, err := m.Save(context.Background(), &domain.Product{Name: name, Price: 1})
		require.NoError(t, err)
	}
}

func TestProperty_FindAllUpperCasedPreservesLengthAndOrder(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("every name is uppercased, nothing reordered or dropped", prop.ForAll(
		func(names []string) bool {
			mock := newMockStore()
			catalog := NewCatalogService(mock)
			for _, name := range names {
				if _, err := mock.Save(context.Background(), &domain.Product{Name: name, Price: 1}); err != nil {
					return false
				}
			}

			products, err := stream.Collect(catalog.FindAllUpperCased(context.Background()))
			if err != nil {
				return false
			}
			if len(products) != len(names) {
				return false
			}
			for i, name := range names {
				if products[i].Name != strings.ToUpper(name) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.AnyString()),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_UpperCasingIsIdempotentOnNames(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("uppercasing an uppercased name changes nothing", prop.ForAll(
		func(name string) bool {
			once := upperCaseName(domain.Product{Name: name})
			twice := upperCaseName(once)
			return once.Name == twice.Name
		},
		gen.AnyString(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_FindAllUpperCasedRepeatedDoublesUppercasedName(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("each name equals upper(name)+upper(name)", prop.ForAll(
		func(names []string) bool {
			mock := newMockStore()
			catalog := NewCatalogService(mock)
			for _, name := range names {
				if _, err := mock.Save(context.Background(), &domain.Product{Name: name, Price: 1}); err != nil {
					return false
				}
			}

			products, err := stream.Collect(catalog.FindAllUpperCasedRepeated(context.Background()))
			if err != nil {
				return false
			}
			if len(products) != len(names) {
				return false
			}
			for i, name := range names {
				upper := strings.ToUpper(name)
				if products[i].Name != upper+upper {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.AnyString()),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestFindAllIsPassthrough(t *testing.T) {
	mock := newMockStore()
	catalog := NewCatalogService(mock)
	seedProducts(t, mock, []string{"Mouse", "Keyboard"})

	products, err := stream.Collect(catalog.FindAll(context.Background()))
	require.NoError(t, err)
	require.Len(t, products, 2)
	require.Equal(t, "Mouse", products[0].Name)
	require.Equal(t, "Keyboard", products[1].Name)
}

func TestFindByIDMissingMapsToNotFound(t *testing.T) {
	catalog := NewCatalogService(newMockStore())

	_, err := catalog.FindByID(context.Background(), "nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFindCategoryByIDMissingMapsToNotFound(t *testing.T) {
	catalog := NewCatalogService(newMockStore())

	_, err := catalog.FindCategoryByID(context.Background(), "nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteMissingMapsToNotFound(t *testing.T) {
	catalog := NewCatalogService(newMockStore())

	err := catalog.Delete(context.Background(), &domain.Product{ID: "nope"})
	require.ErrorIs(t, err, ErrNotFound)
}
