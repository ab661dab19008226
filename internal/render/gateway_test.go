package render

import (
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"product-catalog/internal/domain"
	"product-catalog/internal/stream"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

// flushRecorder counts flushes so tests can assert chunk boundaries.
type flushRecorder struct {
	*httptest.ResponseRecorder
	flushes int
}

func (r *flushRecorder) Flush() {
	r.flushes++
	r.ResponseRecorder.Flush()
}

func newRecorder() *flushRecorder {
	return &flushRecorder{ResponseRecorder: httptest.NewRecorder()}
}

func testProducts(n int) []domain.Product {
	products := make([]domain.Product, n)
	for i := range products {
		products[i] = domain.Product{
			ID:        fmt.Sprintf("id-%04d", i),
			Name:      fmt.Sprintf("PRODUCT-%04d", i),
			Price:     float64(i) + 0.5,
			CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			Category:  domain.Category{ID: "c1", Name: "Electronics"},
		}
	}
	return products
}

func TestProperty_StreamListFlushesCeilNOverKChunks(t *testing.T) {
	gateway, err := NewGateway()
	require.NoError(t, err)

	properties := gopter.NewProperties(nil)

	properties.Property("row batches flushed once per chunk, all rows present in order", prop.ForAll(
		func(n int, size int) bool {
			products := testProducts(n)
			rec := newRecorder()

			err := gateway.StreamList(context.Background(), rec, ListPage{Title: "Products"},
				stream.Of(products...), StreamOptions{ChunkSize: size})
			if err != nil {
				return false
			}

			// head + one per chunk + foot
			chunks := (n + size - 1) / size
			if rec.flushes != chunks+2 {
				return false
			}

			body := rec.Body.String()
			last := -1
			for _, product := range products {
				idx := strings.Index(body, ">"+product.Name+"<")
				if idx < 0 || idx < last {
					return false
				}
				if strings.Count(body, ">"+product.Name+"<") != 1 {
					return false
				}
				last = idx
			}
			return true
		},
		gen.IntRange(0, 40),
		gen.IntRange(1, 10),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestStreamListUnboundedChunkFlushesOnce(t *testing.T) {
	gateway, err := NewGateway()
	require.NoError(t, err)

	rec := newRecorder()
	err = gateway.StreamList(context.Background(), rec, ListPage{Title: "Products"},
		stream.Of(testProducts(7)...), StreamOptions{})
	require.NoError(t, err)

	// head + the single unbounded chunk + foot
	require.Equal(t, 3, rec.flushes)
	require.Contains(t, rec.Body.String(), "PRODUCT-0006")
}

func TestStreamListShowsIndicators(t *testing.T) {
	gateway, err := NewGateway()
	require.NoError(t, err)

	rec := newRecorder()
	err = gateway.StreamList(context.Background(), rec, ListPage{
		Title:   "Products",
		Success: "Product saved successfully",
	}, stream.Of[domain.Product](), StreamOptions{ChunkSize: 10})
	require.NoError(t, err)
	require.Contains(t, rec.Body.String(), "Product saved successfully")
}

func TestStreamListStopsPullingOnCancelledContext(t *testing.T) {
	gateway, err := NewGateway()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pulled := 0
	source := func(yield func(domain.Product, error) bool) {
		for i := 0; ; i++ {
			pulled++
			if !yield(testProducts(1)[0], nil) {
				return
			}
		}
	}

	rec := newRecorder()
	err = gateway.StreamList(ctx, rec, ListPage{Title: "Products"}, source,
		StreamOptions{ChunkSize: 2, PerItemDelay: 10 * time.Millisecond})
	require.Error(t, err)
	require.Equal(t, 1, pulled)
}

func TestRenderFormListsCategoriesAndErrors(t *testing.T) {
	gateway, err := NewGateway()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	err = gateway.RenderForm(rec, FormPage{
		Title:      "Product form",
		ButtonText: "Save",
		Categories: []*domain.Category{
			{ID: "c1", Name: "Electronics"},
			{ID: "c2", Name: "Furniture"},
		},
		FieldErrors: map[string]string{"Name": "This field is required"},
	})
	require.NoError(t, err)

	body := rec.Body.String()
	require.Contains(t, body, "Electronics")
	require.Contains(t, body, "Furniture")
	require.Contains(t, body, "This field is required")
}

func TestRenderDetailShowsPhotoWhenPresent(t *testing.T) {
	gateway, err := NewGateway()
	require.NoError(t, err)

	product := testProducts(1)[0]
	product.Photo = "abc-photo.jpg"

	rec := httptest.NewRecorder()
	err = gateway.RenderDetail(rec, DetailPage{Title: "Product detail", Product: product})
	require.NoError(t, err)
	require.Contains(t, rec.Body.String(), "/uploads/img/abc-photo.jpg")
}
