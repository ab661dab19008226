package transport

import (
	"errors"
	"net/http"
	"strings"

	"product-catalog/internal/domain"
	"product-catalog/internal/middleware"
	"product-catalog/internal/service"
	"product-catalog/internal/stream"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProductRestHandler serves the JSON API mirroring the uppercased-repeated
// listing.
type ProductRestHandler struct {
	catalog service.CatalogService
	logger  *zap.Logger
}

// NewProductRestHandler creates a new ProductRestHandler.
func NewProductRestHandler(catalog service.CatalogService, logger *zap.Logger) *ProductRestHandler {
	return &ProductRestHandler{catalog: catalog, logger: logger}
}

// RegisterRoutes registers the API routes on the given router (mounted under
// /api by the server).
func (h *ProductRestHandler) RegisterRoutes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/list", h.List)
		r.Get("/", h.ListWrapped)
		r.Get("/{id}", h.FindByID)
	})
}

// List returns the uppercased-repeated product listing as a JSON array. An
// empty catalog is an empty array, not an error.
func (h *ProductRestHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := stream.Collect(h.catalog.FindAllUpperCasedRepeated(r.Context()))
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}
	if products == nil {
		products = []domain.Product{}
	}
	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// ListWrapped is the status-aware variant: an empty catalog yields 404.
func (h *ProductRestHandler) ListWrapped(w http.ResponseWriter, r *http.Request) {
	products, err := stream.Collect(h.catalog.FindAllUpperCasedRepeated(r.Context()))
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}
	if len(products) == 0 {
		middleware.RespondWithError(w, http.StatusNotFound, "no products")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// FindByID returns a single product with its name uppercased, or 404.
func (h *ProductRestHandler) FindByID(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.FindByID(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, service.ErrNotFound) {
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
		return
	}
	if err != nil {
		h.logger.Error("Failed to find product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to find product")
		return
	}

	product.Name = strings.ToUpper(product.Name)
	middleware.RespondWithJSON(w, http.StatusOK, product)
}
