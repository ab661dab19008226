package transport

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"product-catalog/internal/domain"
	"product-catalog/internal/metrics"
	"product-catalog/internal/render"
	"product-catalog/internal/service"
	"product-catalog/internal/stream"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxUploadBytes = 32 << 20

// ProductHandler serves the server-rendered catalog pages: the streamed list
// variants, the create/edit form, delete, detail and photo download.
type ProductHandler struct {
	catalog   service.CatalogService
	pipeline  *service.SavePipeline
	gateway   *render.Gateway
	uploadDir string
	logger    *zap.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(catalog service.CatalogService, pipeline *service.SavePipeline, gateway *render.Gateway, uploadDir string, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		catalog:   catalog,
		pipeline:  pipeline,
		gateway:   gateway,
		uploadDir: uploadDir,
		logger:    logger,
	}
}

// RegisterRoutes registers the page routes. saveLimiter throttles the
// mutating form submission.
func (h *ProductHandler) RegisterRoutes(r chi.Router, saveLimiter func(http.Handler) http.Handler) {
	r.Get("/", h.ListPlain)
	r.Get("/list", h.ListPlain)
	r.Get("/list-chunked", h.ListChunked)
	r.Get("/list-full", h.ListFull)
	r.Get("/list-data-driver", h.ListDataDriver)
	r.Get("/form", h.CreateForm)
	r.Get("/form/{id}", h.EditForm)
	r.Get("/form-2/{id}", h.EditFormChecked)
	r.With(saveLimiter).Post("/form", h.Save)
	r.Get("/delete/{id}", h.Delete)
	r.Get("/see/{id}", h.Detail)
	r.Get("/uploads/img/{photo}", h.Photo)
}

// ListPlain renders the uppercased listing in one unbounded chunk.
func (h *ProductHandler) ListPlain(w http.ResponseWriter, r *http.Request) {
	metrics.ListStreams.WithLabelValues("plain").Inc()
	h.streamList(w, r, h.catalog.FindAllUpperCased(r.Context()), render.StreamOptions{})
}

// ListChunked renders the uppercased-repeated listing in chunks of 10.
func (h *ProductHandler) ListChunked(w http.ResponseWriter, r *http.Request) {
	metrics.ListStreams.WithLabelValues("chunked").Inc()
	h.streamList(w, r, h.catalog.FindAllUpperCasedRepeated(r.Context()), render.StreamOptions{ChunkSize: 10})
}

// ListFull renders the same listing as ListChunked on the list page.
func (h *ProductHandler) ListFull(w http.ResponseWriter, r *http.Request) {
	metrics.ListStreams.WithLabelValues("full").Inc()
	h.streamList(w, r, h.catalog.FindAllUpperCasedRepeated(r.Context()), render.StreamOptions{ChunkSize: 10})
}

// ListDataDriver renders chunks of 2 with a one second pause per element,
// which makes the incremental flushing observable in a browser.
func (h *ProductHandler) ListDataDriver(w http.ResponseWriter, r *http.Request) {
	metrics.ListStreams.WithLabelValues("data-driver").Inc()
	h.streamList(w, r, h.catalog.FindAllUpperCasedRepeated(r.Context()), render.StreamOptions{
		ChunkSize:    2,
		PerItemDelay: time.Second,
	})
}

func (h *ProductHandler) streamList(w http.ResponseWriter, r *http.Request, products stream.Seq[domain.Product], opts render.StreamOptions) {
	page := render.ListPage{
		Title:   "Product listing",
		Success: r.URL.Query().Get("success"),
		Error:   r.URL.Query().Get("error"),
	}
	if err := h.gateway.StreamList(r.Context(), w, page, products, opts); err != nil {
		// Headers are gone by now; log and let the truncated stream stand.
		h.logger.Error("List stream aborted", zap.Error(err), zap.String("path", r.URL.Path))
	}
}

// CreateForm renders an empty product form.
func (h *ProductHandler) CreateForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, render.FormPage{
		Title:      "Product form",
		ButtonText: "Save",
	})
}

// EditForm renders the form for an existing product. A missing id falls back
// to a blank form without an error; EditFormChecked is the strict variant.
func (h *ProductHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	page := render.FormPage{Title: "Edit product", ButtonText: "Save"}

	product, err := h.catalog.FindByID(r.Context(), chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, service.ErrNotFound):
		// fall through with the zero product
	case err != nil:
		h.serverError(w, r, err)
		return
	default:
		page.Product = *product
	}

	h.renderForm(w, r, page)
}

// EditFormChecked is the strict edit variant: a missing product redirects to
// the list with an error indicator instead of showing a blank form.
func (h *ProductHandler) EditFormChecked(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.FindByID(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, service.ErrNotFound) {
		redirectToList(w, r, "error", "Product does not exist")
		return
	}
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	h.renderForm(w, r, render.FormPage{
		Title:      "Edit product",
		ButtonText: "Save",
		Product:    *product,
	})
}

// Save runs the multipart submission through the save pipeline and redirects
// to the list with a success or error indicator. Validation failures
// re-render the form with the submitted values.
func (h *ProductHandler) Save(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "malformed multipart form", http.StatusBadRequest)
		return
	}

	form := parseProductForm(r)
	file := formFile(r)

	_, err := h.pipeline.Run(r.Context(), form, file)
	if err == nil {
		metrics.ProductsSaved.Inc()
		if file != nil && file.Filename() != "" {
			metrics.PhotoUploads.Inc()
		}
		redirectToList(w, r, "success", "Product saved successfully")
		return
	}

	var invalid *service.ValidationError
	switch {
	case errors.As(err, &invalid):
		title := "Product form"
		if form.ID != "" {
			title = "Edit product"
		}
		w.WriteHeader(http.StatusUnprocessableEntity)
		h.renderForm(w, r, render.FormPage{
			Title:       title,
			ButtonText:  "Save",
			Product:     formProduct(form),
			FieldErrors: invalid.Fields,
		})
	case errors.Is(err, service.ErrNotFound):
		redirectToList(w, r, "error", "Category does not exist")
	default:
		h.serverError(w, r, err)
	}
}

// Delete removes a product by id, redirecting with an error indicator when
// the id does not exist.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.FindByID(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, service.ErrNotFound) {
		redirectToList(w, r, "error", "Product does not exist")
		return
	}
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	if err := h.catalog.Delete(r.Context(), product); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			redirectToList(w, r, "error", "Product does not exist")
			return
		}
		h.serverError(w, r, err)
		return
	}

	metrics.ProductsDeleted.Inc()
	redirectToList(w, r, "success", "Product deleted successfully")
}

// Detail renders the product detail page.
func (h *ProductHandler) Detail(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.FindByID(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, service.ErrNotFound) {
		redirectToList(w, r, "error", "Product does not exist")
		return
	}
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	if err := h.gateway.RenderDetail(w, render.DetailPage{Title: "Product detail", Product: *product}); err != nil {
		h.logger.Error("Failed to render detail page", zap.Error(err))
	}
}

// Photo streams a stored photo as an attachment. Names that do not resolve
// to a plain file inside the upload directory are rejected.
func (h *ProductHandler) Photo(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "photo")
	if name == "" || strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		http.Error(w, "invalid photo name", http.StatusBadRequest)
		return
	}

	path := filepath.Join(h.uploadDir, name)
	if _, err := os.Stat(path); err != nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	http.ServeFile(w, r, path)
}

func (h *ProductHandler) renderForm(w http.ResponseWriter, r *http.Request, page render.FormPage) {
	categories, err := h.catalog.FindAllCategories(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	page.Categories = categories

	if err := h.gateway.RenderForm(w, page); err != nil {
		h.logger.Error("Failed to render form", zap.Error(err))
	}
}

func (h *ProductHandler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("Request failed",
		zap.Error(err),
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
	)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func redirectToList(w http.ResponseWriter, r *http.Request, indicator, message string) {
	http.Redirect(w, r, "/list?"+indicator+"="+url.QueryEscape(message), http.StatusSeeOther)
}

func parseProductForm(r *http.Request) service.ProductForm {
	form := service.ProductForm{
		ID:         r.FormValue("id"),
		Name:       strings.TrimSpace(r.FormValue("name")),
		CategoryID: r.FormValue("category_id"),
		Photo:      r.FormValue("photo"),
	}

	if price, err := strconv.ParseFloat(r.FormValue("price"), 64); err == nil {
		form.Price = price
	}
	if createdAt, err := time.Parse(time.RFC3339, r.FormValue("created_at")); err == nil {
		form.CreatedAt = createdAt
	}
	return form
}

func formProduct(form service.ProductForm) domain.Product {
	return domain.Product{
		ID:        form.ID,
		Name:      form.Name,
		Price:     form.Price,
		CreatedAt: form.CreatedAt,
		Photo:     form.Photo,
		Category:  domain.Category{ID: form.CategoryID},
	}
}

// formFile returns the uploaded photo part, or nil when the submission has
// no file part.
func formFile(r *http.Request) service.FileUpload {
	if r.MultipartForm == nil {
		return nil
	}
	headers := r.MultipartForm.File["file"]
	if len(headers) == 0 {
		return nil
	}
	return multipartUpload{header: headers[0]}
}

type multipartUpload struct {
	header *multipart.FileHeader
}

func (u multipartUpload) Filename() string {
	return u.header.Filename
}

func (u multipartUpload) Open() (io.ReadCloser, error) {
	return u.header.Open()
}
