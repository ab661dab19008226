package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"product-catalog/internal/domain"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ProductForm is a submitted create/edit form. An empty ID means a new
// product; a non-empty ID is an edit resubmission of an existing one.
type ProductForm struct {
	ID         string  `validate:"omitempty,uuid"`
	Name       string  `validate:"required"`
	Price      float64 `validate:"required,gt=0"`
	CategoryID string  `validate:"required"`
	CreatedAt  time.Time
	Photo      string
}

// FileUpload is the part of a multipart submission the pipeline needs. The
// HTTP layer adapts *multipart.FileHeader to it; tests fake it in memory.
type FileUpload interface {
	Filename() string
	Open() (io.ReadCloser, error)
}

// ValidationError reports structural form problems. The handler recovers
// locally by re-rendering the form with the submitted values.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid product form: %d invalid fields", len(e.Fields))
}

// SavePipeline sequences the multi-step product save: validate, stamp the
// creation timestamp, derive the photo filename, resolve the category against
// the store, persist the product, and finally transfer the uploaded bytes.
// Steps run in strict order and the first failure short-circuits the rest.
// The file transfer deliberately runs after the persist and is awaited: if it
// fails, the stored document already names the file and the error is surfaced
// to the caller instead of being compensated.
type SavePipeline struct {
	catalog   CatalogService
	uploadDir string
	validate  *validator.Validate
	now       func() time.Time
}

// NewSavePipeline creates a SavePipeline writing uploads into uploadDir.
func NewSavePipeline(catalog CatalogService, uploadDir string) *SavePipeline {
	return &SavePipeline{
		catalog:   catalog,
		uploadDir: uploadDir,
		validate:  validator.New(),
		now:       time.Now,
	}
}

// Run executes the pipeline for one submitted form. file may be nil or carry
// an empty filename, both meaning "no photo uploaded"; on an edit this keeps
// the previously stored photo value untouched.
func (p *SavePipeline) Run(ctx context.Context, form ProductForm, file FileUpload) (*domain.Product, error) {
	if err := p.validate.Struct(form); err != nil {
		return nil, asValidationError(err)
	}

	product := &domain.Product{
		ID:        form.ID,
		Name:      form.Name,
		Price:     form.Price,
		CreatedAt: form.CreatedAt,
		Photo:     form.Photo,
	}

	// First save stamps the timestamp; edits keep the original.
	if product.CreatedAt.IsZero() {
		product.CreatedAt = p.now()
	}

	uploaded := file != nil && file.Filename() != ""
	if uploaded {
		product.Photo = derivePhotoName(file.Filename())
	}

	// Category resolution is mandatory: a miss fails the whole save before
	// anything is written.
	category, err := p.catalog.FindCategoryByID(ctx, form.CategoryID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("category %s: %w", form.CategoryID, ErrNotFound)
		}
		return nil, err
	}
	product.Category = *category

	saved, err := p.catalog.Save(ctx, product)
	if err != nil {
		return nil, err
	}

	if uploaded {
		if err := p.transfer(file, saved.Photo); err != nil {
			return nil, fmt.Errorf("failed to store photo %s: %w", saved.Photo, err)
		}
	}

	return saved, nil
}

// derivePhotoName prefixes a random token to the sanitized original filename
// so repeated uploads of the same file never collide in the upload directory.
func derivePhotoName(original string) string {
	sanitized := strings.NewReplacer(" ", "", ":", "", "\\", "").Replace(original)
	return uuid.NewString() + "-" + sanitized
}

func (p *SavePipeline) transfer(file FileUpload, name string) error {
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(p.uploadDir, name))
	if err != nil {
		return err
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

func asValidationError(err error) error {
	var invalid validator.ValidationErrors
	if !errors.As(err, &invalid) {
		return err
	}
	fields := make(map[string]string, len(invalid))
	for _, fieldErr := range invalid {
		fields[fieldErr.Field()] = fieldMessage(fieldErr)
	}
	return &ValidationError{Fields: fields}
}

func fieldMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "gt":
		return "Value must be greater than " + e.Param()
	case "uuid":
		return "Invalid identifier"
	default:
		return "Invalid value"
	}
}
