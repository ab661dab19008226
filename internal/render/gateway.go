// Package render bridges lazy product sequences to the server-rendered view
// layer. The list page is written in bounded chunks with an explicit flush
// after each one, so the first rows reach the client while later elements are
// still being produced and transformed.
package render

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"product-catalog/internal/domain"
	"product-catalog/internal/stream"
	"product-catalog/web"
)

// Gateway renders the catalog pages from the embedded templates.
type Gateway struct {
	tmpl *template.Template
}

// NewGateway parses the embedded templates.
func NewGateway() (*Gateway, error) {
	tmpl, err := template.ParseFS(web.Templates, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Gateway{tmpl: tmpl}, nil
}

// StreamOptions controls chunking of a streamed list. ChunkSize <= 0 renders
// the whole sequence as a single chunk. PerItemDelay inserts an artificial
// pause before each element, used to make the incremental flushing visible.
type StreamOptions struct {
	ChunkSize    int
	PerItemDelay time.Duration
}

// ListPage is the data for the list page head.
type ListPage struct {
	Title   string
	Success string
	Error   string
}

// StreamList writes the list page incrementally: head, then one row batch per
// chunk with a flush in between, then the foot. Elements are emitted exactly
// once in source order; when ctx is cancelled (client gone) the source
// sequence is not pulled any further.
func (g *Gateway) StreamList(ctx context.Context, w http.ResponseWriter, page ListPage, products stream.Seq[domain.Product], opts StreamOptions) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if err := g.tmpl.ExecuteTemplate(w, "list_head", page); err != nil {
		return fmt.Errorf("failed to render list head: %w", err)
	}
	flush(w)

	chunks := stream.Chunks(stream.Delay(ctx, products, opts.PerItemDelay), opts.ChunkSize)
	for chunk, err := range chunks {
		if err != nil {
			// The head is already on the wire; all we can do is stop.
			return fmt.Errorf("product stream failed: %w", err)
		}
		if err := g.tmpl.ExecuteTemplate(w, "product_rows", chunk); err != nil {
			return fmt.Errorf("failed to render product rows: %w", err)
		}
		flush(w)
	}

	if err := g.tmpl.ExecuteTemplate(w, "list_foot", nil); err != nil {
		return fmt.Errorf("failed to render list foot: %w", err)
	}
	flush(w)
	return nil
}

// FormPage is the data for the create/edit form.
type FormPage struct {
	Title       string
	ButtonText  string
	Product     domain.Product
	Categories  []*domain.Category
	FieldErrors map[string]string
}

// RenderForm writes the product form.
func (g *Gateway) RenderForm(w http.ResponseWriter, page FormPage) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if page.FieldErrors == nil {
		page.FieldErrors = map[string]string{}
	}
	if err := g.tmpl.ExecuteTemplate(w, "form", page); err != nil {
		return fmt.Errorf("failed to render form: %w", err)
	}
	return nil
}

// DetailPage is the data for the product detail page.
type DetailPage struct {
	Title   string
	Product domain.Product
}

// RenderDetail writes the product detail page.
func (g *Gateway) RenderDetail(w http.ResponseWriter, page DetailPage) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := g.tmpl.ExecuteTemplate(w, "see", page); err != nil {
		return fmt.Errorf("failed to render detail: %w", err)
	}
	return nil
}

func flush(w http.ResponseWriter) {
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}
