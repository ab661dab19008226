package domain

import (
	"time"
)

// Category groups products. The ID is assigned by the store on first save.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Product is a catalog entry. A product that has never been persisted has an
// empty ID and a zero CreatedAt; both are filled in during the first save and
// never change afterwards. Category is embedded as a full snapshot rather
// than a bare reference: the save pipeline resolves it against the store
// before the product is written, so a persisted product never carries a
// dangling category id.
type Product struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	CreatedAt time.Time `json:"created_at"`
	Photo     string    `json:"photo,omitempty"`
	Category  Category  `json:"category"`
}

// IsNew reports whether the product has been persisted yet.
func (p *Product) IsNew() bool {
	return p.ID == ""
}

// HasPhoto reports whether a photo filename is recorded for the product.
func (p *Product) HasPhoto() bool {
	return p.Photo != ""
}
