package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProductsSaved counts successful product saves, creates and edits alike.
	ProductsSaved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_products_saved_total",
		Help: "The total number of products saved",
	})

	// ProductsDeleted counts successful product deletions.
	ProductsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_products_deleted_total",
		Help: "The total number of products deleted",
	})

	// PhotoUploads counts photo files transferred to the upload directory.
	PhotoUploads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_photo_uploads_total",
		Help: "The total number of product photos uploaded",
	})

	// ListStreams counts streamed list renders by chunk size label.
	ListStreams = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_list_streams_total",
		Help: "The total number of streamed product list renders",
	}, []string{"variant"})
)
