// Package app assembles the HTTP surface of the catalog service.
package app

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/mytheresa/catalog-service/app/collections"
	"github.com/mytheresa/catalog-service/app/health"
	"github.com/mytheresa/catalog-service/app/products"
	"github.com/mytheresa/catalog-service/storage"
)

// Deps is everything the handlers need, constructed once at startup.
type Deps struct {
	Collections    collections.CollectionProvider
	Products       products.ProductProvider
	Images         products.ImageStore
	ImageDir       string
	DB             health.Pinger
	Logger         zerolog.Logger
	AllowedOrigins []string
	MaxUploadBytes int64
	RequestTimeout time.Duration
}

func NewRouter(d Deps) http.Handler {
	collectionHandler := collections.NewCollectionHandler(d.Collections)
	productHandler := products.NewProductHandler(d.Products, d.Collections, d.Images, d.MaxUploadBytes)
	healthHandler := health.NewHealthHandler(d.DB)

	timeout := d.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(d.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(timeout))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", healthHandler.ServeHTTP)

	r.Get("/get-collection/{id}", collectionHandler.HandleGet)
	r.Get("/get-all-collections", collectionHandler.HandleGetAll)
	r.Post("/create-collection", collectionHandler.HandleCreate)
	r.Patch("/update-collection/{id}", collectionHandler.HandleUpdate)
	r.Delete("/delete-collection/{id}", collectionHandler.HandleDelete)

	r.Get("/get-product/{id}", productHandler.HandleGet)
	r.Get("/get-all-products", productHandler.HandleGetAll)
	r.Post("/create-product", productHandler.HandleCreate)
	r.Patch("/update-product/{id}", productHandler.HandleUpdate)

	prefix := "/" + storage.PublicPrefix + "/"
	files := http.StripPrefix(prefix, noDirectoryListing(http.FileServer(http.Dir(d.ImageDir))))
	r.Get(prefix+"*", files.ServeHTTP)
	r.Head(prefix+"*", files.ServeHTTP)

	return r
}
