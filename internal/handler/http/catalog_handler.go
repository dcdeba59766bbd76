package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mynature/storefront/internal/catalog"
)

// CatalogHandler serves the public storefront endpoints.
type CatalogHandler struct {
	service catalog.Service
}

func NewCatalogHandler(service catalog.Service) *CatalogHandler {
	return &CatalogHandler{service: service}
}

func (h *CatalogHandler) RegisterRoutes(router chi.Router) {
	router.Get("/products", h.handleListProducts)
	router.Get("/products/{id}", h.handleGetProduct)
	router.Get("/categories", h.handleListCategories)
	router.Get("/categories/{id}", h.handleGetCategory)
}

// handleListProducts serves listing, category filtering, search and the
// featured selection off one endpoint via query parameters.
func (h *CatalogHandler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		products []catalog.Product
		err      error
	)

	switch {
	case r.URL.Query().Get("featured") != "":
		products, err = h.service.FeaturedProducts(ctx)
	case r.URL.Query().Get("q") != "":
		products, err = h.service.SearchProducts(ctx, r.URL.Query().Get("q"))
	case r.URL.Query().Get("category") != "":
		categoryID, parseErr := uuid.FromString(r.URL.Query().Get("category"))
		if parseErr != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid category parameter")
			return
		}
		products, err = h.service.ListProductsByCategory(ctx, categoryID)
	default:
		products, err = h.service.ListProducts(ctx)
	}

	if err != nil {
		log.Error().Err(err).Msg("Failed to list products")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to fetch products")
		return
	}

	respondWithJSON(w, http.StatusOK, products)
}

func (h *CatalogHandler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	product, err := h.service.GetProduct(r.Context(), productID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondWithError(w, http.StatusNotFound, "Product not found")
			return
		}
		log.Error().Err(err).Msg("Failed to get product")
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch product")
		return
	}

	respondWithJSON(w, http.StatusOK, product)
}

func (h *CatalogHandler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list categories")
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch categories")
		return
	}
	respondWithJSON(w, http.StatusOK, categories)
}

func (h *CatalogHandler) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	category, err := h.service.GetCategory(r.Context(), categoryID)
	if err != nil {
		if errors.Is(err, catalog.ErrCategoryNotFound) {
			respondWithError(w, http.StatusNotFound, "Category not found")
			return
		}
		log.Error().Err(err).Msg("Failed to get category")
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch category")
		return
	}

	respondWithJSON(w, http.StatusOK, category)
}
