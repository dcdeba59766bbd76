package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mynature/storefront/internal/catalog"
	"github.com/mynature/storefront/internal/dashboard"
	"github.com/mynature/storefront/internal/order"
)

const maxProductFormMemory = 32 << 20 // 32 MiB

// Uploader stores an image and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, error)
}

// productForm is the typed shape of the multipart product payload; fields
// are coerced and validated here before any domain call.
type productForm struct {
	Name          string  `validate:"required"`
	NameAr        string  `validate:"required"`
	Description   string
	DescriptionAr string
	Price         float64 `validate:"required,gt=0"`
	CategoryID    string  `validate:"required,uuid4"`
	StockQuantity int     `validate:"gte=0"`
}

type toggleProductRequest struct {
	IsActive bool `json:"is_active"`
}

type updateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// AdminHandler serves the back-office API. Every route is behind the
// RequireAdmin middleware.
type AdminHandler struct {
	catalog   catalog.Service
	orders    order.Service
	dashboard *dashboard.Service
	uploader  Uploader
	validate  *validator.Validate
}

func NewAdminHandler(catalogSvc catalog.Service, orderSvc order.Service, dashboardSvc *dashboard.Service, uploader Uploader) *AdminHandler {
	return &AdminHandler{
		catalog:   catalogSvc,
		orders:    orderSvc,
		dashboard: dashboardSvc,
		uploader:  uploader,
		validate:  validator.New(),
	}
}

func (h *AdminHandler) RegisterRoutes(router chi.Router) {
	router.Get("/products", h.handleListProducts)
	router.Post("/products", h.handleCreateProduct)
	router.Put("/products/{id}", h.handleUpdateProduct)
	router.Patch("/products/{id}", h.handleToggleProduct)
	router.Delete("/products/{id}", h.handleDeleteProduct)
	router.Get("/orders", h.handleListOrders)
	router.Get("/orders/{id}", h.handleGetOrder)
	router.Patch("/orders/{id}/status", h.handleUpdateOrderStatus)
	router.Get("/dashboard", h.handleDashboard)
}

func (h *AdminHandler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListAllProducts(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list products for admin")
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	respondWithJSON(w, http.StatusOK, products)
}

func (h *AdminHandler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	form, err := h.parseProductForm(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.validate.Struct(form); err != nil {
		respondValidationError(w, err)
		return
	}

	imageURLs, err := h.uploadImages(r)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upload product images")
		respondWithError(w, http.StatusInternalServerError, "Image upload failed: "+err.Error())
		return
	}

	categoryID, _ := uuid.FromString(form.CategoryID)
	product, err := h.catalog.CreateProduct(r.Context(), catalog.CreateProductCommand{
		Name:          form.Name,
		NameAr:        form.NameAr,
		Description:   form.Description,
		DescriptionAr: form.DescriptionAr,
		Price:         form.Price,
		CategoryID:    categoryID,
		StockQuantity: form.StockQuantity,
		ImageURLs:     imageURLs,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to create product")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to create product")
		return
	}

	respondWithJSON(w, http.StatusCreated, product)
}

func (h *AdminHandler) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	form, err := h.parseProductForm(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.validate.Struct(form); err != nil {
		respondValidationError(w, err)
		return
	}

	// No new files means the product keeps its stored images.
	imageURLs, err := h.uploadImages(r)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upload product images")
		respondWithError(w, http.StatusInternalServerError, "Image upload failed: "+err.Error())
		return
	}

	categoryID, _ := uuid.FromString(form.CategoryID)
	product, err := h.catalog.UpdateProduct(r.Context(), productID, catalog.UpdateProductCommand{
		Name:          form.Name,
		NameAr:        form.NameAr,
		Description:   form.Description,
		DescriptionAr: form.DescriptionAr,
		Price:         form.Price,
		CategoryID:    categoryID,
		StockQuantity: form.StockQuantity,
		ImageURLs:     imageURLs,
	})
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondWithError(w, http.StatusNotFound, "Product not found")
			return
		}
		log.Error().Err(err).Msg("Failed to update product")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to update product")
		return
	}

	respondWithJSON(w, http.StatusOK, product)
}

func (h *AdminHandler) handleToggleProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	var requestPayload toggleProductRequest
	if err := json.NewDecoder(r.Body).Decode(&requestPayload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.catalog.SetProductActive(r.Context(), productID, requestPayload.IsActive); err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondWithError(w, http.StatusNotFound, "Product not found")
			return
		}
		log.Error().Err(err).Msg("Failed to toggle product status")
		respondWithError(w, http.StatusInternalServerError, "Failed to toggle product status")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *AdminHandler) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	if err := h.catalog.DeleteProduct(r.Context(), productID); err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondWithError(w, http.StatusNotFound, "Product not found")
			return
		}
		log.Error().Err(err).Msg("Failed to delete product")
		respondWithError(w, http.StatusInternalServerError, "Failed to delete product")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *AdminHandler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListOrders(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list orders")
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch orders")
		return
	}
	respondWithJSON(w, http.StatusOK, orders)
}

func (h *AdminHandler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	foundOrder, err := h.orders.GetOrderByID(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			respondWithError(w, http.StatusNotFound, "Order not found")
			return
		}
		log.Error().Err(err).Msg("Failed to get order")
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch order")
		return
	}

	respondWithJSON(w, http.StatusOK, foundOrder)
}

func (h *AdminHandler) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	var requestPayload updateOrderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&requestPayload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := h.validate.Struct(requestPayload); err != nil {
		respondValidationError(w, err)
		return
	}

	err = h.orders.UpdateOrderStatus(r.Context(), orderID, order.Status(requestPayload.Status))
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			respondWithError(w, http.StatusNotFound, "Order not found")
			return
		}
		if errors.Is(err, order.ErrUnknownStatus) {
			respondWithError(w, http.StatusBadRequest, "Unknown order status")
			return
		}
		log.Error().Err(err).Msg("Failed to update order status")
		respondWithError(w, http.StatusInternalServerError, "Failed to update order status")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *AdminHandler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	overview, err := h.dashboard.Overview(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to build dashboard overview")
		respondWithError(w, http.StatusInternalServerError, "Failed to build dashboard")
		return
	}
	respondWithJSON(w, http.StatusOK, overview)
}

func (h *AdminHandler) parseProductForm(r *http.Request) (*productForm, error) {
	if err := r.ParseMultipartForm(maxProductFormMemory); err != nil {
		return nil, errors.New("invalid multipart form")
	}

	form := &productForm{
		Name:          r.FormValue("name"),
		NameAr:        r.FormValue("name_ar"),
		Description:   r.FormValue("description"),
		DescriptionAr: r.FormValue("description_ar"),
		CategoryID:    r.FormValue("category_id"),
	}

	if rawPrice := r.FormValue("price"); rawPrice != "" {
		price, err := strconv.ParseFloat(rawPrice, 64)
		if err != nil {
			return nil, errors.New("price must be a number")
		}
		form.Price = price
	}

	if rawStock := r.FormValue("stock_quantity"); rawStock != "" {
		stock, err := strconv.Atoi(rawStock)
		if err != nil {
			return nil, errors.New("stock_quantity must be an integer")
		}
		form.StockQuantity = stock
	}

	return form, nil
}

// uploadImages stores every file in the images field and returns their
// public URLs. Returns nil when no files were submitted.
func (h *AdminHandler) uploadImages(r *http.Request) ([]string, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	files := r.MultipartForm.File["images"]
	if len(files) == 0 {
		return nil, nil
	}
	if h.uploader == nil {
		return nil, errors.New("image upload is not configured")
	}

	urls := make([]string, 0, len(files))
	for _, fileHeader := range files {
		url, err := h.uploadImage(r.Context(), fileHeader)
		if err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func (h *AdminHandler) uploadImage(ctx context.Context, fileHeader *multipart.FileHeader) (string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	return h.uploader.Upload(ctx, fileHeader.Filename, fileHeader.Header.Get("Content-Type"), file)
}
