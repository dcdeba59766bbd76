package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mynature/storefront/internal/order"
)

type SubmitOrderItem struct {
	ProductID string `json:"product_id" validate:"required,uuid4"`
	Quantity  int    `json:"quantity" validate:"required,min=1,max=10"`
}

type SubmitOrderRequest struct {
	CustomerName    string            `json:"customer_name" validate:"required"`
	CustomerPhone   string            `json:"customer_phone" validate:"required"`
	CustomerAddress string            `json:"customer_address" validate:"required"`
	City            string            `json:"city" validate:"required"`
	Notes           string            `json:"notes"`
	Items           []SubmitOrderItem `json:"items" validate:"required,min=1,dive"`
}

// OrderHandler serves the public order submission endpoint.
type OrderHandler struct {
	service  order.Service
	validate *validator.Validate
}

func NewOrderHandler(service order.Service) *OrderHandler {
	return &OrderHandler{service: service, validate: validator.New()}
}

func (h *OrderHandler) RegisterRoutes(router chi.Router) {
	router.Post("/orders", h.handleSubmitOrder)
}

func (h *OrderHandler) handleSubmitOrder(w http.ResponseWriter, r *http.Request) {
	var requestPayload SubmitOrderRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&requestPayload); err != nil {
		log.Warn().Err(err).Msg("Failed to decode order request body")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		respondValidationError(w, err)
		return
	}

	submitReq := order.SubmitRequest{
		CustomerName:    requestPayload.CustomerName,
		CustomerPhone:   requestPayload.CustomerPhone,
		CustomerAddress: requestPayload.CustomerAddress,
		City:            requestPayload.City,
		Notes:           requestPayload.Notes,
		Items:           make([]order.SubmitItem, 0, len(requestPayload.Items)),
	}
	for _, item := range requestPayload.Items {
		productID, err := uuid.FromString(item.ProductID)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid product_id")
			return
		}
		submitReq.Items = append(submitReq.Items, order.SubmitItem{
			ProductID: productID,
			Quantity:  item.Quantity,
		})
	}

	createdOrder, err := h.service.Submit(r.Context(), submitReq)
	if err != nil {
		log.Error().Err(err).Msg("Failed to submit order")

		var seqErr *order.SequenceError
		if errors.As(err, &seqErr) && seqErr.Step == order.StepPriceLookup {
			respondWithError(w, mapErrorToStatusCode(err), "One of the requested products does not exist")
			return
		}

		respondWithError(w, mapErrorToStatusCode(err), "Failed to create order")
		return
	}

	respondWithJSON(w, http.StatusCreated, createdOrder)
}
