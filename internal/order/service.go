package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const maxQuantityPerLine = 10

// PriceSource resolves the authoritative unit price of a product. Client
// supplied prices are never used.
type PriceSource interface {
	GetPrice(ctx context.Context, productID uuid.UUID) (float64, error)
}

type SubmitItem struct {
	ProductID uuid.UUID
	Quantity  int
}

type SubmitRequest struct {
	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
	City            string
	Notes           string
	Items           []SubmitItem
}

type Service interface {
	Submit(ctx context.Context, req SubmitRequest) (*Order, error)
	ListOrders(ctx context.Context) ([]Order, error)
	GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error)
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, newStatus Status) error
}

type service struct {
	repo   Repository
	prices PriceSource
}

func NewService(repo Repository, prices PriceSource) Service {
	return &service{repo: repo, prices: prices}
}

// Submit runs the five-step creation sequence: insert the PENDING header with
// total 0, fetch authoritative prices, build items with captured prices,
// insert the items, then update the header total and return the joined order.
// Steps after the header insert do not roll it back on failure; the orphaned
// header (total 0, no items) is an accepted inconsistency.
func (s *service) Submit(ctx context.Context, req SubmitRequest) (*Order, error) {
	if err := validateSubmit(req); err != nil {
		log.Warn().Err(err).Msg("service: rejected order submission")
		return nil, err
	}

	header := &Order{
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerAddress: req.CustomerAddress,
		City:            req.City,
		Notes:           req.Notes,
		Status:          StatusPending,
		TotalAmount:     0,
	}

	orderID, err := s.repo.CreateHeader(ctx, header)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to create order header")
		return nil, &SequenceError{Step: StepCreateHeader, Err: err}
	}

	// Price lookups are independent reads and may run concurrently.
	prices := make([]float64, len(req.Items))
	g, gctx := errgroup.WithContext(ctx)
	for i, item := range req.Items {
		g.Go(func() error {
			price, err := s.prices.GetPrice(gctx, item.ProductID)
			if err != nil {
				return fmt.Errorf("product %s: %w", item.ProductID, err)
			}
			prices[i] = price
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Stringer("order_id", orderID).
			Msg("service: price lookup failed, order header left with total 0")
		return nil, &SequenceError{Step: StepPriceLookup, Err: err}
	}

	var total float64
	items := make([]OrderItem, 0, len(req.Items))
	for i, line := range req.Items {
		total += float64(line.Quantity) * prices[i]
		items = append(items, OrderItem{
			OrderID:   orderID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     prices[i],
		})
	}

	if err := s.repo.InsertItems(ctx, items); err != nil {
		log.Error().Err(err).Stringer("order_id", orderID).
			Msg("service: failed to insert order items, order header left with total 0")
		return nil, &SequenceError{Step: StepInsertItems, Err: err}
	}

	if err := s.repo.FinalizeTotal(ctx, orderID, total); err != nil {
		log.Error().Err(err).Stringer("order_id", orderID).Msg("service: failed to finalize order total")
		return nil, &SequenceError{Step: StepFinalize, Err: err}
	}

	created, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		log.Error().Err(err).Stringer("order_id", orderID).Msg("service: failed to load created order")
		return nil, &SequenceError{Step: StepFinalize, Err: err}
	}

	log.Info().Stringer("order_id", orderID).Float64("total_amount", total).
		Int("items", len(items)).Msg("service: order created")

	return created, nil
}

func (s *service) ListOrders(ctx context.Context) ([]Order, error) {
	orders, err := s.repo.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list orders")
		return nil, fmt.Errorf("service: failed to list orders: %w", err)
	}
	return orders, nil
}

func (s *service) GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			log.Warn().Stringer("order_id", id).Msg("service: order not found")
			return nil, ErrOrderNotFound
		}
		log.Error().Err(err).Stringer("order_id", id).Msg("service: failed to get order")
		return nil, fmt.Errorf("service: failed to get order: %w", err)
	}
	return order, nil
}

func (s *service) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, newStatus Status) error {
	if !newStatus.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, newStatus)
	}

	if err := s.repo.UpdateStatus(ctx, orderID, newStatus); err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			log.Warn().Stringer("order_id", orderID).Stringer("new_status", newStatus).
				Msg("service: order not found for status update")
			return ErrOrderNotFound
		}
		log.Error().Err(err).Stringer("order_id", orderID).Msg("service: failed to update order status")
		return fmt.Errorf("service: failed to update order status: %w", err)
	}

	log.Info().Stringer("order_id", orderID).Stringer("new_status", newStatus).
		Msg("service: order status updated")
	return nil
}

func validateSubmit(req SubmitRequest) error {
	if req.CustomerName == "" {
		return fmt.Errorf("%w: customer_name is required", ErrValidation)
	}
	if req.CustomerPhone == "" {
		return fmt.Errorf("%w: customer_phone is required", ErrValidation)
	}
	if req.CustomerAddress == "" {
		return fmt.Errorf("%w: customer_address is required", ErrValidation)
	}
	if req.City == "" {
		return fmt.Errorf("%w: city is required", ErrValidation)
	}
	if len(req.Items) == 0 {
		return fmt.Errorf("%w: order must contain at least one item", ErrValidation)
	}
	for _, item := range req.Items {
		if item.ProductID == uuid.Nil {
			return fmt.Errorf("%w: product_id is required", ErrValidation)
		}
		if item.Quantity < 1 || item.Quantity > maxQuantityPerLine {
			return fmt.Errorf("%w: quantity for product %s must be between 1 and %d",
				ErrValidation, item.ProductID, maxQuantityPerLine)
		}
	}
	return nil
}
