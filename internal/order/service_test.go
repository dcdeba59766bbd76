package order_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mynature/storefront/internal/catalog"
	"github.com/mynature/storefront/internal/order"
)

type mockRepository struct {
	createHeaderFunc  func(ctx context.Context, o *order.Order) (uuid.UUID, error)
	insertItemsFunc   func(ctx context.Context, items []order.OrderItem) error
	finalizeTotalFunc func(ctx context.Context, orderID uuid.UUID, total float64) error
	getByIDFunc       func(ctx context.Context, orderID uuid.UUID) (*order.Order, error)
	listFunc          func(ctx context.Context) ([]order.Order, error)
	updateStatusFunc  func(ctx context.Context, orderID uuid.UUID, newStatus order.Status) error
}

func (m *mockRepository) CreateHeader(ctx context.Context, o *order.Order) (uuid.UUID, error) {
	return m.createHeaderFunc(ctx, o)
}

func (m *mockRepository) InsertItems(ctx context.Context, items []order.OrderItem) error {
	return m.insertItemsFunc(ctx, items)
}

func (m *mockRepository) FinalizeTotal(ctx context.Context, orderID uuid.UUID, total float64) error {
	return m.finalizeTotalFunc(ctx, orderID, total)
}

func (m *mockRepository) GetByID(ctx context.Context, orderID uuid.UUID) (*order.Order, error) {
	return m.getByIDFunc(ctx, orderID)
}

func (m *mockRepository) List(ctx context.Context) ([]order.Order, error) {
	return m.listFunc(ctx)
}

func (m *mockRepository) UpdateStatus(ctx context.Context, orderID uuid.UUID, newStatus order.Status) error {
	return m.updateStatusFunc(ctx, orderID, newStatus)
}

type mockPriceSource struct {
	prices map[uuid.UUID]float64
}

func (m *mockPriceSource) GetPrice(ctx context.Context, productID uuid.UUID) (float64, error) {
	price, ok := m.prices[productID]
	if !ok {
		return 0, catalog.ErrProductNotFound
	}
	return price, nil
}

// recordingRepository captures the sequence side effects so tests can assert
// what was and was not written.
type recordingRepository struct {
	mockRepository

	createdHeaders []order.Order
	insertedItems  []order.OrderItem
	finalizedTotal *float64
}

func newRecordingRepository() *recordingRepository {
	r := &recordingRepository{}
	r.createHeaderFunc = func(ctx context.Context, o *order.Order) (uuid.UUID, error) {
		id, err := uuid.NewV4()
		if err != nil {
			return uuid.Nil, err
		}
		o.ID = id
		r.createdHeaders = append(r.createdHeaders, *o)
		return id, nil
	}
	r.insertItemsFunc = func(ctx context.Context, items []order.OrderItem) error {
		r.insertedItems = append(r.insertedItems, items...)
		return nil
	}
	r.finalizeTotalFunc = func(ctx context.Context, orderID uuid.UUID, total float64) error {
		r.finalizedTotal = &total
		return nil
	}
	r.getByIDFunc = func(ctx context.Context, orderID uuid.UUID) (*order.Order, error) {
		for _, h := range r.createdHeaders {
			if h.ID == orderID {
				result := h
				if r.finalizedTotal != nil {
					result.TotalAmount = *r.finalizedTotal
				}
				for _, item := range r.insertedItems {
					if item.OrderID == orderID {
						result.Items = append(result.Items, item)
					}
				}
				return &result, nil
			}
		}
		return nil, order.ErrOrderNotFound
	}
	return r
}

func validRequest(items ...order.SubmitItem) order.SubmitRequest {
	return order.SubmitRequest{
		CustomerName:    "Amina Benali",
		CustomerPhone:   "+212600000000",
		CustomerAddress: "12 Rue des Orangers",
		City:            "Casablanca",
		Items:           items,
	}
}

func TestService_Submit_ComputesTotalFromAuthoritativePrices(t *testing.T) {
	productA := uuid.Must(uuid.NewV4())
	productB := uuid.Must(uuid.NewV4())

	repo := newRecordingRepository()
	prices := &mockPriceSource{prices: map[uuid.UUID]float64{
		productA: 100.00,
		productB: 50.00,
	}}

	svc := order.NewService(repo, prices)

	created, err := svc.Submit(context.Background(), validRequest(
		order.SubmitItem{ProductID: productA, Quantity: 2},
		order.SubmitItem{ProductID: productB, Quantity: 1},
	))
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.Equal(t, 250.00, created.TotalAmount)
	require.Len(t, repo.insertedItems, 2)

	byProduct := map[uuid.UUID]order.OrderItem{}
	for _, item := range repo.insertedItems {
		byProduct[item.ProductID] = item
		assert.Equal(t, created.ID, item.OrderID)
	}
	assert.Equal(t, 100.00, byProduct[productA].Price)
	assert.Equal(t, 2, byProduct[productA].Quantity)
	assert.Equal(t, 50.00, byProduct[productB].Price)
	assert.Equal(t, 1, byProduct[productB].Quantity)

	// Header is created PENDING with total 0 before finalization.
	require.Len(t, repo.createdHeaders, 1)
	assert.Equal(t, order.StatusPending, repo.createdHeaders[0].Status)
	assert.Equal(t, 0.0, repo.createdHeaders[0].TotalAmount)

	require.NotNil(t, repo.finalizedTotal)
	assert.Equal(t, 250.00, *repo.finalizedTotal)
}

func TestService_Submit_ValidationRejectsBeforeAnyWrite(t *testing.T) {
	productID := uuid.Must(uuid.NewV4())

	tests := []struct {
		name   string
		mutate func(req *order.SubmitRequest)
	}{
		{"missing_customer_name", func(req *order.SubmitRequest) { req.CustomerName = "" }},
		{"missing_customer_phone", func(req *order.SubmitRequest) { req.CustomerPhone = "" }},
		{"missing_customer_address", func(req *order.SubmitRequest) { req.CustomerAddress = "" }},
		{"missing_city", func(req *order.SubmitRequest) { req.City = "" }},
		{"no_items", func(req *order.SubmitRequest) { req.Items = nil }},
		{"zero_quantity", func(req *order.SubmitRequest) { req.Items[0].Quantity = 0 }},
		{"quantity_above_limit", func(req *order.SubmitRequest) { req.Items[0].Quantity = 11 }},
		{"nil_product_id", func(req *order.SubmitRequest) { req.Items[0].ProductID = uuid.Nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newRecordingRepository()
			prices := &mockPriceSource{prices: map[uuid.UUID]float64{productID: 10}}
			svc := order.NewService(repo, prices)

			req := validRequest(order.SubmitItem{ProductID: productID, Quantity: 1})
			tt.mutate(&req)

			_, err := svc.Submit(context.Background(), req)
			assert.ErrorIs(t, err, order.ErrValidation)
			assert.Empty(t, repo.createdHeaders, "validation failures must not write anything")
			assert.Empty(t, repo.insertedItems)
		})
	}
}

func TestService_Submit_HeaderInsertFailure(t *testing.T) {
	repo := newRecordingRepository()
	repo.createHeaderFunc = func(ctx context.Context, o *order.Order) (uuid.UUID, error) {
		return uuid.Nil, errors.New("constraint violation")
	}
	svc := order.NewService(repo, &mockPriceSource{})

	_, err := svc.Submit(context.Background(), validRequest(
		order.SubmitItem{ProductID: uuid.Must(uuid.NewV4()), Quantity: 1},
	))

	var seqErr *order.SequenceError
	require.ErrorAs(t, err, &seqErr)
	assert.Equal(t, order.StepCreateHeader, seqErr.Step)
	assert.Empty(t, repo.insertedItems)
}

func TestService_Submit_UnknownProductLeavesOrphanedHeader(t *testing.T) {
	known := uuid.Must(uuid.NewV4())
	unknown := uuid.Must(uuid.NewV4())

	repo := newRecordingRepository()
	prices := &mockPriceSource{prices: map[uuid.UUID]float64{known: 25.00}}
	svc := order.NewService(repo, prices)

	_, err := svc.Submit(context.Background(), validRequest(
		order.SubmitItem{ProductID: known, Quantity: 1},
		order.SubmitItem{ProductID: unknown, Quantity: 2},
	))

	var seqErr *order.SequenceError
	require.ErrorAs(t, err, &seqErr)
	assert.Equal(t, order.StepPriceLookup, seqErr.Step)
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)

	// The header stays behind with total 0 and no items: accepted inconsistency.
	require.Len(t, repo.createdHeaders, 1)
	assert.Equal(t, 0.0, repo.createdHeaders[0].TotalAmount)
	assert.Empty(t, repo.insertedItems)
	assert.Nil(t, repo.finalizedTotal)
}

func TestService_Submit_ItemInsertFailure(t *testing.T) {
	productID := uuid.Must(uuid.NewV4())

	repo := newRecordingRepository()
	repo.insertItemsFunc = func(ctx context.Context, items []order.OrderItem) error {
		return errors.New("insert rejected")
	}
	svc := order.NewService(repo, &mockPriceSource{prices: map[uuid.UUID]float64{productID: 10}})

	_, err := svc.Submit(context.Background(), validRequest(
		order.SubmitItem{ProductID: productID, Quantity: 1},
	))

	var seqErr *order.SequenceError
	require.ErrorAs(t, err, &seqErr)
	assert.Equal(t, order.StepInsertItems, seqErr.Step)
	assert.Len(t, repo.createdHeaders, 1)
	assert.Nil(t, repo.finalizedTotal, "finalize must not run after item insert failure")
}

func TestService_Submit_FinalizeFailure(t *testing.T) {
	productID := uuid.Must(uuid.NewV4())

	repo := newRecordingRepository()
	repo.finalizeTotalFunc = func(ctx context.Context, orderID uuid.UUID, total float64) error {
		return errors.New("update rejected")
	}
	svc := order.NewService(repo, &mockPriceSource{prices: map[uuid.UUID]float64{productID: 10}})

	_, err := svc.Submit(context.Background(), validRequest(
		order.SubmitItem{ProductID: productID, Quantity: 1},
	))

	var seqErr *order.SequenceError
	require.ErrorAs(t, err, &seqErr)
	assert.Equal(t, order.StepFinalize, seqErr.Step)
}

func TestService_Submit_ResubmissionCreatesDistinctOrders(t *testing.T) {
	productID := uuid.Must(uuid.NewV4())

	repo := newRecordingRepository()
	svc := order.NewService(repo, &mockPriceSource{prices: map[uuid.UUID]float64{productID: 75.50}})

	req := validRequest(order.SubmitItem{ProductID: productID, Quantity: 3})

	first, err := svc.Submit(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.Submit(context.Background(), req)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Len(t, repo.createdHeaders, 2)
	assert.Len(t, repo.insertedItems, 2)
}

func TestService_UpdateOrderStatus(t *testing.T) {
	orderID := uuid.Must(uuid.NewV4())

	tests := []struct {
		name             string
		newStatus        order.Status
		updateStatusFunc func(ctx context.Context, orderID uuid.UUID, newStatus order.Status) error
		wantErrIs        error
	}{
		{
			name:      "success",
			newStatus: order.StatusConfirmed,
			updateStatusFunc: func(ctx context.Context, orderID uuid.UUID, newStatus order.Status) error {
				return nil
			},
		},
		{
			name:      "unknown_status",
			newStatus: order.Status("ARCHIVED"),
			updateStatusFunc: func(ctx context.Context, orderID uuid.UUID, newStatus order.Status) error {
				return fmt.Errorf("must not be called")
			},
			wantErrIs: order.ErrUnknownStatus,
		},
		{
			name:      "order_not_found",
			newStatus: order.StatusShipped,
			updateStatusFunc: func(ctx context.Context, orderID uuid.UUID, newStatus order.Status) error {
				return order.ErrOrderNotFound
			},
			wantErrIs: order.ErrOrderNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newRecordingRepository()
			repo.updateStatusFunc = tt.updateStatusFunc
			svc := order.NewService(repo, &mockPriceSource{})

			err := svc.UpdateOrderStatus(context.Background(), orderID, tt.newStatus)
			if tt.wantErrIs != nil {
				assert.ErrorIs(t, err, tt.wantErrIs)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStatus_Valid(t *testing.T) {
	for _, status := range []order.Status{
		order.StatusPending, order.StatusConfirmed, order.StatusShipped,
		order.StatusDelivered, order.StatusCancelled,
	} {
		assert.True(t, status.Valid(), status)
	}
	assert.False(t, order.Status("NEW").Valid())
	assert.False(t, order.Status("").Valid())
}
