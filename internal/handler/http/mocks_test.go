package http

import (
	"context"
	"time"

	"github.com/gofrs/uuid"

	"github.com/mynature/storefront/internal/admin"
	"github.com/mynature/storefront/internal/auth"
	"github.com/mynature/storefront/internal/catalog"
	"github.com/mynature/storefront/internal/order"
)

type mockOrderService struct {
	submitFunc            func(ctx context.Context, req order.SubmitRequest) (*order.Order, error)
	listOrdersFunc        func(ctx context.Context) ([]order.Order, error)
	getOrderByIDFunc      func(ctx context.Context, id uuid.UUID) (*order.Order, error)
	updateOrderStatusFunc func(ctx context.Context, orderID uuid.UUID, newStatus order.Status) error
}

func (m *mockOrderService) Submit(ctx context.Context, req order.SubmitRequest) (*order.Order, error) {
	return m.submitFunc(ctx, req)
}

func (m *mockOrderService) ListOrders(ctx context.Context) ([]order.Order, error) {
	return m.listOrdersFunc(ctx)
}

func (m *mockOrderService) GetOrderByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return m.getOrderByIDFunc(ctx, id)
}

func (m *mockOrderService) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, newStatus order.Status) error {
	return m.updateOrderStatusFunc(ctx, orderID, newStatus)
}

type mockCatalogService struct {
	listProductsFunc           func(ctx context.Context) ([]catalog.Product, error)
	listProductsByCategoryFunc func(ctx context.Context, categoryID uuid.UUID) ([]catalog.Product, error)
	searchProductsFunc         func(ctx context.Context, query string) ([]catalog.Product, error)
	featuredProductsFunc       func(ctx context.Context) ([]catalog.Product, error)
	getProductFunc             func(ctx context.Context, id uuid.UUID) (*catalog.Product, error)
	listCategoriesFunc         func(ctx context.Context) ([]catalog.Category, error)
	getCategoryFunc            func(ctx context.Context, id uuid.UUID) (*catalog.Category, error)
	listAllProductsFunc        func(ctx context.Context) ([]catalog.Product, error)
	createProductFunc          func(ctx context.Context, cmd catalog.CreateProductCommand) (*catalog.Product, error)
	updateProductFunc          func(ctx context.Context, id uuid.UUID, cmd catalog.UpdateProductCommand) (*catalog.Product, error)
	deleteProductFunc          func(ctx context.Context, id uuid.UUID) error
	setProductActiveFunc       func(ctx context.Context, id uuid.UUID, active bool) error
}

func (m *mockCatalogService) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	return m.listProductsFunc(ctx)
}

func (m *mockCatalogService) ListProductsByCategory(ctx context.Context, categoryID uuid.UUID) ([]catalog.Product, error) {
	return m.listProductsByCategoryFunc(ctx, categoryID)
}

func (m *mockCatalogService) SearchProducts(ctx context.Context, query string) ([]catalog.Product, error) {
	return m.searchProductsFunc(ctx, query)
}

func (m *mockCatalogService) FeaturedProducts(ctx context.Context) ([]catalog.Product, error) {
	return m.featuredProductsFunc(ctx)
}

func (m *mockCatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	return m.getProductFunc(ctx, id)
}

func (m *mockCatalogService) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	return m.listCategoriesFunc(ctx)
}

func (m *mockCatalogService) GetCategory(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	return m.getCategoryFunc(ctx, id)
}

func (m *mockCatalogService) ListAllProducts(ctx context.Context) ([]catalog.Product, error) {
	return m.listAllProductsFunc(ctx)
}

func (m *mockCatalogService) CreateProduct(ctx context.Context, cmd catalog.CreateProductCommand) (*catalog.Product, error) {
	return m.createProductFunc(ctx, cmd)
}

func (m *mockCatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, cmd catalog.UpdateProductCommand) (*catalog.Product, error) {
	return m.updateProductFunc(ctx, id, cmd)
}

func (m *mockCatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return m.deleteProductFunc(ctx, id)
}

func (m *mockCatalogService) SetProductActive(ctx context.Context, id uuid.UUID, active bool) error {
	return m.setProductActiveFunc(ctx, id, active)
}

type mockAuthService struct {
	signInFunc           func(ctx context.Context, email, password string) (*auth.Session, error)
	signOutFunc          func(ctx context.Context, token uuid.UUID) error
	sessionFromTokenFunc func(ctx context.Context, token uuid.UUID) (*auth.Session, error)

	signedOut []uuid.UUID
}

func (m *mockAuthService) SignIn(ctx context.Context, email, password string) (*auth.Session, error) {
	return m.signInFunc(ctx, email, password)
}

func (m *mockAuthService) SignOut(ctx context.Context, token uuid.UUID) error {
	m.signedOut = append(m.signedOut, token)
	if m.signOutFunc != nil {
		return m.signOutFunc(ctx, token)
	}
	return nil
}

func (m *mockAuthService) SessionFromToken(ctx context.Context, token uuid.UUID) (*auth.Session, error) {
	return m.sessionFromTokenFunc(ctx, token)
}

func (m *mockAuthService) Subscribe() <-chan auth.Event {
	return make(chan auth.Event)
}

type mockAllowlist struct {
	containsFunc func(ctx context.Context, userID uuid.UUID) (bool, error)
	getFunc      func(ctx context.Context, userID uuid.UUID) (*admin.AdminUser, error)
}

func (m *mockAllowlist) Contains(ctx context.Context, userID uuid.UUID) (bool, error) {
	return m.containsFunc(ctx, userID)
}

func (m *mockAllowlist) Get(ctx context.Context, userID uuid.UUID) (*admin.AdminUser, error) {
	return m.getFunc(ctx, userID)
}

func activeSession() *auth.Session {
	return &auth.Session{
		Token:     uuid.Must(uuid.NewV4()),
		UserID:    uuid.Must(uuid.NewV4()),
		CreatedAt: time.Now().UTC(),
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}
}
