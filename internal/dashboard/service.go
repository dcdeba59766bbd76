package dashboard

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mynature/storefront/internal/catalog"
	"github.com/mynature/storefront/internal/order"
)

const (
	revenueDays     = 7
	topProductCount = 5
)

type OrderSource interface {
	ListOrders(ctx context.Context) ([]order.Order, error)
}

type ProductSource interface {
	ListAllProducts(ctx context.Context) ([]catalog.Product, error)
}

type DayRevenue struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
}

type Overview struct {
	TotalRevenue  float64           `json:"total_revenue"`
	OrderCount    int               `json:"order_count"`
	ProductCount  int               `json:"product_count"`
	PendingOrders int               `json:"pending_orders"`
	RevenueByDay  []DayRevenue      `json:"revenue_by_day"`
	TopProducts   []catalog.Product `json:"top_products"`
}

type Service struct {
	orders   OrderSource
	products ProductSource
	now      func() time.Time
}

func NewService(orders OrderSource, products ProductSource) *Service {
	return &Service{orders: orders, products: products, now: time.Now}
}

// Overview aggregates the back-office dashboard numbers: revenue and order
// totals, pending count, revenue per day for the trailing week, and the five
// best-stocked products.
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	orders, err := s.orders.ListOrders(ctx)
	if err != nil {
		log.Error().Err(err).Msg("dashboard: failed to load orders")
		return nil, fmt.Errorf("dashboard: failed to load orders: %w", err)
	}

	products, err := s.products.ListAllProducts(ctx)
	if err != nil {
		log.Error().Err(err).Msg("dashboard: failed to load products")
		return nil, fmt.Errorf("dashboard: failed to load products: %w", err)
	}

	overview := &Overview{
		OrderCount:   len(orders),
		ProductCount: len(products),
		RevenueByDay: s.revenueByDay(orders),
		TopProducts:  topByStock(products),
	}

	for _, o := range orders {
		overview.TotalRevenue += o.TotalAmount
		if o.Status == order.StatusPending {
			overview.PendingOrders++
		}
	}

	return overview, nil
}

// revenueByDay buckets order totals by calendar day for the trailing
// revenueDays days, oldest first, with empty days zero-filled.
func (s *Service) revenueByDay(orders []order.Order) []DayRevenue {
	today := s.now().UTC().Truncate(24 * time.Hour)

	buckets := make(map[string]float64, revenueDays)
	days := make([]DayRevenue, 0, revenueDays)
	for i := revenueDays - 1; i >= 0; i-- {
		date := today.AddDate(0, 0, -i).Format("2006-01-02")
		buckets[date] = 0
		days = append(days, DayRevenue{Date: date})
	}

	for _, o := range orders {
		date := o.CreatedAt.UTC().Format("2006-01-02")
		if _, ok := buckets[date]; ok {
			buckets[date] += o.TotalAmount
		}
	}

	for i := range days {
		days[i].Revenue = buckets[days[i].Date]
	}
	return days
}

func topByStock(products []catalog.Product) []catalog.Product {
	sorted := make([]catalog.Product, len(products))
	copy(sorted, products)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StockQuantity > sorted[j].StockQuantity
	})
	if len(sorted) > topProductCount {
		sorted = sorted[:topProductCount]
	}
	return sorted
}
