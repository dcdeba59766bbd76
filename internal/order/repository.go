package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mynature/storefront/internal/catalog"
)

type Repository interface {
	CreateHeader(ctx context.Context, order *Order) (uuid.UUID, error)
	InsertItems(ctx context.Context, items []OrderItem) error
	FinalizeTotal(ctx context.Context, orderID uuid.UUID, total float64) error
	GetByID(ctx context.Context, orderID uuid.UUID) (*Order, error)
	List(ctx context.Context) ([]Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, newStatus Status) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

// CreateHeader inserts the order row on its own, outside any transaction.
// Later sequence steps that fail leave this row in place.
func (r *postgresRepository) CreateHeader(ctx context.Context, orderInput *Order) (uuid.UUID, error) {
	orderID, err := uuid.NewV4()
	if err != nil {
		return uuid.Nil, fmt.Errorf("repository: failed to generate order ID: %w", err)
	}

	now := time.Now().UTC()
	orderInput.ID = orderID
	orderInput.CreatedAt = now
	orderInput.UpdatedAt = now

	query := `
		INSERT INTO orders (id, customer_name, customer_phone, customer_address, city,
			notes, status, total_amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = r.db.Exec(ctx, query,
		orderInput.ID, orderInput.CustomerName, orderInput.CustomerPhone,
		orderInput.CustomerAddress, orderInput.City, orderInput.Notes,
		string(orderInput.Status), orderInput.TotalAmount,
		orderInput.CreatedAt, orderInput.UpdatedAt,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("repository: failed to insert order: %w", err)
	}
	return orderID, nil
}

func (r *postgresRepository) InsertItems(ctx context.Context, items []OrderItem) error {
	batch := &pgx.Batch{}
	query := `
		INSERT INTO order_items (id, order_id, product_id, quantity, price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	now := time.Now().UTC()
	for i := range items {
		item := &items[i]
		itemID, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate order item ID: %w", err)
		}
		item.ID = itemID
		item.CreatedAt = now
		batch.Queue(query, item.ID, item.OrderID, item.ProductID, item.Quantity, item.Price, item.CreatedAt)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	for i := range items {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("repository: failed to insert order item for order %s (line %d): %w",
				items[i].OrderID, i, err)
		}
	}
	return nil
}

func (r *postgresRepository) FinalizeTotal(ctx context.Context, orderID uuid.UUID, total float64) error {
	query := `UPDATE orders SET total_amount = $1, updated_at = $2 WHERE id = $3`
	cmdTag, err := r.db.Exec(ctx, query, total, time.Now().UTC(), orderID)
	if err != nil {
		return fmt.Errorf("repository: failed to finalize order total %s: %w", orderID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

const orderColumns = `id, customer_name, customer_phone, customer_address, city,
	notes, status, total_amount, created_at, updated_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(
		&o.ID, &o.CustomerName, &o.CustomerPhone, &o.CustomerAddress, &o.City,
		&o.Notes, &o.Status, &o.TotalAmount, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

const itemColumns = `
	i.id, i.order_id, i.product_id, i.quantity, i.price, i.created_at,
	p.id, p.name, p.name_ar, p.description, p.description_ar, p.price,
	p.category_id, p.image_urls, p.stock_quantity, p.is_active, p.created_at, p.updated_at`

func scanItem(rows pgx.Rows) (*OrderItem, error) {
	var item OrderItem
	var product catalog.Product
	err := rows.Scan(
		&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Price, &item.CreatedAt,
		&product.ID, &product.Name, &product.NameAr, &product.Description, &product.DescriptionAr,
		&product.Price, &product.CategoryID, &product.ImageURLs, &product.StockQuantity,
		&product.IsActive, &product.CreatedAt, &product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	item.Product = &product
	return &item, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	order, err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("repository: failed to select order by id %s: %w", orderID, err)
	}

	query := `
		SELECT ` + itemColumns + `
		FROM order_items i
		JOIN products p ON p.id = i.product_id
		WHERE i.order_id = $1
		ORDER BY i.created_at ASC
	`
	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query order items for order %s: %w", orderID, err)
	}
	defer rows.Close()

	items := make([]OrderItem, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order item for order %s: %w", orderID, err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating order items for order %s: %w", orderID, err)
	}

	order.Items = items
	return order, nil
}

func (r *postgresRepository) List(ctx context.Context) ([]Order, error) {
	orderRows, err := r.db.Query(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query orders: %w", err)
	}
	defer orderRows.Close()

	ordersMap := make(map[uuid.UUID]*Order)
	var orderIDs []uuid.UUID

	for orderRows.Next() {
		order, err := scanOrder(orderRows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order: %w", err)
		}
		order.Items = make([]OrderItem, 0)
		ordersMap[order.ID] = order
		orderIDs = append(orderIDs, order.ID)
	}
	if err := orderRows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating orders: %w", err)
	}

	if len(orderIDs) == 0 {
		return []Order{}, nil
	}

	query := `
		SELECT ` + itemColumns + `
		FROM order_items i
		JOIN products p ON p.id = i.product_id
		WHERE i.order_id = ANY($1)
		ORDER BY i.created_at ASC
	`
	itemRows, err := r.db.Query(ctx, query, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query order items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		item, err := scanItem(itemRows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order item: %w", err)
		}
		if order, ok := ordersMap[item.OrderID]; ok {
			order.Items = append(order.Items, *item)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating order items: %w", err)
	}

	orders := make([]Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		orders = append(orders, *ordersMap[id])
	}
	return orders, nil
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, orderID uuid.UUID, newStatus Status) error {
	query := `UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`
	cmdTag, err := r.db.Exec(ctx, query, string(newStatus), time.Now().UTC(), orderID)
	if err != nil {
		return fmt.Errorf("repository: failed to update order status %s: %w", orderID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}
