package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cadre-be/internal/db"
	"cadre-be/internal/logger"
	"cadre-be/internal/utils"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	// NextID allocates the next CMxxxxx order id.
	NextID(ctx context.Context) (string, error)

	Create(ctx context.Context, o *Order) error
	Get(ctx context.Context, id string) (*Order, error)

	// GetForUpdate loads the order with its row lock held until the
	// surrounding transaction ends.
	GetForUpdate(ctx context.Context, id string) (*Order, error)

	List(ctx context.Context, filter ListFilter) ([]*Order, error)

	// Update writes the order header: status and derived totals.
	Update(ctx context.Context, o *Order) error
	UpdateItem(ctx context.Context, orderID string, item *OrderItem) error
	DeleteItem(ctx context.Context, orderID, itemID string) error
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db db.DBTX
}

func NewRepository(conn db.DBTX) Repository {
	return &repository{db: conn}
}

const orderColumns = `
	o.id, o.status,
	COALESCE(o.customer_user_id, ''), o.customer_name, o.customer_email,
	o.customer_phone, o.customer_address, o.customer_city,
	o.shipment_fees, o.total_price, o.cadre_profit,
	o.created_at, o.updated_at
`

const itemColumns = `
	i.id, i.order_id, i.listing_id, i.name, i.description, i.price, i.item_type,
	i.seller_id, i.seller_name, i.seller_email, i.seller_phone, i.seller_address, i.seller_city,
	i.selected_size, i.dimensions, i.width, i.height, i.depth,
	i.quantity, i.profit,
	i.item_received, i.item_verified, i.item_packed, i.ready_for_shipment
`

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(row scanner) (*Order, error) {
	var (
		o      Order
		status string
	)
	err := row.Scan(
		&o.ID,
		&status,
		&o.Customer.UserID,
		&o.Customer.Name,
		&o.Customer.Email,
		&o.Customer.Phone,
		&o.Customer.Address,
		&o.Customer.City,
		&o.ShipmentFees,
		&o.TotalPrice,
		&o.CadreProfit,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.Status = Status(status)
	o.Items = []*OrderItem{}
	return &o, nil
}

func scanItem(row scanner) (string, *OrderItem, error) {
	var (
		orderID string
		item    OrderItem
	)
	err := row.Scan(
		&item.ID,
		&orderID,
		&item.ListingID,
		&item.Name,
		&item.Description,
		&item.Price,
		&item.Type,
		&item.SellerInfo.ID,
		&item.SellerInfo.Name,
		&item.SellerInfo.Email,
		&item.SellerInfo.Phone,
		&item.SellerInfo.Address,
		&item.SellerInfo.City,
		&item.SelectedSize,
		&item.Dimensions,
		&item.Width,
		&item.Height,
		&item.Depth,
		&item.Quantity,
		&item.Profit,
		&item.StatusChecks.ItemReceived,
		&item.StatusChecks.ItemVerified,
		&item.StatusChecks.ItemPacked,
		&item.StatusChecks.ReadyForShipment,
	)
	if err != nil {
		return "", nil, err
	}
	return orderID, &item, nil
}

func (r *repository) NextID(ctx context.Context) (string, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT nextval('order_number_seq')`).Scan(&n); err != nil {
		return "", fmt.Errorf("next order number: %w", err)
	}
	return utils.FormatOrderID(n), nil
}

func (r *repository) Create(ctx context.Context, o *Order) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Create"),
		zap.String("order_id", o.ID),
	)

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO orders (
			id, status, customer_user_id,
			customer_name, customer_email, customer_phone, customer_address, customer_city,
			shipment_fees, total_price, cadre_profit
		) VALUES ($1,$2,NULLIF($3,''),$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING created_at, updated_at
	`,
		o.ID,
		string(o.Status),
		o.Customer.UserID,
		o.Customer.Name,
		o.Customer.Email,
		o.Customer.Phone,
		o.Customer.Address,
		o.Customer.City,
		o.ShipmentFees,
		o.TotalPrice,
		o.CadreProfit,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		log.Error("failed to insert order", zap.Error(err))
		return fmt.Errorf("insert order: %w", err)
	}

	for pos, item := range o.Items {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO order_items (
				id, order_id, position, listing_id, name, description, price, item_type,
				seller_id, seller_name, seller_email, seller_phone, seller_address, seller_city,
				selected_size, dimensions, width, height, depth,
				quantity, profit,
				item_received, item_verified, item_packed, ready_for_shipment
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25)
		`,
			item.ID,
			o.ID,
			pos,
			item.ListingID,
			item.Name,
			item.Description,
			item.Price,
			item.Type,
			item.SellerInfo.ID,
			item.SellerInfo.Name,
			item.SellerInfo.Email,
			item.SellerInfo.Phone,
			item.SellerInfo.Address,
			item.SellerInfo.City,
			item.SelectedSize,
			item.Dimensions,
			item.Width,
			item.Height,
			item.Depth,
			item.Quantity,
			item.Profit,
			item.StatusChecks.ItemReceived,
			item.StatusChecks.ItemVerified,
			item.StatusChecks.ItemPacked,
			item.StatusChecks.ReadyForShipment,
		)
		if err != nil {
			log.Error("failed to insert order item",
				zap.String("listing_id", item.ListingID),
				zap.Error(err),
			)
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	log.Debug("order inserted", zap.Int("items", len(o.Items)))
	return nil
}

func (r *repository) Get(ctx context.Context, id string) (*Order, error) {
	return r.get(ctx, id, "")
}

func (r *repository) GetForUpdate(ctx context.Context, id string) (*Order, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *repository) get(ctx context.Context, id, lock string) (*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders o WHERE o.id = $1` + lock

	o, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select order %s: %w", id, err)
	}

	if err := r.attachItems(ctx, []*Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]*Order, error) {
	filter = filter.Normalize()

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "List"),
		zap.Int("limit", filter.Limit),
		zap.Int("page", filter.Page),
	)

	query := `SELECT ` + orderColumns + ` FROM orders o WHERE 1=1`
	args := []any{}
	argIndex := 1

	if filter.CustomerUserID != "" {
		query += fmt.Sprintf(" AND o.customer_user_id = $%d", argIndex)
		args = append(args, filter.CustomerUserID)
		argIndex++
	}

	if filter.Status != nil {
		query += fmt.Sprintf(" AND o.status = $%d", argIndex)
		args = append(args, string(*filter.Status))
		argIndex++
	}

	if filter.Search != "" {
		query += fmt.Sprintf(
			" AND (o.id ILIKE $%d OR o.customer_name ILIKE $%d OR o.customer_email ILIKE $%d)",
			argIndex, argIndex, argIndex,
		)
		args = append(args, "%"+filter.Search+"%")
		argIndex++
	}

	query += " ORDER BY o.created_at DESC, o.id DESC"
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, filter.Limit, filter.Offset())

	log.Debug("executing list orders query", zap.String("query", query), zap.Any("args", args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query orders", zap.Error(err))
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := []*Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// attachItems loads the items of all given orders in one query, in the
// order they were placed.
func (r *repository) attachItems(ctx context.Context, orders []*Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]string, 0, len(orders))
	byID := make(map[string]*Order, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
		byID[o.ID] = o
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM order_items i
		WHERE i.order_id = ANY($1)
		ORDER BY i.order_id, i.position`,
		pq.Array(ids),
	)
	if err != nil {
		return fmt.Errorf("select order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		orderID, item, err := scanItem(rows)
		if err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		if o, ok := byID[orderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	return rows.Err()
}

func (r *repository) Update(ctx context.Context, o *Order) error {
	err := r.db.QueryRowContext(ctx, `
		UPDATE orders
		SET status = $1, total_price = $2, cadre_profit = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at
	`, string(o.Status), o.TotalPrice, o.CadreProfit, o.ID).Scan(&o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrOrderNotFound
	}
	if err != nil {
		return fmt.Errorf("update order %s: %w", o.ID, err)
	}
	return nil
}

func (r *repository) UpdateItem(ctx context.Context, orderID string, item *OrderItem) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE order_items
		SET quantity = $1, profit = $2,
			item_received = $3, item_verified = $4, item_packed = $5, ready_for_shipment = $6
		WHERE order_id = $7 AND id = $8
	`,
		item.Quantity,
		item.Profit,
		item.StatusChecks.ItemReceived,
		item.StatusChecks.ItemVerified,
		item.StatusChecks.ItemPacked,
		item.StatusChecks.ReadyForShipment,
		orderID,
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("update order item %s: %w", item.ID, err)
	}
	return expectOne(res, ErrItemNotFound)
}

func (r *repository) DeleteItem(ctx context.Context, orderID, itemID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM order_items WHERE order_id = $1 AND id = $2`, orderID, itemID)
	if err != nil {
		return fmt.Errorf("delete order item %s: %w", itemID, err)
	}
	return expectOne(res, ErrItemNotFound)
}

func (r *repository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = $1`, id); err != nil {
		return fmt.Errorf("delete items of order %s: %w", id, err)
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order %s: %w", id, err)
	}
	return expectOne(res, ErrOrderNotFound)
}

func expectOne(res sql.Result, notFound error) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return notFound
	}
	return nil
}
