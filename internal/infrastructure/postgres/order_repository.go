package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-cacc/internal/domain"
	"github.com/jhoicas/inventario-cacc/internal/domain/entity"
	"github.com/jhoicas/inventario-cacc/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

const orderColumns = `id, user_id, username, created_at, total, status, delivery_address, notes`

// OrderRepo pedidos y líneas sobre PostgreSQL (usable con pool o tx).
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// Create persiste la cabecera del pedido (sin líneas).
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		o.ID, o.UserID, o.Username, o.CreatedAt, o.Total, string(o.Status), o.DeliveryAddress, o.Notes,
	)
	return storageErr("insert order", err)
}

// CreateLine persiste una línea del pedido.
func (r *OrderRepo) CreateLine(ctx context.Context, l *entity.OrderLine) error {
	query := `
		INSERT INTO order_lines (id, order_id, product_id, product_name, quantity, unit_price, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, l.ID, l.OrderID, l.ProductID, l.ProductName, l.Quantity, l.UnitPrice, l.Subtotal)
	return storageErr("insert order line", err)
}

// GetByID devuelve el pedido con sus líneas, o (nil, nil) si no existe.
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	o, err := scanOrder(r.q.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.Storage("get order", err)
	}
	byOrder, err := r.lines(ctx, `WHERE order_id = $1`, id)
	if err != nil {
		return nil, err
	}
	o.Lines = byOrder[o.ID]
	return o, nil
}

func (r *OrderRepo) ListByUser(ctx context.Context, userID string) ([]*entity.Order, error) {
	return r.list(ctx, `WHERE user_id = $1`, userID)
}

func (r *OrderRepo) List(ctx context.Context) ([]*entity.Order, error) {
	return r.list(ctx, ``)
}

func (r *OrderRepo) UpdateStatus(ctx context.Context, id string, status entity.OrderStatus) error {
	if !status.Valid() {
		return domain.ErrInvalidStatus
	}
	cmd, err := r.q.Exec(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return domain.Storage("update order status", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CountByStatus cuenta pedidos por estado; userID vacío = todos.
func (r *OrderRepo) CountByStatus(ctx context.Context, userID string) (map[entity.OrderStatus]int, error) {
	rows, err := r.q.Query(ctx,
		`SELECT status, COUNT(*) FROM orders WHERE ($1 = '' OR user_id::text = $1) GROUP BY status`, userID)
	if err != nil {
		return nil, domain.Storage("count orders", err)
	}
	defer rows.Close()
	out := make(map[entity.OrderStatus]int)
	for rows.Next() {
		var (
			st string
			n  int
		)
		if err := rows.Scan(&st, &n); err != nil {
			return nil, domain.Storage("scan order count", err)
		}
		out[entity.OrderStatus(st)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Storage("count orders", err)
	}
	return out, nil
}

// list pedidos más recientes primero, con sus líneas cargadas en una segunda consulta.
func (r *OrderRepo) list(ctx context.Context, where string, args ...any) ([]*entity.Order, error) {
	rows, err := r.q.Query(ctx, `SELECT `+orderColumns+` FROM orders `+where+` ORDER BY created_at DESC, id DESC`, args...)
	if err != nil {
		return nil, domain.Storage("list orders", err)
	}
	var out []*entity.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, domain.Storage("scan order", err)
		}
		out = append(out, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, domain.Storage("list orders", err)
	}
	if len(out) == 0 {
		return out, nil
	}
	ids := make([]string, len(out))
	for i, o := range out {
		ids[i] = o.ID
	}
	byOrder, err := r.lines(ctx, `WHERE order_id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	for _, o := range out {
		o.Lines = byOrder[o.ID]
	}
	return out, nil
}

func (r *OrderRepo) lines(ctx context.Context, where string, arg any) (map[string][]*entity.OrderLine, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, order_id, product_id, product_name, quantity, unit_price, subtotal FROM order_lines `+where+` ORDER BY product_name, id`, arg)
	if err != nil {
		return nil, domain.Storage("list order lines", err)
	}
	defer rows.Close()
	out := make(map[string][]*entity.OrderLine)
	for rows.Next() {
		var l entity.OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.ProductName, &l.Quantity, &l.UnitPrice, &l.Subtotal); err != nil {
			return nil, domain.Storage("scan order line", err)
		}
		out[l.OrderID] = append(out[l.OrderID], &l)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Storage("list order lines", err)
	}
	return out, nil
}

func scanOrder(row pgx.Row) (*entity.Order, error) {
	var (
		o      entity.Order
		status string
	)
	err := row.Scan(&o.ID, &o.UserID, &o.Username, &o.CreatedAt, &o.Total, &status, &o.DeliveryAddress, &o.Notes)
	if err != nil {
		return nil, err
	}
	o.Status = entity.OrderStatus(status)
	return &o, nil
}
