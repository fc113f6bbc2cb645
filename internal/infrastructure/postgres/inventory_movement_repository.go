package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-cacc/internal/domain"
	"github.com/jhoicas/inventario-cacc/internal/domain/entity"
	"github.com/jhoicas/inventario-cacc/internal/domain/repository"
)

var _ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)

const movementColumns = `id, product_id, type, reason, quantity, created_at, user_id, customer_id, order_id, description`

// InventoryMovementRepo implementación sobre PostgreSQL (usable con pool o tx).
type InventoryMovementRepo struct {
	q Querier
}

// NewInventoryMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryMovementRepository(q Querier) *InventoryMovementRepo {
	return &InventoryMovementRepo{q: q}
}

// Create persiste un movimiento de inventario.
func (r *InventoryMovementRepo) Create(ctx context.Context, m *entity.InventoryMovement) error {
	query := `
		INSERT INTO inventory_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.ProductID, string(m.Type), string(m.Reason), m.Quantity, m.CreatedAt,
		m.UserID, m.CustomerID, m.OrderID, m.Description,
	)
	if err != nil {
		return domain.Storage("create inventory movement", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID.
func (r *InventoryMovementRepo) GetByID(ctx context.Context, id string) (*entity.InventoryMovement, error) {
	m, err := scanMovement(r.q.QueryRow(ctx, `SELECT `+movementColumns+` FROM inventory_movements WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.Storage("get movement", err)
	}
	return m, nil
}

func (r *InventoryMovementRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM inventory_movements WHERE id = $1`, id)
	if err != nil {
		return domain.Storage("delete movement", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *InventoryMovementRepo) List(ctx context.Context) ([]*entity.InventoryMovement, error) {
	return r.list(ctx, `SELECT `+movementColumns+` FROM inventory_movements ORDER BY created_at DESC, id DESC`)
}

func (r *InventoryMovementRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.InventoryMovement, error) {
	return r.list(ctx, `SELECT `+movementColumns+` FROM inventory_movements WHERE product_id = $1 ORDER BY created_at DESC, id DESC`, productID)
}

func (r *InventoryMovementRepo) ListByOrder(ctx context.Context, orderID string) ([]*entity.InventoryMovement, error) {
	return r.list(ctx, `SELECT `+movementColumns+` FROM inventory_movements WHERE order_id = $1 ORDER BY created_at DESC, id DESC`, orderID)
}

// Totals Σ ENTRADA y Σ SALIDA de un producto.
func (r *InventoryMovementRepo) Totals(ctx context.Context, productID string) (entradas, salidas int, err error) {
	query := `
		SELECT
			COALESCE(SUM(quantity) FILTER (WHERE type = 'ENTRADA'), 0),
			COALESCE(SUM(quantity) FILTER (WHERE type = 'SALIDA'), 0)
		FROM inventory_movements WHERE product_id = $1`
	if err := r.q.QueryRow(ctx, query, productID).Scan(&entradas, &salidas); err != nil {
		return 0, 0, domain.Storage("movement totals", err)
	}
	return entradas, salidas, nil
}

// Stats cuenta entradas, salidas y movimientos desde dayStart.
func (r *InventoryMovementRepo) Stats(ctx context.Context, dayStart time.Time) (entity.MovementStats, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE type = 'ENTRADA'),
			COUNT(*) FILTER (WHERE type = 'SALIDA'),
			COUNT(*) FILTER (WHERE created_at >= $1)
		FROM inventory_movements`
	var s entity.MovementStats
	if err := r.q.QueryRow(ctx, query, dayStart).Scan(&s.Entradas, &s.Salidas, &s.Today); err != nil {
		return s, domain.Storage("movement stats", err)
	}
	return s, nil
}

func (r *InventoryMovementRepo) list(ctx context.Context, query string, args ...any) ([]*entity.InventoryMovement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, domain.Storage("list movements", err)
	}
	defer rows.Close()
	var out []*entity.InventoryMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, domain.Storage("scan movement", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Storage("list movements", err)
	}
	return out, nil
}

func scanMovement(row pgx.Row) (*entity.InventoryMovement, error) {
	var (
		m           entity.InventoryMovement
		typ, reason string
	)
	err := row.Scan(&m.ID, &m.ProductID, &typ, &reason, &m.Quantity, &m.CreatedAt, &m.UserID, &m.CustomerID, &m.OrderID, &m.Description)
	if err != nil {
		return nil, err
	}
	m.Type = entity.MovementType(typ)
	m.Reason = entity.MovementReason(reason)
	return &m, nil
}
