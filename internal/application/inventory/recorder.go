package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/inventario-cacc/internal/domain"
	"github.com/jhoicas/inventario-cacc/internal/domain/entity"
	"github.com/jhoicas/inventario-cacc/internal/domain/repository"
)

// RecordInput datos de un movimiento a registrar.
type RecordInput struct {
	ProductID   string
	Type        entity.MovementType
	Reason      entity.MovementReason
	Quantity    int
	UserID      *string
	CustomerID  *string
	OrderID     *string
	Description string
}

// MovementRecorder escribe y revierte entradas del libro de movimientos.
// Record no toca el stock: el llamador ajusta el ledger en la misma transacción.
type MovementRecorder struct {
	ledger *StockLedger
	now    func() time.Time
}

// NewMovementRecorder construye el recorder sobre un ledger.
func NewMovementRecorder(ledger *StockLedger) *MovementRecorder {
	return &MovementRecorder{ledger: ledger, now: time.Now}
}

// Record inserta un movimiento. Quantity > 0 y Type válido.
func (r *MovementRecorder) Record(ctx context.Context, movRepo repository.InventoryMovementRepository, in RecordInput) (*entity.InventoryMovement, error) {
	if in.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if !in.Type.Valid() || in.ProductID == "" {
		return nil, domain.ErrInvalidInput
	}
	reason := in.Reason
	if reason == "" {
		reason = entity.ReasonManual
	}
	mov := &entity.InventoryMovement{
		ID:          uuid.New().String(),
		ProductID:   in.ProductID,
		Type:        in.Type,
		Reason:      reason,
		Quantity:    in.Quantity,
		CreatedAt:   r.now(),
		UserID:      in.UserID,
		CustomerID:  in.CustomerID,
		OrderID:     in.OrderID,
		Description: in.Description,
	}
	if err := movRepo.Create(ctx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// Reverse deshace el efecto de un movimiento sobre el stock y lo elimina del libro.
// Devuelve el movimiento eliminado y el stock resultante.
func (r *MovementRecorder) Reverse(
	ctx context.Context,
	movRepo repository.InventoryMovementRepository,
	productRepo repository.ProductRepository,
	movementID string,
) (*entity.InventoryMovement, int, error) {
	mov, err := movRepo.GetByID(ctx, movementID)
	if err != nil {
		return nil, 0, err
	}
	if mov == nil {
		return nil, 0, domain.ErrNotFound
	}
	stock, err := r.ledger.Adjust(ctx, productRepo, mov.ProductID, -mov.Delta(), entity.ReasonReversal)
	if err != nil {
		return nil, 0, err
	}
	if err := movRepo.Delete(ctx, mov.ID); err != nil {
		return nil, 0, err
	}
	return mov, stock, nil
}
