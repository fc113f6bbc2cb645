package order

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jhoicas/inventario-cacc/internal/application/ports"
	"github.com/jhoicas/inventario-cacc/internal/domain"
	"github.com/jhoicas/inventario-cacc/internal/domain/entity"
	"github.com/jhoicas/inventario-cacc/internal/domain/repository"
)

// StatusChange registro antes/después de un cambio de estado.
type StatusChange struct {
	OrderID string             `json:"order_id"`
	From    entity.OrderStatus `json:"from"`
	To      entity.OrderStatus `json:"to"`
}

// Lifecycle cambia el estado de un pedido. Cualquier estado del conjunto puede pasar a
// cualquier otro; no hay efecto sobre el stock.
type Lifecycle struct {
	txRunner  TxRunner
	publisher ports.EventPublisher
	now       func() time.Time
}

// NewLifecycle construye el servicio. publisher puede ser nil.
func NewLifecycle(txRunner TxRunner, publisher ports.EventPublisher) *Lifecycle {
	if publisher == nil {
		publisher = ports.NopPublisher{}
	}
	return &Lifecycle{txRunner: txRunner, publisher: publisher, now: time.Now}
}

// SetStatus valida el estado contra el conjunto cerrado y lo aplica.
func (l *Lifecycle) SetStatus(ctx context.Context, orderID, status string) (*entity.Order, error) {
	st, ok := entity.ParseOrderStatus(status)
	if !ok {
		return nil, domain.ErrInvalidStatus
	}
	var (
		updated *entity.Order
		change  StatusChange
	)
	err := l.txRunner.RunOrder(ctx, func(
		_ repository.InventoryMovementRepository,
		_ repository.ProductRepository,
		orderRepo repository.OrderRepository,
	) error {
		o, err := orderRepo.GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return domain.ErrNotFound
		}
		change = StatusChange{OrderID: o.ID, From: o.Status, To: st}
		if err := orderRepo.UpdateStatus(ctx, o.ID, st); err != nil {
			return err
		}
		o.Status = st
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("order_id", change.OrderID).
		Str("from", string(change.From)).
		Str("to", string(change.To)).
		Msg("estado de pedido actualizado")
	ev := ports.Event{Type: ports.EventOrderStatusChanged, Key: change.OrderID, OccurredAt: l.now(), Payload: change}
	if perr := l.publisher.Publish(ctx, ev); perr != nil {
		log.Error().Err(perr).Str("order_id", change.OrderID).Msg("no se pudo publicar evento")
	}
	return updated, nil
}
