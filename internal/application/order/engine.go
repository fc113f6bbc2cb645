package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/inventario-cacc/internal/application/inventory"
	"github.com/jhoicas/inventario-cacc/internal/application/ports"
	"github.com/jhoicas/inventario-cacc/internal/domain"
	"github.com/jhoicas/inventario-cacc/internal/domain/entity"
	"github.com/jhoicas/inventario-cacc/internal/domain/repository"
)

const tracerName = "github.com/jhoicas/inventario-cacc/internal/application/order"

// Engine confirma pedidos: convierte un snapshot de carrito en pedido, líneas,
// descuentos de stock y movimientos SALIDA dentro de una única transacción.
type Engine struct {
	txRunner  TxRunner
	carts     Carts
	ledger    *inventory.StockLedger
	recorder  *inventory.MovementRecorder
	publisher ports.EventPublisher
	metrics   ports.Metrics
	tracer    trace.Tracer
	now       func() time.Time
}

// NewEngine construye el motor. carts, publisher y metrics pueden ser nil.
func NewEngine(txRunner TxRunner, carts Carts, publisher ports.EventPublisher, metrics ports.Metrics) *Engine {
	if publisher == nil {
		publisher = ports.NopPublisher{}
	}
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	ledger := inventory.NewStockLedger()
	return &Engine{
		txRunner:  txRunner,
		carts:     carts,
		ledger:    ledger,
		recorder:  inventory.NewMovementRecorder(ledger),
		publisher: publisher,
		metrics:   metrics,
		tracer:    otel.Tracer(tracerName),
		now:       time.Now,
	}
}

// Confirm crea el pedido a partir del snapshot. Todo o nada: ante cualquier error no queda
// pedido, línea, movimiento ni cambio de stock, y el carrito no se toca. Tras el commit
// se descuentan del carrito solo las cantidades del snapshot.
// Los productos se bloquean en orden ascendente de ID.
func (e *Engine) Confirm(
	ctx context.Context,
	identity entity.Identity,
	snapshot entity.CartSnapshot,
	deliveryAddress, notes string,
) (confirmed *entity.Order, err error) {
	start := e.now()
	ctx, span := e.tracer.Start(ctx, "order.confirm", trace.WithAttributes(
		attribute.String("user.id", identity.UserID),
		attribute.Int("order.items", len(snapshot)),
	))
	defer func() {
		e.metrics.ObserveCheckout(checkoutResult(err), e.now().Sub(start))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			log.Warn().Err(err).Str("user_id", identity.UserID).Str("result", checkoutResult(err)).Msg("checkout rechazado")
		}
		span.End()
	}()

	if identity.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	if len(snapshot) == 0 {
		return nil, domain.ErrEmptyCart
	}
	for _, it := range snapshot {
		if it.Quantity <= 0 {
			return nil, domain.ErrInvalidQuantity
		}
		if it.ProductID == "" {
			return nil, domain.ErrInvalidInput
		}
	}

	items := snapshot.Sorted()
	pending := &entity.Order{
		ID:              uuid.New().String(),
		UserID:          identity.UserID,
		Username:        identity.Username,
		CreatedAt:       start,
		Total:           items.Total(),
		Status:          entity.OrderPendiente,
		DeliveryAddress: deliveryAddress,
		Notes:           notes,
	}

	err = e.txRunner.RunOrder(ctx, func(
		movRepo repository.InventoryMovementRepository,
		productRepo repository.ProductRepository,
		orderRepo repository.OrderRepository,
	) error {
		pending.Lines = pending.Lines[:0]
		if err := orderRepo.Create(ctx, pending); err != nil {
			return err
		}
		for _, it := range items {
			line, err := e.fulfil(ctx, movRepo, productRepo, orderRepo, pending, identity, it)
			if err != nil {
				return err
			}
			pending.Lines = append(pending.Lines, line)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("order.id", pending.ID))
	log.Info().
		Str("order_id", pending.ID).
		Str("user_id", identity.UserID).
		Str("total", pending.Total.StringFixed(2)).
		Int("lines", len(pending.Lines)).
		Msg("pedido confirmado")

	if e.carts != nil {
		if cerr := e.carts.Consume(ctx, identity.UserID, items); cerr != nil {
			log.Error().Err(cerr).Str("order_id", pending.ID).Msg("no se pudo descontar el carrito tras el checkout")
		}
	}
	ev := ports.Event{Type: ports.EventOrderConfirmed, Key: pending.ID, OccurredAt: e.now(), Payload: ToOrderResponse(pending)}
	if perr := e.publisher.Publish(ctx, ev); perr != nil {
		log.Error().Err(perr).Str("order_id", pending.ID).Msg("no se pudo publicar evento")
	}
	return pending.Clone(), nil
}

// fulfil procesa una línea con la fila del producto bloqueada: verifica stock, crea la línea
// al precio del snapshot, descuenta stock y registra la SALIDA ligada al pedido.
func (e *Engine) fulfil(
	ctx context.Context,
	movRepo repository.InventoryMovementRepository,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	o *entity.Order,
	identity entity.Identity,
	it entity.CartItem,
) (*entity.OrderLine, error) {
	p, err := e.ledger.Lock(ctx, productRepo, it.ProductID)
	if err != nil {
		return nil, err
	}
	if p.Stock < it.Quantity {
		return nil, domain.NewInsufficientStock(it.ProductID, p.Stock, it.Quantity)
	}
	name := it.Name
	if name == "" {
		name = p.Name
	}
	productID := it.ProductID
	line := &entity.OrderLine{
		ID:          uuid.New().String(),
		OrderID:     o.ID,
		ProductID:   &productID,
		ProductName: name,
		Quantity:    it.Quantity,
		UnitPrice:   it.UnitPrice,
		Subtotal:    it.Subtotal(),
	}
	if err := orderRepo.CreateLine(ctx, line); err != nil {
		return nil, err
	}
	if _, err := e.ledger.Adjust(ctx, productRepo, it.ProductID, -it.Quantity, entity.ReasonSale); err != nil {
		return nil, err
	}
	userID := identity.UserID
	orderID := o.ID
	if _, err := e.recorder.Record(ctx, movRepo, inventory.RecordInput{
		ProductID:   it.ProductID,
		Type:        entity.MovementSalida,
		Reason:      entity.ReasonSale,
		Quantity:    it.Quantity,
		UserID:      &userID,
		OrderID:     &orderID,
		Description: SaleDescription(o.ID, identity.Username),
	}); err != nil {
		return nil, err
	}
	return line, nil
}

// SaleDescription texto del movimiento SALIDA generado por un pedido.
func SaleDescription(orderID, username string) string {
	return fmt.Sprintf("Venta - Pedido #%s - Cliente: %s", orderID, username)
}

func checkoutResult(err error) string {
	switch {
	case err == nil:
		return ports.CheckoutOK
	case errors.Is(err, domain.ErrEmptyCart):
		return ports.CheckoutEmptyCart
	case errors.Is(err, domain.ErrInsufficientStock):
		return ports.CheckoutInsufficientStock
	case errors.Is(err, domain.ErrNotFound):
		return ports.CheckoutNotFound
	case errors.Is(err, domain.ErrInvalidQuantity), errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrUnauthorized):
		return ports.CheckoutInvalid
	default:
		return ports.CheckoutError
	}
}
