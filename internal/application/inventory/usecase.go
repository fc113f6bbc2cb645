package inventory

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/inventario-cacc/internal/application/dto"
	"github.com/jhoicas/inventario-cacc/internal/application/ports"
	"github.com/jhoicas/inventario-cacc/internal/domain"
	"github.com/jhoicas/inventario-cacc/internal/domain/entity"
	"github.com/jhoicas/inventario-cacc/internal/domain/repository"
)

const tracerName = "github.com/jhoicas/inventario-cacc/internal/application/inventory"

// UseCase registra y revierte movimientos manuales de inventario de forma transaccional
// (bloqueo de fila + ajuste del ledger + escritura del movimiento, todo o nada).
type UseCase struct {
	txRunner     TxRunner
	productRepo  repository.ProductRepository
	movRepo      repository.InventoryMovementRepository
	customerRepo repository.CustomerRepository
	ledger       *StockLedger
	recorder     *MovementRecorder
	publisher    ports.EventPublisher
	metrics      ports.Metrics
	tracer       trace.Tracer
	now          func() time.Time
}

// NewUseCase construye el caso de uso. publisher y metrics pueden ser nil.
func NewUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	movRepo repository.InventoryMovementRepository,
	customerRepo repository.CustomerRepository,
	publisher ports.EventPublisher,
	metrics ports.Metrics,
) *UseCase {
	if publisher == nil {
		publisher = ports.NopPublisher{}
	}
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	ledger := NewStockLedger()
	return &UseCase{
		txRunner:     txRunner,
		productRepo:  productRepo,
		movRepo:      movRepo,
		customerRepo: customerRepo,
		ledger:       ledger,
		recorder:     NewMovementRecorder(ledger),
		publisher:    publisher,
		metrics:      metrics,
		tracer:       otel.Tracer(tracerName),
		now:          time.Now,
	}
}

// AdjustStockInput entrada para un movimiento manual (ENTRADA o SALIDA).
type AdjustStockInput struct {
	ProductID   string
	Type        entity.MovementType
	Quantity    int
	ActingUser  entity.Identity
	CustomerID  string
	Description string
}

// AdjustStock aplica un movimiento manual: ajusta el stock y registra el movimiento en una sola transacción.
// Una SALIDA mayor al stock disponible falla con InsufficientStockError y no cambia nada.
func (uc *UseCase) AdjustStock(ctx context.Context, in AdjustStockInput) (_ *dto.RegisterMovementResponse, err error) {
	ctx, span := uc.tracer.Start(ctx, "inventory.adjust_stock", trace.WithAttributes(
		attribute.String("product.id", in.ProductID),
		attribute.String("movement.type", string(in.Type)),
		attribute.Int("movement.quantity", in.Quantity),
	))
	defer func() { endSpan(span, err) }()

	if in.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if !in.Type.Valid() || in.ProductID == "" {
		return nil, domain.ErrInvalidInput
	}
	var customerID *string
	if in.CustomerID != "" {
		customer, err := uc.customerRepo.GetByID(ctx, in.CustomerID)
		if err != nil {
			return nil, err
		}
		if customer == nil {
			return nil, domain.ErrNotFound
		}
		customerID = &in.CustomerID
	}
	var userID *string
	if in.ActingUser.UserID != "" {
		id := in.ActingUser.UserID
		userID = &id
	}

	var (
		mov      *entity.InventoryMovement
		newStock int
	)
	err = uc.txRunner.Run(ctx, func(movRepo repository.InventoryMovementRepository, productRepo repository.ProductRepository) error {
		var err error
		newStock, err = uc.ledger.Adjust(ctx, productRepo, in.ProductID, in.Type.Delta(in.Quantity), entity.ReasonManual)
		if err != nil {
			return err
		}
		mov, err = uc.recorder.Record(ctx, movRepo, RecordInput{
			ProductID:   in.ProductID,
			Type:        in.Type,
			Reason:      entity.ReasonManual,
			Quantity:    in.Quantity,
			UserID:      userID,
			CustomerID:  customerID,
			Description: in.Description,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("movement.id", mov.ID), attribute.Int("product.stock", newStock))
	uc.metrics.IncStockAdjustment(string(mov.Type))
	log.Info().
		Str("movement_id", mov.ID).
		Str("product_id", mov.ProductID).
		Str("type", string(mov.Type)).
		Int("quantity", mov.Quantity).
		Int("stock", newStock).
		Msg("movimiento registrado")
	uc.publish(ctx, ports.EventMovementRecorded, mov.ProductID, toMovementResponse(mov))

	return &dto.RegisterMovementResponse{Movement: toMovementResponse(mov), NewStock: newStock}, nil
}

// ReverseMovement elimina un movimiento deshaciendo su efecto sobre el stock.
// Revertir una ENTRADA cuyo stock ya fue consumido falla con InsufficientStockError.
func (uc *UseCase) ReverseMovement(ctx context.Context, movementID string) (_ *dto.ReversedMovementResponse, err error) {
	ctx, span := uc.tracer.Start(ctx, "inventory.reverse_movement", trace.WithAttributes(
		attribute.String("movement.id", movementID),
	))
	defer func() { endSpan(span, err) }()

	if movementID == "" {
		return nil, domain.ErrInvalidInput
	}
	var (
		mov      *entity.InventoryMovement
		newStock int
	)
	err = uc.txRunner.Run(ctx, func(movRepo repository.InventoryMovementRepository, productRepo repository.ProductRepository) error {
		var err error
		mov, newStock, err = uc.recorder.Reverse(ctx, movRepo, productRepo, movementID)
		return err
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("product.id", mov.ProductID), attribute.Int("product.stock", newStock))
	uc.metrics.IncReversal()
	log.Info().
		Str("movement_id", mov.ID).
		Str("product_id", mov.ProductID).
		Int("stock", newStock).
		Msg("movimiento revertido")
	uc.publish(ctx, ports.EventMovementReversed, mov.ProductID, toMovementResponse(mov))

	return &dto.ReversedMovementResponse{Movement: toMovementResponse(mov), NewStock: newStock}, nil
}

// ListMovements lista movimientos, más recientes primero. productID vacío = todos.
func (uc *UseCase) ListMovements(ctx context.Context, productID string) ([]dto.MovementResponse, error) {
	var (
		list []*entity.InventoryMovement
		err  error
	)
	if productID != "" {
		list, err = uc.movRepo.ListByProduct(ctx, productID)
	} else {
		list, err = uc.movRepo.List(ctx)
	}
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, toMovementResponse(m))
	}
	return out, nil
}

// Stats devuelve total de entradas, salidas y movimientos del día (hora local).
func (uc *UseCase) Stats(ctx context.Context) (*dto.MovementStatsResponse, error) {
	now := uc.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	s, err := uc.movRepo.Stats(ctx, dayStart)
	if err != nil {
		return nil, err
	}
	return &dto.MovementStatsResponse{TotalEntradas: s.Entradas, TotalSalidas: s.Salidas, MovementsToday: s.Today}, nil
}

// VerifyLedger compara el stock actual con Σ ENTRADA - Σ SALIDA del historial del producto.
func (uc *UseCase) VerifyLedger(ctx context.Context, productID string) (*dto.LedgerReport, error) {
	p, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	entradas, salidas, err := uc.movRepo.Totals(ctx, productID)
	if err != nil {
		return nil, err
	}
	net := entradas - salidas
	report := &dto.LedgerReport{
		ProductID:  productID,
		Stock:      p.Stock,
		Entradas:   entradas,
		Salidas:    salidas,
		Net:        net,
		Consistent: net == p.Stock,
	}
	if !report.Consistent {
		log.Warn().Str("product_id", productID).Int("stock", p.Stock).Int("net", net).Msg("stock inconsistente con el historial")
	}
	return report, nil
}

func (uc *UseCase) publish(ctx context.Context, typ ports.EventType, key string, payload any) {
	ev := ports.Event{Type: typ, Key: key, OccurredAt: uc.now(), Payload: payload}
	if err := uc.publisher.Publish(ctx, ev); err != nil {
		log.Error().Err(err).Str("event", string(typ)).Str("key", key).Msg("no se pudo publicar evento")
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func toMovementResponse(m *entity.InventoryMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:          m.ID,
		ProductID:   m.ProductID,
		Type:        string(m.Type),
		Reason:      string(m.Reason),
		Quantity:    m.Quantity,
		CreatedAt:   m.CreatedAt,
		UserID:      m.UserID,
		CustomerID:  m.CustomerID,
		OrderID:     m.OrderID,
		Description: m.Description,
	}
}
