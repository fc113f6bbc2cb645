package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/jhoicas/inventario-cacc/internal/application/dto"
	"github.com/jhoicas/inventario-cacc/internal/application/inventory"
	"github.com/jhoicas/inventario-cacc/internal/domain"
	"github.com/jhoicas/inventario-cacc/internal/domain/entity"
	"github.com/jhoicas/inventario-cacc/internal/infrastructure/memory"
)

type countingMetrics struct {
	mu          sync.Mutex
	adjustments map[string]int
	reversals   int
}

func (m *countingMetrics) ObserveCheckout(string, time.Duration) {}

func (m *countingMetrics) IncStockAdjustment(t string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.adjustments[t]++
}

func (m *countingMetrics) IncReversal() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reversals++
}

type env struct {
	products  *memory.ProductRepository
	movements *memory.InventoryMovementRepository
	customers *memory.CustomerRepository
	metrics   *countingMetrics
	uc        *inventory.UseCase
}

func newEnv(t *testing.T) *env {
	t.Helper()
	s := memory.NewStore()
	e := &env{
		products:  memory.NewProductRepository(s),
		movements: memory.NewInventoryMovementRepository(s),
		customers: memory.NewCustomerRepository(s),
		metrics:   &countingMetrics{adjustments: map[string]int{}},
	}
	e.uc = inventory.NewUseCase(memory.NewTxRunner(s), e.products, e.movements, e.customers, nil, e.metrics)
	require.NoError(t, e.products.Create(context.Background(), &entity.Product{ID: "P", Name: "Tornillo", Price: decimal.NewFromInt(1)}))
	return e
}

func (e *env) stock(t *testing.T) int {
	p, err := e.products.GetByID(context.Background(), "P")
	require.NoError(t, err)
	return p.Stock
}

var admin = entity.Identity{UserID: "adm", Username: "admin", Role: entity.RoleAdmin}

func TestAdjustStock_EntradaAndSalida(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	res, err := e.uc.AdjustStock(ctx, inventory.AdjustStockInput{ProductID: "P", Type: entity.MovementEntrada, Quantity: 10, ActingUser: admin})
	require.NoError(t, err)
	assert.Equal(t, 10, res.NewStock)
	assert.Equal(t, "ENTRADA", res.Movement.Type)
	require.NotNil(t, res.Movement.UserID)
	assert.Equal(t, "adm", *res.Movement.UserID)

	res, err = e.uc.AdjustStock(ctx, inventory.AdjustStockInput{ProductID: "P", Type: entity.MovementSalida, Quantity: 4})
	require.NoError(t, err)
	assert.Equal(t, 6, res.NewStock)
	assert.Equal(t, 6, e.stock(t))
	assert.Equal(t, map[string]int{"ENTRADA": 1, "SALIDA": 1}, e.metrics.adjustments)
}

func TestAdjustStock_SalidaBeyondStockFails(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	_, err := e.uc.AdjustStock(ctx, inventory.AdjustStockInput{ProductID: "P", Type: entity.MovementEntrada, Quantity: 3})
	require.NoError(t, err)

	_, err = e.uc.AdjustStock(ctx, inventory.AdjustStockInput{ProductID: "P", Type: entity.MovementSalida, Quantity: 4})
	var typed *domain.InsufficientStockError
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, 3, typed.Available)
	assert.Equal(t, 3, e.stock(t))

	movs, err := e.uc.ListMovements(ctx, "P")
	require.NoError(t, err)
	assert.Len(t, movs, 1)
}

func TestAdjustStock_Validation(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	tests := []struct {
		name string
		in   inventory.AdjustStockInput
		want error
	}{
		{"cantidad cero", inventory.AdjustStockInput{ProductID: "P", Type: entity.MovementEntrada}, domain.ErrInvalidQuantity},
		{"cantidad negativa", inventory.AdjustStockInput{ProductID: "P", Type: entity.MovementEntrada, Quantity: -2}, domain.ErrInvalidQuantity},
		{"tipo inválido", inventory.AdjustStockInput{ProductID: "P", Type: "AJUSTE", Quantity: 1}, domain.ErrInvalidInput},
		{"producto inexistente", inventory.AdjustStockInput{ProductID: "X", Type: entity.MovementEntrada, Quantity: 1}, domain.ErrNotFound},
		{"cliente inexistente", inventory.AdjustStockInput{ProductID: "P", Type: entity.MovementEntrada, Quantity: 1, CustomerID: "C"}, domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.uc.AdjustStock(ctx, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Equal(t, 0, e.stock(t))
}

func TestAdjustStock_WithCustomer(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	require.NoError(t, e.customers.Create(ctx, &entity.Customer{ID: "C", Name: "Cliente"}))

	res, err := e.uc.AdjustStock(ctx, inventory.AdjustStockInput{ProductID: "P", Type: entity.MovementEntrada, Quantity: 2, CustomerID: "C"})
	require.NoError(t, err)
	require.NotNil(t, res.Movement.CustomerID)

	require.NoError(t, e.customers.Delete(ctx, "C"))
	movs, err := e.uc.ListMovements(ctx, "P")
	require.NoError(t, err)
	assert.Nil(t, movs[0].CustomerID)
}

func TestReverseMovement_RestoresStock(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	_, err := e.uc.AdjustStock(ctx, inventory.AdjustStockInput{ProductID: "P", Type: entity.MovementEntrada, Quantity: 10})
	require.NoError(t, err)
	out, err := e.uc.AdjustStock(ctx, inventory.AdjustStockInput{ProductID: "P", Type: entity.MovementSalida, Quantity: 3})
	require.NoError(t, err)
	require.Equal(t, 7, e.stock(t))

	rev, err := e.uc.ReverseMovement(ctx, out.Movement.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, rev.NewStock)
	assert.Equal(t, 10, e.stock(t))

	gone, err := e.movements.GetByID(ctx, out.Movement.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
	assert.Equal(t, 1, e.metrics.reversals)

	report, err := e.uc.VerifyLedger(ctx, "P")
	require.NoError(t, err)
	assert.Equal(t, dto.LedgerReport{ProductID: "P", Stock: 10, Entradas: 10, Salidas: 0, Net: 10, Consistent: true}, *report)
}

func TestReverseMovement_EntradaAlreadyConsumed(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	in, err := e.uc.AdjustStock(ctx, inventory.AdjustStockInput{ProductID: "P", Type: entity.MovementEntrada, Quantity: 5})
	require.NoError(t, err)
	_, err = e.uc.AdjustStock(ctx, inventory.AdjustStockInput{ProductID: "P", Type: entity.MovementSalida, Quantity: 4})
	require.NoError(t, err)

	_, err = e.uc.ReverseMovement(ctx, in.Movement.ID)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 1, e.stock(t))

	still, err := e.movements.GetByID(ctx, in.Movement.ID)
	require.NoError(t, err)
	assert.NotNil(t, still)
}

func TestReverseMovement_NotFound(t *testing.T) {
	e := newEnv(t)
	_, err := e.uc.ReverseMovement(context.Background(), "nada")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	for _, in := range []inventory.AdjustStockInput{
		{ProductID: "P", Type: entity.MovementEntrada, Quantity: 5},
		{ProductID: "P", Type: entity.MovementEntrada, Quantity: 1},
		{ProductID: "P", Type: entity.MovementSalida, Quantity: 2},
	} {
		_, err := e.uc.AdjustStock(ctx, in)
		require.NoError(t, err)
	}
	st, err := e.uc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, dto.MovementStatsResponse{TotalEntradas: 2, TotalSalidas: 1, MovementsToday: 3}, *st)
}

func TestVerifyLedger_DetectsDrift(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	_, err := e.uc.AdjustStock(ctx, inventory.AdjustStockInput{ProductID: "P", Type: entity.MovementEntrada, Quantity: 5})
	require.NoError(t, err)
	require.NoError(t, e.products.UpdateStock(ctx, "P", 7))

	report, err := e.uc.VerifyLedger(ctx, "P")
	require.NoError(t, err)
	assert.False(t, report.Consistent)
	assert.Equal(t, 5, report.Net)

	_, err = e.uc.VerifyLedger(ctx, "X")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRegisterMovementFromRequest_NormalisesType(t *testing.T) {
	e := newEnv(t)
	res, err := e.uc.RegisterMovementFromRequest(context.Background(), admin, dto.RegisterMovementRequest{ProductID: "P", Type: " entrada", Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, res.NewStock)
}

func TestReverseMovement_ConcurrentOnlyOneWins(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	_, err := e.uc.AdjustStock(ctx, inventory.AdjustStockInput{ProductID: "P", Type: entity.MovementEntrada, Quantity: 10})
	require.NoError(t, err)
	out, err := e.uc.AdjustStock(ctx, inventory.AdjustStockInput{ProductID: "P", Type: entity.MovementSalida, Quantity: 3})
	require.NoError(t, err)

	const workers = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok       int
		notFound int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.uc.ReverseMovement(ctx, out.Movement.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrNotFound):
				notFound++
			default:
				t.Errorf("error inesperado: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, workers-1, notFound)
	assert.Equal(t, 10, e.stock(t))

	report, err := e.uc.VerifyLedger(ctx, "P")
	require.NoError(t, err)
	assert.True(t, report.Consistent)
}

func TestAdjustStock_ConcurrentSalidasNeverGoNegative(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	_, err := e.uc.AdjustStock(ctx, inventory.AdjustStockInput{ProductID: "P", Type: entity.MovementEntrada, Quantity: 10})
	require.NoError(t, err)

	const workers = 8
	var (
		wg           sync.WaitGroup
		mu           sync.Mutex
		ok           int
		insufficient int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.uc.AdjustStock(ctx, inventory.AdjustStockInput{ProductID: "P", Type: entity.MovementSalida, Quantity: 3})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrInsufficientStock):
				insufficient++
			default:
				t.Errorf("error inesperado: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, ok)
	assert.Equal(t, workers-3, insufficient)
	assert.Equal(t, 1, e.stock(t))

	report, err := e.uc.VerifyLedger(ctx, "P")
	require.NoError(t, err)
	assert.True(t, report.Consistent)
	assert.Equal(t, 9, report.Salidas)
}

func TestAdjustAndReverse_RecordSpans(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	ctx := context.Background()
	e := newEnv(t)
	in, err := e.uc.AdjustStock(ctx, inventory.AdjustStockInput{ProductID: "P", Type: entity.MovementEntrada, Quantity: 3})
	require.NoError(t, err)
	_, err = e.uc.AdjustStock(ctx, inventory.AdjustStockInput{ProductID: "P", Type: entity.MovementSalida, Quantity: 5})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	_, err = e.uc.ReverseMovement(ctx, in.Movement.ID)
	require.NoError(t, err)

	byName := map[string][]sdktrace.ReadOnlySpan{}
	for _, s := range sr.Ended() {
		byName[s.Name()] = append(byName[s.Name()], s)
	}
	adjust := byName["inventory.adjust_stock"]
	reverse := byName["inventory.reverse_movement"]
	require.Len(t, adjust, 2)
	require.Len(t, reverse, 1)

	assert.Equal(t, codes.Unset, adjust[0].Status().Code)
	assert.Contains(t, adjust[0].Attributes(), attribute.String("product.id", "P"))
	assert.Contains(t, adjust[0].Attributes(), attribute.Int("product.stock", 3))
	assert.Equal(t, codes.Error, adjust[1].Status().Code)
	assert.Contains(t, reverse[0].Attributes(), attribute.String("movement.id", in.Movement.ID))
	assert.Equal(t, codes.Unset, reverse[0].Status().Code)
}
