package ports

import "time"

// Resultados de checkout usados como etiqueta de métricas.
const (
	CheckoutOK                = "ok"
	CheckoutEmptyCart         = "empty_cart"
	CheckoutInsufficientStock = "insufficient_stock"
	CheckoutNotFound          = "not_found"
	CheckoutInvalid           = "invalid"
	CheckoutError             = "error"
)

// Metrics contrato mínimo de instrumentación del núcleo de pedidos e inventario.
type Metrics interface {
	ObserveCheckout(result string, d time.Duration)
	IncStockAdjustment(movementType string)
	IncReversal()
}

// NopMetrics no registra nada.
type NopMetrics struct{}

func (NopMetrics) ObserveCheckout(string, time.Duration) {}
func (NopMetrics) IncStockAdjustment(string)             {}
func (NopMetrics) IncReversal()                          {}
