package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jhoicas/inventario-cacc/internal/application/ports"
)

const namespace = "inventario"

var _ ports.Metrics = (*Prometheus)(nil)

// Prometheus implementación de ports.Metrics.
type Prometheus struct {
	checkoutDuration *prometheus.HistogramVec
	checkouts        *prometheus.CounterVec
	adjustments      *prometheus.CounterVec
	reversals        prometheus.Counter
}

// New registra los colectores en reg. reg nil = métricas sin exportar (no-op).
func New(reg prometheus.Registerer) *Prometheus {
	if reg == nil {
		return &Prometheus{}
	}
	p := &Prometheus{
		checkoutDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "checkout_duration_seconds",
			Help:      "Duración de la confirmación de pedidos.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"result"}),
		checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkouts_total",
			Help:      "Confirmaciones de pedido por resultado.",
		}, []string{"result"}),
		adjustments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_adjustments_total",
			Help:      "Movimientos manuales de inventario por tipo.",
		}, []string{"type"}),
		reversals: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "movement_reversals_total",
			Help:      "Movimientos revertidos.",
		}),
	}
	reg.MustRegister(p.checkoutDuration, p.checkouts, p.adjustments, p.reversals)
	return p
}

func (p *Prometheus) ObserveCheckout(result string, d time.Duration) {
	if p == nil || p.checkouts == nil {
		return
	}
	result = normalizeLabel(result)
	p.checkouts.WithLabelValues(result).Inc()
	p.checkoutDuration.WithLabelValues(result).Observe(d.Seconds())
}

func (p *Prometheus) IncStockAdjustment(movementType string) {
	if p == nil || p.adjustments == nil {
		return
	}
	p.adjustments.WithLabelValues(normalizeLabel(movementType)).Inc()
}

func (p *Prometheus) IncReversal() {
	if p == nil || p.reversals == nil {
		return
	}
	p.reversals.Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
