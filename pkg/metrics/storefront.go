package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// StorefrontMetrics tracks order and cart outcomes.
type StorefrontMetrics struct {
	ordersPlaced  prometheus.Counter
	outOfStock    *prometheus.CounterVec
	transitions   *prometheus.CounterVec
	cartConflicts prometheus.Counter
}

func NewStorefrontMetrics(reg prometheus.Registerer) *StorefrontMetrics {
	if reg == nil {
		return &StorefrontMetrics{}
	}
	m := &StorefrontMetrics{
		ordersPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_placed_total",
			Help:      "Orders committed.",
		}),
		outOfStock: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_out_of_stock_total",
			Help:      "Order placements rejected for insufficient stock.",
		}, []string{"stage"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_status_transitions_total",
			Help:      "Order status transitions applied.",
		}, []string{"from", "to"}),
		cartConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_version_conflicts_total",
			Help:      "Lost compare-and-swap races on cart writes.",
		}),
	}
	reg.MustRegister(m.ordersPlaced, m.outOfStock, m.transitions, m.cartConflicts)
	return m
}

func (m *StorefrontMetrics) IncOrdersPlaced() {
	if m == nil || m.ordersPlaced == nil {
		return
	}
	m.ordersPlaced.Inc()
}

// IncOutOfStock records a rejection; stage is "precheck" or "decrement".
func (m *StorefrontMetrics) IncOutOfStock(stage string) {
	if m == nil || m.outOfStock == nil {
		return
	}
	m.outOfStock.WithLabelValues(normalizeLabel(stage)).Inc()
}

func (m *StorefrontMetrics) IncTransition(from, to string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}

func (m *StorefrontMetrics) IncCartConflict() {
	if m == nil || m.cartConflicts == nil {
		return
	}
	m.cartConflicts.Inc()
}
