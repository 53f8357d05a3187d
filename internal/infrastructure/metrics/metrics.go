// Package metrics expone contadores Prometheus del motor de movimientos y del servidor HTTP.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jhoicas/inventario-stock/internal/application/inventory"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
)

var _ inventory.MovementObserver = (*Metrics)(nil)

// Metrics implementa inventory.MovementObserver.
type Metrics struct {
	movementsTotal   *prometheus.CounterVec
	movementDuration *prometheus.HistogramVec
	balanceRetries   prometheus.Counter
	compensations    *prometheus.CounterVec
	itemsProvisioned prometheus.Counter
	httpRequests     *prometheus.CounterVec
	httpDurationMs   *prometheus.HistogramVec
}

// New registra las métricas en reg. En pruebas usar prometheus.NewRegistry() para no chocar con el registro global.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		movementsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "inventario_movements_total",
			Help: "Movimientos procesados por tipo y resultado",
		}, []string{"kind", "outcome"}),
		movementDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "inventario_movement_duration_seconds",
			Help:    "Latencia de aplicación de un movimiento, incluida la espera del locker",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"kind"}),
		balanceRetries: f.NewCounter(prometheus.CounterOpts{
			Name: "inventario_balance_cas_retries_total",
			Help: "Escrituras de saldo reintentadas por modificación concurrente",
		}),
		compensations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "inventario_compensations_total",
			Help: "Acciones compensatorias ejecutadas por paso y resultado",
		}, []string{"step", "result"}),
		itemsProvisioned: f.NewCounter(prometheus.CounterOpts{
			Name: "inventario_items_provisioned_total",
			Help: "Ítems creados junto con su saldo inicial",
		}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "inventario_http_requests_total",
			Help: "Peticiones HTTP por método, ruta y código",
		}, []string{"method", "route", "status"}),
		httpDurationMs: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "inventario_http_request_duration_ms",
			Help:    "Latencia HTTP en milisegundos",
			Buckets: []float64{1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000},
		}, []string{"method", "route"}),
	}
}

func (m *Metrics) ObserveMovement(kind entity.MovementKind, outcome string, start time.Time) {
	m.movementsTotal.WithLabelValues(string(kind), outcome).Inc()
	m.movementDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())
}

func (m *Metrics) ObserveBalanceRetry() {
	m.balanceRetries.Inc()
}

func (m *Metrics) ObserveCompensation(step string, ok bool) {
	result := "ok"
	if !ok {
		result = "failed"
	}
	m.compensations.WithLabelValues(step, result).Inc()
}

func (m *Metrics) ObserveProvisioned() {
	m.itemsProvisioned.Inc()
}

// ObserveHTTP registra una petición atendida. route es el patrón (/api/items/:id), no la URL.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDurationMs.WithLabelValues(method, route).Observe(float64(elapsed.Microseconds()) / 1000.0)
}
