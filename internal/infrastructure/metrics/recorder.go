// Package metrics exporta contadores del motor de stock a Prometheus.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-engine/internal/application/ports"
	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
)

var _ ports.Metrics = (*Recorder)(nil)

// Recorder implementa ports.Metrics sobre un registry propio (no el global, para poder
// crear uno por test).
type Recorder struct {
	reg *prometheus.Registry

	movements  *prometheus.CounterVec
	quantity   *prometheus.CounterVec
	rejections *prometheus.CounterVec
	alerts     *prometheus.CounterVec
	orders     *prometheus.CounterVec
	requests   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// New registra las métricas en un registry nuevo, junto con las de proceso y runtime.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		reg: reg,
		movements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stock_movements_total",
			Help: "Movimientos anotados en el libro por motivo y sentido.",
		}, []string{"reason", "direction"}),
		quantity: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stock_movement_quantity_total",
			Help: "Cantidad movida por motivo y sentido (unidades del artículo).",
		}, []string{"reason", "direction"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stock_rejections_total",
			Help: "Operaciones rechazadas por operación y tipo de error.",
		}, []string{"op", "kind"}),
		alerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stock_low_alerts_total",
			Help: "Alertas de stock bajo emitidas por dominio.",
		}, []string{"domain"}),
		orders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orders_events_total",
			Help: "Eventos de órdenes por tipo (created, delivered, completed, cancelled).",
		}, []string{"kind", "event"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Solicitudes HTTP por método, ruta y estado.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duración de las solicitudes HTTP.",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"method", "route"}),
	}
	reg.MustRegister(
		r.movements, r.quantity, r.rejections, r.alerts, r.orders, r.requests, r.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Registry expone el registry (tests y handlers adicionales).
func (r *Recorder) Registry() *prometheus.Registry { return r.reg }

// Handler handler HTTP de exposición para /metrics.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

func (r *Recorder) ObserveMovement(reason entity.MovementReason, direction entity.Direction, qty decimal.Decimal) {
	r.movements.WithLabelValues(string(reason), string(direction)).Inc()
	r.quantity.WithLabelValues(string(reason), string(direction)).Add(qty.InexactFloat64())
}

func (r *Recorder) ObserveRejection(op string, err error) {
	r.rejections.WithLabelValues(op, ErrorKind(err)).Inc()
}

func (r *Recorder) ObserveAlert(domainName string) {
	r.alerts.WithLabelValues(domainName).Inc()
}

func (r *Recorder) ObserveOrder(kind entity.OrderKind, event string) {
	r.orders.WithLabelValues(string(kind), event).Inc()
}

// ObserveHTTP registra una solicitud atendida. route es el patrón (/api/orders/:id), no la ruta real.
func (r *Recorder) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	r.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.duration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ErrorKind etiqueta de baja cardinalidad para un error del motor.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrInconsistentReservation):
		return "inconsistent_reservation"
	case errors.Is(err, domain.ErrInvalidInput):
		return "validation"
	case errors.Is(err, domain.ErrArticleNotFound), errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrCounterpartyNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrAlreadyFullyDelivered), errors.Is(err, domain.ErrOrderCancelled),
		errors.Is(err, domain.ErrDuplicateOrderNumber), errors.Is(err, domain.ErrDuplicate):
		return "conflict"
	case domain.IsBusiness(err):
		return "business"
	default:
		return "storage"
	}
}
