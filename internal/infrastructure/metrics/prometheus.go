// Package metrics expone contadores de la sesión de inventario en formato Prometheus.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jhoicas/inventario-desktop/internal/domain"
	"github.com/jhoicas/inventario-desktop/internal/domain/entity"
)

var kinds = []struct {
	err   error
	label string
}{
	{domain.ErrNotFound, "not_found"},
	{domain.ErrInsufficientStock, "insufficient_stock"},
	{domain.ErrInvalidInput, "invalid_input"},
	{domain.ErrNoCatalog, "no_catalog"},
}

// Recorder implementa session.Metrics sobre un registro propio (no el global).
type Recorder struct {
	registry  *prometheus.Registry
	movements *prometheus.CounterVec
	rejected  *prometheus.CounterVec
	io        *prometheus.CounterVec
	ioSeconds *prometheus.HistogramVec
	items     prometheus.Gauge
	lowStock  prometheus.Gauge
}

// NewRecorder registra las métricas en un registro nuevo.
func NewRecorder(namespace string) *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		movements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "movements_applied_total",
			Help:      "Movimientos de stock aplicados por motivo.",
		}, []string{"reason"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "movements_rejected_total",
			Help:      "Movimientos rechazados por tipo de error.",
		}, []string{"kind"}),
		io: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workbook_operations_total",
			Help:      "Cargas y guardados del libro por resultado.",
		}, []string{"op", "result"}),
		ioSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "workbook_operation_seconds",
			Help:      "Duración de cargas y guardados del libro.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		items: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_items",
			Help:      "Ítems en el catálogo abierto.",
		}),
		lowStock: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_low_stock_items",
			Help:      "Ítems en o por debajo de su umbral.",
		}),
	}
	r.registry.MustRegister(
		r.movements, r.rejected, r.io, r.ioSeconds, r.items, r.lowStock,
		collectors.NewGoCollector(),
	)
	return r
}

// Registry devuelve el registro para exponerlo vía HTTP.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// MovementApplied cuenta un movimiento aplicado.
func (r *Recorder) MovementApplied(reason entity.MovementReason) {
	r.movements.WithLabelValues(string(reason)).Inc()
}

// MovementRejected cuenta un movimiento rechazado, etiquetado por la causa.
func (r *Recorder) MovementRejected(err error) {
	r.rejected.WithLabelValues(Kind(err)).Inc()
}

// WorkbookOperation registra una carga ("load") o guardado ("save").
func (r *Recorder) WorkbookOperation(op string, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.io.WithLabelValues(op, result).Inc()
	r.ioSeconds.WithLabelValues(op).Observe(d.Seconds())
}

// CatalogSize actualiza los gauges del catálogo.
func (r *Recorder) CatalogSize(items, lowStock int) {
	r.items.Set(float64(items))
	r.lowStock.Set(float64(lowStock))
}

// Kind etiqueta corta para un error de dominio.
func Kind(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.label
		}
	}
	return "other"
}
