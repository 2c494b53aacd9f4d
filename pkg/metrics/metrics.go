// Package metrics expone los colectores Prometheus del ledger de inventario.
// Todos los métodos aceptan receptor nil para que los casos de uso funcionen sin métricas.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Ledger colectores del registro de movimientos, la reconciliación y los jobs.
type Ledger struct {
	movements   *prometheus.CounterVec
	rejections  *prometheus.CounterVec
	txRetries   prometheus.Counter
	corrections prometheus.Counter
	failures    prometheus.Counter
	jobRuns     *prometheus.CounterVec
	jobDuration *prometheus.HistogramVec
}

// New registra los colectores en registerer (nil = registerer por defecto).
func New(registerer prometheus.Registerer) *Ledger {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	m := &Ledger{
		movements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "almacen_movements_recorded_total",
			Help: "Movimientos registrados por tipo (entry, exit, return).",
		}, []string{"kind"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "almacen_movements_rejected_total",
			Help: "Movimientos rechazados por motivo.",
		}, []string{"reason"}),
		txRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "almacen_tx_retries_total",
			Help: "Reintentos de transacción por serialización o deadlock.",
		}),
		corrections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "almacen_reconciliation_corrections_total",
			Help: "Materiales cuyo stock fue corregido por la reconciliación.",
		}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "almacen_reconciliation_failures_total",
			Help: "Materiales que no pudieron reconciliarse.",
		}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "almacen_jobs_total",
			Help: "Ejecuciones de jobs por nombre y estado.",
		}, []string{"job", "status"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "almacen_job_duration_seconds",
			Help:    "Duración de los jobs en segundos.",
			Buckets: prometheus.DefBuckets,
		}, []string{"job"}),
	}
	registerer.MustRegister(m.movements, m.rejections, m.txRetries, m.corrections, m.failures, m.jobRuns, m.jobDuration)
	return m
}

// MovementRecorded cuenta un movimiento confirmado.
func (m *Ledger) MovementRecorded(kind string) {
	if m == nil {
		return
	}
	m.movements.WithLabelValues(kind).Inc()
}

// MovementRejected cuenta un rechazo (validation, not_found, insufficient_stock, conflict).
func (m *Ledger) MovementRejected(reason string) {
	if m == nil {
		return
	}
	m.rejections.WithLabelValues(reason).Inc()
}

// TxRetried cuenta un reintento de transacción.
func (m *Ledger) TxRetried() {
	if m == nil {
		return
	}
	m.txRetries.Inc()
}

// ReconciliationResult suma correcciones y fallos de una pasada.
func (m *Ledger) ReconciliationResult(corrected, failed int) {
	if m == nil {
		return
	}
	m.corrections.Add(float64(corrected))
	m.failures.Add(float64(failed))
}

// Tracker mide una ejecución de job.
type Tracker struct {
	metrics *Ledger
	job     string
	start   time.Time
}

// Track inicia la medición del job indicado.
func (m *Ledger) Track(job string) *Tracker {
	return &Tracker{metrics: m, job: job, start: time.Now()}
}

// End registra duración y estado, y devuelve err sin modificarlo.
func (t *Tracker) End(err error) error {
	if t == nil || t.metrics == nil {
		return err
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	t.metrics.jobRuns.WithLabelValues(t.job, status).Inc()
	t.metrics.jobDuration.WithLabelValues(t.job).Observe(time.Since(t.start).Seconds())
	return err
}
