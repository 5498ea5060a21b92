// Package metrics registra los colectores Prometheus del motor a destajo.
package metrics

import (
	"errors"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder implementa piecework.Metrics sobre Prometheus.
type Recorder struct {
	submissions  *prometheus.CounterVec
	items        *prometheus.CounterVec
	conflicts    prometheus.Counter
	statsLookups *prometheus.CounterVec
	storeErrors  *prometheus.CounterVec
}

var (
	defaultMu       sync.Mutex
	defaultRecorder *Recorder
)

// Default Recorder registrado una sola vez en prometheus.DefaultRegisterer.
func Default() (*Recorder, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultRecorder != nil {
		return defaultRecorder, nil
	}
	r, err := NewRecorder(prometheus.DefaultRegisterer)
	if err != nil {
		return nil, err
	}
	defaultRecorder = r
	return r, nil
}

// NewRecorder crea los colectores y los registra en reg. Si ya estaban registrados
// reutiliza los existentes.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	r := &Recorder{
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "piecework_submissions_total",
			Help: "Envíos a destajo registrados por modo (new, accumulate).",
		}, []string{"mode"}),
		items: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "piecework_submission_items_total",
			Help: "Ítems procesados por modo de envío.",
		}, []string{"mode"}),
		conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "piecework_merge_conflicts_total",
			Help: "Conflictos de versión al acumular sobre un registro.",
		}),
		statsLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "piecework_stats_cache_lookups_total",
			Help: "Consultas de estadísticas según resultado de caché (hit, miss).",
		}, []string{"result"}),
		storeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "piecework_store_errors_total",
			Help: "Errores del almacenamiento por operación.",
		}, []string{"op"}),
	}

	var err error
	r.submissions, err = registerCounterVec(reg, r.submissions)
	if err != nil {
		return nil, err
	}
	r.items, err = registerCounterVec(reg, r.items)
	if err != nil {
		return nil, err
	}
	r.statsLookups, err = registerCounterVec(reg, r.statsLookups)
	if err != nil {
		return nil, err
	}
	r.storeErrors, err = registerCounterVec(reg, r.storeErrors)
	if err != nil {
		return nil, err
	}
	if err := reg.Register(r.conflicts); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return nil, err
		}
		existing, ok := already.ExistingCollector.(prometheus.Counter)
		if !ok {
			return nil, err
		}
		r.conflicts = existing
	}
	return r, nil
}

func registerCounterVec(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return c, nil
}

// ObserveSubmission cuenta un envío y sus ítems.
func (r *Recorder) ObserveSubmission(mode string, items int) {
	r.submissions.WithLabelValues(mode).Inc()
	r.items.WithLabelValues(mode).Add(float64(items))
}

// IncMergeConflict cuenta un conflicto de versión.
func (r *Recorder) IncMergeConflict() { r.conflicts.Inc() }

// ObserveStats cuenta una consulta de estadísticas.
func (r *Recorder) ObserveStats(cacheHit bool) {
	result := "miss"
	if cacheHit {
		result = "hit"
	}
	r.statsLookups.WithLabelValues(result).Inc()
}

// IncStoreError cuenta un error del almacenamiento.
func (r *Recorder) IncStoreError(op string) { r.storeErrors.WithLabelValues(op).Inc() }
