package piecework

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/jhoicas/piecework-api/internal/domain"
)

// Valores por defecto de Options.
const (
	DefaultStoreTimeout = 5 * time.Second
	DefaultMergeRetries = 3
)

// Options parámetros de acceso al almacenamiento compartidos por los casos de uso.
type Options struct {
	// Timeout máximo de cada operación contra el almacenamiento.
	Timeout time.Duration
	// MergeRetries reintentos de una acumulación ante conflicto de versión.
	MergeRetries int
	Cache        StatsCache
	Metrics      Metrics
	Logger       zerolog.Logger
	// Now reloj inyectable (tests).
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultStoreTimeout
	}
	if o.MergeRetries <= 0 {
		o.MergeRetries = DefaultMergeRetries
	}
	if o.Cache == nil {
		o.Cache = nopCache{}
	}
	if o.Metrics == nil {
		o.Metrics = nopMetrics{}
	}
	if o.Now == nil {
		o.Now = func() time.Time { return time.Now().UTC() }
	}
	return o
}

func (o Options) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, o.Timeout)
}

// classify conserva los errores de dominio y convierte timeouts y fallas de conexión en
// ErrTransient. La causa original queda en el log.
func (o Options) classify(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, domain.ErrPartialFailure):
		o.Metrics.IncStoreError(op)
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, domain.ErrTransient) {
			o.Logger.Warn().Err(err).Str("op", op).Msg("almacenamiento no disponible durante el lote")
			return fmt.Errorf("%s: %w", op, domain.ErrTransient)
		}
		o.Logger.Warn().Err(err).Str("op", op).Msg("lote revertido")
		return err
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrDuplicate),
		errors.Is(err, domain.ErrForbidden):
		return err
	}
	o.Metrics.IncStoreError(op)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, domain.ErrTransient) {
		o.Logger.Warn().Err(err).Str("op", op).Msg("almacenamiento no disponible")
		return fmt.Errorf("%s: %w", op, domain.ErrTransient)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	o.Logger.Error().Err(err).Str("op", op).Msg("error de almacenamiento")
	return fmt.Errorf("%s: %w", op, err)
}

// bump invalida la caché de estadísticas; una falla solo se registra.
func (o Options) bump(ctx context.Context) {
	if err := o.Cache.Bump(ctx); err != nil {
		o.Logger.Warn().Err(err).Msg("no se pudo invalidar la caché de estadísticas")
	}
}

type nopCache struct{}

func (nopCache) BuildKey(context.Context, ...string) (string, error) { return "", nil }

func (nopCache) FetchJSON(ctx context.Context, _ string, dest any, loader func(context.Context) (any, error)) error {
	v, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

func (nopCache) Bump(context.Context) error { return nil }

type nopMetrics struct{}

func (nopMetrics) ObserveSubmission(string, int) {}
func (nopMetrics) IncMergeConflict()             {}
func (nopMetrics) ObserveStats(bool)             {}
func (nopMetrics) IncStoreError(string)          {}
