// Package bootstrap arma los casos de uso a partir de la configuración; lo comparten la API
// y la CLI.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	apppw "github.com/jhoicas/piecework-api/internal/application/piecework"
	"github.com/jhoicas/piecework-api/internal/infrastructure/cache"
	"github.com/jhoicas/piecework-api/internal/infrastructure/export"
	"github.com/jhoicas/piecework-api/internal/infrastructure/memory"
	"github.com/jhoicas/piecework-api/internal/infrastructure/metrics"
	"github.com/jhoicas/piecework-api/internal/infrastructure/postgres"
	"github.com/jhoicas/piecework-api/pkg/config"
)

// Container casos de uso listos para usar y los recursos que hay que cerrar.
type Container struct {
	Catalog  *apppw.CatalogUseCase
	Resolver *apppw.PriceResolverUseCase
	Accrual  *apppw.AccrualUseCase
	Stats    *apppw.StatsUseCase
	Reports  *apppw.ReportUseCase

	// Cache es nil si no hay Redis configurado o no respondió al arrancar.
	Cache *cache.StatsCache

	closers []func()
}

// Close libera pool y clientes en orden inverso de creación.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

// Build conecta almacenamiento, caché y métricas según cfg y construye los casos de uso.
// Con withMetrics=false no se registran collectors de Prometheus (CLI).
func Build(ctx context.Context, cfg *config.Config, log zerolog.Logger, withMetrics bool) (*Container, error) {
	c := &Container{}

	store, err := c.openStore(ctx, cfg.DB, log)
	if err != nil {
		c.Close()
		return nil, err
	}

	opts := apppw.Options{
		Timeout:      cfg.Store.Timeout,
		MergeRetries: cfg.Store.MergeRetries,
		Logger:       log.With().Str("component", "piecework").Logger(),
	}

	if cfg.Redis.Enabled() {
		client, err := cache.NewClient(ctx, cfg.Redis.Addr)
		if err != nil {
			// Sin caché las estadísticas se calculan directo.
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis no disponible, caché desactivada")
		} else {
			c.closers = append(c.closers, func() { _ = client.Close() })
			c.Cache = cache.NewStatsCache(client, cfg.Redis.TTL)
			opts.Cache = c.Cache
		}
	}

	if withMetrics && cfg.Metrics.Enabled {
		rec, err := metrics.Default()
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("registrar métricas: %w", err)
		}
		opts.Metrics = rec
	}

	c.Catalog = apppw.NewCatalogUseCase(store, opts)
	c.Resolver = apppw.NewPriceResolverUseCase(store.Repos.Prices, opts)
	c.Accrual = apppw.NewAccrualUseCase(store, opts)
	c.Stats = apppw.NewStatsUseCase(store.Repos, opts)
	c.Reports = apppw.NewReportUseCase(store.Repos, c.Stats, opts, export.NewExcelRenderer(), export.NewPDFRenderer())
	return c, nil
}

func (c *Container) openStore(ctx context.Context, cfg config.DBConfig, log zerolog.Logger) (apppw.Store, error) {
	if cfg.Driver == config.DriverMemory {
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		mem := memory.NewStore()
		return apppw.Store{Repos: mem.Repositories(), Tx: mem}, nil
	}

	if cfg.Migrate {
		if err := postgres.Migrate(ctx, cfg.ConnectionString()); err != nil {
			return apppw.Store{}, fmt.Errorf("migraciones: %w", err)
		}
		log.Info().Msg("migraciones aplicadas")
	}
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return apppw.Store{}, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	c.closers = append(c.closers, pool.Close)
	return postgres.NewStore(pool), nil
}
