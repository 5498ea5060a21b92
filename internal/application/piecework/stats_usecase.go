package piecework

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/piecework-api/internal/domain"
	"github.com/jhoicas/piecework-api/internal/domain/entity"
	"github.com/jhoicas/piecework-api/internal/domain/piecework"
	"github.com/jhoicas/piecework-api/internal/domain/repository"
)

// allUsers segmento de la llave de caché cuando no se filtra por usuario.
const allUsers = "all"

// StatsUseCase calcula estadísticas de registros a destajo por usuario o por bodega.
type StatsUseCase struct {
	repos repository.Repositories
	opts  Options
}

// NewStatsUseCase construye el caso de uso.
func NewStatsUseCase(repos repository.Repositories, opts Options) *StatsUseCase {
	return &StatsUseCase{repos: repos, opts: opts.withDefaults()}
}

// Compute estadísticas de la bodega en el rango; userID vacío incluye a todos los usuarios.
// Si la bodega no tiene precios configurados el resultado es cero aunque existan registros.
// El resultado se cachea; si la caché falla se calcula directamente.
func (uc *StatsUseCase) Compute(ctx context.Context, userID, warehouseID string, rng entity.DateRange) (*entity.Stats, error) {
	if warehouseID == "" {
		return nil, domain.NewFieldError("warehouse_id", "es requerido")
	}
	user := userID
	if user == "" {
		user = allUsers
	}
	key, err := uc.opts.Cache.BuildKey(ctx, "piecework", "stats", warehouseID, user, formatBound(rng.From), formatBound(rng.To))
	if err != nil {
		uc.opts.Logger.Warn().Err(err).Msg("caché de estadísticas no disponible")
		return uc.compute(ctx, userID, warehouseID, rng)
	}

	var (
		out       entity.Stats
		hit       = true
		loaderErr error
	)
	err = uc.opts.Cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
		hit = false
		s, err := uc.compute(ctx, userID, warehouseID, rng)
		loaderErr = err
		return s, err
	})
	if err != nil {
		if loaderErr != nil {
			return nil, loaderErr
		}
		uc.opts.Logger.Warn().Err(err).Str("key", key).Msg("caché de estadísticas no disponible")
		return uc.compute(ctx, userID, warehouseID, rng)
	}
	uc.opts.Metrics.ObserveStats(hit)
	if out.ByCategory == nil {
		out.ByCategory = []entity.CategoryStats{}
	}
	return &out, nil
}

func (uc *StatsUseCase) compute(ctx context.Context, userID, warehouseID string, rng entity.DateRange) (*entity.Stats, error) {
	ctx, cancel := uc.opts.storeCtx(ctx)
	defer cancel()

	var (
		records []*entity.PieceWorkRecord
		priced  []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = uc.repos.Records.List(gctx, repository.RecordFilter{UserID: userID, WarehouseID: warehouseID, Range: rng})
		return err
	})
	g.Go(func() error {
		var err error
		priced, err = uc.repos.Prices.PricedCategoryIDs(gctx, warehouseID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, uc.opts.classify("stats.fetch", err)
	}
	if len(priced) == 0 {
		return entity.EmptyStats(), nil
	}

	names, err := categoryNames(ctx, uc.repos.Categories, piecework.CategoryIDs(records))
	if err != nil {
		return nil, uc.opts.classify("stats.categories", err)
	}
	return piecework.Aggregate(records, priced, names), nil
}

// categoryNames nombres de las categorías indicadas (las inexistentes no aparecen en el mapa).
func categoryNames(ctx context.Context, repo repository.CategoryRepository, ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	cats, err := repo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, c := range cats {
		names[c.ID] = c.Name
	}
	return names, nil
}
