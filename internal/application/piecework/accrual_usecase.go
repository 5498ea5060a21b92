package piecework

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/piecework-api/internal/domain"
	"github.com/jhoicas/piecework-api/internal/domain/entity"
	"github.com/jhoicas/piecework-api/internal/domain/piecework"
	"github.com/jhoicas/piecework-api/internal/domain/repository"
)

// AccrualUseCase registra capturas a destajo: registros nuevos o acumulación sobre el
// registro del mismo día (usuario, bodega, categoría).
type AccrualUseCase struct {
	store Store
	opts  Options
}

// NewAccrualUseCase construye el caso de uso.
func NewAccrualUseCase(store Store, opts Options) *AccrualUseCase {
	return &AccrualUseCase{store: store, opts: opts.withDefaults()}
}

// SubmitResult registros creados y acumulados por un envío.
type SubmitResult struct {
	Created []*entity.PieceWorkRecord
	Merged  []*entity.PieceWorkRecord
}

// itemGroup ítems de una misma categoría dentro de un envío; indices son sus posiciones.
type itemGroup struct {
	categoryID string
	indices    []int
	items      []entity.PieceWorkItem
}

func validateContext(sctx entity.SubmissionContext) error {
	if strings.TrimSpace(sctx.UserID) == "" {
		return domain.NewFieldError("user_id", "es requerido")
	}
	if strings.TrimSpace(sctx.WarehouseID) == "" {
		return domain.NewFieldError("warehouse_id", "es requerido")
	}
	if sctx.WorkDate.IsZero() {
		return domain.NewFieldError("work_date", "es requerido")
	}
	return nil
}

// SubmitNew crea un registro por ítem, en el orden recibido y dentro de una transacción.
// Si un ítem falla no queda ninguno guardado y el error es un *domain.BatchError.
func (uc *AccrualUseCase) SubmitNew(ctx context.Context, sctx entity.SubmissionContext, items []entity.PieceWorkItem) ([]*entity.PieceWorkRecord, error) {
	if err := validateContext(sctx); err != nil {
		return nil, err
	}
	if err := piecework.ValidateItems(items); err != nil {
		return nil, err
	}
	ctx, cancel := uc.opts.storeCtx(ctx)
	defer cancel()

	var created []*entity.PieceWorkRecord
	err := uc.store.Tx.Run(ctx, func(repos repository.Repositories) error {
		created = make([]*entity.PieceWorkRecord, 0, len(items))
		for i, item := range items {
			r, err := uc.create(ctx, repos, sctx, item)
			if err != nil {
				return &domain.BatchError{Index: i, Err: err}
			}
			created = append(created, r)
		}
		return nil
	})
	if err != nil {
		return nil, uc.opts.classify("records.submit_new", err)
	}
	uc.opts.bump(ctx)
	uc.opts.Metrics.ObserveSubmission(ModeNew, len(items))
	uc.opts.Logger.Info().
		Str("user_id", sctx.UserID).
		Str("warehouse_id", sctx.WarehouseID).
		Int("records", len(created)).
		Msg("registros a destajo creados")
	return created, nil
}

// SubmitWithAccumulate acumula los ítems sobre el registro existingID. Todos los ítems deben
// ser de la categoría del registro. Ante conflicto de versión reintenta hasta MergeRetries veces.
func (uc *AccrualUseCase) SubmitWithAccumulate(ctx context.Context, existingID string, items []entity.PieceWorkItem) (*entity.PieceWorkRecord, error) {
	if strings.TrimSpace(existingID) == "" {
		return nil, domain.NewFieldError("id", "es requerido")
	}
	if err := piecework.ValidateItems(items); err != nil {
		return nil, err
	}
	ctx, cancel := uc.opts.storeCtx(ctx)
	defer cancel()

	var merged *entity.PieceWorkRecord
	err := uc.withRetry(ctx, existingID, func(repos repository.Repositories) error {
		existing, err := repos.Records.GetForUpdate(ctx, existingID)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.ErrNotFound
		}
		for i, item := range items {
			if item.CategoryID != existing.CategoryID {
				return &domain.ValidationError{Index: i, Field: "category_id", Reason: "no corresponde al registro a acumular"}
			}
		}
		merged, err = uc.merge(ctx, repos, existing, items)
		return err
	})
	if err != nil {
		return nil, uc.opts.classify("records.accumulate", err)
	}
	uc.opts.bump(ctx)
	uc.opts.Metrics.ObserveSubmission(ModeAccumulate, len(items))
	uc.opts.Logger.Info().
		Str("record_id", merged.ID).
		Int64("quantity", merged.Quantity).
		Str("total_amount", merged.TotalAmount.String()).
		Msg("registro a destajo acumulado")
	return merged, nil
}

// Submit registra un envío completo. Con accumulate los ítems se agrupan por categoría y cada
// grupo se acumula sobre el registro del mismo día si existe; el resto se crea. Todo ocurre en
// una única transacción.
func (uc *AccrualUseCase) Submit(ctx context.Context, sctx entity.SubmissionContext, items []entity.PieceWorkItem, accumulate bool) (*SubmitResult, error) {
	if !accumulate {
		created, err := uc.SubmitNew(ctx, sctx, items)
		if err != nil {
			return nil, err
		}
		return &SubmitResult{Created: created, Merged: []*entity.PieceWorkRecord{}}, nil
	}
	if err := validateContext(sctx); err != nil {
		return nil, err
	}
	if err := piecework.ValidateItems(items); err != nil {
		return nil, err
	}
	groups := groupByCategory(items)

	ctx, cancel := uc.opts.storeCtx(ctx)
	defer cancel()

	var result *SubmitResult
	err := uc.withRetry(ctx, "", func(repos repository.Repositories) error {
		result = &SubmitResult{Created: []*entity.PieceWorkRecord{}, Merged: []*entity.PieceWorkRecord{}}
		for _, g := range groups {
			found, err := repos.Records.FindSameDay(ctx, sctx.UserID, sctx.WarehouseID, g.categoryID, sctx.WorkDate)
			if err != nil {
				return &domain.BatchError{Index: g.indices[0], Err: err}
			}
			if found == nil {
				for j, item := range g.items {
					r, err := uc.create(ctx, repos, sctx, item)
					if err != nil {
						return &domain.BatchError{Index: g.indices[j], Err: err}
					}
					result.Created = append(result.Created, r)
				}
				continue
			}
			existing, err := repos.Records.GetForUpdate(ctx, found.ID)
			if err != nil {
				return &domain.BatchError{Index: g.indices[0], Err: err}
			}
			if existing == nil {
				return &domain.BatchError{Index: g.indices[0], Err: domain.ErrNotFound}
			}
			merged, err := uc.merge(ctx, repos, existing, g.items)
			if err != nil {
				if errors.Is(err, domain.ErrConflict) {
					return err
				}
				return &domain.BatchError{Index: g.indices[0], Err: err}
			}
			result.Merged = append(result.Merged, merged)
		}
		return nil
	})
	if err != nil {
		return nil, uc.opts.classify("records.submit", err)
	}
	uc.opts.bump(ctx)
	if len(result.Created) > 0 {
		uc.opts.Metrics.ObserveSubmission(ModeNew, len(result.Created))
	}
	if len(result.Merged) > 0 {
		uc.opts.Metrics.ObserveSubmission(ModeAccumulate, len(result.Merged))
	}
	uc.opts.Logger.Info().
		Str("user_id", sctx.UserID).
		Str("warehouse_id", sctx.WarehouseID).
		Int("created", len(result.Created)).
		Int("merged", len(result.Merged)).
		Msg("envío a destajo registrado")
	return result, nil
}

// groupByCategory agrupa los ítems por categoría en orden de primera aparición.
func groupByCategory(items []entity.PieceWorkItem) []*itemGroup {
	index := make(map[string]*itemGroup)
	groups := make([]*itemGroup, 0)
	for i, item := range items {
		g, ok := index[item.CategoryID]
		if !ok {
			g = &itemGroup{categoryID: item.CategoryID}
			index[item.CategoryID] = g
			groups = append(groups, g)
		}
		g.indices = append(g.indices, i)
		g.items = append(g.items, item)
	}
	return groups
}

// FindSameDay registro existente para la tupla (usuario, bodega, categoría, día); nil si no hay.
func (uc *AccrualUseCase) FindSameDay(ctx context.Context, userID, warehouseID, categoryID string, workDate time.Time) (*entity.PieceWorkRecord, error) {
	if userID == "" || warehouseID == "" || categoryID == "" || workDate.IsZero() {
		return nil, domain.ErrInvalidInput
	}
	ctx, cancel := uc.opts.storeCtx(ctx)
	defer cancel()
	r, err := uc.store.Repos.Records.FindSameDay(ctx, userID, warehouseID, categoryID, entity.TruncateDate(workDate))
	if err != nil {
		return nil, uc.opts.classify("records.find_same_day", err)
	}
	return r, nil
}

// UpdateRecord reemplaza cantidades y precios de un registro (edición de gerente);
// los importes se recalculan a partir del ítem.
func (uc *AccrualUseCase) UpdateRecord(ctx context.Context, id string, item entity.PieceWorkItem) (*entity.PieceWorkRecord, error) {
	if err := piecework.ValidateItem(-1, item); err != nil {
		return nil, err
	}
	ctx, cancel := uc.opts.storeCtx(ctx)
	defer cancel()

	var updated *entity.PieceWorkRecord
	err := uc.withRetry(ctx, id, func(repos repository.Repositories) error {
		r, err := repos.Records.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if r == nil {
			return domain.ErrNotFound
		}
		expected := r.Version
		r.CategoryID = item.CategoryID
		piecework.ApplyItem(r, item)
		if err := piecework.CheckRecord(r); err != nil {
			return err
		}
		r.Version = expected + 1
		r.UpdatedAt = uc.opts.Now()
		if err := repos.Records.Update(ctx, r, expected); err != nil {
			return err
		}
		updated = r
		return nil
	})
	if err != nil {
		return nil, uc.opts.classify("records.update", err)
	}
	uc.opts.bump(ctx)
	return updated, nil
}

// DeleteRecord borra un registro.
func (uc *AccrualUseCase) DeleteRecord(ctx context.Context, id string) error {
	ctx, cancel := uc.opts.storeCtx(ctx)
	defer cancel()
	err := uc.store.Tx.Run(ctx, func(repos repository.Repositories) error {
		r, err := repos.Records.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if r == nil {
			return domain.ErrNotFound
		}
		return repos.Records.Delete(ctx, id)
	})
	if err != nil {
		return uc.opts.classify("records.delete", err)
	}
	uc.opts.bump(ctx)
	uc.opts.Logger.Info().Str("record_id", id).Msg("registro a destajo eliminado")
	return nil
}

// GetRecord devuelve (nil, nil) si el registro no existe.
func (uc *AccrualUseCase) GetRecord(ctx context.Context, id string) (*entity.PieceWorkRecord, error) {
	ctx, cancel := uc.opts.storeCtx(ctx)
	defer cancel()
	r, err := uc.store.Repos.Records.GetByID(ctx, id)
	if err != nil {
		return nil, uc.opts.classify("records.get", err)
	}
	return r, nil
}

// ListByUser registros de un usuario en el rango (límites nil no restringen).
func (uc *AccrualUseCase) ListByUser(ctx context.Context, userID string, rng entity.DateRange) ([]*entity.PieceWorkRecord, error) {
	if userID == "" {
		return nil, domain.NewFieldError("user_id", "es requerido")
	}
	return uc.list(ctx, repository.RecordFilter{UserID: userID, Range: rng})
}

// ListByWarehouse registros de una bodega en el rango.
func (uc *AccrualUseCase) ListByWarehouse(ctx context.Context, warehouseID string, rng entity.DateRange) ([]*entity.PieceWorkRecord, error) {
	if warehouseID == "" {
		return nil, domain.NewFieldError("warehouse_id", "es requerido")
	}
	return uc.list(ctx, repository.RecordFilter{WarehouseID: warehouseID, Range: rng})
}

// ListByUserAndWarehouse registros de un usuario en una bodega.
func (uc *AccrualUseCase) ListByUserAndWarehouse(ctx context.Context, userID, warehouseID string, rng entity.DateRange) ([]*entity.PieceWorkRecord, error) {
	if userID == "" {
		return nil, domain.NewFieldError("user_id", "es requerido")
	}
	if warehouseID == "" {
		return nil, domain.NewFieldError("warehouse_id", "es requerido")
	}
	return uc.list(ctx, repository.RecordFilter{UserID: userID, WarehouseID: warehouseID, Range: rng})
}

// ListAll todos los registros del rango.
func (uc *AccrualUseCase) ListAll(ctx context.Context, rng entity.DateRange) ([]*entity.PieceWorkRecord, error) {
	return uc.list(ctx, repository.RecordFilter{Range: rng})
}

func (uc *AccrualUseCase) list(ctx context.Context, filter repository.RecordFilter) ([]*entity.PieceWorkRecord, error) {
	ctx, cancel := uc.opts.storeCtx(ctx)
	defer cancel()
	list, err := uc.store.Repos.Records.List(ctx, filter)
	if err != nil {
		return nil, uc.opts.classify("records.list", err)
	}
	return list, nil
}

func (uc *AccrualUseCase) create(ctx context.Context, repos repository.Repositories, sctx entity.SubmissionContext, item entity.PieceWorkItem) (*entity.PieceWorkRecord, error) {
	r := piecework.NewRecord(uuid.New().String(), sctx, item, uc.opts.Now())
	if err := repos.Records.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// merge calcula la acumulación y la persiste con chequeo de versión.
func (uc *AccrualUseCase) merge(ctx context.Context, repos repository.Repositories, existing *entity.PieceWorkRecord, items []entity.PieceWorkItem) (*entity.PieceWorkRecord, error) {
	merged := piecework.Merge(existing, items, uc.opts.Now())
	if err := piecework.CheckRecord(merged); err != nil {
		return nil, err
	}
	merged.Version = existing.Version + 1
	if err := repos.Records.Update(ctx, merged, existing.Version); err != nil {
		return nil, err
	}
	return merged, nil
}

// withRetry ejecuta fn en una transacción y la repite mientras termine en ErrConflict.
func (uc *AccrualUseCase) withRetry(ctx context.Context, recordID string, fn func(repos repository.Repositories) error) error {
	var err error
	for attempt := 0; attempt <= uc.opts.MergeRetries; attempt++ {
		err = uc.store.Tx.Run(ctx, fn)
		if !errors.Is(err, domain.ErrConflict) {
			return err
		}
		uc.opts.Metrics.IncMergeConflict()
		uc.opts.Logger.Debug().Str("record_id", recordID).Int("attempt", attempt+1).Msg("conflicto de versión, reintentando")
	}
	return err
}
