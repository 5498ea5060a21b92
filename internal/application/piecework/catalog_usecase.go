package piecework

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/piecework-api/internal/domain"
	"github.com/jhoicas/piecework-api/internal/domain/entity"
	"github.com/jhoicas/piecework-api/internal/domain/piecework"
	"github.com/jhoicas/piecework-api/internal/domain/repository"
)

// CatalogUseCase administra categorías a destajo y su configuración de precios por bodega.
type CatalogUseCase struct {
	store Store
	opts  Options
}

// NewCatalogUseCase construye el caso de uso.
func NewCatalogUseCase(store Store, opts Options) *CatalogUseCase {
	return &CatalogUseCase{store: store, opts: opts.withDefaults()}
}

// PriceInput entrada para crear o reemplazar un precio de categoría.
type PriceInput struct {
	WarehouseID   string
	CategoryID    string
	DriverType    string
	Price         decimal.Decimal
	EffectiveDate time.Time
}

// CleanupResult resultado de la limpieza de categorías sin precio.
type CleanupResult struct {
	Success      bool
	DeletedCount int64
}

// ListActive categorías activas ordenadas por fecha de creación.
func (uc *CatalogUseCase) ListActive(ctx context.Context) ([]*entity.Category, error) {
	return uc.list(ctx, true)
}

// ListAll todas las categorías ordenadas por fecha de creación.
func (uc *CatalogUseCase) ListAll(ctx context.Context) ([]*entity.Category, error) {
	return uc.list(ctx, false)
}

func (uc *CatalogUseCase) list(ctx context.Context, activeOnly bool) ([]*entity.Category, error) {
	ctx, cancel := uc.opts.storeCtx(ctx)
	defer cancel()
	list, err := uc.store.Repos.Categories.List(ctx, activeOnly)
	if err != nil {
		return nil, uc.opts.classify("categories.list", err)
	}
	return list, nil
}

// Create crea una categoría activa. El nombre es obligatorio.
func (uc *CatalogUseCase) Create(ctx context.Context, name, description string) (*entity.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewFieldError("name", "es requerido")
	}
	now := uc.opts.Now()
	c := &entity.Category{
		ID:          uuid.New().String(),
		Name:        name,
		Description: strings.TrimSpace(description),
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	ctx, cancel := uc.opts.storeCtx(ctx)
	defer cancel()
	if err := uc.store.Repos.Categories.Create(ctx, c); err != nil {
		return nil, uc.opts.classify("categories.create", err)
	}
	uc.opts.Logger.Info().Str("category_id", c.ID).Str("name", c.Name).Msg("categoría creada")
	return c, nil
}

// Update aplica una actualización parcial. Devuelve (nil, nil) si la categoría no existe.
func (uc *CatalogUseCase) Update(ctx context.Context, id string, patch entity.CategoryPatch) (*entity.Category, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, domain.NewFieldError("name", "es requerido")
	}
	ctx, cancel := uc.opts.storeCtx(ctx)
	defer cancel()

	var updated *entity.Category
	err := uc.store.Tx.Run(ctx, func(repos repository.Repositories) error {
		c, err := repos.Categories.GetByID(ctx, id)
		if err != nil || c == nil {
			return err
		}
		if patch.Name != nil {
			c.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Description != nil {
			c.Description = strings.TrimSpace(*patch.Description)
		}
		if patch.IsActive != nil {
			c.IsActive = *patch.IsActive
		}
		c.UpdatedAt = uc.opts.Now()
		if err := repos.Categories.Update(ctx, c); err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, uc.opts.classify("categories.update", err)
	}
	if updated != nil {
		uc.opts.bump(ctx)
	}
	return updated, nil
}

// Delete borra los precios de la categoría y luego la categoría, en una sola transacción.
func (uc *CatalogUseCase) Delete(ctx context.Context, id string) error {
	ctx, cancel := uc.opts.storeCtx(ctx)
	defer cancel()
	err := uc.store.Tx.Run(ctx, func(repos repository.Repositories) error {
		c, err := repos.Categories.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if c == nil {
			return domain.ErrNotFound
		}
		if err := repos.Prices.DeleteByCategory(ctx, id); err != nil {
			return err
		}
		return repos.Categories.Delete(ctx, id)
	})
	if err != nil {
		return uc.opts.classify("categories.delete", err)
	}
	uc.opts.bump(ctx)
	uc.opts.Logger.Info().Str("category_id", id).Msg("categoría eliminada")
	return nil
}

// FindUnused categorías sin ninguna fila de precio en ninguna bodega (no borra nada).
func (uc *CatalogUseCase) FindUnused(ctx context.Context) ([]*entity.Category, error) {
	ctx, cancel := uc.opts.storeCtx(ctx)
	defer cancel()
	unused, err := findUnused(ctx, uc.store.Repos)
	if err != nil {
		return nil, uc.opts.classify("categories.find_unused", err)
	}
	return unused, nil
}

// DeleteUnused borra las categorías sin ninguna fila de precio. El criterio es la configuración
// de precios, no la existencia de registros a destajo que las referencien.
func (uc *CatalogUseCase) DeleteUnused(ctx context.Context) (*CleanupResult, error) {
	ctx, cancel := uc.opts.storeCtx(ctx)
	defer cancel()

	var deleted int64
	err := uc.store.Tx.Run(ctx, func(repos repository.Repositories) error {
		unused, err := findUnused(ctx, repos)
		if err != nil || len(unused) == 0 {
			return err
		}
		ids := make([]string, len(unused))
		for i, c := range unused {
			ids[i] = c.ID
		}
		deleted, err = repos.Categories.DeleteByIDs(ctx, ids)
		return err
	})
	if err != nil {
		return &CleanupResult{Success: false}, uc.opts.classify("categories.delete_unused", err)
	}
	if deleted > 0 {
		uc.opts.bump(ctx)
	}
	uc.opts.Logger.Info().Int64("deleted", deleted).Msg("limpieza de categorías sin precio")
	return &CleanupResult{Success: true, DeletedCount: deleted}, nil
}

func findUnused(ctx context.Context, repos repository.Repositories) ([]*entity.Category, error) {
	all, err := repos.Categories.List(ctx, false)
	if err != nil {
		return nil, err
	}
	priced, err := repos.Prices.PricedCategoryIDs(ctx, "")
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(priced))
	for _, id := range priced {
		set[id] = struct{}{}
	}
	unused := make([]*entity.Category, 0)
	for _, c := range all {
		if _, ok := set[c.ID]; !ok {
			unused = append(unused, c)
		}
	}
	return unused, nil
}

// ListPricesByWarehouse precios configurados en una bodega, con nombre de categoría.
func (uc *CatalogUseCase) ListPricesByWarehouse(ctx context.Context, warehouseID string) ([]*entity.CategoryPrice, error) {
	if strings.TrimSpace(warehouseID) == "" {
		return nil, domain.NewFieldError("warehouse_id", "es requerido")
	}
	ctx, cancel := uc.opts.storeCtx(ctx)
	defer cancel()
	list, err := uc.store.Repos.Prices.ListByWarehouse(ctx, warehouseID)
	if err != nil {
		return nil, uc.opts.classify("prices.list", err)
	}
	return list, nil
}

// GetPrices filas de precio de una categoría en una bodega (todas las fechas y tipos).
func (uc *CatalogUseCase) GetPrices(ctx context.Context, warehouseID, categoryID string) ([]*entity.CategoryPrice, error) {
	if warehouseID == "" {
		return nil, domain.NewFieldError("warehouse_id", "es requerido")
	}
	if categoryID == "" {
		return nil, domain.NewFieldError("category_id", "es requerido")
	}
	ctx, cancel := uc.opts.storeCtx(ctx)
	defer cancel()
	list, err := uc.store.Repos.Prices.ListByWarehouseAndCategory(ctx, warehouseID, categoryID)
	if err != nil {
		return nil, uc.opts.classify("prices.get", err)
	}
	return list, nil
}

// UpsertPrice crea o reemplaza el precio de (bodega, categoría, tipo de conductor, fecha efectiva).
func (uc *CatalogUseCase) UpsertPrice(ctx context.Context, in PriceInput) (*entity.CategoryPrice, error) {
	if err := validatePriceInput(-1, in); err != nil {
		return nil, err
	}
	ctx, cancel := uc.opts.storeCtx(ctx)
	defer cancel()

	var saved *entity.CategoryPrice
	err := uc.store.Tx.Run(ctx, func(repos repository.Repositories) error {
		p, err := uc.upsert(ctx, repos, in)
		saved = p
		return err
	})
	if err != nil {
		return nil, uc.opts.classify("prices.upsert", err)
	}
	uc.opts.bump(ctx)
	return saved, nil
}

// BatchUpsertPrices guarda varios precios en una transacción: o se guardan todos o ninguno.
func (uc *CatalogUseCase) BatchUpsertPrices(ctx context.Context, inputs []PriceInput) ([]*entity.CategoryPrice, error) {
	if len(inputs) == 0 {
		return nil, domain.NewFieldError("prices", "es requerido")
	}
	for i, in := range inputs {
		if err := validatePriceInput(i, in); err != nil {
			return nil, err
		}
	}
	ctx, cancel := uc.opts.storeCtx(ctx)
	defer cancel()

	saved := make([]*entity.CategoryPrice, 0, len(inputs))
	err := uc.store.Tx.Run(ctx, func(repos repository.Repositories) error {
		for i, in := range inputs {
			p, err := uc.upsert(ctx, repos, in)
			if err != nil {
				return &domain.BatchError{Index: i, Err: err}
			}
			saved = append(saved, p)
		}
		return nil
	})
	if err != nil {
		return nil, uc.opts.classify("prices.batch_upsert", err)
	}
	uc.opts.bump(ctx)
	uc.opts.Logger.Info().Int("count", len(saved)).Msg("precios actualizados en lote")
	return saved, nil
}

func (uc *CatalogUseCase) upsert(ctx context.Context, repos repository.Repositories, in PriceInput) (*entity.CategoryPrice, error) {
	c, err := repos.Categories.GetByID(ctx, in.CategoryID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	now := uc.opts.Now()
	p := &entity.CategoryPrice{
		ID:            uuid.New().String(),
		WarehouseID:   in.WarehouseID,
		CategoryID:    in.CategoryID,
		CategoryName:  c.Name,
		Price:         in.Price,
		DriverType:    in.DriverType,
		EffectiveDate: entity.TruncateDate(in.EffectiveDate),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := repos.Prices.Upsert(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// DeletePrice borra una fila de precio.
func (uc *CatalogUseCase) DeletePrice(ctx context.Context, id string) error {
	ctx, cancel := uc.opts.storeCtx(ctx)
	defer cancel()
	err := uc.store.Tx.Run(ctx, func(repos repository.Repositories) error {
		p, err := repos.Prices.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		return repos.Prices.Delete(ctx, id)
	})
	if err != nil {
		return uc.opts.classify("prices.delete", err)
	}
	uc.opts.bump(ctx)
	return nil
}

func validatePriceInput(index int, in PriceInput) error {
	fail := func(field, reason string) error {
		return &domain.ValidationError{Index: index, Field: field, Reason: reason}
	}
	if strings.TrimSpace(in.WarehouseID) == "" {
		return fail("warehouse_id", "es requerido")
	}
	if strings.TrimSpace(in.CategoryID) == "" {
		return fail("category_id", "es requerido")
	}
	if !entity.IsValidDriverType(in.DriverType) {
		return fail("driver_type", "debe ser driver_only o with_vehicle")
	}
	if err := piecework.ValidatePrice("price", in.Price); err != nil {
		if ve, ok := err.(*domain.ValidationError); ok {
			ve.Index = index
		}
		return err
	}
	if in.EffectiveDate.IsZero() {
		return fail("effective_date", "es requerido")
	}
	return nil
}
