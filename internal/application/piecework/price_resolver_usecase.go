package piecework

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/piecework-api/internal/domain"
	"github.com/jhoicas/piecework-api/internal/domain/entity"
	"github.com/jhoicas/piecework-api/internal/domain/piecework"
	"github.com/jhoicas/piecework-api/internal/domain/repository"
)

// PriceResolverUseCase resuelve el precio vigente de una categoría para un conductor.
type PriceResolverUseCase struct {
	prices repository.CategoryPriceRepository
	opts   Options
}

// NewPriceResolverUseCase construye el caso de uso.
func NewPriceResolverUseCase(prices repository.CategoryPriceRepository, opts Options) *PriceResolverUseCase {
	return &PriceResolverUseCase{prices: prices, opts: opts.withDefaults()}
}

// PriceQuote precio resuelto más el precio que aplica a la cantidad base según driverType.
// Resolved es nil cuando no hay filas aplicables: la captura manual queda desbloqueada.
type PriceQuote struct {
	Resolved     *piecework.ResolvedPrice
	DriverType   string
	AppliedPrice decimal.Decimal
	Locked       bool
}

// Resolve obtiene las filas de (bodega, categoría) y elige la vigente a la fecha asOf.
func (uc *PriceResolverUseCase) Resolve(ctx context.Context, warehouseID, categoryID, driverType string, asOf time.Time) (*PriceQuote, error) {
	if warehouseID == "" {
		return nil, domain.NewFieldError("warehouse_id", "es requerido")
	}
	if categoryID == "" {
		return nil, domain.NewFieldError("category_id", "es requerido")
	}
	if driverType != "" && !entity.IsValidDriverType(driverType) {
		return nil, domain.NewFieldError("driver_type", "debe ser driver_only o with_vehicle")
	}
	if asOf.IsZero() {
		asOf = uc.opts.Now()
	}

	ctx, cancel := uc.opts.storeCtx(ctx)
	defer cancel()
	rows, err := uc.prices.ListByWarehouseAndCategory(ctx, warehouseID, categoryID)
	if err != nil {
		return nil, uc.opts.classify("prices.resolve", err)
	}

	resolved := piecework.ResolvePrice(rows, asOf)
	return &PriceQuote{
		Resolved:     resolved,
		DriverType:   driverType,
		AppliedPrice: resolved.AppliedBasePrice(driverType),
		Locked:       resolved.Locked(),
	}, nil
}
