package repository

import (
	"context"

	"github.com/jhoicas/piecework-api/internal/domain/entity"
)

// CategoryPriceRepository define el puerto de persistencia para CategoryPrice.
type CategoryPriceRepository interface {
	// Upsert inserta o reemplaza el precio de (bodega, categoría, tipo de conductor, fecha efectiva).
	Upsert(ctx context.Context, price *entity.CategoryPrice) error
	GetByID(ctx context.Context, id string) (*entity.CategoryPrice, error)
	ListByWarehouse(ctx context.Context, warehouseID string) ([]*entity.CategoryPrice, error)
	ListByWarehouseAndCategory(ctx context.Context, warehouseID, categoryID string) ([]*entity.CategoryPrice, error)
	// PricedCategoryIDs devuelve los ids de categoría con al menos una fila de precio.
	// warehouseID vacío considera todas las bodegas.
	PricedCategoryIDs(ctx context.Context, warehouseID string) ([]string, error)
	Delete(ctx context.Context, id string) error
	DeleteByCategory(ctx context.Context, categoryID string) error
}
