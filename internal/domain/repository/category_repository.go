package repository

import (
	"context"

	"github.com/jhoicas/piecework-api/internal/domain/entity"
)

// CategoryRepository define el puerto de persistencia para Category (DIP).
type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	// GetByID devuelve (nil, nil) si no existe.
	GetByID(ctx context.Context, id string) (*entity.Category, error)
	Update(ctx context.Context, category *entity.Category) error
	// List ordena por created_at ascendente; activeOnly filtra is_active = true.
	List(ctx context.Context, activeOnly bool) ([]*entity.Category, error)
	ListByIDs(ctx context.Context, ids []string) ([]*entity.Category, error)
	Delete(ctx context.Context, id string) error
	// DeleteByIDs borra las categorías indicadas y devuelve cuántas filas eliminó.
	DeleteByIDs(ctx context.Context, ids []string) (int64, error)
}
