package repository

import (
	"context"
	"time"

	"github.com/jhoicas/piecework-api/internal/domain/entity"
)

// RecordFilter filtros de consulta de registros a destajo (campos vacíos no filtran).
type RecordFilter struct {
	UserID      string
	WarehouseID string
	CategoryID  string
	Range       entity.DateRange
}

// PieceWorkRecordRepository define el puerto de persistencia para PieceWorkRecord.
type PieceWorkRecordRepository interface {
	Create(ctx context.Context, record *entity.PieceWorkRecord) error
	GetByID(ctx context.Context, id string) (*entity.PieceWorkRecord, error)
	// GetForUpdate obtiene el registro y bloquea la fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.PieceWorkRecord, error)
	// FindSameDay busca el registro de la tupla (usuario, bodega, categoría, día); nil si no hay.
	FindSameDay(ctx context.Context, userID, warehouseID, categoryID string, workDate time.Time) (*entity.PieceWorkRecord, error)
	// Update persiste el registro si su versión almacenada es expectedVersion; si no, ErrConflict.
	Update(ctx context.Context, record *entity.PieceWorkRecord, expectedVersion int64) error
	// List ordena por work_date DESC, created_at DESC.
	List(ctx context.Context, filter RecordFilter) ([]*entity.PieceWorkRecord, error)
	Delete(ctx context.Context, id string) error
}

// Repositories agrupa los repositorios atados a una misma transacción.
type Repositories struct {
	Categories CategoryRepository
	Prices     CategoryPriceRepository
	Records    PieceWorkRecordRepository
}
