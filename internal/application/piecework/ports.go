package piecework

import (
	"context"
	"time"

	"github.com/jhoicas/piecework-api/internal/domain/entity"
	"github.com/jhoicas/piecework-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace rollback de todo lo escrito.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos repository.Repositories) error) error
}

// Store acceso al almacenamiento: repositorios fuera de transacción y el TxRunner.
type Store struct {
	Repos repository.Repositories
	Tx    TxRunner
}

// StatsCache caché de estadísticas con invalidación por versión global.
type StatsCache interface {
	BuildKey(ctx context.Context, parts ...string) (string, error)
	FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error
	Bump(ctx context.Context) error
}

// Metrics contadores operativos del motor a destajo.
type Metrics interface {
	ObserveSubmission(mode string, items int)
	IncMergeConflict()
	ObserveStats(cacheHit bool)
	IncStoreError(op string)
}

// Modos de envío reportados a Metrics.
const (
	ModeNew        = "new"
	ModeAccumulate = "accumulate"
)

// ReportData datos de un reporte exportable de una bodega.
type ReportData struct {
	WarehouseID   string
	Range         entity.DateRange
	Records       []*entity.PieceWorkRecord
	CategoryNames map[string]string
	Stats         *entity.Stats
	Drivers       []entity.DriverSummary
	GeneratedAt   time.Time
}

// ReportRenderer genera el archivo de un reporte en un formato concreto (xlsx, pdf).
type ReportRenderer interface {
	Format() string
	ContentType() string
	Render(ctx context.Context, data *ReportData) ([]byte, error)
}
