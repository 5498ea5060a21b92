package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/piecework-api/internal/application/piecework"
	"github.com/jhoicas/piecework-api/internal/domain/repository"
)

var _ piecework.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(repos repository.Repositories) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return wrapErr("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewRepositories(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return wrapErr("commit transaction", err)
	}
	return nil
}

// NewRepositories repositorios sobre q (pool o tx).
func NewRepositories(q Querier) repository.Repositories {
	return repository.Repositories{
		Categories: NewCategoryRepository(q),
		Prices:     NewCategoryPriceRepository(q),
		Records:    NewPieceWorkRecordRepository(q),
	}
}

// NewStore Store de la aplicación respaldado por el pool.
func NewStore(pool *pgxpool.Pool) piecework.Store {
	return piecework.Store{Repos: NewRepositories(pool), Tx: NewTxRunner(pool)}
}
