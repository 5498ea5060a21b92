// Package memory implementa los repositorios a destajo en memoria. Se usa en tests y con
// DB_DRIVER=memory; las transacciones se serializan y se revierten restaurando una copia.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/piecework-api/internal/domain/entity"
	"github.com/jhoicas/piecework-api/internal/domain/repository"
)

type state struct {
	categories map[string]*entity.Category
	prices     map[string]*entity.CategoryPrice
	records    map[string]*entity.PieceWorkRecord
	// seq orden de inserción, desempata listados con el mismo created_at.
	seq   int64
	order map[string]int64
}

func newState() *state {
	return &state{
		categories: make(map[string]*entity.Category),
		prices:     make(map[string]*entity.CategoryPrice),
		records:    make(map[string]*entity.PieceWorkRecord),
		order:      make(map[string]int64),
	}
}

func (st *state) clone() *state {
	out := newState()
	for k, v := range st.categories {
		c := *v
		out.categories[k] = &c
	}
	for k, v := range st.prices {
		p := *v
		out.prices[k] = &p
	}
	for k, v := range st.records {
		r := *v
		out.records[k] = &r
	}
	for k, v := range st.order {
		out.order[k] = v
	}
	out.seq = st.seq
	return out
}

func (st *state) touch(id string) {
	if _, ok := st.order[id]; ok {
		return
	}
	st.seq++
	st.order[id] = st.seq
}

type fault struct {
	remaining int
	err       error
}

// Store almacenamiento en memoria con semántica transaccional.
type Store struct {
	mu     sync.Mutex
	data   *state
	faults map[string]*fault
}

// NewStore crea un almacenamiento vacío.
func NewStore() *Store {
	return &Store{data: newState(), faults: make(map[string]*fault)}
}

// Repositories repositorios fuera de transacción; cada llamada es atómica por sí sola.
func (s *Store) Repositories() repository.Repositories {
	return s.bind(false)
}

// Run ejecuta fn en una transacción. Si fn devuelve error el estado vuelve al de antes de Run.
func (s *Store) Run(ctx context.Context, fn func(repos repository.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.data.clone()
	if err := fn(s.bind(true)); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

// FailOn hace que la llamada número n (desde 1) a op devuelva err, por ejemplo
// FailOn("records.create", 2, err). Solo para tests.
func (s *Store) FailOn(op string, n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[op] = &fault{remaining: n, err: err}
}

// fail se invoca con s.mu tomado.
func (s *Store) fail(op string) error {
	f, ok := s.faults[op]
	if !ok {
		return nil
	}
	f.remaining--
	if f.remaining > 0 {
		return nil
	}
	delete(s.faults, op)
	return f.err
}

func (s *Store) bind(inTx bool) repository.Repositories {
	return repository.Repositories{
		Categories: &categoryRepo{s: s, inTx: inTx},
		Prices:     &priceRepo{s: s, inTx: inTx},
		Records:    &recordRepo{s: s, inTx: inTx},
	}
}

// do ejecuta fn sobre el estado; fuera de transacción toma el lock del store.
func (s *Store) do(ctx context.Context, inTx bool, op string, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !inTx {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	if err := s.fail(op); err != nil {
		return err
	}
	return fn(s.data)
}
