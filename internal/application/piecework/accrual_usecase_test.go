package piecework_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apppw "github.com/jhoicas/piecework-api/internal/application/piecework"
	"github.com/jhoicas/piecework-api/internal/domain"
	"github.com/jhoicas/piecework-api/internal/domain/entity"
	"github.com/jhoicas/piecework-api/internal/domain/piecework"
)

// ---------------------------------------------------------------------------
// SubmitNew
// ---------------------------------------------------------------------------

func TestSubmitNew_CreaRegistrosEnOrden(t *testing.T) {
	f := newFixture()
	uc := apppw.NewAccrualUseCase(f.store, f.opts)
	ctx := context.Background()

	up := item("cat-2", 4, "2.50")
	up.NeedUpstairs = true
	up.UpstairsPrice = dec("1")

	created, err := uc.SubmitNew(ctx, sctx("u-1", "wh-1", "2024-07-01"), []entity.PieceWorkItem{item("cat-1", 10, "1.10"), up})
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, "cat-1", created[0].CategoryID)
	decEq(t, "11", created[0].TotalAmount)
	decEq(t, "14", created[1].TotalAmount)

	stored, err := uc.ListByUser(ctx, "u-1", entity.DateRange{})
	require.NoError(t, err)
	assert.Len(t, stored, 2)
	for _, r := range stored {
		assert.True(t, piecework.CheckTotal(r))
	}
	assert.Equal(t, 2, f.metrics.submissions[apppw.ModeNew])
	assert.Equal(t, 1, f.cache.bumps)
}

func TestSubmitNew_ValidacionAntesDelAlmacenamiento(t *testing.T) {
	f := newFixture()
	uc := apppw.NewAccrualUseCase(f.store, f.opts)
	boom := errors.New("no debería llamarse")
	f.mem.FailOn("records.create", 1, boom)

	_, err := uc.SubmitNew(context.Background(), sctx("u-1", "wh-1", "2024-07-01"),
		[]entity.PieceWorkItem{item("cat-1", 1, "1"), item("cat-1", 0, "1")})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.NotErrorIs(t, err, boom)
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, 1, ve.Index)
	assert.Equal(t, "quantity", ve.Field)

	_, err = uc.SubmitNew(context.Background(), sctx("u-1", "wh-1", "2024-07-01"),
		[]entity.PieceWorkItem{item("cat-1", 1, "1.999")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSubmitNew_ContextoIncompleto(t *testing.T) {
	f := newFixture()
	uc := apppw.NewAccrualUseCase(f.store, f.opts)
	_, err := uc.SubmitNew(context.Background(), entity.SubmissionContext{UserID: "u-1"}, []entity.PieceWorkItem{item("cat-1", 1, "1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// Si un ítem falla al guardarse, el lote completo se revierte.
func TestSubmitNew_LoteSeRevierte(t *testing.T) {
	f := newFixture()
	uc := apppw.NewAccrualUseCase(f.store, f.opts)
	ctx := context.Background()
	boom := errors.New("insert falló")
	f.mem.FailOn("records.create", 2, boom)

	_, err := uc.SubmitNew(ctx, sctx("u-1", "wh-1", "2024-07-01"),
		[]entity.PieceWorkItem{item("cat-1", 1, "1"), item("cat-2", 1, "1"), item("cat-3", 1, "1")})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPartialFailure)
	assert.ErrorIs(t, err, boom)
	var be *domain.BatchError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, 1, be.Index)

	stored, err := uc.ListAll(ctx, entity.DateRange{})
	require.NoError(t, err)
	assert.Empty(t, stored)
	assert.Equal(t, 0, f.cache.bumps)
}

// Una caída del almacenamiento dentro del lote es transitoria, no un fallo parcial.
func TestSubmitNew_CaidaDelStoreEsTransitoria(t *testing.T) {
	f := newFixture()
	uc := apppw.NewAccrualUseCase(f.store, f.opts)
	f.mem.FailOn("records.create", 1, context.DeadlineExceeded)

	_, err := uc.SubmitNew(context.Background(), sctx("u-1", "wh-1", "2024-07-01"),
		[]entity.PieceWorkItem{item("cat-1", 1, "1"), item("cat-2", 1, "1")})

	assert.ErrorIs(t, err, domain.ErrTransient)
	assert.NotErrorIs(t, err, domain.ErrPartialFailure)
	assert.Equal(t, 1, f.metrics.storeErrors)
}

// ---------------------------------------------------------------------------
// SubmitWithAccumulate
// ---------------------------------------------------------------------------

func TestSubmitWithAccumulate_PromedioYTotal(t *testing.T) {
	f := newFixture()
	uc := apppw.NewAccrualUseCase(f.store, f.opts)
	ctx := context.Background()

	created, err := uc.SubmitNew(ctx, sctx("u-1", "wh-1", "2024-07-01"), []entity.PieceWorkItem{item("cat-1", 100, "10")})
	require.NoError(t, err)

	merged, err := uc.SubmitWithAccumulate(ctx, created[0].ID, []entity.PieceWorkItem{item("cat-1", 50, "13")})
	require.NoError(t, err)
	assert.Equal(t, created[0].ID, merged.ID)
	assert.Equal(t, int64(150), merged.Quantity)
	decEq(t, "11", merged.UnitPrice)
	decEq(t, "1650", merged.TotalAmount)
	assert.Equal(t, int64(2), merged.Version)

	all, err := uc.ListAll(ctx, entity.DateRange{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSubmitWithAccumulate_Errores(t *testing.T) {
	f := newFixture()
	uc := apppw.NewAccrualUseCase(f.store, f.opts)
	ctx := context.Background()

	_, err := uc.SubmitWithAccumulate(ctx, "no-existe", []entity.PieceWorkItem{item("cat-1", 1, "1")})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	created, err := uc.SubmitNew(ctx, sctx("u-1", "wh-1", "2024-07-01"), []entity.PieceWorkItem{item("cat-1", 1, "1")})
	require.NoError(t, err)
	_, err = uc.SubmitWithAccumulate(ctx, created[0].ID, []entity.PieceWorkItem{item("cat-2", 1, "1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSubmitWithAccumulate_ReintentaConflicto(t *testing.T) {
	f := newFixture()
	uc := apppw.NewAccrualUseCase(f.store, f.opts)
	ctx := context.Background()

	created, err := uc.SubmitNew(ctx, sctx("u-1", "wh-1", "2024-07-01"), []entity.PieceWorkItem{item("cat-1", 1, "1")})
	require.NoError(t, err)
	f.mem.FailOn("records.update", 1, domain.ErrConflict)

	merged, err := uc.SubmitWithAccumulate(ctx, created[0].ID, []entity.PieceWorkItem{item("cat-1", 1, "1")})
	require.NoError(t, err)
	assert.Equal(t, int64(2), merged.Quantity)
	assert.Equal(t, 1, f.metrics.conflicts)
}

// Acumulaciones concurrentes sobre el mismo registro no pierden cantidad.
func TestSubmitWithAccumulate_Concurrente(t *testing.T) {
	f := newFixture()
	uc := apppw.NewAccrualUseCase(f.store, f.opts)
	ctx := context.Background()

	created, err := uc.SubmitNew(ctx, sctx("u-1", "wh-1", "2024-07-01"), []entity.PieceWorkItem{item("cat-1", 10, "1")})
	require.NoError(t, err)

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.SubmitWithAccumulate(ctx, created[0].ID, []entity.PieceWorkItem{item("cat-1", 1, "0.50")})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	final, err := uc.GetRecord(ctx, created[0].ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10+workers), final.Quantity)
	decEq(t, "20", final.TotalAmount)
	assert.Equal(t, int64(1+workers), final.Version)
}

// ---------------------------------------------------------------------------
// Submit (flujo del formulario)
// ---------------------------------------------------------------------------

// Una acumulación que supera el tope de cantidad se rechaza y el registro queda intacto.
func TestSubmitWithAccumulate_TopeDeCantidad(t *testing.T) {
	f := newFixture()
	uc := apppw.NewAccrualUseCase(f.store, f.opts)
	ctx := context.Background()
	f.record(t, "r-1", "u-1", "cat-1", piecework.MaxQuantity, "100", "2024-07-01")

	_, err := uc.SubmitWithAccumulate(ctx, "r-1", []entity.PieceWorkItem{item("cat-1", 1, "1")})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	stored, err := uc.GetRecord(ctx, "r-1")
	require.NoError(t, err)
	assert.Equal(t, piecework.MaxQuantity, stored.Quantity)
	assert.Equal(t, int64(1), stored.Version)
}

func TestSubmit_AcumulaOCrearPorCategoria(t *testing.T) {
	f := newFixture()
	uc := apppw.NewAccrualUseCase(f.store, f.opts)
	ctx := context.Background()
	c := sctx("u-1", "wh-1", "2024-07-01")

	_, err := uc.SubmitNew(ctx, c, []entity.PieceWorkItem{item("cat-1", 10, "1")})
	require.NoError(t, err)

	res, err := uc.Submit(ctx, c, []entity.PieceWorkItem{
		item("cat-1", 5, "1"),
		item("cat-2", 3, "2"),
		item("cat-1", 5, "1"),
	}, true)
	require.NoError(t, err)
	require.Len(t, res.Merged, 1)
	require.Len(t, res.Created, 1)
	assert.Equal(t, int64(20), res.Merged[0].Quantity)
	assert.Equal(t, "cat-2", res.Created[0].CategoryID)

	same, err := uc.FindSameDay(ctx, "u-1", "wh-1", "cat-2", day("2024-07-01"))
	require.NoError(t, err)
	require.NotNil(t, same)
	assert.Equal(t, res.Created[0].ID, same.ID)

	other, err := uc.FindSameDay(ctx, "u-1", "wh-1", "cat-1", day("2024-07-02"))
	require.NoError(t, err)
	assert.Nil(t, other)
}

func TestSubmit_SinAcumularCreaDuplicado(t *testing.T) {
	f := newFixture()
	uc := apppw.NewAccrualUseCase(f.store, f.opts)
	ctx := context.Background()
	c := sctx("u-1", "wh-1", "2024-07-01")

	_, err := uc.Submit(ctx, c, []entity.PieceWorkItem{item("cat-1", 1, "1")}, false)
	require.NoError(t, err)
	res, err := uc.Submit(ctx, c, []entity.PieceWorkItem{item("cat-1", 1, "1")}, false)
	require.NoError(t, err)
	assert.Len(t, res.Created, 1)
	assert.Empty(t, res.Merged)

	all, err := uc.ListByUserAndWarehouse(ctx, "u-1", "wh-1", entity.DateRange{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

// ---------------------------------------------------------------------------
// Mantenimiento y consultas
// ---------------------------------------------------------------------------

func TestUpdateRecord_RecalculaImportes(t *testing.T) {
	f := newFixture()
	uc := apppw.NewAccrualUseCase(f.store, f.opts)
	ctx := context.Background()

	created, err := uc.SubmitNew(ctx, sctx("u-1", "wh-1", "2024-07-01"), []entity.PieceWorkItem{item("cat-1", 10, "1")})
	require.NoError(t, err)

	edit := item("cat-1", 3, "2")
	edit.NeedSorting = true
	edit.SortingQuantity = i64(2)
	edit.SortingUnitPrice = dec("0.25")
	updated, err := uc.UpdateRecord(ctx, created[0].ID, edit)
	require.NoError(t, err)
	decEq(t, "6.5", updated.TotalAmount)
	assert.True(t, piecework.CheckTotal(updated))

	_, err = uc.UpdateRecord(ctx, "no-existe", edit)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteRecord(t *testing.T) {
	f := newFixture()
	uc := apppw.NewAccrualUseCase(f.store, f.opts)
	ctx := context.Background()

	created, err := uc.SubmitNew(ctx, sctx("u-1", "wh-1", "2024-07-01"), []entity.PieceWorkItem{item("cat-1", 1, "1")})
	require.NoError(t, err)
	require.NoError(t, uc.DeleteRecord(ctx, created[0].ID))
	assert.ErrorIs(t, uc.DeleteRecord(ctx, created[0].ID), domain.ErrNotFound)

	got, err := uc.GetRecord(ctx, created[0].ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

// Solo fecha de inicio: todos los registros desde esa fecha, sin tope.
func TestListByUser_RangoAbierto(t *testing.T) {
	f := newFixture()
	uc := apppw.NewAccrualUseCase(f.store, f.opts)
	ctx := context.Background()
	for _, d := range []string{"2024-01-01", "2024-06-01", "2030-01-01"} {
		_, err := uc.SubmitNew(ctx, sctx("u-1", "wh-1", d), []entity.PieceWorkItem{item("cat-1", 1, "1")})
		require.NoError(t, err)
	}

	all, err := uc.ListByUser(ctx, "u-1", entity.DateRange{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	from := day("2024-06-01")
	since, err := uc.ListByUser(ctx, "u-1", entity.DateRange{From: &from})
	require.NoError(t, err)
	require.Len(t, since, 2)
	assert.True(t, since[0].WorkDate.After(since[1].WorkDate))
}

func TestList_FallaDeAlmacenamientoEsTransitoria(t *testing.T) {
	f := newFixture()
	uc := apppw.NewAccrualUseCase(f.store, f.opts)
	f.mem.FailOn("records.list", 1, context.DeadlineExceeded)

	_, err := uc.ListByWarehouse(context.Background(), "wh-1", entity.DateRange{})
	assert.ErrorIs(t, err, domain.ErrTransient)
	assert.Equal(t, 1, f.metrics.storeErrors)
}
