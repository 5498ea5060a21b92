package piecework

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/piecework-api/internal/domain"
	"github.com/jhoicas/piecework-api/internal/domain/entity"
)

// PriceScale decimales con los que se guardan los precios derivados de una acumulación.
// Los importes (Base/Upstairs/Sorting/Total) siempre son exactos.
const PriceScale = 6

// NewRecord construye un registro nuevo a partir de un ítem ya validado.
//
//	TotalAmount = Quantity*UnitPrice
//	            + (NeedUpstairs ? Quantity*UpstairsPrice : 0)
//	            + (NeedSorting  ? SortingQuantity*SortingUnitPrice : 0)
func NewRecord(id string, sctx entity.SubmissionContext, item entity.PieceWorkItem, now time.Time) *entity.PieceWorkRecord {
	r := &entity.PieceWorkRecord{
		ID:          id,
		UserID:      sctx.UserID,
		WarehouseID: sctx.WarehouseID,
		CategoryID:  item.CategoryID,
		WorkDate:    entity.TruncateDate(sctx.WorkDate),
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	ApplyItem(r, item)
	return r
}

// ApplyItem reemplaza cantidades, precios e importes de r con los del ítem (edición de un registro).
func ApplyItem(r *entity.PieceWorkRecord, item entity.PieceWorkItem) {
	qty := derefInt(item.Quantity)
	unit := derefDec(item.UnitPrice)

	r.Quantity = qty
	r.UnitPrice = unit
	r.BaseAmount = decimal.NewFromInt(qty).Mul(unit)

	r.NeedUpstairs = item.NeedUpstairs
	r.UpstairsPrice = decimal.Zero
	r.UpstairsAmount = decimal.Zero
	if item.NeedUpstairs {
		r.UpstairsPrice = derefDec(item.UpstairsPrice)
		r.UpstairsAmount = decimal.NewFromInt(qty).Mul(r.UpstairsPrice)
	}

	r.NeedSorting = item.NeedSorting
	r.SortingQuantity = 0
	r.SortingUnitPrice = decimal.Zero
	r.SortingAmount = decimal.Zero
	if item.NeedSorting {
		r.SortingQuantity = derefInt(item.SortingQuantity)
		r.SortingUnitPrice = derefDec(item.SortingUnitPrice)
		r.SortingAmount = decimal.NewFromInt(r.SortingQuantity).Mul(r.SortingUnitPrice)
	}

	r.Notes = strings.TrimSpace(item.Notes)
	r.TotalAmount = r.BaseAmount.Add(r.UpstairsAmount).Add(r.SortingAmount)
}

// Merge acumula ítems ya validados sobre un registro existente de la misma tupla y devuelve
// el registro resultante (existing no se modifica).
//
//  1. Cantidad combinada = existente + Σ ítems.
//  2. Importe base combinado = importe base existente + Σ cantidad*precio.
//  3. UnitPrice = importe base / cantidad combinada (promedio ponderado).
//  4. Importe de subida solo de ítems con NeedUpstairs; UpstairsPrice = importe / cantidad combinada.
//  5. Clasificación con su propia cantidad; SortingUnitPrice = importe / cantidad de clasificación.
//  6. TotalAmount = suma de los importes exactos, nunca de los precios redondeados.
func Merge(existing *entity.PieceWorkRecord, items []entity.PieceWorkItem, now time.Time) *entity.PieceWorkRecord {
	merged := *existing

	qty := existing.Quantity
	base := existing.BaseAmount
	upstairs := existing.UpstairsAmount
	sortingQty := existing.SortingQuantity
	sorting := existing.SortingAmount
	notes := []string{}
	if n := strings.TrimSpace(existing.Notes); n != "" {
		notes = append(notes, n)
	}

	for _, item := range items {
		q := derefInt(item.Quantity)
		qd := decimal.NewFromInt(q)
		qty += q
		base = base.Add(qd.Mul(derefDec(item.UnitPrice)))
		if item.NeedUpstairs {
			upstairs = upstairs.Add(qd.Mul(derefDec(item.UpstairsPrice)))
		}
		if item.NeedSorting {
			sq := derefInt(item.SortingQuantity)
			sortingQty += sq
			sorting = sorting.Add(decimal.NewFromInt(sq).Mul(derefDec(item.SortingUnitPrice)))
		}
		if n := strings.TrimSpace(item.Notes); n != "" {
			notes = append(notes, n)
		}
	}

	merged.Quantity = qty
	merged.BaseAmount = base
	merged.UpstairsAmount = upstairs
	merged.SortingQuantity = sortingQty
	merged.SortingAmount = sorting

	merged.UnitPrice = weightedPrice(base, qty)
	merged.UpstairsPrice = weightedPrice(upstairs, qty)
	merged.NeedUpstairs = upstairs.IsPositive()
	merged.SortingUnitPrice = weightedPrice(sorting, sortingQty)
	merged.NeedSorting = sorting.IsPositive()

	merged.TotalAmount = base.Add(upstairs).Add(sorting)
	merged.Notes = strings.Join(notes, "; ")
	merged.UpdatedAt = now
	return &merged
}

// weightedPrice divide amount entre qty y redondea a PriceScale; 0 si qty no es positiva.
func weightedPrice(amount decimal.Decimal, qty int64) decimal.Decimal {
	if qty <= 0 {
		return decimal.Zero
	}
	return amount.Div(decimal.NewFromInt(qty)).Round(PriceScale)
}

// CheckTotal verifica la invariante de importes de un registro.
func CheckTotal(r *entity.PieceWorkRecord) bool {
	return r.TotalAmount.Equal(r.BaseAmount.Add(r.UpstairsAmount).Add(r.SortingAmount))
}

// CheckRecord valida un registro calculado antes de persistirlo: cantidades dentro de
// (0, MaxQuantity] (una suma desbordada queda negativa) y total igual a la suma de importes.
func CheckRecord(r *entity.PieceWorkRecord) error {
	if r.Quantity <= 0 || r.Quantity > MaxQuantity {
		return domain.NewFieldError("quantity", reasonTooLarge)
	}
	if r.SortingQuantity < 0 || r.SortingQuantity > MaxQuantity {
		return domain.NewFieldError("sorting_quantity", reasonTooLarge)
	}
	if !CheckTotal(r) {
		return fmt.Errorf("registro %s: total %s distinto de la suma de importes", r.ID, r.TotalAmount)
	}
	return nil
}

func derefInt(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}

func derefDec(v *decimal.Decimal) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return *v
}
