package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PieceWorkRecord registro de trabajo a destajo de un conductor para una bodega/categoría/día.
//
// BaseAmount, UpstairsAmount y SortingAmount son las sumas exactas acumuladas; los precios
// unitarios se derivan de ellas y pueden ser aproximaciones después de una acumulación.
// Invariante: TotalAmount = BaseAmount + UpstairsAmount + SortingAmount.
type PieceWorkRecord struct {
	ID               string
	UserID           string
	WarehouseID      string
	CategoryID       string
	WorkDate         time.Time
	Quantity         int64
	UnitPrice        decimal.Decimal
	NeedUpstairs     bool
	UpstairsPrice    decimal.Decimal
	NeedSorting      bool
	SortingQuantity  int64
	SortingUnitPrice decimal.Decimal
	BaseAmount       decimal.Decimal
	UpstairsAmount   decimal.Decimal
	SortingAmount    decimal.Decimal
	TotalAmount      decimal.Decimal
	Notes            string
	Version          int64 // token de concurrencia optimista, se incrementa en cada update
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// SameContext indica si el registro pertenece a la tupla (usuario, bodega, categoría, día).
func (r *PieceWorkRecord) SameContext(userID, warehouseID, categoryID string, workDate time.Time) bool {
	return r.UserID == userID &&
		r.WarehouseID == warehouseID &&
		r.CategoryID == categoryID &&
		SameDate(r.WorkDate, workDate)
}

// PieceWorkItem entrada de captura. Los punteros modelan campos requeridos.
type PieceWorkItem struct {
	CategoryID       string
	Quantity         *int64
	UnitPrice        *decimal.Decimal
	NeedUpstairs     bool
	UpstairsPrice    *decimal.Decimal
	NeedSorting      bool
	SortingQuantity  *int64
	SortingUnitPrice *decimal.Decimal
	Notes            string
}

// SubmissionContext datos comunes a todos los ítems de un envío.
type SubmissionContext struct {
	UserID      string
	WarehouseID string
	WorkDate    time.Time
}
