package entity

import "github.com/shopspring/decimal"

// UnknownCategoryName nombre mostrado cuando la categoría de un registro ya no existe.
const UnknownCategoryName = "unknown"

// Stats estadísticas calculadas (no persistidas) de registros a destajo.
type Stats struct {
	TotalOrders   int             `json:"total_orders"`
	TotalQuantity int64           `json:"total_quantity"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	ByCategory    []CategoryStats `json:"by_category"`
}

// CategoryStats acumulado de una categoría.
type CategoryStats struct {
	CategoryID   string          `json:"category_id"`
	CategoryName string          `json:"category_name"`
	Quantity     int64           `json:"quantity"`
	Amount       decimal.Decimal `json:"amount"`
}

// EmptyStats valor cero con ByCategory no nil (se serializa como []).
func EmptyStats() *Stats {
	return &Stats{TotalAmount: decimal.Zero, ByCategory: []CategoryStats{}}
}

// DriverSummary totales de un conductor para el reporte del gerente.
type DriverSummary struct {
	UserID        string          `json:"user_id"`
	TotalQuantity int64           `json:"total_quantity"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	RecordCount   int             `json:"record_count"`
	WarehouseIDs  []string        `json:"warehouse_ids"`
}
