package piecework

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/piecework-api/internal/domain/entity"
)

// CategoryIDs devuelve los ids de categoría referenciados, sin repetir y en orden de aparición.
func CategoryIDs(records []*entity.PieceWorkRecord) []string {
	seen := make(map[string]struct{}, len(records))
	ids := make([]string, 0, len(records))
	for _, r := range records {
		if _, ok := seen[r.CategoryID]; ok {
			continue
		}
		seen[r.CategoryID] = struct{}{}
		ids = append(ids, r.CategoryID)
	}
	return ids
}

// Aggregate calcula totales y acumulados por categoría.
// Si la bodega no tiene ninguna categoría con precio devuelve estadísticas en cero aunque
// existan registros. ByCategory conserva el orden de primera aparición en records.
func Aggregate(records []*entity.PieceWorkRecord, pricedCategoryIDs []string, names map[string]string) *entity.Stats {
	if len(pricedCategoryIDs) == 0 {
		return entity.EmptyStats()
	}
	stats := entity.EmptyStats()
	index := make(map[string]int)
	for _, r := range records {
		stats.TotalOrders++
		stats.TotalQuantity += r.Quantity
		stats.TotalAmount = stats.TotalAmount.Add(r.TotalAmount)

		i, ok := index[r.CategoryID]
		if !ok {
			name, found := names[r.CategoryID]
			if !found || name == "" {
				name = entity.UnknownCategoryName
			}
			stats.ByCategory = append(stats.ByCategory, entity.CategoryStats{
				CategoryID:   r.CategoryID,
				CategoryName: name,
				Amount:       decimal.Zero,
			})
			i = len(stats.ByCategory) - 1
			index[r.CategoryID] = i
		}
		stats.ByCategory[i].Quantity += r.Quantity
		stats.ByCategory[i].Amount = stats.ByCategory[i].Amount.Add(r.TotalAmount)
	}
	return stats
}

// SummarizeDrivers agrupa registros por conductor, ordenados por importe total
// (desc o asc) y, en empate, por id de usuario.
func SummarizeDrivers(records []*entity.PieceWorkRecord, desc bool) []entity.DriverSummary {
	byUser := make(map[string]*entity.DriverSummary)
	warehouses := make(map[string]map[string]struct{})
	order := make([]string, 0)
	for _, r := range records {
		s, ok := byUser[r.UserID]
		if !ok {
			s = &entity.DriverSummary{UserID: r.UserID, TotalAmount: decimal.Zero}
			byUser[r.UserID] = s
			warehouses[r.UserID] = make(map[string]struct{})
			order = append(order, r.UserID)
		}
		s.TotalQuantity += r.Quantity
		s.TotalAmount = s.TotalAmount.Add(r.TotalAmount)
		s.RecordCount++
		if _, seen := warehouses[r.UserID][r.WarehouseID]; !seen {
			warehouses[r.UserID][r.WarehouseID] = struct{}{}
			s.WarehouseIDs = append(s.WarehouseIDs, r.WarehouseID)
		}
	}

	out := make([]entity.DriverSummary, 0, len(order))
	for _, id := range order {
		out = append(out, *byUser[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		cmp := out[i].TotalAmount.Cmp(out[j].TotalAmount)
		if cmp == 0 {
			return out[i].UserID < out[j].UserID
		}
		if desc {
			return cmp > 0
		}
		return cmp < 0
	})
	return out
}
