// Package piecework contiene la lógica de dominio del trabajo a destajo: resolución de
// precios, validación de capturas, acumulación con promedios ponderados y estadísticas.
// No depende de la persistencia; los casos de uso le entregan los datos ya cargados.
package piecework

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/piecework-api/internal/domain/entity"
)

// ResolvedPrice precios vigentes de una categoría en una bodega para una fecha.
// Un lado sin fila aplicable queda en cero y no se considera bloqueado.
type ResolvedPrice struct {
	UnitPrice     decimal.Decimal // tipo driver_only
	UpstairsPrice decimal.Decimal // tipo with_vehicle
	HasUnit       bool
	HasUpstairs   bool
}

// Locked indica si la interfaz debe bloquear la captura manual del precio.
func (p *ResolvedPrice) Locked() bool {
	return p != nil && (p.HasUnit || p.HasUpstairs)
}

// AppliedBasePrice precio que se aplica a la cantidad base según la clasificación del conductor.
// Un conductor with_vehicle cobra UpstairsPrice; cualquier otra clasificación cobra UnitPrice.
func (p *ResolvedPrice) AppliedBasePrice(driverType string) decimal.Decimal {
	if p == nil {
		return decimal.Zero
	}
	if driverType == entity.DriverTypeWithVehicle {
		return p.UpstairsPrice
	}
	return p.UnitPrice
}

// ResolvePrice elige, por cada tipo de conductor, la fila con la fecha efectiva más reciente
// que no sea posterior a asOf. Devuelve nil si ningún tipo tiene fila aplicable.
func ResolvePrice(rows []*entity.CategoryPrice, asOf time.Time) *ResolvedPrice {
	day := entity.TruncateDate(asOf)
	latest := make(map[string]*entity.CategoryPrice, 2)
	for _, row := range rows {
		if row == nil {
			continue
		}
		eff := entity.TruncateDate(row.EffectiveDate)
		if eff.After(day) {
			continue
		}
		cur, ok := latest[row.DriverType]
		if !ok || isNewer(row, cur) {
			latest[row.DriverType] = row
		}
	}

	base, hasBase := latest[entity.DriverTypeDriverOnly]
	assisted, hasAssisted := latest[entity.DriverTypeWithVehicle]
	if !hasBase && !hasAssisted {
		return nil
	}
	out := &ResolvedPrice{UnitPrice: decimal.Zero, UpstairsPrice: decimal.Zero}
	if hasBase {
		out.UnitPrice = base.Price
		out.HasUnit = true
	}
	if hasAssisted {
		out.UpstairsPrice = assisted.Price
		out.HasUpstairs = true
	}
	return out
}

// isNewer compara por fecha efectiva y, en empate, por última actualización.
func isNewer(a, b *entity.CategoryPrice) bool {
	ea, eb := entity.TruncateDate(a.EffectiveDate), entity.TruncateDate(b.EffectiveDate)
	if !ea.Equal(eb) {
		return ea.After(eb)
	}
	return a.UpdatedAt.After(b.UpdatedAt)
}
