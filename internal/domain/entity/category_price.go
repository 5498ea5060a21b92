package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Clasificación del conductor; selecciona entre el precio base y el precio asistido.
const (
	DriverTypeDriverOnly  = "driver_only"
	DriverTypeWithVehicle = "with_vehicle"
)

// IsValidDriverType indica si s es una clasificación conocida.
func IsValidDriverType(s string) bool {
	return s == DriverTypeDriverOnly || s == DriverTypeWithVehicle
}

// CategoryPrice configuración de precio de una categoría en una bodega.
// Puede haber varias filas por (bodega, categoría) que difieren en DriverType y EffectiveDate.
type CategoryPrice struct {
	ID            string
	WarehouseID   string
	CategoryID    string
	CategoryName  string // solo lectura, se llena en listados
	Price         decimal.Decimal
	DriverType    string
	EffectiveDate time.Time // fecha calendario (UTC 00:00)
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
