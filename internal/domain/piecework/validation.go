package piecework

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/piecework-api/internal/domain"
	"github.com/jhoicas/piecework-api/internal/domain/entity"
)

const (
	reasonRequired    = "es requerido"
	reasonPositive    = "debe ser un entero mayor que cero"
	reasonNonNegative = "no puede ser negativo"
	reasonTwoDecimals = "admite máximo dos decimales"
	reasonTooLarge    = "excede el máximo permitido"
)

// MaxQuantity tope de unidades por ítem y por registro acumulado.
const MaxQuantity int64 = 1_000_000_000

// IsMoney indica si d es un importe válido: no negativo y con máximo dos decimales.
func IsMoney(d decimal.Decimal) bool {
	return !d.IsNegative() && d.Equal(d.Truncate(2))
}

// ValidateItems valida todos los ítems de un envío y devuelve el primer error encontrado.
// Se ejecuta antes de cualquier acceso al almacenamiento.
func ValidateItems(items []entity.PieceWorkItem) error {
	if len(items) == 0 {
		return domain.NewFieldError("items", reasonRequired)
	}
	for i, item := range items {
		if err := ValidateItem(i, item); err != nil {
			return err
		}
	}
	return nil
}

// ValidateItem aplica las reglas de captura a un ítem; index identifica su posición en el lote.
func ValidateItem(index int, item entity.PieceWorkItem) error {
	fail := func(field, reason string) error {
		return &domain.ValidationError{Index: index, Field: field, Reason: reason}
	}
	if strings.TrimSpace(item.CategoryID) == "" {
		return fail("category_id", reasonRequired)
	}
	if item.Quantity == nil {
		return fail("quantity", reasonRequired)
	}
	if *item.Quantity <= 0 {
		return fail("quantity", reasonPositive)
	}
	if *item.Quantity > MaxQuantity {
		return fail("quantity", reasonTooLarge)
	}
	if err := checkPrice(index, "unit_price", item.UnitPrice); err != nil {
		return err
	}
	if item.NeedUpstairs {
		if err := checkPrice(index, "upstairs_price", item.UpstairsPrice); err != nil {
			return err
		}
	}
	if item.NeedSorting {
		if item.SortingQuantity == nil {
			return fail("sorting_quantity", reasonRequired)
		}
		if *item.SortingQuantity <= 0 {
			return fail("sorting_quantity", reasonPositive)
		}
		if *item.SortingQuantity > MaxQuantity {
			return fail("sorting_quantity", reasonTooLarge)
		}
		if err := checkPrice(index, "sorting_unit_price", item.SortingUnitPrice); err != nil {
			return err
		}
	}
	return nil
}

// ValidatePrice valida un precio de configuración (entradas que no son lotes).
func ValidatePrice(field string, price decimal.Decimal) error {
	if price.IsNegative() {
		return domain.NewFieldError(field, reasonNonNegative)
	}
	if !IsMoney(price) {
		return domain.NewFieldError(field, reasonTwoDecimals)
	}
	return nil
}

func checkPrice(index int, field string, price *decimal.Decimal) error {
	if price == nil {
		return &domain.ValidationError{Index: index, Field: field, Reason: reasonRequired}
	}
	if price.IsNegative() {
		return &domain.ValidationError{Index: index, Field: field, Reason: reasonNonNegative}
	}
	if !IsMoney(*price) {
		return &domain.ValidationError{Index: index, Field: field, Reason: reasonTwoDecimals}
	}
	return nil
}
