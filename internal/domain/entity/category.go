package entity

import "time"

// Category representa un tipo de trabajo a destajo (ej. una clase de carga) con precio propio.
// El borrado es físico; IsActive solo controla si aparece en los formularios de captura.
type Category struct {
	ID          string
	Name        string
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CategoryPatch actualización parcial de una categoría (nil = sin cambio).
type CategoryPatch struct {
	Name        *string
	Description *string
	IsActive    *bool
}
