package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound       = errors.New("recurso no encontrado")
	ErrInvalidInput   = errors.New("entrada inválida")
	ErrDuplicate      = errors.New("recurso duplicado")
	ErrUnauthorized   = errors.New("no autorizado")
	ErrForbidden      = errors.New("acceso denegado")
	ErrConflict       = errors.New("conflicto con el estado actual")
	ErrTransient      = errors.New("almacenamiento no disponible")
	ErrPartialFailure = errors.New("el lote no se pudo registrar completo")
)

// ValidationError describe el primer campo inválido de una entrada.
// Index es la posición del ítem dentro del lote (-1 si la entrada no es un lote).
type ValidationError struct {
	Index  int
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("ítem %d: %s %s", e.Index+1, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// Unwrap permite errors.Is(err, ErrInvalidInput).
func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// NewFieldError construye un ValidationError para entradas que no son lotes.
func NewFieldError(field, reason string) *ValidationError {
	return &ValidationError{Index: -1, Field: field, Reason: reason}
}

// BatchError indica la posición del ítem que hizo fallar un lote transaccional.
type BatchError struct {
	Index int
	Err   error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("ítem %d: %v", e.Index+1, e.Err)
}

// Unwrap expone tanto ErrPartialFailure como la causa original.
func (e *BatchError) Unwrap() []error { return []error{ErrPartialFailure, e.Err} }
