package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrMaterialNotFound    = errors.New("material no encontrado")
	ErrForbidden           = errors.New("acceso denegado")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrConcurrencyConflict = errors.New("conflicto de concurrencia")
)

// ValidationError entrada mal formada: contraparte faltante, tipo desconocido, precio ausente.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validación: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// InvalidQuantityError cantidad ≤ 0 en un movimiento.
type InvalidQuantityError struct {
	Quantity int64
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("cantidad inválida %d: debe ser mayor que cero", e.Quantity)
}

func (e *InvalidQuantityError) Unwrap() error { return ErrInvalidInput }

// InsufficientStockError una salida pide más de lo disponible en la proyección.
type InsufficientStockError struct {
	MaterialID string
	Requested  int64
	Available  int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para material %s: solicitado %d, disponible %d",
		e.MaterialID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// ConcurrencyConflictError se agotaron los reintentos por serialización o deadlock.
type ConcurrencyConflictError struct {
	Attempts int
	Err      error
}

func (e *ConcurrencyConflictError) Error() string {
	return fmt.Sprintf("conflicto de concurrencia tras %d intentos: %v", e.Attempts, e.Err)
}

func (e *ConcurrencyConflictError) Unwrap() []error {
	return []error{ErrConcurrencyConflict, e.Err}
}
