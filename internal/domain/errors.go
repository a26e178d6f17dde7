package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound              = errors.New("recurso no encontrado")
	ErrValidation            = errors.New("entrada inválida")
	ErrDuplicate             = errors.New("recurso duplicado")
	ErrUnauthorized          = errors.New("no autorizado")
	ErrForbidden             = errors.New("acceso denegado")
	ErrInvalidTransition     = errors.New("transición de estado no permitida")
	ErrOrderLocked           = errors.New("el pedido no es editable")
	ErrInsufficientInventory = errors.New("inventario insuficiente")
	ErrConcurrencyConflict   = errors.New("conflicto de concurrencia, reintente")
)

// ValidationError detalla el campo inválido. errors.Is(err, ErrValidation) es true.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError atajo para construir un ValidationError.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// TransitionError describe una transición rechazada (arista inexistente o rol incorrecto).
type TransitionError struct {
	From   string
	To     string
	Reason string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("transición %s -> %s no permitida: %s", e.From, e.To, e.Reason)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// InsufficientInventoryError indica qué literatura no alcanza y por cuánto.
// La UI lo usa para mostrar el faltante.
type InsufficientInventoryError struct {
	OrganizationID string
	LiteratureID   string
	Requested      int
	Available      int
}

// Shortfall unidades que faltan para cubrir lo solicitado.
func (e *InsufficientInventoryError) Shortfall() int {
	if e.Requested <= e.Available {
		return 0
	}
	return e.Requested - e.Available
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("inventario insuficiente de %s en %s: solicitado %d, disponible %d (faltan %d)",
		e.LiteratureID, e.OrganizationID, e.Requested, e.Available, e.Shortfall())
}

func (e *InsufficientInventoryError) Unwrap() error { return ErrInsufficientInventory }
