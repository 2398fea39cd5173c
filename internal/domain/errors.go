package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrForbidden    = errors.New("acceso denegado")

	// Taxonomía del motor de traslados y liquidación.
	ErrInsufficientStock      = errors.New("stock insuficiente")
	ErrInvalidStateTransition = errors.New("transición de estado inválida")
	ErrUnbalancedEntry        = errors.New("asiento contable descuadrado")
	ErrLockTimeout            = errors.New("tiempo de espera de bloqueo agotado")
	ErrDuplicateReference     = errors.New("ya existe una liquidación para la referencia")
)

// IsRetryable indica si el caller puede reintentar la operación con backoff.
// Solo la contención de bloqueos es transitoria; el resto son errores de negocio o bugs.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrLockTimeout)
}
