package domain

import "strings"

// RequestContext identifica al tenant y al actor de cada operación pública del motor.
// Sustituye al estado de sesión implícito: se pasa explícitamente en cada llamada.
type RequestContext struct {
	TenantID string
	ActorID  string
}

// Validate exige tenant y actor.
func (rc RequestContext) Validate() error {
	if strings.TrimSpace(rc.TenantID) == "" || strings.TrimSpace(rc.ActorID) == "" {
		return ErrInvalidInput
	}
	return nil
}
