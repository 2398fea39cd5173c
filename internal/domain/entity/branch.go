package entity

import "time"

// Branch representa una sucursal (tienda, cocina central, bodega) de un tenant.
// Cada sucursal lleva sus propios libros y su propio inventario.
type Branch struct {
	ID        string
	TenantID  string
	Code      string
	Name      string
	Address   string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
