package inventory

import (
	"fmt"
	"sort"

	"github.com/jhoicas/interbranch-api/internal/domain"
	"github.com/jhoicas/interbranch-api/internal/domain/entity"
)

// transitions tabla de transiciones legales del traslado. Ninguna salta un estado,
// salvo draft → approved (aprobación directa o autoaprobación).
var transitions = map[entity.TransferStatus][]entity.TransferStatus{
	entity.TransferStatusDraft:     {entity.TransferStatusPending, entity.TransferStatusApproved, entity.TransferStatusCancelled},
	entity.TransferStatusPending:   {entity.TransferStatusApproved, entity.TransferStatusCancelled},
	entity.TransferStatusApproved:  {entity.TransferStatusInTransit},
	entity.TransferStatusInTransit: {entity.TransferStatusReceived},
}

// CanTransition indica si from → to es legal.
func CanTransition(from, to entity.TransferStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal received y cancelled no admiten más transiciones.
func IsTerminal(s entity.TransferStatus) bool {
	return s == entity.TransferStatusReceived || s == entity.TransferStatusCancelled
}

// Transition valida y aplica el cambio de estado sobre el traslado.
func Transition(t *entity.Transfer, to entity.TransferStatus) error {
	if !CanTransition(t.Status, to) {
		return fmt.Errorf("%w: %s → %s", domain.ErrInvalidStateTransition, t.Status, to)
	}
	t.Status = to
	return nil
}

// LockOrder devuelve las filas de stock que toca el traslado, sin duplicados y en orden
// canónico (producto, sucursal). Todas las transacciones bloquean en este orden, así dos
// traslados en sentidos opuestos entre el mismo par de sucursales no se interbloquean.
func LockOrder(t *entity.Transfer) []entity.StockKey {
	seen := make(map[entity.StockKey]struct{}, len(t.Items)*2)
	keys := make([]entity.StockKey, 0, len(t.Items)*2)
	for _, it := range t.Items {
		for _, k := range []entity.StockKey{
			{ProductID: it.ProductID, BranchID: t.FromBranchID},
			{ProductID: it.ProductID, BranchID: t.ToBranchID},
		} {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}
	SortStockKeys(keys)
	return keys
}

// SortStockKeys ordena por producto y luego por sucursal.
func SortStockKeys(keys []entity.StockKey) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].ProductID != keys[j].ProductID {
			return keys[i].ProductID < keys[j].ProductID
		}
		return keys[i].BranchID < keys[j].BranchID
	})
}
