// Package accounting contiene las reglas puras de partida doble del motor:
// validación de renglones, reparto de nómina y construcción de los asientos estándar.
package accounting

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/interbranch-api/internal/domain"
	"github.com/jhoicas/interbranch-api/internal/domain/entity"
)

// CurrencyPlaces decimales de la unidad monetaria mínima.
const CurrencyPlaces = 2

// Accounts códigos del plan de cuentas que usa el motor (los provee el plan de cuentas externo).
type Accounts struct {
	Inventory             string
	InterBranchReceivable string
	InterBranchPayable    string
	SalaryExpense         string
	SalaryClearing        string
}

// DefaultAccounts plan de cuentas por defecto.
func DefaultAccounts() Accounts {
	return Accounts{
		Inventory:             "1140",
		InterBranchReceivable: "1180",
		InterBranchPayable:    "2180",
		SalaryExpense:         "5110",
		SalaryClearing:        "2150",
	}
}

// ValidateLines verifica la estructura de los renglones y que débitos == créditos.
// No redondea ni corrige: un asiento descuadrado es siempre un bug del caller.
func ValidateLines(lines []entity.JournalLine) (debit, credit decimal.Decimal, err error) {
	debit, credit = decimal.Zero, decimal.Zero
	var hasDebit, hasCredit bool
	for i, l := range lines {
		if strings.TrimSpace(l.AccountCode) == "" {
			return debit, credit, fmt.Errorf("%w: renglón %d sin cuenta", domain.ErrInvalidInput, i+1)
		}
		if l.Debit.IsNegative() || l.Credit.IsNegative() {
			return debit, credit, fmt.Errorf("%w: renglón %d con monto negativo", domain.ErrUnbalancedEntry, i+1)
		}
		if l.Debit.IsZero() == l.Credit.IsZero() {
			return debit, credit, fmt.Errorf("%w: renglón %d debe tener solo débito o solo crédito", domain.ErrUnbalancedEntry, i+1)
		}
		if !IsCurrencyExact(l.Debit) || !IsCurrencyExact(l.Credit) {
			return debit, credit, fmt.Errorf("%w: renglón %d con más de %d decimales", domain.ErrUnbalancedEntry, i+1, CurrencyPlaces)
		}
		if !l.Debit.IsZero() {
			hasDebit = true
		}
		if !l.Credit.IsZero() {
			hasCredit = true
		}
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	if !hasDebit || !hasCredit {
		return debit, credit, fmt.Errorf("%w: se requiere al menos un débito y un crédito", domain.ErrUnbalancedEntry)
	}
	if !debit.Equal(credit) {
		return debit, credit, fmt.Errorf("%w: débitos %s, créditos %s", domain.ErrUnbalancedEntry, debit, credit)
	}
	return debit, credit, nil
}

// IsCurrencyExact indica si el monto cabe en la unidad monetaria mínima sin redondear.
func IsCurrencyExact(amount decimal.Decimal) bool {
	return amount.Equal(amount.Round(CurrencyPlaces))
}

// Debit renglón de débito.
func Debit(account, description string, amount decimal.Decimal) entity.JournalLine {
	return entity.JournalLine{AccountCode: account, Description: description, Debit: amount, Credit: decimal.Zero}
}

// Credit renglón de crédito.
func Credit(account, description string, amount decimal.Decimal) entity.JournalLine {
	return entity.JournalLine{AccountCode: account, Description: description, Debit: decimal.Zero, Credit: amount}
}

// TransferLines asientos de un traslado valorizado:
// origen reconoce la cuenta por cobrar interna y da salida al inventario;
// destino recibe el inventario y reconoce la cuenta por pagar interna.
func TransferLines(acc Accounts, total decimal.Decimal) (source, destination []entity.JournalLine) {
	source = []entity.JournalLine{
		Debit(acc.InterBranchReceivable, "CxC entre sucursales", total),
		Credit(acc.Inventory, "Salida de inventario por traslado", total),
	}
	destination = []entity.JournalLine{
		Debit(acc.Inventory, "Entrada de inventario por traslado", total),
		Credit(acc.InterBranchPayable, "CxP entre sucursales", total),
	}
	return source, destination
}

// ReversalLines invierte débitos y créditos de un asiento.
func ReversalLines(lines []entity.JournalLine) []entity.JournalLine {
	out := make([]entity.JournalLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, entity.JournalLine{
			AccountCode: l.AccountCode,
			Description: "Reverso: " + l.Description,
			Debit:       l.Credit,
			Credit:      l.Debit,
		})
	}
	return out
}
