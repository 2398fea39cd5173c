package accounting

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/interbranch-api/internal/domain"
	"github.com/jhoicas/interbranch-api/internal/domain/entity"
)

var hundred = decimal.NewFromInt(100)

// SplitPayroll reparte el monto: companyPortion = amount*pct/100 redondeado a la unidad
// mínima, branchPortion = amount - companyPortion (la suma siempre es el monto).
func SplitPayroll(amount, pct decimal.Decimal) (company, branch decimal.Decimal, err error) {
	if !amount.IsPositive() {
		return decimal.Zero, decimal.Zero, fmt.Errorf("%w: monto debe ser mayor a cero", domain.ErrInvalidInput)
	}
	if !IsCurrencyExact(amount) {
		return decimal.Zero, decimal.Zero, fmt.Errorf("%w: monto con más de %d decimales", domain.ErrInvalidInput, CurrencyPlaces)
	}
	if pct.IsNegative() || pct.GreaterThan(hundred) {
		return decimal.Zero, decimal.Zero, fmt.Errorf("%w: porcentaje fuera de 0..100", domain.ErrInvalidInput)
	}
	company = amount.Mul(pct).Div(hundred).Round(CurrencyPlaces)
	branch = amount.Sub(company)
	return company, branch, nil
}

// PayrollLines asiento de la sucursal base: débito a gasto de sueldos por la porción de la
// empresa y crédito a CxP entre sucursales por la porción de la sucursal visitada. Si las
// porciones difieren, un renglón de la cuenta puente cubre la diferencia del lado corto.
func PayrollLines(acc Accounts, company, branch decimal.Decimal) []entity.JournalLine {
	lines := make([]entity.JournalLine, 0, 3)
	if company.IsPositive() {
		lines = append(lines, Debit(acc.SalaryExpense, "Gasto de nómina (porción empresa)", company))
	}
	if branch.IsPositive() {
		lines = append(lines, Credit(acc.InterBranchPayable, "Nómina asignada a sucursal visitada", branch))
	}
	switch diff := company.Sub(branch); {
	case diff.IsPositive():
		lines = append(lines, Credit(acc.SalaryClearing, "Puente de nómina", diff))
	case diff.IsNegative():
		lines = append(lines, Debit(acc.SalaryClearing, "Puente de nómina", diff.Neg()))
	}
	return lines
}
