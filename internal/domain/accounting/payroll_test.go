package accounting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/interbranch-api/internal/domain"
	"github.com/jhoicas/interbranch-api/internal/domain/accounting"
)

func TestSplitPayroll(t *testing.T) {
	tests := []struct {
		amount, pct     string
		company, branch string
	}{
		{"3000000", "50", "1500000", "1500000"},
		{"3000000", "0", "0", "3000000"},
		{"3000000", "100", "3000000", "0"},
		{"100.01", "50", "50.01", "50.00"},
		{"1000", "33.333", "333.33", "666.67"},
	}
	for _, tt := range tests {
		t.Run(tt.amount+"@"+tt.pct, func(t *testing.T) {
			company, branch, err := accounting.SplitPayroll(d(tt.amount), d(tt.pct))
			require.NoError(t, err)
			assert.True(t, company.Equal(d(tt.company)), "company %s", company)
			assert.True(t, branch.Equal(d(tt.branch)), "branch %s", branch)
			assert.True(t, company.Add(branch).Equal(d(tt.amount)))
		})
	}
}

func TestSplitPayroll_EntradaInvalida(t *testing.T) {
	_, _, err := accounting.SplitPayroll(d("0"), d("50"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, _, err = accounting.SplitPayroll(d("100"), d("100.5"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, _, err = accounting.SplitPayroll(d("100"), d("-1"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, _, err = accounting.SplitPayroll(d("100.005"), d("50"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPayrollLines_SiempreBalanceado(t *testing.T) {
	acc := accounting.DefaultAccounts()
	for _, pct := range []string{"0", "25", "50", "70", "100"} {
		company, branch, err := accounting.SplitPayroll(d("3000000"), d(pct))
		require.NoError(t, err)
		_, _, err = accounting.ValidateLines(accounting.PayrollLines(acc, company, branch))
		assert.NoError(t, err, "pct %s", pct)
	}
}

func TestPayrollLines_MitadYMitadSinPuente(t *testing.T) {
	acc := accounting.DefaultAccounts()
	lines := accounting.PayrollLines(acc, d("1500000"), d("1500000"))
	require.Len(t, lines, 2)
	assert.Equal(t, acc.SalaryExpense, lines[0].AccountCode)
	assert.True(t, lines[0].Debit.Equal(d("1500000")))
	assert.Equal(t, acc.InterBranchPayable, lines[1].AccountCode)
	assert.True(t, lines[1].Credit.Equal(d("1500000")))
}
