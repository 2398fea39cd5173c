package accounting_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/interbranch-api/internal/domain"
	"github.com/jhoicas/interbranch-api/internal/domain/accounting"
	"github.com/jhoicas/interbranch-api/internal/domain/entity"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestValidateLines(t *testing.T) {
	tests := []struct {
		name  string
		lines []entity.JournalLine
		err   error
	}{
		{
			name:  "balanceado",
			lines: []entity.JournalLine{accounting.Debit("1", "", d("10")), accounting.Credit("2", "", d("10"))},
		},
		{
			name:  "descuadrado por un centavo",
			lines: []entity.JournalLine{accounting.Debit("1", "", d("10.00")), accounting.Credit("2", "", d("9.99"))},
			err:   domain.ErrUnbalancedEntry,
		},
		{
			name:  "sin crédito",
			lines: []entity.JournalLine{accounting.Debit("1", "", d("10"))},
			err:   domain.ErrUnbalancedEntry,
		},
		{
			name:  "vacío",
			lines: nil,
			err:   domain.ErrUnbalancedEntry,
		},
		{
			name: "renglón con ambos lados",
			lines: []entity.JournalLine{
				{AccountCode: "1", Debit: d("5"), Credit: d("5")},
				accounting.Credit("2", "", d("0.01")),
			},
			err: domain.ErrUnbalancedEntry,
		},
		{
			name:  "monto negativo",
			lines: []entity.JournalLine{accounting.Debit("1", "", d("-10")), accounting.Credit("2", "", d("-10"))},
			err:   domain.ErrUnbalancedEntry,
		},
		{
			name: "fracciones de centavo que suman balanceado",
			lines: []entity.JournalLine{
				accounting.Debit("1", "", d("0.005")),
				accounting.Debit("1", "", d("0.005")),
				accounting.Credit("2", "", d("0.01")),
			},
			err: domain.ErrUnbalancedEntry,
		},
		{
			name:  "balanceado con tres decimales",
			lines: []entity.JournalLine{accounting.Debit("1", "", d("10.001")), accounting.Credit("2", "", d("10.001"))},
			err:   domain.ErrUnbalancedEntry,
		},
		{
			name:  "ceros a la derecha permitidos",
			lines: []entity.JournalLine{accounting.Debit("1", "", d("10.5000")), accounting.Credit("2", "", d("10.50"))},
		},
		{
			name:  "cuenta vacía",
			lines: []entity.JournalLine{accounting.Debit(" ", "", d("10")), accounting.Credit("2", "", d("10"))},
			err:   domain.ErrInvalidInput,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := accounting.ValidateLines(tt.lines)
			if tt.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestTransferLines_CadaLadoBalanceado(t *testing.T) {
	acc := accounting.DefaultAccounts()
	src, dst := accounting.TransferLines(acc, d("50000"))

	debit, credit, err := accounting.ValidateLines(src)
	require.NoError(t, err)
	assert.True(t, debit.Equal(d("50000")))
	assert.True(t, credit.Equal(d("50000")))
	assert.Equal(t, acc.InterBranchReceivable, src[0].AccountCode)
	assert.Equal(t, acc.Inventory, src[1].AccountCode)

	_, _, err = accounting.ValidateLines(dst)
	require.NoError(t, err)
	assert.Equal(t, acc.Inventory, dst[0].AccountCode)
	assert.Equal(t, acc.InterBranchPayable, dst[1].AccountCode)
}

func TestReversalLines_InvierteLados(t *testing.T) {
	orig := []entity.JournalLine{accounting.Debit("1", "a", d("7")), accounting.Credit("2", "b", d("7"))}
	rev := accounting.ReversalLines(orig)
	require.Len(t, rev, 2)
	assert.True(t, rev[0].Credit.Equal(d("7")))
	assert.True(t, rev[0].Debit.IsZero())
	assert.True(t, rev[1].Debit.Equal(d("7")))
	_, _, err := accounting.ValidateLines(rev)
	assert.NoError(t, err)
}
