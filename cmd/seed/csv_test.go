package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestParseStockCSV_ConEncabezado(t *testing.T) {
	in := "product_id,branch_id,quantity\nPAN-1,A,10\nPAN-2, B ,2.5\n"
	rows, err := parseStockCSV(strings.NewReader(in), false, ',')
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "PAN-1", rows[0].ProductID)
	assert.Equal(t, "B", rows[1].BranchID)
	assert.Equal(t, "2.5", rows[1].Quantity)
}

func TestParseStockCSV_Latin1ComaDecimal(t *testing.T) {
	enc, err := charmap.ISO8859_1.NewEncoder().String("AZÚCAR;A;12,75\n")
	require.NoError(t, err)
	rows, err := parseStockCSV(bytes.NewBufferString(enc), true, ';')
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "AZÚCAR", rows[0].ProductID)
	assert.Equal(t, "12.75", rows[0].Quantity)
}

func TestParseStockCSV_ColumnasIncompletas(t *testing.T) {
	_, err := parseStockCSV(strings.NewReader("PAN-1,A\n"), false, ',')
	assert.Error(t, err)
}
