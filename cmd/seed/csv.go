package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/interbranch-api/internal/infrastructure/memory"
)

// parseStockCSV lee filas product_id, branch_id, quantity. La fila de encabezado es opcional.
func parseStockCSV(r io.Reader, latin1 bool, sep rune) ([]memory.StockSeed, error) {
	if latin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	cr := csv.NewReader(r)
	cr.Comma = sep
	cr.FieldsPerRecord = 3
	cr.TrimLeadingSpace = true

	var out []memory.StockSeed
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv línea %d: %w", line, err)
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(rec[0]), "product_id") {
			continue
		}
		out = append(out, memory.StockSeed{
			ProductID: strings.TrimSpace(rec[0]),
			BranchID:  strings.TrimSpace(rec[1]),
			// Los POS exportan coma decimal.
			Quantity: strings.ReplaceAll(strings.TrimSpace(rec[2]), ",", "."),
		})
	}
	return out, nil
}
