package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-desktop/internal/application/query"
	"github.com/jhoicas/inventario-desktop/internal/application/session"
	"github.com/jhoicas/inventario-desktop/internal/domain/entity"
)

func TestGenerateReport(t *testing.T) {
	items := []entity.Item{
		{ID: "1", Name: "Arroz", SKU: "A-1", Quantity: 2, UnitPrice: decimal.RequireFromString("2500"), LowStockThreshold: 5},
		{ID: "2", Name: "Frijol", Quantity: 40, UnitPrice: decimal.RequireFromString("1234.5"), LowStockThreshold: 3},
	}
	g := NewMarotoReportGenerator("inventario")

	doc, err := g.GenerateReport(context.Background(), session.Report{
		Title:       "Inventario",
		GeneratedAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		Items:       items,
		Summary:     query.Summary{Items: 2, Units: 42, StockValue: decimal.RequireFromString("54380"), LowStock: 1},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF")))
}

func TestGenerateReport_Empty(t *testing.T) {
	doc, err := NewMarotoReportGenerator("").GenerateReport(context.Background(), session.Report{Title: "Bajo stock"})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF")))
}

func TestFormatMoney(t *testing.T) {
	cases := map[string]string{
		"0":        "0,00",
		"25000":    "25.000,00",
		"1234.5":   "1.234,50",
		"999":      "999,00",
		"1000000":  "1.000.000,00",
		"-4321.01": "-4.321,01",
	}
	for in, want := range cases {
		assert.Equal(t, want, formatMoney(decimal.RequireFromString(in)), in)
	}
}
