package query_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-desktop/internal/application/query"
	"github.com/jhoicas/inventario-desktop/internal/domain"
	"github.com/jhoicas/inventario-desktop/internal/domain/entity"
	"github.com/jhoicas/inventario-desktop/internal/domain/inventory"
)

var t0 = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

func item(id, name, sku string, qty, threshold int, price string, age time.Duration) entity.Item {
	return entity.Item{
		ID:                id,
		Name:              name,
		SKU:               sku,
		Quantity:          qty,
		UnitPrice:         decimal.RequireFromString(price),
		LowStockThreshold: threshold,
		LastModified:      t0.Add(-age),
	}
}

func ids(items []entity.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func sampleView() *query.View {
	return query.NewView(inventory.Snapshot{
		Items: []entity.Item{
			item("A", "Café molido", "CAF-250", 2, 5, "12.00", time.Hour),
			item("B", "Azúcar", "AZU-1", 10, 3, "3.50", 2*time.Hour),
			item("C", "Cafetera", "", 0, 0, "80.00", 3*time.Hour),
			item("D", "Filtros", "caf-filt", 4, 4, "1.25", 30*time.Minute),
		},
		Movements: []entity.MovementRecord{
			{ItemID: "A", Delta: 2, Reason: entity.ReasonReceive, Timestamp: t0, ResultingQuantity: 2},
		},
	})
}

func TestLowStockItems_EjemploABC(t *testing.T) {
	v := query.NewView(inventory.Snapshot{Items: []entity.Item{
		item("A", "A", "", 2, 5, "1", 0),
		item("B", "B", "", 10, 3, "1", 0),
		item("C", "C", "", 0, 0, "1", 0),
	}})
	assert.Equal(t, []string{"C", "A"}, ids(v.LowStockItems()))
}

func TestLowStockItems_IncluyeIgualAlUmbralYEsEstable(t *testing.T) {
	v := sampleView()
	// C(0) < A(2) < D(4, igual al umbral); B queda fuera.
	assert.Equal(t, []string{"C", "A", "D"}, ids(v.LowStockItems()))
}

func TestSearch_SinDistinguirMayusculasEnNombreYSKU(t *testing.T) {
	v := sampleView()
	assert.Equal(t, []string{"A", "C", "D"}, ids(v.Search("CAF")))
	assert.Equal(t, []string{"B"}, ids(v.Search("azú")))
	assert.Empty(t, v.Search("inexistente"))
	assert.Len(t, v.Search("  "), 4)
}

func TestSortBy(t *testing.T) {
	v := sampleView()

	got, err := v.SortBy(query.FieldQuantity, query.Asc)
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "A", "D", "B"}, ids(got))

	got, err = v.SortBy(query.FieldUnitPrice, query.Desc)
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "A", "B", "D"}, ids(got))

	// Comparación por bytes tras plegar: "cafetera" < "café molido".
	got, err = v.SortBy(query.FieldName, query.Asc)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C", "A", "D"}, ids(got))

	got, err = v.SortBy(query.FieldLastModified, query.Asc)
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "B", "A", "D"}, ids(got))

	_, err = v.SortBy(query.SortField("color"), query.Asc)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSortBy_EmpatesConservanOrden(t *testing.T) {
	v := query.NewView(inventory.Snapshot{Items: []entity.Item{
		item("1", "x", "", 1, 0, "1", 0),
		item("2", "y", "", 1, 0, "1", 0),
		item("3", "z", "", 0, 0, "1", 0),
	}})
	asc, _ := v.SortBy(query.FieldQuantity, query.Asc)
	assert.Equal(t, []string{"3", "1", "2"}, ids(asc))
	desc, _ := v.SortBy(query.FieldQuantity, query.Desc)
	assert.Equal(t, []string{"1", "2", "3"}, ids(desc))
}

func TestParseSortFieldYDirection(t *testing.T) {
	f, err := query.ParseSortField("UNITPRICE")
	require.NoError(t, err)
	assert.Equal(t, query.FieldUnitPrice, f)

	d, err := query.ParseDirection("")
	require.NoError(t, err)
	assert.Equal(t, query.Asc, d)

	_, err = query.ParseDirection("sideways")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSuggest(t *testing.T) {
	v := sampleView()
	assert.Equal(t, []string{"Café molido", "Cafetera"}, v.Suggest("caf", 0))
	assert.Equal(t, []string{"Café molido"}, v.Suggest("caf", 1))
	assert.Empty(t, v.Suggest("", 5))
}

func TestSummary(t *testing.T) {
	s := sampleView().Summary()
	assert.Equal(t, 4, s.Items)
	assert.Equal(t, 16, s.Units)
	// 2*12 + 10*3.5 + 0*80 + 4*1.25 = 64
	assert.True(t, s.StockValue.Equal(decimal.NewFromInt(64)), "got %s", s.StockValue)
	assert.Equal(t, 3, s.LowStock)
	assert.Equal(t, 1, s.OutOfStock)
	assert.Equal(t, 1, s.Movements)
	require.NotNil(t, s.LastMovementAt)
	assert.Equal(t, t0, *s.LastMovementAt)
}

func TestView_NoMutaSnapshot(t *testing.T) {
	v := sampleView()
	got := v.Items()
	got[0].Name = "cambiado"
	assert.Equal(t, "Café molido", v.Items()[0].Name)
}
