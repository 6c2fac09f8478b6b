package inventory_test

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-desktop/internal/domain"
	"github.com/jhoicas/inventario-desktop/internal/domain/entity"
	"github.com/jhoicas/inventario-desktop/internal/domain/inventory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var testEpoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// newTestCatalog construye un catálogo con reloj e IDs deterministas.
func newTestCatalog() *inventory.Catalog {
	tick := 0
	seq := 0
	return inventory.NewCatalog(
		inventory.WithClock(func() time.Time {
			tick++
			return testEpoch.Add(time.Duration(tick) * time.Second)
		}),
		inventory.WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("item-%03d", seq)
		}),
	)
}

func mustCreate(t *testing.T, c *inventory.Catalog, name, sku string, threshold int) entity.Item {
	t.Helper()
	item, err := c.CreateItem(entity.NewItemInput{
		Name:              name,
		SKU:               sku,
		UnitPrice:         decimal.RequireFromString("10.50"),
		LowStockThreshold: threshold,
	})
	require.NoError(t, err)
	return item
}

func ptr[T any](v T) *T { return &v }

// ──────────────────────────────────────────────────────────────────────────────
// Catalog Store
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateItem_IniciaEnCeroConPrecioRedondeado(t *testing.T) {
	c := newTestCatalog()
	item, err := c.CreateItem(entity.NewItemInput{
		Name:              "  Tornillo M4  ",
		SKU:               "TOR-M4",
		UnitPrice:         decimal.RequireFromString("0.125"),
		LowStockThreshold: 5,
	})
	require.NoError(t, err)

	assert.Equal(t, "item-001", item.ID)
	assert.Equal(t, "Tornillo M4", item.Name)
	assert.Equal(t, 0, item.Quantity)
	assert.True(t, item.UnitPrice.Equal(decimal.RequireFromString("0.13")), "precio redondeado a 2 decimales, got %s", item.UnitPrice)
	assert.Equal(t, testEpoch.Add(time.Second), item.LastModified)
	assert.Equal(t, 1, c.Len())
}

func TestCreateItem_SKUDuplicadoNoAgregaItem(t *testing.T) {
	c := newTestCatalog()
	mustCreate(t, c, "Tuerca", "TU-1", 0)

	_, err := c.CreateItem(entity.NewItemInput{Name: "Otra tuerca", SKU: "TU-1"})
	require.ErrorIs(t, err, domain.ErrDuplicateSKU)
	assert.Equal(t, 1, c.Len())
}

func TestCreateItem_ItemsSinSKUNoColisionan(t *testing.T) {
	c := newTestCatalog()
	mustCreate(t, c, "A", "", 0)
	mustCreate(t, c, "B", "", 0)
	assert.Equal(t, 2, c.Len())
}

func TestCreateItem_EntradaInvalida(t *testing.T) {
	cases := map[string]entity.NewItemInput{
		"nombre vacío":    {Name: "   "},
		"precio negativo": {Name: "X", UnitPrice: decimal.NewFromInt(-1)},
		"umbral negativo": {Name: "X", LowStockThreshold: -1},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			c := newTestCatalog()
			_, err := c.CreateItem(in)
			require.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Equal(t, 0, c.Len())
		})
	}
}

func TestCreateItem_TextoQueLaHojaNoGuarda(t *testing.T) {
	cases := map[string]entity.NewItemInput{
		"tabulación vertical": {Name: "Caja\vA"},
		"carácter nulo":       {Name: "Caja", SKU: "S\x00"},
		"utf-8 inválido":      {Name: "Caja \xff"},
		"no carácter":         {Name: "Caja \uFFFE"},
		"demasiado largo":     {Name: strings.Repeat("á", inventory.MaxTextLength+1)},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			c := newTestCatalog()
			_, err := c.CreateItem(in)
			require.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Equal(t, 0, c.Len())
		})
	}

	c := newTestCatalog()
	_, err := c.CreateItem(entity.NewItemInput{Name: "Línea 1\nLínea 2\tÑ 😀", SKU: strings.Repeat("x", inventory.MaxTextLength)})
	require.NoError(t, err)
}

func TestUpdateFields_TextoQueLaHojaNoGuarda(t *testing.T) {
	c := newTestCatalog()
	item := mustCreate(t, c, "Caja", "C-1", 0)

	_, err := c.UpdateFields(item.ID, entity.ItemPatch{Name: ptr("Caja\vA")})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = c.UpdateFields(item.ID, entity.ItemPatch{SKU: ptr(strings.Repeat("s", 40000))})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	got, err := c.GetItem(item.ID)
	require.NoError(t, err)
	assert.Equal(t, item, got)
}

func TestGetItem_NoEncontrado(t *testing.T) {
	c := newTestCatalog()
	_, err := c.GetItem("nope")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateFields_AplicaPatchYActualizaLastModified(t *testing.T) {
	c := newTestCatalog()
	item := mustCreate(t, c, "Cable", "CAB-1", 2)

	updated, err := c.UpdateFields(item.ID, entity.ItemPatch{
		Name:              ptr("Cable UTP"),
		SKU:               ptr("CAB-UTP"),
		UnitPrice:         ptr(decimal.RequireFromString("3.999")),
		LowStockThreshold: ptr(7),
	})
	require.NoError(t, err)
	assert.Equal(t, "Cable UTP", updated.Name)
	assert.Equal(t, "CAB-UTP", updated.SKU)
	assert.True(t, updated.UnitPrice.Equal(decimal.RequireFromString("4.00")))
	assert.Equal(t, 7, updated.LowStockThreshold)
	assert.True(t, updated.LastModified.After(item.LastModified))

	// El SKU anterior queda libre.
	_, err = c.CreateItem(entity.NewItemInput{Name: "Otro", SKU: "CAB-1"})
	require.NoError(t, err)
}

func TestUpdateFields_SKUDuplicadoEsAtomico(t *testing.T) {
	c := newTestCatalog()
	mustCreate(t, c, "A", "SKU-A", 0)
	b := mustCreate(t, c, "B", "SKU-B", 0)

	_, err := c.UpdateFields(b.ID, entity.ItemPatch{Name: ptr("B renombrado"), SKU: ptr("SKU-A")})
	require.ErrorIs(t, err, domain.ErrDuplicateSKU)

	got, err := c.GetItem(b.ID)
	require.NoError(t, err)
	assert.Equal(t, b, got, "un patch fallido no debe modificar el ítem")
}

func TestUpdateFields_MismoSKUDelPropioItem(t *testing.T) {
	c := newTestCatalog()
	a := mustCreate(t, c, "A", "SKU-A", 0)
	_, err := c.UpdateFields(a.ID, entity.ItemPatch{SKU: ptr("SKU-A")})
	require.NoError(t, err)
}

func TestUpdateFields_NoEncontrado(t *testing.T) {
	c := newTestCatalog()
	_, err := c.UpdateFields("nope", entity.ItemPatch{Name: ptr("x")})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRemoveItem(t *testing.T) {
	c := newTestCatalog()
	a := mustCreate(t, c, "A", "SKU-A", 0)
	b := mustCreate(t, c, "B", "SKU-B", 0)
	mustCreate(t, c, "C", "", 0)

	require.NoError(t, c.RemoveItem(b.ID))
	names := []string{}
	for _, it := range c.Items() {
		names = append(names, it.Name)
	}
	assert.Equal(t, []string{"A", "C"}, names, "se conserva el orden de inserción")

	require.ErrorIs(t, c.RemoveItem(b.ID), domain.ErrNotFound)

	_, err := c.ApplyMovement(a.ID, 3, entity.ReasonReceive)
	require.NoError(t, err)
	require.ErrorIs(t, c.RemoveItem(a.ID), domain.ErrHasHistory)
	assert.Equal(t, 2, c.Len())

	// El SKU del ítem eliminado queda disponible.
	_, err = c.CreateItem(entity.NewItemInput{Name: "B2", SKU: "SKU-B"})
	require.NoError(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// Movement Engine
// ──────────────────────────────────────────────────────────────────────────────

func TestApplyMovement_RegistraAuditoria(t *testing.T) {
	c := newTestCatalog()
	item := mustCreate(t, c, "Resma", "RES-1", 0)

	rec, err := c.ApplyMovement(item.ID, 10, entity.ReasonReceive)
	require.NoError(t, err)
	assert.Equal(t, item.ID, rec.ItemID)
	assert.Equal(t, 10, rec.Delta)
	assert.Equal(t, entity.ReasonReceive, rec.Reason)
	assert.Equal(t, 10, rec.ResultingQuantity)

	got, _ := c.GetItem(item.ID)
	assert.Equal(t, 10, got.Quantity)
	assert.Equal(t, rec.Timestamp, got.LastModified)
	assert.Equal(t, []entity.MovementRecord{rec}, c.Movements())
}

func TestApplyMovement_StockInsuficienteNoCambiaCantidad(t *testing.T) {
	c := newTestCatalog()
	item := mustCreate(t, c, "Resma", "", 0)
	_, err := c.ApplyMovement(item.ID, 4, entity.ReasonReceive)
	require.NoError(t, err)
	before, _ := c.GetItem(item.ID)

	_, err = c.ApplyMovement(item.ID, -(before.Quantity + 1), entity.ReasonIssue)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	after, _ := c.GetItem(item.ID)
	assert.Equal(t, before, after)
	assert.Len(t, c.Movements(), 1)
}

func TestApplyMovement_ValidaSignoPorMotivo(t *testing.T) {
	c := newTestCatalog()
	item := mustCreate(t, c, "Resma", "", 0)

	cases := []struct {
		delta  int
		reason entity.MovementReason
	}{
		{-1, entity.ReasonReceive},
		{1, entity.ReasonIssue},
		{0, entity.ReasonAdjustment},
		{5, entity.MovementReason("GIFT")},
	}
	for _, tc := range cases {
		_, err := c.ApplyMovement(item.ID, tc.delta, tc.reason)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "delta %d motivo %s", tc.delta, tc.reason)
	}
	assert.Empty(t, c.Movements())
}

func TestApplyMovement_ItemInexistente(t *testing.T) {
	c := newTestCatalog()
	_, err := c.ApplyMovement("nope", 1, entity.ReasonReceive)
	require.ErrorIs(t, err, domain.ErrNotFound)

	// La existencia se valida antes que el signo.
	_, err = c.ApplyMovement("nope", -1, entity.ReasonReceive)
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.NotErrorIs(t, err, domain.ErrInvalidInput)

	_, err = c.ApplyBatch([]entity.MovementRequest{{ItemID: "nope", Delta: 3, Reason: entity.ReasonIssue}})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

// Para cualquier secuencia de movimientos válidos la cantidad nunca es negativa y
// el resultado final es la cantidad inicial más la suma de los deltas aplicados.
func TestApplyMovement_PropiedadSumaDeDeltas(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	reasons := []entity.MovementReason{entity.ReasonAdjustment, entity.ReasonCorrection}

	for round := 0; round < 50; round++ {
		c := newTestCatalog()
		item := mustCreate(t, c, "Prop", "", 0)
		applied := 0
		for step := 0; step < 40; step++ {
			delta := rng.Intn(21) - 10
			if delta == 0 {
				continue
			}
			reason := reasons[rng.Intn(len(reasons))]
			rec, err := c.ApplyMovement(item.ID, delta, reason)
			if err != nil {
				require.ErrorIs(t, err, domain.ErrInsufficientStock)
				continue
			}
			applied += delta
			require.GreaterOrEqual(t, rec.ResultingQuantity, 0)
		}
		got, _ := c.GetItem(item.ID)
		assert.Equal(t, applied, got.Quantity)
		assert.GreaterOrEqual(t, got.Quantity, 0)
	}
}

func TestApplyBatch_TodoONada(t *testing.T) {
	c := newTestCatalog()
	a := mustCreate(t, c, "A", "", 0)
	b := mustCreate(t, c, "B", "", 0)
	_, err := c.ApplyMovement(a.ID, 5, entity.ReasonReceive)
	require.NoError(t, err)
	_, err = c.ApplyMovement(b.ID, 1, entity.ReasonReceive)
	require.NoError(t, err)
	before := c.Snapshot()

	_, err = c.ApplyBatch([]entity.MovementRequest{
		{ItemID: a.ID, Delta: -2, Reason: entity.ReasonIssue},
		{ItemID: b.ID, Delta: -3, Reason: entity.ReasonIssue},
		{ItemID: a.ID, Delta: 1, Reason: entity.ReasonReceive},
	})
	var batchErr *domain.BatchError
	require.ErrorAs(t, err, &batchErr)
	assert.Equal(t, 1, batchErr.Index)
	assert.Equal(t, b.ID, batchErr.ItemID)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, before, c.Snapshot(), "ninguna entrada del lote debe aplicarse")
}

func TestApplyBatch_AcumulaDeltasDelMismoItem(t *testing.T) {
	c := newTestCatalog()
	a := mustCreate(t, c, "A", "", 0)
	_, err := c.ApplyMovement(a.ID, 5, entity.ReasonReceive)
	require.NoError(t, err)

	// 5 - 3 - 3 < 0: la segunda salida debe fallar aunque por sí sola cabría.
	_, err = c.ApplyBatch([]entity.MovementRequest{
		{ItemID: a.ID, Delta: -3, Reason: entity.ReasonIssue},
		{ItemID: a.ID, Delta: -3, Reason: entity.ReasonIssue},
	})
	var batchErr *domain.BatchError
	require.ErrorAs(t, err, &batchErr)
	assert.Equal(t, 1, batchErr.Index)

	records, err := c.ApplyBatch([]entity.MovementRequest{
		{ItemID: a.ID, Delta: -3, Reason: entity.ReasonIssue},
		{ItemID: a.ID, Delta: 4, Reason: entity.ReasonReceive},
		{ItemID: a.ID, Delta: -6, Reason: entity.ReasonIssue},
	})
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []int{2, 6, 0}, []int{records[0].ResultingQuantity, records[1].ResultingQuantity, records[2].ResultingQuantity})
	assert.Len(t, c.Movements(), 4)
}

func TestApplyBatch_ItemInexistenteYLoteVacio(t *testing.T) {
	c := newTestCatalog()
	a := mustCreate(t, c, "A", "", 0)

	_, err := c.ApplyBatch([]entity.MovementRequest{
		{ItemID: a.ID, Delta: 1, Reason: entity.ReasonReceive},
		{ItemID: "nope", Delta: 1, Reason: entity.ReasonReceive},
	})
	var batchErr *domain.BatchError
	require.ErrorAs(t, err, &batchErr)
	assert.Equal(t, 1, batchErr.Index)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, c.Movements())

	_, err = c.ApplyBatch(nil)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestMovementsFor(t *testing.T) {
	c := newTestCatalog()
	a := mustCreate(t, c, "A", "", 0)
	b := mustCreate(t, c, "B", "", 0)
	_, _ = c.ApplyMovement(a.ID, 1, entity.ReasonReceive)
	_, _ = c.ApplyMovement(b.ID, 2, entity.ReasonReceive)
	_, _ = c.ApplyMovement(a.ID, 3, entity.ReasonReceive)

	got, err := c.MovementsFor(a.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 4, got[1].ResultingQuantity)

	_, err = c.MovementsFor("nope")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Snapshot / Hydrate
// ──────────────────────────────────────────────────────────────────────────────

func TestSnapshot_NoComparteEstado(t *testing.T) {
	c := newTestCatalog()
	a := mustCreate(t, c, "A", "", 0)
	snap := c.Snapshot()
	snap.Items[0].Quantity = 99

	got, _ := c.GetItem(a.ID)
	assert.Equal(t, 0, got.Quantity)
}

func TestHydrate_ReconstruyeCatalogo(t *testing.T) {
	c := newTestCatalog()
	a := mustCreate(t, c, "A", "SKU-A", 1)
	mustCreate(t, c, "B", "", 0)
	_, err := c.ApplyMovement(a.ID, 8, entity.ReasonReceive)
	require.NoError(t, err)

	restored, err := inventory.Hydrate(c.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, c.Snapshot(), restored.Snapshot())

	// Invariantes reconstruidas: SKU ocupado e historial presente.
	_, err = restored.CreateItem(entity.NewItemInput{Name: "Z", SKU: "SKU-A"})
	require.ErrorIs(t, err, domain.ErrDuplicateSKU)
	require.ErrorIs(t, restored.RemoveItem(a.ID), domain.ErrHasHistory)
}

func TestHydrate_RechazaInvariantesRotas(t *testing.T) {
	base := entity.Item{ID: "1", Name: "A", UnitPrice: decimal.Zero}
	cases := map[string]inventory.Snapshot{
		"id duplicado":         {Items: []entity.Item{base, base}},
		"sku duplicado":        {Items: []entity.Item{{ID: "1", Name: "A", SKU: "S"}, {ID: "2", Name: "B", SKU: "S"}}},
		"cantidad negativa":    {Items: []entity.Item{{ID: "1", Name: "A", Quantity: -1}}},
		"movimiento huérfano":  {Items: []entity.Item{base}, Movements: []entity.MovementRecord{{ItemID: "2", Delta: 1, Reason: entity.ReasonReceive}}},
		"motivo inconsistente": {Items: []entity.Item{base}, Movements: []entity.MovementRecord{{ItemID: "1", Delta: 1, Reason: entity.ReasonIssue}}},
		"nombre con control":   {Items: []entity.Item{{ID: "1", Name: "A\vB"}}},
		"cadena rota": {
			Items: []entity.Item{{ID: "1", Name: "A", Quantity: 4}},
			Movements: []entity.MovementRecord{
				{ItemID: "1", Delta: 5, Reason: entity.ReasonReceive, ResultingQuantity: 5},
				{ItemID: "1", Delta: -1, Reason: entity.ReasonIssue, ResultingQuantity: 3},
			},
		},
		"historial incompleto": {
			Items: []entity.Item{{ID: "1", Name: "A", Quantity: 9}},
			Movements: []entity.MovementRecord{
				{ItemID: "1", Delta: 5, Reason: entity.ReasonReceive, ResultingQuantity: 5},
			},
		},
	}
	for name, snap := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := inventory.Hydrate(snap)
			require.Error(t, err)
		})
	}
}

func TestHydrate_HistorialQueEmpiezaAMitad(t *testing.T) {
	// Un archivo guardado sin historial y editado después no parte de cero.
	snap := inventory.Snapshot{
		Items: []entity.Item{{ID: "1", Name: "A", Quantity: 12}},
		Movements: []entity.MovementRecord{
			{ItemID: "1", Delta: 2, Reason: entity.ReasonReceive, ResultingQuantity: 10},
			{ItemID: "1", Delta: 2, Reason: entity.ReasonCorrection, ResultingQuantity: 12},
		},
	}
	c, err := inventory.Hydrate(snap)
	require.NoError(t, err)
	assert.Len(t, c.Movements(), 2)
}
