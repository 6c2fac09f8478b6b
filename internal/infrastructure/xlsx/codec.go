// Package xlsx implementa el códec de hoja de cálculo del catálogo (formato .xlsx).
//
// Layout del libro:
//
//	Items      id | name | sku | quantity | unitPrice | lowStockThreshold | lastModified
//	Movements  itemId | delta | reason | timestamp | resultingQuantity   (opcional)
//
// Los precios se leen con inventory.PriceScale decimales y las fechas se guardan como
// texto RFC3339 con nanosegundos en UTC, de modo que leer(escribir(c)) reproduce c.
package xlsx

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/inventario-desktop/internal/domain"
	"github.com/jhoicas/inventario-desktop/internal/domain/entity"
	"github.com/jhoicas/inventario-desktop/internal/domain/inventory"
)

// Nombres de hojas.
const (
	ItemsSheet     = "Items"
	MovementsSheet = "Movements"
)

// Columnas en orden fijo.
var (
	ItemColumns     = []string{"id", "name", "sku", "quantity", "unitPrice", "lowStockThreshold", "lastModified"}
	MovementColumns = []string{"itemId", "delta", "reason", "timestamp", "resultingQuantity"}
)

const (
	colID = iota
	colName
	colSKU
	colQuantity
	colUnitPrice
	colThreshold
	colLastModified
)

const (
	colMovItemID = iota
	colMovDelta
	colMovReason
	colMovTimestamp
	colMovResulting
)

var errMissingSheet = errors.New("hoja inexistente")

// Codec serializa y parsea el catálogo.
type Codec struct {
	history bool
	now     func() time.Time
}

// CodecOption configura el Codec.
type CodecOption func(*Codec)

// WithHistory incluye (o no) la hoja Movements al escribir. Por defecto se incluye.
func WithHistory(enabled bool) CodecOption {
	return func(c *Codec) { c.history = enabled }
}

// WithNow reloj usado cuando una fila no trae lastModified.
func WithNow(now func() time.Time) CodecOption {
	return func(c *Codec) { c.now = now }
}

// NewCodec construye el códec.
func NewCodec(opts ...CodecOption) *Codec {
	c := &Codec{history: true, now: func() time.Time { return time.Now().UTC().Round(0) }}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ── Escritura ────────────────────────────────────────────────────────────────

// Encode escribe el snapshot como libro .xlsx.
func (c *Codec) Encode(w io.Writer, snap inventory.Snapshot) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", ItemsSheet); err != nil {
		return fmt.Errorf("xlsx: renombrar hoja: %w", err)
	}
	if err := writeItemsSheet(f, ItemsSheet, snap.Items); err != nil {
		return err
	}
	if c.history {
		if _, err := f.NewSheet(MovementsSheet); err != nil {
			return fmt.Errorf("xlsx: crear hoja %s: %w", MovementsSheet, err)
		}
		if err := writeHeader(f, MovementsSheet, MovementColumns); err != nil {
			return err
		}
		for i, m := range snap.Movements {
			values := []interface{}{
				m.ItemID,
				m.Delta,
				string(m.Reason),
				formatTime(m.Timestamp),
				m.ResultingQuantity,
			}
			if err := setRow(f, MovementsSheet, i+2, values); err != nil {
				return err
			}
		}
	}
	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx: escribir libro: %w", err)
	}
	return nil
}

func writeItemsSheet(f *excelize.File, sheet string, items []entity.Item) error {
	if err := writeHeader(f, sheet, ItemColumns); err != nil {
		return err
	}
	for i, it := range items {
		row := i + 2
		for col, text := range map[int]string{colID: it.ID, colName: it.Name, colSKU: it.SKU} {
			if err := inventory.ValidateText(ItemColumns[col], text); err != nil {
				return fmt.Errorf("xlsx: fila %d de %s: %w", row, sheet, err)
			}
		}
		values := []interface{}{
			it.ID,
			it.Name,
			it.SKU,
			it.Quantity,
			priceCell(it.UnitPrice),
			it.LowStockThreshold,
			formatTime(it.LastModified),
		}
		if err := setRow(f, sheet, row, values); err != nil {
			return err
		}
	}
	return nil
}

// maxExactDigits dígitos significativos que un float64 conserva sin pérdida.
const maxExactDigits = 15

// priceCell escribe el precio como número cuando el float64 lo representa exacto
// y como texto con PriceScale decimales cuando no.
func priceCell(p decimal.Decimal) interface{} {
	p = p.Round(inventory.PriceScale)
	digits := strings.TrimLeft(p.Coefficient().String(), "-")
	if len(digits) <= maxExactDigits {
		return p.InexactFloat64()
	}
	return p.StringFixed(inventory.PriceScale)
}

func writeHeader(f *excelize.File, sheet string, columns []string) error {
	header := make([]interface{}, len(columns))
	for i, name := range columns {
		header[i] = name
	}
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("xlsx: estilo encabezado: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(columns), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("xlsx: aplicar estilo: %w", err)
	}
	lastCol, _, _ := excelize.SplitCellName(last)
	return f.SetColWidth(sheet, "A", lastCol, 18)
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("xlsx: escribir fila %d de %s: %w", row, sheet, err)
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// ── Lectura ──────────────────────────────────────────────────────────────────

// Decode lee un libro completo y devuelve un catálogo nuevo. Cualquier fila inválida
// aborta la lectura con *domain.MalformedRowError; nunca se devuelve un catálogo parcial.
func (c *Codec) Decode(r io.Reader) (*inventory.Catalog, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("xlsx: abrir libro: %w", err)
	}
	defer func() { _ = f.Close() }()
	return c.decodeFile(f)
}

func (c *Codec) decodeFile(f *excelize.File) (*inventory.Catalog, error) {
	if idx, err := f.GetSheetIndex(ItemsSheet); err != nil || idx < 0 {
		return nil, &domain.MalformedRowError{Sheet: ItemsSheet, Row: 0, Field: "", Err: errMissingSheet}
	}
	items, err := c.DecodeItems(SheetRows(f, ItemsSheet))
	if err != nil {
		return nil, err
	}
	var movements []entity.MovementRecord
	if idx, err := f.GetSheetIndex(MovementsSheet); err == nil && idx >= 0 {
		movements, err = DecodeMovements(SheetRows(f, MovementsSheet), items)
		if err != nil {
			return nil, err
		}
	}
	catalog, err := inventory.Hydrate(inventory.Snapshot{Items: items, Movements: movements})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMalformedRow, err)
	}
	return catalog, nil
}

// DecodeItems parsea la hoja Items desde una secuencia de filas.
func (c *Codec) DecodeItems(rows RowSeq) ([]entity.Item, error) {
	items := make([]entity.Item, 0)
	ids := make(map[string]struct{})
	skus := make(map[string]struct{})
	sawHeader := false

	for row, err := range rows {
		if err != nil {
			return nil, fmt.Errorf("xlsx: leer hoja %s: %w", ItemsSheet, err)
		}
		if !sawHeader {
			if err := checkHeader(ItemsSheet, row, ItemColumns); err != nil {
				return nil, err
			}
			sawHeader = true
			continue
		}
		if row.Blank() {
			continue
		}
		item, err := c.parseItem(row)
		if err != nil {
			return nil, err
		}
		if _, dup := ids[item.ID]; dup {
			return nil, malformed(ItemsSheet, row.Index, ItemColumns[colID], fmt.Errorf("id duplicado %s", item.ID))
		}
		ids[item.ID] = struct{}{}
		if item.SKU != "" {
			if _, dup := skus[item.SKU]; dup {
				return nil, malformed(ItemsSheet, row.Index, ItemColumns[colSKU], fmt.Errorf("%w: %s", domain.ErrDuplicateSKU, item.SKU))
			}
			skus[item.SKU] = struct{}{}
		}
		items = append(items, item)
	}
	if !sawHeader {
		return nil, malformed(ItemsSheet, 1, ItemColumns[colID], errors.New("falta el encabezado"))
	}
	return items, nil
}

func (c *Codec) parseItem(row Row) (entity.Item, error) {
	field := func(col int) string { return ItemColumns[col] }

	item := entity.Item{
		ID:   row.Cell(colID),
		Name: row.Cell(colName),
		SKU:  row.Cell(colSKU),
	}
	if item.ID == "" {
		return entity.Item{}, malformed(ItemsSheet, row.Index, field(colID), errors.New("vacío"))
	}
	if item.Name == "" {
		return entity.Item{}, malformed(ItemsSheet, row.Index, field(colName), errors.New("vacío"))
	}

	qty, err := parseNonNegativeInt(row.Cell(colQuantity), true)
	if err != nil {
		return entity.Item{}, malformed(ItemsSheet, row.Index, field(colQuantity), err)
	}
	item.Quantity = qty

	price := decimal.Zero
	if raw := row.Cell(colUnitPrice); raw != "" {
		price, err = inventory.ParsePrice(raw)
		if err != nil {
			return entity.Item{}, malformed(ItemsSheet, row.Index, field(colUnitPrice), err)
		}
	}
	item.UnitPrice = price

	threshold, err := parseNonNegativeInt(row.Cell(colThreshold), false)
	if err != nil {
		return entity.Item{}, malformed(ItemsSheet, row.Index, field(colThreshold), err)
	}
	item.LowStockThreshold = threshold

	item.LastModified = c.now()
	if raw := row.Cell(colLastModified); raw != "" {
		ts, err := parseTime(raw)
		if err != nil {
			return entity.Item{}, malformed(ItemsSheet, row.Index, field(colLastModified), err)
		}
		item.LastModified = ts
	}
	return item, nil
}

// DecodeMovements parsea la hoja Movements; cada fila debe referenciar un ítem de items.
func DecodeMovements(rows RowSeq, items []entity.Item) ([]entity.MovementRecord, error) {
	known := make(map[string]struct{}, len(items))
	for _, it := range items {
		known[it.ID] = struct{}{}
	}
	type tail struct{ row, quantity int }
	last := make(map[string]tail, len(items))
	out := make([]entity.MovementRecord, 0)
	sawHeader := false
	for row, err := range rows {
		if err != nil {
			return nil, fmt.Errorf("xlsx: leer hoja %s: %w", MovementsSheet, err)
		}
		if !sawHeader {
			if err := checkHeader(MovementsSheet, row, MovementColumns); err != nil {
				return nil, err
			}
			sawHeader = true
			continue
		}
		if row.Blank() {
			continue
		}
		m, err := parseMovement(row, known)
		if err != nil {
			return nil, err
		}
		if prev, ok := last[m.ItemID]; ok && prev.quantity+m.Delta != m.ResultingQuantity {
			return nil, malformed(MovementsSheet, row.Index, MovementColumns[colMovResulting],
				fmt.Errorf("%d%+d no da %d (fila anterior %d)", prev.quantity, m.Delta, m.ResultingQuantity, prev.row))
		}
		last[m.ItemID] = tail{row: row.Index, quantity: m.ResultingQuantity}
		out = append(out, m)
	}
	// El último movimiento de cada ítem debe coincidir con su cantidad; si no, faltan
	// filas o la cantidad se editó a mano.
	for _, it := range items {
		if t, ok := last[it.ID]; ok && t.quantity != it.Quantity {
			return nil, malformed(MovementsSheet, t.row, MovementColumns[colMovResulting],
				fmt.Errorf("ítem %s: cantidad %d distinta de la última resultante %d", it.ID, it.Quantity, t.quantity))
		}
	}
	return out, nil
}

func parseMovement(row Row, known map[string]struct{}) (entity.MovementRecord, error) {
	field := func(col int) string { return MovementColumns[col] }

	m := entity.MovementRecord{ItemID: row.Cell(colMovItemID)}
	if _, ok := known[m.ItemID]; !ok {
		return m, malformed(MovementsSheet, row.Index, field(colMovItemID), fmt.Errorf("%w: ítem %q", domain.ErrNotFound, m.ItemID))
	}
	delta, err := parseInt(row.Cell(colMovDelta))
	if err != nil {
		return m, malformed(MovementsSheet, row.Index, field(colMovDelta), err)
	}
	m.Delta = delta
	reason, ok := entity.ParseMovementReason(row.Cell(colMovReason))
	if !ok || !reason.AcceptsDelta(delta) {
		return m, malformed(MovementsSheet, row.Index, field(colMovReason), fmt.Errorf("motivo %q inválido para delta %d", row.Cell(colMovReason), delta))
	}
	m.Reason = reason
	ts, err := parseTime(row.Cell(colMovTimestamp))
	if err != nil {
		return m, malformed(MovementsSheet, row.Index, field(colMovTimestamp), err)
	}
	m.Timestamp = ts
	resulting, err := parseNonNegativeInt(row.Cell(colMovResulting), true)
	if err != nil {
		return m, malformed(MovementsSheet, row.Index, field(colMovResulting), err)
	}
	m.ResultingQuantity = resulting
	return m, nil
}

func checkHeader(sheet string, row Row, columns []string) error {
	for i, want := range columns {
		if !strings.EqualFold(row.Cell(i), want) {
			return malformed(sheet, row.Index, want, fmt.Errorf("encabezado esperado %q, encontrado %q", want, row.Cell(i)))
		}
	}
	return nil
}

func malformed(sheet string, row int, field string, err error) error {
	return &domain.MalformedRowError{Sheet: sheet, Row: row, Field: field, Err: err}
}

// parseInt acepta enteros escritos como "5" o "5.0" (celdas numéricas editadas a mano).
func parseInt(raw string) (int, error) {
	if raw == "" {
		return 0, errors.New("vacío")
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || !d.IsInteger() {
		return 0, fmt.Errorf("entero inválido %q", raw)
	}
	return int(d.IntPart()), nil
}

func parseNonNegativeInt(raw string, required bool) (int, error) {
	if raw == "" && !required {
		return 0, nil
	}
	n, err := parseInt(raw)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("valor negativo %d", n)
	}
	return n, nil
}

// parseTime acepta RFC3339 o un número de serie de fecha de Excel.
func parseTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, errors.New("vacío")
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC(), nil
	}
	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("fecha inválida %q", raw)
}
