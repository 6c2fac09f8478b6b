package xlsx

import (
	"iter"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Row una fila de la hoja: Index es el número de fila (1 = encabezado).
type Row struct {
	Index int
	Cells []string
}

// Cell devuelve la celda i recortada, o "" si la fila es más corta.
func (r Row) Cell(i int) string {
	if i < 0 || i >= len(r.Cells) {
		return ""
	}
	return strings.TrimSpace(r.Cells[i])
}

// Blank indica si todas las celdas están vacías.
func (r Row) Blank() bool {
	for _, c := range r.Cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// RowSeq secuencia perezosa y finita de filas. Cada recorrido empieza de nuevo desde la
// primera fila, por lo que se puede iterar varias veces. El decodificador solo depende de
// este tipo, no de la API de la librería de hojas de cálculo.
type RowSeq = iter.Seq2[Row, error]

// SheetRows recorre una hoja en streaming con valores crudos (sin formato numérico).
func SheetRows(f *excelize.File, sheet string) RowSeq {
	return func(yield func(Row, error) bool) {
		rows, err := f.Rows(sheet)
		if err != nil {
			yield(Row{}, err)
			return
		}
		defer rows.Close()
		index := 0
		for rows.Next() {
			index++
			cells, err := rows.Columns(excelize.Options{RawCellValue: true})
			if !yield(Row{Index: index, Cells: cells}, err) || err != nil {
				return
			}
		}
		if err := rows.Error(); err != nil {
			yield(Row{}, err)
		}
	}
}

// SliceRows adapta filas en memoria a RowSeq.
func SliceRows(rows [][]string) RowSeq {
	return func(yield func(Row, error) bool) {
		for i, cells := range rows {
			if !yield(Row{Index: i + 1, Cells: cells}, nil) {
				return
			}
		}
	}
}
