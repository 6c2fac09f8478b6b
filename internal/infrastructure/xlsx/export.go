package xlsx

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/inventario-desktop/internal/domain/entity"
)

// maxSheetName límite de longitud de nombre de hoja en Excel.
const maxSheetName = 31

// EncodeView exporta una vista (búsqueda, bajo stock, catálogo completo) a un libro de una
// sola hoja con las mismas columnas que Items.
func EncodeView(w io.Writer, title string, items []entity.Item) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := SheetName(title)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("xlsx: renombrar hoja: %w", err)
	}
	if err := writeItemsSheet(f, sheet, items); err != nil {
		return err
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx: escribir exportación: %w", err)
	}
	return nil
}

// SheetName adapta un título a un nombre de hoja válido.
func SheetName(title string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '-'
		}
		return r
	}, strings.TrimSpace(title))
	name = strings.Trim(name, "'")
	if name == "" {
		return ItemsSheet
	}
	if r := []rune(name); len(r) > maxSheetName {
		name = string(r[:maxSheetName])
	}
	return name
}
