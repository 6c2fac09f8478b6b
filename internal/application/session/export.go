package session

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/jhoicas/inventario-desktop/internal/application/query"
	"github.com/jhoicas/inventario-desktop/internal/domain"
	"github.com/jhoicas/inventario-desktop/internal/domain/entity"
	"github.com/jhoicas/inventario-desktop/internal/domain/inventory"
	"github.com/jhoicas/inventario-desktop/internal/infrastructure/fsutil"
)

// ExportFormat formato de archivo exportado.
type ExportFormat string

const (
	FormatPDF  ExportFormat = "pdf"
	FormatXLSX ExportFormat = "xlsx"
)

// ViewKind vista a exportar.
type ViewKind string

const (
	ViewAll      ViewKind = "all"
	ViewSearch   ViewKind = "search"
	ViewLowStock ViewKind = "lowstock"
)

// ExportRequest solicitud de exportación. Path vacío = carpeta de exportación con nombre generado.
type ExportRequest struct {
	Format ExportFormat
	View   ViewKind
	Query  string // texto para ViewSearch
	Title  string
	Path   string
}

var defaultTitles = map[ViewKind]string{
	ViewAll:      "Inventario",
	ViewSearch:   "Búsqueda",
	ViewLowStock: "Bajo stock",
}

// ParseExportFormat valida el formato; "" = pdf.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatPDF:
		return FormatPDF, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("formato de exportación %q: %w", s, domain.ErrInvalidInput)
}

// ParseViewKind valida la vista; "" = all.
func ParseViewKind(s string) (ViewKind, error) {
	switch ViewKind(strings.ToLower(strings.TrimSpace(s))) {
	case "", ViewAll:
		return ViewAll, nil
	case ViewSearch:
		return ViewSearch, nil
	case ViewLowStock:
		return ViewLowStock, nil
	}
	return "", fmt.Errorf("vista %q: %w", s, domain.ErrInvalidInput)
}

// Export escribe la vista pedida y devuelve la ruta final. El archivo se reemplaza
// atómicamente, igual que el libro.
func (c *Controller) Export(ctx context.Context, req ExportRequest) (string, error) {
	if req.View == "" {
		req.View = ViewAll
	}
	if req.Format == "" {
		req.Format = FormatPDF
	}

	c.ioMu.Lock()
	defer c.ioMu.Unlock()

	view, err := c.View()
	if err != nil {
		return "", err
	}
	items, err := selectItems(view, req)
	if err != nil {
		return "", err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = defaultTitles[req.View]
	}
	now := c.now()

	var encode func(w io.Writer) error
	switch req.Format {
	case FormatPDF:
		if c.reports == nil {
			return "", fmt.Errorf("exportación pdf no configurada: %w", domain.ErrInvalidInput)
		}
		encode = func(w io.Writer) error {
			// El resumen se calcula sobre los ítems exportados, no sobre todo el catálogo.
			doc, err := c.reports.GenerateReport(ctx, Report{
				Title:       title,
				GeneratedAt: now,
				Items:       items,
				Summary:     query.NewView(inventory.Snapshot{Items: items}).Summary(),
			})
			if err != nil {
				return err
			}
			_, err = io.Copy(w, bytes.NewReader(doc))
			return err
		}
	case FormatXLSX:
		if c.sheets == nil {
			return "", fmt.Errorf("exportación xlsx no configurada: %w", domain.ErrInvalidInput)
		}
		encode = func(w io.Writer) error { return c.sheets(w, title, items) }
	default:
		return "", fmt.Errorf("formato de exportación %q: %w", req.Format, domain.ErrInvalidInput)
	}

	path := req.Path
	if path == "" {
		path = filepath.Join(c.exportDir, fmt.Sprintf("%s-%s.%s", req.View, now.Format("20060102-150405"), req.Format))
	}

	ctx, cancel := c.ioContext(ctx)
	defer cancel()
	if err := fsutil.WriteFileAtomic(ctx, path, encode); err != nil {
		c.log.Error().Err(err).Str("path", path).Msg("exportación fallida")
		return "", fmt.Errorf("exportar %s: %w", path, err)
	}
	c.log.Info().Str("path", path).Str("view", string(req.View)).Int("items", len(items)).Msg("vista exportada")
	return path, nil
}

func selectItems(view *query.View, req ExportRequest) ([]entity.Item, error) {
	switch req.View {
	case ViewAll:
		return view.Items(), nil
	case ViewSearch:
		return view.Search(req.Query), nil
	case ViewLowStock:
		return view.LowStockItems(), nil
	}
	return nil, fmt.Errorf("vista %q: %w", req.View, domain.ErrInvalidInput)
}
