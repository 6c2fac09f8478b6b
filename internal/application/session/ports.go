package session

import (
	"context"
	"io"
	"time"

	"github.com/jhoicas/inventario-desktop/internal/application/query"
	"github.com/jhoicas/inventario-desktop/internal/domain/entity"
	"github.com/jhoicas/inventario-desktop/internal/domain/inventory"
)

// Store persiste el catálogo. Load devuelve un catálogo nuevo, nunca uno compartido.
type Store interface {
	Load(ctx context.Context, path string) (*inventory.Catalog, error)
	Save(ctx context.Context, path string, snap inventory.Snapshot) error
}

// Report contenido de un reporte imprimible.
type Report struct {
	Title       string
	GeneratedAt time.Time
	Items       []entity.Item
	Summary     query.Summary
}

// ReportGenerator genera el PDF de un reporte.
type ReportGenerator interface {
	GenerateReport(ctx context.Context, report Report) ([]byte, error)
}

// SheetEncoder escribe una vista como libro de una hoja.
type SheetEncoder func(w io.Writer, title string, items []entity.Item) error

// Metrics observador de la sesión; la implementación por defecto no hace nada.
type Metrics interface {
	MovementApplied(reason entity.MovementReason)
	MovementRejected(err error)
	WorkbookOperation(op string, d time.Duration, err error)
	CatalogSize(items, lowStock int)
}

// ── API estrecha para la capa de presentación ────────────────────────────────

// Items operaciones CRUD del catálogo.
type Items interface {
	CreateItem(in entity.NewItemInput) (entity.Item, error)
	GetItem(id string) (entity.Item, error)
	UpdateItem(id string, patch entity.ItemPatch) (entity.Item, error)
	RemoveItem(id string) error
}

// Movements motor de movimientos.
type Movements interface {
	ApplyMovement(req entity.MovementRequest) (entity.MovementRecord, error)
	ApplyBatch(reqs []entity.MovementRequest) ([]entity.MovementRecord, error)
	MovementsFor(id string) ([]entity.MovementRecord, error)
}

// Queries lecturas sobre una instantánea consistente.
type Queries interface {
	View() (*query.View, error)
}

// Lifecycle ciclo de vida del libro abierto.
type Lifecycle interface {
	New() error
	Open(ctx context.Context, path string) error
	Save(ctx context.Context, path string) error
	Close() error
	State() State
}

// Exports exportación de vistas a disco.
type Exports interface {
	Export(ctx context.Context, req ExportRequest) (string, error)
}

type nopMetrics struct{}

func (nopMetrics) MovementApplied(entity.MovementReason)          {}
func (nopMetrics) MovementRejected(error)                         {}
func (nopMetrics) WorkbookOperation(string, time.Duration, error) {}
func (nopMetrics) CatalogSize(int, int)                           {}
