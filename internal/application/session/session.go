// Package session es el dueño del catálogo abierto: ciclo de vida del libro (New, Open, Save,
// Close), autoguardado, exportación y la API estrecha que consume la capa de presentación.
//
// Open, Save, Close y New se serializan entre sí. Las mutaciones toman el lock de escritura del
// catálogo; las consultas trabajan sobre una instantánea, así que nunca observan un estado a medias.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/inventario-desktop/internal/application/query"
	"github.com/jhoicas/inventario-desktop/internal/domain"
	"github.com/jhoicas/inventario-desktop/internal/domain/entity"
	"github.com/jhoicas/inventario-desktop/internal/domain/inventory"
	"github.com/jhoicas/inventario-desktop/pkg/logger"
)

// State estado visible de la sesión.
type State struct {
	Open      bool   `json:"open"`
	Path      string `json:"path"`
	Dirty     bool   `json:"dirty"`
	Items     int    `json:"items"`
	Movements int    `json:"movements"`
}

// Controller implementa Items, Movements, Queries, Lifecycle y Exports.
type Controller struct {
	store       Store
	metrics     Metrics
	log         *logger.Logger
	reports     ReportGenerator
	sheets      SheetEncoder
	ioTimeout   time.Duration
	exportDir   string
	now         func() time.Time
	catalogOpts []inventory.Option

	ioMu sync.Mutex // serializa New/Open/Save/Close/Export

	mu       sync.RWMutex
	catalog  *inventory.Catalog
	path     string
	revision uint64 // se incrementa con cada mutación exitosa
	saved    uint64 // revisión escrita en path
}

// Option configura el Controller.
type Option func(*Controller)

// WithMetrics observador de movimientos y operaciones de E/S.
func WithMetrics(m Metrics) Option { return func(c *Controller) { c.metrics = m } }

// WithLogger logger de la sesión.
func WithLogger(l *logger.Logger) Option { return func(c *Controller) { c.log = l } }

// WithIOTimeout límite para cada carga, guardado o exportación. 0 = sin límite propio.
func WithIOTimeout(d time.Duration) Option { return func(c *Controller) { c.ioTimeout = d } }

// WithReports habilita la exportación a PDF.
func WithReports(g ReportGenerator) Option { return func(c *Controller) { c.reports = g } }

// WithSheetEncoder habilita la exportación a XLSX.
func WithSheetEncoder(enc SheetEncoder) Option { return func(c *Controller) { c.sheets = enc } }

// WithExportDir carpeta de exportación cuando la solicitud no trae ruta.
func WithExportDir(dir string) Option { return func(c *Controller) { c.exportDir = dir } }

// WithClock reloj usado en reportes y nombres de exportación.
func WithClock(now func() time.Time) Option { return func(c *Controller) { c.now = now } }

// WithCatalogOptions opciones para los catálogos vacíos creados con New.
func WithCatalogOptions(opts ...inventory.Option) Option {
	return func(c *Controller) { c.catalogOpts = opts }
}

// NewController construye la sesión sin catálogo abierto.
func NewController(store Store, opts ...Option) *Controller {
	c := &Controller{
		store:     store,
		metrics:   nopMetrics{},
		log:       logger.Nop(),
		exportDir: "exports",
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ── Ciclo de vida ─────────────────────────────────────────────────────────────

// New reemplaza el catálogo por uno vacío sin ruta asociada.
func (c *Controller) New() error {
	c.ioMu.Lock()
	defer c.ioMu.Unlock()

	cat := inventory.NewCatalog(c.catalogOpts...)
	c.replace(cat, "")
	c.log.Info().Msg("catálogo nuevo")
	return nil
}

// Open carga path y reemplaza el catálogo. Si falla, el estado anterior queda intacto.
func (c *Controller) Open(ctx context.Context, path string) error {
	c.ioMu.Lock()
	defer c.ioMu.Unlock()

	ctx, cancel := c.ioContext(ctx)
	defer cancel()

	start := time.Now()
	cat, err := c.store.Load(ctx, path)
	elapsed := time.Since(start)
	c.metrics.WorkbookOperation("load", elapsed, err)
	if err != nil {
		c.log.Warn().Err(err).Str("path", path).Msg("no se pudo abrir el libro")
		return &domain.LoadError{Path: path, Err: err}
	}

	c.replace(cat, path)
	c.log.Info().
		Str("path", path).
		Int("items", cat.Len()).
		Int("movements", len(cat.Movements())).
		Dur("duration", elapsed).
		Msg("libro abierto")
	return nil
}

// Save escribe el catálogo en path, o en la última ruta abierta/guardada si path es "".
// El archivo anterior se conserva ante cualquier fallo.
func (c *Controller) Save(ctx context.Context, path string) error {
	c.ioMu.Lock()
	defer c.ioMu.Unlock()
	return c.save(ctx, path)
}

func (c *Controller) save(ctx context.Context, path string) error {
	c.mu.RLock()
	cat := c.catalog
	target := path
	if target == "" {
		target = c.path
	}
	var (
		snap inventory.Snapshot
		rev  uint64
	)
	if cat != nil {
		snap, rev = cat.Snapshot(), c.revision
	}
	c.mu.RUnlock()

	if cat == nil {
		return &domain.SaveError{Path: target, Err: domain.ErrNoCatalog}
	}
	if target == "" {
		return &domain.SaveError{Err: domain.ErrNoPath}
	}

	ctx, cancel := c.ioContext(ctx)
	defer cancel()

	start := time.Now()
	err := c.store.Save(ctx, target, snap)
	elapsed := time.Since(start)
	c.metrics.WorkbookOperation("save", elapsed, err)
	if err != nil {
		c.log.Error().Err(err).Str("path", target).Msg("no se pudo guardar el libro")
		return &domain.SaveError{Path: target, Err: err}
	}

	c.mu.Lock()
	if c.catalog == cat {
		c.path = target
		c.saved = rev
	}
	c.mu.Unlock()

	c.log.Info().
		Str("path", target).
		Int("items", len(snap.Items)).
		Int("movements", len(snap.Movements)).
		Dur("duration", elapsed).
		Msg("libro guardado")
	return nil
}

// SaveIfDirty guarda en la ruta actual solo si hay cambios sin guardar y una ruta conocida.
// Devuelve true si escribió.
func (c *Controller) SaveIfDirty(ctx context.Context) (bool, error) {
	c.ioMu.Lock()
	defer c.ioMu.Unlock()

	st := c.State()
	if !st.Open || !st.Dirty || st.Path == "" {
		return false, nil
	}
	if err := c.save(ctx, ""); err != nil {
		return false, err
	}
	return true, nil
}

// Close descarta el catálogo en memoria, con o sin cambios pendientes.
func (c *Controller) Close() error {
	c.ioMu.Lock()
	defer c.ioMu.Unlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.catalog == nil {
		return domain.ErrNoCatalog
	}
	if c.revision != c.saved {
		c.log.Warn().Str("path", c.path).Msg("se descartan cambios sin guardar")
	}
	c.catalog = nil
	c.path = ""
	c.revision, c.saved = 0, 0
	c.metrics.CatalogSize(0, 0)
	c.log.Info().Msg("libro cerrado")
	return nil
}

// State devuelve una foto del estado de la sesión.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.catalog == nil {
		return State{}
	}
	return State{
		Open:      true,
		Path:      c.path,
		Dirty:     c.revision != c.saved,
		Items:     c.catalog.Len(),
		Movements: len(c.catalog.Movements()),
	}
}

// RunAutosave guarda cada interval mientras haya cambios, hasta que ctx se cancele.
func (c *Controller) RunAutosave(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			saved, err := c.SaveIfDirty(ctx)
			if err != nil {
				c.log.Error().Err(err).Msg("autoguardado fallido")
				continue
			}
			if saved {
				c.log.Debug().Msg("autoguardado")
			}
		}
	}
}

func (c *Controller) replace(cat *inventory.Catalog, path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.catalog = cat
	c.path = path
	c.revision, c.saved = 0, 0
	c.observeSize(cat)
}

func (c *Controller) ioContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.ioTimeout > 0 {
		return context.WithTimeout(ctx, c.ioTimeout)
	}
	return context.WithCancel(ctx)
}

// observeSize actualiza los gauges; se llama con mu tomado.
func (c *Controller) observeSize(cat *inventory.Catalog) {
	items := cat.Items()
	low := 0
	for _, it := range items {
		if it.IsLowStock() {
			low++
		}
	}
	c.metrics.CatalogSize(len(items), low)
}

// ── Catálogo ──────────────────────────────────────────────────────────────────

// read ejecuta fn con el lock de lectura y un catálogo abierto.
func (c *Controller) read(fn func(cat *inventory.Catalog) error) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.catalog == nil {
		return domain.ErrNoCatalog
	}
	return fn(c.catalog)
}

// write ejecuta fn con el lock de escritura; si fn tiene éxito marca el catálogo como modificado.
func (c *Controller) write(fn func(cat *inventory.Catalog) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.catalog == nil {
		return domain.ErrNoCatalog
	}
	if err := fn(c.catalog); err != nil {
		return err
	}
	c.revision++
	c.observeSize(c.catalog)
	return nil
}

// CreateItem agrega un ítem con cantidad 0.
func (c *Controller) CreateItem(in entity.NewItemInput) (entity.Item, error) {
	var out entity.Item
	err := c.write(func(cat *inventory.Catalog) error {
		it, err := cat.CreateItem(in)
		out = it
		return err
	})
	return out, err
}

// GetItem busca un ítem por id.
func (c *Controller) GetItem(id string) (entity.Item, error) {
	var out entity.Item
	err := c.read(func(cat *inventory.Catalog) error {
		it, err := cat.GetItem(id)
		out = it
		return err
	})
	return out, err
}

// UpdateItem aplica un patch de campos editables. Un patch vacío no es una mutación.
func (c *Controller) UpdateItem(id string, patch entity.ItemPatch) (entity.Item, error) {
	if patch.IsEmpty() {
		return c.GetItem(id)
	}
	var out entity.Item
	err := c.write(func(cat *inventory.Catalog) error {
		it, err := cat.UpdateFields(id, patch)
		out = it
		return err
	})
	return out, err
}

// RemoveItem elimina un ítem sin historial.
func (c *Controller) RemoveItem(id string) error {
	return c.write(func(cat *inventory.Catalog) error {
		return cat.RemoveItem(id)
	})
}

// ApplyMovement aplica un movimiento y devuelve su registro.
func (c *Controller) ApplyMovement(req entity.MovementRequest) (entity.MovementRecord, error) {
	var out entity.MovementRecord
	err := c.write(func(cat *inventory.Catalog) error {
		rec, err := cat.ApplyMovement(req.ItemID, req.Delta, req.Reason)
		out = rec
		return err
	})
	if err != nil {
		c.metrics.MovementRejected(err)
		return entity.MovementRecord{}, err
	}
	c.metrics.MovementApplied(out.Reason)
	return out, nil
}

// ApplyBatch aplica todos los movimientos o ninguno.
func (c *Controller) ApplyBatch(reqs []entity.MovementRequest) ([]entity.MovementRecord, error) {
	var out []entity.MovementRecord
	err := c.write(func(cat *inventory.Catalog) error {
		recs, err := cat.ApplyBatch(reqs)
		out = recs
		return err
	})
	if err != nil {
		c.metrics.MovementRejected(err)
		return nil, err
	}
	for _, rec := range out {
		c.metrics.MovementApplied(rec.Reason)
	}
	return out, nil
}

// MovementsFor historial de un ítem en orden de aplicación.
func (c *Controller) MovementsFor(id string) ([]entity.MovementRecord, error) {
	var out []entity.MovementRecord
	err := c.read(func(cat *inventory.Catalog) error {
		recs, err := cat.MovementsFor(id)
		out = recs
		return err
	})
	return out, err
}

// View construye una vista de consulta sobre una instantánea del catálogo.
func (c *Controller) View() (*query.View, error) {
	var snap inventory.Snapshot
	err := c.read(func(cat *inventory.Catalog) error {
		snap = cat.Snapshot()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return query.NewView(snap), nil
}
