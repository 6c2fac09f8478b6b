package inventory

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/inventario-desktop/internal/domain"
	"github.com/jhoicas/inventario-desktop/internal/domain/entity"
)

// Catalog es la raíz del agregado: ítems en orden de inserción más el historial
// de movimientos (solo se agrega al final). No es seguro para uso concurrente;
// el controlador de sesión serializa el acceso.
//
// Todas las operaciones que fallan dejan el catálogo sin cambios.
type Catalog struct {
	items     map[string]*entity.Item
	order     []string
	skus      map[string]string // sku -> item id
	movements []entity.MovementRecord
	history   map[string]int // item id -> cantidad de movimientos
	clock     func() time.Time
	newID     func() string
}

// Option configura un Catalog.
type Option func(*Catalog)

// WithClock reemplaza el reloj usado para LastModified y Timestamp.
func WithClock(clock func() time.Time) Option {
	return func(c *Catalog) { c.clock = clock }
}

// WithIDGenerator reemplaza el generador de IDs de ítems.
func WithIDGenerator(gen func() string) Option {
	return func(c *Catalog) { c.newID = gen }
}

// NewCatalog construye un catálogo vacío.
func NewCatalog(opts ...Option) *Catalog {
	c := &Catalog{
		items:   make(map[string]*entity.Item),
		skus:    make(map[string]string),
		history: make(map[string]int),
		clock:   defaultClock,
		newID:   func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// defaultClock hora UTC sin lectura monotónica, para que sobreviva un ciclo guardar/cargar.
func defaultClock() time.Time {
	return time.Now().UTC().Round(0)
}

// Len número de ítems.
func (c *Catalog) Len() int { return len(c.order) }

// CreateItem crea un ítem con cantidad 0.
func (c *Catalog) CreateItem(in entity.NewItemInput) (entity.Item, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return entity.Item{}, fmt.Errorf("%w: nombre vacío", domain.ErrInvalidInput)
	}
	if err := ValidateText("nombre", name); err != nil {
		return entity.Item{}, err
	}
	if in.LowStockThreshold < 0 {
		return entity.Item{}, fmt.Errorf("%w: umbral negativo", domain.ErrInvalidInput)
	}
	price, err := NormalizePrice(in.UnitPrice)
	if err != nil {
		return entity.Item{}, err
	}
	sku := strings.TrimSpace(in.SKU)
	if err := ValidateText("sku", sku); err != nil {
		return entity.Item{}, err
	}
	if sku != "" {
		if _, taken := c.skus[sku]; taken {
			return entity.Item{}, fmt.Errorf("%w: %s", domain.ErrDuplicateSKU, sku)
		}
	}
	id := c.newID()
	if _, exists := c.items[id]; exists || id == "" {
		return entity.Item{}, fmt.Errorf("%w: id generado inválido %q", domain.ErrInvalidInput, id)
	}

	item := &entity.Item{
		ID:                id,
		Name:              name,
		SKU:               sku,
		Quantity:          0,
		UnitPrice:         price,
		LowStockThreshold: in.LowStockThreshold,
		LastModified:      c.clock(),
	}
	c.items[id] = item
	c.order = append(c.order, id)
	if sku != "" {
		c.skus[sku] = id
	}
	return *item, nil
}

// GetItem obtiene una copia del ítem.
func (c *Catalog) GetItem(id string) (entity.Item, error) {
	item, ok := c.items[id]
	if !ok {
		return entity.Item{}, fmt.Errorf("%w: ítem %s", domain.ErrNotFound, id)
	}
	return *item, nil
}

// UpdateFields aplica un patch. No permite modificar Quantity (solo vía movimientos).
func (c *Catalog) UpdateFields(id string, patch entity.ItemPatch) (entity.Item, error) {
	current, ok := c.items[id]
	if !ok {
		return entity.Item{}, fmt.Errorf("%w: ítem %s", domain.ErrNotFound, id)
	}
	// Se valida sobre una copia y solo se confirma si todo es válido.
	next := *current
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return entity.Item{}, fmt.Errorf("%w: nombre vacío", domain.ErrInvalidInput)
		}
		if err := ValidateText("nombre", name); err != nil {
			return entity.Item{}, err
		}
		next.Name = name
	}
	if patch.UnitPrice != nil {
		price, err := NormalizePrice(*patch.UnitPrice)
		if err != nil {
			return entity.Item{}, err
		}
		next.UnitPrice = price
	}
	if patch.LowStockThreshold != nil {
		if *patch.LowStockThreshold < 0 {
			return entity.Item{}, fmt.Errorf("%w: umbral negativo", domain.ErrInvalidInput)
		}
		next.LowStockThreshold = *patch.LowStockThreshold
	}
	if patch.SKU != nil {
		sku := strings.TrimSpace(*patch.SKU)
		if err := ValidateText("sku", sku); err != nil {
			return entity.Item{}, err
		}
		if owner, taken := c.skus[sku]; sku != "" && taken && owner != id {
			return entity.Item{}, fmt.Errorf("%w: %s", domain.ErrDuplicateSKU, sku)
		}
		next.SKU = sku
	}
	if patch.IsEmpty() {
		return next, nil
	}

	next.LastModified = c.clock()
	if current.SKU != next.SKU {
		if current.SKU != "" {
			delete(c.skus, current.SKU)
		}
		if next.SKU != "" {
			c.skus[next.SKU] = id
		}
	}
	*current = next
	return next, nil
}

// RemoveItem elimina un ítem. Los ítems con historial no se pueden eliminar
// (ErrHasHistory): el historial es de solo agregar y debe seguir referenciando ítems existentes.
func (c *Catalog) RemoveItem(id string) error {
	item, ok := c.items[id]
	if !ok {
		return fmt.Errorf("%w: ítem %s", domain.ErrNotFound, id)
	}
	if c.history[id] > 0 {
		return fmt.Errorf("%w: ítem %s (%d movimientos)", domain.ErrHasHistory, id, c.history[id])
	}
	delete(c.items, id)
	if item.SKU != "" {
		delete(c.skus, item.SKU)
	}
	for i, oid := range c.order {
		if oid == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

// Items devuelve copias de los ítems en orden de inserción.
func (c *Catalog) Items() []entity.Item {
	out := make([]entity.Item, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, *c.items[id])
	}
	return out
}

// Movements devuelve una copia del historial completo en orden de registro.
func (c *Catalog) Movements() []entity.MovementRecord {
	out := make([]entity.MovementRecord, len(c.movements))
	copy(out, c.movements)
	return out
}

// MovementsFor devuelve el historial de un ítem.
func (c *Catalog) MovementsFor(id string) ([]entity.MovementRecord, error) {
	if _, ok := c.items[id]; !ok {
		return nil, fmt.Errorf("%w: ítem %s", domain.ErrNotFound, id)
	}
	out := make([]entity.MovementRecord, 0, c.history[id])
	for _, m := range c.movements {
		if m.ItemID == id {
			out = append(out, m)
		}
	}
	return out, nil
}

// Snapshot vista de solo lectura del catálogo en un instante.
type Snapshot struct {
	Items     []entity.Item
	Movements []entity.MovementRecord
}

// Snapshot copia el estado actual; el resultado no comparte memoria mutable con el catálogo.
func (c *Catalog) Snapshot() Snapshot {
	return Snapshot{Items: c.Items(), Movements: c.Movements()}
}
