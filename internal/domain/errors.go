package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicateSKU      = errors.New("el SKU ya está registrado")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrHasHistory        = errors.New("el ítem tiene historial de movimientos")
	ErrMalformedRow      = errors.New("fila mal formada")
	ErrLoad              = errors.New("error al cargar el catálogo")
	ErrSave              = errors.New("error al guardar el catálogo")
	ErrNoCatalog         = errors.New("no hay catálogo abierto")
	ErrNoPath            = errors.New("no hay ruta de archivo asociada")
)

// MalformedRowError indica qué fila y columna invalidan la lectura completa de la hoja.
// Row es el número de fila de la hoja (1 = encabezado).
type MalformedRowError struct {
	Sheet string
	Row   int
	Field string
	Err   error
}

func (e *MalformedRowError) Error() string {
	msg := fmt.Sprintf("%s: hoja %q fila %d columna %q", ErrMalformedRow, e.Sheet, e.Row, e.Field)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedRowError) Unwrap() error { return e.Err }

func (e *MalformedRowError) Is(target error) bool { return target == ErrMalformedRow }

// BatchError identifica la entrada de un lote que impidió aplicarlo (Index en base 0).
type BatchError struct {
	Index  int
	ItemID string
	Err    error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("lote rechazado en la entrada %d (ítem %s): %v", e.Index, e.ItemID, e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }

// LoadError envuelve la causa de una apertura fallida.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s %q: %v", ErrLoad, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

func (e *LoadError) Is(target error) bool { return target == ErrLoad }

// SaveError envuelve la causa de un guardado fallido. El archivo previo queda intacto.
type SaveError struct {
	Path string
	Err  error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("%s %q: %v", ErrSave, e.Path, e.Err)
}

func (e *SaveError) Unwrap() error { return e.Err }

func (e *SaveError) Is(target error) bool { return target == ErrSave }
