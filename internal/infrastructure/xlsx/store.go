package xlsx

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jhoicas/inventario-desktop/internal/domain/inventory"
	"github.com/jhoicas/inventario-desktop/internal/infrastructure/fsutil"
)

// FileStore persiste el catálogo en un archivo .xlsx del disco local.
type FileStore struct {
	codec *Codec
}

// NewFileStore construye el store con el códec indicado.
func NewFileStore(codec *Codec) *FileStore {
	return &FileStore{codec: codec}
}

type loadResult struct {
	catalog *inventory.Catalog
	err     error
}

// Load abre y decodifica path fuera de la goroutine llamante. Si ctx se cancela primero
// se devuelve ctx.Err() y el resultado de la lectura se descarta.
func (s *FileStore) Load(ctx context.Context, path string) (*inventory.Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	done := make(chan loadResult, 1)
	go func() {
		c, err := s.loadFile(path)
		done <- loadResult{catalog: c, err: err}
	}()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		return res.catalog, res.err
	}
}

func (s *FileStore) loadFile(path string) (*inventory.Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("abrir %s: %w", path, err)
	}
	defer f.Close()
	return s.codec.Decode(f)
}

// Save escribe el snapshot con reemplazo atómico: ante error o cancelación el archivo
// anterior queda intacto.
func (s *FileStore) Save(ctx context.Context, path string, snap inventory.Snapshot) error {
	return fsutil.WriteFileAtomic(ctx, path, func(w io.Writer) error {
		return s.codec.Encode(w, snap)
	})
}
