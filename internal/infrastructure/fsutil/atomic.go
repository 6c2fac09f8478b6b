// Package fsutil escritura de archivos con reemplazo atómico.
package fsutil

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteFileAtomic escribe el contenido producido por write en un archivo temporal del mismo
// directorio, hace fsync y lo renombra sobre path. Si write falla o ctx se cancela antes del
// rename, el archivo temporal se elimina y path conserva su contenido anterior.
//
// write corre en una goroutine aparte; si ctx se cancela primero la función retorna de
// inmediato y el temporal se limpia cuando write termine.
//
// Si path ya existe se conservan sus permisos; si no, se crea con DefaultPerm.
func WriteFileAtomic(ctx context.Context, path string, write func(w io.Writer) error) error {
	perm := DefaultPerm
	if fi, err := os.Stat(path); err == nil {
		perm = fi.Mode().Perm()
	}
	return WriteFileAtomicPerm(ctx, path, perm, write)
}

// DefaultPerm permisos de un archivo nuevo.
const DefaultPerm os.FileMode = 0o644

// WriteFileAtomicPerm igual que WriteFileAtomic pero fija siempre los permisos perm.
func WriteFileAtomicPerm(ctx context.Context, path string, perm os.FileMode, write func(w io.Writer) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("crear directorio %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("crear archivo temporal: %w", err)
	}
	tmpName := tmp.Name()
	// CreateTemp usa 0600.
	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("permisos del archivo temporal: %w", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- writeAndSync(tmp, write)
	}()

	select {
	case <-ctx.Done():
		go func() {
			<-done
			_ = os.Remove(tmpName)
		}()
		return ctx.Err()
	case err := <-done:
		if err != nil {
			_ = os.Remove(tmpName)
			return err
		}
	}

	if err := ctx.Err(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("reemplazar %s: %w", path, err)
	}
	syncDir(dir)
	return nil
}

func writeAndSync(f *os.File, write func(w io.Writer) error) error {
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("sincronizar archivo temporal: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("cerrar archivo temporal: %w", err)
	}
	return nil
}

// syncDir persiste la entrada de directorio del rename; no todos los sistemas lo soportan.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}
