package fsutil_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-desktop/internal/infrastructure/fsutil"
)

func writeString(s string) func(io.Writer) error {
	return func(w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	}
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestWriteFileAtomic_CreaYReemplaza(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "inventario.xlsx")

	require.NoError(t, fsutil.WriteFileAtomic(context.Background(), path, writeString("v1")))
	require.NoError(t, fsutil.WriteFileAtomic(context.Background(), path, writeString("v2")))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "v2", string(got))
	assert.Equal(t, []string{"inventario.xlsx"}, listDir(t, filepath.Dir(path)), "no deben quedar temporales")
}

func TestWriteFileAtomic_ErrorConservaArchivoPrevio(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "inventario.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("original"), 0o644))

	boom := errors.New("disco lleno")
	err := fsutil.WriteFileAtomic(context.Background(), path, func(w io.Writer) error {
		_, _ = io.WriteString(w, "parcial")
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "original", string(got))
	assert.Equal(t, []string{"inventario.xlsx"}, listDir(t, dir))
}

func TestWriteFileAtomic_CancelacionConservaArchivoPrevio(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "inventario.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("original"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	started := make(chan struct{})
	release := make(chan struct{})
	finished := make(chan struct{})
	errCh := make(chan error, 1)
	go func() {
		errCh <- fsutil.WriteFileAtomic(ctx, path, func(w io.Writer) error {
			defer close(finished)
			close(started)
			_, _ = io.WriteString(w, "nuevo")
			<-release
			return nil
		})
	}()

	<-started
	cancel()
	require.ErrorIs(t, <-errCh, context.Canceled)
	close(release)
	<-finished

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "original", string(got))
	assert.Eventually(t, func() bool {
		entries, err := os.ReadDir(dir)
		return err == nil && len(entries) == 1
	}, 2*time.Second, 10*time.Millisecond, "el temporal debe eliminarse tras la cancelación")
}

func TestWriteFileAtomic_ContextoYaCancelado(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	path := filepath.Join(t.TempDir(), "x.xlsx")
	require.ErrorIs(t, fsutil.WriteFileAtomic(ctx, path, writeString("x")), context.Canceled)
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestWriteFileAtomic_ConservaPermisos(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permisos POSIX")
	}
	dir := t.TempDir()
	shared := filepath.Join(dir, "compartido.xlsx")
	require.NoError(t, os.WriteFile(shared, []byte("v1"), 0o600))
	require.NoError(t, os.Chmod(shared, 0o640))

	require.NoError(t, fsutil.WriteFileAtomic(context.Background(), shared, writeString("v2")))
	fi, err := os.Stat(shared)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), fi.Mode().Perm())

	fresh := filepath.Join(dir, "nuevo.xlsx")
	require.NoError(t, fsutil.WriteFileAtomic(context.Background(), fresh, writeString("x")))
	fi, err = os.Stat(fresh)
	require.NoError(t, err)
	assert.Equal(t, fsutil.DefaultPerm, fi.Mode().Perm())

	private := filepath.Join(dir, ".token")
	require.NoError(t, fsutil.WriteFileAtomicPerm(context.Background(), private, 0o600, writeString("s")))
	fi, err = os.Stat(private)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())
}
