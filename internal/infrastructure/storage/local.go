package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/jhoicas/punchlist-api/internal/application/transfer"
)

// LocalStore implementa transfer.BlobStore en disco. Pensado para desarrollo; el router
// sirve el directorio bajo URLBase.
type LocalStore struct {
	dir     string
	urlBase string
}

var _ transfer.BlobStore = (*LocalStore)(nil)

// NewLocalStore crea el directorio raíz si no existe.
func NewLocalStore(dir, urlBase string) (*LocalStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("storage: directorio vacío")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("storage: crear %s: %w", abs, err)
	}
	return &LocalStore{dir: abs, urlBase: strings.TrimRight(urlBase, "/")}, nil
}

// Dir directorio raíz.
func (s *LocalStore) Dir() string { return s.dir }

func (s *LocalStore) path(key string) (string, error) {
	p := filepath.Join(s.dir, filepath.FromSlash(key))
	if p == s.dir || !strings.HasPrefix(p, s.dir+string(filepath.Separator)) {
		return "", fmt.Errorf("storage: clave inválida %q", key)
	}
	return p, nil
}

// Put escribe el archivo creando los directorios intermedios.
func (s *LocalStore) Put(ctx context.Context, key string, data []byte, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("storage: put %s: %w", key, err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return fmt.Errorf("storage: put %s: %w", key, err)
	}
	return nil
}

// Delete borra el archivo; si no existe no es error.
func (s *LocalStore) Delete(_ context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage: delete %s: %w", key, err)
	}
	return nil
}

// URL urlBase + clave.
func (s *LocalStore) URL(key string) string {
	return s.urlBase + "/" + strings.TrimLeft(key, "/")
}
