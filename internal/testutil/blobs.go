package testutil

import (
	"context"
	"sync"
)

// BlobStore almacenamiento de archivos en memoria.
type BlobStore struct {
	mu      sync.Mutex
	Objects map[string][]byte
	Types   map[string]string

	FailPut error
}

// NewBlobStore crea el store vacío.
func NewBlobStore() *BlobStore {
	return &BlobStore{Objects: map[string][]byte{}, Types: map[string]string{}}
}

func (s *BlobStore) Put(_ context.Context, key string, data []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailPut != nil {
		return s.FailPut
	}
	s.Objects[key] = append([]byte(nil), data...)
	s.Types[key] = contentType
	return nil
}

func (s *BlobStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Objects, key)
	delete(s.Types, key)
	return nil
}

func (s *BlobStore) URL(key string) string {
	return "https://files.test/" + key
}

// Keys claves almacenadas.
func (s *BlobStore) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.Objects))
	for k := range s.Objects {
		out = append(out, k)
	}
	return out
}
