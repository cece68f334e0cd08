package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/punchlist-api/internal/infrastructure/storage"
)

func TestLocalStore_GuardaURLYBorra(t *testing.T) {
	dir := t.TempDir()
	s, err := storage.NewLocalStore(dir, "http://localhost:8080/files/")
	require.NoError(t, err)

	key := "inventory/transfers/12/transfer-20260304-103000-abcd1234.pdf"
	require.NoError(t, s.Put(context.Background(), key, []byte("%PDF-1.4"), "application/pdf"))

	got, err := os.ReadFile(filepath.Join(dir, "inventory", "transfers", "12", "transfer-20260304-103000-abcd1234.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(got))
	assert.Equal(t, "http://localhost:8080/files/"+key, s.URL(key))

	require.NoError(t, s.Delete(context.Background(), key))
	require.NoError(t, s.Delete(context.Background(), key))
	_, err = os.Stat(filepath.Join(dir, key))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStore_RechazaRutasFueraDeLaRaiz(t *testing.T) {
	s, err := storage.NewLocalStore(t.TempDir(), "")
	require.NoError(t, err)
	assert.Error(t, s.Put(context.Background(), "../escape.txt", []byte("x"), "text/plain"))
	assert.Error(t, s.Delete(context.Background(), "../../etc/passwd"))
}

func TestObjectURL(t *testing.T) {
	cases := []struct {
		name string
		opts storage.S3Options
		want string
	}{
		{"base pública", storage.S3Options{URLBase: "https://cdn.example.com/", Bucket: "b"}, "https://cdn.example.com/k/x.pdf"},
		{"minio path style", storage.S3Options{Endpoint: "http://minio:9000", Bucket: "punchlist", PathStyle: true}, "http://minio:9000/punchlist/k/x.pdf"},
		{"endpoint virtual host", storage.S3Options{Endpoint: "https://s3.example.com", Bucket: "punchlist"}, "https://punchlist.s3.example.com/k/x.pdf"},
		{"aws", storage.S3Options{Bucket: "punchlist", Region: "us-east-1"}, "https://punchlist.s3.us-east-1.amazonaws.com/k/x.pdf"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, storage.ObjectURL(tc.opts, "/k/x.pdf"))
		})
	}
}
