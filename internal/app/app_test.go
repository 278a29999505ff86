package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/literary-clock/internal/config"
	"github.com/JakeFAU/literary-clock/internal/storage"
	localstorage "github.com/JakeFAU/literary-clock/internal/storage/local"
	memorystorage "github.com/JakeFAU/literary-clock/internal/storage/memory"
)

func testConfig(t *testing.T, backend string) config.Config {
	t.Helper()
	dir := t.TempDir()
	return config.Config{
		Paths: config.PathsConfig{
			Books:      filepath.Join(dir, "books"),
			Paragraphs: filepath.Join(dir, "paragraphs"),
		},
		Storage: config.StorageConfig{Backend: backend},
	}
}

func TestNewLocalBackend(t *testing.T) {
	t.Parallel()

	a, err := New(context.Background(), testConfig(t, config.BackendLocal), zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	assert.IsType(t, &localstorage.BlobStore{}, a.Books())
	assert.IsType(t, &localstorage.BlobStore{}, a.Paragraphs())
	assert.Equal(t, config.BackendLocal, a.Config().Storage.Backend)
	assert.NotNil(t, a.Logger())
}

func TestNewMemoryBackend(t *testing.T) {
	t.Parallel()

	a, err := New(context.Background(), testConfig(t, config.BackendMemory), nil)
	require.NoError(t, err)
	defer a.Close()

	assert.IsType(t, &memorystorage.BlobStore{}, a.Paragraphs())
}

func TestNewUnknownBackend(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), testConfig(t, "s3"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown storage backend "s3"`)
}

func TestCloseRunsClosersOnce(t *testing.T) {
	t.Parallel()

	calls := 0
	a := &App{logger: zap.NewNop(), closers: []func() error{
		func() error { calls++; return nil },
		func() error { calls++; return errors.New("already closed") },
	}}
	a.Close()
	a.Close()
	assert.Equal(t, 2, calls)
}

func TestParagraphStoreFactoryOverride(t *testing.T) {
	orig := ParagraphStoreFactory
	t.Cleanup(func() { ParagraphStoreFactory = orig })

	closed := false
	fake := memorystorage.NewBlobStore()
	ParagraphStoreFactory = func(context.Context, config.Config, *zap.Logger) (storage.BlobStore, func() error, error) {
		return fake, func() error { closed = true; return nil }, nil
	}

	a, err := New(context.Background(), testConfig(t, config.BackendGCS), nil)
	require.NoError(t, err)
	assert.Same(t, fake, a.Paragraphs().(*memorystorage.BlobStore))
	a.Close()
	assert.True(t, closed)
}
