// Package app initializes and holds the long-lived services a command needs.
package app

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/JakeFAU/literary-clock/internal/config"
	"github.com/JakeFAU/literary-clock/internal/logging"
	"github.com/JakeFAU/literary-clock/internal/storage"
	gcsstorage "github.com/JakeFAU/literary-clock/internal/storage/gcs"
	localstorage "github.com/JakeFAU/literary-clock/internal/storage/local"
	memorystorage "github.com/JakeFAU/literary-clock/internal/storage/memory"
)

// App holds the configuration, the logger and the blob stores. Books always live on the
// local filesystem because the corpus walker reads a directory tree; paragraphs go to the
// configured backend.
type App struct {
	cfg        config.Config
	logger     *zap.Logger
	books      storage.BlobStore
	paragraphs storage.BlobStore
	closers    []func() error
}

// Config returns the loaded configuration.
func (a *App) Config() config.Config { return a.cfg }

// Logger returns the run logger.
func (a *App) Logger() *zap.Logger { return a.logger }

// Books returns the store downloaded texts are written to.
func (a *App) Books() storage.BlobStore { return a.books }

// Paragraphs returns the store collected records are written to and sampled from.
func (a *App) Paragraphs() storage.BlobStore { return a.paragraphs }

// ParagraphStoreFactory opens the paragraph store for a backend. It is a variable so tests
// can avoid real GCS credentials.
var ParagraphStoreFactory = openParagraphStore

// New builds the services for cfg. It fails fast if a store cannot be opened.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	books, err := localstorage.New(localstorage.Config{BaseDir: cfg.Paths.Books})
	if err != nil {
		return nil, fmt.Errorf("open book store: %w", err)
	}
	paragraphs, closer, err := ParagraphStoreFactory(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open paragraph store: %w", err)
	}
	a := &App{cfg: cfg, logger: logger, books: books, paragraphs: paragraphs}
	if closer != nil {
		a.closers = append(a.closers, closer)
	}
	logger.Debug("services initialized",
		zap.String("books", cfg.Paths.Books),
		zap.String("paragraphs", cfg.Paths.Paragraphs),
		zap.String("backend", cfg.Storage.Backend),
	)
	return a, nil
}

func openParagraphStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (storage.BlobStore, func() error, error) {
	switch cfg.Storage.Backend {
	case config.BackendLocal:
		store, err := localstorage.New(localstorage.Config{BaseDir: cfg.Paths.Paragraphs})
		return store, nil, err
	case config.BackendMemory:
		logger.Warn("using in-memory paragraph store; records are discarded on exit")
		return memorystorage.NewBlobStore(), nil, nil
	case config.BackendGCS:
		logger.Info("using GCS paragraph store", zap.String("bucket", cfg.Storage.GCSBucket))
		store, err := gcsstorage.Connect(ctx, gcsstorage.Config{Bucket: cfg.Storage.GCSBucket}, logger)
		if err != nil {
			return nil, nil, err
		}
		return storage.WithPrefix(store, cfg.Paths.Paragraphs), store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// Close releases every service and flushes the logger. It is safe to call twice.
func (a *App) Close() {
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			a.logger.Warn("error closing service", zap.Error(err))
		}
	}
	a.closers = nil
	if err := logging.Sync(a.logger); err != nil {
		fmt.Fprintf(os.Stderr, "logger sync failed: %v\n", err)
	}
}
