package gcs

import (
	"context"
	"testing"

	"cloud.google.com/go/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	blobstorage "github.com/JakeFAU/literary-clock/internal/storage"
)

var _ blobstorage.BlobStore = (*BlobStore)(nil)

func TestNewValidatesInput(t *testing.T) {
	t.Parallel()

	_, err := New(nil, Config{Bucket: "bucket"})
	assert.Error(t, err)

	client, err := storage.NewClient(context.Background(), option.WithoutAuthentication())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	_, err = New(client, Config{})
	assert.Error(t, err)

	store, err := New(client, Config{Bucket: "bucket"})
	require.NoError(t, err)
	assert.NotNil(t, store)
}

func TestConnectRequiresBucket(t *testing.T) {
	t.Parallel()

	_, err := Connect(context.Background(), Config{}, nil)
	assert.Error(t, err)
}

func TestPutObjectRequiresPath(t *testing.T) {
	t.Parallel()

	client, err := storage.NewClient(context.Background(), option.WithoutAuthentication())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	store, err := New(client, Config{Bucket: "bucket"})
	require.NoError(t, err)
	_, err = store.PutObject(context.Background(), " ", "", nil)
	assert.Error(t, err)
}
