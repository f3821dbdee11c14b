package storage

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wehubfusion/Talos/pkg/act"
	"github.com/wehubfusion/Talos/pkg/schema"
)

// memoryBlobClient is an in-memory BlobClient for tests.
type memoryBlobClient struct {
	blobs       map[string][]byte
	metadata    map[string]map[string]string
	uploadErr   error
	downloadErr error
}

func newMemoryBlobClient() *memoryBlobClient {
	return &memoryBlobClient{
		blobs:    make(map[string][]byte),
		metadata: make(map[string]map[string]string),
	}
}

func (m *memoryBlobClient) Upload(ctx context.Context, blobPath string, data []byte, metadata map[string]string) (string, error) {
	if m.uploadErr != nil {
		return "", m.uploadErr
	}
	m.blobs[blobPath] = data
	m.metadata[blobPath] = metadata
	return "memory://" + blobPath, nil
}

func (m *memoryBlobClient) Download(ctx context.Context, reference string) ([]byte, error) {
	if m.downloadErr != nil {
		return nil, m.downloadErr
	}
	data, ok := m.blobs[reference]
	if !ok {
		return nil, errors.New("blob not found: " + reference)
	}
	return data, nil
}

var sampleDefinition = []byte(`{
	"kind": "sequence",
	"name": "patrol",
	"children": [
		{"kind": "leaf", "ref": "step", "name": "first"},
		{"kind": "leaf", "ref": "step", "name": "second"}
	]
}`)

func TestNewAzureBlobClient(t *testing.T) {
	logger, _ := zap.NewDevelopment()

	tests := []struct {
		name             string
		connectionString string
		containerName    string
		errContains      string
	}{
		{
			name:             "empty connection string",
			connectionString: "",
			containerName:    "tree-definitions",
			errContains:      "connection string is required",
		},
		{
			name:             "empty container name",
			connectionString: "DefaultEndpointsProtocol=https;AccountName=test;AccountKey=dGVzdA==;EndpointSuffix=core.windows.net",
			containerName:    "",
			errContains:      "container name is required",
		},
		{
			name:             "missing account key",
			connectionString: "DefaultEndpointsProtocol=https;AccountName=test;EndpointSuffix=core.windows.net",
			containerName:    "tree-definitions",
			errContains:      "account name and key are required",
		},
		{
			name:             "valid connection string",
			connectionString: "DefaultEndpointsProtocol=https;AccountName=test;AccountKey=dGVzdA==;EndpointSuffix=core.windows.net",
			containerName:    "tree-definitions",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewAzureBlobClient(tt.connectionString, tt.containerName, logger)

			if tt.errContains != "" {
				assert.Error(t, err)
				assert.Nil(t, client)
				assert.Contains(t, err.Error(), tt.errContains)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, client)
			}
		})
	}
}

func TestNewAzureBlobClientRequiresLogger(t *testing.T) {
	_, err := NewAzureBlobClient("AccountName=test;AccountKey=dGVzdA==", "tree-definitions", nil)
	assert.Error(t, err)
}

func TestDefinitionStoreSaveAndLoad(t *testing.T) {
	logger := zap.NewNop()
	blob := newMemoryBlobClient()
	store, err := NewDefinitionStore(blob, logger)
	require.NoError(t, err)

	ctx := context.Background()
	url, err := store.Save(ctx, "patrol", sampleDefinition)
	require.NoError(t, err)
	assert.Equal(t, "memory://definitions/patrol.json", url)
	assert.Equal(t, "sequence", blob.metadata["definitions/patrol.json"]["root_kind"])

	def, err := store.Load(ctx, "patrol")
	require.NoError(t, err)
	assert.Equal(t, schema.KindSequence, def.Kind)
	assert.Len(t, def.Children, 2)
}

func TestDefinitionStoreRejectsInvalidDocument(t *testing.T) {
	store, err := NewDefinitionStore(newMemoryBlobClient(), zap.NewNop())
	require.NoError(t, err)

	_, err = store.Save(context.Background(), "bad", []byte(`{"kind":"sequence"}`))
	assert.Error(t, err)
}

func TestDefinitionStoreLoadMissing(t *testing.T) {
	store, err := NewDefinitionStore(newMemoryBlobClient(), zap.NewNop())
	require.NoError(t, err)

	_, err = store.Load(context.Background(), "absent")
	assert.Error(t, err)
}

func TestDefinitionStoreInstantiate(t *testing.T) {
	logger := zap.NewNop()
	blob := newMemoryBlobClient()
	store, err := NewDefinitionStore(blob, logger)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = store.Save(ctx, "patrol", sampleDefinition)
	require.NoError(t, err)

	var visited []string
	registry := schema.NewRegistry()
	err = registry.Register("step", func(name string, config json.RawMessage) (act.Act, error) {
		return act.NewWrap(name, func(ctx context.Context) error {
			visited = append(visited, name)
			return nil
		})
	})
	require.NoError(t, err)

	root, err := store.Instantiate(ctx, "patrol", registry)
	require.NoError(t, err)

	var status act.Status
	for i := 0; i < 4; i++ {
		status, err = root.Tick(ctx)
		require.NoError(t, err)
		if status != act.StatusRunning {
			break
		}
	}
	assert.Equal(t, act.StatusSuccess, status)
	assert.Equal(t, []string{"first", "second"}, visited)
}
