package objectstore

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// AzureConfig configures an Azure Blob Storage-backed object store.
type AzureConfig struct {
	AccountName       string
	AccountKey        string
	ConnectionString  string
	ContainerName     string
	Prefix            string
}

// AzureBackend implements Backend over an Azure Blob Storage container.
type AzureBackend struct {
	client    *azblob.Client
	container string
	prefix    string
}

func NewAzureBackend(ctx context.Context, cfg *AzureConfig) (*AzureBackend, error) {
	var client *azblob.Client
	var err error

	switch {
	case cfg.ConnectionString != "":
		client, err = azblob.NewClientFromConnectionString(cfg.ConnectionString, nil)
	case cfg.AccountKey != "":
		var cred *azblob.SharedKeyCredential
		cred, err = azblob.NewSharedKeyCredential(cfg.AccountName, cfg.AccountKey)
		if err != nil {
			return nil, fmt.Errorf("create shared key credential: %w", err)
		}
		serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net/", cfg.AccountName)
		client, err = azblob.NewClientWithSharedKeyCredential(serviceURL, cred, nil)
	default:
		return nil, fmt.Errorf("azure backend requires an account key or connection string")
	}
	if err != nil {
		return nil, fmt.Errorf("create azure client: %w", err)
	}

	return &AzureBackend{client: client, container: cfg.ContainerName, prefix: cfg.Prefix}, nil
}

func (b *AzureBackend) Type() string { return "azure" }

func (b *AzureBackend) objectKey(key string) string {
	if b.prefix == "" {
		return key
	}
	return b.prefix + "/" + key
}

func (b *AzureBackend) Exists(ctx context.Context, key string) (bool, error) {
	blobClient := b.client.ServiceClient().NewContainerClient(b.container).NewBlobClient(b.objectKey(key))
	_, err := blobClient.GetProperties(ctx, nil)
	if err != nil {
		if isAzureNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat blob %s: %w", key, err)
	}
	return true, nil
}

func (b *AzureBackend) Get(ctx context.Context, key string) ([]byte, error) {
	blobClient := b.client.ServiceClient().NewContainerClient(b.container).NewBlobClient(b.objectKey(key))
	resp, err := blobClient.DownloadStream(ctx, nil)
	if err != nil {
		if isAzureNotFound(err) {
			return nil, &ErrBackendNotFound{Key: key}
		}
		return nil, fmt.Errorf("download blob %s: %w", key, err)
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

func (b *AzureBackend) Put(ctx context.Context, key string, data []byte) error {
	blobClient := b.client.ServiceClient().NewContainerClient(b.container).NewBlockBlobClient(b.objectKey(key))
	_, err := blobClient.UploadBuffer(ctx, data, nil)
	if err != nil {
		return fmt.Errorf("upload blob %s: %w", key, err)
	}
	return nil
}

func isAzureNotFound(err error) bool {
	var respErr *azcore.ResponseError
	if ok := asResponseError(err, &respErr); ok {
		return respErr.StatusCode == 404
	}
	return strings.Contains(err.Error(), "BlobNotFound")
}

func asResponseError(err error, target **azcore.ResponseError) bool {
	for err != nil {
		if re, ok := err.(*azcore.ResponseError); ok {
			*target = re
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
