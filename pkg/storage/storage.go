// Package storage provides blob persistence backed by Azure Blob Storage.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

// System defines blob storage operations.
type System interface {
	Upload(ctx context.Context, name string, data io.Reader) error
	Download(ctx context.Context, name string) ([]byte, error)
	Delete(ctx context.Context, name string) error
	Exists(ctx context.Context, name string) (bool, error)
}

type system struct {
	client    *azblob.Client
	container string
	logger    *slog.Logger
}

// New creates a storage System from a connection string, ensuring the
// configured container exists.
func New(ctx context.Context, config Config, logger *slog.Logger) (System, error) {
	client, err := azblob.NewClientFromConnectionString(config.ConnectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("create blob client: %w", err)
	}

	s := &system{
		client:    client,
		container: config.Container,
		logger:    logger,
	}

	if err := s.ensureContainer(ctx); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *system) ensureContainer(ctx context.Context) error {
	_, err := s.client.CreateContainer(ctx, s.container, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return fmt.Errorf("create container %q: %w", s.container, err)
	}
	return nil
}

func (s *system) Upload(ctx context.Context, name string, data io.Reader) error {
	payload, err := io.ReadAll(data)
	if err != nil {
		return fmt.Errorf("%w: read payload: %w", ErrUploadFailed, err)
	}

	_, err = s.client.UploadBuffer(ctx, s.container, name, payload, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}

	s.logger.Debug("blob uploaded", "name", name, "size", len(payload))
	return nil
}

func (s *system) Download(ctx context.Context, name string) ([]byte, error) {
	resp, err := s.client.DownloadStream(ctx, s.container, name, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("download blob %q: %w", name, err)
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("read blob %q: %w", name, err)
	}

	return buf.Bytes(), nil
}

func (s *system) Delete(ctx context.Context, name string) error {
	_, err := s.client.DeleteBlob(ctx, s.container, name, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return fmt.Errorf("delete blob %q: %w", name, err)
	}

	s.logger.Debug("blob deleted", "name", name)
	return nil
}

func (s *system) Exists(ctx context.Context, name string) (bool, error) {
	blob := s.client.ServiceClient().
		NewContainerClient(s.container).
		NewBlobClient(name)

	_, err := blob.GetProperties(ctx, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("check blob %q: %w", name, err)
	}

	return true, nil
}
