// Package storage persists uploaded lead photos on the local filesystem or
// in Azure Blob Storage, selected by configuration.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/leadforge/crm-api/internal/config"
	"go.uber.org/zap"
)

// Storage defines the interface for photo storage operations
type Storage interface {
	// Save writes the upload and returns its storage key
	Save(ctx context.Context, filename, contentType string, data io.Reader) (string, int64, error)
	// Open returns a reader for a previously stored key
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Remove deletes a stored file; removing a missing key is not an error
	Remove(ctx context.Context, key string) error
}

// NewStorage creates a storage instance based on configuration
func NewStorage(cfg *config.StorageConfig, logger *zap.Logger) (Storage, error) {
	switch cfg.Mode {
	case "local":
		return NewLocalStorage(cfg.LocalBasePath)
	case "cloud", "azure":
		if cfg.CloudConnectionString == "" {
			return nil, fmt.Errorf("cloud connection string required for azure storage")
		}
		return NewAzureBlobStorage(cfg.CloudConnectionString, cfg.CloudContainer, logger)
	default:
		return nil, fmt.Errorf("unsupported storage mode: %s", cfg.Mode)
	}
}

// objectKey builds a year/month partitioned key so a single directory never
// accumulates the full upload history.
func objectKey(filename string, now time.Time) string {
	ext := filepath.Ext(filename)
	return path.Join(now.Format("2006"), now.Format("01"), uuid.New().String()+ext)
}

// LocalStorage stores files under a base directory on disk
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a local storage instance
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{basePath: basePath}, nil
}

// Save writes the upload under a date-partitioned key
func (s *LocalStorage) Save(ctx context.Context, filename, contentType string, data io.Reader) (string, int64, error) {
	key := objectKey(filename, time.Now().UTC())
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", 0, fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	size, err := io.Copy(file, data)
	if err != nil {
		os.Remove(fullPath)
		return "", 0, fmt.Errorf("failed to write file: %w", err)
	}

	return key, size, nil
}

// Open returns a reader for a stored key
func (s *LocalStorage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	file, err := os.Open(filepath.Join(s.basePath, filepath.FromSlash(key)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", key)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// Remove deletes a stored file
func (s *LocalStorage) Remove(ctx context.Context, key string) error {
	if err := os.Remove(filepath.Join(s.basePath, filepath.FromSlash(key))); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
