package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"devhub/internal/middleware"
	"devhub/internal/models"
	"devhub/internal/storage"
)

// StorageService exposes the object store to authenticated clients.
type StorageService struct {
	store    storage.Store
	maxBytes int64
}

// NewStorageService returns a StorageService accepting files up to maxBytes.
func NewStorageService(store storage.Store, maxBytes int64) *StorageService {
	return &StorageService{store: store, maxBytes: maxBytes}
}

// Upload stores a file under a fresh key.
func (s *StorageService) Upload(ctx context.Context, f MediaFile) (*storage.Object, error) {
	if s.store == nil {
		return nil, models.NewInternalError(errors.New("object storage is not configured"))
	}
	if len(f.Data) == 0 {
		return nil, models.NewValidationError("No file uploaded")
	}
	if s.maxBytes > 0 && int64(len(f.Data)) > s.maxBytes {
		return nil, models.NewValidationError(fmt.Sprintf("File too large (max %d bytes)", s.maxBytes))
	}
	contentType := f.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	obj, err := s.store.Put(ctx, f.Name, contentType, bytes.NewReader(f.Data), int64(len(f.Data)))
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	middleware.Logger.InfoContext(ctx, "file uploaded", "key", obj.Key, "size", obj.Size)
	return obj, nil
}

// Stat returns the object stored under key.
func (s *StorageService) Stat(ctx context.Context, key string) (*storage.Object, error) {
	if err := s.checkKey(key); err != nil {
		return nil, err
	}
	obj, err := s.store.Stat(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, models.NewNotFoundError("File", key)
		}
		return nil, models.NewInternalError(err)
	}
	return obj, nil
}

// Delete removes the object stored under key.
func (s *StorageService) Delete(ctx context.Context, key string) error {
	if _, err := s.Stat(ctx, key); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, key); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (s *StorageService) checkKey(key string) error {
	if s.store == nil {
		return models.NewInternalError(errors.New("object storage is not configured"))
	}
	if !storage.ValidKey(key) {
		return models.NewValidationError("Invalid file name")
	}
	return nil
}
