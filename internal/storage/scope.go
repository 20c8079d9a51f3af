package storage

import (
	"bytes"
	"context"

	"devhub/internal/middleware"
	"devhub/internal/observability"
)

// UploadScope tracks objects uploaded during one operation. Unless Commit is
// called, Close deletes every object the scope stored.
//
//	scope := storage.NewUploadScope(store)
//	defer scope.Close(ctx)
//	... scope.Put(...) ...
//	scope.Commit()
type UploadScope struct {
	store     Store
	keys      []string
	committed bool
}

// NewUploadScope opens a scope over store.
func NewUploadScope(store Store) *UploadScope {
	return &UploadScope{store: store}
}

// Put stores data and registers its rollback.
func (u *UploadScope) Put(ctx context.Context, name, contentType string, data []byte) (*Object, error) {
	obj, err := u.store.Put(ctx, name, contentType, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		observability.MediaUploads.WithLabelValues(observability.UploadFailed).Inc()
		return nil, err
	}
	observability.MediaUploads.WithLabelValues(observability.UploadStored).Inc()
	u.keys = append(u.keys, obj.Key)
	return obj, nil
}

// Commit keeps every uploaded object.
func (u *UploadScope) Commit() {
	u.committed = true
}

// Keys returns the keys stored so far.
func (u *UploadScope) Keys() []string {
	return append([]string(nil), u.keys...)
}

// Close rolls back uncommitted uploads. Delete failures are logged.
func (u *UploadScope) Close(ctx context.Context) {
	if u.committed {
		return
	}
	for _, key := range u.keys {
		if err := u.store.Delete(context.WithoutCancel(ctx), key); err != nil {
			middleware.Logger.WarnContext(ctx, "upload rollback failed", "key", key, "error", err)
			continue
		}
		observability.MediaUploads.WithLabelValues(observability.UploadRolledBack).Inc()
		middleware.Logger.InfoContext(ctx, "upload rolled back", "key", key)
	}
	u.keys = nil
}
