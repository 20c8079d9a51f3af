package storage

import (
	"bytes"
	"context"
	"io"
	"sync"
)

// MemoryStore keeps objects in process memory. It backs local runs without
// an object store and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string]memoryObject

	// PutErr, when set, is returned by every Put call.
	PutErr error
}

type memoryObject struct {
	data        []byte
	contentType string
}

// NewMemoryStore returns an empty MemoryStore serving URLs under baseURL.
func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{baseURL: baseURL, objects: make(map[string]memoryObject)}
}

func (m *MemoryStore) Put(_ context.Context, name, contentType string, r io.Reader, _ int64) (*Object, error) {
	if m.PutErr != nil {
		return nil, m.PutErr
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, err
	}
	key := NewKey(name)

	m.mu.Lock()
	m.objects[key] = memoryObject{data: buf.Bytes(), contentType: contentType}
	m.mu.Unlock()

	return &Object{Key: key, URL: m.URL(key), ContentType: contentType, Size: int64(buf.Len())}, nil
}

func (m *MemoryStore) Stat(_ context.Context, key string) (*Object, error) {
	m.mu.RLock()
	obj, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return &Object{Key: key, URL: m.URL(key), ContentType: obj.contentType, Size: int64(len(obj.data))}, nil
}

// Open returns the bytes stored under key along with their metadata.
func (m *MemoryStore) Open(_ context.Context, key string) ([]byte, *Object, error) {
	m.mu.RLock()
	obj, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return nil, nil, ErrNotFound
	}
	return obj.data, &Object{Key: key, URL: m.URL(key), ContentType: obj.contentType, Size: int64(len(obj.data))}, nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) URL(key string) string {
	return m.baseURL + "/" + key
}

func (m *MemoryStore) KeyFromURL(url string) (string, bool) {
	return keyFromURL(m.baseURL, url)
}

// Len returns the number of stored objects.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
