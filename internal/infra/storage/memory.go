package storage

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"io"
	"sync"

	domain "github.com/yanqian/docassist/internal/domain/workspace"
)

// ErrNotFound is returned when a key has no stored blob.
var ErrNotFound = errors.New("blob not found")

// MemoryStorage keeps uploaded documents in memory. Useful for tests and local dev.
type MemoryStorage struct {
	mu    sync.RWMutex
	blobs map[string]storedBlob
}

type storedBlob struct {
	data     []byte
	mimeType string
	etag     string
}

// NewMemoryStorage constructs storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{blobs: make(map[string]storedBlob)}
}

// Put stores a copy of data under key.
func (s *MemoryStorage) Put(_ context.Context, key string, data []byte, mimeType string) (domain.StoredObject, error) {
	hash := md5.Sum(data)
	blob := storedBlob{
		data:     append([]byte(nil), data...),
		mimeType: mimeType,
		etag:     hex.EncodeToString(hash[:]),
	}
	s.mu.Lock()
	s.blobs[key] = blob
	s.mu.Unlock()
	return domain.StoredObject{
		Key:      key,
		Size:     int64(len(blob.data)),
		MimeType: mimeType,
		ETag:     blob.etag,
	}, nil
}

// Get returns a reader over the stored blob.
func (s *MemoryStorage) Get(_ context.Context, key string) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	blob, ok := s.blobs[key]
	if !ok {
		return nil, ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(blob.data)), nil
}

// Delete removes the blob. Missing keys are ignored.
func (s *MemoryStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}

var _ domain.ObjectStorage = (*MemoryStorage)(nil)
