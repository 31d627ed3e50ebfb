package s3mock

import (
	"context"
	"fmt"
	"sync"

	infra_s3 "github.com/humanbelnik/kinoreco/internal/infra/s3"
)

// BlobStorage is an in-memory stand-in for the S3 snapshot store, used in
// tests and keyless local runs.
type BlobStorage struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func New() *BlobStorage {
	return &BlobStorage{
		objects: make(map[string][]byte),
	}
}

func (s *BlobStorage) Put(ctx context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := make([]byte, len(data))
	copy(cp, data)
	s.objects[key] = cp
	return nil
}

func (s *BlobStorage) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", infra_s3.ErrNotFound, key)
	}

	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}
