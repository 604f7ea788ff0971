package storage

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Object is a stored blob
type Object struct {
	Data        []byte
	ContentType string
}

// MemoryObjectStorage keeps objects in process memory.
// It backs development setups without a bucket and tests.
type MemoryObjectStorage struct {
	// BaseURL prefixes public links. Defaults to "/media"
	BaseURL string

	mu      sync.RWMutex
	objects map[string]Object
}

// NewMemoryObjectStorage creates an empty store
func NewMemoryObjectStorage(baseURL string) *MemoryObjectStorage {
	if baseURL == "" {
		baseURL = "/media"
	}
	return &MemoryObjectStorage{
		BaseURL: strings.TrimRight(baseURL, "/"),
		objects: make(map[string]Object),
	}
}

// Upload stores a copy of data under key
func (s *MemoryObjectStorage) Upload(_ context.Context, key string, data []byte, contentType string) error {
	if key == "" {
		return errors.New("storage key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = Object{Data: append([]byte(nil), data...), ContentType: contentType}
	return nil
}

// Delete removes key
func (s *MemoryObjectStorage) Delete(_ context.Context, key string) error {
	if key == "" {
		return errors.New("storage key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

// Exists reports whether key is stored
func (s *MemoryObjectStorage) Exists(_ context.Context, key string) (bool, error) {
	if key == "" {
		return false, errors.New("storage key is required")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[key]
	return ok, nil
}

// Get returns the object under key
func (s *MemoryObjectStorage) Get(key string) (Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	return obj, ok
}

// Len returns the number of stored objects
func (s *MemoryObjectStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

// URL returns the public link of key
func (s *MemoryObjectStorage) URL(key string) string {
	return s.BaseURL + "/" + key
}

// GenerateDownloadURL returns the public link with an expiry marker
func (s *MemoryObjectStorage) GenerateDownloadURL(_ context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}
	expiresAt := time.Now().Add(expiresIn)
	return s.URL(key) + "?expires=" + url.QueryEscape(expiresAt.UTC().Format(time.RFC3339)), expiresAt, nil
}
