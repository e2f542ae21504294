package settings

import (
	"context"
	"sync"
)

// MemoryStore keeps settings for the life of the process
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[string]map[string]string),
	}
}

func (m *MemoryStore) Get(ctx context.Context, device, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.values[device][key]
	return value, ok, nil
}

func (m *MemoryStore) Set(ctx context.Context, device, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.values[device] == nil {
		m.values[device] = make(map[string]string)
	}
	m.values[device][key] = value
	return nil
}

func (m *MemoryStore) GetCredential(ctx context.Context, instance string) (string, error) {
	value, _, err := m.Get(ctx, instance, CredentialKey)
	return value, err
}

func (m *MemoryStore) SetCredential(ctx context.Context, instance, credential string) error {
	return m.Set(ctx, instance, CredentialKey, credential)
}
