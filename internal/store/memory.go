package store

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store used by tests and when no Redis address
// is configured. Data does not survive a restart.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
	sets   map[string]map[string]struct{}
	hashes map[string]map[string]string
}

// NewMemory creates an empty MemoryStore.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		values: make(map[string]string),
		sets:   make(map[string]map[string]struct{}),
		hashes: make(map[string]map[string]string),
	}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return val, nil
}

func (s *MemoryStore) GetMany(ctx context.Context, keys []string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vals := make([]string, len(keys))
	for i, key := range keys {
		vals[i] = s.values[key]
	}
	return vals, nil
}

func (s *MemoryStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteKey(key)
	return nil
}

// deleteKey removes key from every namespace, like DEL on any Redis type.
// Callers must hold the write lock.
func (s *MemoryStore) deleteKey(key string) {
	delete(s.values, key)
	delete(s.sets, key)
	delete(s.hashes, key)
}

func (s *MemoryStore) SetAdd(ctx context.Context, key, member string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setAdd(key, member)
	return nil
}

func (s *MemoryStore) setAdd(key, member string) {
	set, ok := s.sets[key]
	if !ok {
		set = make(map[string]struct{})
		s.sets[key] = set
	}
	set[member] = struct{}{}
}

func (s *MemoryStore) SetRemove(ctx context.Context, key, member string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sets[key], member)
	return nil
}

func (s *MemoryStore) SetIsMember(ctx context.Context, key, member string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sets[key][member]
	return ok, nil
}

func (s *MemoryStore) SetMembers(ctx context.Context, key string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	members := make([]string, 0, len(s.sets[key]))
	for member := range s.sets[key] {
		members = append(members, member)
	}
	return members, nil
}

func (s *MemoryStore) HashSet(ctx context.Context, key, field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hashSet(key, field, value)
	return nil
}

func (s *MemoryStore) hashSet(key, field, value string) {
	hash, ok := s.hashes[key]
	if !ok {
		hash = make(map[string]string)
		s.hashes[key] = hash
	}
	hash[field] = value
}

func (s *MemoryStore) HashGet(ctx context.Context, key, field string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.hashes[key][field]
	if !ok {
		return "", ErrNotFound
	}
	return val, nil
}

func (s *MemoryStore) HashGetAll(ctx context.Context, key string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.hashes[key]))
	for field, val := range s.hashes[key] {
		out[field] = val
	}
	return out, nil
}

func (s *MemoryStore) HashDelete(ctx context.Context, key, field string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.hashes[key], field)
	return nil
}

func (s *MemoryStore) Pipeline() Pipeline {
	return &memoryPipeline{store: s}
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

// memoryPipeline queues closures and applies them under one write lock.
type memoryPipeline struct {
	store *MemoryStore
	ops   []func()
}

func (p *memoryPipeline) Set(key, value string) {
	p.ops = append(p.ops, func() { p.store.values[key] = value })
}

func (p *memoryPipeline) Delete(key string) {
	p.ops = append(p.ops, func() { p.store.deleteKey(key) })
}

func (p *memoryPipeline) SetAdd(key, member string) {
	p.ops = append(p.ops, func() { p.store.setAdd(key, member) })
}

func (p *memoryPipeline) SetRemove(key, member string) {
	p.ops = append(p.ops, func() { delete(p.store.sets[key], member) })
}

func (p *memoryPipeline) HashSet(key, field, value string) {
	p.ops = append(p.ops, func() { p.store.hashSet(key, field, value) })
}

func (p *memoryPipeline) HashDelete(key, field string) {
	p.ops = append(p.ops, func() { delete(p.store.hashes[key], field) })
}

func (p *memoryPipeline) Exec(ctx context.Context) error {
	p.store.mu.Lock()
	defer p.store.mu.Unlock()
	for _, op := range p.ops {
		op()
	}
	p.ops = nil
	return nil
}
