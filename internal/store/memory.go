package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hubs-api/hubs-api/internal/hubs"
)

// MemoryStore 是默认后端，进程退出即丢失数据。
type MemoryStore struct {
	mu   sync.RWMutex
	seq  int64
	hubs map[int64]hubs.Hub
	now  func() time.Time
}

// NewMemoryStore 创建空集合。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		hubs: make(map[int64]hubs.Hub),
		now:  time.Now,
	}
}

func (s *MemoryStore) Find(ctx context.Context) ([]hubs.Hub, error) {
	if err := ctx.Err(); err != nil {
		return nil, hubs.WrapError("find", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]hubs.Hub, 0, len(s.hubs))
	for _, hub := range s.hubs {
		result = append(result, hub.Clone())
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (s *MemoryStore) FindByID(ctx context.Context, rawID string) (*hubs.Hub, error) {
	if err := ctx.Err(); err != nil {
		return nil, hubs.WrapError("findById", err)
	}
	id, ok := hubs.ParseID(rawID)
	if !ok {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	hub, ok := s.hubs[id]
	if !ok {
		return nil, nil
	}
	cp := hub.Clone()
	return &cp, nil
}

func (s *MemoryStore) Add(ctx context.Context, fields hubs.Fields) (*hubs.Hub, error) {
	if err := ctx.Err(); err != nil {
		return nil, hubs.WrapError("add", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	hub := hubs.New(s.seq, fields, s.now())
	s.hubs[hub.ID] = hub
	cp := hub.Clone()
	return &cp, nil
}

func (s *MemoryStore) Update(ctx context.Context, rawID string, fields hubs.Fields) (*hubs.Hub, error) {
	if err := ctx.Err(); err != nil {
		return nil, hubs.WrapError("update", err)
	}
	id, ok := hubs.ParseID(rawID)
	if !ok {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	hub, ok := s.hubs[id]
	if !ok {
		return nil, nil
	}
	hub.Fields = hubs.Merge(hub.Fields, fields)
	hub.UpdatedAt = s.now().UTC()
	s.hubs[id] = hub
	cp := hub.Clone()
	return &cp, nil
}

func (s *MemoryStore) Remove(ctx context.Context, rawID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, hubs.WrapError("remove", err)
	}
	id, ok := hubs.ParseID(rawID)
	if !ok {
		return false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.hubs[id]; !ok {
		return false, nil
	}
	delete(s.hubs, id)
	return true, nil
}

var _ hubs.Database = (*MemoryStore)(nil)
