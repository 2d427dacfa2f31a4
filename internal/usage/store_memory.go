package usage

import (
	"context"
	"sync"
)

type memoryStore struct {
	mu   sync.RWMutex
	data map[string][]Download
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string][]Download)}
}

func (s *memoryStore) Record(ctx context.Context, d Download) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[d.UserID] = append(s.data[d.UserID], d)
	return nil
}

func (s *memoryStore) Summary(ctx context.Context, userID string) (Summary, error) {
	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	sum := Summary{ByFormat: map[string]int{}}
	for _, d := range s.data[userID] {
		sum.Total++
		sum.ByFormat[d.Format]++
		if d.Shared {
			sum.Shared++
		}
	}
	return sum, nil
}
