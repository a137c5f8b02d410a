package tasks

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps tasks in a map. It backs the MCP server's demo mode
// and the package tests; semantics match SQLStore.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID int
	items  map[int]Task
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID: 1,
		items:  make(map[int]Task),
	}
}

func (s *MemoryStore) Create(ctx context.Context, userID int, title, description string) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	t := Task{
		ID:          s.nextID,
		UserID:      userID,
		Title:       title,
		Description: description,
		Completed:   false,
		Priority:    "medium",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.items[t.ID] = t
	s.nextID++
	return t, nil
}

func (s *MemoryStore) List(ctx context.Context, userID int, status string) ([]Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Task
	for _, t := range s.items {
		if t.UserID != userID {
			continue
		}
		if status == StatusPending && t.Completed {
			continue
		}
		if status == StatusCompleted && !t.Completed {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) Get(ctx context.Context, userID, taskID int) (Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.items[taskID]
	if !ok || t.UserID != userID {
		return Task{}, ErrNotFound
	}
	return t, nil
}

func (s *MemoryStore) SetCompleted(ctx context.Context, userID, taskID int) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.items[taskID]
	if !ok || t.UserID != userID {
		return Task{}, ErrNotFound
	}
	t.Completed = true
	t.UpdatedAt = time.Now().UTC()
	s.items[taskID] = t
	return t, nil
}

func (s *MemoryStore) Delete(ctx context.Context, userID, taskID int) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.items[taskID]
	if !ok || t.UserID != userID {
		return Task{}, ErrNotFound
	}
	delete(s.items, taskID)
	return t, nil
}

func (s *MemoryStore) Update(ctx context.Context, userID, taskID int, title, description *string) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.items[taskID]
	if !ok || t.UserID != userID {
		return Task{}, ErrNotFound
	}
	if title != nil {
		t.Title = *title
	}
	if description != nil {
		t.Description = *description
	}
	t.UpdatedAt = time.Now().UTC()
	s.items[taskID] = t
	return t, nil
}
