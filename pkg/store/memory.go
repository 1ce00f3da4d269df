package store

import (
	"context"
	"sync"
	"time"

	"github.com/ovokpus/PostAssist/pkg/apperr"
	"github.com/ovokpus/PostAssist/pkg/models"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MemoryStore is the in-process fallback: a mutex-guarded map with lazy
// TTL expiry. Values are stored as encoded JSON so serialization failures
// surface identically to the remote store.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Put implements Store.
func (s *MemoryStore) Put(_ context.Context, task *models.Task, ttl time.Duration) error {
	data, err := encodeTask(task)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[taskKey(task.TaskID)] = memoryEntry{data: data, expiresAt: s.expiry(ttl)}
	return nil
}

// Create implements Store.
func (s *MemoryStore) Create(_ context.Context, task *models.Task, ttl time.Duration) error {
	data, err := encodeTask(task)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := taskKey(task.TaskID)
	if entry, ok := s.entries[key]; ok && !entry.expired(s.now()) {
		return apperr.New(apperr.KindAlreadyExists, "task %s already exists", task.TaskID)
	}
	s.entries[key] = memoryEntry{data: data, expiresAt: s.expiry(ttl)}
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, taskID string) (*models.Task, error) {
	s.mu.Lock()
	entry, ok := s.entries[taskKey(taskID)]
	if ok && entry.expired(s.now()) {
		delete(s.entries, taskKey(taskID))
		ok = false
	}
	s.mu.Unlock()

	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "task %s not found", taskID)
	}
	return decodeTask(entry.data)
}

// List implements Store.
func (s *MemoryStore) List(_ context.Context) ([]*models.Task, error) {
	s.mu.Lock()
	now := s.now()
	live := make([][]byte, 0, len(s.entries))
	for key, entry := range s.entries {
		if entry.expired(now) {
			delete(s.entries, key)
			continue
		}
		live = append(live, entry.data)
	}
	s.mu.Unlock()

	tasks := make([]*models.Task, 0, len(live))
	for _, data := range live {
		task, err := decodeTask(data)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, taskKey(taskID))
	return nil
}

func (s *MemoryStore) expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return s.now().Add(ttl)
}
