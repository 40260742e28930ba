package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/codearcheologist/codearch-backend/internal/migration/domain"
)

// MemoryRepository keeps projects in process memory. Callers always get a
// private copy, so nothing they mutate leaks back without Save.
type MemoryRepository struct {
	mu       sync.RWMutex
	projects map[string][]byte
	created  map[string]int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		projects: make(map[string][]byte),
		created:  make(map[string]int64),
	}
}

func (r *MemoryRepository) Create(_ context.Context, p *domain.Project) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal project: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.projects[p.ID]; ok {
		return fmt.Errorf("%w: %s", ErrProjectExists, p.ID)
	}
	r.projects[p.ID] = data
	r.created[p.ID] = p.CreatedAt.UnixNano()
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (*domain.Project, error) {
	r.mu.RLock()
	data, ok := r.projects[id]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	return decodeProject(data)
}

// Save replaces the whole record in one step.
func (r *MemoryRepository) Save(_ context.Context, p *domain.Project) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal project: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.projects[p.ID]; !ok {
		return domain.ErrProjectNotFound
	}
	r.projects[p.ID] = data
	return nil
}

// List returns up to limit projects, newest first.
func (r *MemoryRepository) List(_ context.Context, limit int) ([]*domain.Project, error) {
	r.mu.RLock()
	ids := make([]string, 0, len(r.projects))
	for id := range r.projects {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if r.created[ids[i]] != r.created[ids[j]] {
			return r.created[ids[i]] > r.created[ids[j]]
		}
		return ids[i] < ids[j]
	})
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	blobs := make([][]byte, len(ids))
	for i, id := range ids {
		blobs[i] = r.projects[id]
	}
	r.mu.RUnlock()

	out := make([]*domain.Project, 0, len(blobs))
	for _, b := range blobs {
		p, err := decodeProject(b)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func decodeProject(data []byte) (*domain.Project, error) {
	var p domain.Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("unmarshal project: %w", err)
	}
	return &p, nil
}
