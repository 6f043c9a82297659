package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/minitask/client/internal/domain/entities"
	"github.com/minitask/client/internal/ports"
)

// NewMemory returns repositories backed by process memory, seeded with the
// fixed location hierarchy.
func NewMemory() ports.Repositories {
	return ports.Repositories{
		Users:     &MemoryUserRepository{byID: map[string]*entities.Account{}, byEmail: map[string]string{}},
		Tasks:     &MemoryTaskRepository{tasks: map[string]*entities.StoredTask{}},
		Locations: NewMemoryLocationRepository(SeedLocations()),
	}
}

// MemoryUserRepository implements ports.UserRepository
type MemoryUserRepository struct {
	mu      sync.RWMutex
	byID    map[string]*entities.Account
	byEmail map[string]string
}

func (r *MemoryUserRepository) Create(ctx context.Context, account *entities.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[account.Email]; ok {
		return entities.ErrUserExists
	}
	cp := *account
	r.byID[cp.ID] = &cp
	r.byEmail[cp.Email] = cp.ID
	return nil
}

func (r *MemoryUserRepository) GetByEmail(ctx context.Context, email string) (*entities.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return nil, entities.ErrUserNotFound
	}
	cp := *r.byID[id]
	return &cp, nil
}

func (r *MemoryUserRepository) GetByID(ctx context.Context, id string) (*entities.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	account, ok := r.byID[id]
	if !ok {
		return nil, entities.ErrUserNotFound
	}
	cp := *account
	return &cp, nil
}

// MemoryTaskRepository implements ports.TaskRepository
type MemoryTaskRepository struct {
	mu    sync.RWMutex
	tasks map[string]*entities.StoredTask
}

func (r *MemoryTaskRepository) Create(ctx context.Context, task *entities.StoredTask) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *task
	r.tasks[cp.ID] = &cp
	return nil
}

func (r *MemoryTaskRepository) GetByID(ctx context.Context, ownerID, id string) (*entities.StoredTask, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	task, ok := r.tasks[id]
	if !ok || task.OwnerID != ownerID {
		return nil, entities.ErrTaskNotFound
	}
	cp := *task
	return &cp, nil
}

// ListByOwner returns tasks oldest first.
func (r *MemoryTaskRepository) ListByOwner(ctx context.Context, ownerID string) ([]*entities.StoredTask, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*entities.StoredTask
	for _, task := range r.tasks {
		if task.OwnerID == ownerID {
			cp := *task
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryTaskRepository) Update(ctx context.Context, task *entities.StoredTask) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.tasks[task.ID]
	if !ok || existing.OwnerID != task.OwnerID {
		return entities.ErrTaskNotFound
	}
	cp := *task
	r.tasks[cp.ID] = &cp
	return nil
}

func (r *MemoryTaskRepository) Delete(ctx context.Context, ownerID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok || task.OwnerID != ownerID {
		return entities.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

// MemoryLocationRepository implements ports.LocationRepository
type MemoryLocationRepository struct {
	byID     map[string]*entities.Location
	children map[string][]*entities.Location
}

// NewMemoryLocationRepository indexes a fixed set of locations. Children keep
// the order they were given in.
func NewMemoryLocationRepository(locations []*entities.Location) *MemoryLocationRepository {
	r := &MemoryLocationRepository{
		byID:     make(map[string]*entities.Location, len(locations)),
		children: make(map[string][]*entities.Location),
	}
	for _, loc := range locations {
		r.byID[loc.ID] = loc
		r.children[loc.ParentID] = append(r.children[loc.ParentID], loc)
	}
	return r
}

func (r *MemoryLocationRepository) Children(ctx context.Context, level entities.LocationLevel, parentID string) ([]*entities.Location, error) {
	var out []*entities.Location
	for _, loc := range r.children[parentID] {
		if loc.Level == level {
			cp := *loc
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MemoryLocationRepository) GetByID(ctx context.Context, id string) (*entities.Location, error) {
	loc, ok := r.byID[id]
	if !ok {
		return nil, entities.ErrLocationNotFound
	}
	cp := *loc
	return &cp, nil
}
