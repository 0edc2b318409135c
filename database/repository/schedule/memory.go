// File: database/repository/schedule/memory.go
package scheduleRepo

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"tavolo/models"
)

// memoryScheduleRepo is the reference in-memory implementation of
// ScheduleRepository. It mirrors the Mongo implementation's guarantees:
// writes serialize per binding key (no global lock across unrelated
// entities), the active-binding invariant is checked under that key's lock,
// and updates CAS on the version field.
type memoryScheduleRepo struct {
	mu        sync.RWMutex // guards the maps themselves
	byID      map[string]models.Schedule
	keyLocks  map[models.BindingKey]*sync.Mutex
	keyLockMu sync.Mutex
}

// NewMemoryScheduleRepo constructs the in-memory reference repository, used
// in tests and as the documented shape a persistence adapter must honor.
func NewMemoryScheduleRepo() ScheduleRepository {
	return &memoryScheduleRepo{
		byID:     make(map[string]models.Schedule),
		keyLocks: make(map[models.BindingKey]*sync.Mutex),
	}
}

func (r *memoryScheduleRepo) bindingLock(key models.BindingKey) *sync.Mutex {
	r.keyLockMu.Lock()
	defer r.keyLockMu.Unlock()
	l, ok := r.keyLocks[key]
	if !ok {
		l = &sync.Mutex{}
		r.keyLocks[key] = l
	}
	return l
}

func (r *memoryScheduleRepo) Insert(ctx context.Context, s *models.Schedule) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	lock := r.bindingLock(s.Binding())
	lock.Lock()
	defer lock.Unlock()

	if s.IsActive && r.hasOtherActive(s.Binding(), s.ID) {
		return ErrDuplicateActive
	}

	r.mu.Lock()
	r.byID[s.ID] = *s
	r.mu.Unlock()
	return nil
}

func (r *memoryScheduleRepo) GetByID(ctx context.Context, id string) (*models.Schedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (r *memoryScheduleRepo) Update(ctx context.Context, s *models.Schedule, expectedVersion int) error {
	lock := r.bindingLock(s.Binding())
	lock.Lock()
	defer lock.Unlock()

	r.mu.Lock()
	stored, ok := r.byID[s.ID]
	r.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	if stored.Version != expectedVersion {
		return ErrVersionMismatch
	}
	if s.IsActive && r.hasOtherActive(s.Binding(), s.ID) {
		return ErrDuplicateActive
	}

	next := *s
	next.Version = expectedVersion + 1
	r.mu.Lock()
	r.byID[s.ID] = next
	r.mu.Unlock()
	s.Version = next.Version
	return nil
}

func (r *memoryScheduleRepo) ReplaceActive(ctx context.Context, incumbentID string, replacement *models.Schedule) error {
	if replacement.ID == "" {
		replacement.ID = uuid.New().String()
	}
	lock := r.bindingLock(replacement.Binding())
	lock.Lock()
	defer lock.Unlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	// All-or-nothing: refuse before touching anything if a third schedule
	// would still hold the binding active after the swap.
	for _, other := range r.byID {
		if other.ID != incumbentID && other.ID != replacement.ID && other.IsActive && other.Binding() == replacement.Binding() {
			return ErrDuplicateActive
		}
	}
	if incumbent, ok := r.byID[incumbentID]; ok && incumbent.IsActive {
		incumbent.IsActive = false
		incumbent.Version++
		r.byID[incumbentID] = incumbent
	}
	r.byID[replacement.ID] = *replacement
	return nil
}

func (r *memoryScheduleRepo) ListByBinding(ctx context.Context, boundType models.BoundType, entityID string) ([]models.Schedule, error) {
	return r.collect(func(s models.Schedule) bool {
		return s.BoundType == boundType && s.BoundEntityID == entityID
	}), nil
}

func (r *memoryScheduleRepo) FindActiveByBinding(ctx context.Context, boundType models.BoundType, entityID string) ([]models.Schedule, error) {
	return r.collect(func(s models.Schedule) bool {
		return s.IsActive && s.BoundType == boundType && s.BoundEntityID == entityID
	}), nil
}

func (r *memoryScheduleRepo) ListActive(ctx context.Context) ([]models.Schedule, error) {
	return r.collect(func(s models.Schedule) bool { return s.IsActive }), nil
}

func (r *memoryScheduleRepo) collect(keep func(models.Schedule) bool) []models.Schedule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.Schedule
	for _, s := range r.byID {
		if keep(s) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *memoryScheduleRepo) hasOtherActive(key models.BindingKey, exceptID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.byID {
		if s.ID != exceptID && s.IsActive && s.Binding() == key {
			return true
		}
	}
	return false
}
