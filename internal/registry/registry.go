package registry

import (
	"errors"
	"sync"
	"time"

	"gigledger/internal/model"

	"go.uber.org/zap"
)

var (
	ErrAlreadyRegistered = errors.New("freelancer already registered")
	ErrInvalidAddress    = errors.New("invalid address")
	ErrNotFound          = errors.New("freelancer not found")
)

// Registry manages freelancer identity records. Records are held in an arena
// indexed by id-1; ids are allocated monotonically starting at 1 and records
// are never destroyed.
type Registry struct {
	mu      sync.RWMutex
	records []*model.Freelancer
	byAddr  map[model.Address]uint64
	valid   map[model.Address]bool
	self    model.Address
	logger  *zap.Logger
	now     func() time.Time
}

func New(self model.Address, logger *zap.Logger) *Registry {
	return &Registry{
		byAddr: make(map[model.Address]uint64),
		valid:  make(map[model.Address]bool),
		self:   self,
		logger: logger,
		now:    time.Now,
	}
}

// Register creates a freelancer record for caller. A second registration
// from the same address is rejected.
func (r *Registry) Register(caller model.Address, name, description string, achievements []string, skills string) (model.Freelancer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if caller.IsZero() || caller == r.self {
		return model.Freelancer{}, ErrInvalidAddress
	}
	if r.valid[caller] {
		return model.Freelancer{}, ErrAlreadyRegistered
	}

	f := &model.Freelancer{
		ID:           uint64(len(r.records)) + 1,
		Address:      caller,
		Name:         name,
		Description:  description,
		Skills:       skills,
		Achievements: append([]string(nil), achievements...),
		RegisteredAt: r.now(),
	}
	r.records = append(r.records, f)
	r.byAddr[caller] = f.ID
	r.valid[caller] = true

	r.logger.Info("Freelancer registered",
		zap.Uint64("freelancer_id", f.ID),
		zap.String("address", string(caller)),
		zap.String("name", name),
	)
	return *f, nil
}

// IsValid reports whether addr holds a valid freelancer record.
func (r *Registry) IsValid(addr model.Address) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.valid[addr]
}

// IDOf returns the freelancer id bound to addr, or 0 when unregistered.
func (r *Registry) IDOf(addr model.Address) uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byAddr[addr]
}

// Detail returns the record for id.
func (r *Registry) Detail(id uint64) (model.Freelancer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id == 0 || id > uint64(len(r.records)) {
		return model.Freelancer{}, ErrNotFound
	}
	return *r.records[id-1], nil
}

// Count returns the number of registered freelancers.
func (r *Registry) Count() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return uint64(len(r.records))
}

// List returns a skip/limit page of freelancer records in id order.
func (r *Registry) List(skip, limit int) []model.Freelancer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []model.Freelancer{}
	for i := skip; i < len(r.records) && len(out) < limit; i++ {
		out = append(out, *r.records[i])
	}
	return out
}

// BumpCompleted increments the completed-job counter for addr. Called by the
// ledger at assignment and again on final payment.
func (r *Registry) BumpCompleted(addr model.Address) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id := r.byAddr[addr]; id != 0 {
		r.records[id-1].CompletedJobs++
	}
}

// Restore reloads records from the durable mirror at boot. Replaces any
// existing state; records must be in id order starting at 1.
func (r *Registry) Restore(records []model.Freelancer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = make([]*model.Freelancer, 0, len(records))
	r.byAddr = make(map[model.Address]uint64, len(records))
	r.valid = make(map[model.Address]bool, len(records))
	for i := range records {
		f := records[i]
		r.records = append(r.records, &f)
		r.byAddr[f.Address] = f.ID
		r.valid[f.Address] = true
	}
}
