package media

import (
	"context"
	"sync"

	"github.com/jonoalderson/edge-images-sub001/internal/domain"
)

type memoryRecord struct {
	id   Identity
	dims domain.Dimensions
}

// MemoryRepository is an in-process Repository for tests, the CLI, and
// deployments without a metadata database.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[string]memoryRecord
	hosts   []string
}

// NewMemoryRepository builds an empty repository treating the given hosts
// as local.
func NewMemoryRepository(localHosts ...string) *MemoryRepository {
	return &MemoryRepository{
		records: make(map[string]memoryRecord),
		hosts:   localHosts,
	}
}

// Add registers an attachment under its source URL.
func (r *MemoryRepository) Add(sourceURL string, id Identity, width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[sourceURL] = memoryRecord{id: id, dims: domain.Dimensions{Width: width, Height: height}}
}

// DimensionsByURL returns the stored intrinsic dimensions.
func (r *MemoryRepository) DimensionsByURL(_ context.Context, sourceURL string) (domain.Dimensions, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[sourceURL]
	if !ok {
		return domain.Dimensions{}, domain.ErrNotFound
	}
	return rec.dims, nil
}

// ResolveIdentity returns the stored identity for the URL.
func (r *MemoryRepository) ResolveIdentity(_ context.Context, sourceURL string) (Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[sourceURL]
	if !ok {
		return "", domain.ErrNotFound
	}
	return rec.id, nil
}

// IsLocalURL applies the shared local-URL rule over the configured hosts.
func (r *MemoryRepository) IsLocalURL(sourceURL string) bool {
	return isLocal(sourceURL, r.hosts)
}

var _ Repository = (*MemoryRepository)(nil)
