package tenant

import (
	"assetflow/bizerror"
	"assetflow/persistence"
	"context"
	"sync"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var (
	ResolveFunc = Resolve
)

// Registry maps an org to the data source manager of its physical database.
// Orgs without a dedicated database fall back to the shared data source.
type Registry struct {
	mu        sync.RWMutex
	overrides map[types.ID]*persistence.DataSourceManager
}

var ActiveRegistry = &Registry{overrides: map[types.ID]*persistence.DataSourceManager{}}

func (r *Registry) Register(orgId types.ID, ds *persistence.DataSourceManager) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.overrides[orgId] = ds
}

func (r *Registry) Deregister(orgId types.ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.overrides, orgId)
}

func (r *Registry) find(orgId types.ID) *persistence.DataSourceManager {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.overrides[orgId]
}

// DataSources returns every distinct data source currently serving orgs,
// the shared data source included.
func (r *Registry) DataSources() []*persistence.DataSourceManager {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := map[*persistence.DataSourceManager]bool{}
	sources := []*persistence.DataSourceManager{}
	if persistence.ActiveDataSourceManager != nil {
		seen[persistence.ActiveDataSourceManager] = true
		sources = append(sources, persistence.ActiveDataSourceManager)
	}
	for _, ds := range r.overrides {
		if !seen[ds] {
			seen[ds] = true
			sources = append(sources, ds)
		}
	}
	return sources
}

func Resolve(orgId types.ID) (*persistence.DataSourceManager, error) {
	if ds := ActiveRegistry.find(orgId); ds != nil {
		return ds, nil
	}
	if persistence.ActiveDataSourceManager != nil {
		return persistence.ActiveDataSourceManager, nil
	}
	return nil, bizerror.ErrTenantUnavailable
}

func GormDB(ctx context.Context, orgId types.ID) (*gorm.DB, error) {
	ds, err := ResolveFunc(orgId)
	if err != nil {
		return nil, err
	}
	db := ds.GormDB(ctx)
	if db == nil {
		return nil, bizerror.ErrTenantUnavailable
	}
	return db, nil
}
