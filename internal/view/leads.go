package view

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/xavierca1/seller-console/internal/cache"
	"github.com/xavierca1/seller-console/internal/entity"
)

// PreferenceStore is the durable key/value slot the preference survives in.
// Implemented by infra/prefstore.
type PreferenceStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

// Leads binds the pipeline to the collection cache and a durable preference
// store. The free-text query lives in memory; on startup it is seeded from
// the stored preference. Every preference change is written through before
// it takes effect on the projection.
type Leads struct {
	cache *cache.Store
	prefs PreferenceStore

	mu    sync.Mutex
	pref  Preference
	query string
}

// NewLeads loads the stored preference, falling back to defaults when the
// slot is absent or unreadable.
func NewLeads(store *cache.Store, prefs PreferenceStore) *Leads {
	l := &Leads{
		cache: store,
		prefs: prefs,
		pref:  DefaultPreference(),
	}

	if raw, err := prefs.Get(context.Background(), PreferenceKey); err == nil {
		var stored Preference
		if json.Unmarshal(raw, &stored) == nil {
			l.pref = stored
		}
	}
	l.query = l.pref.SearchQuery
	return l
}

// Rows computes the current projection.
func (l *Leads) Rows() []entity.Lead {
	l.mu.Lock()
	query, pref := l.query, l.pref
	l.mu.Unlock()

	return Apply(l.cache.Leads(), query, pref)
}

func (l *Leads) Preference() Preference {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pref
}

func (l *Leads) Query() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.query
}

func (l *Leads) SetQuery(ctx context.Context, query string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.query = query
	l.pref.SearchQuery = query
	return l.persistLocked(ctx)
}

func (l *Leads) SetStatusFilter(ctx context.Context, status string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pref.StatusFilter = status
	return l.persistLocked(ctx)
}

func (l *Leads) ToggleSort(ctx context.Context, field SortField) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pref.ToggleSort(field)
	return l.persistLocked(ctx)
}

func (l *Leads) persistLocked(ctx context.Context) error {
	raw, err := json.Marshal(l.pref)
	if err != nil {
		return err
	}
	return l.prefs.Put(ctx, PreferenceKey, raw)
}
