package usecase

import (
	"context"
	"log"
	"sync"
	"sync/atomic"

	"github.com/xavierca1/seller-console/internal/cache"
	"github.com/xavierca1/seller-console/internal/entity"
)

// LoadWorkspaceUseCase pulls the full lead and opportunity snapshots and
// seats them in the cache. Both calls go out together and both are awaited:
// leads are required for readiness, opportunities are best-effort and fall
// back to an empty set.
type LoadWorkspaceUseCase struct {
	Cache  *cache.Store
	Remote RemoteStore

	ready atomic.Bool
}

func NewLoadWorkspaceUseCase(store *cache.Store, remote RemoteStore) *LoadWorkspaceUseCase {
	return &LoadWorkspaceUseCase{
		Cache:  store,
		Remote: remote,
	}
}

func (uc *LoadWorkspaceUseCase) Execute(ctx context.Context) (*LoadWorkspaceOutput, error) {
	var (
		wg sync.WaitGroup

		leads    []entity.Lead
		leadsErr error

		opportunities []entity.Opportunity
		oppsErr       error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		leads, leadsErr = uc.Remote.GetLeads(ctx)
	}()
	go func() {
		defer wg.Done()
		opportunities, oppsErr = uc.Remote.GetOpportunities(ctx)
	}()
	wg.Wait()

	if leadsErr != nil {
		// Without the lead snapshot there is no console; the caller retries.
		return nil, leadsErr
	}

	if oppsErr != nil {
		log.Printf("warn: opportunity snapshot unavailable, starting empty: %v", oppsErr)
		opportunities = nil
	}

	uc.Cache.ReplaceAll(leads, opportunities)
	uc.ready.Store(true)
	return &LoadWorkspaceOutput{
		Leads:         len(leads),
		Opportunities: len(opportunities),
	}, nil
}

// Ready reports whether a lead snapshot has ever been seated. Until then the
// console is serving an empty workspace and a refresh is the way out.
func (uc *LoadWorkspaceUseCase) Ready() bool {
	return uc.ready.Load()
}
