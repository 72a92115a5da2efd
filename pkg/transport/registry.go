package transport

import (
	"context"
	"sort"
	"sync"

	fetcherrors "github.com/ajitpratap0/fetch-sdk-go/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// PropertyLegacy is set to "true" on entries registered as legacy
const PropertyLegacy = "transport.legacy"

// availabilityConcurrency bounds the number of availability checks run at once
const availabilityConcurrency = 8

// Entry is one registered provider. Higher rankings are preferred.
type Entry struct {
	Provider   CandidateProvider
	Name       string
	Ranking    int
	Legacy     bool
	Properties map[string]string

	seq uint64
}

// AvailabilityResult is the outcome of checking one entry
type AvailabilityResult struct {
	Entry     Entry
	Available bool
	Err       error
}

// Registry holds ranked providers. It is safe for concurrent use and
// notifies subscribers whenever its contents change.
type Registry struct {
	mu          sync.RWMutex
	entries     map[string]Entry
	seq         uint64
	subscribers map[uint64]func()
	nextSub     uint64
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		entries:     make(map[string]Entry),
		subscribers: make(map[uint64]func()),
	}
}

// NewDefaultRegistry registers the built-in providers: http2 as the modern
// entry at ranking 0, http1 and file as legacy entries below it.
func NewDefaultRegistry(cfg TransportConfig) (*Registry, error) {
	r := NewRegistry()
	if err := r.Register(NewHTTP2Provider(cfg), 0); err != nil {
		return nil, err
	}
	if _, err := r.RegisterLegacy(NewHTTP1Provider(cfg), NewFileProvider(cfg)); err != nil {
		return nil, err
	}
	return r, nil
}

// Register adds a modern provider at ranking
func (r *Registry) Register(p CandidateProvider, ranking int) error {
	r.mu.Lock()
	if _, exists := r.entries[p.Name()]; exists {
		r.mu.Unlock()
		return fetcherrors.ProviderConflict(p.Name())
	}
	r.insertLocked(p, ranking, false)
	r.mu.Unlock()

	r.notify()
	return nil
}

// RegisterLegacy adds legacy providers, most preferred first, ranked below
// every existing entry using AllocateLegacyRankings. Either all providers are
// registered or none is.
func (r *Registry) RegisterLegacy(providers ...CandidateProvider) ([]Entry, error) {
	if len(providers) == 0 {
		return nil, nil
	}

	r.mu.Lock()
	seen := make(map[string]struct{}, len(providers))
	for _, p := range providers {
		_, dup := seen[p.Name()]
		if _, exists := r.entries[p.Name()]; exists || dup {
			r.mu.Unlock()
			return nil, fetcherrors.ProviderConflict(p.Name())
		}
		seen[p.Name()] = struct{}{}
	}

	// The first batch is placed below the modern entries; later batches go
	// below the earlier legacy ones so no two entries share a ranking.
	floor := make([]int, 0, len(r.entries))
	for _, e := range r.entries {
		floor = append(floor, e.Ranking)
	}

	rankings := LegacyRankings(floor, len(providers))
	added := make([]Entry, len(providers))
	for i, p := range providers {
		added[i] = r.insertLocked(p, rankings[i], true)
	}
	r.mu.Unlock()

	r.notify()
	return cloneEntries(added), nil
}

func (r *Registry) insertLocked(p CandidateProvider, ranking int, legacy bool) Entry {
	r.seq++
	e := Entry{
		Provider:   p,
		Name:       p.Name(),
		Ranking:    ranking,
		Legacy:     legacy,
		Properties: map[string]string{},
		seq:        r.seq,
	}
	if legacy {
		e.Properties[PropertyLegacy] = "true"
	}
	r.entries[e.Name] = e
	return e
}

// Unregister removes the named provider and reports whether it was present
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	_, ok := r.entries[name]
	delete(r.entries, name)
	r.mu.Unlock()

	if ok {
		r.notify()
	}
	return ok
}

// Lookup returns the named entry
func (r *Registry) Lookup(name string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	if !ok {
		return Entry{}, false
	}
	return cloneEntry(e), true
}

// Entries returns all entries ordered by ranking, highest first. Ties keep
// registration order.
func (r *Registry) Entries() []Entry {
	r.mu.RLock()
	entries := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Ranking != entries[j].Ranking {
			return entries[i].Ranking > entries[j].Ranking
		}
		return entries[i].seq < entries[j].seq
	})
	return cloneEntries(entries)
}

// LowestModernRanking returns the lowest ranking among non-legacy entries
func (r *Registry) LowestModernRanking() (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lowest, found := 0, false
	for _, e := range r.entries {
		if e.Legacy {
			continue
		}
		if !found || e.Ranking < lowest {
			lowest, found = e.Ranking, true
		}
	}
	return lowest, found
}

// NextBest returns the highest ranked available provider whose name is not
// in exclude.
func (r *Registry) NextBest(ctx context.Context, exclude ...string) (CandidateProvider, bool) {
	e, ok := r.nextBestEntry(ctx, exclude...)
	return e.Provider, ok
}

func (r *Registry) nextBestEntry(ctx context.Context, exclude ...string) (Entry, bool) {
	skip := make(map[string]struct{}, len(exclude))
	for _, name := range exclude {
		skip[name] = struct{}{}
	}

	for _, e := range r.Entries() {
		if _, excluded := skip[e.Name]; excluded {
			continue
		}
		if ok, err := checkAvailable(ctx, e.Provider); err == nil && ok {
			return e, true
		}
	}
	return Entry{}, false
}

// CheckAvailability reports the availability of every entry, checked
// concurrently. Results are in Entries order.
func (r *Registry) CheckAvailability(ctx context.Context) []AvailabilityResult {
	entries := r.Entries()
	results := make([]AvailabilityResult, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(availabilityConcurrency)
	for i, e := range entries {
		g.Go(func() error {
			ok, err := checkAvailable(gctx, e.Provider)
			results[i] = AvailabilityResult{Entry: e, Available: ok, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// Subscribe registers fn to be called after every change. The returned
// function removes the subscription.
func (r *Registry) Subscribe(fn func()) (cancel func()) {
	r.mu.Lock()
	r.nextSub++
	id := r.nextSub
	r.subscribers[id] = fn
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.subscribers, id)
			r.mu.Unlock()
		})
	}
}

func (r *Registry) notify() {
	r.mu.RLock()
	subs := make([]func(), 0, len(r.subscribers))
	for _, fn := range r.subscribers {
		subs = append(subs, fn)
	}
	r.mu.RUnlock()

	for _, fn := range subs {
		fn()
	}
}

func cloneEntry(e Entry) Entry {
	props := make(map[string]string, len(e.Properties))
	for k, v := range e.Properties {
		props[k] = v
	}
	e.Properties = props
	return e
}

func cloneEntries(entries []Entry) []Entry {
	for i := range entries {
		entries[i] = cloneEntry(entries[i])
	}
	return entries
}
