package transport

import (
	"context"
	"io"
	"sync"
	"sync/atomic"

	"github.com/ajitpratap0/fetch-sdk-go/pkg/logging"
)

// Binding keeps a FallbackTransport paired with the current state of a
// Registry. The primary is the entry with the bound name; the secondary is
// the best available other entry. When the registry changes, a new wrapper
// is built only if either side changed identity, so circuit state survives
// unrelated registry churn.
type Binding struct {
	primaryName string
	registry    *Registry
	logger      logging.Logger
	opts        []FallbackOption

	rebuild sync.Mutex
	current atomic.Pointer[boundPair]
	cancel  func()
}

// boundPair records which registrations a wrapper was built from. A
// provider re-registered under the same name gets a new seq.
type boundPair struct {
	primary   entryID
	secondary entryID
	transport *FallbackTransport
}

type entryID struct {
	name string
	seq  uint64
}

func idOf(e Entry) entryID {
	return entryID{name: e.Name, seq: e.seq}
}

// NewBinding binds primary to registry and starts following registry changes
func NewBinding(primary string, registry *Registry, logger logging.Logger, opts ...FallbackOption) *Binding {
	if logger == nil {
		logger = logging.NewNop()
	}
	b := &Binding{
		primaryName: primary,
		registry:    registry,
		logger:      logger.WithFields(logging.String("component", "binding")),
		opts:        opts,
	}
	b.cancel = registry.Subscribe(func() {
		b.Refresh(context.Background())
	})
	b.Refresh(context.Background())
	return b
}

// Refresh re-evaluates the pairing and swaps in a new wrapper if it changed
func (b *Binding) Refresh(ctx context.Context) {
	b.rebuild.Lock()
	defer b.rebuild.Unlock()

	var primaryID, secondaryID entryID
	var primary, secondary Transport

	if e, ok := b.registry.Lookup(b.primaryName); ok {
		t, err := makeTransport(e.Provider)
		if err != nil {
			b.logger.Warn("Bound primary cannot build a transport",
				logging.String("primary", b.primaryName), logging.ErrorField(err))
		} else {
			primaryID, primary = idOf(e), t
		}
	}

	if e, ok := b.registry.nextBestEntry(ctx, b.primaryName); ok {
		if t, err := makeTransport(e.Provider); err == nil {
			secondaryID, secondary = idOf(e), t
		}
	}

	if cur := b.current.Load(); cur != nil && cur.primary == primaryID && cur.secondary == secondaryID {
		return
	}

	b.current.Store(&boundPair{
		primary:   primaryID,
		secondary: secondaryID,
		transport: NewFallbackTransport(primary, secondary, b.opts...),
	})
	b.logger.Debug("Rebound fallback transport",
		logging.String("primary", primaryID.name),
		logging.String("secondary", secondaryID.name))
}

// Current returns the wrapper in use
func (b *Binding) Current() *FallbackTransport {
	return b.current.Load().transport
}

// Name implements Named
func (b *Binding) Name() string {
	return b.Current().Name()
}

// Stream implements Transport using the current wrapper
func (b *Binding) Stream(ctx context.Context, location string, progress Progress) (io.ReadCloser, error) {
	return b.Current().Stream(ctx, location, progress)
}

// Close stops following registry changes
func (b *Binding) Close() {
	if b.cancel != nil {
		b.cancel()
	}
}
