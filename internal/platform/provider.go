package platform

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Provider bundles all backends for one device.
type Provider struct {
	Tree          UITree
	Injector      Injector
	Events        EventSource
	Screenshotter Screenshotter
}

var (
	// ErrUnsupported is returned when a capability is not available on the
	// selected backend.
	ErrUnsupported = errors.New("not supported by this backend")

	// ErrStaleElement is returned by Element methods once the element's
	// snapshot has been replaced.
	ErrStaleElement = errors.New("element is stale")

	// ErrEventTimeout is returned by EventSource.WaitForEvent when no event
	// arrives within the timeout.
	ErrEventTimeout = errors.New("timed out waiting for accessibility event")
)

// NewProviderFunc constructs a Provider for one backend.
type NewProviderFunc func(opts ProviderOptions) (*Provider, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]NewProviderFunc{}
)

// Register makes a backend available by name. Backend packages call it from
// init(); see internal/platform/sim for the simulated device.
func Register(name string, fn NewProviderFunc) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = fn
}

// Backends returns the registered backend names in sorted order.
func Backends() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewProvider returns a Provider from the named backend.
func NewProvider(backend string, opts ProviderOptions) (*Provider, error) {
	registryMu.RLock()
	fn, ok := registry[backend]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("backend %q: %w (registered: %v)", backend, ErrUnsupported, Backends())
	}
	p, err := fn(opts)
	if err != nil {
		return nil, fmt.Errorf("backend %q: %w", backend, err)
	}
	return p, nil
}
