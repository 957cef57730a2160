package factory

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/NamanBalaji/fetchr/pkg/protocol"
)

var (
	ErrUnsupportedProtocol = errors.New("unsupported protocol")
	ErrInvalidURL          = errors.New("invalid URL")
	ErrDuplicateProtocol   = errors.New("prefix already mounted")
)

// Registry maps URL prefixes to adapters. It is safe for concurrent use.
type Registry interface {
	// Mount associates prefix with adapter. Prefixes are matched without
	// regard to case. If the prefix is already mounted and AllowOverwrite
	// is false, it returns ErrDuplicateProtocol.
	Mount(prefix string, adapter protocol.Adapter) error

	// Resolve returns the adapter mounted on the longest prefix of rawURL
	// together with that prefix.
	Resolve(rawURL string) (protocol.Adapter, string, error)

	// Lookup returns the adapter mounted on exactly prefix.
	Lookup(prefix string) (protocol.Adapter, bool)

	// Prefixes returns the mounted prefixes in sorted order.
	Prefixes() []string

	// Adapters returns each distinct mounted adapter once.
	Adapters() []protocol.Adapter
}

type defaultRegistry struct {
	mu      sync.RWMutex
	mounts  map[string]protocol.Adapter
	options RegistryOptions
}

func NewRegistry(opts RegistryOptions) Registry {
	return &defaultRegistry{
		mounts:  make(map[string]protocol.Adapter),
		options: opts,
	}
}

func (r *defaultRegistry) Mount(prefix string, adapter protocol.Adapter) error {
	if prefix == "" || adapter == nil {
		return fmt.Errorf("cannot mount empty prefix or nil adapter")
	}

	key := strings.ToLower(prefix)

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.options.AllowOverwrite {
		if _, exists := r.mounts[key]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicateProtocol, prefix)
		}
	}

	r.mounts[key] = adapter
	return nil
}

func (r *defaultRegistry) Resolve(rawURL string) (protocol.Adapter, string, error) {
	if rawURL == "" {
		return nil, "", ErrInvalidURL
	}

	lower := strings.ToLower(rawURL)

	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		best    string
		adapter protocol.Adapter
	)
	for prefix, a := range r.mounts {
		if len(prefix) > len(best) && strings.HasPrefix(lower, prefix) {
			best, adapter = prefix, a
		}
	}

	if adapter == nil {
		return nil, "", fmt.Errorf("%w: no adapter mounted for %s", ErrUnsupportedProtocol, rawURL)
	}

	return adapter, best, nil
}

func (r *defaultRegistry) Lookup(prefix string) (protocol.Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.mounts[strings.ToLower(prefix)]
	return a, ok
}

func (r *defaultRegistry) Prefixes() []string {
	r.mu.RLock()
	prefixes := make([]string, 0, len(r.mounts))
	for p := range r.mounts {
		prefixes = append(prefixes, p)
	}
	r.mu.RUnlock()

	sort.Strings(prefixes)
	return prefixes
}

func (r *defaultRegistry) Adapters() []protocol.Adapter {
	var adapters []protocol.Adapter

	for _, p := range r.Prefixes() {
		a, ok := r.Lookup(p)
		if !ok {
			continue
		}

		seen := false
		for _, existing := range adapters {
			if existing == a {
				seen = true
				break
			}
		}
		if !seen {
			adapters = append(adapters, a)
		}
	}

	return adapters
}
