// Package providers holds concrete Embedder adapters and a name-based
// registry for constructing them, mirroring the factory-registration
// pattern used throughout the wider embedding ecosystem: adapters register
// themselves in an init() and are looked up by name at configuration time.
package providers

import (
	"fmt"
	"sync"

	"github.com/ragline/ragline/internal/ragcore"
)

// Factory builds an Embedder from a loosely-typed configuration map, so
// callers can select and configure a provider entirely from configuration
// data (env vars, a JSON file) without importing the concrete adapter type.
type Factory func(config map[string]interface{}) (ragcore.Embedder, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register adds a named embedder Factory to the registry. Adapters call
// this from their own init().
func Register(name string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[name] = factory
}

// Get looks up a previously registered Factory by name.
func Get(name string) (Factory, error) {
	mu.RLock()
	defer mu.RUnlock()
	f, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("ragline: no embedder registered under name %q", name)
	}
	return f, nil
}

// New builds an Embedder by looking up name in the registry and invoking
// its Factory with config.
func New(name string, config map[string]interface{}) (ragcore.Embedder, error) {
	factory, err := Get(name)
	if err != nil {
		return nil, ragcore.NewConfigurationError("providers.New", err.Error())
	}
	return factory(config)
}
