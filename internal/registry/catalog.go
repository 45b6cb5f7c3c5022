package registry

import (
	"fmt"
	"sort"
	"sync"
)

// Catalog is the versioned module table: it maps version strings to
// registered Logic constructors so deployments can resolve an upgrade
// target by name instead of holding module values directly.
type Catalog struct {
	mu      sync.RWMutex
	modules map[string]func() Logic
}

// NewCatalog creates a catalog with the built-in v1 module registered.
func NewCatalog() *Catalog {
	c := &Catalog{modules: make(map[string]func() Logic)}
	c.modules["v1"] = NewLogicV1
	return c
}

// Register adds a module constructor under a version string.
func (c *Catalog) Register(version string, ctor func() Logic) error {
	if ctor == nil {
		return fmt.Errorf("register %s: constructor cannot be nil", version)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.modules[version]; exists {
		return fmt.Errorf("module version %s is already registered", version)
	}
	c.modules[version] = ctor
	return nil
}

// Resolve instantiates the module registered under version.
func (c *Catalog) Resolve(version string) (Logic, error) {
	c.mu.RLock()
	ctor, ok := c.modules[version]
	c.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown module version %q (known: %v)", version, c.Versions())
	}
	return ctor(), nil
}

// Versions lists registered versions sorted alphabetically.
func (c *Catalog) Versions() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	versions := make([]string, 0, len(c.modules))
	for v := range c.modules {
		versions = append(versions, v)
	}
	sort.Strings(versions)
	return versions
}
