package browser

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/raysh454/webshot/internal/interfaces"
)

// DriverBuilder constructs a Driver given a logger.
type DriverBuilder func(logger interfaces.Logger) (Driver, error)

var (
	mu       sync.RWMutex
	registry = map[string]DriverBuilder{}
)

// Register registers a named driver builder. Name is lower-cased internally.
// Registering the same name twice overwrites the previous builder.
func Register(name string, builder DriverBuilder) {
	if name == "" || builder == nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	registry[strings.ToLower(name)] = builder
}

// New constructs the named Driver. It returns an error if the name has not
// been registered. An empty name selects chromedp.
func New(name string, logger interfaces.Logger) (Driver, error) {
	driver := strings.ToLower(strings.TrimSpace(name))
	if driver == "" {
		driver = "chromedp"
	}

	mu.RLock()
	builder, ok := registry[driver]
	mu.RUnlock()
	if !ok || builder == nil {
		return nil, fmt.Errorf("browser driver %q not registered: available drivers=%v", driver, List())
	}

	d, err := builder(logger)
	if err != nil {
		return nil, fmt.Errorf("construct browser driver %q: %w", driver, err)
	}
	if d == nil {
		return nil, errors.New("driver builder returned nil")
	}
	return d, nil
}

// List returns the registered driver names, sorted.
func List() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
