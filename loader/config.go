package loader

import (
	"time"

	"go.uber.org/zap"
)

// Default configuration values.
const (
	DefaultMaxCachedModules = 32
	DefaultMaxLoadRetries   = 3
	DefaultHealthInterval   = 60 * time.Second
)

// defaultSearchPaths mirrors the module system's conventional layout.
var defaultSearchPaths = []string{".", "bin", "lib", "modules"}

// Config carries the tunable knobs of a module System. It is supplied
// once at construction.
//
// HealthCheckInterval and AutoRecovery are recorded and reported but no
// background scheduling is performed: health transitions only happen on
// explicit Load calls. They exist so embedders running their own
// supervision loop have one place to read the intended cadence from.
type Config struct {
	// MaxCachedModules bounds the cache. When full, the least recently
	// used entry is evicted and its handle unloaded.
	MaxCachedModules int

	// MaxLoadRetries is the number of platform load attempts per Load
	// call before the module is marked unhealthy.
	MaxLoadRetries int

	// HealthCheckInterval is the intended supervision cadence. Not
	// acted on internally.
	HealthCheckInterval time.Duration

	// AutoRecovery is recorded and reported. Not acted on internally.
	AutoRecovery bool

	// MemoryMonitoring records a memory-usage estimate on successful
	// loads when the backend can provide one.
	MemoryMonitoring bool

	// SearchPaths are tried in order when deriving a module's file
	// path. Defaults to ".", "bin", "lib", "modules".
	SearchPaths []string

	// Backend overrides backend selection for every module when set.
	// Used by tests and by embedders with their own loading scheme.
	Backend Backend

	// Logger receives structured load/resolve/eviction events. Defaults
	// to the package logger (a no-op unless SetLogger was called).
	Logger *zap.Logger
}

// DefaultConfig returns the default system configuration.
func DefaultConfig() Config {
	return Config{
		MaxCachedModules:    DefaultMaxCachedModules,
		MaxLoadRetries:      DefaultMaxLoadRetries,
		HealthCheckInterval: DefaultHealthInterval,
		AutoRecovery:        true,
		MemoryMonitoring:    true,
		SearchPaths:         defaultSearchPaths,
	}
}

func (c Config) withDefaults() Config {
	if c.MaxCachedModules <= 0 {
		c.MaxCachedModules = DefaultMaxCachedModules
	}
	if c.MaxLoadRetries <= 0 {
		c.MaxLoadRetries = DefaultMaxLoadRetries
	}
	if c.HealthCheckInterval <= 0 {
		c.HealthCheckInterval = DefaultHealthInterval
	}
	if len(c.SearchPaths) == 0 {
		c.SearchPaths = defaultSearchPaths
	}
	if c.Logger == nil {
		c.Logger = Logger()
	}
	return c
}
