package loader

import (
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/astcvm/natv-runtime/errors"
)

// System is the module loading and stability layer. It resolves module
// names to files, loads them through a backend with bounded retries,
// caches the handles under an LRU policy, and tracks per-module health
// and counters.
//
// All methods are safe for concurrent use.
type System struct {
	mu    sync.Mutex
	cfg   Config
	cache *lru.Cache[string, *entry]

	native NativeBackend
	dylib  DylibBackend

	totalLoaded uint64
	totalErrors uint64
	initialized bool

	log *zap.Logger
}

// New constructs a System. A nil cfg uses DefaultConfig; zero fields in
// a non-nil cfg are filled with defaults.
func New(cfg *Config) (*System, error) {
	c := DefaultConfig()
	if cfg != nil {
		c = *cfg
	}
	c = c.withDefaults()

	s := &System{cfg: c, log: c.Logger, initialized: true}

	cache, err := lru.NewWithEvict[string, *entry](c.MaxCachedModules, s.onEvict)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidParam, err, "cache size")
	}
	s.cache = cache

	s.log.Info("module system initialized",
		zap.Int("max_cached_modules", c.MaxCachedModules),
		zap.Int("max_load_retries", c.MaxLoadRetries),
		zap.Duration("health_check_interval", c.HealthCheckInterval),
		zap.Bool("auto_recovery", c.AutoRecovery))
	return s, nil
}

// onEvict runs inside cache mutations while s.mu is held. It must not
// touch the cache or take the lock.
func (s *System) onEvict(name string, e *entry) {
	if e.loaded && e.handle != nil {
		if err := e.handle.Close(); err != nil {
			s.log.Warn("evicted module close failed",
				zap.String("module", name), zap.Error(err))
		}
		e.loaded = false
	}
	s.log.Debug("module evicted", zap.String("module", name))
}

// Load makes the named module available for symbol resolution. A module
// already loaded is a cache hit and only bumps its load counter. On a
// miss the module file is located on the search paths and opened through
// the backend, retrying up to MaxLoadRetries times; exhausting the
// retries marks the module unhealthy and returns a load failure carrying
// the last backend error.
func (s *System) Load(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errors.NotInitialized(errors.PhaseLoad)
	}
	if name == "" {
		return errors.InvalidParam(errors.PhaseLoad, "module name is empty")
	}

	e, ok := s.cache.Get(name)
	if ok && e.loaded {
		e.stats.LoadCount++
		s.log.Debug("module cache hit", zap.String("module", name))
		return nil
	}
	if !ok {
		e = &entry{name: name}
		s.cache.Add(name, e)
	}

	path := resolvePath(s.cfg.SearchPaths, name)
	backend := s.backendFor(path)

	var (
		handle  Handle
		lastErr error
	)
	for attempt := 1; attempt <= s.cfg.MaxLoadRetries; attempt++ {
		handle, lastErr = backend.Open(path)
		if lastErr == nil {
			break
		}
		s.log.Warn("module load attempt failed",
			zap.String("module", name),
			zap.String("path", path),
			zap.Int("attempt", attempt),
			zap.Error(lastErr))
	}
	if lastErr != nil {
		e.stats.ErrorCount++
		e.stats.Health = HealthError
		s.totalErrors++
		return errors.LoadFailed(name, s.cfg.MaxLoadRetries, lastErr)
	}

	e.handle = handle
	e.loaded = true
	e.stats.LoadCount++
	e.stats.LastLoadTime = time.Now()
	e.stats.Health = HealthHealthy
	if s.cfg.MemoryMonitoring {
		if r, ok := handle.(memoryReporter); ok {
			e.stats.MemoryUsage = r.MemoryUsage()
		}
	}
	s.totalLoaded++

	s.log.Info("module loaded",
		zap.String("module", name),
		zap.String("path", path),
		zap.Uint64("memory_usage", e.stats.MemoryUsage))
	return nil
}

// Resolve returns the in-process address of a symbol exported by a
// loaded module. The module must have been loaded first.
func (s *System) Resolve(name, symbol string) (uintptr, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return 0, errors.NotInitialized(errors.PhaseResolve)
	}
	if name == "" || symbol == "" {
		return 0, errors.InvalidParam(errors.PhaseResolve, "module and symbol names are required")
	}

	e, ok := s.cache.Get(name)
	if !ok || !e.loaded {
		return 0, errors.NotFound(errors.PhaseResolve, "module", name)
	}

	addr, err := e.handle.Lookup(symbol)
	if err != nil {
		e.stats.ErrorCount++
		return 0, errors.SymbolNotFound(name, symbol)
	}
	e.stats.SymbolResolveCount++
	return addr, nil
}

// Unload releases the named module's handle. The cache entry and its
// counters survive so a later Load resumes the same history.
func (s *System) Unload(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errors.NotInitialized(errors.PhaseLoad)
	}
	e, ok := s.cache.Peek(name)
	if !ok || !e.loaded {
		return errors.NotFound(errors.PhaseLoad, "loaded module", name)
	}

	err := e.handle.Close()
	e.handle = nil
	e.loaded = false
	e.stats.UnloadCount++
	e.stats.MemoryUsage = 0
	e.stats.Health = HealthUnknown
	if err != nil {
		e.stats.ErrorCount++
		s.totalErrors++
		return errors.System(errors.PhaseLoad, "unload "+name, err)
	}
	s.log.Info("module unloaded", zap.String("module", name))
	return nil
}

// Health reports the named module's health, HealthUnknown if it was
// never seen.
func (s *System) Health(name string) Health {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.cache.Peek(name)
	if !ok {
		return HealthUnknown
	}
	return e.stats.Health
}

// Stats returns a snapshot of the named module's counters.
func (s *System) Stats(name string) (Stats, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.cache.Peek(name)
	if !ok {
		return Stats{}, false
	}
	return e.stats, true
}

// ModuleReport is one module's row in a system report.
type ModuleReport struct {
	Name   string
	Loaded bool
	Stats  Stats
}

// SystemReport aggregates the state of every cached module.
type SystemReport struct {
	CachedModules int
	LoadedModules int
	TotalLoaded   uint64
	TotalErrors   uint64
	MemoryUsage   uint64
	Modules       []ModuleReport
}

// Report snapshots the whole system: per-module rows in least to most
// recently used order plus the global counters.
func (s *System) Report() SystemReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := SystemReport{
		CachedModules: s.cache.Len(),
		TotalLoaded:   s.totalLoaded,
		TotalErrors:   s.totalErrors,
	}
	for _, name := range s.cache.Keys() {
		e, ok := s.cache.Peek(name)
		if !ok {
			continue
		}
		if e.loaded {
			r.LoadedModules++
			r.MemoryUsage += e.stats.MemoryUsage
		}
		r.Modules = append(r.Modules, ModuleReport{
			Name:   e.name,
			Loaded: e.loaded,
			Stats:  e.stats,
		})
	}
	return r
}

// Cleanup unloads everything and shuts the system down. Further calls
// fail with a not-initialized error.
func (s *System) Cleanup() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errors.NotInitialized(errors.PhaseLoad)
	}
	s.cache.Purge()
	s.initialized = false
	s.log.Info("module system cleaned up")
	return nil
}

// backendFor picks the backend by file extension unless the config pins
// one for all modules.
func (s *System) backendFor(path string) Backend {
	if s.cfg.Backend != nil {
		return s.cfg.Backend
	}
	if strings.HasSuffix(path, ".native") {
		return s.native
	}
	return s.dylib
}
