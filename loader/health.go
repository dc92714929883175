package loader

import "time"

// Health classifies a cached module's operational state.
type Health int

const (
	HealthUnknown Health = iota
	HealthHealthy
	HealthWarning
	HealthError
	HealthCritical
)

func (h Health) String() string {
	switch h {
	case HealthUnknown:
		return "unknown"
	case HealthHealthy:
		return "healthy"
	case HealthWarning:
		return "warning"
	case HealthError:
		return "error"
	case HealthCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Stats holds the live counters for one cached module.
type Stats struct {
	LoadCount          uint64
	UnloadCount        uint64
	SymbolResolveCount uint64
	ErrorCount         uint64
	MemoryUsage        uint64
	LastLoadTime       time.Time
	Health             Health
}

// entry is one cache slot: a module name bound to an opaque handle plus
// its counters. Entries are created lazily on the first load request.
type entry struct {
	name   string
	handle Handle
	loaded bool
	stats  Stats
}
