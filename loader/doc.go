// Package loader provides the module loading and stability layer.
//
// A System locates module files on configured search paths, opens them
// through a pluggable Backend (the NATV parser for ".native" files, the
// platform dynamic loader for shared libraries), and keeps the resulting
// handles in a bounded LRU cache. Loads retry a configured number of
// times before the module is marked unhealthy; per-module counters and
// health survive unloads so repeated failures are visible over time.
//
// Typical use:
//
//	sys, err := loader.New(nil)
//	if err != nil { ... }
//	defer sys.Cleanup()
//
//	if err := sys.Load("math"); err != nil { ... }
//	addr, err := sys.Resolve("math", "add")
package loader
