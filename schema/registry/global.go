package registry

import "sync"

var (
	globalLock sync.Mutex
	global     *InMemory
)

// Global returns the process-wide registry. It is created on first use with
// the process-wide configuration.
//
// Global and Reset are provided for applications that share one registry
// between their components. The packages of this module never use them and
// always take a registry as an argument, and the iibin tool builds its own
// registry for every command.
func Global() *InMemory {
	globalLock.Lock()
	defer globalLock.Unlock()

	if global == nil {
		global = NewInMemory()
	}

	return global
}

// Reset tears down the process-wide registry. The next call to Global
// returns a new empty registry.
func Reset() {
	globalLock.Lock()
	global = nil
	globalLock.Unlock()
}
