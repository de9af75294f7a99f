// Package shutdown coordinates graceful application shutdown. It keeps
// a global in-progress flag that long-running work (like planning jobs)
// can poll, and fires registered hooks when a termination signal lands.
package shutdown

import "sync"

var (
	isShutdown bool
	mu         sync.RWMutex
)

// InProgress reports whether a shutdown has been requested
func InProgress() bool {
	mu.RLock()
	defer mu.RUnlock()
	return isShutdown
}

func setShutdown() {
	mu.Lock()
	isShutdown = true
	mu.Unlock()
}
