package planner

import "sync"

// SessionContext is the mutable, keyed bag of intermediate artifacts
// scoped to one workflow execution. Agents publish named artifacts for
// downstream consumers and diagnostics. During the parallel phase each
// agent writes a distinct key; the mutex only guards the map itself.
type SessionContext struct {
	SessionID string
	mu        sync.RWMutex
	data      map[string]any
}

// NewSessionContext creates an empty context for one workflow run
func NewSessionContext(sessionID string) *SessionContext {
	return &SessionContext{
		SessionID: sessionID,
		data:      make(map[string]any),
	}
}

// Set stores a value under key, overwriting unconditionally
func (c *SessionContext) Set(key string, value any) {
	c.mu.Lock()
	c.data[key] = value
	c.mu.Unlock()
}

// Get returns the value for key, or def when absent. Never fails.
func (c *SessionContext) Get(key string, def any) any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if val, ok := c.data[key]; ok {
		return val
	}
	return def
}

// Snapshot returns a shallow copy safe for external inspection
func (c *SessionContext) Snapshot() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]any, len(c.data))
	for k, v := range c.data {
		out[k] = v
	}
	return out
}
