package shutdown

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rohanthewiz/logger"
)

const gracePeriod = 10 * time.Second

// HookFunc is given the grace period and should release its resource
// within it
type HookFunc func(grace time.Duration) error

type hookRegistry struct {
	hooks []HookFunc
	lock  sync.Mutex
}

var registry hookRegistry

// RegisterHook adds a cleanup function fired on shutdown
func RegisterHook(fn HookFunc) {
	registry.lock.Lock()
	defer registry.lock.Unlock()
	registry.hooks = append(registry.hooks, fn)
	logger.Info("Registered shutdown hook", "count", len(registry.hooks))
}

// InitShutdownService installs the signal handler. When SIGINT or
// SIGTERM arrives it flips the shutdown flag, fires all hooks
// concurrently, waits out the grace period at most, then closes done.
func InitShutdownService(done chan struct{}) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer close(done)

		sig := <-sigChan
		logger.Info("Received shutdown signal", "signal", sig.String())
		setShutdown()

		logger.Info("Firing shutdown hooks", "count", len(registry.hooks), "grace", gracePeriod.String())

		var wg sync.WaitGroup
		for i, hook := range registry.hooks {
			wg.Add(1)
			go func(n int, fn HookFunc) {
				defer wg.Done()
				if err := fn(gracePeriod); err != nil {
					logger.LogErr(err, "shutdown hook failed", "hook", n)
				}
			}(i, hook)
		}

		hooksDone := make(chan struct{})
		go func() {
			wg.Wait()
			close(hooksDone)
		}()

		select {
		case <-hooksDone:
			logger.Info("All shutdown hooks completed")
		case <-time.After(gracePeriod):
			logger.Warn("Shutdown hooks timed out", "grace", gracePeriod.String())
		}
	}()
}
