package msgworker

import (
	"context"
	"sync"

	coreconfig "github.com/hansai/wa-bridge/core/config"
	"github.com/sirupsen/logrus"
)

var (
	globalPool     *RelayWorkerPool
	globalPoolOnce sync.Once
	globalPoolCtx  context.Context
	globalCancel   context.CancelFunc
)

// GetGlobalPool returns the singleton relay worker pool.
func GetGlobalPool() *RelayWorkerPool {
	globalPoolOnce.Do(func() {
		globalPoolCtx, globalCancel = context.WithCancel(context.Background())

		size := 20
		queue := 1000
		if coreconfig.Global != nil {
			if coreconfig.Global.WorkerPool.Size > 0 {
				size = coreconfig.Global.WorkerPool.Size
			}
			if coreconfig.Global.WorkerPool.QueueSize > 0 {
				queue = coreconfig.Global.WorkerPool.QueueSize
			}
		}

		globalPool = NewRelayWorkerPool(size, queue)
		globalPool.Start(globalPoolCtx)
		logrus.Infof("[RELAY_POOL] Global instance started with %d workers and queue size %d", size, queue)
	})
	return globalPool
}

// StopGlobalPool stops the singleton pool. Stop runs before the parent
// context is cancelled so queued jobs drain with a live context.
func StopGlobalPool() {
	if globalPool != nil {
		globalPool.Stop()
	}
	if globalCancel != nil {
		globalCancel()
	}
}

// GetGlobalStats returns stats from the global pool.
func GetGlobalStats() PoolStats {
	return GetGlobalPool().GetStats()
}
