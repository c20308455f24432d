package msgworker

import (
	"context"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// drainTimeout bounds the shutdown drain when the worker context is
// already gone.
const drainTimeout = 30 * time.Second

// RelayJob is one detached gateway round trip for an inbound message.
// ChatID is the sender phone; jobs sharing a ChatID land on the same
// worker so replies to one chat stay ordered.
type RelayJob struct {
	ChatID  string
	Handler func(ctx context.Context) error
}

// PoolStats is a point-in-time snapshot of the pool, exposed via /status.
type PoolStats struct {
	NumWorkers      int           `json:"num_workers"`
	QueueSize       int           `json:"queue_size"`
	ActiveWorkers   int           `json:"active_workers"`
	TotalDispatched int64         `json:"total_dispatched"`
	TotalProcessed  int64         `json:"total_processed"`
	TotalDropped    int64         `json:"total_dropped"`
	TotalErrors     int64         `json:"total_errors"`
	WorkerStats     []WorkerStats `json:"worker_stats"`
}

type WorkerStats struct {
	WorkerID      int   `json:"worker_id"`
	QueueDepth    int   `json:"queue_depth"`
	IsProcessing  bool  `json:"is_processing"`
	JobsProcessed int64 `json:"jobs_processed"`
}

// RelayWorkerPool runs a fixed set of workers, each with its own queue.
// Dispatch is non-blocking: the webhook handler must never wait on the
// downstream round trip.
type RelayWorkerPool struct {
	numWorkers int
	queueSize  int
	workers    []*worker
	wg         sync.WaitGroup
	stopOnce   sync.Once
	stopped    int32
	startTime  time.Time

	totalDispatched int64
	totalProcessed  int64
	totalDropped    int64
	totalErrors     int64
}

type worker struct {
	id            int
	jobQueue      chan RelayJob
	ctx           context.Context
	cancel        context.CancelFunc
	isProcessing  int32
	jobsProcessed int64
	pool          *RelayWorkerPool
}

func NewRelayWorkerPool(numWorkers, queueSize int) *RelayWorkerPool {
	if numWorkers <= 0 {
		numWorkers = 10
	}
	if queueSize <= 0 {
		queueSize = 100
	}

	return &RelayWorkerPool{
		numWorkers: numWorkers,
		queueSize:  queueSize,
		workers:    make([]*worker, numWorkers),
		startTime:  time.Now(),
	}
}

// Start launches all workers.
func (p *RelayWorkerPool) Start(ctx context.Context) {
	for i := 0; i < p.numWorkers; i++ {
		workerCtx, cancel := context.WithCancel(ctx)
		w := &worker{
			id:       i,
			jobQueue: make(chan RelayJob, p.queueSize),
			ctx:      workerCtx,
			cancel:   cancel,
			pool:     p,
		}
		p.workers[i] = w

		p.wg.Add(1)
		go w.run(&p.wg)
	}

	logrus.Infof("[RELAY_POOL] Started with %d workers, queue size: %d", p.numWorkers, p.queueSize)
}

// TryDispatch enqueues a job on the worker owning the chat shard and
// reports whether it fit. A full queue drops the job with a warning.
func (p *RelayWorkerPool) TryDispatch(job RelayJob) bool {
	if atomic.LoadInt32(&p.stopped) == 1 {
		atomic.AddInt64(&p.totalDropped, 1)
		return false
	}

	shard := p.shardForChat(job.ChatID)
	atomic.AddInt64(&p.totalDispatched, 1)

	sent := func() (ok bool) {
		defer func() {
			if r := recover(); r != nil {
				ok = false
			}
		}()
		select {
		case p.workers[shard].jobQueue <- job:
			return true
		default:
			return false
		}
	}()

	if sent {
		return true
	}

	atomic.AddInt64(&p.totalDropped, 1)
	logrus.Warnf("[RELAY_POOL] Worker %d queue full (or stopped), dropping job for chat %s", shard, job.ChatID)
	return false
}

// Dispatch is TryDispatch for callers that do not care about the result.
func (p *RelayWorkerPool) Dispatch(job RelayJob) {
	_ = p.TryDispatch(job)
}

// Stop shuts the pool down gracefully: in-flight jobs complete, queued
// jobs drain with a live context. Worker contexts are cancelled only
// after the drain, otherwise every drained gateway call would abort
// instantly.
func (p *RelayWorkerPool) Stop() {
	p.stopOnce.Do(func() {
		atomic.StoreInt32(&p.stopped, 1)
		logrus.Info("[RELAY_POOL] Stopping workers...")

		for _, w := range p.workers {
			close(w.jobQueue)
		}

		p.wg.Wait()

		for _, w := range p.workers {
			w.cancel()
		}

		logrus.Info("[RELAY_POOL] All workers stopped")
	})
}

func (p *RelayWorkerPool) shardForChat(chatID string) int {
	h := fnv.New32a()
	h.Write([]byte(chatID))
	return int(h.Sum32() % uint32(p.numWorkers))
}

// GetStats returns a snapshot of the pool counters.
func (p *RelayWorkerPool) GetStats() PoolStats {
	workerStats := make([]WorkerStats, len(p.workers))
	activeWorkers := 0

	for i, w := range p.workers {
		isProcessing := atomic.LoadInt32(&w.isProcessing) == 1
		if isProcessing {
			activeWorkers++
		}

		workerStats[i] = WorkerStats{
			WorkerID:      w.id,
			QueueDepth:    len(w.jobQueue),
			IsProcessing:  isProcessing,
			JobsProcessed: atomic.LoadInt64(&w.jobsProcessed),
		}
	}

	return PoolStats{
		NumWorkers:      p.numWorkers,
		QueueSize:       p.queueSize,
		ActiveWorkers:   activeWorkers,
		TotalDispatched: atomic.LoadInt64(&p.totalDispatched),
		TotalProcessed:  atomic.LoadInt64(&p.totalProcessed),
		TotalDropped:    atomic.LoadInt64(&p.totalDropped),
		TotalErrors:     atomic.LoadInt64(&p.totalErrors),
		WorkerStats:     workerStats,
	}
}

func (w *worker) run(wg *sync.WaitGroup) {
	defer wg.Done()

	logrus.Debugf("[RELAY_POOL] Worker %d started", w.id)

	for {
		select {
		case job, ok := <-w.jobQueue:
			if !ok {
				logrus.Debugf("[RELAY_POOL] Worker %d shutting down", w.id)
				return
			}
			w.process(job)

		case <-w.ctx.Done():
			logrus.Debugf("[RELAY_POOL] Worker %d context cancelled, draining queue...", w.id)
			w.drainQueue()
			return
		}
	}
}

func (w *worker) process(job RelayJob) {
	atomic.StoreInt32(&w.isProcessing, 1)
	defer func() {
		if r := recover(); r != nil {
			atomic.AddInt64(&w.pool.totalErrors, 1)
			logrus.Errorf("[RELAY_POOL] Worker %d panic for chat %s: %v", w.id, job.ChatID, r)
		}
		atomic.StoreInt32(&w.isProcessing, 0)
		atomic.AddInt64(&w.jobsProcessed, 1)
		atomic.AddInt64(&w.pool.totalProcessed, 1)
	}()

	if err := job.Handler(w.ctx); err != nil {
		atomic.AddInt64(&w.pool.totalErrors, 1)
		logrus.WithError(err).Errorf("[RELAY_POOL] Worker %d job failed for chat %s", w.id, job.ChatID)
	}
}

// drainQueue processes jobs that were queued before shutdown. The
// worker's own context is already cancelled here, so jobs run under a
// fresh bounded one.
func (w *worker) drainQueue() {
	drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()

	for {
		select {
		case job, ok := <-w.jobQueue:
			if !ok {
				return
			}
			func() {
				defer func() {
					if r := recover(); r != nil {
						atomic.AddInt64(&w.pool.totalErrors, 1)
						logrus.Errorf("[RELAY_POOL] Worker %d drain panic: %v", w.id, r)
					}
				}()
				if err := job.Handler(drainCtx); err != nil {
					logrus.WithError(err).Errorf("[RELAY_POOL] Worker %d drain job failed", w.id)
				}
			}()
		default:
			return
		}
	}
}
