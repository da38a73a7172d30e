package pools

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Task represents a unit of work
type Task func()

// MinWorkers is the smallest pool DefaultWorkers will size
const MinWorkers = 2

// DefaultWorkers returns NumCPU-2, clamped to MinWorkers
func DefaultWorkers() int {
	n := runtime.NumCPU() - 2
	if n < MinWorkers {
		n = MinWorkers
	}
	return n
}

// WorkerPool is a fixed-size, work-stealing goroutine pool.
// Tasks still queued when the pool closes are abandoned.
type WorkerPool struct {
	numWorkers int
	queues     []*workerQueue
	workers    []*worker

	mu     sync.RWMutex // guards queue sends against Close
	closed atomic.Bool
	wg     sync.WaitGroup

	// Statistics
	stats struct {
		tasksSubmitted atomic.Uint64
		tasksCompleted atomic.Uint64
		tasksAbandoned atomic.Uint64
		tasksPanicked  atomic.Uint64
		stealsSuccess  atomic.Uint64
		stealsFailed   atomic.Uint64
	}
}

// workerQueue is the buffered queue of a single worker
type workerQueue struct {
	tasks chan Task
	id    int
}

// worker represents a goroutine that processes tasks
type worker struct {
	id    int
	pool  *WorkerPool
	queue *workerQueue
}

// NewWorkerPool starts numWorkers workers; numWorkers <= 0 means DefaultWorkers
func NewWorkerPool(numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = DefaultWorkers()
	}

	pool := &WorkerPool{
		numWorkers: numWorkers,
		queues:     make([]*workerQueue, numWorkers),
		workers:    make([]*worker, numWorkers),
	}

	for i := 0; i < numWorkers; i++ {
		pool.queues[i] = &workerQueue{
			tasks: make(chan Task, 256),
			id:    i,
		}
	}

	pool.wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		w := &worker{
			id:    i,
			pool:  pool,
			queue: pool.queues[i],
		}
		pool.workers[i] = w
		go w.run()
	}

	return pool
}

// Size returns the number of workers
func (p *WorkerPool) Size() int {
	return p.numWorkers
}

// Submit queues task using round-robin. It returns false once the pool is closed.
func (p *WorkerPool) Submit(task Task) bool {
	p.mu.RLock()
	if p.closed.Load() {
		p.mu.RUnlock()
		return false
	}

	submitted := p.stats.tasksSubmitted.Add(1)
	idx := int(submitted % uint64(p.numWorkers))

	select {
	case p.queues[idx].tasks <- task:
		p.mu.RUnlock()
		return true
	default:
	}

	// Queue full, try next worker
	idx = (idx + 1) % p.numWorkers
	select {
	case p.queues[idx].tasks <- task:
		p.mu.RUnlock()
		return true
	default:
	}
	p.mu.RUnlock()

	// All queues full, execute inline
	p.exec(task)
	return true
}

// Do runs task on the pool and waits for it to finish.
// It returns false when the pool closed before the task ran or the task panicked.
func (p *WorkerPool) Do(task Task) bool {
	done := make(chan struct{})
	ran := false

	ok := p.Submit(func() {
		defer close(done)
		if p.closed.Load() {
			p.stats.tasksAbandoned.Add(1)
			return
		}
		task()
		ran = true
	})
	if !ok {
		return false
	}

	<-done
	return ran
}

// exec runs one task; a panicking task does not take its worker down
func (p *WorkerPool) exec(task Task) {
	defer func() {
		if r := recover(); r != nil {
			p.stats.tasksPanicked.Add(1)
		}
		p.stats.tasksCompleted.Add(1)
	}()
	task()
}

// worker.run is the main loop for a worker goroutine
func (w *worker) run() {
	defer w.pool.wg.Done()

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	for {
		// Own queue first
		select {
		case task, ok := <-w.queue.tasks:
			if !ok {
				return
			}
			w.pool.exec(task)
			continue
		default:
		}

		// Own queue is empty, try to steal from other workers
		if w.trySteal() {
			continue
		}

		// No work available, block on own queue
		task, ok := <-w.queue.tasks
		if !ok {
			return
		}
		w.pool.exec(task)
	}
}

// trySteal attempts to steal work from another worker
func (w *worker) trySteal() bool {
	numWorkers := w.pool.numWorkers
	start := (w.id + 1) % numWorkers

	for i := 0; i < numWorkers-1; i++ {
		victim := w.pool.queues[(start+i)%numWorkers]

		select {
		case task, ok := <-victim.tasks:
			if ok {
				w.pool.stats.stealsSuccess.Add(1)
				w.pool.exec(task)
				return true
			}
		default:
		}
	}

	w.pool.stats.stealsFailed.Add(1)
	return false
}

// Close stops accepting tasks and waits for every worker to exit
func (p *WorkerPool) Close() {
	p.mu.Lock()
	if !p.closed.CompareAndSwap(false, true) {
		p.mu.Unlock()
		return
	}
	for _, q := range p.queues {
		close(q.tasks)
	}
	p.mu.Unlock()

	p.wg.Wait()
}

// Closed reports whether Close has been called
func (p *WorkerPool) Closed() bool {
	return p.closed.Load()
}

// Stats returns pool statistics
func (p *WorkerPool) Stats() WorkerPoolStats {
	submitted := p.stats.tasksSubmitted.Load()
	completed := p.stats.tasksCompleted.Load()
	pending := uint64(0)
	if submitted > completed {
		pending = submitted - completed
	}
	return WorkerPoolStats{
		NumWorkers:     p.numWorkers,
		TasksSubmitted: submitted,
		TasksCompleted: completed,
		TasksPending:   pending,
		TasksAbandoned: p.stats.tasksAbandoned.Load(),
		TasksPanicked:  p.stats.tasksPanicked.Load(),
		StealsSuccess:  p.stats.stealsSuccess.Load(),
		StealsFailed:   p.stats.stealsFailed.Load(),
	}
}

// WorkerPoolStats contains pool statistics
type WorkerPoolStats struct {
	NumWorkers     int
	TasksSubmitted uint64
	TasksCompleted uint64
	TasksPending   uint64
	TasksAbandoned uint64
	TasksPanicked  uint64
	StealsSuccess  uint64
	StealsFailed   uint64
}
