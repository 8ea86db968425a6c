package video

import (
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// QueueStats is a point-in-time snapshot of a queue's diagnostic counters.
//
// Dropped counts frames discarded because the ready queue was at capacity
// with no pooled storage available; it is the queue's only overload signal.
type QueueStats struct {
	Enqueued uint64
	Dropped  uint64
	Dequeued uint64
	Recycled uint64
}

// FrameQueue is a bounded FIFO of ready-to-consume frames backed by a pool
// of reusable storages, specialized at compile time to one frame layout.
//
// Exactly one producer goroutine may call Enqueue and exactly one consumer
// goroutine may call TryDequeue/Recycle; the two run at independent
// cadences. The ready list and the pool are guarded by separate mutexes so
// the producer and consumer only contend when touching the same list, and
// no call ever blocks waiting for space or data.
type FrameQueue[F RawFrame] struct {
	maxQueueLength int

	readyMu sync.Mutex
	ready   []*FrameStorage

	poolMu sync.Mutex
	pool   []*FrameStorage

	enqueued atomic.Uint64
	dropped  atomic.Uint64
	dequeued atomic.Uint64
	recycled atomic.Uint64
}

// NewFrameQueue creates a frame queue holding at most maxQueueLength ready
// frames. Values below 1 are clamped to 1.
func NewFrameQueue[F RawFrame](maxQueueLength int) *FrameQueue[F] {
	if maxQueueLength < 1 {
		logrus.WithFields(logrus.Fields{
			"function":         "NewFrameQueue",
			"max_queue_length": maxQueueLength,
		}).Warn("Invalid queue length, clamping to 1")
		maxQueueLength = 1
	}

	logrus.WithFields(logrus.Fields{
		"function":         "NewFrameQueue",
		"max_queue_length": maxQueueLength,
	}).Info("Creating new frame queue")

	return &FrameQueue[F]{
		maxQueueLength: maxQueueLength,
		ready:          make([]*FrameStorage, 0, maxQueueLength),
		pool:           make([]*FrameStorage, 0, maxQueueLength+1),
	}
}

// Enqueue copies frame into a pooled (or newly allocated) storage and
// appends it to the ready queue. It returns false when the frame was
// dropped because the queue is at capacity and no pooled storage exists;
// backpressure is realized purely as frame loss, never as blocking.
func (q *FrameQueue[F]) Enqueue(frame F) bool {
	size := frame.StorageSize()
	storage := q.getStorageFor(size)
	if storage == nil {
		q.dropped.Add(1)
		logrus.WithFields(logrus.Fields{
			"function":   "FrameQueue.Enqueue",
			"frame_size": size,
		}).Debug("Queue full, dropping incoming frame")
		return false
	}

	storage.width, storage.height = frame.Dimensions()
	frame.copyTo(storage.data)

	q.readyMu.Lock()
	q.ready = append(q.ready, storage)
	q.readyMu.Unlock()

	q.enqueued.Add(1)
	return true
}

// TryDequeue pops the oldest ready frame, transferring ownership of the
// returned storage to the caller until it calls Recycle. It returns false
// without waiting when no frame is ready.
func (q *FrameQueue[F]) TryDequeue() (*FrameStorage, bool) {
	q.readyMu.Lock()
	if len(q.ready) == 0 {
		q.readyMu.Unlock()
		return nil, false
	}
	storage := q.ready[0]
	n := copy(q.ready, q.ready[1:])
	q.ready = q.ready[:n]
	q.readyMu.Unlock()

	q.dequeued.Add(1)
	return storage, true
}

// Recycle returns a consumed storage to the pool for reuse. The consumer
// must call it once it has finished reading the frame contents; skipping
// it bypasses the pool and forces a fresh allocation on a later Enqueue.
func (q *FrameQueue[F]) Recycle(storage *FrameStorage) {
	if storage == nil {
		logrus.WithFields(logrus.Fields{
			"function": "FrameQueue.Recycle",
		}).Warn("Recycle called with nil storage")
		return
	}

	q.poolMu.Lock()
	q.pool = append(q.pool, storage)
	q.poolMu.Unlock()

	q.recycled.Add(1)
}

// Clear moves every ready frame back to the pool. It is called when
// playback stops so a restart does not serve stale frames.
func (q *FrameQueue[F]) Clear() {
	q.readyMu.Lock()
	drained := q.ready
	q.ready = make([]*FrameStorage, 0, q.maxQueueLength)
	q.readyMu.Unlock()

	if len(drained) == 0 {
		return
	}

	q.poolMu.Lock()
	q.pool = append(q.pool, drained...)
	q.poolMu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function":       "FrameQueue.Clear",
		"frames_dropped": len(drained),
	}).Debug("Cleared ready frames back to pool")
}

// Len returns the number of frames currently ready for consumption.
func (q *FrameQueue[F]) Len() int {
	q.readyMu.Lock()
	defer q.readyMu.Unlock()
	return len(q.ready)
}

// Stats returns a snapshot of the queue's diagnostic counters.
func (q *FrameQueue[F]) Stats() QueueStats {
	return QueueStats{
		Enqueued: q.enqueued.Load(),
		Dropped:  q.dropped.Load(),
		Dequeued: q.dequeued.Load(),
		Recycled: q.recycled.Load(),
	}
}

// getStorageFor obtains a storage able to hold size bytes: pool first
// (growing the popped storage in place when too small), then a fresh
// allocation, unless the ready queue is already at capacity in which case
// nil is returned and the caller drops the frame.
func (q *FrameQueue[F]) getStorageFor(size int) *FrameStorage {
	q.poolMu.Lock()
	if n := len(q.pool); n > 0 {
		storage := q.pool[n-1]
		q.pool = q.pool[:n-1]
		q.poolMu.Unlock()
		storage.resize(size)
		return storage
	}
	q.poolMu.Unlock()

	q.readyMu.Lock()
	atCapacity := len(q.ready) >= q.maxQueueLength
	q.readyMu.Unlock()
	if atCapacity {
		return nil
	}

	storage := &FrameStorage{}
	storage.resize(size)
	return storage
}
