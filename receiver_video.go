package mediabridge

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/mediabridge/video"
)

// VideoReceiver is the consumer-facing facade over a bounded frame
// pool-queue, specialized at construction to one frame layout.
//
// The producer thread calls PushFrame once per decoded frame; the
// consumer thread calls PullFrame once per render tick and Recycle once
// it has finished with a delivered frame. PullFrame is gated to the
// configured maximum framerate so a fast render loop does not drain
// frames faster than the source produces them.
type VideoReceiver[F video.RawFrame] struct {
	id    uuid.UUID
	queue *video.FrameQueue[F]
	log   *logrus.Entry

	// Pull gate state, touched only by the consumer thread.
	minInterval time.Duration
	lastPull    time.Time
}

// NewVideoReceiver creates a video receiver from cfg. A zero
// MaxQueueLength falls back to the default; a zero MaxFramerate disables
// the pull gate.
func NewVideoReceiver[F video.RawFrame](cfg Config) *VideoReceiver[F] {
	if cfg.MaxQueueLength <= 0 {
		cfg.MaxQueueLength = DefaultMaxQueueLength
	}

	var minInterval time.Duration
	if cfg.MaxFramerate > 0 {
		minInterval = time.Duration(float64(time.Second) / cfg.MaxFramerate)
	}

	id := uuid.New()
	log := logrus.WithFields(logrus.Fields{
		"component": "video_receiver",
		"receiver":  id,
	})
	log.WithFields(logrus.Fields{
		"max_queue_length": cfg.MaxQueueLength,
		"max_framerate":    cfg.MaxFramerate,
	}).Info("Creating video receiver")

	return &VideoReceiver[F]{
		id:          id,
		queue:       video.NewFrameQueue[F](cfg.MaxQueueLength),
		log:         log,
		minInterval: minInterval,
	}
}

// ID returns the receiver's identity used in log fields.
func (r *VideoReceiver[F]) ID() uuid.UUID {
	return r.id
}

// PushFrame enqueues a decoded frame from the producer thread. It returns
// false when the frame was dropped because the queue is at capacity;
// dropping is the only backpressure signal, the call never blocks.
func (r *VideoReceiver[F]) PushFrame(frame F) bool {
	return r.queue.Enqueue(frame)
}

// PullFrame returns the oldest ready frame, or false when no frame is
// ready or the framerate gate has not elapsed since the last delivery.
// Ownership of the returned storage transfers to the caller until
// Recycle.
func (r *VideoReceiver[F]) PullFrame() (*video.FrameStorage, bool) {
	if r.minInterval > 0 {
		now := time.Now()
		if now.Sub(r.lastPull) < r.minInterval {
			return nil, false
		}
		storage, ok := r.queue.TryDequeue()
		if ok {
			r.lastPull = now
		}
		return storage, ok
	}
	return r.queue.TryDequeue()
}

// Recycle hands a consumed frame storage back to the pool. Must be called
// exactly once per delivered frame.
func (r *VideoReceiver[F]) Recycle(storage *video.FrameStorage) {
	r.queue.Recycle(storage)
}

// Clear drops all queued frames back to the pool, so a stopped stream
// does not serve stale frames on restart.
func (r *VideoReceiver[F]) Clear() {
	r.log.Debug("Clearing video receiver queue")
	r.queue.Clear()
}

// Stats returns the queue's diagnostic counters.
func (r *VideoReceiver[F]) Stats() video.QueueStats {
	return r.queue.Stats()
}
