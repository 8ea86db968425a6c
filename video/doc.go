// Package video implements the bounded frame pool-queue that bridges a
// push-model video producer to a pull-model consumer.
//
// A producer (typically a decoded-frame callback on a network thread) calls
// Enqueue once per frame; a consumer (typically a render loop) calls
// TryDequeue once per tick and Recycle when it has finished with a frame.
// The queue owns a pool of reusable FrameStorage buffers so that sustained
// streaming performs no per-frame heap allocation once the pool is warm.
//
// Overload policy is drop-newest: when the ready queue is at capacity and
// the pool is empty, the incoming frame is discarded and frames already
// queued are never evicted. No operation ever blocks.
package video
