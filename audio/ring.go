package audio

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// PadBehavior selects how Read fills the tail of the destination when
// fewer samples are available than requested (underrun).
type PadBehavior int

const (
	// PadNone leaves the unfilled tail of the destination untouched.
	PadNone PadBehavior = iota

	// PadZero fills the tail with silence.
	PadZero

	// PadSine fills the tail with a quiet synthesized sine wave, a debug
	// aid that makes underruns audible instead of silent.
	PadSine
)

// String returns the human-readable name of the pad behavior.
func (p PadBehavior) String() string {
	switch p {
	case PadNone:
		return "none"
	case PadZero:
		return "zero"
	case PadSine:
		return "sine"
	default:
		return "unknown"
	}
}

// Sine padding parameters. The phase accumulator wraps at an integer
// multiple of 2*pi*1e8 so the generated tone stays continuous across
// consecutive underruns without the accumulator overflowing.
const (
	sinePadFrequency = 2 * 222 * math.Pi
	sinePadAmplitude = 0.15
	sinePhaseModulo  = 628318530
)

// FormatChangedFunc is invoked (outside the buffer lock) when an appended
// block's sample rate or channel count differs from the buffer's current
// configuration, so the consumer can reconfigure downstream processing
// such as resampling.
type FormatChangedFunc func(sampleRate, channels int)

// Block is one producer delivery: interleaved float32 samples in [-1, 1]
// plus the format they were produced in.
type Block struct {
	Samples    []float32
	SampleRate int
	Channels   int
}

// RingBuffer is a fixed-capacity circular buffer of interleaved float32
// samples with a read cursor, a write cursor, and a full flag.
//
// Append (producer side) and Read (consumer side) are mutually exclusive
// via a single mutex; both critical sections are bounded memory copies so
// the real-time consumer's lock hold time stays short. The buffer is
// allocated lazily on first Append, sized to sampleRate*channels samples
// (about one second of audio), and reallocated only when the producer's
// format changes, which also resets both cursors and fires the
// format-changed callback.
type RingBuffer struct {
	mu         sync.Mutex
	data       []float32
	readPos    int
	writePos   int
	full       bool
	sampleRate int
	channels   int
	closed     bool

	onFormatChanged FormatChangedFunc

	sinePhase int

	underruns atomic.Uint64
	overflows atomic.Uint64
}

// NewRingBuffer creates an empty ring buffer. No sample memory is
// allocated until the first Append establishes the producer's format.
func NewRingBuffer() *RingBuffer {
	logrus.WithFields(logrus.Fields{
		"function": "NewRingBuffer",
	}).Info("Creating new audio ring buffer")
	return &RingBuffer{}
}

// SetFormatChangedCallback registers the callback fired when an Append
// reconfigures the buffer. It must be set before the producer starts.
func (rb *RingBuffer) SetFormatChangedCallback(cb FormatChangedFunc) {
	rb.mu.Lock()
	rb.onFormatChanged = cb
	rb.mu.Unlock()
}

// Append copies block into the ring, overwriting the oldest unread
// samples when the buffer overflows. A block whose sample rate or channel
// count differs from the current configuration reallocates the buffer,
// resets both cursors, and fires the format-changed callback.
//
// Append never blocks beyond the shared mutex and is safe to call from
// the producer thread concurrently with Read.
func (rb *RingBuffer) Append(block Block) {
	if len(block.Samples) == 0 {
		return
	}

	var notify FormatChangedFunc

	rb.mu.Lock()
	if rb.closed {
		rb.mu.Unlock()
		return
	}

	if rb.data == nil || block.SampleRate != rb.sampleRate || block.Channels != rb.channels {
		capacity := block.SampleRate * block.Channels
		logrus.WithFields(logrus.Fields{
			"function":    "RingBuffer.Append",
			"sample_rate": block.SampleRate,
			"channels":    block.Channels,
			"capacity":    capacity,
		}).Info("Audio format changed, reallocating ring buffer")

		rb.data = make([]float32, capacity)
		rb.sampleRate = block.SampleRate
		rb.channels = block.Channels
		rb.readPos = 0
		rb.writePos = 0
		rb.full = false
		notify = rb.onFormatChanged
	}

	rb.appendLocked(block.Samples)
	rb.mu.Unlock()

	if notify != nil {
		notify(block.SampleRate, block.Channels)
	}
}

// appendLocked performs the wrapped copy and overflow bookkeeping.
// Caller holds rb.mu and rb.data is non-nil.
func (rb *RingBuffer) appendLocked(samples []float32) {
	capacity := len(rb.data)
	n := len(samples)

	if n >= capacity {
		// The block alone fills the whole ring; keep only its newest
		// capacity samples.
		copy(rb.data, samples[n-capacity:])
		rb.readPos = 0
		rb.writePos = 0
		rb.full = true
		rb.overflows.Add(1)
		return
	}

	free := capacity - rb.availableLocked()
	wasFull := rb.full
	wrapped := rb.writePos+n >= capacity

	first := capacity - rb.writePos
	if first > n {
		first = n
	}
	copy(rb.data[rb.writePos:], samples[:first])
	copy(rb.data, samples[first:])
	rb.writePos = (rb.writePos + n) % capacity

	if wasFull || wrapped || n >= free {
		// The write wrapped or caught up to the read cursor: the oldest
		// data is considered overwritten and the valid region now spans
		// the whole ring ending at writePos.
		rb.full = true
		rb.readPos = rb.writePos
		if n > free {
			rb.overflows.Add(1)
		}
	}
}

// Read copies up to len(dst) available samples into dst and returns the
// number of real samples copied. When fewer samples are available than
// requested the tail of dst is filled according to pad. When no buffer
// exists yet (nothing was ever appended, or the buffer was closed) the
// whole destination is padded and 0 is returned.
//
// sampleRate and channels describe the format the caller expects; a
// mismatch with the producer format is the caller's cue to route through
// a Resampler, and is only logged here.
func (rb *RingBuffer) Read(sampleRate, channels int, dst []float32, pad PadBehavior) int {
	if len(dst) == 0 {
		return 0
	}

	rb.mu.Lock()

	if rb.data == nil {
		rb.padLocked(dst, pad, sampleRate, channels)
		rb.mu.Unlock()
		return 0
	}

	if sampleRate != rb.sampleRate || channels != rb.channels {
		logrus.WithFields(logrus.Fields{
			"function":      "RingBuffer.Read",
			"want_rate":     sampleRate,
			"want_channels": channels,
			"have_rate":     rb.sampleRate,
			"have_channels": rb.channels,
		}).Trace("Reader format differs from producer format")
	}

	capacity := len(rb.data)
	avail := rb.availableLocked()
	n := len(dst)
	if n > avail {
		n = avail
	}

	first := capacity - rb.readPos
	if first > n {
		first = n
	}
	copy(dst[:first], rb.data[rb.readPos:])
	copy(dst[first:n], rb.data)
	if n > 0 {
		rb.readPos = (rb.readPos + n) % capacity
		rb.full = false
	}

	if n < len(dst) {
		rb.underruns.Add(1)
		rb.padLocked(dst[n:], pad, sampleRate, channels)
	}

	rb.mu.Unlock()
	return n
}

// padLocked fills dst per the requested behavior. Caller holds rb.mu.
func (rb *RingBuffer) padLocked(dst []float32, pad PadBehavior, sampleRate, channels int) {
	switch pad {
	case PadZero:
		for i := range dst {
			dst[i] = 0
		}
	case PadSine:
		denom := float64(sampleRate * channels)
		for i := range dst {
			dst[i] = float32(sinePadAmplitude * math.Sin(sinePadFrequency*float64(rb.sinePhase+i)/denom))
		}
		rb.sinePhase = (rb.sinePhase + len(dst)) % sinePhaseModulo
	case PadNone:
		// Leave the tail untouched.
	}
}

// availableLocked returns the number of unread samples. Caller holds rb.mu.
func (rb *RingBuffer) availableLocked() int {
	if rb.data == nil {
		return 0
	}
	if rb.full {
		return len(rb.data)
	}
	return (rb.writePos - rb.readPos + len(rb.data)) % len(rb.data)
}

// Available returns the number of unread samples currently buffered.
func (rb *RingBuffer) Available() int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.availableLocked()
}

// Format returns the producer format the buffer is currently configured
// for; both values are zero before the first Append.
func (rb *RingBuffer) Format() (sampleRate, channels int) {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.sampleRate, rb.channels
}

// Capacity returns the buffer's sample capacity, zero before first Append.
func (rb *RingBuffer) Capacity() int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return len(rb.data)
}

// Underruns returns the number of Reads that found fewer samples than
// requested.
func (rb *RingBuffer) Underruns() uint64 {
	return rb.underruns.Load()
}

// Overflows returns the number of Appends that overwrote unread samples.
func (rb *RingBuffer) Overflows() uint64 {
	return rb.overflows.Load()
}

// Close releases the sample array. The release happens under the same
// mutex that guards Append and Read, so an in-flight real-time callback
// never observes freed memory; subsequent Reads behave as if nothing was
// ever appended and subsequent Appends are ignored.
func (rb *RingBuffer) Close() {
	rb.mu.Lock()
	rb.data = nil
	rb.readPos = 0
	rb.writePos = 0
	rb.full = false
	rb.sampleRate = 0
	rb.channels = 0
	rb.closed = true
	rb.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function": "RingBuffer.Close",
	}).Info("Audio ring buffer closed")
}
