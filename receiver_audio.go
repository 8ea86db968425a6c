package mediabridge

import (
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/mediabridge/audio"
)

// AudioStats is a snapshot of the audio receiver's diagnostic counters.
type AudioStats struct {
	Underruns uint64
	Overflows uint64
}

// AudioReceiver is the consumer-facing facade over the real-time audio
// ring buffer.
//
// The producer thread calls PushBlock (or PushPCM16) once per delivered
// sample block; the real-time consumer calls ReadBlock once per render
// quantum. When the consumer's requested format differs from the
// producer's, the read path routes through a Resampler that the consumer
// rebuilds whenever it observes a producer format change.
type AudioReceiver struct {
	id   uuid.UUID
	ring *audio.RingBuffer
	log  *logrus.Entry

	// Consumer-side read state, touched only by the consumer thread.
	resampler *audio.Resampler
	scratch   []float32

	// The WAV dump sink is swapped by the producer-side format callback
	// and written by the consumer, hence its own lock.
	sinkMu   sync.Mutex
	sink     *audio.WavSink
	dumpPath string

	onFormatChanged audio.FormatChangedFunc
}

// readScratchSize bounds the producer-format staging buffer used by the
// resampling read path. Sized like the resampler's scratch: larger than
// any realistic render quantum.
const readScratchSize = 1 << 14

// NewAudioReceiver creates an audio receiver from cfg. When cfg.DumpPath
// is set, a WAV sink mirroring every consumed block is opened on the
// first producer format change (the format is unknown before that).
func NewAudioReceiver(cfg Config) (*AudioReceiver, error) {
	id := uuid.New()
	log := logrus.WithFields(logrus.Fields{
		"component": "audio_receiver",
		"receiver":  id,
	})
	log.WithFields(logrus.Fields{
		"pad_behavior": cfg.PadBehavior.String(),
		"dump_path":    cfg.DumpPath,
	}).Info("Creating audio receiver")

	r := &AudioReceiver{
		id:       id,
		ring:     audio.NewRingBuffer(),
		log:      log,
		scratch:  make([]float32, readScratchSize),
		dumpPath: cfg.DumpPath,
	}

	r.ring.SetFormatChangedCallback(r.handleFormatChanged)

	return r, nil
}

// handleFormatChanged runs on the producer thread after the ring
// reallocates: it reopens the WAV dump sink for the new format and
// forwards the notification. Consumer-side read state is deliberately
// untouched here; the consumer detects the change itself via Format.
func (r *AudioReceiver) handleFormatChanged(sampleRate, channels int) {
	r.log.WithFields(logrus.Fields{
		"sample_rate": sampleRate,
		"channels":    channels,
	}).Info("Producer audio format changed")

	if r.dumpPath != "" {
		sink, err := audio.NewWavSink(r.dumpPath, sampleRate, channels)
		if err != nil {
			r.log.WithField("error", err.Error()).Error("Failed to open WAV dump sink")
			sink = nil
		}
		r.sinkMu.Lock()
		if r.sink != nil {
			r.sink.Close()
		}
		r.sink = sink
		r.sinkMu.Unlock()
	}

	if r.onFormatChanged != nil {
		r.onFormatChanged(sampleRate, channels)
	}
}

// ID returns the receiver's identity used in log fields.
func (r *AudioReceiver) ID() uuid.UUID {
	return r.id
}

// OnFormatChanged registers a callback fired from the producer thread
// whenever the producer's sample rate or channel count changes. Must be
// set before the producer starts pushing.
func (r *AudioReceiver) OnFormatChanged(cb audio.FormatChangedFunc) {
	r.onFormatChanged = cb
}

// PushBlock appends a sample block from the producer thread. The call
// never blocks beyond the ring's bounded copy; overflow silently
// overwrites the oldest unread samples.
func (r *AudioReceiver) PushBlock(block audio.Block) {
	r.ring.Append(block)
}

// PushPCM16 converts 16-bit PCM to float samples and appends them. It is
// the producer-facing convenience for sources that deliver raw PCM
// already validated by the demux boundary.
func (r *AudioReceiver) PushPCM16(pcm []int16, sampleRate, channels int) error {
	if err := audio.ValidateFormat(sampleRate, channels); err != nil {
		return err
	}
	r.ring.Append(audio.BlockFromPCM16(pcm, sampleRate, channels))
	return nil
}

// ReadBlock fills dst with the next samples in the consumer's format and
// returns the number of real (non-pad) samples delivered. When the
// consumer format matches the producer format (or nothing was ever
// appended) the ring is read directly; otherwise the read routes through
// the resampler. Underruns are padded per pad.
func (r *AudioReceiver) ReadBlock(dst []float32, sampleRate, channels int, pad audio.PadBehavior) int {
	prodRate, prodChannels := r.ring.Format()

	if prodRate == 0 || (prodRate == sampleRate && prodChannels == channels) {
		n := r.ring.Read(sampleRate, channels, dst, pad)
		r.mirror(dst)
		return n
	}

	if r.resampler == nil || !r.resampler.Matches(prodRate, prodChannels) {
		r.resampler = audio.NewResampler(prodRate, prodChannels, sampleRate, channels)
	}

	want := r.resampler.InputLen(len(dst))
	if want > len(r.scratch) {
		want = len(r.scratch)
	}
	got := r.ring.Read(prodRate, prodChannels, r.scratch[:want], audio.PadNone)

	written := r.resampler.Process(r.scratch[:got], dst)
	if written < len(dst) && pad != audio.PadNone {
		// The ring pads its own underruns; the resampling path must pad
		// in the consumer format instead. The sine debug tone stays
		// producer-format only, where the ring's phase accumulator keeps
		// it continuous, so this tail is always silence.
		for i := written; i < len(dst); i++ {
			dst[i] = 0
		}
	}
	r.mirror(dst)
	return written
}

// mirror forwards a consumed block to the WAV dump sink when enabled.
func (r *AudioReceiver) mirror(samples []float32) {
	r.sinkMu.Lock()
	sink := r.sink
	r.sinkMu.Unlock()
	if sink == nil {
		return
	}
	if err := sink.Write(samples); err != nil {
		r.log.WithField("error", err.Error()).Warn("WAV dump write failed")
	}
}

// Stats returns the ring buffer's diagnostic counters.
func (r *AudioReceiver) Stats() AudioStats {
	return AudioStats{
		Underruns: r.ring.Underruns(),
		Overflows: r.ring.Overflows(),
	}
}

// Close releases the ring buffer under its append/read lock and
// finalizes the WAV dump sink. After Close, reads serve pure padding and
// appends are ignored.
func (r *AudioReceiver) Close() error {
	r.log.Info("Closing audio receiver")
	r.ring.Close()

	r.sinkMu.Lock()
	sink := r.sink
	r.sink = nil
	r.sinkMu.Unlock()
	if sink != nil {
		return sink.Close()
	}
	return nil
}
