package audio

import (
	"github.com/oov/audio/resampler"
	"github.com/sirupsen/logrus"
)

// Scratch sizing for the resampler's planar buffers. 48kHz stereo at a
// 120ms render quantum is 11520 interleaved samples, so 1<<14 covers any
// realistic read size without reallocation.
const resamplerScratchSize = 1 << 14

const resampleQuality = 10

// Resampler adapts blocks from the producer's sample rate and channel
// count to the consumer's. It is the downstream reaction to the ring
// buffer's format-changed callback: the owning receiver rebuilds it
// whenever the producer format changes.
//
// Not safe for concurrent use; it belongs to the consumer side only.
type Resampler struct {
	inRate      int
	outRate     int
	inChannels  int
	outChannels int

	r *resampler.Resampler

	// Planar scratch reused across calls to keep Process allocation-free.
	mixBuf   []float32
	planeIn  [2][]float32
	planeOut [2][]float32
}

// NewResampler creates a resampler converting from the producer format
// (inRate, inChannels) to the consumer format (outRate, outChannels).
func NewResampler(inRate, inChannels, outRate, outChannels int) *Resampler {
	logrus.WithFields(logrus.Fields{
		"function":     "NewResampler",
		"in_rate":      inRate,
		"in_channels":  inChannels,
		"out_rate":     outRate,
		"out_channels": outChannels,
	}).Info("Creating audio resampler")

	rs := &Resampler{
		inRate:      inRate,
		outRate:     outRate,
		inChannels:  inChannels,
		outChannels: outChannels,
		mixBuf:      make([]float32, resamplerScratchSize),
	}
	if inRate != outRate {
		rs.r = resampler.New(outChannels, inRate, outRate, resampleQuality)
		for c := 0; c < outChannels; c++ {
			rs.planeIn[c] = make([]float32, resamplerScratchSize/2)
			rs.planeOut[c] = make([]float32, resamplerScratchSize/2)
		}
	}
	return rs
}

// Matches reports whether the resampler was built for the given producer
// format; a false result means the owner must rebuild it.
func (rs *Resampler) Matches(inRate, inChannels int) bool {
	return rs.inRate == inRate && rs.inChannels == inChannels
}

// InputLen returns roughly how many producer-format samples are needed to
// produce outLen consumer-format samples.
func (rs *Resampler) InputLen(outLen int) int {
	frames := outLen / rs.outChannels
	inFrames := frames * rs.inRate / rs.outRate
	return inFrames * rs.inChannels
}

// Process converts src (interleaved producer format) into dst (interleaved
// consumer format) and returns the number of samples written to dst.
func (rs *Resampler) Process(src, dst []float32) int {
	// Channel adaptation first, in producer rate.
	switch {
	case rs.inChannels == 2 && rs.outChannels == 1:
		src = DownmixStereo(src, rs.mixBuf)
	case rs.inChannels == 1 && rs.outChannels == 2:
		src = UpmixMono(src, rs.mixBuf)
	}

	if rs.r == nil {
		return copy(dst, src)
	}

	if rs.outChannels == 1 {
		_, written := rs.r.ProcessFloat32(0, src, dst)
		return written
	}

	// Stereo path: deinterleave, resample each channel, reinterleave.
	frames := len(src) / 2
	if frames > len(rs.planeIn[0]) {
		frames = len(rs.planeIn[0])
	}
	for i := 0; i < frames; i++ {
		rs.planeIn[0][i] = src[2*i]
		rs.planeIn[1][i] = src[2*i+1]
	}

	outFrames := len(dst) / 2
	if outFrames > len(rs.planeOut[0]) {
		outFrames = len(rs.planeOut[0])
	}
	_, written := rs.r.ProcessFloat32(0, rs.planeIn[0][:frames], rs.planeOut[0][:outFrames])
	rs.r.ProcessFloat32(1, rs.planeIn[1][:frames], rs.planeOut[1][:outFrames])

	for i := 0; i < written; i++ {
		dst[2*i] = rs.planeOut[0][i]
		dst[2*i+1] = rs.planeOut[1][i]
	}
	return 2 * written
}
