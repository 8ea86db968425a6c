package audio

import "errors"

// Sentinel errors for audio package operations.
// These errors enable reliable error classification using errors.Is().

var (
	// ErrUnsupportedBitDepth indicates a PCM bit depth this layer cannot
	// convert. Only 16-bit signed (and 8-bit unsigned, widened at the
	// demux boundary) input is supported.
	ErrUnsupportedBitDepth = errors.New("unsupported PCM bit depth")

	// ErrInvalidFormat indicates a sample rate or channel count outside
	// the supported range (mono or stereo, positive sample rate).
	ErrInvalidFormat = errors.New("invalid audio format")

	// ErrSinkClosed indicates a write to an already closed WAV sink.
	ErrSinkClosed = errors.New("wav sink is closed")
)
