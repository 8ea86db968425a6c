package audio

import "fmt"

// PCM bit depths accepted at the demux boundary. The ring buffer itself
// only ever holds float32 samples.
const (
	BitDepthNative = 16
	BitDepthLegacy = 8
)

// ValidateFormat checks a producer format against the supported range:
// mono or stereo, positive sample rate.
func ValidateFormat(sampleRate, channels int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrInvalidFormat, sampleRate)
	}
	if channels < 1 || channels > 2 {
		return fmt.Errorf("%w: %d channels (must be 1 or 2)", ErrInvalidFormat, channels)
	}
	return nil
}

// ValidateBitDepth rejects any PCM bit depth other than the supported
// 16-bit signed and legacy 8-bit unsigned inputs.
func ValidateBitDepth(bits int) error {
	if bits != BitDepthNative && bits != BitDepthLegacy {
		return fmt.Errorf("%w: %d bits (must be 8 or 16)", ErrUnsupportedBitDepth, bits)
	}
	return nil
}

// ConvertPCM16 linearly rescales 16-bit signed PCM into float32 samples
// in [-1, 1]. This is the fixed-point to float conversion applied at the
// append boundary before samples enter the ring buffer.
func ConvertPCM16(pcm []int16) []float32 {
	samples := make([]float32, len(pcm))
	for i, s := range pcm {
		samples[i] = float32(s) / 32768.0
	}
	return samples
}

// WidenPCM8 widens legacy 8-bit unsigned PCM to 16-bit signed. The scale
// factor maps 0 to -32768 and 255 to 32767 exactly.
func WidenPCM8(data []byte) []int16 {
	pcm := make([]int16, len(data))
	for i, b := range data {
		pcm[i] = int16(int(b)*257 - 32768)
	}
	return pcm
}

// BlockFromPCM16 converts 16-bit PCM into a Block ready for Append.
func BlockFromPCM16(pcm []int16, sampleRate, channels int) Block {
	return Block{
		Samples:    ConvertPCM16(pcm),
		SampleRate: sampleRate,
		Channels:   channels,
	}
}

// DownmixStereo averages left/right pairs of interleaved stereo samples
// into mono. The returned slice aliases dst when it is large enough.
func DownmixStereo(src, dst []float32) []float32 {
	n := len(src) / 2
	if cap(dst) < n {
		dst = make([]float32, n)
	}
	dst = dst[:n]
	for i := 0; i < n; i++ {
		dst[i] = (src[2*i] + src[2*i+1]) / 2
	}
	return dst
}

// UpmixMono duplicates mono samples into interleaved stereo. The returned
// slice aliases dst when it is large enough.
func UpmixMono(src, dst []float32) []float32 {
	n := len(src) * 2
	if cap(dst) < n {
		dst = make([]float32, n)
	}
	dst = dst[:n]
	for i, s := range src {
		dst[2*i] = s
		dst[2*i+1] = s
	}
	return dst
}
