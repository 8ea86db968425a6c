// Package demux implements the boundary collaborator that turns incoming
// encoded or raw audio payloads into validated sample blocks for the ring
// buffer. Bit-depth validation happens here, before anything reaches the
// real-time core: the ring buffer itself assumes already-converted float
// samples.
package demux

import (
	"fmt"

	"github.com/pion/opus"
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/mediabridge/audio"
)

// Opus frames are at most 120ms; 5760 frames at 48kHz stereo is the
// largest possible decode output (int16 bytes).
const opusDecodeBufferSize = 5760 * 2 * 2

// AudioDemuxer decodes Opus packets and validates raw PCM payloads,
// producing audio.Block values ready for RingBuffer.Append.
//
// Not safe for concurrent use; one demuxer serves one receive path, called
// from whichever thread the media callback arrives on.
type AudioDemuxer struct {
	decoder   opus.Decoder
	decodeBuf []byte
}

// NewAudioDemuxer creates a demuxer with a fresh Opus decoder.
func NewAudioDemuxer() *AudioDemuxer {
	logrus.WithFields(logrus.Fields{
		"function": "NewAudioDemuxer",
	}).Info("Creating audio demuxer")

	return &AudioDemuxer{
		decoder:   opus.NewDecoder(),
		decodeBuf: make([]byte, opusDecodeBufferSize),
	}
}

// DemuxOpus decodes one Opus packet into a sample block. The block's
// format follows the packet's bandwidth and channel layout.
func (d *AudioDemuxer) DemuxOpus(packet []byte) (audio.Block, error) {
	if len(packet) == 0 {
		return audio.Block{}, fmt.Errorf("empty opus packet")
	}

	bandwidth, isStereo, err := d.decoder.Decode(packet, d.decodeBuf)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function":    "AudioDemuxer.DemuxOpus",
			"packet_size": len(packet),
			"error":       err.Error(),
		}).Error("Opus decode failed")
		return audio.Block{}, fmt.Errorf("opus decode failed: %w", err)
	}

	channels := 1
	if isStereo {
		channels = 2
	}
	sampleRate := bandwidth.SampleRate()

	// Decoded output is 16-bit little-endian PCM.
	sampleCount := len(d.decodeBuf) / 2
	pcm := make([]int16, sampleCount)
	for i := 0; i < sampleCount; i++ {
		pcm[i] = int16(d.decodeBuf[i*2]) | int16(d.decodeBuf[i*2+1])<<8
	}

	logrus.WithFields(logrus.Fields{
		"function":    "AudioDemuxer.DemuxOpus",
		"packet_size": len(packet),
		"samples":     sampleCount,
		"sample_rate": sampleRate,
		"channels":    channels,
	}).Debug("Demuxed opus packet")

	return audio.BlockFromPCM16(pcm, sampleRate, channels), nil
}

// DemuxPCM validates a raw PCM payload and converts it into a sample
// block. 16-bit signed little-endian is the native input; legacy 8-bit
// unsigned input is widened first. Any other bit depth is rejected here,
// before the block can reach the ring buffer.
func (d *AudioDemuxer) DemuxPCM(data []byte, bitsPerSample, sampleRate, channels int) (audio.Block, error) {
	if err := audio.ValidateBitDepth(bitsPerSample); err != nil {
		logrus.WithFields(logrus.Fields{
			"function":        "AudioDemuxer.DemuxPCM",
			"bits_per_sample": bitsPerSample,
		}).Error("Rejecting unsupported PCM bit depth")
		return audio.Block{}, err
	}
	if err := audio.ValidateFormat(sampleRate, channels); err != nil {
		return audio.Block{}, err
	}

	var pcm []int16
	switch bitsPerSample {
	case audio.BitDepthNative:
		if len(data)%2 != 0 {
			return audio.Block{}, fmt.Errorf("odd byte count %d for 16-bit PCM", len(data))
		}
		pcm = make([]int16, len(data)/2)
		for i := range pcm {
			pcm[i] = int16(data[i*2]) | int16(data[i*2+1])<<8
		}
	case audio.BitDepthLegacy:
		pcm = audio.WidenPCM8(data)
	}

	return audio.BlockFromPCM16(pcm, sampleRate, channels), nil
}
