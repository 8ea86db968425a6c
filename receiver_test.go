package mediabridge

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/mediabridge/audio"
	"github.com/opd-ai/mediabridge/video"
)

func argbFrame(width, height int, fill byte) video.ARGBFrame {
	data := make([]byte, width*4*height)
	for i := range data {
		data[i] = fill
	}
	return video.ARGBFrame{Width: width, Height: height, Data: data, Stride: width * 4}
}

func TestVideoReceiverPushPullRecycle(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxFramerate = 0 // no gate in unit tests
	vr := NewVideoReceiver[video.ARGBFrame](cfg)

	require.True(t, vr.PushFrame(argbFrame(2, 2, 42)))

	storage, ok := vr.PullFrame()
	require.True(t, ok)
	assert.Equal(t, byte(42), storage.Data()[0])
	vr.Recycle(storage)

	_, ok = vr.PullFrame()
	assert.False(t, ok, "queue drained")

	stats := vr.Stats()
	assert.Equal(t, uint64(1), stats.Enqueued)
	assert.Equal(t, uint64(1), stats.Dequeued)
	assert.Equal(t, uint64(1), stats.Recycled)
}

func TestVideoReceiverFramerateGate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxFramerate = 1 // one frame per second
	vr := NewVideoReceiver[video.ARGBFrame](cfg)

	require.True(t, vr.PushFrame(argbFrame(2, 2, 1)))
	require.True(t, vr.PushFrame(argbFrame(2, 2, 2)))

	first, ok := vr.PullFrame()
	require.True(t, ok, "first pull passes the gate")
	vr.Recycle(first)

	_, ok = vr.PullFrame()
	assert.False(t, ok, "second pull within the interval is gated")
}

func TestVideoReceiverClear(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxFramerate = 0
	vr := NewVideoReceiver[video.ARGBFrame](cfg)

	vr.PushFrame(argbFrame(2, 2, 1))
	vr.PushFrame(argbFrame(2, 2, 2))
	vr.Clear()

	_, ok := vr.PullFrame()
	assert.False(t, ok, "no stale frames after Clear")
}

func TestVideoReceiverDefaultsApplied(t *testing.T) {
	vr := NewVideoReceiver[video.I420AFrame](Config{})
	assert.NotEqual(t, [16]byte{}, [16]byte(vr.ID()))

	// Default queue length bounds enqueues.
	frame := video.I420AFrame{
		Width: 2, Height: 2,
		Y: make([]byte, 4), U: make([]byte, 1), V: make([]byte, 1),
		YStride: 2, UStride: 1, VStride: 1,
	}
	accepted := 0
	for i := 0; i < DefaultMaxQueueLength+2; i++ {
		if vr.PushFrame(frame) {
			accepted++
		}
	}
	assert.Equal(t, DefaultMaxQueueLength, accepted)
}

func TestAudioReceiverRoundTrip(t *testing.T) {
	ar, err := NewAudioReceiver(DefaultConfig())
	require.NoError(t, err)
	defer ar.Close()

	require.NoError(t, ar.PushPCM16([]int16{16384, -16384, 0}, 8000, 1))

	dst := make([]float32, 3)
	n := ar.ReadBlock(dst, 8000, 1, audio.PadZero)

	assert.Equal(t, 3, n)
	assert.Equal(t, []float32{0.5, -0.5, 0}, dst)
}

func TestAudioReceiverUnderrunStats(t *testing.T) {
	ar, err := NewAudioReceiver(DefaultConfig())
	require.NoError(t, err)
	defer ar.Close()

	require.NoError(t, ar.PushPCM16([]int16{100}, 8000, 1))

	dst := make([]float32, 8)
	n := ar.ReadBlock(dst, 8000, 1, audio.PadZero)
	assert.Equal(t, 1, n)

	stats := ar.Stats()
	assert.Equal(t, uint64(1), stats.Underruns)
	assert.Equal(t, uint64(0), stats.Overflows)
}

func TestAudioReceiverFormatChangedCallback(t *testing.T) {
	ar, err := NewAudioReceiver(DefaultConfig())
	require.NoError(t, err)
	defer ar.Close()

	type format struct{ rate, channels int }
	var seen []format
	ar.OnFormatChanged(func(sampleRate, channels int) {
		seen = append(seen, format{sampleRate, channels})
	})

	require.NoError(t, ar.PushPCM16([]int16{1}, 8000, 1))
	require.NoError(t, ar.PushPCM16([]int16{2, 3}, 16000, 2))
	require.NoError(t, ar.PushPCM16([]int16{4, 5}, 16000, 2))

	assert.Equal(t, []format{{8000, 1}, {16000, 2}}, seen,
		"callback fires on first append and on each format change only")
}

func TestAudioReceiverChannelAdaptation(t *testing.T) {
	ar, err := NewAudioReceiver(DefaultConfig())
	require.NoError(t, err)
	defer ar.Close()

	// Producer is mono, consumer wants stereo at the same rate.
	require.NoError(t, ar.PushPCM16([]int16{16384, -16384}, 8000, 1))

	dst := make([]float32, 4)
	n := ar.ReadBlock(dst, 8000, 2, audio.PadZero)

	assert.Equal(t, 4, n)
	assert.Equal(t, []float32{0.5, 0.5, -0.5, -0.5}, dst)
}

func TestAudioReceiverReadBeforeAnyAppend(t *testing.T) {
	ar, err := NewAudioReceiver(DefaultConfig())
	require.NoError(t, err)
	defer ar.Close()

	dst := []float32{9, 9, 9}
	n := ar.ReadBlock(dst, 48000, 2, audio.PadZero)

	assert.Equal(t, 0, n)
	assert.Equal(t, []float32{0, 0, 0}, dst)
}

func TestAudioReceiverRejectsInvalidPushFormat(t *testing.T) {
	ar, err := NewAudioReceiver(DefaultConfig())
	require.NoError(t, err)
	defer ar.Close()

	assert.ErrorIs(t, ar.PushPCM16([]int16{1}, 0, 1), audio.ErrInvalidFormat)
	assert.ErrorIs(t, ar.PushPCM16([]int16{1}, 8000, 7), audio.ErrInvalidFormat)
}

func TestAudioReceiverWavDump(t *testing.T) {
	path := filepath.Join(t.TempDir(), "consumed.wav")
	cfg := DefaultConfig()
	cfg.DumpPath = path

	ar, err := NewAudioReceiver(cfg)
	require.NoError(t, err)

	require.NoError(t, ar.PushPCM16([]int16{1000, 2000, 3000}, 8000, 1))

	dst := make([]float32, 3)
	ar.ReadBlock(dst, 8000, 1, audio.PadZero)
	require.NoError(t, ar.Close())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(44), "dump holds a header plus samples")
}

func TestAudioReceiverCloseStopsServing(t *testing.T) {
	ar, err := NewAudioReceiver(DefaultConfig())
	require.NoError(t, err)

	require.NoError(t, ar.PushPCM16([]int16{1, 2, 3}, 8000, 1))
	require.NoError(t, ar.Close())

	dst := []float32{9, 9}
	n := ar.ReadBlock(dst, 8000, 1, audio.PadZero)
	assert.Equal(t, 0, n)
	assert.Equal(t, []float32{0, 0}, dst)
}

func TestVideoReceiverGateInterval(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxFramerate = 1000 // 1ms interval
	vr := NewVideoReceiver[video.ARGBFrame](cfg)

	require.True(t, vr.PushFrame(argbFrame(2, 2, 1)))
	require.True(t, vr.PushFrame(argbFrame(2, 2, 2)))

	first, ok := vr.PullFrame()
	require.True(t, ok)
	vr.Recycle(first)

	time.Sleep(5 * time.Millisecond)

	second, ok := vr.PullFrame()
	require.True(t, ok, "gate reopens after the interval")
	assert.Equal(t, byte(2), second.Data()[0])
	vr.Recycle(second)
}
