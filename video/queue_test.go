package video

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// argbFrame builds a packed test frame whose every byte equals fill.
func argbFrame(width, height int, fill byte) ARGBFrame {
	data := make([]byte, width*4*height)
	for i := range data {
		data[i] = fill
	}
	return ARGBFrame{Width: width, Height: height, Data: data, Stride: width * 4}
}

func TestFrameQueueFIFO(t *testing.T) {
	q := NewFrameQueue[ARGBFrame](5)

	for i := 0; i < 5; i++ {
		require.True(t, q.Enqueue(argbFrame(2, 2, byte(i))))
	}

	for i := 0; i < 5; i++ {
		storage, ok := q.TryDequeue()
		require.True(t, ok, "frame %d should be ready", i)
		assert.Equal(t, 2, storage.Width())
		assert.Equal(t, 2, storage.Height())
		for _, b := range storage.Data() {
			assert.Equal(t, byte(i), b, "frame %d content", i)
		}
		q.Recycle(storage)
	}

	_, ok := q.TryDequeue()
	assert.False(t, ok, "queue should be empty")
}

func TestFrameQueueBoundedDrop(t *testing.T) {
	const maxLen = 3
	q := NewFrameQueue[ARGBFrame](maxLen)

	results := make([]bool, 0, maxLen+2)
	for i := 0; i < maxLen+2; i++ {
		results = append(results, q.Enqueue(argbFrame(2, 2, byte(i))))
	}

	assert.Equal(t, []bool{true, true, true, false, false}, results)
	assert.Equal(t, maxLen, q.Len())

	stats := q.Stats()
	assert.Equal(t, uint64(maxLen), stats.Enqueued)
	assert.Equal(t, uint64(2), stats.Dropped)

	// The queued frames are the oldest ones: drop policy is drop-newest.
	for i := 0; i < maxLen; i++ {
		storage, ok := q.TryDequeue()
		require.True(t, ok)
		assert.Equal(t, byte(i), storage.Data()[0])
		q.Recycle(storage)
	}
}

func TestFrameQueuePoolReuse(t *testing.T) {
	q := NewFrameQueue[ARGBFrame](3)

	require.True(t, q.Enqueue(argbFrame(4, 4, 1)))
	first, ok := q.TryDequeue()
	require.True(t, ok)
	q.Recycle(first)

	// Same-size frame must reuse the recycled storage, not allocate.
	require.True(t, q.Enqueue(argbFrame(4, 4, 2)))
	second, ok := q.TryDequeue()
	require.True(t, ok)
	assert.Same(t, first, second, "recycled storage should be reused")
	q.Recycle(second)

	// A larger frame grows the pooled storage in place.
	require.True(t, q.Enqueue(argbFrame(8, 8, 3)))
	third, ok := q.TryDequeue()
	require.True(t, ok)
	assert.Same(t, first, third)
	assert.Equal(t, 8*4*8, len(third.Data()))
}

func TestFrameQueueClearReturnsFramesToPool(t *testing.T) {
	q := NewFrameQueue[ARGBFrame](3)

	require.True(t, q.Enqueue(argbFrame(2, 2, 1)))
	require.True(t, q.Enqueue(argbFrame(2, 2, 2)))
	require.Equal(t, 2, q.Len())

	q.Clear()
	assert.Equal(t, 0, q.Len())
	_, ok := q.TryDequeue()
	assert.False(t, ok)

	// Cleared storages are pooled: filling back up to capacity plus the
	// two pooled storages performs no drop.
	for i := 0; i < 3; i++ {
		assert.True(t, q.Enqueue(argbFrame(2, 2, byte(i))))
	}
}

func TestFrameQueueDequeueEmpty(t *testing.T) {
	q := NewFrameQueue[I420AFrame](2)
	storage, ok := q.TryDequeue()
	assert.False(t, ok)
	assert.Nil(t, storage)
}

func TestFrameQueueClampsInvalidLength(t *testing.T) {
	q := NewFrameQueue[ARGBFrame](0)
	assert.True(t, q.Enqueue(argbFrame(2, 2, 1)))
	assert.False(t, q.Enqueue(argbFrame(2, 2, 2)), "length clamped to 1")
}

func TestFrameQueuePlanarFrames(t *testing.T) {
	q := NewFrameQueue[I420AFrame](2)

	frame := I420AFrame{
		Width:   4,
		Height:  2,
		Y:       plane(4, 2, 4, 0),
		U:       plane(2, 1, 2, 100),
		V:       plane(2, 1, 2, 200),
		YStride: 4,
		UStride: 2,
		VStride: 2,
	}
	require.True(t, q.Enqueue(frame))

	storage, ok := q.TryDequeue()
	require.True(t, ok)
	assert.Equal(t, frame.StorageSize(), len(storage.Data()))
	assert.Equal(t, byte(100), storage.Data()[8], "U plane follows Y")
	q.Recycle(storage)
}

func TestFrameQueueConcurrentProducerConsumer(t *testing.T) {
	const total = 1000
	q := NewFrameQueue[ARGBFrame](4)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < total; i++ {
			q.Enqueue(argbFrame(2, 2, byte(i)))
		}
	}()

	consumed := 0
	go func() {
		defer wg.Done()
		for consumed < total/2 {
			storage, ok := q.TryDequeue()
			if !ok {
				continue
			}
			q.Recycle(storage)
			consumed++
		}
	}()

	wg.Wait()
	q.Clear()

	stats := q.Stats()
	assert.Equal(t, uint64(total), stats.Enqueued+stats.Dropped)
	assert.Equal(t, stats.Dequeued, stats.Recycled)
}

func BenchmarkFrameQueueEnqueueDequeue(b *testing.B) {
	q := NewFrameQueue[ARGBFrame](4)
	frame := argbFrame(320, 240, 7)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		q.Enqueue(frame)
		if storage, ok := q.TryDequeue(); ok {
			q.Recycle(storage)
		}
	}
}
