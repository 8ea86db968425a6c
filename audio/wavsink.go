package audio

import (
	"fmt"
	"math"
	"os"
	"sync"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/sirupsen/logrus"
)

// WavSink mirrors consumed audio into a WAV file, a debug aid for
// inspecting exactly what the real-time consumer was served (including
// pad samples). The file is finalized on Close.
type WavSink struct {
	mu         sync.Mutex
	file       *os.File
	encoder    *wav.Encoder
	sampleRate int
	channels   int
	closed     bool
}

// NewWavSink creates a 16-bit WAV file at path for the given format.
func NewWavSink(path string, sampleRate, channels int) (*WavSink, error) {
	if err := ValidateFormat(sampleRate, channels); err != nil {
		return nil, err
	}

	f, err := os.Create(path)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "NewWavSink",
			"path":     path,
			"error":    err.Error(),
		}).Error("Failed to create WAV dump file")
		return nil, fmt.Errorf("create wav sink: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"function":    "NewWavSink",
		"path":        path,
		"sample_rate": sampleRate,
		"channels":    channels,
	}).Info("Created WAV dump sink")

	return &WavSink{
		file:       f,
		encoder:    wav.NewEncoder(f, sampleRate, 16, channels, 1),
		sampleRate: sampleRate,
		channels:   channels,
	}, nil
}

// Write appends interleaved float32 samples in [-1, 1] to the file.
func (w *WavSink) Write(samples []float32) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrSinkClosed
	}

	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			SampleRate:  w.sampleRate,
			NumChannels: w.channels,
		},
		Data:           make([]int, len(samples)),
		SourceBitDepth: 16,
	}
	for i, s := range samples {
		buf.Data[i] = int(s * float32(math.MaxInt16))
	}

	if err := w.encoder.Write(buf); err != nil {
		return fmt.Errorf("write wav samples: %w", err)
	}
	return nil
}

// Close finalizes the WAV header and closes the file.
func (w *WavSink) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	encErr := w.encoder.Close()
	fileErr := w.file.Close()
	if encErr != nil {
		return fmt.Errorf("finalize wav sink: %w", encErr)
	}
	return fileErr
}
