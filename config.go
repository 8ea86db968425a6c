package mediabridge

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/opd-ai/mediabridge/audio"
)

// Config holds receiver construction settings. The zero value of any
// field falls back to the corresponding default.
type Config struct {
	// MaxQueueLength bounds the number of ready (undelivered) video
	// frames; beyond it, incoming frames are dropped.
	MaxQueueLength int

	// MaxFramerate caps how often PullFrame delivers a frame, in frames
	// per second. Zero disables the gate.
	MaxFramerate float64

	// PadBehavior selects the audio underrun fill policy.
	PadBehavior audio.PadBehavior

	// DumpPath, when non-empty, mirrors every audio block read out of
	// the receiver into a WAV file at this path (debug aid).
	DumpPath string
}

// Defaults applied by DefaultConfig and SetViperDefaults.
const (
	DefaultMaxQueueLength = 3
	DefaultMaxFramerate   = 30.0
)

// DefaultConfig returns the default receiver configuration.
func DefaultConfig() Config {
	return Config{
		MaxQueueLength: DefaultMaxQueueLength,
		MaxFramerate:   DefaultMaxFramerate,
		PadBehavior:    audio.PadZero,
	}
}

// SetViperDefaults registers the mediabridge configuration keys with
// their default values. For use by embedding applications and examples.
func SetViperDefaults() {
	viper.SetDefault("mediabridge.maxqueuelength", DefaultMaxQueueLength)
	viper.SetDefault("mediabridge.maxframerate", DefaultMaxFramerate)
	viper.SetDefault("mediabridge.padbehavior", "zero")
	viper.SetDefault("mediabridge.dumppath", "")
}

// ConfigFromViper builds a Config from the current viper state.
func ConfigFromViper() (Config, error) {
	cfg := Config{
		MaxQueueLength: viper.GetInt("mediabridge.maxqueuelength"),
		MaxFramerate:   viper.GetFloat64("mediabridge.maxframerate"),
		DumpPath:       viper.GetString("mediabridge.dumppath"),
	}

	switch pad := viper.GetString("mediabridge.padbehavior"); pad {
	case "none":
		cfg.PadBehavior = audio.PadNone
	case "zero", "":
		cfg.PadBehavior = audio.PadZero
	case "sine":
		cfg.PadBehavior = audio.PadSine
	default:
		return Config{}, fmt.Errorf("%w: unknown pad behavior %q", ErrInvalidConfig, pad)
	}

	logrus.WithFields(logrus.Fields{
		"function":         "ConfigFromViper",
		"max_queue_length": cfg.MaxQueueLength,
		"max_framerate":    cfg.MaxFramerate,
		"pad_behavior":     cfg.PadBehavior.String(),
		"dump_path":        cfg.DumpPath,
	}).Debug("Loaded mediabridge configuration")

	return cfg, nil
}
