// Package audio implements the real-time audio ring buffer that bridges a
// push-model producer delivering variable-sized sample blocks to a
// pull-model consumer reading fixed-size blocks at a fixed cadence.
//
// The consumer is expected to be a real-time render callback: Read holds
// the buffer lock only for bounded memory copies and never allocates once
// the buffer exists. Overload policy is overwrite-oldest (the opposite of
// the video queue's drop-newest): a producer that outruns the consumer
// silently overwrites the oldest unread samples. Underruns are padded
// according to a caller-selected PadBehavior.
//
// Samples are interleaved float32 in [-1, 1]; integer PCM is converted at
// the append boundary (see ConvertPCM16 and the demux package).
package audio
