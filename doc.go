// Package mediabridge buffers continuous media produced by a push-model
// source on an arbitrary background thread and serves it to a pull-model
// consumer on a scheduling-sensitive thread (a render loop or a real-time
// audio callback).
//
// Two receiver facades make up the public surface. VideoReceiver wraps a
// bounded frame pool-queue that reuses frame storages and drops incoming
// frames under overload; AudioReceiver wraps a fixed-capacity ring buffer
// that overwrites its oldest samples under overload and pads underruns.
//
// # Getting Started
//
// Create receivers from a Config and wire the producer and consumer to
// them:
//
//	cfg := mediabridge.DefaultConfig()
//
//	vr := mediabridge.NewVideoReceiver[video.ARGBFrame](cfg)
//	ar, err := mediabridge.NewAudioReceiver(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ar.Close()
//
//	// Producer thread, once per decoded frame/block:
//	vr.PushFrame(frame)
//	ar.PushBlock(block)
//
//	// Consumer thread, once per render tick / audio quantum:
//	if storage, ok := vr.PullFrame(); ok {
//	    upload(storage.Data(), storage.Width(), storage.Height())
//	    vr.Recycle(storage)
//	}
//	ar.ReadBlock(dst, sampleRate, channels, audio.PadZero)
//
// Neither receiver ever spawns a goroutine or blocks the caller beyond a
// bounded memory copy; format negotiation, track pairing, and transport
// live entirely outside this module.
package mediabridge
