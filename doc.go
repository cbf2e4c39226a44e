// Package freqout is the real-time core of an audio pass-through stage for
// film and video timecode work: it reads a PCM stream one fixed-size block
// at a time, tracks polarity, zero crossings and levels, low-pass filters
// every channel and writes the block back out, all within one block period.
//
// # Features
//
//   - Time base and sample rate catalog with overcrank/undercrank (±0.1%
//     pulldown) classification of the 48 kHz family
//   - Saturating fixed-point ↔ float conversion for 8, 16, 24 and 32 bits,
//     SIMD accelerated via github.com/tphakala/simd
//   - First- and second-order bilinear Butterworth low-pass filters with a
//     documented stable range
//   - Per-channel polarity, zero-crossing, mean, RMS and partition analysis
//   - Deadline, stall and liveness handling around a pluggable block device
//   - Zero allocations per block after construction
//
// # Quick Start
//
// Run the loop against any [BlockDevice]:
//
//	cfg := freqout.DefaultConfig()
//	cfg.Channels = 2
//	cfg.Analyze = true
//
//	p, err := freqout.New(cfg, dev, freqout.WithLogger(logger))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := p.Run(); err != nil {
//	    log.Fatal(err) // ErrTransferFault, ErrTransferStall or ErrDeadlineMissed
//	}
//
// Process a WAV file offline:
//
//	stats, err := freqout.ProcessWAV(cfg, in, out)
//
// # Sample Rates
//
// [Classify] accepts the nominal rates 44.1, 48, 88.2, 96, 176.4, 192,
// 352.8 and 384 kHz. The 48 kHz family also accepts its ×1.001 overcrank
// and ×0.999 undercrank variants (48048 and 47952 Hz at 48 kHz); the
// 44.1 kHz family has none.
//
// # Timing
//
// The block period is BlockSize / Channels / SampleRate. A block read or
// write that takes longer than one period plus Config.StallTolerance fails
// with [ErrTransferStall]; processing that takes longer than one period
// fails with [ErrDeadlineMissed]. Every YieldEvery blocks the loop feeds its
// [Liveness] hook with the slack left in the period after the block has been
// processed and written, or skips the feed when there is none.
//
// # RMS
//
// [ChannelStats].RMS and [SignalReport].RMS keep the historical formula
// sqrt(Σx²)/n. [SignalReport].TrueRMS is the conventional sqrt(Σx²/n).
//
// # Thread Safety
//
// A [Pipeline] is driven by a single goroutine. Devices may be shared with
// producer and consumer goroutines when they synchronize internally, as the
// loopback device does.
package freqout
