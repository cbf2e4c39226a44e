package freqout

// Nominal sample rates of the catalog.
const (
	// RateCD is the CD quality sample rate (Red Book standard).
	RateCD = 44100

	// RateDAT is the DAT/DVD and video production sample rate.
	RateDAT = 48000

	// RateHiRes88 is the high-resolution 2x CD sample rate.
	RateHiRes88 = 88200

	// RateHiRes96 is the high-resolution 2x DAT sample rate.
	RateHiRes96 = 96000

	// RateHiRes176 is the very high resolution 4x CD sample rate.
	RateHiRes176 = 176400

	// RateHiRes192 is the very high resolution 4x DAT sample rate.
	RateHiRes192 = 192000

	// RateHiRes352 is the 8x CD (DXD) sample rate.
	RateHiRes352 = 352800

	// RateHiRes384 is the 8x DAT sample rate.
	RateHiRes384 = 384000
)

// Configuration defaults
const (
	DefaultSampleRate  = RateDAT
	DefaultBitDepth    = 32
	DefaultChannels    = 1
	DefaultBlockSize   = 128
	DefaultCutoffHz    = 8000.0
	DefaultFilterOrder = 1
	DefaultYieldEvery  = 100 // blocks between liveness yields
)

// Limits
const (
	bitsPerByte = 8
	maxBitDepth = 32
	maxChannels = 256
)
