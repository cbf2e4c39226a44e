package freqout

import (
	"fmt"
	"slices"
)

// RateKind tells whether a sample rate is nominal or detuned from one.
type RateKind int

const (
	// KindNominal is an undetuned standard rate.
	KindNominal RateKind = iota

	// KindOvercrank is a nominal rate raised by 0.1% for pulldown.
	KindOvercrank

	// KindUndercrank is a nominal rate lowered by 0.1% for pulldown.
	KindUndercrank
)

// String implements fmt.Stringer.
func (k RateKind) String() string {
	switch k {
	case KindNominal:
		return "nominal"
	case KindOvercrank:
		return "overcrank"
	case KindUndercrank:
		return "undercrank"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// SampleRateClass is the catalog classification of a sample rate.
type SampleRateClass struct {
	Kind RateKind
	Base uint32 // nominal rate the class is relative to
	Rate uint32 // classified rate
}

// String implements fmt.Stringer.
func (c SampleRateClass) String() string {
	if c.Kind == KindNominal {
		return fmt.Sprintf("%d Hz (nominal)", c.Rate)
	}
	return fmt.Sprintf("%d Hz (%s of %d Hz)", c.Rate, c.Kind, c.Base)
}

// Ratio returns Rate / Base.
func (c SampleRateClass) Ratio() float64 {
	if c.Base == 0 {
		return 0
	}
	return float64(c.Rate) / float64(c.Base)
}

// RateVariants is one row of the catalog. A zero Overcrank or Undercrank
// means the nominal rate has no such variant.
type RateVariants struct {
	Nominal    uint32
	Overcrank  uint32
	Undercrank uint32
}

// catalog lists the supported rates. Only the 48 kHz family has pulldown
// variants.
var catalog = [...]RateVariants{
	{Nominal: RateCD},
	{Nominal: RateDAT, Overcrank: 48048, Undercrank: 47952},
	{Nominal: RateHiRes88},
	{Nominal: RateHiRes96, Overcrank: 96096, Undercrank: 95904},
	{Nominal: RateHiRes176},
	{Nominal: RateHiRes192, Overcrank: 192192, Undercrank: 191808},
	{Nominal: RateHiRes352},
	{Nominal: RateHiRes384, Overcrank: 384384, Undercrank: 383616},
}

// Classify looks rate up in the catalog.
func Classify(rate uint32) (SampleRateClass, error) {
	if rate != 0 {
		for _, row := range catalog {
			switch rate {
			case row.Nominal:
				return SampleRateClass{Kind: KindNominal, Base: row.Nominal, Rate: rate}, nil
			case row.Overcrank:
				return SampleRateClass{Kind: KindOvercrank, Base: row.Nominal, Rate: rate}, nil
			case row.Undercrank:
				return SampleRateClass{Kind: KindUndercrank, Base: row.Nominal, Rate: rate}, nil
			}
		}
	}
	return SampleRateClass{}, fmt.Errorf("%w: %d Hz is not in the catalog", ErrInvalidSampleRate, rate)
}

// Variants returns the catalog row of a nominal rate.
func Variants(nominal uint32) (RateVariants, bool) {
	for _, row := range catalog {
		if row.Nominal == nominal {
			return row, true
		}
	}
	return RateVariants{}, false
}

// NominalRates returns the nominal rates of the catalog in ascending order.
func NominalRates() []uint32 {
	rates := make([]uint32, 0, len(catalog))
	for _, row := range catalog {
		rates = append(rates, row.Nominal)
	}
	slices.Sort(rates)
	return rates
}
