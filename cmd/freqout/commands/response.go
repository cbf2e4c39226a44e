package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tphakala/go-audio-freqout/internal/filter"
)

var (
	responsePoints int
	impulseLength  int
)

var responseCmd = &cobra.Command{
	Use:   "response",
	Short: "Print the low-pass filter magnitude response",
	Long: `Print the magnitude of the configured low-pass filter at evenly spaced
frequencies, both from its transfer function and measured with an FFT of
its truncated impulse response.`,
	Args: cobra.NoArgs,
	RunE: runResponse,
}

func init() {
	responseCmd.Flags().IntVar(&responsePoints, "points", 16, "number of frequencies to print")
	responseCmd.Flags().IntVar(&impulseLength, "impulse", 4096, "impulse length for the measured response")
}

func runResponse(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if responsePoints < 1 || impulseLength < 2 {
		return fmt.Errorf("--points must be positive and --impulse at least 2")
	}

	rate := float64(cfg.SampleRate)
	lp, err := filter.NewForCutoff[float64](rate, cfg.CutoffHz, filter.Order(cfg.FilterOrder))
	if err != nil {
		return err
	}

	analytic := lp.Response(responsePoints)
	measured := lp.MeasureResponse(impulseLength)

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Order %d low-pass, cutoff %.1f Hz at %d Hz (alpha %.4f)\n",
		lp.Order(), cfg.CutoffHz, cfg.SampleRate, lp.Alpha())
	if i := analytic.CutoffIndex(); i >= 0 {
		fmt.Fprintf(w, "-3 dB reached by %.1f Hz\n", analytic.Frequencies[i]*rate)
	}
	fmt.Fprintf(w, "%12s %12s %12s\n", "freq (Hz)", "H (dB)", "FFT (dB)")
	for k, freq := range analytic.Frequencies {
		// Nearest FFT bin; bins are spaced 1/impulseLength apart.
		bin := int(freq*float64(impulseLength) + 0.5)
		bin = min(bin, len(measured.Magnitude)-1)
		fmt.Fprintf(w, "%12.1f %12.3f %12.3f\n", freq*rate,
			filter.MagnitudeDB(analytic.Magnitude[k]),
			filter.MagnitudeDB(measured.Magnitude[bin]))
	}
	return nil
}
