package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/wav"
	"github.com/spf13/cobra"

	freqout "github.com/tphakala/go-audio-freqout"
	"github.com/tphakala/go-audio-freqout/internal/convert"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <input.wav>",
	Short: "Report zero crossings, frequency and levels of a WAV file",
	Long: `Decode a PCM WAV file and analyze each channel over its whole length.

The partition means split samples below the low threshold and above the
high threshold; set them with threshold_low/threshold_high in --config.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	rate, chans, err := decodeChannels(f)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	for ch, samples := range chans {
		r := freqout.AnalyzeSamples(samples, float64(rate), cfg.ThresholdLow, cfg.ThresholdHigh)
		printReport(w, ch, r)
	}
	return nil
}

// decodeChannels reads a whole PCM WAV file and returns its sample rate and
// one normalized slice per channel.
func decodeChannels(r io.ReadSeeker) (int, [][]float64, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return 0, nil, errors.New("not a valid WAV file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read PCM data: %w", err)
	}

	conv, err := convert.New[float64](int(dec.BitDepth))
	if err != nil {
		return 0, nil, err
	}
	numChans := int(dec.NumChans)
	if numChans == 0 {
		return 0, nil, errors.New("WAV file declares no channels")
	}
	frames := len(buf.Data) / numChans

	raw := make([]int32, frames)
	chans := make([][]float64, numChans)
	for ch := range chans {
		for i := range raw {
			raw[i] = int32(buf.Data[i*numChans+ch])
		}
		chans[ch] = make([]float64, frames)
		conv.ToFloat(chans[ch], raw)
	}
	return int(dec.SampleRate), chans, nil
}

func printReport(w io.Writer, ch int, r freqout.SignalReport) {
	fmt.Fprintf(w, "Channel %d (%d samples)\n", ch, r.Samples)
	fmt.Fprintf(w, "  Zero crossings: %d\n", r.ZeroCrossings)
	fmt.Fprintf(w, "  Frequency:      %.3f Hz\n", r.FrequencyHz)
	fmt.Fprintf(w, "  Polarity:       %s\n", r.Polarity)
	fmt.Fprintf(w, "  Mean:           %+.6f\n", r.Mean)
	fmt.Fprintf(w, "  RMS:            %.6f (legacy %.3g)\n", r.TrueRMS, r.RMS)
	fmt.Fprintf(w, "  Peak:           %.6f\n", r.Peak)
	if r.Partition.Low.Valid() {
		fmt.Fprintf(w, "  Low mean:       %+.6f (%d samples)\n", r.Partition.Low.Value, r.Partition.Low.Count)
	}
	if r.Partition.High.Valid() {
		fmt.Fprintf(w, "  High mean:      %+.6f (%d samples)\n", r.Partition.High.Value, r.Partition.High.Count)
	}
}
