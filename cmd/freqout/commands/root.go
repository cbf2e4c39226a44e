// Package commands implements the freqout command tree.
package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	freqout "github.com/tphakala/go-audio-freqout"
)

var (
	// Global flags
	cfgFile string
	verbose bool

	// Pipeline overrides
	sampleRate  uint32
	bitDepth    uint16
	channels    uint16
	blockSize   int
	cutoffHz    float64
	filterOrder int
	analyze     bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "freqout",
	Short: "Block-oriented PCM filter and signal analyzer",
	Long: `freqout - fixed-block PCM processing for timecode sync.

Every block read from the input is decoded to floating point, low-pass
filtered per channel, optionally analyzed (zero crossings, levels) and
re-encoded to the same PCM layout.

Examples:
  # Filter a WAV file at 4 kHz with a two-pole filter
  freqout process --cutoff 4000 --order 2 in.wav out.wav

  # Estimate the frequency of a recorded tone
  freqout analyze tone.wav

  # Is 47952 Hz a pull-down rate?
  freqout classify 47952

  # Dry-run the real-time loop for two seconds
  freqout simulate --rate 48048 --duration 2s
`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Command returns the root cobra command for mounting into a parent CLI.
func Command() *cobra.Command {
	return rootCmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initLogging)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "YAML config file")
	pf.BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	pf.Uint32Var(&sampleRate, "rate", freqout.DefaultSampleRate, "sample rate in Hz")
	pf.Uint16Var(&bitDepth, "bits", freqout.DefaultBitDepth, "bits per sample")
	pf.Uint16Var(&channels, "channels", freqout.DefaultChannels, "number of channels")
	pf.IntVar(&blockSize, "block", freqout.DefaultBlockSize, "samples per block, all channels")
	pf.Float64Var(&cutoffHz, "cutoff", freqout.DefaultCutoffHz, "low-pass cutoff in Hz")
	pf.IntVar(&filterOrder, "order", freqout.DefaultFilterOrder, "low-pass order (1 or 2)")
	pf.BoolVar(&analyze, "analyze", false, "collect per-channel signal statistics")

	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(responseCmd)
	rootCmd.AddCommand(simulateCmd)
}

func initLogging() {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))
}

// loadConfig returns the configuration from --config, or the defaults,
// with every flag the user set applied on top.
func loadConfig(cmd *cobra.Command) (*freqout.Config, error) {
	cfg := freqout.DefaultConfig()
	if cfgFile != "" {
		var err error
		if cfg, err = freqout.LoadConfig(cfgFile); err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("rate") {
		cfg.SampleRate = sampleRate
	}
	if flags.Changed("bits") {
		cfg.BitDepth = bitDepth
	}
	if flags.Changed("channels") {
		cfg.Channels = channels
	}
	if flags.Changed("block") {
		cfg.BlockSize = blockSize
	}
	if flags.Changed("cutoff") {
		cfg.CutoffHz = cutoffHz
	}
	if flags.Changed("order") {
		cfg.FilterOrder = filterOrder
	}
	if flags.Changed("analyze") {
		cfg.Analyze = analyze
	}
	return cfg, nil
}
