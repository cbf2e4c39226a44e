package commands

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	freqout "github.com/tphakala/go-audio-freqout"
	"github.com/tphakala/go-audio-freqout/internal/device"
)

var (
	simDuration   time.Duration
	simToneHz     float64
	simLevel      float64
	simNoDeadline bool
	simTolerance  time.Duration
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the pipeline in real time against a generated tone",
	Long: `Feed a sine tone into the pipeline at the pace of a hardware sample clock
and discard the output. Deadline misses and transfer stalls stop the run
the way they would on the device. Reads and writes may overrun the block
period by --stall-tolerance to absorb software timer jitter.`,
	Args: cobra.NoArgs,
	RunE: runSimulate,
}

func init() {
	f := simulateCmd.Flags()
	f.DurationVar(&simDuration, "duration", time.Second, "length of the run")
	f.Float64Var(&simToneHz, "tone", 1000, "tone frequency in Hz")
	f.Float64Var(&simLevel, "level", 0.5, "tone level, 0 to 1")
	f.BoolVar(&simNoDeadline, "no-deadline", false, "disable deadline and stall checks")
	f.DurationVar(&simTolerance, "stall-tolerance", time.Millisecond,
		"timer jitter allowed on top of the block period for reads and writes")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cfg.Analyze = true
	cfg.DisableDeadline = cfg.DisableDeadline || simNoDeadline
	if cmd.Flags().Changed("stall-tolerance") || cfg.StallTolerance == 0 {
		cfg.StallTolerance = simTolerance
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	tb, err := cfg.TimeBase()
	if err != nil {
		return err
	}
	period := tb.BlockPeriod(cfg.BlockSize)
	blocks := int(simDuration / period)

	format := device.Format{
		SampleRate: int(cfg.SampleRate),
		BitDepth:   int(cfg.BitDepth),
		Channels:   int(cfg.Channels),
	}
	tone, err := device.NewTone(format, cfg.BlockSize, simToneHz, simLevel, blocks)
	if err != nil {
		return err
	}
	sink := &device.Discard{}
	dev := device.Duplex{BlockReader: device.NewPaced(tone, period), BlockWriter: sink}

	p, err := freqout.New(cfg, dev, freqout.WithLogger(slog.Default()))
	if err != nil {
		return err
	}
	runErr := p.Run()

	stats := p.Stats()
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s, %s\n", p.TimeBase(), p.Class())
	fmt.Fprintf(w, "Blocks: %d of %d written, period %v\n", sink.Blocks, blocks, period)
	fmt.Fprintf(w, "Compute: worst %v, last %v\n", stats.WorstCompute, stats.LastCompute)
	fmt.Fprintf(w, "Yields: %d (%d skipped)\n", stats.Yields, stats.SkippedYields)
	seconds := float64(stats.Blocks) * period.Seconds()
	for ch, s := range stats.Channels {
		var hz float64
		if seconds > 0 {
			hz = float64(s.ZeroCrossings) / 2 / seconds
		}
		fmt.Fprintf(w, "  ch%d: %d zero crossings (~%.1f Hz)\n", ch, s.ZeroCrossings, hz)
	}
	return runErr
}
