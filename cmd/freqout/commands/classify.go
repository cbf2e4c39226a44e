package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	freqout "github.com/tphakala/go-audio-freqout"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [rate...]",
	Short: "Look up sample rates in the rate catalog",
	Long: `Classify each rate as nominal, overcrank (x1.001) or undercrank (x0.999)
and name its nominal base. With no arguments the whole catalog is listed.`,
	RunE: runClassify,
}

func runClassify(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	if len(args) == 0 {
		for _, nominal := range freqout.NominalRates() {
			row, _ := freqout.Variants(nominal)
			if row.Overcrank == 0 {
				fmt.Fprintf(w, "%6d Hz\n", row.Nominal)
				continue
			}
			fmt.Fprintf(w, "%6d Hz  over %6d Hz  under %6d Hz\n", row.Nominal, row.Overcrank, row.Undercrank)
		}
		return nil
	}

	for _, arg := range args {
		rate, err := strconv.ParseUint(arg, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid rate %q: %w", arg, err)
		}
		class, err := freqout.Classify(uint32(rate))
		if err != nil {
			return err
		}
		fmt.Fprintln(w, class)
	}
	return nil
}
