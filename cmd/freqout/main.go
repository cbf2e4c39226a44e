// Command freqout drives the freqout block pipeline from the command line.
//
// Usage:
//
//	freqout [flags] <command> [args]
//
// Commands:
//
//	process   - filter a WAV file through the pipeline
//	analyze   - report zero crossings, frequency and levels of a WAV file
//	classify  - look up sample rates in the rate catalog
//	response  - print the low-pass filter magnitude response
//	simulate  - run the pipeline in real time against a generated tone
//
// Settings are read from a YAML file given with --config; flags override
// values from the file.
package main

import (
	"fmt"
	"os"

	"github.com/tphakala/go-audio-freqout/cmd/freqout/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
