package main

import (
	"fmt"
	"io"
	"os"

	"github.com/irctrakz/ghostcap/pkg/logging"
	"github.com/irctrakz/ghostcap/pkg/serial"
	"github.com/spf13/cobra"
)

var unframeOutput string

var unframeCmd = &cobra.Command{
	Use:   "unframe [FILE]",
	Short: "Recover a pcap or CSV stream from captured serial output",
	Long:  "Strip [BUF/BEGIN]/[BUF/CLOSE] framing from a serial log (FILE or standard input) and write the concatenated payloads",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := io.Reader(os.Stdin)
		if len(args) == 1 && args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open serial log: %w", err)
			}
			defer f.Close()
			in = f
		}
		out := io.Writer(os.Stdout)
		if unframeOutput != "" && unframeOutput != "-" {
			f, err := os.Create(unframeOutput)
			if err != nil {
				return fmt.Errorf("failed to create output: %w", err)
			}
			defer f.Close()
			out = f
		}
		n, err := serial.Unframe(out, in)
		logging.Tag(logging.TagSink).WithField("frames", n).Info("Unframed serial stream")
		return err
	},
}

func init() {
	unframeCmd.Flags().StringVarP(&unframeOutput, "output", "o", "", "Write payloads here instead of standard output")
	rootCmd.AddCommand(unframeCmd)
}
