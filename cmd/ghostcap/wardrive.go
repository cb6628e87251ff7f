package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/irctrakz/ghostcap/pkg/core"
	"github.com/irctrakz/ghostcap/pkg/logging"
	"github.com/irctrakz/ghostcap/pkg/wardrive"
	"github.com/spf13/cobra"
)

var wardriveSession string

var wardriveCmd = &cobra.Command{
	Use:   "wardrive [FILE]",
	Short: "Record GPS-tagged access point sightings as CSV",
	Long: `Read sightings as JSON lines, one {"fix":{...},"ap":{...}} object per line,
from FILE or standard input, and record the plausible ones as CSV rows`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := io.Reader(os.Stdin)
		if len(args) == 1 && args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open sightings: %w", err)
			}
			defer f.Close()
			in = f
		}
		return runWardrive(in)
	},
}

func init() {
	wardriveCmd.Flags().StringVarP(&wardriveSession, "session", "s", "", "Session base name (defaults to wardriving.baseName)")
	rootCmd.AddCommand(wardriveCmd)
}

// sighting is one input line.
type sighting struct {
	Fix *wardrive.Fix        `json:"fix"`
	AP  wardrive.Observation `json:"ap"`
}

func runWardrive(in io.Reader) error {
	ctx, cancel := signalContext()
	defer cancel()

	tr, err := openTransport(cfg.Serial)
	if err != nil {
		return err
	}
	defer tr.Close()

	enc := wardrive.NewCSVEncoder(cfg.Wardriving, tr)
	if err := enc.OpenSession(wardriveSession); err != nil {
		logging.Warnf("CSV file unavailable, continuing on serial: %v", err)
	}
	logging.Infof("Wardriving session writing to %s", enc.Destination())

	if d := cfg.MetricsInterval(); d > 0 {
		go runMetricsReporter(ctx, d, cfg.Metrics.Format, []metricsSource{
			{Name: "csv", Metrics: enc.Metrics},
		})
	}

	l := wardrive.NewLogger(enc, samplers(cfg.Wardriving))
	lines := make(chan []byte)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			line := append([]byte(nil), sc.Bytes()...)
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
	}()

	log := logging.Tag(logging.TagGPS)
	var lineNo int
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case line, ok := <-lines:
			if !ok {
				break loop
			}
			lineNo++
			if len(line) == 0 {
				continue
			}
			var s sighting
			if err := json.Unmarshal(line, &s); err != nil {
				log.WithError(err).WithField("line", lineNo).Warn("Malformed sighting")
				continue
			}
			err := l.Log(s.Fix, s.AP)
			switch {
			case err == nil:
			case errors.Is(err, core.ErrInvalidArgument):
				log.WithField("line", lineNo).Debug("No GPS fix")
			case errors.Is(err, core.ErrFormattingOverflow):
				log.WithError(err).WithField("line", lineNo).Warn("Sighting dropped")
			default:
				log.WithError(err).WithField("line", lineNo).Error("Failed to record sighting")
			}
		}
	}

	var readErr error
	select {
	case readErr = <-scanErr:
	default:
	}
	if err := enc.CloseSession(); err != nil {
		return err
	}
	return readErr
}

func samplers(wc core.WardrivingConfig) wardrive.LoggerConfig {
	var lc wardrive.LoggerConfig
	if wc.WarnEvery > 0 {
		seed := wc.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		lc.Warn = wardrive.NewRandom(wc.WarnEvery, seed)
	}
	if wc.InfoEvery > 0 {
		lc.Info = wardrive.NewEveryN(wc.InfoEvery)
	}
	return lc
}
