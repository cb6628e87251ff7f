package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/irctrakz/ghostcap/pkg/config"
	"github.com/irctrakz/ghostcap/pkg/logging"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string

	cfg = config.DefaultConfig()
)

var rootCmd = &cobra.Command{
	Use:           "ghostcap",
	Short:         "802.11 capture and wardriving recorder",
	Long:          "ghostcap - record 802.11 frames as pcap and wardriving sightings as CSV, to rotated files or a framed serial stream",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML or JSON config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the logging level (debug, info, warn, error)")
	rootCmd.SetErr(os.Stderr)
}

func loadConfig() error {
	if configPath != "" {
		if err := config.LoadFromFile(configPath, cfg); err != nil {
			return err
		}
	}
	config.LoadFromEnv(cfg)
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return cfg.ApplyLogging()
}

// signalContext is cancelled on SIGINT or SIGTERM so sessions close cleanly
// and flush what they have buffered.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigc := make(chan os.Signal, 2)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigc)
		select {
		case sig := <-sigc:
			logging.Infof("Received %s, closing sessions", sig)
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
