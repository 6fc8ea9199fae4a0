package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mfranzen/wavecap/internal/backend"
	"github.com/mfranzen/wavecap/internal/capture"
	"github.com/mfranzen/wavecap/internal/config"
	"github.com/mfranzen/wavecap/internal/logging"
)

var (
	cfg *config.Config
	log zerolog.Logger

	flagBackend  string
	flagOutput   string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "wavecap",
	Short: "Capture microphone audio and save it as a WAV file",
	Long: `wavecap records audio from an input device, shows live input
levels, and saves the recording as a 16-bit PCM WAV file.

Run without a subcommand for an interactive shell with start/stop
control, or use 'wavecap record' for a one-shot recording.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// Flags win over the config file
		if flagBackend != "" {
			cfg.Backend = flagBackend
		}
		if flagOutput != "" {
			cfg.Output = flagOutput
		}
		if flagLogLevel != "" {
			cfg.LogLevel = flagLogLevel
		}

		log = logging.NewWithLevel(cfg.LogLevel)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShell()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagBackend, "backend", "", "audio backend (miniaudio, portaudio)")
	rootCmd.PersistentFlags().StringVarP(&flagOutput, "output", "o", "", "output WAV file path")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level (debug, info, warn, error)")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newCapture wires a backend and a capture handle from the effective
// config.
func newCapture(cb capture.Callback) (*capture.Capture, error) {
	b, err := backend.New(cfg.Backend)
	if err != nil {
		return nil, err
	}
	rec, err := capture.New(b, cb, log)
	if err != nil {
		b.Close()
		return nil, err
	}
	if cfg.Output != "" {
		rec.SetOutputPath(cfg.Output)
	}
	return rec, nil
}
