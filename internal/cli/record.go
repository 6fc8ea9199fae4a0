package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mfranzen/wavecap/internal/wavenc"
)

var (
	flagDevice   int
	flagDuration time.Duration
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record from an input device, then export to WAV",
	Long: `Record starts capturing immediately and stops on Ctrl-C or after
--duration, whichever comes first, then writes the recording to the
output path.`,
	RunE: runRecord,
}

func init() {
	recordCmd.Flags().IntVarP(&flagDevice, "device", "d", -1, "input device index (see 'wavecap devices'), -1 for default")
	recordCmd.Flags().DurationVar(&flagDuration, "duration", 0, "stop automatically after this long (0 = until Ctrl-C)")
	rootCmd.AddCommand(recordCmd)
}

func runRecord(cmd *cobra.Command, args []string) error {
	meter := &levelMeter{log: log}
	rec, err := newCapture(meter.callback)
	if err != nil {
		return err
	}
	defer rec.Close()

	device := flagDevice
	if device < 0 {
		device = cfg.Audio.DeviceIndex
	}
	if err := rec.StartCapture(device); err != nil {
		return err
	}

	fmt.Printf("Recording from %q (%d Hz, %d ch)... press Ctrl-C to stop\n",
		rec.CurrentDeviceName(), rec.SampleRate(), rec.ChannelCount())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	var timeout <-chan time.Time
	if flagDuration > 0 {
		timeout = time.After(flagDuration)
	}

	select {
	case <-sigCh:
		fmt.Println("\nStopping...")
	case <-timeout:
	}

	if err := rec.StopCapture(); err != nil {
		return err
	}
	if err := rec.ExportToWav(); err != nil {
		return err
	}

	fmt.Printf("Saved %s\n", wavenc.NormalizePath(rec.OutputPath()))
	return nil
}
