package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mfranzen/wavecap/internal/backend"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List available input devices",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := backend.New(cfg.Backend)
		if err != nil {
			return err
		}
		defer b.Close()

		devices, err := b.InputDevices()
		if err != nil {
			return fmt.Errorf("enumerate devices: %w", err)
		}
		if len(devices) == 0 {
			fmt.Println("No input devices found")
			return nil
		}

		fmt.Printf("Available audio devices (%s backend):\n", b.Name())
		for i, d := range devices {
			fmt.Printf("[%d] %s\n", i, d.Name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}
