package cli

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/mfranzen/wavecap/internal/capture"
	"github.com/mfranzen/wavecap/internal/wavenc"
)

// runShell is the interactive front-end: a prompt loop driving one
// capture handle. Pure glue; every invariant lives in the capture
// package.
func runShell() error {
	meter := &levelMeter{log: log}
	rec, err := newCapture(meter.callback)
	if err != nil {
		return err
	}
	defer rec.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nShutting down...")
		rec.StopCapture()
		os.Exit(0)
	}()

	fmt.Println("wavecap interactive shell")
	fmt.Println("Type 'help' for commands or 'quit' to exit")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\n> ")
		if !scanner.Scan() {
			break
		}

		switch cmd := strings.TrimSpace(scanner.Text()); cmd {
		case "start":
			shellStart(rec, scanner)
		case "stop":
			shellStop(rec)
		case "devices":
			shellDevices(rec)
		case "status":
			shellStatus(rec)
		case "help":
			shellHelp()
		case "quit", "exit":
			rec.StopCapture()
			fmt.Println("Goodbye!")
			return nil
		case "":
		default:
			fmt.Printf("Unknown command: %s\n", cmd)
			fmt.Println("Type 'help' for available commands")
		}
	}

	rec.StopCapture()
	return scanner.Err()
}

func shellStart(rec *capture.Capture, scanner *bufio.Scanner) {
	if rec.IsCapturing() {
		fmt.Println("Already capturing. Stop first.")
		return
	}

	devices := rec.ListInputDevices()
	if len(devices) == 0 {
		fmt.Println("No input devices available")
		return
	}

	fmt.Println("Available input devices:")
	for i, name := range devices {
		fmt.Printf("  %d: %s\n", i, name)
	}

	fmt.Print("Enter device number (or press Enter for default): ")
	deviceIndex := -1
	if scanner.Scan() {
		if input := strings.TrimSpace(scanner.Text()); input != "" {
			idx, err := strconv.Atoi(input)
			if err != nil || idx < 0 || idx >= len(devices) {
				fmt.Println("Invalid device number, using default device")
			} else {
				deviceIndex = idx
			}
		}
	}

	fmt.Println("Starting audio capture...")
	if err := rec.StartCapture(deviceIndex); err != nil {
		fmt.Printf("Failed to start audio capture: %v\n", err)
		return
	}

	fmt.Println("Audio capture started. Type 'stop' to stop and save.")
	fmt.Printf("Using device: %s\n", rec.CurrentDeviceName())
}

func shellStop(rec *capture.Capture) {
	if !rec.IsCapturing() {
		fmt.Println("No capture running")
		return
	}

	rec.StopCapture()

	if err := rec.ExportToWav(); err != nil {
		fmt.Printf("Failed to save WAV audio file: %v\n", err)
		return
	}
	fmt.Printf("WAV audio saved to: %s\n", wavenc.NormalizePath(rec.OutputPath()))
}

func shellDevices(rec *capture.Capture) {
	fmt.Println("Available audio devices:")
	for i, name := range rec.ListInputDevices() {
		fmt.Printf("[%d] %s\n", i, name)
	}
}

func shellStatus(rec *capture.Capture) {
	if !rec.IsCapturing() {
		fmt.Println("Status: Not capturing")
		return
	}
	fmt.Println("Status: Capturing audio")
	fmt.Printf("Device: %s\n", rec.CurrentDeviceName())
	fmt.Printf("Sample Rate: %d Hz\n", rec.SampleRate())
	fmt.Printf("Channels: %d\n", rec.ChannelCount())
}

func shellHelp() {
	fmt.Println("\nCommands:")
	fmt.Println("  start    - Start audio capture")
	fmt.Println("  stop     - Stop capture and save to file")
	fmt.Println("  devices  - List available audio devices")
	fmt.Println("  status   - Show current status")
	fmt.Println("  help     - Show this help")
	fmt.Println("  quit     - Exit program")
}
