// Package main provides the entry point for the in-display fingerprint overlay daemon.
package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	godbus "github.com/godbus/dbus/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/shini4i/fod-inscreen-daemon/internal/brightness"
	"github.com/shini4i/fod-inscreen-daemon/internal/dbus"
	"github.com/shini4i/fod-inscreen-daemon/internal/hid"
	"github.com/shini4i/fod-inscreen-daemon/internal/inscreen"
	"github.com/shini4i/fod-inscreen-daemon/internal/profile"
	"github.com/shini4i/fod-inscreen-daemon/internal/udev"
	"github.com/shini4i/fod-inscreen-daemon/internal/vendorsvc"
)

var (
	verbose        bool
	profileName    string
	busName        string
	displayBackend string
	hidVendorID    string
	hidProductID   string
	backlightWatch bool
	tableStep      int

	rootCmd = &cobra.Command{
		Use:   "fod-inscreen-daemon",
		Short: "D-Bus daemon driving the in-display fingerprint overlay",
		Long: `fod-inscreen-daemon is a D-Bus service that sits between the platform
fingerprint stack and the vendor sensor and display services.

It dims the panel while the sensor images through the display, forwards
finger contact events to a registered client and converts the current
brightness into a sensor illumination compensation amount.`,
		Run: func(cmd *cobra.Command, args []string) {
			run()
		},
	}

	tableCmd = &cobra.Command{
		Use:   "table",
		Short: "Print the brightness to compensation table for a profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := profile.Lookup(profileName)
			if err != nil {
				return err
			}
			return printTable(cmd.OutOrStdout(), p, tableStep)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&profileName, "profile", "p", "a",
		fmt.Sprintf("Hardware profile (%s)", strings.Join(profile.Names(), ", ")))

	rootCmd.Flags().StringVar(&busName, "bus", "system", "Bus to serve on (session or system)")
	rootCmd.Flags().StringVar(&displayBackend, "display-backend", "dbus", "Display service backend (dbus or hid)")
	rootCmd.Flags().StringVar(&hidVendorID, "hid-vendor-id", "0x2a70", "USB vendor ID of the panel controller (hid backend)")
	rootCmd.Flags().StringVar(&hidProductID, "hid-product-id", "0x9011", "USB product ID of the panel controller (hid backend)")
	rootCmd.Flags().BoolVar(&backlightWatch, "backlight-watch", true, "Emit CompensationChanged when the backlight level changes")

	tableCmd.Flags().IntVar(&tableStep, "step", 16, "Brightness step between rows")
	rootCmd.AddCommand(tableCmd)
}

func setupLogging() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func run() {
	setupLogging()

	p, err := profile.Lookup(profileName)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid profile")
	}

	log.Info().
		Str("profile", p.Name).
		Stringer("coupling", p.Coupling).
		Bool("compensation", p.CompensationEnabled).
		Msg("Starting fod-inscreen-daemon")

	conn, err := dbus.Connect(busName)
	if err != nil {
		log.Fatal().Err(err).Str("bus", busName).Msg("Failed to connect to bus")
	}

	// Vendor services must be resolvable at startup.
	fingerprint, err := vendorsvc.ConnectFingerprint(conn)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to resolve fingerprint service")
	}

	display, closeDisplay, err := openDisplayService(conn, displayBackend, hidVendorID, hidProductID)
	if err != nil {
		log.Fatal().Err(err).Str("backend", displayBackend).Msg("Failed to resolve display service")
	}

	service := inscreen.NewService(p, fingerprint, display)

	server := dbus.NewServer(service)
	if err := server.Start(conn); err != nil {
		log.Fatal().Err(err).Msg("Failed to start D-Bus server")
	}

	var monitor *udev.Monitor
	if backlightWatch && p.CompensationEnabled {
		monitor = udev.NewMonitor(createBacklightHandler(server))
		monitor.SetRecoveryHandler(createRecoveryHandler(server, udev.DefaultSysfsRoot))
		if err := monitor.Start(); err != nil {
			log.Error().Err(err).Msg("Failed to start backlight monitor (compensation signals disabled)")
			monitor = nil
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	log.Info().Msg("Daemon running, press Ctrl+C to stop")
	<-sigChan

	log.Info().Msg("Shutting down...")
	if monitor != nil {
		if err := monitor.Stop(); err != nil {
			log.Error().Err(err).Msg("Failed to stop backlight monitor")
		}
	}
	if err := server.Stop(); err != nil {
		log.Error().Err(err).Msg("Failed to stop D-Bus server")
	}
	if err := closeDisplay(); err != nil {
		log.Error().Err(err).Msg("Failed to close display service")
	}
	if err := conn.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close bus connection")
	}

	log.Info().Msg("Daemon stopped")
}

// openDisplayService resolves the display service for backend and returns a close function.
// The hid backend opens the panel controller identified by the hex USB IDs.
func openDisplayService(conn *godbus.Conn, backend, vendorIDHex, productIDHex string) (vendorsvc.DisplayService, func() error, error) {
	switch backend {
	case "dbus":
		display, err := vendorsvc.ConnectDisplay(conn)
		if err != nil {
			return nil, nil, err
		}
		return display, func() error { return nil }, nil
	case "hid":
		vendorID, err := parseUSBID(vendorIDHex)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid vendor id: %w", err)
		}
		productID, err := parseUSBID(productIDHex)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid product id: %w", err)
		}
		device, err := hid.OpenPanel(vendorID, productID)
		if err != nil {
			return nil, nil, err
		}
		panel := hid.NewPanel(device)
		log.Info().Str("serial", panel.Serial()).Msg("Using HID panel controller for display modes")
		return panel, panel.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown display backend %q (expected dbus or hid)", backend)
	}
}

// parseUSBID parses a 16-bit USB ID written in hex ("0x05ac" or "05ac").
func parseUSBID(s string) (uint16, error) {
	id, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(s), "0x"), 16, 16)
	if err != nil {
		return 0, err
	}
	return uint16(id), nil
}

// compensationEmitter is the part of the D-Bus server the backlight handlers need.
type compensationEmitter interface {
	EmitCompensationChanged(brightness int32)
}

// createBacklightHandler returns an event handler that rescales the backlight level into
// the platform brightness domain and emits the resulting compensation.
func createBacklightHandler(emitter compensationEmitter) udev.EventHandler {
	return func(event udev.Event) {
		level := brightness.Rescale(event.Level, event.MaxBrightness)
		// #nosec G115 -- Rescale returns 0-255
		emitter.EmitCompensationChanged(int32(level))
	}
}

// createRecoveryHandler returns a handler that re-reads all backlight levels after
// the monitor may have dropped events.
func createRecoveryHandler(emitter compensationEmitter, sysfsRoot string) udev.RecoveryHandler {
	handle := createBacklightHandler(emitter)
	return func() {
		events, err := udev.ReadBacklights(sysfsRoot)
		if err != nil {
			log.Error().Err(err).Msg("Recovery read of backlight levels failed")
			return
		}
		for _, event := range events {
			handle(event)
		}
		log.Info().Int("devices", len(events)).Msg("Backlight recovery completed")
	}
}

// printTable writes brightness and compensation columns for p, from 0 to 255 by step.
func printTable(w io.Writer, p profile.Profile, step int) error {
	if step <= 0 {
		return fmt.Errorf("step must be positive, got %d", step)
	}

	compensator := p.Compensator()
	if _, err := fmt.Fprintf(w, "# profile %s (coupling %s, enabled %t)\n", p.Name, p.Coupling, compensator.Enabled()); err != nil {
		return err
	}

	for b := 0; b <= brightness.MaxBrightness; b += step {
		if _, err := fmt.Fprintf(w, "%d\t%d\n", b, compensator.Amount(b)); err != nil {
			return err
		}
	}
	if brightness.MaxBrightness%step != 0 {
		_, err := fmt.Fprintf(w, "%d\t%d\n", brightness.MaxBrightness, compensator.Amount(brightness.MaxBrightness))
		return err
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("Failed to execute command")
	}
}
