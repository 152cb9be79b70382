// Package udev watches backlight brightness changes via netlink/udev events.
package udev

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/pilebones/go-udev/netlink"
	"github.com/rs/zerolog/log"
)

const (
	// netlinkBufferSize is the receive buffer size for the netlink socket.
	// Dragging a brightness slider emits a change uevent per step.
	netlinkBufferSize = 1024 * 1024 // 1 MB

	// BacklightSubsystem is the kernel subsystem of panel backlight devices.
	BacklightSubsystem = "backlight"

	// DefaultSysfsRoot is where device attributes are read from.
	DefaultSysfsRoot = "/sys"
)

// Event is a backlight level change.
type Event struct {
	Device        string
	Level         int
	MaxBrightness int
}

// EventHandler is called when a backlight level changes.
type EventHandler func(event Event)

// RecoveryHandler is called when the monitor recovers from an error condition
// (e.g., netlink buffer overflow) and the current level must be re-read.
type RecoveryHandler func()

// Monitor watches backlight change events.
type Monitor struct {
	conn            *netlink.UEventConn
	handler         EventHandler
	recoveryHandler RecoveryHandler
	sysfsRoot       string
	quit            chan struct{}
	stopped         bool
	mu              sync.Mutex
}

// NewMonitor creates a new backlight monitor with the given event handler.
func NewMonitor(handler EventHandler) *Monitor {
	return &Monitor{
		handler:   handler,
		sysfsRoot: DefaultSysfsRoot,
	}
}

// SetRecoveryHandler sets the handler called when the monitor recovers from errors.
func (m *Monitor) SetRecoveryHandler(handler RecoveryHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recoveryHandler = handler
}

// Start begins monitoring for backlight events.
// This method is non-blocking; events are processed in a background goroutine.
func (m *Monitor) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conn != nil {
		return fmt.Errorf("monitor already started")
	}

	m.conn = &netlink.UEventConn{}
	if err := m.conn.Connect(netlink.UdevEvent); err != nil {
		m.conn = nil
		return fmt.Errorf("failed to connect to netlink: %w", err)
	}

	if err := setSocketBufferSize(m.conn.Fd, netlinkBufferSize); err != nil {
		log.Warn().Err(err).Int("size", netlinkBufferSize).Msg("Failed to set netlink buffer size")
	} else {
		log.Debug().Int("size", netlinkBufferSize).Msg("Netlink socket buffer size configured")
	}

	queue := make(chan netlink.UEvent)
	errs := make(chan error)

	m.quit = m.conn.Monitor(queue, errs, m.createMatcher())
	m.stopped = false

	go m.processEvents(queue, errs)

	log.Info().Msg("Backlight monitor started")
	return nil
}

// Stop stops the monitor and releases resources.
func (m *Monitor) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conn == nil || m.stopped {
		return nil
	}

	m.stopped = true

	select {
	case m.quit <- struct{}{}:
	default:
	}

	if err := m.conn.Close(); err != nil {
		return fmt.Errorf("failed to close netlink connection: %w", err)
	}

	m.conn = nil
	log.Info().Msg("Backlight monitor stopped")
	return nil
}

// createMatcher matches change events on the backlight subsystem.
func (m *Monitor) createMatcher() *netlink.RuleDefinitions {
	rules := &netlink.RuleDefinitions{}

	changeAction := "change"
	rules.AddRule(netlink.RuleDefinition{
		Action: &changeAction,
		Env: map[string]string{
			"SUBSYSTEM": "^" + BacklightSubsystem + "$",
		},
	})

	return rules
}

// processEvents handles incoming udev events.
func (m *Monitor) processEvents(queue chan netlink.UEvent, errs chan error) {
	for {
		select {
		case event, ok := <-queue:
			if !ok {
				return
			}
			m.handleEvent(event)
		case err, ok := <-errs:
			if !ok {
				return
			}
			m.mu.Lock()
			stopped := m.stopped
			recoveryHandler := m.recoveryHandler
			m.mu.Unlock()
			if stopped {
				return
			}

			// Dropped events may have carried the last level, so re-read it.
			if isBufferOverflowError(err) {
				log.Warn().Msg("Netlink buffer overflow detected, triggering recovery")
				if recoveryHandler != nil {
					go recoveryHandler()
				}
				continue
			}

			log.Error().Err(err).Msg("udev monitor error")
		}
	}
}

// handleEvent reads the new level of the changed backlight device.
func (m *Monitor) handleEvent(uevent netlink.UEvent) {
	if uevent.Action != netlink.CHANGE {
		return
	}

	devpath := uevent.Env["DEVPATH"]
	if devpath == "" {
		devpath = uevent.KObj
	}
	if devpath == "" {
		return
	}

	event, err := readBacklight(filepath.Join(m.sysfsRoot, devpath))
	if err != nil {
		log.Warn().Err(err).Str("devpath", devpath).Msg("Failed to read backlight level")
		return
	}

	log.Debug().
		Str("device", event.Device).
		Int("level", event.Level).
		Int("max", event.MaxBrightness).
		Msg("Backlight changed")

	if m.handler != nil {
		m.handler(event)
	}
}

// ReadBacklights returns the current level of every backlight device under sysfsRoot.
func ReadBacklights(sysfsRoot string) ([]Event, error) {
	dirs, err := filepath.Glob(filepath.Join(sysfsRoot, "class", BacklightSubsystem, "*"))
	if err != nil {
		return nil, fmt.Errorf("failed to list backlight devices: %w", err)
	}

	events := make([]Event, 0, len(dirs))
	for _, dir := range dirs {
		event, err := readBacklight(dir)
		if err != nil {
			log.Warn().Err(err).Str("device", dir).Msg("Skipping unreadable backlight")
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

func readBacklight(dir string) (Event, error) {
	level, err := readIntAttr(dir, "brightness")
	if err != nil {
		return Event{}, err
	}
	maxBrightness, err := readIntAttr(dir, "max_brightness")
	if err != nil {
		return Event{}, err
	}
	return Event{
		Device:        filepath.Base(dir),
		Level:         level,
		MaxBrightness: maxBrightness,
	}, nil
}

func readIntAttr(dir, name string) (int, error) {
	raw, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", name, err)
	}
	value, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return value, nil
}

// setSocketBufferSize sets the receive buffer size for a socket.
// It first tries SO_RCVBUFFORCE (requires CAP_NET_ADMIN), then falls back to SO_RCVBUF.
func setSocketBufferSize(fd int, size int) error {
	err := syscall.SetsockoptInt(fd, syscall.SOL_SOCKET, syscall.SO_RCVBUFFORCE, size)
	if err == nil {
		return nil
	}
	return syscall.SetsockoptInt(fd, syscall.SOL_SOCKET, syscall.SO_RCVBUF, size)
}

// isBufferOverflowError checks if the error is a netlink buffer overflow (ENOBUFS).
func isBufferOverflowError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, syscall.ENOBUFS) {
		return true
	}
	// The udev library does not always wrap the errno.
	return strings.Contains(strings.ToLower(err.Error()), "no buffer space available")
}
