package inscreen

import (
	"github.com/rs/zerolog/log"
	"github.com/shini4i/fod-inscreen-daemon/internal/brightness"
	"github.com/shini4i/fod-inscreen-daemon/internal/profile"
	"github.com/shini4i/fod-inscreen-daemon/internal/vendorsvc"
)

// Service is the inbound surface the platform calls into. Every method returns a definite
// result and degrades to a no-op on hardware or delivery failures.
type Service struct {
	profile     profile.Profile
	policy      *Policy
	callbacks   *Registry
	compensator *brightness.Compensator
}

// NewService wires a policy, callback registry and compensator for p.
func NewService(p profile.Profile, fingerprint vendorsvc.FingerprintService, display vendorsvc.DisplayService) *Service {
	callbacks := NewRegistry()
	return &Service{
		profile:     p,
		policy:      NewPolicy(p.Coupling, fingerprint, display, callbacks),
		callbacks:   callbacks,
		compensator: p.Compensator(),
	}
}

// Policy returns the underlying state machine.
func (s *Service) Policy() *Policy {
	return s.policy
}

// StartEnroll begins an enrollment session.
func (s *Service) StartEnroll() {
	s.policy.StartEnroll()
}

// FinishEnroll ends the enrollment session.
func (s *Service) FinishEnroll() {
	s.policy.FinishEnroll()
}

// Press is called when a finger lands on the overlay.
func (s *Service) Press() {
	s.policy.Press()
}

// Release is called when the finger leaves the overlay.
func (s *Service) Release() {
	s.policy.Release()
}

// ShowOverlay is called when the fingerprint icon becomes visible.
func (s *Service) ShowOverlay() {
	s.policy.ShowOverlay()
}

// HideOverlay is called when the fingerprint icon is hidden.
func (s *Service) HideOverlay() {
	s.policy.HideOverlay()
}

// HandleAcquired forwards finger contact events; see Policy.HandleAcquired.
func (s *Service) HandleAcquired(info, vendorCode int32) bool {
	return s.policy.HandleAcquired(info, vendorCode)
}

// HandleError consumes suppressed vendor errors; see Policy.HandleError.
func (s *Service) HandleError(code, vendorCode int32) bool {
	return s.policy.HandleError(code, vendorCode)
}

// SetLongPressEnabled toggles long-press detection.
func (s *Service) SetLongPressEnabled(enabled bool) {
	s.policy.SetLongPressEnabled(enabled)
}

// CompensationAmount returns the dim amount for a platform brightness (0-255).
func (s *Service) CompensationAmount(brightness int32) int32 {
	amount := int32(s.compensator.Amount(int(brightness)))
	log.Debug().Int32("brightness", brightness).Int32("amount", amount).Msg("Computed dim amount")
	return amount
}

// ShouldBoostBrightness reports whether the platform should raise brightness while imaging.
func (s *Service) ShouldBoostBrightness() bool {
	return s.profile.BoostBrightness
}

// OverlayPosition returns the top-left corner of the overlay in panel pixels.
func (s *Service) OverlayPosition() (x, y int32) {
	return s.profile.PositionX, s.profile.PositionY
}

// OverlaySize returns the overlay diameter in panel pixels.
func (s *Service) OverlaySize() int32 {
	return s.profile.Size
}

// RegisterCallback replaces the registered sink. A nil sink clears it.
func (s *Service) RegisterCallback(sink Sink) {
	s.callbacks.Register(sink)
	log.Info().Bool("registered", sink != nil).Msg("Callback updated")
}
