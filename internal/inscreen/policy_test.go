package inscreen_test

import (
	"errors"
	"testing"

	"github.com/shini4i/fod-inscreen-daemon/internal/inscreen"
	inscreenmocks "github.com/shini4i/fod-inscreen-daemon/internal/inscreen/mocks"
	"github.com/shini4i/fod-inscreen-daemon/internal/profile"
	"github.com/shini4i/fod-inscreen-daemon/internal/vendorsvc"
	"github.com/shini4i/fod-inscreen-daemon/internal/vendorsvc/mocks"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

type policyFixture struct {
	policy      *inscreen.Policy
	registry    *inscreen.Registry
	fingerprint *mocks.MockFingerprintService
	display     *mocks.MockDisplayService
	sink        *inscreenmocks.MockSink
}

func newPolicyFixture(t *testing.T, coupling profile.Coupling) *policyFixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &policyFixture{
		registry:    inscreen.NewRegistry(),
		fingerprint: mocks.NewMockFingerprintService(ctrl),
		display:     mocks.NewMockDisplayService(ctrl),
		sink:        inscreenmocks.NewMockSink(ctrl),
	}
	f.policy = inscreen.NewPolicy(coupling, f.fingerprint, f.display, f.registry)
	return f
}

func TestPolicy_InitialState(t *testing.T) {
	f := newPolicyFixture(t, profile.DimWithOverlay)
	assert.Equal(t, inscreen.Idle, f.policy.State())
	assert.False(t, f.policy.OverlayVisible())
}

func TestPolicy_StartEnroll(t *testing.T) {
	f := newPolicyFixture(t, profile.DimWithOverlay)
	gomock.InOrder(
		f.fingerprint.EXPECT().UpdateStatus(vendorsvc.StatusDisableLongPress).Return(nil),
		f.fingerprint.EXPECT().UpdateStatus(vendorsvc.StatusResumeEnroll).Return(nil),
	)

	f.policy.StartEnroll()
	assert.Equal(t, inscreen.Enrolling, f.policy.State())
}

func TestPolicy_FinishEnroll_FromIdle(t *testing.T) {
	f := newPolicyFixture(t, profile.DimWithOverlay)
	f.fingerprint.EXPECT().UpdateStatus(vendorsvc.StatusFinishEnroll).Return(nil).Times(1)

	f.policy.FinishEnroll()
	assert.Equal(t, inscreen.Idle, f.policy.State())
}

func TestPolicy_FacadeFailureDoesNotBlockTransition(t *testing.T) {
	f := newPolicyFixture(t, profile.DimWithEnroll)
	f.fingerprint.EXPECT().UpdateStatus(gomock.Any()).Return(errors.New("service gone")).Times(2)

	f.policy.StartEnroll()
	assert.Equal(t, inscreen.Enrolling, f.policy.State())
}

func TestPolicy_EnrollmentCancel(t *testing.T) {
	f := newPolicyFixture(t, profile.DimWithOverlay)
	gomock.InOrder(
		f.fingerprint.EXPECT().UpdateStatus(vendorsvc.StatusDisableLongPress).Return(nil),
		f.fingerprint.EXPECT().UpdateStatus(vendorsvc.StatusResumeEnroll).Return(nil),
		f.fingerprint.EXPECT().UpdateStatus(vendorsvc.StatusFinishEnroll).Return(nil),
	)

	f.policy.StartEnroll()

	handled := f.policy.HandleError(inscreen.ErrorCanceled, 0)
	assert.False(t, handled)
	assert.Equal(t, inscreen.Idle, f.policy.State())

	f.policy.FinishEnroll()
	assert.Equal(t, inscreen.Idle, f.policy.State())
}

func TestPolicy_HandleError(t *testing.T) {
	tests := []struct {
		name          string
		code          int32
		vendorCode    int32
		expected      bool
		expectedState inscreen.State
	}{
		{
			name:          "suppressed vendor error is handled",
			code:          inscreen.ErrorVendor,
			vendorCode:    6,
			expected:      true,
			expectedState: inscreen.Enrolling,
		},
		{
			name:          "other vendor error is not handled",
			code:          inscreen.ErrorVendor,
			vendorCode:    5,
			expected:      false,
			expectedState: inscreen.Enrolling,
		},
		{
			name:          "cancel with vendor code resets nothing",
			code:          inscreen.ErrorCanceled,
			vendorCode:    1,
			expected:      false,
			expectedState: inscreen.Enrolling,
		},
		{
			name:          "cancel resets enrollment",
			code:          inscreen.ErrorCanceled,
			vendorCode:    0,
			expected:      false,
			expectedState: inscreen.Idle,
		},
		{
			name:          "unrelated error is not handled",
			code:          1,
			vendorCode:    0,
			expected:      false,
			expectedState: inscreen.Enrolling,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPolicyFixture(t, profile.DimWithOverlay)
			f.fingerprint.EXPECT().UpdateStatus(gomock.Any()).Return(nil).AnyTimes()
			f.policy.StartEnroll()

			assert.Equal(t, tt.expected, f.policy.HandleError(tt.code, tt.vendorCode))
			assert.Equal(t, tt.expectedState, f.policy.State())
		})
	}
}

func TestPolicy_HandleError_CancelWhileIdle(t *testing.T) {
	f := newPolicyFixture(t, profile.DimWithEnroll)

	assert.False(t, f.policy.HandleError(inscreen.ErrorCanceled, 0))
	assert.Equal(t, inscreen.Idle, f.policy.State())
}

func TestPolicy_OverlayCoupling_ShowHide(t *testing.T) {
	f := newPolicyFixture(t, profile.DimWithOverlay)
	gomock.InOrder(
		f.display.EXPECT().SetMode(vendorsvc.ModeSetDim, vendorsvc.On).Return(nil),
		f.display.EXPECT().SetMode(vendorsvc.ModeSetDim, vendorsvc.Off).Return(nil),
		f.display.EXPECT().SetMode(vendorsvc.ModeNotifyPress, vendorsvc.Off).Return(nil),
	)

	f.policy.ShowOverlay()
	assert.True(t, f.policy.OverlayVisible())

	f.policy.HideOverlay()
	assert.False(t, f.policy.OverlayVisible())
}

func TestPolicy_OverlayCoupling_PressRequiresOverlay(t *testing.T) {
	f := newPolicyFixture(t, profile.DimWithOverlay)

	// No display calls while hidden.
	f.policy.Press()

	gomock.InOrder(
		f.display.EXPECT().SetMode(vendorsvc.ModeSetDim, vendorsvc.On).Return(nil),
		f.display.EXPECT().SetMode(vendorsvc.ModeNotifyPress, vendorsvc.On).Return(nil),
		f.display.EXPECT().SetMode(vendorsvc.ModeNotifyPress, vendorsvc.Off).Return(nil),
	)

	f.policy.ShowOverlay()
	f.policy.Press()
	f.policy.Release()
}

func TestPolicy_OverlayCoupling_HandleAcquired(t *testing.T) {
	f := newPolicyFixture(t, profile.DimWithOverlay)
	f.display.EXPECT().SetMode(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.registry.Register(f.sink)

	// Hidden overlay gates the event and the sink is not invoked.
	assert.False(t, f.policy.HandleAcquired(inscreen.AcquiredVendor, 0))

	f.policy.ShowOverlay()

	f.sink.EXPECT().FingerDown().Return(nil).Times(1)
	assert.True(t, f.policy.HandleAcquired(inscreen.AcquiredVendor, 0))

	f.sink.EXPECT().FingerUp().Return(nil).Times(1)
	assert.True(t, f.policy.HandleAcquired(inscreen.AcquiredVendor, 1))

	assert.False(t, f.policy.HandleAcquired(inscreen.AcquiredVendor, 2))
	assert.False(t, f.policy.HandleAcquired(1, 0))

	f.policy.HideOverlay()
	assert.False(t, f.policy.HandleAcquired(inscreen.AcquiredVendor, 1))
}

func TestPolicy_OverlayCoupling_SinkReentersPolicy(t *testing.T) {
	f := newPolicyFixture(t, profile.DimWithOverlay)
	f.display.EXPECT().SetMode(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.registry.Register(f.sink)
	f.policy.ShowOverlay()

	// The event passed the gate before the sink hides the overlay, so it is still delivered.
	f.sink.EXPECT().FingerDown().DoAndReturn(func() error {
		f.policy.HideOverlay()
		return nil
	}).Times(1)

	assert.True(t, f.policy.HandleAcquired(inscreen.AcquiredVendor, 0))
	assert.False(t, f.policy.OverlayVisible())

	// Events arriving after the hide are gated.
	assert.False(t, f.policy.HandleAcquired(inscreen.AcquiredVendor, 1))
}

func TestPolicy_HandleAcquired_NoSink(t *testing.T) {
	f := newPolicyFixture(t, profile.DimWithEnroll)
	assert.False(t, f.policy.HandleAcquired(inscreen.AcquiredVendor, 0))
}

func TestPolicy_HandleAcquired_DeliveryFailureStillHandled(t *testing.T) {
	f := newPolicyFixture(t, profile.DimWithEnroll)
	f.registry.Register(f.sink)
	f.sink.EXPECT().FingerDown().Return(errors.New("transport closed")).Times(1)

	assert.True(t, f.policy.HandleAcquired(inscreen.AcquiredVendor, 0))
	assert.Equal(t, inscreen.Idle, f.policy.State())
}

func TestPolicy_EnrollCoupling_HandleAcquiredUngated(t *testing.T) {
	f := newPolicyFixture(t, profile.DimWithEnroll)
	f.registry.Register(f.sink)

	gomock.InOrder(
		f.sink.EXPECT().FingerDown().Return(nil),
		f.sink.EXPECT().FingerUp().Return(nil),
	)

	assert.False(t, f.policy.OverlayVisible())
	assert.True(t, f.policy.HandleAcquired(inscreen.AcquiredVendor, 0))
	assert.True(t, f.policy.HandleAcquired(inscreen.AcquiredVendor, 1))
}

func TestPolicy_EnrollCoupling_PressRelease(t *testing.T) {
	tests := []struct {
		name      string
		enrolling bool
		expect    func(f *policyFixture)
	}{
		{
			name:      "press while idle only notifies press",
			enrolling: false,
			expect: func(f *policyFixture) {
				gomock.InOrder(
					f.display.EXPECT().SetMode(vendorsvc.ModeNotifyPress, vendorsvc.On).Return(nil),
					f.display.EXPECT().SetMode(vendorsvc.ModeNotifyPress, vendorsvc.Off).Return(nil),
					f.display.EXPECT().SetMode(vendorsvc.ModeSetDim, vendorsvc.Off).Return(nil),
				)
			},
		},
		{
			name:      "press while enrolling also dims",
			enrolling: true,
			expect: func(f *policyFixture) {
				gomock.InOrder(
					f.display.EXPECT().SetMode(vendorsvc.ModeNotifyPress, vendorsvc.On).Return(nil),
					f.display.EXPECT().SetMode(vendorsvc.ModeSetDim, vendorsvc.On).Return(nil),
					f.display.EXPECT().SetMode(vendorsvc.ModeNotifyPress, vendorsvc.Off).Return(nil),
					f.display.EXPECT().SetMode(vendorsvc.ModeSetDim, vendorsvc.Off).Return(nil),
				)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPolicyFixture(t, profile.DimWithEnroll)
			if tt.enrolling {
				f.fingerprint.EXPECT().UpdateStatus(gomock.Any()).Return(nil).Times(2)
				f.policy.StartEnroll()
			}
			tt.expect(f)

			f.policy.Press()
			f.policy.Release()
		})
	}
}

func TestPolicy_EnrollCoupling_ShowOverlayClearsModes(t *testing.T) {
	f := newPolicyFixture(t, profile.DimWithEnroll)
	gomock.InOrder(
		f.display.EXPECT().SetMode(vendorsvc.ModeAOD, vendorsvc.Off).Return(nil),
		f.display.EXPECT().SetMode(vendorsvc.ModeSetDim, vendorsvc.Off).Return(nil),
		f.display.EXPECT().SetMode(vendorsvc.ModeNotifyPress, vendorsvc.Off).Return(nil),
		f.display.EXPECT().SetMode(vendorsvc.ModeSetDim, vendorsvc.Off).Return(nil),
		f.display.EXPECT().SetMode(vendorsvc.ModeNotifyPress, vendorsvc.Off).Return(nil),
	)

	f.policy.ShowOverlay()
	assert.False(t, f.policy.OverlayVisible())

	f.policy.HideOverlay()
	assert.False(t, f.policy.OverlayVisible())
}

func TestPolicy_SetLongPressEnabled(t *testing.T) {
	f := newPolicyFixture(t, profile.DimWithOverlay)
	gomock.InOrder(
		f.fingerprint.EXPECT().UpdateStatus(vendorsvc.StatusEnableLongPress).Return(nil),
		f.fingerprint.EXPECT().UpdateStatus(vendorsvc.StatusDisableLongPress).Return(nil),
	)

	f.policy.SetLongPressEnabled(true)
	f.policy.SetLongPressEnabled(false)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", inscreen.Idle.String())
	assert.Equal(t, "enrolling", inscreen.Enrolling.String())
	assert.Equal(t, "state(9)", inscreen.State(9).String())
}
