package inscreen_test

import (
	"testing"

	"github.com/shini4i/fod-inscreen-daemon/internal/inscreen"
	inscreenmocks "github.com/shini4i/fod-inscreen-daemon/internal/inscreen/mocks"
	"github.com/shini4i/fod-inscreen-daemon/internal/profile"
	"github.com/shini4i/fod-inscreen-daemon/internal/vendorsvc"
	"github.com/shini4i/fod-inscreen-daemon/internal/vendorsvc/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newService(t *testing.T, name string) (*inscreen.Service, *mocks.MockFingerprintService, *mocks.MockDisplayService) {
	t.Helper()
	ctrl := gomock.NewController(t)

	p, err := profile.Lookup(name)
	require.NoError(t, err)

	fingerprint := mocks.NewMockFingerprintService(ctrl)
	display := mocks.NewMockDisplayService(ctrl)
	return inscreen.NewService(p, fingerprint, display), fingerprint, display
}

func TestService_Constants(t *testing.T) {
	svc, _, _ := newService(t, "a")

	x, y := svc.OverlayPosition()
	assert.Equal(t, int32(444), x)
	assert.Equal(t, int32(1966), y)
	assert.Equal(t, int32(190), svc.OverlaySize())
	assert.False(t, svc.ShouldBoostBrightness())
}

func TestService_CompensationAmount(t *testing.T) {
	a, _, _ := newService(t, "a")
	assert.Equal(t, int32(178), a.CompensationAmount(0))
	assert.Equal(t, int32(65), a.CompensationAmount(128))
	assert.Equal(t, int32(23), a.CompensationAmount(255))

	b, _, _ := newService(t, "b")
	assert.Equal(t, int32(0), b.CompensationAmount(0))
	assert.Equal(t, int32(0), b.CompensationAmount(255))
}

func TestService_EventFlow(t *testing.T) {
	svc, fingerprint, display := newService(t, "a")

	ctrl := gomock.NewController(t)
	sink := inscreenmocks.NewMockSink(ctrl)
	svc.RegisterCallback(sink)

	gomock.InOrder(
		fingerprint.EXPECT().UpdateStatus(vendorsvc.StatusDisableLongPress).Return(nil),
		fingerprint.EXPECT().UpdateStatus(vendorsvc.StatusResumeEnroll).Return(nil),
		display.EXPECT().SetMode(vendorsvc.ModeSetDim, vendorsvc.On).Return(nil),
		display.EXPECT().SetMode(vendorsvc.ModeNotifyPress, vendorsvc.On).Return(nil),
		sink.EXPECT().FingerDown().Return(nil),
		sink.EXPECT().FingerUp().Return(nil),
		display.EXPECT().SetMode(vendorsvc.ModeNotifyPress, vendorsvc.Off).Return(nil),
		display.EXPECT().SetMode(vendorsvc.ModeSetDim, vendorsvc.Off).Return(nil),
		display.EXPECT().SetMode(vendorsvc.ModeNotifyPress, vendorsvc.Off).Return(nil),
		fingerprint.EXPECT().UpdateStatus(vendorsvc.StatusFinishEnroll).Return(nil),
		fingerprint.EXPECT().UpdateStatus(vendorsvc.StatusEnableLongPress).Return(nil),
	)

	svc.StartEnroll()
	svc.ShowOverlay()
	svc.Press()
	assert.True(t, svc.HandleAcquired(inscreen.AcquiredVendor, 0))
	assert.True(t, svc.HandleAcquired(inscreen.AcquiredVendor, 1))
	svc.Release()
	svc.HideOverlay()
	assert.True(t, svc.HandleError(inscreen.ErrorVendor, 6))
	svc.FinishEnroll()
	svc.SetLongPressEnabled(true)

	assert.Equal(t, inscreen.Idle, svc.Policy().State())
}

func TestService_RegisterCallback_Clear(t *testing.T) {
	svc, _, display := newService(t, "a")
	display.EXPECT().SetMode(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	ctrl := gomock.NewController(t)
	sink := inscreenmocks.NewMockSink(ctrl)

	svc.ShowOverlay()
	svc.RegisterCallback(sink)
	svc.RegisterCallback(nil)

	assert.False(t, svc.HandleAcquired(inscreen.AcquiredVendor, 0))
}
