// Package vendorsvc defines the contract of the vendor fingerprint and display services
// the overlay daemon drives. Their internals are not modeled here.
package vendorsvc

//go:generate mockgen -source=vendorsvc.go -destination=mocks/vendorsvc_mock.go -package=mocks

import "fmt"

// StatusCode is a command sent to the vendor fingerprint service.
type StatusCode int32

const (
	StatusEnableLongPress  StatusCode = 3
	StatusDisableLongPress StatusCode = 4
	StatusResumeEnroll     StatusCode = 8
	StatusFinishEnroll     StatusCode = 10
)

// String returns a readable status name for logging.
func (c StatusCode) String() string {
	switch c {
	case StatusEnableLongPress:
		return "enable-longpress"
	case StatusDisableLongPress:
		return "disable-longpress"
	case StatusResumeEnroll:
		return "resume-enroll"
	case StatusFinishEnroll:
		return "finish-enroll"
	default:
		return fmt.Sprintf("status(%d)", int32(c))
	}
}

// Mode is an independently addressable display mode on the vendor display service.
type Mode int32

const (
	ModeAOD         Mode = 8
	ModeNotifyPress Mode = 9
	ModeSetDim      Mode = 10
)

// String returns a readable mode name for logging.
func (m Mode) String() string {
	switch m {
	case ModeAOD:
		return "aod"
	case ModeNotifyPress:
		return "notify-press"
	case ModeSetDim:
		return "set-dim"
	default:
		return fmt.Sprintf("mode(%d)", int32(m))
	}
}

// Mode values.
const (
	Off int32 = 0
	On  int32 = 1
)

// FingerprintService accepts status commands. Calls are fire-and-forget; an error only
// reports that the command could not be sent.
type FingerprintService interface {
	UpdateStatus(code StatusCode) error
}

// DisplayService toggles display modes. Calls are fire-and-forget; an error only
// reports that the request could not be sent.
type DisplayService interface {
	SetMode(mode Mode, value int32) error
}
