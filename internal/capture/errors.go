package capture

import "errors"

// Control-plane and export failures. Callers branch on these with
// errors.Is; the wrapped message carries the failing precondition.
var (
	// ErrBackendInit means the audio backend could not be brought up or
	// reported zero input devices. The handle is unusable; construct a
	// new one.
	ErrBackendInit = errors.New("audio backend initialization failed")

	// ErrInvalidDeviceIndex means the index falls outside the most
	// recent device enumeration.
	ErrInvalidDeviceIndex = errors.New("invalid device index")

	// ErrDeviceChangeWhileRunning means SelectDevice was called during
	// an active capture session.
	ErrDeviceChangeWhileRunning = errors.New("cannot change device while capturing")

	// ErrStreamStart means the backend rejected the stream open or
	// start. Recoverable; retry with another device.
	ErrStreamStart = errors.New("failed to start capture stream")
)
