// errors.go - device error tiers shared by all DAQ engines

package daq

import "fmt"

// DeviceError carries the last-error text per device, matching
// CDevice::GetLastDeviceError() in the original driver: every fallible operation
// sets this instead of panicking or returning an opaque error up through C++-style
// exceptions.
type DeviceError struct {
	Device string
	Reason string
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("daq: %s: %s", e.Device, e.Reason)
}

// Sentinel reasons for the "latched on device state" error tier (spec.md §7 tier 3).
// Any of these latches the owning engine: it must be reconfigured before it can run
// again.
var (
	ErrOverrun       = fmt.Errorf("DAQ_OVERRUN: sample interval too short")
	ErrOverflow      = fmt.Errorf("DAQ_OVERFLOW: FIFO overflowed")
	ErrTimeout       = fmt.Errorf("DAQ_TIMEOUT: unload exceeded timeout")
	ErrLostFastData  = fmt.Errorf("DAQ_LOSTFASTDATA: fast channel buffer undersized")
	ErrClockOverflow = fmt.Errorf("event timer clock overflow")
	ErrNotSupported  = fmt.Errorf("operation not supported by this device")
)

// errorHolder is embedded by every concrete engine to implement LastError/SetError
// without repeating the same three lines in every file.
type errorHolder struct {
	deviceName string
	lastErr    error
}

func (h *errorHolder) setError(err error) {
	h.lastErr = err
}

func (h *errorHolder) clearError() {
	h.lastErr = nil
}

// LastError returns the most recent error recorded against this device, or nil.
func (h *errorHolder) LastError() error {
	return h.lastErr
}
