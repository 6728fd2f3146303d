// Package driver defines the ports that package submitq depends on:
// the command list it submits and waits on, the device that owns the
// Vulkan queue, the presenter it drives, and the optional crash-dump
// and latency-marker sinks. Concrete implementations live outside this
// package (see driver/vkadapt for a Vulkan-backed one); submitq itself
// only ever sees these interfaces.
package driver

import (
	"errors"
	"strconv"
	"time"
)

// Result mirrors a Vulkan result code. Values are chosen to match
// vk.Result from github.com/vulkan-go/vulkan so that adapters can
// convert between the two with a plain numeric cast.
type Result int32

// Result values used by the core. Any other negative Result is
// treated as a generic failure; only DeviceLost triggers the
// crash-dump handshake.
const (
	Success      Result = 0
	NotReady     Result = 1
	DeviceLost   Result = -4
	ErrorUnknown Result = -13
)

// Failed reports whether r represents anything other than a
// successful or still-pending outcome.
func (r Result) Failed() bool {
	return r != Success && r != NotReady
}

func (r Result) String() string {
	switch r {
	case Success:
		return "SUCCESS"
	case NotReady:
		return "NOT_READY"
	case DeviceLost:
		return "DEVICE_LOST"
	case ErrorUnknown:
		return "ERROR_UNKNOWN"
	default:
		return "ERROR_UNKNOWN(" + strconv.Itoa(int(r)) + ")"
	}
}

// ErrStopped is returned by collaborators asked to perform work after
// the pipeline has begun shutting down.
var ErrStopped = errors.New("submitq: pipeline stopped")

// Semaphore is an opaque wait/signal handle attached to a submission.
// The concrete type is supplied by the adapter; the core never
// inspects it beyond nil checks.
type Semaphore any

// CmdList is a recorded, immutable-after-recording command buffer
// with attached wait/signal semaphores and completion callbacks. Its
// lifetime, once handed to submitq.Supervisor.Submit, is owned by the
// pipeline until the finisher recycles it.
type CmdList interface {
	// Submit enqueues the command list onto the device queue. The
	// caller must hold the device-queue lock for the duration of
	// this call.
	Submit(wait, wake Semaphore) Result

	// Synchronize blocks on the GPU fence associated with the last
	// Submit call.
	Synchronize() Result

	// NotifySignals runs any user completion callbacks attached to
	// the command list.
	NotifySignals()

	// Reset puts the command list back into a recordable state.
	Reset()
}

// Presenter drives a window-system swap chain. The core only ever
// calls PresentImage; swapchain creation and image acquisition are
// out of scope (see spec §1).
type Presenter interface {
	PresentImage() Result
}

// Marker identifies a latency-marker event reported to Reflex.
type Marker int

const (
	PresentStart Marker = iota
	PresentEnd
)

// Reflex is a latency-measurement sink. It only ever receives
// PresentStart/PresentEnd markers around a present call.
type Reflex interface {
	SetMarker(frameID uint64, marker Marker)
}

// NopReflex is a Reflex that discards every marker.
type NopReflex struct{}

func (NopReflex) SetMarker(uint64, Marker) {}

// CrashStatus is the state of an out-of-process crash-dump collector.
type CrashStatus int

const (
	NotStarted CrashStatus = iota
	Collecting
	Finished
	Unknown
)

// CrashReporter is polled after a device-lost error to give the
// driver time to produce a diagnostic dump before the process may
// tear down.
type CrashReporter interface {
	Status() CrashStatus
}

// Config holds the per-device knobs the core reads before dispatching
// work: present pacing and whether to run the crash-dump handshake.
type Config struct {
	// PresentThrottleDelay, if positive, is slept inside the
	// device-queue critical section after every present call.
	PresentThrottleDelay time.Duration
	// CrashReporterEnabled gates the §4.5 poll loop on device loss.
	CrashReporterEnabled bool
}

// Device owns the Vulkan queue and the command-list pool. The core
// never touches vk.Queue directly; it only ever calls through Device
// and the CmdList it hands out.
type Device interface {
	// RecycleCmdList returns a command list to the device's pool
	// once the finisher has synchronized and reset it.
	RecycleCmdList(cl CmdList)

	// WaitForIdle fully drains the device queue. Called after a
	// submit or fence-sync failure.
	WaitForIdle()

	// Config returns the device's present-pacing and crash-report
	// settings. It is immutable for the lifetime of the Device.
	Config() Config

	// Reflex returns the latency-marker sink for present calls.
	// Implementations that do not wire a real sink should return
	// NopReflex{}.
	Reflex() Reflex

	// CrashReporter returns the optional crash-dump collaborator.
	// It is only polled when Config().CrashReporterEnabled is set,
	// so implementations that leave it disabled may return nil.
	CrashReporter() CrashReporter
}
