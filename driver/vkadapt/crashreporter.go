package vkadapt

import (
	"sync/atomic"

	"github.com/vklayer/submitq/driver"
)

// CrashReporter is a minimal driver.CrashReporter: NotStarted until
// SetStatus is called by whatever out-of-process mechanism observes
// the real dump collector's progress (a watched pipe, an exit code,
// a sidecar RPC). submitq only ever calls Status.
type CrashReporter struct {
	status atomic.Int32
}

// Status returns the last status set by SetStatus.
func (c *CrashReporter) Status() driver.CrashStatus {
	return driver.CrashStatus(c.status.Load())
}

// SetStatus records a new crash-dump collection status.
func (c *CrashReporter) SetStatus(s driver.CrashStatus) {
	c.status.Store(int32(s))
}
