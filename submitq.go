// Package submitq implements the two-stage GPU submission queue: a
// submitter that hands recorded work to a Vulkan device queue and a
// finisher that waits for GPU completion and recycles command lists.
// It is the concurrency contract between any number of CPU producers,
// the two dedicated worker goroutines, and a single (potentially
// externally shared) device queue.
package submitq

import (
	"sync"
	"sync/atomic"

	"github.com/vklayer/submitq/driver"
	"github.com/vklayer/submitq/internal/telemetry"
)

// MaxQueued is the combined capacity of the pending and completion
// queues for submit entries (spec §3, PendingQueue). Present entries
// are exempt: see Present.
const MaxQueued = 6

// Supervisor is the synchronous surface producers use to hand work to
// the GPU. It owns two dedicated goroutines, a submitter and a
// finisher, started by New and joined by Close. All collaborators are
// injected; a Supervisor holds no other global mutable state.
type Supervisor struct {
	device driver.Device
	log    telemetry.Logger

	mu         sync.Mutex // M in spec §5: guards pending, completion and stopped's transitions.
	appendCond *sync.Cond // producer -> submitter
	submitCond *sync.Cond // submitter -> finisher and synchronize*
	finishCond *sync.Cond // finisher -> backpressured producers

	pending    entryQueue
	completion entryQueue

	pendingCount atomic.Int64
	stopped      atomic.Bool
	lastErr      atomic.Int32
	idleMicros   atomic.Int64

	qmu sync.Mutex // Q in spec §5: guards the device queue, externally lockable.

	wg sync.WaitGroup
}

// New creates a Supervisor bound to device and starts its submitter
// and finisher goroutines. log may be nil, in which case failures are
// silently dropped rather than logged.
func New(device driver.Device, log telemetry.Logger) *Supervisor {
	if log == nil {
		log = telemetry.Nop()
	}
	s := &Supervisor{device: device, log: log}
	s.appendCond = sync.NewCond(&s.mu)
	s.submitCond = sync.NewCond(&s.mu)
	s.finishCond = sync.NewCond(&s.mu)
	s.lastErr.Store(int32(driver.Success))

	s.wg.Add(2)
	go s.submitLoop()
	go s.finishLoop()
	return s
}

// Submit enqueues a submit entry. It blocks while PendingCount is
// already MaxQueued, so at most MaxQueued submit entries are in flight
// (spec §4.1); this is the only backpressure point in the pipeline.
// Errors never surface as a return value: they are observed
// asynchronously via LastError and, if one is given, status.
func (s *Supervisor) Submit(p SubmitPayload, status *StatusSlot) {
	e := &entry{kind: kindSubmit, submit: p, status: status}

	s.mu.Lock()
	for !s.stopped.Load() && s.pendingCount.Load() >= MaxQueued {
		s.finishCond.Wait()
	}
	if s.stopped.Load() {
		s.mu.Unlock()
		return
	}
	s.pending.push(e)
	s.pendingCount.Add(1)
	s.mu.Unlock()

	s.appendCond.Signal()
}

// Present enqueues a present entry. Unlike Submit, it never blocks on
// backpressure: a present that were backpressured by command-buffer
// accounting would deadlock the frame, since the submits whose
// completion would free slots have not yet been synchronized (spec
// §9). The caller may poll status or call SynchronizeSubmission.
func (s *Supervisor) Present(p PresentPayload, status *StatusSlot) {
	e := &entry{kind: kindPresent, present: p, status: status}

	s.mu.Lock()
	if s.stopped.Load() {
		s.mu.Unlock()
		return
	}
	s.pending.push(e)
	s.mu.Unlock()

	s.appendCond.Signal()
}

// SynchronizeSubmission blocks until status transitions out of
// driver.NotReady, or until shutdown begins. A call that returns
// happens-after the submitter wrote status (spec §5).
func (s *Supervisor) SynchronizeSubmission(status *StatusSlot) {
	s.mu.Lock()
	for status.pending() && !s.stopped.Load() {
		s.submitCond.Wait()
	}
	s.mu.Unlock()
}

// Synchronize blocks until the pending queue is empty, i.e. every
// entry enqueued before this call has been either dispatched to the
// device queue or failed. It does not wait for GPU completion of
// submits, and neither does a StatusSlot, which records the dispatch
// result; completion is observed by the finisher through
// CmdList.Synchronize, after which it runs the command list's
// completion callbacks.
func (s *Supervisor) Synchronize() {
	s.mu.Lock()
	for s.pending.len() > 0 && !s.stopped.Load() {
		s.submitCond.Wait()
	}
	s.mu.Unlock()
}

// LockDeviceQueue acquires exclusive use of the device queue for
// external code, such as a WSI present call issued directly by a
// producer thread. The submitter observes the same lock around every
// device call (spec §4.4). It is not the global mutex: holding it does
// not block producers from calling Submit or Present.
func (s *Supervisor) LockDeviceQueue() { s.qmu.Lock() }

// UnlockDeviceQueue releases the lock acquired by LockDeviceQueue.
func (s *Supervisor) UnlockDeviceQueue() { s.qmu.Unlock() }

// PendingCount returns the number of submit entries currently in the
// pending or completion queues. It is a lock-free observation.
func (s *Supervisor) PendingCount() uint32 {
	return uint32(s.pendingCount.Load())
}

// GPUIdleMicroseconds returns the accumulated time the finisher has
// spent waiting on an empty completion queue.
func (s *Supervisor) GPUIdleMicroseconds() uint64 {
	return uint64(s.idleMicros.Load())
}

// LastError returns the sticky error state. It is driver.Success until
// the first failing submit or sync, after which it never returns to
// driver.Success for the lifetime of the Supervisor (spec §3,
// invariant 4). A later failure overwrites the stored value, including
// the driver.DeviceLost recorded for entries short-circuited after the
// first failure.
func (s *Supervisor) LastError() driver.Result {
	return driver.Result(s.lastErr.Load())
}

// Stats gathers the three telemetry accessors in one call, for
// embedding-app dashboards.
type Stats struct {
	PendingCount     uint32
	IdleMicroseconds uint64
	LastError        driver.Result
}

// Stats returns a consistent-enough snapshot of PendingCount,
// GPUIdleMicroseconds and LastError. The three fields are read with
// separate atomic loads and are not a single atomic transaction.
func (s *Supervisor) Stats() Stats {
	return Stats{
		PendingCount:     s.PendingCount(),
		IdleMicroseconds: s.GPUIdleMicroseconds(),
		LastError:        s.LastError(),
	}
}

// Close sets the stopped flag, wakes both workers and joins them. It
// must not be called while holders of a StatusSlot are still waiting
// on SynchronizeSubmission: in-flight entries at shutdown time may be
// dropped without their StatusSlots being set (spec §5, Cancellation).
func (s *Supervisor) Close() {
	s.mu.Lock()
	s.stopped.Store(true)
	s.mu.Unlock()

	s.appendCond.Broadcast()
	s.submitCond.Broadcast()
	s.finishCond.Broadcast()

	s.wg.Wait()
}
