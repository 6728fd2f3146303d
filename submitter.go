package submitq

import (
	"time"

	"github.com/vklayer/submitq/driver"
)

// submitLoop is the submitter thread (spec §4.2). It consumes the
// pending queue, performs the Vulkan submit or present, and handles
// device loss. Because PendingQueue is FIFO and exactly one goroutine
// drains it, device-queue submissions occur in producer enqueue order.
func (s *Supervisor) submitLoop() {
	defer s.wg.Done()

	for {
		s.mu.Lock()
		for !s.stopped.Load() && s.pending.len() == 0 {
			s.appendCond.Wait()
		}
		if s.stopped.Load() {
			s.mu.Unlock()
			return
		}
		// Leave the head in place during the device call: synchronize
		// treats a non-empty pending queue as work still in flight.
		e := s.pending.peek()
		s.mu.Unlock()

		status := s.dispatch(e)

		// Publish before re-acquiring M, so that a waiter released by
		// submitCond below is guaranteed to observe the final Result.
		if e.status != nil {
			e.status.set(status)
		}

		s.mu.Lock()
		s.pending.pop()
		switch {
		case e.kind == kindSubmit && status == driver.Success:
			s.completion.push(e)
		case e.kind == kindSubmit && status.Failed():
			s.failLocked(status)
		case e.kind == kindPresent && status == driver.DeviceLost:
			// Presents don't propagate ordinary failures, but a
			// device-lost result is sticky regardless of entry kind.
			s.failLocked(status)
		case e.kind == kindPresent && status.Failed():
			s.log.Error("present failed", "result", status.String())
		}
		// Present entries, successful or not, have no completion step:
		// there is no notify_signals analogue (see PresentPayload).
		s.submitCond.Broadcast()
		s.mu.Unlock()
	}
}

// dispatch performs a single entry's device call under the
// device-queue mutex (spec §4.2 step 5). M must not be held here.
func (s *Supervisor) dispatch(e *entry) driver.Result {
	s.qmu.Lock()
	defer s.qmu.Unlock()

	if driver.Result(s.lastErr.Load()) != driver.Success {
		return driver.DeviceLost
	}

	switch e.kind {
	case kindSubmit:
		return e.submit.CmdList.Submit(e.submit.WaitSync, e.submit.WakeSync)
	default:
		reflex := s.device.Reflex()
		reflex.SetMarker(e.present.FrameID, driver.PresentStart)
		res := e.present.Presenter.PresentImage()
		reflex.SetMarker(e.present.FrameID, driver.PresentEnd)
		// The delay paces the device queue, not the CPU: it belongs
		// inside this critical section (spec §9).
		if d := s.device.Config().PresentThrottleDelay; d > 0 {
			time.Sleep(d)
		}
		return res
	}
}

// failLocked implements the device-loss/crash-dump handshake (spec
// §4.5). The caller must hold M, per §4.2 step 7.
func (s *Supervisor) failLocked(status driver.Result) {
	s.lastErr.Store(int32(status))
	s.log.Error("submission failed", "result", status.String())

	// Only a reported device loss triggers the crash-dump handshake;
	// other sticky failures still drain the pipeline (spec §7).
	if status == driver.DeviceLost {
		if cfg := s.device.Config(); cfg.CrashReporterEnabled {
			s.pollCrashReporter()
		}
	}
	s.device.WaitForIdle()
}

// pollCrashReporter polls the crash reporter's status for up to a 5s
// budget at 100ms intervals, exiting early on Finished or Unknown.
// This gives the driver time to produce a diagnostic dump before the
// process may tear down.
func (s *Supervisor) pollCrashReporter() {
	cr := s.device.CrashReporter()
	if cr == nil {
		return
	}
	const (
		budget = 5 * time.Second
		poll   = 100 * time.Millisecond
	)
	deadline := time.Now().Add(budget)
	for time.Now().Before(deadline) {
		switch cr.Status() {
		case driver.Finished, driver.Unknown:
			return
		}
		time.Sleep(poll)
	}
}
