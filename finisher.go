package submitq

import (
	"time"

	"github.com/vklayer/submitq/driver"
)

// finishLoop is the finisher thread (spec §4.3). It consumes the
// completion queue, waits on GPU fences, runs completion callbacks,
// and recycles command lists. It never touches the device queue, so
// it does not contend with external LockDeviceQueue holders.
func (s *Supervisor) finishLoop() {
	defer s.wg.Done()

	for {
		s.mu.Lock()
		waitStart := time.Now()
		for !s.stopped.Load() && s.completion.len() == 0 {
			s.submitCond.Wait()
		}
		s.idleMicros.Add(time.Since(waitStart).Microseconds())
		if s.stopped.Load() {
			s.mu.Unlock()
			return
		}
		e := s.completion.pop()
		s.mu.Unlock()

		var result driver.Result
		if driver.Result(s.lastErr.Load()) == driver.DeviceLost {
			// A lost device will never signal its fences again.
			result = driver.DeviceLost
		} else {
			result = e.submit.CmdList.Synchronize()
		}

		if result.Failed() {
			s.lastErr.Store(int32(result))
			s.log.Error("fence sync failed", "result", result.String())
			s.device.WaitForIdle()
		}

		e.submit.CmdList.NotifySignals()
		e.submit.CmdList.Reset()
		s.device.RecycleCmdList(e.submit.CmdList)

		s.mu.Lock()
		s.pendingCount.Add(-1)
		s.finishCond.Broadcast()
		s.mu.Unlock()
	}
}
