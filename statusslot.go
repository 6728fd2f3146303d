package submitq

import (
	"sync/atomic"

	"github.com/vklayer/submitq/driver"
)

// StatusSlot is a single-writer, many-readers cell holding the
// outcome of one submission. A slot made by NewStatusSlot starts at
// driver.NotReady; the zero value reads as driver.Success and is never
// treated as pending. It transitions to a final Result at most once,
// written by the
// submitter goroutine (spec §3, invariant 3). Callers own its
// lifetime and must not free it before Supervisor.SynchronizeSubmission
// returns.
type StatusSlot struct {
	result atomic.Int32
}

// NewStatusSlot returns a StatusSlot initialized to driver.NotReady.
func NewStatusSlot() *StatusSlot {
	s := &StatusSlot{}
	s.result.Store(int32(driver.NotReady))
	return s
}

// Result returns the current outcome. It is driver.NotReady until the
// submitter publishes a final Result.
func (s *StatusSlot) Result() driver.Result {
	return driver.Result(s.result.Load())
}

func (s *StatusSlot) pending() bool {
	return s.Result() == driver.NotReady
}

// set publishes the final Result. Only the submitter calls this, and
// only once per slot.
func (s *StatusSlot) set(r driver.Result) {
	s.result.Store(int32(r))
}
