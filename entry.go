package submitq

import "github.com/vklayer/submitq/driver"

// SubmitPayload is a command list handle plus its wait/wake semaphore
// pair (either may be nil). The command list is exclusively owned by
// the pipeline from the moment it is enqueued via Supervisor.Submit
// until the finisher recycles it.
type SubmitPayload struct {
	CmdList  driver.CmdList
	WaitSync driver.Semaphore
	WakeSync driver.Semaphore
}

// PresentPayload is a presenter handle and a monotonically-increasing
// frame id. The presenter is shared with the producer; the pipeline
// only ever calls PresentImage on it.
//
// PresentPayload has no notify-signals analogue. This resolves spec
// §9's open question as option (a): present completion callbacks do
// not exist (see DESIGN.md). A producer that needs to know a present
// finished must use the StatusSlot passed to Supervisor.Present.
type PresentPayload struct {
	Presenter driver.Presenter
	FrameID   uint64
}

type entryKind int

const (
	kindSubmit entryKind = iota
	kindPresent
)

// entry is exactly one of {submit, present} (spec §3). It optionally
// carries a status pointer into a caller-provided StatusSlot.
type entry struct {
	kind    entryKind
	submit  SubmitPayload
	present PresentPayload
	status  *StatusSlot
}
