package workflow

// Phase is where one async operation currently is.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseResolved
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseResolved:
		return "resolved"
	default:
		return "idle"
	}
}

// Ticket identifies one issued request. Tickets only grow.
type Ticket uint64

// Tracker is the Idle -> Loading -> Resolved state machine for a single
// operation. Every Begin issues a new ticket; only the latest ticket may
// resolve it, so an older response that arrives late is dropped.
type Tracker struct {
	phase     Phase
	succeeded bool
	latest    Ticket
}

// Begin enters Loading and returns the ticket for the new request.
func (t *Tracker) Begin() Ticket {
	t.latest++
	t.phase = PhaseLoading
	t.succeeded = false
	return t.latest
}

// Resolve leaves Loading if tk is the latest ticket and reports whether the
// result should be applied.
func (t *Tracker) Resolve(tk Ticket, succeeded bool) bool {
	if tk != t.latest || t.phase != PhaseLoading {
		return false
	}
	t.phase = PhaseResolved
	t.succeeded = succeeded
	return true
}

func (t *Tracker) Phase() Phase    { return t.phase }
func (t *Tracker) Loading() bool   { return t.phase == PhaseLoading }
func (t *Tracker) Succeeded() bool { return t.phase == PhaseResolved && t.succeeded }
func (t *Tracker) Latest() Ticket  { return t.latest }
