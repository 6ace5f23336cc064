package job

import "fmt"

// Handle 是托管 API 为异步任务返回的不透明引用（Gemini 中为 operation name）。
type Handle string

// State 任务状态
type State string

const (
	StatePending State = "pending"
	StateDone    State = "done"
	StateFailed  State = "failed"
)

// Status 是一次状态查询的结果。Done 携带结果引用，Failed 携带原因。
type Status struct {
	State     State  `json:"state"`
	ResultRef string `json:"result_ref,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// Pending returns a non-terminal status.
func Pending() Status { return Status{State: StatePending} }

// Done returns a terminal success status. ref may be empty; the poller turns
// that into a missing-result failure.
func Done(ref string) Status { return Status{State: StateDone, ResultRef: ref} }

// Failed returns a terminal failure status.
func Failed(reason string) Status { return Status{State: StateFailed, Reason: reason} }

// IsTerminal reports whether no further transition can happen.
func (s Status) IsTerminal() bool {
	return s.State == StateDone || s.State == StateFailed
}

// Next validates the transition s -> next. Terminal states admit no transition.
func (s Status) Next(next Status) (Status, error) {
	if s.IsTerminal() {
		return s, fmt.Errorf("job already %s, cannot move to %s", s.State, next.State)
	}
	switch next.State {
	case StatePending, StateDone, StateFailed:
		return next, nil
	default:
		return s, fmt.Errorf("unknown job state %q", next.State)
	}
}

func (s Status) String() string {
	switch s.State {
	case StateDone:
		return fmt.Sprintf("done(%s)", s.ResultRef)
	case StateFailed:
		return fmt.Sprintf("failed(%s)", s.Reason)
	default:
		return string(s.State)
	}
}
