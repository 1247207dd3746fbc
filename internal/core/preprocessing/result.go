package preprocessing

// Outcome is the terminal state of one chain run.
type Outcome int

const (
	// Succeeded means every preprocessor returned true
	Succeeded Outcome = iota
	// Rejected means a preprocessor returned false
	Rejected
	// Faulted means a preprocessor returned an error
	Faulted
)

func (o Outcome) String() string {
	switch o {
	case Succeeded:
		return "succeeded"
	case Rejected:
		return "rejected"
	case Faulted:
		return "faulted"
	default:
		return "unknown"
	}
}

// Result describes how a run ended.
type Result struct {
	Outcome Outcome
	// Step is the index of the preprocessor that ended the run, -1 when all succeeded.
	Step int
	// Cause is the error returned by the faulting preprocessor, unchanged.
	Cause error
}

// OK reports whether the run succeeded
func (r Result) OK() bool {
	return r.Outcome == Succeeded
}
