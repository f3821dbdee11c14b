package act

// Status is the three-valued result of ticking an act.
// StatusSuccess and StatusFail are terminal for the current run;
// ticking a terminated act again without a reset is a protocol violation.
type Status uint8

const (
	// StatusRunning indicates the act has more work to do and should be ticked again
	StatusRunning Status = iota

	// StatusSuccess indicates the act completed successfully
	StatusSuccess

	// StatusFail indicates the act completed unsuccessfully
	StatusFail
)

// Terminal returns true if the status ends the current run of an act.
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusFail
}

// String returns a human-readable representation of the status.
func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "RUNNING"
	case StatusSuccess:
		return "SUCCESS"
	case StatusFail:
		return "FAIL"
	default:
		return "UNKNOWN"
	}
}
