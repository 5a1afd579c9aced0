package core

// MatchStatus is the lifecycle state of a match session
type MatchStatus int

const (
	StatusPending MatchStatus = iota
	StatusActive
	StatusCompleted
	StatusFailed
	StatusTimedOut
)

func (s MatchStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusActive:
		return "active"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	case StatusTimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether no further transition is allowed
func (s MatchStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusTimedOut
}

func (s MatchStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ParseStatus maps a terminal status name to its value
func ParseStatus(s string) (MatchStatus, bool) {
	switch s {
	case "completed":
		return StatusCompleted, true
	case "failed":
		return StatusFailed, true
	case "timed_out":
		return StatusTimedOut, true
	default:
		return StatusPending, false
	}
}

// Result is the caller-declared outcome passed when ending a match
type Result struct {
	Status MatchStatus `json:"status"`
	Winner Player      `json:"winner,omitempty"` // 0 when drawn or unknown
	Reason string      `json:"reason,omitempty"`
}
