package session

// transitions is the closed set of allowed status changes. Anything not in
// the table is rejected and logged instead of silently overwriting local
// state with whatever the backend last reported.
var transitions = map[Status][]Status{
	StatusPending: {StatusRunning, StatusCompleted, StatusFailed, StatusCancelled},
	StatusRunning: {StatusPaused, StatusCompleted, StatusFailed, StatusCancelled},
	StatusPaused:  {StatusRunning, StatusCompleted, StatusFailed, StatusCancelled},
	// Terminal states have no exits.
	StatusCompleted: nil,
	StatusFailed:    nil,
	StatusCancelled: nil,
}

// CanTransition reports whether moving from one status to another is
// allowed. A same-status update is always allowed (it is a no-op, not a
// transition). The empty "from" status means no session state exists yet, so
// any valid status may be assumed.
func CanTransition(from, to Status) bool {
	if from == "" || from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
