package widget

// Status is the widget's request lifecycle state.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

var transitions = map[Status][]Status{
	StatusIdle:    {StatusLoading, StatusError},
	StatusLoading: {StatusSuccess, StatusError},
	StatusSuccess: {StatusLoading, StatusError, StatusIdle},
	StatusError:   {StatusLoading, StatusError, StatusIdle},
}

// CanTransition reports whether the widget may move from one status to another.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
