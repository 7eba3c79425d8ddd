package cache

// State is the lifecycle phase of a Manager.
type State int32

const (
	StateUninitialized State = iota
	StateLoading
	StateReady
	StateRebuilding
	StateInvalidating
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateRebuilding:
		return "rebuilding"
	case StateInvalidating:
		return "invalidating"
	default:
		return "unknown"
	}
}
