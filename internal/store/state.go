package store

// State is the lifecycle of a resource store's collection. Transitions are
// re-entrant: any successful operation lands on Loaded, any failed one on
// Failed, and a failure never discards previously loaded data.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateLoaded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}
