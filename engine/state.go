package engine

// State is the lifecycle stage of an App.
type State int

const (
	// StateUninitialized is the state before the window and GPU resources exist.
	StateUninitialized State = iota
	// StateCreated means every GPU resource was created and the window is still hidden.
	StateCreated
	// StateRunning means the window is shown and the message loop renders frames.
	StateRunning
	// StateClosing means a close was observed and every GPU resource has been released.
	StateClosing
	// StateDestroyed means the native window is gone.
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StateClosing:
		return "closing"
	case StateDestroyed:
		return "destroyed"
	}
	return "unknown"
}
