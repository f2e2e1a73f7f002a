package domain

// SessionInfo is the externally visible view of a stored session.
type SessionInfo struct {
	ID       string    `json:"id"`
	Path     []string  `json:"path"`
	Phase    string    `json:"phase"`
	Event    string    `json:"event"`
	Finished bool      `json:"finished"`
	Snapshot *Snapshot `json:"snapshot,omitempty"`
}

// NewSessionInfo summarizes snap for the session id.
func NewSessionInfo(id string, snap *Snapshot) *SessionInfo {
	return &SessionInfo{
		ID:       id,
		Path:     snap.Path(),
		Phase:    snap.Status.String(),
		Event:    snap.Event,
		Finished: snap.Status == PhaseFinished,
		Snapshot: snap,
	}
}
