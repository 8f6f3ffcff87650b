package entity

// Session identifies the authenticated owner a note engine works for.
type Session struct {
	OwnerID string
	Token   string
}

func (s Session) Authenticated() bool {
	return s.OwnerID != ""
}

// State is a point-in-time copy of the engine state.
type State struct {
	Notes         []Note
	ActiveID      string
	ListVisible   bool
	PendingDelete string
	Deleting      bool
}

func (s State) Note(id string) (Note, bool) {
	for _, n := range s.Notes {
		if n.ID == id {
			return n, true
		}
	}

	return Note{}, false
}
