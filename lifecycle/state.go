package lifecycle

// State is a point in a lifecycle run.
type State int

const (
	StateStart State = iota
	StateCreated
	StateListed
	StateFetchedByID
	StateUpdated
	StateVerifiedUpdate
	StateDeleted
	StateVerifiedAbsent
	StateDone
)

var stateNames = map[State]string{
	StateStart:          "Start",
	StateCreated:        "Created",
	StateListed:         "Listed",
	StateFetchedByID:    "FetchedByID",
	StateUpdated:        "Updated",
	StateVerifiedUpdate: "VerifiedUpdate",
	StateDeleted:        "Deleted",
	StateVerifiedAbsent: "VerifiedAbsent",
	StateDone:           "Done",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "Unknown"
}
