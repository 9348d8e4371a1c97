package constants

// EventType classifies a production event.
type EventType string

const (
	EventAssigned EventType = "ASSIGNED"
	EventEntry    EventType = "ENTRY"
	EventExit     EventType = "EXIT"
	EventPause    EventType = "PAUSE"
	EventResume   EventType = "RESUME"
	EventNote     EventType = "NOTE"
)

var AllEventTypes = []EventType{
	EventAssigned,
	EventEntry,
	EventExit,
	EventPause,
	EventResume,
	EventNote,
}

func IsValidEventType(t EventType) bool {
	for _, e := range AllEventTypes {
		if e == t {
			return true
		}
	}
	return false
}
