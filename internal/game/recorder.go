package game

import "time"

// Event types written to the play log.
const (
	EventLogin    = "login"
	EventLogout   = "logout"
	EventKill     = "kill"
	EventDeath    = "death"
	EventSay      = "say"
	EventRejected = "rejected"
)

// Recorder receives the out-of-world record of play. Event must not
// block the caller.
type Recorder interface {
	Event(kind, session string, playerID int16, name, data string)
	Session(name string, kills, deaths int, played time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) Event(string, string, int16, string, string) {}
func (nopRecorder) Session(string, int, int, time.Duration)     {}
