package progression

import "time"

// EventType identifies a progression event fired by the player UI, the
// station-selection flow or the trivia mini-game.
type EventType string

const (
	EventVisitStation       EventType = "visit_station"
	EventAddListeningMinute EventType = "add_listening_minute"
	EventAddXP              EventType = "add_xp"
	EventWinTriviaRound     EventType = "win_trivia_round"
)

// Event is the single input shape accepted by Engine.RecordEvent. Only the
// fields relevant to the event type need to be set.
type Event struct {
	Type EventType

	// VisitStation
	StationID   string
	CountryCode string

	// AddXP
	Amount int
}

// Stats holds the aggregate counters derived from a user's listening
// history. All counters are monotonic; the sets only ever grow.
type Stats struct {
	TotalMinutes    int
	UniqueCountries []string
	UniqueStations  []string
	TriviaWins      int
}

func (s Stats) clone() Stats {
	return Stats{
		TotalMinutes:    s.TotalMinutes,
		UniqueCountries: append([]string(nil), s.UniqueCountries...),
		UniqueStations:  append([]string(nil), s.UniqueStations...),
		TriviaWins:      s.TriviaWins,
	}
}

// Context carries the ambient facts badge predicates need beyond Stats.
type Context struct {
	Now time.Time
}

// Night reports whether the clock reads between 1 AM and 4:59 AM.
func (c Context) Night() bool {
	h := c.Now.Hour()
	return h >= 1 && h <= 4
}

// Morning reports whether the clock reads between 5 AM and 8:59 AM.
func (c Context) Morning() bool {
	h := c.Now.Hour()
	return h >= 5 && h <= 8
}

// Weekend reports whether the clock reads a Saturday or Sunday.
func (c Context) Weekend() bool {
	wd := c.Now.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// Unlock is the single-slot "recently unlocked" notification value. The UI
// consumes it once and clears it via Engine.ClearRecentUnlock.
type Unlock struct {
	Badge      Definition
	Message    string
	UnlockedAt time.Time
}
