package cipher

import "time"

// Phase names the build that issued a query.
type Phase string

const (
	PhaseMap    Phase = "map"
	PhaseMatrix Phase = "matrix"
)

// QueryEvent describes one finished oracle query. Err is nil on success.
type QueryEvent struct {
	Phase    Phase
	Identity string
	Index    int // 1-based position in the alphabet
	Total    int
	Char     rune
	Duration time.Duration
	Err      error
}

// Observer receives progress while a build runs.
type Observer interface {
	OnQuery(QueryEvent)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(QueryEvent)

func (f ObserverFunc) OnQuery(ev QueryEvent) { f(ev) }
