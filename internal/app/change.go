package app

// ChangeKind says what a mutation touched.
type ChangeKind string

const (
	ChangeProgress ChangeKind = "progress"
	ChangeDayReset ChangeKind = "day_reset"
	ChangeSettings ChangeKind = "settings"
	ChangeProgram  ChangeKind = "program"
	ChangeReset    ChangeKind = "reset"
)

// Change is delivered to subscribers after every mutation. Views re-read
// whatever they display; Week and Day are set when the change is scoped to
// one day.
type Change struct {
	Kind     ChangeKind `json:"kind"`
	Week     int        `json:"week,omitempty"`
	Day      int        `json:"day,omitempty"`
	Exercise int        `json:"exercise,omitempty"`
}

// Subscribe registers fn to run synchronously after every mutation and
// returns a function that removes it. fn may call back into the App.
func (a *App) Subscribe(fn func(Change)) (unsubscribe func()) {
	a.listenersMu.Lock()
	id := a.nextID
	a.nextID++
	a.listeners[id] = fn
	a.listenersMu.Unlock()

	return func() {
		a.listenersMu.Lock()
		delete(a.listeners, id)
		a.listenersMu.Unlock()
	}
}

func (a *App) notify(c Change) {
	a.listenersMu.Lock()
	fns := make([]func(Change), 0, len(a.listeners))
	for _, fn := range a.listeners {
		fns = append(fns, fn)
	}
	a.listenersMu.Unlock()

	for _, fn := range fns {
		fn(c)
	}
}
