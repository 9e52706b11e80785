package chat

// FetchMode distinguishes the first fetch of a loop, which may show a
// loading indicator, from the silent refreshes that follow it.
type FetchMode int

const (
	FetchVisible FetchMode = iota
	FetchSilent
)

// PollLoop tracks one logical refresh loop. It does not own a timer; the
// surface schedules ticks and tags each in-flight fetch with the loop's
// generation. A response is committed only if its generation still matches,
// which is how stale responses from a previous target are discarded: the
// loop never aborts an in-flight request, it just refuses the result.
type PollLoop struct {
	gen     int
	running bool
	fetched bool
}

// Start begins the loop and returns the generation for its first fetch.
func (l *PollLoop) Start() int {
	l.running = true
	l.fetched = false
	l.gen++
	return l.gen
}

// Restart invalidates every in-flight fetch and rearms the visible first
// fetch; used when the loop's target (the active session) changes.
func (l *PollLoop) Restart() int {
	return l.Start()
}

// Stop ends the loop. Outstanding responses are rejected by Accept.
func (l *PollLoop) Stop() {
	l.running = false
	l.gen++
}

func (l *PollLoop) Running() bool {
	return l != nil && l.running
}

// Gen returns the current generation for tagging scheduled ticks.
func (l *PollLoop) Gen() int {
	return l.gen
}

// NextMode returns the mode for the fetch about to be issued and marks the
// visible fetch as consumed, so every later fetch of this generation is
// silent.
func (l *PollLoop) NextMode() FetchMode {
	if l.fetched {
		return FetchSilent
	}
	l.fetched = true
	return FetchVisible
}

// Accept reports whether a response tagged with gen may be committed.
func (l *PollLoop) Accept(gen int) bool {
	return l != nil && l.running && gen == l.gen
}
