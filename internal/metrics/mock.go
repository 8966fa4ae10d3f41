package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu               sync.Mutex
	gamesRecorded    int
	statsRequests    int
	statsDurations   []float64
	imports          map[bool]int
	exports          map[string]int
	slackNotifSent   int
	slackNotifFailed int
	eventsPublished  int
	startupTime      float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		statsDurations: make([]float64, 0),
		imports:        make(map[bool]int),
		exports:        make(map[string]int),
	}
}

func (m *Mock) IncGamesRecorded() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gamesRecorded++
}

func (m *Mock) IncStatsRequests() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statsRequests++
}

func (m *Mock) ObserveStatsDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statsDurations = append(m.statsDurations, duration)
}

func (m *Mock) IncImports(ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.imports[ok]++
}

func (m *Mock) IncExports(format string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exports[format]++
}

func (m *Mock) IncSlackNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifSent++
}

func (m *Mock) IncSlackNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifFailed++
}

func (m *Mock) IncEventsPublished() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eventsPublished++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// GamesRecorded returns the number of times IncGamesRecorded was called.
func (m *Mock) GamesRecorded() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gamesRecorded
}

// StatsRequests returns the number of times IncStatsRequests was called.
func (m *Mock) StatsRequests() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statsRequests
}

// Imports returns the number of imports with the given outcome.
func (m *Mock) Imports(ok bool) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.imports[ok]
}

// Exports returns the number of exports in the given format.
func (m *Mock) Exports(format string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exports[format]
}

// SlackNotifSent returns the number of times IncSlackNotifSent was called.
func (m *Mock) SlackNotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifSent
}

// SlackNotifFailed returns the number of times IncSlackNotifFailed was called.
func (m *Mock) SlackNotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifFailed
}

// EventsPublished returns the number of times IncEventsPublished was called.
func (m *Mock) EventsPublished() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.eventsPublished
}
