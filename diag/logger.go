package diag

import "sync"

// Enumeration of log levels.
const (
	LogLevelSilent  = iota // no output at all
	LogLevelError          // errors only
	LogLevelWarning        // errors plus end-of-run warnings
	LogLevelVerbose        // everything, including per-stage progress (default)
)

// Logger tallies the current compilation's diagnostics. Errors print the
// moment they are recorded -- the pipeline stops at the next stage
// boundary, so there is no later chance -- while warnings are deferred
// until the closing summary so they never interleave with the stage
// readout. The mutex guards a caller that embeds the front end and
// reports from a worker goroutine; the compiler itself is single-threaded.
type Logger struct {
	LogLevel int

	mu       sync.Mutex
	errors   int
	deferred []Message
}

func (l *Logger) record(m Message) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !m.isError() {
		l.deferred = append(l.deferred, m)
		return
	}

	l.errors++
	if l.LogLevel >= LogLevelError {
		failPhase()
		m.display()
	}
}

func (l *Logger) errorCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.errors
}
