package diag

import (
	"os"

	"viper/token"
)

// log is the single global logger instance. The compiler's other shared
// state lives on driver.Context, but the logger stays global: packages
// with no Context in scope (config loading happens before one exists)
// still need to report, and there is exactly one terminal to report to.
var log = &Logger{LogLevel: LogLevelVerbose}

// Init initializes the global logger with the given level name
// (silent|error|warning|verbose; anything else means verbose).
func Init(levelName string) {
	var level int
	switch levelName {
	case "silent":
		level = LogLevelSilent
	case "error":
		level = LogLevelError
	case "warning":
		level = LogLevelWarning
	default:
		level = LogLevelVerbose
	}

	log = &Logger{LogLevel: level}
}

// ShouldProceed reports whether no fatal errors have been logged yet.
func ShouldProceed() bool {
	return log.errorCount() == 0
}

// ReportCompilerError records a fatal compile-time diagnostic anchored at
// a source span. Fatal diagnostics are never recovered from: the driver
// surfaces the aggregated error state at the next stage boundary and
// stops. This call itself does not exit the process -- only ReportFatal,
// the internal-compiler-error path, does that.
func ReportCompilerError(file string, span *token.Span, kind Kind, message string) {
	log.record(&CompileMessage{File: file, Span: span, Kind: kind, Message: message, IsError: true})
}

// ReportCompilerWarning records a non-fatal diagnostic.
func ReportCompilerWarning(file string, span *token.Span, kind Kind, message string) {
	log.record(&CompileMessage{File: file, Span: span, Kind: kind, Message: message, IsError: false})
}

// ReportConfigError reports an error loading the project configuration.
func ReportConfigError(category, message string) {
	log.record(&ConfigError{Category: category, Message: message})
}

// ReportFatal reports an internal compiler error and terminates the
// process. It is reserved for conditions the front end cannot recover
// from at all (a write failure while emitting the module, a corrupted
// registry); ordinary diagnostics go through ReportCompilerError, which
// lets the driver decide when to stop.
func ReportFatal(message string) {
	log.mu.Lock()
	log.errors++
	log.mu.Unlock()
	displayFatal(message)
	os.Exit(1)
}
