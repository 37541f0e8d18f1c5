package monitoring

import "log"

// Logf is the package-level diagnostic logger used by the session, live and
// db packages. It defaults to log.Printf and may be replaced by SetLogger.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil installs a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Scoped returns a logger that prefixes every message with "[scope] " and
// forwards to whatever Logf is at call time.
func Scoped(scope string) func(format string, v ...interface{}) {
	prefix := "[" + scope + "] "
	return func(format string, v ...interface{}) {
		Logf(prefix+format, v...)
	}
}
