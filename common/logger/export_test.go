package logger

import "sync"

// ResetSetupLogOnceForTests lets tests run SetupLogger more than once.
func ResetSetupLogOnceForTests() {
	setupLogOnce = sync.Once{}
}
