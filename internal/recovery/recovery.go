// internal/recovery/recovery.go
package recovery

import (
	"os"
	"runtime/debug"

	"github.com/sirupsen/logrus"
)

// HandlePanic should be deferred at the top of main() or goroutines.
// It logs panic details and exits with code 1.
func HandlePanic() {
	if r := recover(); r != nil {
		logrus.WithField("stack", string(debug.Stack())).Errorf("fatal: %v", r)
		os.Exit(1)
	}
}

// HandlePanicFunc logs panic details and calls the provided cleanup
// function before exiting.
func HandlePanicFunc(cleanup func()) {
	if r := recover(); r != nil {
		logrus.WithField("stack", string(debug.Stack())).Errorf("fatal: %v", r)
		if cleanup != nil {
			cleanup()
		}
		os.Exit(1)
	}
}
