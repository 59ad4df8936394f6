// Package notify is the fire-and-forget notification surface shown to the
// cashier. Notifications never affect control flow.
package notify

import "log"

type Notifier interface {
	Info(msg string)
	Success(msg string)
	Error(msg string)
}

// Logger writes notifications to a log.Logger.
type Logger struct {
	logger *log.Logger
}

func NewLogger(logger *log.Logger) *Logger {
	return &Logger{logger: logger}
}

func (n *Logger) Info(msg string)    { n.logger.Printf("info: %s", msg) }
func (n *Logger) Success(msg string) { n.logger.Printf("success: %s", msg) }
func (n *Logger) Error(msg string)   { n.logger.Printf("error: %s", msg) }

// Discard drops all notifications; used in tests.
type Discard struct{}

func (Discard) Info(string)    {}
func (Discard) Success(string) {}
func (Discard) Error(string)   {}
