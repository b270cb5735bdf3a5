//go:generate mockgen -package=mocks -destination=../mocks/mock_logger.go netmonsim/internal/logging Logger

package logging

// Logger is the structured logger components take. Key-value pairs follow
// the message.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	With(keysAndValues ...interface{}) Logger
}
