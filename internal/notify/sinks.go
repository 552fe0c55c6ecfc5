package notify

import (
	"time"

	"goanalytics/domain/analysis"
	"goanalytics/internal"
	"goanalytics/ports"
)

// Fanout delivers every notification to each sink in order
type Fanout []ports.NotificationSink

// Notify implements ports.NotificationSink
func (f Fanout) Notify(n analysis.Notification) {
	for _, sink := range f {
		if sink != nil {
			sink.Notify(n)
		}
	}
}

// LogSink announces settlements through the logger
type LogSink struct {
	log *internal.Logger
}

// NewLogSink creates a sink that logs at INFO under [Notify]
func NewLogSink(logger *internal.Logger) *LogSink {
	if logger == nil {
		logger = internal.NewDefaultLogger()
	}
	return &LogSink{log: logger.With("Notify")}
}

// Notify implements ports.NotificationSink
func (s *LogSink) Notify(n analysis.Notification) {
	s.log.Info("%s", Title(n))
}

// Title renders the one-line text of a notification
func Title(n analysis.Notification) string {
	took := (time.Duration(n.DurationMillis) * time.Millisecond).Round(100 * time.Millisecond)
	switch n.Kind {
	case analysis.EventCompleted:
		return n.MethodDisplayName + " completed in " + took.String()
	case analysis.EventCancelled:
		return n.MethodDisplayName + " cancelled after " + took.String()
	default:
		msg := n.MethodDisplayName + " failed after " + took.String()
		if n.Message != "" {
			msg += ": " + n.Message
		}
		return msg
	}
}
