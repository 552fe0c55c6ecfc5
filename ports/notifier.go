package ports

import "goanalytics/domain/analysis"

// NotificationSink receives settlement notifications for the presentation layer.
// Notify must not block; sinks that fan out do so asynchronously.
type NotificationSink interface {
	Notify(n analysis.Notification)
}

// NotificationSinkFunc adapts a function to NotificationSink
type NotificationSinkFunc func(n analysis.Notification)

func (f NotificationSinkFunc) Notify(n analysis.Notification) { f(n) }
