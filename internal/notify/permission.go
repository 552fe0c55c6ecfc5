// Package notify gates settlement notifications behind a user permission.
package notify

import (
	"sync"

	"goanalytics/domain/analysis"
	"goanalytics/ports"
)

// State is the user's answer to the notification permission prompt
type State string

const (
	StateDefault State = "default" // not asked yet, or asked without an answer
	StateGranted State = "granted"
	StateDenied  State = "denied"
)

// Permission holds the notification permission. The state is resolved lazily
// by calling the request func on first access; Reset forgets it so the next
// access asks again.
type Permission struct {
	mu       sync.Mutex
	request  func() State
	state    State
	resolved bool
}

// NewPermission creates a permission resolved by request
func NewPermission(request func() State) *Permission {
	if request == nil {
		request = func() State { return StateDefault }
	}
	return &Permission{request: request}
}

// Fixed returns a request func that always answers granted or denied
func Fixed(granted bool) func() State {
	return func() State {
		if granted {
			return StateGranted
		}
		return StateDenied
	}
}

// State returns the current state, resolving it on first access
func (p *Permission) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.resolved {
		p.state = p.request()
		// An unanswered prompt is asked again next time
		p.resolved = p.state != StateDefault
	}
	return p.state
}

// Set records an explicit answer
func (p *Permission) Set(granted bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = Fixed(granted)()
	p.resolved = true
}

// Reset forgets the resolved state
func (p *Permission) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = StateDefault
	p.resolved = false
}

var (
	processOnce sync.Once
	process     *Permission
)

// Process returns the process-wide permission, created on first call with an
// always-unanswered request. Callers that know the answer call Set.
func Process() *Permission {
	processOnce.Do(func() {
		process = NewPermission(nil)
	})
	return process
}

// Gate forwards notifications to next only while permission is granted
type Gate struct {
	next       ports.NotificationSink
	permission *Permission
}

// NewGate wraps next
func NewGate(next ports.NotificationSink, permission *Permission) *Gate {
	return &Gate{next: next, permission: permission}
}

// Notify implements ports.NotificationSink
func (g *Gate) Notify(n analysis.Notification) {
	if g.next == nil || g.permission.State() != StateGranted {
		return
	}
	g.next.Notify(n)
}
