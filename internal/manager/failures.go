package manager

import "time"

// NoteFailure records an invocation failure for id. The handle stays Ready
// (the backend is loaded, it just erred); routing applies its cool-down via
// BackendDown. Failure times survive handle eviction.
func (m *Manager) NoteFailure(id string) {
	m.mu.Lock()
	m.failures[id] = time.Now()
	m.mu.Unlock()
	m.pub.Publish(Event{Name: EventInvokeFailed, BackendID: id})
}

// BackendDown reports whether id should be skipped by routing: its handle
// is in Failed state, or it failed within the cool-down window.
func (m *Manager) BackendDown(id string, coolDown time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if h := m.handles[id]; h != nil && h.state == StateFailed {
		return true
	}
	if at, ok := m.failures[id]; ok && coolDown > 0 && time.Since(at) < coolDown {
		return true
	}
	return false
}
