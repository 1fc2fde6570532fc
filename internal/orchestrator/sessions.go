package orchestrator

import (
	"sort"
	"sync"
	"time"

	"braind/pkg/types"
)

// defaultSessionID is used when a request does not name a session.
const defaultSessionID = "default"

type session struct {
	requests int64
	lastSeen time.Time
}

// sessionTracker records per-session usage for the status view.
type sessionTracker struct {
	mu       sync.Mutex
	sessions map[string]*session
}

func newSessionTracker() *sessionTracker {
	return &sessionTracker{sessions: make(map[string]*session)}
}

func (t *sessionTracker) touch(id string) {
	if id == "" {
		id = defaultSessionID
	}
	t.mu.Lock()
	s := t.sessions[id]
	if s == nil {
		s = &session{}
		t.sessions[id] = s
	}
	s.requests++
	s.lastSeen = time.Now()
	t.mu.Unlock()
}

func (t *sessionTracker) status() []types.SessionStatus {
	t.mu.Lock()
	out := make([]types.SessionStatus, 0, len(t.sessions))
	for id, s := range t.sessions {
		out = append(out, types.SessionStatus{
			SessionID: id,
			Requests:  s.requests,
			LastSeen:  s.lastSeen.Unix(),
		})
	}
	t.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].SessionID < out[j].SessionID })
	return out
}
