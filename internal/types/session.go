package types

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// maxStoredEvents bounds the per-session replay buffer.
const maxStoredEvents = 100

// Session is one MCP client session. Events sent to the client are
// kept in a bounded buffer so a reconnecting client can replay what
// it missed via Last-Event-Id.
type Session struct {
	ID           string
	CreatedAt    time.Time
	LastActivity time.Time
	SSEChan      chan map[string]interface{}

	mu           sync.RWMutex
	eventCounter int64
	storedEvents []StoredEvent
}

// StoredEvent is one buffered event with its replay ID.
type StoredEvent struct {
	ID   int64
	Data interface{}
}

// NewSession creates a session with the given ID.
func NewSession(id string) *Session {
	return &Session{
		ID:           id,
		CreatedAt:    time.Now(),
		LastActivity: time.Now(),
		SSEChan:      make(chan map[string]interface{}, 100),
	}
}

// UpdateActivity bumps the last-activity timestamp.
func (s *Session) UpdateActivity() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastActivity = time.Now()
}

// StoreEvent buffers an event and returns its replay ID. The oldest
// events are dropped once the buffer exceeds its bound.
func (s *Session) StoreEvent(data interface{}) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.eventCounter++
	s.storedEvents = append(s.storedEvents, StoredEvent{
		ID:   s.eventCounter,
		Data: data,
	})
	if len(s.storedEvents) > maxStoredEvents {
		s.storedEvents = s.storedEvents[len(s.storedEvents)-maxStoredEvents:]
	}
	return s.eventCounter
}

// GetEventsAfter returns the buffered events with IDs greater than
// lastEventID, oldest first.
func (s *Session) GetEventsAfter(lastEventID int64) []StoredEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []StoredEvent
	for _, event := range s.storedEvents {
		if event.ID > lastEventID {
			result = append(result, event)
		}
	}
	return result
}

// Close releases the session's channel.
func (s *Session) Close() {
	close(s.SSEChan)
}

// SessionManager tracks live sessions by ID.
type SessionManager struct {
	sessions map[string]*Session
	mu       sync.RWMutex
}

// NewSessionManager creates an empty manager.
func NewSessionManager() *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*Session),
	}
}

// CreateSession registers a new session and returns its ID.
func (sm *SessionManager) CreateSession() string {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sessionID := uuid.New().String()
	sm.sessions[sessionID] = NewSession(sessionID)
	return sessionID
}

// GetSession looks a session up and marks it active.
func (sm *SessionManager) GetSession(sessionID string) (*Session, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	session, exists := sm.sessions[sessionID]
	if exists {
		session.UpdateActivity()
	}
	return session, exists
}

// RemoveSession closes and forgets a session.
func (sm *SessionManager) RemoveSession(sessionID string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if session, exists := sm.sessions[sessionID]; exists {
		session.Close()
		delete(sm.sessions, sessionID)
	}
}

// CleanupExpiredSessions drops sessions idle longer than maxAge.
func (sm *SessionManager) CleanupExpiredSessions(maxAge time.Duration) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	now := time.Now()
	for sessionID, session := range sm.sessions {
		if now.Sub(session.LastActivity) > maxAge {
			session.Close()
			delete(sm.sessions, sessionID)
		}
	}
}
