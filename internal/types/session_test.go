package types

import (
	"testing"
	"time"
)

func TestStoreEventAssignsIncreasingIDs(t *testing.T) {
	s := NewSession("test")
	defer s.Close()

	first := s.StoreEvent("a")
	second := s.StoreEvent("b")
	if first != 1 || second != 2 {
		t.Errorf("event IDs = %d, %d, want 1, 2", first, second)
	}
}

func TestGetEventsAfterReplaysOnlyMissed(t *testing.T) {
	s := NewSession("test")
	defer s.Close()

	for i := 0; i < 5; i++ {
		s.StoreEvent(i)
	}

	missed := s.GetEventsAfter(3)
	if len(missed) != 2 {
		t.Fatalf("GetEventsAfter(3) returned %d events, want 2", len(missed))
	}
	if missed[0].ID != 4 || missed[1].ID != 5 {
		t.Errorf("replay IDs = %d, %d, want 4, 5", missed[0].ID, missed[1].ID)
	}
}

func TestStoreEventTrimsOldest(t *testing.T) {
	s := NewSession("test")
	defer s.Close()

	for i := 0; i < maxStoredEvents+10; i++ {
		s.StoreEvent(i)
	}

	all := s.GetEventsAfter(0)
	if len(all) != maxStoredEvents {
		t.Errorf("buffer holds %d events, want %d", len(all), maxStoredEvents)
	}
	// Counter keeps climbing even after trimming.
	if all[len(all)-1].ID != int64(maxStoredEvents+10) {
		t.Errorf("last event ID = %d, want %d", all[len(all)-1].ID, maxStoredEvents+10)
	}
}

func TestSessionManagerLifecycle(t *testing.T) {
	sm := NewSessionManager()

	id := sm.CreateSession()
	if id == "" {
		t.Fatal("CreateSession returned empty ID")
	}

	session, ok := sm.GetSession(id)
	if !ok || session.ID != id {
		t.Fatalf("GetSession(%q) = %v, %v", id, session, ok)
	}

	sm.RemoveSession(id)
	if _, ok := sm.GetSession(id); ok {
		t.Error("session still present after RemoveSession")
	}
}

func TestCleanupExpiredSessions(t *testing.T) {
	sm := NewSessionManager()

	stale := sm.CreateSession()
	session, _ := sm.GetSession(stale)
	session.mu.Lock()
	session.LastActivity = time.Now().Add(-time.Hour)
	session.mu.Unlock()

	fresh := sm.CreateSession()

	sm.CleanupExpiredSessions(30 * time.Minute)

	if _, ok := sm.GetSession(stale); ok {
		t.Error("stale session survived cleanup")
	}
	if _, ok := sm.GetSession(fresh); !ok {
		t.Error("fresh session removed by cleanup")
	}
}
