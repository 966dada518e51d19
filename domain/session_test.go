package domain

import (
	"testing"
	"time"
)

type manualClock struct{ t time.Time }

func (c *manualClock) now() time.Time          { return c.t }
func (c *manualClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestNewSession_InitializesState(t *testing.T) {
	s := NewSession()

	if s.ID == "" {
		t.Errorf("ID is empty")
	}
	if s.lastRead.Load() == 0 || s.lastWrite.Load() == 0 {
		t.Errorf("activity timestamps are not initialized")
	}
	if s.LastTick() != -1 {
		t.Errorf("LastTick = %d, want -1", s.LastTick())
	}
	if s.CloseReason() != CloseNone || s.IsClosed() {
		t.Errorf("new session is closed: %v", s.CloseReason())
	}
}

func TestSession_ObserveTickRejectsOldTicks(t *testing.T) {
	s := NewSession()

	if !s.ObserveTick(0) {
		t.Fatal("tick 0 should be accepted")
	}
	if !s.ObserveTick(5) {
		t.Fatal("tick 5 should be accepted")
	}
	if s.ObserveTick(5) {
		t.Error("duplicate tick 5 should be rejected")
	}
	if s.ObserveTick(3) {
		t.Error("older tick 3 should be rejected")
	}
	if s.LastTick() != 5 {
		t.Errorf("LastTick = %d, want 5", s.LastTick())
	}
	if accepted, dropped := s.TickStats(); accepted != 2 || dropped != 2 {
		t.Errorf("TickStats = %d, %d; want 2, 2", accepted, dropped)
	}
}

func TestSession_IsIdle(t *testing.T) {
	clock := &manualClock{t: time.Unix(1000, 0)}
	s := newSessionWithClock(clock.now)

	if idle, reason := s.IsIdle(0); idle || reason != IdleDisabled {
		t.Errorf("IsIdle(0) = %v, %v; want false, disabled", idle, reason)
	}
	if idle, _ := s.IsIdle(time.Second); idle {
		t.Error("fresh session reported idle")
	}

	clock.advance(2 * time.Second)
	s.TouchWrite()

	idle, reason := s.IsIdle(time.Second)
	if !idle {
		t.Fatal("expected idle session")
	}
	if !reason.Has(IdleRead) || reason.Has(IdleWrite) {
		t.Errorf("reason = %v, want read", reason)
	}

	clock.advance(2 * time.Second)
	if _, reason := s.IsIdle(time.Second); reason.String() != "read|write" {
		t.Errorf("reason = %q, want read|write", reason.String())
	}

	s.TouchRead()
	s.TouchWrite()
	if idle, reason := s.IsIdle(time.Second); idle {
		t.Errorf("IsIdle after touch = true, %v", reason)
	}
}

func TestSession_CloseOnce(t *testing.T) {
	s := NewSession()

	if !s.Close(CloseFinished) {
		t.Fatal("first Close should succeed")
	}
	if s.Close(CloseShutdown) {
		t.Error("second Close should be ignored")
	}
	if s.CloseReason() != CloseFinished {
		t.Errorf("CloseReason = %v, want finished", s.CloseReason())
	}
	if !s.IsClosed() {
		t.Error("session should be closed")
	}
	if got := CloseReason(42).String(); got != "unknown(42)" {
		t.Errorf("CloseReason(42).String() = %q", got)
	}
}
