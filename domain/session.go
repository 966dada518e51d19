package domain

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// CloseReason は試合セッションが閉じた理由です。
type CloseReason uint32

const (
	CloseNone CloseReason = iota
	CloseFinished
	CloseJudgeIdle
	CloseTransportError
	CloseShutdown
)

var closeReasonNames = [...]string{
	CloseNone:           "none",
	CloseFinished:       "finished",
	CloseJudgeIdle:      "judge_idle",
	CloseTransportError: "transport_error",
	CloseShutdown:       "shutdown",
}

func (r CloseReason) String() string {
	if int(r) < len(closeReasonNames) {
		return closeReasonNames[r]
	}
	return fmt.Sprintf("unknown(%d)", uint32(r))
}

// Session はジャッジとの 1 試合分の論理的な接続状態です。
// 受信・送信・tick ループの各 goroutine から触るため、状態は全て atomic で持ちます。
type Session struct {
	ID string

	now func() time.Time

	// 最後に読み書きした時刻（UnixNano）
	lastRead  atomic.Int64
	lastWrite atomic.Int64

	// スナップショットの tick の水位と、受理・破棄した数
	lastTick atomic.Int64
	accepted atomic.Int64
	dropped  atomic.Int64

	closed      atomic.Bool
	closeReason atomic.Uint32
}

func NewSession() *Session {
	return newSessionWithClock(time.Now)
}

func newSessionWithClock(now func() time.Time) *Session {
	s := &Session{
		ID:  uuid.NewString(),
		now: now,
	}
	started := now().UnixNano()
	s.lastRead.Store(started)
	s.lastWrite.Store(started)
	s.lastTick.Store(-1)
	return s
}

func (s *Session) TouchRead()  { s.lastRead.Store(s.now().UnixNano()) }
func (s *Session) TouchWrite() { s.lastWrite.Store(s.now().UnixNano()) }

// ObserveTick は tick が水位より新しければ水位を進めて true を返します。
// 同じか古い tick は破棄数に数えて false を返します。
func (s *Session) ObserveTick(tick int) bool {
	next := int64(tick)
	for {
		prev := s.lastTick.Load()
		if next <= prev {
			s.dropped.Add(1)
			return false
		}
		if s.lastTick.CompareAndSwap(prev, next) {
			s.accepted.Add(1)
			return true
		}
	}
}

// LastTick は最後に受理した tick です。未受信なら -1 です。
func (s *Session) LastTick() int { return int(s.lastTick.Load()) }

// TickStats は受理したスナップショットと、古くて捨てたスナップショットの数です。
func (s *Session) TickStats() (accepted, dropped int) {
	return int(s.accepted.Load()), int(s.dropped.Load())
}

// Close は最初の一回だけ理由を記録して true を返します。
func (s *Session) Close(reason CloseReason) bool {
	if !s.closed.CompareAndSwap(false, true) {
		return false
	}
	s.closeReason.Store(uint32(reason))
	return true
}

func (s *Session) CloseReason() CloseReason { return CloseReason(s.closeReason.Load()) }

func (s *Session) IsClosed() bool { return s.closed.Load() }

// IsIdle は timeout を超えて読み書きが無い方向を返します。timeout が 0 以下なら監視しません。
func (s *Session) IsIdle(timeout time.Duration) (bool, IdleReason) {
	if timeout <= 0 {
		return false, IdleDisabled
	}
	now := s.now()
	var reason IdleReason
	if stale(now, &s.lastRead, timeout) {
		reason |= IdleRead
	}
	if stale(now, &s.lastWrite, timeout) {
		reason |= IdleWrite
	}
	return reason != IdleNone, reason
}

func stale(now time.Time, last *atomic.Int64, timeout time.Duration) bool {
	return now.Sub(time.Unix(0, last.Load())) > timeout
}
