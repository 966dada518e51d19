package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"skirmish/domain"
	"skirmish/internal/handler"
	"skirmish/protocol"
)

var (
	// ErrInitializationFailed は必須の設定が欠けている場合に返されるエラーです。
	ErrInitializationFailed = errors.New("service: failed to initialize match")
	// ErrBackpressure は書き込みチャネルが満杯の場合に返されるエラーです。
	ErrBackpressure = errors.New("service: write channel is full")
	// ErrJudgeIdle はジャッジから一定時間フレームが届かなかった場合に返されるエラーです。
	ErrJudgeIdle = errors.New("service: judge is idle")
	// ErrTransport は接続の読み書きに失敗した場合に返されるエラーです。
	ErrTransport = errors.New("service: transport failure")
)

// WebSocket の close code です。
const (
	closeNormal        int32 = 1000
	closeGoingAway     int32 = 1001
	closeInternalError int32 = 1011
)

// Decider は 1 tick 分のスナップショットから命令を作ります。application.Controller が実装します。
type Decider interface {
	GetOrder(ctx context.Context, game *domain.Game, debug domain.DebugSink) domain.Order
}

// MatchConfig は 1 試合分の接続設定です。
type MatchConfig struct {
	Transport domain.Transport
	// NewDecider は定数フレームを受け取った時点で一度だけ呼ばれます。
	NewDecider        func(constants *domain.Constants) (Decider, error)
	IdleTimeout       time.Duration
	IdleCheckInterval time.Duration
	// Debug が真なら tick ごとのデバッグ描画をジャッジへ送ります。
	Debug     bool
	QueueSize int
	Logger    *slog.Logger
}

// Match はジャッジとの 1 試合分の送受信を管理します。
// 受信・送信・監視の各 goroutine と、判断を順に実行する単一の tick ループで構成されます。
type Match struct {
	cfg     MatchConfig
	session *domain.Session
	logger  *slog.Logger

	writeCh chan []byte
	cancel  context.CancelFunc

	// tick ループ上でだけ触ります
	decider Decider
	debug   *protocol.DebugRecorder

	loop *handler.Loop[*domain.Game]
}

func NewMatch(cfg MatchConfig) (*Match, error) {
	if cfg.Transport == nil {
		return nil, fmt.Errorf("%w: transport is required", ErrInitializationFailed)
	}
	if cfg.NewDecider == nil {
		return nil, fmt.Errorf("%w: decider factory is required", ErrInitializationFailed)
	}
	if cfg.IdleCheckInterval <= 0 {
		cfg.IdleCheckInterval = time.Second
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	session := domain.NewSession()
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("matchID", session.ID)

	m := &Match{
		cfg:     cfg,
		session: session,
		logger:  logger,
		writeCh: make(chan []byte, cfg.QueueSize),
	}
	if cfg.Debug {
		m.debug = protocol.NewDebugRecorder()
	}
	loop, err := handler.New(handler.Config[*domain.Game]{
		Handler:   handler.HandlerFunc[*domain.Game](m.handleTick),
		QueueSize: cfg.QueueSize,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInitializationFailed, err)
	}
	m.loop = loop
	return m, nil
}

func (m *Match) Session() *domain.Session { return m.session }

// Run は試合終了・切断・ジャッジの無応答・ctx の終了のいずれかまでブロックします。
// 試合が正常に終わった場合と ctx が終了した場合は nil を返します。
func (m *Match) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	m.cancel = cancel

	eg, egCtx := errgroup.WithContext(runCtx)
	if err := m.loop.Start(egCtx); err != nil {
		return err
	}
	eg.Go(func() error {
		return m.readLoop(egCtx)
	})
	eg.Go(func() error {
		return m.writeLoop(egCtx)
	})
	if m.cfg.IdleTimeout > 0 {
		eg.Go(func() error {
			return m.watchdogLoop(egCtx)
		})
	}

	err := eg.Wait()
	<-m.loop.Done()

	if ctx.Err() != nil {
		m.session.Close(domain.CloseShutdown)
	}
	reason := m.session.CloseReason()
	code, text := closeCode(reason)
	if cerr := m.cfg.Transport.Close(code, text); cerr != nil {
		m.logger.DebugContext(ctx, "close transport", "err", cerr)
	}
	accepted, dropped := m.session.TickStats()
	m.logger.InfoContext(ctx, "match ended",
		"reason", reason,
		"lastTick", m.session.LastTick(),
		"ticks", accepted,
		"staleDropped", dropped,
	)

	if reason == domain.CloseShutdown || reason == domain.CloseFinished {
		return nil
	}
	return err
}

func closeCode(reason domain.CloseReason) (int32, string) {
	switch reason {
	case domain.CloseFinished:
		return closeNormal, "finished"
	case domain.CloseShutdown:
		return closeGoingAway, "shutdown"
	default:
		return closeInternalError, reason.String()
	}
}

func (m *Match) finish(reason domain.CloseReason) {
	if m.session.Close(reason) {
		m.cancel()
	}
}

func (m *Match) readLoop(ctx context.Context) error {
	for {
		data, err := m.cfg.Transport.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			m.session.Close(domain.CloseTransportError)
			return fmt.Errorf("%w: read: %v", ErrTransport, err)
		}
		m.session.TouchRead()

		msg, err := protocol.DecodeServerMessage(data)
		if err != nil {
			m.logger.WarnContext(ctx, "failed to decode frame", "err", err, "size", len(data))
			continue
		}
		switch msg.Kind {
		case protocol.FrameConstants:
			m.handleConstants(ctx, msg.Constants)
		case protocol.FrameSnapshot:
			m.handleSnapshot(ctx, msg.Game)
		case protocol.FrameFinish:
			m.logger.InfoContext(ctx, "judge finished the match")
			m.finish(domain.CloseFinished)
			return nil
		}
	}
}

// handleConstants は最初の定数フレームで判断器を作ります。二度目以降は無視します。
func (m *Match) handleConstants(ctx context.Context, constants *domain.Constants) {
	if m.decider != nil {
		m.logger.WarnContext(ctx, "duplicate constants frame ignored")
		return
	}
	decider, err := m.cfg.NewDecider(constants)
	if err != nil {
		m.logger.ErrorContext(ctx, "failed to create decider", "err", err)
		return
	}
	m.decider = decider
	m.logger.InfoContext(ctx, "constants received",
		"teamSize", constants.TeamSize,
		"obstacles", len(constants.Obstacles),
		"ticksPerSecond", constants.TicksPerSecond,
	)
}

func (m *Match) handleSnapshot(ctx context.Context, game *domain.Game) {
	if m.decider == nil {
		m.logger.WarnContext(ctx, "snapshot before constants dropped", "tick", game.CurrentTick)
		return
	}
	if !m.session.ObserveTick(game.CurrentTick) {
		m.logger.DebugContext(ctx, "stale snapshot dropped", "tick", game.CurrentTick, "lastTick", m.session.LastTick())
		return
	}
	if err := m.loop.Submit(ctx, game); err != nil && ctx.Err() == nil {
		m.logger.WarnContext(ctx, "failed to queue snapshot", "tick", game.CurrentTick, "err", err)
	}
}

// handleTick は tick ループ上で実行されます。
func (m *Match) handleTick(ctx context.Context, game *domain.Game) error {
	// 処理待ちの間に新しいスナップショットが届いていれば、古い方の命令は出しません。
	if last := m.session.LastTick(); game.CurrentTick < last {
		m.logger.DebugContext(ctx, "superseded snapshot skipped", "tick", game.CurrentTick, "lastTick", last)
		return nil
	}

	var sink domain.DebugSink = domain.NopDebug{}
	if m.debug != nil {
		sink = m.debug
	}
	order := m.decider.GetOrder(ctx, game, sink)

	data, err := protocol.EncodeOrder(game.CurrentTick, order)
	if err != nil {
		return fmt.Errorf("encode order for tick %d: %w", game.CurrentTick, err)
	}
	if err := m.send(data); err != nil {
		return fmt.Errorf("send order for tick %d: %w", game.CurrentTick, err)
	}

	if m.debug != nil && m.debug.Len() > 0 {
		frame, err := m.debug.Flush(game.CurrentTick)
		if err != nil {
			return fmt.Errorf("encode debug for tick %d: %w", game.CurrentTick, err)
		}
		if err := m.send(frame); err != nil {
			m.logger.DebugContext(ctx, "debug frame dropped", "tick", game.CurrentTick, "err", err)
		}
	}
	return nil
}

func (m *Match) send(data []byte) error {
	select {
	case m.writeCh <- data:
		return nil
	default:
		return ErrBackpressure
	}
}

func (m *Match) writeLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case data := <-m.writeCh:
			if err := m.cfg.Transport.Write(ctx, data); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				m.session.Close(domain.CloseTransportError)
				return fmt.Errorf("%w: write: %v", ErrTransport, err)
			}
			m.session.TouchWrite()
		}
	}
}

// watchdogLoop はジャッジからの受信が途絶えていないかを監視します。
// 命令はスナップショットへの応答なので、送信側の無通信は見ません。
func (m *Match) watchdogLoop(ctx context.Context) error {
	ticker := time.NewTicker(m.cfg.IdleCheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if idle, reason := m.session.IsIdle(m.cfg.IdleTimeout); idle && reason.Has(domain.IdleRead) {
				m.logger.WarnContext(ctx, "judge idle, closing match", "reason", reason, "timeout", m.cfg.IdleTimeout)
				m.session.Close(domain.CloseJudgeIdle)
				return ErrJudgeIdle
			}
		}
	}
}
