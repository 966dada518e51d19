package handler

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"
)

var (
	ErrNoHandler      = errors.New("loop: handler is required")
	ErrAlreadyStarted = errors.New("loop: start called multiple times")
	ErrNotStarted     = errors.New("loop: not started")
	ErrStopped        = errors.New("loop: stopped")
)

// Handler はループに投入された要求を処理します。
type Handler[T any] interface {
	Handle(ctx context.Context, req T) error
}

// HandlerFunc は関数を Handler として使うための型です。
type HandlerFunc[T any] func(ctx context.Context, req T) error

func (f HandlerFunc[T]) Handle(ctx context.Context, req T) error { return f(ctx, req) }

// Config はループの設定です。
type Config[T any] struct {
	Handler   Handler[T]
	QueueSize int
	Logger    *slog.Logger
	// OnError が nil でなければ、ハンドラのエラーを受け取ります。nil ならログだけ出します。
	OnError func(error)
}

// Loop は要求を単一の goroutine でハンドラに渡します。
// tick の判断はこのループ上で順に実行されるため、World や Arbiter の状態に排他は要りません。
type Loop[T any] struct {
	handler Handler[T]
	queue   chan T
	logger  *slog.Logger
	onError func(error)

	started atomic.Bool
	stopped atomic.Bool

	done chan struct{}
}

func New[T any](cfg Config[T]) (*Loop[T], error) {
	if cfg.Handler == nil {
		return nil, ErrNoHandler
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 1024
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop[T]{
		handler: cfg.Handler,
		queue:   make(chan T, queueSize),
		logger:  logger,
		onError: cfg.OnError,
		done:    make(chan struct{}),
	}, nil
}

// Start はループを起動します。一度だけ呼べます。
func (l *Loop[T]) Start(ctx context.Context) error {
	if !l.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	go l.run(ctx)
	return nil
}

func (l *Loop[T]) run(ctx context.Context) {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			l.logger.DebugContext(ctx, "loop: context cancelled, shutting down", "err", ctx.Err())
			return
		case req, ok := <-l.queue:
			if !ok {
				l.logger.DebugContext(ctx, "loop: queue closed, exiting")
				return
			}
			if err := l.handler.Handle(ctx, req); err != nil {
				l.logger.WarnContext(ctx, "loop: handler error", "err", err)
				if l.onError != nil {
					l.onError(err)
				}
			}
		}
	}
}

// Submit は要求をキューに積みます。満杯ならコンテキストが終わるまで待ちます。
func (l *Loop[T]) Submit(ctx context.Context, req T) error {
	if !l.started.Load() {
		return ErrNotStarted
	}
	if l.stopped.Load() {
		return ErrStopped
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case l.queue <- req:
		return nil
	}
}

// Len は未処理の要求数です。
func (l *Loop[T]) Len() int { return len(l.queue) }

// Done はループが終わると閉じるチャネルです。
func (l *Loop[T]) Done() <-chan struct{} { return l.done }

// Stop はキューを閉じ、残りを処理し終えるのを待ちます。
func (l *Loop[T]) Stop(ctx context.Context) error {
	if !l.stopped.CompareAndSwap(false, true) {
		return ErrStopped
	}
	close(l.queue)
	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// DrainTimeout は timeout を上限に Stop します。
func (l *Loop[T]) DrainTimeout(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return l.Stop(ctx)
}
