package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	adapterwebsocket "skirmish/adapter/websocket"
	"skirmish/application"
	"skirmish/config"
	"skirmish/domain"
	"skirmish/service"
	"skirmish/utils"
)

func main() {
	var level slog.Level
	if err := level.UnmarshalText([]byte(utils.GetEnvDefault("LOG_LEVEL", "info"))); err != nil {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	judgeURL := utils.GetEnvDefault("JUDGE_URL", "ws://localhost:31001/bot")
	tuning, err := loadTuning(utils.GetEnvDefault("TUNING_PATH", ""))
	if err != nil {
		slog.Error("invalid tuning", "err", err)
		os.Exit(1)
	}
	if workers := utils.GetEnvInt("PLANNER_WORKERS", 0); workers > 0 {
		tuning.PlannerWorkers = workers
	}
	seed := uint64(utils.GetEnvInt("SEED", int(time.Now().UnixNano()&0x7fffffff)))

	slog.Info("starting bot", "judge", judgeURL, "seed", seed, "policy", tuning.PlannerPolicy, "workers", tuning.PlannerWorkers)
	runBot(ctx, judgeURL, tuning, seed)
	slog.Info("bot stopped")
}

func loadTuning(path string) (config.Tuning, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// runBot は試合が正常に終わるか、シグナルを受けるまで接続し直します。
func runBot(ctx context.Context, judgeURL string, tuning config.Tuning, seed uint64) {
	for match := 0; ; match++ {
		if ctx.Err() != nil {
			return
		}
		err := botSession(ctx, judgeURL, tuning, seed+uint64(match))
		if err == nil {
			return
		}
		if ctx.Err() != nil {
			return
		}
		slog.Warn("match session ended, reconnecting", "err", err)
		select {
		case <-ctx.Done():
			return
		case <-time.After(2 * time.Second):
		}
	}
}

func botSession(ctx context.Context, judgeURL string, tuning config.Tuning, seed uint64) error {
	tr, err := adapterwebsocket.Dial(ctx, judgeURL)
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "connected", "judge", judgeURL)

	m, err := service.NewMatch(service.MatchConfig{
		Transport: tr,
		NewDecider: func(constants *domain.Constants) (service.Decider, error) {
			return application.NewController(constants, tuning,
				application.WithRandom(domain.NewRandom(seed)),
			), nil
		},
		IdleTimeout:       time.Duration(utils.GetEnvInt("JUDGE_IDLE_SECONDS", 30)) * time.Second,
		IdleCheckInterval: time.Second,
		Debug:             utils.GetEnvDefault("DEBUG_DRAW", "") != "",
	})
	if err != nil {
		_ = tr.Close(1011, "init")
		return fmt.Errorf("new match: %w", err)
	}
	if err := m.Run(ctx); err != nil {
		return fmt.Errorf("match %s: %w", m.Session().ID, err)
	}
	return nil
}
