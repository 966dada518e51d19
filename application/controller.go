package application

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"skirmish/config"
	"skirmish/domain"
	"skirmish/utils"
)

type Clock interface {
	Now() time.Time
	Since(time.Time) time.Duration
}

type MetricsRecorder interface {
	RecordLatency(ctx context.Context, endpoint string, duration time.Duration)
	IncrementCounter(ctx context.Context, name string, delta int)
}

type systemClock struct{}

func (systemClock) Now() time.Time                  { return time.Now() }
func (systemClock) Since(t time.Time) time.Duration { return time.Since(t) }

type nopMetrics struct{}

func (nopMetrics) RecordLatency(context.Context, string, time.Duration) {}
func (nopMetrics) IncrementCounter(context.Context, string, int)        {}

type Option func(*Controller)

func WithRandom(r domain.Random) Option { return func(c *Controller) { c.rng = r } }

func WithClock(clock Clock) Option { return func(c *Controller) { c.clock = clock } }

func WithMetrics(m MetricsRecorder) Option { return func(c *Controller) { c.metrics = m } }

func WithLogger(l *slog.Logger) Option { return func(c *Controller) { c.logger = l } }

// Controller は 1 tick 分のスナップショットから全操作ユニットの命令を組み立てます。
//
//	World.Update → 判断（ユニット id 昇順、単一 goroutine）→ 速度計画（並列）→ 命令の組み立てと描画
type Controller struct {
	constants *domain.Constants
	tuning    config.Tuning

	world     *World
	targeting *Targeting
	planner   *Planner
	arbiter   *Arbiter
	policy    Policy

	rng     domain.Random
	clock   Clock
	metrics MetricsRecorder
	logger  *slog.Logger
}

func NewController(constants *domain.Constants, tuning config.Tuning, opts ...Option) *Controller {
	c := &Controller{
		constants: constants,
		tuning:    tuning,
		policy:    PolicyFromName(tuning.PlannerPolicy),
		clock:     systemClock{},
		metrics:   nopMetrics{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.rng == nil {
		c.rng = domain.NewRandom(uint64(time.Now().UnixNano()))
	}

	c.world = NewWorld(constants, tuning)
	c.targeting = NewTargeting(c.world)
	c.planner = NewPlanner(c.world)
	c.arbiter = NewArbiter(c.world, c.targeting, c.rng)
	return c
}

func (c *Controller) World() *World     { return c.world }
func (c *Controller) Arbiter() *Arbiter { return c.arbiter }

// GetOrder は game に対する命令を返します。debug が nil なら何も描画しません。
func (c *Controller) GetOrder(ctx context.Context, game *domain.Game, debug domain.DebugSink) domain.Order {
	start := c.clock.Now()
	defer c.record(ctx, start)
	if debug == nil {
		debug = domain.NopDebug{}
	}

	c.world.Update(game)
	c.arbiter.Sync()

	units := c.world.MyUnits()
	decisions := make([]Decision, len(units))
	for i, u := range units {
		decisions[i] = c.arbiter.Decide(u)
		if d := decisions[i]; d.Prev != d.State {
			c.logger.DebugContext(ctx, "strategy transition",
				"tick", game.CurrentTick,
				"unit", u.ID,
				"from", d.Prev,
				"to", d.State,
				"need", d.Need,
			)
		}
	}

	plans := make([]Plan, len(units))
	soft := time.Duration(float64(c.tuning.TickBudget) * c.tuning.BudgetSoftFraction)
	var degraded atomic.Int32

	var g errgroup.Group
	g.SetLimit(c.tuning.PlannerWorkers)
	for i := range units {
		g.Go(func() error {
			policy := c.policy
			if c.clock.Since(start) > soft {
				policy = PolicyFirstValid
				degraded.Add(1)
			}
			plans[i] = c.planner.Plan(units[i], decisions[i].Desired, decisions[i].Goal, policy)
			return nil
		})
	}
	// Plan は失敗しないので Wait は常に nil を返す
	g.Wait()

	if n := int(degraded.Load()); n > 0 {
		c.logger.WarnContext(ctx, "tick budget exceeded, planning with first-valid policy",
			"tick", game.CurrentTick,
			"units", n,
			"elapsed", c.clock.Since(start),
		)
		c.metrics.IncrementCounter(ctx, "planner.degraded", n)
	}

	order := domain.NewOrder()
	for i, u := range units {
		order.Units[u.ID] = c.assemble(u, decisions[i], plans[i])
		drawDecision(debug, u, decisions[i], plans[i], c.constants.UnitRadius)
	}
	return order
}

// assemble は有限でない速度・向きを、停止と現在の向きに置き換えます。
func (c *Controller) assemble(u *UnitRecord, d Decision, p Plan) domain.UnitOrder {
	facing := utils.FiniteOr(d.Facing, u.Direction)
	if facing.IsZero() {
		facing = u.Direction
	}
	return domain.UnitOrder{
		TargetVelocity:  utils.FiniteOr(p.Velocity, domain.Vec2{}),
		TargetDirection: facing,
		Action:          d.Action,
	}
}

func (c *Controller) record(ctx context.Context, started time.Time) {
	c.metrics.RecordLatency(ctx, "tick", c.clock.Since(started))
	c.metrics.IncrementCounter(ctx, "ticks", 1)
}
