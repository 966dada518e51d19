package application

import (
	"math"

	"skirmish/domain"
)

// Policy は候補方向から速度を選ぶ方針です。
type Policy uint8

const (
	// PolicyScored は弾と安全地帯外の減点が最も少ない候補を選びます。
	PolicyScored Policy = iota
	// PolicyFirstValid は一度も違反しなかった最初の候補を選びます。
	PolicyFirstValid
)

func (p Policy) String() string {
	if p == PolicyFirstValid {
		return "first_valid"
	}
	return "scored"
}

// PolicyFromName は設定値の名前を Policy に変換します。知らない名前は PolicyScored です。
func PolicyFromName(name string) Policy {
	if name == "first_valid" {
		return PolicyFirstValid
	}
	return PolicyScored
}

// Plan は計画結果です。Fallback が真なら、どの候補も残らず desired をそのまま返しています。
type Plan struct {
	Velocity domain.Vec2
	Offset   float64
	Score    int
	Fallback bool
	// End はシミュレーションを終えた位置です。
	End domain.Vec2
}

// Planner は希望する移動方向を回転させた候補を、一定 tick 先まで前進シミュレートして速度を選びます。
type Planner struct {
	world *World
}

func NewPlanner(world *World) *Planner {
	return &Planner{world: world}
}

type moving struct {
	pos, step domain.Vec2
	steps     int // 0 なら寿命なし
}

type planEnv struct {
	subDt     float64
	steps     int
	wallSteps int
	unitSteps int
	zoneFrom  int
	radius    float64
	hitRadius float64
	walls     []domain.Obstacle
	units     []moving
	shots     []moving
	goal      domain.Vec2
	arriveSq  float64
	zone      domain.Zone
}

type outcome struct {
	rejected bool // 障害物かユニットに当たる
	violated bool // 弾か安全地帯外に触れた
	score    int
	end      domain.Vec2
}

// Plan は u の希望速度 desired と目標 goal から、実際に出す速度を決めます。
// desired はワールド座標の速度で、向きだけが候補生成に使われます。
func (p *Planner) Plan(u *UnitRecord, desired, goal domain.Vec2, policy Policy) Plan {
	if desired.IsZero() {
		return Plan{End: u.Position}
	}
	env := p.environment(u, goal)
	heading := desired.Normalize()
	step := p.world.tuning.PlannerAngleStep

	var best Plan
	found := false
	for offset := 0.0; offset < 360; offset += step {
		dir := heading.Rotate(offset)
		vel := dir.Scale(p.speed(u, dir))
		o := p.simulate(u.Position, vel, env)
		if o.rejected {
			continue
		}
		switch policy {
		case PolicyFirstValid:
			if !o.violated {
				return Plan{Velocity: vel, Offset: offset, End: o.end}
			}
		default:
			if !found || o.score > best.Score {
				best = Plan{Velocity: vel, Offset: offset, Score: o.score, End: o.end}
				found = true
			}
		}
	}
	if !found {
		return Plan{Velocity: desired, Fallback: true, End: u.Position}
	}
	return best
}

// speed は向きを変える角度が大きいほど遅くなる移動速度です。
func (p *Planner) speed(u *UnitRecord, dir domain.Vec2) float64 {
	c := p.world.constants
	if u.Spawning() {
		return c.SpawnMovementSpeed
	}
	angle := domain.AngleBetween(dir, u.Direction)
	s := c.MaxUnitForwardSpeed * (1 - (1-p.world.tuning.OpposedSpeedFactor)*angle/180)
	if u.Weapon != nil {
		if w, ok := c.Weapon(*u.Weapon); ok {
			s *= domain.Lerp(1, w.AimMovementSpeedModifier, u.Aim)
		}
	}
	return s
}

func (p *Planner) environment(u *UnitRecord, goal domain.Vec2) *planEnv {
	c := p.world.constants
	tuning := p.world.tuning

	steps := tuning.PlannerHorizonTicks * tuning.PlannerSubSteps
	env := &planEnv{
		subDt:     c.TickDuration() / float64(tuning.PlannerSubSteps),
		steps:     steps,
		wallSteps: int(tuning.ObstacleWindow * float64(steps)),
		unitSteps: int(tuning.UnitWindow * float64(steps)),
		zoneFrom:  int(tuning.ZoneGraceWindow * float64(steps)),
		radius:    c.UnitRadius,
		hitRadius: c.UnitRadius * tuning.ProjectileMargin,
		goal:      goal,
		arriveSq:  tuning.ArrivalTolerance * tuning.ArrivalTolerance,
		zone:      p.world.zone,
	}

	for _, i := range p.world.NearestObstacles(u.ID, tuning.PlannerObstacleCount) {
		env.walls = append(env.walls, c.Obstacles[i])
	}
	for _, o := range p.world.MyUnits() {
		if o.ID != u.ID {
			env.units = append(env.units, moving{pos: o.Position, step: o.Velocity.Scale(env.subDt)})
		}
	}
	for _, h := range p.world.Enemies() {
		if p.world.Fresh(h) {
			env.units = append(env.units, moving{pos: h.Position, step: h.Velocity.Scale(env.subDt)})
		}
	}
	for _, pr := range p.world.Projectiles() {
		if pr.ShooterID == u.ID {
			continue
		}
		life := int(math.Ceil(pr.LifeTime / env.subDt))
		if life <= 0 {
			continue
		}
		env.shots = append(env.shots, moving{pos: pr.Position, step: pr.Velocity.Scale(env.subDt), steps: life})
	}
	return env
}

// simulate は速度 vel で等速移動したときの違反を数えます。
func (p *Planner) simulate(start, vel domain.Vec2, env *planEnv) outcome {
	var o outcome
	step := vel.Scale(env.subDt)
	pos := start
	hit := make([]bool, len(env.shots))
	minSep := 2 * env.radius

	for k := 1; k <= env.steps; k++ {
		prev := pos
		pos = pos.Add(step)

		if domain.DistanceSquared(pos, env.goal) <= env.arriveSq {
			break
		}

		for i, s := range env.shots {
			if hit[i] || (s.steps > 0 && k > s.steps) {
				continue
			}
			from := s.pos.Add(s.step.Scale(float64(k - 1)))
			if domain.IntersectCircleSegment(from, from.Add(s.step), pos, env.hitRadius) {
				hit[i] = true
				o.violated = true
				o.score--
			}
		}

		// 既に接している相手から離れる動きは許す
		if k <= env.wallSteps {
			for _, w := range env.walls {
				if approaching(prev, pos, w.Position, w.Position, w.Radius+env.radius) {
					o.rejected = true
					return o
				}
			}
		}
		if k <= env.unitSteps {
			for _, u := range env.units {
				before := u.pos.Add(u.step.Scale(float64(k - 1)))
				after := before.Add(u.step)
				if approaching(prev, pos, before, after, minSep) {
					o.rejected = true
					return o
				}
			}
		}

		if k > env.zoneFrom && !env.zone.Contains(pos) {
			o.violated = true
			o.score--
		}
	}
	o.end = pos
	return o
}

// approaching は距離 limit の内側に入り、かつ前より近づいているかを返します。
func approaching(prev, pos, otherPrev, other domain.Vec2, limit float64) bool {
	d := domain.DistanceSquared(pos, other)
	if d >= limit*limit {
		return false
	}
	return d < domain.DistanceSquared(prev, otherPrev)
}
