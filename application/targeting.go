package application

import (
	"math"

	"skirmish/domain"
)

// Engagement は交戦の判断結果です。
type Engagement struct {
	TargetID int
	// Goal は敵の位置（古い敵なら最後に見た位置）です。
	Goal domain.Vec2
	// Facing は迎撃点に向けた照準方向です。
	Facing domain.Vec2
	// Desired は移動したい方向です。間合いの内側では敵に対して横向きになります。
	Desired domain.Vec2
	Shoot   bool
	Fresh   bool
}

// Targeting は交戦する敵を選び、今撃てば当たるかを予測します。
type Targeting struct {
	world *World
}

func NewTargeting(world *World) *Targeting {
	return &Targeting{world: world}
}

// Eligible は u が交戦できる状態かを返します。交戦中は撤退の閾値が下がります。
func (t *Targeting) Eligible(u *UnitRecord, s *StrategyState) bool {
	if !u.Armed() || u.Busy() || u.Spawning() {
		return false
	}
	threshold := t.world.tuning.EngageMinHealthShield
	if s.State == Engaging {
		threshold = t.world.tuning.KeepEngagingHealthShield
	}
	return u.Health+u.Shield > threshold
}

// TryEngage は交戦相手が居れば照準・移動・射撃可否を決めます。
// 交戦できなければ false を返し、呼び出し側は他の行動に移ります。
func (t *Targeting) TryEngage(u *UnitRecord, s *StrategyState) (Engagement, bool) {
	if !t.Eligible(u, s) {
		return Engagement{}, false
	}
	target, ok := t.SelectTarget(u)
	if !ok {
		return Engagement{}, false
	}

	weapon, _ := t.world.constants.Weapon(*u.Weapon)
	fresh := t.world.Fresh(target)

	e := Engagement{
		TargetID: target.ID,
		Goal:     target.Position,
		Fresh:    fresh,
	}
	toTarget := target.Position.Sub(u.Position)
	e.Facing = toTarget
	if fresh {
		e.Facing = leadDirection(u.Position, target.Position, target.Velocity, weapon.ProjectileSpeed)
		e.Shoot = t.PredictHit(u, target)
	}

	standoff := t.world.tuning.EngageStandoff
	if toTarget.LenSquared() < standoff*standoff {
		sign := s.StrafeSign
		if sign == 0 {
			sign = 1
		}
		e.Desired = toTarget.Normalize().Perp().Scale(sign)
	} else {
		e.Desired = toTarget.Normalize()
	}
	return e, true
}

// SelectTarget は重み付き距離が最小の敵を返します。
// この tick に見えている敵を優先し、居なければ記憶している敵から選びます。
func (t *Targeting) SelectTarget(u *UnitRecord) (*UnitRecord, bool) {
	weapon, ok := t.world.constants.Weapon(*u.Weapon)
	if !ok {
		return nil, false
	}
	reach := weapon.Range() * t.world.tuning.EngageRangeFactor
	reachSq := reach * reach

	var best, bestStale *UnitRecord
	bestScore, bestStaleScore := math.Inf(1), math.Inf(1)
	for _, h := range t.world.Enemies() {
		if h.Spawning() {
			continue
		}
		distSq, ok := u.DistSq[h.ID]
		if !ok || distSq > reachSq {
			continue
		}
		score := distSq / t.multiplier(u, h)
		if t.world.Fresh(h) {
			if score < bestScore {
				best, bestScore = h, score
			}
		} else if score < bestStaleScore {
			bestStale, bestStaleScore = h, score
		}
	}
	if best != nil {
		return best, true
	}
	return bestStale, bestStale != nil
}

// multiplier は弱っている敵と、格上の武器を撃てる敵ほど大きくなります。
func (t *Targeting) multiplier(u, h *UnitRecord) float64 {
	c := t.world.constants
	tuning := t.world.tuning

	m := 1.0
	if maxHS := c.UnitHealth + c.MaxShield; maxHS > 0 {
		m += tuning.LowHealthWeight * (1 - (h.Health+h.Shield)/maxHS)
	}
	if h.Weapon != nil && *h.Weapon > *u.Weapon && h.AmmoFor(*h.Weapon) > 0 {
		m += tuning.DangerWeight
	}
	return m
}

// PredictHit は今の向きで撃った弾が target に当たるかを、弾の寿命まで小刻みにシミュレートして判定します。
// 撃てない障害物か味方に先に当たる場合は外れとします。
func (t *Targeting) PredictHit(u *UnitRecord, target *UnitRecord) bool {
	c := t.world.constants
	tuning := t.world.tuning

	weapon, ok := c.Weapon(*u.Weapon)
	if !ok {
		return false
	}
	dir := u.Direction.Normalize()
	if dir.IsZero() {
		return false
	}

	sub := float64(tuning.ShotSubSteps)
	dt := c.TickDuration() / sub
	steps := int(math.Ceil(weapon.ProjectileLifeTime*c.TicksPerSecond)) * tuning.ShotSubSteps

	shot := u.Position.Add(dir.Scale(c.UnitRadius))
	shotStep := dir.Scale(weapon.ProjectileSpeed * dt)
	enemy := target.Position
	enemyStep := target.Velocity.Scale(dt)
	hitRadius := c.UnitRadius * tuning.HitTolerance

	var walls []domain.Obstacle
	for _, i := range t.world.NearestObstacles(u.ID, tuning.ShotObstacleCount) {
		if o := c.Obstacles[i]; !o.CanShootThrough {
			walls = append(walls, o)
		}
	}
	type mover struct{ pos, step domain.Vec2 }
	var allies []mover
	for _, a := range t.world.MyUnits() {
		if a.ID != u.ID {
			allies = append(allies, mover{pos: a.Position, step: a.Velocity.Scale(dt)})
		}
	}

	for range steps {
		next := shot.Add(shotStep)
		enemy = enemy.Add(enemyStep)

		for _, o := range walls {
			if domain.IntersectCircleSegment(shot, next, o.Position, o.Radius) {
				return false
			}
		}
		for i := range allies {
			allies[i].pos = allies[i].pos.Add(allies[i].step)
			if domain.IntersectCircleSegment(shot, next, allies[i].pos, c.UnitRadius) {
				return false
			}
		}
		if domain.IntersectCircleSegment(shot, next, enemy, hitRadius) {
			return true
		}
		shot = next
	}
	return false
}

// leadDirection は速度 targetVel で動く標的へ、速さ speed の弾を当てる向きを返します。
// 追いつけなければ標的そのものを向きます。
func leadDirection(from, target, targetVel domain.Vec2, speed float64) domain.Vec2 {
	los := target.Sub(from)
	if los.IsZero() {
		return los
	}
	axis := los.Normalize()
	along := targetVel.Dot(axis)
	across := targetVel.Sub(axis.Scale(along))

	rest := speed*speed - across.LenSquared()
	if rest < 0 {
		return axis
	}
	return axis.Scale(math.Sqrt(rest)).Add(across).Normalize()
}
