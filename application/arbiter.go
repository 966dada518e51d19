package application

import (
	"math"

	"skirmish/domain"
)

// Decision は 1 ユニット分の判断結果です。速度はまだ計画前の希望値です。
type Decision struct {
	UnitID int
	Prev   State
	State  State
	Need   Need
	Goal   domain.Vec2
	// Desired はワールド座標での希望速度です。
	Desired    domain.Vec2
	Facing     domain.Vec2
	Action     domain.ActionOrder
	Engagement *Engagement
}

// Arbiter はユニットごとの状態機械を進め、目標地点と行動を決めます。
// 回収予約（claim）と状態表は Arbiter だけが変更し、1 goroutine から呼ばれます。
type Arbiter struct {
	world     *World
	targeting *Targeting
	rng       domain.Random

	states    map[int]*StrategyState
	claimedBy map[int]int
}

func NewArbiter(world *World, targeting *Targeting, rng domain.Random) *Arbiter {
	return &Arbiter{
		world:     world,
		targeting: targeting,
		rng:       rng,
		states:    make(map[int]*StrategyState),
		claimedBy: make(map[int]int),
	}
}

// StateOf は unitID の判断状態を返します。
func (a *Arbiter) StateOf(unitID int) (*StrategyState, bool) {
	s, ok := a.states[unitID]
	return s, ok
}

// ClaimedBy は lootID を予約しているユニットを返します。
func (a *Arbiter) ClaimedBy(lootID int) (int, bool) {
	id, ok := a.claimedBy[lootID]
	return id, ok
}

// Sync は World から消えたユニットとアイテムの状態・予約を捨てます。World.Update の後に呼びます。
func (a *Arbiter) Sync() {
	for id, s := range a.states {
		if _, ok := a.world.Unit(id); !ok {
			a.release(id, s)
			delete(a.states, id)
		}
	}
	for lootID, unitID := range a.claimedBy {
		if _, ok := a.world.LootByID(lootID); ok {
			continue
		}
		delete(a.claimedBy, lootID)
		if s, ok := a.states[unitID]; ok {
			delete(s.Claims, lootID)
		}
	}
}

// Decide は u の今 tick の状態・目標・行動を決めます。ユニット id の昇順に呼ばれる前提です。
func (a *Arbiter) Decide(u *UnitRecord) Decision {
	s := a.stateFor(u.ID)
	d := Decision{UnitID: u.ID, Prev: s.State}

	if e, ok := a.targeting.TryEngage(u, s); ok {
		a.release(u.ID, s)
		s.toEngaging(e.TargetID, e.Goal)
		s.TicksToGoal = a.ticksTo(u, s.Goal)

		d.Engagement = &e
		d.Desired = e.Desired.Scale(a.world.constants.MaxUnitForwardSpeed)
		d.Facing = e.Facing
		if e.Shoot {
			d.Action = domain.ActionAim{Shoot: true}
		}
		return a.finish(d, s)
	}
	if s.State == Engaging {
		s.toExploring()
	}

	a.selectGoal(u, s)
	s.TicksToGoal = a.ticksTo(u, s.Goal)
	if to := s.Goal.Sub(u.Position); !to.IsZero() {
		d.Desired = to.Normalize().Scale(a.world.constants.MaxUnitForwardSpeed)
	}
	d.Facing = a.facing(u, s, d.Desired)

	if lootID, ok := a.pickup(u, s); ok {
		d.Action = domain.ActionPickup{LootID: lootID}
	} else if a.shouldUsePotion(u, s) {
		d.Action = domain.ActionUseShieldPotion{}
	}
	return a.finish(d, s)
}

func (a *Arbiter) finish(d Decision, s *StrategyState) Decision {
	d.State = s.State
	d.Need = s.Need
	d.Goal = s.Goal
	return d
}

func (a *Arbiter) stateFor(unitID int) *StrategyState {
	if s, ok := a.states[unitID]; ok {
		return s
	}
	sign := 1.0
	if a.rng.Float64() < 0.5 {
		sign = -1
	}
	s := newStrategyState(sign)
	a.states[unitID] = s
	return s
}

// selectGoal は回収できるアイテムがあれば Retrieving、無ければ Exploring の目標を決めます。
// 出現待ちのユニットは拾えないので常に探索します。
func (a *Arbiter) selectGoal(u *UnitRecord, s *StrategyState) {
	if !u.Spawning() {
		if row, loot, ok := a.selectLoot(u, s); ok {
			if s.State == Retrieving && *s.TargetLootID == loot.ID {
				s.Goal = loot.Position
				return
			}
			a.release(u.ID, s)
			s.toRetrieving(row.need, loot.ID, loot.Position)
			a.claimCluster(u.ID, s, loot.Position)
			return
		}
	}
	if s.State == Retrieving {
		a.release(u.ID, s)
		s.toExploring()
	}
	a.explore(u, s)
}

// selectLoot は前回の目標がまだ有効ならそれを、そうでなければ優先順位表の上から最も近い候補を選びます。
func (a *Arbiter) selectLoot(u *UnitRecord, s *StrategyState) (ladderRow, *LootRecord, bool) {
	if s.State == Retrieving && s.TargetLootID != nil {
		if row, ok := ladderRowFor(s.Need); ok && row.applies(a, u) {
			if l, ok := a.world.LootByID(*s.TargetLootID); ok && l.InZone && row.matches(u, l) {
				return row, l, true
			}
		}
	}

	loot := a.world.Loot()
	for _, row := range itemLadder {
		if !row.applies(a, u) {
			continue
		}
		var best *LootRecord
		bestDist := math.Inf(1)
		for _, l := range loot {
			if !l.InZone || !row.matches(u, l) {
				continue
			}
			if owner, ok := a.claimedBy[l.ID]; ok && owner != u.ID {
				continue
			}
			if d := l.DistSq[u.ID]; d < bestDist {
				best, bestDist = l, d
			}
		}
		if best != nil {
			return row, best, true
		}
	}
	return ladderRow{}, nil, false
}

// claimCluster は center から ClaimRadius 以内の未予約アイテムをまとめて予約します。
func (a *Arbiter) claimCluster(unitID int, s *StrategyState, center domain.Vec2) {
	r := a.world.tuning.ClaimRadius
	for _, l := range a.world.Loot() {
		if _, taken := a.claimedBy[l.ID]; taken {
			continue
		}
		if domain.InsideCircle(l.Position, center, r) {
			a.claimedBy[l.ID] = unitID
			s.Claims[l.ID] = struct{}{}
		}
	}
}

func (a *Arbiter) release(unitID int, s *StrategyState) {
	for lootID := range s.Claims {
		if a.claimedBy[lootID] == unitID {
			delete(a.claimedBy, lootID)
		}
	}
	clear(s.Claims)
}

// explore は次の安全地帯の円周上の点を目標にします。
// 探索目標が未設定、安全地帯の外、または到着済みなら引き直します。
// 交戦相手やアイテムの位置は探索目標にはなりません。
func (a *Arbiter) explore(u *UnitRecord, s *StrategyState) {
	zone := a.world.zone
	g := s.exploreGoal
	if g.IsZero() || !zone.Contains(g) ||
		domain.InsideCircle(u.Position, g, a.world.tuning.ExploreTolerance) {
		angle := a.rng.Float64() * 2 * math.Pi
		s.exploreGoal = zone.NextCenter.Add(domain.FromAngle(angle).Scale(zone.NextRadius))
	}
	s.Goal = s.exploreGoal
}

// pickup は目標のアイテムに手が届けば拾い、World に反映して状態を Exploring に戻します。
func (a *Arbiter) pickup(u *UnitRecord, s *StrategyState) (int, bool) {
	if s.State != Retrieving || u.Busy() || u.Spawning() {
		return 0, false
	}
	lootID := *s.TargetLootID
	l, ok := a.world.LootByID(lootID)
	if !ok || !l.Reachable[u.ID] {
		return 0, false
	}
	a.world.ApplyPickup(lootID, a.capacity(u, l))
	a.release(u.ID, s)
	s.toExploring()
	return lootID, true
}

// capacity は u が l から受け取れる数です。
func (a *Arbiter) capacity(u *UnitRecord, l *LootRecord) int {
	c := a.world.constants
	switch l.Item.Kind {
	case domain.ItemWeapon:
		return 1
	case domain.ItemAmmo:
		w, ok := c.Weapon(l.Item.WeaponTypeIndex)
		if !ok {
			return 0
		}
		return max(0, w.MaxInventoryAmmo-u.AmmoFor(l.Item.WeaponTypeIndex))
	case domain.ItemShieldPotions:
		return max(0, c.MaxShieldPotionsInInventory-u.ShieldPotions)
	}
	return 0
}

func (a *Arbiter) shouldUsePotion(u *UnitRecord, s *StrategyState) bool {
	c := a.world.constants
	if u.ShieldPotions <= 0 || u.Busy() || u.Spawning() {
		return false
	}
	if u.Shield > c.MaxShield-c.ShieldPerPotion*a.world.tuning.PotionUseSlack {
		return false
	}
	if s.State == Retrieving {
		useTicks := int(math.Ceil(c.ShieldPotionUseTime * c.TicksPerSecond))
		return s.TicksToGoal > useTicks
	}
	return true
}

// facing は Retrieving なら進行方向、Exploring なら直近の音か、見回すように少しずつ回した方向です。
func (a *Arbiter) facing(u *UnitRecord, s *StrategyState, desired domain.Vec2) domain.Vec2 {
	if s.State == Retrieving && !desired.IsZero() {
		return desired.Normalize()
	}
	if snd, ok := a.world.LatestSound(u.ID); ok {
		if to := snd.Position.Sub(u.Position); !to.IsZero() {
			return to.Normalize()
		}
	}
	if u.Direction.IsZero() {
		return domain.Vec2{X: 1}
	}
	return u.Direction.Rotate(a.world.tuning.ScanTurnDeg)
}

func (a *Arbiter) ticksTo(u *UnitRecord, goal domain.Vec2) int {
	c := a.world.constants
	perTick := c.MaxUnitForwardSpeed * c.TickDuration()
	if perTick <= 0 {
		return math.MaxInt32
	}
	return int(math.Ceil(domain.Distance(u.Position, goal) / perTick))
}
