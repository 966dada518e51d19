package application

import (
	"math"
	"slices"

	"skirmish/config"
	"skirmish/domain"
)

// UnitRecord はユニットのスナップショットに、最終観測 tick と距離キャッシュを加えたものです。
type UnitRecord struct {
	domain.Unit
	LastSeenTick int

	// DistSq は他の既知ユニットまでの距離の二乗です。
	DistSq map[int]float64
	// ObstacleDistSq は障害物（Constants.Obstacles の添字順）中心までの距離の二乗です。操作ユニットのみ。
	ObstacleDistSq []float64
	// ObstacleOrder は障害物の添字を近い順に並べたものです。操作ユニットのみ。
	ObstacleOrder []int
}

// TrackedProjectile は観測範囲外に出た後も等速で外挿し続ける弾です。
type TrackedProjectile struct {
	domain.Projectile
	LastSeenTick       int
	LifeTimeAtSighting float64
}

// ExpiryTick は弾を保持し続ける最後の tick です。
func (p *TrackedProjectile) ExpiryTick(ticksPerSecond float64) int {
	return p.LastSeenTick + int(math.Ceil(p.LifeTimeAtSighting*ticksPerSecond))
}

// LootRecord はアイテムと、操作ユニットごとの距離・即時拾得可否です。
type LootRecord struct {
	domain.Loot
	Category domain.LootCategory
	Amount   int
	InZone   bool

	DistSq    map[int]float64
	Reachable map[int]bool
}

type heardSound struct {
	domain.Sound
	Tick int
}

// World は tick ごとのスナップショットから、tick をまたぐ派生状態を組み立てます。
// ユニット・アイテム・弾のコレクションは World だけが変更します。
type World struct {
	constants *domain.Constants
	tuning    config.Tuning

	myID int
	tick int
	zone domain.Zone

	units       *Table[UnitRecord]
	enemies     *Table[UnitRecord]
	projectiles *Table[TrackedProjectile]
	loot        *Table[LootRecord]
	sounds      []heardSound

	// Update 内でのみ使う作業領域
	seen map[int]struct{}
}

func NewWorld(constants *domain.Constants, tuning config.Tuning) *World {
	return &World{
		constants:   constants,
		tuning:      tuning,
		units:       NewTable[UnitRecord](constants.TeamSize),
		enemies:     NewTable[UnitRecord](16),
		projectiles: NewTable[TrackedProjectile](64),
		loot:        NewTable[LootRecord](256),
		seen:        make(map[int]struct{}),
	}
}

// Update は 1 tick に一度だけ呼ばれ、他のコンポーネントが読む前に全ての派生状態を整えます。
func (w *World) Update(game *domain.Game) {
	w.myID = game.MyID
	w.tick = game.CurrentTick
	w.zone = game.Zone

	w.updateUnits(game.Units)
	w.updateObstacleDistances()
	w.expireEnemies()
	w.updateUnitDistances()
	w.updateProjectiles(game.Projectiles)
	w.updateLoot(game.Loot)
	w.updateSounds(game.Sounds)
}

func (w *World) updateUnits(units []domain.Unit) {
	clear(w.seen)
	for i := range units {
		u := units[i]
		table := w.enemies
		if u.PlayerID == w.myID {
			table = w.units
		}
		w.seen[u.ID] = struct{}{}
		if rec, ok := table.Get(u.ID); ok {
			rec.Unit = u
			rec.LastSeenTick = w.tick
			continue
		}
		table.Put(u.ID, UnitRecord{
			Unit:         u,
			LastSeenTick: w.tick,
			DistSq:       make(map[int]float64),
		})
	}

	w.units.RemoveIf(func(id int, _ *UnitRecord) bool {
		_, ok := w.seen[id]
		return !ok
	})
}

// expireEnemies は見失った敵を、記憶期間を過ぎたか最後の位置が視界内にあれば忘れます。
func (w *World) expireEnemies() {
	w.enemies.RemoveIf(func(id int, rec *UnitRecord) bool {
		if rec.LastSeenTick == w.tick {
			return false
		}
		if w.tick-rec.LastSeenTick > w.tuning.EnemyMemoryTicks {
			return true
		}
		// 最後に見た位置が今見えているのに居ないなら、もう居ない
		return w.visibleToAny(rec.Position)
	})
}

func (w *World) updateObstacleDistances() {
	obstacles := w.constants.Obstacles
	for _, rec := range w.units.All() {
		if cap(rec.ObstacleDistSq) < len(obstacles) {
			rec.ObstacleDistSq = make([]float64, len(obstacles))
			rec.ObstacleOrder = make([]int, len(obstacles))
		}
		rec.ObstacleDistSq = rec.ObstacleDistSq[:len(obstacles)]
		rec.ObstacleOrder = rec.ObstacleOrder[:len(obstacles)]
		for i := range obstacles {
			rec.ObstacleDistSq[i] = domain.DistanceSquared(rec.Position, obstacles[i].Position)
			rec.ObstacleOrder[i] = i
		}
		dist := rec.ObstacleDistSq
		slices.SortFunc(rec.ObstacleOrder, func(a, b int) int {
			switch {
			case dist[a] < dist[b]:
				return -1
			case dist[a] > dist[b]:
				return 1
			}
			return a - b
		})
	}
}

func (w *World) updateUnitDistances() {
	for _, rec := range w.units.All() {
		clear(rec.DistSq)
		for id, other := range w.units.All() {
			if id != rec.ID {
				rec.DistSq[id] = domain.DistanceSquared(rec.Position, other.Position)
			}
		}
		for id, other := range w.enemies.All() {
			rec.DistSq[id] = domain.DistanceSquared(rec.Position, other.Position)
		}
	}
	for _, rec := range w.enemies.All() {
		clear(rec.DistSq)
		for id, mine := range w.units.All() {
			rec.DistSq[id] = domain.DistanceSquared(rec.Position, mine.Position)
		}
	}
}

func (w *World) updateProjectiles(projectiles []domain.Projectile) {
	clear(w.seen)
	for i := range projectiles {
		p := projectiles[i]
		w.seen[p.ID] = struct{}{}
		w.projectiles.Put(p.ID, TrackedProjectile{
			Projectile:         p,
			LastSeenTick:       w.tick,
			LifeTimeAtSighting: p.LifeTime,
		})
	}

	tps := w.constants.TicksPerSecond
	dt := w.constants.TickDuration()
	w.projectiles.RemoveIf(func(id int, p *TrackedProjectile) bool {
		if _, ok := w.seen[id]; ok {
			return false
		}
		if p.ExpiryTick(tps) < w.tick {
			return true
		}
		p.Position = p.Position.Add(p.Velocity.Scale(dt))
		p.LifeTime -= dt
		return false
	})
}

func (w *World) updateLoot(loot []domain.Loot) {
	clear(w.seen)
	for i := range loot {
		w.seen[loot[i].ID] = struct{}{}
	}

	// 視界内にあるはずなのにスナップショットに無いアイテムは、拾われたか消えたと推定する
	w.loot.RemoveIf(func(id int, rec *LootRecord) bool {
		if _, ok := w.seen[id]; ok {
			return false
		}
		return w.visibleToAny(rec.Position)
	})

	for i := range loot {
		l := loot[i]
		if rec, ok := w.loot.Get(l.ID); ok {
			rec.Loot = l
			rec.Category = l.Item.Category()
			rec.Amount = l.Item.Amount
			continue
		}
		w.loot.Put(l.ID, LootRecord{
			Loot:      l,
			Category:  l.Item.Category(),
			Amount:    l.Item.Amount,
			DistSq:    make(map[int]float64),
			Reachable: make(map[int]bool),
		})
	}

	reach := w.constants.UnitRadius * w.constants.UnitRadius
	for _, rec := range w.loot.All() {
		rec.InZone = w.zone.Contains(rec.Position)
		clear(rec.DistSq)
		clear(rec.Reachable)
		for id, u := range w.units.All() {
			d := domain.DistanceSquared(rec.Position, u.Position)
			rec.DistSq[id] = d
			rec.Reachable[id] = d <= reach
		}
	}
}

func (w *World) updateSounds(sounds []domain.Sound) {
	kept := w.sounds[:0]
	for _, s := range w.sounds {
		if w.tick-s.Tick <= w.tuning.SoundMemoryTicks {
			kept = append(kept, s)
		}
	}
	for _, s := range sounds {
		kept = append(kept, heardSound{Sound: s, Tick: w.tick})
	}
	w.sounds = kept
}

// visibleToAny は p がいずれかの操作ユニットの現在の視界に入っているかを返します。
func (w *World) visibleToAny(p domain.Vec2) bool {
	for _, u := range w.units.All() {
		if w.Sees(u, p) {
			return true
		}
	}
	return false
}

// Sees は u の視界扇形に p が入り、視線を遮る障害物が無いかを返します。
func (w *World) Sees(u *UnitRecord, p domain.Vec2) bool {
	viewDist := w.constants.ViewDistance - w.tuning.LootViewMargin
	if viewDist <= 0 {
		return false
	}
	v := p.Sub(u.Position)
	d := u.Direction.Normalize().Scale(viewDist)
	if !domain.InSector(d, v, w.FieldOfView(&u.Unit)) {
		return false
	}

	obstacles := w.constants.Obstacles
	reach := v.Len()
	for _, i := range u.ObstacleOrder {
		o := obstacles[i]
		if o.CanSeeThrough {
			continue
		}
		if lim := reach + o.Radius; u.ObstacleDistSq[i] > lim*lim {
			break
		}
		if domain.IntersectCircleSegment(u.Position, p, o.Position, o.Radius) {
			return false
		}
	}
	return true
}

// FieldOfView は照準の進み具合に応じて狭まる視野角（度）を返します。
func (w *World) FieldOfView(u *domain.Unit) float64 {
	fov := w.constants.FieldOfView
	if u.Weapon == nil {
		return fov
	}
	weapon, ok := w.constants.Weapon(*u.Weapon)
	if !ok || weapon.AimFieldOfView <= 0 {
		return fov
	}
	return domain.Lerp(fov, weapon.AimFieldOfView, u.Aim)
}

// ApplyPickup は操作ユニットがアイテムを拾ったことを反映します。
// capacity が残数以上なら取り除き、そうでなければ capacity だけ減らします。取り除いたら true を返します。
func (w *World) ApplyPickup(lootID, capacity int) bool {
	rec, ok := w.loot.Get(lootID)
	if !ok {
		return false
	}
	if capacity >= rec.Amount {
		w.loot.Remove(lootID)
		return true
	}
	rec.Amount -= capacity
	rec.Item.Amount = rec.Amount
	return false
}

func (w *World) Tick() int                    { return w.tick }
func (w *World) MyID() int                    { return w.myID }
func (w *World) Zone() domain.Zone            { return w.zone }
func (w *World) Constants() *domain.Constants { return w.constants }
func (w *World) Tuning() config.Tuning        { return w.tuning }

// MyUnits は操作ユニットを id 昇順で返します。
func (w *World) MyUnits() []*UnitRecord {
	out := make([]*UnitRecord, 0, w.units.Len())
	for _, id := range w.units.IDs() {
		rec, _ := w.units.Get(id)
		out = append(out, rec)
	}
	return out
}

func (w *World) Unit(id int) (*UnitRecord, bool) { return w.units.Get(id) }

// Enemies は古い位置で保持している敵も含めて返します。
func (w *World) Enemies() []*UnitRecord {
	out := make([]*UnitRecord, 0, w.enemies.Len())
	for _, id := range w.enemies.IDs() {
		rec, _ := w.enemies.Get(id)
		out = append(out, rec)
	}
	return out
}

func (w *World) Enemy(id int) (*UnitRecord, bool) { return w.enemies.Get(id) }

// Fresh は rec がこの tick に観測されたかを返します。
func (w *World) Fresh(rec *UnitRecord) bool { return rec.LastSeenTick == w.tick }

func (w *World) Projectiles() []*TrackedProjectile {
	out := make([]*TrackedProjectile, 0, w.projectiles.Len())
	for _, p := range w.projectiles.All() {
		out = append(out, p)
	}
	return out
}

func (w *World) Projectile(id int) (*TrackedProjectile, bool) { return w.projectiles.Get(id) }

// Loot はアイテムを id 昇順で返します。
func (w *World) Loot() []*LootRecord {
	out := make([]*LootRecord, 0, w.loot.Len())
	for _, id := range w.loot.IDs() {
		rec, _ := w.loot.Get(id)
		out = append(out, rec)
	}
	return out
}

func (w *World) LootByID(id int) (*LootRecord, bool) { return w.loot.Get(id) }

func (w *World) Obstacles() []domain.Obstacle { return w.constants.Obstacles }

// NearestObstacles は操作ユニット unitID に近い順に最大 n 個の障害物の添字を返します。
func (w *World) NearestObstacles(unitID, n int) []int {
	rec, ok := w.units.Get(unitID)
	if !ok {
		return nil
	}
	n = min(max(n, 0), len(rec.ObstacleOrder))
	return rec.ObstacleOrder[:n]
}

// UnitDistSq は操作ユニット a と既知ユニット b の距離の二乗です。
func (w *World) UnitDistSq(a, b int) (float64, bool) {
	rec, ok := w.units.Get(a)
	if !ok {
		return 0, false
	}
	d, ok := rec.DistSq[b]
	return d, ok
}

// Sounds は記憶している音を古い順に返します。
func (w *World) Sounds() []domain.Sound {
	out := make([]domain.Sound, len(w.sounds))
	for i, s := range w.sounds {
		out[i] = s.Sound
	}
	return out
}

// LatestSound は unitID が直近に聞いた音を返します。
func (w *World) LatestSound(unitID int) (domain.Sound, bool) {
	for i := len(w.sounds) - 1; i >= 0; i-- {
		if w.sounds[i].UnitID == unitID {
			return w.sounds[i].Sound, true
		}
	}
	return domain.Sound{}, false
}
