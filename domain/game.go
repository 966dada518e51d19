package domain

// Game は 1 tick 分のスナップショットです。
type Game struct {
	MyID        int          `msgpack:"my_id"`
	CurrentTick int          `msgpack:"current_tick"`
	Units       []Unit       `msgpack:"units"`
	Loot        []Loot       `msgpack:"loot"`
	Projectiles []Projectile `msgpack:"projectiles"`
	Zone        Zone         `msgpack:"zone"`
	Sounds      []Sound      `msgpack:"sounds"`
}

// ActionType はユニットが実行中の行動の種類です。
type ActionType uint8

const (
	ActionLooting ActionType = iota
	ActionUsingShieldPotion
)

// UnitAction は実行中の行動と、その完了 tick です。
type UnitAction struct {
	FinishTick int        `msgpack:"finish_tick"`
	Type       ActionType `msgpack:"type"`
}

// Unit はスナップショット上のユニットです。
// 出現待ち時間・行動・武器は存在しないことがあるためポインタで表します。
type Unit struct {
	ID                          int         `msgpack:"id"`
	PlayerID                    int         `msgpack:"player_id"`
	Health                      float64     `msgpack:"health"`
	Shield                      float64     `msgpack:"shield"`
	ExtraLives                  int         `msgpack:"extra_lives"`
	Position                    Vec2        `msgpack:"position"`
	RemainingSpawnTime          *float64    `msgpack:"remaining_spawn_time"`
	Velocity                    Vec2        `msgpack:"velocity"`
	Direction                   Vec2        `msgpack:"direction"`
	Aim                         float64     `msgpack:"aim"`
	Action                      *UnitAction `msgpack:"action"`
	HealthRegenerationStartTick int         `msgpack:"health_regeneration_start_tick"`
	Weapon                      *int        `msgpack:"weapon"`
	NextShotTick                int         `msgpack:"next_shot_tick"`
	Ammo                        []int       `msgpack:"ammo"`
	ShieldPotions               int         `msgpack:"shield_potions"`
}

// Spawning は出現待ち（移動が遅く、拾得できない）状態かを返します。
func (u *Unit) Spawning() bool { return u.RemainingSpawnTime != nil }

// Busy は何らかの行動を実行中かを返します。
func (u *Unit) Busy() bool { return u.Action != nil }

// AmmoFor は指定武器の弾数を返します。
func (u *Unit) AmmoFor(weapon int) int {
	if weapon < 0 || weapon >= len(u.Ammo) {
		return 0
	}
	return u.Ammo[weapon]
}

// Armed は武器を持ち、その弾があるかを返します。
func (u *Unit) Armed() bool {
	return u.Weapon != nil && u.AmmoFor(*u.Weapon) > 0
}

// Projectile は飛翔中の弾です。Velocity は毎秒の移動量です。
type Projectile struct {
	ID              int     `msgpack:"id"`
	WeaponTypeIndex int     `msgpack:"weapon_type_index"`
	ShooterID       int     `msgpack:"shooter_id"`
	ShooterPlayerID int     `msgpack:"shooter_player_id"`
	Position        Vec2    `msgpack:"position"`
	Velocity        Vec2    `msgpack:"velocity"`
	LifeTime        float64 `msgpack:"life_time"`
}

// Zone は現在の安全地帯と、縮小先の安全地帯です。
type Zone struct {
	CurrentCenter Vec2    `msgpack:"current_center"`
	CurrentRadius float64 `msgpack:"current_radius"`
	NextCenter    Vec2    `msgpack:"next_center"`
	NextRadius    float64 `msgpack:"next_radius"`
}

// Contains は p が現在の安全地帯の内側にあるかを返します。
func (z Zone) Contains(p Vec2) bool {
	return InsideCircle(p, z.CurrentCenter, z.CurrentRadius)
}

// Sound はユニットが聞いた音です。Position は音源ではなく聞こえた位置です。
type Sound struct {
	TypeIndex int  `msgpack:"type_index"`
	UnitID    int  `msgpack:"unit_id"`
	Position  Vec2 `msgpack:"position"`
}
