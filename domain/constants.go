package domain

// WeaponProperties は武器ごとの性能です。
type WeaponProperties struct {
	Name                     string  `msgpack:"name"`
	RoundsPerSecond          float64 `msgpack:"rounds_per_second"`
	Spread                   float64 `msgpack:"spread"`
	AimTime                  float64 `msgpack:"aim_time"`
	AimFieldOfView           float64 `msgpack:"aim_field_of_view"`
	AimRotationSpeed         float64 `msgpack:"aim_rotation_speed"`
	AimMovementSpeedModifier float64 `msgpack:"aim_movement_speed_modifier"`
	ProjectileSpeed          float64 `msgpack:"projectile_speed"`
	ProjectileDamage         float64 `msgpack:"projectile_damage"`
	ProjectileLifeTime       float64 `msgpack:"projectile_life_time"`
	MaxInventoryAmmo         int     `msgpack:"max_inventory_ammo"`
}

// Range は弾が寿命までに進む距離です。
func (w WeaponProperties) Range() float64 {
	return w.ProjectileSpeed * w.ProjectileLifeTime
}

// Constants は試合を通して変わらない定数です。試合開始時に一度だけ受け取ります。
type Constants struct {
	TicksPerSecond              float64            `msgpack:"ticks_per_second"`
	TeamSize                    int                `msgpack:"team_size"`
	UnitRadius                  float64            `msgpack:"unit_radius"`
	UnitHealth                  float64            `msgpack:"unit_health"`
	MaxShield                   float64            `msgpack:"max_shield"`
	SpawnTime                   float64            `msgpack:"spawn_time"`
	SpawnMovementSpeed          float64            `msgpack:"spawn_movement_speed"`
	MaxUnitForwardSpeed         float64            `msgpack:"max_unit_forward_speed"`
	MaxUnitBackwardSpeed        float64            `msgpack:"max_unit_backward_speed"`
	UnitRotationSpeed           float64            `msgpack:"unit_rotation_speed"`
	ViewDistance                float64            `msgpack:"view_distance"`
	FieldOfView                 float64            `msgpack:"field_of_view"`
	Weapons                     []WeaponProperties `msgpack:"weapons"`
	ShieldPerPotion             float64            `msgpack:"shield_per_potion"`
	ShieldPotionUseTime         float64            `msgpack:"shield_potion_use_time"`
	MaxShieldPotionsInInventory int                `msgpack:"max_shield_potions_in_inventory"`
	Obstacles                   []Obstacle         `msgpack:"obstacles"`
}

// Weapon は武器段階の性能を返します。範囲外なら false です。
func (c *Constants) Weapon(index int) (WeaponProperties, bool) {
	if index < 0 || index >= len(c.Weapons) {
		return WeaponProperties{}, false
	}
	return c.Weapons[index], true
}

// TickDuration は 1 tick の秒数です。
func (c *Constants) TickDuration() float64 {
	if c.TicksPerSecond <= 0 {
		return 0
	}
	return 1 / c.TicksPerSecond
}

// Obstacle は静的な円形の障害物です。
type Obstacle struct {
	ID              int     `msgpack:"id"`
	Position        Vec2    `msgpack:"position"`
	Radius          float64 `msgpack:"radius"`
	CanSeeThrough   bool    `msgpack:"can_see_through"`
	CanShootThrough bool    `msgpack:"can_shoot_through"`
}
