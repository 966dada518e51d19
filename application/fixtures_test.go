package application

import (
	"skirmish/config"
	"skirmish/domain"
)

const (
	myPlayer    = 1
	enemyPlayer = 2
)

func newTestConstants() *domain.Constants {
	return &domain.Constants{
		TicksPerSecond:       30,
		TeamSize:             3,
		UnitRadius:           1,
		UnitHealth:           100,
		MaxShield:            200,
		SpawnTime:            5,
		SpawnMovementSpeed:   5,
		MaxUnitForwardSpeed:  10,
		MaxUnitBackwardSpeed: 5,
		UnitRotationSpeed:    180,
		ViewDistance:         60,
		FieldOfView:          120,
		Weapons: []domain.WeaponProperties{
			{Name: "wand", RoundsPerSecond: 2, AimTime: 0.2, AimFieldOfView: 90, AimMovementSpeedModifier: 0.8, ProjectileSpeed: 30, ProjectileDamage: 20, ProjectileLifeTime: 1, MaxInventoryAmmo: 100},
			{Name: "staff", RoundsPerSecond: 1, AimTime: 0.5, AimFieldOfView: 60, AimMovementSpeedModifier: 0.5, ProjectileSpeed: 25, ProjectileDamage: 40, ProjectileLifeTime: 1.2, MaxInventoryAmmo: 50},
			{Name: "bow", RoundsPerSecond: 0.5, AimTime: 1, AimFieldOfView: 30, AimMovementSpeedModifier: 0.3, ProjectileSpeed: 60, ProjectileDamage: 60, ProjectileLifeTime: 1.5, MaxInventoryAmmo: 20},
		},
		ShieldPerPotion:             50,
		ShieldPotionUseTime:         1,
		MaxShieldPotionsInInventory: 10,
	}
}

func newTestTuning() config.Tuning {
	return config.Default()
}

// unitAt は武器なし・満タン・+X 向きのユニットを作ります。
func unitAt(id, player int, pos domain.Vec2) domain.Unit {
	return domain.Unit{
		ID:        id,
		PlayerID:  player,
		Health:    100,
		Shield:    200,
		Position:  pos,
		Direction: domain.Vec2{X: 1},
		Ammo:      []int{0, 0, 0},
	}
}

// armed は武器 tier と弾数を持たせます。
func armed(u domain.Unit, tier, ammo int) domain.Unit {
	w := tier
	u.Weapon = &w
	u.Ammo = []int{0, 0, 0}
	u.Ammo[tier] = ammo
	return u
}

func newGame(tick int, units ...domain.Unit) *domain.Game {
	return &domain.Game{
		MyID:        myPlayer,
		CurrentTick: tick,
		Units:       units,
		Zone: domain.Zone{
			CurrentRadius: 1000,
			NextRadius:    500,
		},
	}
}

func ptr[T any](v T) *T { return &v }
