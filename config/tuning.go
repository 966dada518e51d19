package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

var ErrInvalidTuning = errors.New("config: invalid tuning")

//go:embed tuning.yaml
var defaultTuningYAML []byte

// Tuning は試合ごとに調整する判断・計画の閾値です。
type Tuning struct {
	// World
	EnemyMemoryTicks int     `yaml:"enemy_memory_ticks"`
	SoundMemoryTicks int     `yaml:"sound_memory_ticks"`
	LootViewMargin   float64 `yaml:"loot_view_margin"`

	// Targeting
	EngageMinHealthShield    float64 `yaml:"engage_min_health_shield"`
	KeepEngagingHealthShield float64 `yaml:"keep_engaging_health_shield"`
	EngageRangeFactor        float64 `yaml:"engage_range_factor"`
	EngageStandoff           float64 `yaml:"engage_standoff"`
	LowHealthWeight          float64 `yaml:"low_health_weight"`
	DangerWeight             float64 `yaml:"danger_weight"`
	HitTolerance             float64 `yaml:"hit_tolerance"`
	ShotSubSteps             int     `yaml:"shot_sub_steps"`
	ShotObstacleCount        int     `yaml:"shot_obstacle_count"`

	// Arbiter
	PreferredWeaponTier  int     `yaml:"preferred_weapon_tier"`
	AmmoRefillFraction   float64 `yaml:"ammo_refill_fraction"`
	PotionStockThreshold int     `yaml:"potion_stock_threshold"`
	PotionUseSlack       float64 `yaml:"potion_use_slack"`
	ClaimRadius          float64 `yaml:"claim_radius"`
	ExploreTolerance     float64 `yaml:"explore_tolerance"`
	ScanTurnDeg          float64 `yaml:"scan_turn_deg"`

	// Planner
	PlannerPolicy        string  `yaml:"planner_policy"`
	PlannerAngleStep     float64 `yaml:"planner_angle_step"`
	PlannerHorizonTicks  int     `yaml:"planner_horizon_ticks"`
	PlannerSubSteps      int     `yaml:"planner_sub_steps"`
	PlannerObstacleCount int     `yaml:"planner_obstacle_count"`
	ObstacleWindow       float64 `yaml:"obstacle_window"`
	UnitWindow           float64 `yaml:"unit_window"`
	ZoneGraceWindow      float64 `yaml:"zone_grace_window"`
	ArrivalTolerance     float64 `yaml:"arrival_tolerance"`
	OpposedSpeedFactor   float64 `yaml:"opposed_speed_factor"`
	ProjectileMargin     float64 `yaml:"projectile_margin"`

	// Controller
	PlannerWorkers     int           `yaml:"planner_workers"`
	TickBudget         time.Duration `yaml:"tick_budget"`
	BudgetSoftFraction float64       `yaml:"budget_soft_fraction"`
}

// Default は同梱の tuning.yaml から読み込んだ既定値を返します。
func Default() Tuning {
	var t Tuning
	if err := yaml.Unmarshal(defaultTuningYAML, &t); err != nil {
		panic(fmt.Sprintf("config: embedded tuning.yaml: %v", err))
	}
	return t
}

// Load は既定値の上に path の内容を重ねて読み込みます。
// ファイルに書かれていない項目は既定値のままです。
func Load(path string) (Tuning, error) {
	t := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, err
	}
	return t, nil
}

// Validate は反復回数の上限となる値が正しいかを確認します。
func (t Tuning) Validate() error {
	switch {
	case t.PlannerAngleStep <= 0 || t.PlannerAngleStep > 360:
		return fmt.Errorf("%w: planner_angle_step must be in (0, 360], got %v", ErrInvalidTuning, t.PlannerAngleStep)
	case t.PlannerHorizonTicks <= 0:
		return fmt.Errorf("%w: planner_horizon_ticks must be positive, got %d", ErrInvalidTuning, t.PlannerHorizonTicks)
	case t.PlannerSubSteps <= 0:
		return fmt.Errorf("%w: planner_sub_steps must be positive, got %d", ErrInvalidTuning, t.PlannerSubSteps)
	case t.ShotSubSteps <= 0:
		return fmt.Errorf("%w: shot_sub_steps must be positive, got %d", ErrInvalidTuning, t.ShotSubSteps)
	case t.OpposedSpeedFactor < 0 || t.OpposedSpeedFactor > 1:
		return fmt.Errorf("%w: opposed_speed_factor must be in [0, 1], got %v", ErrInvalidTuning, t.OpposedSpeedFactor)
	case !inUnit(t.ObstacleWindow) || !inUnit(t.UnitWindow) || !inUnit(t.ZoneGraceWindow):
		return fmt.Errorf("%w: planner windows must be in [0, 1]", ErrInvalidTuning)
	case t.PlannerPolicy != "scored" && t.PlannerPolicy != "first_valid":
		return fmt.Errorf("%w: planner_policy must be scored or first_valid, got %q", ErrInvalidTuning, t.PlannerPolicy)
	case t.PlannerWorkers <= 0:
		return fmt.Errorf("%w: planner_workers must be positive, got %d", ErrInvalidTuning, t.PlannerWorkers)
	case t.EnemyMemoryTicks < 0:
		return fmt.Errorf("%w: enemy_memory_ticks must not be negative", ErrInvalidTuning)
	case t.PlannerObstacleCount < 0:
		return fmt.Errorf("%w: planner_obstacle_count must not be negative, got %d", ErrInvalidTuning, t.PlannerObstacleCount)
	case t.ShotObstacleCount < 0:
		return fmt.Errorf("%w: shot_obstacle_count must not be negative, got %d", ErrInvalidTuning, t.ShotObstacleCount)
	case t.ClaimRadius < 0 || t.ExploreTolerance < 0 || t.ArrivalTolerance < 0:
		return fmt.Errorf("%w: claim_radius, explore_tolerance and arrival_tolerance must not be negative", ErrInvalidTuning)
	}
	return nil
}

func inUnit(v float64) bool { return v >= 0 && v <= 1 }
