package application

import (
	"fmt"

	"skirmish/domain"
)

// State は操作ユニットごとの行動状態です。
type State uint8

const (
	Exploring State = iota
	Retrieving
	Engaging
)

func (s State) String() string {
	switch s {
	case Exploring:
		return "exploring"
	case Retrieving:
		return "retrieving"
	case Engaging:
		return "engaging"
	default:
		return fmt.Sprintf("unknown(%d)", s)
	}
}

// Need は回収に向かう理由です。
type Need uint8

const (
	NeedNone Need = iota
	NeedWeapon
	NeedAmmo
	NeedPotions
)

func (n Need) String() string {
	switch n {
	case NeedNone:
		return "none"
	case NeedWeapon:
		return "weapon"
	case NeedAmmo:
		return "ammo"
	case NeedPotions:
		return "potions"
	default:
		return fmt.Sprintf("unknown(%d)", n)
	}
}

// StrategyState は tick をまたいで保持する操作ユニットの判断状態です。
// Claims は Retrieving の間だけ空でなくなります。
type StrategyState struct {
	State          State
	Goal           domain.Vec2
	TicksToGoal    int
	TargetLootID   *int
	Need           Need
	Claims         map[int]struct{}
	EngageTargetID *int

	// exploreGoal は explore だけが書き換える探索目標です。原点は未設定を表します。
	exploreGoal domain.Vec2

	// StrafeSign は近距離で横移動する向きです。+1 で反時計回り。
	StrafeSign float64
}

func newStrategyState(strafeSign float64) *StrategyState {
	return &StrategyState{
		State:      Exploring,
		Claims:     make(map[int]struct{}),
		StrafeSign: strafeSign,
	}
}

// toExploring は回収と交戦の状態を捨てます。
// Goal はこの tick の移動先として残り、次に explore が探索目標で置き換えます。
func (s *StrategyState) toExploring() {
	s.State = Exploring
	s.TargetLootID = nil
	s.Need = NeedNone
	s.EngageTargetID = nil
	clear(s.Claims)
}

func (s *StrategyState) toRetrieving(need Need, lootID int, goal domain.Vec2) {
	s.State = Retrieving
	s.Need = need
	s.TargetLootID = &lootID
	s.EngageTargetID = nil
	s.Goal = goal
}

func (s *StrategyState) toEngaging(targetID int, goal domain.Vec2) {
	s.State = Engaging
	s.TargetLootID = nil
	s.Need = NeedNone
	s.EngageTargetID = &targetID
	s.Goal = goal
	clear(s.Claims)
}
