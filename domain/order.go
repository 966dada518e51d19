package domain

// ActionOrder はユニットに出す行動命令です。nil は行動なしを表します。
// 具体型は ActionAim / ActionUseShieldPotion / ActionPickup のいずれかです。
type ActionOrder interface {
	isActionOrder()
}

// ActionAim は照準を合わせ、Shoot が真なら撃ちます。
type ActionAim struct {
	Shoot bool
}

// ActionUseShieldPotion はシールドポーションを使います。
type ActionUseShieldPotion struct{}

// ActionPickup は指定したアイテムを拾います。
type ActionPickup struct {
	LootID int
}

func (ActionAim) isActionOrder()             {}
func (ActionUseShieldPotion) isActionOrder() {}
func (ActionPickup) isActionOrder()          {}

// UnitOrder は 1 ユニット分の命令です。移動と向きは常に含まれます。
type UnitOrder struct {
	TargetVelocity  Vec2
	TargetDirection Vec2
	Action          ActionOrder
}

// Order は 1 tick 分、操作する全ユニットへの命令です。
type Order struct {
	Units map[int]UnitOrder
}

func NewOrder() Order {
	return Order{Units: make(map[int]UnitOrder)}
}
