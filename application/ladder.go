package application

import "skirmish/domain"

// ladderRow は回収の優先順位表の 1 行です。
// applies が真のとき、matches を満たすアイテムを探します。
type ladderRow struct {
	need    Need
	applies func(a *Arbiter, u *UnitRecord) bool
	matches func(u *UnitRecord, l *LootRecord) bool
}

// itemLadder は上から順に評価されます。
var itemLadder = []ladderRow{
	{
		need: NeedWeapon,
		applies: func(a *Arbiter, u *UnitRecord) bool {
			return u.Weapon == nil || *u.Weapon < a.world.tuning.PreferredWeaponTier
		},
		matches: func(u *UnitRecord, l *LootRecord) bool {
			if l.Item.Kind != domain.ItemWeapon || l.Category == domain.CategoryUnknown {
				return false
			}
			return u.Weapon == nil || l.Item.WeaponTypeIndex > *u.Weapon
		},
	},
	{
		need: NeedAmmo,
		applies: func(a *Arbiter, u *UnitRecord) bool {
			if u.Weapon == nil {
				return false
			}
			w, ok := a.world.constants.Weapon(*u.Weapon)
			if !ok {
				return false
			}
			return float64(u.AmmoFor(*u.Weapon)) < a.world.tuning.AmmoRefillFraction*float64(w.MaxInventoryAmmo)
		},
		matches: func(u *UnitRecord, l *LootRecord) bool {
			return l.Item.Kind == domain.ItemAmmo && l.Item.WeaponTypeIndex == *u.Weapon
		},
	},
	{
		need: NeedPotions,
		applies: func(a *Arbiter, u *UnitRecord) bool {
			return u.ShieldPotions < a.world.tuning.PotionStockThreshold
		},
		matches: func(_ *UnitRecord, l *LootRecord) bool {
			return l.Item.Kind == domain.ItemShieldPotions
		},
	},
}

func ladderRowFor(need Need) (ladderRow, bool) {
	for _, row := range itemLadder {
		if row.need == need {
			return row, true
		}
	}
	return ladderRow{}, false
}
