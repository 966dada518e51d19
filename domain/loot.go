package domain

import "fmt"

// ItemKind は落ちているアイテムの種類です。
type ItemKind uint8

const (
	ItemWeapon ItemKind = iota
	ItemShieldPotions
	ItemAmmo
)

func (k ItemKind) String() string {
	switch k {
	case ItemWeapon:
		return "weapon"
	case ItemShieldPotions:
		return "shield_potions"
	case ItemAmmo:
		return "ammo"
	default:
		return fmt.Sprintf("unknown(%d)", k)
	}
}

// Item はアイテムの中身です。Kind によって有効なフィールドが変わります。
//   - ItemWeapon: WeaponTypeIndex
//   - ItemShieldPotions: Amount
//   - ItemAmmo: WeaponTypeIndex, Amount
type Item struct {
	Kind            ItemKind `msgpack:"kind"`
	WeaponTypeIndex int      `msgpack:"weapon_type_index"`
	Amount          int      `msgpack:"amount"`
}

func WeaponItem(typeIndex int) Item {
	return Item{Kind: ItemWeapon, WeaponTypeIndex: typeIndex, Amount: 1}
}

func AmmoItem(weaponTypeIndex, amount int) Item {
	return Item{Kind: ItemAmmo, WeaponTypeIndex: weaponTypeIndex, Amount: amount}
}

func ShieldPotionsItem(amount int) Item {
	return Item{Kind: ItemShieldPotions, Amount: amount}
}

// Loot はマップ上に落ちているアイテムです。
type Loot struct {
	ID       int  `msgpack:"id"`
	Position Vec2 `msgpack:"position"`
	Item     Item `msgpack:"item"`
}

// LootCategory は武器の段階ごとに分けたアイテム区分です。
type LootCategory uint8

const (
	CategoryUnknown LootCategory = iota
	CategoryMagicWand
	CategoryStaff
	CategoryBow
	CategoryMagicWandAmmo
	CategoryStaffAmmo
	CategoryBowAmmo
	CategoryShieldPotion
)

var categoryNames = map[LootCategory]string{
	CategoryUnknown:       "unknown",
	CategoryMagicWand:     "magic_wand",
	CategoryStaff:         "staff",
	CategoryBow:           "bow",
	CategoryMagicWandAmmo: "magic_wand_ammo",
	CategoryStaffAmmo:     "staff_ammo",
	CategoryBowAmmo:       "bow_ammo",
	CategoryShieldPotion:  "shield_potion",
}

func (c LootCategory) String() string { return categoryNames[c] }

// Category はアイテムを区分に変換します。知らない武器段階は CategoryUnknown です。
func (i Item) Category() LootCategory {
	switch i.Kind {
	case ItemWeapon:
		if i.WeaponTypeIndex >= 0 && i.WeaponTypeIndex <= 2 {
			return CategoryMagicWand + LootCategory(i.WeaponTypeIndex)
		}
	case ItemAmmo:
		if i.WeaponTypeIndex >= 0 && i.WeaponTypeIndex <= 2 {
			return CategoryMagicWandAmmo + LootCategory(i.WeaponTypeIndex)
		}
	case ItemShieldPotions:
		return CategoryShieldPotion
	}
	return CategoryUnknown
}
