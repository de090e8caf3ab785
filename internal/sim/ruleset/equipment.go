package ruleset

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// WeaponTier is one entry of the weapon upgrade ladder.
type WeaponTier struct {
	Tier        int `yaml:"tier"`
	DamageBonus int `yaml:"damage_bonus"`
	Price       int `yaml:"price"`
}

// ArmorTier is one entry of the armor upgrade ladder.
type ArmorTier struct {
	Tier       int `yaml:"tier"`
	ArmorBonus int `yaml:"armor_bonus"`
	Price      int `yaml:"price"`
}

// EnchantTier is one entry of an enchantment ladder. Weapon enchants add
// flat damage; armor enchants add the flat post-mitigation reduction.
type EnchantTier struct {
	Tier  int `yaml:"tier"`
	Bonus int `yaml:"bonus"`
	Price int `yaml:"price"`
}

// EquipmentTable holds all upgrade ladders, loaded from one YAML file.
// Tier 0 is the unupgraded baseline and must exist in every ladder.
type EquipmentTable struct {
	WeaponTiers    []WeaponTier  `yaml:"weapon_tiers"`
	ArmorTiers     []ArmorTier   `yaml:"armor_tiers"`
	WeaponEnchants []EnchantTier `yaml:"weapon_enchants"`
	ArmorEnchants  []EnchantTier `yaml:"armor_enchants"`
}

// Validate checks that every ladder starts at tier 0 and ascends without
// gaps, with non-negative bonuses and prices.
func (t *EquipmentTable) Validate() error {
	check := func(name string, tiers []int, bonuses []int, prices []int) error {
		if len(tiers) == 0 {
			return fmt.Errorf("equipment table: %s must not be empty", name)
		}
		for idx, tier := range tiers {
			if tier != idx {
				return fmt.Errorf("equipment table: %s tier %d at index %d (ladders must ascend from 0 without gaps)", name, tier, idx)
			}
			if bonuses[idx] < 0 {
				return fmt.Errorf("equipment table: %s tier %d bonus must be >= 0", name, tier)
			}
			if prices[idx] < 0 {
				return fmt.Errorf("equipment table: %s tier %d price must be >= 0", name, tier)
			}
		}
		return nil
	}

	wt := make([]int, len(t.WeaponTiers))
	wb := make([]int, len(t.WeaponTiers))
	wp := make([]int, len(t.WeaponTiers))
	for i, w := range t.WeaponTiers {
		wt[i], wb[i], wp[i] = w.Tier, w.DamageBonus, w.Price
	}
	if err := check("weapon_tiers", wt, wb, wp); err != nil {
		return err
	}

	at := make([]int, len(t.ArmorTiers))
	ab := make([]int, len(t.ArmorTiers))
	ap := make([]int, len(t.ArmorTiers))
	for i, a := range t.ArmorTiers {
		at[i], ab[i], ap[i] = a.Tier, a.ArmorBonus, a.Price
	}
	if err := check("armor_tiers", at, ab, ap); err != nil {
		return err
	}

	for _, pair := range []struct {
		name    string
		enchant []EnchantTier
	}{
		{"weapon_enchants", t.WeaponEnchants},
		{"armor_enchants", t.ArmorEnchants},
	} {
		et := make([]int, len(pair.enchant))
		eb := make([]int, len(pair.enchant))
		ep := make([]int, len(pair.enchant))
		for i, e := range pair.enchant {
			et[i], eb[i], ep[i] = e.Tier, e.Bonus, e.Price
		}
		if err := check(pair.name, et, eb, ep); err != nil {
			return err
		}
	}
	return nil
}

// MaxWeaponTier returns the highest weapon tier in the ladder.
func (t *EquipmentTable) MaxWeaponTier() int { return len(t.WeaponTiers) - 1 }

// MaxArmorTier returns the highest armor tier in the ladder.
func (t *EquipmentTable) MaxArmorTier() int { return len(t.ArmorTiers) - 1 }

// MaxWeaponEnchant returns the highest weapon enchant tier.
func (t *EquipmentTable) MaxWeaponEnchant() int { return len(t.WeaponEnchants) - 1 }

// MaxArmorEnchant returns the highest armor enchant tier.
func (t *EquipmentTable) MaxArmorEnchant() int { return len(t.ArmorEnchants) - 1 }

// WeaponBonus returns the damage bonus for tier, clamped into the ladder.
func (t *EquipmentTable) WeaponBonus(tier int) int {
	return t.WeaponTiers[clampTier(tier, len(t.WeaponTiers))].DamageBonus
}

// ArmorBonus returns the armor bonus for tier, clamped into the ladder.
func (t *EquipmentTable) ArmorBonus(tier int) int {
	return t.ArmorTiers[clampTier(tier, len(t.ArmorTiers))].ArmorBonus
}

// WeaponEnchantBonus returns the flat damage bonus for an enchant tier.
func (t *EquipmentTable) WeaponEnchantBonus(tier int) int {
	return t.WeaponEnchants[clampTier(tier, len(t.WeaponEnchants))].Bonus
}

// ArmorEnchantBonus returns the flat damage reduction for an enchant tier.
func (t *EquipmentTable) ArmorEnchantBonus(tier int) int {
	return t.ArmorEnchants[clampTier(tier, len(t.ArmorEnchants))].Bonus
}

func clampTier(tier, n int) int {
	if tier < 0 {
		return 0
	}
	if tier >= n {
		return n - 1
	}
	return tier
}

// LoadEquipmentFromBytes parses an EquipmentTable from raw YAML bytes.
func LoadEquipmentFromBytes(data []byte) (*EquipmentTable, error) {
	var t EquipmentTable
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing equipment YAML: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// LoadEquipment reads the equipment table from a single YAML file.
//
// Precondition: path must be a readable YAML file.
func LoadEquipment(path string) (*EquipmentTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading equipment table %q: %w", path, err)
	}
	t, err := LoadEquipmentFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("loading %q: %w", path, err)
	}
	return t, nil
}
