// Package ruleset provides the immutable static tables the simulation is
// built from: unit type definitions, equipment tier tables, and the building
// catalog. Tables load once at startup from YAML and are never mutated, so
// they are safe to share by reference even in a multi-threaded host.
package ruleset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Stats holds the ten RPG stats shared by every unit.
type Stats struct {
	Strength     int `yaml:"strength"`
	Intelligence int `yaml:"intelligence"`
	Artifice     int `yaml:"artifice"`
	Vitality     int `yaml:"vitality"`
	Willpower    int `yaml:"willpower"`
	MeleeSkill   int `yaml:"melee_skill"`
	RangedSkill  int `yaml:"ranged_skill"`
	Parry        int `yaml:"parry"`
	Dodge        int `yaml:"dodge"`
	MagicResist  int `yaml:"magic_resist"`
}

// Primary stat keys an archetype can name.
const (
	StatStrength     = "strength"
	StatIntelligence = "intelligence"
	StatArtifice     = "artifice"
	StatVitality     = "vitality"
	StatWillpower    = "willpower"
)

// Attack kinds a unit type can declare.
const (
	AttackMelee  = "melee"
	AttackRanged = "ranged"
	AttackMagic  = "magic"
)

// UnitType defines a reusable unit archetype loaded from YAML.
type UnitType struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	// Archetype names the primary stat bumped on odd level-ups.
	Archetype string `yaml:"archetype"`
	// AttackKind selects the contested-roll pairing: melee, ranged, magic.
	AttackKind string `yaml:"attack_kind"`
	Stats      Stats  `yaml:"stats"`

	MaxHealth int `yaml:"max_health"`
	Armor     int `yaml:"armor"`
	MinDamage int `yaml:"min_damage"`
	MaxDamage int `yaml:"max_damage"`
	// AttackRange is in tiles (Chebyshev); 1 = melee adjacency.
	AttackRange int `yaml:"attack_range"`
	// AttackCooldown is in ticks between attacks.
	AttackCooldown int `yaml:"attack_cooldown"`
	// Speed is world units of continuous movement per tick.
	Speed float64 `yaml:"speed"`
	// SightRange is the hostile-acquisition radius in tiles.
	SightRange int `yaml:"sight_range"`

	// MaxLevel caps progression; monsters typically stay at 1.
	MaxLevel int `yaml:"max_level"`
	// ExpToLevel is the per-level experience threshold.
	ExpToLevel int `yaml:"exp_to_level"`

	// DeadExp is the victim-side total experience value.
	DeadExp int `yaml:"dead_exp"`
	// GoldMin/GoldMax bound the kill reward paid to the killing blow.
	GoldMin int `yaml:"gold_min"`
	GoldMax int `yaml:"gold_max"`

	// Undead marks the type for the attacker-side flat damage bonus.
	Undead bool `yaml:"undead"`
	// VsUndeadBonus is this type's flat damage bonus against undead victims.
	VsUndeadBonus int `yaml:"vs_undead_bonus"`

	// ShopChance maps building kind to the per-decision errand probability.
	ShopChance map[string]float64 `yaml:"shop_chance"`
	// WanderChance is the idle wander probability per AI decision.
	WanderChance float64 `yaml:"wander_chance"`
}

// Validate checks the type's basic invariants.
//
// Postcondition: Returns nil iff the type is internally consistent; the
// first violation found is returned otherwise.
func (u *UnitType) Validate() error {
	if u.ID == "" {
		return fmt.Errorf("unit type: id must not be empty")
	}
	if u.Name == "" {
		return fmt.Errorf("unit type %q: name must not be empty", u.ID)
	}
	switch u.Archetype {
	case StatStrength, StatIntelligence, StatArtifice, StatVitality, StatWillpower:
	default:
		return fmt.Errorf("unit type %q: unknown archetype %q", u.ID, u.Archetype)
	}
	switch u.AttackKind {
	case AttackMelee, AttackRanged, AttackMagic:
	default:
		return fmt.Errorf("unit type %q: unknown attack_kind %q", u.ID, u.AttackKind)
	}
	if u.MaxHealth < 1 {
		return fmt.Errorf("unit type %q: max_health must be >= 1", u.ID)
	}
	if u.MinDamage < 0 || u.MaxDamage < u.MinDamage {
		return fmt.Errorf("unit type %q: damage range [%d,%d] invalid", u.ID, u.MinDamage, u.MaxDamage)
	}
	if u.AttackRange < 1 {
		return fmt.Errorf("unit type %q: attack_range must be >= 1", u.ID)
	}
	if u.AttackCooldown < 1 {
		return fmt.Errorf("unit type %q: attack_cooldown must be >= 1", u.ID)
	}
	if u.Speed <= 0 {
		return fmt.Errorf("unit type %q: speed must be > 0", u.ID)
	}
	if u.SightRange < 0 {
		return fmt.Errorf("unit type %q: sight_range must be >= 0", u.ID)
	}
	if u.MaxLevel < 1 {
		return fmt.Errorf("unit type %q: max_level must be >= 1", u.ID)
	}
	if u.MaxLevel > 1 && u.ExpToLevel < 1 {
		return fmt.Errorf("unit type %q: exp_to_level must be >= 1 when max_level > 1", u.ID)
	}
	if u.DeadExp < 0 {
		return fmt.Errorf("unit type %q: dead_exp must be >= 0", u.ID)
	}
	if u.GoldMin < 0 || u.GoldMax < u.GoldMin {
		return fmt.Errorf("unit type %q: gold range [%d,%d] invalid", u.ID, u.GoldMin, u.GoldMax)
	}
	for kind, p := range u.ShopChance {
		if p < 0 || p > 1 {
			return fmt.Errorf("unit type %q: shop_chance[%s] %v out of [0,1]", u.ID, kind, p)
		}
	}
	if u.WanderChance < 0 || u.WanderChance > 1 {
		return fmt.Errorf("unit type %q: wander_chance %v out of [0,1]", u.ID, u.WanderChance)
	}
	return nil
}

// LoadUnitTypeFromBytes parses a single unit type from raw YAML bytes.
//
// Postcondition: Returns a validated *UnitType or an error.
func LoadUnitTypeFromBytes(data []byte) (*UnitType, error) {
	var ut UnitType
	if err := yaml.Unmarshal(data, &ut); err != nil {
		return nil, fmt.Errorf("parsing unit type YAML: %w", err)
	}
	if err := ut.Validate(); err != nil {
		return nil, err
	}
	return &ut, nil
}

// LoadUnitTypes reads all *.yaml files in dir and returns the parsed types.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all types or an error on the first parse or
// validation failure; on error the partial result is discarded.
func LoadUnitTypes(dir string) ([]*UnitType, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading unit type dir %q: %w", dir, err)
	}

	var types []*UnitType
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		ut, err := LoadUnitTypeFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		types = append(types, ut)
	}
	return types, nil
}
