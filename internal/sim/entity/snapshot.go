package entity

// Snapshot is the flat scalar save-game record for one entity.
//
// Known limitation, kept deliberately: equipment tiers, gold, and AI errand
// state are not part of the persisted snapshot. A restored unit starts with
// base equipment, an empty purse, and no errand.
type Snapshot struct {
	TileI       int    `yaml:"tile_i" json:"tile_i"`
	TileJ       int    `yaml:"tile_j" json:"tile_j"`
	TypeID      string `yaml:"type_id" json:"type_id"`
	Health      int    `yaml:"health" json:"health"`
	MaxHealth   int    `yaml:"max_health" json:"max_health"`
	State       int    `yaml:"state" json:"state"`
	Level       int    `yaml:"level" json:"level"`
	Experience  int    `yaml:"experience" json:"experience"`
	MinDamage   int    `yaml:"min_damage" json:"min_damage"`
	MaxDamage   int    `yaml:"max_damage" json:"max_damage"`
	AttackRange int    `yaml:"attack_range" json:"attack_range"`
	Team        int    `yaml:"team" json:"team"`
	Color       int    `yaml:"color" json:"color"`
}
