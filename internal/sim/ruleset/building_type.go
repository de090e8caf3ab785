package ruleset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Building kinds a shop errand can target.
const (
	BuildingWeaponsmith = "weaponsmith"
	BuildingArmorer     = "armorer"
	BuildingShop        = "shop"
	BuildingEnchanter   = "enchanter"
)

// BuildingType defines a building archetype loaded from YAML.
type BuildingType struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	// Kind selects which errands the building serves.
	Kind string `yaml:"kind"`
	// FootprintW/FootprintH is the tile footprint, locked on the grid.
	FootprintW int `yaml:"footprint_w"`
	FootprintH int `yaml:"footprint_h"`
	// Research lists item flags available once the building is constructed.
	Research []string `yaml:"research"`
	// ItemPrice is the flat price for shop-kind item purchases.
	ItemPrice int `yaml:"item_price"`
}

// Validate checks the type's invariants.
func (b *BuildingType) Validate() error {
	if b.ID == "" {
		return fmt.Errorf("building type: id must not be empty")
	}
	if b.Name == "" {
		return fmt.Errorf("building type %q: name must not be empty", b.ID)
	}
	switch b.Kind {
	case BuildingWeaponsmith, BuildingArmorer, BuildingShop, BuildingEnchanter:
	default:
		return fmt.Errorf("building type %q: unknown kind %q", b.ID, b.Kind)
	}
	if b.FootprintW < 1 || b.FootprintH < 1 {
		return fmt.Errorf("building type %q: footprint %dx%d must be >= 1x1", b.ID, b.FootprintW, b.FootprintH)
	}
	if b.ItemPrice < 0 {
		return fmt.Errorf("building type %q: item_price must be >= 0", b.ID)
	}
	return nil
}

// LoadBuildingTypeFromBytes parses a single building type from YAML bytes.
func LoadBuildingTypeFromBytes(data []byte) (*BuildingType, error) {
	var bt BuildingType
	if err := yaml.Unmarshal(data, &bt); err != nil {
		return nil, fmt.Errorf("parsing building type YAML: %w", err)
	}
	if err := bt.Validate(); err != nil {
		return nil, err
	}
	return &bt, nil
}

// LoadBuildingTypes reads all *.yaml files in dir.
//
// Precondition: dir must be a readable directory.
func LoadBuildingTypes(dir string) ([]*BuildingType, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading building type dir %q: %w", dir, err)
	}
	var types []*BuildingType
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		bt, err := LoadBuildingTypeFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		types = append(types, bt)
	}
	return types, nil
}
