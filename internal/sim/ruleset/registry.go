package ruleset

import "fmt"

// Registry indexes all loaded tables by ID. Built once at startup and
// read-only afterward.
type Registry struct {
	unitTypes     map[string]*UnitType
	buildingTypes map[string]*BuildingType
	equipment     *EquipmentTable
}

// NewRegistry builds a Registry from loaded tables.
//
// Precondition: equipment must be non-nil; IDs must be unique.
// Postcondition: Returns a registry or an error naming the duplicate ID.
func NewRegistry(units []*UnitType, buildings []*BuildingType, equipment *EquipmentTable) (*Registry, error) {
	if equipment == nil {
		return nil, fmt.Errorf("ruleset: equipment table must not be nil")
	}
	r := &Registry{
		unitTypes:     make(map[string]*UnitType, len(units)),
		buildingTypes: make(map[string]*BuildingType, len(buildings)),
		equipment:     equipment,
	}
	for _, ut := range units {
		if _, dup := r.unitTypes[ut.ID]; dup {
			return nil, fmt.Errorf("ruleset: duplicate unit type ID %q", ut.ID)
		}
		r.unitTypes[ut.ID] = ut
	}
	for _, bt := range buildings {
		if _, dup := r.buildingTypes[bt.ID]; dup {
			return nil, fmt.Errorf("ruleset: duplicate building type ID %q", bt.ID)
		}
		r.buildingTypes[bt.ID] = bt
	}
	return r, nil
}

// UnitType returns the unit type with the given ID.
//
// Postcondition: Returns (type, true) if found, (nil, false) otherwise.
func (r *Registry) UnitType(id string) (*UnitType, bool) {
	ut, ok := r.unitTypes[id]
	return ut, ok
}

// BuildingType returns the building type with the given ID.
func (r *Registry) BuildingType(id string) (*BuildingType, bool) {
	bt, ok := r.buildingTypes[id]
	return bt, ok
}

// Equipment returns the shared equipment tier table.
func (r *Registry) Equipment() *EquipmentTable {
	return r.equipment
}

// UnitTypeCount returns the number of registered unit types.
func (r *Registry) UnitTypeCount() int { return len(r.unitTypes) }

// BuildingTypeCount returns the number of registered building types.
func (r *Registry) BuildingTypeCount() int { return len(r.buildingTypes) }
