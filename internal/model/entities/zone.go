package entities

// ZoneSpec is a geographic grouping of fields.
type ZoneSpec struct {
	Name      string      `json:"name" yaml:"name"`
	Latitude  float64     `json:"latitude" yaml:"latitude"`
	Longitude float64     `json:"longitude" yaml:"longitude"`
	Fields    []FieldSpec `json:"fields" yaml:"fields"`
}

// Roster is the declarative description of the whole simulated fleet.
// It carries no ids: those are assigned when the fleet is built.
type Roster struct {
	Zones []ZoneSpec `json:"zones" yaml:"zones"`
}
