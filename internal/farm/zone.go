package farm

import "fmt"

// Zone is a geographic grouping of fields.
type Zone struct {
	id        int
	name      string
	latitude  float64
	longitude float64

	fields children[*Field]
}

func NewZone(id int, name string, latitude, longitude float64) *Zone {
	return &Zone{id: id, name: name, latitude: latitude, longitude: longitude}
}

func (z *Zone) ID() int            { return z.id }
func (z *Zone) Name() string       { return z.name }
func (z *Zone) Latitude() float64  { return z.latitude }
func (z *Zone) Longitude() float64 { return z.longitude }

// Fields returns the current fields. The slice must not be modified.
func (z *Zone) Fields() []*Field { return z.fields.load() }

func (z *Zone) AddField(f *Field) { z.fields.add(f) }

func (z *Zone) FieldByID(id int) (*Field, bool) {
	return find(z.fields.load(), func(f *Field) bool { return f.ID() == id })
}

// RemoveField destroys the field with all its devices and then detaches it.
func (z *Zone) RemoveField(id int) error {
	ok := z.fields.remove(
		func(f *Field) bool { return f.ID() == id },
		func(f *Field) { f.Destroy() },
	)
	if !ok {
		return fmt.Errorf("%w: id %d in zone %d", ErrFieldNotFound, id, z.id)
	}
	return nil
}

// Destroy destroys every field of the zone.
func (z *Zone) Destroy() {
	z.fields.drain(func(f *Field) { f.Destroy() })
}
