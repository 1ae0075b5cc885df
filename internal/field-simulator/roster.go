package field_simulator

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/LeonardoBeccarini/field_simulator/internal/model"
)

//go:embed roster.yaml
var seedRoster []byte

// LoadRoster reads and validates the roster at path. An empty path loads the
// built-in seed roster.
func LoadRoster(path string) (model.Roster, error) {
	data := seedRoster
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return model.Roster{}, fmt.Errorf("reading roster: %w", err)
		}
		data = b
	}
	return ParseRoster(data)
}

func ParseRoster(data []byte) (model.Roster, error) {
	var r model.Roster
	if err := yaml.Unmarshal(data, &r); err != nil {
		return model.Roster{}, fmt.Errorf("parsing roster: %w", err)
	}
	if err := r.Validate(); err != nil {
		return model.Roster{}, err
	}
	return r, nil
}
