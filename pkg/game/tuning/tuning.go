package tuning

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"github.com/achgulp/axon-bbs-sub000/pkg/game/types"
	"gopkg.in/yaml.v3"
)

//go:embed tuning.yaml
var defaultTuning []byte

// UnitStats are the static attributes of a unit type.
type UnitStats struct {
	Cost   int     `yaml:"cost"`
	Health int     `yaml:"health"`
	Speed  float64 `yaml:"speed"`
	Damage int     `yaml:"damage"`
	Range  float64 `yaml:"range"`
	// AIWeight is the share of builds the synthetic opponent gives this type
	AIWeight float64 `yaml:"ai_weight"`
}

type Tuning struct {
	FortressHealth         int                          `yaml:"fortress_health"`
	StartingResources      int                          `yaml:"starting_resources"`
	ResourceGenerationRate int                          `yaml:"resource_generation_rate"`
	AttackCooldownMs       int64                        `yaml:"attack_cooldown_ms"`
	Units                  map[types.UnitType]UnitStats `yaml:"units"`
}

// Default returns the built-in tuning. It panics if the embedded file is invalid.
func Default() *Tuning {
	t, err := Parse(defaultTuning)
	if err != nil {
		panic(fmt.Sprintf("invalid embedded tuning: %v", err))
	}
	return t
}

// Load reads a tuning file. Fields missing from the file keep their default values.
func Load(path string) (*Tuning, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tuning file: %v", err)
	}
	base := Default()
	if err := yaml.Unmarshal(b, base); err != nil {
		return nil, fmt.Errorf("failed to parse tuning file: %v", err)
	}
	if err := base.validate(); err != nil {
		return nil, err
	}
	return base, nil
}

func Parse(b []byte) (*Tuning, error) {
	t := &Tuning{}
	if err := yaml.Unmarshal(b, t); err != nil {
		return nil, fmt.Errorf("failed to parse tuning: %v", err)
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Tuning) validate() error {
	if t.FortressHealth <= 0 {
		return fmt.Errorf("fortress_health must be positive")
	}
	if t.AttackCooldownMs < 0 {
		return fmt.Errorf("attack_cooldown_ms must not be negative")
	}
	if len(t.Units) == 0 {
		return fmt.Errorf("no unit types defined")
	}
	for unitType, s := range t.Units {
		if s.Health <= 0 || s.Speed <= 0 || s.Range <= 0 {
			return fmt.Errorf("unit %s: health, speed and range must be positive", unitType)
		}
	}
	return nil
}

// Stats returns the stats for a unit type.
func (t *Tuning) Stats(unitType types.UnitType) (UnitStats, bool) {
	s, ok := t.Units[unitType]
	return s, ok
}

// UnitTypes returns the configured unit types, most expensive first.
func (t *Tuning) UnitTypes() []types.UnitType {
	unitTypes := make([]types.UnitType, 0, len(t.Units))
	for unitType := range t.Units {
		unitTypes = append(unitTypes, unitType)
	}
	sort.Slice(unitTypes, func(i, j int) bool {
		ci, cj := t.Units[unitTypes[i]].Cost, t.Units[unitTypes[j]].Cost
		if ci != cj {
			return ci > cj
		}
		return unitTypes[i] < unitTypes[j]
	})
	return unitTypes
}
