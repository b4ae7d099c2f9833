package arena

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/turnarena/internal/game/combat"
	"github.com/cory-johannsen/turnarena/internal/game/entity"
)

// DefaultMaxHealth applies to fighters whose max_health is omitted.
const DefaultMaxHealth = 20

//go:embed roster.yaml
var defaultRosterYAML []byte

// yamlRosterFile is the top-level YAML structure for roster files.
type yamlRosterFile struct {
	Fighters []yamlFighter `yaml:"fighters"`
}

type yamlFighter struct {
	Identifier string       `yaml:"identifier"`
	Team       string       `yaml:"team"`
	Position   yamlVec      `yaml:"position"`
	Rotation   yamlRotation `yaml:"rotation"`
	Image      string       `yaml:"image"`
	MaxHealth  int          `yaml:"max_health"`
}

type yamlVec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

type yamlRotation struct {
	Pitch float64 `yaml:"pitch"`
	Yaw   float64 `yaml:"yaw"`
}

// Fighter is one roster slot.
type Fighter struct {
	Identifier string
	Side       combat.Side
	Position   entity.Vec3
	Rotation   entity.Rotation
	Image      string
	MaxHealth  int
}

// Spec converts the slot into an entity creation spec.
func (f Fighter) Spec() entity.Spec {
	return entity.Spec{
		Identifier: f.Identifier,
		Pos:        f.Position,
		Rot:        f.Rotation,
		MaxHealth:  f.MaxHealth,
		Image:      f.Image,
	}
}

// Roster is the ordered list of fighters placed at setup.
type Roster struct {
	Fighters []Fighter
}

// DefaultRoster returns the embedded 3 v 3 roster.
//
// Postcondition: Returns a validated Roster; the embedded file is always valid.
func DefaultRoster() *Roster {
	r, err := LoadRosterFromBytes(defaultRosterYAML)
	if err != nil {
		panic(fmt.Sprintf("arena: embedded roster is invalid: %v", err))
	}
	return r
}

// LoadRosterFromFile reads and validates a roster YAML file.
//
// Precondition: path must point to a YAML roster file.
// Postcondition: Returns a validated Roster or a non-nil error.
func LoadRosterFromFile(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading roster file %s: %w", path, err)
	}
	return LoadRosterFromBytes(data)
}

// LoadRosterFromBytes parses and validates a roster from YAML bytes.
//
// Postcondition: Returns a validated Roster or a non-nil error.
func LoadRosterFromBytes(data []byte) (*Roster, error) {
	var file yamlRosterFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing roster YAML: %w", err)
	}

	r := &Roster{}
	var errs []error
	for i, yf := range file.Fighters {
		f := Fighter{
			Identifier: yf.Identifier,
			Position:   entity.Vec3{X: yf.Position.X, Y: yf.Position.Y, Z: yf.Position.Z},
			Rotation:   entity.Rotation{Pitch: yf.Rotation.Pitch, Yaw: yf.Rotation.Yaw},
			Image:      yf.Image,
			MaxHealth:  yf.MaxHealth,
		}
		switch yf.Team {
		case "player":
			f.Side = combat.SidePlayer
		case "ai":
			f.Side = combat.SideAI
		default:
			errs = append(errs, fmt.Errorf("fighter %d: team must be player or ai, got %q", i, yf.Team))
		}
		if f.MaxHealth == 0 {
			f.MaxHealth = DefaultMaxHealth
		}
		r.Fighters = append(r.Fighters, f)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("validating roster: %w", errors.Join(errs...))
	}
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("validating roster: %w", err)
	}
	return r, nil
}

// Validate checks that both teams are populated and every fighter is placeable.
func (r *Roster) Validate() error {
	var errs []error
	counts := map[combat.Side]int{}
	for i, f := range r.Fighters {
		if f.Identifier == "" {
			errs = append(errs, fmt.Errorf("fighter %d: identifier must not be empty", i))
		}
		if f.Identifier == entity.PlayerIdentifier {
			errs = append(errs, fmt.Errorf("fighter %d: identifier %q is reserved", i, f.Identifier))
		}
		if f.MaxHealth <= 0 {
			errs = append(errs, fmt.Errorf("fighter %d: max_health must be > 0, got %d", i, f.MaxHealth))
		}
		if f.Side != combat.SidePlayer && f.Side != combat.SideAI {
			errs = append(errs, fmt.Errorf("fighter %d: side must be player or ai", i))
		}
		counts[f.Side]++
	}
	if counts[combat.SidePlayer] == 0 {
		errs = append(errs, errors.New("roster must contain at least one player fighter"))
	}
	if counts[combat.SideAI] == 0 {
		errs = append(errs, errors.New("roster must contain at least one ai fighter"))
	}
	return errors.Join(errs...)
}
