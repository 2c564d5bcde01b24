package config

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"heic_sim/internal/combat"
)

var (
	// ErrItemSlug indicates an item entry without a slug.
	ErrItemSlug = errors.New("item slug is required")
	// ErrMaxTurns indicates a negative round cap.
	ErrMaxTurns = errors.New("max_turns must not be negative")
)

// BattleFile is one encounter on disk: both loadouts and run options.
type BattleFile struct {
	Left     FighterDef `yaml:"left"`
	Right    FighterDef `yaml:"right"`
	MaxTurns int        `yaml:"max_turns"`
	Seed     int64      `yaml:"seed"`
	Scripts  []string   `yaml:"scripts"`

	dir string
}

// FighterDef is a loadout as written in a battle file. Missing stats are
// left at zero and defaulted by the engine.
type FighterDef struct {
	Name     string         `yaml:"name"`
	HP       int            `yaml:"hp"`
	Atk      int            `yaml:"atk"`
	Armor    int            `yaml:"armor"`
	Speed    int            `yaml:"speed"`
	Statuses map[string]int `yaml:"statuses"`
	Weapon   string         `yaml:"weapon"`
	Items    []ItemRef      `yaml:"items"`
}

// ItemRef accepts either a bare slug or a {slug, tier} mapping.
type ItemRef struct {
	Slug string `yaml:"slug"`
	Tier string `yaml:"tier"`
}

func (r *ItemRef) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		r.Slug = strings.TrimSpace(node.Value)
		return nil
	}
	type plain ItemRef
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*r = ItemRef{Slug: strings.TrimSpace(p.Slug), Tier: strings.TrimSpace(p.Tier)}
	return nil
}

func (d FighterDef) Loadout() combat.Loadout {
	lo := combat.Loadout{
		Name: d.Name,
		Stats: combat.Stats{
			HP:    d.HP,
			Atk:   d.Atk,
			Armor: d.Armor,
			Speed: d.Speed,
		},
		Weapon: d.Weapon,
	}
	if len(d.Statuses) > 0 {
		lo.Statuses = make(map[string]int, len(d.Statuses))
		for k, v := range d.Statuses {
			lo.Statuses[k] = v
		}
	}
	for _, it := range d.Items {
		lo.Items = append(lo.Items, combat.Item{Slug: it.Slug, Tier: it.Tier})
	}
	return lo
}

func (d FighterDef) validate(side string) error {
	for i, it := range d.Items {
		if it.Slug == "" {
			return fmt.Errorf("%s item %d: %w", side, i, ErrItemSlug)
		}
	}
	return nil
}

func (f *BattleFile) Validate() error {
	if f.MaxTurns < 0 {
		return ErrMaxTurns
	}
	if err := f.Left.validate("left"); err != nil {
		return err
	}
	return f.Right.validate("right")
}

// Loadouts returns the left and right loadouts.
func (f *BattleFile) Loadouts() (combat.Loadout, combat.Loadout) {
	return f.Left.Loadout(), f.Right.Loadout()
}
