package dnd

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed tables.yaml
var tablesYAML []byte

type race struct {
	Name  string   `yaml:"name"`
	First []string `yaml:"first"`
	Last  []string `yaml:"last"`
}

// SpellEntry is one entry of the spell reference.
type SpellEntry struct {
	Name        string `yaml:"name" json:"-"`
	Level       int    `yaml:"level" json:"level"`
	School      string `yaml:"school" json:"school"`
	CastingTime string `yaml:"casting_time" json:"casting_time"`
	Range       string `yaml:"range" json:"range"`
	Components  string `yaml:"components" json:"components"`
	Duration    string `yaml:"duration" json:"duration"`
	Description string `yaml:"description" json:"description"`
}

// Abilities are the six ability scores in stat-block order.
type Abilities struct {
	STR int `yaml:"STR" json:"STR"`
	DEX int `yaml:"DEX" json:"DEX"`
	CON int `yaml:"CON" json:"CON"`
	INT int `yaml:"INT" json:"INT"`
	WIS int `yaml:"WIS" json:"WIS"`
	CHA int `yaml:"CHA" json:"CHA"`
}

// StatBlock is a condensed stat block.
type StatBlock struct {
	Name      string `yaml:"name" json:"-"`
	Size      string `yaml:"size" json:"size"`
	Type      string `yaml:"type" json:"type"`
	Alignment string `yaml:"alignment" json:"alignment"`
	AC        int    `yaml:"ac" json:"AC"`
	HP        string `yaml:"hp" json:"HP"`
	Speed     string `yaml:"speed" json:"speed"`
	Abilities `yaml:"abilities"`
	CR        string   `yaml:"cr" json:"CR"`
	XP        int      `yaml:"xp" json:"XP"`
	Traits    []string `yaml:"traits" json:"traits"`
	Actions   []string `yaml:"actions" json:"actions"`
}

type encounterTable struct {
	Environment string   `yaml:"environment"`
	Options     []string `yaml:"options"`
}

type condition struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// tables holds the reference data keyed for lookup. Slices keep file order.
type tables struct {
	Races      []race           `yaml:"races"`
	Spells     []SpellEntry     `yaml:"spells"`
	Monsters   []StatBlock      `yaml:"monsters"`
	Encounters []encounterTable `yaml:"encounters"`
	Conditions []condition      `yaml:"conditions"`

	races      map[string]race
	spells     map[string]SpellEntry
	monsters   map[string]StatBlock
	encounters map[string][]string
	conditions map[string]string
}

func loadTables(data []byte) (*tables, error) {
	var t tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse dnd tables: %w", err)
	}

	t.races = make(map[string]race, len(t.Races))
	for _, r := range t.Races {
		if len(r.First) == 0 || len(r.Last) == 0 {
			return nil, fmt.Errorf("race %q has no names", r.Name)
		}
		t.races[r.Name] = r
	}
	t.spells = make(map[string]SpellEntry, len(t.Spells))
	for _, s := range t.Spells {
		t.spells[s.Name] = s
	}
	t.monsters = make(map[string]StatBlock, len(t.Monsters))
	for _, m := range t.Monsters {
		t.monsters[m.Name] = m
	}
	t.encounters = make(map[string][]string, len(t.Encounters))
	for _, e := range t.Encounters {
		if len(e.Options) == 0 {
			return nil, fmt.Errorf("environment %q has no encounters", e.Environment)
		}
		t.encounters[e.Environment] = e.Options
	}
	t.conditions = make(map[string]string, len(t.Conditions))
	for _, c := range t.Conditions {
		t.conditions[c.Name] = c.Description
	}
	return &t, nil
}

func (t *tables) raceNames() []string {
	out := make([]string, len(t.Races))
	for i, r := range t.Races {
		out[i] = r.Name
	}
	return out
}

func (t *tables) monsterNames() []string {
	out := make([]string, len(t.Monsters))
	for i, m := range t.Monsters {
		out[i] = m.Name
	}
	return out
}

func (t *tables) environments() []string {
	out := make([]string, len(t.Encounters))
	for i, e := range t.Encounters {
		out[i] = e.Environment
	}
	return out
}

func (t *tables) spellNames() []string {
	out := make([]string, 0, len(t.spells))
	for name := range t.spells {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (t *tables) conditionNames() []string {
	out := make([]string, 0, len(t.conditions))
	for name := range t.conditions {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
