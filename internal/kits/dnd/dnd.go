// Package dnd provides Dungeons & Dragons helper tools: dice, ability
// scores, names, and quick reference lookups. Lookups that miss return an
// {"error": …} payload listing the valid choices instead of failing.
package dnd

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	toolcfg "github.com/toolforge/toolforge/internal/config/tool"
	"github.com/toolforge/toolforge/internal/schema"
	"github.com/toolforge/toolforge/internal/tools"
)

const (
	maxDice  = 100
	maxSides = 1000
)

// Kit holds the reference tables and the random source.
type Kit struct {
	tables *tables

	mu  sync.Mutex
	rng *rand.Rand
}

// New returns a Kit using rng, or a time-seeded source when rng is nil.
func New(rng *rand.Rand) (*Kit, error) {
	t, err := loadTables(tablesYAML)
	if err != nil {
		return nil, err
	}
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	return &Kit{tables: t, rng: rng}, nil
}

// Register adds the kit's tools to r. A non-zero cfg.Seed makes rolls
// reproducible.
func Register(r schema.ToolRegistrar, cfg toolcfg.DndConfig) error {
	var rng *rand.Rand
	if cfg.Seed != 0 {
		rng = rand.New(rand.NewPCG(uint64(cfg.Seed), uint64(cfg.Seed)))
	}
	k, err := New(rng)
	if err != nil {
		return err
	}

	r.Add(tools.NewFuncTool("roll_dice",
		"Roll dice using standard DnD notation, e.g. '2d6', '1d20', '4d6'. Returns each individual roll and the total.",
		k.rollDice))
	r.Add(tools.NewFuncTool("generate_character_stats",
		"Roll a full set of D&D 5e ability scores (STR, DEX, CON, INT, WIS, CHA) using the standard 4d6-drop-lowest method. Also calculates each ability modifier.",
		k.generateStats))
	r.Add(tools.NewFuncTool("random_character_name",
		"Generate a random D&D character name for a given race. Supported races: "+strings.Join(k.tables.raceNames(), ", ")+".",
		k.randomName))
	r.Add(tools.NewFuncTool("lookup_spell",
		"Look up details for a D&D 5e spell by name. Returns level, school, casting time, range, components, duration, and description.",
		k.lookupSpell))
	r.Add(tools.NewFuncTool("get_monster_stats",
		"Get the stat block for a D&D 5e monster. Available monsters: "+strings.Join(k.tables.monsterNames(), ", ")+".",
		k.monsterStats))
	r.Add(tools.NewFuncTool("random_encounter",
		"Generate a random encounter for a given environment. Supported environments: "+strings.Join(k.tables.environments(), ", ")+".",
		k.randomEncounter))
	r.Add(tools.NewFuncTool("lookup_condition",
		"Look up the rules for a D&D 5e condition (e.g. 'blinded', 'paralyzed', 'poisoned').",
		k.lookupCondition))
	return nil
}

func (k *Kit) intN(n int) int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.rng.IntN(n)
}

func (k *Kit) roll(sides int) int { return k.intN(sides) + 1 }

type diceArgs struct {
	Dice string `json:"dice"`
}

// DiceRoll is the result of roll_dice.
type DiceRoll struct {
	Notation string `json:"notation"`
	Rolls    []int  `json:"rolls"`
	Total    int    `json:"total"`
}

func (k *Kit) rollDice(_ context.Context, in diceArgs) (any, error) {
	notation := strings.ToLower(strings.TrimSpace(in.Dice))
	num, sides, err := parseDice(notation)
	if err != nil {
		return map[string]any{
			"error": fmt.Sprintf("Invalid dice notation '%s': %v. Use format like '2d6' or '1d20'.", notation, err),
		}, nil
	}
	if num < 1 || sides < 1 || num > maxDice || sides > maxSides {
		return map[string]any{"error": "Dice values out of range (max 100 dice, max d1000)."}, nil
	}

	out := DiceRoll{Notation: notation, Rolls: make([]int, num)}
	for i := range out.Rolls {
		out.Rolls[i] = k.roll(sides)
		out.Total += out.Rolls[i]
	}
	return out, nil
}

// parseDice splits "NdS"; an empty count means one die.
func parseDice(s string) (num, sides int, err error) {
	parts := strings.Split(s, "d")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected exactly one 'd'")
	}
	num = 1
	if parts[0] != "" {
		if num, err = strconv.Atoi(parts[0]); err != nil {
			return 0, 0, fmt.Errorf("bad dice count %q", parts[0])
		}
	}
	if sides, err = strconv.Atoi(parts[1]); err != nil {
		return 0, 0, fmt.Errorf("bad side count %q", parts[1])
	}
	return num, sides, nil
}

// AbilityScore is one rolled ability.
type AbilityScore struct {
	Rolls       []int  `json:"rolls"`
	Score       int    `json:"score"`
	Modifier    int    `json:"modifier"`
	ModifierStr string `json:"modifier_str"`
}

// AbilityScores keeps the six abilities in stat-block order.
type AbilityScores struct {
	STR AbilityScore `json:"STR"`
	DEX AbilityScore `json:"DEX"`
	CON AbilityScore `json:"CON"`
	INT AbilityScore `json:"INT"`
	WIS AbilityScore `json:"WIS"`
	CHA AbilityScore `json:"CHA"`
}

func (k *Kit) generateStats(_ context.Context, _ struct{}) (any, error) {
	var scores AbilityScores
	for _, s := range []*AbilityScore{&scores.STR, &scores.DEX, &scores.CON, &scores.INT, &scores.WIS, &scores.CHA} {
		*s = k.rollAbility()
	}
	return map[string]any{"ability_scores": scores}, nil
}

// rollAbility rolls 4d6 and drops the lowest die.
func (k *Kit) rollAbility() AbilityScore {
	rolls := make([]int, 4)
	total, lowest := 0, 7
	for i := range rolls {
		rolls[i] = k.roll(6)
		total += rolls[i]
		lowest = min(lowest, rolls[i])
	}
	score := total - lowest
	mod := Modifier(score)
	return AbilityScore{Rolls: rolls, Score: score, Modifier: mod, ModifierStr: FormatModifier(mod)}
}

// Modifier is floor((score-10)/2).
func Modifier(score int) int {
	d := score - 10
	if d < 0 {
		return -((-d + 1) / 2)
	}
	return d / 2
}

// FormatModifier renders a modifier with an explicit sign for non-negatives.
func FormatModifier(m int) string {
	if m >= 0 {
		return "+" + strconv.Itoa(m)
	}
	return strconv.Itoa(m)
}

type raceArgs struct {
	Race string `json:"race"`
}

func (k *Kit) randomName(_ context.Context, in raceArgs) (any, error) {
	key := strings.ToLower(strings.TrimSpace(in.Race))
	r, ok := k.tables.races[key]
	if !ok {
		return map[string]any{
			"error":           fmt.Sprintf("Unknown race '%s'.", key),
			"supported_races": k.tables.raceNames(),
		}, nil
	}
	first := r.First[k.intN(len(r.First))]
	last := r.Last[k.intN(len(r.Last))]
	return map[string]any{"race": key, "name": first + " " + last, "first": first, "last": last}, nil
}

type spellArgs struct {
	SpellName string `json:"spell_name"`
}

// SpellResult is a spell entry headed by its display name.
type SpellResult struct {
	Spell string `json:"spell"`
	SpellEntry
}

func (k *Kit) lookupSpell(_ context.Context, in spellArgs) (any, error) {
	spell, ok := k.tables.spells[strings.ToLower(strings.TrimSpace(in.SpellName))]
	if !ok {
		return map[string]any{
			"error":            fmt.Sprintf("Spell '%s' not found.", in.SpellName),
			"available_spells": k.tables.spellNames(),
		}, nil
	}
	return SpellResult{Spell: TitleCase(in.SpellName), SpellEntry: spell}, nil
}

type monsterArgs struct {
	MonsterName string `json:"monster_name"`
}

// MonsterResult is a stat block headed by its display name.
type MonsterResult struct {
	Monster string `json:"monster"`
	StatBlock
}

func (k *Kit) monsterStats(_ context.Context, in monsterArgs) (any, error) {
	m, ok := k.tables.monsters[strings.ToLower(strings.TrimSpace(in.MonsterName))]
	if !ok {
		return map[string]any{
			"error":              fmt.Sprintf("Monster '%s' not found.", in.MonsterName),
			"available_monsters": k.tables.monsterNames(),
		}, nil
	}
	return MonsterResult{Monster: TitleCase(in.MonsterName), StatBlock: m}, nil
}

type environmentArgs struct {
	Environment string `json:"environment"`
}

func (k *Kit) randomEncounter(_ context.Context, in environmentArgs) (any, error) {
	key := strings.ToLower(strings.TrimSpace(in.Environment))
	options, ok := k.tables.encounters[key]
	if !ok {
		return map[string]any{
			"error":                  fmt.Sprintf("Unknown environment '%s'.", in.Environment),
			"supported_environments": k.tables.environments(),
		}, nil
	}
	return map[string]any{"environment": key, "encounter": options[k.intN(len(options))]}, nil
}

type conditionArgs struct {
	Condition string `json:"condition"`
}

func (k *Kit) lookupCondition(_ context.Context, in conditionArgs) (any, error) {
	desc, ok := k.tables.conditions[strings.ToLower(strings.TrimSpace(in.Condition))]
	if !ok {
		return map[string]any{
			"error":                fmt.Sprintf("Condition '%s' not found.", in.Condition),
			"available_conditions": k.tables.conditionNames(),
		}, nil
	}
	return map[string]any{"condition": TitleCase(in.Condition), "description": desc}, nil
}

// TitleCase upper-cases every letter that follows a non-letter and
// lower-cases the rest: "dragon (young red)" → "Dragon (Young Red)".
func TitleCase(s string) string {
	var b strings.Builder
	prevLetter := false
	for _, r := range s {
		if prevLetter {
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(unicode.ToUpper(r))
		}
		prevLetter = unicode.IsLetter(r)
	}
	return b.String()
}
