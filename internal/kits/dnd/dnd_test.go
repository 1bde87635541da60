package dnd

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"strings"
	"testing"

	toolcfg "github.com/toolforge/toolforge/internal/config/tool"
	"github.com/toolforge/toolforge/internal/tools"
)

func newTestKit(t *testing.T) *Kit {
	t.Helper()
	k, err := New(rand.New(rand.NewPCG(1, 2)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return k
}

func newTestGateway(t *testing.T, seed int64) *tools.Gateway {
	t.Helper()
	b := tools.NewRegistryBuilder()
	if err := Register(b, toolcfg.DndConfig{Seed: seed}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	return tools.NewGateway(b.Build())
}

func invoke(t *testing.T, g *tools.Gateway, name string, args map[string]any) map[string]any {
	t.Helper()
	out := g.Invoke(context.Background(), name, args)
	if !out.OK() {
		t.Fatalf("%s failed: %s", name, out.Failure.Text())
	}
	data, err := json.Marshal(out.Value)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return m
}

func TestTables_Load(t *testing.T) {
	tb, err := loadTables(tablesYAML)
	if err != nil {
		t.Fatalf("loadTables: %v", err)
	}
	if got := strings.Join(tb.raceNames(), ","); got != "human,elf,dwarf,halfling,gnome,half-orc,tiefling,dragonborn" {
		t.Errorf("unexpected races %s", got)
	}
	if len(tb.spells) != 8 {
		t.Errorf("expected 8 spells, got %d", len(tb.spells))
	}
	if got := strings.Join(tb.monsterNames(), ","); got != "goblin,skeleton,troll,dragon (young red),beholder" {
		t.Errorf("unexpected monsters %s", got)
	}
	if len(tb.conditions) != 15 {
		t.Errorf("expected 15 conditions, got %d", len(tb.conditions))
	}
	for env, opts := range tb.encounters {
		if len(opts) != 6 {
			t.Errorf("%s: expected 6 encounters, got %d", env, len(opts))
		}
	}
	troll := tb.monsters["troll"]
	if troll.AC != 15 || troll.CR != "5" || troll.STR != 18 || troll.XP != 1800 {
		t.Errorf("unexpected troll %+v", troll)
	}
}

func TestTables_Malformed(t *testing.T) {
	if _, err := loadTables([]byte("races: [")); err == nil {
		t.Error("expected parse error")
	}
	if _, err := loadTables([]byte("races:\n- name: orc\n  first: []\n  last: [x]\n")); err == nil {
		t.Error("expected error for race without names")
	}
}

func TestRegister_Catalogue(t *testing.T) {
	g := newTestGateway(t, 7)
	want := []string{
		"roll_dice", "generate_character_stats", "random_character_name", "lookup_spell",
		"get_monster_stats", "random_encounter", "lookup_condition",
	}
	if got := g.Registry().Names(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("expected %v, got %v", want, got)
	}
	tool, _ := g.Registry().Lookup("generate_character_stats")
	if !strings.Contains(string(tool.Parameters()), `"required":[]`) {
		t.Errorf("no-arg tool should have empty required, got %s", tool.Parameters())
	}
}

func TestRollDice(t *testing.T) {
	k := newTestKit(t)
	for _, notation := range []string{"2d6", "d20", " 4D6 ", "100d1000"} {
		v, err := k.rollDice(context.Background(), diceArgs{Dice: notation})
		if err != nil {
			t.Fatalf("%s: %v", notation, err)
		}
		roll, ok := v.(DiceRoll)
		if !ok {
			t.Fatalf("%s: expected DiceRoll, got %v", notation, v)
		}
		num, sides, _ := parseDice(strings.ToLower(strings.TrimSpace(notation)))
		if len(roll.Rolls) != num {
			t.Errorf("%s: expected %d rolls, got %d", notation, num, len(roll.Rolls))
		}
		sum := 0
		for _, r := range roll.Rolls {
			if r < 1 || r > sides {
				t.Errorf("%s: roll %d out of range", notation, r)
			}
			sum += r
		}
		if sum != roll.Total {
			t.Errorf("%s: total %d != sum %d", notation, roll.Total, sum)
		}
	}
}

func TestRollDice_Errors(t *testing.T) {
	k := newTestKit(t)
	cases := map[string]string{
		"101d6":  "Dice values out of range (max 100 dice, max d1000).",
		"1d1001": "Dice values out of range (max 100 dice, max d1000).",
		"0d6":    "Dice values out of range (max 100 dice, max d1000).",
		"fish":   "Invalid dice notation 'fish'",
		"2d":     "Invalid dice notation '2d'",
		"xd6":    "Invalid dice notation 'xd6'",
	}
	for notation, want := range cases {
		v, err := k.rollDice(context.Background(), diceArgs{Dice: notation})
		if err != nil {
			t.Fatalf("%s: unexpected error %v", notation, err)
		}
		msg, _ := v.(map[string]any)["error"].(string)
		if !strings.HasPrefix(msg, want) {
			t.Errorf("%s: expected %q, got %q", notation, want, msg)
		}
	}
}

func TestModifier(t *testing.T) {
	cases := map[int]string{3: "-4", 8: "-1", 9: "-1", 10: "+0", 11: "+0", 12: "+1", 18: "+4"}
	for score, want := range cases {
		if got := FormatModifier(Modifier(score)); got != want {
			t.Errorf("Modifier(%d) = %s, want %s", score, got, want)
		}
	}
}

func TestGenerateCharacterStats(t *testing.T) {
	out := invoke(t, newTestGateway(t, 42), "generate_character_stats", nil)
	scores, ok := out["ability_scores"].(map[string]any)
	if !ok || len(scores) != 6 {
		t.Fatalf("expected six ability scores, got %v", out)
	}
	for _, name := range []string{"STR", "DEX", "CON", "INT", "WIS", "CHA"} {
		s := scores[name].(map[string]any)
		rolls := s["rolls"].([]any)
		if len(rolls) != 4 {
			t.Errorf("%s: expected 4 rolls, got %d", name, len(rolls))
		}
		total, lowest := 0, 7
		for _, r := range rolls {
			n := int(r.(float64))
			total += n
			lowest = min(lowest, n)
		}
		if int(s["score"].(float64)) != total-lowest {
			t.Errorf("%s: score %v does not drop the lowest of %v", name, s["score"], rolls)
		}
		if s["modifier_str"] != FormatModifier(Modifier(total-lowest)) {
			t.Errorf("%s: unexpected modifier_str %v", name, s["modifier_str"])
		}
	}
}

func TestStatsOrder(t *testing.T) {
	v, _ := newTestKit(t).generateStats(context.Background(), struct{}{})
	data, _ := json.Marshal(v)
	text := string(data)
	last := -1
	for _, name := range []string{`"STR"`, `"DEX"`, `"CON"`, `"INT"`, `"WIS"`, `"CHA"`} {
		i := strings.Index(text, name)
		if i < last {
			t.Fatalf("abilities out of order in %s", text)
		}
		last = i
	}
}

func TestSeedIsReproducible(t *testing.T) {
	a := invoke(t, newTestGateway(t, 99), "roll_dice", map[string]any{"dice": "10d20"})
	b := invoke(t, newTestGateway(t, 99), "roll_dice", map[string]any{"dice": "10d20"})
	ja, _ := json.Marshal(a)
	jb, _ := json.Marshal(b)
	if string(ja) != string(jb) {
		t.Errorf("same seed gave %s and %s", ja, jb)
	}
}

func TestRandomCharacterName(t *testing.T) {
	g := newTestGateway(t, 3)
	out := invoke(t, g, "random_character_name", map[string]any{"race": " Half-Orc "})
	if out["race"] != "half-orc" {
		t.Errorf("expected normalised race, got %v", out["race"])
	}
	if out["name"] != out["first"].(string)+" "+out["last"].(string) {
		t.Errorf("name should join first and last: %v", out)
	}

	miss := invoke(t, g, "random_character_name", map[string]any{"race": "Orc"})
	if miss["error"] != "Unknown race 'orc'." {
		t.Errorf("unexpected error %v", miss["error"])
	}
	if len(miss["supported_races"].([]any)) != 8 {
		t.Errorf("expected 8 supported races, got %v", miss["supported_races"])
	}
}

func TestLookupSpell(t *testing.T) {
	g := newTestGateway(t, 1)
	out := invoke(t, g, "lookup_spell", map[string]any{"spell_name": "magic MISSILE"})
	if out["spell"] != "Magic Missile" || out["level"] != 1.0 || out["school"] != "Evocation" {
		t.Errorf("unexpected spell %v", out)
	}
	if out["casting_time"] != "1 action" || out["components"] != "V, S" {
		t.Errorf("unexpected spell fields %v", out)
	}

	miss := invoke(t, g, "lookup_spell", map[string]any{"spell_name": "Wish"})
	if miss["error"] != "Spell 'Wish' not found." {
		t.Errorf("unexpected error %v", miss["error"])
	}
	avail := miss["available_spells"].([]any)
	if len(avail) != 8 || avail[0] != "counterspell" {
		t.Errorf("expected sorted spell list, got %v", avail)
	}
}

func TestGetMonsterStats(t *testing.T) {
	g := newTestGateway(t, 1)
	out := invoke(t, g, "get_monster_stats", map[string]any{"monster_name": "dragon (young red)"})
	if out["monster"] != "Dragon (Young Red)" || out["AC"] != 18.0 || out["CR"] != "10" || out["CHA"] != 19.0 {
		t.Errorf("unexpected stat block %v", out)
	}
	if _, ok := out["name"]; ok {
		t.Error("table key should not leak into the stat block")
	}

	miss := invoke(t, g, "get_monster_stats", map[string]any{"monster_name": "tarrasque"})
	if len(miss["available_monsters"].([]any)) != 5 {
		t.Errorf("unexpected miss payload %v", miss)
	}
}

func TestRandomEncounter(t *testing.T) {
	g := newTestGateway(t, 5)
	tb, _ := loadTables(tablesYAML)

	out := invoke(t, g, "random_encounter", map[string]any{"environment": "Dungeon"})
	found := false
	for _, opt := range tb.encounters["dungeon"] {
		if opt == out["encounter"] {
			found = true
		}
	}
	if out["environment"] != "dungeon" || !found {
		t.Errorf("unexpected encounter %v", out)
	}

	miss := invoke(t, g, "random_encounter", map[string]any{"environment": "space"})
	if miss["error"] != "Unknown environment 'space'." {
		t.Errorf("unexpected error %v", miss["error"])
	}
}

func TestLookupCondition(t *testing.T) {
	g := newTestGateway(t, 1)
	out := invoke(t, g, "lookup_condition", map[string]any{"condition": "poisoned"})
	if out["condition"] != "Poisoned" || out["description"] != "A poisoned creature has disadvantage on attack rolls and ability checks." {
		t.Errorf("unexpected condition %v", out)
	}

	miss := invoke(t, g, "lookup_condition", map[string]any{"condition": "sleepy"})
	avail := miss["available_conditions"].([]any)
	if len(avail) != 15 || avail[0] != "blinded" || avail[14] != "unconscious" {
		t.Errorf("unexpected condition list %v", avail)
	}
}

func TestTitleCase(t *testing.T) {
	cases := map[string]string{
		"fireball":           "Fireball",
		"magic MISSILE":      "Magic Missile",
		"dragon (young red)": "Dragon (Young Red)",
		"half-orc":           "Half-Orc",
	}
	for in, want := range cases {
		if got := TitleCase(in); got != want {
			t.Errorf("TitleCase(%q) = %q, want %q", in, got, want)
		}
	}
}
