package combat

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpeedTieRightActsFirst(t *testing.T) {
	res := Simulate(nil, fighter("Left", 10, 1, 0, 5), fighter("Right", 10, 1, 0, 5), Options{MaxTurns: 1})
	require.NotEmpty(t, res.Log)
	assert.Equal(t, "-- Turn 1 -- Right", res.Log[0].Text)

	res = Simulate(nil, fighter("Left", 10, 1, 0, 6), fighter("Right", 10, 1, 0, 5), Options{MaxTurns: 1})
	assert.Equal(t, "-- Turn 1 -- Left", res.Log[0].Text)
}

func TestBareDuelTrace(t *testing.T) {
	res := Simulate(nil, fighter("L", 10, 3, 0, 1), fighter("R", 10, 3, 0, 1), Options{})

	assert.Equal(t, RightWin, res.Outcome)
	assert.Equal(t, 7, res.Rounds)
	assert.Equal(t, []string{
		"-- Turn 1 -- R", "R hits L for 3",
		"-- Turn 2 -- L", "L hits R for 3",
		"-- Turn 3 -- R", "R hits L for 3",
		"-- Turn 4 -- L", "L hits R for 3",
		"-- Turn 5 -- R", "R hits L for 3",
		"-- Turn 6 -- L", "L hits R for 3",
		"-- Turn 7 -- R", "R hits L for 3",
	}, res.Lines())
	assert.Equal(t, 0, res.Left.HPRemaining)
	assert.Equal(t, 1, res.Right.HPRemaining)
	assert.Equal(t, 4, res.Right.StrikesAttempted)
	assert.Equal(t, 4, res.Right.StrikesLanded)
	assert.Equal(t, 3, res.Left.StrikesAttempted)
	assert.Equal(t, 9, res.Left.HPDamageDealt)
	assert.Empty(t, res.Faults)
}

func TestNoDamageIsDrawAtRoundCap(t *testing.T) {
	res := Simulate(nil, fighter("L", 10, 0, 0, 1), fighter("R", 10, 0, 0, 1), Options{})
	assert.Equal(t, Draw, res.Outcome)
	assert.Equal(t, 100, res.Rounds)

	res = Simulate(nil, fighter("L", 10, 0, 0, 1), fighter("R", 10, 0, 0, 1), Options{MaxTurns: 12})
	assert.Equal(t, Draw, res.Outcome)
	assert.Equal(t, 12, res.Rounds)
}

func TestMutualKnockoutIsDraw(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.On("spikes", EvBattleStart, func(c *Context) error {
		c.AddStatus(c.Self, Thorns, 5)
		return nil
	}))
	right := fighter("R", 5, 0, 0, 0)
	right.Weapon = "spikes"

	res := Simulate(reg, fighter("L", 5, 5, 0, 1), right, Options{})

	assert.Equal(t, Draw, res.Outcome)
	assert.Equal(t, 1, res.Rounds)
	assert.Equal(t, 0, res.Left.HPRemaining)
	assert.Equal(t, 0, res.Right.HPRemaining)
}

func TestLoadoutDefaults(t *testing.T) {
	e := NewEntity(Loadout{Stats: Stats{Armor: -3}, Statuses: map[string]int{Poison: -2, Regen: 1}})
	assert.Equal(t, "Fighter", e.Name)
	assert.Equal(t, 10, e.HP)
	assert.Equal(t, 10, e.HPMax)
	assert.Equal(t, 0, e.Armor)
	assert.Equal(t, 0, e.Atk)
	assert.Equal(t, 0, e.Statuses[Poison])
	assert.Equal(t, 1, e.Statuses[Regen])
	assert.Equal(t, 1, e.ExposedLimit)
	assert.True(t, e.FirstTurn)
}

func TestLifecycleEventOrder(t *testing.T) {
	reg := NewRegistry()
	var calls []string
	for _, ev := range []Event{EvPre, EvBattleStart, EvPreTurnStart, EvTurnStart, EvRecomputeAttack, EvTurnEnd} {
		require.NoError(t, reg.On("probe", ev, func(c *Context) error {
			calls = append(calls, fmt.Sprintf("%s:%s", c.Self.Name, ev))
			return nil
		}))
	}
	left := fighter("L", 10, 0, 0, 0)
	left.Weapon = "probe"
	right := fighter("R", 10, 0, 0, 0)
	right.Weapon = "probe"

	Simulate(reg, left, right, Options{MaxTurns: 1})

	assert.Equal(t, []string{
		"L:pre", "R:pre",
		"L:battleStart", "R:battleStart",
		"R:preTurnStart", "R:turnStart", "R:recomputeAttack", "R:turnEnd",
	}, calls)
}

func TestFirstTurnClearedAfterOwnTurn(t *testing.T) {
	reg := NewRegistry()
	var seen []bool
	require.NoError(t, reg.On("drum", EvTurnStart, func(c *Context) error {
		seen = append(seen, c.Self.FirstTurn)
		return nil
	}))
	left := fighter("L", 10, 0, 0, 1)
	left.Weapon = "drum"

	Simulate(reg, left, fighter("R", 10, 0, 0, 0), Options{MaxTurns: 5})

	assert.Equal(t, []bool{true, false, false}, seen)
}

func TestSameSeedSameBattle(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.On("dice", EvTurnStart, func(c *Context) error {
		roll := c.Rand().Intn(6) + 1
		c.Log("rolls %d", roll)
		c.AddTempAtk(c.Self, roll)
		return nil
	}))
	left := fighter("L", 40, 1, 0, 1)
	left.Weapon = "dice"
	right := fighter("R", 40, 2, 3, 0)

	a := Simulate(reg, left, right, Options{Seed: 99, ID: "a"})
	b := Simulate(reg, left, right, Options{Seed: 99, ID: "b"})

	assert.Equal(t, a.Lines(), b.Lines())
	assert.Equal(t, a.Outcome, b.Outcome)
	assert.Equal(t, a.Rounds, b.Rounds)
}

func TestBattleEndsInEndedState(t *testing.T) {
	b := testBattle(nil, fighter("L", 10, 3, 0, 1), fighter("R", 10, 3, 0, 1))
	assert.Equal(t, StateSetup, b.State())
	b.run(t.Context())
	assert.Equal(t, StateEnded, b.State())
}

func TestDropLogSkipsTranscript(t *testing.T) {
	res := Simulate(nil, fighter("L", 10, 3, 0, 1), fighter("R", 10, 3, 0, 1), Options{DropLog: true})
	assert.Empty(t, res.Log)
	assert.Equal(t, RightWin, res.Outcome)
}
