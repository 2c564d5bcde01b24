package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountdownFiresOnOwnersNthTurnStart(t *testing.T) {
	reg := NewRegistry()
	type firing struct {
		turn      int
		round     int
		remaining int
		id        string
	}
	var fired []firing
	var registered string
	var triggerSaw, postSaw *Countdown

	require.NoError(t, reg.Register("fuse", Hooks{
		EvBattleStart: func(c *Context) error {
			registered = c.AddCountdown(c.Self, "boom", 4, "tag", func(c *Context, cd *Countdown) error {
				fired = append(fired, firing{
					turn:      c.Self.TurnCount,
					round:     c.Round(),
					remaining: len(c.Self.Countdowns),
					id:        cd.ID,
				})
				return nil
			})
			return nil
		},
		EvOnCountdownTrigger: func(c *Context) error {
			triggerSaw = c.Countdown
			return nil
		},
		EvPostCountdownTrigger: func(c *Context) error {
			postSaw = c.Countdown
			return nil
		},
	}))
	left := fighter("L", 10, 0, 0, 2)
	left.Weapon = "fuse"

	res := Simulate(reg, left, fighter("R", 10, 0, 0, 1), Options{MaxTurns: 20})

	require.Len(t, fired, 1)
	assert.Equal(t, 4, fired[0].turn)
	assert.Equal(t, 7, fired[0].round)
	assert.Equal(t, 0, fired[0].remaining)
	assert.Equal(t, registered, fired[0].id)
	require.NotNil(t, triggerSaw)
	assert.Same(t, triggerSaw, postSaw)
	assert.Equal(t, "boom", postSaw.Name)
	assert.Equal(t, "fuse", postSaw.Source)
	assert.Equal(t, Draw, res.Outcome)
}

func TestCountdownActionLogsUnderItsSource(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.On("fuse", EvBattleStart, func(c *Context) error {
		c.AddCountdown(c.Self, "boom", 1, nil, func(c *Context, _ *Countdown) error {
			c.Log("kaboom")
			return nil
		})
		return nil
	}))
	left := fighter("L", 10, 0, 0, 2)
	left.Weapon = "fuse"

	res := Simulate(reg, left, fighter("R", 10, 0, 0, 1), Options{MaxTurns: 1})

	assert.Contains(t, res.Lines(), "::icon:fuse:: kaboom")
}

func TestCountdownPrimitives(t *testing.T) {
	b := testBattle(nil, fighter("A", 10, 0, 0, 0), fighter("B", 10, 0, 0, 0))
	a := b.Left
	first := b.AddCountdown(a, "a", 9, nil, nil)
	second := b.AddCountdown(a, "b", 0, nil, nil)
	assert.NotEqual(t, first, second)
	assert.Equal(t, 1, a.Countdowns[1].TurnsLeft, "turns floor at one")

	b.DecAllCountdowns(a, 3)
	assert.Equal(t, 6, a.Countdowns[0].TurnsLeft)
	assert.Equal(t, 1, a.Countdowns[1].TurnsLeft)

	b.DecAllCountdowns(a, 0)
	assert.Equal(t, 5, a.Countdowns[0].TurnsLeft, "decrement is at least one")

	b.HalveCountdowns(a)
	assert.Equal(t, 2, a.Countdowns[0].TurnsLeft)
	b.HalveCountdowns(a)
	b.HalveCountdowns(a)
	assert.Equal(t, 1, a.Countdowns[0].TurnsLeft)
	assert.Equal(t, 9, a.Countdowns[0].OrigTurns)
}

func TestDueCountdownsAreSnapshotted(t *testing.T) {
	b := testBattle(nil, fighter("A", 10, 0, 0, 0), fighter("B", 10, 0, 0, 0))
	a := b.Left
	var order []string
	b.AddCountdown(a, "first", 1, nil, func(c *Context, _ *Countdown) error {
		order = append(order, "first")
		// registered while firing: must wait for a later turn
		c.AddCountdown(c.Self, "late", 1, nil, func(*Context, *Countdown) error {
			order = append(order, "late")
			return nil
		})
		return nil
	})
	b.AddCountdown(a, "second", 1, nil, func(*Context, *Countdown) error {
		order = append(order, "second")
		return nil
	})

	b.processCountdowns(a, b.Right)
	assert.Equal(t, []string{"first", "second"}, order)
	require.Len(t, a.Countdowns, 1)

	b.processCountdowns(a, b.Right)
	assert.Equal(t, []string{"first", "second", "late"}, order)
	assert.Empty(t, a.Countdowns)
}
