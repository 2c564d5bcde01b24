package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeal(t *testing.T) {
	reg := NewRegistry()
	var healed []int
	require.NoError(t, reg.On("cup", EvOnHeal, func(c *Context) error {
		healed = append(healed, c.Amount)
		return nil
	}))
	lo := fighter("A", 10, 0, 0, 0)
	lo.Weapon = "cup"
	b := testBattle(reg, lo, fighter("B", 10, 0, 0, 0))
	a := b.Left
	a.HP = 5

	assert.Equal(t, 3, b.Heal(a, 3))
	assert.Equal(t, 8, a.HP)

	a.HealFactor = 2
	assert.Equal(t, 2, b.Heal(a, 3), "capped at max hp")
	assert.Equal(t, 10, a.HP)
	assert.Equal(t, 0, b.Heal(a, 4))
	assert.Equal(t, 0, b.Heal(a, -1))

	assert.Equal(t, []int{3, 2}, healed)
	assert.Equal(t, 5, a.HealedThisTurn)
	assert.Equal(t, []string{"A heals 3", "A heals 2"}, texts(b.log))
}

func TestAddArmorClampsAndNotifies(t *testing.T) {
	reg := NewRegistry()
	gains := 0
	require.NoError(t, reg.On("plate", EvOnGainArmor, counter(&gains)))
	lo := fighter("A", 10, 0, 2, 0)
	lo.Weapon = "plate"
	b := testBattle(reg, lo, fighter("B", 10, 0, 0, 0))

	assert.Equal(t, 3, b.AddArmor(b.Left, 3))
	assert.Equal(t, 0, b.AddArmor(b.Left, -9))
	assert.Equal(t, 0, b.Left.Armor)
	assert.Equal(t, 1, gains)
}

func TestAddStatus(t *testing.T) {
	reg := NewRegistry()
	var events []Payload
	thorns := 0
	require.NoError(t, reg.Register("rose", Hooks{
		EvOnGainStatus: func(c *Context) error {
			events = append(events, c.Payload)
			return nil
		},
		EvOnThornsGain: counter(&thorns),
	}))
	lo := fighter("A", 10, 0, 0, 0)
	lo.Weapon = "rose"
	b := testBattle(reg, lo, fighter("B", 10, 0, 0, 0))
	a := b.Left

	b.AddStatus(a, Thorns, 2)
	b.AddStatus(a, Thorns, 1)
	b.AddStatus(a, Thorns, -10)
	b.AddStatus(a, "mystery", 1)

	assert.Equal(t, 0, a.Statuses[Thorns])
	assert.Equal(t, 1, a.Statuses.Get("mystery"))
	assert.Equal(t, 0, a.Statuses.Get("never-set"))
	assert.Equal(t, 2, thorns)
	require.Len(t, events, 3)
	assert.Equal(t, Payload{Key: Thorns, IsNew: true, Amount: 2, Delta: 2}, events[0])
	assert.Equal(t, Payload{Key: Thorns, IsNew: false, Amount: 1, Delta: 1}, events[1])
	assert.Equal(t, "mystery", events[2].Key)
	assert.Equal(t, 3, a.Summary.StatusesGained[Thorns])
}

func TestStatusRuleVetoesGains(t *testing.T) {
	reg := NewRegistry()
	reg.SetStatusRule(func(e *Entity, kind string, amount int) bool {
		return e.HP*2 >= e.HPMax
	})
	b := testBattle(reg, fighter("A", 10, 0, 0, 0), fighter("B", 10, 0, 0, 0))
	a := b.Left

	b.AddStatus(a, Poison, 2)
	assert.Equal(t, 2, a.Statuses[Poison])

	a.HP = 4
	b.AddStatus(a, Poison, 2)
	assert.Equal(t, 2, a.Statuses[Poison])
	b.AddStatus(a, Poison, -1)
	assert.Equal(t, 1, a.Statuses[Poison], "losses are never vetoed")
}

func TestAddGold(t *testing.T) {
	reg := NewRegistry()
	reg.ForbidGold("weapons/greed")
	miser := fighter("B", 10, 0, 0, 0)
	miser.Weapon = "weapons/greed"
	b := testBattle(reg, fighter("A", 10, 0, 0, 0), miser)

	assert.Equal(t, 7, b.AddGold(b.Left, 7))
	assert.Equal(t, 3, b.AddGold(b.Left, 7))
	assert.Equal(t, 0, b.AddGold(b.Left, 1))
	assert.Equal(t, 10, b.Left.Gold)
	assert.Equal(t, 10, b.Left.Summary.GoldGained)

	assert.Equal(t, 0, b.AddGold(b.Right, 5))
	assert.Equal(t, 0, b.Right.Gold)
}

func TestBombDamage(t *testing.T) {
	reg := NewRegistry()
	var bombs []Payload
	require.NoError(t, reg.On("powder", EvOnBombDamage, func(c *Context) error {
		bombs = append(bombs, c.Payload)
		return nil
	}))
	lo := fighter("A", 10, 0, 0, 0)
	lo.Weapon = "powder"
	b := testBattle(reg, lo, fighter("B", 20, 0, 2, 0))
	a := b.Left
	a.BombRepeat = 2
	a.BombFlatBonus = 1
	a.BombNextBonus = 2

	total := b.BombDamage(a, 3)

	assert.Equal(t, 8, total)
	assert.Equal(t, 12, b.Right.HP)
	assert.Equal(t, 0, a.BombNextBonus)
	assert.Equal(t, 8, a.Summary.BombHPDealt)
	assert.Equal(t, []Payload{{Amount: 4, ToArmor: 2}, {Amount: 4}}, bombs)
}

func TestSpendArmorToThorns(t *testing.T) {
	b := testBattle(nil, fighter("A", 10, 0, 3, 0), fighter("B", 10, 0, 0, 0))

	assert.Equal(t, 2, b.SpendArmorToThorns(b.Left, 2))
	assert.Equal(t, 1, b.SpendArmorToThorns(b.Left, 5))
	assert.Equal(t, 0, b.SpendArmorToThorns(b.Left, -1))
	assert.Equal(t, 0, b.Left.Armor)
	assert.Equal(t, 3, b.Left.Statuses[Thorns])
}
