package script

import (
	"math"

	"github.com/Shopify/go-lua"

	"heic_sim/internal/combat"
)

func (h *Host) functions() []lua.RegistryFunction {
	return []lua.RegistryFunction{
		{Name: "capability", Function: h.luaCapability},
		{Name: "global", Function: h.luaGlobal},
		{Name: "log", Function: h.luaLog},
		{Name: "stat", Function: h.luaStat},
		{Name: "status", Function: h.luaStatus},
		{Name: "heal", Function: h.luaHeal},
		{Name: "add_atk", Function: h.luaAddAtk},
		{Name: "add_temp_atk", Function: h.luaAddTempAtk},
		{Name: "add_armor", Function: h.luaAddArmor},
		{Name: "add_status", Function: h.luaAddStatus},
		{Name: "add_extra_strikes", Function: h.luaAddExtraStrikes},
		{Name: "add_gold", Function: h.luaAddGold},
		{Name: "damage", Function: h.luaDamage},
		{Name: "bomb", Function: h.luaBomb},
		{Name: "spend_armor", Function: h.luaSpendArmor},
		{Name: "var", Function: h.luaVar},
		{Name: "set_var", Function: h.luaSetVar},
		{Name: "set", Function: h.luaSet},
		{Name: "countdown", Function: h.luaCountdown},
		{Name: "countdowns", Function: h.luaCountdowns},
		{Name: "dec_countdowns", Function: h.luaDecCountdowns},
		{Name: "halve_countdowns", Function: h.luaHalveCountdowns},
		{Name: "invoke", Function: h.luaInvoke},
		{Name: "random", Function: h.luaRandom},
	}
}

// ---- Registration ----

func (h *Host) luaCapability(l *lua.State) int {
	slug := lua.CheckString(l, 1)
	lua.CheckType(l, 2, lua.TypeTable)
	l.PushNil()
	for l.Next(2) {
		if l.TypeOf(-2) != lua.TypeString || !l.IsFunction(-1) {
			l.Pop(1)
			continue
		}
		name, _ := l.ToString(-2)
		if !knownEvent(name) {
			lua.Errorf(l, "%s: %s: %s", slug, ErrUnknownEvent.Error(), name)
			return 0
		}
		key := slug + "/" + name
		if err := h.reg.On(slug, combat.Event(name), h.handler(capsTable, key)); err != nil {
			lua.Errorf(l, "%s", err.Error())
			return 0
		}
		h.store(capsTable, key, -1)
		l.Pop(1)
	}
	return 0
}

func (h *Host) luaGlobal(l *lua.State) int {
	name := lua.CheckString(l, 1)
	lua.CheckType(l, 2, lua.TypeFunction)
	if !knownEvent(name) {
		lua.Errorf(l, "%s: %s", ErrUnknownEvent.Error(), name)
		return 0
	}
	key := h.nextKey("g")
	h.store(globalsTable, key, 2)
	h.reg.Global(combat.Event(name), h.handler(globalsTable, key))
	return 0
}

// ---- Battle access ----

func (h *Host) ctx(l *lua.State) *combat.Context {
	c := h.current()
	if c == nil {
		lua.Errorf(l, "%s", ErrNoBattle.Error())
	}
	return c
}

// who resolves "self" or "other" at idx; absent means self.
func (h *Host) who(l *lua.State, c *combat.Context, idx int) *combat.Entity {
	switch lua.OptString(l, idx, "self") {
	case "self":
		return c.Self
	case "other":
		return c.Other
	}
	lua.ArgumentError(l, idx, `expected "self" or "other"`)
	return nil
}

func (h *Host) luaLog(l *lua.State) int {
	c := h.ctx(l)
	c.Log("%s", lua.CheckString(l, 1))
	return 0
}

func (h *Host) luaStat(l *lua.State) int {
	c := h.ctx(l)
	e := h.who(l, c, 1)
	name := lua.CheckString(l, 2)
	v, ok := stat(e, name)
	if !ok {
		lua.ArgumentError(l, 2, "unknown stat "+name)
		return 0
	}
	l.PushInteger(v)
	return 1
}

func (h *Host) luaStatus(l *lua.State) int {
	c := h.ctx(l)
	e := h.who(l, c, 1)
	l.PushInteger(e.Statuses.Get(lua.CheckString(l, 2)))
	return 1
}

func (h *Host) luaHeal(l *lua.State) int {
	c := h.ctx(l)
	e := h.who(l, c, 1)
	l.PushInteger(c.Heal(e, lua.CheckInteger(l, 2)))
	return 1
}

func (h *Host) luaAddAtk(l *lua.State) int {
	c := h.ctx(l)
	c.AddAtk(h.who(l, c, 1), lua.CheckInteger(l, 2))
	return 0
}

func (h *Host) luaAddTempAtk(l *lua.State) int {
	c := h.ctx(l)
	c.AddTempAtk(h.who(l, c, 1), lua.CheckInteger(l, 2))
	return 0
}

func (h *Host) luaAddArmor(l *lua.State) int {
	c := h.ctx(l)
	l.PushInteger(c.AddArmor(h.who(l, c, 1), lua.CheckInteger(l, 2)))
	return 1
}

func (h *Host) luaAddStatus(l *lua.State) int {
	c := h.ctx(l)
	e := h.who(l, c, 1)
	c.AddStatus(e, lua.CheckString(l, 2), lua.CheckInteger(l, 3))
	return 0
}

func (h *Host) luaAddExtraStrikes(l *lua.State) int {
	c := h.ctx(l)
	c.AddExtraStrikes(h.who(l, c, 1), lua.CheckInteger(l, 2))
	return 0
}

func (h *Host) luaAddGold(l *lua.State) int {
	c := h.ctx(l)
	l.PushInteger(c.AddGold(h.who(l, c, 1), lua.CheckInteger(l, 2)))
	return 1
}

// damage(n) hits the other side from self. It returns hp and armor lost.
func (h *Host) luaDamage(l *lua.State) int {
	c := h.ctx(l)
	res := c.DealDamage(c.Self, c.Other, lua.CheckInteger(l, 1))
	l.PushInteger(res.ToHP)
	l.PushInteger(res.ToArmor)
	return 2
}

func (h *Host) luaBomb(l *lua.State) int {
	c := h.ctx(l)
	l.PushInteger(c.BombDamage(c.Self, lua.CheckInteger(l, 1)))
	return 1
}

func (h *Host) luaSpendArmor(l *lua.State) int {
	c := h.ctx(l)
	l.PushInteger(c.SpendArmorToThorns(c.Self, lua.CheckInteger(l, 1)))
	return 1
}

func (h *Host) luaVar(l *lua.State) int {
	c := h.ctx(l)
	e := h.who(l, c, 1)
	l.PushInteger(e.Var(lua.CheckString(l, 2)))
	return 1
}

func (h *Host) luaSetVar(l *lua.State) int {
	c := h.ctx(l)
	e := h.who(l, c, 1)
	e.SetVar(lua.CheckString(l, 2), lua.CheckInteger(l, 3))
	return 0
}

func (h *Host) luaSet(l *lua.State) int {
	c := h.ctx(l)
	e := h.who(l, c, 1)
	knob := lua.CheckString(l, 2)
	v := lua.CheckNumber(l, 3)
	if knob != "strike_factor" && v != math.Trunc(v) {
		lua.ArgumentError(l, 3, knob+" must be an integer")
		return 0
	}
	if !setKnob(e, knob, v) {
		lua.ArgumentError(l, 2, "unknown knob "+knob)
	}
	return 0
}

// countdown(name, turns, fn [, tag]) schedules fn on self and returns its id.
func (h *Host) luaCountdown(l *lua.State) int {
	c := h.ctx(l)
	name := lua.CheckString(l, 1)
	turns := lua.CheckInteger(l, 2)
	lua.CheckType(l, 3, lua.TypeFunction)
	var tag any
	if t := lua.OptString(l, 4, ""); t != "" {
		tag = t
	}
	key := h.nextKey("cd")
	h.store(countdownsTable, key, 3)
	id := c.AddCountdown(c.Self, name, turns, tag, h.countdownAction(key))
	l.PushString(id)
	return 1
}

func (h *Host) countdownAction(key string) combat.CountdownAction {
	return func(c *combat.Context, _ *combat.Countdown) error {
		return h.callStored(countdownsTable, key, c)
	}
}

// countdowns(who) lists who's pending countdowns in firing order.
func (h *Host) luaCountdowns(l *lua.State) int {
	c := h.ctx(l)
	e := h.who(l, c, 1)
	l.NewTable()
	for i, cd := range e.Countdowns {
		pushCountdown(l, cd)
		l.RawSetInt(-2, i+1)
	}
	return 1
}

func (h *Host) luaDecCountdowns(l *lua.State) int {
	c := h.ctx(l)
	c.DecAllCountdowns(h.who(l, c, 1), lua.OptInteger(l, 2, 1))
	return 0
}

func (h *Host) luaHalveCountdowns(l *lua.State) int {
	c := h.ctx(l)
	c.HalveCountdowns(h.who(l, c, 1))
	return 0
}

func (h *Host) luaInvoke(l *lua.State) int {
	c := h.ctx(l)
	slug := lua.CheckString(l, 1)
	ev := lua.CheckString(l, 2)
	l.PushBoolean(c.Invoke(slug, combat.Event(ev)))
	return 1
}

// random(n) returns an integer in [1, n] from the battle RNG.
func (h *Host) luaRandom(l *lua.State) int {
	c := h.ctx(l)
	n := lua.CheckInteger(l, 1)
	if n < 1 {
		lua.ArgumentError(l, 1, "must be positive")
		return 0
	}
	l.PushInteger(c.Rand().Intn(n) + 1)
	return 1
}

// ---- Entity fields ----

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func stat(e *combat.Entity, name string) (int, bool) {
	switch name {
	case "hp":
		return e.HP, true
	case "hp_max":
		return e.HPMax, true
	case "atk":
		return e.Atk, true
	case "temp_atk":
		return e.TempAtk, true
	case "armor":
		return e.Armor, true
	case "base_armor":
		return e.BaseArmor, true
	case "speed":
		return e.Speed, true
	case "gold":
		return e.Gold, true
	case "turn_count":
		return e.TurnCount, true
	case "extra_strikes":
		return e.ExtraStrikes, true
	case "exposed_count":
		return e.ExposedCount, true
	case "exposed_limit":
		return e.ExposedLimit, true
	case "healed_this_turn":
		return e.HealedThisTurn, true
	case "first_turn":
		return boolInt(e.FirstTurn), true
	case "struck_this_turn":
		return boolInt(e.StruckThisTurn), true
	case "wounded":
		return boolInt(e.WoundedDone), true
	case "countdowns":
		return len(e.Countdowns), true
	}
	return 0, false
}

func setKnob(e *combat.Entity, name string, v float64) bool {
	n := int(v)
	switch name {
	case "atk":
		e.Atk = n
	case "speed":
		e.Speed = n
	case "armored_reduction":
		e.ArmoredReduction = n
	case "unarmored_increase":
		e.UnarmoredIncrease = n
	case "riptide_cap":
		e.RiptideCap = n
	case "preserve_thorns":
		e.PreserveThorns = n
	case "heal_factor":
		e.HealFactor = n
	case "bomb_repeat":
		e.BombRepeat = n
	case "bomb_flat_bonus":
		e.BombFlatBonus = n
	case "bomb_next_bonus":
		e.BombNextBonus = n
	case "exposed_limit":
		e.ExposedLimit = n
	case "strike_factor":
		e.StrikeFactor = v
	case "cannot_strike":
		e.CannotStrike = n != 0
	case "skip_turn":
		e.SkipTurn = n != 0
	default:
		return false
	}
	return true
}
