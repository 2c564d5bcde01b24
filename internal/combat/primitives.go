package combat

// Mutation primitives available to capabilities through Context. Each one
// keeps hp, armor and status stacks non-negative.

func (b *Battle) opponent(e *Entity) *Entity {
	switch e {
	case b.Left:
		return b.Right
	case b.Right:
		return b.Left
	}
	return nil
}

// Heal restores up to n hp (scaled by the entity's heal factor) and returns
// the amount actually healed.
func (b *Battle) Heal(e *Entity, n int) int {
	if n <= 0 {
		return 0
	}
	if e.HealFactor > 1 {
		n *= e.HealFactor
	}
	healed := min(n, e.HPMax-e.HP)
	if healed <= 0 {
		return 0
	}
	e.HP += healed
	e.HealedThisTurn += healed
	b.logf("%s heals %d", e.Name, healed)
	b.dispatch(EvOnHeal, e, b.opponent(e), Payload{Amount: healed})
	return healed
}

func (b *Battle) AddAtk(e *Entity, n int)          { e.Atk += n }
func (b *Battle) AddTempAtk(e *Entity, n int)      { e.TempAtk += n }
func (b *Battle) AddExtraStrikes(e *Entity, n int) { e.ExtraStrikes += n }

// AddArmor changes armor by n, floored at zero, and returns the armor gained.
// Gains dispatch onGainArmor.
func (b *Battle) AddArmor(e *Entity, n int) int {
	before := e.Armor
	e.Armor += n
	if e.Armor < 0 {
		e.Armor = 0
	}
	gained := max(0, e.Armor-before)
	if gained > 0 {
		b.dispatch(EvOnGainArmor, e, b.opponent(e), Payload{Amount: gained})
	}
	return gained
}

// AddStatus changes e's kind stack by n. Positive gains may be vetoed by the
// registry's status rule.
func (b *Battle) AddStatus(e *Entity, kind string, n int) {
	if n > 0 && !b.reg.allowStatus(e, kind, n) {
		return
	}
	prev := e.Statuses[kind]
	next := max(0, prev+n)
	e.Statuses[kind] = next
	delta := next - prev
	if delta > 0 {
		e.Summary.StatusesGained[kind] += delta
		if b.actor != nil && b.actor != e {
			b.actor.Summary.StatusesInflicted[kind] += delta
		}
	}
	if n <= 0 {
		return
	}
	other := b.opponent(e)
	if kind == Thorns {
		b.dispatch(EvOnThornsGain, e, other, Payload{Amount: n, Delta: n})
	}
	b.dispatch(EvOnGainStatus, e, other, Payload{
		Key:    kind,
		IsNew:  prev == 0 && next > 0,
		Amount: n,
		Delta:  delta,
	})
}

// BombDamage hits e's opponent with base damage once per bomb repeat. The
// one-shot bonus is consumed by the first hit. It returns total hp dealt.
func (b *Battle) BombDamage(e *Entity, base int) int {
	dst := b.opponent(e)
	if dst == nil {
		return 0
	}
	repeats := max(1, e.BombRepeat)
	total := 0
	for i := 0; i < repeats; i++ {
		n := max(0, base+e.BombFlatBonus+e.BombNextBonus)
		e.BombNextBonus = 0
		res := b.DealDamage(e, dst, n)
		total += res.ToHP
		e.Summary.BombHPDealt += res.ToHP
		b.dispatch(EvOnBombDamage, e, dst, Payload{Amount: res.ToHP, ToArmor: res.ToArmor})
	}
	return total
}

// SpendArmorToThorns converts up to n armor into thorns stacks.
func (b *Battle) SpendArmorToThorns(e *Entity, n int) int {
	used := min(e.Armor, max(0, n))
	e.Armor -= used
	e.Statuses[Thorns] += used
	return used
}

// AddGold adds n gold up to the cap and returns the amount gained.
func (b *Battle) AddGold(e *Entity, n int) int {
	if n <= 0 || b.reg.goldForbidden(e.Weapon) {
		return 0
	}
	after := min(maxGold, e.Gold+n)
	gained := after - e.Gold
	if gained <= 0 {
		return 0
	}
	e.Gold = after
	e.Summary.GoldGained += gained
	return gained
}
