package combat

func (b *Battle) turnStartTicks(a, other *Entity) {
	b.dispatch(EvPreTurnStart, a, other, Payload{})
	a.resetTurn()

	if acid := a.Statuses[Acid]; acid > 0 {
		lost := min(a.Armor, acid)
		a.Armor -= lost
		if lost > 0 {
			b.logf("%s loses %d armor due to Acid", a.Name, lost)
		}
	}

	if poison := a.Statuses[Poison]; poison > 0 {
		if a.Armor == 0 {
			a.HP -= poison
			if a.HP < 0 {
				a.HP = 0
			}
			b.logf("%s suffers %d poison damage", a.Name, poison)
			b.dispatch(EvOnPoisonTick, a, other, Payload{Amount: poison})
		}
		a.Statuses[Poison] = max(0, a.Statuses[Poison]-1)
	}

	b.processCountdowns(a, other)
}

func (b *Battle) turnEndTicks(a, other *Entity) {
	if regen := a.Statuses[Regen]; regen > 0 {
		heal := min(regen, a.HPMax-a.HP)
		if heal > 0 {
			a.HP += heal
			b.logf("%s regenerates %d", a.Name, heal)
		}
		a.Statuses[Regen]--
	}

	limit := max(1, a.RiptideCap)
	for ticks := 0; a.Statuses[Riptide] > 0 && ticks < limit; ticks++ {
		dmg := riptideHit
		toArmor := min(a.Armor, dmg)
		a.Armor -= toArmor
		dmg -= toArmor
		if dmg > 0 {
			a.HP -= dmg
			if a.HP < 0 {
				a.HP = 0
			}
		}
		b.logf("%s is battered by Riptide", a.Name)
		if other != nil {
			b.dispatch(EvOnEnemyRiptideTick, other, a, Payload{})
		}
		b.dispatch(EvOnRiptideTick, a, other, Payload{})
		a.Statuses[Riptide] = max(0, a.Statuses[Riptide]-1)
	}

	if a.StruckThisTurn && a.Statuses[Thorns] > 0 {
		if a.PreserveThorns > 0 {
			a.PreserveThorns--
			b.logf("%s preserves thorns (%d left)", a.Name, a.PreserveThorns)
		} else {
			a.Statuses[Thorns] = 0
		}
	}

	if a.Statuses[Freeze] > 0 {
		a.Statuses[Freeze]--
	}
}
