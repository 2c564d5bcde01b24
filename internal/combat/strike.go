package combat

// attackValue is the damage one strike from att carries before soak.
func attackValue(att, def *Entity) int {
	dmg := max(0, att.Atk+att.TempAtk)
	if att.Statuses[Freeze] > 0 {
		dmg /= 2
	}
	// defender modifiers never stack
	if def.Armor > 0 {
		if def.ArmoredReduction != 0 {
			dmg = max(0, dmg-def.ArmoredReduction)
		}
	} else if def.UnarmoredIncrease != 0 {
		dmg = max(0, dmg+def.UnarmoredIncrease)
	}
	return dmg
}

func (b *Battle) strike(att, def *Entity) {
	att.Summary.StrikesAttempted++
	if att.Statuses[Stun] > 0 {
		att.Statuses[Stun]--
		b.logf("%s is stunned and misses the strike", att.Name)
		return
	}

	armorBefore := def.Armor
	res := b.applyDamage(att, def, attackValue(att, def))
	if res.Soaked() > 0 {
		att.Summary.StrikesLanded++
	}
	exposed, wounded := res.Exposed, res.Wounded
	b.dispatchThresholds(def, att, exposed, wounded)
	dealt := res.Soaked()

	hpBefore := def.HP
	b.dispatch(EvOnHit, att, def, Payload{})
	if def.HP < hpBefore {
		dealt += hpBefore - def.HP
	}
	exposed, wounded = b.recheckThresholds(att, def, armorBefore, exposed, wounded)

	b.dispatch(EvAfterStrike, att, def, Payload{})
	b.recheckThresholds(att, def, armorBefore, exposed, wounded)

	b.reflectThorns(att, def)

	if dealt > 0 {
		b.dispatch(EvOnDamageDealt, att, def, Payload{Amount: dealt})
	}
}

// recheckThresholds catches Exposed and Wounded caused by on-hit or
// after-strike effects rather than by the strike's own soak.
func (b *Battle) recheckThresholds(att, def *Entity, armorBefore int, exposed, wounded bool) (bool, bool) {
	if !exposed && armorBefore > 0 && def.Armor == 0 && def.ExposedCount < def.ExposedLimit {
		def.ExposedCount++
		exposed = true
		b.dispatch(EvOnExposed, def, att, Payload{})
	}
	if !wounded && !def.WoundedDone && def.wounded() {
		def.WoundedDone = true
		wounded = true
		b.dispatch(EvOnWounded, def, att, Payload{})
	}
	return exposed, wounded
}

// reflectThorns hits the attacker with the defender's thorns, armor first.
// It bypasses damage resolution so no events fire on the attacker.
func (b *Battle) reflectThorns(att, def *Entity) {
	thorns := def.Statuses[Thorns]
	if thorns <= 0 {
		return
	}
	toArmor := min(att.Armor, thorns)
	att.Armor -= toArmor
	thorns -= toArmor
	if toArmor > 0 {
		b.logf("%s loses %d armor to thorns", att.Name, toArmor)
	}
	if thorns > 0 {
		att.HP -= thorns
		if att.HP < 0 {
			att.HP = 0
		}
		b.logf("%s takes %d thorns damage", att.Name, thorns)
	}
}
