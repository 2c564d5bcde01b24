package combat

// DamageResult is what one damage application did to its target.
type DamageResult struct {
	ToArmor int
	ToHP    int
	Exposed bool
	Wounded bool
}

// Soaked is the total absorbed by armor and hp together.
func (r DamageResult) Soaked() int { return r.ToArmor + r.ToHP }

// applyDamage soaks amount with dst's armor first and takes the remainder from
// hp. Exposed and Wounded are only detected here; dispatching them is up to
// the caller.
func (b *Battle) applyDamage(src, dst *Entity, amount int) DamageResult {
	if amount < 0 {
		amount = 0
	}
	armorBefore := dst.Armor
	toArmor := min(dst.Armor, amount)
	dst.Armor -= toArmor
	toHP := amount - toArmor
	dst.HP -= toHP
	if dst.HP < 0 {
		dst.HP = 0
	}
	dst.StruckThisTurn = true

	srcName := ""
	if src != nil {
		srcName = src.Name
	}
	if toArmor > 0 {
		b.logf("%s destroys %d armor", srcName, toArmor)
	}
	if toHP > 0 {
		b.logf("%s hits %s for %d", srcName, dst.Name, toHP)
	}
	if src != nil {
		src.Summary.ArmorDestroyedDealt += toArmor
		src.Summary.HPDamageDealt += toHP
	}

	b.dispatch(EvOnDamaged, dst, src, Payload{Amount: toArmor + toHP, ArmorLost: toArmor, HPLost: toHP})

	res := DamageResult{ToArmor: toArmor, ToHP: toHP}
	if armorBefore > 0 && dst.Armor == 0 && res.Soaked() > 0 && dst.ExposedCount < dst.ExposedLimit {
		dst.ExposedCount++
		res.Exposed = true
	}
	if !dst.WoundedDone && dst.wounded() {
		dst.WoundedDone = true
		res.Wounded = true
	}
	return res
}

// DealDamage applies n damage from src to dst and dispatches the resulting
// threshold events on dst.
func (b *Battle) DealDamage(src, dst *Entity, n int) DamageResult {
	res := b.applyDamage(src, dst, n)
	b.dispatchThresholds(dst, src, res.Exposed, res.Wounded)
	return res
}

func (b *Battle) dispatchThresholds(dst, src *Entity, exposed, wounded bool) {
	if exposed {
		b.dispatch(EvOnExposed, dst, src, Payload{})
	}
	if wounded {
		b.dispatch(EvOnWounded, dst, src, Payload{})
	}
}
