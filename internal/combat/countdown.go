package combat

import "github.com/google/uuid"

// AddCountdown schedules action to run on owner's turns-th turn start from
// now. The returned id is unique per battle.
func (b *Battle) AddCountdown(owner *Entity, name string, turns int, tag any, action CountdownAction) string {
	t := max(1, turns)
	cd := &Countdown{
		ID:        uuid.NewString(),
		Name:      name,
		TurnsLeft: t,
		OrigTurns: t,
		Tag:       tag,
		Source:    b.source,
		Action:    action,
	}
	owner.Countdowns = append(owner.Countdowns, cd)
	return cd.ID
}

// DecAllCountdowns brings every countdown of owner n turns closer, never
// below one.
func (b *Battle) DecAllCountdowns(owner *Entity, n int) {
	d := max(1, n)
	for _, cd := range owner.Countdowns {
		cd.TurnsLeft = max(1, cd.TurnsLeft-d)
	}
}

func (b *Battle) HalveCountdowns(owner *Entity) {
	for _, cd := range owner.Countdowns {
		cd.TurnsLeft = max(1, cd.TurnsLeft/2)
	}
}

// processCountdowns advances owner's countdowns by one turn start. A
// countdown is due when it enters the tick with TurnsLeft <= 1, otherwise it
// is decremented, so one added with N turns fires on the owner's Nth turn
// start (content that decrements first and fires at 1 needs N+1 here). Due
// countdowns are removed from the list before any of them runs.
func (b *Battle) processCountdowns(owner, enemy *Entity) {
	if len(owner.Countdowns) == 0 {
		return
	}
	var due, keep []*Countdown
	for _, cd := range owner.Countdowns {
		if cd.TurnsLeft <= 1 {
			due = append(due, cd)
			continue
		}
		cd.TurnsLeft--
		keep = append(keep, cd)
	}
	owner.Countdowns = keep

	for _, cd := range due {
		b.dispatch(EvOnCountdownTrigger, owner, enemy, Payload{Countdown: cd})
		if cd.Action != nil {
			action := cd.Action
			b.call(func(c *Context) error { return action(c, cd) }, &Context{
				Battle:  b,
				Self:    owner,
				Other:   enemy,
				Event:   EvOnCountdownTrigger,
				Source:  cd.Source,
				Payload: Payload{Countdown: cd},
			})
		}
		b.dispatch(EvPostCountdownTrigger, owner, enemy, Payload{Countdown: cd})
	}
}
