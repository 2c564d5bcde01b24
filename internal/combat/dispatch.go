package combat

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"
)

// Payload carries the event-specific values handed to a handler. Fields not
// relevant to an event stay zero.
type Payload struct {
	Amount    int
	Key       string
	IsNew     bool
	Delta     int
	ArmorLost int
	HPLost    int
	ToArmor   int
	Countdown *Countdown
}

// Context is what a handler sees: the battle it runs in, the dispatching
// entity (Self) and its opponent (Other). The battle's mutation primitives are
// promoted from the embedded *Battle.
type Context struct {
	*Battle
	Self   *Entity
	Other  *Entity
	Event  Event
	Source string
	Tier   string
	Payload
}

// Fault records a handler error or panic absorbed at the dispatch boundary.
type Fault struct {
	Round   int    `json:"round"`
	Event   Event  `json:"event"`
	Source  string `json:"source,omitempty"`
	Entity  string `json:"entity"`
	Message string `json:"message"`
}

var errHandlerPanic = errors.New("handler panicked")

// Log appends a transcript line annotated with the source currently in scope.
func (c *Context) Log(format string, args ...any) {
	c.Battle.logAs(c.Battle.source, format, args...)
}

// WithActor runs fn with e as the acting entity for status attribution.
func (c *Context) WithActor(e *Entity, fn func()) {
	prev := c.Battle.actor
	c.Battle.actor = e
	defer func() { c.Battle.actor = prev }()
	fn()
}

// WithSource runs fn with slug as the source used to annotate log lines.
func (c *Context) WithSource(slug string, fn func()) {
	prev := c.Battle.source
	c.Battle.source = slug
	defer func() { c.Battle.source = prev }()
	fn()
}

// Invoke replays slug's handler for ev against the current Self and Other.
// It reports whether a handler was found.
func (c *Context) Invoke(slug string, ev Event) bool {
	fn, ok := c.Battle.reg.Handler(slug, ev)
	if !ok {
		return false
	}
	tier := c.Tier
	if it, found := findItem(c.Self, slug); found {
		tier = it.tierOrBase()
	}
	c.Battle.call(fn, &Context{
		Battle:  c.Battle,
		Self:    c.Self,
		Other:   c.Other,
		Event:   ev,
		Source:  slug,
		Tier:    tier,
		Payload: c.Payload,
	})
	return true
}

// Rand is the battle RNG. It is the only randomness a capability should use.
func (c *Context) Rand() *rand.Rand { return c.Battle.rng }

// Actor returns the entity currently credited with inflicted statuses.
func (c *Context) Actor() *Entity { return c.Battle.actor }

// dispatch runs self's weapon handler, then each item handler in equip
// order, then the global handlers for ev.
func (b *Battle) dispatch(ev Event, self, other *Entity, p Payload) {
	if self == nil {
		return
	}
	if self.Weapon != "" {
		if fn, ok := b.reg.Handler(self.Weapon, ev); ok {
			b.call(fn, &Context{Battle: b, Self: self, Other: other, Event: ev, Source: self.Weapon, Tier: "base", Payload: p})
		}
	}
	for _, it := range self.Items {
		fn, ok := b.reg.Handler(it.Slug, ev)
		if !ok {
			continue
		}
		b.call(fn, &Context{Battle: b, Self: self, Other: other, Event: ev, Source: it.Slug, Tier: it.tierOrBase(), Payload: p})
	}
	for _, fn := range b.reg.globals(ev) {
		b.call(fn, &Context{Battle: b, Self: self, Other: other, Event: ev, Source: b.source, Payload: p})
	}
}

// call runs one handler with actor and source scoped to it. Errors and panics
// stop at this boundary.
func (b *Battle) call(fn HandlerFunc, c *Context) {
	prevActor, prevSource := b.actor, b.source
	b.actor, b.source = c.Self, c.Source
	defer func() {
		b.actor, b.source = prevActor, prevSource
	}()
	if err := b.protect(fn, c); err != nil {
		b.fault(c, err)
	}
}

func (b *Battle) protect(fn HandlerFunc, c *Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errHandlerPanic, r)
		}
	}()
	return fn(c)
}

func (b *Battle) fault(c *Context, err error) {
	f := Fault{
		Round:   b.round,
		Event:   c.Event,
		Source:  c.Source,
		Message: err.Error(),
	}
	if c.Self != nil {
		f.Entity = c.Self.Name
	}
	b.faults = append(b.faults, f)
	if b.logger != nil {
		b.logger.WithFields(logrus.Fields{
			"battle": b.ID,
			"round":  f.Round,
			"event":  f.Event,
			"source": f.Source,
			"entity": f.Entity,
		}).WithError(err).Warn("capability fault absorbed")
	}
}

func findItem(e *Entity, slug string) (Item, bool) {
	if e == nil {
		return Item{}, false
	}
	for _, it := range e.Items {
		if it.Slug == slug {
			return it, true
		}
	}
	return Item{}, false
}

func (it Item) tierOrBase() string {
	if it.Tier == "" {
		return "base"
	}
	return it.Tier
}
