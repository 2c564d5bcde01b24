package combat

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Event names a dispatch point. Capabilities attach handlers per event.
type Event string

const (
	EvPre                  Event = "pre"
	EvBattleStart          Event = "battleStart"
	EvPreTurnStart         Event = "preTurnStart"
	EvTurnStart            Event = "turnStart"
	EvRecomputeAttack      Event = "recomputeAttack"
	EvTurnEnd              Event = "turnEnd"
	EvOnHit                Event = "onHit"
	EvAfterStrike          Event = "afterStrike"
	EvOnDamageDealt        Event = "onDamageDealt"
	EvOnDamaged            Event = "onDamaged"
	EvOnExposed            Event = "onExposed"
	EvOnWounded            Event = "onWounded"
	EvOnHeal               Event = "onHeal"
	EvOnGainArmor          Event = "onGainArmor"
	EvOnGainStatus         Event = "onGainStatus"
	EvOnThornsGain         Event = "onThornsGain"
	EvOnBombDamage         Event = "onBombDamage"
	EvOnPoisonTick         Event = "onPoisonTick"
	EvOnRiptideTick        Event = "onRiptideTick"
	EvOnEnemyRiptideTick   Event = "onEnemyRiptideTick"
	EvOnCountdownTrigger   Event = "onCountdownTrigger"
	EvPostCountdownTrigger Event = "postCountdownTrigger"
)

// Events lists every event the engine dispatches, in rough lifecycle order.
var Events = []Event{
	EvPre, EvBattleStart, EvPreTurnStart, EvTurnStart, EvRecomputeAttack, EvTurnEnd,
	EvOnHit, EvAfterStrike, EvOnDamageDealt, EvOnDamaged, EvOnExposed, EvOnWounded,
	EvOnHeal, EvOnGainArmor, EvOnGainStatus, EvOnThornsGain, EvOnBombDamage,
	EvOnPoisonTick, EvOnRiptideTick, EvOnEnemyRiptideTick,
	EvOnCountdownTrigger, EvPostCountdownTrigger,
}

var (
	// ErrSlugRequired indicates a registration without a slug.
	ErrSlugRequired = errors.New("capability slug is required")
	// ErrAlreadyRegistered indicates a duplicate (slug, event) registration.
	ErrAlreadyRegistered = errors.New("capability handler already registered")
	// ErrHandlerRequired indicates a nil handler.
	ErrHandlerRequired = errors.New("capability handler is required")
)

// HandlerFunc is one capability reaction. A returned error or a panic is
// absorbed by the dispatcher and recorded as a fault.
type HandlerFunc func(c *Context) error

// Hooks is the handler table of one capability.
type Hooks map[Event]HandlerFunc

// StatusRule decides whether e may gain amount stacks of kind. Returning
// false drops the gain silently.
type StatusRule func(e *Entity, kind string, amount int) bool

// Registry maps capability slugs to their hooks. It is populated before
// battles start and only read while they run.
type Registry struct {
	mu         sync.RWMutex
	bySlug     map[string]Hooks
	global     map[Event][]HandlerFunc
	statusRule StatusRule
	noGold     map[string]bool
}

func NewRegistry() *Registry {
	return &Registry{
		bySlug: map[string]Hooks{},
		global: map[Event][]HandlerFunc{},
		noGold: map[string]bool{},
	}
}

// Register adds every hook of one capability.
func (r *Registry) Register(slug string, hooks Hooks) error {
	for ev, fn := range hooks {
		if err := r.On(slug, ev, fn); err != nil {
			return err
		}
	}
	return nil
}

// On attaches a single handler to (slug, ev).
func (r *Registry) On(slug string, ev Event, fn HandlerFunc) error {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return ErrSlugRequired
	}
	if fn == nil {
		return fmt.Errorf("%s/%s: %w", slug, ev, ErrHandlerRequired)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	hooks, ok := r.bySlug[slug]
	if !ok {
		hooks = Hooks{}
		r.bySlug[slug] = hooks
	}
	if _, dup := hooks[ev]; dup {
		return fmt.Errorf("%s/%s: %w", slug, ev, ErrAlreadyRegistered)
	}
	hooks[ev] = fn
	return nil
}

// Global chains a handler that runs after the slug handlers on every dispatch
// of ev. Earlier registrations run first.
func (r *Registry) Global(ev Event, fn HandlerFunc) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.global[ev] = append(r.global[ev], fn)
}

func (r *Registry) Handler(slug string, ev Event) (HandlerFunc, bool) {
	if r == nil || slug == "" {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.bySlug[slug][ev]
	return fn, ok
}

func (r *Registry) globals(ev Event) []HandlerFunc {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.global[ev]
}

// Slugs returns the registered capability slugs, sorted.
func (r *Registry) Slugs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.bySlug))
	for s := range r.bySlug {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func (r *Registry) SetStatusRule(rule StatusRule) {
	r.mu.Lock()
	r.statusRule = rule
	r.mu.Unlock()
}

// ForbidGold makes entities wielding weapon unable to gain gold.
func (r *Registry) ForbidGold(weapon string) {
	r.mu.Lock()
	r.noGold[weapon] = true
	r.mu.Unlock()
}

func (r *Registry) allowStatus(e *Entity, kind string, amount int) bool {
	if r == nil {
		return true
	}
	r.mu.RLock()
	rule := r.statusRule
	r.mu.RUnlock()
	if rule == nil {
		return true
	}
	return rule(e, kind, amount)
}

func (r *Registry) goldForbidden(weapon string) bool {
	if r == nil || weapon == "" {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.noGold[weapon]
}
