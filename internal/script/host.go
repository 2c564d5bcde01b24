// Package script loads capability catalogs written in Lua into a combat
// registry.
package script

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/Shopify/go-lua"

	"heic_sim/internal/combat"
)

// Lua globals holding the functions scripts registered.
const (
	capsTable       = "__caps"
	globalsTable    = "__globals"
	countdownsTable = "__cds"
)

var (
	// ErrNoBattle indicates a battle function called outside a dispatch.
	ErrNoBattle = errors.New("no battle in progress")
	// ErrUnknownEvent indicates a handler for an event the engine never dispatches.
	ErrUnknownEvent = errors.New("unknown event")
)

// Host owns one Lua state and the registry its scripts populate. A Host is
// not safe for concurrent use; give each goroutine its own.
type Host struct {
	state  *lua.State
	reg    *combat.Registry
	stack  []*combat.Context
	seq    int
	battle *combat.Battle
}

func NewHost(reg *combat.Registry) *Host {
	if reg == nil {
		reg = combat.NewRegistry()
	}
	state := lua.NewState()
	lua.OpenLibraries(state)
	h := &Host{state: state, reg: reg}
	for _, name := range []string{capsTable, globalsTable, countdownsTable} {
		state.NewTable()
		state.SetGlobal(name)
	}
	state.PushGlobalTable()
	lua.SetFunctions(state, h.functions(), 0)
	state.Pop(1)
	return h
}

// Load builds a registry from the given script files.
func Load(paths ...string) (*combat.Registry, error) {
	h := NewHost(nil)
	for _, p := range paths {
		if err := h.LoadFile(p); err != nil {
			return nil, err
		}
	}
	return h.Registry(), nil
}

func (h *Host) Registry() *combat.Registry { return h.reg }

func (h *Host) LoadFile(path string) error {
	if err := lua.LoadFile(h.state, path, ""); err != nil {
		return fmt.Errorf("load lua %s: %w", path, err)
	}
	if err := h.state.ProtectedCall(0, 0, 0); err != nil {
		return fmt.Errorf("run lua %s: %w", path, err)
	}
	return nil
}

// LoadString runs src as a chunk. name only appears in errors.
func (h *Host) LoadString(name, src string) error {
	if err := lua.DoString(h.state, src); err != nil {
		return fmt.Errorf("run lua %s: %w", name, err)
	}
	return nil
}

func (h *Host) current() *combat.Context {
	if len(h.stack) == 0 {
		return nil
	}
	return h.stack[len(h.stack)-1]
}

// handler returns a HandlerFunc calling the function stored at table[key].
func (h *Host) handler(table, key string) combat.HandlerFunc {
	return func(c *combat.Context) error {
		return h.callStored(table, key, c)
	}
}

func (h *Host) callStored(table, key string, c *combat.Context) error {
	l := h.state
	top := l.Top()
	defer l.SetTop(top)

	h.enter(c.Battle)
	h.stack = append(h.stack, c)
	defer func() { h.stack = h.stack[:len(h.stack)-1] }()

	l.Global(table)
	l.Field(-1, key)
	if !l.IsFunction(-1) {
		return fmt.Errorf("lua %s[%s] is not a function", table, key)
	}
	pushEvent(l, c)
	if err := l.ProtectedCall(1, 0, 0); err != nil {
		return fmt.Errorf("lua %s: %w", key, err)
	}
	return nil
}

// store saves the function at stack index idx as table[key].
func (h *Host) store(table, key string, idx int) {
	l := h.state
	idx = l.AbsIndex(idx)
	l.Global(table)
	l.PushValue(idx)
	l.SetField(-2, key)
	l.Pop(1)
}

// enter drops the countdown functions of the previous battle the first time
// a handler runs for b. Countdown functions stay stored for the whole battle
// so a fired countdown can be added again from its record.
func (h *Host) enter(b *combat.Battle) {
	if b == h.battle {
		return
	}
	h.battle = b
	h.state.NewTable()
	h.state.SetGlobal(countdownsTable)
}

func (h *Host) nextKey(prefix string) string {
	h.seq++
	return prefix + strconv.Itoa(h.seq)
}

func knownEvent(name string) bool {
	for _, ev := range combat.Events {
		if string(ev) == name {
			return true
		}
	}
	return false
}

func pushEvent(l *lua.State, c *combat.Context) {
	l.NewTable()
	setString(l, "event", string(c.Event))
	setString(l, "source", c.Source)
	setString(l, "tier", c.Tier)
	setInt(l, "round", c.Round())
	setInt(l, "amount", c.Amount)
	setString(l, "key", c.Key)
	l.PushBoolean(c.IsNew)
	l.SetField(-2, "is_new")
	setInt(l, "delta", c.Delta)
	setInt(l, "armor_lost", c.ArmorLost)
	setInt(l, "hp_lost", c.HPLost)
	setInt(l, "to_armor", c.ToArmor)
	if c.Countdown != nil {
		setString(l, "countdown", c.Countdown.Name)
		setString(l, "countdown_id", c.Countdown.ID)
		if tag, ok := c.Countdown.Tag.(string); ok {
			setString(l, "countdown_tag", tag)
		}
	}
}

func pushCountdown(l *lua.State, cd *combat.Countdown) {
	l.NewTable()
	setString(l, "id", cd.ID)
	setString(l, "name", cd.Name)
	if tag, ok := cd.Tag.(string); ok {
		setString(l, "tag", tag)
	}
	setInt(l, "turns_left", cd.TurnsLeft)
	setInt(l, "orig_turns", cd.OrigTurns)
}

func setString(l *lua.State, field, v string) {
	l.PushString(v)
	l.SetField(-2, field)
}

func setInt(l *lua.State, field string, v int) {
	l.PushInteger(v)
	l.SetField(-2, field)
}
