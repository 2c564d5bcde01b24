package combat

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/looplab/fsm"
	"github.com/sirupsen/logrus"

	"heic_sim/internal/util"
)

// Scheduler states.
const (
	StateSetup       = "setup"
	StatePreBattle   = "pre_battle"
	StateBattleStart = "battle_start"
	StateTurns       = "turns"
	StateEnded       = "ended"
)

type Outcome string

const (
	LeftWin  Outcome = "LeftWin"
	RightWin Outcome = "RightWin"
	Draw     Outcome = "Draw"
)

type Options struct {
	// MaxTurns caps the number of rounds; zero means 100.
	MaxTurns int
	Seed     int64
	// ID names the battle in process logs; generated when empty.
	ID string
	// Logger receives lifecycle and fault logs. Nil disables them.
	Logger logrus.FieldLogger
	// DropLog skips building the transcript (batch runs).
	DropLog bool
}

// Entry is one transcript line. Source is the capability slug in scope when
// the line was written, empty for engine lines.
type Entry struct {
	Round  int    `json:"round"`
	Source string `json:"source,omitempty"`
	Text   string `json:"text"`
}

func (e Entry) String() string {
	if e.Source == "" {
		return e.Text
	}
	return fmt.Sprintf("::icon:%s:: %s", e.Source, e.Text)
}

type SideSummary struct {
	Name           string `json:"name"`
	HPRemaining    int    `json:"hp_remaining"`
	ArmorRemaining int    `json:"armor_remaining"`
	Summary
	Gold int `json:"gold"`
}

type Result struct {
	ID      string      `json:"id"`
	Outcome Outcome     `json:"result"`
	Rounds  int         `json:"rounds"`
	Log     []Entry     `json:"log,omitempty"`
	Left    SideSummary `json:"left"`
	Right   SideSummary `json:"right"`
	Faults  []Fault     `json:"faults,omitempty"`
}

// Lines renders the transcript the way it is shown to players.
func (r Result) Lines() []string {
	out := make([]string, len(r.Log))
	for i, e := range r.Log {
		out[i] = e.String()
	}
	return out
}

// Battle is the state of one simulation. It lives for one Simulate call.
type Battle struct {
	ID          string
	Left, Right *Entity

	reg      *Registry
	rng      *rand.Rand
	logger   logrus.FieldLogger
	maxTurns int
	dropLog  bool

	round  int
	actor  *Entity
	source string
	log    []Entry
	faults []Fault
	fsm    *fsm.FSM
}

func newBattle(reg *Registry, left, right Loadout, opts Options) *Battle {
	if reg == nil {
		reg = NewRegistry()
	}
	id := opts.ID
	if id == "" {
		id = uuid.NewString()
	}
	maxTurns := opts.MaxTurns
	if maxTurns <= 0 {
		maxTurns = defaultMaxTurns
	}
	b := &Battle{
		ID:       id,
		Left:     NewEntity(left),
		Right:    NewEntity(right),
		reg:      reg,
		rng:      util.New(opts.Seed),
		logger:   opts.Logger,
		maxTurns: maxTurns,
		dropLog:  opts.DropLog,
	}
	b.fsm = fsm.NewFSM(
		StateSetup,
		fsm.Events{
			{Name: "pre", Src: []string{StateSetup}, Dst: StatePreBattle},
			{Name: "start", Src: []string{StatePreBattle}, Dst: StateBattleStart},
			{Name: "fight", Src: []string{StateBattleStart}, Dst: StateTurns},
			{Name: "end", Src: []string{StateSetup, StatePreBattle, StateBattleStart, StateTurns}, Dst: StateEnded},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				if b.logger != nil {
					b.logger.WithFields(logrus.Fields{
						"battle": b.ID,
						"from":   e.Src,
						"to":     e.Dst,
						"round":  b.round,
					}).Debug("battle state")
				}
			},
		},
	)
	return b
}

// State is the scheduler's current state.
func (b *Battle) State() string { return b.fsm.Current() }

// Round is the current round number, starting at 1.
func (b *Battle) Round() int { return b.round }

func (b *Battle) logf(format string, args ...any) {
	b.logAs("", format, args...)
}

func (b *Battle) logAs(source, format string, args ...any) {
	if b.dropLog {
		return
	}
	b.log = append(b.log, Entry{Round: b.round, Source: source, Text: fmt.Sprintf(format, args...)})
}

func (b *Battle) transition(ctx context.Context, ev string) {
	if err := b.fsm.Event(ctx, ev); err != nil && b.logger != nil {
		b.logger.WithField("battle", b.ID).WithError(err).Error("battle state transition")
	}
}

// Simulate runs one battle between left and right using the capabilities in
// reg. It never fails: handler faults are absorbed and reported in the result.
func Simulate(reg *Registry, left, right Loadout, opts Options) Result {
	b := newBattle(reg, left, right, opts)
	b.run(context.Background())
	return b.result()
}

func (b *Battle) run(ctx context.Context) {
	L, R := b.Left, b.Right

	b.transition(ctx, "pre")
	b.dispatch(EvPre, L, R, Payload{})
	b.dispatch(EvPre, R, L, Payload{})

	b.transition(ctx, "start")
	b.dispatch(EvBattleStart, L, R, Payload{})
	b.dispatch(EvBattleStart, R, L, Payload{})

	b.transition(ctx, "fight")
	actor, target := R, L
	if L.Speed > R.Speed {
		actor, target = L, R
	}
	for b.round < b.maxTurns && L.Alive() && R.Alive() {
		b.round++
		b.takeTurn(actor, target)
		actor, target = target, actor
	}
	b.transition(ctx, "end")
}

func (b *Battle) takeTurn(actor, target *Entity) {
	actor.TurnCount++
	b.logf("-- Turn %d -- %s", b.round, actor.Name)

	b.turnStartTicks(actor, target)
	b.dispatch(EvTurnStart, actor, target, Payload{})
	b.dispatch(EvRecomputeAttack, actor, target, Payload{})

	for n := strikeCount(actor); n > 0 && actor.Alive() && target.Alive(); n-- {
		b.strike(actor, target)
	}

	b.turnEndTicks(actor, target)
	b.dispatch(EvTurnEnd, actor, target, Payload{})
	actor.FirstTurn = false
}

func strikeCount(e *Entity) int {
	if e.CannotStrike || e.SkipTurn {
		return 0
	}
	factor := e.StrikeFactor
	if factor == 0 {
		factor = 1
	}
	return max(0, int(float64(1+e.ExtraStrikes)*factor))
}

func (b *Battle) outcome() Outcome {
	switch {
	case !b.Left.Alive() && !b.Right.Alive():
		return Draw
	case !b.Left.Alive():
		return RightWin
	case !b.Right.Alive():
		return LeftWin
	}
	return Draw
}

func summarize(e *Entity) SideSummary {
	return SideSummary{
		Name:           e.Name,
		HPRemaining:    e.HP,
		ArmorRemaining: e.Armor,
		Summary:        e.Summary,
		Gold:           e.Gold,
	}
}

func (b *Battle) result() Result {
	res := Result{
		ID:      b.ID,
		Outcome: b.outcome(),
		Rounds:  b.round,
		Log:     b.log,
		Left:    summarize(b.Left),
		Right:   summarize(b.Right),
		Faults:  b.faults,
	}
	if b.logger != nil {
		b.logger.WithFields(logrus.Fields{
			"battle": b.ID,
			"result": res.Outcome,
			"rounds": res.Rounds,
			"faults": len(res.Faults),
		}).Debug("battle finished")
	}
	return res
}

func MarshalPretty(v any) []byte {
	b, _ := json.MarshalIndent(v, "", "  ")
	return b
}
