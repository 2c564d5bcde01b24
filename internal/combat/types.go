package combat

// Status kinds known to the tick engine. Any other kind is carried as a plain stack.
const (
	Poison  = "poison"
	Acid    = "acid"
	Riptide = "riptide"
	Freeze  = "freeze"
	Stun    = "stun"
	Thorns  = "thorns"
	Regen   = "regen"
	Purity  = "purity"
)

const (
	defaultHP       = 10
	maxGold         = 10
	riptideHit      = 5
	defaultMaxTurns = 100
)

// Statuses maps a status kind to its stack count. Missing kinds read as zero.
type Statuses map[string]int

func (s Statuses) Get(kind string) int { return s[kind] }

// Active returns kinds with a positive stack, in no particular order.
func (s Statuses) Active() []string {
	var out []string
	for k, v := range s {
		if v > 0 {
			out = append(out, k)
		}
	}
	return out
}

// Item is one equipped slug. Tier is passed through to handlers untouched.
type Item struct {
	Slug string `json:"slug" yaml:"slug"`
	Tier string `json:"tier,omitempty" yaml:"tier"`
}

type Stats struct {
	HP    int `json:"hp"`
	Atk   int `json:"atk"`
	Armor int `json:"armor"`
	Speed int `json:"speed"`
}

// Loadout describes one side before the battle starts.
type Loadout struct {
	Name     string         `json:"name"`
	Stats    Stats          `json:"stats"`
	Statuses map[string]int `json:"statuses,omitempty"`
	Weapon   string         `json:"weapon,omitempty"`
	Items    []Item         `json:"items,omitempty"`
}

// CountdownAction runs when a countdown fires. c.Self is the owner.
type CountdownAction func(c *Context, cd *Countdown) error

type Countdown struct {
	ID        string
	Name      string
	TurnsLeft int
	OrigTurns int
	Tag       any
	Source    string
	Action    CountdownAction
}

type Summary struct {
	StrikesAttempted    int            `json:"strikes_attempted"`
	StrikesLanded       int            `json:"strikes_landed"`
	HPDamageDealt       int            `json:"hp_damage_dealt"`
	ArmorDestroyedDealt int            `json:"armor_destroyed_dealt"`
	BombHPDealt         int            `json:"bomb_hp_dealt"`
	StatusesGained      map[string]int `json:"statuses_gained"`
	StatusesInflicted   map[string]int `json:"statuses_inflicted"`
	GoldGained          int            `json:"gold_gained"`
}

type Entity struct {
	Name string

	HP    int
	HPMax int

	Atk     int
	TempAtk int

	Armor     int
	BaseArmor int

	Speed int
	Gold  int

	Statuses Statuses
	Weapon   string
	Items    []Item

	FirstTurn      bool
	StruckThisTurn bool
	HealedThisTurn int
	CannotStrike   bool
	SkipTurn       bool
	StrikeFactor   float64
	ExtraStrikes   int

	ExposedCount int
	ExposedLimit int
	WoundedDone  bool

	// knobs set by capabilities
	ArmoredReduction  int
	UnarmoredIncrease int
	RiptideCap        int
	PreserveThorns    int
	HealFactor        int
	BombRepeat        int
	BombFlatBonus     int
	BombNextBonus     int

	Countdowns []*Countdown
	TurnCount  int

	// Vars is scratch space for capability state that lives for one battle.
	Vars map[string]int

	Summary Summary
}

func NewEntity(lo Loadout) *Entity {
	hp := lo.Stats.HP
	if hp <= 0 {
		hp = defaultHP
	}
	armor := lo.Stats.Armor
	if armor < 0 {
		armor = 0
	}
	name := lo.Name
	if name == "" {
		name = "Fighter"
	}
	e := &Entity{
		Name:  name,
		HP:    hp,
		HPMax: hp,
		Atk:   lo.Stats.Atk,
		Armor: armor, BaseArmor: armor,
		Speed:        lo.Stats.Speed,
		Statuses:     Statuses{},
		Weapon:       lo.Weapon,
		Items:        append([]Item(nil), lo.Items...),
		FirstTurn:    true,
		StrikeFactor: 1,
		ExposedLimit: 1,
		RiptideCap:   1,
		HealFactor:   1,
		Vars:         map[string]int{},
		Summary: Summary{
			StatusesGained:    map[string]int{},
			StatusesInflicted: map[string]int{},
		},
	}
	for k, v := range lo.Statuses {
		if v > 0 {
			e.Statuses[k] = v
		}
	}
	return e
}

func (e *Entity) resetTurn() {
	e.TempAtk = 0
	e.ExtraStrikes = 0
	e.SkipTurn = false
	e.StruckThisTurn = false
	e.HealedThisTurn = 0
}

func (e *Entity) Alive() bool { return e.HP > 0 }

// HasItem reports whether slug is equipped as an item (not the weapon).
func (e *Entity) HasItem(slug string) bool {
	for _, it := range e.Items {
		if it.Slug == slug {
			return true
		}
	}
	return false
}

func (e *Entity) Var(name string) int           { return e.Vars[name] }
func (e *Entity) SetVar(name string, v int)     { e.Vars[name] = v }
func (e *Entity) AddVar(name string, d int) int { e.Vars[name] += d; return e.Vars[name] }

func (e *Entity) wounded() bool { return e.HP <= e.HPMax/2 }
