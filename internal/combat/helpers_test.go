package combat

func fighter(name string, hp, atk, armor, speed int) Loadout {
	return Loadout{Name: name, Stats: Stats{HP: hp, Atk: atk, Armor: armor, Speed: speed}}
}

func testBattle(reg *Registry, left, right Loadout) *Battle {
	return newBattle(reg, left, right, Options{Seed: 7, ID: "test"})
}

// counter returns a handler that counts its calls.
func counter(n *int) HandlerFunc {
	return func(*Context) error {
		*n++
		return nil
	}
}

// trace returns a handler appending tag to calls.
func trace(calls *[]string, tag string) HandlerFunc {
	return func(*Context) error {
		*calls = append(*calls, tag)
		return nil
	}
}

func texts(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Text
	}
	return out
}
