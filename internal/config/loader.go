package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

func loadYAML(path string, out any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(b, out)
}

// LoadBattle reads and validates a battle file.
func LoadBattle(path string) (*BattleFile, error) {
	var bf BattleFile
	if err := loadYAML(path, &bf); err != nil {
		return nil, fmt.Errorf("load battle %s: %w", path, err)
	}
	if err := bf.Validate(); err != nil {
		return nil, fmt.Errorf("battle %s: %w", path, err)
	}
	bf.dir = filepath.Dir(path)
	return &bf, nil
}

// ScriptPaths resolves the battle's scripts against the battle file's directory.
func (f *BattleFile) ScriptPaths() []string {
	out := make([]string, 0, len(f.Scripts))
	for _, s := range f.Scripts {
		if filepath.IsAbs(s) || f.dir == "" {
			out = append(out, s)
			continue
		}
		out = append(out, filepath.Join(f.dir, s))
	}
	return out
}
