package script

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadDefinitions reads a JSON array of script definitions from path and
// validates each entry. Script IDs must be unique within the file.
func LoadDefinitions(path string) ([]Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading script definitions: %w", err)
	}

	var defs []Definition
	if err := json.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("parsing script definitions %s: %w", path, err)
	}

	seen := make(map[string]bool, len(defs))
	for _, d := range defs {
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if seen[d.ID] {
			return nil, fmt.Errorf("%s: duplicate script id %q", path, d.ID)
		}
		seen[d.ID] = true
	}
	return defs, nil
}
