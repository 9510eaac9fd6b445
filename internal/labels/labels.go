package labels

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// Load resolves the label table, index-aligned with the model's output
// logits. The labels file is the source of truth; when it is missing the
// table is derived from the sorted subdirectory names of imagesDir and
// persisted back to labelsPath so later runs take the fast path. Both
// sources missing means the service cannot start.
func Load(labelsPath, imagesDir string) ([]string, error) {
	data, err := os.ReadFile(labelsPath)
	if err == nil {
		table, perr := parse(data)
		if perr != nil {
			return nil, fmt.Errorf("parsing labels file %s: %w", labelsPath, perr)
		}
		log.Info().Msgf("Loaded %d labels from %s", len(table), labelsPath)
		return table, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading labels file %s: %w", labelsPath, err)
	}

	table, derr := deriveFromDir(imagesDir)
	if derr != nil {
		return nil, fmt.Errorf("labels file %s missing and no usable reference images: %w", labelsPath, derr)
	}
	if perr := persist(labelsPath, table); perr != nil {
		return nil, fmt.Errorf("persisting derived labels to %s: %w", labelsPath, perr)
	}
	log.Info().Msgf("Derived %d labels from %s and wrote %s", len(table), imagesDir, labelsPath)
	return table, nil
}

// parse accepts either a JSON object keyed by stringified class indices
// or a plain JSON array of names. Values must be strings; stray
// surrounding quotes inside a name are stripped.
func parse(data []byte) ([]string, error) {
	trimmed := strings.TrimSpace(string(data))
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("labels file is empty")
	}
	switch trimmed[0] {
	case '{':
		var byIndex map[string]any
		if err := json.Unmarshal(data, &byIndex); err != nil {
			return nil, err
		}
		indices := make([]int, 0, len(byIndex))
		names := make(map[int]string, len(byIndex))
		for k, v := range byIndex {
			idx, err := strconv.Atoi(k)
			if err != nil {
				return nil, fmt.Errorf("label key %q is not a class index", k)
			}
			name, err := cleanName(v)
			if err != nil {
				return nil, err
			}
			indices = append(indices, idx)
			names[idx] = name
		}
		sort.Ints(indices)
		table := make([]string, 0, len(indices))
		for _, idx := range indices {
			table = append(table, names[idx])
		}
		return table, nil
	case '[':
		var raw []any
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		table := make([]string, 0, len(raw))
		for _, v := range raw {
			name, err := cleanName(v)
			if err != nil {
				return nil, err
			}
			table = append(table, name)
		}
		return table, nil
	default:
		return nil, fmt.Errorf("labels file must hold a JSON object or array")
	}
}

func cleanName(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("label value %v is not a string", v)
	}
	return strings.Trim(s, `"`), nil
}

// deriveFromDir lists the immediate subdirectories of imagesDir in
// lexicographic order, one class per directory.
func deriveFromDir(imagesDir string) ([]string, error) {
	dirEntries, err := os.ReadDir(imagesDir)
	if err != nil {
		return nil, err
	}
	table := make([]string, 0, len(dirEntries))
	for _, e := range dirEntries {
		if e.IsDir() {
			table = append(table, e.Name())
		}
	}
	sort.Strings(table)
	return table, nil
}

func persist(labelsPath string, table []string) error {
	if dir := filepath.Dir(labelsPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	data, err := json.MarshalIndent(table, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(labelsPath, data, 0o644)
}
