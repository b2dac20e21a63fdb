package normalize

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/carpenike/repcal/internal/models"
	"gopkg.in/yaml.v3"
)

// Loader supplies raw program documents by path. The normalizer does not
// know where they come from.
type Loader interface {
	Load(ctx context.Context, name string) ([]byte, error)
}

// FSLoader reads documents from a filesystem. YAML documents (.yaml/.yml)
// are converted to JSON so both formats decode the same way.
type FSLoader struct {
	FS fs.FS
}

// Load implements Loader.
func (l FSLoader) Load(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := fs.ReadFile(l.FS, name)
	if err != nil {
		return nil, fmt.Errorf("normalize: read %s: %w", name, err)
	}
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		return yamlToJSON(raw)
	}
	return raw, nil
}

// LoadTemplate loads and normalizes a single template or combined config.
func LoadTemplate(ctx context.Context, l Loader, name string) (*models.Program, error) {
	raw, err := l.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	return NormalizeJSON(raw)
}

// Modular config file names, without extension.
const (
	FileProgramMetadata    = "program-metadata"
	FilePhaseDefinitions   = "phase-definitions"
	FileDayTemplates       = "day-templates"
	FileExerciseLibrary    = "exercise-library"
	FileSectionDefinitions = "section-definitions"
	FileWorkoutSessions    = "workout-sessions"
)

// LoadModular reads a directory of modular config files. Each file holds
// one piece of ModularConfig. Missing optional files are fine; missing
// required ones fail with ErrIncompleteConfig.
func LoadModular(ctx context.Context, l Loader, dir string) (*models.Program, error) {
	var c ModularConfig
	parts := []struct {
		file     string
		target   any
		required bool
	}{
		{FileProgramMetadata, &c.Metadata, true},
		{FilePhaseDefinitions, &c.Phases, false},
		{FileDayTemplates, &c.DayTemplates, false},
		{FileExerciseLibrary, &c.Library, true},
		{FileSectionDefinitions, &c.Sections, true},
		{FileWorkoutSessions, &c.Sessions, false},
	}

	for _, part := range parts {
		raw, err := loadAnyExt(ctx, l, path.Join(dir, part.file))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				if part.required {
					return nil, fmt.Errorf("normalize: modular: %w: %s", ErrIncompleteConfig, part.file)
				}
				continue
			}
			return nil, err
		}
		if err := json.Unmarshal(raw, part.target); err != nil {
			return nil, fmt.Errorf("normalize: decode %s: %w", part.file, err)
		}
	}

	return NormalizeModular(&c)
}

func loadAnyExt(ctx context.Context, l Loader, base string) ([]byte, error) {
	var lastErr error
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		raw, err := l.Load(ctx, base+ext)
		if err == nil {
			return raw, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// yamlToJSON re-encodes a YAML document as JSON. Mapping keys are
// stringified since day templates use numeric keys.
func yamlToJSON(raw []byte) ([]byte, error) {
	var v any
	if err := yaml.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("normalize: parse yaml: %w", err)
	}
	out, err := json.Marshal(jsonCompatible(v))
	if err != nil {
		return nil, fmt.Errorf("normalize: yaml to json: %w", err)
	}
	return out, nil
}

func jsonCompatible(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, item := range val {
			val[k] = jsonCompatible(item)
		}
		return val
	case map[any]any:
		m := make(map[string]any, len(val))
		for k, item := range val {
			m[fmt.Sprint(k)] = jsonCompatible(item)
		}
		return m
	case []any:
		for i, item := range val {
			val[i] = jsonCompatible(item)
		}
		return val
	}
	return v
}
