package engine

import (
	"fmt"
	"strconv"
	"strings"

	"valgate/internal/core/preprocessing"
	"valgate/internal/core/preprocessors"
	"valgate/internal/core/security"
)

// BuildChain builds a chain holding one preprocessor per step, in order
func BuildChain(steps []StepConfig) (*preprocessing.Chain, error) {
	chain := preprocessing.NewChain()
	for i, step := range steps {
		p, err := BuildStep(step)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, step.Type, err)
		}
		chain.Add(p)
	}
	return chain, nil
}

// BuildStep creates the preprocessor described by step
func BuildStep(step StepConfig) (preprocessors.Step, error) {
	switch step.Type {
	case StepTypeJSONSyntax:
		return preprocessors.NewJSONSyntax(), nil
	case StepTypeMaxSize:
		limit, err := strconv.Atoi(step.Options["limit"])
		if err != nil || limit <= 0 {
			return nil, fmt.Errorf("invalid limit %q", step.Options["limit"])
		}
		return preprocessors.NewMaxSize(limit), nil
	case StepTypeRequired:
		if len(step.Paths) == 0 {
			return nil, fmt.Errorf("no paths")
		}
		return preprocessors.NewRequiredFields(step.Paths, step.Groups...), nil
	case StepTypeTypes:
		mappings, err := parseMappings(step.Mappings)
		if err != nil {
			return nil, err
		}
		return preprocessors.NewFieldTypes(mappings)
	case StepTypeTrim:
		return preprocessors.NewTrimStrings(step.Paths...), nil
	case StepTypeFieldMap:
		mappings, err := parseMappings(step.Mappings)
		if err != nil {
			return nil, err
		}
		return preprocessors.NewFieldMap(mappings), nil
	case StepTypeDefaults:
		mappings, err := parseMappings(step.Mappings)
		if err != nil {
			return nil, err
		}
		return preprocessors.NewDefaults(mappings)
	case StepTypeSecretGuard:
		var rules []string
		if raw := step.Options["rules"]; raw != "" {
			for _, r := range strings.Split(raw, ",") {
				rules = append(rules, strings.TrimSpace(r))
			}
		}
		scanner, err := security.NewScannerWith(rules...)
		if err != nil {
			return nil, err
		}
		return preprocessors.NewSecretGuard(scanner, step.Options["mode"], step.Paths...)
	case StepTypeLog:
		return preprocessors.NewRequestLogger(step.Paths...), nil
	default:
		return nil, fmt.Errorf("unknown step type %q", step.Type)
	}
}

// parseMappings turns ["a=b", "c=d"] into {"a":"b","c":"d"}. Only the first '=' splits.
func parseMappings(pairs []string) (map[string]string, error) {
	m := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid mapping %q, want key=value", pair)
		}
		m[key] = strings.TrimSpace(value)
	}
	return m, nil
}
