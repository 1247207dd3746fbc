package engine

import (
	"valgate/internal/core/preprocessing"
)

// EngineConfig defines the validation profiles served by the engine
type EngineConfig struct {
	Profiles []Profile `mapstructure:"profiles"`
}

// Profile binds a request matcher to an ordered list of preprocessing steps
type Profile struct {
	// ID is the unique identifier for this profile
	ID string `mapstructure:"id"`
	// Matcher holds "path=regex" pairs, e.g. "model=^gpt-" or "messages.0.role=user".
	// Every pair must match. A profile without matchers matches every request.
	// A list keeps the path case, viper lowercases map keys.
	Matcher []string `mapstructure:"matcher"`
	// Groups are the validation groups used when the caller does not send any
	Groups []string `mapstructure:"groups"`
	// Steps is the preprocessing chain, run in order
	Steps []StepConfig `mapstructure:"steps"`
}

// StepConfig defines a single preprocessing step
type StepConfig struct {
	// Type is the step type, see the StepType constants
	Type string `mapstructure:"type"`
	// Paths are gjson paths the step works on
	Paths []string `mapstructure:"paths"`
	// Groups restrict the step to requests with one of these validation groups active
	Groups []string `mapstructure:"groups"`
	// Mappings are "key=value" pairs, e.g. "inputs.query=messages.0.content" for field_map.
	// Dotted keys cannot be map keys in viper, hence the flat form.
	Mappings []string `mapstructure:"mappings"`
	// Options holds scalar settings such as "limit" or "mode"
	Options map[string]string `mapstructure:"options"`
}

// Step type constants
const (
	StepTypeJSONSyntax  = "json_syntax"  // well-formed JSON
	StepTypeMaxSize     = "max_size"     // options.limit in bytes
	StepTypeRequired    = "required"     // paths, optional groups
	StepTypeTypes       = "types"        // mappings path=type
	StepTypeTrim        = "trim"         // paths
	StepTypeFieldMap    = "field_map"    // mappings target=source
	StepTypeDefaults    = "defaults"     // mappings path=raw JSON
	StepTypeSecretGuard = "secret_guard" // options.mode, paths, options.rules
	StepTypeLog         = "log"          // paths are logged
)

// ValidationConfig returns the preprocessing config for a run of this profile.
// Explicit groups win over the profile defaults.
func (p *Profile) ValidationConfig(groups []preprocessing.Group) preprocessing.Config {
	if len(groups) > 0 {
		return preprocessing.NewConfig(groups...)
	}
	defaults := make([]preprocessing.Group, 0, len(p.Groups))
	for _, g := range p.Groups {
		defaults = append(defaults, preprocessing.Group(g))
	}
	return preprocessing.NewConfig(defaults...)
}
