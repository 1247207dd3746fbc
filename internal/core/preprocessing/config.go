package preprocessing

import "strings"

// Group is an opaque validation group tag.
type Group string

// Config is the read-only configuration handed unchanged to every preprocessor of a chain.
type Config interface {
	// ValidationGroups returns the groups active for this run, possibly none
	ValidationGroups() []Group
}

// StaticConfig is an immutable Config over a fixed set of groups.
type StaticConfig struct {
	groups []Group
}

// NewConfig creates a config with the given active groups
func NewConfig(groups ...Group) *StaticConfig {
	cp := make([]Group, len(groups))
	copy(cp, groups)
	return &StaticConfig{groups: cp}
}

// ParseGroups splits a comma separated list such as "create, admin" into groups.
// Empty entries are dropped.
func ParseGroups(s string) []Group {
	var groups []Group
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		groups = append(groups, Group(part))
	}
	return groups
}

// ValidationGroups returns a copy of the active groups
func (c *StaticConfig) ValidationGroups() []Group {
	cp := make([]Group, len(c.groups))
	copy(cp, c.groups)
	return cp
}

// Has reports whether g is active
func (c *StaticConfig) Has(g Group) bool {
	return HasGroup(c, g)
}

// HasGroup reports whether g is among the active groups of any Config.
// A nil config has no active groups.
func HasGroup(config Config, g Group) bool {
	if config == nil {
		return false
	}
	for _, active := range config.ValidationGroups() {
		if active == g {
			return true
		}
	}
	return false
}

// HasAnyGroup reports whether at least one of groups is active.
func HasAnyGroup(config Config, groups ...Group) bool {
	for _, g := range groups {
		if HasGroup(config, g) {
			return true
		}
	}
	return false
}
