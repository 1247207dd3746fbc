package engine

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"valgate/internal/core/preprocessing"
)

var (
	// ErrProfileNotFound is returned when no profile applies to a request
	ErrProfileNotFound = errors.New("profile not found")
	// ErrInvalidBody is returned by FindProfile when the body is not valid JSON
	ErrInvalidBody = errors.New("request body is not valid JSON")
)

// Engine holds the validation profiles and their prebuilt preprocessing chains.
// It is read-only once built and safe for concurrent use.
type Engine struct {
	config   *EngineConfig
	matchers map[string][]pathMatcher // profileID -> matchers in config order
	chains   map[string]*preprocessing.Chain
	index    map[string]*Profile
}

// NewEngine compiles matchers and builds a chain for every profile
func NewEngine(config *EngineConfig, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if config == nil {
		config = &EngineConfig{}
	}

	e := &Engine{
		config:   config,
		matchers: make(map[string][]pathMatcher),
		chains:   make(map[string]*preprocessing.Chain),
		index:    make(map[string]*Profile),
	}

	for i := range config.Profiles {
		profile := &config.Profiles[i]
		if profile.ID == "" {
			return nil, fmt.Errorf("profile %d has no id", i)
		}
		if _, dup := e.index[profile.ID]; dup {
			return nil, fmt.Errorf("duplicate profile id %s", profile.ID)
		}

		profileMatchers, err := compileMatchers(profile.Matcher)
		if err != nil {
			return nil, fmt.Errorf("profile %s: %w", profile.ID, err)
		}

		chain, err := BuildChain(profile.Steps)
		if err != nil {
			return nil, fmt.Errorf("profile %s: %w", profile.ID, err)
		}

		e.matchers[profile.ID] = profileMatchers
		e.chains[profile.ID] = chain
		e.index[profile.ID] = profile

		log.Debug("Profile loaded",
			zap.String("profile", profile.ID),
			zap.Int("steps", chain.Len()),
		)
	}

	return e, nil
}

// FindProfile returns the first profile whose matchers all match the body
func (e *Engine) FindProfile(body []byte) (*Profile, error) {
	if !sonic.Valid(body) {
		return nil, ErrInvalidBody
	}
	root, err := sonic.Get(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}

	for i := range e.config.Profiles {
		profile := &e.config.Profiles[i]

		allMatch := true
		for _, m := range e.matchers[profile.ID] {
			node := root.GetByPath(m.path...)
			if err := node.Check(); err != nil {
				allMatch = false
				break
			}

			value, err := node.String()
			if err != nil {
				// Not a string, compare the raw value
				rawValue, _ := node.Raw()
				value = rawValue
			}

			if !m.re.MatchString(value) {
				allMatch = false
				break
			}
		}

		if allMatch {
			return profile, nil
		}
	}

	return nil, ErrProfileNotFound
}

type pathMatcher struct {
	path []interface{}
	re   *regexp.Regexp
}

func compileMatchers(pairs []string) ([]pathMatcher, error) {
	matchers := make([]pathMatcher, 0, len(pairs))
	for _, pair := range pairs {
		jsonPath, pattern, ok := strings.Cut(pair, "=")
		jsonPath = strings.TrimSpace(jsonPath)
		if !ok || jsonPath == "" {
			return nil, fmt.Errorf("invalid matcher %q, want path=regex", pair)
		}
		re, err := regexp.Compile(strings.TrimSpace(pattern))
		if err != nil {
			return nil, fmt.Errorf("invalid regex pattern for path %s: %w", jsonPath, err)
		}
		matchers = append(matchers, pathMatcher{path: splitPath(jsonPath), re: re})
	}
	return matchers, nil
}

// Profile returns the profile with the given id
func (e *Engine) Profile(id string) (*Profile, bool) {
	p, ok := e.index[id]
	return p, ok
}

// Chain returns the preprocessing chain of a profile
func (e *Engine) Chain(id string) (*preprocessing.Chain, bool) {
	c, ok := e.chains[id]
	return c, ok
}

// Profiles returns the profiles in configuration order
func (e *Engine) Profiles() []Profile {
	profiles := make([]Profile, len(e.config.Profiles))
	copy(profiles, e.config.Profiles)
	return profiles
}

// splitPath turns "messages.0.role" or "messages/0/role" into sonic path elements.
func splitPath(path string) []interface{} {
	parts := strings.FieldsFunc(path, func(r rune) bool { return r == '.' || r == '/' })
	elems := make([]interface{}, 0, len(parts))
	for _, part := range parts {
		if n, err := strconv.Atoi(part); err == nil {
			elems = append(elems, n)
			continue
		}
		elems = append(elems, part)
	}
	return elems
}
