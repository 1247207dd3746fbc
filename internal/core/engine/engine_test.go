package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"valgate/internal/core"
	"valgate/internal/core/apierrors"
	"valgate/internal/core/preprocessing"
	"valgate/internal/core/preprocessors"
)

func testConfig() *EngineConfig {
	return &EngineConfig{Profiles: []Profile{
		{
			ID:      "chat",
			Matcher: []string{"model=^gpt-.*", "messages.0.role=user|system"},
			Groups:  []string{"create"},
			Steps: []StepConfig{
				{Type: StepTypeJSONSyntax},
				{Type: StepTypeMaxSize, Options: map[string]string{"limit": "4096"}},
				{Type: StepTypeRequired, Paths: []string{"model", "messages"}},
				{Type: StepTypeRequired, Paths: []string{"id"}, Groups: []string{"update"}},
				{Type: StepTypeTypes, Mappings: []string{"model=string", "messages=array"}},
				{Type: StepTypeTrim, Paths: []string{"model"}},
				{Type: StepTypeDefaults, Mappings: []string{"stream=false"}},
				{Type: StepTypeSecretGuard, Options: map[string]string{"mode": "redact", "rules": "Email, AWS Access Key"}},
				{Type: StepTypeLog, Paths: []string{"model"}},
			},
		},
		{
			ID:      "numbers",
			Matcher: []string{"version=^2$"},
			Steps:   []StepConfig{{Type: StepTypeFieldMap, Mappings: []string{"input.text=prompt"}}},
		},
		{
			ID:    "fallback",
			Steps: []StepConfig{{Type: StepTypeJSONSyntax}},
		},
	}}
}

func TestNewEngineBuildsChains(t *testing.T) {
	observed, observedLogs := observer.New(zap.DebugLevel)
	e, err := NewEngine(testConfig(), zap.New(observed))
	require.NoError(t, err)

	chain, ok := e.Chain("chat")
	require.True(t, ok)
	assert.Equal(t, 9, chain.Len())

	_, ok = e.Chain("missing")
	assert.False(t, ok)

	assert.Len(t, e.Profiles(), 3)
	assert.Equal(t, 3, observedLogs.FilterMessage("Profile loaded").Len())
}

func TestNewEngineErrors(t *testing.T) {
	testCases := []struct {
		name    string
		profile []Profile
	}{
		{"missing id", []Profile{{}}},
		{"duplicate id", []Profile{{ID: "a"}, {ID: "a"}}},
		{"bad regex", []Profile{{ID: "a", Matcher: []string{"model=("}}}},
		{"matcher without regex", []Profile{{ID: "a", Matcher: []string{"model"}}}},
		{"matcher without path", []Profile{{ID: "a", Matcher: []string{"=^gpt"}}}},
		{"unknown step", []Profile{{ID: "a", Steps: []StepConfig{{Type: "teleport"}}}}},
		{"bad limit", []Profile{{ID: "a", Steps: []StepConfig{{Type: StepTypeMaxSize, Options: map[string]string{"limit": "big"}}}}}},
		{"required without paths", []Profile{{ID: "a", Steps: []StepConfig{{Type: StepTypeRequired}}}}},
		{"bad mapping", []Profile{{ID: "a", Steps: []StepConfig{{Type: StepTypeFieldMap, Mappings: []string{"novalue"}}}}}},
		{"bad type", []Profile{{ID: "a", Steps: []StepConfig{{Type: StepTypeTypes, Mappings: []string{"a=integer"}}}}}},
		{"bad default", []Profile{{ID: "a", Steps: []StepConfig{{Type: StepTypeDefaults, Mappings: []string{"a=not json"}}}}}},
		{"bad guard mode", []Profile{{ID: "a", Steps: []StepConfig{{Type: StepTypeSecretGuard, Options: map[string]string{"mode": "loud"}}}}}},
		{"bad guard rule", []Profile{{ID: "a", Steps: []StepConfig{{Type: StepTypeSecretGuard, Options: map[string]string{"rules": "Credit Card"}}}}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewEngine(&EngineConfig{Profiles: tc.profile}, nil)
			assert.Error(t, err)
		})
	}
}

func TestNewEngineNilConfig(t *testing.T) {
	e, err := NewEngine(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, e.Profiles())

	_, err = e.FindProfile([]byte(`{}`))
	assert.True(t, errors.Is(err, ErrProfileNotFound))
}

func TestFindProfile(t *testing.T) {
	e, err := NewEngine(testConfig(), nil)
	require.NoError(t, err)

	testCases := []struct {
		name string
		body string
		want string
	}{
		{"chat", `{"model":"gpt-4","messages":[{"role":"user","content":"hi"}]}`, "chat"},
		{"chat needs every matcher", `{"model":"gpt-4","messages":[{"role":"tool"}]}`, "fallback"},
		{"numeric value", `{"version":2}`, "numbers"},
		{"catch all", `{"model":"claude"}`, "fallback"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := e.FindProfile([]byte(tc.body))
			require.NoError(t, err)
			assert.Equal(t, tc.want, p.ID)
		})
	}
}

func TestFindProfileKeepsPathCase(t *testing.T) {
	e, err := NewEngine(&EngineConfig{Profiles: []Profile{
		{ID: "v2", Matcher: []string{"apiVersion=^v2$", "spec/items/0/kind = Pod"}},
	}}, nil)
	require.NoError(t, err)

	p, err := e.FindProfile([]byte(`{"apiVersion":"v2","spec":{"items":[{"kind":"Pod"}]}}`))
	require.NoError(t, err)
	assert.Equal(t, "v2", p.ID)

	_, err = e.FindProfile([]byte(`{"apiversion":"v2","spec":{"items":[{"kind":"Pod"}]}}`))
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestFindProfileInvalidBody(t *testing.T) {
	e, err := NewEngine(testConfig(), nil)
	require.NoError(t, err)

	for _, body := range []string{`{"model":"gpt-4",`, ``, `nope`} {
		_, err := e.FindProfile([]byte(body))
		assert.ErrorIs(t, err, ErrInvalidBody, body)
	}
}

func TestProfileValidationConfig(t *testing.T) {
	p := &Profile{ID: "a", Groups: []string{"create"}}

	assert.Equal(t, []preprocessing.Group{"create"}, p.ValidationConfig(nil).ValidationGroups())
	assert.Equal(t, []preprocessing.Group{"update"}, p.ValidationConfig([]preprocessing.Group{"update"}).ValidationGroups())
	assert.Empty(t, (&Profile{}).ValidationConfig(nil).ValidationGroups())
}

func TestChatProfileEndToEnd(t *testing.T) {
	e, err := NewEngine(testConfig(), nil)
	require.NoError(t, err)
	profile, _ := e.Profile("chat")
	chain, _ := e.Chain("chat")

	t.Run("succeeds and rewrites", func(t *testing.T) {
		req := core.NewRequest([]byte(`{"model":" gpt-4 ","messages":[{"role":"user","content":"me@example.com"}]}`), nil)
		ok, err := chain.Process(req, profile.ValidationConfig(nil))
		require.NoError(t, err)
		assert.True(t, ok)
		assert.JSONEq(t,
			`{"model":"gpt-4","stream":false,"messages":[{"role":"user","content":"[EMAIL_REDACTED]"}]}`,
			string(req.Body))
	})

	t.Run("update group requires id", func(t *testing.T) {
		req := core.NewRequest([]byte(`{"model":"gpt-4","messages":[]}`), nil)
		res := chain.Run(req, profile.ValidationConfig([]preprocessing.Group{"update"}))
		assert.Equal(t, preprocessing.Rejected, res.Outcome)
		assert.Equal(t, 3, res.Step)
		assert.True(t, req.Errors.Has(apierrors.CodeMissingProperty))
	})

	t.Run("invalid JSON stops at first step", func(t *testing.T) {
		req := core.NewRequest([]byte(`{"model":`), nil)
		res := chain.Run(req, profile.ValidationConfig(nil))
		assert.Equal(t, preprocessing.Rejected, res.Outcome)
		assert.Equal(t, 0, res.Step)
		assert.Equal(t, []apierrors.Code{apierrors.CodeInvalidJSON}, req.Errors.Codes())
	})

	t.Run("wrong target faults", func(t *testing.T) {
		res := chain.Run("raw string", profile.ValidationConfig(nil))
		assert.Equal(t, preprocessing.Faulted, res.Outcome)
		assert.ErrorIs(t, res.Cause, preprocessors.ErrUnsupportedTarget)
	})
}

func TestParseMappings(t *testing.T) {
	m, err := parseMappings([]string{"a.b = c.d", "x=y=z"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a.b": "c.d", "x": "y=z"}, m)

	_, err = parseMappings([]string{"=value"})
	assert.Error(t, err)
}
