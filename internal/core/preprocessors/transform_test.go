package preprocessors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valgate/internal/core"
)

func TestTrimStrings(t *testing.T) {
	step := NewTrimStrings("name", "user.email", "count", "missing")
	req := core.NewRequest([]byte(`{"name":"  Alice ","user":{"email":"a@b.c"},"count":3}`), nil)

	ok, err := step.Process(req, nil)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"name":"Alice","user":{"email":"a@b.c"},"count":3}`, string(req.Body))
}

func TestFieldMap(t *testing.T) {
	step := NewFieldMap(map[string]string{
		"inputs.query":  "messages.0.content",
		"inputs.temp":   "temperature",
		"inputs.stream": "stream",
		"inputs.meta":   "metadata",
		"inputs.none":   "missing",
	})
	req := core.NewRequest([]byte(`{
		"messages":[{"role":"user","content":"hi"}],
		"temperature":0.5,
		"stream":true,
		"metadata":{"k":"v"}
	}`), nil)

	ok, err := step.Process(req, nil)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{
		"messages":[{"role":"user","content":"hi"}],
		"temperature":0.5,
		"stream":true,
		"metadata":{"k":"v"},
		"inputs":{"query":"hi","temp":0.5,"stream":true,"meta":{"k":"v"}}
	}`, string(req.Body))
}

func TestDefaults(t *testing.T) {
	step, err := NewDefaults(map[string]string{
		"stream":      "false",
		"temperature": "1",
		"options":     `{"n":1}`,
	})
	require.NoError(t, err)

	req := core.NewRequest([]byte(`{"temperature":0.2}`), nil)
	ok, err := step.Process(req, nil)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"temperature":0.2,"stream":false,"options":{"n":1}}`, string(req.Body))
}

func TestNewDefaultsRejectsInvalidJSON(t *testing.T) {
	_, err := NewDefaults(map[string]string{"name": "bare words"})
	assert.Error(t, err)
}
