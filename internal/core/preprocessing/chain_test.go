package preprocessing

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	calls []string
}

func (r *recorder) step(name string, ok bool) Preprocessor {
	return Func(func(target any, config Config) (bool, error) {
		r.calls = append(r.calls, name)
		return ok, nil
	})
}

func TestEmptyChainSucceeds(t *testing.T) {
	var chain Chain

	ok, err := chain.Process(struct{}{}, NewConfig())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = NewChain().Process(nil, nil)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestChainCallsPreprocessorsInOrder(t *testing.T) {
	rec := &recorder{}
	chain := NewChain()
	chain.Add(rec.step("one", true))
	chain.Add(rec.step("two", true))
	chain.Add(rec.step("three", true))

	ok, err := chain.Process(struct{}{}, NewConfig())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"one", "two", "three"}, rec.calls)
}

func TestChainStopsAtFirstRejection(t *testing.T) {
	rec := &recorder{}
	chain := NewChain(
		rec.step("one", true),
		rec.step("two", false),
		rec.step("three", true),
	)

	ok, err := chain.Process(struct{}{}, NewConfig())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []string{"one", "two"}, rec.calls)
}

func TestChainRejectionAtEveryPosition(t *testing.T) {
	const size = 5
	for k := 0; k < size; k++ {
		t.Run(fmt.Sprintf("reject at %d", k), func(t *testing.T) {
			rec := &recorder{}
			chain := NewChain()
			for i := 0; i < size; i++ {
				chain.Add(rec.step(fmt.Sprint(i), i != k))
			}

			res := chain.Run(struct{}{}, NewConfig())
			assert.Equal(t, Rejected, res.Outcome)
			assert.Equal(t, k, res.Step)
			assert.NoError(t, res.Cause)

			want := make([]string, 0, k+1)
			for i := 0; i <= k; i++ {
				want = append(want, fmt.Sprint(i))
			}
			assert.Equal(t, want, rec.calls)
		})
	}
}

func TestChainPropagatesErrorsUnchanged(t *testing.T) {
	rec := &recorder{}
	fault := errors.New("illegal state")
	chain := NewChain(
		rec.step("one", true),
		Func(func(any, Config) (bool, error) { return true, fault }),
		rec.step("three", true),
	)

	ok, err := chain.Process(struct{}{}, NewConfig())
	assert.False(t, ok)
	assert.Same(t, fault, err)
	assert.Equal(t, []string{"one"}, rec.calls)

	res := chain.Run(struct{}{}, NewConfig())
	assert.Equal(t, Faulted, res.Outcome)
	assert.Equal(t, 1, res.Step)
	assert.Same(t, fault, res.Cause)
}

type stateError struct{ msg string }

func (e *stateError) Error() string { return e.msg }

func TestChainKeepsErrorType(t *testing.T) {
	fault := &stateError{msg: "broken"}
	chain := NewChain(Func(func(any, Config) (bool, error) { return false, fault }))

	_, err := chain.Process(nil, NewConfig())

	var target *stateError
	require.ErrorAs(t, err, &target)
	assert.Same(t, fault, target)
}

func TestChainDoesNotRecoverPanics(t *testing.T) {
	rec := &recorder{}
	chain := NewChain(
		Func(func(any, Config) (bool, error) { panic("boom") }),
		rec.step("after", true),
	)

	assert.PanicsWithValue(t, "boom", func() {
		_, _ = chain.Process(nil, NewConfig())
	})
	assert.Empty(t, rec.calls)
}

func TestChainIsReusable(t *testing.T) {
	rec := &recorder{}
	chain := NewChain(rec.step("a", true), rec.step("b", true), rec.step("c", true))

	for i := 0; i < 2; i++ {
		rec.calls = nil
		ok, err := chain.Process(struct{}{}, NewConfig())
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []string{"a", "b", "c"}, rec.calls)
	}
}

func TestChainAllowsDuplicates(t *testing.T) {
	rec := &recorder{}
	p := rec.step("dup", true)
	chain := NewChain(p, p)
	chain.Add(p)

	ok, err := chain.Process(nil, NewConfig())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 3, chain.Len())
	assert.Equal(t, []string{"dup", "dup", "dup"}, rec.calls)
}

func TestChainPassesTargetAndConfigThrough(t *testing.T) {
	type doc struct{ value string }
	target := &doc{}
	cfg := NewConfig("create")

	chain := NewChain(
		Func(func(tg any, c Config) (bool, error) {
			assert.Same(t, target, tg)
			assert.Same(t, cfg, c)
			tg.(*doc).value = "mutated"
			return true, nil
		}),
		Func(func(tg any, c Config) (bool, error) {
			return tg.(*doc).value == "mutated", nil
		}),
	)

	ok, err := chain.Process(target, cfg)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPreprocessorsReturnsCopy(t *testing.T) {
	rec := &recorder{}
	chain := NewChain(rec.step("one", true))

	members := chain.Preprocessors()
	members[0] = rec.step("replaced", true)

	_, _ = chain.Process(nil, nil)
	assert.Equal(t, []string{"one"}, rec.calls)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "succeeded", Succeeded.String())
	assert.Equal(t, "rejected", Rejected.String())
	assert.Equal(t, "faulted", Faulted.String())
	assert.Equal(t, "unknown", Outcome(42).String())
	assert.True(t, NewChain().Run(nil, nil).OK())
}
