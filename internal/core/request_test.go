package core

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"valgate/internal/core/apierrors"
)

func TestNewRequest(t *testing.T) {
	observed, logs := observer.New(zap.InfoLevel)
	req := NewRequest([]byte(`{}`), zap.New(observed))

	_, err := uuid.Parse(req.ID)
	require.NoError(t, err)
	assert.False(t, req.StartTime.IsZero())
	assert.True(t, req.Errors.Empty())

	req.Log.Info("hello")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, req.ID, logs.All()[0].ContextMap()["request_id"])
}

func TestNewRequestNilLogger(t *testing.T) {
	req := NewRequest(nil, nil)
	require.NotNil(t, req.Log)
	req.Log.Info("discarded")
}

func TestReject(t *testing.T) {
	req := NewRequest(nil, nil)
	ok := req.Reject(apierrors.New(apierrors.CodeInvalidJSON, "", "bad"))
	assert.False(t, ok)
	assert.True(t, req.Errors.Has(apierrors.CodeInvalidJSON))
}

func TestMetadata(t *testing.T) {
	req := NewRequest(nil, nil)
	req.SetMetadata("profile", "chat")

	v, ok := req.GetMetadata("profile")
	require.True(t, ok)
	assert.Equal(t, "chat", v)

	all := req.Metadata()
	all["profile"] = "changed"
	v, _ = req.GetMetadata("profile")
	assert.Equal(t, "chat", v)

	_, ok = req.GetMetadata("missing")
	assert.False(t, ok)
}
