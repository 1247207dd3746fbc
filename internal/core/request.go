package core

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"valgate/internal/core/apierrors"
)

// Request is the object run through a preprocessing chain.
// Preprocessors may rewrite Body in place and record errors before rejecting.
type Request struct {
	ID        string
	Body      []byte
	Errors    apierrors.Errors
	StartTime time.Time
	Log       *zap.Logger

	mu       sync.RWMutex
	metadata map[string]interface{}
}

// NewRequest creates a request with a fresh ID. A nil logger is replaced by a no-op one.
func NewRequest(body []byte, logger *zap.Logger) *Request {
	if logger == nil {
		logger = zap.NewNop()
	}
	id := uuid.NewString()
	return &Request{
		ID:        id,
		Body:      body,
		StartTime: time.Now(),
		Log:       logger.With(zap.String("request_id", id)),
		metadata:  make(map[string]interface{}),
	}
}

// Reject records e and returns false, so a preprocessor can write `return req.Reject(e), nil`.
func (r *Request) Reject(e apierrors.Error) bool {
	r.Errors.Add(e)
	return false
}

// SetMetadata sets a metadata value (thread-safe)
func (r *Request) SetMetadata(key string, value interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.metadata[key] = value
}

// GetMetadata gets a metadata value (thread-safe)
func (r *Request) GetMetadata(key string) (interface{}, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.metadata[key]
	return v, ok
}

// Metadata returns a copy of all metadata (thread-safe)
func (r *Request) Metadata() map[string]interface{} {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cp := make(map[string]interface{}, len(r.metadata))
	for k, v := range r.metadata {
		cp[k] = v
	}
	return cp
}
