package preprocessors

import (
	"github.com/bytedance/sonic"

	"valgate/internal/core/apierrors"
	"valgate/internal/core/preprocessing"
)

// JSONSyntax rejects request bodies that are not well-formed JSON.
type JSONSyntax struct{}

func NewJSONSyntax() *JSONSyntax {
	return &JSONSyntax{}
}

func (j *JSONSyntax) Name() string {
	return "json-syntax"
}

func (j *JSONSyntax) Process(target any, _ preprocessing.Config) (bool, error) {
	req, err := requestOf(j.Name(), target)
	if err != nil {
		return false, err
	}
	if !sonic.Valid(req.Body) {
		return req.Reject(apierrors.New(apierrors.CodeInvalidJSON, "", "request body is not valid JSON")), nil
	}
	return true, nil
}

// MaxSize rejects request bodies larger than Limit bytes.
type MaxSize struct {
	Limit int
}

func NewMaxSize(limit int) *MaxSize {
	return &MaxSize{Limit: limit}
}

func (m *MaxSize) Name() string {
	return "max-size"
}

func (m *MaxSize) Process(target any, _ preprocessing.Config) (bool, error) {
	req, err := requestOf(m.Name(), target)
	if err != nil {
		return false, err
	}
	if len(req.Body) > m.Limit {
		return req.Reject(apierrors.New(apierrors.CodeTooLarge, "",
			"request body is %d bytes, limit is %d", len(req.Body), m.Limit)), nil
	}
	return true, nil
}
