// Package preprocessors contains the preprocessing steps that operate on *core.Request.
package preprocessors

import (
	"errors"
	"fmt"
	"strings"

	"valgate/internal/core"
	"valgate/internal/core/preprocessing"
)

// ErrUnsupportedTarget is returned when a step receives anything other than a *core.Request.
var ErrUnsupportedTarget = errors.New("unsupported preprocessing target")

// Step is a preprocessor with a name used in logs and configuration.
type Step interface {
	preprocessing.Preprocessor
	Name() string
}

func requestOf(step string, target any) (*core.Request, error) {
	req, ok := target.(*core.Request)
	if !ok || req == nil {
		return nil, fmt.Errorf("%s: %w: %T", step, ErrUnsupportedTarget, target)
	}
	return req, nil
}

// pointer turns a gjson path such as "user.email" into "/user/email"
func pointer(path string) string {
	return "/" + strings.ReplaceAll(path, ".", "/")
}

func groupsOf(names []string) []preprocessing.Group {
	groups := make([]preprocessing.Group, 0, len(names))
	for _, n := range names {
		groups = append(groups, preprocessing.Group(n))
	}
	return groups
}
