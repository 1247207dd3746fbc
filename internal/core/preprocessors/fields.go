package preprocessors

import (
	"fmt"
	"sort"

	"github.com/tidwall/gjson"

	"valgate/internal/core/apierrors"
	"valgate/internal/core/preprocessing"
)

// RequiredFields rejects requests missing any of Paths. A JSON null counts as missing.
//
// When Groups is set the check only applies if one of them is active, which lets a
// profile require "id" for updates but not for creations.
type RequiredFields struct {
	Paths  []string
	Groups []preprocessing.Group
}

func NewRequiredFields(paths []string, groups ...string) *RequiredFields {
	return &RequiredFields{Paths: paths, Groups: groupsOf(groups)}
}

func (r *RequiredFields) Name() string {
	return "required-fields"
}

func (r *RequiredFields) Process(target any, config preprocessing.Config) (bool, error) {
	req, err := requestOf(r.Name(), target)
	if err != nil {
		return false, err
	}
	if len(r.Groups) > 0 && !preprocessing.HasAnyGroup(config, r.Groups...) {
		return true, nil
	}

	ok := true
	for _, path := range r.Paths {
		v := gjson.GetBytes(req.Body, path)
		if !v.Exists() || v.Type == gjson.Null {
			ok = req.Reject(apierrors.New(apierrors.CodeMissingProperty, pointer(path), "%s is required", path))
		}
	}
	return ok, nil
}

// JSON type names accepted by FieldTypes
const (
	TypeString = "string"
	TypeNumber = "number"
	TypeBool   = "bool"
	TypeObject = "object"
	TypeArray  = "array"
)

// FieldTypes rejects requests whose fields have an unexpected JSON type.
// Absent fields are ignored; combine with RequiredFields to demand them.
type FieldTypes struct {
	types map[string]string
	paths []string
}

func NewFieldTypes(types map[string]string) (*FieldTypes, error) {
	f := &FieldTypes{types: make(map[string]string, len(types))}
	for path, typ := range types {
		switch typ {
		case TypeString, TypeNumber, TypeBool, TypeObject, TypeArray:
		default:
			return nil, fmt.Errorf("unknown JSON type %q for %s", typ, path)
		}
		f.types[path] = typ
		f.paths = append(f.paths, path)
	}
	sort.Strings(f.paths)
	return f, nil
}

func (f *FieldTypes) Name() string {
	return "field-types"
}

func (f *FieldTypes) Process(target any, _ preprocessing.Config) (bool, error) {
	req, err := requestOf(f.Name(), target)
	if err != nil {
		return false, err
	}

	ok := true
	for _, path := range f.paths {
		v := gjson.GetBytes(req.Body, path)
		if !v.Exists() {
			continue
		}
		want := f.types[path]
		if !hasType(v, want) {
			ok = req.Reject(apierrors.New(apierrors.CodeWrongType, pointer(path), "%s must be of type %s", path, want))
		}
	}
	return ok, nil
}

func hasType(v gjson.Result, typ string) bool {
	switch typ {
	case TypeString:
		return v.Type == gjson.String
	case TypeNumber:
		return v.Type == gjson.Number
	case TypeBool:
		return v.Type == gjson.True || v.Type == gjson.False
	case TypeObject:
		return v.IsObject()
	case TypeArray:
		return v.IsArray()
	}
	return false
}
