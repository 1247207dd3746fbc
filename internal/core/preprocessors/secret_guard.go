package preprocessors

import (
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/bytedance/sonic/ast"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"go.uber.org/zap"

	"valgate/internal/core/apierrors"
	"valgate/internal/core/preprocessing"
	"valgate/internal/core/security"
)

// SecretGuard modes
const (
	ModeRedact = "redact"
	ModeReject = "reject"
)

// SecretGuard looks for credentials and personal data in chat style messages and in
// extra string fields.
//
// Message content may be a plain string or an array of {"type":"text","text":...} blocks.
// In redact mode matches are replaced in the body; in reject mode the request is rejected
// with one error per offending field.
type SecretGuard struct {
	scanner *security.Scanner
	mode    string
	paths   []string
}

// NewSecretGuard creates a guard. paths are extra gjson paths of string fields to scan.
func NewSecretGuard(scanner *security.Scanner, mode string, paths ...string) (*SecretGuard, error) {
	if scanner == nil {
		scanner = security.NewScanner()
	}
	switch mode {
	case "":
		mode = ModeRedact
	case ModeRedact, ModeReject:
	default:
		return nil, fmt.Errorf("unknown secret guard mode %q", mode)
	}
	return &SecretGuard{scanner: scanner, mode: mode, paths: paths}, nil
}

func (g *SecretGuard) Name() string {
	return "secret-guard"
}

func (g *SecretGuard) Process(target any, _ preprocessing.Config) (bool, error) {
	req, err := requestOf(g.Name(), target)
	if err != nil {
		return false, err
	}

	var found apierrors.Errors
	check := func(location, value string) string {
		if g.mode == ModeReject {
			if names := g.scanner.Detect(value); len(names) > 0 {
				found.Add(apierrors.New(apierrors.CodeSecretDetected, location,
					"sensitive data detected: %s", strings.Join(names, ", ")))
			}
			return value
		}
		return g.scanner.Sanitize(value)
	}

	body, redacted, err := g.scanMessages(req.Body, check)
	if err != nil {
		return false, fmt.Errorf("%s: %w", g.Name(), err)
	}

	for _, path := range g.paths {
		v := gjson.GetBytes(body, path)
		if v.Type != gjson.String {
			continue
		}
		newValue := check(pointer(path), v.Str)
		if newValue == v.Str {
			continue
		}
		body, err = sjson.SetBytes(body, path, newValue)
		if err != nil {
			return false, fmt.Errorf("%s: failed to set %s: %w", g.Name(), path, err)
		}
		redacted++
	}

	if !found.Empty() {
		for _, e := range found {
			req.Reject(e)
		}
		return false, nil
	}

	if redacted > 0 {
		req.Body = body
		req.Log.Info("Sensitive data redacted", zap.Int("fields", redacted))
	}
	return true, nil
}

// scanMessages applies check to every text of the "messages" array and returns the
// rewritten body with the number of changed fields. Bodies without messages, or that
// do not parse, are returned unchanged.
func (g *SecretGuard) scanMessages(body []byte, check func(location, value string) string) ([]byte, int, error) {
	root, err := sonic.Get(body)
	if err != nil {
		return body, 0, nil
	}
	// 懒加载节点的 Len() 只统计已解析的子节点
	if err := root.LoadAll(); err != nil {
		return body, 0, nil
	}

	messagesNode := root.Get("messages")
	if err := messagesNode.Check(); err != nil || messagesNode.Type() != ast.V_ARRAY {
		return body, 0, nil
	}

	length, err := messagesNode.Len()
	if err != nil {
		return body, 0, nil
	}

	changed := 0
	for i := 0; i < length; i++ {
		msgNode := messagesNode.Index(i)
		if err := msgNode.Check(); err != nil {
			continue
		}

		contentNode := msgNode.Get("content")
		if err := contentNode.Check(); err != nil {
			continue
		}

		switch contentNode.Type() {
		case ast.V_STRING:
			if changeString(msgNode, "content", fmt.Sprintf("/messages/%d/content", i), check) {
				changed++
			}
		case ast.V_ARRAY:
			blocks, err := contentNode.Len()
			if err != nil {
				continue
			}
			for j := 0; j < blocks; j++ {
				blockNode := contentNode.Index(j)
				if err := blockNode.Check(); err != nil {
					continue
				}
				blockType, err := blockNode.Get("type").String()
				if err != nil || blockType != "text" {
					continue
				}
				if changeString(blockNode, "text", fmt.Sprintf("/messages/%d/content/%d/text", i, j), check) {
					changed++
				}
			}
		}
	}

	if changed == 0 {
		return body, 0, nil
	}

	result, err := root.MarshalJSON()
	if err != nil {
		return body, 0, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return result, changed, nil
}

func changeString(parent *ast.Node, key, location string, check func(location, value string) string) bool {
	node := parent.Get(key)
	if err := node.Check(); err != nil || node.Type() != ast.V_STRING {
		return false
	}
	value, err := node.String()
	if err != nil {
		return false
	}
	newValue := check(location, value)
	if newValue == value {
		return false
	}
	if _, err := parent.Set(key, ast.NewString(newValue)); err != nil {
		return false
	}
	return true
}

