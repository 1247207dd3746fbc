package security

import (
	"fmt"
	"regexp"
)

// Rule names of the built-in rules
const (
	RulePrivateKey = "Private Key"
	RuleAWSKey     = "AWS Access Key"
	RuleOpenAIKey  = "OpenAI API Key"
	RuleGitHub     = "GitHub Token"
	RuleGoogleKey  = "Google API Key"
	RuleEmail      = "Email"
	RulePhone      = "Mobile Phone"
)

// Rule is a single detection pattern and the text that replaces its matches.
type Rule struct {
	Name        string
	Pattern     *regexp.Regexp
	Replacement string
}

// Scanner detects and redacts credentials and personal data in text.
// Rules run in order, so the more specific patterns come first.
type Scanner struct {
	rules []Rule
}

// builtinRules 按优先级排序：先匹配更具体的模式
var builtinRules = []Rule{
	{RulePrivateKey, regexp.MustCompile(`-----BEGIN [A-Z ]+ PRIVATE KEY-----`), "[PRIVATE_KEY_REDACTED]"},
	{RuleAWSKey, regexp.MustCompile(`\bAKIA[0-9A-Z]{16}\b`), "[AWS_AK_REDACTED]"},
	{RuleOpenAIKey, regexp.MustCompile(`\bsk-(?:proj-)?[a-zA-Z0-9]{20,}\b`), "[OPENAI_KEY_REDACTED]"},
	{RuleGitHub, regexp.MustCompile(`\b(ghp|gho|ghu|ghs|ghr)_[a-zA-Z0-9]{36}\b`), "[GITHUB_TOKEN_REDACTED]"},
	{RuleGoogleKey, regexp.MustCompile(`\bAIza[0-9A-Za-z-_]{35}\b`), "[GOOGLE_KEY_REDACTED]"},
	// Email must run before phone
	{RuleEmail, regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`), "[EMAIL_REDACTED]"},
	// 中国手机号，word boundary 避免匹配密钥中的数字
	{RulePhone, regexp.MustCompile(`\b(?:\+?86)?\s*(?:1[3-9]\d{9})\b`), "[PHONE_REDACTED]"},
}

// NewScanner creates a scanner with all built-in rules
func NewScanner() *Scanner {
	rules := make([]Rule, len(builtinRules))
	copy(rules, builtinRules)
	return &Scanner{rules: rules}
}

// NewScannerWith creates a scanner restricted to the named built-in rules.
// An empty list selects every rule.
func NewScannerWith(names ...string) (*Scanner, error) {
	if len(names) == 0 {
		return NewScanner(), nil
	}
	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[name] = true
	}

	s := &Scanner{}
	for _, rule := range builtinRules {
		if wanted[rule.Name] {
			s.rules = append(s.rules, rule)
			delete(wanted, rule.Name)
		}
	}
	for name := range wanted {
		return nil, fmt.Errorf("unknown scanner rule %q", name)
	}
	return s, nil
}

// Sanitize replaces every match of every rule, applying rules in order
func (s *Scanner) Sanitize(input string) string {
	result := input
	for _, rule := range s.rules {
		result = rule.Pattern.ReplaceAllString(result, rule.Replacement)
	}
	return result
}

// Detect returns the names of the rules matching input, in rule order
func (s *Scanner) Detect(input string) []string {
	var names []string
	for _, rule := range s.rules {
		if rule.Pattern.MatchString(input) {
			names = append(names, rule.Name)
		}
	}
	return names
}

// AddRule appends a custom rule
func (s *Scanner) AddRule(name string, pattern string, replacement string) error {
	compiled, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("invalid pattern for rule %s: %w", name, err)
	}
	s.rules = append(s.rules, Rule{
		Name:        name,
		Pattern:     compiled,
		Replacement: replacement,
	})
	return nil
}

// Rules returns a copy of the current rules
func (s *Scanner) Rules() []Rule {
	rulesCopy := make([]Rule, len(s.rules))
	copy(rulesCopy, s.rules)
	return rulesCopy
}
