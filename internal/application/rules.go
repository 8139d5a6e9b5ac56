package application

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/valyala/fasttemplate"
)

// Rule maps filename keywords to a change category and the branch name,
// commit message, and PR text proposed for it. A rule with no keywords
// matches everything, which makes it the fallback; rules are evaluated in
// order and the first match wins.
type Rule struct {
	Category      string   `yaml:"category"`
	Keywords      []string `yaml:"keywords"`
	BranchPrefix  string   `yaml:"branch_prefix"`
	CommitMessage string   `yaml:"commit_message"`
	PRTitle       string   `yaml:"pr_title"`
}

// Matches reports whether any of the changed paths contains one of the
// rule's keywords, case-insensitively. A keyword-less rule matches any
// non-empty path set.
func (r Rule) Matches(paths []string) bool {
	if len(paths) == 0 {
		return false
	}
	if len(r.Keywords) == 0 {
		return true
	}

	for _, path := range paths {
		lower := strings.ToLower(path)
		for _, kw := range r.Keywords {
			if strings.Contains(lower, kw) {
				return true
			}
		}
	}

	return false
}

// RuleSet is an ordered classification policy for local changes.
type RuleSet []Rule

// Classify returns the first rule matching the given paths, or false when
// none matches.
func (rs RuleSet) Classify(paths []string) (Rule, bool) {
	for _, r := range rs {
		if r.Matches(paths) {
			return r, true
		}
	}
	return Rule{}, false
}

// DefaultRules is the built-in classification policy. The keyword-less
// generic rule must stay last.
func DefaultRules() RuleSet {
	return RuleSet{
		{
			Category:      "linting",
			Keywords:      []string{"lint", "format"},
			BranchPrefix:  "fix-linting",
			CommitMessage: "fix(linting): auto-fix linting issues",
			PRTitle:       "Auto-fix linting issues",
		},
		{
			Category:      "testing",
			Keywords:      []string{"test"},
			BranchPrefix:  "feat-testing",
			CommitMessage: "feat(testing): add test improvements",
			PRTitle:       "Add test improvements",
		},
		{
			Category:      "docs",
			Keywords:      []string{"doc", "readme"},
			BranchPrefix:  "docs-update",
			CommitMessage: "docs: update documentation",
			PRTitle:       "Update documentation",
		},
		{
			Category:      "generic",
			BranchPrefix:  "fix-changes",
			CommitMessage: "fix: resolve issues",
			PRTitle:       "Fix issues",
		},
	}
}

// LoadRules reads an ordered rule set from a YAML file. The file holds a
// plain list of rules; the last rule should carry no keywords so every
// change set classifies.
func LoadRules(path string) (RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file %s: %w", path, err)
	}

	var rules RuleSet
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parsing rules file %s: %w", path, err)
	}

	if len(rules) == 0 {
		return nil, fmt.Errorf("rules file %s contains no rules", path)
	}

	for i, r := range rules {
		if r.Category == "" || r.BranchPrefix == "" || r.CommitMessage == "" || r.PRTitle == "" {
			return nil, fmt.Errorf("rules file %s: rule %d is missing a required field", path, i)
		}
	}

	return rules, nil
}

// prBodyTemplate renders the PR body proposed for a change set.
const prBodyTemplate = `## Summary

Automated change proposal ({{category}}).

Changed files:
{{files}}
`

// renderPRBody fills the PR body template for the given rule and paths.
func renderPRBody(rule Rule, paths []string) string {
	var files strings.Builder
	for _, p := range paths {
		files.WriteString("- ")
		files.WriteString(p)
		files.WriteString("\n")
	}

	tpl := fasttemplate.New(prBodyTemplate, "{{", "}}")

	return tpl.ExecuteString(map[string]any{
		"category": rule.Category,
		"files":    strings.TrimRight(files.String(), "\n"),
	})
}
