package application

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRulesClassify(t *testing.T) {
	rules := DefaultRules()

	tests := []struct {
		name         string
		paths        []string
		wantCategory string
		wantPrefix   string
	}{
		{
			name:         "lint file",
			paths:        []string{"lint_fix.py"},
			wantCategory: "linting",
			wantPrefix:   "fix(linting):",
		},
		{
			name:         "format file",
			paths:        []string{"scripts/format_all.sh"},
			wantCategory: "linting",
			wantPrefix:   "fix(linting):",
		},
		{
			name:         "test file",
			paths:        []string{"internal/app/service_test.go"},
			wantCategory: "testing",
			wantPrefix:   "feat(testing):",
		},
		{
			name:         "readme",
			paths:        []string{"README.md"},
			wantCategory: "docs",
			wantPrefix:   "docs:",
		},
		{
			name:         "docs dir",
			paths:        []string{"docs/guide.md"},
			wantCategory: "docs",
			wantPrefix:   "docs:",
		},
		{
			name:         "generic fallback",
			paths:        []string{"main.go"},
			wantCategory: "generic",
			wantPrefix:   "fix:",
		},
		{
			name:         "lint beats test when both present",
			paths:        []string{"server_test.go", "lint_config.yaml"},
			wantCategory: "linting",
			wantPrefix:   "fix(linting):",
		},
		{
			name:         "case insensitive",
			paths:        []string{"LINT_REPORT.txt"},
			wantCategory: "linting",
			wantPrefix:   "fix(linting):",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, ok := rules.Classify(tt.paths)
			require.True(t, ok)
			assert.Equal(t, tt.wantCategory, rule.Category)
			assert.True(t, strings.HasPrefix(rule.CommitMessage, tt.wantPrefix),
				"commit message %q should start with %q", rule.CommitMessage, tt.wantPrefix)
		})
	}
}

func TestClassifyEmptyPathsMatchesNothing(t *testing.T) {
	_, ok := DefaultRules().Classify(nil)
	assert.False(t, ok)
}

func TestLoadRules(t *testing.T) {
	content := `
- category: hotfix
  keywords: [hotfix, urgent]
  branch_prefix: hotfix
  commit_message: "fix: urgent hotfix"
  pr_title: "Urgent hotfix"
- category: generic
  branch_prefix: chore
  commit_message: "chore: misc changes"
  pr_title: "Misc changes"
`
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	rules, err := LoadRules(path)
	require.NoError(t, err)
	require.Len(t, rules, 2)

	rule, ok := rules.Classify([]string{"urgent_patch.go"})
	require.True(t, ok)
	assert.Equal(t, "hotfix", rule.Category)

	rule, ok = rules.Classify([]string{"anything.go"})
	require.True(t, ok)
	assert.Equal(t, "generic", rule.Category)
}

func TestLoadRulesRejectsIncomplete(t *testing.T) {
	content := `
- category: broken
  keywords: [x]
`
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := LoadRules(path)
	assert.Error(t, err)
}

func TestLoadRulesMissingFile(t *testing.T) {
	_, err := LoadRules(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestRenderPRBody(t *testing.T) {
	rule := Rule{Category: "docs"}
	body := renderPRBody(rule, []string{"README.md", "docs/guide.md"})

	assert.Contains(t, body, "docs")
	assert.Contains(t, body, "- README.md")
	assert.Contains(t, body, "- docs/guide.md")
}
