package linters

import (
	"strings"
	"testing"
)

func TestStripTemplating(t *testing.T) {
	tt := []struct {
		name     string
		filename string
		content  string
		expected string
	}{
		{
			name:     "plain file unchanged",
			filename: "app.js",
			content:  "var a = <%= raise %>;\n",
			expected: "var a = <%= raise %>;\n",
		},
		{
			name:     "tag blanked in place",
			filename: "app.js.erb",
			content:  "var a = <%= value %>;\nvar b = 2;\n",
			expected: "var a = " + strings.Repeat(" ", 12) + ";\nvar b = 2;\n",
		},
		{
			name:     "multiple tags on one line",
			filename: "app.js.erb",
			content:  "f(<% x %>, <% y %>);\n",
			expected: "f(" + strings.Repeat(" ", 7) + ", " + strings.Repeat(" ", 7) + ");\n",
		},
		{
			name:     "multiline tag preserves newlines",
			filename: "app.js.erb",
			content:  "before\n<% if cond\n   then %>\nafter\n",
			expected: "before\n" + strings.Repeat(" ", 10) + "\n" + strings.Repeat(" ", 10) + "\nafter\n",
		},
		{
			name:     "unterminated tag blanks to end",
			filename: "app.js.erb",
			content:  "ok();\n<% broken\nstill inside\n",
			expected: "ok();\n" + strings.Repeat(" ", 9) + "\n" + strings.Repeat(" ", 12) + "\n",
		},
		{
			name:     "no tags",
			filename: "app.js.erb",
			content:  "var a = 1;\n",
			expected: "var a = 1;\n",
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			result := StripTemplating(tc.content, tc.filename)
			if result != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, result)
			}
			if strings.Count(result, "\n") != strings.Count(tc.content, "\n") {
				t.Error("Expected line count to be preserved")
			}
			if len(result) != len(tc.content) {
				t.Error("Expected content length to be preserved")
			}
		})
	}
}

func TestIsTemplated(t *testing.T) {
	if !IsTemplated("app.js.erb") {
		t.Error("Expected .js.erb to be templated")
	}
	if IsTemplated("app.js") {
		t.Error("Expected .js to not be templated")
	}
}
