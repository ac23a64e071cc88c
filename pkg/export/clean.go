// File: pkg/export/clean.go
package export

import (
	"regexp"
	"strings"
	"unicode"
)

// commentLanguages are the extensions whose comments are stripped.
var commentLanguages = map[string]bool{
	".ts": true, ".js": true, ".rs": true, ".py": true, ".java": true,
	".c": true, ".cpp": true, ".vue": true, ".cs": true, ".go": true,
}

// Precompiled regular expressions used in content cleaning.
var (
	// CommentOrStringPattern matches, leftmost first: a line comment, a block
	// comment, a single-quoted literal, a double-quoted literal. Literals are
	// matched only so that comment markers inside them are skipped.
	//
	// This is lexical. Raw strings, template literals, regex literals and
	// '#' comments are not recognized and may be mangled or left in place.
	CommentOrStringPattern = regexp.MustCompile(`(?ms)//.*?$|/\*.*?\*/|'(?:\\.|[^\\'])*'|"(?:\\.|[^\\"])*"`)

	lineBreakPattern = regexp.MustCompile(`\r\n?`)
)

// Clean applies the enabled transforms in fixed order: comments, blank
// lines, trailing whitespace. ext selects comment stripping.
func Clean(content, ext string, cfg Config) string {
	if cfg.StripComments && commentLanguages[ext] {
		content = stripComments(content)
	}
	if cfg.StripBlankLines {
		content = filterLines(content, func(line string) (string, bool) {
			return line, strings.TrimSpace(line) != ""
		})
	}
	if cfg.TrimTrailing {
		content = filterLines(content, func(line string) (string, bool) {
			return strings.TrimRightFunc(line, unicode.IsSpace), true
		})
	}
	return content
}

func stripComments(content string) string {
	return CommentOrStringPattern.ReplaceAllStringFunc(content, func(m string) string {
		if strings.HasPrefix(m, "/") {
			return " "
		}
		return m
	})
}

// filterLines splits on '\n', maps each line, and joins the kept lines.
// The trailing newline of the input is not preserved.
func filterLines(content string, fn func(string) (string, bool)) string {
	if content == "" {
		return ""
	}
	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	out := lines[:0]
	for _, line := range lines {
		if l, keep := fn(line); keep {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}

// normalizeText converts CRLF and CR line breaks to LF and drops bytes that
// are not valid UTF-8.
func normalizeText(data []byte) string {
	s := strings.ToValidUTF8(string(data), "")
	return lineBreakPattern.ReplaceAllString(s, "\n")
}
