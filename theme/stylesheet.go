// Package theme resolves chart colors from CSS custom properties.
//
// Every provider in this package satisfies chart.ThemeProvider. [Stylesheet]
// reads the custom properties declared on the root element (":root" or
// "html" rulesets) of a CSS file, [FileProvider] keeps a stylesheet in sync
// with a file on disk, and [Static] serves a fixed map, mostly for tests.
package theme

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// maxVarDepth bounds var() substitution chains.
const maxVarDepth = 16

// Stylesheet holds the root-level custom properties of a parsed stylesheet.
//
// Only unconditional rulesets count; declarations nested in at-rules such as
// @media are ignored. When a property is declared more than once the last
// declaration wins, as in the cascade.
type Stylesheet struct {
	vars map[string]string
}

// ParseStylesheet parses CSS from r.
func ParseStylesheet(r io.Reader) (*Stylesheet, error) {
	p := css.NewParser(parse.NewInput(r), false)

	vars := make(map[string]string)
	inRoot := false
	atDepth := 0

	for {
		gt, _, data := p.Next()
		switch gt {
		case css.ErrorGrammar:
			if err := p.Err(); err != nil && !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("failed to parse stylesheet: %w", err)
			}
			return &Stylesheet{vars: vars}, nil
		case css.BeginAtRuleGrammar:
			atDepth++
		case css.EndAtRuleGrammar:
			if atDepth > 0 {
				atDepth--
			}
		case css.BeginRulesetGrammar:
			inRoot = atDepth == 0 && isRootSelector(p.Values())
		case css.EndRulesetGrammar:
			inRoot = false
		case css.CustomPropertyGrammar:
			if inRoot {
				vars[string(data)] = strings.TrimSpace(joinTokens(p.Values()))
			}
		}
	}
}

// ParseStylesheetString parses CSS from a string.
func ParseStylesheetString(s string) (*Stylesheet, error) {
	return ParseStylesheet(strings.NewReader(s))
}

// LoadStylesheet reads and parses the stylesheet at path.
func LoadStylesheet(path string) (*Stylesheet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read stylesheet: %w", err)
	}
	return ParseStylesheet(bytes.NewReader(data))
}

// LoadStylesheetFS reads and parses the stylesheet name from fsys.
func LoadStylesheetFS(fsys fs.FS, name string) (*Stylesheet, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read stylesheet: %w", err)
	}
	return ParseStylesheet(bytes.NewReader(data))
}

// Color returns the trimmed value of the custom property name, with var()
// references substituted. Returns "" if the property is not declared.
func (s *Stylesheet) Color(name string) string {
	if s == nil {
		return ""
	}
	return s.resolve(name, 0)
}

// Properties returns a copy of all declared custom properties, unresolved.
func (s *Stylesheet) Properties() map[string]string {
	if s == nil {
		return nil
	}
	cp := make(map[string]string, len(s.vars))
	for k, v := range s.vars {
		cp[k] = v
	}
	return cp
}

func (s *Stylesheet) resolve(name string, depth int) string {
	value, ok := s.vars[name]
	if !ok || depth > maxVarDepth {
		return ""
	}
	return strings.TrimSpace(s.substitute(value, depth))
}

// substitute replaces var(--name[, fallback]) references in value.
func (s *Stylesheet) substitute(value string, depth int) string {
	var out strings.Builder
	for {
		start := strings.Index(value, "var(")
		if start == -1 {
			out.WriteString(value)
			return out.String()
		}
		end := matchingParen(value, start+len("var"))
		if end == -1 {
			out.WriteString(value)
			return out.String()
		}

		out.WriteString(value[:start])

		ref, fallback, hasFallback := strings.Cut(value[start+len("var("):end], ",")
		resolved := s.resolve(strings.TrimSpace(ref), depth+1)
		if resolved == "" && hasFallback {
			resolved = strings.TrimSpace(s.substitute(fallback, depth+1))
		}
		out.WriteString(resolved)

		value = value[end+1:]
	}
}

// matchingParen returns the index of the parenthesis closing the one at open.
func matchingParen(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func isRootSelector(tokens []css.Token) bool {
	for _, sel := range strings.Split(joinTokens(tokens), ",") {
		switch strings.ToLower(strings.TrimSpace(sel)) {
		case ":root", "html":
			return true
		}
	}
	return false
}

func joinTokens(tokens []css.Token) string {
	var b strings.Builder
	for _, t := range tokens {
		b.Write(t.Data)
	}
	return b.String()
}
