// Package template implements prompt template parsing and rendering.
//
// A prompt body may contain placeholders of the form
// {{name|default|description}} where the default and description segments
// are optional. Extract parses the declared variables out of a template and
// Render substitutes user-supplied values back in. Both are pure functions
// over their inputs; nothing here touches storage or the network.
package template

import (
	"regexp"
	"strings"
)

// variablePattern matches a placeholder block: two open braces, one or more
// non-"}" characters, two close braces. An unterminated "{{" never matches
// and passes through rendering as literal text.
var variablePattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// Variable is one parsed placeholder declaration.
type Variable struct {
	Name        string `json:"name"`
	Default     string `json:"default,omitempty"`
	Description string `json:"description,omitempty"`
}

// Extract returns the variables declared in template, in order of first
// appearance. A name appearing more than once is returned once, with the
// default and description from its earliest occurrence.
//
// Segments are trimmed, so "{{ name | default }}" and "{{name|default}}"
// declare the same variable. A declaration whose name trims to the empty
// string (e.g. "{{   }}") is kept as a variable with an empty name rather
// than rejected; rendering treats it like any other name.
func Extract(template string) []Variable {
	matches := variablePattern.FindAllStringSubmatch(template, -1)
	seen := make(map[string]bool)
	var vars []Variable

	for _, match := range matches {
		v := parseDeclaration(match[1])
		if seen[v.Name] {
			continue
		}
		seen[v.Name] = true
		vars = append(vars, v)
	}

	return vars
}

// parseDeclaration splits the inner text of a placeholder on "|" and trims
// each segment. Missing segments default to "".
func parseDeclaration(inner string) Variable {
	segments := strings.Split(inner, "|")
	v := Variable{Name: strings.TrimSpace(segments[0])}
	if len(segments) > 1 {
		v.Default = strings.TrimSpace(segments[1])
	}
	if len(segments) > 2 {
		v.Description = strings.TrimSpace(segments[2])
	}
	return v
}

// Render substitutes values into template and returns the materialized text.
//
// For each variable, every placeholder block declaring that name is replaced
// with the first of: the caller-supplied value (if non-empty), the declared
// default, or the literal "{{name}}" so an unfilled variable stays visible.
// Replacement values are never re-scanned, so rendering twice with the same
// inputs yields identical output.
func Render(template string, vars []Variable, values map[string]string) string {
	if len(vars) == 0 {
		return template
	}

	resolved := make(map[string]string, len(vars))
	for _, v := range vars {
		resolved[v.Name] = resolve(v, values)
	}

	return variablePattern.ReplaceAllStringFunc(template, func(match string) string {
		inner := match[2 : len(match)-2]
		name := strings.TrimSpace(strings.Split(inner, "|")[0])
		if value, ok := resolved[name]; ok {
			return value
		}
		return match
	})
}

// resolve picks the replacement text for one variable.
func resolve(v Variable, values map[string]string) string {
	if value, ok := values[v.Name]; ok && value != "" {
		return value
	}
	if v.Default != "" {
		return v.Default
	}
	return "{{" + v.Name + "}}"
}

// Reset returns the starting value map for a set of variables: only
// variables with a non-empty default get an entry, so variables without a
// default render as open placeholders again.
func Reset(vars []Variable) map[string]string {
	values := make(map[string]string)
	for _, v := range vars {
		if v.Default != "" {
			values[v.Name] = v.Default
		}
	}
	return values
}
