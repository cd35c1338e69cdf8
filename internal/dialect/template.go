package dialect

import (
	"strings"
)

// Template is a DDL statement with {name} placeholders. Placeholders without
// a value are left in place so a missing binding is visible in the output.
type Template string

// Vars binds template placeholders.
type Vars map[string]string

// Render substitutes vars into the template.
func (t Template) Render(vars Vars) string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(string(t))
}

// Uses reports whether the template references the placeholder.
func (t Template) Uses(name string) bool {
	return strings.Contains(string(t), "{"+name+"}")
}
