package ai

import (
	"fmt"
	"strings"
)

// Template is a fixed prompt with named slots. Slots are substituted as
// {name}; a declared slot left unresolved is a caller contract violation and
// fails the render.
type Template struct {
	ID     string
	System string
	Body   string
	Slots  []string
}

// Render substitutes every declared slot into the body.
func (t *Template) Render(slots map[string]string) (string, error) {
	rendered := t.Body
	for _, name := range t.Slots {
		value, ok := slots[name]
		if !ok {
			return "", fmt.Errorf("template %s: unresolved slot %q", t.ID, name)
		}
		rendered = strings.ReplaceAll(rendered, "{"+name+"}", value)
	}
	return rendered, nil
}
