package notify

import (
	"bytes"
	"fmt"
	"text/template"
)

// renderText executes tmpl with strict missing-key semantics.
func renderText(name, tmpl string, data any) (string, error) {
	if tmpl == "" {
		return "", fmt.Errorf("notify: template text required")
	}
	t, err := template.New(name).Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("notify: parse %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("notify: execute %s: %w", name, err)
	}
	return buf.String(), nil
}
