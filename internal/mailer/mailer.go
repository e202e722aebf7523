package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

// Mailer sends templated HTML email. Failures propagate to the caller;
// the tenant approval batch treats them as fatal.
type Mailer interface {
	Send(subject, to, templateName string, data map[string]interface{}) error
}

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Render produces the HTML body for the named template.
func Render(templateName string, data map[string]interface{}) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, templateName, data); err != nil {
		return "", fmt.Errorf("failed to render template %s: %w", templateName, err)
	}
	return buf.String(), nil
}
