package invoice

import (
	"fmt"
	"html/template"
	"io"

	"invoicer/web"
)

var htmlTemplate = template.Must(template.ParseFS(web.TemplatesFS, "templates/invoice.html"))

// RenderHTML writes doc as a standalone printable page.
func RenderHTML(w io.Writer, doc Document) error {
	if err := htmlTemplate.Execute(w, doc); err != nil {
		return fmt.Errorf("render invoice html: %w", err)
	}
	return nil
}
