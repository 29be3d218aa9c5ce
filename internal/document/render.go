// Package document renders a StructuredEntry into a publication-ready
// Markdown document with a front matter header.
package document

import (
	"fmt"
	"strings"

	"github.com/kedbin/ai-devops-journal/internal/models"
)

// Render produces the front matter block and body for an entry. It is a pure
// function: identical input yields byte-identical output.
func Render(entry models.StructuredEntry) models.RenderedDocument {
	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "title: %q\n", entry.Title)
	fmt.Fprintf(&b, "date: %q\n", entry.Date)
	fmt.Fprintf(&b, "tags: [%s]\n", renderTags(entry.Tags))
	b.WriteString("draft: true\n")
	b.WriteString("---\n")

	return models.RenderedDocument{
		FrontMatter: b.String(),
		Body:        entry.CleanedText,
	}
}

// renderTags renders tags as a quoted, comma-joined literal list.
func renderTags(tags []string) string {
	quoted := make([]string, len(tags))
	for i, t := range tags {
		quoted[i] = fmt.Sprintf("%q", t)
	}
	return strings.Join(quoted, ", ")
}
