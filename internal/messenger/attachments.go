package messenger

import (
	"fmt"
	"strings"

	"opsreports/internal/files"
)

// Attachment is one chart image sent with its caption.
type Attachment struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Caption string `json:"caption"`
}

// Attachments turns discovered chart files into attachments, keeping order.
func Attachments(charts []files.FileInfo) []Attachment {
	out := make([]Attachment, 0, len(charts))
	for _, chart := range charts {
		out = append(out, Attachment{
			Name:    chart.Name,
			Path:    chart.Path,
			Caption: files.CaptionFor(chart.Name),
		})
	}
	return out
}

// xpathLiteral quotes s for use inside an XPath expression.
func xpathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}

	parts := strings.Split(s, "'")
	quoted := make([]string, 0, 2*len(parts))
	for i, part := range parts {
		if i > 0 {
			quoted = append(quoted, `"'"`)
		}
		quoted = append(quoted, "'"+part+"'")
	}
	return fmt.Sprintf("concat(%s)", strings.Join(quoted, ", "))
}
