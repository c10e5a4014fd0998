package scaffold

import (
	"strconv"
	"strings"
	"time"
)

// dateLayout matches JavaScript's Date.toISOString.
const dateLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatDate renders t as an ISO-8601 UTC timestamp with milliseconds.
func FormatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

// Render returns the file content for req. Field order is fixed: title,
// date, description (only for kinds that have one), tags, draft.
func Render(req Request) string {
	info := req.Kind.Info()

	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("title: " + quote(req.Title) + "\n")
	b.WriteString("date: " + FormatDate(req.Date) + "\n")
	if info.HasDescription {
		b.WriteString("description: " + quote(req.Description) + "\n")
	}
	b.WriteString("tags: [")
	for i, tag := range req.Tags {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(quote(tag))
	}
	b.WriteString("]\n")
	b.WriteString("draft: " + strconv.FormatBool(info.DraftDefault) + "\n")
	b.WriteString("---\n\n")
	b.WriteString("# " + req.Title + "\n\n")
	return b.String()
}

// quote emits a YAML double-quoted scalar. Go's escape set (\" \\ \n \t
// \xHH \uHHHH \UHHHHHHHH) is a subset of YAML's.
func quote(s string) string {
	return strconv.Quote(s)
}
