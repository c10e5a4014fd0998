package mcpserver

import (
	"fmt"
	"strings"

	"github.com/starford/quire/internal/collection"
)

const contractHeader = `# quire Frontmatter Contract

Every entry is a Markdown file named ` + "`<slug>.md`" + ` inside its collection
directory. The slug is derived from the title: lowercase ASCII letters and
digits, words joined by single hyphens, accents folded (` + "`café` → `cafe`" + `).

## Structure

` + "```" + `markdown
---
title: "Human-readable title"
date: 2026-10-18T09:30:00.000Z
description: "One-line summary"
tags: ["tag-one", "tag-two"]
draft: true
---

# Human-readable title

` + "```" + `

## Rules

1. The ` + "`---`" + ` fence is the first line of the file.
2. Keys appear in the order title, date, description, tags, draft.
3. ` + "`title`" + `, ` + "`description`" + ` and each tag are double-quoted single-line strings.
4. ` + "`date`" + ` is ISO-8601 in UTC with millisecond precision.
5. ` + "`tags`" + ` is a flow sequence; ` + "`[]`" + ` when there are none.
6. An existing file is never replaced. Pick another title when the slug is taken.

## Collections

| Kind | Directory | Description | Draft default |
|------|-----------|-------------|---------------|
`

// FrontmatterContract describes the entry format, with one table row per
// collection as laid out in layout.
func FrontmatterContract(layout *collection.Layout) string {
	var b strings.Builder
	b.WriteString(contractHeader)
	for _, info := range collection.All() {
		desc := "absent"
		if info.HasDescription {
			desc = "required"
		}
		fmt.Fprintf(&b, "| %s | `%s` | %s | %t |\n", info.Name, layout.Dir(info.Kind), desc, info.DraftDefault)
	}
	return b.String()
}
