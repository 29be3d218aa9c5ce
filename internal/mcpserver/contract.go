package mcpserver

// DocumentFormatContract describes the canonical journal document format so
// LLM consumers can interpret archived entries correctly.
const DocumentFormatContract = `# Journal Document Format Contract

Every document in the journal archive follows this structure. The archive is
append-only from the consumer's point of view: documents are produced by the
capture pipeline and must never be modified through this interface.

## Structure

` + "```" + `markdown
---
title: "Short descriptive title"   # REQUIRED – double-quoted, inner quotes escaped
date: "2025-01-15"                 # YYYY-MM-DD, or "" when the page named no date
tags: ["tag-one", "tag-two"]       # lowercase single-word topic tags
draft: true                        # always true; publishing is a separate decision
---

Body text: the cleaned transcription of the handwritten page.
` + "```" + `

## Rules

1. **The front matter block comes first.** The opening ` + "`" + `---` + "`" + ` fence is the
   first line of the file.
2. **Field order is fixed:** title, date, tags, draft.
3. **A blank line separates** the closing fence from the body.
4. **Paths** follow ` + "`" + `uploads/<subject>/journal-<timestamp>.md` + "`" + `. The
   timestamp is the capture instant in UTC with ` + "`" + `:` + "`" + ` and ` + "`" + `.` + "`" + ` replaced
   by ` + "`" + `-` + "`" + `.
5. **Degraded entries** carry the title "Processing Error — Untitled" and the
   tag ` + "`" + `processing-error` + "`" + `; their body is the raw uncorrected transcription.
6. **Empty captures** (no text recognized) carry the title "Untitled Entry",
   the tag ` + "`" + `journal` + "`" + `, and an empty body.

## Example

` + "```" + `markdown
---
title: "A Walk by the Lake"
date: "2025-01-20"
tags: ["lake", "walk", "nature"]
draft: true
---

Walked down to the lake before sunrise. The water was completely still.
` + "```" + `
`
