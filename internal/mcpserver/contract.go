package mcpserver

// NoteFormatContract describes the note record and the export document
// shape for LLM consumers.
const NoteFormatContract = `# Noteforge Note Format Contract

## Note record

| field      | type    | notes                                             |
|------------|---------|---------------------------------------------------|
| id         | integer | assigned by the store, immutable, never reused    |
| title      | string  | blank titles are stored as "Untitled"             |
| body       | string  | Markdown source, may be empty                     |
| tags       | string  | comma-separated free-form labels, e.g. "work,urgent" |
| created_at | string  | ISO-8601 UTC, second precision, fixed at creation |
| updated_at | string  | ISO-8601 UTC, refreshed on every mutation         |

## Export document

` + "```" + `json
{
  "app": "Noteforge",
  "version": 1,
  "notes": [ { "id": 1, "title": "...", "body": "...", "tags": "...",
               "created_at": "...", "updated_at": "..." } ]
}
` + "```" + `

## Rules

1. Tags are opaque text; there is no tag entity. Filtering matches a
   case-insensitive substring of the whole tags field.
2. Search queries in plain text match as an exact-order phrase. FTS5
   syntax (quotes, AND/OR/NOT/NEAR, column filters like title:word,
   prefix wildcards) is passed through unmodified.
3. On import, records with a matching id update that note; all other
   records are inserted under fresh ids. Imported ids are never reused.
4. Timestamps inside an import file are ignored.
`
