package integrity

import "github.com/joseph-ayodele/docmeta/constants"

var (
	str     = map[string]any{"type": "string"}
	integer = map[string]any{"type": "integer", "minimum": 0}
	strList = map[string]any{"type": "array", "items": str}

	// any single metadata value: extractors only emit text, counts and lists of text
	anyValue = map[string]any{"anyOf": []any{str, map[string]any{"type": "integer"}, strList}}
)

var formatFields = map[constants.Format]map[string]any{
	constants.PDF: {
		"page_count":         integer,
		"first_page_preview": str,
	},
	constants.Word: {
		"author":           str,
		"created":          str,
		"last_modified_by": str,
		"modified":         str,
		"title":            str,
		"paragraph_count":  integer,
		"text_preview":     str,
	},
	constants.Excel: {
		"sheet_names":      strList,
		"sheet_count":      integer,
		"creator":          str,
		"created":          str,
		"modified":         str,
		"last_modified_by": str,
	},
	constants.PowerPoint: {
		"slide_count": integer,
		"author":      str,
		"created":     str,
		"modified":    str,
		"title":       str,
	},
	constants.Image: {
		"format": str,
		"size":   map[string]any{"type": "string", "pattern": `^[0-9]+x[0-9]+$`},
		"mode":   str,
	},
	constants.Email: {
		"subject":          str,
		"from":             str,
		"to":               str,
		"date":             str,
		"cc":               str,
		"attachment_count": integer,
	},
	constants.Mailbox: {
		"message_count":    integer,
		"attachment_count": integer,
		"first_date":       str,
		"last_date":        str,
	},
	constants.CSV: {
		"column_count": integer,
		"column_names": strList,
		"row_count":    integer,
	},
}

// errorSchema matches the mapping stored for a failed extraction.
func errorSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"required":             []any{"error"},
		"properties":           map[string]any{"error": map[string]any{"type": "string", "minLength": 1}},
		"additionalProperties": false,
	}
}

// formatSchema requires every field the format's extractor always emits; extra
// fields (PDF info entries, EXIF tags) must still be plain values.
func formatSchema(fields map[string]any) map[string]any {
	required := make([]any, 0, len(fields))
	for name := range fields {
		required = append(required, name)
	}
	return map[string]any{
		"type":                 "object",
		"required":             required,
		"properties":           fields,
		"additionalProperties": anyValue,
		"not":                  map[string]any{"required": []any{"error"}},
	}
}
