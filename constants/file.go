package constants

import "strings"

// Format names a family of documents handled by one extractor.
type Format string

const (
	PDF        Format = "PDF"
	Word       Format = "Word"
	Excel      Format = "Excel"
	PowerPoint Format = "PowerPoint"
	Image      Format = "image"
	Email      Format = "email"
	Mailbox    Format = "mailbox"
	CSV        Format = "CSV"
)

// DefaultDBPath is the database file created in the working directory when nothing else is configured.
const DefaultDBPath = "document_metadata.db"

// PreviewChars caps text previews taken from documents.
const PreviewChars = 200

// SupportedExtensions maps lowercased extensions (sans '.') to their format.
var SupportedExtensions = map[string]Format{
	"pdf":  PDF,
	"docx": Word,
	"xlsx": Excel,
	"pptx": PowerPoint,
	"jpg":  Image,
	"jpeg": Image,
	"png":  Image,
	"eml":  Email,
	"mbox": Mailbox,
	"csv":  CSV,
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsSupportedExt reports whether ext (with or without dot, any case) has an extractor.
func IsSupportedExt(ext string) bool {
	_, ok := SupportedExtensions[NormalizeExt(ext)]
	return ok
}

// MapExtToFormat returns the format for ext, or "" when unsupported.
func MapExtToFormat(ext string) Format {
	return SupportedExtensions[NormalizeExt(ext)]
}
