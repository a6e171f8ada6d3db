package extract

import (
	"context"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/joseph-ayodele/docmeta/constants"
)

// PDFExtractor reads the document information dictionary, page count and a
// preview of page 1.
type PDFExtractor struct {
	PreviewChars int
}

func (e *PDFExtractor) Format() constants.Format { return constants.PDF }

func (e *PDFExtractor) Extract(_ context.Context, path string) (Metadata, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	md := Metadata{}
	info := r.Trailer().Key("Info")
	for _, key := range info.Keys() {
		md[strings.TrimPrefix(key, "/")] = pdfValueString(info.Key(key))
	}

	pages := r.NumPage()
	md["page_count"] = pages
	md["first_page_preview"] = e.firstPagePreview(r, pages)
	return md, nil
}

// firstPagePreview degrades to "" when page 1 has no extractable text.
func (e *PDFExtractor) firstPagePreview(r *pdf.Reader, pages int) (preview string) {
	if pages < 1 {
		return ""
	}
	defer func() {
		if rec := recover(); rec != nil {
			preview = ""
		}
	}()
	page := r.Page(1)
	if page.V.IsNull() {
		return ""
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return truncateRunes(text, e.PreviewChars)
}

func pdfValueString(v pdf.Value) string {
	switch v.Kind() {
	case pdf.String:
		return v.Text()
	case pdf.Name:
		return v.Name()
	case pdf.Integer:
		return strconv.FormatInt(v.Int64(), 10)
	case pdf.Real:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case pdf.Bool:
		return strconv.FormatBool(v.Bool())
	case pdf.Null:
		return ""
	default:
		return v.String()
	}
}
