package extract

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/joseph-ayodele/docmeta/constants"
)

const wordDocumentPart = "word/document.xml"

// DOCXExtractor reads Word core properties and body paragraphs.
type DOCXExtractor struct {
	PreviewChars int
}

func (e *DOCXExtractor) Format() constants.Format { return constants.Word }

func (e *DOCXExtractor) Extract(_ context.Context, path string) (Metadata, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	cp, err := readCoreProperties(zr)
	if err != nil {
		return nil, err
	}

	rc, err := zr.Open(wordDocumentPart)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", wordDocumentPart, err)
	}
	defer rc.Close()

	count, first, err := scanBodyParagraphs(rc)
	if err != nil {
		return nil, err
	}

	return Metadata{
		"author":           cp.Creator,
		"created":          formatCoreDate(cp.Created),
		"last_modified_by": cp.LastModifiedBy,
		"modified":         formatCoreDate(cp.Modified),
		"title":            cp.Title,
		"paragraph_count":  count,
		"text_preview":     truncateRunes(first, e.PreviewChars),
	}, nil
}

// scanBodyParagraphs counts the paragraphs that are direct children of
// w:body and returns the text of the first one. Paragraphs nested in tables
// or text boxes are not counted.
func scanBodyParagraphs(r io.Reader) (count int, firstText string, err error) {
	dec := xml.NewDecoder(r)
	var (
		stack   []string
		inFirst bool
		sb      strings.Builder
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, "", fmt.Errorf("decode %s: %w", wordDocumentPart, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			name := t.Name.Local
			if name == "p" && len(stack) > 0 && stack[len(stack)-1] == "body" {
				count++
				inFirst = count == 1
			}
			if inFirst {
				switch name {
				case "tab":
					sb.WriteByte('\t')
				case "br", "cr":
					sb.WriteByte('\n')
				}
			}
			stack = append(stack, name)
		case xml.EndElement:
			if len(stack) == 0 {
				continue
			}
			stack = stack[:len(stack)-1]
			if t.Name.Local == "p" && inFirst && len(stack) > 0 && stack[len(stack)-1] == "body" {
				inFirst = false
			}
		case xml.CharData:
			if inFirst && len(stack) > 0 && stack[len(stack)-1] == "t" {
				sb.Write(t)
			}
		}
	}
	return count, sb.String(), nil
}
