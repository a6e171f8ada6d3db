package extract

import (
	"archive/zip"
	"context"

	"github.com/joseph-ayodele/docmeta/constants"
)

const presentationPart = "ppt/presentation.xml"

type presentationXML struct {
	SlideIDs []struct{} `xml:"sldIdLst>sldId"`
}

// PPTXExtractor reads PowerPoint core properties and the slide list.
type PPTXExtractor struct{}

func (e *PPTXExtractor) Format() constants.Format { return constants.PowerPoint }

func (e *PPTXExtractor) Extract(_ context.Context, path string) (Metadata, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	var pres presentationXML
	if err := readZipXML(zr, presentationPart, &pres); err != nil {
		return nil, err
	}
	cp, err := readCoreProperties(zr)
	if err != nil {
		return nil, err
	}

	return Metadata{
		"slide_count": len(pres.SlideIDs),
		"author":      cp.Creator,
		"created":     formatCoreDate(cp.Created),
		"modified":    formatCoreDate(cp.Modified),
		"title":       cp.Title,
	}, nil
}
