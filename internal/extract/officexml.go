package extract

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"
)

const corePropsPart = "docProps/core.xml"

// coreProperties is the OOXML core properties part. Element names are matched
// by local name, so the dc/dcterms/cp prefixes do not matter.
type coreProperties struct {
	Title          string `xml:"title"`
	Creator        string `xml:"creator"`
	LastModifiedBy string `xml:"lastModifiedBy"`
	Created        string `xml:"created"`
	Modified       string `xml:"modified"`
}

// readZipXML decodes the named part of an OOXML package into v.
func readZipXML(zr *zip.ReadCloser, name string, v any) error {
	rc, err := zr.Open(name)
	if err != nil {
		return err
	}
	defer rc.Close()
	if err := xml.NewDecoder(rc).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// readCoreProperties returns zero properties when the package has no core part.
func readCoreProperties(zr *zip.ReadCloser) (coreProperties, error) {
	var cp coreProperties
	err := readZipXML(zr, corePropsPart, &cp)
	if errors.Is(err, fs.ErrNotExist) {
		return coreProperties{}, nil
	}
	return cp, err
}

var w3cdtfLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// formatCoreDate renders a W3CDTF timestamp as "YYYY-MM-DD HH:MM:SS" in UTC.
// Unparseable values are returned trimmed but otherwise untouched.
func formatCoreDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	for _, layout := range w3cdtfLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC().Format(time.DateTime)
		}
	}
	return raw
}
