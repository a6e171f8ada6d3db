package extract

import (
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"

	"github.com/joseph-ayodele/docmeta/constants"
)

// ImageExtractor reports format, dimensions, color mode and EXIF tags.
type ImageExtractor struct {
	logger *slog.Logger
}

func (e *ImageExtractor) Format() constants.Format { return constants.Image }

func (e *ImageExtractor) Extract(_ context.Context, path string) (Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return nil, err
	}

	md := Metadata{
		"format": strings.ToUpper(format),
		"size":   fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"mode":   colorMode(cfg.ColorModel),
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	x, err := exif.Decode(f)
	if err != nil {
		// no EXIF block is the common case for PNGs and stripped JPEGs
		if e.logger != nil {
			e.logger.Debug("no exif data", "path", path, "error", err)
		}
		return md, nil
	}
	if err := x.Walk(exifCollector(md)); err != nil {
		return nil, fmt.Errorf("walk exif: %w", err)
	}
	return md, nil
}

// exifCollector stores every tag as exif_<Name>.
type exifCollector Metadata

func (c exifCollector) Walk(name exif.FieldName, tag *tiff.Tag) error {
	c["exif_"+string(name)] = exifValue(tag)
	return nil
}

// exifValue renders a tag as plain text: strings without NUL padding,
// rationals as decimals and multi-valued tags as a parenthesized list.
func exifValue(tag *tiff.Tag) string {
	switch tag.Format() {
	case tiff.StringVal:
		s, err := tag.StringVal()
		if err != nil {
			break
		}
		return strings.TrimRight(s, "\x00")
	case tiff.IntVal, tiff.RatVal, tiff.FloatVal:
		vals := make([]string, 0, tag.Count)
		for i := 0; i < int(tag.Count); i++ {
			v, err := exifNumber(tag, i)
			if err != nil {
				return strings.Trim(tag.String(), `"`)
			}
			vals = append(vals, v)
		}
		if len(vals) == 1 {
			return vals[0]
		}
		return "(" + strings.Join(vals, ", ") + ")"
	}
	return strings.Trim(tag.String(), `"`)
}

func exifNumber(tag *tiff.Tag, i int) (string, error) {
	switch tag.Format() {
	case tiff.IntVal:
		v, err := tag.Int64(i)
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(v, 10), nil
	case tiff.RatVal:
		num, den, err := tag.Rat2(i)
		if err != nil {
			return "", err
		}
		if den == 0 {
			return "nan", nil
		}
		return decimal(float64(num) / float64(den)), nil
	default:
		v, err := tag.Float(i)
		if err != nil {
			return "", err
		}
		return decimal(v), nil
	}
}

// decimal always keeps a fractional part so 72/1 reads as 72.0.
func decimal(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

// colorMode names the decoded color model the way imaging tools usually do
// (RGB, RGBA, L, P, CMYK).
func colorMode(m color.Model) string {
	if _, ok := m.(color.Palette); ok {
		return "P"
	}
	switch m {
	case color.YCbCrModel, color.RGBAModel, color.RGBA64Model:
		return "RGB"
	case color.NRGBAModel, color.NRGBA64Model:
		return "RGBA"
	case color.GrayModel:
		return "L"
	case color.Gray16Model:
		return "I;16"
	case color.CMYKModel:
		return "CMYK"
	case color.AlphaModel, color.Alpha16Model:
		return "A"
	default:
		return "unknown"
	}
}
