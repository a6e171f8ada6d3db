package extract

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/joseph-ayodele/docmeta/constants"
)

// CSVExtractor reports the header row and the number of data rows. Blank
// lines are rows with no fields and count toward row_count.
type CSVExtractor struct{}

func (e *CSVExtractor) Format() constants.Format { return constants.CSV }

func (e *CSVExtractor) Extract(_ context.Context, path string) (Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rs := &recordScanner{r: bufio.NewReader(f)}
	headers := []string{}
	first, err := rs.Next()
	switch {
	case errors.Is(err, io.EOF):
		return Metadata{"column_count": 0, "column_names": headers, "row_count": 0}, nil
	case err != nil:
		return nil, err
	}
	fields, err := parseRecord(first)
	if err != nil {
		return nil, err
	}
	headers = append(headers, fields...)

	rows := 0
	for {
		_, err := rs.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		rows++
	}

	return Metadata{
		"column_count": len(headers),
		"column_names": headers,
		"row_count":    rows,
	}, nil
}

// parseRecord splits one raw record into fields; a blank record has none.
func parseRecord(raw string) ([]string, error) {
	if strings.TrimRight(raw, "\r\n") == "" {
		return nil, nil
	}
	r := csv.NewReader(strings.NewReader(raw))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r.Read()
}

type quoteState int

const (
	fieldStart quoteState = iota
	unquoted
	quoted
	quoteInQuoted
)

// recordScanner yields raw records one at a time. A newline inside a quoted
// field continues the record; any other newline ends it, even on an empty line.
type recordScanner struct {
	r *bufio.Reader
}

func (s *recordScanner) Next() (string, error) {
	var b strings.Builder
	state := fieldStart
	for {
		c, err := s.r.ReadByte()
		if errors.Is(err, io.EOF) {
			if b.Len() == 0 {
				return "", io.EOF
			}
			return b.String(), nil
		}
		if err != nil {
			return "", err
		}
		b.WriteByte(c)

		switch state {
		case quoted:
			if c == '"' {
				state = quoteInQuoted
			}
			continue
		case fieldStart:
			if c == '"' {
				state = quoted
				continue
			}
		case quoteInQuoted:
			if c == '"' {
				state = quoted
				continue
			}
		}
		switch c {
		case '\n':
			return b.String(), nil
		case ',':
			state = fieldStart
		default:
			state = unquoted
		}
	}
}
