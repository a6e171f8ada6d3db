package export

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/docmeta/constants"
	"github.com/joseph-ayodele/docmeta/internal/entity"
	"github.com/joseph-ayodele/docmeta/internal/repository"
)

const (
	RecordsSheet = "Records"
	FieldsSheet  = "Fields"

	// Excel rejects cells longer than this
	maxCellChars = 32767
)

// Service is a tiny façade over the record repository that produces XLSX bytes for exports.
type Service struct {
	repo   repository.RecordRepository
	logger *slog.Logger
}

func NewService(repo repository.RecordRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// ExportRecordsXLSX returns a workbook with one row per stored record on the
// Records sheet and one row per metadata field on the Fields sheet, newest first.
func (s *Service) ExportRecordsXLSX(ctx context.Context) ([]byte, error) {
	start := time.Now()

	recs, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", RecordsSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(FieldsSheet); err != nil {
		return nil, err
	}
	activeIndex, _ := f.GetSheetIndex(RecordsSheet)
	f.SetActiveSheet(activeIndex)

	writeRow(f, RecordsSheet, 1, "ID", "File Name", "File Path", "Format", "Metadata Hash", "Timestamp", "Metadata")
	writeRow(f, FieldsSheet, 1, "Record ID", "Field", "Value")

	row, fieldRow := 2, 2
	for _, r := range recs {
		writeRow(f, RecordsSheet, row, r.ID, r.FileName, r.FilePath, formatOf(r),
			r.MetadataHash, r.Timestamp, truncate(r.MetadataJSON, maxCellChars))
		row++

		md, err := r.Metadata()
		if err != nil {
			s.logger.Warn("skipping unreadable metadata in export", "id", r.ID, "error", err)
			continue
		}
		keys := make([]string, 0, len(md))
		for k := range md {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			writeRow(f, FieldsSheet, fieldRow, r.ID, k, truncate(cellValue(md[k]), maxCellChars))
			fieldRow++
		}
	}

	_ = f.SetColWidth(RecordsSheet, "A", "A", 8)  // id
	_ = f.SetColWidth(RecordsSheet, "B", "B", 28) // name
	_ = f.SetColWidth(RecordsSheet, "C", "C", 60) // path
	_ = f.SetColWidth(RecordsSheet, "D", "D", 12) // format
	_ = f.SetColWidth(RecordsSheet, "E", "E", 66) // hash
	_ = f.SetColWidth(RecordsSheet, "F", "F", 28) // timestamp
	_ = f.SetColWidth(RecordsSheet, "G", "G", 80) // metadata
	_ = f.SetColWidth(FieldsSheet, "B", "B", 24)
	_ = f.SetColWidth(FieldsSheet, "C", "C", 80)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(recs),
		"fields", fieldRow-2,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, row int, values ...any) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}

func formatOf(r entity.Record) string {
	if format := constants.MapExtToFormat(filepath.Ext(r.FileName)); format != "" {
		return string(format)
	}
	return "unsupported"
}

func cellValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = cellValue(e)
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(x)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
