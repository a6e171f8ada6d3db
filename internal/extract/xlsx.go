package extract

import (
	"context"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/docmeta/constants"
)

// XLSXExtractor reads workbook sheets and document properties.
type XLSXExtractor struct {
	logger *slog.Logger
}

func (e *XLSXExtractor) Format() constants.Format { return constants.Excel }

func (e *XLSXExtractor) Extract(_ context.Context, path string) (Metadata, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := f.Close(); err != nil && e.logger != nil {
			e.logger.Warn("failed to close workbook", "path", path, "error", err)
		}
	}()

	sheets := f.GetSheetList()
	if sheets == nil {
		sheets = []string{}
	}

	md := Metadata{
		"sheet_names":      sheets,
		"sheet_count":      len(sheets),
		"creator":          "",
		"created":          "",
		"modified":         "",
		"last_modified_by": "",
	}

	props, err := f.GetDocProps()
	if err != nil {
		// a workbook without docProps/core.xml is still a workbook
		if e.logger != nil {
			e.logger.Debug("workbook has no readable core properties", "path", path, "error", err)
		}
		return md, nil
	}
	md["creator"] = props.Creator
	md["created"] = formatCoreDate(props.Created)
	md["modified"] = formatCoreDate(props.Modified)
	md["last_modified_by"] = props.LastModifiedBy
	return md, nil
}
