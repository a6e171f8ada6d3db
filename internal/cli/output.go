package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"github.com/joseph-ayodele/docmeta/internal/entity"
	"github.com/joseph-ayodele/docmeta/internal/ingest"
	"github.com/joseph-ayodele/docmeta/internal/integrity"
)

// writeJSON prints v with 4-space indentation and sorted keys.
func writeJSON(w io.Writer, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func savedAgo(ts string) string {
	t, err := time.ParseInLocation(entity.TimestampLayout, ts, time.Local)
	if err != nil {
		return ""
	}
	return humanize.Time(t)
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

func writeRecordTable(w io.Writer, records []entity.Record) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "File Name", "Hash", "Timestamp", "Saved"})
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	for _, r := range records {
		table.Append([]string{
			strconv.FormatInt(r.ID, 10),
			r.FileName,
			shortHash(r.MetadataHash),
			r.Timestamp,
			savedAgo(r.Timestamp),
		})
	}
	table.Render()
}

func writeFindings(w io.Writer, report integrity.Report) {
	if report.OK() {
		fmt.Fprintf(w, "All %d records verified\n", report.Checked)
		return
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "File Name", "Status", "Detail"})
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	for _, f := range report.Findings {
		table.Append([]string{strconv.FormatInt(f.RecordID, 10), f.FileName, string(f.Status), f.Detail})
	}
	table.Render()
}

func writeDuplicates(w io.Writer, dups []entity.Record) {
	if len(dups) == 0 {
		return
	}
	ids := make([]string, len(dups))
	for i, d := range dups {
		ids[i] = strconv.FormatInt(d.ID, 10)
	}
	fmt.Fprintf(w, "Identical metadata already saved as record(s): %s\n", strings.Join(ids, ", "))
}

func writeIngestion(w io.Writer, r ingest.IngestionResult) {
	switch {
	case r.Err != "":
		fmt.Fprintf(w, "FAIL %s: %s\n", r.SourcePath, r.Err)
	case r.Duplicate:
		fmt.Fprintf(w, "DUP  %s -> record %d (%s)\n", r.SourcePath, r.RecordID, shortHash(r.Hash))
	default:
		fmt.Fprintf(w, "OK   %s -> record %d (%s)\n", r.SourcePath, r.RecordID, shortHash(r.Hash))
	}
}
