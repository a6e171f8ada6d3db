package integrity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/docmeta/constants"
	"github.com/joseph-ayodele/docmeta/internal/common"
	"github.com/joseph-ayodele/docmeta/internal/entity"
	"github.com/joseph-ayodele/docmeta/internal/extract"
	"github.com/joseph-ayodele/docmeta/internal/hash"
)

type Status string

const (
	StatusOK              Status = "ok"
	StatusHashMismatch    Status = "hash_mismatch"
	StatusInvalidJSON     Status = "invalid_json"
	StatusSchemaViolation Status = "schema_violation"
)

// Finding is the verification result for one stored record.
type Finding struct {
	RecordID     int64
	FileName     string
	Status       Status
	Detail       string
	StoredHash   string
	ComputedHash string
}

type Report struct {
	Checked  int
	Findings []Finding // failures only
}

func (r Report) OK() bool { return len(r.Findings) == 0 }

// Err summarizes a failed report as an ErrIntegrity; nil when every record passed.
// Reports with unparsable or schema-violating metadata also match ErrValidation.
func (r Report) Err() error {
	if r.OK() {
		return nil
	}
	cause := common.ErrIntegrity
	for _, f := range r.Findings {
		if f.Status == StatusSchemaViolation || f.Status == StatusInvalidJSON {
			cause = fmt.Errorf("%w: %w", common.ErrIntegrity, common.ErrValidation)
			break
		}
	}
	return common.NewAppError("INTEGRITY_ERROR",
		fmt.Sprintf("%d of %d records failed verification", len(r.Findings), r.Checked),
		cause)
}

// Verifier re-validates stored metadata against per-format JSON schemas and
// recomputes its hash.
type Verifier struct {
	formats  map[constants.Format]*jsonschema.Schema
	failures *jsonschema.Schema
	logger   *slog.Logger
}

func NewVerifier(logger *slog.Logger) (*Verifier, error) {
	if logger == nil {
		logger = slog.Default()
	}
	v := &Verifier{
		formats: make(map[constants.Format]*jsonschema.Schema, len(formatFields)),
		logger:  logger,
	}
	var err error
	if v.failures, err = compileSchema("error.json", errorSchema()); err != nil {
		return nil, err
	}
	for format, fields := range formatFields {
		s, err := compileSchema(string(format)+".json", formatSchema(fields))
		if err != nil {
			return nil, err
		}
		v.formats[format] = s
	}
	return v, nil
}

func compileSchema(name string, schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return schema, nil
}

// Check verifies a single record.
func (v *Verifier) Check(rec entity.Record) Finding {
	f := Finding{RecordID: rec.ID, FileName: rec.FileName, StoredHash: rec.MetadataHash, Status: StatusOK}

	md, err := rec.Metadata()
	if err != nil {
		f.Status = StatusInvalidJSON
		f.Detail = err.Error()
		return f
	}

	f.ComputedHash = hash.Sum(md)
	if f.ComputedHash != rec.MetadataHash {
		f.Status = StatusHashMismatch
		f.Detail = "stored hash does not match metadata"
		return f
	}

	schema := v.schemaFor(rec.FileName, md)
	if schema == nil {
		f.Status = StatusSchemaViolation
		f.Detail = fmt.Sprintf("no metadata schema for extension %q", filepath.Ext(rec.FileName))
		return f
	}
	if err := schema.Validate(md); err != nil {
		f.Status = StatusSchemaViolation
		f.Detail = fmt.Sprintf("metadata does not match schema: %v", err)
	}
	return f
}

func (v *Verifier) schemaFor(fileName string, md map[string]any) *jsonschema.Schema {
	if _, failed := md[extract.ErrorKey]; failed {
		return v.failures
	}
	return v.formats[constants.MapExtToFormat(filepath.Ext(fileName))]
}

// Verify checks every record and collects the failures.
func (v *Verifier) Verify(records []entity.Record) Report {
	report := Report{Checked: len(records)}
	for _, rec := range records {
		f := v.Check(rec)
		if f.Status == StatusOK {
			continue
		}
		v.logger.Warn("record failed verification", "id", rec.ID, "file_name", rec.FileName, "status", f.Status, "detail", f.Detail)
		report.Findings = append(report.Findings, f)
	}
	v.logger.Info("verification finished", "checked", report.Checked, "failed", len(report.Findings))
	return report
}
