package entity

import (
	"github.com/joseph-ayodele/docmeta/internal/hash"
)

// TimestampLayout is the ISO-8601 form used for Record.Timestamp (local time,
// microsecond precision). Values in this layout sort lexicographically.
const TimestampLayout = "2006-01-02T15:04:05.000000"

// Record is one persisted extraction event.
type Record struct {
	ID           int64  `json:"id"`
	FilePath     string `json:"file_path"`
	FileName     string `json:"file_name"`
	MetadataHash string `json:"metadata_hash"`
	Timestamp    string `json:"timestamp"`
	MetadataJSON string `json:"metadata_json"`
}

// Metadata parses MetadataJSON back into the mapping that was saved.
func (r Record) Metadata() (map[string]any, error) {
	return hash.Decode([]byte(r.MetadataJSON))
}
