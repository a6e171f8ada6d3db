package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/joseph-ayodele/docmeta/internal/common"
	"github.com/joseph-ayodele/docmeta/internal/entity"
	"github.com/joseph-ayodele/docmeta/internal/hash"
)

const (
	recordsTable   = "document_metadata"
	hashIndexQuery = "CREATE INDEX IF NOT EXISTS idx_document_metadata_hash ON document_metadata (metadata_hash)"

	createTableSQLite = `CREATE TABLE IF NOT EXISTS document_metadata (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	file_path TEXT NOT NULL,
	file_name TEXT NOT NULL,
	metadata_hash TEXT NOT NULL,
	timestamp TEXT NOT NULL,
	metadata_json TEXT NOT NULL
)`

	createTablePostgres = `CREATE TABLE IF NOT EXISTS document_metadata (
	id BIGSERIAL PRIMARY KEY,
	file_path TEXT NOT NULL,
	file_name TEXT NOT NULL,
	metadata_hash TEXT NOT NULL,
	timestamp TEXT NOT NULL,
	metadata_json TEXT NOT NULL
)`
)

var recordColumns = []string{"id", "file_path", "file_name", "metadata_hash", "timestamp", "metadata_json"}

type RecordRepository interface {
	Init(ctx context.Context) error
	Save(ctx context.Context, filePath string, metadata map[string]any, metadataHash string) (int64, error)
	ListAll(ctx context.Context) ([]entity.Record, error)
	GetByID(ctx context.Context, id int64) (*entity.Record, error)
	ListByHash(ctx context.Context, metadataHash string) ([]entity.Record, error)
}

type recordRepo struct {
	db     *DB
	logger *slog.Logger
	now    func() time.Time
}

func NewRecordRepository(db *DB, logger *slog.Logger) RecordRepository {
	return &recordRepo{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

// Init creates the records table and its hash index. Safe to call repeatedly.
func (r *recordRepo) Init(ctx context.Context) error {
	var res sql.Result
	if err := r.db.Driver.Exec(ctx, createTableQuery(r.db.Dialect), []any{}, &res); err != nil {
		r.logger.Error("failed to create records table", "error", err)
		return common.DatabaseError("init schema", err)
	}
	if err := r.db.Driver.Exec(ctx, hashIndexQuery, []any{}, &res); err != nil {
		r.logger.Error("failed to create hash index", "error", err)
		return common.DatabaseError("init schema", err)
	}
	r.logger.Debug("schema ready", "table", recordsTable)
	return nil
}

// Save appends one record. Every call inserts a new row, even for identical content.
func (r *recordRepo) Save(ctx context.Context, filePath string, metadata map[string]any, metadataHash string) (int64, error) {
	row := entity.Record{
		FilePath:     filePath,
		FileName:     filepath.Base(filePath),
		MetadataHash: metadataHash,
		Timestamp:    r.now().Format(entity.TimestampLayout),
		MetadataJSON: string(hash.Canonical(metadata)),
	}
	query, args := insertQuery(r.db.Dialect, row)

	var id int64
	if r.db.Dialect == dialect.Postgres {
		var rows entsql.Rows
		if err := r.db.Driver.Query(ctx, query, args, &rows); err != nil {
			r.logger.Error("failed to insert record", "file_path", filePath, "error", err)
			return 0, common.DatabaseError("insert record", err)
		}
		defer rows.Close()
		if !rows.Next() {
			err := rows.Err()
			if err == nil {
				err = sql.ErrNoRows
			}
			return 0, common.DatabaseError("insert record", err)
		}
		if err := rows.Scan(&id); err != nil {
			return 0, common.DatabaseError("insert record", err)
		}
	} else {
		var res sql.Result
		if err := r.db.Driver.Exec(ctx, query, args, &res); err != nil {
			r.logger.Error("failed to insert record", "file_path", filePath, "error", err)
			return 0, common.DatabaseError("insert record", err)
		}
		var err error
		if id, err = res.LastInsertId(); err != nil {
			return 0, common.DatabaseError("insert record", err)
		}
	}

	r.logger.Debug("record saved", "id", id, "file_name", row.FileName, "hash", metadataHash)
	return id, nil
}

// ListAll returns every record, newest first.
func (r *recordRepo) ListAll(ctx context.Context) ([]entity.Record, error) {
	query, args := selectQuery(r.db.Dialect, nil)
	records, err := r.query(ctx, query, args)
	if err != nil {
		r.logger.Error("failed to list records", "error", err)
		return nil, common.DatabaseError("list records", err)
	}
	return records, nil
}

func (r *recordRepo) GetByID(ctx context.Context, id int64) (*entity.Record, error) {
	query, args := selectQuery(r.db.Dialect, entsql.EQ("id", id))
	records, err := r.query(ctx, query, args)
	if err != nil {
		r.logger.Error("failed to get record", "id", id, "error", err)
		return nil, common.DatabaseError("get record", err)
	}
	if len(records) == 0 {
		return nil, common.NewAppError("NOT_FOUND", fmt.Sprintf("record %d", id), common.ErrNotFound)
	}
	return &records[0], nil
}

func (r *recordRepo) ListByHash(ctx context.Context, metadataHash string) ([]entity.Record, error) {
	query, args := selectQuery(r.db.Dialect, entsql.EQ("metadata_hash", metadataHash))
	records, err := r.query(ctx, query, args)
	if err != nil {
		r.logger.Error("failed to list records by hash", "hash", metadataHash, "error", err)
		return nil, common.DatabaseError("list records by hash", err)
	}
	return records, nil
}

func (r *recordRepo) query(ctx context.Context, query string, args []any) ([]entity.Record, error) {
	var rows entsql.Rows
	if err := r.db.Driver.Query(ctx, query, args, &rows); err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []entity.Record{}
	for rows.Next() {
		var rec entity.Record
		if err := rows.Scan(&rec.ID, &rec.FilePath, &rec.FileName, &rec.MetadataHash, &rec.Timestamp, &rec.MetadataJSON); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func createTableQuery(d string) string {
	if d == dialect.Postgres {
		return createTablePostgres
	}
	return createTableSQLite
}

func insertQuery(d string, rec entity.Record) (string, []any) {
	ins := entsql.Dialect(d).Insert(recordsTable).
		Columns(recordColumns[1:]...).
		Values(rec.FilePath, rec.FileName, rec.MetadataHash, rec.Timestamp, rec.MetadataJSON)
	if d == dialect.Postgres {
		ins.Returning("id")
	}
	return ins.Query()
}

func selectQuery(d string, where *entsql.Predicate) (string, []any) {
	b := entsql.Dialect(d)
	sel := b.Select(recordColumns...).
		From(b.Table(recordsTable)).
		OrderBy(entsql.Desc("timestamp"), entsql.Desc("id"))
	if where != nil {
		sel.Where(where)
	}
	return sel.Query()
}
