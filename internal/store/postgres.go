package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/craftbay/marketplace-api/internal/apperr"
	"github.com/craftbay/marketplace-api/internal/logging"
)

// PostgresStore implements RecordStore on PostgreSQL for local development
// and integration testing. Each logical table maps to one SQL table holding
// the store-assigned id and the fields as jsonb, so services see the same
// record shape as with the remote store.
type PostgresStore struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ RecordStore = (*PostgresStore)(nil)

// NewPostgresStore wraps an open database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{
		db:     db,
		logger: logging.New("record-store-pg"),
	}
}

// EnsureSchema creates the backing tables if they do not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context, tables ...Table) error {
	for _, t := range tables {
		q := fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id     text PRIMARY KEY,
				fields jsonb NOT NULL DEFAULT '{}'::jsonb
			)
		`, s.sqlTable(t))
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return apperr.NewStoreError("ensure-schema", t.Name, err)
		}
	}
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, table Table, fields map[string]any) (*Record, error) {
	id := generateRecordID()

	data, err := json.Marshal(fields)
	if err != nil {
		return nil, apperr.NewStoreError("create", table.Name, err)
	}

	q := fmt.Sprintf(`INSERT INTO %s (id, fields) VALUES ($1, $2)`, s.sqlTable(table))
	if _, err := s.db.ExecContext(ctx, q, id, data); err != nil {
		s.logger.Error("insert failed", "table", table.Name, "error", err.Error())
		return nil, apperr.NewStoreError("create", table.Name, err)
	}

	return &Record{ID: id, Fields: fields}, nil
}

func (s *PostgresStore) GetByID(ctx context.Context, table Table, id string) (*Record, error) {
	q := fmt.Sprintf(`SELECT id, fields FROM %s WHERE id = $1`, s.sqlTable(table))
	return s.scanOne(s.db.QueryRowContext(ctx, q, id), "get", table)
}

func (s *PostgresStore) Update(ctx context.Context, table Table, id string, fields map[string]any) (*Record, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return nil, apperr.NewStoreError("update", table.Name, err)
	}

	// jsonb concatenation gives partial-update semantics matching the
	// remote store.
	q := fmt.Sprintf(`
		UPDATE %s SET fields = fields || $2::jsonb
		WHERE id = $1
		RETURNING id, fields
	`, s.sqlTable(table))
	return s.scanOne(s.db.QueryRowContext(ctx, q, id, data), "update", table)
}

func (s *PostgresStore) Delete(ctx context.Context, table Table, id string) (*Record, error) {
	q := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 RETURNING id, fields`, s.sqlTable(table))
	return s.scanOne(s.db.QueryRowContext(ctx, q, id), "delete", table)
}

func (s *PostgresStore) FilterByField(ctx context.Context, table Table, field, value string) ([]*Record, error) {
	q := fmt.Sprintf(`SELECT id, fields FROM %s WHERE fields->>$1 = $2`, s.sqlTable(table))
	rows, err := s.db.QueryContext(ctx, q, field, value)
	if err != nil {
		return nil, apperr.NewStoreError("filter", table.Name, err)
	}
	defer rows.Close()
	return s.scanAll(rows, "filter", table)
}

func (s *PostgresStore) List(ctx context.Context, table Table, opts ListOptions) ([]*Record, error) {
	// Views are a remote-store concept; the local backend ignores them.
	q := fmt.Sprintf(`SELECT id, fields FROM %s`, s.sqlTable(table))
	args := make([]any, 0, 1)
	if opts.MaxRecords > 0 {
		q += ` LIMIT $1`
		args = append(args, opts.MaxRecords)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, apperr.NewStoreError("list", table.Name, err)
	}
	defer rows.Close()
	return s.scanAll(rows, "list", table)
}

func (s *PostgresStore) scanOne(row *sql.Row, op string, table Table) (*Record, error) {
	var id string
	var data []byte
	err := row.Scan(&id, &data)
	if err == sql.ErrNoRows {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		s.logger.Error("query failed", "op", op, "table", table.Name, "error", err.Error())
		return nil, apperr.NewStoreError(op, table.Name, err)
	}

	fields := make(map[string]any)
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, apperr.NewStoreError(op, table.Name, err)
	}
	return &Record{ID: id, Fields: fields}, nil
}

func (s *PostgresStore) scanAll(rows *sql.Rows, op string, table Table) ([]*Record, error) {
	records := make([]*Record, 0)
	for rows.Next() {
		var id string
		var data []byte
		if err := rows.Scan(&id, &data); err != nil {
			return nil, apperr.NewStoreError(op, table.Name, err)
		}
		fields := make(map[string]any)
		if err := json.Unmarshal(data, &fields); err != nil {
			return nil, apperr.NewStoreError(op, table.Name, err)
		}
		records = append(records, &Record{ID: id, Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.NewStoreError(op, table.Name, err)
	}
	return records, nil
}

func (s *PostgresStore) sqlTable(t Table) string {
	return pq.QuoteIdentifier(strings.ToLower(t.Name))
}

func generateRecordID() string {
	return "rec" + strings.ReplaceAll(uuid.NewString(), "-", "")[:17]
}
