package recordrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/weather-records/internal/domain/records"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS weather_records (
	id            TEXT PRIMARY KEY,
	location      TEXT NOT NULL,
	resolved_name TEXT NOT NULL DEFAULT '',
	start_date    TIMESTAMPTZ NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL,
	document      JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS weather_records_created_at_idx ON weather_records (created_at DESC);
CREATE INDEX IF NOT EXISTS weather_records_start_date_idx ON weather_records (start_date);
`

// PostgresRepository stores records as JSONB documents with the filterable
// and sortable fields projected into columns.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// EnsureSchema creates the table and indexes when missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure weather_records schema: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Create(ctx context.Context, record records.Record) error {
	doc, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO weather_records (id, location, resolved_name, start_date, created_at, updated_at, document)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, record.ID, record.OriginalLocationQuery, record.ResolvedLocation.Name, record.DateRange.StartDate,
		record.CreatedAt, record.UpdatedAt, doc)
	return err
}

func (r *PostgresRepository) List(ctx context.Context, q records.ListQuery) ([]records.Record, int, error) {
	where, args := buildFilter(q)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM weather_records`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT document FROM weather_records` + where + orderClause(q)
	argPos := len(args) + 1
	query += ` LIMIT $` + itoa(argPos) + ` OFFSET $` + itoa(argPos+1)
	args = append(args, q.Limit, q.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items, err := scanDocuments(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (records.Record, error) {
	row := r.pool.QueryRow(ctx, `SELECT document FROM weather_records WHERE id = $1 LIMIT 1`, id)
	rec, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return records.Record{}, records.ErrNotFound
		}
		return records.Record{}, err
	}
	return rec, nil
}

func (r *PostgresRepository) Update(ctx context.Context, record records.Record) error {
	doc, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE weather_records
		SET location = $1, resolved_name = $2, start_date = $3, updated_at = $4, document = $5
		WHERE id = $6
	`, record.OriginalLocationQuery, record.ResolvedLocation.Name, record.DateRange.StartDate, record.UpdatedAt, doc, record.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return records.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM weather_records WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return records.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) All(ctx context.Context) ([]records.Record, error) {
	rows, err := r.pool.Query(ctx, `SELECT document FROM weather_records ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDocuments(rows)
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (records.Record, error) {
	var raw []byte
	if err := row.Scan(&raw); err != nil {
		return records.Record{}, err
	}
	var rec records.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return records.Record{}, fmt.Errorf("decode record: %w", err)
	}
	return rec, nil
}

func scanDocuments(rows pgx.Rows) ([]records.Record, error) {
	items := []records.Record{}
	for rows.Next() {
		rec, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, rec)
	}
	return items, rows.Err()
}

// buildFilter renders the WHERE clause shared by the count and page queries.
func buildFilter(q records.ListQuery) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	if loc := strings.TrimSpace(q.Location); loc != "" {
		args = append(args, "%"+escapeLike(loc)+"%")
		pos := itoa(len(args))
		clauses = append(clauses, `(location ILIKE $`+pos+` OR resolved_name ILIKE $`+pos+`)`)
	}
	if q.StartDate != nil {
		args = append(args, q.StartDate.UTC())
		clauses = append(clauses, `start_date >= $`+itoa(len(args)))
	}
	if q.EndDate != nil {
		args = append(args, q.EndDate.UTC())
		clauses = append(clauses, `start_date <= $`+itoa(len(args)))
	}
	if len(clauses) == 0 {
		return "", args
	}
	return ` WHERE ` + strings.Join(clauses, ` AND `), args
}

func orderClause(q records.ListQuery) string {
	column := "created_at"
	switch q.SortBy {
	case records.SortByUpdatedAt:
		column = "updated_at"
	case records.SortByLocation:
		column = "LOWER(location)"
	case records.SortByStartDate:
		column = "start_date"
	}
	dir := "DESC"
	if q.SortOrder == records.SortAsc {
		dir = "ASC"
	}
	return ` ORDER BY ` + column + ` ` + dir + `, id ` + dir
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}

func itoa(v int) string {
	return strconv.Itoa(v)
}

var _ records.Repository = (*PostgresRepository)(nil)
