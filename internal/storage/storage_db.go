package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"ADMINKA1.0/internal/models/domainErrors"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

type PgStorage struct {
	db *sql.DB
}

func NewPgStorage(db *sql.DB) *PgStorage {
	return &PgStorage{db: db}
}

func (ps *PgStorage) Get(ctx context.Context, table, id string) (Row, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`,
		strings.Join(Tables[table], ", "), table)

	rows, err := ps.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, domainErrors.ErrNotFound
	}
	return scanRow(rows)
}

func (ps *PgStorage) List(ctx context.Context, table string, filter Filter) ([]Row, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}

	var (
		where []string
		args  []any
	)
	n := 1

	for _, col := range sortedKeys(filter.Eq) {
		if err := checkColumns(table, col); err != nil {
			return nil, err
		}
		v := filter.Eq[col]
		if v == nil {
			where = append(where, fmt.Sprintf("%s IS NULL", col))
			continue
		}
		where = append(where, fmt.Sprintf("%s = $%d", col, n))
		args = append(args, v)
		n++
	}
	for col, vals := range filter.In {
		if err := checkColumns(table, col); err != nil {
			return nil, err
		}
		if len(vals) == 0 {
			// IN по пустому множеству не совпадает ни с чем
			return []Row{}, nil
		}
		ph := make([]string, 0, len(vals))
		for _, v := range vals {
			ph = append(ph, fmt.Sprintf("$%d", n))
			args = append(args, v)
			n++
		}
		where = append(where, fmt.Sprintf("%s IN (%s)", col, strings.Join(ph, ", ")))
	}

	query := fmt.Sprintf(`SELECT %s FROM %s`, strings.Join(Tables[table], ", "), table)
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	if filter.OrderBy != "" {
		if err := checkColumns(table, filter.OrderBy); err != nil {
			return nil, err
		}
		query += " ORDER BY " + filter.OrderBy
		if filter.Desc {
			query += " DESC"
		}
		if filter.ThenBy != "" {
			if err := checkColumns(table, filter.ThenBy); err != nil {
				return nil, err
			}
			query += ", " + filter.ThenBy
		}
	}
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := ps.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Row{}
	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (ps *PgStorage) Insert(ctx context.Context, table string, fields Row) error {
	if err := checkTable(table); err != nil {
		return err
	}
	cols := sortedKeys(fields)
	if err := checkColumns(table, cols...); err != nil {
		return err
	}

	ph := make([]string, 0, len(cols))
	args := make([]any, 0, len(cols))
	for i, col := range cols {
		ph = append(ph, fmt.Sprintf("$%d", i+1))
		args = append(args, fields[col])
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		table, strings.Join(cols, ", "), strings.Join(ph, ", "))

	_, err := ps.db.ExecContext(ctx, query, args...)
	if err != nil && isUniqueViolation(err) {
		return fmt.Errorf("storage: duplicate id in %s: %w", table, err)
	}
	return err
}

func (ps *PgStorage) Update(ctx context.Context, table, id string, fields Row) error {
	if err := checkTable(table); err != nil {
		return err
	}
	cols := sortedKeys(fields)
	if err := checkColumns(table, cols...); err != nil {
		return err
	}

	set := make([]string, 0, len(cols))
	args := make([]any, 0, len(cols)+1)
	args = append(args, id)
	for i, col := range cols {
		set = append(set, fmt.Sprintf("%s = $%d", col, i+2))
		args = append(args, fields[col])
	}

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE id = $1`, table, strings.Join(set, ", "))

	res, err := ps.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (ps *PgStorage) Delete(ctx context.Context, table, id string) error {
	if err := checkTable(table); err != nil {
		return err
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table)

	res, err := ps.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (ps *PgStorage) DeleteWhere(ctx context.Context, table string, eq Row) (int64, error) {
	if err := checkTable(table); err != nil {
		return 0, err
	}
	cols := sortedKeys(eq)
	if err := checkColumns(table, cols...); err != nil {
		return 0, err
	}
	if len(cols) == 0 {
		return 0, fmt.Errorf("storage: delete from %s without condition", table)
	}

	where := make([]string, 0, len(cols))
	args := make([]any, 0, len(cols))
	for i, col := range cols {
		where = append(where, fmt.Sprintf("%s = $%d", col, i+1))
		args = append(args, eq[col])
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s`, table, strings.Join(where, " AND "))

	res, err := ps.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (ps *PgStorage) Ping(ctx context.Context) error {
	return ps.db.PingContext(ctx)
}

func scanRow(rows *sql.Rows) (Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}

	row := make(Row, len(cols))
	for i, col := range cols {
		if b, ok := vals[i].([]byte); ok {
			row[col] = string(b)
			continue
		}
		row[col] = vals[i]
	}
	return row, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
