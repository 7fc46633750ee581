package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	// sqlite3 driver
	_ "github.com/mattn/go-sqlite3"

	"github.com/YuminosukeSato/id3/pkg/errors"
)

// OpenSQLite opens the SQLite database at path and checks the connection.
// ":memory:" gives a private in-memory database; the pool is then limited to
// one connection so every query sees the same database.
func OpenSQLite(path string) (*sql.DB, error) {
	dsn := path
	if path != ":memory:" {
		dsn += "?_busy_timeout=5000"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "open database %s", path)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "ping database %s", path)
	}
	return db, nil
}

// LoadSQLite reads every row of table into a Dataset. When columns is empty
// all columns are read. TEXT cells become strings, INTEGER cells int64, REAL
// cells float64 and NULL cells nil.
func LoadSQLite(ctx context.Context, db *sql.DB, table string, columns []string) (Dataset, error) {
	query, err := selectQuery(table, columns)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrapf(err, "query %s", table)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(err, "reading column names")
	}

	var ds Dataset
	for rows.Next() {
		cells := make([]any, len(names))
		ptrs := make([]any, len(names))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, errors.Wrapf(err, "scanning row %d", len(ds))
		}
		s := make(Sample, len(names))
		for i, name := range names {
			s[name] = sqlValue(cells[i])
		}
		ds = append(ds, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating rows")
	}
	return ds, nil
}

// SaveSQLite creates table (if needed) with one untyped column per name and
// inserts every sample inside a single transaction. Absent keys are stored
// as NULL.
func SaveSQLite(ctx context.Context, db *sql.DB, table string, columns []string, ds Dataset) error {
	if len(columns) == 0 {
		return errors.NewValidationError("columns", "at least one column is required", columns)
	}
	quoted := make([]string, len(columns))
	for i, c := range columns {
		q, err := quoteIdent(c)
		if err != nil {
			return err
		}
		quoted[i] = q
	}
	qtable, err := quoteIdent(table)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	create := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", qtable, strings.Join(quoted, ", "))
	if _, err := tx.ExecContext(ctx, create); err != nil {
		return errors.Wrapf(err, "create table %s", table)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", qtable, strings.Join(quoted, ", "), placeholders)
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return errors.Wrap(err, "preparing insert")
	}
	defer stmt.Close()

	args := make([]any, len(columns))
	for i, s := range ds {
		for j, c := range columns {
			args[j] = s[c]
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return errors.Wrapf(err, "inserting sample %d", i)
		}
	}
	return errors.Wrap(tx.Commit(), "commit")
}

func selectQuery(table string, columns []string) (string, error) {
	qtable, err := quoteIdent(table)
	if err != nil {
		return "", err
	}
	if len(columns) == 0 {
		return "SELECT * FROM " + qtable, nil
	}
	quoted := make([]string, len(columns))
	for i, c := range columns {
		q, err := quoteIdent(c)
		if err != nil {
			return "", err
		}
		quoted[i] = q
	}
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(quoted, ", "), qtable), nil
}

func quoteIdent(name string) (string, error) {
	if name == "" {
		return "", errors.NewValidationError("identifier", "must not be empty", name)
	}
	if strings.ContainsAny(name, "\"\x00") {
		return "", errors.NewValidationError("identifier", `contains invalid character '"'`, name)
	}
	return `"` + name + `"`, nil
}

func sqlValue(v any) any {
	switch x := v.(type) {
	case []byte:
		return string(x)
	default:
		return x
	}
}
