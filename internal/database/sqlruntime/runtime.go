// Package sqlruntime holds the statement and table execution shared by every
// database/sql backed connector. Connectors compose a *Session rather than
// inheriting behaviour, so non-SQL connectors never see these methods.
package sqlruntime

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/redbco/redb-connect/pkg/connector"
	"github.com/redbco/redb-connect/pkg/dbcapabilities"
	"github.com/redbco/redb-connect/pkg/logger"
	"github.com/redbco/redb-connect/pkg/table"
)

// Session is an open database/sql handle bound to a dialect.
type Session struct {
	id      string
	dbType  dbcapabilities.DatabaseID
	db      *sql.DB
	dialect Dialect
	log     *logger.Logger
}

// Open opens addr with database/sql and verifies it with a ping.
func Open(ctx context.Context, dbType dbcapabilities.DatabaseID, addr *connector.Address, dialect Dialect, log *logger.Logger) (*Session, error) {
	if addr == nil {
		return nil, connector.NewConfigurationError(dbType, "", "address is required to open a session")
	}

	var db *sql.DB
	if addr.Connector != nil {
		db = sql.OpenDB(addr.Connector)
	} else {
		var err error
		db, err = sql.Open(addr.Driver, addr.DSN)
		if err != nil {
			return nil, connector.NewConnectionError(dbType, addr.Host, addr.Port, err)
		}
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, connector.NewConnectionError(dbType, addr.Host, addr.Port, err)
	}

	return New(dbType, db, dialect, log), nil
}

// New wraps an already opened *sql.DB.
func New(dbType dbcapabilities.DatabaseID, db *sql.DB, dialect Dialect, log *logger.Logger) *Session {
	if log == nil {
		log = logger.Nop()
	}
	return &Session{
		id:      uuid.NewString(),
		dbType:  dbType,
		db:      db,
		dialect: dialect,
		log:     log,
	}
}

func (s *Session) ID() string                      { return s.id }
func (s *Session) Type() dbcapabilities.DatabaseID { return s.dbType }
func (s *Session) Raw() any                        { return s.db }

// DB returns the underlying handle.
func (s *Session) DB() *sql.DB {
	return s.db
}

// Dialect returns the dialect the session renders SQL with.
func (s *Session) Dialect() Dialect {
	return s.dialect
}

// Close closes the underlying handle.
func (s *Session) Close() error {
	return s.db.Close()
}

var rowKeywords = map[string]bool{
	"SELECT":   true,
	"WITH":     true,
	"SHOW":     true,
	"DESCRIBE": true,
	"DESC":     true,
	"EXPLAIN":  true,
	"PRAGMA":   true,
	"VALUES":   true,
	"TABLE":    true,
	"LIST":     true,
}

// ReturnsRows reports whether a statement is a read, judged by its first
// keyword after comments and opening parentheses. Writes may still return
// rows through RETURNING, OUTPUT or CALL; RunStatement checks their columns.
func ReturnsRows(text string) bool {
	return rowKeywords[leadingKeyword(text)]
}

func leadingKeyword(text string) string {
	s := text
	for {
		s = strings.TrimLeft(s, " \t\r\n(")
		switch {
		case strings.HasPrefix(s, "--"):
			if i := strings.IndexByte(s, '\n'); i >= 0 {
				s = s[i+1:]
				continue
			}
			return ""
		case strings.HasPrefix(s, "/*"):
			if i := strings.Index(s, "*/"); i >= 0 {
				s = s[i+2:]
				continue
			}
			return ""
		}
		break
	}
	end := strings.IndexFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r == '_')
	})
	if end < 0 {
		end = len(s)
	}
	return strings.ToUpper(s[:end])
}

// RunStatement returns the fetched rows of any statement that produces a
// result set, or nil when it produces none. Statements that do not start
// with a read keyword run in a transaction that is committed after their
// rows are read.
func (s *Session) RunStatement(ctx context.Context, text string) ([]connector.Row, error) {
	if ReturnsRows(text) {
		rows, err := s.db.QueryContext(ctx, text)
		if err != nil {
			return nil, connector.NewDatabaseError(s.dbType, "run statement", err)
		}
		out, _, err := collect(rows)
		if err != nil {
			return nil, connector.NewDatabaseError(s.dbType, "run statement", err)
		}
		if out == nil {
			out = []connector.Row{}
		}
		return out, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, connector.NewDatabaseError(s.dbType, "begin transaction", err)
	}
	rows, err := tx.QueryContext(ctx, text)
	if err != nil {
		tx.Rollback()
		return nil, connector.NewDatabaseError(s.dbType, "run statement", err)
	}
	out, hasResult, err := collect(rows)
	if err != nil {
		tx.Rollback()
		return nil, connector.NewDatabaseError(s.dbType, "run statement", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, connector.NewDatabaseError(s.dbType, "commit", err)
	}
	if !hasResult {
		return nil, nil
	}
	if out == nil {
		out = []connector.Row{}
	}
	return out, nil
}

// collect drains and closes rows. hasResult is false when the statement
// produced no columns.
func collect(rows *sql.Rows) (out []connector.Row, hasResult bool, err error) {
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, false, err
	}
	for rows.Next() {
		row, err := scanRow(rows, len(cols))
		if err != nil {
			return nil, false, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	return out, len(cols) > 0, nil
}

func scanRow(rows *sql.Rows, n int) (connector.Row, error) {
	values := make([]any, n)
	ptrs := make([]any, n)
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}
	for i, v := range values {
		if b, ok := v.([]byte); ok {
			values[i] = string(b)
		}
	}
	return values, nil
}

// QueryToTable reads a query result into a table. With a positive chunkSize
// rows are read into chunks of that size which are then concatenated in order.
func (s *Session) QueryToTable(ctx context.Context, text string, chunkSize int) (*table.Table, error) {
	rows, err := s.db.QueryContext(ctx, text)
	if err != nil {
		return nil, connector.NewDatabaseError(s.dbType, "run query to table", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, connector.NewDatabaseError(s.dbType, "run query to table", err)
	}

	var chunks []*table.Table
	chunk := table.New(cols)
	for rows.Next() {
		row, err := scanRow(rows, len(cols))
		if err != nil {
			return nil, connector.NewDatabaseError(s.dbType, "run query to table", err)
		}
		chunk.Append(row)
		if chunkSize > 0 && chunk.Len() == chunkSize {
			chunks = append(chunks, chunk)
			chunk = table.New(cols)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, connector.NewDatabaseError(s.dbType, "run query to table", err)
	}
	if !chunk.Empty() || len(chunks) == 0 {
		chunks = append(chunks, chunk)
	}
	if len(chunks) > 1 {
		s.log.Debug("assembled %s result from %d chunks", s.dbType, len(chunks))
	}

	out := table.Concat(chunks...)
	if len(out.Columns) == 0 {
		out.Columns = cols
	}
	return out, nil
}

// TableExists checks for a table by selecting nothing from it.
func (s *Session) TableExists(ctx context.Context, name string) bool {
	rows, err := s.db.QueryContext(ctx, "SELECT 1 FROM "+s.dialect.QuoteName(name)+" WHERE 1=0")
	if err != nil {
		return false
	}
	rows.Close()
	return true
}

// BulkLoad writes t to the table name, inserting chunkSize rows per statement
// inside a single transaction.
func (s *Session) BulkLoad(ctx context.Context, t *table.Table, name string, chunkSize int, action connector.ExistsAction) error {
	if t.Empty() {
		return connector.NewDatabaseError(s.dbType, "bulk load table", fmt.Errorf("%w: nothing to write to %s", connector.ErrEmptyTable, name))
	}
	if len(t.Columns) == 0 {
		return connector.NewDatabaseError(s.dbType, "bulk load table", fmt.Errorf("%w: no columns to write to %s", connector.ErrEmptyTable, name))
	}

	exists := s.TableExists(ctx, name)
	create := !exists
	switch action {
	case connector.ExistsFail:
		if exists {
			return connector.NewDatabaseError(s.dbType, "bulk load table", fmt.Errorf("%w: %s", connector.ErrTableExists, name))
		}
	case connector.ExistsReplace:
		create = true
	case connector.ExistsAppend:
	default:
		return fmt.Errorf("%w: %q", connector.ErrInvalidExistsAction, action)
	}

	quoted := s.dialect.QuoteName(name)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return connector.NewDatabaseError(s.dbType, "begin transaction", err)
	}

	if exists && action == connector.ExistsReplace {
		if _, err := tx.ExecContext(ctx, "DROP TABLE "+quoted); err != nil {
			tx.Rollback()
			return connector.NewDatabaseError(s.dbType, "drop table", err).WithContext("table", name)
		}
	}
	if create {
		if _, err := tx.ExecContext(ctx, s.createStatement(quoted, t)); err != nil {
			tx.Rollback()
			return connector.NewDatabaseError(s.dbType, "create table", err).WithContext("table", name)
		}
	}

	batch := s.batchSize(chunkSize, len(t.Columns), t.Len())
	for start := 0; start < t.Len(); start += batch {
		end := start + batch
		if end > t.Len() {
			end = t.Len()
		}
		stmt, args := s.insertStatement(quoted, t.Columns, t.Rows[start:end])
		if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
			tx.Rollback()
			return connector.NewDatabaseError(s.dbType, "insert rows", err).WithContext("table", name).WithContext("offset", start)
		}
	}

	if err := tx.Commit(); err != nil {
		return connector.NewDatabaseError(s.dbType, "commit", err)
	}
	s.log.Debug("loaded %d rows into %s", t.Len(), name)
	return nil
}

func (s *Session) batchSize(chunkSize, columns, rows int) int {
	batch := rows
	if chunkSize > 0 && chunkSize < batch {
		batch = chunkSize
	}
	if limit := s.dialect.MaxParams / columns; limit > 0 && batch > limit {
		batch = limit
	}
	if batch < 1 {
		batch = 1
	}
	return batch
}

func (s *Session) createStatement(quoted string, t *table.Table) string {
	defs := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		var sample any
		for _, row := range t.Rows {
			if row[i] != nil {
				sample = row[i]
				break
			}
		}
		defs[i] = s.dialect.Quote(c) + " " + s.dialect.ColumnType(sample)
	}
	return "CREATE TABLE " + quoted + " (" + strings.Join(defs, ", ") + ")"
}

func (s *Session) insertStatement(quoted string, columns []string, rows [][]any) (string, []any) {
	var b strings.Builder
	cols := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = s.dialect.Quote(c)
	}
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES ", quoted, strings.Join(cols, ", "))

	args := make([]any, 0, len(rows)*len(columns))
	n := 1
	for r, row := range rows {
		if r > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for i := range columns {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(s.dialect.Placeholder(n))
			n++
			args = append(args, row[i])
		}
		b.WriteString(")")
	}
	return b.String(), args
}
