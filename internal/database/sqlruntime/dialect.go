package sqlruntime

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// TypeMap names the column types used when a bulk load creates a table.
type TypeMap struct {
	Integer string
	Float   string
	Bool    string
	Time    string
	Bytes   string
	Text    string
}

// Dialect captures the SQL differences the runtime has to render.
type Dialect struct {
	Name string
	// Quote renders one identifier part.
	Quote func(ident string) string
	// Placeholder renders the n-th (1-based) bind parameter.
	Placeholder func(n int) string
	Types       TypeMap
	// MaxParams bounds the bind parameters of one INSERT statement.
	MaxParams int
}

var simpleIdent = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func doubleQuote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func backtick(ident string) string {
	return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
}

func bracket(ident string) string {
	return "[" + strings.ReplaceAll(ident, "]", "]]") + "]"
}

// quoteIfNeeded leaves simple identifiers unquoted so that backends which
// fold unquoted names to upper case resolve them the usual way.
func quoteIfNeeded(ident string) string {
	if simpleIdent.MatchString(ident) {
		return ident
	}
	return doubleQuote(ident)
}

func question(int) string { return "?" }

func dollar(n int) string { return "$" + strconv.Itoa(n) }

func atP(n int) string { return "@p" + strconv.Itoa(n) }

// Predefined dialects.
var (
	SQLite = Dialect{
		Name:        "sqlite",
		Quote:       doubleQuote,
		Placeholder: question,
		Types:       TypeMap{Integer: "INTEGER", Float: "REAL", Bool: "BOOLEAN", Time: "TIMESTAMP", Bytes: "BLOB", Text: "TEXT"},
		MaxParams:   32766,
	}

	Postgres = Dialect{
		Name:        "postgres",
		Quote:       doubleQuote,
		Placeholder: dollar,
		Types:       TypeMap{Integer: "BIGINT", Float: "DOUBLE PRECISION", Bool: "BOOLEAN", Time: "TIMESTAMP", Bytes: "BYTEA", Text: "TEXT"},
		MaxParams:   65535,
	}

	Redshift = Dialect{
		Name:        "redshift",
		Quote:       doubleQuote,
		Placeholder: dollar,
		Types:       TypeMap{Integer: "BIGINT", Float: "DOUBLE PRECISION", Bool: "BOOLEAN", Time: "TIMESTAMP", Bytes: "VARBYTE", Text: "VARCHAR(65535)"},
		MaxParams:   32767,
	}

	MySQL = Dialect{
		Name:        "mysql",
		Quote:       backtick,
		Placeholder: question,
		Types:       TypeMap{Integer: "BIGINT", Float: "DOUBLE", Bool: "BOOLEAN", Time: "DATETIME", Bytes: "LONGBLOB", Text: "TEXT"},
		MaxParams:   65535,
	}

	SQLServer = Dialect{
		Name:        "sqlserver",
		Quote:       bracket,
		Placeholder: atP,
		Types:       TypeMap{Integer: "BIGINT", Float: "FLOAT", Bool: "BIT", Time: "DATETIME2", Bytes: "VARBINARY(8000)", Text: "NVARCHAR(4000)"},
		MaxParams:   2000,
	}

	Snowflake = Dialect{
		Name:        "snowflake",
		Quote:       quoteIfNeeded,
		Placeholder: question,
		Types:       TypeMap{Integer: "NUMBER(38,0)", Float: "FLOAT", Bool: "BOOLEAN", Time: "TIMESTAMP_NTZ", Bytes: "BINARY", Text: "VARCHAR"},
		MaxParams:   16384,
	}

	DB2 = Dialect{
		Name:        "db2",
		Quote:       quoteIfNeeded,
		Placeholder: question,
		Types:       TypeMap{Integer: "BIGINT", Float: "DOUBLE", Bool: "BOOLEAN", Time: "TIMESTAMP", Bytes: "BLOB", Text: "VARCHAR(4000)"},
		MaxParams:   32767,
	}

	Databricks = Dialect{
		Name:        "databricks",
		Quote:       backtick,
		Placeholder: question,
		Types:       TypeMap{Integer: "BIGINT", Float: "DOUBLE", Bool: "BOOLEAN", Time: "TIMESTAMP", Bytes: "BINARY", Text: "STRING"},
		MaxParams:   256,
	}
)

// QuoteName quotes a possibly schema-qualified name part by part.
func (d Dialect) QuoteName(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = d.Quote(p)
	}
	return strings.Join(parts, ".")
}

// ColumnType returns the type for a Go value read from a table cell.
func (d Dialect) ColumnType(v any) string {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return d.Types.Integer
	case float32, float64:
		return d.Types.Float
	case bool:
		return d.Types.Bool
	case time.Time:
		return d.Types.Time
	case []byte:
		return d.Types.Bytes
	default:
		return d.Types.Text
	}
}
