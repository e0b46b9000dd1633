// Package ddl defines a small, backend-agnostic model for the warehouse
// schema and helpers to render CREATE TABLE / CREATE INDEX statements from it.
//
// The model stays generic: columns carry a logical Kind rather than a SQL
// type, and each storage backend supplies the Kind-to-type mapping for its
// dialect. Identifiers are emitted as-is; the schema uses plain snake_case
// names that need no quoting in any supported dialect.
package ddl

import (
	"fmt"
	"strings"
)

// Kind is a logical column type mapped to a concrete SQL type per backend.
type Kind string

const (
	Integer Kind = "integer"
	Real    Kind = "real"
	Text    Kind = "text"
	Bool    Kind = "bool"
)

// ColumnDef describes a single column.
//
//   - Name: logical column name (unquoted)
//   - Kind: logical type, mapped through the backend's TypeFor
//   - Nullable: whether NULL is allowed
//   - PrimaryKey: whether the column is the primary key
//   - AutoIncrement: backend-assigned surrogate counter (implies PrimaryKey)
//   - Unique: single-column UNIQUE constraint
//   - Default: raw default expression
//   - References: "table(column)" foreign-key target, empty for none
type ColumnDef struct {
	Name          string
	Kind          Kind
	Nullable      bool
	PrimaryKey    bool
	AutoIncrement bool
	Unique        bool
	Default       string
	References    string
}

// IndexDef is a named secondary index over one or more columns.
type IndexDef struct {
	Name    string
	Columns []string
}

// TableDef holds a table name, its ordered columns, and secondary indexes.
type TableDef struct {
	Name    string
	Columns []ColumnDef
	Indexes []IndexDef
}

// TypeFor maps a logical Kind to a dialect SQL type. The second return value
// is the full column suffix for auto-increment primary keys, because dialects
// disagree on whether that is a type ("INTEGER PRIMARY KEY AUTOINCREMENT"),
// a pseudo-type ("BIGSERIAL PRIMARY KEY"), or a modifier ("BIGINT
// AUTO_INCREMENT PRIMARY KEY").
type TypeFor func(k Kind) string

// BuildCreateTableSQL renders one CREATE TABLE IF NOT EXISTS statement.
// autoPK is the dialect's full column definition suffix for an auto-increment
// primary key; it replaces type and constraints for that column.
func BuildCreateTableSQL(t TableDef, typeFor TypeFor, autoPK string) (string, error) {
	name := strings.TrimSpace(t.Name)
	if name == "" {
		return "", fmt.Errorf("ddl: table name must not be empty")
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("ddl: at least one column is required in table %s", name)
	}

	cols := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		cn := strings.TrimSpace(c.Name)
		if cn == "" {
			return "", fmt.Errorf("ddl: column with empty name in table %s", name)
		}

		var sb strings.Builder
		sb.WriteString(cn)
		sb.WriteByte(' ')

		if c.AutoIncrement {
			sb.WriteString(autoPK)
			cols = append(cols, sb.String())
			continue
		}

		sb.WriteString(typeFor(c.Kind))
		if c.PrimaryKey {
			sb.WriteString(" PRIMARY KEY")
		}
		if !c.Nullable && !c.PrimaryKey {
			sb.WriteString(" NOT NULL")
		}
		if c.Unique {
			sb.WriteString(" UNIQUE")
		}
		if def := strings.TrimSpace(c.Default); def != "" {
			sb.WriteString(" DEFAULT ")
			sb.WriteString(def)
		}
		if ref := strings.TrimSpace(c.References); ref != "" {
			sb.WriteString(" REFERENCES ")
			sb.WriteString(ref)
		}
		cols = append(cols, sb.String())
	}

	stmt := fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (\n  %s\n);",
		name,
		strings.Join(cols, ",\n  "),
	)
	return stmt, nil
}

// BuildCreateIndexSQL renders the CREATE INDEX IF NOT EXISTS statements for a
// table's secondary indexes.
func BuildCreateIndexSQL(t TableDef) ([]string, error) {
	stmts := make([]string, 0, len(t.Indexes))
	for _, idx := range t.Indexes {
		if strings.TrimSpace(idx.Name) == "" {
			return nil, fmt.Errorf("ddl: index with empty name on table %s", t.Name)
		}
		if len(idx.Columns) == 0 {
			return nil, fmt.Errorf("ddl: index %s has no columns", idx.Name)
		}
		stmts = append(stmts, fmt.Sprintf(
			"CREATE INDEX IF NOT EXISTS %s ON %s (%s);",
			idx.Name, t.Name, strings.Join(idx.Columns, ", "),
		))
	}
	return stmts, nil
}

// BuildDeleteSQL renders the bulk DELETE used by full-refresh loads.
func BuildDeleteSQL(table string) string {
	return fmt.Sprintf("DELETE FROM %s;", table)
}
