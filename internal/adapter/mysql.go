package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	_ "github.com/go-sql-driver/mysql"

	"table-profiler/internal/table"
)

// MySQLAdapter MySQL 适配器
type MySQLAdapter struct {
	db     *sql.DB
	schema string
}

// NewMySQLAdapter 创建 MySQL 适配器
func NewMySQLAdapter(connStr, schema string) (*MySQLAdapter, error) {
	db, err := sql.Open("mysql", connStr)
	if err != nil {
		return nil, errors.Wrap(err, "open mysql")
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "ping mysql")
	}
	return &MySQLAdapter{db: db, schema: schema}, nil
}

// IntrospectSchema 获取元数据
func (a *MySQLAdapter) IntrospectSchema(ctx context.Context) (*SchemaMetadata, error) {
	tables, err := a.getTables(ctx)
	if err != nil {
		return nil, err
	}

	for i := range tables {
		columns, err := a.getColumns(ctx, tables[i].Name)
		if err != nil {
			return nil, err
		}
		tables[i].Columns = columns
	}

	return &SchemaMetadata{Tables: tables}, nil
}

func (a *MySQLAdapter) getTables(ctx context.Context) ([]Table, error) {
	query := `
		SELECT TABLE_NAME
		FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_SCHEMA = ? AND TABLE_TYPE = 'BASE TABLE'
		ORDER BY TABLE_NAME
	`
	rows, err := a.db.QueryContext(ctx, query, a.schema)
	if err != nil {
		return nil, errors.Wrap(err, "list tables")
	}
	defer rows.Close()

	var tables []Table
	for rows.Next() {
		t := Table{Schema: a.schema}
		if err := rows.Scan(&t.Name); err != nil {
			return nil, errors.Wrap(err, "scan table")
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

func (a *MySQLAdapter) getColumns(ctx context.Context, table string) ([]Column, error) {
	query := `
		SELECT
			COLUMN_NAME,
			DATA_TYPE,
			COALESCE(CHARACTER_MAXIMUM_LENGTH, 0),
			IS_NULLABLE = 'YES',
			COLUMN_KEY = 'PRI'
		FROM INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
		ORDER BY ORDINAL_POSITION
	`
	rows, err := a.db.QueryContext(ctx, query, a.schema, table)
	if err != nil {
		return nil, errors.Wrapf(err, "describe %s", table)
	}
	defer rows.Close()

	var columns []Column
	for rows.Next() {
		var c Column
		if err := rows.Scan(&c.Name, &c.DataType, &c.Length, &c.Nullable, &c.IsPrimaryKey); err != nil {
			return nil, errors.Wrap(err, "scan column")
		}
		columns = append(columns, c)
	}
	return columns, rows.Err()
}

// EstimateRowCount 估算行数
func (a *MySQLAdapter) EstimateRowCount(ctx context.Context, table string) (int64, error) {
	query := `
		SELECT TABLE_ROWS
		FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
	`
	var count sql.NullInt64
	if err := a.db.QueryRowContext(ctx, query, a.schema, table).Scan(&count); err != nil {
		return 0, errors.Wrapf(err, "estimate rows of %s", table)
	}
	if !count.Valid {
		return 0, nil
	}
	return count.Int64, nil
}

// LoadTable 读取表数据
func (a *MySQLAdapter) LoadTable(ctx context.Context, name string, limit int) (*table.Table, error) {
	columns, err := a.getColumns(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, errors.Errorf("table %s.%s not found", a.schema, name)
	}

	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = quoteMySQL(c.Name)
	}
	query := fmt.Sprintf("SELECT %s FROM %s.%s", strings.Join(names, ", "), quoteMySQL(a.schema), quoteMySQL(name))
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	return loadRows(ctx, a.db, query, columns)
}

// Close 关闭连接
func (a *MySQLAdapter) Close() error {
	return a.db.Close()
}

func quoteMySQL(ident string) string {
	return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
}
