package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/denisenkom/go-mssqldb"
	"github.com/go-faster/errors"

	"table-profiler/internal/table"
)

// SQLServerAdapter SQL Server 适配器
type SQLServerAdapter struct {
	db     *sql.DB
	schema string
}

// NewSQLServerAdapter 创建 SQL Server 适配器，schema 为空时使用 dbo
func NewSQLServerAdapter(connStr, schema string) (*SQLServerAdapter, error) {
	db, err := sql.Open("sqlserver", connStr)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlserver")
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "ping sqlserver")
	}
	if schema == "" {
		schema = "dbo"
	}
	return &SQLServerAdapter{db: db, schema: schema}, nil
}

// IntrospectSchema 获取元数据
func (a *SQLServerAdapter) IntrospectSchema(ctx context.Context) (*SchemaMetadata, error) {
	tables, err := a.getTables(ctx)
	if err != nil {
		return nil, err
	}

	for i := range tables {
		columns, err := a.getColumns(ctx, tables[i].Schema, tables[i].Name)
		if err != nil {
			return nil, err
		}
		tables[i].Columns = columns
	}

	return &SchemaMetadata{Tables: tables}, nil
}

func (a *SQLServerAdapter) getTables(ctx context.Context) ([]Table, error) {
	query := `
		SELECT TABLE_SCHEMA, TABLE_NAME
		FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_TYPE = 'BASE TABLE'
		ORDER BY TABLE_SCHEMA, TABLE_NAME
	`
	rows, err := a.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "list tables")
	}
	defer rows.Close()

	var tables []Table
	for rows.Next() {
		var t Table
		if err := rows.Scan(&t.Schema, &t.Name); err != nil {
			return nil, errors.Wrap(err, "scan table")
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

func (a *SQLServerAdapter) getColumns(ctx context.Context, schema, table string) ([]Column, error) {
	query := `
		SELECT
			c.COLUMN_NAME,
			c.DATA_TYPE,
			COALESCE(c.CHARACTER_MAXIMUM_LENGTH, 0) as LENGTH,
			CASE WHEN c.IS_NULLABLE = 'YES' THEN 1 ELSE 0 END as NULLABLE,
			CASE WHEN pk.COLUMN_NAME IS NOT NULL THEN 1 ELSE 0 END as IS_PK
		FROM INFORMATION_SCHEMA.COLUMNS c
		LEFT JOIN (
			SELECT ku.TABLE_SCHEMA, ku.TABLE_NAME, ku.COLUMN_NAME
			FROM INFORMATION_SCHEMA.TABLE_CONSTRAINTS tc
			JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE ku
				ON tc.CONSTRAINT_NAME = ku.CONSTRAINT_NAME
			WHERE tc.CONSTRAINT_TYPE = 'PRIMARY KEY'
		) pk ON c.TABLE_SCHEMA = pk.TABLE_SCHEMA
			AND c.TABLE_NAME = pk.TABLE_NAME
			AND c.COLUMN_NAME = pk.COLUMN_NAME
		WHERE c.TABLE_SCHEMA = @p1 AND c.TABLE_NAME = @p2
		ORDER BY c.ORDINAL_POSITION
	`
	rows, err := a.db.QueryContext(ctx, query, schema, table)
	if err != nil {
		return nil, errors.Wrapf(err, "describe %s.%s", schema, table)
	}
	defer rows.Close()

	var columns []Column
	for rows.Next() {
		var c Column
		var nullable, isPK int
		if err := rows.Scan(&c.Name, &c.DataType, &c.Length, &nullable, &isPK); err != nil {
			return nil, errors.Wrap(err, "scan column")
		}
		c.Nullable = nullable == 1
		c.IsPrimaryKey = isPK == 1
		columns = append(columns, c)
	}
	return columns, rows.Err()
}

// EstimateRowCount 估算行数
func (a *SQLServerAdapter) EstimateRowCount(ctx context.Context, table string) (int64, error) {
	query := `
		SELECT SUM(p.rows)
		FROM sys.partitions p
		JOIN sys.tables t ON p.object_id = t.object_id
		WHERE t.name = @p1 AND p.index_id IN (0,1)
	`
	var count sql.NullInt64
	if err := a.db.QueryRowContext(ctx, query, table).Scan(&count); err != nil {
		return 0, errors.Wrapf(err, "estimate rows of %s", table)
	}
	if !count.Valid {
		return 0, nil
	}
	return count.Int64, nil
}

// LoadTable 读取表数据
func (a *SQLServerAdapter) LoadTable(ctx context.Context, name string, limit int) (*table.Table, error) {
	columns, err := a.getColumns(ctx, a.schema, name)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, errors.Errorf("table %s.%s not found", a.schema, name)
	}

	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = quoteSQLServer(c.Name)
	}
	top := ""
	if limit > 0 {
		top = fmt.Sprintf("TOP (%d) ", limit)
	}
	query := fmt.Sprintf("SELECT %s%s FROM %s.%s", top, strings.Join(names, ", "), quoteSQLServer(a.schema), quoteSQLServer(name))

	return loadRows(ctx, a.db, query, columns)
}

// Close 关闭连接
func (a *SQLServerAdapter) Close() error {
	return a.db.Close()
}

func quoteSQLServer(ident string) string {
	return "[" + strings.ReplaceAll(ident, "]", "]]") + "]"
}
