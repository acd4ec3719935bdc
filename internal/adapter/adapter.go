package adapter

import (
	"context"
	"database/sql"
	"strings"

	"github.com/go-faster/errors"

	"table-profiler/internal/table"
)

// DBAdapter 数据库适配器接口
type DBAdapter interface {
	// IntrospectSchema 获取元数据
	IntrospectSchema(ctx context.Context) (*SchemaMetadata, error)

	// EstimateRowCount 估算行数
	EstimateRowCount(ctx context.Context, name string) (int64, error)

	// LoadTable 读取表数据，limit 为 0 时读取全部
	LoadTable(ctx context.Context, name string, limit int) (*table.Table, error)

	// Close 关闭连接
	Close() error
}

// SchemaMetadata 元数据
type SchemaMetadata struct {
	Tables []Table
}

// Table 表信息
type Table struct {
	Schema  string
	Name    string
	Columns []Column
}

// Column 列信息
type Column struct {
	Name         string
	DataType     string
	Length       int
	Nullable     bool
	IsPrimaryKey bool
}

// Kind 列对应的元素类型
func (c Column) Kind() table.Kind {
	return KindForType(c.DataType)
}

// NewAdapter 按数据库类型创建适配器
func NewAdapter(dbType, connStr, schema string) (DBAdapter, error) {
	switch dbType {
	case "sqlserver":
		return NewSQLServerAdapter(connStr, schema)
	case "mysql":
		if schema == "" {
			return nil, errors.New("mysql requires schema")
		}
		return NewMySQLAdapter(connStr, schema)
	}
	return nil, errors.Errorf("unsupported database type %q", dbType)
}

var (
	intTypes = map[string]bool{
		"int": true, "integer": true, "bigint": true, "smallint": true, "tinyint": true, "mediumint": true,
	}
	floatTypes = map[string]bool{
		"float": true, "double": true, "real": true, "decimal": true, "numeric": true,
		"money": true, "smallmoney": true,
	}
	stringTypes = map[string]bool{
		"varchar": true, "nvarchar": true, "char": true, "nchar": true, "text": true, "ntext": true,
		"tinytext": true, "mediumtext": true, "longtext": true,
	}
	categoryTypes = map[string]bool{
		"enum": true, "set": true,
	}
	timeTypes = map[string]bool{
		"date": true, "datetime": true, "datetime2": true, "smalldatetime": true,
		"datetimeoffset": true, "timestamp": true,
	}
)

// KindForType SQL 数据类型映射为列类型
func KindForType(dataType string) table.Kind {
	t := strings.ToLower(strings.TrimSpace(dataType))
	if i := strings.IndexAny(t, "( "); i > 0 {
		t = t[:i]
	}
	switch {
	case intTypes[t]:
		return table.KindInt
	case floatTypes[t]:
		return table.KindFloat
	case stringTypes[t]:
		return table.KindText
	case categoryTypes[t]:
		return table.KindCategory
	case timeTypes[t]:
		return table.KindTime
	}
	return table.KindObject
}

// loadRows 执行查询并按列类型转换为表
func loadRows(ctx context.Context, db *sql.DB, query string, columns []Column) (*table.Table, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "query rows")
	}
	defer rows.Close()

	cols := make([]*table.Column, len(columns))
	for i, c := range columns {
		cols[i] = &table.Column{Name: c.Name, Kind: c.Kind()}
	}

	raw := make([]any, len(columns))
	dest := make([]any, len(columns))
	for i := range raw {
		dest[i] = &raw[i]
	}

	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, errors.Wrap(err, "scan row")
		}
		for i, c := range cols {
			v, err := convertValue(c.Kind, raw[i])
			if err != nil {
				return nil, errors.Wrapf(err, "column %q", c.Name)
			}
			c.Values = append(c.Values, v)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate rows")
	}

	return table.NewTable(cols...)
}
