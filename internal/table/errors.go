package table

import "github.com/go-faster/errors"

var (
	// ErrInvalidInput 表结构不合法（列长度不一致、类型不匹配等）
	ErrInvalidInput = errors.New("invalid input")

	// ErrColumnNotFound 列不存在
	ErrColumnNotFound = errors.New("column not found")
)
