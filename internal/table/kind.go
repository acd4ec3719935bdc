package table

import (
	"fmt"
	"strings"

	"github.com/go-faster/errors"
)

// Kind 列元素类型
type Kind int

const (
	KindObject   Kind = iota // 任意值
	KindText                 // string
	KindInt                  // int64
	KindFloat                // float64
	KindTime                 // time.Time
	KindCategory             // string 标签
)

var kindNames = map[Kind]string{
	KindObject:   "object",
	KindText:     "text",
	KindInt:      "int64",
	KindFloat:    "float64",
	KindTime:     "datetime",
	KindCategory: "category",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// IsVariable 变长类型（深度统计内存时需要检查内容）
func (k Kind) IsVariable() bool {
	return k == KindText || k == KindObject
}

// MarshalText 序列化为类型名
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText 从类型名解析
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind 解析类型名
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return KindObject, errors.Wrapf(ErrInvalidInput, "unknown kind %q", s)
}
