package adapter

import (
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"

	"table-profiler/internal/table"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// convertValue 驱动返回值转换为列类型的值
func convertValue(kind table.Kind, raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}
	if b, ok := raw.([]byte); ok {
		raw = string(b)
	}

	switch kind {
	case table.KindInt:
		switch v := raw.(type) {
		case int64:
			return v, nil
		case bool:
			if v {
				return int64(1), nil
			}
			return int64(0), nil
		case string:
			n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
			if err != nil {
				return nil, errors.Wrapf(table.ErrInvalidInput, "parse int %q", v)
			}
			return n, nil
		}
	case table.KindFloat:
		switch v := raw.(type) {
		case float64:
			return v, nil
		case float32:
			return float64(v), nil
		case int64:
			return float64(v), nil
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return nil, errors.Wrapf(table.ErrInvalidInput, "parse float %q", v)
			}
			return f, nil
		}
	case table.KindTime:
		switch v := raw.(type) {
		case time.Time:
			return v, nil
		case string:
			if ts, ok := parseTime(v); ok {
				return ts, nil
			}
			return nil, errors.Wrapf(table.ErrInvalidInput, "parse time %q", v)
		}
	case table.KindText, table.KindCategory:
		return table.Format(raw), nil
	case table.KindObject:
		return raw, nil
	}
	return nil, errors.Wrapf(table.ErrInvalidInput, "cannot convert %T to %s", raw, kind)
}

func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
