package table

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// IsMissing 判断是否为缺失值（nil、NaN、零值时间）
func IsMissing(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case float64:
		return math.IsNaN(x)
	case float32:
		return math.IsNaN(float64(x))
	case time.Time:
		return x.IsZero()
	}
	return false
}

// normalize 统一整数/浮点宽度
func normalize(v any) any {
	switch x := v.(type) {
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case float32:
		return float64(x)
	}
	return v
}

// conforms 检查值的 Go 类型是否符合列类型
func conforms(k Kind, v any) bool {
	if IsMissing(v) {
		return true
	}
	switch k {
	case KindText, KindCategory:
		_, ok := v.(string)
		return ok
	case KindInt:
		_, ok := v.(int64)
		return ok
	case KindFloat:
		_, ok := v.(float64)
		return ok
	case KindTime:
		_, ok := v.(time.Time)
		return ok
	case KindObject:
		return true
	}
	return false
}

// Format 将非缺失值转为字符串
func Format(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case time.Time:
		if x.Nanosecond() != 0 {
			return x.Format("2006-01-02 15:04:05.999999999")
		}
		return x.Format("2006-01-02 15:04:05")
	case []byte:
		return string(x)
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}

// Key 返回可作为 map 键的值标识
func Key(v any) any {
	switch x := v.(type) {
	case string, int64, float64, bool:
		return x
	case time.Time:
		return timeKey{sec: x.Unix(), nsec: int32(x.Nanosecond())}
	}
	return fmt.Sprintf("%T\x00%v", v, v)
}

// timeKey 秒+纳秒，覆盖 UnixNano 无法表示的年份
type timeKey struct {
	sec  int64
	nsec int32
}

// JSONValue 将 JSON 无法编码的 ±Inf 转为字符串，其余原样返回
func JSONValue(v any) any {
	if x, ok := v.(float64); ok && math.IsInf(x, 0) {
		return Format(x)
	}
	return v
}

// Compare 比较同类值，ok 为 false 表示不可比较
func Compare(a, b any) (c int, ok bool) {
	switch x := a.(type) {
	case int64:
		if y, isInt := b.(int64); isInt {
			return cmpOrdered(x, y), true
		}
	case float64:
		if y, isFloat := b.(float64); isFloat {
			return cmpOrdered(x, y), true
		}
	case string:
		if y, isString := b.(string); isString {
			return cmpOrdered(x, y), true
		}
	case time.Time:
		if y, isTime := b.(time.Time); isTime {
			return x.Compare(y), true
		}
	}
	return 0, false
}

func cmpOrdered[T int64 | float64 | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
