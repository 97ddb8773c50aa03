package themesheet

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
)

// Каждое literal-значение нормализуется ровно к одному каноническому типу
// для хранения и, независимо, к строке отображения. Подсказка колонки
// действует, если ячейка не переопределила тип явно.

// resolveValueType: переопределение ячейки -> подсказка колонки -> вывод
// из Go-типа значения.
func resolveValueType(c Cell, col *Column) ValueType {
	if c.Type != TypeUnset {
		return c.Type
	}
	if col != nil && col.Type != TypeUnset {
		return col.Type
	}
	return inferValueType(c.Value)
}

func inferValueType(v any) ValueType {
	switch v.(type) {
	case nil:
		return TypeText
	case bool:
		return TypeBoolean
	case time.Time:
		return TypeDate
	case int, int32, int64, float32, float64:
		return TypeNumber
	default:
		return TypeText
	}
}

// normalizeValue приводит значение к форме хранения канонического типа:
// числовые типы — float64, дата — "2006-01-02", булево — bool, текст —
// строка. Непреобразуемое значение деградирует к тексту.
func normalizeValue(v any, t ValueType) (any, ValueType) {
	if v == nil {
		return "", TypeText
	}
	switch t {
	case TypeNumber, TypeCurrency, TypePercentage:
		if f, ok := toFloat(v); ok {
			return f, t
		}
	case TypeDate:
		switch d := v.(type) {
		case time.Time:
			return d.Format("2006-01-02"), t
		case string:
			return d, t
		}
	case TypeBoolean:
		switch b := v.(type) {
		case bool:
			return b, t
		case string:
			if p, err := strconv.ParseBool(b); err == nil {
				return p, t
			}
		}
	}
	return stringify(v), TypeText
}

// displayValue строит строку отображения для нормализованного значения.
func displayValue(v any, t ValueType) string {
	switch t {
	case TypeCurrency:
		f, _ := toFloat(v)
		return "$" + humanize.FormatFloat("#,###.##", f)
	case TypePercentage:
		f, _ := toFloat(v)
		return fmt.Sprintf("%.1f%%", f*100)
	case TypeDate:
		return fmt.Sprintf("%v", v)
	case TypeBoolean:
		if b, ok := v.(bool); ok && b {
			return "true"
		}
		return "false"
	case TypeNumber:
		f, _ := toFloat(v)
		return stringify(f)
	default:
		return stringify(v)
	}
}

func toFloat(v any) (float64, bool) {
	switch vv := v.(type) {
	case float64:
		return vv, true
	case float32:
		return float64(vv), true
	case int:
		return float64(vv), true
	case int32:
		return float64(vv), true
	case int64:
		return float64(vv), true
	case string:
		f, err := strconv.ParseFloat(vv, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// stringify — предсказуемое строковое представление: целые float без
// дробной части, остальное через %v.
func stringify(v any) string {
	switch vv := v.(type) {
	case nil:
		return ""
	case string:
		return vv
	case float64:
		if vv == float64(int64(vv)) {
			return strconv.FormatInt(int64(vv), 10)
		}
		return strconv.FormatFloat(vv, 'f', -1, 64)
	case bool:
		if vv {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", vv)
	}
}
