package themesheet

import (
	"testing"
	"time"
)

func TestResolveValueTypePrecedence(t *testing.T) {
	col := &Column{Type: TypeCurrency}
	// Переопределение ячейки сильнее подсказки колонки.
	if got := resolveValueType(Cell{Value: 1.0, Type: TypePercentage}, col); got != TypePercentage {
		t.Errorf("ячейка: %v", got)
	}
	// Без переопределения действует колонка.
	if got := resolveValueType(Cell{Value: 1.0}, col); got != TypeCurrency {
		t.Errorf("колонка: %v", got)
	}
	// Без того и другого — вывод из Go-типа.
	if got := resolveValueType(Cell{Value: 1.0}, nil); got != TypeNumber {
		t.Errorf("вывод числа: %v", got)
	}
	if got := resolveValueType(Cell{Value: true}, nil); got != TypeBoolean {
		t.Errorf("вывод булева: %v", got)
	}
	if got := resolveValueType(Cell{Value: time.Now()}, nil); got != TypeDate {
		t.Errorf("вывод даты: %v", got)
	}
	if got := resolveValueType(Cell{Value: "hi"}, nil); got != TypeText {
		t.Errorf("вывод текста: %v", got)
	}
}

func TestNormalizeValue(t *testing.T) {
	if v, typ := normalizeValue(42, TypeNumber); v != 42.0 || typ != TypeNumber {
		t.Errorf("int -> float64: %v %v", v, typ)
	}
	if v, typ := normalizeValue("19.5", TypeCurrency); v != 19.5 || typ != TypeCurrency {
		t.Errorf("строка -> float64: %v %v", v, typ)
	}
	d := time.Date(2026, 3, 15, 14, 30, 0, 0, time.UTC)
	if v, typ := normalizeValue(d, TypeDate); v != "2026-03-15" || typ != TypeDate {
		t.Errorf("дата -> ISO: %v %v", v, typ)
	}
	if v, typ := normalizeValue("true", TypeBoolean); v != true || typ != TypeBoolean {
		t.Errorf("строка -> bool: %v %v", v, typ)
	}
	// Непреобразуемое значение деградирует к тексту.
	if v, typ := normalizeValue("abc", TypeNumber); v != "abc" || typ != TypeText {
		t.Errorf("деградация к тексту: %v %v", v, typ)
	}
	if v, typ := normalizeValue(nil, TypeNumber); v != "" || typ != TypeText {
		t.Errorf("nil: %v %v", v, typ)
	}
}

func TestDisplayValue(t *testing.T) {
	cases := []struct {
		v    any
		typ  ValueType
		want string
	}{
		{1234.56, TypeCurrency, "$1,234.56"},
		{100.0, TypeCurrency, "$100.00"},
		{1000000.0, TypeCurrency, "$1,000,000.00"},
		{0.123, TypePercentage, "12.3%"},
		{1.0, TypePercentage, "100.0%"},
		{"2026-03-15", TypeDate, "2026-03-15"},
		{true, TypeBoolean, "true"},
		{false, TypeBoolean, "false"},
		{42.0, TypeNumber, "42"},
		{42.5, TypeNumber, "42.5"},
		{"hello", TypeText, "hello"},
	}
	for _, c := range cases {
		if got := displayValue(c.v, c.typ); got != c.want {
			t.Errorf("displayValue(%v, %v) = %q, ожидалось %q", c.v, c.typ, got, c.want)
		}
	}
}

func TestParseValueTypeNames(t *testing.T) {
	for in, want := range map[string]ValueType{
		"text": TypeText, "NUMBER": TypeNumber, "money": TypeCurrency,
		"percent": TypePercentage, "date": TypeDate, "bool": TypeBoolean,
	} {
		got, err := ParseValueType(in)
		if err != nil || got != want {
			t.Errorf("ParseValueType(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseValueType("complex"); err == nil {
		t.Error("неизвестное имя типа должно быть ошибкой")
	}
}

func TestStringify(t *testing.T) {
	if stringify(3.0) != "3" || stringify(3.25) != "3.25" || stringify(nil) != "" {
		t.Fatal("stringify")
	}
}
