package themesheet

import (
	"log"
	"regexp"

	expro "github.com/expr-lang/expr"
)

// Необязательные пост-проходы поверх базовой сетки. Контракт ядра —
// принять списки и выполнить проход по мере возможностей бэкенда; сетка,
// стили и объединения от этого не зависят.

// Chart — декларация диаграммы.
type Chart struct {
	Sheet  string
	Type   string // col | line | pie
	Title  string
	Series string // диапазон значений, например "Budget!$B$2:$B$6"
	Labels string // диапазон подписей категорий
	Anchor string // ячейка привязки, например "E2"
}

// Validation — проверка значений для диапазона: либо выпадающий список,
// либо десятичный интервал.
type Validation struct {
	Sheet string
	Range string
	List  []string
	Min   *float64
	Max   *float64
}

// CondFormat — правило условного форматирования. When — выражение в
// синтаксисе expr над переменной value; Style — имя зарегистрированного
// стиля документа.
type CondFormat struct {
	Sheet string
	Range string
	When  string
	Style string
}

type compiledCondFormat struct {
	CondFormat
	// Трансляция простого сравнения "value <оп> <число>" для бэкендов,
	// понимающих только табличные критерии. Пустой criteria — правило
	// не транслируется.
	criteria string
	operand  string
}

var rxSimpleCompare = regexp.MustCompile(`^\s*value\s*(<=|>=|==|!=|<|>)\s*(-?\d+(?:\.\d+)?)\s*$`)

var condCriteria = map[string]string{
	"<":  "less than",
	"<=": "less than or equal to",
	">":  "greater than",
	">=": "greater than or equal to",
	"==": "equal to",
	"!=": "not equal to",
}

// compileCondFormats проверяет каждое правило компиляцией выражения.
// Некомпилируемое правило пропускается с предупреждением — поблажка
// распространяется на пост-проход, но никогда на базовую сетку.
func compileCondFormats(rules []CondFormat) []compiledCondFormat {
	if len(rules) == 0 {
		return nil
	}
	env := map[string]any{"value": float64(0)}
	out := make([]compiledCondFormat, 0, len(rules))
	for _, rule := range rules {
		if _, err := expro.Compile(rule.When, expro.Env(env)); err != nil {
			log.Printf("⚠️ Условный формат %q не компилируется: %v — пропущен", rule.When, err)
			continue
		}
		c := compiledCondFormat{CondFormat: rule}
		if m := rxSimpleCompare.FindStringSubmatch(rule.When); m != nil {
			c.criteria = condCriteria[m[1]]
			c.operand = m[2]
		}
		out = append(out, c)
	}
	return out
}
