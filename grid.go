package themesheet

import (
	"fmt"
	"strings"
)

// -----------------------------
// Типы значений
// -----------------------------

// ValueType — закрытое перечисление канонических типов значений.
// Расширяется только добавлением констант, без открытого наследования.
type ValueType int

const (
	// TypeUnset — тип не задан: ячейка наследует подсказку колонки.
	TypeUnset ValueType = iota
	TypeText
	TypeNumber
	TypeCurrency
	TypePercentage
	TypeDate
	TypeBoolean
)

func (vt ValueType) String() string {
	switch vt {
	case TypeText:
		return "text"
	case TypeNumber:
		return "number"
	case TypeCurrency:
		return "currency"
	case TypePercentage:
		return "percentage"
	case TypeDate:
		return "date"
	case TypeBoolean:
		return "boolean"
	default:
		return "unset"
	}
}

// ParseValueType разбирает имя типа из внешних описаний колонок.
func ParseValueType(s string) (ValueType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "string":
		return TypeText, nil
	case "number", "float", "decimal":
		return TypeNumber, nil
	case "currency", "money":
		return TypeCurrency, nil
	case "percentage", "percent":
		return TypePercentage, nil
	case "date", "datetime":
		return TypeDate, nil
	case "boolean", "bool":
		return TypeBoolean, nil
	default:
		return TypeUnset, fmt.Errorf("неизвестный тип значения %q", s)
	}
}

// -----------------------------
// Спецификация сетки
// -----------------------------

// Column — описание колонки: имя, ширина в условных символах, подсказка
// типа значения и необязательное имя стиля.
type Column struct {
	Name  string
	Width float64
	Type  ValueType
	Style string
}

// Cell — описание ячейки. Literal-значение и формула взаимоисключающи по
// смыслу: формула хранится как текст выражения и никогда не вычисляется;
// при её наличии сохранённого literal-значения нет, а разрешённый тип
// управляет только отображением будущего результата.
type Cell struct {
	Value   any
	Formula string
	Type    ValueType
	Style   string
	Colspan int
	Rowspan int
}

// spans возвращает нормализованные размеры прямоугольника ячейки (>= 1).
func (c Cell) spans() (cs, rs int) {
	cs, rs = c.Colspan, c.Rowspan
	if cs < 1 {
		cs = 1
	}
	if rs < 1 {
		rs = 1
	}
	return cs, rs
}

// Row — упорядоченные ячейки плюс необязательный стиль строки.
type Row struct {
	Cells []Cell
	Style string
}

// Sheet — имя, упорядоченные колонки и строки.
type Sheet struct {
	Name    string
	Columns []Column
	Rows    []Row
}

type gridPos struct{ row, col int }

// validate проверяет структурные инварианты листа: прямоугольник ни одной
// ячейки не накрывает начало или уже накрытую позицию другой ячейки, а
// занятая ширина строки не выходит за объявленные колонки. Пересечение —
// жёсткая ошибка.
func (s *Sheet) validate() error {
	covered := make(map[gridPos]bool)
	for ri, row := range s.Rows {
		r := ri + 1
		col := 1
		for ci, cell := range row.Cells {
			for covered[gridPos{r, col}] {
				col++
			}
			cs, rs := cell.spans()
			for dr := 0; dr < rs; dr++ {
				for dc := 0; dc < cs; dc++ {
					if dr == 0 && dc == 0 {
						continue
					}
					p := gridPos{r + dr, col + dc}
					if covered[p] {
						return fmt.Errorf("%w: лист %q, строка %d, ячейка %d, позиция (%d,%d)",
							ErrMergeOverlap, s.Name, r, ci+1, p.row, p.col)
					}
					covered[p] = true
				}
			}
			col += cs
		}
		if n := len(s.Columns); n > 0 && col-1 > n {
			return fmt.Errorf("лист %q: строка %d занимает %d позиций при %d объявленных колонках",
				s.Name, r, col-1, n)
		}
	}
	return nil
}

// -----------------------------
// Именованные диапазоны
// -----------------------------

// CellRef — позиция ячейки, колонка и строка с единицы.
type CellRef struct {
	Col int
	Row int
}

// A1 возвращает адрес в нотации A1.
func (r CellRef) A1() string {
	return columnName(r.Col) + fmt.Sprintf("%d", r.Row)
}

// columnName переводит номер колонки (с единицы) в буквенное имя.
func columnName(n int) string {
	if n < 1 {
		return ""
	}
	var b []byte
	for n > 0 {
		n--
		b = append([]byte{byte('A' + n%26)}, b...)
		n /= 26
	}
	return string(b)
}

// NamedRange — псевдоним прямоугольной области. Пустое имя листа означает
// область видимости всей книги.
type NamedRange struct {
	Name  string
	Sheet string
	Start CellRef
	End   CellRef
}

// Address строит адрес диапазона: с квалификатором листа для областей
// уровня листа, без него — для областей уровня книги.
func (nr NamedRange) Address() string {
	cells := fmt.Sprintf("$%s$%d:$%s$%d",
		columnName(nr.Start.Col), nr.Start.Row,
		columnName(nr.End.Col), nr.End.Row)
	if nr.Sheet == "" {
		return cells
	}
	return "$" + nr.Sheet + "." + cells
}
