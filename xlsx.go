package themesheet

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Бэкенд XLSX поверх excelize. Единственный бэкенд с полным набором
// возможностей: диаграммы, условные форматы и проверки значений.

type xlsxWriter struct{}

func (xlsxWriter) caps() writerCaps {
	return writerCaps{charts: true, condFormats: true, validations: true}
}

func (xlsxWriter) write(doc *outDoc, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	styleIDs, err := xlsxRegisterStyles(f, doc)
	if err != nil {
		return err
	}

	for si, sheet := range doc.sheets {
		if si == 0 {
			if err := f.SetSheetName("Sheet1", sheet.name); err != nil {
				return err
			}
		} else {
			if _, err := f.NewSheet(sheet.name); err != nil {
				return err
			}
		}
		if err := xlsxSheet(f, styleIDs, sheet); err != nil {
			return fmt.Errorf("лист %q: %w", sheet.name, err)
		}
	}

	if err := xlsxNamedRanges(f, doc); err != nil {
		return err
	}
	if err := xlsxCharts(f, doc.charts); err != nil {
		return err
	}
	if err := xlsxCondFormats(f, styleIDs, doc.condFormats); err != nil {
		return err
	}
	if err := xlsxValidations(f, doc.validations); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("запись книги XLSX: %w", err)
	}
	return nil
}

// xlsxRegisterStyles регистрирует каждый стиль реестра ровно один раз и
// возвращает карту имя -> идентификатор excelize.
func xlsxRegisterStyles(f *excelize.File, doc *outDoc) (map[string]int, error) {
	ids := make(map[string]int, len(doc.styleOrder))
	for _, name := range doc.styleOrder {
		id, err := f.NewStyle(xlsxStyle(doc.styles[name]))
		if err != nil {
			return nil, fmt.Errorf("стиль %q: %w", name, err)
		}
		ids[name] = id
	}
	return ids, nil
}

func xlsxSheet(f *excelize.File, styleIDs map[string]int, sheet outSheet) error {
	for ci, col := range sheet.columns {
		if col.Width > 0 {
			cn := columnName(ci + 1)
			if err := f.SetColWidth(sheet.name, cn, cn, col.Width); err != nil {
				return err
			}
		}
	}

	for ri, row := range sheet.rows {
		rnum := ri + 1
		for _, c := range row.cells {
			if c.covered {
				continue
			}
			axis := columnName(c.col) + fmt.Sprintf("%d", rnum)
			if c.formula != "" {
				if err := f.SetCellFormula(sheet.name, axis, c.formula); err != nil {
					return err
				}
			} else if err := f.SetCellValue(sheet.name, axis, xlsxValue(c)); err != nil {
				return err
			}
			// Для объединения стиль растягивается на весь прямоугольник.
			end := axis
			if c.colspan > 1 || c.rowspan > 1 {
				end = columnName(c.col+c.colspan-1) + fmt.Sprintf("%d", rnum+c.rowspan-1)
				if err := f.MergeCell(sheet.name, axis, end); err != nil {
					return err
				}
			}
			if id, ok := styleIDs[c.style]; ok {
				if err := f.SetCellStyle(sheet.name, axis, end, id); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// xlsxValue выбирает записываемое значение: числовые типы идут числом,
// чтобы числовой формат стиля отработал на стороне книги; дата и булево —
// каноническим текстом, текст — как есть.
func xlsxValue(c outCell) any {
	switch c.typ {
	case TypeNumber, TypeCurrency, TypePercentage:
		if f, ok := toFloat(c.value); ok {
			return f
		}
	case TypeBoolean:
		if b, ok := c.value.(bool); ok {
			return b
		}
	}
	return stringify(c.value)
}

func xlsxNamedRanges(f *excelize.File, doc *outDoc) error {
	for _, nr := range doc.named {
		sheet := nr.Sheet
		if sheet == "" && len(doc.sheets) > 0 {
			// Диапазон уровня книги: адрес всё равно квалифицируется
			// первым листом, область видимости остаётся книжной.
			sheet = doc.sheets[0].name
		}
		dn := &excelize.DefinedName{
			Name: nr.Name,
			RefersTo: fmt.Sprintf("%s!$%s$%d:$%s$%d", sheet,
				columnName(nr.Start.Col), nr.Start.Row,
				columnName(nr.End.Col), nr.End.Row),
		}
		if nr.Sheet != "" {
			dn.Scope = nr.Sheet
		}
		if err := f.SetDefinedName(dn); err != nil {
			return fmt.Errorf("именованный диапазон %q: %w", nr.Name, err)
		}
	}
	return nil
}

var xlsxChartTypes = map[string]excelize.ChartType{
	"col":  excelize.Col,
	"line": excelize.Line,
	"pie":  excelize.Pie,
}

func xlsxCharts(f *excelize.File, charts []Chart) error {
	for _, ch := range charts {
		typ, ok := xlsxChartTypes[strings.ToLower(ch.Type)]
		if !ok {
			log.Printf("⚠️ Неизвестный тип диаграммы %q, диаграмма пропущена", ch.Type)
			continue
		}
		chart := &excelize.Chart{
			Type: typ,
			Series: []excelize.ChartSeries{{
				Name:       ch.Title,
				Categories: ch.Labels,
				Values:     ch.Series,
			}},
			Title: []excelize.RichTextRun{{Text: ch.Title}},
		}
		if err := f.AddChart(ch.Sheet, ch.Anchor, chart); err != nil {
			return fmt.Errorf("диаграмма %q: %w", ch.Title, err)
		}
	}
	return nil
}

func xlsxCondFormats(f *excelize.File, styleIDs map[string]int, rules []compiledCondFormat) error {
	for _, rule := range rules {
		if rule.criteria == "" {
			log.Printf("⚠️ Условный формат %q сложнее простого сравнения, бэкенд XLSX его пропускает", rule.When)
			continue
		}
		id, ok := styleIDs[rule.Style]
		if !ok {
			log.Printf("⚠️ Условный формат ссылается на неизвестный стиль %q — пропущен", rule.Style)
			continue
		}
		opts := []excelize.ConditionalFormatOptions{{
			Type:     "cell",
			Criteria: rule.criteria,
			Value:    rule.operand,
			Format:   &id,
		}}
		if err := f.SetConditionalFormat(rule.Sheet, rule.Range, opts); err != nil {
			return fmt.Errorf("условный формат %q: %w", rule.When, err)
		}
	}
	return nil
}

func xlsxValidations(f *excelize.File, validations []Validation) error {
	for _, v := range validations {
		dv := excelize.NewDataValidation(true)
		dv.Sqref = v.Range
		switch {
		case len(v.List) > 0:
			if err := dv.SetDropList(v.List); err != nil {
				return fmt.Errorf("проверка значений %q: %w", v.Range, err)
			}
		case v.Min != nil && v.Max != nil:
			if err := dv.SetRange(*v.Min, *v.Max,
				excelize.DataValidationTypeDecimal,
				excelize.DataValidationOperatorBetween); err != nil {
				return fmt.Errorf("проверка значений %q: %w", v.Range, err)
			}
		default:
			log.Printf("⚠️ Проверка значений %q без списка и без интервала — пропущена", v.Range)
			continue
		}
		if err := f.AddDataValidation(v.Sheet, dv); err != nil {
			return fmt.Errorf("проверка значений %q: %w", v.Range, err)
		}
	}
	return nil
}

// -----------------------------
// Перевод стилей
// -----------------------------

// Коды стилей линий excelize.
var xlsxBorderCodes = map[BorderStyle]int{
	BorderSolid:  1,
	BorderDashed: 3,
	BorderDotted: 4,
	BorderDouble: 6,
}

func xlsxStyle(cs CellStyle) *excelize.Style {
	st := &excelize.Style{
		Font: &excelize.Font{
			Family: cs.Font.Family,
			Size:   cs.Font.Size,
			Bold:   cs.Font.Weight == WeightBold,
			Italic: cs.Font.Italic,
			Color:  xlsxColor(cs.Font.Color),
		},
		Alignment: &excelize.Alignment{
			Horizontal: cs.AlignH,
			Vertical:   xlsxVAlign(cs.AlignV),
			WrapText:   cs.Wrap,
		},
	}
	if cs.Font.Underline {
		st.Font.Underline = "single"
	}
	// Белый фон в книге — отсутствие заливки.
	if cs.Background != "" && cs.Background != "#ffffff" {
		st.Fill = excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{xlsxColor(cs.Background)},
		}
	}
	for _, b := range []struct {
		side   string
		border Border
	}{
		{"top", cs.BorderTop},
		{"right", cs.BorderRight},
		{"bottom", cs.BorderBottom},
		{"left", cs.BorderLeft},
	} {
		if b.border.Style == BorderNone {
			continue
		}
		code := xlsxBorderCodes[b.border.Style]
		// Толстая сплошная линия повышается до medium.
		if b.border.Style == BorderSolid && b.border.Width > 1.5 {
			code = 2
		}
		st.Border = append(st.Border, excelize.Border{
			Type:  b.side,
			Color: xlsxColor(b.border.Color),
			Style: code,
		})
	}
	if cs.NumberFormat != "" {
		nf := cs.NumberFormat
		st.CustomNumFmt = &nf
	}
	return st
}

// xlsxColor приводит "#rrggbb" к форме без решётки, принятой excelize.
func xlsxColor(c Color) string {
	return strings.TrimPrefix(string(c), "#")
}

func xlsxVAlign(v string) string {
	if v == "middle" {
		return "center"
	}
	return v
}
