package themesheet

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// Движок рендеринга: потребляет спецификации листов (плюс необязательные
// тему, именованные диапазоны, диаграммы, условные форматы и проверки
// значений) и производит один самодостаточный документ. Один вызов — один
// синхронный проход; документ целиком собирается в памяти и записывается
// единственной финальной записью.

// RenderOptions — необязательные входы рендера.
type RenderOptions struct {
	Theme       *Theme
	NamedRanges []NamedRange
	Charts      []Chart
	CondFormats []CondFormat
	Validations []Validation

	// StrictStyles переключает политику для неразрешимого имени стиля
	// ячейки: false (по умолчанию) — тихий откат к стилю normal,
	// true — ошибка ErrUnknownStyle. Слой темы строг всегда; эта
	// асимметрия двух слоёв намеренная и вынесена в явный режим.
	StrictStyles bool
}

// Renderer собирает документ в памяти; Save записывает его в файл.
// Внешний API повторяет пару Render/Save шаблонного движка.
type Renderer struct {
	opts RenderOptions
	doc  *outDoc
}

// NewRenderer создаёт рендерер с данными опциями. Тема может быть nil:
// встроенный набор стилей по умолчанию гарантирует, что рендер не падает
// из-за одного лишь отсутствия темы.
func NewRenderer(opts RenderOptions) *Renderer {
	return &Renderer{opts: opts}
}

// RenderFile — однопроходная обёртка: собрать и сразу сохранить.
func RenderFile(sheets []Sheet, opts RenderOptions, destPath string) error {
	r := NewRenderer(opts)
	if err := r.Render(sheets); err != nil {
		return err
	}
	return r.Save(destPath)
}

// -----------------------------
// Промежуточная модель документа
// -----------------------------

// outCell — одна эмитированная позиция сетки. col — грид-колонка с
// единицы; covered помечает плейсхолдер, накрытый объединением в той же
// строке. Накрытые позиции последующих строк отдельных записей не имеют.
type outCell struct {
	col     int
	value   any
	display string
	typ     ValueType
	formula string
	style   string
	colspan int
	rowspan int
	covered bool
}

type outRow struct {
	cells []outCell
}

type outSheet struct {
	name    string
	columns []Column
	rows    []outRow
}

type outDoc struct {
	sheets []outSheet
	named  []NamedRange

	styles     map[string]CellStyle
	styleOrder []string

	charts      []Chart
	condFormats []compiledCondFormat
	validations []Validation
}

func (d *outDoc) registerStyle(name string, cs CellStyle) {
	if _, ok := d.styles[name]; !ok {
		d.styleOrder = append(d.styleOrder, name)
	}
	d.styles[name] = cs
}

// -----------------------------
// Сборка документа
// -----------------------------

// Render выполняет основной проход: реестр стилей, затем по одному
// листу. Повторный вызов начинает документ заново.
func (r *Renderer) Render(sheets []Sheet) error {
	doc := &outDoc{styles: make(map[string]CellStyle)}

	// Шаг 1: встроенные стили по умолчанию.
	for _, name := range defaultStyleOrder {
		doc.registerStyle(name, defaultStyles[name]())
	}

	// Шаг 2: стили темы; при совпадении имени тема побеждает.
	if t := r.opts.Theme; t != nil {
		for _, name := range t.StyleNames() {
			cs, err := t.Style(name)
			if err != nil {
				return fmt.Errorf("тема %q: %w", t.Name, err)
			}
			doc.registerStyle(name, cs)
		}
	}

	for i := range sheets {
		out, err := r.renderSheet(doc, &sheets[i])
		if err != nil {
			return fmt.Errorf("лист %q: %w", sheets[i].Name, err)
		}
		doc.sheets = append(doc.sheets, out)
	}

	// Пост-проходы никогда не блокируют эмиссию базовой сетки.
	doc.named = r.opts.NamedRanges
	doc.charts = r.opts.Charts
	doc.condFormats = compileCondFormats(r.opts.CondFormats)
	doc.validations = r.opts.Validations

	r.doc = doc
	return nil
}

// renderSheet эмитирует один лист. Множество накрытых позиций живёт
// ровно один проход листа и наружу не утекает.
func (r *Renderer) renderSheet(doc *outDoc, s *Sheet) (outSheet, error) {
	if err := s.validate(); err != nil {
		return outSheet{}, err
	}
	out := outSheet{name: s.Name, columns: s.Columns}
	covered := make(map[gridPos]bool)

	for ri, row := range s.Rows {
		rnum := ri + 1
		var or outRow
		col := 1
		for _, cell := range row.Cells {
			// Позиция, накрытая объединением из предыдущей строки,
			// пропускается целиком: отдельной записи у неё нет.
			for covered[gridPos{rnum, col}] {
				col++
			}
			styleName, err := r.resolveStyleName(doc, cell.Style, row.Style)
			if err != nil {
				return outSheet{}, err
			}
			oc := outCell{col: col, style: styleName}
			oc.colspan, oc.rowspan = cell.spans()

			typ := resolveValueType(cell, columnAt(s, col))
			if cell.Formula != "" {
				// Формула хранится текстом; тип задаёт лишь отображение
				// будущего результата, literal-значения нет.
				oc.formula = cell.Formula
				oc.typ = typ
			} else {
				oc.value, oc.typ = normalizeValue(cell.Value, typ)
				oc.display = displayValue(oc.value, oc.typ)
			}
			or.cells = append(or.cells, oc)

			if oc.colspan > 1 || oc.rowspan > 1 {
				for dr := 0; dr < oc.rowspan; dr++ {
					for dc := 0; dc < oc.colspan; dc++ {
						if dr == 0 && dc == 0 {
							continue
						}
						covered[gridPos{rnum + dr, col + dc}] = true
					}
				}
				// В текущей строке сразу эмитируются плейсхолдеры, чтобы
				// физическое число записей совпало с числом колонок.
				for dc := 1; dc < oc.colspan; dc++ {
					or.cells = append(or.cells, outCell{col: col + dc, covered: true})
				}
			}
			col += oc.colspan
		}
		out.rows = append(out.rows, or)
	}
	return out, nil
}

// resolveStyleName выбирает стиль позиции: переопределение ячейки ->
// переопределение строки -> normal. Неизвестное имя в нестрогом режиме
// деградирует к следующему кандидату (зеркало поблажек загрузчика),
// в строгом — ErrUnknownStyle.
func (r *Renderer) resolveStyleName(doc *outDoc, cellStyle, rowStyle string) (string, error) {
	for _, name := range []string{cellStyle, rowStyle} {
		if name == "" {
			continue
		}
		if _, ok := doc.styles[name]; ok {
			return name, nil
		}
		if r.opts.StrictStyles {
			return "", fmt.Errorf("%w: %q", ErrUnknownStyle, name)
		}
		log.Printf("⚠️ Стиль %q не найден, откат к normal", name)
	}
	return "normal", nil
}

// columnAt — объявленная колонка по грид-номеру, nil за границей.
func columnAt(s *Sheet, col int) *Column {
	if col >= 1 && col <= len(s.Columns) {
		return &s.Columns[col-1]
	}
	return nil
}

// -----------------------------
// Сохранение
// -----------------------------

// Save записывает собранный документ. Бэкенд выбирается по расширению:
// .xlsx — excelize, всё прочее — родной контейнер OpenDocument.
// Отсутствующие родительские каталоги создаются; существующий файл
// перезаписывается. Запись идёт во временный файл с переименованием,
// чтобы частично записанный результат никогда не выглядел успешным.
func (r *Renderer) Save(destPath string) error {
	if r.doc == nil {
		return fmt.Errorf("документ не собран: вызовите Render до Save")
	}
	var w docWriter
	switch strings.ToLower(filepath.Ext(destPath)) {
	case ".xlsx":
		w = xlsxWriter{}
	default:
		w = odsWriter{}
	}
	c := w.caps()
	if !c.charts && len(r.doc.charts) > 0 {
		log.Printf("⚠️ Бэкенд не поддерживает диаграммы: %d пропущено", len(r.doc.charts))
	}
	if !c.condFormats && len(r.doc.condFormats) > 0 {
		log.Printf("⚠️ Бэкенд не поддерживает условные форматы: %d пропущено", len(r.doc.condFormats))
	}
	if !c.validations && len(r.doc.validations) > 0 {
		log.Printf("⚠️ Бэкенд не поддерживает проверки значений: %d пропущено", len(r.doc.validations))
	}

	dir := filepath.Dir(destPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("создание каталога %q: %w", dir, err)
		}
	}
	tmp, err := os.CreateTemp(dir, ".themesheet-*")
	if err != nil {
		return fmt.Errorf("временный файл: %w", err)
	}
	if err := w.write(r.doc, tmp); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), destPath); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}

// -----------------------------
// Стили по умолчанию движка
// -----------------------------

// Фиксированный набор регистрируется до темы, чтобы рендер не падал
// из-за одного лишь отсутствия темы.
var defaultStyleOrder = []string{
	"normal", "header", "currency", "date", "warning", "success", "total",
}

var defaultStyles = map[string]func() CellStyle{
	"normal": defaultCellStyle,
	"header": func() CellStyle {
		cs := defaultCellStyle()
		cs.Font.Weight = WeightBold
		cs.Font.Color = Color("#ffffff")
		cs.Background = Color("#4472c4")
		cs.AlignH = "center"
		cs.BorderBottom = Border{Width: 1, Style: BorderSolid, Color: Color("#cccccc")}
		return cs
	},
	"currency": func() CellStyle {
		cs := defaultCellStyle()
		cs.AlignH = "right"
		cs.NumberFormat = "$#,##0.00"
		return cs
	},
	"date": func() CellStyle {
		cs := defaultCellStyle()
		cs.NumberFormat = "yyyy-mm-dd"
		return cs
	},
	"warning": func() CellStyle {
		cs := defaultCellStyle()
		cs.Font.Color = Color("#e65100")
		cs.Background = Color("#fff3e0")
		return cs
	},
	"success": func() CellStyle {
		cs := defaultCellStyle()
		cs.Font.Color = Color("#2e7d32")
		cs.Background = Color("#e8f5e9")
		return cs
	},
	"total": func() CellStyle {
		cs := defaultCellStyle()
		cs.Font.Weight = WeightBold
		cs.AlignH = "right"
		cs.NumberFormat = "$#,##0.00"
		cs.BorderTop = Border{Width: 1, Style: BorderDouble, Color: Color("#000000")}
		return cs
	},
}
