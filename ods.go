package themesheet

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// Родной бэкенд: контейнер OpenDocument Spreadsheet. Пишется вручную —
// zip с mimetype, манифестом и content.xml; XML-части смоделированы
// плоскими структурами encoding/xml. Диаграммы, условные форматы и
// проверки значений этим бэкендом не поддерживаются и пропускаются.

type odsWriter struct{}

func (odsWriter) caps() writerCaps { return writerCaps{} }

const odsMimetype = "application/vnd.oasis.opendocument.spreadsheet"

const odsManifest = `<?xml version="1.0" encoding="UTF-8"?>
<manifest:manifest xmlns:manifest="urn:oasis:names:tc:opendocument:xmlns:manifest:1.0" manifest:version="1.2">
 <manifest:file-entry manifest:full-path="/" manifest:media-type="application/vnd.oasis.opendocument.spreadsheet"/>
 <manifest:file-entry manifest:full-path="content.xml" manifest:media-type="text/xml"/>
 <manifest:file-entry manifest:full-path="styles.xml" manifest:media-type="text/xml"/>
</manifest:manifest>
`

const odsStylesXML = `<?xml version="1.0" encoding="UTF-8"?>
<office:document-styles xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0" xmlns:style="urn:oasis:names:tc:opendocument:xmlns:style:1.0" office:version="1.2">
 <office:styles/>
</office:document-styles>
`

// -----------------------------
// Модель content.xml
// -----------------------------

type odsContent struct {
	XMLName     xml.Name `xml:"office:document-content"`
	XMLNSOffice string   `xml:"xmlns:office,attr"`
	XMLNSTable  string   `xml:"xmlns:table,attr"`
	XMLNSText   string   `xml:"xmlns:text,attr"`
	XMLNSStyle  string   `xml:"xmlns:style,attr"`
	XMLNSFo     string   `xml:"xmlns:fo,attr"`
	Version     string   `xml:"office:version,attr"`

	AutoStyles odsAutoStyles `xml:"office:automatic-styles"`
	Body       odsBody       `xml:"office:body"`
}

type odsBody struct {
	Spreadsheet odsSpreadsheet `xml:"office:spreadsheet"`
}

type odsSpreadsheet struct {
	Tables []odsTable
	// Единый контейнер именованных диапазонов на документ; создаётся
	// лениво при первом диапазоне и никогда не дублируется.
	NamedExprs *odsNamedExpressions
}

type odsAutoStyles struct {
	Styles []odsStyle
}

type odsStyle struct {
	XMLName xml.Name `xml:"style:style"`
	Name    string   `xml:"style:name,attr"`
	Family  string   `xml:"style:family,attr"`

	ColumnProps *odsColumnProps `xml:"style:table-column-properties,omitempty"`
	CellProps   *odsCellProps   `xml:"style:table-cell-properties,omitempty"`
	ParaProps   *odsParaProps   `xml:"style:paragraph-properties,omitempty"`
	TextProps   *odsTextProps   `xml:"style:text-properties,omitempty"`
}

type odsColumnProps struct {
	ColumnWidth string `xml:"style:column-width,attr"`
}

type odsCellProps struct {
	BackgroundColor string `xml:"fo:background-color,attr,omitempty"`
	BorderTop       string `xml:"fo:border-top,attr,omitempty"`
	BorderRight     string `xml:"fo:border-right,attr,omitempty"`
	BorderBottom    string `xml:"fo:border-bottom,attr,omitempty"`
	BorderLeft      string `xml:"fo:border-left,attr,omitempty"`
	VerticalAlign   string `xml:"style:vertical-align,attr,omitempty"`
	WrapOption      string `xml:"fo:wrap-option,attr,omitempty"`
}

type odsParaProps struct {
	TextAlign string `xml:"fo:text-align,attr,omitempty"`
}

type odsTextProps struct {
	FontFamily string `xml:"fo:font-family,attr,omitempty"`
	FontSize   string `xml:"fo:font-size,attr,omitempty"`
	FontWeight string `xml:"fo:font-weight,attr,omitempty"`
	FontStyle  string `xml:"fo:font-style,attr,omitempty"`
	Color      string `xml:"fo:color,attr,omitempty"`
	Underline  string `xml:"style:text-underline-style,attr,omitempty"`
}

type odsTable struct {
	XMLName xml.Name `xml:"table:table"`
	Name    string   `xml:"table:name,attr"`
	Columns []odsTableColumn
	Rows    []odsTableRow
}

type odsTableColumn struct {
	XMLName          xml.Name `xml:"table:table-column"`
	StyleName        string   `xml:"table:style-name,attr,omitempty"`
	DefaultCellStyle string   `xml:"table:default-cell-style-name,attr,omitempty"`
}

type odsTableRow struct {
	XMLName xml.Name `xml:"table:table-row"`
	Cells   []any
}

type odsCell struct {
	XMLName   xml.Name `xml:"table:table-cell"`
	StyleName string   `xml:"table:style-name,attr,omitempty"`
	ValueType string   `xml:"office:value-type,attr,omitempty"`
	Value     string   `xml:"office:value,attr,omitempty"`
	Currency  string   `xml:"office:currency,attr,omitempty"`
	DateValue string   `xml:"office:date-value,attr,omitempty"`
	BoolValue string   `xml:"office:boolean-value,attr,omitempty"`
	Formula   string   `xml:"table:formula,attr,omitempty"`
	ColSpan   string   `xml:"table:number-columns-spanned,attr,omitempty"`
	RowSpan   string   `xml:"table:number-rows-spanned,attr,omitempty"`
	P         []odsP
}

type odsP struct {
	XMLName xml.Name `xml:"text:p"`
	Text    string   `xml:",chardata"`
}

type odsCoveredCell struct {
	XMLName xml.Name `xml:"table:covered-table-cell"`
}

type odsNamedExpressions struct {
	XMLName xml.Name `xml:"table:named-expressions"`
	Ranges  []odsNamedRange
}

type odsNamedRange struct {
	XMLName xml.Name `xml:"table:named-range"`
	Name    string   `xml:"table:name,attr"`
	Range   string   `xml:"table:cell-range-address,attr"`
}

// -----------------------------
// Сериализация
// -----------------------------

func (odsWriter) write(doc *outDoc, w io.Writer) error {
	content := odsContent{
		XMLNSOffice: "urn:oasis:names:tc:opendocument:xmlns:office:1.0",
		XMLNSTable:  "urn:oasis:names:tc:opendocument:xmlns:table:1.0",
		XMLNSText:   "urn:oasis:names:tc:opendocument:xmlns:text:1.0",
		XMLNSStyle:  "urn:oasis:names:tc:opendocument:xmlns:style:1.0",
		XMLNSFo:     "urn:oasis:names:tc:opendocument:xmlns:xsl-fo-compatible:1.0",
		Version:     "1.2",
	}

	for _, name := range doc.styleOrder {
		content.AutoStyles.Styles = append(content.AutoStyles.Styles, odsCellStyle(name, doc.styles[name]))
	}

	for si, sheet := range doc.sheets {
		table := odsTable{Name: sheet.name}
		for ci, col := range sheet.columns {
			tc := odsTableColumn{}
			if col.Width > 0 {
				styleName := fmt.Sprintf("co_%d_%d", si+1, ci+1)
				content.AutoStyles.Styles = append(content.AutoStyles.Styles, odsStyle{
					Name:        styleName,
					Family:      "table-column",
					ColumnProps: &odsColumnProps{ColumnWidth: fmt.Sprintf("%.3fcm", col.Width*0.21)},
				})
				tc.StyleName = styleName
			}
			if col.Style != "" {
				if _, ok := doc.styles[col.Style]; ok {
					tc.DefaultCellStyle = odsStyleName(col.Style)
				}
			}
			table.Columns = append(table.Columns, tc)
		}
		for _, row := range sheet.rows {
			table.Rows = append(table.Rows, odsRow(row))
		}
		content.Body.Spreadsheet.Tables = append(content.Body.Spreadsheet.Tables, table)
	}

	for _, nr := range doc.named {
		if content.Body.Spreadsheet.NamedExprs == nil {
			content.Body.Spreadsheet.NamedExprs = &odsNamedExpressions{}
		}
		content.Body.Spreadsheet.NamedExprs.Ranges = append(
			content.Body.Spreadsheet.NamedExprs.Ranges,
			odsNamedRange{Name: nr.Name, Range: nr.Address()},
		)
	}

	contentXML, err := xml.Marshal(content)
	if err != nil {
		return fmt.Errorf("сериализация content.xml: %w", err)
	}

	zw := zip.NewWriter(w)
	// mimetype обязан идти первой записью и храниться без сжатия.
	mt, err := zw.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store})
	if err != nil {
		return err
	}
	if _, err := mt.Write([]byte(odsMimetype)); err != nil {
		return err
	}
	parts := []struct {
		name string
		data []byte
	}{
		{"META-INF/manifest.xml", []byte(odsManifest)},
		{"styles.xml", []byte(odsStylesXML)},
		{"content.xml", append([]byte(xml.Header), contentXML...)},
	}
	for _, p := range parts {
		f, err := zw.Create(p.name)
		if err != nil {
			return err
		}
		if _, err := f.Write(p.data); err != nil {
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("запись контейнера ODS: %w", err)
	}
	return nil
}

// odsRow собирает строку: записи идут по своим грид-колонкам; разрыв в
// нумерации — позиция, накрытая объединением из предыдущей строки, на её
// месте эмитируется covered-ячейка, чтобы в физической сетке не было ни
// дубликатов, ни дыр.
func odsRow(row outRow) odsTableRow {
	out := odsTableRow{}
	next := 1
	for _, c := range row.cells {
		for next < c.col {
			out.Cells = append(out.Cells, odsCoveredCell{})
			next++
		}
		if c.covered {
			out.Cells = append(out.Cells, odsCoveredCell{})
			next++
			continue
		}
		out.Cells = append(out.Cells, odsDataCell(c))
		next++
	}
	return out
}

func odsDataCell(c outCell) odsCell {
	cell := odsCell{StyleName: odsStyleName(c.style)}
	if c.colspan > 1 {
		cell.ColSpan = strconv.Itoa(c.colspan)
	}
	if c.rowspan > 1 {
		cell.RowSpan = strconv.Itoa(c.rowspan)
	}

	switch c.typ {
	case TypeNumber:
		cell.ValueType = "float"
		if f, ok := toFloat(c.value); ok {
			cell.Value = strconv.FormatFloat(f, 'f', -1, 64)
		}
	case TypeCurrency:
		cell.ValueType = "currency"
		cell.Currency = "USD"
		if f, ok := toFloat(c.value); ok {
			cell.Value = strconv.FormatFloat(f, 'f', -1, 64)
		}
	case TypePercentage:
		cell.ValueType = "percentage"
		if f, ok := toFloat(c.value); ok {
			cell.Value = strconv.FormatFloat(f, 'f', -1, 64)
		}
	case TypeDate:
		cell.ValueType = "date"
		cell.DateValue = stringify(c.value)
	case TypeBoolean:
		cell.ValueType = "boolean"
		cell.BoolValue = stringify(c.value)
	default:
		cell.ValueType = "string"
	}

	if c.formula != "" {
		// Формула хранится литеральным текстом выражения; тип значения
		// задаёт лишь отображение будущего результата.
		cell.Formula = "of:=" + c.formula
		cell.Value, cell.Currency, cell.DateValue, cell.BoolValue = "", "", "", ""
		if c.typ == TypeCurrency {
			cell.Currency = "USD"
		}
		return cell
	}
	if c.display != "" {
		cell.P = []odsP{{Text: c.display}}
	}
	return cell
}

// odsCellStyle переводит разрешённый CellStyle в автоматический стиль.
func odsCellStyle(name string, cs CellStyle) odsStyle {
	family := cs.Font.Family
	if cs.Font.Fallback != "" {
		family += ", " + cs.Font.Fallback
	}
	text := &odsTextProps{
		FontFamily: family,
		FontSize:   fmt.Sprintf("%gpt", cs.Font.Size),
		Color:      string(cs.Font.Color),
	}
	switch cs.Font.Weight {
	case WeightBold:
		text.FontWeight = "bold"
	case WeightLight:
		text.FontWeight = "300"
	}
	if cs.Font.Italic {
		text.FontStyle = "italic"
	}
	if cs.Font.Underline {
		text.Underline = "solid"
	}

	cellProps := &odsCellProps{
		BackgroundColor: string(cs.Background),
		VerticalAlign:   cs.AlignV,
	}
	if cs.Wrap {
		cellProps.WrapOption = "wrap"
	}
	setBorder := func(dst *string, b Border) {
		if b.Style != BorderNone {
			*dst = b.String()
		}
	}
	setBorder(&cellProps.BorderTop, cs.BorderTop)
	setBorder(&cellProps.BorderRight, cs.BorderRight)
	setBorder(&cellProps.BorderBottom, cs.BorderBottom)
	setBorder(&cellProps.BorderLeft, cs.BorderLeft)

	var para *odsParaProps
	switch cs.AlignH {
	case "center":
		para = &odsParaProps{TextAlign: "center"}
	case "right":
		para = &odsParaProps{TextAlign: "end"}
	case "left":
		para = &odsParaProps{TextAlign: "start"}
	}

	return odsStyle{
		Name:      odsStyleName(name),
		Family:    "table-cell",
		CellProps: cellProps,
		ParaProps: para,
		TextProps: text,
	}
}

var rxStyleNameSafe = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// odsStyleName приводит имя стиля реестра к безопасному NCName.
func odsStyleName(name string) string {
	if name == "" {
		return ""
	}
	return "ce_" + rxStyleNameSafe.ReplaceAllString(strings.TrimSpace(name), "_")
}
