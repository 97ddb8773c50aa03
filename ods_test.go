package themesheet

import "testing"

func TestOdsStyleName(t *testing.T) {
	cases := map[string]string{
		"normal":    "ce_normal",
		"total row": "ce_total_row",
		"итог":      "ce_____", // не-ASCII заменяется посимвольно
		"":          "",
	}
	for in, want := range cases {
		if got := odsStyleName(in); got != want {
			t.Errorf("odsStyleName(%q) = %q, ожидалось %q", in, got, want)
		}
	}
}

func TestOdsCellStyleMapping(t *testing.T) {
	cs := defaultCellStyle()
	cs.Font.Weight = WeightBold
	cs.Font.Italic = true
	cs.AlignH = "right"
	cs.AlignV = "middle"
	cs.Wrap = true
	cs.BorderBottom = Border{Width: 1, Style: BorderSolid, Color: "#cccccc"}

	st := odsCellStyle("header", cs)
	if st.Name != "ce_header" || st.Family != "table-cell" {
		t.Fatalf("имя/семейство: %+v", st)
	}
	if st.TextProps.FontWeight != "bold" || st.TextProps.FontStyle != "italic" {
		t.Errorf("шрифт: %+v", st.TextProps)
	}
	if st.TextProps.FontFamily != "Liberation Sans, Arial" {
		t.Errorf("семейство шрифта: %q", st.TextProps.FontFamily)
	}
	if st.ParaProps == nil || st.ParaProps.TextAlign != "end" {
		t.Errorf("горизонтальное выравнивание: %+v", st.ParaProps)
	}
	if st.CellProps.VerticalAlign != "middle" || st.CellProps.WrapOption != "wrap" {
		t.Errorf("свойства ячейки: %+v", st.CellProps)
	}
	if st.CellProps.BorderBottom != "1pt solid #cccccc" {
		t.Errorf("граница: %q", st.CellProps.BorderBottom)
	}
	if st.CellProps.BorderTop != "" {
		t.Errorf("отсутствующая граница не сериализуется: %q", st.CellProps.BorderTop)
	}
}

func TestOdsRowGapFill(t *testing.T) {
	// Единственная запись в третьей грид-колонке: две позиции перед ней
	// накрыты объединением предыдущей строки и заполняются covered-ячейками.
	row := outRow{cells: []outCell{{col: 3, value: "x", typ: TypeText, display: "x"}}}
	out := odsRow(row)
	if len(out.Cells) != 3 {
		t.Fatalf("записей %d, ожидалось 3", len(out.Cells))
	}
	if _, ok := out.Cells[0].(odsCoveredCell); !ok {
		t.Error("первая запись должна быть covered")
	}
	if _, ok := out.Cells[1].(odsCoveredCell); !ok {
		t.Error("вторая запись должна быть covered")
	}
	if c, ok := out.Cells[2].(odsCell); !ok || len(c.P) == 0 || c.P[0].Text != "x" {
		t.Errorf("третья запись: %+v", out.Cells[2])
	}
}

func TestOdsDataCellTypes(t *testing.T) {
	c := odsDataCell(outCell{col: 1, value: 1234.56, typ: TypeCurrency, display: "$1,234.56"})
	if c.ValueType != "currency" || c.Currency != "USD" || c.Value != "1234.56" {
		t.Errorf("валюта: %+v", c)
	}
	if len(c.P) == 0 || c.P[0].Text != "$1,234.56" {
		t.Errorf("текст отображения: %+v", c.P)
	}

	c = odsDataCell(outCell{col: 1, value: "2026-03-15", typ: TypeDate, display: "2026-03-15"})
	if c.ValueType != "date" || c.DateValue != "2026-03-15" {
		t.Errorf("дата: %+v", c)
	}

	c = odsDataCell(outCell{col: 1, formula: "SUM(A1:A3)", typ: TypeNumber})
	if c.Formula != "of:=SUM(A1:A3)" || c.Value != "" || len(c.P) != 0 {
		t.Errorf("формула: %+v", c)
	}

	c = odsDataCell(outCell{col: 1, value: true, typ: TypeBoolean, display: "true"})
	if c.ValueType != "boolean" || c.BoolValue != "true" {
		t.Errorf("булево: %+v", c)
	}
}
