package themesheet

import (
	"errors"
	"testing"
)

func sp(s string) *string   { return &s }
func fp(f float64) *float64 { return &f }
func bp(b bool) *bool       { return &b }

func testTheme() *Theme {
	return &Theme{
		Name: "test",
		Palette: ColorPalette{
			Primary: "#4472c4",
			Danger:  "#c62828",
			Custom:  map[string]Color{"accent": "#7e57c2"},
		},
		Fonts: map[string]Font{
			"body": {Family: "Liberation Sans", Fallback: "Arial", Size: 10, Weight: WeightNormal, Color: "#212121"},
		},
		Styles: map[string]*StyleDefinition{
			"normal": {Name: "normal", FontName: sp("body")},
			"header": {
				Name:         "header",
				Extends:      "normal",
				FontWeight:   sp("bold"),
				Background:   sp("{colors.primary}"),
				AlignH:       sp("center"),
				BorderBottom: sp("1pt solid {colors.accent}"),
			},
			"total": {Name: "total", Extends: "header", NumberFormat: sp("$#,##0.00")},
		},
		SemanticStyles: map[string]*StyleDefinition{
			"danger": {Name: "danger", Extends: "normal", FontColor: sp("{colors.danger}")},
		},
	}
}

func TestThemeColor(t *testing.T) {
	th := testTheme()
	if c, err := th.Color("primary"); err != nil || c != "#4472c4" {
		t.Fatalf("Color(primary) = %q, %v", c, err)
	}
	if c, err := th.Color("accent"); err != nil || c != "#7e57c2" {
		t.Fatalf("Color(accent) = %q, %v", c, err)
	}
	if _, err := th.Color("nonexistent"); !errors.Is(err, ErrUnknownColor) {
		t.Fatalf("ожидалась ErrUnknownColor, получено %v", err)
	}
}

func TestResolveColorRef(t *testing.T) {
	th := testTheme()
	if c, err := th.ResolveColorRef("{colors.primary}"); err != nil || c != "#4472c4" {
		t.Fatalf("ссылка: %q, %v", c, err)
	}
	if c, err := th.ResolveColorRef("#ABC"); err != nil || c != "#aabbcc" {
		t.Fatalf("литерал: %q, %v", c, err)
	}
	if _, err := th.ResolveColorRef("{colors.missing}"); !errors.Is(err, ErrUnknownColor) {
		t.Fatalf("ожидалась ErrUnknownColor, получено %v", err)
	}
}

func TestThemeStyleInheritance(t *testing.T) {
	th := testTheme()
	cs, err := th.Style("total")
	if err != nil {
		t.Fatal(err)
	}
	// Цепочка total -> header -> normal -> стиль по умолчанию.
	if cs.Font.Family != "Liberation Sans" {
		t.Errorf("семейство шрифта: %q", cs.Font.Family)
	}
	if cs.Font.Weight != WeightBold {
		t.Errorf("насыщенность от header не унаследована: %q", cs.Font.Weight)
	}
	if cs.Background != "#4472c4" {
		t.Errorf("фон: %q", cs.Background)
	}
	if cs.NumberFormat != "$#,##0.00" {
		t.Errorf("числовой формат: %q", cs.NumberFormat)
	}
	if cs.BorderBottom.Style != BorderSolid || cs.BorderBottom.Color != "#7e57c2" {
		t.Errorf("граница: %+v", cs.BorderBottom)
	}
	// Незатронутые свойства — от корня наследования.
	if cs.AlignV != "bottom" {
		t.Errorf("вертикальное выравнивание: %q", cs.AlignV)
	}
}

func TestThemeStylePartialOverride(t *testing.T) {
	th := testTheme()
	cs, err := th.Style("danger")
	if err != nil {
		t.Fatal(err)
	}
	// Цвет шрифта переопределён, семейство и размер — от родителя.
	if cs.Font.Color != "#c62828" {
		t.Errorf("цвет шрифта: %q", cs.Font.Color)
	}
	if cs.Font.Family != "Liberation Sans" || cs.Font.Size != 10 {
		t.Errorf("частичное переопределение сбросило шрифт: %+v", cs.Font)
	}
}

func TestThemeStyleUnknown(t *testing.T) {
	th := testTheme()
	if _, err := th.Style("nope"); !errors.Is(err, ErrUnknownStyle) {
		t.Fatalf("ожидалась ErrUnknownStyle, получено %v", err)
	}
}

func TestThemeStyleUnknownParent(t *testing.T) {
	th := testTheme()
	th.Styles["orphan"] = &StyleDefinition{Name: "orphan", Extends: "ghost"}
	if _, err := th.Style("orphan"); !errors.Is(err, ErrUnknownParentStyle) {
		t.Fatalf("ожидалась ErrUnknownParentStyle, получено %v", err)
	}
}

func TestThemeStyleCircular(t *testing.T) {
	th := testTheme()
	th.Styles["a"] = &StyleDefinition{Name: "a", Extends: "b"}
	th.Styles["b"] = &StyleDefinition{Name: "b", Extends: "a"}
	if _, err := th.Style("a"); !errors.Is(err, ErrCircularInheritance) {
		t.Fatalf("ожидалась ErrCircularInheritance, получено %v", err)
	}
	// Самоссылка — тот же отказ.
	th.Styles["self"] = &StyleDefinition{Name: "self", Extends: "self"}
	if _, err := th.Style("self"); !errors.Is(err, ErrCircularInheritance) {
		t.Fatalf("самоссылка: ожидалась ErrCircularInheritance, получено %v", err)
	}
}

func TestThemeStyleUnknownFont(t *testing.T) {
	th := testTheme()
	th.Styles["broken"] = &StyleDefinition{Name: "broken", FontName: sp("ghost")}
	if _, err := th.Style("broken"); !errors.Is(err, ErrUnknownFont) {
		t.Fatalf("ожидалась ErrUnknownFont, получено %v", err)
	}
}

func TestThemeStyleCache(t *testing.T) {
	th := testTheme()
	first, err := th.Style("header")
	if err != nil {
		t.Fatal(err)
	}
	// Мутация определения после первого разрешения не видна через кэш.
	th.Styles["header"].AlignH = sp("right")
	second, _ := th.Style("header")
	if second.AlignH != first.AlignH {
		t.Fatal("повторный вызов должен отдать кэшированный результат")
	}
	th.ClearStyleCache()
	third, _ := th.Style("header")
	if third.AlignH != "right" {
		t.Fatal("после сброса кэша стиль разрешается заново")
	}
}

func TestThemeStyleNames(t *testing.T) {
	names := testTheme().StyleNames()
	want := []string{"danger", "header", "normal", "total"}
	if len(names) != len(want) {
		t.Fatalf("StyleNames = %v", names)
	}
	for i, n := range want {
		if names[i] != n {
			t.Fatalf("StyleNames = %v, ожидалось %v", names, want)
		}
	}
}

func TestMergeThemes(t *testing.T) {
	parent := testTheme()
	child := &Theme{
		Name:    "child",
		Extends: "test",
		Palette: ColorPalette{Primary: "#123456"},
		Styles: map[string]*StyleDefinition{
			"header": {Name: "header", AlignH: sp("right")},
			"extra":  {Name: "extra", Extends: "normal"},
		},
	}
	out := mergeThemes(parent, child)

	if out.Name != "child" {
		t.Errorf("имя: %q", out.Name)
	}
	if out.Palette.Primary != "#123456" {
		t.Error("слот палитры ребёнка должен победить")
	}
	if out.Palette.Danger != "#c62828" {
		t.Error("незаданный слот наследуется")
	}
	// Общий стиль сливается пополевого: фон родителя жив, выравнивание новое.
	h := out.Styles["header"]
	if h.Background == nil || *h.Background != "{colors.primary}" {
		t.Error("фон header родителя должен сохраниться")
	}
	if h.AlignH == nil || *h.AlignH != "right" {
		t.Error("выравнивание header ребёнка должно примениться")
	}
	if _, ok := out.Styles["extra"]; !ok {
		t.Error("новый стиль ребёнка должен войти в результат")
	}
	if _, ok := out.SemanticStyles["danger"]; !ok {
		t.Error("семантические стили родителя должны сохраниться")
	}

	// Идемпотентность: повторное слияние с самим собой ничего не меняет.
	again := mergeThemes(out, out)
	if again.Palette.Primary != out.Palette.Primary || len(again.Styles) != len(out.Styles) {
		t.Error("слияние не идемпотентно")
	}
}
