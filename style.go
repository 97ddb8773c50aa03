package themesheet

import (
	"fmt"
	"log"
	"strconv"
	"strings"
)

// -----------------------------
// Шрифты
// -----------------------------

// FontWeight — насыщенность шрифта.
type FontWeight string

const (
	WeightNormal FontWeight = "normal"
	WeightBold   FontWeight = "bold"
	WeightLight  FontWeight = "light"
)

// parseFontWeight разбирает токен насыщенности. Нераспознанный токен —
// документированная поблажка загрузчика: предупреждаем и откатываемся
// к normal, загрузку не валим.
func parseFontWeight(s string) FontWeight {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "normal", "regular", "400":
		return WeightNormal
	case "bold", "700":
		return WeightBold
	case "light", "300":
		return WeightLight
	default:
		log.Printf("⚠️ Неизвестная насыщенность шрифта %q, используем normal", s)
		return WeightNormal
	}
}

// Font — полностью заданный шрифт.
type Font struct {
	Family    string
	Fallback  string
	Size      float64
	Weight    FontWeight
	Color     Color
	Italic    bool
	Underline bool
}

// -----------------------------
// Границы
// -----------------------------

// BorderStyle — стиль линии границы.
type BorderStyle string

const (
	BorderNone   BorderStyle = "none"
	BorderSolid  BorderStyle = "solid"
	BorderDashed BorderStyle = "dashed"
	BorderDotted BorderStyle = "dotted"
	BorderDouble BorderStyle = "double"
)

// parseBorderStyle разбирает токен стиля линии. Нераспознанный токен
// откатывается к solid (поблажка загрузчика, поведение сохраняется
// намеренно).
func parseBorderStyle(s string) BorderStyle {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return BorderNone
	case "solid":
		return BorderSolid
	case "dashed":
		return BorderDashed
	case "dotted":
		return BorderDotted
	case "double":
		return BorderDouble
	default:
		log.Printf("⚠️ Неизвестный стиль границы %q, используем solid", s)
		return BorderSolid
	}
}

// Border — граница ячейки.
type Border struct {
	Width float64 // в пунктах
	Style BorderStyle
	Color Color
}

// String сериализует границу в компактную форму "0.5pt solid #cccccc".
func (b Border) String() string {
	if b.Style == BorderNone {
		return "none"
	}
	w := strconv.FormatFloat(b.Width, 'f', -1, 64)
	return fmt.Sprintf("%spt %s %s", w, b.Style, b.Color)
}

// parseBorder разбирает компактную форму "0.5pt solid #cccccc".
// Допускается "none". Ошибкой считается только некорректная ширина или
// цвет; неизвестный токен стиля линии проходит через parseBorderStyle.
func parseBorder(s string) (Border, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "none") {
		return Border{Style: BorderNone}, nil
	}
	parts := strings.Fields(s)
	if len(parts) != 3 {
		return Border{}, fmt.Errorf("некорректная граница %q: ожидается \"<ширина>pt <стиль> <цвет>\"", s)
	}
	w, err := strconv.ParseFloat(strings.TrimSuffix(parts[0], "pt"), 64)
	if err != nil || w < 0 {
		return Border{}, fmt.Errorf("некорректная ширина границы %q", parts[0])
	}
	c, err := ColorFromHex(parts[2])
	if err != nil {
		return Border{}, err
	}
	return Border{Width: w, Style: parseBorderStyle(parts[1]), Color: c}, nil
}

// -----------------------------
// Определения и разрешённые стили
// -----------------------------

// StyleDefinition — именованный частично заданный стиль. Каждое визуальное
// свойство опционально: nil означает «наследовать». Цветовые поля хранят
// либо литерал "#rrggbb", либо символическую ссылку "{colors.<имя>}" —
// разрешение происходит при построении CellStyle.
type StyleDefinition struct {
	Name    string
	Extends string

	FontName   *string // ссылка на именованный шрифт темы
	FontFamily *string
	FontSize   *float64
	FontWeight *string // сырой токен, разбирается при разрешении
	FontColor  *string
	Italic     *bool
	Underline  *bool

	Background *string

	BorderTop    *string // компактная форма границы
	BorderRight  *string
	BorderBottom *string
	BorderLeft   *string

	AlignH       *string
	AlignV       *string
	NumberFormat *string
	Wrap         *bool
}

// overlay накладывает явно заданные поля child поверх def, независимо по
// каждому под-полю. Используется при слиянии тем (ребёнок поверх родителя).
func (d *StyleDefinition) overlay(child *StyleDefinition) *StyleDefinition {
	out := *d
	if child.Extends != "" {
		out.Extends = child.Extends
	}
	if child.FontName != nil {
		out.FontName = child.FontName
	}
	if child.FontFamily != nil {
		out.FontFamily = child.FontFamily
	}
	if child.FontSize != nil {
		out.FontSize = child.FontSize
	}
	if child.FontWeight != nil {
		out.FontWeight = child.FontWeight
	}
	if child.FontColor != nil {
		out.FontColor = child.FontColor
	}
	if child.Italic != nil {
		out.Italic = child.Italic
	}
	if child.Underline != nil {
		out.Underline = child.Underline
	}
	if child.Background != nil {
		out.Background = child.Background
	}
	if child.BorderTop != nil {
		out.BorderTop = child.BorderTop
	}
	if child.BorderRight != nil {
		out.BorderRight = child.BorderRight
	}
	if child.BorderBottom != nil {
		out.BorderBottom = child.BorderBottom
	}
	if child.BorderLeft != nil {
		out.BorderLeft = child.BorderLeft
	}
	if child.AlignH != nil {
		out.AlignH = child.AlignH
	}
	if child.AlignV != nil {
		out.AlignV = child.AlignV
	}
	if child.NumberFormat != nil {
		out.NumberFormat = child.NumberFormat
	}
	if child.Wrap != nil {
		out.Wrap = child.Wrap
	}
	return &out
}

// CellStyle — полностью разрешённый стиль: каждое свойство заполнено.
// Единственная форма, применяемая к реальной ячейке.
type CellStyle struct {
	Font       Font
	Background Color

	BorderTop    Border
	BorderRight  Border
	BorderBottom Border
	BorderLeft   Border

	AlignH       string // left | center | right
	AlignV       string // top | middle | bottom
	NumberFormat string
	Wrap         bool
}

// defaultCellStyle — корень наследования: стиль "как без темы".
func defaultCellStyle() CellStyle {
	return CellStyle{
		Font: Font{
			Family:   "Liberation Sans",
			Fallback: "Arial",
			Size:     10,
			Weight:   WeightNormal,
			Color:    Color("#000000"),
		},
		Background:   Color("#ffffff"),
		BorderTop:    Border{Style: BorderNone},
		BorderRight:  Border{Style: BorderNone},
		BorderBottom: Border{Style: BorderNone},
		BorderLeft:   Border{Style: BorderNone},
		AlignH:       "left",
		AlignV:       "bottom",
		NumberFormat: "",
		Wrap:         false,
	}
}

// -----------------------------
// Палитра
// -----------------------------

// ColorPalette — фиксированные семантические слоты плюс открытая карта
// пользовательских цветов.
type ColorPalette struct {
	Primary Color
	Success Color
	Warning Color
	Danger  Color

	SuccessBackground Color
	WarningBackground Color
	DangerBackground  Color

	Text          Color
	TextMuted     Color
	Background    Color
	BackgroundAlt Color
	Border        Color

	Custom map[string]Color
}

// slot возвращает цвет фиксированного слота по имени.
func (p *ColorPalette) slot(name string) (Color, bool) {
	var c Color
	switch name {
	case "primary":
		c = p.Primary
	case "success":
		c = p.Success
	case "warning":
		c = p.Warning
	case "danger":
		c = p.Danger
	case "success_background":
		c = p.SuccessBackground
	case "warning_background":
		c = p.WarningBackground
	case "danger_background":
		c = p.DangerBackground
	case "text":
		c = p.Text
	case "text_muted":
		c = p.TextMuted
	case "background":
		c = p.Background
	case "background_alt":
		c = p.BackgroundAlt
	case "border":
		c = p.Border
	default:
		return "", false
	}
	if c == "" {
		return "", false
	}
	return c, true
}

// setSlot записывает цвет в фиксированный слот; false — имя не слот.
func (p *ColorPalette) setSlot(name string, c Color) bool {
	switch name {
	case "primary":
		p.Primary = c
	case "success":
		p.Success = c
	case "warning":
		p.Warning = c
	case "danger":
		p.Danger = c
	case "success_background":
		p.SuccessBackground = c
	case "warning_background":
		p.WarningBackground = c
	case "danger_background":
		p.DangerBackground = c
	case "text":
		p.Text = c
	case "text_muted":
		p.TextMuted = c
	case "background":
		p.Background = c
	case "background_alt":
		p.BackgroundAlt = c
	case "border":
		p.Border = c
	default:
		return false
	}
	return true
}

// mergeOver накладывает явно заданные слоты child поверх parent.
func (p ColorPalette) mergeOver(child ColorPalette) ColorPalette {
	out := p
	for _, name := range []string{
		"primary", "success", "warning", "danger",
		"success_background", "warning_background", "danger_background",
		"text", "text_muted", "background", "background_alt", "border",
	} {
		if c, ok := child.slot(name); ok {
			out.setSlot(name, c)
		}
	}
	if len(child.Custom) > 0 {
		if out.Custom == nil {
			out.Custom = make(map[string]Color, len(child.Custom))
		} else {
			merged := make(map[string]Color, len(out.Custom)+len(child.Custom))
			for k, v := range out.Custom {
				merged[k] = v
			}
			out.Custom = merged
		}
		for k, v := range child.Custom {
			out.Custom[k] = v
		}
	}
	return out
}
