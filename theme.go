package themesheet

import (
	"fmt"
	"sort"
	"strings"
)

// Theme — именованный набор цветов, шрифтов и стилей, опционально
// наследующий родительскую тему. Экземпляр не потокобезопасен: кэш
// разрешённых стилей — изменяемое состояние; параллельные рендеры должны
// использовать отдельные экземпляры либо внешнюю сериализацию.
type Theme struct {
	Name        string
	Version     string
	Description string
	Extends     string

	Palette ColorPalette
	Fonts   map[string]Font

	// Два пространства имён определений: базовое и семантическое.
	// При поиске по имени семантическое имеет приоритет.
	Styles         map[string]*StyleDefinition
	SemanticStyles map[string]*StyleDefinition

	// Сквозной блоб для ещё не смоделированных деклараций условного
	// форматирования: загрузчик не интерпретирует содержимое.
	ConditionalFormats map[string]any

	styleCache map[string]CellStyle
}

// Color возвращает цвет по имени: сперва фиксированные семантические
// слоты палитры, затем открытая карта пользовательских цветов.
func (t *Theme) Color(name string) (Color, error) {
	if c, ok := t.Palette.slot(name); ok {
		return c, nil
	}
	if c, ok := t.Palette.Custom[name]; ok {
		return c, nil
	}
	return "", fmt.Errorf("%w: %q в теме %q", ErrUnknownColor, name, t.Name)
}

// ResolveColorRef принимает литеральный цвет либо символическую ссылку
// вида "{colors.<имя>}"; символическая форма делегируется Color.
func (t *Theme) ResolveColorRef(ref string) (Color, error) {
	ref = strings.TrimSpace(ref)
	if strings.HasPrefix(ref, "{colors.") && strings.HasSuffix(ref, "}") {
		name := strings.TrimSuffix(strings.TrimPrefix(ref, "{colors."), "}")
		return t.Color(name)
	}
	return ColorFromHex(ref)
}

// StyleNames перечисляет все имена стилей темы (оба пространства имён),
// отсортированно и без дубликатов.
func (t *Theme) StyleNames() []string {
	seen := make(map[string]struct{}, len(t.Styles)+len(t.SemanticStyles))
	var names []string
	for n := range t.Styles {
		if _, ok := seen[n]; !ok {
			seen[n] = struct{}{}
			names = append(names, n)
		}
	}
	for n := range t.SemanticStyles {
		if _, ok := seen[n]; !ok {
			seen[n] = struct{}{}
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}

// ClearStyleCache сбрасывает кэш разрешённых стилей.
func (t *Theme) ClearStyleCache() {
	t.styleCache = nil
}

// findDefinition ищет определение стиля: семантическое пространство имён
// имеет приоритет над базовым.
func (t *Theme) findDefinition(name string) *StyleDefinition {
	if d, ok := t.SemanticStyles[name]; ok {
		return d
	}
	if d, ok := t.Styles[name]; ok {
		return d
	}
	return nil
}

// Style возвращает мемоизированный CellStyle по имени. При промахе кэша
// наследование разрешается в глубину с отслеживанием множества имён на
// текущем пути: повторный заход в имя — ErrCircularInheritance. Первый
// вызов O(глубина цепочки), последующие O(1).
func (t *Theme) Style(name string) (CellStyle, error) {
	return t.resolveStyle(name, make(map[string]bool))
}

func (t *Theme) resolveStyle(name string, visiting map[string]bool) (CellStyle, error) {
	if cs, ok := t.styleCache[name]; ok {
		return cs, nil
	}
	def := t.findDefinition(name)
	if def == nil {
		return CellStyle{}, fmt.Errorf("%w: %q в теме %q", ErrUnknownStyle, name, t.Name)
	}
	if visiting[name] {
		return CellStyle{}, fmt.Errorf("%w: стиль %q в теме %q", ErrCircularInheritance, name, t.Name)
	}
	visiting[name] = true
	defer delete(visiting, name)

	base := defaultCellStyle()
	if def.Extends != "" {
		if t.findDefinition(def.Extends) == nil {
			return CellStyle{}, fmt.Errorf("%w: %q (extends у %q)", ErrUnknownParentStyle, def.Extends, name)
		}
		parent, err := t.resolveStyle(def.Extends, visiting)
		if err != nil {
			return CellStyle{}, err
		}
		base = parent
	}

	resolved, err := t.applyDefinition(base, def)
	if err != nil {
		return CellStyle{}, fmt.Errorf("стиль %q: %w", name, err)
	}
	if t.styleCache == nil {
		t.styleCache = make(map[string]CellStyle)
	}
	t.styleCache[name] = resolved
	return resolved, nil
}

// applyDefinition накладывает явно заданные поля определения на base,
// независимо по каждому под-полю: например, заданный цвет шрифта не
// сбрасывает семейство. Цветовые поля проходят через ResolveColorRef.
func (t *Theme) applyDefinition(base CellStyle, def *StyleDefinition) (CellStyle, error) {
	out := base

	if def.FontName != nil {
		f, ok := t.Fonts[*def.FontName]
		if !ok {
			return CellStyle{}, fmt.Errorf("%w: %q", ErrUnknownFont, *def.FontName)
		}
		out.Font = f
	}
	if def.FontFamily != nil {
		out.Font.Family = *def.FontFamily
	}
	if def.FontSize != nil {
		out.Font.Size = *def.FontSize
	}
	if def.FontWeight != nil {
		out.Font.Weight = parseFontWeight(*def.FontWeight)
	}
	if def.FontColor != nil {
		c, err := t.ResolveColorRef(*def.FontColor)
		if err != nil {
			return CellStyle{}, err
		}
		out.Font.Color = c
	}
	if def.Italic != nil {
		out.Font.Italic = *def.Italic
	}
	if def.Underline != nil {
		out.Font.Underline = *def.Underline
	}
	if def.Background != nil {
		c, err := t.ResolveColorRef(*def.Background)
		if err != nil {
			return CellStyle{}, err
		}
		out.Background = c
	}

	apply := func(dst *Border, src *string) error {
		if src == nil {
			return nil
		}
		b, err := t.parseBorderRef(*src)
		if err != nil {
			return err
		}
		*dst = b
		return nil
	}
	if err := apply(&out.BorderTop, def.BorderTop); err != nil {
		return CellStyle{}, err
	}
	if err := apply(&out.BorderRight, def.BorderRight); err != nil {
		return CellStyle{}, err
	}
	if err := apply(&out.BorderBottom, def.BorderBottom); err != nil {
		return CellStyle{}, err
	}
	if err := apply(&out.BorderLeft, def.BorderLeft); err != nil {
		return CellStyle{}, err
	}

	if def.AlignH != nil {
		out.AlignH = *def.AlignH
	}
	if def.AlignV != nil {
		out.AlignV = *def.AlignV
	}
	if def.NumberFormat != nil {
		out.NumberFormat = *def.NumberFormat
	}
	if def.Wrap != nil {
		out.Wrap = *def.Wrap
	}
	return out, nil
}

// parseBorderRef — как parseBorder, но цветовая часть может быть
// символической ссылкой "{colors.<имя>}".
func (t *Theme) parseBorderRef(s string) (Border, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "none") {
		return Border{Style: BorderNone}, nil
	}
	parts := strings.Fields(s)
	if len(parts) == 3 && strings.HasPrefix(parts[2], "{") {
		c, err := t.ResolveColorRef(parts[2])
		if err != nil {
			return Border{}, err
		}
		parts[2] = string(c)
		s = strings.Join(parts, " ")
	}
	return parseBorder(s)
}

// mergeThemes строит новую тему: всё, что ребёнок задал явно, побеждает;
// остальное — разрешённое значение родителя. Слияние пополевое и
// идемпотентное: повторное слияние результата с самим собой ничего не
// меняет.
func mergeThemes(parent, child *Theme) *Theme {
	out := &Theme{
		Name:        child.Name,
		Version:     firstNonEmpty(child.Version, parent.Version),
		Description: firstNonEmpty(child.Description, parent.Description),
		Extends:     child.Extends,
		Palette:     parent.Palette.mergeOver(child.Palette),
	}

	out.Fonts = make(map[string]Font, len(parent.Fonts)+len(child.Fonts))
	for n, f := range parent.Fonts {
		out.Fonts[n] = f
	}
	for n, f := range child.Fonts {
		out.Fonts[n] = f
	}

	out.Styles = mergeDefinitions(parent.Styles, child.Styles)
	out.SemanticStyles = mergeDefinitions(parent.SemanticStyles, child.SemanticStyles)

	if len(parent.ConditionalFormats) > 0 || len(child.ConditionalFormats) > 0 {
		out.ConditionalFormats = make(map[string]any, len(parent.ConditionalFormats)+len(child.ConditionalFormats))
		for k, v := range parent.ConditionalFormats {
			out.ConditionalFormats[k] = v
		}
		for k, v := range child.ConditionalFormats {
			out.ConditionalFormats[k] = v
		}
	}
	return out
}

// mergeDefinitions сливает пространство имён определений: общее имя —
// пополевое наложение ребёнка поверх родителя.
func mergeDefinitions(parent, child map[string]*StyleDefinition) map[string]*StyleDefinition {
	out := make(map[string]*StyleDefinition, len(parent)+len(child))
	for n, d := range parent {
		out[n] = d
	}
	for n, d := range child {
		if p, ok := out[n]; ok {
			merged := p.overlay(d)
			merged.Name = n
			out[n] = merged
		} else {
			out[n] = d
		}
	}
	return out
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
