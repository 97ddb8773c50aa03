package themesheet

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed themes/*.yaml
var builtinThemes embed.FS

// Loader загружает текстовые ресурсы тем и кэширует собранные темы по
// имени на время своей жизни. Экземпляр принадлежит вызывающему — никакого
// скрытого состояния уровня модуля, изолированные загрузчики в тестах.
// Не потокобезопасен.
type Loader struct {
	dir   string
	cache map[string]*Theme
}

// NewLoader создаёт загрузчик. dir — необязательный каталог пользовательских
// тем; тема из каталога затеняет встроенную с тем же именем.
func NewLoader(dir string) *Loader {
	return &Loader{dir: dir, cache: make(map[string]*Theme)}
}

// Load находит ресурс темы по имени, собирает тему и, если она объявляет
// родителя через extends, рекурсивно загружает родителя и сливает ребёнка
// поверх него. Результат кэшируется по имени.
func (l *Loader) Load(name string) (*Theme, error) {
	return l.loadRec(name, make(map[string]bool))
}

func (l *Loader) loadRec(name string, visiting map[string]bool) (*Theme, error) {
	if t, ok := l.cache[name]; ok {
		return t, nil
	}
	if visiting[name] {
		return nil, fmt.Errorf("%w: тема %q", ErrCircularInheritance, name)
	}
	visiting[name] = true
	defer delete(visiting, name)

	data, err := l.readResource(name)
	if err != nil {
		return nil, fmt.Errorf("тема %q: %w", name, err)
	}
	t, err := buildTheme(data)
	if err != nil {
		return nil, fmt.Errorf("тема %q: %w", name, err)
	}
	if t.Extends != "" {
		parent, err := l.loadRec(t.Extends, visiting)
		if err != nil {
			return nil, fmt.Errorf("родитель темы %q: %w", name, err)
		}
		t = mergeThemes(parent, t)
	}
	l.cache[name] = t
	return t, nil
}

// LoadFromString собирает тему из готового YAML-текста: тот же конвейер
// разбор -> проверка -> сборка, но без шага наследования и без кэша.
func (l *Loader) LoadFromString(src string) (*Theme, error) {
	return buildTheme([]byte(src))
}

// LoadFromMap собирает тему из программно построенной карты.
func (l *Loader) LoadFromMap(raw map[string]any) (*Theme, error) {
	data, err := yaml.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrThemeSchema, err)
	}
	return buildTheme(data)
}

// List перечисляет доступные ресурсы тем: встроенные плюс каталог
// пользователя, отсортированно и без дубликатов.
func (l *Loader) List() ([]string, error) {
	seen := make(map[string]struct{})
	var names []string
	add := func(fname string) {
		base := strings.TrimSuffix(strings.TrimSuffix(fname, ".yaml"), ".yml")
		if base == fname {
			return
		}
		if _, ok := seen[base]; !ok {
			seen[base] = struct{}{}
			names = append(names, base)
		}
	}
	entries, err := fs.ReadDir(builtinThemes, "themes")
	if err != nil {
		return nil, fmt.Errorf("чтение встроенных тем: %w", err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			add(e.Name())
		}
	}
	if l.dir != "" {
		userEntries, err := os.ReadDir(l.dir)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("чтение каталога тем %q: %w", l.dir, err)
		}
		for _, e := range userEntries {
			if !e.IsDir() {
				add(e.Name())
			}
		}
	}
	sort.Strings(names)
	return names, nil
}

// ClearCache сбрасывает кэш собранных тем.
func (l *Loader) ClearCache() {
	l.cache = make(map[string]*Theme)
}

// readResource ищет ресурс: каталог пользователя, затем встроенные темы.
func (l *Loader) readResource(name string) ([]byte, error) {
	if l.dir != "" {
		for _, ext := range []string{".yaml", ".yml"} {
			data, err := os.ReadFile(filepath.Join(l.dir, name+ext))
			if err == nil {
				return data, nil
			}
			if !os.IsNotExist(err) {
				return nil, err
			}
		}
	}
	data, err := builtinThemes.ReadFile("themes/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("ресурс не найден: %w", err)
	}
	return data, nil
}

// -----------------------------
// Разбор и сборка
// -----------------------------

// Сырая форма YAML-ресурса темы. Указательные поля стилей отличают
// «не задано» от нулевого значения.
type rawTheme struct {
	Name               string              `yaml:"name"`
	Version            string              `yaml:"version"`
	Description        string              `yaml:"description"`
	Extends            string              `yaml:"extends"`
	Colors             map[string]any      `yaml:"colors"`
	Fonts              map[string]rawFont  `yaml:"fonts"`
	Styles             map[string]rawStyle `yaml:"styles"`
	SemanticStyles     map[string]rawStyle `yaml:"semantic_styles"`
	ConditionalFormats map[string]any      `yaml:"conditional_formats"`
}

type rawFont struct {
	Family    string  `yaml:"family"`
	Fallback  string  `yaml:"fallback"`
	Size      float64 `yaml:"size"`
	Weight    string  `yaml:"weight"`
	Color     string  `yaml:"color"`
	Italic    bool    `yaml:"italic"`
	Underline bool    `yaml:"underline"`
}

type rawStyle struct {
	Extends      string        `yaml:"extends"`
	Font         *rawStyleFont `yaml:"font"`
	Background   *string       `yaml:"background"`
	Border       *string       `yaml:"border"`
	BorderTop    *string       `yaml:"border_top"`
	BorderRight  *string       `yaml:"border_right"`
	BorderBottom *string       `yaml:"border_bottom"`
	BorderLeft   *string       `yaml:"border_left"`
	Align        *string       `yaml:"align"`
	VerticalAlign *string      `yaml:"vertical_align"`
	NumberFormat *string       `yaml:"number_format"`
	Wrap         *bool         `yaml:"wrap"`
}

type rawStyleFont struct {
	Name      *string  `yaml:"name"`
	Family    *string  `yaml:"family"`
	Size      *float64 `yaml:"size"`
	Weight    *string  `yaml:"weight"`
	Color     *string  `yaml:"color"`
	Italic    *bool    `yaml:"italic"`
	Underline *bool    `yaml:"underline"`
}

// buildTheme — конвейер разбор -> проверка формы -> сборка модели.
func buildTheme(data []byte) (*Theme, error) {
	var raw rawTheme
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrThemeSchema, err)
	}
	if raw.Name == "" {
		return nil, fmt.Errorf("%w: отсутствует обязательное поле name", ErrThemeSchema)
	}
	if len(raw.Colors) == 0 && len(raw.Fonts) == 0 &&
		len(raw.Styles) == 0 && len(raw.SemanticStyles) == 0 {
		return nil, fmt.Errorf("%w: тема %q пуста", ErrThemeSchema, raw.Name)
	}

	t := &Theme{
		Name:               raw.Name,
		Version:            raw.Version,
		Description:        raw.Description,
		Extends:            raw.Extends,
		ConditionalFormats: raw.ConditionalFormats,
	}

	if err := buildPalette(&t.Palette, raw.Colors); err != nil {
		return nil, err
	}

	if len(raw.Fonts) > 0 {
		t.Fonts = make(map[string]Font, len(raw.Fonts))
		for name, rf := range raw.Fonts {
			f, err := buildFont(rf)
			if err != nil {
				return nil, fmt.Errorf("шрифт %q: %w", name, err)
			}
			t.Fonts[name] = f
		}
	}

	var err error
	if t.Styles, err = buildDefinitions(raw.Styles); err != nil {
		return nil, err
	}
	if t.SemanticStyles, err = buildDefinitions(raw.SemanticStyles); err != nil {
		return nil, err
	}
	return t, nil
}

// buildPalette раскладывает карту цветов: известные имена — фиксированные
// слоты, вложенный ключ custom и любые прочие имена — открытая карта.
func buildPalette(p *ColorPalette, colors map[string]any) error {
	addCustom := func(name string, v any) error {
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("%w: цвет %q должен быть строкой", ErrThemeSchema, name)
		}
		c, err := ColorFromHex(s)
		if err != nil {
			return fmt.Errorf("цвет %q: %w", name, err)
		}
		if p.Custom == nil {
			p.Custom = make(map[string]Color)
		}
		p.Custom[name] = c
		return nil
	}
	for name, v := range colors {
		if name == "custom" {
			nested, ok := v.(map[string]any)
			if !ok {
				return fmt.Errorf("%w: поле colors.custom должно быть картой", ErrThemeSchema)
			}
			for cn, cv := range nested {
				if err := addCustom(cn, cv); err != nil {
					return err
				}
			}
			continue
		}
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("%w: цвет %q должен быть строкой", ErrThemeSchema, name)
		}
		c, err := ColorFromHex(s)
		if err != nil {
			return fmt.Errorf("цвет %q: %w", name, err)
		}
		if !p.setSlot(name, c) {
			if err := addCustom(name, s); err != nil {
				return err
			}
		}
	}
	return nil
}

func buildFont(rf rawFont) (Font, error) {
	f := Font{
		Family:    rf.Family,
		Fallback:  rf.Fallback,
		Size:      rf.Size,
		Weight:    parseFontWeight(rf.Weight),
		Color:     Color("#000000"),
		Italic:    rf.Italic,
		Underline: rf.Underline,
	}
	if f.Size == 0 {
		f.Size = 10
	}
	if rf.Color != "" {
		c, err := ColorFromHex(rf.Color)
		if err != nil {
			return Font{}, err
		}
		f.Color = c
	}
	return f, nil
}

func buildDefinitions(raw map[string]rawStyle) (map[string]*StyleDefinition, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]*StyleDefinition, len(raw))
	for name, rs := range raw {
		def := &StyleDefinition{
			Name:         name,
			Extends:      rs.Extends,
			Background:   rs.Background,
			BorderTop:    rs.BorderTop,
			BorderRight:  rs.BorderRight,
			BorderBottom: rs.BorderBottom,
			BorderLeft:   rs.BorderLeft,
			AlignH:       rs.Align,
			AlignV:       rs.VerticalAlign,
			NumberFormat: rs.NumberFormat,
			Wrap:         rs.Wrap,
		}
		if rs.Border != nil {
			// Сокращение: одна строка задаёт все четыре стороны.
			def.BorderTop = rs.Border
			def.BorderRight = rs.Border
			def.BorderBottom = rs.Border
			def.BorderLeft = rs.Border
		}
		if rs.Font != nil {
			def.FontName = rs.Font.Name
			def.FontFamily = rs.Font.Family
			def.FontSize = rs.Font.Size
			def.FontWeight = rs.Font.Weight
			def.FontColor = rs.Font.Color
			def.Italic = rs.Font.Italic
			def.Underline = rs.Font.Underline
		}
		out[name] = def
	}
	return out, nil
}
