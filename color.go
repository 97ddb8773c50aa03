package themesheet

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Color — нормализованный цвет вида "#rrggbb". Конструкторы гарантируют
// инвариант: значение всегда шесть шестнадцатеричных цифр в нижнем регистре.
type Color string

var rxHexColor = regexp.MustCompile(`^#(?:[0-9a-f]{3}|[0-9a-f]{6})$`)

// ColorFromHex строит Color из строки "#rgb" или "#rrggbb".
// Трёхзначная запись раскрывается до шестизначной, регистр приводится
// к нижнему. Любой другой синтаксис — ErrInvalidColor.
func ColorFromHex(s string) (Color, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	if !rxHexColor.MatchString(norm) {
		return "", fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	if len(norm) == 4 {
		// "#abc" -> "#aabbcc"
		norm = "#" + strings.Repeat(string(norm[1]), 2) +
			strings.Repeat(string(norm[2]), 2) +
			strings.Repeat(string(norm[3]), 2)
	}
	return Color(norm), nil
}

// ColorFromRGB строит Color из компонент.
func ColorFromRGB(r, g, b uint8) Color {
	return Color(fmt.Sprintf("#%02x%02x%02x", r, g, b))
}

// RGB возвращает компоненты цвета. Для ненормализованного значения
// (сконструированного в обход ColorFromHex) возвращает нули.
func (c Color) RGB() (r, g, b uint8) {
	s := string(c)
	if len(s) != 7 {
		return 0, 0, 0
	}
	pr, err1 := strconv.ParseUint(s[1:3], 16, 8)
	pg, err2 := strconv.ParseUint(s[3:5], 16, 8)
	pb, err3 := strconv.ParseUint(s[5:7], 16, 8)
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, 0, 0
	}
	return uint8(pr), uint8(pg), uint8(pb)
}

// IsDark сообщает, тёмный ли цвет (по относительной яркости).
// Используется темами для выбора контрастного текста.
func (c Color) IsDark() bool {
	r, g, b := c.RGB()
	// ITU-R BT.601
	lum := 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
	return lum < 128
}

func (c Color) String() string { return string(c) }
